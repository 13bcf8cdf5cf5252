// Package dynform exposes the form engine from the top-level module for
// callers that prefer a single entry point.
package dynform

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-dynform/pkg/form"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/orchestrator"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/submission"
)

// FieldConfig aliases model.FieldConfig.
type FieldConfig = model.FieldConfig

// OptionEntry aliases model.OptionEntry.
type OptionEntry = model.OptionEntry

// FieldGroupConfig aliases model.FieldGroupConfig.
type FieldGroupConfig = model.FieldGroupConfig

// NewOrchestrator exposes the orchestrator constructor.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// ParseSource turns a path or http(s) URL into a schema source.
func ParseSource(raw string) (schema.Source, error) {
	location := strings.TrimSpace(raw)
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return schema.SourceFromURL(location)
	}
	return schema.SourceFromFile(location), nil
}

// GetConfig loads the schema behind src and builds its field tree with a
// one-off orchestrator. Long-lived callers should keep an Orchestrator so the
// option cache survives between forms.
func GetConfig(ctx context.Context, client *http.Client, src schema.Source, payload map[string]any, options ...orchestrator.Option) ([]model.FieldConfig, error) {
	doc, err := schema.Load(ctx, client, src)
	if err != nil {
		return nil, err
	}
	return orchestrator.New(options...).GetConfig(ctx, doc, payload)
}

// NewForm binds a field tree to a normalised payload.
func NewForm(fields []model.FieldConfig, payload map[string]any) *form.Form {
	return form.New(fields, payload)
}

// NewSubmissionService builds a submission service over an HTTP transport
// rooted at baseURL.
func NewSubmissionService(baseURL string, transportOptions ...submission.HTTPOption) *submission.Service {
	opts := append([]submission.HTTPOption{submission.WithBaseURL(baseURL)}, transportOptions...)
	return submission.NewService(submission.NewHTTPTransport(opts...))
}
