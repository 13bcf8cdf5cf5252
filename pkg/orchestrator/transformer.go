package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dynform/pkg/schema"
)

// Transformer rewrites normalised field schemas before widgets are resolved.
// Implementations can rename fields, retype them, or drop them entirely.
type Transformer interface {
	Transform(ctx context.Context, fields []schema.FieldSchema) ([]schema.FieldSchema, error)
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, fields []schema.FieldSchema) ([]schema.FieldSchema, error)

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, fields []schema.FieldSchema) ([]schema.FieldSchema, error) {
	if fn == nil {
		return fields, nil
	}
	return fn(ctx, fields)
}

// PresetTransformer applies declarative per-field patches loaded from a JSON
// or YAML document keyed by form key:
//
//	fields:
//	  dueDate:
//	    name: Deadline
//	  _links.assignee:
//	    required: true
//	    options:
//	      rtl: true
//	  legacyCode:
//	    omit: true
type PresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	Fields map[string]fieldPatch `json:"fields" yaml:"fields"`
}

type fieldPatch struct {
	Name     string         `json:"name,omitempty" yaml:"name,omitempty"`
	Type     string         `json:"type,omitempty" yaml:"type,omitempty"`
	Required *bool          `json:"required,omitempty" yaml:"required,omitempty"`
	Omit     bool           `json:"omit,omitempty" yaml:"omit,omitempty"`
	Options  map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

// NewPresetTransformer parses a JSON preset document.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var document presetDocument
	if err := gojson.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("preset transformer: parse document: %w", err)
	}
	return &PresetTransformer{document: document}, nil
}

// NewYAMLPresetTransformer parses a YAML preset document.
func NewYAMLPresetTransformer(data []byte) (*PresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var document presetDocument
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("preset transformer: parse document: %w", err)
	}
	return &PresetTransformer{document: document}, nil
}

// NewPresetTransformerFromFS loads a preset document from fsys, choosing the
// decoder by file extension.
func NewPresetTransformerFromFS(fsys fs.FS, path string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return NewYAMLPresetTransformer(data)
	default:
		return NewPresetTransformer(data)
	}
}

// Transform applies the patches. Every patched key must exist.
func (t *PresetTransformer) Transform(ctx context.Context, fields []schema.FieldSchema) ([]schema.FieldSchema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(fields))
	for idx, field := range fields {
		index[field.Key] = idx
	}
	for key := range t.document.Fields {
		if _, ok := index[key]; !ok {
			return nil, fmt.Errorf("preset transformer: field %q not found", key)
		}
	}

	out := make([]schema.FieldSchema, 0, len(fields))
	for _, field := range fields {
		patch, ok := t.document.Fields[field.Key]
		if !ok {
			out = append(out, field)
			continue
		}
		if patch.Omit {
			continue
		}
		out = append(out, applyFieldPatch(field, patch))
	}
	return out, nil
}

func applyFieldPatch(field schema.FieldSchema, patch fieldPatch) schema.FieldSchema {
	if name := strings.TrimSpace(patch.Name); name != "" {
		field.Name = name
	}
	if typ := strings.TrimSpace(patch.Type); typ != "" {
		field.Type = typ
	}
	if patch.Required != nil {
		field.Required = *patch.Required
	}
	if len(patch.Options) > 0 {
		field.Options = mergeMap(field.Options, patch.Options)
	}
	return field
}

func mergeMap(dst, src map[string]any) map[string]any {
	out := make(map[string]any, len(dst)+len(src))
	for key, value := range dst {
		out[key] = value
	}
	for key, value := range src {
		out[key] = value
	}
	return out
}
