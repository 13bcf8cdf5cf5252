package model

import (
	"strings"

	"go.uber.org/zap"

	pkgmodel "github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/options"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/widgets"
)

// Builder turns normalised field schemas into FieldConfig nodes.
type Builder struct {
	opts Options
}

// New creates a Builder with the supplied options. A nil registry falls back
// to the built-in widget catalogue.
func New(options Options) *Builder {
	opts := defaultOptions()
	if options.Labeler != nil {
		opts.Labeler = options.Labeler
	}
	opts.Registry = options.Registry
	if opts.Registry == nil {
		opts.Registry = widgets.NewRegistry()
	}
	opts.LoaderOptions = options.LoaderOptions
	opts.Logger = options.Logger
	if opts.Logger == nil {
		opts.Logger = zap.L()
	}
	return &Builder{opts: opts}
}

// Build maps every field onto its widget. Fields whose type has no catalogue
// entry are logged and dropped; the rest keep their input order.
func (b *Builder) Build(fields []schema.FieldSchema, payload map[string]any) []pkgmodel.FieldConfig {
	out := make([]pkgmodel.FieldConfig, 0, len(fields))
	for _, field := range fields {
		config, ok := b.BuildField(field, payload)
		if !ok {
			continue
		}
		out = append(out, config)
	}
	return out
}

// BuildField maps one field. It reports false on a schema mapping gap.
func (b *Builder) BuildField(field schema.FieldSchema, payload map[string]any) (pkgmodel.FieldConfig, bool) {
	res, ok := b.opts.Registry.Resolve(field)
	if !ok {
		b.opts.Logger.Warn("SchemaMappingGap: no widget for field type",
			zap.String("type", field.Type),
			zap.String("key", field.Key),
		)
		return pkgmodel.FieldConfig{}, false
	}

	property := field.Property()
	label := strings.TrimSpace(field.Name)
	if label == "" {
		label = b.opts.Labeler(property)
	}
	payloadValue := PayloadValue(payload, field)

	config := pkgmodel.FieldConfig{
		Key:          field.Key,
		WidgetType:   res.Template.Kind,
		Wrappers:     []string{pkgmodel.FieldWrapper},
		Property:     property,
		Required:     field.Required,
		Label:        label,
		HasDefault:   field.HasDefault,
		PayloadValue: payloadValue,
		MinLength:    field.MinLength,
		MaxLength:    field.MaxLength,
		DefaultValue: res.Template.DefaultValue,
	}

	className := res.Template.ClassName
	props := map[string]any{
		"property":   property,
		"required":   field.Required,
		"label":      label,
		"hasDefault": field.HasDefault,
	}
	if payloadValue != nil {
		props["payloadValue"] = payloadValue
	}
	if field.MinLength != nil && *field.MinLength != 0 {
		props["minLength"] = *field.MinLength
	}
	if field.MaxLength != nil && *field.MaxLength != 0 {
		props["maxLength"] = *field.MaxLength
	}
	// Precedence: generic attributes, then kind customisation, then the
	// template's own options.
	for k, v := range res.Custom {
		if k == "className" {
			if cls, ok := v.(string); ok && className == "" {
				className = cls
			}
			continue
		}
		props[k] = v
	}
	for k, v := range res.Template.Props {
		props[k] = v
	}
	config.Props = props
	config.ClassName = strings.TrimSpace(pkgmodel.FieldClassName + " " + className)

	if len(res.Template.Expressions) > 0 {
		config.Expressions = make(map[string]pkgmodel.Expression, len(res.Template.Expressions))
		for k, v := range res.Template.Expressions {
			config.Expressions[k] = v
		}
	}

	if field.AllowedValues != nil {
		loaderOpts := append([]options.LoaderOption(nil), b.opts.LoaderOptions...)
		if current := CurrentValues(payloadValue); len(current) > 0 {
			loaderOpts = append(loaderOpts, options.WithCurrent(current...))
		}
		config.Options = options.NewLoader(field, loaderOpts...)
	}

	return config, true
}
