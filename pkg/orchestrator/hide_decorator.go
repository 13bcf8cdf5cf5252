package orchestrator

import "github.com/goliatone/go-dynform/pkg/model"

// HideFields returns a decorator that marks the named keys hidden. Hidden
// fields stay in the tree so their values still bind, and groups are walked.
func HideFields(keys ...string) model.Decorator {
	hidden := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		hidden[key] = struct{}{}
	}
	return model.DecoratorFunc(func(fields []model.FieldConfig) ([]model.FieldConfig, error) {
		return hideFields(fields, hidden), nil
	})
}

func hideFields(fields []model.FieldConfig, hidden map[string]struct{}) []model.FieldConfig {
	if len(hidden) == 0 {
		return fields
	}
	out := make([]model.FieldConfig, len(fields))
	for idx, field := range fields {
		if field.IsGroup() {
			field.FieldGroup = hideFields(field.FieldGroup, hidden)
		} else if _, ok := hidden[field.Key]; ok {
			field.Hide = true
		}
		out[idx] = field
	}
	return out
}
