package groups

import (
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/schema"
)

// Assemble flattens any previous grouping, then places every keyed field in
// the first definition whose filter accepts it. Ungrouped fields come first
// in their original order, followed by the non-empty groups in definition
// order. Each field lands in at most one group.
func Assemble(defs []model.FieldGroupConfig, fields []model.FieldConfig) []model.FieldConfig {
	flat := Flatten(fields)
	if len(defs) == 0 {
		return flat
	}

	members := make([][]model.FieldConfig, len(defs))
	out := make([]model.FieldConfig, 0, len(flat)+len(defs))
	for _, field := range flat {
		idx := match(defs, field)
		if idx < 0 {
			out = append(out, field)
			continue
		}
		members[idx] = append(members[idx], field)
	}

	for idx, def := range defs {
		if len(members[idx]) == 0 {
			continue
		}
		out = append(out, groupNode(def, members[idx]))
	}
	return out
}

// Flatten removes group nodes, splicing their members in place.
func Flatten(fields []model.FieldConfig) []model.FieldConfig {
	out := make([]model.FieldConfig, 0, len(fields))
	for _, field := range fields {
		if field.IsGroup() {
			out = append(out, Flatten(field.FieldGroup)...)
			continue
		}
		out = append(out, field)
	}
	return out
}

func match(defs []model.FieldGroupConfig, field model.FieldConfig) int {
	if schema.PropertyOf(field.Key) == "" {
		return -1
	}
	for idx, def := range defs {
		if def.Matches(field) {
			return idx
		}
	}
	return -1
}

func groupNode(def model.FieldGroupConfig, members []model.FieldConfig) model.FieldConfig {
	node := model.FieldConfig{
		WidgetType:          model.GroupWidgetType,
		Label:               def.Name,
		Wrappers:            []string{model.GroupWrapper},
		FieldGroupClassName: model.GroupClassName,
		Props: map[string]any{
			"label":                           def.Name,
			"isFieldGroup":                    true,
			"collapsibleFieldGroups":          true,
			"collapsibleFieldGroupsCollapsed": true,
		},
		Expressions: map[string]model.Expression{
			model.CollapsedExpression: collapseExpression,
		},
		FieldGroup: members,
	}
	if def.Settings != nil {
		for k, v := range def.Settings.Props {
			node.Props[k] = v
		}
		for k, v := range def.Settings.Expressions {
			node.Expressions[k] = v
		}
	}
	// The label prop and the node label always agree.
	if label, ok := node.Props["label"].(string); ok && label != "" {
		node.Label = label
	} else {
		node.Props["label"] = node.Label
	}
	return node
}

// FromAttributeGroups turns schema-supplied attribute groups into group
// definitions matching on the field property.
func FromAttributeGroups(groups []schema.AttributeGroup) []model.FieldGroupConfig {
	out := make([]model.FieldGroupConfig, 0, len(groups))
	for _, group := range groups {
		out = append(out, model.FieldGroupConfig{
			Name:   group.Name,
			Filter: ByProperty(group.Attributes...),
		})
	}
	return out
}

// ByProperty matches fields whose property is one of names.
func ByProperty(names ...string) func(model.FieldConfig) bool {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return func(field model.FieldConfig) bool {
		property := field.Property
		if property == "" {
			property = schema.PropertyOf(field.Key)
		}
		_, ok := set[property]
		return ok
	}
}

// ByWidget matches fields rendered with one of kinds.
func ByWidget(kinds ...string) func(model.FieldConfig) bool {
	set := make(map[string]struct{}, len(kinds))
	for _, kind := range kinds {
		set[kind] = struct{}{}
	}
	return func(field model.FieldConfig) bool {
		_, ok := set[field.WidgetType]
		return ok
	}
}
