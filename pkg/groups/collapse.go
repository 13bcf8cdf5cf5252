package groups

import "github.com/goliatone/go-dynform/pkg/model"

// Collapsed reports whether group should render collapsed. Collapsible
// groups stay collapsed unless the form was submitted and one of their
// visible members is invalid. Non-collapsible nodes are never collapsed.
func Collapsed(group model.FieldConfig, submitted bool, invalid func(key string) bool) bool {
	if !group.IsGroup() ||
		!group.BoolProp("collapsibleFieldGroups") ||
		!group.BoolProp("collapsibleFieldGroupsCollapsed") {
		return false
	}
	if !submitted || invalid == nil {
		return true
	}
	for _, member := range group.FieldGroup {
		if member.Hide {
			continue
		}
		if invalid(member.Key) {
			return false
		}
	}
	return true
}

func collapseExpression(ctx model.ExpressionContext) any {
	if ctx.Field == nil {
		return false
	}
	return Collapsed(*ctx.Field, ctx.Submitted, ctx.Invalid)
}
