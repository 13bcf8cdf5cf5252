// Package model defines the field configuration tree produced by the engine
// and consumed by renderers. A FieldConfig is either a single input (Key and
// WidgetType set) or a group node whose members live in FieldGroup. Generic
// per-field attributes (required, label, length bounds, current payload
// value) are typed; widget-specific template options such as `multiple`,
// `showAddNewUserButton`, `locale` or `rtl` travel in Props. Option lists are
// exposed through OptionSource so they stay lazy until a consumer asks for
// them, and computed properties are expressed as Expression functions instead
// of being baked into the snapshot.
package model
