// Package groups assembles flat field lists into grouped, collapsible
// sections. Group definitions come from callers, from the schema's
// _attributeGroups, or from JSON/YAML files loaded with LoadFS.
package groups
