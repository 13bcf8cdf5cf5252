// Package model builds FieldConfig nodes from normalised field schemas and
// prepares resource payloads for the live form model.
package model
