// Package httpapi exposes the form engine over HTTP so non-Go clients can
// request field trees, normalised models, option lists and error mappings.
package httpapi
