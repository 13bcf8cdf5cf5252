// Package values serves allowed-values lists as paginated HAL collections,
// the shape option loaders fetch from remote allowedValues links.
//
// Each Endpoint answers GET and HEAD on its own route. The search parameter
// filters by display name with prefix matches first, the page size and
// offset parameters select the page. Responses always carry count and total
// so a loader can tell a partial page from the complete list.
package values
