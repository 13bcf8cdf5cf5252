// Package submission sends form models to the API and reconciles the
// server's validation answers with the live form.
package submission
