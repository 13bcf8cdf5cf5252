// Package orchestrator wires the form engine together: schema normalisation,
// widget resolution, option loading, grouping and decoration. It holds the
// session-scoped option cache, so one Orchestrator should live as long as the
// session whose forms it builds.
package orchestrator
