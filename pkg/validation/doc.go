// Package validation maps server-side validation failures back onto the form
// controls that produced them.
//
// A failure addresses an attribute by its bare name ("subject", "assignee").
// Scalar attributes live at the top of the control tree while relations live
// under "_links", so an error is looked up in two explicit steps: directly by
// key, then inside the relations namespace. Errors that match neither are
// dropped.
package validation
