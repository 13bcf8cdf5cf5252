// Package prompt fills a form from the terminal. Each field of the tree is
// asked for with a prompt matching its widget kind, and answers are written
// back into the form controls.
package prompt
