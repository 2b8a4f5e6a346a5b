// Package admin implements the operator change-list surface.
//
// Operators filter a list of records, select some or all of them, and run a
// named bulk action against the selection. Actions come from a process-wide
// registry (built-in and scripted) plus actions bound to a single view; the
// registry page lets operators disable and re-enable global actions at
// runtime and shows the audit log of recent invocations.
package admin
