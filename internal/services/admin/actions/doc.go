// Package actions implements bulk actions for admin list views.
//
// Operators select records on a list view and apply one named action to all of
// them in a single request. Actions are registered process-wide in a Registry
// or bound to a single View, resolved per request by a ViewResolver into an
// EnabledSet, and executed by a Dispatcher that validates the request, resolves
// the selection into records and turns the handler Result into an Outcome the
// HTTP layer can render.
//
// The package never talks to storage or HTTP directly; records come from a
// storage.Collection and responses leave as http.Handler values.
package actions
