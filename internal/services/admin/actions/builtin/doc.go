// Package builtin provides the bulk actions shipped with the admin service:
// the global delete_selected action and field update handlers bound to views.
package builtin
