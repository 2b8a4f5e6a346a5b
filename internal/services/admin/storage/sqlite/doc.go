// Package sqlite provides SQLite-backed admin persistence.
//
// It backs the articles list view as a selectable collection and keeps the
// bulk action audit log. Filters are AIP-160 expressions translated by the
// filter package; identifiers are bound as parameters in fixed-size chunks.
package sqlite
