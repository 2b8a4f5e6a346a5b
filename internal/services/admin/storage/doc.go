// Package storage defines persistence contracts for operator-facing admin artifacts.
//
// The bulk-action engine only sees the Collection contract; concrete record
// types and their SQL live behind it so handlers stay testable with fakes.
package storage
