// Package store is the PostgreSQL repository for trading results.
//
// A scrape run's rows are committed in exactly one transaction: either all
// extracted rows land or none do. Read queries back the public API and are
// cached a level above.
package store
