// Package server exposes the HTTP API: health and database checks, scrape
// run control, and cached read queries over persisted trading results.
package server
