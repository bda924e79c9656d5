// Package scrape coordinates full pipeline runs.
//
// A run walks the bulletin listing for new links, downloads the files into a
// scratch directory, extracts trade rows from each spreadsheet and persists
// everything in one transaction. At most one run is active per process; a
// trigger during an active run is rejected rather than queued.
package scrape
