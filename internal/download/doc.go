// Package download fetches discovered bulletin files into the run's scratch
// directory.
//
// All links are issued concurrently and bounded by the site client's shared
// connection pool. A failed download is logged and recorded in the batch
// Report; it never aborts sibling downloads. Missing files simply do not
// reach extraction.
package download
