// Package discovery implements bulletin link discovery on the exchange
// listing site.
//
// The listing is paginated newest-first. Discovery walks accordion entries
// in document order, collecting download links until it sees a date already
// persisted or a date in the historical cutoff year, then stops across all
// pages. Malformed entries abort the run rather than being skipped; broken
// markup means the site changed and the dataset can no longer be trusted.
package discovery
