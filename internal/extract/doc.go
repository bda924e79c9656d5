// Package extract parses downloaded bulletin spreadsheets into TradeResult
// rows.
//
// Each file yields one row group so that persistence can report provenance
// per bulletin. Parsing is CPU-bound and runs on a bounded worker pool.
// The bulletin layout is located by its unit-of-measure marker and header
// text rather than fixed cell coordinates; the layout has drifted between
// years and cell positions are not a stable contract.
package extract
