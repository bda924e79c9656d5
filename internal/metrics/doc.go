// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Scrape run counts (started, failed, rejected by single-flight)
//   - Per-stage pipeline durations
//   - Rows persisted and downloads failed
package metrics
