// Package cache provides the Redis response cache for API queries and the
// scheduled daily flush that keeps stale results bounded.
package cache
