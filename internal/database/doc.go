// Package database provides connection pool management for PostgreSQL.
//
// The service keeps a single pgx pool for the spimex_trading_results table;
// connection strings are built from config with URL-escaped credentials.
package database
