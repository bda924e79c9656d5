// Package model defines shared data types used across the scraper pipeline.
//
// TradeResult mirrors the spimex_trading_results table; its length
// constraints are enforced by Validate before any row reaches storage.
// Volume, total and count are whole units as published in the bulletins.
package model
