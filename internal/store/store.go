package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"spimex-data/internal/model"
)

// TableName is the trading-results table.
const TableName = "spimex_trading_results"

// NoTableSentinel is returned by CountRows when the table does not exist,
// signalling that a migration is required before any scrape run.
const NoTableSentinel = -1

// Store is the repository for persisted trading results.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New creates a Store.
func New(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		pool:   pool,
		logger: logger,
	}
}

// Version returns the database server version, as a connectivity check.
func (s *Store) Version(ctx context.Context) (string, error) {
	var version string
	if err := s.pool.QueryRow(ctx, "SELECT version()").Scan(&version); err != nil {
		return "", fmt.Errorf("select version: %w", err)
	}
	return version, nil
}

// CountRows returns the number of persisted rows, or NoTableSentinel when
// the table has not been migrated yet.
func (s *Store) CountRows(ctx context.Context) (int64, error) {
	var regclass *string
	if err := s.pool.QueryRow(ctx, "SELECT to_regclass($1)::text", TableName).Scan(&regclass); err != nil {
		return 0, fmt.Errorf("check table existence: %w", err)
	}
	if regclass == nil {
		s.logger.Warn("trading results table does not exist", "table", TableName)
		return NoTableSentinel, nil
	}

	var count int64
	if err := s.pool.QueryRow(ctx, "SELECT count(id) FROM "+TableName).Scan(&count); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return count, nil
}

// LastTradeDate returns the most recent persisted trading date, or nil when
// the table is empty. Discovery uses it as the incremental boundary.
func (s *Store) LastTradeDate(ctx context.Context) (*time.Time, error) {
	var date time.Time
	err := s.pool.QueryRow(ctx,
		"SELECT date FROM "+TableName+" ORDER BY date DESC LIMIT 1",
	).Scan(&date)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query last trade date: %w", err)
	}
	return &date, nil
}

// SaveAll validates every row of every group and persists them in a single
// transaction with one commit. Any validation failure rejects the entire
// batch before a transaction is opened; any insert failure rolls it back.
// Storage assigns identity and timestamp columns.
func (s *Store) SaveAll(ctx context.Context, groups [][]model.TradeResult) error {
	total := 0
	for gi, group := range groups {
		for ri := range group {
			if err := group[ri].Validate(); err != nil {
				return fmt.Errorf("group %d row %d: %w", gi, ri, err)
			}
		}
		total += len(group)
	}
	if total == 0 {
		s.logger.Info("no rows to persist")
		return nil
	}

	start := time.Now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, group := range groups {
		for _, r := range group {
			batch.Queue(`
				INSERT INTO `+TableName+`
				(exchange_product_id, exchange_product_name, oil_id, delivery_basis_id,
				 delivery_basis_name, delivery_type_id, volume, total, count, date)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			`, r.ExchangeProductID, r.ExchangeProductName, r.OilID, r.DeliveryBasisID,
				r.DeliveryBasisName, r.DeliveryTypeID, r.Volume, r.Total, r.Count, r.Date)
		}
	}

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < total; i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.Info("trading results persisted",
		"groups", len(groups),
		"rows", total,
		"duration", time.Since(start),
	)
	return nil
}
