package store

import (
	"context"
	"fmt"
)

// schema creates the trading-results table. Identity and timestamps are
// assigned by the database; rows are never updated after insert.
const schema = `
CREATE TABLE IF NOT EXISTS ` + TableName + ` (
	id                    serial PRIMARY KEY,
	exchange_product_id   varchar(11)  NOT NULL,
	exchange_product_name varchar(255) NOT NULL,
	oil_id                varchar(4)   NOT NULL,
	delivery_basis_id     varchar(3)   NOT NULL,
	delivery_basis_name   varchar(255) NOT NULL,
	delivery_type_id      varchar(1)   NOT NULL,
	volume                integer      NOT NULL,
	total                 bigint       NOT NULL,
	count                 integer      NOT NULL,
	date                  timestamp    NOT NULL,
	created_on            timestamptz  NOT NULL DEFAULT timezone('utc', now()),
	updated_on            timestamptz  NOT NULL DEFAULT timezone('utc', now())
)`

// Migrate creates the trading-results table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create %s: %w", TableName, err)
	}
	s.logger.Info("schema migrated", "table", TableName)
	return nil
}
