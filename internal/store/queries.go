package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"spimex-data/internal/model"
)

const selectColumns = `SELECT id, exchange_product_id, exchange_product_name, oil_id,
	delivery_basis_id, delivery_basis_name, delivery_type_id,
	volume, total, count, date, created_on, updated_on
	FROM ` + TableName

// TradeFilter holds optional instrument filters for result queries.
// Empty fields are not applied.
type TradeFilter struct {
	OilID           string
	DeliveryTypeID  string
	DeliveryBasisID string
}

// Empty reports whether no filter field is set.
func (f TradeFilter) Empty() bool {
	return f.OilID == "" && f.DeliveryTypeID == "" && f.DeliveryBasisID == ""
}

// LastTradingDates returns the dates of the most recent trading days,
// newest first, formatted as YYYY-MM-DD.
func (s *Store) LastTradingDates(ctx context.Context, days int) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT DISTINCT date FROM "+TableName+" ORDER BY date DESC LIMIT $1", days)
	if err != nil {
		return nil, fmt.Errorf("query last trading dates: %w", err)
	}
	defer rows.Close()

	dates := []string{}
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan trading date: %w", err)
		}
		dates = append(dates, d.Format("2006-01-02"))
	}
	return dates, rows.Err()
}

// Dynamics returns trades for the given instrument over a date range.
// All three filter fields are required by the API layer.
func (s *Store) Dynamics(ctx context.Context, f TradeFilter, start, end time.Time) ([]model.TradeResult, error) {
	rows, err := s.pool.Query(ctx, selectColumns+`
		WHERE oil_id = $1 AND delivery_type_id = $2 AND delivery_basis_id = $3
		AND date BETWEEN $4 AND $5
		ORDER BY date`,
		f.OilID, f.DeliveryTypeID, f.DeliveryBasisID, start, end)
	if err != nil {
		return nil, fmt.Errorf("query dynamics: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

// TradingResults returns the latest trades matching the filter, newest first.
func (s *Store) TradingResults(ctx context.Context, f TradeFilter, limit int) ([]model.TradeResult, error) {
	where := ""
	args := []any{}
	appendCond := func(col, val string) {
		if val == "" {
			return
		}
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		args = append(args, val)
		where += col + " = $" + strconv.Itoa(len(args))
	}
	appendCond("oil_id", f.OilID)
	appendCond("delivery_type_id", f.DeliveryTypeID)
	appendCond("delivery_basis_id", f.DeliveryBasisID)

	args = append(args, limit)
	query := selectColumns + where + " ORDER BY date DESC LIMIT $" + strconv.Itoa(len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query trading results: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func scanResults(rows pgx.Rows) ([]model.TradeResult, error) {
	results := []model.TradeResult{}
	for rows.Next() {
		var r model.TradeResult
		err := rows.Scan(&r.ID, &r.ExchangeProductID, &r.ExchangeProductName, &r.OilID,
			&r.DeliveryBasisID, &r.DeliveryBasisName, &r.DeliveryTypeID,
			&r.Volume, &r.Total, &r.Count, &r.Date, &r.CreatedOn, &r.UpdatedOn)
		if err != nil {
			return nil, fmt.Errorf("scan trade result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
