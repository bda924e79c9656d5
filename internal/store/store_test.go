package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"spimex-data/internal/model"
)

func validRow() model.TradeResult {
	return model.TradeResult{
		ExchangeProductID:   "A100ANS060F",
		ExchangeProductName: "Бензин (АИ-100-К5), ст. Аносово",
		OilID:               "A100",
		DeliveryBasisID:     "ANS",
		DeliveryBasisName:   "ст. Аносово",
		DeliveryTypeID:      "F",
		Volume:              60,
		Total:               4500000,
		Count:               2,
		Date:                time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
	}
}

// SaveAll must reject the whole batch on any validation failure before a
// transaction is opened. The store is constructed without a pool: reaching
// the database would panic, proving validation aborts first.
func TestSaveAllRejectsInvalidRowBeforeTransaction(t *testing.T) {
	bad := validRow()
	bad.DeliveryTypeID = "FF" // 2 chars, schema allows exactly 1

	groups := [][]model.TradeResult{
		{validRow(), validRow()},
		{validRow()},
		{validRow(), bad},
	}

	s := New(nil, nil)
	err := s.SaveAll(context.Background(), groups)
	if err == nil {
		t.Fatal("SaveAll expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "delivery_type_id") {
		t.Errorf("error = %v, want delivery_type_id violation", err)
	}
	if !strings.Contains(err.Error(), "group 2 row 1") {
		t.Errorf("error = %v, want offending group/row position", err)
	}
}

func TestSaveAllEmptyBatchIsNoop(t *testing.T) {
	s := New(nil, nil)
	if err := s.SaveAll(context.Background(), nil); err != nil {
		t.Errorf("SaveAll(nil) = %v, want nil", err)
	}
	if err := s.SaveAll(context.Background(), [][]model.TradeResult{{}, {}}); err != nil {
		t.Errorf("SaveAll(empty groups) = %v, want nil", err)
	}
}

func TestTradeFilterEmpty(t *testing.T) {
	if !(TradeFilter{}).Empty() {
		t.Error("zero TradeFilter should be empty")
	}
	if (TradeFilter{OilID: "A100"}).Empty() {
		t.Error("filter with oil id should not be empty")
	}
	if (TradeFilter{DeliveryTypeID: "F"}).Empty() {
		t.Error("filter with delivery type should not be empty")
	}
}
