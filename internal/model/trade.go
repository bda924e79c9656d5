package model

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Column widths of the spimex_trading_results table, in characters: varchar
// limits count runes, and product and basis names are Cyrillic. Rows violating
// them are rejected before persistence, never truncated.
const (
	MaxExchangeProductIDLen   = 11
	MaxExchangeProductNameLen = 255
	MaxOilIDLen               = 4
	MaxDeliveryBasisIDLen     = 3
	MaxDeliveryBasisNameLen   = 255
	DeliveryTypeIDLen         = 1
)

// TradeResult is one row of a daily oil-products trading bulletin.
type TradeResult struct {
	ID                  int64     `json:"id"` // assigned by storage
	ExchangeProductID   string    `json:"exchange_product_id"`
	ExchangeProductName string    `json:"exchange_product_name"`
	OilID               string    `json:"oil_id"`
	DeliveryBasisID     string    `json:"delivery_basis_id"`
	DeliveryBasisName   string    `json:"delivery_basis_name"`
	DeliveryTypeID      string    `json:"delivery_type_id"`
	Volume              int64     `json:"volume"`
	Total               int64     `json:"total"`
	Count               int64     `json:"count"`
	Date                time.Time `json:"date"` // trading session date
	CreatedOn           time.Time `json:"created_on"` // assigned by storage
	UpdatedOn           time.Time `json:"updated_on"` // assigned by storage
}

// Validate checks all length constraints against the table schema. Lengths
// are counted in runes, matching varchar semantics.
func (r *TradeResult) Validate() error {
	if r.ExchangeProductID == "" || utf8.RuneCountInString(r.ExchangeProductID) > MaxExchangeProductIDLen {
		return fmt.Errorf("exchange_product_id %q must be 1-%d chars", r.ExchangeProductID, MaxExchangeProductIDLen)
	}
	if r.ExchangeProductName == "" || utf8.RuneCountInString(r.ExchangeProductName) > MaxExchangeProductNameLen {
		return fmt.Errorf("exchange_product_name %q must be 1-%d chars", r.ExchangeProductName, MaxExchangeProductNameLen)
	}
	if r.OilID == "" || utf8.RuneCountInString(r.OilID) > MaxOilIDLen {
		return fmt.Errorf("oil_id %q must be 1-%d chars", r.OilID, MaxOilIDLen)
	}
	if r.DeliveryBasisID == "" || utf8.RuneCountInString(r.DeliveryBasisID) > MaxDeliveryBasisIDLen {
		return fmt.Errorf("delivery_basis_id %q must be 1-%d chars", r.DeliveryBasisID, MaxDeliveryBasisIDLen)
	}
	if r.DeliveryBasisName == "" || utf8.RuneCountInString(r.DeliveryBasisName) > MaxDeliveryBasisNameLen {
		return fmt.Errorf("delivery_basis_name %q must be 1-%d chars", r.DeliveryBasisName, MaxDeliveryBasisNameLen)
	}
	if utf8.RuneCountInString(r.DeliveryTypeID) != DeliveryTypeIDLen {
		return fmt.Errorf("delivery_type_id %q must be exactly %d char", r.DeliveryTypeID, DeliveryTypeIDLen)
	}
	if r.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	return nil
}

// DeriveIDs fills OilID, DeliveryBasisID and DeliveryTypeID from the exchange
// product id. Instrument codes encode them positionally: the first four
// characters are the oil code, the next three the delivery basis, the last
// one the delivery type (e.g. "A100ANS060F" -> A100 / ANS / F).
func (r *TradeResult) DeriveIDs() error {
	if len(r.ExchangeProductID) < MaxOilIDLen+MaxDeliveryBasisIDLen+DeliveryTypeIDLen {
		return fmt.Errorf("exchange_product_id %q too short to derive instrument ids", r.ExchangeProductID)
	}
	r.OilID = r.ExchangeProductID[:MaxOilIDLen]
	r.DeliveryBasisID = r.ExchangeProductID[MaxOilIDLen : MaxOilIDLen+MaxDeliveryBasisIDLen]
	r.DeliveryTypeID = r.ExchangeProductID[len(r.ExchangeProductID)-DeliveryTypeIDLen:]
	return nil
}

// DiscoveredLink is a bulletin download candidate found on the listing site.
// It lives only for the duration of one scrape run.
type DiscoveredLink struct {
	URL      string // absolute download URL
	Filename string // destination name, "{dd.mm.yyyy}.{ext}"
}
