package model

import (
	"strings"
	"testing"
	"time"
)

func validResult() TradeResult {
	return TradeResult{
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

func TestValidate(t *testing.T) {
	r := validResult()
	if err := r.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
}

func TestValidateCountsCharactersNotBytes(t *testing.T) {
	// Cyrillic text is two bytes per rune; varchar(255) still fits 255 of
	// them. A 255-rune name must pass, a 256-rune name must not.
	r := validResult()
	r.ExchangeProductName = strings.Repeat("ф", MaxExchangeProductNameLen)
	if err := r.Validate(); err != nil {
		t.Errorf("Validate() rejected %d-rune Cyrillic name: %v", MaxExchangeProductNameLen, err)
	}

	r.DeliveryBasisName = strings.Repeat("ц", MaxDeliveryBasisNameLen)
	if err := r.Validate(); err != nil {
		t.Errorf("Validate() rejected %d-rune Cyrillic basis name: %v", MaxDeliveryBasisNameLen, err)
	}

	r.ExchangeProductName = strings.Repeat("ф", MaxExchangeProductNameLen+1)
	if err := r.Validate(); err == nil {
		t.Errorf("Validate() accepted %d-rune name", MaxExchangeProductNameLen+1)
	}
}

func TestValidateAcceptsMultibyteDeliveryType(t *testing.T) {
	r := validResult()
	r.DeliveryTypeID = "Ф" // one rune, two bytes
	if err := r.Validate(); err != nil {
		t.Errorf("Validate() rejected single Cyrillic delivery type: %v", err)
	}
}

func TestValidateRejectsBadFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TradeResult)
		wantSub string
	}{
		{
			name:    "product id too long",
			mutate:  func(r *TradeResult) { r.ExchangeProductID = "A100ANS060FX" },
			wantSub: "exchange_product_id",
		},
		{
			name:    "empty product name",
			mutate:  func(r *TradeResult) { r.ExchangeProductName = "" },
			wantSub: "exchange_product_name",
		},
		{
			name:    "oil id too long",
			mutate:  func(r *TradeResult) { r.OilID = "A100X" },
			wantSub: "oil_id",
		},
		{
			name:    "basis id too long",
			mutate:  func(r *TradeResult) { r.DeliveryBasisID = "ANSX" },
			wantSub: "delivery_basis_id",
		},
		{
			name:    "delivery type two chars",
			mutate:  func(r *TradeResult) { r.DeliveryTypeID = "FF" },
			wantSub: "delivery_type_id",
		},
		{
			name:    "delivery type empty",
			mutate:  func(r *TradeResult) { r.DeliveryTypeID = "" },
			wantSub: "delivery_type_id",
		},
		{
			name:    "zero date",
			mutate:  func(r *TradeResult) { r.Date = time.Time{} },
			wantSub: "date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validResult()
			tt.mutate(&r)
			err := r.Validate()
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantSub)
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("Validate() error = %q, want it to mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestDeriveIDs(t *testing.T) {
	r := TradeResult{ExchangeProductID: "A100ANS060F"}
	if err := r.DeriveIDs(); err != nil {
		t.Fatalf("DeriveIDs() unexpected error: %v", err)
	}

	if r.OilID != "A100" {
		t.Errorf("OilID = %q, want %q", r.OilID, "A100")
	}
	if r.DeliveryBasisID != "ANS" {
		t.Errorf("DeliveryBasisID = %q, want %q", r.DeliveryBasisID, "ANS")
	}
	if r.DeliveryTypeID != "F" {
		t.Errorf("DeliveryTypeID = %q, want %q", r.DeliveryTypeID, "F")
	}
}

func TestDeriveIDsShortCode(t *testing.T) {
	r := TradeResult{ExchangeProductID: "A100"}
	if err := r.DeriveIDs(); err == nil {
		t.Error("DeriveIDs() expected error for short product id, got nil")
	}
}
