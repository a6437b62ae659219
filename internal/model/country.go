package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValuationBasis enum constants
const (
	ValuationCIF         = "CIF"         // invoice value + freight + insurance
	ValuationTransaction = "TRANSACTION" // invoice value only
)

// Country is the canonical reference entry the validator resolves
// importing/exporting identifiers against.
type Country struct {
	CountryCode string    `gorm:"type:varchar(2);primaryKey" json:"country_code"`
	CountryName string    `gorm:"type:varchar(100);not null;index" json:"country_name"`
	Iso3Code    string    `gorm:"type:varchar(3)" json:"iso3_code"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CountryProfile carries the per-importing-country calculation policy.
// A country without a profile falls back to CIF valuation, zero VAT,
// VAT base including duties and remedies stacked on customs value.
type CountryProfile struct {
	CountryCode       string           `gorm:"type:varchar(2);primaryKey" json:"country_code"`
	ValuationBasis    string           `gorm:"type:varchar(20);not null;default:CIF" json:"valuation_basis"` // CIF or TRANSACTION
	VatOrGstRate      *decimal.Decimal `gorm:"type:decimal(6,4)" json:"vat_or_gst_rate"`                     // fraction, e.g. 0.0900 for 9%
	VatIncludesDuties *bool            `json:"vat_includes_duties"`                                          // nil defaults to true
	StackRemediesOnCV *bool            `json:"stack_remedies_on_cv"`                                         // nil defaults to true
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}
