package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TariffType enum constants. Duty computation dispatches on these through
// an exhaustive switch; an unrecognised value is an error, never a
// fallthrough.
const (
	TariffTypeAdValorem = "AD_VALOREM" // percent of value
	TariffTypeSpecific  = "SPECIFIC"   // amount per unit (kg or head)
	TariffTypeCompound  = "COMPOUND"   // percent leg + specific leg
	TariffTypeMixedMax  = "MIXED_MAX"  // max(percent leg, specific leg)
	TariffTypeMixedMin  = "MIXED_MIN"  // min(percent leg, specific leg)
)

// UnitBasis enum constants for specific-duty quantity selection
const (
	UnitBasisKG   = "KG"
	UnitBasisHead = "HEAD"
)

// TariffRate is one MFN duty regime entry keyed by
// (hs_code, importing, exporting[, year]). Percent legs are stored as
// percentage point values (7.5 means 7.5%) and divided by 100 at the
// moment of multiplication. Multiple years may coexist per tuple; an
// entry is immutable for its year once persisted.
type TariffRate struct {
	ID                   uint             `gorm:"primaryKey" json:"id"`
	HsCode               string           `gorm:"type:varchar(12);not null;index:idx_tariff_tuple" json:"hs_code"`
	ImportingCountryCode string           `gorm:"type:varchar(2);not null;index:idx_tariff_tuple" json:"importing_country_code"`
	ExportingCountryCode string           `gorm:"type:varchar(2);not null;index:idx_tariff_tuple" json:"exporting_country_code"`
	Year                 *int             `gorm:"index" json:"year"`
	TariffType           string           `gorm:"type:varchar(20);not null;default:AD_VALOREM" json:"tariff_type"`
	AdValoremRate        *decimal.Decimal `gorm:"type:decimal(12,6)" json:"ad_valorem_rate"`
	SpecificRateAmount   *decimal.Decimal `gorm:"type:decimal(18,6)" json:"specific_rate_amount"`
	CompoundPercent      *decimal.Decimal `gorm:"type:decimal(12,6)" json:"compound_percent"`
	CompoundSpecific     *decimal.Decimal `gorm:"type:decimal(18,6)" json:"compound_specific"`
	MixedPercent         *decimal.Decimal `gorm:"type:decimal(12,6)" json:"mixed_percent"`
	MixedSpecific        *decimal.Decimal `gorm:"type:decimal(18,6)" json:"mixed_specific"`
	UnitBasis            string           `gorm:"type:varchar(10);default:KG" json:"unit_basis"` // KG or HEAD
	DataSource           string           `gorm:"type:varchar(50)" json:"data_source"`           // e.g. "manual_entry", "enrichment"
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}
