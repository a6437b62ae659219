package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdditionalDuty maps (importing, exporting, hs_code) to the remedial
// rates stacked on top of the base duty inside a validity window.
// All four rates are fractions of customs value (0.25 for 25%); absent
// or non-positive rates simply do not contribute. Multiple rows per
// tuple are allowed as long as their windows do not overlap.
type AdditionalDuty struct {
	ID                   uint             `gorm:"primaryKey" json:"id"`
	ImportingCountryCode string           `gorm:"type:varchar(2);not null;index:idx_addduty_tuple" json:"importing_country_code"`
	ExportingCountryCode string           `gorm:"type:varchar(2);not null;index:idx_addduty_tuple" json:"exporting_country_code"`
	HsCode               string           `gorm:"type:varchar(12);not null;index:idx_addduty_tuple" json:"hs_code"`
	SpecialTariffRate    *decimal.Decimal `gorm:"type:decimal(12,6)" json:"special_tariff_rate"` // e.g. Section 301 style measures
	AntiDumpingRate      *decimal.Decimal `gorm:"type:decimal(12,6)" json:"anti_dumping_rate"`
	CountervailingRate   *decimal.Decimal `gorm:"type:decimal(12,6)" json:"countervailing_rate"`
	SafeguardRate        *decimal.Decimal `gorm:"type:decimal(12,6)" json:"safeguard_rate"`
	EffectiveFrom        time.Time        `gorm:"type:date;not null;index" json:"effective_from"`
	EffectiveTo          time.Time        `gorm:"type:date;not null;index" json:"effective_to"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}
