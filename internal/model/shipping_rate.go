package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShippingMode enum constants
const (
	ShippingModeAir  = "AIR"
	ShippingModeSea  = "SEA"
	ShippingModeLand = "LAND"
)

// ShippingRate holds the per-kg freight rates for a country pair.
// LandRate is nullable: nil means no land route exists between the pair
// (a LAND calculation fails), while a present zero value means an
// explicitly free land leg. DistanceKM is the land distance used by the
// LAND formula.
type ShippingRate struct {
	ID                   uint             `gorm:"primaryKey" json:"id"`
	ImportingCountryCode string           `gorm:"type:varchar(2);not null;uniqueIndex:idx_shipping_pair" json:"importing_country_code"`
	ExportingCountryCode string           `gorm:"type:varchar(2);not null;uniqueIndex:idx_shipping_pair" json:"exporting_country_code"`
	AirRate              decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"air_rate"`
	SeaRate              decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"sea_rate"`
	LandRate             *decimal.Decimal `gorm:"type:decimal(10,2)" json:"land_rate"`
	DistanceKM           decimal.Decimal  `gorm:"type:decimal(10,2)" json:"distance_km"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}
