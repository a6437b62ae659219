package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SearchHistory records a completed calculation for later review.
// Written best-effort after each successful calculation; never read by
// the calculation pipeline itself.
type SearchHistory struct {
	ID                   uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ImportingCountryCode string          `gorm:"type:varchar(2);not null;index" json:"importing_country_code"`
	ExportingCountryCode string          `gorm:"type:varchar(2);not null;index" json:"exporting_country_code"`
	HsCode               string          `gorm:"type:varchar(12);index" json:"hs_code"`
	ShippingMode         string          `gorm:"type:varchar(10)" json:"shipping_mode"`
	ProductValue         decimal.Decimal `gorm:"type:decimal(18,2)" json:"product_value"`
	TotalCost            decimal.Decimal `gorm:"type:decimal(18,2)" json:"total_cost"`
	CreatedAt            time.Time       `gorm:"index" json:"created_at"`
}
