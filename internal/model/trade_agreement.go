package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeAgreement defines the validity window for its preferential rates.
// Deleting an agreement cascades to its rates explicitly in the service
// layer; there is no live object graph between the two.
type TradeAgreement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"` // "USMCA", "CPTPP", ...
	EffectiveDate time.Time `gorm:"type:date;not null" json:"effective_date"`
	ExpiryDate    time.Time `gorm:"type:date;not null" json:"expiry_date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PreferentialRate is an FTA rate for (origin, destination, hs_code),
// owned by a TradeAgreement through a plain foreign-key field. The rate
// is a fraction (0.05 for 5%), applied only while the owning agreement
// is inside its validity window.
type PreferentialRate struct {
	ID                     uint            `gorm:"primaryKey" json:"id"`
	TradeAgreementID       uint            `gorm:"not null;index" json:"trade_agreement_id"`
	HsCode                 string          `gorm:"type:varchar(12);not null;index:idx_pref_tuple" json:"hs_code"`
	OriginCountryCode      string          `gorm:"type:varchar(2);not null;index:idx_pref_tuple" json:"origin_country_code"`
	DestinationCountryCode string          `gorm:"type:varchar(2);not null;index:idx_pref_tuple" json:"destination_country_code"`
	Rate                   decimal.Decimal `gorm:"type:decimal(5,4);not null" json:"rate"`
	Condition              string          `gorm:"type:varchar(1000)" json:"condition,omitempty"` // free text, e.g. "fresh beef only"
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}
