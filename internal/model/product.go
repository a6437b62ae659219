package model

import "time"

// Product is the HS-code reference entry used for description lookups.
type Product struct {
	HsCode      string    `gorm:"type:varchar(12);primaryKey" json:"hs_code"`
	Description string    `gorm:"type:varchar(500);not null" json:"description"`
	Category    string    `gorm:"type:varchar(100)" json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
