package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateTariffRate = "CREATE_TARIFF_RATE"
	ActionUpdateTariffRate = "UPDATE_TARIFF_RATE"
	ActionDeleteTariffRate = "DELETE_TARIFF_RATE"

	ActionCreateTradeAgreement   = "CREATE_TRADE_AGREEMENT"
	ActionUpdateTradeAgreement   = "UPDATE_TRADE_AGREEMENT"
	ActionDeleteTradeAgreement   = "DELETE_TRADE_AGREEMENT"
	ActionCreatePreferentialRate = "CREATE_PREFERENTIAL_RATE"
	ActionDeletePreferentialRate = "DELETE_PREFERENTIAL_RATE"

	ActionCreateShippingRate = "CREATE_SHIPPING_RATE"
	ActionUpdateShippingRate = "UPDATE_SHIPPING_RATE"
	ActionDeleteShippingRate = "DELETE_SHIPPING_RATE"

	ActionCreateAdditionalDuty = "CREATE_ADDITIONAL_DUTY"
	ActionDeleteAdditionalDuty = "DELETE_ADDITIONAL_DUTY"

	ActionUpsertCountryProfile = "UPSERT_COUNTRY_PROFILE"
	ActionClearRateCache       = "CLEAR_RATE_CACHE"
)

// AuditLog tracks Who, What, and When for catalogue changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated job
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (id/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
