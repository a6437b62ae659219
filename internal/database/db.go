package database

import (
	"log"

	"tariffengine/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.Country{},
		&model.CountryProfile{},
		&model.Product{},
		&model.TariffRate{},
		&model.TradeAgreement{},
		&model.PreferentialRate{},
		&model.AdditionalDuty{},
		&model.ShippingRate{},
		&model.SearchHistory{},
		&model.AuditLog{},
		&model.User{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}
