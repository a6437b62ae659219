package repository

import (
	"context"
	"errors"

	"tariffengine/internal/model"

	"gorm.io/gorm"
)

// CountryRepository resolves country identifiers and calculation profiles.
// Lookup methods report absence through the boolean instead of an error so
// callers branch explicitly on "not found".
type CountryRepository interface {
	FindByCode(ctx context.Context, code string) (model.Country, bool, error)
	FindByName(ctx context.Context, name string) (model.Country, bool, error)
	FindProfile(ctx context.Context, code string) (model.CountryProfile, bool, error)
	List(ctx context.Context, page, limit int) ([]model.Country, int64, error)
	Create(ctx context.Context, country *model.Country) error
	UpsertProfile(ctx context.Context, profile *model.CountryProfile) error
}

type countryRepository struct {
	db *gorm.DB
}

func NewCountryRepository(db *gorm.DB) CountryRepository {
	return &countryRepository{db: db}
}

func (r *countryRepository) FindByCode(ctx context.Context, code string) (model.Country, bool, error) {
	var country model.Country
	err := GetDB(ctx, r.db).First(&country, "UPPER(country_code) = UPPER(?)", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Country{}, false, nil
		}
		return model.Country{}, false, err
	}
	return country, true, nil
}

func (r *countryRepository) FindByName(ctx context.Context, name string) (model.Country, bool, error) {
	var country model.Country
	err := GetDB(ctx, r.db).First(&country, "LOWER(country_name) = LOWER(?)", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Country{}, false, nil
		}
		return model.Country{}, false, err
	}
	return country, true, nil
}

func (r *countryRepository) FindProfile(ctx context.Context, code string) (model.CountryProfile, bool, error) {
	var profile model.CountryProfile
	err := GetDB(ctx, r.db).First(&profile, "UPPER(country_code) = UPPER(?)", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.CountryProfile{}, false, nil
		}
		return model.CountryProfile{}, false, err
	}
	return profile, true, nil
}

func (r *countryRepository) List(ctx context.Context, page, limit int) ([]model.Country, int64, error) {
	var countries []model.Country
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Country{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("country_name asc").Offset(offset).Limit(limit).Find(&countries).Error; err != nil {
		return nil, 0, err
	}

	return countries, total, nil
}

func (r *countryRepository) Create(ctx context.Context, country *model.Country) error {
	return GetDB(ctx, r.db).Create(country).Error
}

func (r *countryRepository) UpsertProfile(ctx context.Context, profile *model.CountryProfile) error {
	return GetDB(ctx, r.db).Save(profile).Error
}
