package repository

import (
	"context"
	"errors"

	"tariffengine/internal/model"

	"gorm.io/gorm"
)

// TariffRateRepository is the duty-rate side of the rate store. The tuple
// lookups back the resolver's year-aware fallback chain; mutation methods
// back the admin CRUD surface and the enrichment persist step.
type TariffRateRepository interface {
	FindExact(ctx context.Context, hsCode, importing, exporting string, year int) (model.TariffRate, bool, error)
	// FindAllForTuple returns every rate for (hsCode, importing, exporting),
	// newest insert first, so tie-breaking is deterministic for callers.
	FindAllForTuple(ctx context.Context, hsCode, importing, exporting string) ([]model.TariffRate, error)
	ExistsForTuple(ctx context.Context, hsCode, importing, exporting string, year *int) (bool, error)
	FindByID(ctx context.Context, id uint) (model.TariffRate, bool, error)
	List(ctx context.Context, page, limit int) ([]model.TariffRate, int64, error)
	Create(ctx context.Context, rate *model.TariffRate) error
	Update(ctx context.Context, rate *model.TariffRate) error
	Delete(ctx context.Context, id uint) error
}

type tariffRateRepository struct {
	db *gorm.DB
}

func NewTariffRateRepository(db *gorm.DB) TariffRateRepository {
	return &tariffRateRepository{db: db}
}

func (r *tariffRateRepository) FindExact(ctx context.Context, hsCode, importing, exporting string, year int) (model.TariffRate, bool, error) {
	var rate model.TariffRate
	err := GetDB(ctx, r.db).
		Where("hs_code = ? AND importing_country_code = ? AND exporting_country_code = ? AND year = ?",
			hsCode, importing, exporting, year).
		First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.TariffRate{}, false, nil
		}
		return model.TariffRate{}, false, err
	}
	return rate, true, nil
}

func (r *tariffRateRepository) FindAllForTuple(ctx context.Context, hsCode, importing, exporting string) ([]model.TariffRate, error) {
	var rates []model.TariffRate
	err := GetDB(ctx, r.db).
		Where("hs_code = ? AND importing_country_code = ? AND exporting_country_code = ?",
			hsCode, importing, exporting).
		Order("id desc").
		Find(&rates).Error
	if err != nil {
		return nil, err
	}
	return rates, nil
}

func (r *tariffRateRepository) ExistsForTuple(ctx context.Context, hsCode, importing, exporting string, year *int) (bool, error) {
	query := GetDB(ctx, r.db).Model(&model.TariffRate{}).
		Where("hs_code = ? AND importing_country_code = ? AND exporting_country_code = ?",
			hsCode, importing, exporting)
	if year != nil {
		query = query.Where("year = ?", *year)
	} else {
		query = query.Where("year IS NULL")
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *tariffRateRepository) FindByID(ctx context.Context, id uint) (model.TariffRate, bool, error) {
	var rate model.TariffRate
	err := GetDB(ctx, r.db).First(&rate, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.TariffRate{}, false, nil
		}
		return model.TariffRate{}, false, err
	}
	return rate, true, nil
}

func (r *tariffRateRepository) List(ctx context.Context, page, limit int) ([]model.TariffRate, int64, error) {
	var rates []model.TariffRate
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.TariffRate{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("hs_code asc, year desc nulls last").Offset(offset).Limit(limit).Find(&rates).Error; err != nil {
		return nil, 0, err
	}

	return rates, total, nil
}

func (r *tariffRateRepository) Create(ctx context.Context, rate *model.TariffRate) error {
	return GetDB(ctx, r.db).Create(rate).Error
}

func (r *tariffRateRepository) Update(ctx context.Context, rate *model.TariffRate) error {
	return GetDB(ctx, r.db).Save(rate).Error
}

func (r *tariffRateRepository) Delete(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.TariffRate{}).Error
}
