package repository

import (
	"context"
	"errors"

	"tariffengine/internal/model"

	"gorm.io/gorm"
)

type ShippingRateRepository interface {
	FindByPair(ctx context.Context, importing, exporting string) (model.ShippingRate, bool, error)
	FindByID(ctx context.Context, id uint) (model.ShippingRate, bool, error)
	List(ctx context.Context, page, limit int) ([]model.ShippingRate, int64, error)
	Create(ctx context.Context, rate *model.ShippingRate) error
	Update(ctx context.Context, rate *model.ShippingRate) error
	Delete(ctx context.Context, id uint) error
}

type shippingRateRepository struct {
	db *gorm.DB
}

func NewShippingRateRepository(db *gorm.DB) ShippingRateRepository {
	return &shippingRateRepository{db: db}
}

func (r *shippingRateRepository) FindByPair(ctx context.Context, importing, exporting string) (model.ShippingRate, bool, error) {
	var rate model.ShippingRate
	err := GetDB(ctx, r.db).
		Where("importing_country_code = ? AND exporting_country_code = ?", importing, exporting).
		First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.ShippingRate{}, false, nil
		}
		return model.ShippingRate{}, false, err
	}
	return rate, true, nil
}

func (r *shippingRateRepository) FindByID(ctx context.Context, id uint) (model.ShippingRate, bool, error) {
	var rate model.ShippingRate
	err := GetDB(ctx, r.db).First(&rate, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.ShippingRate{}, false, nil
		}
		return model.ShippingRate{}, false, err
	}
	return rate, true, nil
}

func (r *shippingRateRepository) List(ctx context.Context, page, limit int) ([]model.ShippingRate, int64, error) {
	var rates []model.ShippingRate
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.ShippingRate{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("importing_country_code asc, exporting_country_code asc").Offset(offset).Limit(limit).Find(&rates).Error; err != nil {
		return nil, 0, err
	}

	return rates, total, nil
}

func (r *shippingRateRepository) Create(ctx context.Context, rate *model.ShippingRate) error {
	return GetDB(ctx, r.db).Create(rate).Error
}

func (r *shippingRateRepository) Update(ctx context.Context, rate *model.ShippingRate) error {
	return GetDB(ctx, r.db).Save(rate).Error
}

func (r *shippingRateRepository) Delete(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.ShippingRate{}).Error
}
