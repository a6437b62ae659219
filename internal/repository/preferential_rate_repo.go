package repository

import (
	"context"
	"errors"

	"tariffengine/internal/model"

	"gorm.io/gorm"
)

// PreferentialRateRepository backs the narrow FTA lookup and the
// agreement-scoped administration of preferential rates.
type PreferentialRateRepository interface {
	FindByRoute(ctx context.Context, origin, destination, hsCode string) (model.PreferentialRate, bool, error)
	ListByAgreement(ctx context.Context, agreementID uint) ([]model.PreferentialRate, error)
	Create(ctx context.Context, rate *model.PreferentialRate) error
	Delete(ctx context.Context, id uint) error
	DeleteByAgreement(ctx context.Context, agreementID uint) error
}

type preferentialRateRepository struct {
	db *gorm.DB
}

func NewPreferentialRateRepository(db *gorm.DB) PreferentialRateRepository {
	return &preferentialRateRepository{db: db}
}

func (r *preferentialRateRepository) FindByRoute(ctx context.Context, origin, destination, hsCode string) (model.PreferentialRate, bool, error) {
	var rate model.PreferentialRate
	err := GetDB(ctx, r.db).
		Where("origin_country_code = ? AND destination_country_code = ? AND hs_code = ?",
			origin, destination, hsCode).
		First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.PreferentialRate{}, false, nil
		}
		return model.PreferentialRate{}, false, err
	}
	return rate, true, nil
}

func (r *preferentialRateRepository) ListByAgreement(ctx context.Context, agreementID uint) ([]model.PreferentialRate, error) {
	var rates []model.PreferentialRate
	if err := GetDB(ctx, r.db).Where("trade_agreement_id = ?", agreementID).Order("hs_code asc").Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}

func (r *preferentialRateRepository) Create(ctx context.Context, rate *model.PreferentialRate) error {
	return GetDB(ctx, r.db).Create(rate).Error
}

func (r *preferentialRateRepository) Delete(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.PreferentialRate{}).Error
}

func (r *preferentialRateRepository) DeleteByAgreement(ctx context.Context, agreementID uint) error {
	return GetDB(ctx, r.db).Where("trade_agreement_id = ?", agreementID).Delete(&model.PreferentialRate{}).Error
}
