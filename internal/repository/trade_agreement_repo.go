package repository

import (
	"context"
	"errors"

	"tariffengine/internal/model"

	"gorm.io/gorm"
)

type TradeAgreementRepository interface {
	FindByID(ctx context.Context, id uint) (model.TradeAgreement, bool, error)
	FindByName(ctx context.Context, name string) (model.TradeAgreement, bool, error)
	List(ctx context.Context, page, limit int) ([]model.TradeAgreement, int64, error)
	Create(ctx context.Context, agreement *model.TradeAgreement) error
	Update(ctx context.Context, agreement *model.TradeAgreement) error
	Delete(ctx context.Context, id uint) error
}

type tradeAgreementRepository struct {
	db *gorm.DB
}

func NewTradeAgreementRepository(db *gorm.DB) TradeAgreementRepository {
	return &tradeAgreementRepository{db: db}
}

func (r *tradeAgreementRepository) FindByID(ctx context.Context, id uint) (model.TradeAgreement, bool, error) {
	var agreement model.TradeAgreement
	err := GetDB(ctx, r.db).First(&agreement, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.TradeAgreement{}, false, nil
		}
		return model.TradeAgreement{}, false, err
	}
	return agreement, true, nil
}

func (r *tradeAgreementRepository) FindByName(ctx context.Context, name string) (model.TradeAgreement, bool, error) {
	var agreement model.TradeAgreement
	err := GetDB(ctx, r.db).First(&agreement, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.TradeAgreement{}, false, nil
		}
		return model.TradeAgreement{}, false, err
	}
	return agreement, true, nil
}

func (r *tradeAgreementRepository) List(ctx context.Context, page, limit int) ([]model.TradeAgreement, int64, error) {
	var agreements []model.TradeAgreement
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.TradeAgreement{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("name asc").Offset(offset).Limit(limit).Find(&agreements).Error; err != nil {
		return nil, 0, err
	}

	return agreements, total, nil
}

func (r *tradeAgreementRepository) Create(ctx context.Context, agreement *model.TradeAgreement) error {
	return GetDB(ctx, r.db).Create(agreement).Error
}

func (r *tradeAgreementRepository) Update(ctx context.Context, agreement *model.TradeAgreement) error {
	return GetDB(ctx, r.db).Save(agreement).Error
}

func (r *tradeAgreementRepository) Delete(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.TradeAgreement{}).Error
}
