package repository

import (
	"context"
	"errors"
	"time"

	"tariffengine/internal/model"

	"gorm.io/gorm"
)

// AdditionalDutyRepository resolves the remedial-duty schedule whose
// validity window contains a target date.
type AdditionalDutyRepository interface {
	FindActive(ctx context.Context, importing, exporting, hsCode string, on time.Time) (model.AdditionalDuty, bool, error)
	FindOverlapping(ctx context.Context, importing, exporting, hsCode string, from, to time.Time, excludeID *uint) (int64, error)
	List(ctx context.Context, page, limit int) ([]model.AdditionalDuty, int64, error)
	Create(ctx context.Context, duty *model.AdditionalDuty) error
	Delete(ctx context.Context, id uint) error
}

type additionalDutyRepository struct {
	db *gorm.DB
}

func NewAdditionalDutyRepository(db *gorm.DB) AdditionalDutyRepository {
	return &additionalDutyRepository{db: db}
}

func (r *additionalDutyRepository) FindActive(ctx context.Context, importing, exporting, hsCode string, on time.Time) (model.AdditionalDuty, bool, error) {
	var duty model.AdditionalDuty
	err := GetDB(ctx, r.db).
		Where("importing_country_code = ? AND exporting_country_code = ? AND hs_code = ?", importing, exporting, hsCode).
		Where("effective_from <= ? AND effective_to >= ?", on, on).
		Order("effective_from DESC").
		First(&duty).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.AdditionalDuty{}, false, nil
		}
		return model.AdditionalDuty{}, false, err
	}
	return duty, true, nil
}

func (r *additionalDutyRepository) FindOverlapping(ctx context.Context, importing, exporting, hsCode string, from, to time.Time, excludeID *uint) (int64, error) {
	query := GetDB(ctx, r.db).Model(&model.AdditionalDuty{}).
		Where("importing_country_code = ? AND exporting_country_code = ? AND hs_code = ?", importing, exporting, hsCode).
		Where("effective_from <= ? AND effective_to >= ?", to, from)

	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *additionalDutyRepository) List(ctx context.Context, page, limit int) ([]model.AdditionalDuty, int64, error) {
	var duties []model.AdditionalDuty
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.AdditionalDuty{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("effective_from desc").Offset(offset).Limit(limit).Find(&duties).Error; err != nil {
		return nil, 0, err
	}

	return duties, total, nil
}

func (r *additionalDutyRepository) Create(ctx context.Context, duty *model.AdditionalDuty) error {
	return GetDB(ctx, r.db).Create(duty).Error
}

func (r *additionalDutyRepository) Delete(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.AdditionalDuty{}).Error
}
