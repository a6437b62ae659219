package repository

import (
	"context"

	"tariffengine/internal/model"

	"gorm.io/gorm"
)

type SearchHistoryRepository interface {
	Log(ctx context.Context, entry *model.SearchHistory) error
	List(ctx context.Context, page, limit int) ([]model.SearchHistory, int64, error)
}

type searchHistoryRepository struct {
	db *gorm.DB
}

func NewSearchHistoryRepository(db *gorm.DB) SearchHistoryRepository {
	return &searchHistoryRepository{db: db}
}

func (r *searchHistoryRepository) Log(ctx context.Context, entry *model.SearchHistory) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *searchHistoryRepository) List(ctx context.Context, page, limit int) ([]model.SearchHistory, int64, error) {
	var entries []model.SearchHistory
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.SearchHistory{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
