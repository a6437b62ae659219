package repository

import (
	"context"
	"errors"

	"tariffengine/internal/model"

	"gorm.io/gorm"
)

type ProductRepository interface {
	FindByHsCode(ctx context.Context, hsCode string) (model.Product, bool, error)
	List(ctx context.Context, page, limit int) ([]model.Product, int64, error)
	Create(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, hsCode string) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) FindByHsCode(ctx context.Context, hsCode string) (model.Product, bool, error) {
	var product model.Product
	err := GetDB(ctx, r.db).First(&product, "hs_code = ?", hsCode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Product{}, false, nil
		}
		return model.Product{}, false, err
	}
	return product, true, nil
}

func (r *productRepository) List(ctx context.Context, page, limit int) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("hs_code asc").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return GetDB(ctx, r.db).Create(product).Error
}

func (r *productRepository) Delete(ctx context.Context, hsCode string) error {
	return GetDB(ctx, r.db).Where("hs_code = ?", hsCode).Delete(&model.Product{}).Error
}
