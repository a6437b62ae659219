package service

import (
	"context"
	"fmt"
	"strings"

	"tariffengine/internal/model"
	"tariffengine/internal/repository"
)

// --- DTOs ---

type ProductRequest struct {
	HsCode      string `json:"hs_code" binding:"required"`
	Description string `json:"description" binding:"required"`
	Category    string `json:"category"`
}

// --- Interface ---

type ProductService interface {
	CreateProduct(ctx context.Context, req ProductRequest) (model.Product, error)
	GetProduct(ctx context.Context, hsCode string) (model.Product, bool, error)
	ListProducts(ctx context.Context, page, limit int) ([]model.Product, int64, error)
	DeleteProduct(ctx context.Context, hsCode string) error
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

// --- Implementation ---

func (s *productService) CreateProduct(ctx context.Context, req ProductRequest) (model.Product, error) {
	hsCode := strings.ReplaceAll(strings.TrimSpace(req.HsCode), " ", "")
	if !hsCodeRegexp.MatchString(hsCode) {
		return model.Product{}, fmt.Errorf("invalid HS code: must be 6 to 10 digits")
	}

	if _, found, err := s.productRepo.FindByHsCode(ctx, hsCode); err != nil {
		return model.Product{}, fmt.Errorf("failed to check existing product: %w", err)
	} else if found {
		return model.Product{}, fmt.Errorf("product already exists for HS code %s", hsCode)
	}

	product := model.Product{
		HsCode:      hsCode,
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
	}
	if err := s.productRepo.Create(ctx, &product); err != nil {
		return model.Product{}, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

func (s *productService) GetProduct(ctx context.Context, hsCode string) (model.Product, bool, error) {
	return s.productRepo.FindByHsCode(ctx, strings.TrimSpace(hsCode))
}

func (s *productService) ListProducts(ctx context.Context, page, limit int) ([]model.Product, int64, error) {
	return s.productRepo.List(ctx, page, limit)
}

func (s *productService) DeleteProduct(ctx context.Context, hsCode string) error {
	if err := s.productRepo.Delete(ctx, strings.TrimSpace(hsCode)); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}
