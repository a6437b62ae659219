package service

import (
	"context"
	"fmt"
	"strings"

	"tariffengine/internal/model"
	"tariffengine/internal/repository"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

// ShippingRateRequest carries decimal strings. LandRate nil means the
// pair has no land route; "0" means an explicitly free land leg.
type ShippingRateRequest struct {
	ImportingCountryCode string  `json:"importing_country_code" binding:"required"`
	ExportingCountryCode string  `json:"exporting_country_code" binding:"required"`
	AirRate              string  `json:"air_rate" binding:"required"`
	SeaRate              string  `json:"sea_rate" binding:"required"`
	LandRate             *string `json:"land_rate"`
	DistanceKM           string  `json:"distance_km"`
}

// --- Interface ---

type ShippingRateService interface {
	CreateShippingRate(ctx context.Context, req ShippingRateRequest, userID string) (model.ShippingRate, error)
	ListShippingRates(ctx context.Context, page, limit int) ([]model.ShippingRate, int64, error)
	UpdateShippingRate(ctx context.Context, id uint, req ShippingRateRequest, userID string) (model.ShippingRate, error)
	DeleteShippingRate(ctx context.Context, id uint, userID string) error
}

type shippingRateService struct {
	shippingRepo repository.ShippingRateRepository
	countryRepo  repository.CountryRepository
	auditRepo    repository.AuditRepository
}

func NewShippingRateService(
	shippingRepo repository.ShippingRateRepository,
	countryRepo repository.CountryRepository,
	auditRepo repository.AuditRepository,
) ShippingRateService {
	return &shippingRateService{
		shippingRepo: shippingRepo,
		countryRepo:  countryRepo,
		auditRepo:    auditRepo,
	}
}

// --- Implementation ---

func (s *shippingRateService) CreateShippingRate(ctx context.Context, req ShippingRateRequest, userID string) (model.ShippingRate, error) {
	rate, err := s.buildShippingRate(ctx, req)
	if err != nil {
		return model.ShippingRate{}, err
	}

	if _, found, err := s.shippingRepo.FindByPair(ctx, rate.ImportingCountryCode, rate.ExportingCountryCode); err != nil {
		return model.ShippingRate{}, fmt.Errorf("failed to check existing shipping rate: %w", err)
	} else if found {
		return model.ShippingRate{}, fmt.Errorf("a shipping rate already exists for pair %s->%s",
			rate.ExportingCountryCode, rate.ImportingCountryCode)
	}

	if err := s.shippingRepo.Create(ctx, &rate); err != nil {
		return model.ShippingRate{}, fmt.Errorf("failed to create shipping rate: %w", err)
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionCreateShippingRate, fmt.Sprintf("%d", rate.ID),
		rate.ExportingCountryCode+"->"+rate.ImportingCountryCode, req)
	return rate, nil
}

func (s *shippingRateService) ListShippingRates(ctx context.Context, page, limit int) ([]model.ShippingRate, int64, error) {
	return s.shippingRepo.List(ctx, page, limit)
}

func (s *shippingRateService) UpdateShippingRate(ctx context.Context, id uint, req ShippingRateRequest, userID string) (model.ShippingRate, error) {
	existing, found, err := s.shippingRepo.FindByID(ctx, id)
	if err != nil {
		return model.ShippingRate{}, fmt.Errorf("failed to fetch shipping rate: %w", err)
	}
	if !found {
		return model.ShippingRate{}, fmt.Errorf("shipping rate not found")
	}

	rate, err := s.buildShippingRate(ctx, req)
	if err != nil {
		return model.ShippingRate{}, err
	}
	rate.ID = existing.ID
	rate.CreatedAt = existing.CreatedAt

	if err := s.shippingRepo.Update(ctx, &rate); err != nil {
		return model.ShippingRate{}, fmt.Errorf("failed to update shipping rate: %w", err)
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionUpdateShippingRate, fmt.Sprintf("%d", rate.ID),
		rate.ExportingCountryCode+"->"+rate.ImportingCountryCode, req)
	return rate, nil
}

func (s *shippingRateService) DeleteShippingRate(ctx context.Context, id uint, userID string) error {
	rate, found, err := s.shippingRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch shipping rate: %w", err)
	}
	if !found {
		return fmt.Errorf("shipping rate not found")
	}

	if err := s.shippingRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete shipping rate: %w", err)
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionDeleteShippingRate, fmt.Sprintf("%d", id),
		rate.ExportingCountryCode+"->"+rate.ImportingCountryCode, map[string]uint{"deleted_id": id})
	return nil
}

// --- Helpers ---

func (s *shippingRateService) buildShippingRate(ctx context.Context, req ShippingRateRequest) (model.ShippingRate, error) {
	importing := strings.ToUpper(strings.TrimSpace(req.ImportingCountryCode))
	exporting := strings.ToUpper(strings.TrimSpace(req.ExportingCountryCode))
	for _, code := range []string{importing, exporting} {
		if _, found, err := s.countryRepo.FindByCode(ctx, code); err != nil {
			return model.ShippingRate{}, fmt.Errorf("failed to verify country code %s: %w", code, err)
		} else if !found {
			return model.ShippingRate{}, fmt.Errorf("country code does not exist: %s", code)
		}
	}

	airRate, err := parseNonNegativeDecimal("air_rate", req.AirRate)
	if err != nil {
		return model.ShippingRate{}, err
	}
	seaRate, err := parseNonNegativeDecimal("sea_rate", req.SeaRate)
	if err != nil {
		return model.ShippingRate{}, err
	}

	rate := model.ShippingRate{
		ImportingCountryCode: importing,
		ExportingCountryCode: exporting,
		AirRate:              airRate,
		SeaRate:              seaRate,
		DistanceKM:           decimal.Zero,
	}

	if req.LandRate != nil {
		landRate, err := parseNonNegativeDecimal("land_rate", *req.LandRate)
		if err != nil {
			return model.ShippingRate{}, err
		}
		rate.LandRate = &landRate
	}
	if req.DistanceKM != "" {
		distance, err := parseNonNegativeDecimal("distance_km", req.DistanceKM)
		if err != nil {
			return model.ShippingRate{}, err
		}
		rate.DistanceKM = distance
	}

	return rate, nil
}

func parseNonNegativeDecimal(name, raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s value: %w", name, err)
	}
	if value.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s cannot be negative", name)
	}
	return value, nil
}
