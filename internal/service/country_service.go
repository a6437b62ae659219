package service

import (
	"context"
	"fmt"
	"strings"

	"tariffengine/internal/model"
	"tariffengine/internal/repository"
)

// --- DTOs ---

type CountryRequest struct {
	CountryCode string `json:"country_code" binding:"required,len=2"`
	CountryName string `json:"country_name" binding:"required"`
	Iso3Code    string `json:"iso3_code"`
}

// CountryProfileRequest upserts the calculation policy of an importing
// country. VatOrGstRate is a fraction ("0.09" for 9%).
type CountryProfileRequest struct {
	ValuationBasis    string  `json:"valuation_basis" binding:"required,oneof=CIF TRANSACTION"`
	VatOrGstRate      *string `json:"vat_or_gst_rate"`
	VatIncludesDuties *bool   `json:"vat_includes_duties"`
	StackRemediesOnCV *bool   `json:"stack_remedies_on_cv"`
}

// --- Interface ---

type CountryService interface {
	CreateCountry(ctx context.Context, req CountryRequest) (model.Country, error)
	ListCountries(ctx context.Context, page, limit int) ([]model.Country, int64, error)
	GetCountryProfile(ctx context.Context, code string) (model.CountryProfile, bool, error)
	UpsertCountryProfile(ctx context.Context, code string, req CountryProfileRequest, userID string) (model.CountryProfile, error)
}

type countryService struct {
	countryRepo repository.CountryRepository
	auditRepo   repository.AuditRepository
}

func NewCountryService(countryRepo repository.CountryRepository, auditRepo repository.AuditRepository) CountryService {
	return &countryService{countryRepo: countryRepo, auditRepo: auditRepo}
}

// --- Implementation ---

func (s *countryService) CreateCountry(ctx context.Context, req CountryRequest) (model.Country, error) {
	code := strings.ToUpper(strings.TrimSpace(req.CountryCode))

	if _, found, err := s.countryRepo.FindByCode(ctx, code); err != nil {
		return model.Country{}, fmt.Errorf("failed to check existing country: %w", err)
	} else if found {
		return model.Country{}, fmt.Errorf("country already exists: %s", code)
	}

	country := model.Country{
		CountryCode: code,
		CountryName: strings.TrimSpace(req.CountryName),
		Iso3Code:    strings.ToUpper(strings.TrimSpace(req.Iso3Code)),
	}
	if err := s.countryRepo.Create(ctx, &country); err != nil {
		return model.Country{}, fmt.Errorf("failed to create country: %w", err)
	}
	return country, nil
}

func (s *countryService) ListCountries(ctx context.Context, page, limit int) ([]model.Country, int64, error) {
	return s.countryRepo.List(ctx, page, limit)
}

func (s *countryService) GetCountryProfile(ctx context.Context, code string) (model.CountryProfile, bool, error) {
	return s.countryRepo.FindProfile(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

func (s *countryService) UpsertCountryProfile(ctx context.Context, code string, req CountryProfileRequest, userID string) (model.CountryProfile, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	country, found, err := s.countryRepo.FindByCode(ctx, code)
	if err != nil {
		return model.CountryProfile{}, fmt.Errorf("failed to verify country code %s: %w", code, err)
	}
	if !found {
		return model.CountryProfile{}, fmt.Errorf("country code does not exist: %s", code)
	}

	profile := model.CountryProfile{
		CountryCode:       code,
		ValuationBasis:    req.ValuationBasis,
		VatIncludesDuties: req.VatIncludesDuties,
		StackRemediesOnCV: req.StackRemediesOnCV,
	}
	if req.VatOrGstRate != nil {
		rate, err := parseNonNegativeDecimal("vat_or_gst_rate", *req.VatOrGstRate)
		if err != nil {
			return model.CountryProfile{}, err
		}
		profile.VatOrGstRate = &rate
	}

	if err := s.countryRepo.UpsertProfile(ctx, &profile); err != nil {
		return model.CountryProfile{}, fmt.Errorf("failed to upsert country profile: %w", err)
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionUpsertCountryProfile, code, country.CountryName, req)
	return profile, nil
}
