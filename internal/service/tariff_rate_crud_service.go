package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"tariffengine/internal/model"
	"tariffengine/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type TariffRateRequest struct {
	HsCode               string  `json:"hs_code" binding:"required"`
	ImportingCountryCode string  `json:"importing_country_code" binding:"required"`
	ExportingCountryCode string  `json:"exporting_country_code" binding:"required"`
	Year                 *int    `json:"year"`
	TariffType           string  `json:"tariff_type" binding:"required,oneof=AD_VALOREM SPECIFIC COMPOUND MIXED_MAX MIXED_MIN"`
	AdValoremRate        *string `json:"ad_valorem_rate"` // decimal strings, percentage points
	SpecificRateAmount   *string `json:"specific_rate_amount"`
	CompoundPercent      *string `json:"compound_percent"`
	CompoundSpecific     *string `json:"compound_specific"`
	MixedPercent         *string `json:"mixed_percent"`
	MixedSpecific        *string `json:"mixed_specific"`
	UnitBasis            string  `json:"unit_basis" binding:"omitempty,oneof=KG HEAD"`
}

// --- Interface ---

// TariffRateCRUDService manages the persisted duty-rate catalogue behind
// the resolver.
type TariffRateCRUDService interface {
	CreateTariffRate(ctx context.Context, req TariffRateRequest, userID string) (model.TariffRate, error)
	GetTariffRate(ctx context.Context, id uint) (model.TariffRate, error)
	ListTariffRates(ctx context.Context, page, limit int) ([]model.TariffRate, int64, error)
	UpdateTariffRate(ctx context.Context, id uint, req TariffRateRequest, userID string) (model.TariffRate, error)
	DeleteTariffRate(ctx context.Context, id uint, userID string) error
	ClearRateCache(ctx context.Context, userID string)
}

type tariffRateCRUDService struct {
	tariffRepo  repository.TariffRateRepository
	countryRepo repository.CountryRepository
	auditRepo   repository.AuditRepository
	resolver    RateResolver
}

func NewTariffRateCRUDService(
	tariffRepo repository.TariffRateRepository,
	countryRepo repository.CountryRepository,
	auditRepo repository.AuditRepository,
	resolver RateResolver,
) TariffRateCRUDService {
	return &tariffRateCRUDService{
		tariffRepo:  tariffRepo,
		countryRepo: countryRepo,
		auditRepo:   auditRepo,
		resolver:    resolver,
	}
}

// --- Implementation ---

func (s *tariffRateCRUDService) CreateTariffRate(ctx context.Context, req TariffRateRequest, userID string) (model.TariffRate, error) {
	rate, err := s.buildTariffRate(ctx, req)
	if err != nil {
		return model.TariffRate{}, err
	}

	// A rate is immutable for its (tuple, year) once persisted
	exists, err := s.tariffRepo.ExistsForTuple(ctx, rate.HsCode, rate.ImportingCountryCode, rate.ExportingCountryCode, rate.Year)
	if err != nil {
		return model.TariffRate{}, fmt.Errorf("failed to check existing tariff rate: %w", err)
	}
	if exists {
		return model.TariffRate{}, fmt.Errorf("a tariff rate already exists for HS %s, %s->%s and that year",
			rate.HsCode, rate.ExportingCountryCode, rate.ImportingCountryCode)
	}

	if err := s.tariffRepo.Create(ctx, &rate); err != nil {
		return model.TariffRate{}, fmt.Errorf("failed to create tariff rate: %w", err)
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionCreateTariffRate, fmt.Sprintf("%d", rate.ID), rate.HsCode, req)
	return rate, nil
}

func (s *tariffRateCRUDService) GetTariffRate(ctx context.Context, id uint) (model.TariffRate, error) {
	rate, found, err := s.tariffRepo.FindByID(ctx, id)
	if err != nil {
		return model.TariffRate{}, fmt.Errorf("failed to fetch tariff rate: %w", err)
	}
	if !found {
		return model.TariffRate{}, fmt.Errorf("tariff rate not found")
	}
	return rate, nil
}

func (s *tariffRateCRUDService) ListTariffRates(ctx context.Context, page, limit int) ([]model.TariffRate, int64, error) {
	return s.tariffRepo.List(ctx, page, limit)
}

func (s *tariffRateCRUDService) UpdateTariffRate(ctx context.Context, id uint, req TariffRateRequest, userID string) (model.TariffRate, error) {
	existing, found, err := s.tariffRepo.FindByID(ctx, id)
	if err != nil {
		return model.TariffRate{}, fmt.Errorf("failed to fetch tariff rate: %w", err)
	}
	if !found {
		return model.TariffRate{}, fmt.Errorf("tariff rate not found")
	}

	rate, err := s.buildTariffRate(ctx, req)
	if err != nil {
		return model.TariffRate{}, err
	}
	rate.ID = existing.ID
	rate.CreatedAt = existing.CreatedAt

	// Moving the rate onto another row's (tuple, year) would create the
	// duplicate Create forbids; same-slot updates skip the check.
	if !sameRateSlot(rate, existing) {
		exists, err := s.tariffRepo.ExistsForTuple(ctx, rate.HsCode, rate.ImportingCountryCode, rate.ExportingCountryCode, rate.Year)
		if err != nil {
			return model.TariffRate{}, fmt.Errorf("failed to check existing tariff rate: %w", err)
		}
		if exists {
			return model.TariffRate{}, fmt.Errorf("a tariff rate already exists for HS %s, %s->%s and that year",
				rate.HsCode, rate.ExportingCountryCode, rate.ImportingCountryCode)
		}
	}

	if err := s.tariffRepo.Update(ctx, &rate); err != nil {
		return model.TariffRate{}, fmt.Errorf("failed to update tariff rate: %w", err)
	}

	// Cached entries may hold the stale rate; drop the whole cache rather
	// than tracking which keys the tuple can appear under.
	s.invalidateCache()

	writeAudit(ctx, s.auditRepo, userID, model.ActionUpdateTariffRate, fmt.Sprintf("%d", rate.ID), rate.HsCode, req)
	return rate, nil
}

func (s *tariffRateCRUDService) DeleteTariffRate(ctx context.Context, id uint, userID string) error {
	rate, found, err := s.tariffRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch tariff rate: %w", err)
	}
	if !found {
		return fmt.Errorf("tariff rate not found")
	}

	if err := s.tariffRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete tariff rate: %w", err)
	}

	s.invalidateCache()

	writeAudit(ctx, s.auditRepo, userID, model.ActionDeleteTariffRate, fmt.Sprintf("%d", id), rate.HsCode, map[string]uint{"deleted_id": id})
	return nil
}

// ClearRateCache drops every cached resolved rate and records who asked.
func (s *tariffRateCRUDService) ClearRateCache(ctx context.Context, userID string) {
	s.invalidateCache()
	writeAudit(ctx, s.auditRepo, userID, model.ActionClearRateCache, "", "", nil)
}

func (s *tariffRateCRUDService) invalidateCache() {
	if s.resolver != nil {
		s.resolver.ClearCache()
	}
}

// --- Helpers ---

func sameRateSlot(a, b model.TariffRate) bool {
	return a.HsCode == b.HsCode &&
		a.ImportingCountryCode == b.ImportingCountryCode &&
		a.ExportingCountryCode == b.ExportingCountryCode &&
		yearEqual(a.Year, b.Year)
}

func yearEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (s *tariffRateCRUDService) buildTariffRate(ctx context.Context, req TariffRateRequest) (model.TariffRate, error) {
	hsCode := stripWhitespace(req.HsCode)
	if !hsCodeRegexp.MatchString(hsCode) {
		return model.TariffRate{}, fmt.Errorf("invalid HS code format: must be 6 to 10 digits (got: %s)", req.HsCode)
	}

	importing := strings.ToUpper(strings.TrimSpace(req.ImportingCountryCode))
	exporting := strings.ToUpper(strings.TrimSpace(req.ExportingCountryCode))
	for _, code := range []string{importing, exporting} {
		if _, found, err := s.countryRepo.FindByCode(ctx, code); err != nil {
			return model.TariffRate{}, fmt.Errorf("failed to verify country code %s: %w", code, err)
		} else if !found {
			return model.TariffRate{}, fmt.Errorf("country code does not exist: %s", code)
		}
	}

	rate := model.TariffRate{
		HsCode:               hsCode,
		ImportingCountryCode: importing,
		ExportingCountryCode: exporting,
		Year:                 req.Year,
		TariffType:           req.TariffType,
		UnitBasis:            req.UnitBasis,
		DataSource:           "manual_entry",
	}
	if rate.UnitBasis == "" {
		rate.UnitBasis = model.UnitBasisKG
	}

	fields := []struct {
		name string
		raw  *string
		dest **decimal.Decimal
	}{
		{"ad_valorem_rate", req.AdValoremRate, &rate.AdValoremRate},
		{"specific_rate_amount", req.SpecificRateAmount, &rate.SpecificRateAmount},
		{"compound_percent", req.CompoundPercent, &rate.CompoundPercent},
		{"compound_specific", req.CompoundSpecific, &rate.CompoundSpecific},
		{"mixed_percent", req.MixedPercent, &rate.MixedPercent},
		{"mixed_specific", req.MixedSpecific, &rate.MixedSpecific},
	}
	for _, f := range fields {
		if f.raw == nil {
			continue
		}
		value, err := decimal.NewFromString(*f.raw)
		if err != nil {
			return model.TariffRate{}, fmt.Errorf("invalid %s value: %w", f.name, err)
		}
		if value.IsNegative() {
			return model.TariffRate{}, fmt.Errorf("%s cannot be negative", f.name)
		}
		*f.dest = &value
	}

	return rate, nil
}

// writeAudit is best-effort; a failed audit write never fails the
// operation it records.
func writeAudit(ctx context.Context, auditRepo repository.AuditRepository, userID, action, entityID, entityName string, details interface{}) {
	if auditRepo == nil {
		return
	}
	detailsJSON, _ := json.Marshal(details)

	entry := model.AuditLog{
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(detailsJSON),
	}
	if userID != "" {
		if parsed, err := uuid.Parse(userID); err == nil {
			entry.UserID = &parsed
		}
	}
	if err := auditRepo.Log(ctx, &entry); err != nil {
		log.Printf("Audit write failed for %s: %v", action, err)
	}
}
