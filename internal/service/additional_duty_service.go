package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tariffengine/internal/model"
	"tariffengine/internal/repository"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

// AdditionalDutyRequest registers a remedial-duty schedule for a trade
// lane. All four rates are fractions of customs value ("0.25" for 25%).
// Dates use the "2006-01-02" layout.
type AdditionalDutyRequest struct {
	ImportingCountryCode string  `json:"importing_country_code" binding:"required"`
	ExportingCountryCode string  `json:"exporting_country_code" binding:"required"`
	HsCode               string  `json:"hs_code" binding:"required"`
	SpecialTariffRate    *string `json:"special_tariff_rate"`
	AntiDumpingRate      *string `json:"anti_dumping_rate"`
	CountervailingRate   *string `json:"countervailing_rate"`
	SafeguardRate        *string `json:"safeguard_rate"`
	EffectiveFrom        string  `json:"effective_from" binding:"required"`
	EffectiveTo          string  `json:"effective_to" binding:"required"`
}

// --- Interface ---

type AdditionalDutyService interface {
	CreateAdditionalDuty(ctx context.Context, req AdditionalDutyRequest, userID string) (model.AdditionalDuty, error)
	ListAdditionalDuties(ctx context.Context, page, limit int) ([]model.AdditionalDuty, int64, error)
	DeleteAdditionalDuty(ctx context.Context, id uint, userID string) error
}

type additionalDutyService struct {
	dutyRepo    repository.AdditionalDutyRepository
	countryRepo repository.CountryRepository
	auditRepo   repository.AuditRepository
}

func NewAdditionalDutyService(
	dutyRepo repository.AdditionalDutyRepository,
	countryRepo repository.CountryRepository,
	auditRepo repository.AuditRepository,
) AdditionalDutyService {
	return &additionalDutyService{dutyRepo: dutyRepo, countryRepo: countryRepo, auditRepo: auditRepo}
}

// --- Implementation ---

func (s *additionalDutyService) CreateAdditionalDuty(ctx context.Context, req AdditionalDutyRequest, userID string) (model.AdditionalDuty, error) {
	importing := strings.ToUpper(strings.TrimSpace(req.ImportingCountryCode))
	exporting := strings.ToUpper(strings.TrimSpace(req.ExportingCountryCode))
	hsCode := strings.ReplaceAll(strings.TrimSpace(req.HsCode), " ", "")

	if !hsCodeRegexp.MatchString(hsCode) {
		return model.AdditionalDuty{}, fmt.Errorf("invalid HS code: must be 6 to 10 digits")
	}
	for _, code := range []string{importing, exporting} {
		if _, found, err := s.countryRepo.FindByCode(ctx, code); err != nil {
			return model.AdditionalDuty{}, fmt.Errorf("failed to verify country code %s: %w", code, err)
		} else if !found {
			return model.AdditionalDuty{}, fmt.Errorf("country code does not exist: %s", code)
		}
	}

	from, err := time.Parse("2006-01-02", req.EffectiveFrom)
	if err != nil {
		return model.AdditionalDuty{}, fmt.Errorf("invalid effective_from date: %w", err)
	}
	to, err := time.Parse("2006-01-02", req.EffectiveTo)
	if err != nil {
		return model.AdditionalDuty{}, fmt.Errorf("invalid effective_to date: %w", err)
	}
	if to.Before(from) {
		return model.AdditionalDuty{}, fmt.Errorf("effective_to must not be before effective_from")
	}

	// Overlapping windows for the same lane would make the active schedule
	// ambiguous, so reject them up front.
	overlapping, err := s.dutyRepo.FindOverlapping(ctx, importing, exporting, hsCode, from, to, nil)
	if err != nil {
		return model.AdditionalDuty{}, fmt.Errorf("failed to check overlapping duty windows: %w", err)
	}
	if overlapping > 0 {
		return model.AdditionalDuty{}, fmt.Errorf("an additional duty window already overlaps %s to %s for this lane",
			req.EffectiveFrom, req.EffectiveTo)
	}

	duty := model.AdditionalDuty{
		ImportingCountryCode: importing,
		ExportingCountryCode: exporting,
		HsCode:               hsCode,
		EffectiveFrom:        from,
		EffectiveTo:          to,
	}

	rateFields := []struct {
		name string
		raw  *string
		dst  **decimal.Decimal
	}{
		{"special_tariff_rate", req.SpecialTariffRate, &duty.SpecialTariffRate},
		{"anti_dumping_rate", req.AntiDumpingRate, &duty.AntiDumpingRate},
		{"countervailing_rate", req.CountervailingRate, &duty.CountervailingRate},
		{"safeguard_rate", req.SafeguardRate, &duty.SafeguardRate},
	}
	for _, field := range rateFields {
		if field.raw == nil {
			continue
		}
		rate, err := parseNonNegativeDecimal(field.name, *field.raw)
		if err != nil {
			return model.AdditionalDuty{}, err
		}
		*field.dst = &rate
	}

	if err := s.dutyRepo.Create(ctx, &duty); err != nil {
		return model.AdditionalDuty{}, fmt.Errorf("failed to create additional duty: %w", err)
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionCreateAdditionalDuty, fmt.Sprintf("%d", duty.ID),
		fmt.Sprintf("%s %s->%s", hsCode, exporting, importing), req)
	return duty, nil
}

func (s *additionalDutyService) ListAdditionalDuties(ctx context.Context, page, limit int) ([]model.AdditionalDuty, int64, error) {
	return s.dutyRepo.List(ctx, page, limit)
}

func (s *additionalDutyService) DeleteAdditionalDuty(ctx context.Context, id uint, userID string) error {
	if err := s.dutyRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete additional duty: %w", err)
	}
	writeAudit(ctx, s.auditRepo, userID, model.ActionDeleteAdditionalDuty, fmt.Sprintf("%d", id), "",
		map[string]uint{"deleted_id": id})
	return nil
}
