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

type TradeAgreementRequest struct {
	Name          string `json:"name" binding:"required"`
	EffectiveDate string `json:"effective_date" binding:"required"` // YYYY-MM-DD
	ExpiryDate    string `json:"expiry_date" binding:"required"`    // YYYY-MM-DD
}

type PreferentialRateRequest struct {
	HsCode                 string `json:"hs_code" binding:"required"`
	OriginCountryCode      string `json:"origin_country_code" binding:"required"`
	DestinationCountryCode string `json:"destination_country_code" binding:"required"`
	Rate                   string `json:"rate" binding:"required"` // fraction, e.g. "0.02"
	Condition              string `json:"condition"`
}

type TradeAgreementResponse struct {
	model.TradeAgreement
	PreferentialRates []model.PreferentialRate `json:"preferential_rates"`
}

// --- Interface ---

// TradeAgreementService manages agreements and the preferential rates
// they own. Deleting an agreement cascades to its rates explicitly, in a
// single transaction — there is no ORM-side cascade.
type TradeAgreementService interface {
	CreateAgreement(ctx context.Context, req TradeAgreementRequest, userID string) (model.TradeAgreement, error)
	GetAgreement(ctx context.Context, id uint) (TradeAgreementResponse, error)
	ListAgreements(ctx context.Context, page, limit int) ([]model.TradeAgreement, int64, error)
	UpdateAgreement(ctx context.Context, id uint, req TradeAgreementRequest, userID string) (model.TradeAgreement, error)
	DeleteAgreement(ctx context.Context, id uint, userID string) error
	AddPreferentialRate(ctx context.Context, agreementID uint, req PreferentialRateRequest, userID string) (model.PreferentialRate, error)
	RemovePreferentialRate(ctx context.Context, agreementID, rateID uint, userID string) error
}

type tradeAgreementService struct {
	agreementRepo repository.TradeAgreementRepository
	prefRepo      repository.PreferentialRateRepository
	countryRepo   repository.CountryRepository
	auditRepo     repository.AuditRepository
	txManager     repository.TransactionManager
}

func NewTradeAgreementService(
	agreementRepo repository.TradeAgreementRepository,
	prefRepo repository.PreferentialRateRepository,
	countryRepo repository.CountryRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) TradeAgreementService {
	return &tradeAgreementService{
		agreementRepo: agreementRepo,
		prefRepo:      prefRepo,
		countryRepo:   countryRepo,
		auditRepo:     auditRepo,
		txManager:     txManager,
	}
}

// --- Implementation ---

func (s *tradeAgreementService) CreateAgreement(ctx context.Context, req TradeAgreementRequest, userID string) (model.TradeAgreement, error) {
	effective, expiry, err := parseAgreementWindow(req.EffectiveDate, req.ExpiryDate)
	if err != nil {
		return model.TradeAgreement{}, err
	}

	if _, found, err := s.agreementRepo.FindByName(ctx, req.Name); err != nil {
		return model.TradeAgreement{}, fmt.Errorf("failed to check agreement name: %w", err)
	} else if found {
		return model.TradeAgreement{}, fmt.Errorf("a trade agreement named %q already exists", req.Name)
	}

	agreement := model.TradeAgreement{
		Name:          strings.TrimSpace(req.Name),
		EffectiveDate: effective,
		ExpiryDate:    expiry,
	}
	if err := s.agreementRepo.Create(ctx, &agreement); err != nil {
		return model.TradeAgreement{}, fmt.Errorf("failed to create trade agreement: %w", err)
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionCreateTradeAgreement, fmt.Sprintf("%d", agreement.ID), agreement.Name, req)
	return agreement, nil
}

func (s *tradeAgreementService) GetAgreement(ctx context.Context, id uint) (TradeAgreementResponse, error) {
	agreement, found, err := s.agreementRepo.FindByID(ctx, id)
	if err != nil {
		return TradeAgreementResponse{}, fmt.Errorf("failed to fetch trade agreement: %w", err)
	}
	if !found {
		return TradeAgreementResponse{}, fmt.Errorf("trade agreement not found")
	}

	rates, err := s.prefRepo.ListByAgreement(ctx, id)
	if err != nil {
		return TradeAgreementResponse{}, fmt.Errorf("failed to fetch preferential rates: %w", err)
	}

	return TradeAgreementResponse{TradeAgreement: agreement, PreferentialRates: rates}, nil
}

func (s *tradeAgreementService) ListAgreements(ctx context.Context, page, limit int) ([]model.TradeAgreement, int64, error) {
	return s.agreementRepo.List(ctx, page, limit)
}

func (s *tradeAgreementService) UpdateAgreement(ctx context.Context, id uint, req TradeAgreementRequest, userID string) (model.TradeAgreement, error) {
	agreement, found, err := s.agreementRepo.FindByID(ctx, id)
	if err != nil {
		return model.TradeAgreement{}, fmt.Errorf("failed to fetch trade agreement: %w", err)
	}
	if !found {
		return model.TradeAgreement{}, fmt.Errorf("trade agreement not found")
	}

	effective, expiry, err := parseAgreementWindow(req.EffectiveDate, req.ExpiryDate)
	if err != nil {
		return model.TradeAgreement{}, err
	}

	if other, found, err := s.agreementRepo.FindByName(ctx, req.Name); err != nil {
		return model.TradeAgreement{}, fmt.Errorf("failed to check agreement name: %w", err)
	} else if found && other.ID != id {
		return model.TradeAgreement{}, fmt.Errorf("a trade agreement named %q already exists", req.Name)
	}

	agreement.Name = strings.TrimSpace(req.Name)
	agreement.EffectiveDate = effective
	agreement.ExpiryDate = expiry

	if err := s.agreementRepo.Update(ctx, &agreement); err != nil {
		return model.TradeAgreement{}, fmt.Errorf("failed to update trade agreement: %w", err)
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionUpdateTradeAgreement, fmt.Sprintf("%d", agreement.ID), agreement.Name, req)
	return agreement, nil
}

func (s *tradeAgreementService) DeleteAgreement(ctx context.Context, id uint, userID string) error {
	agreement, found, err := s.agreementRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch trade agreement: %w", err)
	}
	if !found {
		return fmt.Errorf("trade agreement not found")
	}

	// Explicit cascade: the owned preferential rates go in the same
	// transaction as the agreement itself.
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.prefRepo.DeleteByAgreement(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete preferential rates: %w", err)
		}
		if err := s.agreementRepo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete trade agreement: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionDeleteTradeAgreement, fmt.Sprintf("%d", id), agreement.Name, map[string]uint{"deleted_id": id})
	return nil
}

func (s *tradeAgreementService) AddPreferentialRate(ctx context.Context, agreementID uint, req PreferentialRateRequest, userID string) (model.PreferentialRate, error) {
	if _, found, err := s.agreementRepo.FindByID(ctx, agreementID); err != nil {
		return model.PreferentialRate{}, fmt.Errorf("failed to fetch trade agreement: %w", err)
	} else if !found {
		return model.PreferentialRate{}, fmt.Errorf("trade agreement not found")
	}

	hsCode := stripWhitespace(req.HsCode)
	if !hsCodeRegexp.MatchString(hsCode) {
		return model.PreferentialRate{}, fmt.Errorf("invalid HS code format: must be 6 to 10 digits (got: %s)", req.HsCode)
	}

	origin := strings.ToUpper(strings.TrimSpace(req.OriginCountryCode))
	destination := strings.ToUpper(strings.TrimSpace(req.DestinationCountryCode))
	for _, code := range []string{origin, destination} {
		if _, found, err := s.countryRepo.FindByCode(ctx, code); err != nil {
			return model.PreferentialRate{}, fmt.Errorf("failed to verify country code %s: %w", code, err)
		} else if !found {
			return model.PreferentialRate{}, fmt.Errorf("country code does not exist: %s", code)
		}
	}

	rateValue, err := decimal.NewFromString(req.Rate)
	if err != nil {
		return model.PreferentialRate{}, fmt.Errorf("invalid rate value: %w", err)
	}
	if rateValue.IsNegative() {
		return model.PreferentialRate{}, fmt.Errorf("preferential rate cannot be negative")
	}

	rate := model.PreferentialRate{
		TradeAgreementID:       agreementID,
		HsCode:                 hsCode,
		OriginCountryCode:      origin,
		DestinationCountryCode: destination,
		Rate:                   rateValue,
		Condition:              req.Condition,
	}
	if err := s.prefRepo.Create(ctx, &rate); err != nil {
		return model.PreferentialRate{}, fmt.Errorf("failed to create preferential rate: %w", err)
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionCreatePreferentialRate, fmt.Sprintf("%d", rate.ID), hsCode, req)
	return rate, nil
}

func (s *tradeAgreementService) RemovePreferentialRate(ctx context.Context, agreementID, rateID uint, userID string) error {
	rates, err := s.prefRepo.ListByAgreement(ctx, agreementID)
	if err != nil {
		return fmt.Errorf("failed to fetch preferential rates: %w", err)
	}

	owned := false
	for _, r := range rates {
		if r.ID == rateID {
			owned = true
			break
		}
	}
	if !owned {
		return fmt.Errorf("preferential rate not found on agreement")
	}

	if err := s.prefRepo.Delete(ctx, rateID); err != nil {
		return fmt.Errorf("failed to delete preferential rate: %w", err)
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionDeletePreferentialRate, fmt.Sprintf("%d", rateID), "", map[string]uint{"agreement_id": agreementID})
	return nil
}

// --- Helpers ---

func parseAgreementWindow(fromStr, toStr string) (time.Time, time.Time, error) {
	effective, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid effective_date format (expected YYYY-MM-DD): %w", err)
	}
	expiry, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid expiry_date format (expected YYYY-MM-DD): %w", err)
	}
	if expiry.Before(effective) {
		return time.Time{}, time.Time{}, fmt.Errorf("expiry_date must not be before effective_date")
	}
	return effective, expiry, nil
}
