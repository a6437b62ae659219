package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"tariffengine/internal/model"
	"tariffengine/internal/repository"

	"github.com/shopspring/decimal"
)

// CalculationRequest is the engine's input. Validation mutates it in
// place: country identifiers are overwritten with canonical alpha-2
// codes, the HS code is stripped of whitespace, and absent freight or
// insurance values are defaulted to zero with the adjustment recorded in
// the tracking lists.
type CalculationRequest struct {
	ImportingCountry  string           `json:"importing_country"`
	ExportingCountry  string           `json:"exporting_country"`
	HsCode            string           `json:"hs_code"`
	ProductValue      decimal.Decimal  `json:"product_value"`
	Freight           *decimal.Decimal `json:"freight"`
	Insurance         *decimal.Decimal `json:"insurance"`
	Weight            decimal.Decimal  `json:"weight"`
	Heads             int              `json:"heads"`
	ShippingMode      string           `json:"shipping_mode"`
	Year              *int             `json:"year"`
	ValuationOverride string           `json:"valuation_override"`  // CIF or TRANSACTION
	VatOrGstOverride  *decimal.Decimal `json:"vat_or_gst_override"` // fraction, e.g. 0.09

	// Audit trails filled during validation
	MissingFields   []string `json:"-"`
	DefaultedFields []string `json:"-"`
}

var (
	hsCodeRegexp = regexp.MustCompile(`^\d{6,10}$`)
	alpha2Regexp = regexp.MustCompile(`^[A-Za-z]{2}$`)
)

// ValidationService sanitizes and canonicalizes calculation requests.
type ValidationService interface {
	// ValidateAndNormalize returns a *ValidationError enumerating every
	// violated rule, or nil when the request is clean. Country lookups can
	// also surface an infrastructure error.
	ValidateAndNormalize(ctx context.Context, req *CalculationRequest) error
}

type validationService struct {
	countryRepo repository.CountryRepository
}

func NewValidationService(countryRepo repository.CountryRepository) ValidationService {
	return &validationService{countryRepo: countryRepo}
}

func (s *validationService) ValidateAndNormalize(ctx context.Context, req *CalculationRequest) error {
	if req == nil {
		return &ValidationError{Violations: []string{"request cannot be nil"}}
	}

	req.MissingFields = req.MissingFields[:0]
	req.DefaultedFields = req.DefaultedFields[:0]

	var violations []string

	if isBlank(req.ImportingCountry) {
		req.MissingFields = append(req.MissingFields, "importing_country")
		violations = append(violations, "importing country is required")
	}
	if isBlank(req.ExportingCountry) {
		req.MissingFields = append(req.MissingFields, "exporting_country")
		violations = append(violations, "exporting country is required")
	}
	if isBlank(req.ShippingMode) {
		req.MissingFields = append(req.MissingFields, "shipping_mode")
		violations = append(violations, "shipping mode is required")
	} else {
		switch strings.ToUpper(strings.TrimSpace(req.ShippingMode)) {
		case model.ShippingModeAir, model.ShippingModeSea, model.ShippingModeLand:
			req.ShippingMode = strings.ToUpper(strings.TrimSpace(req.ShippingMode))
		default:
			violations = append(violations, fmt.Sprintf("unsupported shipping mode: %s (expected AIR, SEA or LAND)", req.ShippingMode))
		}
	}

	if req.ProductValue.LessThanOrEqual(decimal.Zero) {
		violations = append(violations, "product value must be greater than zero")
	}
	if req.Weight.LessThanOrEqual(decimal.Zero) {
		violations = append(violations, "weight must be greater than zero")
	}
	if req.Heads < 0 {
		violations = append(violations, "head count must not be negative")
	}

	hasQuantity := req.Heads > 0 || req.Weight.GreaterThan(decimal.Zero)
	if req.ProductValue.LessThanOrEqual(decimal.Zero) && !hasQuantity {
		violations = append(violations, "request must carry a positive product value or a positive quantity")
	}

	if req.HsCode != "" {
		cleaned := stripWhitespace(req.HsCode)
		if hsCodeRegexp.MatchString(cleaned) {
			if cleaned != req.HsCode {
				req.DefaultedFields = append(req.DefaultedFields, "hs_code (whitespace stripped)")
			}
			req.HsCode = cleaned
		} else {
			violations = append(violations, fmt.Sprintf("invalid HS code format: must be 6 to 10 digits (got: %s)", req.HsCode))
		}
	}

	if req.Freight == nil {
		zero := decimal.Zero
		req.Freight = &zero
		req.MissingFields = append(req.MissingFields, "freight")
		req.DefaultedFields = append(req.DefaultedFields, "freight (defaulted to 0.00)")
	}
	if req.Insurance == nil {
		zero := decimal.Zero
		req.Insurance = &zero
		req.MissingFields = append(req.MissingFields, "insurance")
		req.DefaultedFields = append(req.DefaultedFields, "insurance (defaulted to 0.00)")
	}

	if req.ValuationOverride != "" {
		switch strings.ToUpper(strings.TrimSpace(req.ValuationOverride)) {
		case model.ValuationCIF, model.ValuationTransaction:
			req.ValuationOverride = strings.ToUpper(strings.TrimSpace(req.ValuationOverride))
		default:
			violations = append(violations, fmt.Sprintf("invalid valuation override: %s (expected CIF or TRANSACTION)", req.ValuationOverride))
		}
	}
	if req.VatOrGstOverride != nil && req.VatOrGstOverride.IsNegative() {
		violations = append(violations, "VAT/GST override must not be negative")
	}

	// Country normalization is pointless while required fields are broken
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}

	importCode, found, err := s.resolveToAlpha2(ctx, req.ImportingCountry)
	if err != nil {
		return fmt.Errorf("failed to resolve importing country: %w", err)
	}
	if !found {
		violations = append(violations, fmt.Sprintf("unknown importing country (not found by code or name): %s", req.ImportingCountry))
	} else {
		req.ImportingCountry = importCode
	}

	exportCode, found, err := s.resolveToAlpha2(ctx, req.ExportingCountry)
	if err != nil {
		return fmt.Errorf("failed to resolve exporting country: %w", err)
	}
	if !found {
		violations = append(violations, fmt.Sprintf("unknown exporting country (not found by code or name): %s", req.ExportingCountry))
	} else {
		req.ExportingCountry = exportCode
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// resolveToAlpha2 tries the identifier as an alpha-2 code first, then as
// a full country name (both case-insensitive exact matches).
func (s *validationService) resolveToAlpha2(ctx context.Context, input string) (string, bool, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", false, nil
	}

	if alpha2Regexp.MatchString(trimmed) {
		country, found, err := s.countryRepo.FindByCode(ctx, trimmed)
		if err != nil || !found {
			return "", false, err
		}
		return country.CountryCode, true, nil
	}

	country, found, err := s.countryRepo.FindByName(ctx, trimmed)
	if err != nil || !found {
		return "", false, err
	}
	return country.CountryCode, true, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func stripWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
