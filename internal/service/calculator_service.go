package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"tariffengine/internal/model"
	"tariffengine/internal/repository"

	"github.com/shopspring/decimal"
)

// CalculationResult is the itemized landed-cost breakdown. Every monetary
// field is rounded to two decimals, half-up, as the final step of the
// pipeline. Results are computed and returned, never persisted; only a
// thin history entry is logged best-effort.
type CalculationResult struct {
	ImportingCountry   string           `json:"importing_country"`
	ExportingCountry   string           `json:"exporting_country"`
	HsCode             string           `json:"hs_code,omitempty"`
	ProductDescription string           `json:"product_description,omitempty"`
	ProductValue       decimal.Decimal  `json:"product_value"`
	Weight             decimal.Decimal  `json:"weight"`
	Heads              int              `json:"heads"`
	ShippingMode       string           `json:"shipping_mode"`
	ValuationBasis     string           `json:"valuation_basis"`
	Year               *int             `json:"year,omitempty"` // year of the rate actually used
	TariffType         string           `json:"tariff_type,omitempty"`
	AdValoremRate      *decimal.Decimal `json:"ad_valorem_rate,omitempty"` // percentage points
	VatRate            decimal.Decimal  `json:"vat_rate"`                  // fraction
	TradeAgreement     *string          `json:"trade_agreement,omitempty"`

	CustomsValue     decimal.Decimal `json:"customs_value"`
	BaseDuty         decimal.Decimal `json:"base_duty"`
	AdditionalDuties decimal.Decimal `json:"additional_duties"`
	TariffAmount     decimal.Decimal `json:"tariff_amount"` // base + additional
	VatOrGst         decimal.Decimal `json:"vat_or_gst"`
	ShippingCost     decimal.Decimal `json:"shipping_cost"`
	TotalCost        decimal.Decimal `json:"total_cost"`

	MissingFields   []string  `json:"missing_fields,omitempty"`
	DefaultedFields []string  `json:"defaulted_fields,omitempty"`
	CalculatedAt    time.Time `json:"calculated_at"`
}

// CalculatorService is the engine's sole entry point for the transport
// layer.
type CalculatorService interface {
	Calculate(ctx context.Context, req *CalculationRequest) (CalculationResult, error)
}

type calculatorService struct {
	validator    ValidationService
	resolver     RateResolver
	shipping     ShippingCostService
	countryRepo  repository.CountryRepository
	addDutyRepo  repository.AdditionalDutyRepository
	productRepo  repository.ProductRepository
	historyRepo  repository.SearchHistoryRepository
}

func NewCalculatorService(
	validator ValidationService,
	resolver RateResolver,
	shipping ShippingCostService,
	countryRepo repository.CountryRepository,
	addDutyRepo repository.AdditionalDutyRepository,
	productRepo repository.ProductRepository,
	historyRepo repository.SearchHistoryRepository,
) CalculatorService {
	return &calculatorService{
		validator:   validator,
		resolver:    resolver,
		shipping:    shipping,
		countryRepo: countryRepo,
		addDutyRepo: addDutyRepo,
		productRepo: productRepo,
		historyRepo: historyRepo,
	}
}

func (s *calculatorService) Calculate(ctx context.Context, req *CalculationRequest) (CalculationResult, error) {
	if err := s.validator.ValidateAndNormalize(ctx, req); err != nil {
		return CalculationResult{}, err
	}
	if len(req.DefaultedFields) > 0 {
		log.Printf("Calculation fields set to defaults: %v", req.DefaultedFields)
	}

	profile, hasProfile, err := s.countryRepo.FindProfile(ctx, req.ImportingCountry)
	if err != nil {
		return CalculationResult{}, fmt.Errorf("failed to load country profile for %s: %w", req.ImportingCountry, err)
	}

	// 1) Customs valuation
	basis := valuationBasis(req, profile, hasProfile)
	invoiceValue := req.ProductValue
	customsValue := invoiceValue
	if basis == model.ValuationCIF {
		customsValue = invoiceValue.Add(*req.Freight).Add(*req.Insurance)
	}

	// 2) Base duty by regime type; percent legs run against the raw
	// invoice value and are rescaled to the customs value afterwards.
	var resolved ResolvedRate
	if req.HsCode != "" {
		resolved, err = s.resolver.Resolve(ctx, req.HsCode, req.ImportingCountry, req.ExportingCountry, req.Year)
		if err != nil {
			return CalculationResult{}, fmt.Errorf("rate resolution failed: %w", err)
		}
	}

	baseDuty := decimal.Zero
	if resolved.Found {
		legs, err := computeBaseDuty(resolved.Rate, req)
		if err != nil {
			return CalculationResult{}, err
		}
		percentLeg := legs.percent
		if invoiceValue.GreaterThan(decimal.Zero) {
			scaler := customsValue.Div(invoiceValue)
			percentLeg = percentLeg.Mul(scaler)
		}
		baseDuty = percentLeg.Add(legs.specific)
	}

	// 3) FTA replacement: an active preferential rate replaces the MFN
	// duty entirely, it does not discount it.
	var agreementName *string
	if resolved.Found {
		pref, err := s.resolver.ResolvePreferential(ctx, req.ExportingCountry, req.ImportingCountry, req.HsCode)
		if err != nil {
			return CalculationResult{}, fmt.Errorf("preferential rate lookup failed: %w", err)
		}
		if pref.Found && agreementActive(pref.Agreement, time.Now()) {
			switch resolved.Rate.TariffType {
			case model.TariffTypeAdValorem:
				baseDuty = pref.Rate.Rate.Mul(invoiceValue)
				agreementName = &pref.Agreement.Name
			case model.TariffTypeSpecific:
				baseDuty = pref.Rate.Rate.Mul(decimal.NewFromInt(int64(req.Heads)))
				agreementName = &pref.Agreement.Name
			}
		}
	}

	// 4) Additional (remedial) duties stacked on customs value
	additionalDuties := decimal.Zero
	if req.HsCode != "" && stackRemediesOnCV(profile, hasProfile) {
		duty, found, err := s.addDutyRepo.FindActive(ctx, req.ImportingCountry, req.ExportingCountry, req.HsCode, time.Now())
		if err != nil {
			return CalculationResult{}, fmt.Errorf("additional duty lookup failed: %w", err)
		}
		if found {
			for _, rate := range []*decimal.Decimal{duty.SpecialTariffRate, duty.AntiDumpingRate, duty.CountervailingRate, duty.SafeguardRate} {
				if rate != nil && rate.GreaterThan(decimal.Zero) {
					additionalDuties = additionalDuties.Add(rate.Mul(customsValue))
				}
			}
		}
	}

	// 5) VAT/GST on the jurisdiction-specific base
	vatRate := decimal.Zero
	switch {
	case req.VatOrGstOverride != nil:
		vatRate = *req.VatOrGstOverride
	case hasProfile && profile.VatOrGstRate != nil:
		vatRate = *profile.VatOrGstRate
	}
	vatBase := customsValue
	if vatIncludesDuties(profile, hasProfile) {
		vatBase = customsValue.Add(baseDuty).Add(additionalDuties)
	}
	vatOrGst := vatRate.Mul(vatBase)

	// 6) Shipping
	shippingCost, err := s.shipping.CalculateShippingCost(ctx, req)
	if err != nil {
		return CalculationResult{}, err
	}

	// 7) Aggregation; rounding happens here and only here
	result := CalculationResult{
		ImportingCountry: req.ImportingCountry,
		ExportingCountry: req.ExportingCountry,
		HsCode:           req.HsCode,
		ProductValue:     round2(invoiceValue),
		Weight:           req.Weight,
		Heads:            req.Heads,
		ShippingMode:     req.ShippingMode,
		ValuationBasis:   basis,
		VatRate:          vatRate,
		TradeAgreement:   agreementName,
		CustomsValue:     round2(customsValue),
		BaseDuty:         round2(baseDuty),
		AdditionalDuties: round2(additionalDuties),
		VatOrGst:         round2(vatOrGst),
		ShippingCost:     round2(shippingCost),
		MissingFields:    req.MissingFields,
		DefaultedFields:  req.DefaultedFields,
		CalculatedAt:     time.Now(),
	}
	result.TariffAmount = result.BaseDuty.Add(result.AdditionalDuties)
	result.TotalCost = result.CustomsValue.Add(result.TariffAmount).Add(result.VatOrGst).Add(result.ShippingCost)

	if resolved.Found {
		result.Year = resolved.Rate.Year
		result.TariffType = resolved.Rate.TariffType
		result.AdValoremRate = resolved.Rate.AdValoremRate
	}

	if req.HsCode != "" {
		if product, found, err := s.productRepo.FindByHsCode(ctx, req.HsCode); err == nil && found {
			result.ProductDescription = product.Description
		}
	}

	s.logHistory(ctx, req, result)
	return result, nil
}

// dutyLegs separates the percent-based and specific components of a duty
// so the customs-value rescale can touch the percent leg only.
type dutyLegs struct {
	percent  decimal.Decimal
	specific decimal.Decimal
}

var oneHundred = decimal.NewFromInt(100)

// computeBaseDuty dispatches on the tariff type. Percent rates are stored
// as percentage point values and divided by 100 here, at the moment of
// multiplication.
func computeBaseDuty(rate model.TariffRate, req *CalculationRequest) (dutyLegs, error) {
	switch rate.TariffType {
	case model.TariffTypeAdValorem:
		if rate.AdValoremRate == nil {
			return dutyLegs{}, fmt.Errorf("ad valorem rate is missing for HS %s (%s->%s)",
				rate.HsCode, rate.ExportingCountryCode, rate.ImportingCountryCode)
		}
		return dutyLegs{
			percent:  rate.AdValoremRate.Div(oneHundred).Mul(req.ProductValue),
			specific: decimal.Zero,
		}, nil

	case model.TariffTypeSpecific:
		if rate.SpecificRateAmount == nil {
			return dutyLegs{}, fmt.Errorf("specific rate amount is missing for HS %s (%s->%s)",
				rate.HsCode, rate.ExportingCountryCode, rate.ImportingCountryCode)
		}
		quantity, err := requiredQuantity(rate.UnitBasis, req)
		if err != nil {
			return dutyLegs{}, err
		}
		return dutyLegs{
			percent:  decimal.Zero,
			specific: rate.SpecificRateAmount.Mul(quantity),
		}, nil

	case model.TariffTypeCompound:
		return dutyLegs{
			percent:  percentLeg(rate.CompoundPercent, req.ProductValue),
			specific: specificLeg(rate.CompoundSpecific, rate.UnitBasis, req),
		}, nil

	case model.TariffTypeMixedMax, model.TariffTypeMixedMin:
		legs := dutyLegs{
			percent:  percentLeg(rate.MixedPercent, req.ProductValue),
			specific: specificLeg(rate.MixedSpecific, rate.UnitBasis, req),
		}
		percentWins := legs.percent.GreaterThanOrEqual(legs.specific)
		if rate.TariffType == model.TariffTypeMixedMin {
			percentWins = legs.percent.LessThanOrEqual(legs.specific)
		}
		if percentWins {
			return dutyLegs{percent: legs.percent}, nil
		}
		return dutyLegs{specific: legs.specific}, nil

	default:
		return dutyLegs{}, fmt.Errorf("unknown tariff type: %s", rate.TariffType)
	}
}

// requiredQuantity fails when the quantity field the unit basis needs is
// absent; SPECIFIC duties cannot be computed without it.
func requiredQuantity(unitBasis string, req *CalculationRequest) (decimal.Decimal, error) {
	switch unitBasis {
	case model.UnitBasisHead:
		if req.Heads <= 0 {
			return decimal.Zero, fmt.Errorf("head count is required for a per-head specific duty")
		}
		return decimal.NewFromInt(int64(req.Heads)), nil
	default: // KG
		if req.Weight.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, fmt.Errorf("weight is required for a per-kg specific duty")
		}
		return req.Weight, nil
	}
}

// percentLeg treats an absent percent rate as zero (COMPOUND/MIXED
// semantics, unlike AD_VALOREM which fails).
func percentLeg(rate *decimal.Decimal, invoiceValue decimal.Decimal) decimal.Decimal {
	if rate == nil {
		return decimal.Zero
	}
	return rate.Div(oneHundred).Mul(invoiceValue)
}

// specificLeg treats an absent specific rate or quantity as zero.
func specificLeg(rate *decimal.Decimal, unitBasis string, req *CalculationRequest) decimal.Decimal {
	if rate == nil {
		return decimal.Zero
	}
	var quantity decimal.Decimal
	switch unitBasis {
	case model.UnitBasisHead:
		quantity = decimal.NewFromInt(int64(req.Heads))
	default:
		quantity = req.Weight
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return rate.Mul(quantity)
}

func valuationBasis(req *CalculationRequest, profile model.CountryProfile, hasProfile bool) string {
	if req.ValuationOverride != "" {
		return req.ValuationOverride
	}
	if hasProfile && profile.ValuationBasis != "" {
		return profile.ValuationBasis
	}
	return model.ValuationCIF
}

func vatIncludesDuties(profile model.CountryProfile, hasProfile bool) bool {
	if hasProfile && profile.VatIncludesDuties != nil {
		return *profile.VatIncludesDuties
	}
	return true
}

func stackRemediesOnCV(profile model.CountryProfile, hasProfile bool) bool {
	if hasProfile && profile.StackRemediesOnCV != nil {
		return *profile.StackRemediesOnCV
	}
	return true
}

// agreementActive compares at day granularity, inclusive on both ends.
// The wall-clock date is rebuilt in UTC so the boundary days line up with
// the stored date columns whatever the process timezone is.
func agreementActive(agreement model.TradeAgreement, on time.Time) bool {
	day := time.Date(on.Year(), on.Month(), on.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(agreement.EffectiveDate) && !day.After(agreement.ExpiryDate)
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// logHistory is best-effort; a failed write never fails the calculation.
func (s *calculatorService) logHistory(ctx context.Context, req *CalculationRequest, result CalculationResult) {
	if s.historyRepo == nil {
		return
	}
	entry := model.SearchHistory{
		ImportingCountryCode: req.ImportingCountry,
		ExportingCountryCode: req.ExportingCountry,
		HsCode:               req.HsCode,
		ShippingMode:         req.ShippingMode,
		ProductValue:         result.ProductValue,
		TotalCost:            result.TotalCost,
	}
	if err := s.historyRepo.Log(ctx, &entry); err != nil {
		log.Printf("Failed to record search history: %v", err)
	}
}
