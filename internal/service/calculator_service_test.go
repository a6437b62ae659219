package service

import (
	"context"
	"testing"
	"time"

	"tariffengine/internal/cache"
	"tariffengine/internal/enrichment"
	"tariffengine/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type calcFixture struct {
	svc          CalculatorService
	countries    *fakeCountryRepo
	tariffRepo   *fakeTariffRateRepo
	prefRepo     *fakePreferentialRateRepo
	agreements   *fakeTradeAgreementRepo
	addDutyRepo  *fakeAdditionalDutyRepo
	shippingRepo *fakeShippingRateRepo
	productRepo  *fakeProductRepo
	historyRepo  *fakeSearchHistoryRepo
	enricher     *fakeEnricher
}

func newCalcFixture() *calcFixture {
	f := &calcFixture{
		countries:    newFakeCountryRepo(),
		tariffRepo:   &fakeTariffRateRepo{},
		prefRepo:     &fakePreferentialRateRepo{},
		agreements:   newFakeTradeAgreementRepo(),
		addDutyRepo:  &fakeAdditionalDutyRepo{},
		shippingRepo: &fakeShippingRateRepo{},
		productRepo:  newFakeProductRepo(),
		historyRepo:  &fakeSearchHistoryRepo{},
		enricher:     &fakeEnricher{result: enrichment.Result{Status: enrichment.StatusEmpty}},
	}
	f.countries.addCountry("SG", "Singapore")
	f.countries.addCountry("US", "United States")

	f.shippingRepo.rates = append(f.shippingRepo.rates, model.ShippingRate{
		ID:                   1,
		ImportingCountryCode: "SG",
		ExportingCountryCode: "US",
		AirRate:              decimal.NewFromFloat(4.50),
		SeaRate:              decimal.NewFromFloat(1.20),
		LandRate:             nil,
		DistanceKM:           decimal.NewFromInt(300),
	})

	resolver := NewRateResolver(f.tariffRepo, f.prefRepo, f.agreements, cache.NewRateCache(time.Hour), f.enricher, nil, time.Minute)
	validator := NewValidationService(f.countries)
	shipping := NewShippingCostService(f.shippingRepo)
	f.svc = NewCalculatorService(validator, resolver, shipping, f.countries, f.addDutyRepo, f.productRepo, f.historyRepo)
	return f
}

func (f *calcFixture) addMFNRate(rate model.TariffRate) {
	rate.ImportingCountryCode = "SG"
	rate.ExportingCountryCode = "US"
	if rate.HsCode == "" {
		rate.HsCode = "010329"
	}
	_ = f.tariffRepo.Create(context.Background(), &rate)
}

func (f *calcFixture) addPreferentialRate(fraction float64) {
	agreement := model.TradeAgreement{
		Name:          "USSFTA",
		EffectiveDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		ExpiryDate:    time.Date(2035, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	_ = f.agreements.Create(context.Background(), &agreement)
	_ = f.prefRepo.Create(context.Background(), &model.PreferentialRate{
		TradeAgreementID:       agreement.ID,
		HsCode:                 "010329",
		OriginCountryCode:      "US",
		DestinationCountryCode: "SG",
		Rate:                   decimal.NewFromFloat(fraction),
	})
}

func calcRequest() *CalculationRequest {
	return &CalculationRequest{
		ImportingCountry: "SG",
		ExportingCountry: "US",
		HsCode:           "010329",
		ProductValue:     decimal.NewFromInt(1000),
		Weight:           decimal.NewFromInt(100),
		ShippingMode:     model.ShippingModeSea,
	}
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, label string) {
	t.Helper()
	expected := decimal.RequireFromString(want)
	assert.True(t, expected.Equal(got), "%s: want %s got %s", label, want, got)
}

func decPtr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func boolPtr(v bool) *bool { return &v }

// An unknown tuple with an empty enrichment response produces a zero
// duty, and the total collapses to customs value plus shipping.
func TestCalculator_UnknownRateWithEmptyEnrichment(t *testing.T) {
	f := newCalcFixture()

	result, err := f.svc.Calculate(context.Background(), calcRequest())

	require.NoError(t, err)
	assert.Equal(t, 1, f.enricher.calls, "a store miss must trigger one enrichment fetch")
	assertMoney(t, "1000", result.CustomsValue, "customs value")
	assertMoney(t, "0", result.BaseDuty, "base duty")
	assertMoney(t, "0", result.AdditionalDuties, "additional duties")
	assertMoney(t, "0", result.VatOrGst, "vat")
	assertMoney(t, "120", result.ShippingCost, "shipping")
	assertMoney(t, "1120", result.TotalCost, "total")
	assert.True(t, result.TotalCost.Equal(result.CustomsValue.Add(result.ShippingCost)))
	assert.Empty(t, result.TariffType)
}

func TestCalculator_AdValoremDuty(t *testing.T) {
	f := newCalcFixture()
	f.addMFNRate(model.TariffRate{
		TariffType:    model.TariffTypeAdValorem,
		AdValoremRate: decPtr(5.0),
	})

	result, err := f.svc.Calculate(context.Background(), calcRequest())

	require.NoError(t, err)
	// 5.0 percentage points of 1000, freight and insurance default to 0
	assertMoney(t, "50", result.BaseDuty, "base duty")
	assert.Equal(t, model.TariffTypeAdValorem, result.TariffType)
	assertMoney(t, "1170", result.TotalCost, "total")
}

func TestCalculator_AdValoremRescaledToCIFCustomsValue(t *testing.T) {
	f := newCalcFixture()
	f.addMFNRate(model.TariffRate{
		TariffType:    model.TariffTypeAdValorem,
		AdValoremRate: decPtr(5.0),
	})
	req := calcRequest()
	req.Freight = decPtr(100)
	req.Insurance = decPtr(20)

	result, err := f.svc.Calculate(context.Background(), req)

	require.NoError(t, err)
	assertMoney(t, "1120", result.CustomsValue, "customs value")
	// percent leg scales by customsValue/invoiceValue: 50 x 1.12
	assertMoney(t, "56", result.BaseDuty, "base duty")
}

func TestCalculator_SpecificDutyPerHead(t *testing.T) {
	f := newCalcFixture()
	f.addMFNRate(model.TariffRate{
		TariffType:         model.TariffTypeSpecific,
		SpecificRateAmount: decPtr(2.50),
		UnitBasis:          model.UnitBasisHead,
	})
	req := calcRequest()
	req.Heads = 10

	result, err := f.svc.Calculate(context.Background(), req)

	require.NoError(t, err)
	assertMoney(t, "25", result.BaseDuty, "base duty")
}

func TestCalculator_SpecificDutyPerKg(t *testing.T) {
	f := newCalcFixture()
	f.addMFNRate(model.TariffRate{
		TariffType:         model.TariffTypeSpecific,
		SpecificRateAmount: decPtr(0.30),
		UnitBasis:          model.UnitBasisKG,
	})

	result, err := f.svc.Calculate(context.Background(), calcRequest())

	require.NoError(t, err)
	assertMoney(t, "30", result.BaseDuty, "base duty")
}

func TestCalculator_SpecificDutyWithoutHeadsFails(t *testing.T) {
	f := newCalcFixture()
	f.addMFNRate(model.TariffRate{
		TariffType:         model.TariffTypeSpecific,
		SpecificRateAmount: decPtr(2.50),
		UnitBasis:          model.UnitBasisHead,
	})

	_, err := f.svc.Calculate(context.Background(), calcRequest())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "head count is required")
}

func TestCalculator_SpecificDutyNotRescaledByCIF(t *testing.T) {
	f := newCalcFixture()
	f.addMFNRate(model.TariffRate{
		TariffType:         model.TariffTypeSpecific,
		SpecificRateAmount: decPtr(0.30),
		UnitBasis:          model.UnitBasisKG,
	})
	req := calcRequest()
	req.Freight = decPtr(500)

	result, err := f.svc.Calculate(context.Background(), req)

	require.NoError(t, err)
	assertMoney(t, "1500", result.CustomsValue, "customs value")
	assertMoney(t, "30", result.BaseDuty, "specific leg ignores the customs-value rescale")
}

func TestCalculator_CompoundDuty(t *testing.T) {
	f := newCalcFixture()
	f.addMFNRate(model.TariffRate{
		TariffType:       model.TariffTypeCompound,
		CompoundPercent:  decPtr(5.0),
		CompoundSpecific: decPtr(2.50),
		UnitBasis:        model.UnitBasisKG,
	})

	result, err := f.svc.Calculate(context.Background(), calcRequest())

	require.NoError(t, err)
	// 5% of 1000 plus 2.50/kg x 100kg
	assertMoney(t, "300", result.BaseDuty, "base duty")
}

func TestCalculator_MixedMaxDuty(t *testing.T) {
	f := newCalcFixture()
	f.addMFNRate(model.TariffRate{
		TariffType:    model.TariffTypeMixedMax,
		MixedPercent:  decPtr(5.0),
		MixedSpecific: decPtr(1.00),
		UnitBasis:     model.UnitBasisKG,
	})

	result, err := f.svc.Calculate(context.Background(), calcRequest())

	require.NoError(t, err)
	// max(5% of 1000 = 50, 1.00/kg x 100kg = 100)
	assertMoney(t, "100", result.BaseDuty, "base duty")
}

func TestCalculator_MixedMinDuty(t *testing.T) {
	f := newCalcFixture()
	f.addMFNRate(model.TariffRate{
		TariffType:    model.TariffTypeMixedMin,
		MixedPercent:  decPtr(5.0),
		MixedSpecific: decPtr(1.00),
		UnitBasis:     model.UnitBasisKG,
	})

	result, err := f.svc.Calculate(context.Background(), calcRequest())

	require.NoError(t, err)
	assertMoney(t, "50", result.BaseDuty, "base duty")
}

// An active preferential rate replaces the MFN duty outright; it is not
// a discount on it.
func TestCalculator_PreferentialRateReplacesMFNDuty(t *testing.T) {
	f := newCalcFixture()
	f.addMFNRate(model.TariffRate{
		TariffType:    model.TariffTypeAdValorem,
		AdValoremRate: decPtr(10.0),
	})
	f.addPreferentialRate(0.02)

	result, err := f.svc.Calculate(context.Background(), calcRequest())

	require.NoError(t, err)
	assertMoney(t, "20", result.BaseDuty, "preferential fraction x invoice value")
	require.NotNil(t, result.TradeAgreement)
	assert.Equal(t, "USSFTA", *result.TradeAgreement)
}

func TestCalculator_PreferentialRateOnSpecificDutyUsesHeads(t *testing.T) {
	f := newCalcFixture()
	f.addMFNRate(model.TariffRate{
		TariffType:         model.TariffTypeSpecific,
		SpecificRateAmount: decPtr(2.50),
		UnitBasis:          model.UnitBasisHead,
	})
	f.addPreferentialRate(0.50)
	req := calcRequest()
	req.Heads = 10

	result, err := f.svc.Calculate(context.Background(), req)

	require.NoError(t, err)
	assertMoney(t, "5", result.BaseDuty, "preferential rate x heads")
}

func TestCalculator_ExpiredAgreementKeepsMFNDuty(t *testing.T) {
	f := newCalcFixture()
	f.addMFNRate(model.TariffRate{
		TariffType:    model.TariffTypeAdValorem,
		AdValoremRate: decPtr(10.0),
	})
	agreement := model.TradeAgreement{
		Name:          "LAPSED",
		EffectiveDate: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		ExpiryDate:    time.Date(2005, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	_ = f.agreements.Create(context.Background(), &agreement)
	_ = f.prefRepo.Create(context.Background(), &model.PreferentialRate{
		TradeAgreementID:       agreement.ID,
		HsCode:                 "010329",
		OriginCountryCode:      "US",
		DestinationCountryCode: "SG",
		Rate:                   decimal.NewFromFloat(0.02),
	})

	result, err := f.svc.Calculate(context.Background(), calcRequest())

	require.NoError(t, err)
	assertMoney(t, "100", result.BaseDuty, "MFN duty stays when the agreement is outside its window")
	assert.Nil(t, result.TradeAgreement)
}

func TestCalculator_AdditionalDutiesStackOnCustomsValue(t *testing.T) {
	f := newCalcFixture()
	f.addMFNRate(model.TariffRate{
		TariffType:    model.TariffTypeAdValorem,
		AdValoremRate: decPtr(5.0),
	})
	f.addDutyRepo.duties = append(f.addDutyRepo.duties, model.AdditionalDuty{
		ID:                   1,
		ImportingCountryCode: "SG",
		ExportingCountryCode: "US",
		HsCode:               "010329",
		AntiDumpingRate:      decPtr(0.25),
		CountervailingRate:   decPtr(0.10),
		EffectiveFrom:        time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		EffectiveTo:          time.Date(2035, 12, 31, 0, 0, 0, 0, time.UTC),
	})

	result, err := f.svc.Calculate(context.Background(), calcRequest())

	require.NoError(t, err)
	// (0.25 + 0.10) x 1000
	assertMoney(t, "350", result.AdditionalDuties, "additional duties")
	assertMoney(t, "400", result.TariffAmount, "base + additional")
}

func TestCalculator_RemedyStackingDisabledByProfile(t *testing.T) {
	f := newCalcFixture()
	f.countries.profiles["SG"] = model.CountryProfile{
		CountryCode:       "SG",
		ValuationBasis:    model.ValuationCIF,
		StackRemediesOnCV: boolPtr(false),
	}
	f.addDutyRepo.duties = append(f.addDutyRepo.duties, model.AdditionalDuty{
		ID:                   1,
		ImportingCountryCode: "SG",
		ExportingCountryCode: "US",
		HsCode:               "010329",
		AntiDumpingRate:      decPtr(0.25),
		EffectiveFrom:        time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		EffectiveTo:          time.Date(2035, 12, 31, 0, 0, 0, 0, time.UTC),
	})

	result, err := f.svc.Calculate(context.Background(), calcRequest())

	require.NoError(t, err)
	assertMoney(t, "0", result.AdditionalDuties, "additional duties")
}

func TestCalculator_VatOnDutyInclusiveBase(t *testing.T) {
	f := newCalcFixture()
	f.countries.profiles["SG"] = model.CountryProfile{
		CountryCode:    "SG",
		ValuationBasis: model.ValuationCIF,
		VatOrGstRate:   decPtr(0.09),
	}
	f.addMFNRate(model.TariffRate{
		TariffType:    model.TariffTypeAdValorem,
		AdValoremRate: decPtr(5.0),
	})

	result, err := f.svc.Calculate(context.Background(), calcRequest())

	require.NoError(t, err)
	// 9% of (1000 + 50): duties enter the VAT base by default
	assertMoney(t, "94.5", result.VatOrGst, "vat")
	assert.True(t, result.VatRate.Equal(decimal.NewFromFloat(0.09)))
}

func TestCalculator_VatOnCustomsValueOnlyWhenProfileExcludesDuties(t *testing.T) {
	f := newCalcFixture()
	f.countries.profiles["SG"] = model.CountryProfile{
		CountryCode:       "SG",
		ValuationBasis:    model.ValuationCIF,
		VatOrGstRate:      decPtr(0.09),
		VatIncludesDuties: boolPtr(false),
	}
	f.addMFNRate(model.TariffRate{
		TariffType:    model.TariffTypeAdValorem,
		AdValoremRate: decPtr(5.0),
	})

	result, err := f.svc.Calculate(context.Background(), calcRequest())

	require.NoError(t, err)
	assertMoney(t, "90", result.VatOrGst, "vat")
}

func TestCalculator_VatOverrideWinsOverProfile(t *testing.T) {
	f := newCalcFixture()
	f.countries.profiles["SG"] = model.CountryProfile{
		CountryCode:    "SG",
		ValuationBasis: model.ValuationCIF,
		VatOrGstRate:   decPtr(0.09),
	}
	req := calcRequest()
	req.VatOrGstOverride = decPtr(0.20)

	result, err := f.svc.Calculate(context.Background(), req)

	require.NoError(t, err)
	assertMoney(t, "200", result.VatOrGst, "vat")
}

func TestCalculator_TransactionBasisIgnoresFreightAndInsurance(t *testing.T) {
	f := newCalcFixture()
	f.countries.profiles["SG"] = model.CountryProfile{
		CountryCode:    "SG",
		ValuationBasis: model.ValuationTransaction,
	}
	req := calcRequest()
	req.Freight = decPtr(100)
	req.Insurance = decPtr(20)

	result, err := f.svc.Calculate(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, model.ValuationTransaction, result.ValuationBasis)
	assertMoney(t, "1000", result.CustomsValue, "customs value")
}

func TestCalculator_ValuationOverrideBeatsProfile(t *testing.T) {
	f := newCalcFixture()
	f.countries.profiles["SG"] = model.CountryProfile{
		CountryCode:    "SG",
		ValuationBasis: model.ValuationCIF,
	}
	req := calcRequest()
	req.Freight = decPtr(100)
	req.ValuationOverride = model.ValuationTransaction

	result, err := f.svc.Calculate(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, model.ValuationTransaction, result.ValuationBasis)
	assertMoney(t, "1000", result.CustomsValue, "customs value")
}

func TestCalculator_LandModeWithoutRouteFails(t *testing.T) {
	f := newCalcFixture()
	req := calcRequest()
	req.ShippingMode = model.ShippingModeLand

	_, err := f.svc.Calculate(context.Background(), req)

	var noRoute *NoRouteError
	require.ErrorAs(t, err, &noRoute)
	assert.Equal(t, model.ShippingModeLand, noRoute.Mode)
}

func TestCalculator_ValidationFailureSurfacesEveryViolation(t *testing.T) {
	f := newCalcFixture()
	req := calcRequest()
	req.ImportingCountry = ""
	req.ShippingMode = "TELEPORT"

	_, err := f.svc.Calculate(context.Background(), req)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.GreaterOrEqual(t, len(verr.Violations), 2)
}

func TestCalculator_ComponentsRoundHalfUpBeforeTotalling(t *testing.T) {
	f := newCalcFixture()
	f.addMFNRate(model.TariffRate{
		TariffType:    model.TariffTypeAdValorem,
		AdValoremRate: decPtr(5.0),
	})
	req := calcRequest()
	req.ProductValue = decimal.RequireFromString("100.50")

	result, err := f.svc.Calculate(context.Background(), req)

	require.NoError(t, err)
	// 5% of 100.50 = 5.025, half-up to 5.03
	assertMoney(t, "5.03", result.BaseDuty, "base duty")
	expectedTotal := result.CustomsValue.Add(result.TariffAmount).Add(result.VatOrGst).Add(result.ShippingCost)
	assert.True(t, expectedTotal.Equal(result.TotalCost), "total is the sum of the rounded components")
}

func TestCalculator_WithoutHsCodeSkipsDutyPipeline(t *testing.T) {
	f := newCalcFixture()
	req := calcRequest()
	req.HsCode = ""

	result, err := f.svc.Calculate(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 0, f.enricher.calls, "no HS code means no rate resolution at all")
	assertMoney(t, "0", result.BaseDuty, "base duty")
	assertMoney(t, "1120", result.TotalCost, "total")
}

func TestCalculator_ProductDescriptionAttached(t *testing.T) {
	f := newCalcFixture()
	_ = f.productRepo.Create(context.Background(), &model.Product{
		HsCode:      "010329",
		Description: "Live swine, other than pure-bred",
	})

	result, err := f.svc.Calculate(context.Background(), calcRequest())

	require.NoError(t, err)
	assert.Equal(t, "Live swine, other than pure-bred", result.ProductDescription)
}

func TestCalculator_HistoryLoggedAfterSuccess(t *testing.T) {
	f := newCalcFixture()

	result, err := f.svc.Calculate(context.Background(), calcRequest())

	require.NoError(t, err)
	require.Len(t, f.historyRepo.entries, 1)
	entry := f.historyRepo.entries[0]
	assert.Equal(t, "SG", entry.ImportingCountryCode)
	assert.Equal(t, "US", entry.ExportingCountryCode)
	assert.Equal(t, "010329", entry.HsCode)
	assert.Equal(t, model.ShippingModeSea, entry.ShippingMode)
	assert.True(t, entry.TotalCost.Equal(result.TotalCost))
}

func TestCalculator_NoHistoryOnValidationFailure(t *testing.T) {
	f := newCalcFixture()
	req := calcRequest()
	req.ProductValue = decimal.Zero

	_, err := f.svc.Calculate(context.Background(), req)

	require.Error(t, err)
	assert.Empty(t, f.historyRepo.entries)
}

// With an unchanged catalogue, repeating a request must reproduce the
// exact same breakdown, cache hit or not.
func TestCalculator_RepeatedRequestYieldsIdenticalBreakdown(t *testing.T) {
	f := newCalcFixture()
	f.addMFNRate(model.TariffRate{
		TariffType:    model.TariffTypeAdValorem,
		AdValoremRate: decPtr(10.0),
	})
	f.addPreferentialRate(0.02)
	f.countries.profiles["SG"] = model.CountryProfile{
		CountryCode:    "SG",
		ValuationBasis: model.ValuationCIF,
		VatOrGstRate:   decPtr(0.09),
	}

	first, err := f.svc.Calculate(context.Background(), calcRequest())
	require.NoError(t, err)
	second, err := f.svc.Calculate(context.Background(), calcRequest())
	require.NoError(t, err)

	assert.True(t, first.CustomsValue.Equal(second.CustomsValue))
	assert.True(t, first.BaseDuty.Equal(second.BaseDuty))
	assert.True(t, first.AdditionalDuties.Equal(second.AdditionalDuties))
	assert.True(t, first.TariffAmount.Equal(second.TariffAmount))
	assert.True(t, first.VatOrGst.Equal(second.VatOrGst))
	assert.True(t, first.ShippingCost.Equal(second.ShippingCost))
	assert.True(t, first.TotalCost.Equal(second.TotalCost))
	assert.Equal(t, first.ValuationBasis, second.ValuationBasis)
	assert.Equal(t, first.TariffType, second.TariffType)
	require.NotNil(t, second.TradeAgreement)
	assert.Equal(t, *first.TradeAgreement, *second.TradeAgreement)
}

func TestAgreementActive_BoundaryDaysInAnyTimezone(t *testing.T) {
	agreement := model.TradeAgreement{
		EffectiveDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		ExpiryDate:    time.Date(2030, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	east := time.FixedZone("UTC+13", 13*3600)
	west := time.FixedZone("UTC-11", -11*3600)

	// Early morning of the effective day far east of UTC is still inside
	assert.True(t, agreementActive(agreement, time.Date(2020, 1, 1, 1, 0, 0, 0, east)))
	// Late evening of the expiry day far west of UTC is still inside
	assert.True(t, agreementActive(agreement, time.Date(2030, 12, 31, 23, 0, 0, 0, west)))

	assert.False(t, agreementActive(agreement, time.Date(2019, 12, 31, 23, 0, 0, 0, east)))
	assert.False(t, agreementActive(agreement, time.Date(2031, 1, 1, 1, 0, 0, 0, west)))
}

func TestCalculator_DefaultedFieldsReported(t *testing.T) {
	f := newCalcFixture()

	result, err := f.svc.Calculate(context.Background(), calcRequest())

	require.NoError(t, err)
	assert.Contains(t, result.DefaultedFields, "freight (defaulted to 0.00)")
	assert.Contains(t, result.DefaultedFields, "insurance (defaulted to 0.00)")
}
