package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validationFixture() (ValidationService, *fakeCountryRepo) {
	countries := newFakeCountryRepo()
	countries.addCountry("SG", "Singapore")
	countries.addCountry("US", "United States")
	countries.addCountry("VN", "Vietnam")
	return NewValidationService(countries), countries
}

func validRequest() *CalculationRequest {
	return &CalculationRequest{
		ImportingCountry: "SG",
		ExportingCountry: "US",
		HsCode:           "010329",
		ProductValue:     decimal.NewFromInt(1000),
		Weight:           decimal.NewFromInt(100),
		ShippingMode:     "SEA",
	}
}

func TestValidationService_CleanRequestPasses(t *testing.T) {
	svc, _ := validationFixture()
	req := validRequest()

	err := svc.ValidateAndNormalize(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "SG", req.ImportingCountry)
	assert.Equal(t, "US", req.ExportingCountry)
}

func TestValidationService_ResolvesCountryNames(t *testing.T) {
	svc, _ := validationFixture()
	req := validRequest()
	req.ImportingCountry = "Singapore"
	req.ExportingCountry = "united states"

	err := svc.ValidateAndNormalize(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "SG", req.ImportingCountry)
	assert.Equal(t, "US", req.ExportingCountry)
}

func TestValidationService_LowercaseCodeIsCanonicalized(t *testing.T) {
	svc, _ := validationFixture()
	req := validRequest()
	req.ImportingCountry = "sg"

	err := svc.ValidateAndNormalize(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "SG", req.ImportingCountry)
}

func TestValidationService_ShippingModeNormalized(t *testing.T) {
	svc, _ := validationFixture()
	req := validRequest()
	req.ShippingMode = " sea "

	err := svc.ValidateAndNormalize(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "SEA", req.ShippingMode)
}

func TestValidationService_HsCodeWhitespaceStripped(t *testing.T) {
	svc, _ := validationFixture()
	req := validRequest()
	req.HsCode = "0103 29"

	err := svc.ValidateAndNormalize(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "010329", req.HsCode)
	assert.Contains(t, req.DefaultedFields, "hs_code (whitespace stripped)")
}

func TestValidationService_MissingFreightAndInsuranceDefaulted(t *testing.T) {
	svc, _ := validationFixture()
	req := validRequest()

	err := svc.ValidateAndNormalize(context.Background(), req)

	require.NoError(t, err)
	require.NotNil(t, req.Freight)
	require.NotNil(t, req.Insurance)
	assert.True(t, req.Freight.IsZero())
	assert.True(t, req.Insurance.IsZero())
	assert.Contains(t, req.MissingFields, "freight")
	assert.Contains(t, req.MissingFields, "insurance")
	assert.Contains(t, req.DefaultedFields, "freight (defaulted to 0.00)")
	assert.Contains(t, req.DefaultedFields, "insurance (defaulted to 0.00)")
}

func TestValidationService_ProvidedFreightIsKept(t *testing.T) {
	svc, _ := validationFixture()
	req := validRequest()
	freight := decimal.NewFromInt(50)
	req.Freight = &freight

	err := svc.ValidateAndNormalize(context.Background(), req)

	require.NoError(t, err)
	assert.True(t, req.Freight.Equal(decimal.NewFromInt(50)))
	assert.NotContains(t, req.MissingFields, "freight")
}

func TestValidationService_AggregatesViolations(t *testing.T) {
	svc, _ := validationFixture()
	req := &CalculationRequest{
		ShippingMode: "TELEPORT",
		HsCode:       "12",
		ProductValue: decimal.NewFromInt(-5),
		Weight:       decimal.Zero,
		Heads:        -1,
	}

	err := svc.ValidateAndNormalize(context.Background(), req)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	joined := verr.Error()
	assert.Contains(t, joined, "importing country is required")
	assert.Contains(t, joined, "exporting country is required")
	assert.Contains(t, joined, "unsupported shipping mode")
	assert.Contains(t, joined, "product value must be greater than zero")
	assert.Contains(t, joined, "weight must be greater than zero")
	assert.Contains(t, joined, "head count must not be negative")
	assert.Contains(t, joined, "invalid HS code format")
}

func TestValidationService_UnknownCountry(t *testing.T) {
	svc, _ := validationFixture()
	req := validRequest()
	req.ExportingCountry = "Atlantis"

	err := svc.ValidateAndNormalize(context.Background(), req)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "unknown exporting country")
}

func TestValidationService_InvalidValuationOverride(t *testing.T) {
	svc, _ := validationFixture()
	req := validRequest()
	req.ValuationOverride = "FOB"

	err := svc.ValidateAndNormalize(context.Background(), req)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "invalid valuation override")
}

func TestValidationService_ValuationOverrideNormalized(t *testing.T) {
	svc, _ := validationFixture()
	req := validRequest()
	req.ValuationOverride = "transaction"

	err := svc.ValidateAndNormalize(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "TRANSACTION", req.ValuationOverride)
}

func TestValidationService_NegativeVatOverrideRejected(t *testing.T) {
	svc, _ := validationFixture()
	req := validRequest()
	negative := decimal.NewFromFloat(-0.09)
	req.VatOrGstOverride = &negative

	err := svc.ValidateAndNormalize(context.Background(), req)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "VAT/GST override must not be negative")
}

func TestValidationService_EmptyHsCodeIsAllowed(t *testing.T) {
	svc, _ := validationFixture()
	req := validRequest()
	req.HsCode = ""

	err := svc.ValidateAndNormalize(context.Background(), req)
	require.NoError(t, err)
}

func TestValidationService_NilRequest(t *testing.T) {
	svc, _ := validationFixture()

	err := svc.ValidateAndNormalize(context.Background(), nil)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}
