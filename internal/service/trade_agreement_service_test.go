package service

import (
	"context"
	"testing"

	"tariffengine/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type agreementFixture struct {
	svc        TradeAgreementService
	agreements *fakeTradeAgreementRepo
	prefRepo   *fakePreferentialRateRepo
	auditRepo  *fakeAuditRepo
}

func newAgreementFixture() *agreementFixture {
	countries := newFakeCountryRepo()
	countries.addCountry("SG", "Singapore")
	countries.addCountry("US", "United States")

	f := &agreementFixture{
		agreements: newFakeTradeAgreementRepo(),
		prefRepo:   &fakePreferentialRateRepo{},
		auditRepo:  &fakeAuditRepo{},
	}
	f.svc = NewTradeAgreementService(f.agreements, f.prefRepo, countries, f.auditRepo, fakeTxManager{})
	return f
}

func agreementRequest(name string) TradeAgreementRequest {
	return TradeAgreementRequest{
		Name:          name,
		EffectiveDate: "2020-01-01",
		ExpiryDate:    "2030-12-31",
	}
}

func TestTradeAgreement_Create(t *testing.T) {
	f := newAgreementFixture()

	agreement, err := f.svc.CreateAgreement(context.Background(), agreementRequest("USSFTA"), testAdminID)

	require.NoError(t, err)
	assert.NotZero(t, agreement.ID)
	assert.Equal(t, "USSFTA", agreement.Name)
	assert.Equal(t, 2020, agreement.EffectiveDate.Year())
	require.Len(t, f.auditRepo.entries, 1)
	assert.Equal(t, model.ActionCreateTradeAgreement, f.auditRepo.entries[0].Action)
}

func TestTradeAgreement_CreateRejectsDuplicateName(t *testing.T) {
	f := newAgreementFixture()
	_, err := f.svc.CreateAgreement(context.Background(), agreementRequest("USSFTA"), testAdminID)
	require.NoError(t, err)

	_, err = f.svc.CreateAgreement(context.Background(), agreementRequest("USSFTA"), testAdminID)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestTradeAgreement_CreateRejectsInvertedWindow(t *testing.T) {
	f := newAgreementFixture()
	req := TradeAgreementRequest{
		Name:          "BACKWARDS",
		EffectiveDate: "2030-01-01",
		ExpiryDate:    "2020-12-31",
	}

	_, err := f.svc.CreateAgreement(context.Background(), req, testAdminID)

	require.Error(t, err)
}

func TestTradeAgreement_AddPreferentialRate(t *testing.T) {
	f := newAgreementFixture()
	agreement, err := f.svc.CreateAgreement(context.Background(), agreementRequest("USSFTA"), testAdminID)
	require.NoError(t, err)

	rate, err := f.svc.AddPreferentialRate(context.Background(), agreement.ID, PreferentialRateRequest{
		HsCode:                 "010329",
		OriginCountryCode:      "us",
		DestinationCountryCode: "sg",
		Rate:                   "0.02",
	}, testAdminID)

	require.NoError(t, err)
	assert.Equal(t, agreement.ID, rate.TradeAgreementID)
	assert.Equal(t, "US", rate.OriginCountryCode)
	assert.Equal(t, "SG", rate.DestinationCountryCode)
	assert.True(t, rate.Rate.Equal(decimal.NewFromFloat(0.02)))
}

func TestTradeAgreement_AddPreferentialRateToMissingAgreement(t *testing.T) {
	f := newAgreementFixture()

	_, err := f.svc.AddPreferentialRate(context.Background(), 99, PreferentialRateRequest{
		HsCode:                 "010329",
		OriginCountryCode:      "US",
		DestinationCountryCode: "SG",
		Rate:                   "0.02",
	}, testAdminID)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestTradeAgreement_GetIncludesRates(t *testing.T) {
	f := newAgreementFixture()
	agreement, err := f.svc.CreateAgreement(context.Background(), agreementRequest("USSFTA"), testAdminID)
	require.NoError(t, err)
	_, err = f.svc.AddPreferentialRate(context.Background(), agreement.ID, PreferentialRateRequest{
		HsCode:                 "010329",
		OriginCountryCode:      "US",
		DestinationCountryCode: "SG",
		Rate:                   "0.02",
	}, testAdminID)
	require.NoError(t, err)

	got, err := f.svc.GetAgreement(context.Background(), agreement.ID)

	require.NoError(t, err)
	assert.Equal(t, "USSFTA", got.Name)
	require.Len(t, got.PreferentialRates, 1)
	assert.Equal(t, "010329", got.PreferentialRates[0].HsCode)
}

func TestTradeAgreement_DeleteCascadesToRates(t *testing.T) {
	f := newAgreementFixture()
	agreement, err := f.svc.CreateAgreement(context.Background(), agreementRequest("USSFTA"), testAdminID)
	require.NoError(t, err)
	_, err = f.svc.AddPreferentialRate(context.Background(), agreement.ID, PreferentialRateRequest{
		HsCode:                 "010329",
		OriginCountryCode:      "US",
		DestinationCountryCode: "SG",
		Rate:                   "0.02",
	}, testAdminID)
	require.NoError(t, err)

	err = f.svc.DeleteAgreement(context.Background(), agreement.ID, testAdminID)

	require.NoError(t, err)
	_, found, err := f.agreements.FindByID(context.Background(), agreement.ID)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, f.prefRepo.rates, "owned rates go with the agreement")
}

func TestTradeAgreement_UpdateWindow(t *testing.T) {
	f := newAgreementFixture()
	agreement, err := f.svc.CreateAgreement(context.Background(), agreementRequest("USSFTA"), testAdminID)
	require.NoError(t, err)

	updated, err := f.svc.UpdateAgreement(context.Background(), agreement.ID, TradeAgreementRequest{
		Name:          "USSFTA",
		EffectiveDate: "2021-06-01",
		ExpiryDate:    "2028-06-01",
	}, testAdminID)

	require.NoError(t, err)
	assert.Equal(t, 2021, updated.EffectiveDate.Year())
	assert.Equal(t, 2028, updated.ExpiryDate.Year())
}
