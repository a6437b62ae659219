package service

import (
	"context"
	"strings"
	"time"

	"tariffengine/internal/enrichment"
	"tariffengine/internal/model"
)

// In-memory repository fakes backing the service tests. They implement
// only the behavior the services under test rely on.

type fakeCountryRepo struct {
	countries map[string]model.Country        // keyed by upper-case code
	profiles  map[string]model.CountryProfile // keyed by upper-case code
}

func newFakeCountryRepo() *fakeCountryRepo {
	return &fakeCountryRepo{
		countries: make(map[string]model.Country),
		profiles:  make(map[string]model.CountryProfile),
	}
}

func (r *fakeCountryRepo) addCountry(code, name string) {
	r.countries[strings.ToUpper(code)] = model.Country{CountryCode: strings.ToUpper(code), CountryName: name}
}

func (r *fakeCountryRepo) FindByCode(_ context.Context, code string) (model.Country, bool, error) {
	c, ok := r.countries[strings.ToUpper(code)]
	return c, ok, nil
}

func (r *fakeCountryRepo) FindByName(_ context.Context, name string) (model.Country, bool, error) {
	for _, c := range r.countries {
		if strings.EqualFold(c.CountryName, name) {
			return c, true, nil
		}
	}
	return model.Country{}, false, nil
}

func (r *fakeCountryRepo) FindProfile(_ context.Context, code string) (model.CountryProfile, bool, error) {
	p, ok := r.profiles[strings.ToUpper(code)]
	return p, ok, nil
}

func (r *fakeCountryRepo) List(_ context.Context, _, _ int) ([]model.Country, int64, error) {
	var out []model.Country
	for _, c := range r.countries {
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (r *fakeCountryRepo) Create(_ context.Context, country *model.Country) error {
	r.countries[strings.ToUpper(country.CountryCode)] = *country
	return nil
}

func (r *fakeCountryRepo) UpsertProfile(_ context.Context, profile *model.CountryProfile) error {
	r.profiles[strings.ToUpper(profile.CountryCode)] = *profile
	return nil
}

type fakeTariffRateRepo struct {
	rates      []model.TariffRate
	nextID     uint
	exactCalls int // FindExact invocations, for cache assertions
	tupleCalls int // FindAllForTuple invocations
}

func (r *fakeTariffRateRepo) FindExact(_ context.Context, hsCode, importing, exporting string, year int) (model.TariffRate, bool, error) {
	r.exactCalls++
	for _, rate := range r.rates {
		if rate.HsCode == hsCode && rate.ImportingCountryCode == importing && rate.ExportingCountryCode == exporting &&
			rate.Year != nil && *rate.Year == year {
			return rate, true, nil
		}
	}
	return model.TariffRate{}, false, nil
}

func (r *fakeTariffRateRepo) FindAllForTuple(_ context.Context, hsCode, importing, exporting string) ([]model.TariffRate, error) {
	r.tupleCalls++
	var out []model.TariffRate
	// Newest insert first, matching the SQL ordering.
	for i := len(r.rates) - 1; i >= 0; i-- {
		rate := r.rates[i]
		if rate.HsCode == hsCode && rate.ImportingCountryCode == importing && rate.ExportingCountryCode == exporting {
			out = append(out, rate)
		}
	}
	return out, nil
}

func (r *fakeTariffRateRepo) ExistsForTuple(_ context.Context, hsCode, importing, exporting string, year *int) (bool, error) {
	for _, rate := range r.rates {
		if rate.HsCode != hsCode || rate.ImportingCountryCode != importing || rate.ExportingCountryCode != exporting {
			continue
		}
		if year == nil && rate.Year == nil {
			return true, nil
		}
		if year != nil && rate.Year != nil && *year == *rate.Year {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTariffRateRepo) FindByID(_ context.Context, id uint) (model.TariffRate, bool, error) {
	for _, rate := range r.rates {
		if rate.ID == id {
			return rate, true, nil
		}
	}
	return model.TariffRate{}, false, nil
}

func (r *fakeTariffRateRepo) List(_ context.Context, _, _ int) ([]model.TariffRate, int64, error) {
	return r.rates, int64(len(r.rates)), nil
}

func (r *fakeTariffRateRepo) Create(_ context.Context, rate *model.TariffRate) error {
	r.nextID++
	rate.ID = r.nextID
	r.rates = append(r.rates, *rate)
	return nil
}

func (r *fakeTariffRateRepo) Update(_ context.Context, rate *model.TariffRate) error {
	for i := range r.rates {
		if r.rates[i].ID == rate.ID {
			r.rates[i] = *rate
			return nil
		}
	}
	return nil
}

func (r *fakeTariffRateRepo) Delete(_ context.Context, id uint) error {
	for i := range r.rates {
		if r.rates[i].ID == id {
			r.rates = append(r.rates[:i], r.rates[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakePreferentialRateRepo struct {
	rates []model.PreferentialRate
}

func (r *fakePreferentialRateRepo) FindByRoute(_ context.Context, origin, destination, hsCode string) (model.PreferentialRate, bool, error) {
	for _, rate := range r.rates {
		if rate.OriginCountryCode == origin && rate.DestinationCountryCode == destination && rate.HsCode == hsCode {
			return rate, true, nil
		}
	}
	return model.PreferentialRate{}, false, nil
}

func (r *fakePreferentialRateRepo) ListByAgreement(_ context.Context, agreementID uint) ([]model.PreferentialRate, error) {
	var out []model.PreferentialRate
	for _, rate := range r.rates {
		if rate.TradeAgreementID == agreementID {
			out = append(out, rate)
		}
	}
	return out, nil
}

func (r *fakePreferentialRateRepo) Create(_ context.Context, rate *model.PreferentialRate) error {
	rate.ID = uint(len(r.rates) + 1)
	r.rates = append(r.rates, *rate)
	return nil
}

func (r *fakePreferentialRateRepo) Delete(_ context.Context, id uint) error {
	for i := range r.rates {
		if r.rates[i].ID == id {
			r.rates = append(r.rates[:i], r.rates[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakePreferentialRateRepo) DeleteByAgreement(_ context.Context, agreementID uint) error {
	var kept []model.PreferentialRate
	for _, rate := range r.rates {
		if rate.TradeAgreementID != agreementID {
			kept = append(kept, rate)
		}
	}
	r.rates = kept
	return nil
}

type fakeTradeAgreementRepo struct {
	agreements map[uint]model.TradeAgreement
}

func newFakeTradeAgreementRepo() *fakeTradeAgreementRepo {
	return &fakeTradeAgreementRepo{agreements: make(map[uint]model.TradeAgreement)}
}

func (r *fakeTradeAgreementRepo) FindByID(_ context.Context, id uint) (model.TradeAgreement, bool, error) {
	a, ok := r.agreements[id]
	return a, ok, nil
}

func (r *fakeTradeAgreementRepo) FindByName(_ context.Context, name string) (model.TradeAgreement, bool, error) {
	for _, a := range r.agreements {
		if a.Name == name {
			return a, true, nil
		}
	}
	return model.TradeAgreement{}, false, nil
}

func (r *fakeTradeAgreementRepo) List(_ context.Context, _, _ int) ([]model.TradeAgreement, int64, error) {
	var out []model.TradeAgreement
	for _, a := range r.agreements {
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

func (r *fakeTradeAgreementRepo) Create(_ context.Context, agreement *model.TradeAgreement) error {
	agreement.ID = uint(len(r.agreements) + 1)
	r.agreements[agreement.ID] = *agreement
	return nil
}

func (r *fakeTradeAgreementRepo) Update(_ context.Context, agreement *model.TradeAgreement) error {
	r.agreements[agreement.ID] = *agreement
	return nil
}

func (r *fakeTradeAgreementRepo) Delete(_ context.Context, id uint) error {
	delete(r.agreements, id)
	return nil
}

type fakeAdditionalDutyRepo struct {
	duties []model.AdditionalDuty
}

func (r *fakeAdditionalDutyRepo) FindActive(_ context.Context, importing, exporting, hsCode string, on time.Time) (model.AdditionalDuty, bool, error) {
	for _, d := range r.duties {
		if d.ImportingCountryCode == importing && d.ExportingCountryCode == exporting && d.HsCode == hsCode &&
			!on.Before(d.EffectiveFrom) && !on.After(d.EffectiveTo) {
			return d, true, nil
		}
	}
	return model.AdditionalDuty{}, false, nil
}

func (r *fakeAdditionalDutyRepo) FindOverlapping(_ context.Context, importing, exporting, hsCode string, from, to time.Time, excludeID *uint) (int64, error) {
	var count int64
	for _, d := range r.duties {
		if excludeID != nil && d.ID == *excludeID {
			continue
		}
		if d.ImportingCountryCode == importing && d.ExportingCountryCode == exporting && d.HsCode == hsCode &&
			!d.EffectiveFrom.After(to) && !d.EffectiveTo.Before(from) {
			count++
		}
	}
	return count, nil
}

func (r *fakeAdditionalDutyRepo) List(_ context.Context, _, _ int) ([]model.AdditionalDuty, int64, error) {
	return r.duties, int64(len(r.duties)), nil
}

func (r *fakeAdditionalDutyRepo) Create(_ context.Context, duty *model.AdditionalDuty) error {
	duty.ID = uint(len(r.duties) + 1)
	r.duties = append(r.duties, *duty)
	return nil
}

func (r *fakeAdditionalDutyRepo) Delete(_ context.Context, id uint) error {
	for i := range r.duties {
		if r.duties[i].ID == id {
			r.duties = append(r.duties[:i], r.duties[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeShippingRateRepo struct {
	rates []model.ShippingRate
}

func (r *fakeShippingRateRepo) FindByPair(_ context.Context, importing, exporting string) (model.ShippingRate, bool, error) {
	for _, rate := range r.rates {
		if rate.ImportingCountryCode == importing && rate.ExportingCountryCode == exporting {
			return rate, true, nil
		}
	}
	return model.ShippingRate{}, false, nil
}

func (r *fakeShippingRateRepo) FindByID(_ context.Context, id uint) (model.ShippingRate, bool, error) {
	for _, rate := range r.rates {
		if rate.ID == id {
			return rate, true, nil
		}
	}
	return model.ShippingRate{}, false, nil
}

func (r *fakeShippingRateRepo) List(_ context.Context, _, _ int) ([]model.ShippingRate, int64, error) {
	return r.rates, int64(len(r.rates)), nil
}

func (r *fakeShippingRateRepo) Create(_ context.Context, rate *model.ShippingRate) error {
	rate.ID = uint(len(r.rates) + 1)
	r.rates = append(r.rates, *rate)
	return nil
}

func (r *fakeShippingRateRepo) Update(_ context.Context, rate *model.ShippingRate) error {
	for i := range r.rates {
		if r.rates[i].ID == rate.ID {
			r.rates[i] = *rate
			return nil
		}
	}
	return nil
}

func (r *fakeShippingRateRepo) Delete(_ context.Context, id uint) error {
	for i := range r.rates {
		if r.rates[i].ID == id {
			r.rates = append(r.rates[:i], r.rates[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeProductRepo struct {
	products map[string]model.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]model.Product)}
}

func (r *fakeProductRepo) FindByHsCode(_ context.Context, hsCode string) (model.Product, bool, error) {
	p, ok := r.products[hsCode]
	return p, ok, nil
}

func (r *fakeProductRepo) List(_ context.Context, _, _ int) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) Create(_ context.Context, product *model.Product) error {
	r.products[product.HsCode] = *product
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, hsCode string) error {
	delete(r.products, hsCode)
	return nil
}

type fakeSearchHistoryRepo struct {
	entries []model.SearchHistory
}

func (r *fakeSearchHistoryRepo) Log(_ context.Context, entry *model.SearchHistory) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeSearchHistoryRepo) List(_ context.Context, _, _ int) ([]model.SearchHistory, int64, error) {
	return r.entries, int64(len(r.entries)), nil
}

type fakeAuditRepo struct {
	entries []model.AuditLog
}

func (r *fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, _, _ int) ([]model.AuditLog, int64, error) {
	return r.entries, int64(len(r.entries)), nil
}

// fakeTxManager runs the closure directly, with no transaction.
type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// fakeEnricher lets each test script the enrichment outcome.
type fakeEnricher struct {
	result enrichment.Result
	err    error
	calls  int
}

func (e *fakeEnricher) FetchTariffTable(_ context.Context, _, _ string) (enrichment.Result, error) {
	e.calls++
	return e.result, e.err
}

// fakeResolver counts cache clears; lookups always miss.
type fakeResolver struct {
	clearCalls int
}

func (r *fakeResolver) Resolve(_ context.Context, _, _, _ string, _ *int) (ResolvedRate, error) {
	return ResolvedRate{}, nil
}

func (r *fakeResolver) ResolvePreferential(_ context.Context, _, _, _ string) (ResolvedPreferential, error) {
	return ResolvedPreferential{}, nil
}

func (r *fakeResolver) ClearCache() {
	r.clearCalls++
}

// fakePublisher records rate-update notifications.
type fakePublisher struct {
	events []int
}

func (p *fakePublisher) PublishRateUpdate(_, _ string, count int) {
	p.events = append(p.events, count)
}
