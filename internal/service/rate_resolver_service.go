package service

import (
	"context"
	"log"
	"time"

	"tariffengine/internal/cache"
	"tariffengine/internal/enrichment"
	"tariffengine/internal/model"
	"tariffengine/internal/repository"
)

// ResolvedRate carries either a found tariff rate or an explicit miss.
// A miss is not an error: the calculator treats it as zero duty.
type ResolvedRate struct {
	Rate  model.TariffRate
	Found bool
}

// ResolvedPreferential carries a preferential rate together with its
// owning agreement, or an explicit miss.
type ResolvedPreferential struct {
	Rate      model.PreferentialRate
	Agreement model.TradeAgreement
	Found     bool
}

// RateEventPublisher receives catalogue-update notifications after
// enrichment persists new rates. Implemented by the websocket hub.
type RateEventPublisher interface {
	PublishRateUpdate(importing, exporting string, count int)
}

// RateResolver orchestrates cache -> store -> enrichment lookups with
// year-aware fallback.
type RateResolver interface {
	// Resolve walks the fallback chain for (hsCode, importing, exporting).
	// year pins a specific year; nil asks for the latest available.
	Resolve(ctx context.Context, hsCode, importing, exporting string, year *int) (ResolvedRate, error)
	// ResolvePreferential is the narrower FTA lookup: exact match on
	// (origin, destination, hsCode) only, never triggers enrichment.
	ResolvePreferential(ctx context.Context, origin, destination, hsCode string) (ResolvedPreferential, error)
	// ClearCache drops every cached rate.
	ClearCache()
}

type rateResolver struct {
	tariffRepo        repository.TariffRateRepository
	prefRepo          repository.PreferentialRateRepository
	agreementRepo     repository.TradeAgreementRepository
	rateCache         *cache.RateCache
	enricher          enrichment.Client
	publisher         RateEventPublisher
	enrichmentTimeout time.Duration
}

func NewRateResolver(
	tariffRepo repository.TariffRateRepository,
	prefRepo repository.PreferentialRateRepository,
	agreementRepo repository.TradeAgreementRepository,
	rateCache *cache.RateCache,
	enricher enrichment.Client,
	publisher RateEventPublisher,
	enrichmentTimeout time.Duration,
) RateResolver {
	if enrichmentTimeout <= 0 {
		enrichmentTimeout = 2 * time.Minute
	}
	return &rateResolver{
		tariffRepo:        tariffRepo,
		prefRepo:          prefRepo,
		agreementRepo:     agreementRepo,
		rateCache:         rateCache,
		enricher:          enricher,
		publisher:         publisher,
		enrichmentTimeout: enrichmentTimeout,
	}
}

func (s *rateResolver) Resolve(ctx context.Context, hsCode, importing, exporting string, year *int) (ResolvedRate, error) {
	key := cache.Key(importing, exporting, hsCode, year)
	if cached, ok := s.rateCache.Get(key); ok {
		return ResolvedRate{Rate: cached, Found: true}, nil
	}

	resolved, err := s.pickFromStore(ctx, hsCode, importing, exporting, year)
	if err != nil {
		return ResolvedRate{}, err
	}

	if !resolved.Found {
		// The store has nothing for the tuple: fetch the full rate table
		// for the pair and try once more. Concurrent resolutions of the
		// same pair may each fetch; the persist step skips duplicates.
		if s.enrichAndPersist(ctx, importing, exporting) {
			resolved, err = s.pickFromStore(ctx, hsCode, importing, exporting, year)
			if err != nil {
				return ResolvedRate{}, err
			}
		}
	}

	if resolved.Found {
		s.rateCache.Put(key, resolved.Rate)
	}
	return resolved, nil
}

// pickFromStore applies the year-aware selection order against the
// persisted catalogue: exact year, nearest year by absolute difference,
// year-less entry (newest insert first); with no requested year the
// largest year wins and year-less entries sort last.
func (s *rateResolver) pickFromStore(ctx context.Context, hsCode, importing, exporting string, year *int) (ResolvedRate, error) {
	if year != nil {
		rate, found, err := s.tariffRepo.FindExact(ctx, hsCode, importing, exporting, *year)
		if err != nil {
			return ResolvedRate{}, err
		}
		if found {
			return ResolvedRate{Rate: rate, Found: true}, nil
		}
	}

	rates, err := s.tariffRepo.FindAllForTuple(ctx, hsCode, importing, exporting)
	if err != nil {
		return ResolvedRate{}, err
	}
	if len(rates) == 0 {
		return ResolvedRate{}, nil
	}

	if year != nil {
		var nearest *model.TariffRate
		bestDiff := 0
		for i := range rates {
			r := &rates[i]
			if r.Year == nil {
				continue
			}
			diff := *r.Year - *year
			if diff < 0 {
				diff = -diff
			}
			if nearest == nil || diff < bestDiff {
				nearest = r
				bestDiff = diff
			}
		}
		if nearest != nil {
			return ResolvedRate{Rate: *nearest, Found: true}, nil
		}

		// Only year-less entries exist; rates are newest-insert first.
		return ResolvedRate{Rate: rates[0], Found: true}, nil
	}

	var best *model.TariffRate
	for i := range rates {
		r := &rates[i]
		if r.Year == nil {
			continue
		}
		if best == nil || *r.Year > *best.Year {
			best = r
		}
	}
	if best != nil {
		return ResolvedRate{Rate: *best, Found: true}, nil
	}
	return ResolvedRate{Rate: rates[0], Found: true}, nil
}

// enrichAndPersist fetches the pair's rate table from the external source
// and writes new records into the store. Every failure degrades to "no
// data"; enrichment is never allowed to fail a calculation. Reports
// whether at least one record was persisted.
func (s *rateResolver) enrichAndPersist(ctx context.Context, importing, exporting string) bool {
	enrichCtx, cancel := context.WithTimeout(ctx, s.enrichmentTimeout)
	defer cancel()

	result, err := s.enricher.FetchTariffTable(enrichCtx, importing, exporting)
	if err != nil {
		log.Printf("Enrichment failed for %s->%s, continuing without a rate: %v", exporting, importing, err)
		return false
	}
	if result.Status != enrichment.StatusSuccess || len(result.Data) == 0 {
		log.Printf("Enrichment returned no usable data for %s->%s (status=%s)", exporting, importing, result.Status)
		return false
	}

	saved := 0
	for _, record := range result.Data {
		if record.HsCode == "" {
			continue
		}

		imp, exp := record.ImportingCountry, record.ExportingCountry
		if imp == "" {
			imp = importing
		}
		if exp == "" {
			exp = exporting
		}

		exists, err := s.tariffRepo.ExistsForTuple(ctx, record.HsCode, imp, exp, record.Year)
		if err != nil {
			log.Printf("Failed to check existing rate for HS=%s: %v", record.HsCode, err)
			continue
		}
		if exists {
			continue
		}

		rate := enrichment.ParseRate(record.TariffRate)
		tariffRate := model.TariffRate{
			HsCode:               record.HsCode,
			ImportingCountryCode: imp,
			ExportingCountryCode: exp,
			Year:                 record.Year,
			TariffType:           model.TariffTypeAdValorem,
			AdValoremRate:        &rate,
			UnitBasis:            model.UnitBasisKG,
			DataSource:           "enrichment",
		}
		if err := s.tariffRepo.Create(ctx, &tariffRate); err != nil {
			log.Printf("Failed to persist enriched rate for HS=%s: %v", record.HsCode, err)
			continue
		}
		saved++
	}

	log.Printf("Persisted %d new tariff rates for %s->%s", saved, exporting, importing)
	if saved > 0 && s.publisher != nil {
		s.publisher.PublishRateUpdate(importing, exporting, saved)
	}
	return saved > 0
}

func (s *rateResolver) ResolvePreferential(ctx context.Context, origin, destination, hsCode string) (ResolvedPreferential, error) {
	rate, found, err := s.prefRepo.FindByRoute(ctx, origin, destination, hsCode)
	if err != nil {
		return ResolvedPreferential{}, err
	}
	if !found {
		return ResolvedPreferential{}, nil
	}

	agreement, found, err := s.agreementRepo.FindByID(ctx, rate.TradeAgreementID)
	if err != nil {
		return ResolvedPreferential{}, err
	}
	if !found {
		// Orphaned rate; treat as not applicable
		log.Printf("Preferential rate %d references missing trade agreement %d", rate.ID, rate.TradeAgreementID)
		return ResolvedPreferential{}, nil
	}

	return ResolvedPreferential{Rate: rate, Agreement: agreement, Found: true}, nil
}

func (s *rateResolver) ClearCache() {
	s.rateCache.Clear()
}
