package service

import (
	"context"
	"log"

	"tariffengine/internal/model"
	"tariffengine/internal/repository"

	"github.com/shopspring/decimal"
)

// ShippingCostService computes the freight leg of a calculation.
// AIR and SEA are per-kg rates; LAND additionally scales by the land
// distance between the pair. A pair with no persisted rate row ships at
// zero cost (permissive), but a LAND request against a pair whose land
// rate is absent fails with NoRouteError — absence and an explicit zero
// rate are different states.
type ShippingCostService interface {
	CalculateShippingCost(ctx context.Context, req *CalculationRequest) (decimal.Decimal, error)
}

type shippingCostService struct {
	shippingRepo repository.ShippingRateRepository
}

func NewShippingCostService(shippingRepo repository.ShippingRateRepository) ShippingCostService {
	return &shippingCostService{shippingRepo: shippingRepo}
}

func (s *shippingCostService) CalculateShippingCost(ctx context.Context, req *CalculationRequest) (decimal.Decimal, error) {
	rate, found, err := s.shippingRepo.FindByPair(ctx, req.ImportingCountry, req.ExportingCountry)
	if err != nil {
		return decimal.Zero, err
	}
	if !found {
		log.Printf("No shipping rate for pair %s->%s, shipping cost defaults to 0", req.ExportingCountry, req.ImportingCountry)
		return decimal.Zero, nil
	}

	switch req.ShippingMode {
	case model.ShippingModeAir:
		return rate.AirRate.Mul(req.Weight), nil
	case model.ShippingModeSea:
		return rate.SeaRate.Mul(req.Weight), nil
	case model.ShippingModeLand:
		if rate.LandRate == nil {
			return decimal.Zero, &NoRouteError{
				Mode:             model.ShippingModeLand,
				ImportingCountry: req.ImportingCountry,
				ExportingCountry: req.ExportingCountry,
			}
		}
		return rate.LandRate.Mul(rate.DistanceKM).Mul(req.Weight), nil
	default:
		// Validation rejects unknown modes before this point; stay
		// permissive if a caller skipped it.
		log.Printf("Unknown shipping mode %q, shipping cost defaults to 0", req.ShippingMode)
		return decimal.Zero, nil
	}
}
