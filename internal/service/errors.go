package service

import (
	"fmt"
	"strings"
)

// ValidationError aggregates every violated rule of a calculation request
// so the caller can fix them all in one round trip.
type ValidationError struct {
	Violations []string `json:"violations"`
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// NoRouteError reports that the requested shipping mode has no route
// between the pair. Distinct from an explicitly-zero (free) rate.
type NoRouteError struct {
	Mode             string
	ImportingCountry string
	ExportingCountry string
}

func (e *NoRouteError) Error() string {
	return fmt.Sprintf("no %s shipping route between %s and %s", e.Mode, e.ExportingCountry, e.ImportingCountry)
}
