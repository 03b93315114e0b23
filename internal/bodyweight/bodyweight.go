// Package bodyweight computes the effective load of bodyweight exercises from
// the lifter's logged body weight and the exercise's bodyweight factor.
package bodyweight

import (
	"context"
	"log/slog"
	"math"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/storage"
)

// Load is the bodyweight snapshot attached to a logged set. For non-bodyweight
// exercises only ExternalLoadKg is populated.
type Load struct {
	ExternalLoadKg   float64  `json:"external_load_kg"`
	BodyweightKgUsed *float64 `json:"bodyweight_kg_used,omitempty"`
	BodyweightFactor *float64 `json:"bodyweight_factor,omitempty"`
	EstTotalLoadKg   *float64 `json:"est_total_load_kg,omitempty"`
}

// CalcTotal is the total effective load of a bodyweight set.
func CalcTotal(bodyweightKg, factor, externalLoadKg float64) float64 {
	return bodyweightKg*factor + externalLoadKg
}

// Calculator resolves bodyweight loads against the exercise catalog and the
// logged body-weight history.
type Calculator struct {
	db  *storage.DB
	cat *catalog.Catalog
	log *slog.Logger
}

// NewCalculator creates a Calculator.
func NewCalculator(db *storage.DB, cat *catalog.Catalog, log *slog.Logger) *Calculator {
	return &Calculator{db: db, cat: cat, log: log}
}

// ComputeLoad builds the load snapshot for a set of the given exercise logged
// on the given day (YYYY-MM-DD). For bodyweight exercises it looks up the most
// recent body weight dated on or before that day; when none is logged yet, the
// factor is still recorded but the total stays unknown and callers fall back
// to the raw external load. Lookup failures degrade the same way.
func (c *Calculator) ComputeLoad(ctx context.Context, exerciseID, date string, externalLoadKg float64) Load {
	if math.IsNaN(externalLoadKg) || math.IsInf(externalLoadKg, 0) {
		externalLoadKg = 0
	}
	if !c.cat.IsBodyweight(exerciseID) {
		return Load{ExternalLoadKg: externalLoadKg}
	}

	factor := c.cat.BodyweightFactorFor(exerciseID)
	load := Load{ExternalLoadKg: externalLoadKg, BodyweightFactor: &factor}

	bw, err := c.db.LatestBodyweightOnOrBefore(ctx, date)
	if err != nil {
		c.log.Warn("bodyweight lookup failed", "exercise", exerciseID, "date", date, "error", err)
		return load
	}
	if bw == nil {
		return load
	}

	total := CalcTotal(*bw, factor, externalLoadKg)
	load.BodyweightKgUsed = bw
	load.EstTotalLoadKg = &total
	return load
}
