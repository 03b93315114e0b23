package bodyweight

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/storage/storagetest"
)

func newTestCalculator(t *testing.T) (*Calculator, *storage.DB) {
	t.Helper()
	db := storagetest.New(t)
	cat, err := catalog.Load("")
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCalculator(db, cat, log), db
}

func logWeight(t *testing.T, db *storage.DB, id, date string, kg float64) {
	t.Helper()
	if err := db.InsertBodyMetric(context.Background(), models.BodyMetric{ID: id, Date: date, WeightKg: kg}); err != nil {
		t.Fatalf("inserting body metric: %v", err)
	}
}

// TestCalcTotal verifies the effective-load formula.
func TestCalcTotal(t *testing.T) {
	if got := CalcTotal(80, 1.0, 10); got != 90 {
		t.Errorf("CalcTotal(80, 1.0, 10) = %v, want 90", got)
	}
	if got := CalcTotal(80, 0.65, 0); got != 52 {
		t.Errorf("CalcTotal(80, 0.65, 0) = %v, want 52", got)
	}
}

// TestComputeLoadNonBodyweight verifies barbell exercises carry only the
// external load.
func TestComputeLoadNonBodyweight(t *testing.T) {
	c, db := newTestCalculator(t)
	logWeight(t, db, "m1", "2026-03-01", 80)

	load := c.ComputeLoad(context.Background(), "bench_press", "2026-03-05", 100)
	if load.ExternalLoadKg != 100 {
		t.Errorf("external = %v, want 100", load.ExternalLoadKg)
	}
	if load.BodyweightKgUsed != nil || load.BodyweightFactor != nil || load.EstTotalLoadKg != nil {
		t.Errorf("load = %+v, want no bodyweight fields", load)
	}
}

// TestComputeLoadBodyweight verifies the snapshot for a bodyweight exercise
// with a logged weight.
func TestComputeLoadBodyweight(t *testing.T) {
	c, db := newTestCalculator(t)
	logWeight(t, db, "m1", "2026-03-01", 80)

	load := c.ComputeLoad(context.Background(), "pull_up", "2026-03-05", 10)
	if load.BodyweightKgUsed == nil || *load.BodyweightKgUsed != 80 {
		t.Errorf("bodyweight used = %v, want 80", load.BodyweightKgUsed)
	}
	if load.BodyweightFactor == nil || *load.BodyweightFactor != 1.0 {
		t.Errorf("factor = %v, want 1.0", load.BodyweightFactor)
	}
	if load.EstTotalLoadKg == nil || *load.EstTotalLoadKg != 90 {
		t.Errorf("est total = %v, want 90", load.EstTotalLoadKg)
	}
}

// TestComputeLoadPartialFactor verifies reduced-factor exercises like push-ups.
func TestComputeLoadPartialFactor(t *testing.T) {
	c, db := newTestCalculator(t)
	logWeight(t, db, "m1", "2026-03-01", 80)

	load := c.ComputeLoad(context.Background(), "push_up", "2026-03-05", 0)
	if load.EstTotalLoadKg == nil || *load.EstTotalLoadKg != 52 {
		t.Errorf("est total = %v, want 52 (80 x 0.65)", load.EstTotalLoadKg)
	}
}

// TestComputeLoadNoBodyweightLogged verifies the factor is still recorded but
// the total stays unknown when no weight has been logged.
func TestComputeLoadNoBodyweightLogged(t *testing.T) {
	c, _ := newTestCalculator(t)

	load := c.ComputeLoad(context.Background(), "pull_up", "2026-03-05", 10)
	if load.BodyweightFactor == nil || *load.BodyweightFactor != 1.0 {
		t.Errorf("factor = %v, want 1.0 even without a logged weight", load.BodyweightFactor)
	}
	if load.BodyweightKgUsed != nil || load.EstTotalLoadKg != nil {
		t.Errorf("load = %+v, want unknown total", load)
	}
}

// TestComputeLoadNeverUsesFutureWeight verifies the lookup only considers
// weights dated on or before the set's day.
func TestComputeLoadNeverUsesFutureWeight(t *testing.T) {
	c, db := newTestCalculator(t)
	logWeight(t, db, "m1", "2026-02-20", 78)
	logWeight(t, db, "m2", "2026-03-10", 82)

	load := c.ComputeLoad(context.Background(), "pull_up", "2026-03-05", 0)
	if load.BodyweightKgUsed == nil || *load.BodyweightKgUsed != 78 {
		t.Errorf("bodyweight used = %v, want 78 (the 2026-03-10 entry is in the future)", load.BodyweightKgUsed)
	}
}

// TestComputeLoadSameDayWins verifies a weight logged on the set's day is
// preferred over older entries.
func TestComputeLoadSameDayWins(t *testing.T) {
	c, db := newTestCalculator(t)
	logWeight(t, db, "m1", "2026-02-20", 78)
	logWeight(t, db, "m2", "2026-03-05", 81)

	load := c.ComputeLoad(context.Background(), "dip", "2026-03-05", 0)
	if load.BodyweightKgUsed == nil || *load.BodyweightKgUsed != 81 {
		t.Errorf("bodyweight used = %v, want 81", load.BodyweightKgUsed)
	}
}

// TestComputeLoadNonFiniteExternal verifies NaN and infinite external loads
// are coerced to zero.
func TestComputeLoadNonFiniteExternal(t *testing.T) {
	c, db := newTestCalculator(t)
	logWeight(t, db, "m1", "2026-03-01", 80)

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		load := c.ComputeLoad(context.Background(), "pull_up", "2026-03-05", v)
		if load.ExternalLoadKg != 0 {
			t.Errorf("external = %v, want 0 for non-finite input", load.ExternalLoadKg)
		}
		if load.EstTotalLoadKg == nil || *load.EstTotalLoadKg != 80 {
			t.Errorf("est total = %v, want 80", load.EstTotalLoadKg)
		}
	}
}
