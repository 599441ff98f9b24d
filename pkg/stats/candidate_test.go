package stats

import (
	"math"
	"testing"
	"time"
)

func TestDeadTupleRatio(t *testing.T) {
	t.Run("computes dead over total", func(t *testing.T) {
		c := Candidate{NLiveTup: 1000, NDeadTup: 400}

		got := c.DeadTupleRatio()

		want := 400.0 / 1400.0
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("expected ratio %f, got %f", want, got)
		}
	})

	t.Run("empty table yields zero", func(t *testing.T) {
		c := Candidate{}

		if got := c.DeadTupleRatio(); got != 0 {
			t.Errorf("expected 0 for empty table, got %f", got)
		}
	})

	t.Run("all dead yields one", func(t *testing.T) {
		c := Candidate{NLiveTup: 0, NDeadTup: 500}

		if got := c.DeadTupleRatio(); got != 1 {
			t.Errorf("expected 1 for all-dead table, got %f", got)
		}
	})

	t.Run("stays within unit interval", func(t *testing.T) {
		cases := []Candidate{
			{NLiveTup: 1, NDeadTup: 1 << 40},
			{NLiveTup: 1 << 40, NDeadTup: 1},
			{NLiveTup: 3, NDeadTup: 7},
		}
		for _, c := range cases {
			got := c.DeadTupleRatio()
			if got < 0 || got > 1 {
				t.Errorf("ratio %f out of [0,1] for live=%d dead=%d", got, c.NLiveTup, c.NDeadTup)
			}
		}
	})
}

func TestModRatio(t *testing.T) {
	t.Run("computes mods over live", func(t *testing.T) {
		c := Candidate{NLiveTup: 200, NModSinceAnalyze: 50}

		if got := c.ModRatio(); got != 0.25 {
			t.Errorf("expected 0.25, got %f", got)
		}
	})

	t.Run("no live rows with mods is infinite", func(t *testing.T) {
		c := Candidate{NLiveTup: 0, NModSinceAnalyze: 100}

		if got := c.ModRatio(); !math.IsInf(got, 1) {
			t.Errorf("expected +Inf, got %f", got)
		}
	})

	t.Run("no live rows and no mods is zero", func(t *testing.T) {
		c := Candidate{}

		if got := c.ModRatio(); got != 0 {
			t.Errorf("expected 0, got %f", got)
		}
	})
}

func TestLastAnalyzed(t *testing.T) {
	manual := time.Date(2025, 7, 1, 4, 0, 0, 0, time.UTC)
	auto := time.Date(2025, 7, 10, 4, 0, 0, 0, time.UTC)

	t.Run("never analyzed", func(t *testing.T) {
		c := Candidate{}

		if _, ok := c.LastAnalyzed(); ok {
			t.Error("expected ok=false for never-analyzed table")
		}
	})

	t.Run("only autoanalyze", func(t *testing.T) {
		c := Candidate{LastAutoAnalyze: &auto}

		got, ok := c.LastAnalyzed()
		if !ok || !got.Equal(auto) {
			t.Errorf("expected %v, got %v ok=%v", auto, got, ok)
		}
	})

	t.Run("picks the more recent of both", func(t *testing.T) {
		c := Candidate{LastAnalyze: &manual, LastAutoAnalyze: &auto}

		got, ok := c.LastAnalyzed()
		if !ok || !got.Equal(auto) {
			t.Errorf("expected autoanalyze timestamp %v, got %v", auto, got)
		}
	})

	t.Run("manual more recent than auto", func(t *testing.T) {
		later := auto.Add(24 * time.Hour)
		c := Candidate{LastAnalyze: &later, LastAutoAnalyze: &auto}

		got, ok := c.LastAnalyzed()
		if !ok || !got.Equal(later) {
			t.Errorf("expected manual timestamp %v, got %v", later, got)
		}
	})
}

func TestLastVacuumed(t *testing.T) {
	manual := time.Date(2025, 7, 1, 4, 0, 0, 0, time.UTC)
	auto := time.Date(2025, 7, 10, 4, 0, 0, 0, time.UTC)

	t.Run("never vacuumed", func(t *testing.T) {
		c := Candidate{}

		if _, ok := c.LastVacuumed(); ok {
			t.Error("expected ok=false for never-vacuumed table")
		}
	})

	t.Run("picks the more recent of both", func(t *testing.T) {
		c := Candidate{LastVacuum: &manual, LastAutoVacuum: &auto}

		got, ok := c.LastVacuumed()
		if !ok || !got.Equal(auto) {
			t.Errorf("expected autovacuum timestamp %v, got %v ok=%v", auto, got, ok)
		}
	})
}

func TestName(t *testing.T) {
	c := Candidate{Schema: "public", Table: "orders"}
	if got := c.Name(); got != "public.orders" {
		t.Errorf("expected public.orders, got %s", got)
	}
}
