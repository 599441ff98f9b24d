package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thepostgresguy/pgtools-sub000/pkg/stats"
)

func defaultPolicy() Policy {
	return Policy{
		DeadTupleRatio: DEAD_TUPLE_RATIO_DEFAULT,
		Staleness:      STALENESS_DEFAULT,
		ModRatio:       MOD_RATIO_DEFAULT,
		MinLiveRows:    MIN_LIVE_ROWS_DEFAULT,
		MinMods:        MIN_MODS_DEFAULT,
	}
}

func tp(t time.Time) *time.Time {
	return &t
}

func TestBuildVacuumTiers(t *testing.T) {
	now := time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)
	policy := defaultPolicy()

	t.Run("ratio at twice the threshold is urgent", func(t *testing.T) {
		// 700 / 1700 = 41.2%, past the 40% urgent line
		c := stats.Candidate{Schema: "public", Table: "orders", NLiveTup: 1000, NDeadTup: 700, LastAutoAnalyze: tp(now.Add(-time.Hour))}

		p := Build([]stats.Candidate{c}, policy, ModeVacuum, now)

		require.Len(t, p.Operations, 1)
		op := p.Operations[0]
		assert.Equal(t, KindVacuum, op.Kind)
		assert.Equal(t, TierUrgent, op.Tier)
		assert.Equal(t, LabelUrgent, op.Reason.Label)
		assert.Equal(t, StatePending, op.State)
	})

	t.Run("ratio over the threshold but under twice is high", func(t *testing.T) {
		// 400 / 1400 = 28.6%
		c := stats.Candidate{Schema: "public", Table: "orders", NLiveTup: 1000, NDeadTup: 400, LastAutoAnalyze: tp(now.Add(-time.Hour))}

		p := Build([]stats.Candidate{c}, policy, ModeVacuum, now)

		require.Len(t, p.Operations, 1)
		assert.Equal(t, TierHigh, p.Operations[0].Tier)
		assert.Equal(t, LabelHigh, p.Operations[0].Reason.Label)
	})

	t.Run("ratio exactly at the threshold qualifies", func(t *testing.T) {
		// 250 / 1250 = 20.0%
		c := stats.Candidate{Schema: "public", Table: "orders", NLiveTup: 1000, NDeadTup: 250, LastAutoAnalyze: tp(now.Add(-time.Hour))}

		p := Build([]stats.Candidate{c}, policy, ModeVacuum, now)

		require.Len(t, p.Operations, 1)
		assert.Equal(t, TierHigh, p.Operations[0].Tier)
	})

	t.Run("ratio below the threshold proposes nothing", func(t *testing.T) {
		// 100 / 1100 = 9.1%
		c := stats.Candidate{Schema: "public", Table: "orders", NLiveTup: 1000, NDeadTup: 100, LastAutoAnalyze: tp(now.Add(-time.Hour))}

		p := Build([]stats.Candidate{c}, policy, ModeVacuum, now)

		assert.Empty(t, p.Operations)
	})

	t.Run("reason records vacuum recency", func(t *testing.T) {
		c := stats.Candidate{Schema: "public", Table: "orders", NLiveTup: 1000, NDeadTup: 700, LastAutoAnalyze: tp(now.Add(-time.Hour))}

		p := Build([]stats.Candidate{c}, policy, ModeVacuum, now)

		require.Len(t, p.Operations, 1)
		assert.Contains(t, p.Operations[0].Reason.Detail, "never vacuumed")

		c.LastAutoVacuum = tp(now.Add(-36 * time.Hour))
		p = Build([]stats.Candidate{c}, policy, ModeVacuum, now)

		require.Len(t, p.Operations, 1)
		assert.Contains(t, p.Operations[0].Reason.Detail, "last vacuumed 36h ago")
	})
}

func TestBuildAnalyzeRules(t *testing.T) {
	now := time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)
	policy := defaultPolicy()

	t.Run("never analyzed with live rows over the floor", func(t *testing.T) {
		c := stats.Candidate{Schema: "public", Table: "users", NLiveTup: 5000}

		p := Build([]stats.Candidate{c}, policy, ModeAnalyze, now)

		require.Len(t, p.Operations, 1)
		op := p.Operations[0]
		assert.Equal(t, KindAnalyze, op.Kind)
		assert.Equal(t, TierUrgent, op.Tier)
		assert.Equal(t, LabelNeverAnalyzed, op.Reason.Label)
	})

	t.Run("never analyzed under the floor is left alone", func(t *testing.T) {
		c := stats.Candidate{Schema: "public", Table: "tiny", NLiveTup: 500}

		p := Build([]stats.Candidate{c}, policy, ModeAnalyze, now)

		assert.Empty(t, p.Operations)
	})

	t.Run("stale statistics with enough modifications", func(t *testing.T) {
		c := stats.Candidate{
			Schema: "public", Table: "events",
			NLiveTup: 10000, NModSinceAnalyze: 60,
			LastAutoAnalyze: tp(now.Add(-8 * 24 * time.Hour)),
		}

		p := Build([]stats.Candidate{c}, policy, ModeAnalyze, now)

		require.Len(t, p.Operations, 1)
		assert.Equal(t, TierHigh, p.Operations[0].Tier)
		assert.Equal(t, LabelStale, p.Operations[0].Reason.Label)
	})

	t.Run("stale but below the modification floor is left alone", func(t *testing.T) {
		c := stats.Candidate{
			Schema: "public", Table: "events",
			NLiveTup: 10000, NModSinceAnalyze: 10,
			LastAutoAnalyze: tp(now.Add(-8 * 24 * time.Hour)),
		}

		p := Build([]stats.Candidate{c}, policy, ModeAnalyze, now)

		assert.Empty(t, p.Operations)
	})

	t.Run("fresh statistics with churn over the ratio", func(t *testing.T) {
		// 150 mods / 1000 live = 15%
		c := stats.Candidate{
			Schema: "public", Table: "sessions",
			NLiveTup: 1000, NModSinceAnalyze: 150,
			LastAutoAnalyze: tp(now.Add(-time.Hour)),
		}

		p := Build([]stats.Candidate{c}, policy, ModeAnalyze, now)

		require.Len(t, p.Operations, 1)
		assert.Equal(t, TierRoutine, p.Operations[0].Tier)
		assert.Equal(t, LabelHighChurn, p.Operations[0].Reason.Label)
	})

	t.Run("churn over the ratio but below the modification floor", func(t *testing.T) {
		// 40 mods / 300 live = 13.3%, yet too few to matter
		c := stats.Candidate{
			Schema: "public", Table: "lookup",
			NLiveTup: 300, NModSinceAnalyze: 40,
			LastAutoAnalyze: tp(now.Add(-time.Hour)),
		}

		p := Build([]stats.Candidate{c}, policy, ModeAnalyze, now)

		assert.Empty(t, p.Operations)
	})

	t.Run("small never-analyzed table still qualifies through churn", func(t *testing.T) {
		c := stats.Candidate{Schema: "public", Table: "tiny", NLiveTup: 500, NModSinceAnalyze: 100}

		p := Build([]stats.Candidate{c}, policy, ModeAnalyze, now)

		require.Len(t, p.Operations, 1)
		assert.Equal(t, LabelHighChurn, p.Operations[0].Reason.Label)
	})

	t.Run("at most one analyze per candidate", func(t *testing.T) {
		// Stale and churning at once; the better tier wins
		c := stats.Candidate{
			Schema: "public", Table: "events",
			NLiveTup: 1000, NModSinceAnalyze: 300,
			LastAutoAnalyze: tp(now.Add(-30 * 24 * time.Hour)),
		}

		p := Build([]stats.Candidate{c}, policy, ModeAnalyze, now)

		require.Len(t, p.Operations, 1)
		assert.Equal(t, LabelStale, p.Operations[0].Reason.Label)
	})
}

func TestBuildModes(t *testing.T) {
	now := time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)
	policy := defaultPolicy()

	// Vacuum-eligible and analyze-eligible at the same time
	c := stats.Candidate{
		Schema: "public", Table: "orders",
		NLiveTup: 1000, NDeadTup: 700, NModSinceAnalyze: 200,
		LastAutoAnalyze: tp(now.Add(-time.Hour)),
	}

	t.Run("auto proposes both kinds", func(t *testing.T) {
		p := Build([]stats.Candidate{c}, policy, ModeAuto, now)

		require.Len(t, p.Operations, 2)
		kinds := []Kind{p.Operations[0].Kind, p.Operations[1].Kind}
		assert.Contains(t, kinds, KindVacuum)
		assert.Contains(t, kinds, KindAnalyze)
	})

	t.Run("vacuum mode drops analyze proposals", func(t *testing.T) {
		p := Build([]stats.Candidate{c}, policy, ModeVacuum, now)

		require.Len(t, p.Operations, 1)
		assert.Equal(t, KindVacuum, p.Operations[0].Kind)
	})

	t.Run("analyze mode drops vacuum proposals", func(t *testing.T) {
		p := Build([]stats.Candidate{c}, policy, ModeAnalyze, now)

		require.Len(t, p.Operations, 1)
		assert.Equal(t, KindAnalyze, p.Operations[0].Kind)
	})

	t.Run("full-vacuum mode upgrades the statement", func(t *testing.T) {
		p := Build([]stats.Candidate{c}, policy, ModeFullVacuum, now)

		require.Len(t, p.Operations, 1)
		assert.Equal(t, KindVacuumFull, p.Operations[0].Kind)
		assert.Equal(t, TierUrgent, p.Operations[0].Tier)
	})

	t.Run("reindex mode rides the vacuum eligibility rules", func(t *testing.T) {
		p := Build([]stats.Candidate{c}, policy, ModeReindex, now)

		require.Len(t, p.Operations, 1)
		assert.Equal(t, KindReindex, p.Operations[0].Kind)
	})
}

func TestBuildOrdering(t *testing.T) {
	now := time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)
	policy := defaultPolicy()
	analyzed := tp(now.Add(-time.Hour))

	candidates := []stats.Candidate{
		// high tier, many dead tuples
		{Schema: "public", Table: "big_high", NLiveTup: 100000, NDeadTup: 30000, SizeBytes: 400 << 20, LastAutoAnalyze: analyzed},
		// urgent tier, few dead tuples
		{Schema: "public", Table: "small_urgent", NLiveTup: 100, NDeadTup: 900, SizeBytes: 1 << 20, LastAutoAnalyze: analyzed},
		// urgent tier, many dead tuples
		{Schema: "public", Table: "big_urgent", NLiveTup: 1000, NDeadTup: 9000, SizeBytes: 100 << 20, LastAutoAnalyze: analyzed},
		// high tier, same dead count as big_high, bigger table
		{Schema: "public", Table: "bigger_high", NLiveTup: 100000, NDeadTup: 30000, SizeBytes: 800 << 20, LastAutoAnalyze: analyzed},
	}

	p := Build(candidates, policy, ModeVacuum, now)
	require.Len(t, p.Operations, 4)

	names := make([]string, len(p.Operations))
	for i, op := range p.Operations {
		names[i] = op.Target.Table
	}
	assert.Equal(t, []string{"big_urgent", "small_urgent", "bigger_high", "big_high"}, names)

	t.Run("ordering is deterministic", func(t *testing.T) {
		again := Build(candidates, policy, ModeVacuum, now)
		for i := range p.Operations {
			assert.Equal(t, p.Operations[i].Target.Name(), again.Operations[i].Target.Name())
			assert.Equal(t, p.Operations[i].Kind, again.Operations[i].Kind)
		}
	})
}

func TestBuildIgnoresEmptyTables(t *testing.T) {
	now := time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)
	policy := defaultPolicy()

	// A freshly truncated table can keep a modification count while
	// holding no rows at all
	c := stats.Candidate{Schema: "public", Table: "truncated", NModSinceAnalyze: 100}

	for _, mode := range []Mode{ModeAuto, ModeVacuum, ModeAnalyze, ModeFullVacuum, ModeReindex} {
		t.Run(string(mode), func(t *testing.T) {
			p := Build([]stats.Candidate{c}, policy, mode, now)

			assert.Empty(t, p.Operations)
		})
	}
}

func TestBuildEmptyInput(t *testing.T) {
	p := Build(nil, defaultPolicy(), ModeAuto, time.Now())

	assert.Empty(t, p.Operations)
	assert.Empty(t, p.Pending())
}
