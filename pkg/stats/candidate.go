package stats

import (
	"fmt"
	"math"
	"time"
)

// Candidate is a point-in-time snapshot of one user table's maintenance
// counters, taken from pg_stat_user_tables. All decisions downstream are
// made against this snapshot, never against live statistics.
type Candidate struct {
	Schema           string     `json:"schema"`
	Table            string     `json:"table"`
	NLiveTup         int64      `json:"n_live_tup"`
	NDeadTup         int64      `json:"n_dead_tup"`
	NModSinceAnalyze int64      `json:"n_mod_since_analyze"`
	NTupIns          int64      `json:"n_tup_ins"`
	NTupUpd          int64      `json:"n_tup_upd"`
	NTupDel          int64      `json:"n_tup_del"`
	NTupHotUpd       int64      `json:"n_tup_hot_upd"`
	LastVacuum       *time.Time `json:"last_vacuum,omitempty"`
	LastAutoVacuum   *time.Time `json:"last_autovacuum,omitempty"`
	LastAnalyze      *time.Time `json:"last_analyze,omitempty"`
	LastAutoAnalyze  *time.Time `json:"last_autoanalyze,omitempty"`
	SizeBytes        int64      `json:"size_bytes"`
}

// Name returns the unquoted schema.table form used in logs and reports
func (c Candidate) Name() string {
	return fmt.Sprintf("%s.%s", c.Schema, c.Table)
}

// DeadTupleRatio returns dead / (live + dead), or 0 for an empty table
func (c Candidate) DeadTupleRatio() float64 {
	total := c.NLiveTup + c.NDeadTup
	if total == 0 {
		return 0
	}
	return float64(c.NDeadTup) / float64(total)
}

// ModRatio returns modifications since the last analyze relative to the
// live row count. A table with zero live rows but pending modifications
// is treated as infinitely churned.
func (c Candidate) ModRatio() float64 {
	if c.NLiveTup == 0 {
		if c.NModSinceAnalyze == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return float64(c.NModSinceAnalyze) / float64(c.NLiveTup)
}

// LastAnalyzed returns the most recent of the manual and automatic
// analyze timestamps. ok is false when the table was never analyzed.
func (c Candidate) LastAnalyzed() (time.Time, bool) {
	return latest(c.LastAnalyze, c.LastAutoAnalyze)
}

// LastVacuumed returns the most recent of the manual and automatic
// vacuum timestamps. ok is false when the table was never vacuumed.
func (c Candidate) LastVacuumed() (time.Time, bool) {
	return latest(c.LastVacuum, c.LastAutoVacuum)
}

func latest(a, b *time.Time) (time.Time, bool) {
	switch {
	case a == nil && b == nil:
		return time.Time{}, false
	case a == nil:
		return *b, true
	case b == nil:
		return *a, true
	case a.After(*b):
		return *a, true
	default:
		return *b, true
	}
}
