package plan

import (
	"fmt"
	"sort"
	"time"

	"github.com/thepostgresguy/pgtools-sub000/pkg/stats"
)

// Mode restricts which operation kinds an invocation may propose
type Mode string

const (
	ModeAuto       Mode = "auto"
	ModeVacuum     Mode = "vacuum"
	ModeAnalyze    Mode = "analyze"
	ModeFullVacuum Mode = "full-vacuum"
	ModeReindex    Mode = "reindex"
)

func (m Mode) wantsVacuum() bool {
	return m != ModeAnalyze
}

func (m Mode) wantsAnalyze() bool {
	return m == ModeAuto || m == ModeAnalyze
}

// vacuumKind maps the vacuum-eligibility rules onto the statement the
// mode actually issues
func (m Mode) vacuumKind() Kind {
	switch m {
	case ModeFullVacuum:
		return KindVacuumFull
	case ModeReindex:
		return KindReindex
	default:
		return KindVacuum
	}
}

// Build evaluates every candidate against the policy and returns the
// ordered plan for this invocation. Evaluation is pure: it reads only
// the snapshot and the clock passed in.
func Build(candidates []stats.Candidate, policy Policy, mode Mode, now time.Time) Plan {
	p := Plan{Mode: mode, CreatedAt: now}
	for _, c := range candidates {
		p.Operations = append(p.Operations, evaluateCandidate(c, policy, mode, now)...)
	}
	sortOperations(p.Operations)
	return p
}

// evaluateCandidate proposes at most one vacuum-family and one analyze
// operation for a candidate, each under the best matching rule
func evaluateCandidate(c stats.Candidate, policy Policy, mode Mode, now time.Time) []*Operation {
	// A table with no tuples at all has nothing to maintain, however
	// many modifications its statistics still record
	if c.NLiveTup+c.NDeadTup == 0 {
		return nil
	}

	var ops []*Operation

	if mode.wantsVacuum() {
		ratio := c.DeadTupleRatio()
		switch {
		case ratio >= 2*policy.DeadTupleRatio:
			ops = append(ops, &Operation{
				Target: c,
				Kind:   mode.vacuumKind(),
				Tier:   TierUrgent,
				State:  StatePending,
				Reason: Reason{
					Label:  LabelUrgent,
					Metric: ratio,
					Detail: fmt.Sprintf("dead tuple ratio %.1f%% is at least twice the %.0f%% threshold, %s", ratio*100, policy.DeadTupleRatio*100, vacuumRecency(c, now)),
				},
			})
		case ratio >= policy.DeadTupleRatio:
			ops = append(ops, &Operation{
				Target: c,
				Kind:   mode.vacuumKind(),
				Tier:   TierHigh,
				State:  StatePending,
				Reason: Reason{
					Label:  LabelHigh,
					Metric: ratio,
					Detail: fmt.Sprintf("dead tuple ratio %.1f%% reaches the %.0f%% threshold, %s", ratio*100, policy.DeadTupleRatio*100, vacuumRecency(c, now)),
				},
			})
		}
	}

	if mode.wantsAnalyze() {
		if op := analyzeProposal(c, policy, now); op != nil {
			ops = append(ops, op)
		}
	}

	return ops
}

// vacuumRecency states when the table last saw any vacuum, manual or
// automatic, for the operator-facing reason text
func vacuumRecency(c stats.Candidate, now time.Time) string {
	last, ok := c.LastVacuumed()
	if !ok {
		return "never vacuumed"
	}
	return fmt.Sprintf("last vacuumed %.0fh ago", now.Sub(last).Hours())
}

func analyzeProposal(c stats.Candidate, policy Policy, now time.Time) *Operation {
	analyzedAt, analyzed := c.LastAnalyzed()

	if !analyzed {
		if c.NLiveTup > policy.MinLiveRows {
			return &Operation{
				Target: c,
				Kind:   KindAnalyze,
				Tier:   TierUrgent,
				State:  StatePending,
				Reason: Reason{
					Label:  LabelNeverAnalyzed,
					Metric: float64(c.NLiveTup),
					Detail: fmt.Sprintf("never analyzed with %d live rows", c.NLiveTup),
				},
			}
		}
		// Small never-analyzed tables still qualify through churn below
	} else {
		staleness := now.Sub(analyzedAt)
		if staleness >= policy.Staleness && c.NModSinceAnalyze > policy.MinMods {
			return &Operation{
				Target: c,
				Kind:   KindAnalyze,
				Tier:   TierHigh,
				State:  StatePending,
				Reason: Reason{
					Label:  LabelStale,
					Metric: staleness.Hours(),
					Detail: fmt.Sprintf("statistics are %.0fh old with %d modifications since analyze", staleness.Hours(), c.NModSinceAnalyze),
				},
			}
		}
	}

	if ratio := c.ModRatio(); ratio >= policy.ModRatio && c.NModSinceAnalyze > policy.MinMods {
		return &Operation{
			Target: c,
			Kind:   KindAnalyze,
			Tier:   TierRoutine,
			State:  StatePending,
			Reason: Reason{
				Label:  LabelHighChurn,
				Metric: ratio,
				Detail: fmt.Sprintf("%d modifications since analyze amount to %.1f%% of live rows", c.NModSinceAnalyze, ratio*100),
			},
		}
	}

	return nil
}

// sortOperations orders by tier, then dead tuple count, then table
// size, then name and kind so equal inputs always produce the same
// plan
func sortOperations(ops []*Operation) {
	sort.SliceStable(ops, func(i, j int) bool {
		a, b := ops[i], ops[j]
		if a.Tier != b.Tier {
			return a.Tier < b.Tier
		}
		if a.Target.NDeadTup != b.Target.NDeadTup {
			return a.Target.NDeadTup > b.Target.NDeadTup
		}
		if a.Target.SizeBytes != b.Target.SizeBytes {
			return a.Target.SizeBytes > b.Target.SizeBytes
		}
		if a.Target.Name() != b.Target.Name() {
			return a.Target.Name() < b.Target.Name()
		}
		return a.Kind < b.Kind
	})
}
