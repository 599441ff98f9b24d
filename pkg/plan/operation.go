package plan

import (
	"time"

	"github.com/thepostgresguy/pgtools-sub000/pkg/pg"
	"github.com/thepostgresguy/pgtools-sub000/pkg/stats"
)

// Kind is the maintenance statement an Operation will issue. It is
// fixed when the Operation is created and never changes afterwards.
type Kind string

const (
	KindVacuum     Kind = "vacuum"
	KindVacuumFull Kind = "vacuum-full"
	KindAnalyze    Kind = "analyze"
	KindReindex    Kind = "reindex"
)

// Verb returns the SQL command for the kind, without the target
func (k Kind) Verb() string {
	switch k {
	case KindVacuum:
		return "VACUUM"
	case KindVacuumFull:
		return "VACUUM FULL"
	case KindAnalyze:
		return "ANALYZE"
	case KindReindex:
		return "REINDEX TABLE"
	}
	return ""
}

// Destructive reports whether the kind takes an ACCESS EXCLUSIVE lock
// and rewrites the relation while it holds it
func (k Kind) Destructive() bool {
	return k == KindVacuumFull || k == KindReindex
}

type State string

const (
	StatePending   State = "pending"
	StateSkipped   State = "skipped"
	StateDryRun    State = "dry-run"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Terminal reports whether the state is final for this run. Pending and
// Running are the only non-terminal states.
func (s State) Terminal() bool {
	switch s {
	case StateSkipped, StateDryRun, StateSucceeded, StateFailed:
		return true
	}
	return false
}

type Tier int

const (
	TierUrgent Tier = iota + 1
	TierHigh
	TierRoutine
)

func (t Tier) String() string {
	switch t {
	case TierUrgent:
		return "urgent"
	case TierHigh:
		return "high"
	case TierRoutine:
		return "routine"
	}
	return "unknown"
}

// Selection rule labels carried on Reason
const (
	LabelUrgent        = "urgent"
	LabelHigh          = "high"
	LabelNeverAnalyzed = "never-analyzed"
	LabelStale         = "stale"
	LabelHighChurn     = "high-churn"
)

// Reason records which rule selected the target and the metric value
// that tripped it. It is set once at evaluation time.
type Reason struct {
	Label  string
	Detail string
	Metric float64
}

func (r Reason) String() string {
	return r.Label + ": " + r.Detail
}

// Operation is one maintenance statement against one table. Target,
// Kind, Tier and Reason are fixed at creation; only State and the
// outcome fields change, through the Mark methods below.
type Operation struct {
	Target    stats.Candidate
	Kind      Kind
	Tier      Tier
	Reason    Reason
	State     State
	SkipNote  string
	Error     string
	StartedAt time.Time
	Duration  time.Duration
}

// Statement renders the SQL to execute, with the target quoted
func (o *Operation) Statement() string {
	return o.Kind.Verb() + " " + pg.QualifiedName(o.Target.Schema, o.Target.Table)
}

func (o *Operation) MarkSkipped(note string) {
	o.State = StateSkipped
	o.SkipNote = note
}

func (o *Operation) MarkDryRun() {
	o.State = StateDryRun
}

func (o *Operation) MarkRunning(now time.Time) {
	o.State = StateRunning
	o.StartedAt = now
}

func (o *Operation) MarkSucceeded(elapsed time.Duration) {
	o.State = StateSucceeded
	o.Duration = elapsed
}

func (o *Operation) MarkFailed(err error, elapsed time.Duration) {
	o.State = StateFailed
	o.Error = err.Error()
	o.Duration = elapsed
}

// Plan is the ordered set of Operations for one invocation. Order is
// established once by Build and never changed afterwards; skipped
// entries keep their slot so reports show the full picture.
type Plan struct {
	Mode       Mode
	CreatedAt  time.Time
	Operations []*Operation
}

// Pending returns the operations still eligible for dispatch, in plan
// order
func (p Plan) Pending() []*Operation {
	var pending []*Operation
	for _, op := range p.Operations {
		if op.State == StatePending {
			pending = append(pending, op)
		}
	}
	return pending
}
