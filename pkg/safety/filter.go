package safety

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/thepostgresguy/pgtools-sub000/pkg/internal/utils"
	"github.com/thepostgresguy/pgtools-sub000/pkg/plan"
)

// ConfirmFunc asks the operator to approve one destructive operation.
// Returning false vetoes it.
type ConfirmFunc func(op *plan.Operation) bool

// Filter vetoes operations the policy considers unsafe. Vetoed
// operations are marked skipped in place; plan order is untouched and
// nothing is ever downgraded to a milder statement.
type Filter struct {
	Config  Config
	Logger  *logrus.Logger
	Confirm ConfirmFunc
	// FreeDiskBytes is the free space on the data directory volume.
	// Negative means unknown, which disables the disk check.
	FreeDiskBytes int64
}

// Apply walks the plan once and returns the operations it skipped
func (f *Filter) Apply(p plan.Plan) []*plan.Operation {
	var skipped []*plan.Operation
	for _, op := range p.Operations {
		if op.State != plan.StatePending {
			continue
		}
		note := f.veto(op)
		if note == "" {
			continue
		}
		op.MarkSkipped(note)
		f.Logger.Warnf("Skipping %s on %s: %s", op.Kind.Verb(), op.Target.Name(), note)
		skipped = append(skipped, op)
	}
	return skipped
}

func (f *Filter) veto(op *plan.Operation) string {
	if f.Config.SkipLarge && op.Target.SizeBytes >= f.Config.LargeTableBytes {
		return fmt.Sprintf("table size %s exceeds the %s cutoff",
			utils.HumanBytes(op.Target.SizeBytes), utils.HumanBytes(f.Config.LargeTableBytes))
	}

	if !op.Kind.Destructive() {
		return ""
	}

	if op.Kind == plan.KindVacuumFull && f.Config.DiskCheck && f.FreeDiskBytes >= 0 {
		need := int64(float64(op.Target.SizeBytes) * f.Config.DiskHeadroom)
		if f.FreeDiskBytes < need {
			return fmt.Sprintf("rewrite needs about %s free on the data volume, %s available",
				utils.HumanBytes(need), utils.HumanBytes(f.FreeDiskBytes))
		}
	}

	if f.Config.ConfirmDestructive {
		return ""
	}
	if f.Confirm != nil && f.Confirm(op) {
		return ""
	}
	return "destructive operation not confirmed"
}
