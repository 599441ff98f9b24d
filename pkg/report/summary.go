package report

import (
	"fmt"
	"io"
	"time"

	"github.com/thepostgresguy/pgtools-sub000/pkg/plan"
)

// Record is the flat, serializable view of one operation's outcome
type Record struct {
	Target     string `json:"target"`
	Kind       string `json:"kind"`
	Reason     string `json:"reason"`
	State      string `json:"state"`
	DurationMs int64  `json:"duration_ms"`
	SkipNote   string `json:"skip_note,omitempty"`
	Error      string `json:"error,omitempty"`
}

// RunSummary is produced exactly once per invocation, after the runner
// has finished, and covers every operation in the plan including the
// vetoed ones.
type RunSummary struct {
	Mode      string         `json:"mode"`
	StartedAt time.Time      `json:"started_at"`
	ElapsedMs int64          `json:"elapsed_ms"`
	Counts    map[string]int `json:"counts"`
	Records   []Record       `json:"records"`
}

// Summarize flattens the plan's final states into a RunSummary
func Summarize(p plan.Plan, startedAt time.Time, elapsed time.Duration) RunSummary {
	s := RunSummary{
		Mode:      string(p.Mode),
		StartedAt: startedAt.UTC(),
		ElapsedMs: elapsed.Milliseconds(),
		Counts:    make(map[string]int),
	}
	for _, op := range p.Operations {
		s.Counts[string(op.State)]++
		s.Records = append(s.Records, Record{
			Target:     op.Target.Name(),
			Kind:       string(op.Kind),
			Reason:     op.Reason.String(),
			State:      string(op.State),
			DurationMs: op.Duration.Milliseconds(),
			SkipNote:   op.SkipNote,
			Error:      op.Error,
		})
	}
	return s
}

// Failed returns how many operations ended in the failed state
func (s RunSummary) Failed() int {
	return s.Counts[string(plan.StateFailed)]
}

// Print renders the summary for a terminal
func (s RunSummary) Print(w io.Writer) {
	if len(s.Records) == 0 {
		fmt.Fprintln(w, "No maintenance needed.")
		return
	}

	fmt.Fprintf(w, "%-40s %-12s %-10s %10s  %s\n", "TABLE", "KIND", "STATE", "DURATION", "REASON")
	for _, r := range s.Records {
		detail := r.Reason
		if r.SkipNote != "" {
			detail = "skipped: " + r.SkipNote
		}
		if r.Error != "" {
			detail = "error: " + r.Error
		}
		fmt.Fprintf(w, "%-40s %-12s %-10s %10s  %s\n",
			r.Target, r.Kind, r.State, formatMs(r.DurationMs), detail)
	}

	fmt.Fprintf(w, "\n%d operations in %s:", len(s.Records), formatMs(s.ElapsedMs))
	for _, state := range []plan.State{
		plan.StateSucceeded, plan.StateFailed, plan.StateSkipped, plan.StateDryRun, plan.StatePending,
	} {
		if n := s.Counts[string(state)]; n > 0 {
			fmt.Fprintf(w, " %d %s", n, state)
		}
	}
	fmt.Fprintln(w)
}

func formatMs(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return (time.Duration(ms) * time.Millisecond).String()
}
