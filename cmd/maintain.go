package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thepostgresguy/pgtools-sub000/pkg/checks"
	"github.com/thepostgresguy/pgtools-sub000/pkg/pg"
	"github.com/thepostgresguy/pgtools-sub000/pkg/plan"
	"github.com/thepostgresguy/pgtools-sub000/pkg/report"
	"github.com/thepostgresguy/pgtools-sub000/pkg/runner"
	"github.com/thepostgresguy/pgtools-sub000/pkg/safety"
	"github.com/thepostgresguy/pgtools-sub000/pkg/stats"
)

type maintainOptions struct {
	schema      string
	tables      []string
	jobs        int
	dryRun      bool
	deadRatio   float64
	staleness   time.Duration
	skipLarge   bool
	largeBytes  int64
	yes         bool
	out         string
	planFile    string
	lockTimeout time.Duration
}

// The five maintenance modes share one flag surface and one pipeline;
// only the operation kinds they may propose differ.
func newMaintainCommand(use, short string, mode plan.Mode) *cobra.Command {
	opts := &maintainOptions{}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMaintenance(cmd, mode, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.schema, "schema", "", "restrict candidates to schemas matching this LIKE pattern")
	flags.StringSliceVar(&opts.tables, "tables", nil, "glob patterns selecting tables, schema-qualified when the pattern has a dot")
	flags.IntVar(&opts.jobs, "jobs", runner.JOBS_DEFAULT, "maintenance sessions to run concurrently")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "print the plan without executing it")
	flags.Float64Var(&opts.deadRatio, "dead-ratio", plan.DEAD_TUPLE_RATIO_DEFAULT, "dead tuple ratio that makes a table vacuum-eligible")
	flags.DurationVar(&opts.staleness, "staleness", plan.STALENESS_DEFAULT, "age after which statistics count as stale")
	flags.BoolVar(&opts.skipLarge, "skip-large", false, "exclude tables over --large-table-bytes from the plan")
	flags.Int64Var(&opts.largeBytes, "large-table-bytes", safety.LARGE_TABLE_BYTES_DEFAULT, "size cutoff for --skip-large")
	flags.BoolVar(&opts.yes, "yes", false, "standing approval for destructive operations")
	flags.StringVar(&opts.out, "out", "", "append run records to this JSONL file")
	flags.StringVar(&opts.planFile, "plan-file", "", "write the evaluated plan to this YAML file")
	flags.DurationVar(&opts.lockTimeout, "lock-timeout", 0, "lock_timeout applied to each maintenance session")

	return cmd
}

// Explicit flags beat both environment and config file. Each override
// goes through the env var the package config already binds, so the
// per-package resolvers stay the single place values are read.
func exportFlagOverrides(flags *pflag.FlagSet, opts *maintainOptions) {
	override := func(flag, env, value string) {
		if flags.Changed(flag) {
			os.Setenv(env, value)
		}
	}

	override("lock-timeout", "PGT_POSTGRESQL_LOCK_TIMEOUT", opts.lockTimeout.String())
	override("jobs", "PGT_RUNNER_JOBS", strconv.Itoa(opts.jobs))
	override("dry-run", "PGT_RUNNER_DRY_RUN", strconv.FormatBool(opts.dryRun))
	override("dead-ratio", "PGT_THRESHOLDS_DEAD_TUPLE_RATIO", strconv.FormatFloat(opts.deadRatio, 'f', -1, 64))
	override("staleness", "PGT_THRESHOLDS_STALENESS", opts.staleness.String())
	override("skip-large", "PGT_SAFETY_SKIP_LARGE", strconv.FormatBool(opts.skipLarge))
	override("large-table-bytes", "PGT_SAFETY_LARGE_TABLE_BYTES", strconv.FormatInt(opts.largeBytes, 10))
	override("yes", "PGT_SAFETY_CONFIRM_DESTRUCTIVE", strconv.FormatBool(opts.yes))
	override("out", "PGT_REPORT_OUT", opts.out)
	override("plan-file", "PGT_REPORT_PLAN_FILE", opts.planFile)
}

func runMaintenance(cmd *cobra.Command, mode plan.Mode, opts *maintainOptions) error {
	exportFlagOverrides(cmd.Flags(), opts)

	pgConfig, err := pg.ConfigFromViper(nil)
	if err != nil {
		return &exitError{code: exitUsageError, err: err}
	}
	collectorConfig, err := stats.ConfigFromViper(nil)
	if err != nil {
		return &exitError{code: exitUsageError, err: err}
	}
	policy, err := plan.PolicyFromViper(nil)
	if err != nil {
		return &exitError{code: exitUsageError, err: err}
	}
	safetyConfig, err := safety.ConfigFromViper(nil)
	if err != nil {
		return &exitError{code: exitUsageError, err: err}
	}
	runnerConfig, err := runner.ConfigFromViper(nil)
	if err != nil {
		return &exitError{code: exitUsageError, err: err}
	}
	reportConfig, err := report.ConfigFromViper(nil)
	if err != nil {
		return &exitError{code: exitUsageError, err: err}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pgPool, err := pg.Connect(ctx, pgConfig, runnerConfig.Jobs)
	if err != nil {
		return &exitError{code: exitPlanError, err: err}
	}
	defer pgPool.Close()

	if err := checks.CheckStartupRequirements(pgPool, logger); err != nil {
		return &exitError{code: exitPlanError, err: err}
	}

	started := time.Now()

	scope := stats.Scope{Schema: opts.schema, Tables: opts.tables}
	candidates, err := stats.Collect(ctx, pgPool, scope, collectorConfig.AllowPartial, logger)
	if err != nil {
		if !errors.Is(err, stats.ErrPartial) {
			return &exitError{code: exitPlanError, err: fmt.Errorf("collecting table statistics: %w", err)}
		}
		logger.Warnf("Continuing with %v", err)
	}
	logger.Infof("Collected statistics for %d tables", len(candidates))

	p := plan.Build(candidates, policy, mode, time.Now())

	filter := &safety.Filter{
		Config:        safetyConfig,
		Logger:        logger,
		Confirm:       confirmFunc(safetyConfig, runnerConfig),
		FreeDiskBytes: freeDiskBytes(pgPool, safetyConfig),
	}
	filter.Apply(p)

	if reportConfig.PlanFile != "" {
		if err := report.WritePlanYAML(reportConfig.PlanFile, p); err != nil {
			logger.Errorf("Failed to write plan file: %v", err)
		} else {
			logger.Infof("Plan written to %s", reportConfig.PlanFile)
		}
	}

	runner.Run(ctx, p, &runner.PoolExecutor{Pool: pgPool, LockTimeout: pgConfig.LockTimeout}, runnerConfig, logger)

	summary := report.Summarize(p, started, time.Since(started))
	summary.Print(os.Stdout)

	if reportConfig.Out != "" {
		if err := report.WriteJSONL(reportConfig.Out, summary); err != nil {
			logger.Errorf("Failed to write run records: %v", err)
		}
	}
	if reportConfig.WebhookURL != "" {
		if err := report.Push(reportConfig.WebhookURL, summary, logger); err != nil {
			logger.Errorf("Failed to push run summary: %v", err)
		}
	}

	if n := summary.Failed(); n > 0 {
		return &exitError{code: exitOpsFailed, err: fmt.Errorf("%d of %d operations failed", n, len(summary.Records))}
	}
	return nil
}

// confirmFunc decides how destructive operations get approved. With
// standing approval the filter never asks; without it a terminal prompt
// is offered only when one exists and the run is real.
func confirmFunc(safetyConfig safety.Config, runnerConfig runner.Config) safety.ConfirmFunc {
	if safetyConfig.ConfirmDestructive || runnerConfig.DryRun || !safety.Interactive() {
		return nil
	}
	return safety.TerminalConfirm(os.Stdin, os.Stderr)
}

// freeDiskBytes resolves free space on the server's data directory
// volume. Anything that keeps it from being measured just disables the
// disk check, the directory is usually not visible from a remote client.
func freeDiskBytes(pgPool *pgxpool.Pool, safetyConfig safety.Config) int64 {
	if !safetyConfig.DiskCheck {
		return -1
	}
	dataDir, err := pg.DataDirectory(pgPool)
	if err != nil {
		logger.Debugf("Data directory unavailable: %v", err)
		return -1
	}
	free := safety.FreeDiskBytes(dataDir)
	if free >= 0 {
		logger.Debugf("Data directory %s has %d bytes free", dataDir, free)
	}
	return free
}

func init() {
	rootCmd.AddCommand(
		newMaintainCommand("auto", "Run vacuum and analyze wherever thresholds are crossed", plan.ModeAuto),
		newMaintainCommand("vacuum", "Vacuum tables over the dead tuple threshold", plan.ModeVacuum),
		newMaintainCommand("analyze", "Refresh statistics for stale or churning tables", plan.ModeAnalyze),
		newMaintainCommand("full-vacuum", "Rewrite bloated tables with VACUUM FULL", plan.ModeFullVacuum),
		newMaintainCommand("reindex", "Rebuild the indexes of bloated tables", plan.ModeReindex),
	)
}
