package checks

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/thepostgresguy/pgtools-sub000/pkg/pg"
)

// CheckStartupRequirements verifies the server is in a state where
// maintenance statements can run. Returns nil if all checks pass, or an
// error describing the first failure.
func CheckStartupRequirements(pgPool *pgxpool.Pool, logger *logrus.Logger) error {
	version, err := pg.PGVersion(pgPool)
	if err != nil {
		return fmt.Errorf("failed to read server version: %w", err)
	}
	logger.Infof("Connected to PostgreSQL %s", version)

	inRecovery, err := pg.IsInRecovery(pgPool)
	if err != nil {
		return fmt.Errorf("failed to check recovery state: %w", err)
	}
	if inRecovery {
		return fmt.Errorf("server is in recovery, maintenance statements require a primary")
	}

	role, visible, err := pg.StatsVisibility(pgPool)
	if err != nil {
		return fmt.Errorf("failed to check role privileges: %w", err)
	}
	if !visible {
		logger.Warnf("Role %s lacks pg_monitor or pg_read_all_stats, statistics for tables owned by other roles will be incomplete", role)
	}

	return nil
}
