package pg

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGVersion returns the version of the PostgreSQL instance
const PGVersionQuery = `
/*pgtools*/
SELECT version();
`

// Example: 16.4
func PGVersion(pgPool *pgxpool.Pool) (string, error) {
	var pgVersion string
	versionRegex := regexp.MustCompile(`PostgreSQL (\d+\.\d+)`)
	err := pgPool.QueryRow(context.Background(), PGVersionQuery).Scan(&pgVersion)
	if err != nil {
		return "", err
	}
	matches := versionRegex.FindStringSubmatch(pgVersion)
	if matches == nil {
		return "", fmt.Errorf("unexpected version string: %s", pgVersion)
	}

	return matches[1], nil
}

const IsInRecoveryQuery = `
/*pgtools*/
SELECT pg_is_in_recovery();
`

// IsInRecovery reports whether the server is a standby. Maintenance
// statements such as VACUUM are rejected on standbys, so callers abort
// early when this returns true.
func IsInRecovery(pgPool *pgxpool.Pool) (bool, error) {
	var inRecovery bool
	err := pgPool.QueryRow(context.Background(), IsInRecoveryQuery).Scan(&inRecovery)
	if err != nil {
		return false, fmt.Errorf("error checking recovery state: %v", err)
	}

	return inRecovery, nil
}

const DataDirectoryQuery = `
/*pgtools*/
SHOW data_directory;
`

func DataDirectory(pgPool *pgxpool.Pool) (string, error) {
	var dataDir string
	err := pgPool.QueryRow(context.Background(), DataDirectoryQuery).Scan(&dataDir)
	if err != nil {
		return "", err
	}
	return dataDir, nil
}

const Select1Query = `
/*pgtools*/
SELECT 1;
`

// Select1 is the cheapest full round trip, used to verify a pool can
// actually run a query before any real work is sent through it.
func Select1(ctx context.Context, pgPool *pgxpool.Pool) error {
	_, err := pgPool.Exec(ctx, Select1Query)
	if err != nil {
		return err
	}
	return nil
}
