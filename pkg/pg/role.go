package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const StatsVisibilityQuery = `
/*pgtools*/
SELECT
    rolname,
    rolsuper
    OR pg_has_role(rolname, 'pg_monitor', 'MEMBER')
    OR pg_has_role(rolname, 'pg_read_all_stats', 'MEMBER') AS visible
FROM
    pg_catalog.pg_roles
WHERE
    rolname = current_user;
`

// StatsVisibility reports whether the connected role can read statistics
// for tables it does not own. Without pg_monitor or pg_read_all_stats the
// counters in pg_stat_user_tables come back NULL for other roles' tables,
// which silently shrinks the candidate set.
func StatsVisibility(pgPool *pgxpool.Pool) (string, bool, error) {
	var role string
	var visible bool
	err := pgPool.QueryRow(context.Background(), StatsVisibilityQuery).Scan(&role, &visible)
	if err != nil {
		return "", false, fmt.Errorf("error checking role privileges: %v", err)
	}

	return role, visible, nil
}
