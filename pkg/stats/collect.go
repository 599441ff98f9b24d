package stats

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// ErrPartial marks a snapshot that is missing rows the server reported
// but could not be decoded. Callers decide whether to continue.
var ErrPartial = errors.New("partial statistics snapshot")

const UserTableStatsQuery = `
/*pgtools*/
SELECT schemaname, relname,
       n_live_tup, n_dead_tup, n_mod_since_analyze,
       n_tup_ins, n_tup_upd, n_tup_del, n_tup_hot_upd,
       last_vacuum, last_autovacuum, last_analyze, last_autoanalyze,
       pg_total_relation_size(relid) AS total_bytes
FROM pg_stat_user_tables
WHERE n_live_tup + n_dead_tup > 0
`

// Scope narrows collection to part of the database. The zero value
// covers every user table with at least one live or dead tuple.
type Scope struct {
	// Schema is a LIKE pattern matched against schemaname
	Schema string
	// Tables holds glob patterns. A pattern containing a dot is matched
	// against schema.table, otherwise against the bare table name.
	Tables []string
}

// Collect takes one snapshot of pg_stat_user_tables. With allowPartial
// set, rows that fail to decode are logged and skipped and the returned
// error wraps ErrPartial; otherwise the first bad row aborts.
func Collect(ctx context.Context, pgPool *pgxpool.Pool, scope Scope, allowPartial bool, logger *logrus.Logger) ([]Candidate, error) {
	query := UserTableStatsQuery
	var args []interface{}
	if scope.Schema != "" {
		query += "  AND schemaname LIKE $1\n"
		args = append(args, scope.Schema)
	}
	query += "ORDER BY schemaname, relname"

	rows, err := pgPool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying table statistics: %w", err)
	}
	defer rows.Close()

	var candidates []Candidate
	var total, failed int
	for rows.Next() {
		total++
		var c Candidate
		err := rows.Scan(
			&c.Schema, &c.Table,
			&c.NLiveTup, &c.NDeadTup, &c.NModSinceAnalyze,
			&c.NTupIns, &c.NTupUpd, &c.NTupDel, &c.NTupHotUpd,
			&c.LastVacuum, &c.LastAutoVacuum, &c.LastAnalyze, &c.LastAutoAnalyze,
			&c.SizeBytes,
		)
		if err != nil {
			if !allowPartial {
				return nil, fmt.Errorf("error scanning statistics row: %w", err)
			}
			failed++
			logger.Warnf("Skipping unreadable statistics row: %v", err)
			continue
		}
		if !matchesScope(c, scope.Tables) {
			continue
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading table statistics: %w", err)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Name() < candidates[j].Name()
	})

	if failed > 0 {
		return candidates, fmt.Errorf("%w: %d of %d rows unreadable", ErrPartial, failed, total)
	}
	return candidates, nil
}

func matchesScope(c Candidate, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, pattern := range patterns {
		subject := c.Table
		if strings.Contains(pattern, ".") {
			subject = c.Name()
		}
		ok, err := path.Match(pattern, subject)
		if err != nil {
			// Malformed pattern, fall back to literal comparison
			ok = pattern == subject
		}
		if ok {
			return true
		}
	}
	return false
}
