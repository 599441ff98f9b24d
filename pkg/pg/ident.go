package pg

import (
	"github.com/jackc/pgx/v5"
)

// QualifiedName renders schema.table with both parts quoted and any
// embedded quotes doubled. Maintenance statements cannot take bind
// parameters, so every identifier interpolated into one goes through
// this helper.
func QualifiedName(schema string, table string) string {
	return pgx.Identifier{schema, table}.Sanitize()
}
