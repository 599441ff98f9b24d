package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/thepostgresguy/pgtools-sub000/pkg/plan"
)

// Executor issues one operation's statement against the server
type Executor interface {
	Execute(ctx context.Context, op *plan.Operation) error
}

// PoolExecutor runs each statement on a dedicated pool connection.
// Maintenance statements cannot run inside a transaction block, so the
// optional lock_timeout is set on the session and reset before the
// connection goes back to the pool.
type PoolExecutor struct {
	Pool        *pgxpool.Pool
	LockTimeout time.Duration
}

func (e *PoolExecutor) Execute(ctx context.Context, op *plan.Operation) error {
	conn, err := e.Pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("error acquiring connection: %w", err)
	}
	defer conn.Release()

	if e.LockTimeout > 0 {
		_, err = conn.Exec(ctx, fmt.Sprintf("SET lock_timeout = '%dms'", e.LockTimeout.Milliseconds()))
		if err != nil {
			return fmt.Errorf("error setting lock_timeout: %w", err)
		}
		defer conn.Exec(context.Background(), "RESET lock_timeout")
	}

	_, err = conn.Exec(ctx, "/*pgtools*/ "+op.Statement())
	return err
}
