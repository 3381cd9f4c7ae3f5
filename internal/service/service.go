// Package service holds the two stateful operations of the tracker: the
// blood request lifecycle and donation matching.  Everything else is plain
// data access performed directly by the handlers.
package service

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/blood-donation-tracker/internal/queue"
)

// publishTimeout bounds how long a committed operation waits on the broker.
const publishTimeout = 3 * time.Second

// RecentLimit is the number of rows shown on dashboards.
const RecentLimit = 5

// inTx runs fn inside a transaction and commits when it returns nil.
func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// publish emits an event after the owning transaction committed.  Broker
// failures are logged and otherwise ignored.
func publish(ctx context.Context, p queue.Publisher, log *zap.Logger, name string, event any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.Publish(ctx, name, event); err != nil && log != nil {
		log.Warn("event not published", zap.String("queue", name), zap.Error(err))
	}
}

func nowUTC() time.Time { return time.Now().UTC() }
