package inbox

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ramo2594/probook/libs/db"
)

var ErrMissingEventID = errors.New("inbox: event id is required")

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository remembers which events the notifier already handled.
type Repository struct {
	db execer
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{db: pool}
}

// Record stores eventID and reports whether it was seen for the first time.
func (r *Repository) Record(ctx context.Context, eventID string, eventType string) (bool, error) {
	if eventID == "" {
		return false, ErrMissingEventID
	}
	tag, err := r.db.Exec(ctx, `
		INSERT INTO inbox_events (event_id, event_type)
		VALUES ($1, $2)
		ON CONFLICT (event_id) DO NOTHING
	`, eventID, eventType)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
