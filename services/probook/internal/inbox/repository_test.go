package inbox

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

type fakeExec struct {
	seen map[string]bool
	err  error
}

func (f *fakeExec) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	if f.err != nil {
		return pgconn.CommandTag{}, f.err
	}
	id := args[0].(string)
	if f.seen[id] {
		return pgconn.NewCommandTag("INSERT 0 0"), nil
	}
	f.seen[id] = true
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestRecord(t *testing.T) {
	r := &Repository{db: &fakeExec{seen: map[string]bool{}}}
	ctx := context.Background()

	first, err := r.Record(ctx, "e-1", "probook.booking.created.v1")
	if err != nil || !first {
		t.Fatalf("first delivery should be new, got %v (err=%v)", first, err)
	}
	again, err := r.Record(ctx, "e-1", "probook.booking.created.v1")
	if err != nil || again {
		t.Fatalf("redelivery should be a duplicate, got %v (err=%v)", again, err)
	}
	if _, err := r.Record(ctx, "", "probook.booking.created.v1"); !errors.Is(err, ErrMissingEventID) {
		t.Fatalf("expected ErrMissingEventID, got %v", err)
	}
}

func TestRecordPropagatesErrors(t *testing.T) {
	boom := errors.New("connection reset")
	r := &Repository{db: &fakeExec{err: boom}}
	if ok, err := r.Record(context.Background(), "e-2", "x"); ok || !errors.Is(err, boom) {
		t.Fatalf("expected db error, got %v (err=%v)", ok, err)
	}
}
