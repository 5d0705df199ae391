package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ramo2594/probook/services/probook/internal/model"
)

func TestMapError(t *testing.T) {
	if err := mapError(nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if err := mapError(fmt.Errorf("scan: %w", pgx.ErrNoRows)); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mapError(&pgconn.PgError{Code: "23505"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	other := errors.New("boom")
	if err := mapError(other); err != other {
		t.Fatalf("expected passthrough, got %v", err)
	}
}

func TestMigrationsAreOrdered(t *testing.T) {
	names, err := migrationNames()
	if err != nil {
		t.Fatalf("migrationNames failed: %v", err)
	}
	if len(names) < 2 || names[0] != "0001_core.sql" {
		t.Fatalf("unexpected migrations %v", names)
	}
}

func TestTimeParam(t *testing.T) {
	tod, _ := model.ParseTimeOfDay("10:30:15")
	p := timeParam(tod)
	if !p.Valid || p.Microseconds != (10*3600+30*60+15)*1_000_000 {
		t.Fatalf("unexpected pgtype.Time %+v", p)
	}
}
