package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapPgError(t *testing.T) {
	if mapPgError(nil) != nil {
		t.Fatalf("expected nil for nil")
	}
	if err := mapPgError(pgx.ErrNoRows); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	if err := mapPgError(dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	other := errors.New("boom")
	if err := mapPgError(other); err != other {
		t.Fatalf("expected passthrough, got %v", err)
	}
}
