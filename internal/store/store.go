package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"clinic-scheduler/internal/auth"
)

var (
	// ErrNotFound matches auth.ErrNoRecord so the gate can tell it from a fault.
	ErrNotFound  = fmt.Errorf("not found: %w", auth.ErrNoRecord)
	ErrDuplicate = errors.New("duplicate")
	// ErrStale means the row changed since it was read.
	ErrStale = errors.New("stale version")
)

// postgres error codes we translate
const (
	uniqueViolation = "23505"
	invalidText     = "22P02" // e.g. malformed uuid
)

var pg = goqu.Dialect("postgres")

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// mapErr turns driver errors into the package sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return ErrDuplicate
		case invalidText:
			return ErrNotFound
		}
	}
	return err
}

// likeContains builds an ILIKE pattern matching s anywhere, with s taken literally.
func likeContains(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
