package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/shortly/internal/counter"
)

// CounterStore allocates counter values from the single-row counter table.
// The increment and the returned value are a single UPDATE ... RETURNING
// statement, so concurrent callers are serialized by row-level locking and
// can never observe the same value.
type CounterStore struct {
	db *sqlx.DB
}

func NewCounterStore(db *sqlx.DB) *CounterStore {
	return &CounterStore{
		db: db,
	}
}

// Next returns the current counter value and durably advances it. The
// counter row is seeded at 0 by the migrations; a missing row means the
// persisted state was tampered with and is reported as corruption rather
// than silently starting over.
func (s *CounterStore) Next(ctx context.Context) (uint64, error) {
	const op = "database.postgres.CounterStore.Next"

	var value int64
	query := `UPDATE counter
		SET value = value + 1
		RETURNING value - 1`

	err := s.db.GetContext(ctx, &value, query)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("%s: %w: counter row missing", op, counter.ErrCounterCorrupted)
		}

		return 0, fmt.Errorf("%s: failed to advance counter: %w", op, err)
	}

	if value < 0 {
		return 0, fmt.Errorf("%s: %w: negative value %d", op, counter.ErrCounterCorrupted, value)
	}

	return uint64(value), nil
}
