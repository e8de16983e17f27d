package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements ports.LedgerStore against Postgres. It is the only
// shared mutable resource in the core (spec.md §5): every method that
// mutates an Impression row is scoped to that row, so concurrent callers
// acting on different (user_id, article_id) pairs never block each other.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new ledger store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}
