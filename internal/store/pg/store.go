package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"wanotif/internal/store"
)

// DB is the part of *pgxpool.Pool the store uses.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Store reads customer records. The pool is created once by the caller and
// shared; Store never closes it.
type Store struct {
	DB DB
}

func New(db DB) *Store { return &Store{DB: db} }

func (s *Store) GetCustomer(ctx context.Context, id string) (store.Customer, error) {
	row := s.DB.QueryRow(ctx, `
		SELECT id, COALESCE(name,''), COALESCE(phone,'') FROM customers WHERE id=$1
	`, id)
	var c store.Customer
	if err := row.Scan(&c.ID, &c.Name, &c.Phone); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Customer{}, store.ErrNotFound
		}
		return store.Customer{}, err
	}
	return c, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.DB.Ping(ctx)
}
