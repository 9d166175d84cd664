package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neexbeast/skycast/internal/weather"
)

// Querier abstracts the subset of pgxpool.Pool used for reads.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Pool is the subset of *pgxpool.Pool the PostgresStore needs.
type Pool interface {
	Querier
	MigrationPool
	Ping(ctx context.Context) error
}

var placesColumns = []string{"position", "name", "region", "country"}

// PostgresStore keeps the list in the places table.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// NewPostgresStore constructs a PostgresStore backed by the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: pool.Close}
}

// NewPostgresStoreWithPool constructs a PostgresStore with a custom Pool (for tests).
func NewPostgresStoreWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Load returns the places in saved order.
func (s *PostgresStore) Load(ctx context.Context) ([]weather.Place, error) {
	const q = `SELECT name, region, country FROM places ORDER BY position`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying places: %w", err)
	}
	defer rows.Close()

	places := []weather.Place{}
	for rows.Next() {
		var name string
		var region, country *string
		if err := rows.Scan(&name, &region, &country); err != nil {
			return nil, corrupt(fmt.Errorf("scanning place row: %w", err))
		}
		places = append(places, placeFromColumns(name, region, country))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating place rows: %w", err)
	}

	return places, nil
}

// Save replaces the table contents in one transaction.
func (s *PostgresStore) Save(ctx context.Context, places []weather.Place) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM places`); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("clearing places: %w", err)
	}

	src := pgx.CopyFromSlice(len(places), func(i int) ([]any, error) {
		p := places[i]
		return []any{i, p.Name, p.Region, p.Country}, nil
	})
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"places"}, placesColumns, src); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("copying places: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}
