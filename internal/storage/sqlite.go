package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/neexbeast/skycast/internal/weather"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS places (
	position INTEGER PRIMARY KEY,
	name     TEXT NOT NULL,
	region   TEXT,
	country  TEXT
);`

// SQLiteStore keeps the list in a places table using the pure Go driver.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) ([]weather.Place, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, region, country FROM places ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying places: %w", err)
	}
	defer rows.Close()

	places := []weather.Place{}
	for rows.Next() {
		var name string
		var region, country sql.NullString
		if err := rows.Scan(&name, &region, &country); err != nil {
			return nil, corrupt(fmt.Errorf("scanning place row: %w", err))
		}
		places = append(places, placeFromColumns(name, nullPtr(region), nullPtr(country)))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating place rows: %w", err)
	}
	return places, nil
}

func (s *SQLiteStore) Save(ctx context.Context, places []weather.Place) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM places`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clearing places: %w", err)
	}
	for i, p := range places {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO places(position, name, region, country) VALUES(?,?,?,?)`,
			i, p.Name, p.Region, p.Country,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("inserting place %s: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// placeFromColumns rebuilds a Place from relational columns.
func placeFromColumns(name string, region, country *string) weather.Place {
	p := weather.NewPlace(name, "", "")
	p.Region = region
	p.Country = country
	return p
}
