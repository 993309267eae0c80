// Package store persists catalog records in PostgreSQL.
//
// It requires the products and stocks tables:
//
//	CREATE TABLE products (
//	    id          UUID PRIMARY KEY,
//	    title       TEXT NOT NULL,
//	    description TEXT NOT NULL DEFAULT '',
//	    price       INTEGER NOT NULL,
//	    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//
//	CREATE TABLE stocks (
//	    product_id UUID PRIMARY KEY REFERENCES products (id),
//	    count      INTEGER NOT NULL
//	);
//
// The two writes per record are deliberately not wrapped in one
// transaction; the pipeline accepts the inconsistency window.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/catalogops/import-pipeline/internal/catalogbatch"
	"github.com/catalogops/import-pipeline/pkg/postgres"
)

// Store writes products and stock counts to PostgreSQL.
type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

// New creates a Store over the given database client.
func New(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "catalog-store"),
	}
}

// SaveProduct inserts one product row.
func (s *Store) SaveProduct(ctx context.Context, rec catalogbatch.CatalogRecord) error {
	_, err := s.db.DB.ExecContext(ctx,
		`INSERT INTO products (id, title, description, price) VALUES ($1, $2, $3, $4)`,
		rec.ID, rec.Title, rec.Description, rec.Price,
	)
	if err != nil {
		return fmt.Errorf("inserting product %s: %w", rec.ID, err)
	}
	return nil
}

// SaveStock inserts the stock count for a persisted product.
func (s *Store) SaveStock(ctx context.Context, productID string, count int) error {
	_, err := s.db.DB.ExecContext(ctx,
		`INSERT INTO stocks (product_id, count) VALUES ($1, $2)`,
		productID, count,
	)
	if err != nil {
		return fmt.Errorf("inserting stock for product %s: %w", productID, err)
	}
	return nil
}
