package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

const (
	lookupProductSQL = `SELECT title, unit_price::text, description FROM catalog_products WHERE code = $1`
	listProductsSQL  = `SELECT code, title, unit_price::text, description FROM catalog_products ORDER BY created_at, code`
	upsertProductSQL = `INSERT INTO catalog_products (code, title, unit_price, description)
VALUES ($1, $2, $3::numeric, $4)
ON CONFLICT (code) DO UPDATE SET title = EXCLUDED.title, unit_price = EXCLUDED.unit_price, description = EXCLUDED.description`
)

// DBTX is the subset of pgx pool behaviour the catalog needs.
type DBTX interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Execer runs statements without result rows.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres serves products from the catalog_products table.
type Postgres struct {
	DB DBTX
}

// Lookup implements Catalog.
func (p Postgres) Lookup(ctx context.Context, code string) (Product, error) {
	if p.DB == nil {
		return Product{}, errors.New("catalog: postgres not configured")
	}
	var (
		prod  Product
		price string
	)
	err := p.DB.QueryRow(ctx, lookupProductSQL, code).Scan(&prod.Title, &price, &prod.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("catalog: lookup %s: %w", code, err)
	}
	prod.UnitPrice, err = decimal.NewFromString(price)
	if err != nil {
		return Product{}, fmt.Errorf("catalog: parse price for %s: %w", code, err)
	}
	return prod, nil
}

// List implements Lister.
func (p Postgres) List(ctx context.Context) ([]Entry, error) {
	if p.DB == nil {
		return nil, errors.New("catalog: postgres not configured")
	}
	rows, err := p.DB.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var (
			e     Entry
			price string
		)
		if err := rows.Scan(&e.Code, &e.Product.Title, &price, &e.Product.Description); err != nil {
			return nil, fmt.Errorf("catalog: scan row: %w", err)
		}
		e.Product.UnitPrice, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("catalog: parse price for %s: %w", e.Code, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Upsert writes entries into catalog_products, replacing existing codes.
func Upsert(ctx context.Context, db Execer, entries []Entry) (int, error) {
	if db == nil {
		return 0, errors.New("catalog: postgres not configured")
	}
	n := 0
	for _, e := range entries {
		if e.Product.UnitPrice.IsNegative() {
			return n, fmt.Errorf("catalog: negative price for code %s", e.Code)
		}
		if _, err := db.Exec(ctx, upsertProductSQL, e.Code, e.Product.Title, e.Product.UnitPrice.String(), e.Product.Description); err != nil {
			return n, fmt.Errorf("catalog: upsert %s: %w", e.Code, err)
		}
		n++
	}
	return n, nil
}
