package catalog

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/migrate"
)

func TestPostgres_UpsertAndFetch(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	src := NewPostgresSource(pool, nil)
	products := []domain.Product{
		{ID: "2", Name: "9kg Gas Tank Empty", Price: decimal.RequireFromString("31.50")},
		{ID: "1", Name: "Steel Gas Stove", Price: decimal.RequireFromString("25.005"), Description: "Two plate", Image: "img/stove.jpg"},
	}
	for i, p := range products {
		if err := src.Upsert(ctx, p, i); err != nil {
			t.Fatalf("Upsert %s: %v", p.ID, err)
		}
	}

	list, err := src.Fetch(ctx)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(list) != 2 || list[0].ID != "2" || list[1].ID != "1" {
		t.Fatalf("expected position order, got %+v", list)
	}
	if !list[1].Price.Equal(decimal.RequireFromString("25.005")) || list[1].Description != "Two plate" {
		t.Fatalf("unexpected product %+v", list[1])
	}

	updated := products[0]
	updated.Name = "9kg Gas Tank"
	updated.Price = decimal.RequireFromString("29.99")
	if err := src.Upsert(ctx, updated, 5); err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	list, err = src.Fetch(ctx)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(list) != 2 || list[1].ID != "2" || list[1].Name != "9kg Gas Tank" {
		t.Fatalf("expected updated product last, got %+v", list)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE products`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
