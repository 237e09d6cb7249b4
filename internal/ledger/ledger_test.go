package ledger_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/shehabalqudiry/vend/domain"
	"github.com/shehabalqudiry/vend/internal/ledger"
	"github.com/shehabalqudiry/vend/internal/migrations"
)

// setupTestStore opens a unique in-memory database per test to avoid
// cross-test collisions.
func setupTestStore(t *testing.T) (*ledger.Store, *sqlx.DB) {
	t.Helper()
	db, err := sqlx.Connect("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	db.MustExec(`PRAGMA foreign_keys = ON`)
	migrations.Run(db)
	t.Cleanup(func() { db.Close() })
	return ledger.New(db), db
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func ptr(v int64) *int64 { return &v }

func decFromInt(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func countRows(t *testing.T, db *sqlx.DB, table string) int64 {
	t.Helper()
	var n int64
	if err := db.Get(&n, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func mustCreateProduct(t *testing.T, s *ledger.Store, name, price, barcode string, stock int64) *domain.Product {
	t.Helper()
	p, err := s.CreateProduct(context.Background(), ledger.ProductInput{
		Name:    name,
		Price:   dec(price),
		Barcode: barcode,
		Stock:   stock,
	})
	if err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return p
}

func mustCreateCustomer(t *testing.T, s *ledger.Store, name string) *domain.Customer {
	t.Helper()
	c, err := s.CreateCustomer(context.Background(), name, "")
	if err != nil {
		t.Fatalf("create customer %s: %v", name, err)
	}
	return c
}
