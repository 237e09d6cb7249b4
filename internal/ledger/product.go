package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shehabalqudiry/vend/domain"
)

// ProductInput carries the fields managed by the inventory screens.
type ProductInput struct {
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	Barcode string          `json:"barcode"`
	Stock   int64           `json:"stock"`
	Unit    string          `json:"unit"`
}

func (in ProductInput) validate() error {
	if in.Name == "" {
		return fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: product price must not be negative", ErrValidation)
	}
	return nil
}

func (s *Store) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Unit == "" {
		in.Unit = "unit"
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO products (name, price, barcode, stock, unit) VALUES (?, ?, ?, ?, ?)`,
		in.Name, in.Price, nullIfEmpty(in.Barcode), in.Stock, in.Unit)
	if err != nil {
		return nil, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, id)
}

func (s *Store) UpdateProduct(ctx context.Context, id int64, in ProductInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	if in.Unit == "" {
		in.Unit = "unit"
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET name = ?, price = ?, barcode = ?, stock = ?, unit = ? WHERE id = ?`,
		in.Name, in.Price, nullIfEmpty(in.Barcode), in.Stock, in.Unit, id)
	if err != nil {
		return translate(err)
	}
	return requireRow(res, fmt.Sprintf("product %d", id))
}

// DeleteProduct removes a product. Products referenced by historical sale
// items cannot be deleted; the foreign key surfaces as ErrConstraint.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return translate(err)
	}
	return requireRow(res, fmt.Sprintf("product %d", id))
}

// ResetStock zeroes a product's stock. This is a plain single-row write, not
// atomic with anything else.
func (s *Store) ResetStock(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE products SET stock = 0 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res, fmt.Sprintf("product %d", id))
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products := []domain.Product{}
	err := s.db.SelectContext(ctx, &products,
		`SELECT id, name, price, barcode, stock, unit FROM products ORDER BY id DESC`)
	return products, err
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := s.db.GetContext(ctx, &p,
		`SELECT id, name, price, barcode, stock, unit FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByBarcode resolves a scanned barcode. A missing barcode is not an
// error: the scanner feeds arbitrary strings, so the result is nil, nil.
func (s *Store) FindByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	var p domain.Product
	err := s.db.GetContext(ctx, &p,
		`SELECT id, name, price, barcode, stock, unit FROM products WHERE barcode = ?`, barcode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return nil
}
