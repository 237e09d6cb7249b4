package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/shehabalqudiry/vend/domain"
)

// SaleLine is one pending cart line submitted at checkout. The cart itself is
// caller-owned; the engine never holds pre-commit state.
type SaleLine struct {
	ProductID int64           `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Receipt is the read-only export consumed by printing/sharing.
type Receipt struct {
	Sale  domain.Sale       `json:"sale"`
	Items []domain.SaleItem `json:"items"`
}

// CommitSale writes a sale, its line items, the stock decrements and, for a
// credit sale, the customer's debt accrual as one all-or-nothing unit.
// Stock is decremented unconditionally and may go negative; clamping it would
// silently desynchronize stock from sold quantities.
func (s *Store) CommitSale(ctx context.Context, lines []SaleLine, method string, customerID *int64) (int64, error) {
	if len(lines) == 0 {
		return 0, fmt.Errorf("%w: sale requires at least one line", ErrValidation)
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return 0, fmt.Errorf("%w: quantity must be positive", ErrValidation)
		}
		if line.UnitPrice.IsNegative() {
			return 0, fmt.Errorf("%w: unit price must not be negative", ErrValidation)
		}
	}
	switch method {
	case domain.PaymentCash:
		if customerID != nil {
			return 0, fmt.Errorf("%w: cash sale must not reference a customer", ErrValidation)
		}
	case domain.PaymentCredit:
		if customerID == nil {
			return 0, fmt.Errorf("%w: credit sale requires a customer", ErrValidation)
		}
	default:
		return 0, fmt.Errorf("%w: unknown payment method %q", ErrValidation, method)
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(line.Quantity)))
	}

	var saleID int64
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO sales (customer_id, total_amount, payment_method, date) VALUES (?, ?, ?, ?)`,
			customerID, total, method, timestamp(time.Now()))
		if err != nil {
			return err
		}
		saleID, err = res.LastInsertId()
		if err != nil {
			return err
		}

		for _, line := range lines {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO sale_items (sale_id, product_id, quantity, price_at_sale) VALUES (?, ?, ?, ?)`,
				saleID, line.ProductID, line.Quantity, line.UnitPrice); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE products SET stock = stock - ? WHERE id = ?`,
				line.Quantity, line.ProductID); err != nil {
				return err
			}
		}

		if method == domain.PaymentCredit {
			return adjustDebt(ctx, tx, *customerID, total)
		}
		return nil
	})
	if err != nil {
		return 0, translate(err)
	}
	return saleID, nil
}

// adjustDebt applies a signed delta to the customer's stored balance inside
// the caller's transaction. The balance is read and rewritten as a decimal;
// sqlite arithmetic on the TEXT column would coerce through floats.
func adjustDebt(ctx context.Context, tx *sqlx.Tx, customerID int64, delta decimal.Decimal) error {
	var current decimal.Decimal
	err := tx.GetContext(ctx, &current, `SELECT total_debt FROM customers WHERE id = ?`, customerID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: customer %d", ErrNotFound, customerID)
	}
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `UPDATE customers SET total_debt = ? WHERE id = ?`, current.Add(delta), customerID)
	return err
}

// Receipt loads a committed sale with its line items for read-only export.
func (s *Store) Receipt(ctx context.Context, saleID int64) (*Receipt, error) {
	var sale domain.Sale
	err := s.db.GetContext(ctx, &sale,
		`SELECT id, customer_id, total_amount, payment_method, date FROM sales WHERE id = ?`, saleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: sale %d", ErrNotFound, saleID)
	}
	if err != nil {
		return nil, err
	}

	var items []domain.SaleItem
	if err := s.db.SelectContext(ctx, &items,
		`SELECT id, sale_id, product_id, quantity, price_at_sale FROM sale_items WHERE sale_id = ? ORDER BY id`, saleID); err != nil {
		return nil, err
	}
	return &Receipt{Sale: sale, Items: items}, nil
}
