package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shehabalqudiry/vend/domain"
)

// CreateCustomer registers a customer with a zero starting balance. There is
// no edit path for total_debt; only the sale and payment engines touch it.
func (s *Store) CreateCustomer(ctx context.Context, name, phone string) (*domain.Customer, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrValidation)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO customers (name, phone, total_debt) VALUES (?, ?, '0')`,
		name, nullIfEmpty(phone))
	if err != nil {
		return nil, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetCustomer(ctx, id)
}

// ListCustomers returns all customers, largest outstanding balance first.
func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	customers := []domain.Customer{}
	err := s.db.SelectContext(ctx, &customers,
		`SELECT id, name, phone, total_debt FROM customers ORDER BY CAST(total_debt AS REAL) DESC, id`)
	return customers, err
}

func (s *Store) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	var c domain.Customer
	err := s.db.GetContext(ctx, &c,
		`SELECT id, name, phone, total_debt FROM customers WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: customer %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DebtReconciliation compares the denormalized balance against the balance
// recomputed from the full credit-sale and payment history.
type DebtReconciliation struct {
	CustomerID int64           `json:"customer_id"`
	Stored     decimal.Decimal `json:"stored"`
	Derived    decimal.Decimal `json:"derived"`
	Consistent bool            `json:"consistent"`
}

// ReconcileDebt recomputes a customer's balance from history. The read path
// never uses this; it exists as an audit check on the running balance.
func (s *Store) ReconcileDebt(ctx context.Context, customerID int64) (*DebtReconciliation, error) {
	customer, err := s.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	var saleTotals []decimal.Decimal
	if err := s.db.SelectContext(ctx, &saleTotals,
		`SELECT total_amount FROM sales WHERE customer_id = ? AND payment_method = ?`,
		customerID, domain.PaymentCredit); err != nil {
		return nil, err
	}
	var payments []decimal.Decimal
	if err := s.db.SelectContext(ctx, &payments,
		`SELECT amount_paid FROM debt_payments WHERE customer_id = ?`, customerID); err != nil {
		return nil, err
	}

	derived := decimal.Zero
	for _, amount := range saleTotals {
		derived = derived.Add(amount)
	}
	for _, amount := range payments {
		derived = derived.Sub(amount)
	}

	return &DebtReconciliation{
		CustomerID: customerID,
		Stored:     customer.TotalDebt,
		Derived:    derived,
		Consistent: customer.TotalDebt.Equal(derived),
	}, nil
}
