package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// RecordPayment appends a debt payment and decrements the customer's balance
// atomically. The balance is not clamped at zero: an overpayment yields a
// negative balance, treated as credit owed to the customer.
func (s *Store) RecordPayment(ctx context.Context, customerID int64, amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, fmt.Errorf("%w: payment amount must be positive", ErrValidation)
	}

	var paymentID int64
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := adjustDebt(ctx, tx, customerID, amount.Neg()); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO debt_payments (customer_id, amount_paid, payment_date) VALUES (?, ?, ?)`,
			customerID, amount, timestamp(time.Now()))
		if err != nil {
			return err
		}
		paymentID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, translate(err)
	}
	return paymentID, nil
}
