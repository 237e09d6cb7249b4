package domain

import "github.com/shopspring/decimal"

// DebtPayment records a cash collection against a customer's balance.
// Immutable once created.
type DebtPayment struct {
	ID          int64           `db:"id" json:"id"`
	CustomerID  int64           `db:"customer_id" json:"customer_id"`
	AmountPaid  decimal.Decimal `db:"amount_paid" json:"amount_paid"`
	PaymentDate string          `db:"payment_date" json:"payment_date"`
}
