package domain

import "github.com/shopspring/decimal"

// Customer carries a denormalized running balance. TotalDebt is written only
// by the sale and payment engines, never by an edit path.
type Customer struct {
	ID        int64           `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Phone     *string         `db:"phone" json:"phone,omitempty"`
	TotalDebt decimal.Decimal `db:"total_debt" json:"total_debt"`
}
