package domain

import "github.com/shopspring/decimal"

const (
	PaymentCash   = "cash"
	PaymentCredit = "credit"
)

// Sale is immutable once committed.
type Sale struct {
	ID            int64           `db:"id" json:"id"`
	CustomerID    *int64          `db:"customer_id" json:"customer_id,omitempty"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"total_amount"`
	PaymentMethod string          `db:"payment_method" json:"payment_method"`
	Date          string          `db:"date" json:"date"`
}

type SaleItem struct {
	ID          int64           `db:"id" json:"id"`
	SaleID      int64           `db:"sale_id" json:"sale_id"`
	ProductID   int64           `db:"product_id" json:"product_id"`
	Quantity    int64           `db:"quantity" json:"quantity"`
	PriceAtSale decimal.Decimal `db:"price_at_sale" json:"price_at_sale"`
}
