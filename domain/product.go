package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID      int64           `db:"id" json:"id"`
	Name    string          `db:"name" json:"name"`
	Price   decimal.Decimal `db:"price" json:"price"`
	Barcode *string         `db:"barcode" json:"barcode,omitempty"`
	Stock   int64           `db:"stock" json:"stock"`
	Unit    string          `db:"unit" json:"unit"`
}
