// Package repository defines the storage ports, validation helpers and error
// taxonomy shared by the SQL and Redis backed repositories.
package repository

import (
	"github.com/coprra/coprra/internal/model"
	"github.com/shopspring/decimal"
)

// SearchResult is one page of matching products with its pagination metadata.
type SearchResult struct {
	Products []*model.Product `json:"products"`
	Meta     PageMeta         `json:"meta"`
}

// PriceUpdate reports a committed price change: the product as persisted and
// the price it replaced.
type PriceUpdate struct {
	Product  *model.Product
	OldPrice decimal.Decimal
}
