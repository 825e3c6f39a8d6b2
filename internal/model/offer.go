package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store is a shop whose offers are compared for a product.
type Store struct {
	ID   uuid.UUID
	Name string
	URL  string
}

// PriceOffer is one store's price for a product. One row per store/product pair.
type PriceOffer struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	StoreID   uuid.UUID
	StoreName string
	Price     decimal.Decimal
	Currency  string
	Available bool
	UpdatedAt time.Time
}
