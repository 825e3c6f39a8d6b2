package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalog product with its price and associations.
type Product struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Description string
	Price       decimal.Decimal
	Currency    string
	CategoryID  uuid.UUID
	BrandID     uuid.UUID
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// InitMeta initializes the product metadata including ID and timestamps.
func (p *Product) InitMeta() {
	p.ID = uuid.New()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
}

// Category groups products for navigation and related-product lookups.
type Category struct {
	ID   uuid.UUID
	Name string
	Slug string
}

// Brand is a product manufacturer or label.
type Brand struct {
	ID   uuid.UUID
	Name string
	Slug string
}

// PriceChange is an audit row recorded for every committed price update.
type PriceChange struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	OldPrice  decimal.Decimal
	NewPrice  decimal.Decimal
	ChangedBy string
	IP        string
	CreatedAt time.Time
}

// InitMeta initializes the price change metadata.
func (pc *PriceChange) InitMeta() {
	pc.ID = uuid.New()
	pc.CreatedAt = time.Now()
}
