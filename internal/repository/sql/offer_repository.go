package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/coprra/coprra/internal/model"
	"github.com/google/uuid"
)

const offerColumns = "o.id, o.product_id, o.store_id, s.name, o.price, o.currency, o.available, o.updated_at"

// OfferRepository provides reads over per-store price offers.
type OfferRepository struct {
	db *sql.DB
}

// NewOfferRepository creates a new OfferRepository instance.
func NewOfferRepository(db *sql.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

func scanOffer(row rowScanner) (*model.PriceOffer, error) {
	var o model.PriceOffer
	err := row.Scan(
		&o.ID, &o.ProductID, &o.StoreID, &o.StoreName,
		&o.Price, &o.Currency, &o.Available, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByProduct returns all store offers for a product, cheapest first.
func (r *OfferRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*model.PriceOffer, error) {
	query := "SELECT " + offerColumns + ` FROM price_offers o
	          JOIN stores s ON s.id = o.store_id
	          WHERE o.product_id = $1
	          ORDER BY o.price ASC`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	defer rows.Close()

	var offers []*model.PriceOffer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, offer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return offers, nil
}

// BestOffer returns the cheapest available offer for a product, or nil when
// no store currently stocks it.
func (r *OfferRepository) BestOffer(ctx context.Context, productID uuid.UUID) (*model.PriceOffer, error) {
	query := "SELECT " + offerColumns + ` FROM price_offers o
	          JOIN stores s ON s.id = o.store_id
	          WHERE o.product_id = $1 AND o.available
	          ORDER BY o.price ASC LIMIT 1`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	offer, err := scanOffer(stmt.QueryRowContext(ctx, productID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query best offer: %w", err)
	}
	return offer, nil
}
