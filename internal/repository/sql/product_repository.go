package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/coprra/coprra/internal/model"
	"github.com/coprra/coprra/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const productColumns = "id, name, slug, description, price, currency, category_id, brand_id, active, created_at, updated_at"

// ProductRepository provides product reads and the guarded price update.
type ProductRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new ProductRepository instance.
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Currency,
		&p.CategoryID, &p.BrandID, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindBySlug returns the active product with the given slug, or nil when no
// such product exists. A malformed slug is rejected before storage is touched.
func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	if !repository.ValidSlug(slug) {
		return nil, repository.NewValidationError("slug", "must be lowercase letters, digits and hyphens")
	}

	query := "SELECT " + productColumns + " FROM products WHERE slug = $1 AND active"

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	product, err := scanProduct(stmt.QueryRowContext(ctx, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query product by slug: %w", err)
	}
	return product, nil
}

// FindByID returns the product with the given ID regardless of its active
// flag, or nil when absent.
func (r *ProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := "SELECT " + productColumns + " FROM products WHERE id = $1"

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	product, err := scanProduct(stmt.QueryRowContext(ctx, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query product by id: %w", err)
	}
	return product, nil
}

// Related returns up to limit random active products sharing the category,
// excluding the product itself. The limit must be within [1,20].
func (r *ProductRepository) Related(ctx context.Context, productID, categoryID uuid.UUID, limit int) ([]*model.Product, error) {
	if limit < repository.MinRelatedLimit || limit > repository.MaxRelatedLimit {
		return nil, repository.NewValidationError("limit", fmt.Sprintf("must be between %d and %d", repository.MinRelatedLimit, repository.MaxRelatedLimit))
	}

	query := "SELECT " + productColumns + ` FROM products
	          WHERE category_id = $1 AND id <> $2 AND active
	          ORDER BY random() LIMIT $3`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, categoryID, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query related products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func collectProducts(rows *sql.Rows) ([]*model.Product, error) {
	var products []*model.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return products, nil
}

// Search executes a filtered, sorted and paginated query over active
// products. Params are normalized first; filter references to unknown
// categories or brands are rejected as validation errors.
func (r *ProductRepository) Search(ctx context.Context, params repository.SearchParams) (*repository.SearchResult, error) {
	if err := params.Normalize(); err != nil {
		return nil, err
	}

	if params.Filters.CategoryID != nil {
		if err := r.requireExists(ctx, "categories", "category_id", *params.Filters.CategoryID); err != nil {
			return nil, err
		}
	}
	if params.Filters.BrandID != nil {
		if err := r.requireExists(ctx, "brands", "brand_id", *params.Filters.BrandID); err != nil {
			return nil, err
		}
	}

	conds := []string{"active"}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.Query != "" {
		ph := arg("%" + params.Query + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE %s OR description ILIKE %s)", ph, ph))
	}
	if params.Filters.CategoryID != nil {
		conds = append(conds, "category_id = "+arg(*params.Filters.CategoryID))
	}
	if params.Filters.BrandID != nil {
		conds = append(conds, "brand_id = "+arg(*params.Filters.BrandID))
	}
	if params.Filters.MinPrice != nil {
		conds = append(conds, "price >= "+arg(*params.Filters.MinPrice))
	}
	if params.Filters.MaxPrice != nil {
		conds = append(conds, "price <= "+arg(*params.Filters.MaxPrice))
	}

	where := strings.Join(conds, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM products WHERE " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	meta := repository.NewPageMeta(params.Page, params.PerPage, total)

	listQuery := "SELECT " + productColumns + " FROM products WHERE " + where +
		" ORDER BY " + orderBy(params.Filters.Sort) +
		" LIMIT " + arg(meta.PerPage) + " OFFSET " + arg(meta.Offset())

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, err
	}

	return &repository.SearchResult{Products: products, Meta: meta}, nil
}

func orderBy(sort repository.SortKey) string {
	switch sort {
	case repository.SortPriceAsc:
		return "price ASC"
	case repository.SortPriceDesc:
		return "price DESC"
	case repository.SortNameAsc:
		return "name ASC"
	case repository.SortNameDesc:
		return "name DESC"
	case repository.SortNewest:
		return "created_at DESC"
	default:
		return "name ASC, id ASC"
	}
}

func (r *ProductRepository) requireExists(ctx context.Context, table, field string, id uuid.UUID) error {
	var exists bool
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)", table)
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check %s existence: %w", table, err)
	}
	if !exists {
		return repository.NewValidationError(field, "does not exist")
	}
	return nil
}

// UpdatePrice commits a new price inside a single transaction. The row is
// re-fetched under a write lock so concurrent updates to the same product
// serialize, and a price-history row is appended before the commit. The
// change either fully commits or fully rolls back.
func (r *ProductRepository) UpdatePrice(ctx context.Context, productID uuid.UUID, newPrice decimal.Decimal, actor, ip string) (*repository.PriceUpdate, error) {
	if newPrice.Sign() < 0 {
		return nil, repository.NewValidationError("price", "must not be negative")
	}
	rounded := newPrice.Round(2)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &repository.PriceUpdateError{ProductID: productID, Err: fmt.Errorf("failed to begin transaction: %w", err)}
	}

	update, err := r.updatePriceInTx(ctx, tx, productID, rounded, actor, ip)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Error("failed to rollback price update", slog.Any("err", rbErr), slog.String("product_id", productID.String()))
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, &repository.PriceUpdateError{ProductID: productID, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return nil, &repository.PriceUpdateError{ProductID: productID, Err: fmt.Errorf("failed to commit transaction: %w", err)}
	}

	slog.Info("product price updated",
		slog.String("product_id", productID.String()),
		slog.String("actor", actor),
		slog.String("ip", ip),
		slog.String("old_price", update.OldPrice.String()),
		slog.String("new_price", update.Product.Price.String()),
	)
	return update, nil
}

func (r *ProductRepository) updatePriceInTx(ctx context.Context, tx *sql.Tx, productID uuid.UUID, price decimal.Decimal, actor, ip string) (*repository.PriceUpdate, error) {
	// Re-fetch under lock rather than trusting the caller's copy: the second
	// of two concurrent updates blocks here and then sees the committed price.
	lockQuery := "SELECT " + productColumns + " FROM products WHERE id = $1 FOR UPDATE"
	product, err := scanProduct(tx.QueryRowContext(ctx, lockQuery, productID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock product row: %w", err)
	}

	oldPrice := product.Price
	now := time.Now()

	_, err = tx.ExecContext(ctx,
		"UPDATE products SET price = $1, updated_at = $2 WHERE id = $3",
		price, now, productID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update price: %w", err)
	}

	change := &model.PriceChange{
		ProductID: productID,
		OldPrice:  oldPrice,
		NewPrice:  price,
		ChangedBy: actor,
		IP:        ip,
	}
	change.InitMeta()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO price_changes (id, product_id, old_price, new_price, changed_by, ip, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		change.ID, change.ProductID, change.OldPrice, change.NewPrice, change.ChangedBy, change.IP, change.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert price history: %w", err)
	}

	product.Price = price
	product.UpdatedAt = now
	return &repository.PriceUpdate{Product: product, OldPrice: oldPrice}, nil
}
