package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/coprra/coprra/internal/http/middleware"
	"github.com/coprra/coprra/internal/model"
	"github.com/coprra/coprra/internal/pricing"
	"github.com/coprra/coprra/internal/repository"
	redisrepo "github.com/coprra/coprra/internal/repository/redis"
	"github.com/coprra/coprra/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultRelatedLimit = 4

// OfferRepository lists the store offers for a product.
type OfferRepository interface {
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*model.PriceOffer, error)
	BestOffer(ctx context.Context, productID uuid.UUID) (*model.PriceOffer, error)
}

// ProductController handles HTTP requests for the product catalog.
type ProductController struct {
	catalog    *service.CatalogService
	offers     OfferRepository
	currencies *pricing.Table
	prefs      *redisrepo.PreferenceRepository
}

// NewProductController creates a new ProductController with its dependencies.
func NewProductController(catalog *service.CatalogService, offers OfferRepository, currencies *pricing.Table, prefs *redisrepo.PreferenceRepository) *ProductController {
	return &ProductController{
		catalog:    catalog,
		offers:     offers,
		currencies: currencies,
		prefs:      prefs,
	}
}

// ProductResponse represents the response body for a product.
type ProductResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	Description    string `json:"description"`
	Price          string `json:"price"`
	Currency       string `json:"currency"`
	FormattedPrice string `json:"formatted_price"`
	CategoryID     string `json:"category_id"`
	BrandID        string `json:"brand_id,omitempty"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

func (pc *ProductController) toProductResponse(product *model.Product, display redisrepo.Preferences) ProductResponse {
	converted := pc.currencies.Convert(product.Price, product.Currency, display.Currency)

	resp := ProductResponse{
		ID:             product.ID.String(),
		Name:           product.Name,
		Slug:           product.Slug,
		Description:    product.Description,
		Price:          product.Price.StringFixed(2),
		Currency:       product.Currency,
		FormattedPrice: pc.currencies.FormatPrice(converted, display.Currency),
		CategoryID:     product.CategoryID.String(),
		CreatedAt:      product.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      product.UpdatedAt.Format(time.RFC3339),
	}
	if product.BrandID != uuid.Nil {
		resp.BrandID = product.BrandID.String()
	}
	return resp
}

// SearchProductsRequest represents the query parameters for product search.
type SearchProductsRequest struct {
	Query      string `form:"q"`
	CategoryID string `form:"category_id"`
	BrandID    string `form:"brand_id"`
	MinPrice   string `form:"min_price"`
	MaxPrice   string `form:"max_price"`
	Sort       string `form:"sort"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}

func (req *SearchProductsRequest) toParams() (repository.SearchParams, error) {
	params := repository.SearchParams{
		Query:   req.Query,
		Page:    req.Page,
		PerPage: req.PerPage,
		Filters: repository.SearchFilters{Sort: repository.SortKey(req.Sort)},
	}

	if req.CategoryID != "" {
		id, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return params, repository.NewValidationError("category_id", "must be a UUID")
		}
		params.Filters.CategoryID = &id
	}
	if req.BrandID != "" {
		id, err := uuid.Parse(req.BrandID)
		if err != nil {
			return params, repository.NewValidationError("brand_id", "must be a UUID")
		}
		params.Filters.BrandID = &id
	}
	if req.MinPrice != "" {
		min, err := decimal.NewFromString(req.MinPrice)
		if err != nil {
			return params, repository.NewValidationError("min_price", "must be a decimal number")
		}
		params.Filters.MinPrice = &min
	}
	if req.MaxPrice != "" {
		max, err := decimal.NewFromString(req.MaxPrice)
		if err != nil {
			return params, repository.NewValidationError("max_price", "must be a decimal number")
		}
		params.Filters.MaxPrice = &max
	}
	return params, nil
}

// SearchProducts handles the HTTP GET request for searching the catalog.
func (pc *ProductController) SearchProducts(c *gin.Context) {
	var req SearchProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params, err := req.toParams()
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	result, err := pc.catalog.Search(c.Request.Context(), params)
	if err != nil {
		if repository.IsValidation(err) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search products"})
		return
	}

	display := sessionPrefs(c, pc.prefs)
	data := make([]ProductResponse, 0, len(result.Products))
	for _, product := range result.Products {
		data = append(data, pc.toProductResponse(product, display))
	}

	c.JSON(http.StatusOK, gin.H{"data": data, "meta": result.Meta})
}

// GetProduct handles the HTTP GET request for a single product by slug.
func (pc *ProductController) GetProduct(c *gin.Context) {
	product, ok := pc.resolveProduct(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": pc.toProductResponse(product, sessionPrefs(c, pc.prefs))})
}

// RelatedProducts handles the HTTP GET request for products related by category.
func (pc *ProductController) RelatedProducts(c *gin.Context) {
	product, ok := pc.resolveProduct(c)
	if !ok {
		return
	}

	limit := defaultRelatedLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid limit: must be an integer"})
			return
		}
		limit = parsed
	}

	related, err := pc.catalog.Related(c.Request.Context(), product, limit)
	if err != nil {
		if repository.IsValidation(err) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load related products"})
		return
	}

	display := sessionPrefs(c, pc.prefs)
	data := make([]ProductResponse, 0, len(related))
	for _, p := range related {
		data = append(data, pc.toProductResponse(p, display))
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// OfferResponse represents one store offer for a product.
type OfferResponse struct {
	StoreID        string `json:"store_id"`
	StoreName      string `json:"store_name"`
	Price          string `json:"price"`
	Currency       string `json:"currency"`
	FormattedPrice string `json:"formatted_price"`
	Available      bool   `json:"available"`
	BestPrice      bool   `json:"best_price"`
	GoodDeal       bool   `json:"good_deal"`
}

// ProductOffers handles the HTTP GET request for a product's store offers,
// cheapest first, flagging the best price and good deals.
func (pc *ProductController) ProductOffers(c *gin.Context) {
	product, ok := pc.resolveProduct(c)
	if !ok {
		return
	}

	offers, err := pc.offers.ListByProduct(c.Request.Context(), product.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load offers"})
		return
	}

	display := sessionPrefs(c, pc.prefs)

	prices := make([]decimal.Decimal, 0, len(offers))
	for _, offer := range offers {
		if offer.Available {
			prices = append(prices, pc.currencies.Convert(offer.Price, offer.Currency, display.Currency))
		}
	}
	best, hasBest := pricing.BestPrice(prices)

	data := make([]OfferResponse, 0, len(offers))
	for _, offer := range offers {
		converted := pc.currencies.Convert(offer.Price, offer.Currency, display.Currency)
		data = append(data, OfferResponse{
			StoreID:        offer.StoreID.String(),
			StoreName:      offer.StoreName,
			Price:          offer.Price.StringFixed(2),
			Currency:       offer.Currency,
			FormattedPrice: pc.currencies.FormatPrice(converted, display.Currency),
			Available:      offer.Available,
			BestPrice:      hasBest && offer.Available && converted.Equal(best),
			GoodDeal:       offer.Available && pricing.IsGoodDeal(converted, prices),
		})
	}

	resp := gin.H{"data": data}
	if hasBest {
		resp["best_price"] = pc.currencies.FormatPrice(best, display.Currency)
	}
	c.JSON(http.StatusOK, resp)
}

// resolveProduct loads the product for the slug route parameter, writing the
// error response when the slug is invalid or the product absent.
func (pc *ProductController) resolveProduct(c *gin.Context) (*model.Product, bool) {
	product, err := pc.catalog.ProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if repository.IsValidation(err) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load product"})
		return nil, false
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return nil, false
	}
	return product, true
}

// UpdatePriceRequest represents the request body for an admin price update.
type UpdatePriceRequest struct {
	Price *decimal.Decimal `json:"price" binding:"required"`
}

// UpdatePrice handles the HTTP PUT request for an admin price update.
func (pc *ProductController) UpdatePrice(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}

	var req UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := c.GetString(middleware.CtxEmail)
	update, err := pc.catalog.UpdatePrice(c.Request.Context(), productID, *req.Price, actor, c.ClientIP())
	if err != nil {
		switch {
		case repository.IsValidation(err):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update price"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      pc.toProductResponse(update.Product, pc.prefs.Defaults()),
		"old_price": update.OldPrice.StringFixed(2),
	})
}
