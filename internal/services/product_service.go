package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/agrolink/internal/apperrors"
	"github.com/example/agrolink/internal/models"
	"github.com/example/agrolink/internal/utils"
)

// slugRetryAttempts is the total number of insert attempts before product
// creation gives up on finding a free slug.
const slugRetryAttempts = 3

// ProductService creates product listings.
type ProductService struct {
	db *gorm.DB
}

// NewProductService constructs a ProductService.
func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

// NewProductRequest is the product creation input. The server generates id,
// timestamps, and the slug when none is supplied.
type NewProductRequest struct {
	FarmerID          uuid.UUID  `json:"farmer_id"`
	FarmID            *uuid.UUID `json:"farm_id"`
	Name              string     `json:"name"`
	Slug              string     `json:"slug"`
	Description       *string    `json:"description"`
	Category          string     `json:"category"`
	Unit              string     `json:"unit"`
	Tags              []string   `json:"tags"`
	PriceCents        int64      `json:"price_cents"`
	CurrencyCode      string     `json:"currency_code"`
	MinOrderQty       int        `json:"min_order_qty"`
	QuantityAvailable int        `json:"quantity_available"`
	Organic           bool       `json:"organic"`
	Perishable        bool       `json:"perishable"`
	HarvestDate       *time.Time `json:"expected_harvest_date"`
	ExpiryDate        *time.Time `json:"expiry_date"`
	Status            string     `json:"status"`
	Visibility        string     `json:"visibility"`
	Images            []string   `json:"images"`
}

func validateNewProduct(req NewProductRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperrors.Validation("Product name is required")
	}
	if strings.TrimSpace(req.Category) == "" {
		return apperrors.Validation("Category is required")
	}
	if strings.TrimSpace(req.Unit) == "" {
		return apperrors.Validation("Unit is required")
	}
	if req.PriceCents < 0 {
		return apperrors.Validation("price_cents must be >= 0")
	}
	if req.MinOrderQty < 1 {
		return apperrors.Validation("min_order_qty must be >= 1")
	}
	return nil
}

// Create validates the payload and inserts the product, retrying with
// suffixed slug candidates on slug collisions. Validation happens before any
// database access.
func (s *ProductService) Create(req NewProductRequest) (*models.Product, error) {
	if err := validateNewProduct(req); err != nil {
		return nil, err
	}

	baseSlug := req.Slug
	if baseSlug == "" {
		baseSlug = utils.Slugify(req.Name)
	}

	currency := req.CurrencyCode
	if currency == "" {
		currency = "NGN"
	}
	status := req.Status
	if status == "" {
		status = models.ProductStatusDraft
	}
	visibility := req.Visibility
	if visibility == "" {
		visibility = "both"
	}

	product := models.Product{
		FarmerID:          req.FarmerID,
		FarmID:            req.FarmID,
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		Unit:              req.Unit,
		Tags:              models.StringList(req.Tags),
		PriceCents:        req.PriceCents,
		CurrencyCode:      currency,
		MinOrderQty:       req.MinOrderQty,
		QuantityAvailable: req.QuantityAvailable,
		Organic:           req.Organic,
		Perishable:        req.Perishable,
		HarvestDate:       req.HarvestDate,
		ExpiryDate:        req.ExpiryDate,
		Status:            status,
		Visibility:        visibility,
		Images:            models.StringList(req.Images),
	}

	err := insertWithSlugRetry(baseSlug, slugRetryAttempts, func(slug string) error {
		product.Slug = slug
		return s.db.Create(&product).Error
	})
	if err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.Database(err)
	}

	return &product, nil
}

// insertWithSlugRetry runs insert with the base slug and, on a slug
// uniqueness violation, retries with "<base>-<random 6 chars>" candidates up
// to maxAttempts total attempts. Any other error aborts immediately;
// exhaustion yields a SlugConflict error.
func insertWithSlugRetry(baseSlug string, maxAttempts int, insert func(slug string) error) error {
	slug := baseSlug
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := insert(slug)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		slug = baseSlug + "-" + slugSuffix()
	}
	return apperrors.SlugConflict(baseSlug)
}

// slugSuffix returns the last 6 characters of a fresh UUID.
func slugSuffix() string {
	id := uuid.New().String()
	return id[len(id)-6:]
}
