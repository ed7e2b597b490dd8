package catalog

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// FallbackSubcategoryID is the subcategory assigned when a provider category
// cannot be resolved against the local category list.
const FallbackSubcategoryID int64 = 1

var (
	ErrProductInvalidName = errors.New("catalog: product name is required")
	ErrOptionInvalidSKU   = errors.New("catalog: variant option SKU is required")
)

// ProductStatus represents the lifecycle status of a product
type ProductStatus string

const (
	// ProductStatusDraft is the status assigned to provider-synced products
	// until a human reviews and publishes them.
	ProductStatusDraft     ProductStatus = "draft"
	ProductStatusPublished ProductStatus = "published"
	ProductStatusArchived  ProductStatus = "archived"
)

// LabelValue is a single label/value attribute pair (dimension or spec)
type LabelValue struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Product is the aggregate root of the catalog hierarchy:
// Product -> Variant -> VariantOption.
type Product struct {
	shared.BaseEntity
	Name             string
	ShortName        string
	Description      string
	ShortDescription string
	BrandID          *int64
	SubcategoryID    int64
	Dimensions       []LabelValue
	Specs            []LabelValue
	Keywords         []string
	Images           []string
	Status           ProductStatus
	Variants         []Variant
}

// Variant groups the purchasable options of a product
type Variant struct {
	shared.BaseEntity
	ProductID uuid.UUID
	Name      string
	Position  int
	Options   []VariantOption
}

// VariantOption is the purchasable unit; its SKU is the reconciliation key
// for provider syncs.
type VariantOption struct {
	shared.BaseEntity
	VariantID uuid.UUID
	SKU       string
	Price     decimal.Decimal
	Stock     int
	Position  int
	IsDefault bool
	Metadata  OptionMetadata
}

// OptionMetadata records the provenance of a provider-synced option
type OptionMetadata struct {
	ExternalID    string `json:"external_id,omitempty"`
	Provider      string `json:"provider,omitempty"`
	LastUpdatedAt string `json:"last_updated_at,omitempty"`
}

// NewDraftProduct creates a draft product as produced by the sync pipeline
func NewDraftProduct(name string) (*Product, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrProductInvalidName
	}
	return &Product{
		BaseEntity:    shared.NewBaseEntity(),
		Name:          name,
		SubcategoryID: FallbackSubcategoryID,
		Status:        ProductStatusDraft,
		Dimensions:    make([]LabelValue, 0),
		Specs:         make([]LabelValue, 0),
		Keywords:      make([]string, 0),
		Images:        make([]string, 0),
	}, nil
}

// IsValid returns true for known product statuses
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusDraft, ProductStatusPublished, ProductStatusArchived:
		return true
	default:
		return false
	}
}

// String returns the string representation of ProductStatus
func (s ProductStatus) String() string {
	return string(s)
}
