package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SKUMatch is a variant option located by SKU together with its owning product
type SKUMatch struct {
	Option    VariantOption
	ProductID uuid.UUID
}

// ProductPatch is the bounded set of product fields the sync pipeline may
// overwrite on an existing product. Lifecycle status is deliberately absent.
type ProductPatch struct {
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
}

// OptionPatch is the bounded set of variant option fields the sync pipeline
// may overwrite. Identity, SKU and position are left untouched.
type OptionPatch struct {
	Price    decimal.Decimal
	Stock    int
	Metadata OptionMetadata
}

// Repository is the catalog store consumed by the reconciliation engine
type Repository interface {
	// FindOptionBySKU locates a variant option by exact SKU match.
	// Returns shared.ErrNotFound when no option carries the SKU.
	FindOptionBySKU(ctx context.Context, sku string) (*SKUMatch, error)

	// CreateProductTree inserts the product with its variants and options in
	// dependency order inside a single transaction; a failure at any step
	// rolls the whole tree back.
	CreateProductTree(ctx context.Context, product *Product) error

	// UpdateProduct applies a bounded patch to an existing product
	UpdateProduct(ctx context.Context, productID uuid.UUID, patch ProductPatch) error

	// UpdateOption applies a bounded patch to an existing variant option
	UpdateOption(ctx context.Context, optionID uuid.UUID, patch OptionPatch) error
}

// LookupRepository loads the read-only reference snapshots used by the mapper
type LookupRepository interface {
	// BrandIndex loads all brands into a case-insensitive name index
	BrandIndex(ctx context.Context) (NameIndex, error)

	// CategoryIndex loads all categories into a case-insensitive name index
	CategoryIndex(ctx context.Context) (NameIndex, error)
}
