package integration

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// RawRecord is one provider-shaped JSON object as returned by an adapter.
// No fields are guaranteed beyond what each mapping function probes for;
// records are fetched, mapped and discarded within a single run.
type RawRecord map[string]any

// MappedOption is the single variant option every provider currently emits
type MappedOption struct {
	SKU       string
	Price     decimal.Decimal
	Stock     int
	IsDefault bool
	Metadata  catalog.OptionMetadata
}

// MappedProduct is the canonical normalized form all adapters converge to.
// Every mapped product carries exactly one variant with exactly one option.
type MappedProduct struct {
	Name             string
	ShortName        string
	Description      string
	ShortDescription string
	BrandID          *int64
	SubcategoryID    int64
	Dimensions       []catalog.LabelValue
	Specs            []catalog.LabelValue
	Keywords         []string
	Images           []string
	Option           MappedOption
}

// HasSKU reports whether the record can participate in reconciliation.
// Products without a SKU are never written to the catalog.
func (p *MappedProduct) HasSKU() bool {
	return p != nil && p.Option.SKU != ""
}

// ToDraftProduct builds the catalog aggregate inserted on the create path:
// a draft product with one variant at position 0 holding one default option
// at position 0.
func (p *MappedProduct) ToDraftProduct() (*catalog.Product, error) {
	product, err := catalog.NewDraftProduct(p.Name)
	if err != nil {
		return nil, err
	}
	product.ShortName = p.ShortName
	product.Description = p.Description
	product.ShortDescription = p.ShortDescription
	product.BrandID = p.BrandID
	product.SubcategoryID = p.SubcategoryID
	product.Dimensions = p.Dimensions
	product.Specs = p.Specs
	product.Keywords = p.Keywords
	product.Images = p.Images

	variant := catalog.Variant{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  product.ID,
		Name:       p.Name,
		Position:   0,
	}
	option := catalog.VariantOption{
		BaseEntity: shared.NewBaseEntity(),
		VariantID:  variant.ID,
		SKU:        p.Option.SKU,
		Price:      p.Option.Price,
		Stock:      p.Option.Stock,
		Position:   0,
		IsDefault:  true,
		Metadata:   p.Option.Metadata,
	}
	variant.Options = []catalog.VariantOption{option}
	product.Variants = []catalog.Variant{variant}
	return product, nil
}

// ProductPatch builds the bounded update applied when the SKU already exists
func (p *MappedProduct) ProductPatch() catalog.ProductPatch {
	return catalog.ProductPatch{
		Name:             p.Name,
		ShortName:        p.ShortName,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		BrandID:          p.BrandID,
		SubcategoryID:    p.SubcategoryID,
		Dimensions:       p.Dimensions,
		Specs:            p.Specs,
		Keywords:         p.Keywords,
		Images:           p.Images,
	}
}

// OptionPatch builds the bounded update for the matched variant option
func (p *MappedProduct) OptionPatch() catalog.OptionPatch {
	return catalog.OptionPatch{
		Price:    p.Option.Price,
		Stock:    p.Option.Stock,
		Metadata: p.Option.Metadata,
	}
}
