package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
)

// GormCatalogRepository implements catalog.Repository using GORM
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GormCatalogRepository
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// FindOptionBySKU locates a variant option by exact SKU match, joined back to
// its owning product. Empty SKUs never match anything.
func (r *GormCatalogRepository) FindOptionBySKU(ctx context.Context, sku string) (*catalog.SKUMatch, error) {
	if sku == "" {
		return nil, shared.ErrNotFound
	}

	var row struct {
		models.VariantOptionModel
		ProductID uuid.UUID
	}
	err := r.db.WithContext(ctx).
		Table("variant_options").
		Select("variant_options.*, variants.product_id AS product_id").
		Joins("JOIN variants ON variants.id = variant_options.variant_id").
		Where("variant_options.sku = ?", sku).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	return &catalog.SKUMatch{
		Option:    row.VariantOptionModel.ToDomain(),
		ProductID: row.ProductID,
	}, nil
}

// CreateProductTree inserts the product with its variants and options in
// dependency order inside a single transaction.
func (r *GormCatalogRepository) CreateProductTree(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		productModel := models.ProductModelFromDomain(product)
		if err := tx.Create(productModel).Error; err != nil {
			return err
		}

		for vi := range product.Variants {
			variant := &product.Variants[vi]
			var variantModel models.VariantModel
			variantModel.FromDomain(variant)
			if err := tx.Create(&variantModel).Error; err != nil {
				return err
			}

			for oi := range variant.Options {
				var optionModel models.VariantOptionModel
				optionModel.FromDomain(&variant.Options[oi])
				if err := tx.Create(&optionModel).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// UpdateProduct applies a bounded patch to an existing product
func (r *GormCatalogRepository) UpdateProduct(ctx context.Context, productID uuid.UUID, patch catalog.ProductPatch) error {
	updates := map[string]any{
		"name":              patch.Name,
		"short_name":        patch.ShortName,
		"description":       patch.Description,
		"short_description": patch.ShortDescription,
		"brand_id":          patch.BrandID,
		"subcategory_id":    patch.SubcategoryID,
		"dimensions":        models.MarshalLabelValues(patch.Dimensions),
		"specs":             models.MarshalLabelValues(patch.Specs),
		"keywords":          models.MarshalStrings(patch.Keywords),
		"images":            models.MarshalStrings(patch.Images),
	}

	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ?", productID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdateOption applies a bounded patch to an existing variant option
func (r *GormCatalogRepository) UpdateOption(ctx context.Context, optionID uuid.UUID, patch catalog.OptionPatch) error {
	updates := map[string]any{
		"price":    patch.Price,
		"stock":    patch.Stock,
		"metadata": models.MarshalOptionMetadata(patch.Metadata),
	}

	result := r.db.WithContext(ctx).
		Model(&models.VariantOptionModel{}).
		Where("id = ?", optionID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormCatalogRepository implements catalog.Repository
var _ catalog.Repository = (*GormCatalogRepository)(nil)
