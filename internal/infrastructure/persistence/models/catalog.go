package models

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/catalog"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	BaseModel
	Name             string                `gorm:"type:varchar(200);not null"`
	ShortName        string                `gorm:"type:varchar(50)"`
	Description      string                `gorm:"type:text"`
	ShortDescription string                `gorm:"type:varchar(150)"`
	BrandID          *int64                `gorm:"index"`
	SubcategoryID    int64                 `gorm:"not null;index"`
	Dimensions       string                `gorm:"type:jsonb;default:'{}'"`
	Specs            string                `gorm:"type:jsonb;default:'{}'"`
	Keywords         string                `gorm:"type:jsonb;default:'[]'"`
	Images           string                `gorm:"type:jsonb;default:'[]'"`
	Status           catalog.ProductStatus `gorm:"type:varchar(20);not null;default:'draft'"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
// Variants are loaded separately by the repository when needed.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity:       m.BaseModel.ToDomain(),
		Name:             m.Name,
		ShortName:        m.ShortName,
		Description:      m.Description,
		ShortDescription: m.ShortDescription,
		BrandID:          m.BrandID,
		SubcategoryID:    m.SubcategoryID,
		Dimensions:       UnmarshalLabelValues(m.Dimensions),
		Specs:            UnmarshalLabelValues(m.Specs),
		Keywords:         UnmarshalStrings(m.Keywords),
		Images:           UnmarshalStrings(m.Images),
		Status:           m.Status,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Name = p.Name
	m.ShortName = p.ShortName
	m.Description = p.Description
	m.ShortDescription = p.ShortDescription
	m.BrandID = p.BrandID
	m.SubcategoryID = p.SubcategoryID
	m.Dimensions = MarshalLabelValues(p.Dimensions)
	m.Specs = MarshalLabelValues(p.Specs)
	m.Keywords = MarshalStrings(p.Keywords)
	m.Images = MarshalStrings(p.Images)
	m.Status = p.Status
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// VariantModel is the persistence model for the Variant domain entity.
type VariantModel struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Position  int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (VariantModel) TableName() string {
	return "variants"
}

// ToDomain converts the persistence model to a domain Variant entity.
func (m *VariantModel) ToDomain() catalog.Variant {
	return catalog.Variant{
		BaseEntity: m.BaseModel.ToDomain(),
		ProductID:  m.ProductID,
		Name:       m.Name,
		Position:   m.Position,
	}
}

// FromDomain populates the persistence model from a domain Variant entity.
func (m *VariantModel) FromDomain(v *catalog.Variant) {
	m.FromDomainBaseEntity(v.BaseEntity)
	m.ProductID = v.ProductID
	m.Name = v.Name
	m.Position = v.Position
}

// VariantOptionModel is the persistence model for the VariantOption domain
// entity. The SKU carries a partial unique index: empty SKUs are allowed to
// repeat, non-empty SKUs are the reconciliation key.
type VariantOptionModel struct {
	BaseModel
	VariantID uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU       string          `gorm:"type:varchar(100);index"`
	Price     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Stock     int             `gorm:"not null;default:0"`
	Position  int             `gorm:"not null;default:0"`
	IsDefault bool            `gorm:"not null;default:false"`
	Metadata  string          `gorm:"type:jsonb;default:'{}'"`
}

// TableName returns the table name for GORM
func (VariantOptionModel) TableName() string {
	return "variant_options"
}

// ToDomain converts the persistence model to a domain VariantOption entity.
func (m *VariantOptionModel) ToDomain() catalog.VariantOption {
	var metadata catalog.OptionMetadata
	if m.Metadata != "" {
		// Ignore malformed metadata rather than failing the read
		_ = json.Unmarshal([]byte(m.Metadata), &metadata)
	}
	return catalog.VariantOption{
		BaseEntity: m.BaseModel.ToDomain(),
		VariantID:  m.VariantID,
		SKU:        m.SKU,
		Price:      m.Price,
		Stock:      m.Stock,
		Position:   m.Position,
		IsDefault:  m.IsDefault,
		Metadata:   metadata,
	}
}

// FromDomain populates the persistence model from a domain VariantOption entity.
func (m *VariantOptionModel) FromDomain(o *catalog.VariantOption) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.VariantID = o.VariantID
	m.SKU = o.SKU
	m.Price = o.Price
	m.Stock = o.Stock
	m.Position = o.Position
	m.IsDefault = o.IsDefault

	m.Metadata = MarshalOptionMetadata(o.Metadata)
}

// BrandModel is the persistence model for the Brand reference row.
type BrandModel struct {
	ID   int64  `gorm:"primary_key;autoIncrement"`
	Name string `gorm:"type:varchar(100);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (BrandModel) TableName() string {
	return "brands"
}

// ToDomain converts the persistence model to a domain Brand.
func (m *BrandModel) ToDomain() catalog.Brand {
	return catalog.Brand{ID: m.ID, Name: m.Name}
}

// CategoryModel is the persistence model for the Category reference row.
type CategoryModel struct {
	ID       int64  `gorm:"primary_key;autoIncrement"`
	Name     string `gorm:"type:varchar(100);not null"`
	ParentID *int64 `gorm:"index"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category.
func (m *CategoryModel) ToDomain() catalog.Category {
	return catalog.Category{ID: m.ID, Name: m.Name, ParentID: m.ParentID}
}
