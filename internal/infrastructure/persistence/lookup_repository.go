package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
)

// GormLookupRepository implements catalog.LookupRepository using GORM.
// Both indexes are full-table snapshots; the brand and category lists are
// small reference tables loaded once per sync run.
type GormLookupRepository struct {
	db *gorm.DB
}

// NewGormLookupRepository creates a new GormLookupRepository
func NewGormLookupRepository(db *gorm.DB) *GormLookupRepository {
	return &GormLookupRepository{db: db}
}

// BrandIndex loads all brands into a case-insensitive name index
func (r *GormLookupRepository) BrandIndex(ctx context.Context) (catalog.NameIndex, error) {
	var rows []models.BrandModel
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return catalog.NameIndex{}, err
	}

	pairs := make(map[string]int64, len(rows))
	for _, row := range rows {
		pairs[row.Name] = row.ID
	}
	return catalog.NewNameIndex(pairs), nil
}

// CategoryIndex loads all categories into a case-insensitive name index
func (r *GormLookupRepository) CategoryIndex(ctx context.Context) (catalog.NameIndex, error) {
	var rows []models.CategoryModel
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return catalog.NameIndex{}, err
	}

	pairs := make(map[string]int64, len(rows))
	for _, row := range rows {
		pairs[row.Name] = row.ID
	}
	return catalog.NewNameIndex(pairs), nil
}

// Ensure GormLookupRepository implements catalog.LookupRepository
var _ catalog.LookupRepository = (*GormLookupRepository)(nil)
