package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/integration"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
)

// GormIntegrationRepository implements integration.Repository using GORM
type GormIntegrationRepository struct {
	db *gorm.DB
}

// NewGormIntegrationRepository creates a new GormIntegrationRepository
func NewGormIntegrationRepository(db *gorm.DB) *GormIntegrationRepository {
	return &GormIntegrationRepository{db: db}
}

// FindByID finds an integration by its ID
func (r *GormIntegrationRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Integration, error) {
	var model models.IntegrationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllAutoSync finds every integration flagged for automatic sync,
// ordered by name so batch composition is stable across runs.
func (r *GormIntegrationRepository) FindAllAutoSync(ctx context.Context) ([]integration.Integration, error) {
	var rows []models.IntegrationModel
	if err := r.db.WithContext(ctx).
		Where("auto_sync = ?", true).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	integrations := make([]integration.Integration, 0, len(rows))
	for i := range rows {
		integrations = append(integrations, *rows[i].ToDomain())
	}
	return integrations, nil
}

// Save persists a new or updated integration
func (r *GormIntegrationRepository) Save(ctx context.Context, integ *integration.Integration) error {
	model := models.IntegrationModelFromDomain(integ)
	return r.db.WithContext(ctx).Save(model).Error
}

// RecordSyncResult persists last_sync_at/status/message for one integration
func (r *GormIntegrationRepository) RecordSyncResult(ctx context.Context, id uuid.UUID, status integration.SyncStatus, message string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.IntegrationModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_sync_at":      at,
			"last_sync_status":  status,
			"last_sync_message": message,
			"updated_at":        at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormIntegrationRepository implements integration.Repository
var _ integration.Repository = (*GormIntegrationRepository)(nil)
