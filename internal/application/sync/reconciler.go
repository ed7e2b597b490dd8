package sync

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/integration"
	"github.com/storefront/backend/internal/domain/shared"
)

// Reconciler converges the local catalog towards one integration's mapped
// records. Records are keyed by SKU: an unknown SKU inserts a draft product
// tree, a known SKU applies a bounded update to the matched product and
// option. A record failure never aborts the run; it is counted and logged.
type Reconciler struct {
	catalogRepo catalog.Repository
	logger      *zap.Logger

	batchSize  int
	batchPause time.Duration
	now        func() time.Time
}

// NewReconciler creates a reconciler writing through the given catalog store
func NewReconciler(catalogRepo catalog.Repository, logger *zap.Logger, batchSize int, batchPause time.Duration) *Reconciler {
	if batchSize <= 0 {
		batchSize = 20
	}
	return &Reconciler{
		catalogRepo: catalogRepo,
		logger:      logger,
		batchSize:   batchSize,
		batchPause:  batchPause,
		now:         time.Now,
	}
}

// Reconcile maps and applies every record of one fetched listing. Records are
// processed in bounded batches with a pause in between so a large catalog
// does not monopolize the database.
func (r *Reconciler) Reconcile(
	ctx context.Context,
	integ *integration.Integration,
	records []integration.RawRecord,
	lookups integration.Lookups,
) integration.SyncStats {
	var stats integration.SyncStats

	for start := 0; start < len(records); start += r.batchSize {
		end := start + r.batchSize
		if end > len(records) {
			end = len(records)
		}

		for _, raw := range records[start:end] {
			stats.Total++
			r.applyRecord(ctx, integ, raw, lookups, &stats)
		}

		if end < len(records) && r.batchPause > 0 {
			select {
			case <-ctx.Done():
				return stats
			case <-time.After(r.batchPause):
			}
		}
	}
	return stats
}

// applyRecord normalizes and persists a single provider record, incrementing
// exactly one stats counter.
func (r *Reconciler) applyRecord(
	ctx context.Context,
	integ *integration.Integration,
	raw integration.RawRecord,
	lookups integration.Lookups,
	stats *integration.SyncStats,
) {
	mapped := integration.Normalize(integ.Kind, raw, lookups, integ.MappingConfig, integ.Name, r.now())
	if !mapped.HasSKU() {
		stats.Skipped++
		return
	}

	match, err := r.catalogRepo.FindOptionBySKU(ctx, mapped.Option.SKU)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		r.createProduct(ctx, integ, mapped, stats)
	case err != nil:
		stats.Errors++
		r.logger.Error("sku lookup failed",
			zap.String("integration", integ.Name),
			zap.String("sku", mapped.Option.SKU),
			zap.Error(err))
	default:
		r.updateProduct(ctx, integ, mapped, match, stats)
	}
}

func (r *Reconciler) createProduct(ctx context.Context, integ *integration.Integration, mapped *integration.MappedProduct, stats *integration.SyncStats) {
	product, err := mapped.ToDraftProduct()
	if err != nil {
		stats.Errors++
		r.logger.Warn("record rejected",
			zap.String("integration", integ.Name),
			zap.String("sku", mapped.Option.SKU),
			zap.Error(err))
		return
	}
	if err := r.catalogRepo.CreateProductTree(ctx, product); err != nil {
		stats.Errors++
		r.logger.Error("product create failed",
			zap.String("integration", integ.Name),
			zap.String("sku", mapped.Option.SKU),
			zap.Error(err))
		return
	}
	stats.Created++
}

func (r *Reconciler) updateProduct(ctx context.Context, integ *integration.Integration, mapped *integration.MappedProduct, match *catalog.SKUMatch, stats *integration.SyncStats) {
	if err := r.catalogRepo.UpdateProduct(ctx, match.ProductID, mapped.ProductPatch()); err != nil {
		stats.Errors++
		r.logger.Error("product update failed",
			zap.String("integration", integ.Name),
			zap.String("sku", mapped.Option.SKU),
			zap.Error(err))
		return
	}
	if err := r.catalogRepo.UpdateOption(ctx, match.Option.ID, mapped.OptionPatch()); err != nil {
		stats.Errors++
		r.logger.Error("option update failed",
			zap.String("integration", integ.Name),
			zap.String("sku", mapped.Option.SKU),
			zap.Error(err))
		return
	}
	stats.Updated++
}
