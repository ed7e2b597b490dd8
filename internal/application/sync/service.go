package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/integration"
)

// Config bounds the orchestrator's batching and locking behavior
type Config struct {
	// IntegrationBatchSize is how many integrations sync concurrently
	IntegrationBatchSize int
	// IntegrationBatchPause is the delay between integration batches
	IntegrationBatchPause time.Duration
	// RecordBatchSize is how many records the reconciler applies before pausing
	RecordBatchSize int
	// RecordBatchPause is the delay between record batches
	RecordBatchPause time.Duration
	// LockTTL caps how long a crashed run can keep an integration locked
	LockTTL time.Duration
}

func (c *Config) applyDefaults() {
	if c.IntegrationBatchSize <= 0 {
		c.IntegrationBatchSize = 5
	}
	if c.IntegrationBatchPause <= 0 {
		c.IntegrationBatchPause = time.Second
	}
	if c.RecordBatchSize <= 0 {
		c.RecordBatchSize = 20
	}
	if c.RecordBatchPause <= 0 {
		c.RecordBatchPause = 100 * time.Millisecond
	}
	if c.LockTTL <= 0 {
		c.LockTTL = 15 * time.Minute
	}
}

// Service orchestrates catalog sync runs across all configured integrations.
// One run loads the integration and lookup state once, then works through the
// integrations in bounded concurrent batches. Every attempt ends with its
// outcome persisted on the integration, whatever happened in between.
type Service struct {
	integrationRepo integration.Repository
	lookupRepo      catalog.LookupRepository
	providers       integration.ProviderRegistry
	decryptor       integration.CredentialDecryptor
	lock            integration.SyncLock
	reconciler      *Reconciler
	logger          *zap.Logger

	config Config
	now    func() time.Time
}

// NewService creates the sync orchestrator
func NewService(
	integrationRepo integration.Repository,
	catalogRepo catalog.Repository,
	lookupRepo catalog.LookupRepository,
	providers integration.ProviderRegistry,
	decryptor integration.CredentialDecryptor,
	lock integration.SyncLock,
	logger *zap.Logger,
	config Config,
) *Service {
	config.applyDefaults()
	return &Service{
		integrationRepo: integrationRepo,
		lookupRepo:      lookupRepo,
		providers:       providers,
		decryptor:       decryptor,
		lock:            lock,
		reconciler:      NewReconciler(catalogRepo, logger, config.RecordBatchSize, config.RecordBatchPause),
		logger:          logger,
		config:          config,
		now:             time.Now,
	}
}

// Run executes one sync pass. With a nil scope it covers every auto-sync
// integration, gated by each one's frequency; with a scope it syncs that
// single integration regardless of frequency, though an integration with
// auto-sync disabled never runs. The returned error is reserved for the
// case where the integration list itself cannot be loaded; everything that
// goes wrong after that is itemized in the summary instead.
func (s *Service) Run(ctx context.Context, scope *uuid.UUID) (*RunSummary, error) {
	integrations, err := s.loadIntegrations(ctx, scope)
	if err != nil {
		return nil, err
	}

	summary := &RunSummary{StartedAt: s.now(), Results: make([]IntegrationResult, 0, len(integrations))}
	forced := scope != nil

	lookups, err := s.loadLookups(ctx)
	if err != nil {
		// The run can still record an outcome per integration; without the
		// lookup snapshots no record could be mapped, so fail every
		// integration that would have run. Gated-out ones stay untouched.
		s.logger.Error("lookup snapshot load failed", zap.Error(err))
		for i := range integrations {
			integ := &integrations[i]
			if message, run := s.gate(integ, forced); !run {
				summary.Results = append(summary.Results, skippedResult(integ, message))
				continue
			}
			summary.Results = append(summary.Results, s.failWithoutRunning(ctx, integ, err))
		}
		summary.FinishedAt = s.now()
		return summary, nil
	}
	for start := 0; start < len(integrations); start += s.config.IntegrationBatchSize {
		end := start + s.config.IntegrationBatchSize
		if end > len(integrations) {
			end = len(integrations)
		}

		batch := integrations[start:end]
		results := make([]IntegrationResult, len(batch))
		var wg sync.WaitGroup
		for i := range batch {
			wg.Add(1)
			go func(slot int, integ *integration.Integration) {
				defer wg.Done()
				results[slot] = s.syncOne(ctx, integ, lookups, forced)
			}(i, &batch[i])
		}
		wg.Wait()
		summary.Results = append(summary.Results, results...)

		if end < len(integrations) {
			select {
			case <-ctx.Done():
				summary.FinishedAt = s.now()
				return summary, nil
			case <-time.After(s.config.IntegrationBatchPause):
			}
		}
	}

	summary.FinishedAt = s.now()
	success, failed, skipped := summary.Counts()
	s.logger.Info("sync run finished",
		zap.Int("integrations", len(integrations)),
		zap.Int("success", success),
		zap.Int("failed", failed),
		zap.Int("skipped", skipped),
		zap.Duration("elapsed", summary.FinishedAt.Sub(summary.StartedAt)))
	return summary, nil
}

func (s *Service) loadIntegrations(ctx context.Context, scope *uuid.UUID) ([]integration.Integration, error) {
	if scope == nil {
		return s.integrationRepo.FindAllAutoSync(ctx)
	}
	integ, err := s.integrationRepo.FindByID(ctx, *scope)
	if err != nil {
		return nil, err
	}
	return []integration.Integration{*integ}, nil
}

func (s *Service) loadLookups(ctx context.Context) (integration.Lookups, error) {
	brands, err := s.lookupRepo.BrandIndex(ctx)
	if err != nil {
		return integration.Lookups{}, fmt.Errorf("load brand index: %w", err)
	}
	categories, err := s.lookupRepo.CategoryIndex(ctx)
	if err != nil {
		return integration.Lookups{}, fmt.Errorf("load category index: %w", err)
	}
	return integration.Lookups{Brands: brands, Categories: categories}, nil
}

// syncOne runs the full pipeline for a single integration: frequency gate,
// run lock, credential decryption, fetch, reconcile. The outcome is persisted
// before returning, on every path.
func (s *Service) syncOne(ctx context.Context, integ *integration.Integration, lookups integration.Lookups, forced bool) IntegrationResult {
	if message, run := s.gate(integ, forced); !run {
		// No run happened, so the stored status stays untouched
		return skippedResult(integ, message)
	}

	acquired, err := s.lock.Acquire(ctx, integ.ID, s.config.LockTTL)
	if err != nil {
		return s.failWithoutRunning(ctx, integ, fmt.Errorf("acquire sync lock: %w", err))
	}
	if !acquired {
		return IntegrationResult{
			IntegrationID: integ.ID.String(),
			Name:          integ.Name,
			Status:        integration.SyncStatusSkipped,
			Message:       integration.ErrSyncAlreadyRunning.Error(),
		}
	}
	defer func() {
		if err := s.lock.Release(ctx, integ.ID); err != nil {
			s.logger.Warn("sync lock release failed",
				zap.String("integration", integ.Name), zap.Error(err))
		}
	}()

	status, message, stats := s.execute(ctx, integ, lookups)
	s.persistOutcome(ctx, integ, status, message)

	result := IntegrationResult{
		IntegrationID: integ.ID.String(),
		Name:          integ.Name,
		Status:        status,
		Message:       message,
	}
	if stats != nil {
		result.Stats = stats
	}
	return result
}

// execute performs the fetch and reconcile steps, translating failures into a
// terminal status and message.
func (s *Service) execute(ctx context.Context, integ *integration.Integration, lookups integration.Lookups) (integration.SyncStatus, string, *integration.SyncStats) {
	creds, err := s.decryptCredentials(integ)
	if err != nil {
		s.logger.Error("credential decryption failed",
			zap.String("integration", integ.Name), zap.Error(err))
		return integration.SyncStatusError, fmt.Sprintf("credential decryption failed: %v", err), nil
	}

	provider, err := s.providers.GetProvider(integ.Kind)
	if err != nil {
		s.logger.Error("no adapter for provider kind",
			zap.String("integration", integ.Name),
			zap.String("kind", integ.Kind.String()))
		return integration.SyncStatusError, err.Error(), nil
	}

	records, err := provider.FetchProducts(ctx, integ, creds)
	if err != nil {
		s.logger.Error("product fetch failed",
			zap.String("integration", integ.Name),
			zap.String("kind", integ.Kind.String()),
			zap.Error(err))
		return integration.SyncStatusError, fmt.Sprintf("fetch failed: %v", err), nil
	}

	stats := s.reconciler.Reconcile(ctx, integ, records, lookups)
	return integration.SyncStatusSuccess, stats.Summary(), &stats
}

func (s *Service) decryptCredentials(integ *integration.Integration) (integration.Credentials, error) {
	var creds integration.Credentials
	var err error
	if integ.APIKeyEncrypted != "" {
		if creds.APIKey, err = s.decryptor.Decrypt(integ.APIKeyEncrypted); err != nil {
			return integration.Credentials{}, errors.Join(integration.ErrProviderAuthFailed, err)
		}
	}
	if integ.APISecretEncrypted != "" {
		if creds.APISecret, err = s.decryptor.Decrypt(integ.APISecretEncrypted); err != nil {
			return integration.Credentials{}, errors.Join(integration.ErrProviderAuthFailed, err)
		}
	}
	return creds, nil
}

// gate decides whether an integration runs at all. Disabled auto-sync blocks
// every trigger, including scoped ones; the frequency gate yields to a scoped
// trigger. When the integration does not run the skip message is returned.
func (s *Service) gate(integ *integration.Integration, forced bool) (string, bool) {
	if !integ.AutoSync {
		return "auto sync disabled", false
	}
	if !forced && !integ.ShouldSync(s.now()) {
		return fmt.Sprintf("not due: last sync %s, frequency %s", integ.LastSyncAt.Format(time.RFC3339), integ.Frequency), false
	}
	return "", true
}

func skippedResult(integ *integration.Integration, message string) IntegrationResult {
	return IntegrationResult{
		IntegrationID: integ.ID.String(),
		Name:          integ.Name,
		Status:        integration.SyncStatusSkipped,
		Message:       message,
	}
}

// failWithoutRunning records an error outcome for an integration whose run
// could not even start.
func (s *Service) failWithoutRunning(ctx context.Context, integ *integration.Integration, cause error) IntegrationResult {
	message := cause.Error()
	s.persistOutcome(ctx, integ, integration.SyncStatusError, message)
	return IntegrationResult{
		IntegrationID: integ.ID.String(),
		Name:          integ.Name,
		Status:        integration.SyncStatusError,
		Message:       message,
	}
}

func (s *Service) persistOutcome(ctx context.Context, integ *integration.Integration, status integration.SyncStatus, message string) {
	at := s.now()
	integ.RecordRun(status, message, at)
	if err := s.integrationRepo.RecordSyncResult(ctx, integ.ID, status, message, at); err != nil {
		s.logger.Error("sync outcome not persisted",
			zap.String("integration", integ.Name),
			zap.String("status", string(status)),
			zap.Error(err))
	}
}

// ListIntegrations returns all auto-sync integrations with their last run state
func (s *Service) ListIntegrations(ctx context.Context) ([]integration.Integration, error) {
	return s.integrationRepo.FindAllAutoSync(ctx)
}
