package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/integration"
	"github.com/storefront/backend/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

// MockIntegrationRepository is a mock implementation of integration.Repository
type MockIntegrationRepository struct {
	mock.Mock
}

func (m *MockIntegrationRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Integration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Integration), args.Error(1)
}

func (m *MockIntegrationRepository) FindAllAutoSync(ctx context.Context) ([]integration.Integration, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.Integration), args.Error(1)
}

func (m *MockIntegrationRepository) RecordSyncResult(ctx context.Context, id uuid.UUID, status integration.SyncStatus, message string, at time.Time) error {
	args := m.Called(ctx, id, status, message, at)
	return args.Error(0)
}

// MockLookupRepository is a mock implementation of catalog.LookupRepository
type MockLookupRepository struct {
	mock.Mock
}

func (m *MockLookupRepository) BrandIndex(ctx context.Context) (catalog.NameIndex, error) {
	args := m.Called(ctx)
	return args.Get(0).(catalog.NameIndex), args.Error(1)
}

func (m *MockLookupRepository) CategoryIndex(ctx context.Context) (catalog.NameIndex, error) {
	args := m.Called(ctx)
	return args.Get(0).(catalog.NameIndex), args.Error(1)
}

// MockProvider is a mock implementation of integration.Provider
type MockProvider struct {
	mock.Mock
	kind integration.ProviderKind
}

func (m *MockProvider) Kind() integration.ProviderKind {
	return m.kind
}

func (m *MockProvider) FetchProducts(ctx context.Context, integ *integration.Integration, creds integration.Credentials) ([]integration.RawRecord, error) {
	args := m.Called(ctx, integ, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.RawRecord), args.Error(1)
}

// MockProviderRegistry is a mock implementation of integration.ProviderRegistry
type MockProviderRegistry struct {
	mock.Mock
}

func (m *MockProviderRegistry) GetProvider(kind integration.ProviderKind) (integration.Provider, error) {
	args := m.Called(kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(integration.Provider), args.Error(1)
}

func (m *MockProviderRegistry) ListProviders() []integration.Provider {
	args := m.Called()
	return args.Get(0).([]integration.Provider)
}

// MockDecryptor is a mock implementation of integration.CredentialDecryptor
type MockDecryptor struct {
	mock.Mock
}

func (m *MockDecryptor) Decrypt(ciphertext string) (string, error) {
	args := m.Called(ciphertext)
	return args.String(0), args.Error(1)
}

// MockSyncLock is a mock implementation of integration.SyncLock
type MockSyncLock struct {
	mock.Mock
}

func (m *MockSyncLock) Acquire(ctx context.Context, integrationID uuid.UUID, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, integrationID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockSyncLock) Release(ctx context.Context, integrationID uuid.UUID) error {
	args := m.Called(ctx, integrationID)
	return args.Error(0)
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

type serviceFixture struct {
	integrations *MockIntegrationRepository
	catalogRepo  *MockCatalogRepository
	lookups      *MockLookupRepository
	registry     *MockProviderRegistry
	decryptor    *MockDecryptor
	lock         *MockSyncLock
	service      *Service
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		integrations: new(MockIntegrationRepository),
		catalogRepo:  new(MockCatalogRepository),
		lookups:      new(MockLookupRepository),
		registry:     new(MockProviderRegistry),
		decryptor:    new(MockDecryptor),
		lock:         new(MockSyncLock),
	}
	f.service = NewService(
		f.integrations, f.catalogRepo, f.lookups, f.registry, f.decryptor, f.lock,
		zap.NewNop(),
		Config{
			IntegrationBatchSize:  5,
			IntegrationBatchPause: time.Millisecond,
			RecordBatchSize:       20,
			RecordBatchPause:      time.Millisecond,
		},
	)
	return f
}

func (f *serviceFixture) expectLookups() {
	f.lookups.On("BrandIndex", mock.Anything).Return(catalog.NewNameIndex(nil), nil)
	f.lookups.On("CategoryIndex", mock.Anything).Return(catalog.NewNameIndex(nil), nil)
}

func (f *serviceFixture) expectLockFree() {
	f.lock.On("Acquire", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	f.lock.On("Release", mock.Anything, mock.Anything).Return(nil)
}

func dueIntegration(t *testing.T) integration.Integration {
	t.Helper()
	integ, err := integration.NewIntegration(uuid.New(), "Tienda Principal", integration.ProviderKindREST, "https://api.example.com")
	require.NoError(t, err)
	return *integ
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestService_Run_SyncsDueIntegrations(t *testing.T) {
	f := newServiceFixture()
	integ := dueIntegration(t)

	f.integrations.On("FindAllAutoSync", mock.Anything).Return([]integration.Integration{integ}, nil)
	f.integrations.On("RecordSyncResult", mock.Anything, integ.ID, integration.SyncStatusSuccess, mock.Anything, mock.Anything).Return(nil)
	f.expectLookups()
	f.expectLockFree()

	provider := &MockProvider{kind: integration.ProviderKindREST}
	provider.On("FetchProducts", mock.Anything, mock.Anything, mock.Anything).
		Return([]integration.RawRecord{{"name": "Silla X", "sku": "SKU1", "price": "100.00", "stock": float64(5)}}, nil)
	f.registry.On("GetProvider", integration.ProviderKindREST).Return(provider, nil)

	f.catalogRepo.On("FindOptionBySKU", mock.Anything, "SKU1").Return(nil, shared.ErrNotFound)
	f.catalogRepo.On("CreateProductTree", mock.Anything, mock.Anything).Return(nil)

	summary, err := f.service.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)

	result := summary.Results[0]
	assert.Equal(t, integration.SyncStatusSuccess, result.Status)
	assert.Equal(t, "1 products processed: 1 created, 0 updated, 0 skipped, 0 errors", result.Message)
	require.NotNil(t, result.Stats)
	assert.Equal(t, 1, result.Stats.Created)
	f.integrations.AssertExpectations(t)
	f.lock.AssertExpectations(t)
}

func TestService_Run_FrequencyGateSkipsNotDue(t *testing.T) {
	f := newServiceFixture()
	integ := dueIntegration(t)
	lastSync := time.Now().Add(-time.Hour)
	integ.LastSyncAt = &lastSync // daily frequency, synced an hour ago

	f.integrations.On("FindAllAutoSync", mock.Anything).Return([]integration.Integration{integ}, nil)
	f.expectLookups()

	summary, err := f.service.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)

	assert.Equal(t, integration.SyncStatusSkipped, summary.Results[0].Status)
	assert.Contains(t, summary.Results[0].Message, "not due")
	f.lock.AssertNotCalled(t, "Acquire", mock.Anything, mock.Anything, mock.Anything)
	f.integrations.AssertNotCalled(t, "RecordSyncResult", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Run_ScopedRunIgnoresFrequency(t *testing.T) {
	f := newServiceFixture()
	integ := dueIntegration(t)
	lastSync := time.Now().Add(-time.Hour)
	integ.LastSyncAt = &lastSync

	f.integrations.On("FindByID", mock.Anything, integ.ID).Return(&integ, nil)
	f.integrations.On("RecordSyncResult", mock.Anything, integ.ID, integration.SyncStatusSuccess, mock.Anything, mock.Anything).Return(nil)
	f.expectLookups()
	f.expectLockFree()

	provider := &MockProvider{kind: integration.ProviderKindREST}
	provider.On("FetchProducts", mock.Anything, mock.Anything, mock.Anything).Return([]integration.RawRecord{}, nil)
	f.registry.On("GetProvider", integration.ProviderKindREST).Return(provider, nil)

	summary, err := f.service.Run(context.Background(), &integ.ID)
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, integration.SyncStatusSuccess, summary.Results[0].Status)
	provider.AssertExpectations(t)
}

func TestService_Run_ScopedRunRespectsAutoSyncDisabled(t *testing.T) {
	f := newServiceFixture()
	integ := dueIntegration(t)
	integ.AutoSync = false

	f.integrations.On("FindByID", mock.Anything, integ.ID).Return(&integ, nil)
	f.expectLookups()

	summary, err := f.service.Run(context.Background(), &integ.ID)
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)

	assert.Equal(t, integration.SyncStatusSkipped, summary.Results[0].Status)
	assert.Equal(t, "auto sync disabled", summary.Results[0].Message)
	f.registry.AssertNotCalled(t, "GetProvider", mock.Anything)
	f.lock.AssertNotCalled(t, "Acquire", mock.Anything, mock.Anything, mock.Anything)
	f.integrations.AssertNotCalled(t, "RecordSyncResult", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Run_IntegrationListFailureIsFatal(t *testing.T) {
	f := newServiceFixture()
	f.integrations.On("FindAllAutoSync", mock.Anything).Return(nil, errors.New("db down"))

	summary, err := f.service.Run(context.Background(), nil)
	assert.Error(t, err)
	assert.Nil(t, summary)
}

func TestService_Run_FetchFailureIsItemized(t *testing.T) {
	f := newServiceFixture()
	integ := dueIntegration(t)

	f.integrations.On("FindAllAutoSync", mock.Anything).Return([]integration.Integration{integ}, nil)
	f.integrations.On("RecordSyncResult", mock.Anything, integ.ID, integration.SyncStatusError, mock.Anything, mock.Anything).Return(nil)
	f.expectLookups()
	f.expectLockFree()

	provider := &MockProvider{kind: integration.ProviderKindREST}
	provider.On("FetchProducts", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, integration.ErrProviderRequestFailed)
	f.registry.On("GetProvider", integration.ProviderKindREST).Return(provider, nil)

	summary, err := f.service.Run(context.Background(), nil)
	require.NoError(t, err, "adapter failures never fail the whole run")
	require.Len(t, summary.Results, 1)
	assert.Equal(t, integration.SyncStatusError, summary.Results[0].Status)
	assert.Contains(t, summary.Results[0].Message, "fetch failed")
	f.integrations.AssertExpectations(t)
}

func TestService_Run_HeldLockSkips(t *testing.T) {
	f := newServiceFixture()
	integ := dueIntegration(t)

	f.integrations.On("FindAllAutoSync", mock.Anything).Return([]integration.Integration{integ}, nil)
	f.expectLookups()
	f.lock.On("Acquire", mock.Anything, integ.ID, mock.Anything).Return(false, nil)

	summary, err := f.service.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, integration.SyncStatusSkipped, summary.Results[0].Status)
	f.registry.AssertNotCalled(t, "GetProvider", mock.Anything)
	f.lock.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}

func TestService_Run_LookupFailureFailsEveryIntegration(t *testing.T) {
	f := newServiceFixture()
	first := dueIntegration(t)
	second := dueIntegration(t)

	f.integrations.On("FindAllAutoSync", mock.Anything).Return([]integration.Integration{first, second}, nil)
	f.integrations.On("RecordSyncResult", mock.Anything, mock.Anything, integration.SyncStatusError, mock.Anything, mock.Anything).Return(nil).Twice()
	f.lookups.On("BrandIndex", mock.Anything).Return(catalog.NameIndex{}, errors.New("db down"))

	summary, err := f.service.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)
	for _, result := range summary.Results {
		assert.Equal(t, integration.SyncStatusError, result.Status)
	}
	f.integrations.AssertExpectations(t)
}

func TestService_Run_LookupFailureLeavesNotDueUntouched(t *testing.T) {
	f := newServiceFixture()
	due := dueIntegration(t)
	notDue := dueIntegration(t)
	lastSync := time.Now().Add(-time.Hour)
	notDue.LastSyncAt = &lastSync // daily frequency, synced an hour ago

	f.integrations.On("FindAllAutoSync", mock.Anything).Return([]integration.Integration{due, notDue}, nil)
	f.integrations.On("RecordSyncResult", mock.Anything, due.ID, integration.SyncStatusError, mock.Anything, mock.Anything).Return(nil).Once()
	f.lookups.On("BrandIndex", mock.Anything).Return(catalog.NameIndex{}, errors.New("db down"))

	summary, err := f.service.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)

	assert.Equal(t, integration.SyncStatusError, summary.Results[0].Status)
	assert.Equal(t, integration.SyncStatusSkipped, summary.Results[1].Status)
	f.integrations.AssertExpectations(t)
	f.integrations.AssertNotCalled(t, "RecordSyncResult", mock.Anything, notDue.ID, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Run_UnknownProviderKind(t *testing.T) {
	f := newServiceFixture()
	integ := dueIntegration(t)

	f.integrations.On("FindAllAutoSync", mock.Anything).Return([]integration.Integration{integ}, nil)
	f.integrations.On("RecordSyncResult", mock.Anything, integ.ID, integration.SyncStatusError, mock.Anything, mock.Anything).Return(nil)
	f.expectLookups()
	f.expectLockFree()
	f.registry.On("GetProvider", integration.ProviderKindREST).Return(nil, integration.ErrProviderNotRegistered)

	summary, err := f.service.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, integration.SyncStatusError, summary.Results[0].Status)
}

func TestService_Run_DecryptsCredentials(t *testing.T) {
	f := newServiceFixture()
	integ := dueIntegration(t)
	integ.APIKeyEncrypted = "enc-key"
	integ.APISecretEncrypted = "enc-secret"

	f.integrations.On("FindAllAutoSync", mock.Anything).Return([]integration.Integration{integ}, nil)
	f.integrations.On("RecordSyncResult", mock.Anything, integ.ID, integration.SyncStatusSuccess, mock.Anything, mock.Anything).Return(nil)
	f.expectLookups()
	f.expectLockFree()
	f.decryptor.On("Decrypt", "enc-key").Return("clear-key", nil)
	f.decryptor.On("Decrypt", "enc-secret").Return("clear-secret", nil)

	provider := &MockProvider{kind: integration.ProviderKindREST}
	provider.On("FetchProducts", mock.Anything, mock.Anything,
		integration.Credentials{APIKey: "clear-key", APISecret: "clear-secret"}).
		Return([]integration.RawRecord{}, nil)
	f.registry.On("GetProvider", integration.ProviderKindREST).Return(provider, nil)

	summary, err := f.service.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, integration.SyncStatusSuccess, summary.Results[0].Status)
	provider.AssertExpectations(t)
	f.decryptor.AssertExpectations(t)
}

func TestService_Run_DecryptFailureRecordsError(t *testing.T) {
	f := newServiceFixture()
	integ := dueIntegration(t)
	integ.APIKeyEncrypted = "enc-key"

	f.integrations.On("FindAllAutoSync", mock.Anything).Return([]integration.Integration{integ}, nil)
	f.integrations.On("RecordSyncResult", mock.Anything, integ.ID, integration.SyncStatusError, mock.Anything, mock.Anything).Return(nil)
	f.expectLookups()
	f.expectLockFree()
	f.decryptor.On("Decrypt", "enc-key").Return("", errors.New("bad ciphertext"))

	summary, err := f.service.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, integration.SyncStatusError, summary.Results[0].Status)
	assert.Contains(t, summary.Results[0].Message, "credential decryption failed")
	f.registry.AssertNotCalled(t, "GetProvider", mock.Anything)
}
