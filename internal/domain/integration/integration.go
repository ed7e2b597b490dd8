package integration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// ProviderKind
// ---------------------------------------------------------------------------

// ProviderKind identifies the wire format and auth convention of a catalog provider
type ProviderKind string

const (
	// ProviderKindREST is a generic REST catalog with bearer-token auth
	ProviderKindREST ProviderKind = "rest"
	// ProviderKindStorefront is a hosted storefront API (Shopify-style
	// products.json envelope with an access-token header)
	ProviderKindStorefront ProviderKind = "storefront"
	// ProviderKindWooCommerce is a WooCommerce-style REST API using basic
	// auth built from the consumer key/secret pair
	ProviderKindWooCommerce ProviderKind = "woocommerce"
	// ProviderKindMagento is a Magento-style REST API requiring a two-step
	// admin token exchange before the catalog listing call
	ProviderKindMagento ProviderKind = "magento"
	// ProviderKindCustom is a user-configured provider whose field layout is
	// described by a MappingConfig
	ProviderKindCustom ProviderKind = "custom"
)

// IsValid returns true if the provider kind is known
func (k ProviderKind) IsValid() bool {
	switch k {
	case ProviderKindREST, ProviderKindStorefront, ProviderKindWooCommerce,
		ProviderKindMagento, ProviderKindCustom:
		return true
	default:
		return false
	}
}

// String returns the string representation of ProviderKind
func (k ProviderKind) String() string {
	return string(k)
}

// ---------------------------------------------------------------------------
// SyncFrequency
// ---------------------------------------------------------------------------

// SyncFrequency is the merchant-selected cadence for automatic syncs
type SyncFrequency string

const (
	SyncFrequencyHourly SyncFrequency = "hourly"
	SyncFrequencyDaily  SyncFrequency = "daily"
	SyncFrequencyWeekly SyncFrequency = "weekly"
)

// Threshold returns the minimum elapsed time before another sync is due.
// Unrecognized frequencies fall back to the daily threshold.
func (f SyncFrequency) Threshold() time.Duration {
	switch f {
	case SyncFrequencyHourly:
		return time.Hour
	case SyncFrequencyWeekly:
		return 168 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// ---------------------------------------------------------------------------
// SyncStatus
// ---------------------------------------------------------------------------

// SyncStatus is the outcome of an integration's sync run
type SyncStatus string

const (
	// SyncStatusPending marks an integration that has never completed a run
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusError   SyncStatus = "error"
	// SyncStatusSkipped marks a run that did not execute (not due, or the
	// integration was already being synced elsewhere)
	SyncStatusSkipped SyncStatus = "skipped"
)

// ---------------------------------------------------------------------------
// Integration Entity
// ---------------------------------------------------------------------------

// Integration is one configured connection between a branch and an external
// catalog provider. It is mutated only by the sync orchestrator (run status)
// and by the merchant-facing settings surface, and is never deleted here.
type Integration struct {
	shared.BaseEntity
	BranchID uuid.UUID
	Name     string
	Kind     ProviderKind
	BaseURL  string

	// APIKeyEncrypted and APISecretEncrypted hold the AES-GCM ciphertext of
	// the provider credential pair; decryption happens just before a run.
	APIKeyEncrypted    string
	APISecretEncrypted string

	// MappingConfig is only meaningful for ProviderKindCustom
	MappingConfig *MappingConfig

	Frequency SyncFrequency
	AutoSync  bool

	LastSyncAt      *time.Time
	LastSyncStatus  SyncStatus
	LastSyncMessage string
}

// NewIntegration creates a new integration connection
func NewIntegration(branchID uuid.UUID, name string, kind ProviderKind, baseURL string) (*Integration, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidName
	}
	if !kind.IsValid() {
		return nil, ErrInvalidProviderKind
	}
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrInvalidBaseURL
	}

	return &Integration{
		BaseEntity:     shared.NewBaseEntity(),
		BranchID:       branchID,
		Name:           name,
		Kind:           kind,
		BaseURL:        strings.TrimRight(baseURL, "/"),
		Frequency:      SyncFrequencyDaily,
		AutoSync:       true,
		LastSyncStatus: SyncStatusPending,
	}, nil
}

// ShouldSync reports whether the integration is due for a sync at the given
// instant. A never-synced integration is always due.
func (i *Integration) ShouldSync(now time.Time) bool {
	if i.LastSyncAt == nil {
		return true
	}
	return now.Sub(*i.LastSyncAt) >= i.Frequency.Threshold()
}

// RecordRun writes the outcome of a sync attempt onto the integration.
// It is called unconditionally after every attempt, including crashes, so a
// failing adapter never leaves the integration silently stuck.
func (i *Integration) RecordRun(status SyncStatus, message string, at time.Time) {
	i.LastSyncAt = &at
	i.LastSyncStatus = status
	i.LastSyncMessage = message
	i.UpdatedAt = at
}

// ---------------------------------------------------------------------------
// Repository
// ---------------------------------------------------------------------------

// Repository is the persistence port for integrations
type Repository interface {
	// FindByID loads one integration; shared.ErrNotFound when missing
	FindByID(ctx context.Context, id uuid.UUID) (*Integration, error)

	// FindAllAutoSync loads every integration flagged for automatic sync
	FindAllAutoSync(ctx context.Context) ([]Integration, error)

	// RecordSyncResult persists last_sync_at/status/message for one integration
	RecordSyncResult(ctx context.Context, id uuid.UUID, status SyncStatus, message string, at time.Time) error
}

// ---------------------------------------------------------------------------
// SyncStats
// ---------------------------------------------------------------------------

// SyncStats counts per-record outcomes of one integration run. Every record
// increments exactly one of created/updated/skipped/errors.
type SyncStats struct {
	Total   int `json:"total"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// Summary renders the human-readable run message stored on the integration
func (s SyncStats) Summary() string {
	return fmt.Sprintf("%d products processed: %d created, %d updated, %d skipped, %d errors",
		s.Total, s.Created, s.Updated, s.Skipped, s.Errors)
}
