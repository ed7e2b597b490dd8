package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Provider Port Interface
// ---------------------------------------------------------------------------

// Credentials are the decrypted API credentials handed to a provider for the
// duration of one fetch. They are never persisted in clear text.
type Credentials struct {
	APIKey    string
	APISecret string
}

// Provider defines the port interface for external product catalogs.
// It is defined in the domain layer; concrete implementations (generic REST,
// storefront, WooCommerce, Magento, custom) live in the infrastructure layer.
type Provider interface {
	// Kind returns the provider kind this adapter handles
	Kind() ProviderKind

	// FetchProducts retrieves the full product listing from the remote
	// catalog. A non-2xx response or transport failure is a hard error for
	// the whole integration; partial pages are never returned.
	FetchProducts(ctx context.Context, integ *Integration, creds Credentials) ([]RawRecord, error)
}

// ProviderRegistry selects the adapter for an integration's provider kind
type ProviderRegistry interface {
	// GetProvider returns the adapter for the specified kind, or
	// ErrProviderNotRegistered when no adapter handles it.
	GetProvider(kind ProviderKind) (Provider, error)

	// ListProviders returns all registered adapters
	ListProviders() []Provider
}

// ---------------------------------------------------------------------------
// Supporting Ports
// ---------------------------------------------------------------------------

// CredentialDecryptor recovers clear-text API credentials from their stored
// encrypted form.
type CredentialDecryptor interface {
	Decrypt(ciphertext string) (string, error)
}

// SyncLock guards against overlapping runs for the same integration.
// Acquire returns false when another run currently holds the lock.
type SyncLock interface {
	Acquire(ctx context.Context, integrationID uuid.UUID, ttl time.Duration) (bool, error)
	Release(ctx context.Context, integrationID uuid.UUID) error
}
