package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/storefront/backend/internal/domain/integration"
)

// recordEnvelopeKeys are probed in order when a custom endpoint wraps its
// listing in an object instead of returning a bare array.
var recordEnvelopeKeys = []string{"products", "items", "data", "results", "records"}

// CustomAdapter implements the Provider interface for user-configured
// endpoints. The payload shape is unknown ahead of time: the response may be
// a bare JSON array or an object wrapping the array under a conventional key.
// Field extraction is the mapper's job, driven by the integration's
// MappingConfig; the adapter only locates the record list.
type CustomAdapter struct {
	httpClient *http.Client
}

// NewCustomAdapter creates a custom-endpoint adapter
func NewCustomAdapter(timeout time.Duration) *CustomAdapter {
	return &CustomAdapter{httpClient: newHTTPClient(timeout)}
}

// Kind returns the provider kind this adapter handles
func (a *CustomAdapter) Kind() integration.ProviderKind {
	return integration.ProviderKindCustom
}

// FetchProducts retrieves the full product listing
func (a *CustomAdapter) FetchProducts(ctx context.Context, integ *integration.Integration, creds integration.Credentials) ([]integration.RawRecord, error) {
	req, err := newGetRequest(ctx, integ.BaseURL)
	if err != nil {
		return nil, err
	}
	token := creds.APIKey
	if integ.MappingConfig != nil && integ.MappingConfig.BearerToken != "" {
		token = integ.MappingConfig.BearerToken
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	var payload json.RawMessage
	if err := doJSON(a.httpClient, req, &payload); err != nil {
		return nil, err
	}
	return extractRecords(payload, integ.MappingConfig)
}

// extractRecords locates the record array inside an arbitrary JSON payload.
// A configured records key wins; otherwise a bare array is accepted as-is and
// objects are probed for the conventional envelope keys.
func extractRecords(payload json.RawMessage, cfg *integration.MappingConfig) ([]integration.RawRecord, error) {
	var records []integration.RawRecord
	if err := json.Unmarshal(payload, &records); err == nil {
		return records, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("%w: payload is neither an array nor an object", integration.ErrProviderInvalidResponse)
	}

	keys := recordEnvelopeKeys
	if cfg != nil && cfg.RecordsKey != "" {
		keys = []string{cfg.RecordsKey}
	}
	for _, key := range keys {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("%w: %q is not an array of objects", integration.ErrProviderInvalidResponse, key)
		}
		return records, nil
	}
	return nil, fmt.Errorf("%w: no record array found in payload", integration.ErrProviderInvalidResponse)
}

// Ensure CustomAdapter implements Provider interface
var _ integration.Provider = (*CustomAdapter)(nil)
