package providers

import (
	"context"
	"net/http"
	"time"

	"github.com/storefront/backend/internal/domain/integration"
)

// RESTAdapter implements the Provider interface for generic REST catalogs:
// a single GET on /products authenticated with a bearer token, returning a
// plain JSON array of product objects.
type RESTAdapter struct {
	httpClient *http.Client
}

// NewRESTAdapter creates a generic REST adapter
func NewRESTAdapter(timeout time.Duration) *RESTAdapter {
	return &RESTAdapter{httpClient: newHTTPClient(timeout)}
}

// Kind returns the provider kind this adapter handles
func (a *RESTAdapter) Kind() integration.ProviderKind {
	return integration.ProviderKindREST
}

// FetchProducts retrieves the full product listing
func (a *RESTAdapter) FetchProducts(ctx context.Context, integ *integration.Integration, creds integration.Credentials) ([]integration.RawRecord, error) {
	req, err := newGetRequest(ctx, integ.BaseURL+"/products")
	if err != nil {
		return nil, err
	}
	if creds.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+creds.APIKey)
	}

	var records []integration.RawRecord
	if err := doJSON(a.httpClient, req, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Ensure RESTAdapter implements Provider interface
var _ integration.Provider = (*RESTAdapter)(nil)
