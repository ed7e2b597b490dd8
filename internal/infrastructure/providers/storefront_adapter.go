package providers

import (
	"context"
	"net/http"
	"time"

	"github.com/storefront/backend/internal/domain/integration"
)

// storefrontAPIVersion pins the admin API version the adapter speaks
const storefrontAPIVersion = "2023-10"

// StorefrontAdapter implements the Provider interface for hosted storefront
// shops. The listing lives under the versioned admin API and is wrapped in a
// "products" envelope; auth is the shop access token header.
type StorefrontAdapter struct {
	httpClient *http.Client
}

// NewStorefrontAdapter creates a storefront adapter
func NewStorefrontAdapter(timeout time.Duration) *StorefrontAdapter {
	return &StorefrontAdapter{httpClient: newHTTPClient(timeout)}
}

// Kind returns the provider kind this adapter handles
func (a *StorefrontAdapter) Kind() integration.ProviderKind {
	return integration.ProviderKindStorefront
}

// FetchProducts retrieves the full product listing
func (a *StorefrontAdapter) FetchProducts(ctx context.Context, integ *integration.Integration, creds integration.Credentials) ([]integration.RawRecord, error) {
	req, err := newGetRequest(ctx, integ.BaseURL+"/admin/api/"+storefrontAPIVersion+"/products.json")
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Shopify-Access-Token", creds.APISecret)

	var envelope struct {
		Products []integration.RawRecord `json:"products"`
	}
	if err := doJSON(a.httpClient, req, &envelope); err != nil {
		return nil, err
	}
	return envelope.Products, nil
}

// Ensure StorefrontAdapter implements Provider interface
var _ integration.Provider = (*StorefrontAdapter)(nil)
