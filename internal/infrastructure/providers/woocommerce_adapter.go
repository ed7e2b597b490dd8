package providers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/storefront/backend/internal/domain/integration"
)

// wooPageSize is the per_page value requested from the store API
const wooPageSize = 100

// WooCommerceAdapter implements the Provider interface for WooCommerce
// stores: the wp-json/wc/v3 listing endpoint with basic auth built from the
// consumer key/secret pair, returning a plain JSON array.
type WooCommerceAdapter struct {
	httpClient *http.Client
}

// NewWooCommerceAdapter creates a WooCommerce adapter
func NewWooCommerceAdapter(timeout time.Duration) *WooCommerceAdapter {
	return &WooCommerceAdapter{httpClient: newHTTPClient(timeout)}
}

// Kind returns the provider kind this adapter handles
func (a *WooCommerceAdapter) Kind() integration.ProviderKind {
	return integration.ProviderKindWooCommerce
}

// FetchProducts retrieves the full product listing
func (a *WooCommerceAdapter) FetchProducts(ctx context.Context, integ *integration.Integration, creds integration.Credentials) ([]integration.RawRecord, error) {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(wooPageSize))

	req, err := newGetRequest(ctx, integ.BaseURL+"/wp-json/wc/v3/products?"+query.Encode())
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(creds.APIKey, creds.APISecret)

	var records []integration.RawRecord
	if err := doJSON(a.httpClient, req, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Ensure WooCommerceAdapter implements Provider interface
var _ integration.Provider = (*WooCommerceAdapter)(nil)
