package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/storefront/backend/internal/domain/integration"
)

// magentoPageSize is the searchCriteria page size requested from the API
const magentoPageSize = 100

// MagentoAdapter implements the Provider interface for Magento stores. Every
// fetch performs the two-step flow: exchange the admin username/password for
// a short-lived token, then list products with it. Tokens are not cached
// across runs.
type MagentoAdapter struct {
	httpClient *http.Client
}

// NewMagentoAdapter creates a Magento adapter
func NewMagentoAdapter(timeout time.Duration) *MagentoAdapter {
	return &MagentoAdapter{httpClient: newHTTPClient(timeout)}
}

// Kind returns the provider kind this adapter handles
func (a *MagentoAdapter) Kind() integration.ProviderKind {
	return integration.ProviderKindMagento
}

// FetchProducts retrieves the full product listing
func (a *MagentoAdapter) FetchProducts(ctx context.Context, integ *integration.Integration, creds integration.Credentials) ([]integration.RawRecord, error) {
	token, err := a.fetchAdminToken(ctx, integ.BaseURL, creds)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("searchCriteria[pageSize]", strconv.Itoa(magentoPageSize))
	query.Set("searchCriteria[currentPage]", "1")

	req, err := newGetRequest(ctx, integ.BaseURL+"/rest/V1/products?"+query.Encode())
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var envelope struct {
		Items []integration.RawRecord `json:"items"`
	}
	if err := doJSON(a.httpClient, req, &envelope); err != nil {
		return nil, err
	}
	return envelope.Items, nil
}

// fetchAdminToken exchanges the credential pair for an admin bearer token
func (a *MagentoAdapter) fetchAdminToken(ctx context.Context, baseURL string, creds integration.Credentials) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"username": creds.APIKey,
		"password": creds.APISecret,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", integration.ErrProviderRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		baseURL+"/rest/V1/integration/admin/token", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", integration.ErrProviderRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	var token string
	if err := doJSON(a.httpClient, req, &token); err != nil {
		return "", err
	}
	if token == "" {
		return "", fmt.Errorf("%w: empty admin token", integration.ErrProviderAuthFailed)
	}
	return token, nil
}

// Ensure MagentoAdapter implements Provider interface
var _ integration.Provider = (*MagentoAdapter)(nil)
