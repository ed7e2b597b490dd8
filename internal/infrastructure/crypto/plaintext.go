package crypto

import "github.com/storefront/backend/internal/domain/integration"

var (
	_ integration.CredentialDecryptor = (*CredentialCipher)(nil)
	_ integration.CredentialDecryptor = PlaintextCredentials{}
)

// PlaintextCredentials is a no-op decryptor for development environments
// where no credential key is configured. Stored credentials are returned
// as-is. Production configuration validation rejects a missing key, so this
// never ships to production.
type PlaintextCredentials struct{}

// Decrypt returns the stored value unchanged
func (PlaintextCredentials) Decrypt(ciphertext string) (string, error) {
	return ciphertext, nil
}
