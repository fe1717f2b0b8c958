package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kevin07696/fonepay-service/internal/adapters/ports"
	"github.com/kevin07696/fonepay-service/pkg/resilience"
)

// DefaultMerchantSecretPrefix is where merchant keys live unless a full path is configured
const DefaultMerchantSecretPrefix = "fonepay-service/merchants"

// MerchantSecretPath returns the secret path for a merchant under prefix
func MerchantSecretPath(prefix, merchantCode string) string {
	return strings.TrimSuffix(prefix, "/") + "/" + merchantCode
}

// ResolveMerchantSecret loads the Fonepay secret key stored at path.
// The stored value is either the bare key or JSON {"secret_key": "..."}.
// Malformed or empty values are marked permanent so retries stop at once.
func ResolveMerchantSecret(ctx context.Context, sm ports.SecretManagerAdapter, path string) (string, error) {
	secret, err := sm.GetSecret(ctx, path)
	if err != nil {
		return "", err
	}

	value := strings.TrimSpace(secret.Value)
	if strings.HasPrefix(value, "{") {
		var wrapped struct {
			SecretKey string `json:"secret_key"`
		}
		if err := json.Unmarshal([]byte(value), &wrapped); err != nil {
			return "", resilience.Permanent(fmt.Errorf("secret %s is not valid JSON: %w", path, err))
		}
		value = strings.TrimSpace(wrapped.SecretKey)
	}

	if value == "" {
		return "", resilience.Permanent(fmt.Errorf("secret %s is empty", path))
	}
	return value, nil
}
