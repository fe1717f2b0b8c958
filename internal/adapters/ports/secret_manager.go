package ports

import (
	"context"
)

// Secret represents a retrieved secret with metadata
type Secret struct {
	Value     string            // The secret value (e.g., Fonepay merchant secret key)
	Version   string            // Secret version identifier
	Metadata  map[string]string // Additional secret metadata
	CreatedAt string            // When this version was created
}

// SecretManagerAdapter defines the port for retrieving the merchant secret key
// from a secret management backend (local filesystem, AWS Secrets Manager, Vault).
type SecretManagerAdapter interface {
	// GetSecret retrieves a secret by its path/name
	// Path format depends on implementation:
	//   - Local: "fonepay-service/merchants/{merchant_code}" relative to the base path
	//   - AWS: "fonepay-service/merchants/{merchant_code}" or full ARN
	//   - Vault: "fonepay-service/merchants/{merchant_code}" under the KV mount
	GetSecret(ctx context.Context, path string) (*Secret, error)

	// PutSecret creates or updates a secret and returns the new version identifier
	PutSecret(ctx context.Context, path string, value string, metadata map[string]string) (version string, err error)
}
