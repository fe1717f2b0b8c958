package secrets

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	vault "github.com/hashicorp/vault/api"
	"github.com/kevin07696/fonepay-service/internal/adapters/ports"
	"go.uber.org/zap"
)

// secretValueKey is the KV field holding the secret key
const secretValueKey = "value"

// VaultConfig configures the Vault-backed secret manager
type VaultConfig struct {
	// Vault server address (e.g., "https://vault.example.com:8200")
	Address string

	// "token" or "approle"
	AuthMethod string
	Token      string
	RoleID     string
	SecretID   string

	// Optional: Vault Enterprise namespace
	Namespace string

	// KV mount path and engine version ("v1" or "v2")
	MountPath string
	KVVersion string

	CacheTTL    time.Duration
	EnableCache bool
}

// DefaultVaultConfig returns token auth against a KV v2 mount named "secret"
func DefaultVaultConfig(address string) *VaultConfig {
	return &VaultConfig{
		Address:     address,
		AuthMethod:  "token",
		MountPath:   "secret",
		KVVersion:   "v2",
		CacheTTL:    5 * time.Minute,
		EnableCache: true,
	}
}

// kvEngine abstracts the KV v1 and v2 secrets engines
type kvEngine interface {
	get(ctx context.Context, path string) (*vault.KVSecret, error)
	// put returns the written version, or 0 when the engine does not version secrets
	put(ctx context.Context, path string, data map[string]interface{}) (int, error)
}

type kvV1 struct{ kv *vault.KVv1 }

func (e kvV1) get(ctx context.Context, path string) (*vault.KVSecret, error) {
	return e.kv.Get(ctx, path)
}

func (e kvV1) put(ctx context.Context, path string, data map[string]interface{}) (int, error) {
	return 0, e.kv.Put(ctx, path, data)
}

type kvV2 struct{ kv *vault.KVv2 }

func (e kvV2) get(ctx context.Context, path string) (*vault.KVSecret, error) {
	return e.kv.Get(ctx, path)
}

func (e kvV2) put(ctx context.Context, path string, data map[string]interface{}) (int, error) {
	written, err := e.kv.Put(ctx, path, data)
	if err != nil {
		return 0, err
	}
	if written == nil || written.VersionMetadata == nil {
		return 0, nil
	}
	return written.VersionMetadata.Version, nil
}

func newKVEngine(client *vault.Client, cfg *VaultConfig) kvEngine {
	if cfg.KVVersion == "v1" {
		return kvV1{kv: client.KVv1(cfg.MountPath)}
	}
	return kvV2{kv: client.KVv2(cfg.MountPath)}
}

type vaultAdapter struct {
	kv     kvEngine
	logger *zap.Logger
	cache  *secretCache
}

// NewVaultAdapter authenticates against Vault and returns a SecretManagerAdapter
// reading merchant secrets from the configured KV mount.
func NewVaultAdapter(ctx context.Context, cfg *VaultConfig, logger *zap.Logger) (ports.SecretManagerAdapter, error) {
	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	if err := authenticateVault(ctx, client, cfg); err != nil {
		return nil, fmt.Errorf("failed to authenticate with Vault: %w", err)
	}

	logger.Info("Vault adapter initialized",
		zap.String("address", cfg.Address),
		zap.String("auth_method", cfg.AuthMethod),
		zap.String("mount_path", cfg.MountPath),
		zap.String("kv_version", cfg.KVVersion),
	)

	return &vaultAdapter{
		kv:     newKVEngine(client, cfg),
		logger: logger,
		cache:  newSecretCache(cfg.EnableCache, cfg.CacheTTL),
	}, nil
}

func authenticateVault(ctx context.Context, client *vault.Client, cfg *VaultConfig) error {
	switch cfg.AuthMethod {
	case "token":
		if cfg.Token == "" {
			return fmt.Errorf("token is required for token auth")
		}
		client.SetToken(cfg.Token)
		return nil

	case "approle":
		if cfg.RoleID == "" || cfg.SecretID == "" {
			return fmt.Errorf("role_id and secret_id are required for AppRole auth")
		}
		resp, err := client.Logical().WriteWithContext(ctx, "auth/approle/login", map[string]interface{}{
			"role_id":   cfg.RoleID,
			"secret_id": cfg.SecretID,
		})
		if err != nil {
			return fmt.Errorf("AppRole login failed: %w", err)
		}
		if resp == nil || resp.Auth == nil {
			return fmt.Errorf("AppRole login returned no auth info")
		}
		client.SetToken(resp.Auth.ClientToken)
		return nil

	default:
		return fmt.Errorf("unsupported auth method: %s", cfg.AuthMethod)
	}
}

// GetSecret reads the "value" field of the KV entry at path.
// Remaining string fields are returned as metadata.
func (a *vaultAdapter) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	if cached := a.cache.get(path); cached != nil {
		return cached, nil
	}

	entry, err := a.kv.get(ctx, path)
	if errors.Is(err, vault.ErrSecretNotFound) {
		return nil, fmt.Errorf("secret not found: %s", path)
	}
	if err != nil {
		a.logger.Error("Failed to read merchant secret from Vault", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("failed to read secret from Vault: %w", err)
	}

	secret, err := secretFromKV(path, entry)
	if err != nil {
		return nil, err
	}

	a.cache.set(path, secret)
	a.logger.Debug("Merchant secret loaded", zap.String("path", path), zap.String("version", secret.Version))

	return secret, nil
}

func secretFromKV(path string, entry *vault.KVSecret) (*ports.Secret, error) {
	value, _ := entry.Data[secretValueKey].(string)
	if value == "" {
		return nil, fmt.Errorf("secret %s has no %q field", path, secretValueKey)
	}

	secret := &ports.Secret{
		Value:    value,
		Version:  "1",
		Metadata: map[string]string{},
	}
	if meta := entry.VersionMetadata; meta != nil {
		secret.Version = strconv.Itoa(meta.Version)
		secret.CreatedAt = meta.CreatedTime.UTC().Format(time.RFC3339)
	}
	for k, v := range entry.Data {
		if str, ok := v.(string); ok && k != secretValueKey {
			secret.Metadata[k] = str
		}
	}
	return secret, nil
}

// PutSecret writes value and metadata as one KV entry
func (a *vaultAdapter) PutSecret(ctx context.Context, path string, value string, metadata map[string]string) (string, error) {
	defer a.cache.invalidate(path)

	data := make(map[string]interface{}, len(metadata)+1)
	for k, v := range metadata {
		data[k] = v
	}
	data[secretValueKey] = value

	written, err := a.kv.put(ctx, path, data)
	if err != nil {
		a.logger.Error("Failed to write merchant secret to Vault", zap.String("path", path), zap.Error(err))
		return "", fmt.Errorf("failed to write secret: %w", err)
	}

	version := "1"
	if written > 0 {
		version = strconv.Itoa(written)
	}

	a.logger.Info("Merchant secret written to Vault", zap.String("path", path), zap.String("version", version))
	return version, nil
}
