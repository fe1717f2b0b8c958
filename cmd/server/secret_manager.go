package main

import (
	"context"

	"github.com/kevin07696/fonepay-service/internal/adapters/ports"
	"github.com/kevin07696/fonepay-service/internal/adapters/secrets"
	"github.com/kevin07696/fonepay-service/internal/config"
	"go.uber.org/zap"
)

// initSecretManager initializes the secret manager selected by SECRETS_BACKEND
// Supports:
//   - AWS Secrets Manager: SECRETS_BACKEND=aws, AWS_REGION (AWS_PROFILE, AWS_ENDPOINT_URL optional)
//   - HashiCorp Vault: SECRETS_BACKEND=vault, VAULT_ADDR and VAULT_TOKEN or VAULT_ROLE_ID/VAULT_SECRET_ID
//   - Local files (development only): SECRETS_BACKEND=local, SECRETS_LOCAL_PATH
func initSecretManager(ctx context.Context, cfg *config.Config, logger *zap.Logger) ports.SecretManagerAdapter {
	switch cfg.Secrets.Backend {
	case "aws":
		return initAWSSecretManager(ctx, cfg.Secrets, logger)
	case "vault":
		return initVaultSecretManager(ctx, cfg.Secrets, logger)
	default:
		return initLocalSecretManager(cfg.Secrets, logger)
	}
}

// initAWSSecretManager initializes AWS Secrets Manager
func initAWSSecretManager(ctx context.Context, cfg config.SecretsConfig, logger *zap.Logger) ports.SecretManagerAdapter {
	awsConfig := secrets.DefaultAWSSecretsManagerConfig(cfg.AWSRegion)
	awsConfig.Profile = cfg.AWSProfile
	awsConfig.Endpoint = cfg.AWSEndpoint
	if cfg.CacheTTL > 0 {
		awsConfig.CacheTTL = cfg.CacheTTL
	}

	sm, err := secrets.NewAWSSecretsManagerAdapter(ctx, awsConfig, logger)
	if err != nil {
		logger.Fatal("Failed to initialize AWS Secrets Manager",
			zap.Error(err),
			zap.String("region", cfg.AWSRegion),
		)
	}
	return sm
}

// initVaultSecretManager initializes HashiCorp Vault
func initVaultSecretManager(ctx context.Context, cfg config.SecretsConfig, logger *zap.Logger) ports.SecretManagerAdapter {
	vaultConfig := secrets.DefaultVaultConfig(cfg.VaultAddress)
	vaultConfig.AuthMethod = cfg.VaultAuthMethod
	vaultConfig.Token = cfg.VaultToken
	vaultConfig.RoleID = cfg.VaultRoleID
	vaultConfig.SecretID = cfg.VaultSecretID
	vaultConfig.Namespace = cfg.VaultNamespace
	vaultConfig.MountPath = cfg.VaultMountPath
	vaultConfig.KVVersion = cfg.VaultKVVersion
	if cfg.CacheTTL > 0 {
		vaultConfig.CacheTTL = cfg.CacheTTL
	}

	sm, err := secrets.NewVaultAdapter(ctx, vaultConfig, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Vault",
			zap.Error(err),
			zap.String("address", cfg.VaultAddress),
		)
	}
	return sm
}

// initLocalSecretManager initializes the filesystem secret manager for development
func initLocalSecretManager(cfg config.SecretsConfig, logger *zap.Logger) ports.SecretManagerAdapter {
	logger.Warn("Using LOCAL secret manager - NOT for production use!",
		zap.String("base_path", cfg.LocalPath),
	)
	return secrets.NewLocalSecretManager(cfg.LocalPath, logger)
}
