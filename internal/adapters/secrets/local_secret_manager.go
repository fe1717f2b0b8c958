package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kevin07696/fonepay-service/internal/adapters/ports"
	"go.uber.org/zap"
)

// localSecretFile is the on-disk form written by PutSecret
type localSecretFile struct {
	Value     string            `json:"value"`
	Version   int               `json:"version"`
	Tags      map[string]string `json:"tags,omitempty"`
	CreatedAt string            `json:"created_at"`
}

// localSecretManager stores merchant secrets as files under basePath.
// Development only; production deployments use AWS Secrets Manager or Vault.
type localSecretManager struct {
	basePath string
	logger   *zap.Logger
}

// NewLocalSecretManager creates a filesystem-backed SecretManagerAdapter rooted at basePath
func NewLocalSecretManager(basePath string, logger *zap.Logger) ports.SecretManagerAdapter {
	return &localSecretManager{
		basePath: basePath,
		logger:   logger,
	}
}

// resolve maps a secret path onto a file under basePath; ".." segments cannot escape it
func (m *localSecretManager) resolve(secretPath string) string {
	return filepath.Join(m.basePath, filepath.Clean("/"+secretPath))
}

func (m *localSecretManager) read(secretPath string) (*localSecretFile, bool, error) {
	data, err := os.ReadFile(m.resolve(secretPath))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read secret %s: %w", secretPath, err)
	}

	var file localSecretFile
	if err := json.Unmarshal(data, &file); err == nil && file.Value != "" {
		if file.Version == 0 {
			file.Version = 1
		}
		return &file, true, nil
	}

	// Hand-written file holding the bare key; editors usually leave a trailing newline
	return &localSecretFile{
		Value:   strings.TrimRight(string(data), "\r\n"),
		Version: 1,
	}, true, nil
}

// GetSecret reads the file at secretPath. Files hold either the bare secret key
// or the JSON document written by PutSecret.
func (m *localSecretManager) GetSecret(ctx context.Context, secretPath string) (*ports.Secret, error) {
	file, ok, err := m.read(secretPath)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("secret not found: %s", secretPath)
	}

	m.logger.Debug("Merchant secret read from filesystem", zap.String("path", secretPath))

	return &ports.Secret{
		Value:     file.Value,
		Version:   localVersion(file.Version),
		Metadata:  file.Tags,
		CreatedAt: file.CreatedAt,
	}, nil
}

// PutSecret writes value to secretPath with mode 0600. Each write bumps the version.
// The file is replaced by rename so readers never observe a partial write.
func (m *localSecretManager) PutSecret(ctx context.Context, secretPath, secretValue string, tags map[string]string) (string, error) {
	previous, _, err := m.read(secretPath)
	if err != nil {
		return "", err
	}

	file := localSecretFile{
		Value:     secretValue,
		Version:   1,
		Tags:      tags,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if previous != nil {
		file.Version = previous.Version + 1
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal secret: %w", err)
	}

	target := m.resolve(secretPath)
	if err := os.MkdirAll(filepath.Dir(target), 0700); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".secret-*")
	if err != nil {
		return "", fmt.Errorf("failed to write secret: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write secret: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write secret: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return "", fmt.Errorf("failed to write secret: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("failed to write secret: %w", err)
	}

	version := localVersion(file.Version)
	m.logger.Info("Merchant secret stored on filesystem",
		zap.String("path", secretPath),
		zap.String("version", version),
	)

	return version, nil
}

func localVersion(n int) string {
	return "v" + strconv.Itoa(n)
}
