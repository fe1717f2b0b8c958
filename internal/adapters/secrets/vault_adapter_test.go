package secrets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeVault is a minimal in-memory KV v2 engine mounted at "secret"
type fakeVault struct {
	mu       sync.Mutex
	data     map[string]map[string]interface{}
	versions map[string]int
	reads    int
	tokens   []string
}

func newFakeVault() *fakeVault {
	return &fakeVault{
		data:     make(map[string]map[string]interface{}),
		versions: make(map[string]int),
	}
}

func (f *fakeVault) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.tokens = append(f.tokens, r.Header.Get("X-Vault-Token"))

	if r.URL.Path == "/v1/auth/approle/login" {
		writeJSON(w, map[string]interface{}{
			"auth": map[string]interface{}{"client_token": "approle-token"},
		})
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/v1/secret/data/")
	metadata := func() map[string]interface{} {
		return map[string]interface{}{
			"version":       f.versions[path],
			"created_time":  "2026-10-14T09:30:00Z",
			"deletion_time": "",
			"destroyed":     false,
		}
	}

	switch r.Method {
	case http.MethodGet:
		f.reads++
		stored, ok := f.data[path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[]}`))
			return
		}
		writeJSON(w, map[string]interface{}{
			"data": map[string]interface{}{
				"data":     stored,
				"metadata": metadata(),
			},
		})
	case http.MethodPut, http.MethodPost:
		var body struct {
			Data map[string]interface{} `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.data[path] = body.Data
		f.versions[path]++
		writeJSON(w, map[string]interface{}{"data": metadata()})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestVaultAdapter(t *testing.T, fake *fakeVault) *vaultAdapter {
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	cfg := DefaultVaultConfig(server.URL)
	cfg.Token = "root-token"

	sm, err := NewVaultAdapter(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	return sm.(*vaultAdapter)
}

func TestVaultAdapter_PutThenGet(t *testing.T) {
	ctx := context.Background()
	fake := newFakeVault()
	adapter := newTestVaultAdapter(t, fake)

	version, err := adapter.PutSecret(ctx, "fonepay/merchants/M1", "s3cr3t", map[string]string{"env": "sandbox"})
	require.NoError(t, err)
	assert.Equal(t, "1", version)

	secret, err := adapter.GetSecret(ctx, "fonepay/merchants/M1")
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", secret.Value)
	assert.Equal(t, "1", secret.Version)
	assert.Equal(t, "sandbox", secret.Metadata["env"])
	assert.Equal(t, "2026-10-14T09:30:00Z", secret.CreatedAt)

	assert.Contains(t, fake.tokens, "root-token")
}

func TestVaultAdapter_CachesReads(t *testing.T) {
	ctx := context.Background()
	fake := newFakeVault()
	adapter := newTestVaultAdapter(t, fake)
	_, err := adapter.PutSecret(ctx, "M1", "s3cr3t", nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := adapter.GetSecret(ctx, "M1")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, fake.reads)

	_, err = adapter.PutSecret(ctx, "M1", "rotated", nil)
	require.NoError(t, err)

	secret, err := adapter.GetSecret(ctx, "M1")
	require.NoError(t, err)
	assert.Equal(t, "rotated", secret.Value, "put should invalidate the cached value")
	assert.Equal(t, 2, fake.reads)
}

func TestVaultAdapter_NotFound(t *testing.T) {
	adapter := newTestVaultAdapter(t, newFakeVault())

	_, err := adapter.GetSecret(context.Background(), "missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "secret not found")
}

func TestVaultAdapter_AppRoleLogin(t *testing.T) {
	fake := newFakeVault()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	cfg := DefaultVaultConfig(server.URL)
	cfg.AuthMethod = "approle"
	cfg.RoleID = "role"
	cfg.SecretID = "secret"
	cfg.CacheTTL = time.Minute

	sm, err := NewVaultAdapter(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = sm.PutSecret(context.Background(), "M1", "s3cr3t", nil)
	require.NoError(t, err)
	assert.Equal(t, "approle-token", fake.tokens[len(fake.tokens)-1])
}

func TestVaultAdapter_AuthConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *VaultConfig)
	}{
		{name: "token missing", mutate: func(c *VaultConfig) { c.Token = "" }},
		{name: "approle missing ids", mutate: func(c *VaultConfig) { c.AuthMethod = "approle" }},
		{name: "unknown method", mutate: func(c *VaultConfig) { c.AuthMethod = "kubernetes" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultVaultConfig("http://127.0.0.1:8200")
			tt.mutate(cfg)

			_, err := NewVaultAdapter(context.Background(), cfg, zaptest.NewLogger(t))

			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to authenticate with Vault")
		})
	}
}
