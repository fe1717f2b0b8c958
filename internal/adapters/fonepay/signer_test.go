package fonepay

import (
	"errors"
	"testing"

	pkgerrors "github.com/kevin07696/fonepay-service/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign_KnownVector(t *testing.T) {
	got, err := Sign("The quick brown fox jumps over the lazy dog", "key")

	require.NoError(t, err)
	assert.Equal(t,
		"b42af09057bac1e2d41708e48a902e09b5ff7f12ab428a4fe86653c73dd248fb82f948a549f7b791a5b41915ee4d1ec3935357e4e2317250d0372afa2ebeeb3a",
		got,
	)
}

func TestSign_Format(t *testing.T) {
	got, err := Sign("M1,P,PRN1,100,NPR,10/14/2026,order 1,N/A,https://x.test/cb", "s3cr3t")

	require.NoError(t, err)
	assert.Len(t, got, SignatureLength, "HMAC-SHA512 should produce 128 character hex string")
	assert.Regexp(t, "^[0-9a-f]{128}$", got, "Should be lowercase hex")

	got2, err := Sign("M1,P,PRN1,100,NPR,10/14/2026,order 1,N/A,https://x.test/cb", "s3cr3t")
	require.NoError(t, err)
	assert.Equal(t, got, got2, "Same input should produce same signature")
}

func TestSign_DifferentKeys(t *testing.T) {
	sig1, err := Sign("message", "key1")
	require.NoError(t, err)
	sig2, err := Sign("message", "key2")
	require.NoError(t, err)

	assert.NotEqual(t, sig1, sig2, "Different keys should produce different signatures")
}

func TestSign_RejectsEmptyInput(t *testing.T) {
	tests := []struct {
		name    string
		message string
		key     string
	}{
		{name: "empty key", message: "message", key: ""},
		{name: "empty message", message: "", key: "key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sign(tt.message, tt.key)

			require.Error(t, err)
			assert.True(t, errors.Is(err, pkgerrors.ErrSigningFailed))
			assert.Empty(t, got)
		})
	}
}

func TestSign_UTF8(t *testing.T) {
	sig1, err := Sign("भुक्तानी", "s3cr3t")
	require.NoError(t, err)
	sig2, err := Sign("bhuktani", "s3cr3t")
	require.NoError(t, err)

	assert.Len(t, sig1, SignatureLength)
	assert.NotEqual(t, sig1, sig2)
}
