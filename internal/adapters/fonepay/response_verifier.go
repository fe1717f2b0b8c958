package fonepay

import (
	"crypto/subtle"
	"encoding/hex"
	"net/url"

	"github.com/kevin07696/fonepay-service/internal/adapters/ports"
)

// Verification outcome labels. They are only logged and counted, never returned.
const (
	OutcomeVerified      = "verified"
	OutcomeNotSuccessful = "not_successful"
	OutcomeSigningFailed = "signing_failed"
	OutcomeMalformed     = "malformed_signature"
	OutcomeMismatch      = "signature_mismatch"
	OutcomeInternalError = "internal_error"
)

// VerifyResponse reports whether response is a successful Fonepay callback
// carrying a valid DV for secretKey. It never panics or returns an error.
func VerifyResponse(response ports.ResponseFields, secretKey string) bool {
	return verify(response, secretKey) == OutcomeVerified
}

// verify returns the outcome label for response. Any panic becomes OutcomeInternalError.
func verify(response ports.ResponseFields, secretKey string) (outcome string) {
	defer func() {
		if r := recover(); r != nil {
			outcome = OutcomeInternalError
		}
	}()

	if response.RC != SuccessResponseCode {
		return OutcomeNotSuccessful
	}

	expected, err := Sign(ResponseCanonicalString(response), secretKey)
	if err != nil {
		return OutcomeSigningFailed
	}

	expectedDV, err := hex.DecodeString(expected)
	if err != nil {
		return OutcomeInternalError
	}
	receivedDV, err := hex.DecodeString(response.DV)
	if err != nil || len(receivedDV) == 0 {
		return OutcomeMalformed
	}

	// ConstantTimeCompare returns 0 for unequal lengths without inspecting contents.
	if subtle.ConstantTimeCompare(expectedDV, receivedDV) != 1 {
		return OutcomeMismatch
	}
	return OutcomeVerified
}

// ParseResponse maps callback query parameters onto ResponseFields.
// Keys are case-sensitive; the first value of each key is used.
func ParseResponse(values url.Values) ports.ResponseFields {
	first := func(key string) string {
		if v, ok := values[key]; ok && len(v) > 0 {
			return v[0]
		}
		return ""
	}

	return ports.ResponseFields{
		PRN:  first(KeyPRN),
		PID:  first(KeyPID),
		PS:   first(KeyPS),
		RC:   first(KeyRC),
		UID:  first(KeyUID),
		BC:   first(KeyBC),
		INI:  first(KeyINI),
		PAmt: first(KeyPAmt),
		RAmt: first(KeyRAmt),
		DV:   first(KeyDV),
	}
}
