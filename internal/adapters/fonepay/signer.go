package fonepay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"

	pkgerrors "github.com/kevin07696/fonepay-service/pkg/errors"
)

// SignatureLength is the hex length of an HMAC-SHA512 digest.
const SignatureLength = sha512.Size * 2

// Sign computes the HMAC-SHA512 of message under secretKey as lowercase hex.
// Empty inputs are rejected with ErrSigningFailed before hashing.
func Sign(message, secretKey string) (signature string, err error) {
	if secretKey == "" {
		return "", fmt.Errorf("%w: secret key is empty", pkgerrors.ErrSigningFailed)
	}
	if message == "" {
		return "", fmt.Errorf("%w: message is empty", pkgerrors.ErrSigningFailed)
	}

	defer func() {
		if r := recover(); r != nil {
			signature = ""
			err = fmt.Errorf("%w: %v", pkgerrors.ErrSigningFailed, r)
		}
	}()

	h := hmac.New(sha512.New, []byte(secretKey))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil)), nil
}
