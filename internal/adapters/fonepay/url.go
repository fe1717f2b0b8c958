package fonepay

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/kevin07696/fonepay-service/internal/adapters/ports"
)

// Fonepay merchant request endpoints.
const (
	SandboxBaseURL    = "https://dev-clientapi.fonepay.com/api/merchantRequest"
	ProductionBaseURL = "https://clientapi.fonepay.com/api/merchantRequest"
)

// BaseURLForEnvironment returns the Fonepay endpoint for "sandbox" or "production".
func BaseURLForEnvironment(environment string) string {
	if environment == "production" {
		return ProductionBaseURL
	}
	return SandboxBaseURL
}

// BuildPaymentURL appends the request fields to baseURL as query parameters.
// Parameters follow the canonical request order with DV last; empty values are omitted.
// Query order is not significant to Fonepay, only the DV message order is.
func BuildPaymentURL(baseURL string, fields *ports.RequestFields) (string, error) {
	if fields == nil {
		return "", fmt.Errorf("request fields are required")
	}
	if fields.DV == "" {
		return "", fmt.Errorf("request fields are not signed")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("base URL must be absolute: %s", baseURL)
	}

	values := requestValues(fields)
	var query strings.Builder
	query.WriteString(u.RawQuery)
	appendParam := func(key, value string) {
		if value == "" {
			return
		}
		if query.Len() > 0 {
			query.WriteByte('&')
		}
		query.WriteString(url.QueryEscape(key))
		query.WriteByte('=')
		query.WriteString(url.QueryEscape(value))
	}
	for i, key := range RequestSignedKeys {
		appendParam(key, values[i])
	}
	appendParam(KeyDV, fields.DV)

	u.RawQuery = query.String()
	return u.String(), nil
}
