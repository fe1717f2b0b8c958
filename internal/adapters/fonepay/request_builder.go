package fonepay

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/kevin07696/fonepay-service/internal/adapters/ports"
	pkgerrors "github.com/kevin07696/fonepay-service/pkg/errors"
	"github.com/kevin07696/fonepay-service/pkg/timeutil"
	"github.com/shopspring/decimal"
)

// RequestDefaults holds the values substituted for unset optional params.
type RequestDefaults struct {
	Currency string
	Remark   string
}

// DefaultRequestDefaults returns the Fonepay defaults: NPR and the N/A remark placeholder.
func DefaultRequestDefaults() RequestDefaults {
	return RequestDefaults{
		Currency: DefaultCurrency,
		Remark:   RemarkPlaceholder,
	}
}

// RequestBuilder turns payment params into a signed Fonepay request field set.
// It holds no secrets and is safe for concurrent use.
type RequestBuilder struct {
	defaults RequestDefaults
	clock    timeutil.Clock
}

// NewRequestBuilder creates a builder. A nil clock uses the system clock.
func NewRequestBuilder(defaults RequestDefaults, clock timeutil.Clock) *RequestBuilder {
	if clock == nil {
		clock = timeutil.SystemClock
	}
	return &RequestBuilder{
		defaults: defaults,
		clock:    clock,
	}
}

// BuildRequestFields builds and signs a request with the default builder and the system clock.
func BuildRequestFields(merchantCode, secretKey string, params ports.PaymentParams) (*ports.RequestFields, error) {
	return NewRequestBuilder(DefaultRequestDefaults(), nil).Build(merchantCode, secretKey, params)
}

// Build validates params, derives the protocol fields and attaches DV.
//
// Errors, in check order:
//   - *ConfigurationError when merchantCode or secretKey is empty
//   - *ValidationError for a missing param, malformed return URL or bad amount
//   - *RequestBuildError wrapping ErrSigningFailed when the signature cannot be produced
func (b *RequestBuilder) Build(merchantCode, secretKey string, params ports.PaymentParams) (*ports.RequestFields, error) {
	if merchantCode == "" {
		return nil, pkgerrors.NewConfigurationError("merchant_code")
	}
	if secretKey == "" {
		return nil, pkgerrors.NewConfigurationError("secret_key")
	}

	if err := validateRequired(params); err != nil {
		return nil, err
	}
	if err := validateReturnURL(params.ReturnURL); err != nil {
		return nil, err
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		return nil, err
	}

	fields := &ports.RequestFields{
		PID: merchantCode,
		MD:  PaymentModeTag,
		PRN: params.PRN,
		AMT: amount.String(),
		CRN: orDefault(params.Currency, b.defaults.Currency),
		DT:  b.clock().Format(DateLayout),
		R1:  params.Remarks1,
		R2:  orDefault(params.Remarks2, b.defaults.Remark),
		RU:  params.ReturnURL,
	}

	signature, err := Sign(RequestCanonicalString(fields), secretKey)
	if err != nil {
		return nil, &pkgerrors.RequestBuildError{Cause: err}
	}
	fields.DV = signature

	return fields, nil
}

func validateRequired(params ports.PaymentParams) error {
	required := []struct {
		field string
		value string
	}{
		{"amount", params.Amount},
		{"prn", params.PRN},
		{"return_url", params.ReturnURL},
		{"remarks1", params.Remarks1},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return pkgerrors.NewValidationError(r.field, "is required")
		}
	}
	return nil
}

func validateReturnURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return pkgerrors.NewValidationError("return_url", "must be a valid URL")
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return pkgerrors.NewValidationError("return_url", "must be an absolute URL")
	}
	return nil
}

// plainAmount bounds the integer part to 12 digits and the fraction to paisa.
// Exponent forms are rejected since decimal expands them in full.
var plainAmount = regexp.MustCompile(`^[0-9]{1,12}(\.[0-9]{1,2})?$`)

func parseAmount(raw string) (decimal.Decimal, error) {
	text := strings.TrimSpace(raw)
	if !plainAmount.MatchString(text) {
		if _, err := decimal.NewFromString(text); err != nil {
			return decimal.Decimal{}, pkgerrors.NewValidationError("amount", "must be numeric")
		}
		if strings.HasPrefix(text, "-") {
			return decimal.Decimal{}, pkgerrors.NewValidationError("amount", "must be greater than zero")
		}
		return decimal.Decimal{}, pkgerrors.NewValidationError("amount", "must be a plain decimal with at most 2 fractional digits")
	}

	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, pkgerrors.NewValidationError("amount", "must be numeric")
	}
	if !amount.IsPositive() {
		return decimal.Decimal{}, pkgerrors.NewValidationError("amount", "must be greater than zero")
	}
	return amount, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
