package fonepay

import (
	"github.com/kevin07696/fonepay-service/internal/adapters/ports"
	pkgerrors "github.com/kevin07696/fonepay-service/pkg/errors"
	"github.com/kevin07696/fonepay-service/pkg/observability"
	"github.com/kevin07696/fonepay-service/pkg/timeutil"
)

// ClientConfig contains the merchant credentials issued by Fonepay
type ClientConfig struct {
	// Merchant code (PID) provided by Fonepay
	MerchantCode string

	// Shared secret used as the HMAC key for DV. Never logged.
	SecretKey string

	// Fonepay merchant request endpoint
	// Sandbox: https://dev-clientapi.fonepay.com/api/merchantRequest
	// Production: https://clientapi.fonepay.com/api/merchantRequest
	BaseURL string

	// Optional: values used for unset CRN and R2 (default: NPR, N/A)
	Defaults *RequestDefaults

	// Optional: clock for DT (default: system clock)
	Clock timeutil.Clock
}

// client implements the FonepayAdapter port
type client struct {
	merchantCode string
	secretKey    string
	baseURL      string
	builder      *RequestBuilder
	logger       ports.Logger
}

// NewClient creates a Fonepay adapter. It fails with a *ConfigurationError when
// the merchant code, secret key or base URL is empty.
func NewClient(cfg ClientConfig, logger ports.Logger) (ports.FonepayAdapter, error) {
	if cfg.MerchantCode == "" {
		return nil, pkgerrors.NewConfigurationError("merchant_code")
	}
	if cfg.SecretKey == "" {
		return nil, pkgerrors.NewConfigurationError("secret_key")
	}
	if cfg.BaseURL == "" {
		return nil, pkgerrors.NewConfigurationError("base_url")
	}

	defaults := DefaultRequestDefaults()
	if cfg.Defaults != nil {
		defaults = *cfg.Defaults
	}

	logger.Info("Fonepay client initialized",
		ports.String("merchant_code", cfg.MerchantCode),
		ports.String("base_url", cfg.BaseURL),
	)

	return &client{
		merchantCode: cfg.MerchantCode,
		secretKey:    cfg.SecretKey,
		baseURL:      cfg.BaseURL,
		builder:      NewRequestBuilder(defaults, cfg.Clock),
		logger:       logger,
	}, nil
}

// InitiatePayment builds the signed redirect URL for params
func (c *client) InitiatePayment(params ports.PaymentParams) (*ports.InitiatePaymentResult, error) {
	fields, err := c.builder.Build(c.merchantCode, c.secretKey, params)
	if err != nil {
		c.logger.Warn("Failed to build Fonepay request",
			ports.String("prn", params.PRN),
			ports.Err(err),
		)
		observability.RecordFonepayRequest(c.merchantCode, string(pkgerrors.Category(err)))
		return nil, err
	}

	paymentURL, err := BuildPaymentURL(c.baseURL, fields)
	if err != nil {
		c.logger.Error("Failed to build Fonepay redirect URL",
			ports.String("prn", params.PRN),
			ports.Err(err),
		)
		observability.RecordFonepayRequest(c.merchantCode, string(pkgerrors.CategorySystemError))
		return nil, &pkgerrors.RequestBuildError{Cause: err}
	}

	c.logger.Info("Built Fonepay payment request",
		ports.String("prn", fields.PRN),
		ports.String("amount", fields.AMT),
		ports.String("currency", fields.CRN),
		ports.String("date", fields.DT),
	)
	observability.RecordFonepayRequest(c.merchantCode, "success")

	return &ports.InitiatePaymentResult{
		URL:     paymentURL,
		Fields:  fields,
		Success: true,
	}, nil
}

// VerifyResponse authenticates a Fonepay callback. The failure reason is logged, not returned.
func (c *client) VerifyResponse(response ports.ResponseFields) bool {
	outcome := verify(response, c.secretKey)
	observability.RecordFonepayVerification(c.merchantCode, outcome)

	if outcome != OutcomeVerified {
		c.logger.Warn("Fonepay response verification failed",
			ports.String("prn", response.PRN),
			ports.String("reason", outcome),
		)
		return false
	}

	c.logger.Info("Fonepay response verified",
		ports.String("prn", response.PRN),
		ports.String("uid", response.UID),
	)
	return true
}
