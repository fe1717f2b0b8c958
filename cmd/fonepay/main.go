package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kevin07696/fonepay-service/internal/adapters/fonepay"
	"github.com/kevin07696/fonepay-service/internal/adapters/ports"
	"github.com/kevin07696/fonepay-service/internal/adapters/secrets"
	"github.com/kevin07696/fonepay-service/pkg/security"
)

// errRejected marks a callback that failed verification
var errRejected = errors.New("response rejected")

type options struct {
	action      string
	merchant    string
	secret      string
	environment string
	baseURL     string
	message     string
	amount      string
	prn         string
	returnURL   string
	remarks1    string
	remarks2    string
	currency    string
	query       string
	secretsDir  string
	secretPath  string
	verbose     bool
}

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
		os.Exit(2)
	case errors.Is(err, errRejected):
		os.Exit(1)
	default:
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("fonepay", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.action, "action", "", "Action to perform: sign, url, verify, store-secret")
	fs.StringVar(&opts.merchant, "merchant", os.Getenv("FONEPAY_MERCHANT_CODE"), "Merchant code (PID)")
	fs.StringVar(&opts.secret, "secret", os.Getenv("FONEPAY_SECRET_KEY"), "Merchant secret key")
	fs.StringVar(&opts.environment, "env", "sandbox", "Fonepay environment: sandbox or production")
	fs.StringVar(&opts.baseURL, "base-url", "", "Override the Fonepay endpoint")
	fs.StringVar(&opts.message, "message", "", "Message to sign (sign)")
	fs.StringVar(&opts.amount, "amount", "", "Payment amount (url)")
	fs.StringVar(&opts.prn, "prn", "", "Product reference number (url)")
	fs.StringVar(&opts.returnURL, "return-url", "", "Return URL (url)")
	fs.StringVar(&opts.remarks1, "r1", "", "Remarks 1 (url)")
	fs.StringVar(&opts.remarks2, "r2", "", "Remarks 2 (url)")
	fs.StringVar(&opts.currency, "currency", "", "Currency code (url)")
	fs.StringVar(&opts.query, "query", "", "Callback query string or full return URL (verify)")
	fs.StringVar(&opts.secretsDir, "secrets-dir", "./secrets", "Local secrets directory (store-secret)")
	fs.StringVar(&opts.secretPath, "path", "", "Secret path (store-secret; default fonepay-service/merchants/<merchant>)")
	fs.BoolVar(&opts.verbose, "v", false, "Log to stderr")

	if err := fs.Parse(args); err != nil {
		return err
	}

	switch opts.action {
	case "sign":
		return sign(opts, stdout)
	case "url":
		return paymentURL(opts, stdout, newLogger(opts.verbose, stderr))
	case "verify":
		return verify(opts, stdout, newLogger(opts.verbose, stderr))
	case "store-secret":
		return storeSecret(opts, stdout, newLogger(opts.verbose, stderr))
	case "":
		fmt.Fprintln(stderr, "Usage: fonepay -action=<action> [options]")
		fmt.Fprintln(stderr, "Actions:")
		fmt.Fprintln(stderr, "  sign          - Print the HMAC-SHA512 DV of -message")
		fmt.Fprintln(stderr, "  url           - Print a signed payment redirect URL")
		fmt.Fprintln(stderr, "  verify        - Verify a captured callback query string")
		fmt.Fprintln(stderr, "  store-secret  - Store -secret under -path (or the -merchant default) in the local secrets directory")
		return flag.ErrHelp
	default:
		return fmt.Errorf("unknown action: %s", opts.action)
	}
}

func newLogger(verbose bool, stderr io.Writer) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(stderr), zapcore.DebugLevel))
}

func sign(opts options, stdout io.Writer) error {
	dv, err := fonepay.Sign(opts.message, opts.secret)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, dv)
	return nil
}

func newClient(opts options, logger *zap.Logger) (ports.FonepayAdapter, error) {
	baseURL := opts.baseURL
	if baseURL == "" {
		baseURL = fonepay.BaseURLForEnvironment(opts.environment)
	}
	return fonepay.NewClient(fonepay.ClientConfig{
		MerchantCode: opts.merchant,
		SecretKey:    opts.secret,
		BaseURL:      baseURL,
	}, security.NewZapLogger(logger))
}

func paymentURL(opts options, stdout io.Writer, logger *zap.Logger) error {
	client, err := newClient(opts, logger)
	if err != nil {
		return err
	}

	result, err := client.InitiatePayment(ports.PaymentParams{
		Amount:    opts.amount,
		PRN:       opts.prn,
		ReturnURL: opts.returnURL,
		Remarks1:  opts.remarks1,
		Remarks2:  opts.remarks2,
		Currency:  opts.currency,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, result.URL)
	return nil
}

func verify(opts options, stdout io.Writer, logger *zap.Logger) error {
	values, err := parseCallbackQuery(opts.query)
	if err != nil {
		return err
	}

	// Only the secret key matters for verification
	if opts.merchant == "" {
		opts.merchant = values.Get(fonepay.KeyPID)
	}
	client, err := newClient(opts, logger)
	if err != nil {
		return err
	}

	if !client.VerifyResponse(fonepay.ParseResponse(values)) {
		fmt.Fprintln(stdout, "rejected")
		return errRejected
	}
	fmt.Fprintln(stdout, "verified")
	return nil
}

// parseCallbackQuery accepts either a raw query string or a full return URL
func parseCallbackQuery(raw string) (url.Values, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("-query is required")
	}
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[i+1:]
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}
	return values, nil
}

func storeSecret(opts options, stdout io.Writer, logger *zap.Logger) error {
	if opts.secretPath == "" && opts.merchant != "" {
		opts.secretPath = secrets.MerchantSecretPath(secrets.DefaultMerchantSecretPrefix, opts.merchant)
	}
	if opts.secretPath == "" {
		return fmt.Errorf("-path or -merchant is required")
	}
	if opts.secret == "" {
		return fmt.Errorf("-secret is required")
	}

	sm := secrets.NewLocalSecretManager(opts.secretsDir, logger)
	version, err := sm.PutSecret(context.Background(), opts.secretPath, opts.secret, map[string]string{
		"merchant_code": opts.merchant,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "stored %s (version %s)\n", opts.secretPath, version)
	return nil
}
