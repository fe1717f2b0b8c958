package ports

// PaymentParams contains the caller-supplied fields for a Fonepay payment redirect.
type PaymentParams struct {
	Amount    string // Decimal amount, e.g. "100" or "0.01"
	PRN       string // Product reference number, merchant-assigned and unique per payment
	ReturnURL string // Absolute URL Fonepay redirects to after payment (the verification route)
	Remarks1  string // R1, required by Fonepay
	Remarks2  string // R2, optional
	Currency  string // CRN, optional
}

// RequestFields is the signed field set sent to Fonepay.
// Field names follow the Fonepay merchant request parameter keys.
type RequestFields struct {
	PID string // Merchant code
	MD  string // Payment mode tag
	PRN string
	AMT string
	CRN string
	DT  string // MM/DD/YYYY
	R1  string
	R2  string
	RU  string
	DV  string // HMAC-SHA512 hex over the nine fields above
}

// ResponseFields is the callback payload Fonepay sends to the return URL.
type ResponseFields struct {
	PRN  string // Product reference number
	PID  string // Merchant code
	PS   string // Payment status
	RC   string // Response code ("successful" on success)
	UID  string // Fonepay unique id
	BC   string // Bank code
	INI  string // Initiator
	PAmt string // P_AMT, paid amount
	RAmt string // R_AMT, remaining amount
	DV   string // HMAC-SHA512 hex over the nine fields above
}

// InitiatePaymentResult holds the redirect URL and the fields it was built from.
type InitiatePaymentResult struct {
	URL     string
	Fields  *RequestFields
	Success bool
}

// FonepayAdapter defines the port for the Fonepay redirect flow.
// The browser talks to Fonepay directly, so the adapter only builds the signed
// redirect and authenticates the callback; it makes no network calls.
type FonepayAdapter interface {
	// InitiatePayment validates params, signs the request and returns the redirect URL.
	// Returns a *ValidationError for caller-fixable input and a *RequestBuildError
	// for signing or URL construction failures.
	InitiatePayment(params PaymentParams) (*InitiatePaymentResult, error)

	// VerifyResponse reports whether a callback is a successful, untampered payment.
	// It never returns an error; every failure cause collapses to false.
	VerifyResponse(response ResponseFields) bool
}
