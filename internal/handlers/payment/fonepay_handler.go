package payment

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/kevin07696/fonepay-service/internal/adapters/fonepay"
	"github.com/kevin07696/fonepay-service/internal/adapters/ports"
	pkgerrors "github.com/kevin07696/fonepay-service/pkg/errors"
	"github.com/kevin07696/fonepay-service/pkg/middleware"
	"go.uber.org/zap"
)

// Fonepay routes
const (
	InitiatePath = "/api/v1/payments/fonepay/initiate"
	CallbackPath = "/api/v1/payments/fonepay/callback"
)

// maxRequestBody bounds the initiate request body
const maxRequestBody = 64 << 10

// FonepayHandler exposes payment initiation and the Fonepay return callback over HTTP
type FonepayHandler struct {
	adapter ports.FonepayAdapter
	logger  *zap.Logger
}

// NewFonepayHandler creates a new Fonepay HTTP handler
func NewFonepayHandler(adapter ports.FonepayAdapter, logger *zap.Logger) *FonepayHandler {
	return &FonepayHandler{
		adapter: adapter,
		logger:  logger,
	}
}

// RouteWrapper decorates the handler mounted at route
type RouteWrapper func(route string, next http.Handler) http.Handler

// Register mounts the handler routes on router, wrapping each with wrap
func (h *FonepayHandler) Register(router *httprouter.Router, wrap RouteWrapper) {
	if wrap == nil {
		wrap = func(_ string, next http.Handler) http.Handler { return next }
	}
	router.Handler(http.MethodPost, InitiatePath, wrap(InitiatePath, http.HandlerFunc(h.Initiate)))
	router.Handler(http.MethodGet, CallbackPath, wrap(CallbackPath, http.HandlerFunc(h.Callback)))
}

// amountValue accepts the amount as either a JSON string or a JSON number
type amountValue string

func (a *amountValue) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = amountValue(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a string or number")
	}
	*a = amountValue(n.String())
	return nil
}

// InitiateRequest is the JSON body of the initiate endpoint
type InitiateRequest struct {
	Amount    amountValue `json:"amount"`
	PRN       string      `json:"prn"`
	ReturnURL string      `json:"return_url"`
	Remarks1  string      `json:"remarks1"`
	Remarks2  string      `json:"remarks2,omitempty"`
	Currency  string      `json:"currency,omitempty"`
}

// InitiateResponse is returned when a redirect URL was built
type InitiateResponse struct {
	URL     string `json:"url"`
	PRN     string `json:"prn"`
	Success bool   `json:"success"`
}

// CallbackResponse reports whether a Fonepay redirect was authentic
type CallbackResponse struct {
	Verified bool   `json:"verified"`
	PRN      string `json:"prn,omitempty"`
	UID      string `json:"uid,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// Initiate builds a signed Fonepay redirect URL
// Endpoint: POST /api/v1/payments/fonepay/initiate
func (h *FonepayHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req InitiateRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := decoder.Decode(&req); err != nil {
		h.logger.Warn("Invalid initiate request body",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	result, err := h.adapter.InitiatePayment(ports.PaymentParams{
		Amount:    string(req.Amount),
		PRN:       req.PRN,
		ReturnURL: req.ReturnURL,
		Remarks1:  req.Remarks1,
		Remarks2:  req.Remarks2,
		Currency:  req.Currency,
	})
	if err != nil {
		var valErr *pkgerrors.ValidationError
		if errors.As(err, &valErr) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: valErr.Message, Field: valErr.Field})
			return
		}

		h.logger.Error("Failed to initiate Fonepay payment",
			zap.String("request_id", requestID),
			zap.String("prn", req.PRN),
			zap.String("category", string(pkgerrors.Category(err))),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to build payment request"})
		return
	}

	h.logger.Info("Fonepay payment initiated",
		zap.String("request_id", requestID),
		zap.String("prn", result.Fields.PRN),
	)

	writeJSON(w, http.StatusOK, InitiateResponse{
		URL:     result.URL,
		PRN:     result.Fields.PRN,
		Success: result.Success,
	})
}

// Callback verifies the query string Fonepay appends to the return URL
// Endpoint: GET /api/v1/payments/fonepay/callback?PRN=...&DV=...
func (h *FonepayHandler) Callback(w http.ResponseWriter, r *http.Request) {
	response := fonepay.ParseResponse(r.URL.Query())

	if !h.adapter.VerifyResponse(response) {
		h.logger.Warn("Rejected Fonepay callback",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.String("prn", response.PRN),
		)
		writeJSON(w, http.StatusBadRequest, CallbackResponse{Verified: false})
		return
	}

	writeJSON(w, http.StatusOK, CallbackResponse{
		Verified: true,
		PRN:      response.PRN,
		UID:      response.UID,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
