package fonepay

import (
	"strings"

	"github.com/kevin07696/fonepay-service/internal/adapters/ports"
)

// Protocol constants defined by Fonepay.
const (
	// PaymentModeTag is the MD value for a standard payment request.
	PaymentModeTag = "P"

	// SuccessResponseCode is the RC value Fonepay sends for a completed payment.
	SuccessResponseCode = "successful"

	// DefaultCurrency is used when the caller does not supply CRN.
	DefaultCurrency = "NPR"

	// RemarkPlaceholder is signed in place of an unset remark.
	RemarkPlaceholder = "N/A"

	// DateLayout formats DT as MM/DD/YYYY.
	DateLayout = "01/02/2006"

	fieldSeparator = ","
)

// Request parameter keys.
const (
	KeyPID = "PID"
	KeyMD  = "MD"
	KeyPRN = "PRN"
	KeyAMT = "AMT"
	KeyCRN = "CRN"
	KeyDT  = "DT"
	KeyR1  = "R1"
	KeyR2  = "R2"
	KeyRU  = "RU"
	KeyDV  = "DV"
)

// Response parameter keys not shared with the request.
const (
	KeyPS   = "PS"
	KeyRC   = "RC"
	KeyUID  = "UID"
	KeyBC   = "BC"
	KeyINI  = "INI"
	KeyPAmt = "P_AMT"
	KeyRAmt = "R_AMT"
)

// RequestSignedKeys is the order Fonepay concatenates request fields for DV.
// Never sort or reorder.
var RequestSignedKeys = [...]string{KeyPID, KeyMD, KeyPRN, KeyAMT, KeyCRN, KeyDT, KeyR1, KeyR2, KeyRU}

// ResponseSignedKeys is the order Fonepay concatenates callback fields for DV.
// It differs from the request order.
var ResponseSignedKeys = [...]string{KeyPRN, KeyPID, KeyPS, KeyRC, KeyUID, KeyBC, KeyINI, KeyPAmt, KeyRAmt}

// requestValues returns the request fields in RequestSignedKeys order.
func requestValues(f *ports.RequestFields) [len(RequestSignedKeys)]string {
	return [...]string{f.PID, f.MD, f.PRN, f.AMT, f.CRN, f.DT, f.R1, f.R2, f.RU}
}

// responseValues returns the callback fields in ResponseSignedKeys order.
func responseValues(r ports.ResponseFields) [len(ResponseSignedKeys)]string {
	return [...]string{r.PRN, r.PID, r.PS, r.RC, r.UID, r.BC, r.INI, r.PAmt, r.RAmt}
}

// RequestCanonicalString builds the DV message for a payment request.
func RequestCanonicalString(f *ports.RequestFields) string {
	values := requestValues(f)
	return strings.Join(values[:], fieldSeparator)
}

// ResponseCanonicalString builds the DV message for a callback.
func ResponseCanonicalString(r ports.ResponseFields) string {
	values := responseValues(r)
	return strings.Join(values[:], fieldSeparator)
}
