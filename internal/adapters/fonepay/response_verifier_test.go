package fonepay

import (
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/kevin07696/fonepay-service/internal/adapters/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testResponseDV = "e6f70bfe00d0096e2e55a9496141554c5bee86d80d2caca97213c16cd7c6189a755ee217b8ed4bdfb25d8b045ab23449d51afd8f82cffd43ace668b55f1cd8b7"

func validResponse() ports.ResponseFields {
	return ports.ResponseFields{
		PRN:  "PRN1",
		PID:  "M1",
		PS:   "success",
		RC:   "successful",
		UID:  "UID-1",
		BC:   "BC1",
		INI:  "INI1",
		PAmt: "100",
		RAmt: "0",
		DV:   testResponseDV,
	}
}

func TestResponseCanonicalString(t *testing.T) {
	assert.Equal(t, "PRN1,M1,success,successful,UID-1,BC1,INI1,100,0", ResponseCanonicalString(validResponse()))
}

func TestVerifyResponse_Valid(t *testing.T) {
	assert.True(t, VerifyResponse(validResponse(), "s3cr3t"))
}

func TestVerifyResponse_UppercaseHexAccepted(t *testing.T) {
	resp := validResponse()
	resp.DV = strings.ToUpper(resp.DV)

	assert.True(t, VerifyResponse(resp, "s3cr3t"), "hex decoding is case-insensitive")
}

func TestVerifyResponse_Failures(t *testing.T) {
	flipped := []byte(testResponseDV)
	if flipped[10] == 'a' {
		flipped[10] = 'b'
	} else {
		flipped[10] = 'a'
	}

	tests := []struct {
		name    string
		mutate  func(r *ports.ResponseFields)
		key     string
		outcome string
	}{
		{
			name:    "failed status with valid signature",
			mutate:  func(r *ports.ResponseFields) { r.RC = "failed" },
			key:     "s3cr3t",
			outcome: OutcomeNotSuccessful,
		},
		{
			name:    "status differs in case",
			mutate:  func(r *ports.ResponseFields) { r.RC = "Successful" },
			key:     "s3cr3t",
			outcome: OutcomeNotSuccessful,
		},
		{
			name:    "empty status",
			mutate:  func(r *ports.ResponseFields) { r.RC = "" },
			key:     "s3cr3t",
			outcome: OutcomeNotSuccessful,
		},
		{
			name:    "one hex character flipped",
			mutate:  func(r *ports.ResponseFields) { r.DV = string(flipped) },
			key:     "s3cr3t",
			outcome: OutcomeMismatch,
		},
		{
			name:    "truncated signature",
			mutate:  func(r *ports.ResponseFields) { r.DV = testResponseDV[:64] },
			key:     "s3cr3t",
			outcome: OutcomeMismatch,
		},
		{
			name:    "non-hex signature",
			mutate:  func(r *ports.ResponseFields) { r.DV = "zz" + testResponseDV[2:] },
			key:     "s3cr3t",
			outcome: OutcomeMalformed,
		},
		{
			name:    "odd-length signature",
			mutate:  func(r *ports.ResponseFields) { r.DV = testResponseDV[:127] },
			key:     "s3cr3t",
			outcome: OutcomeMalformed,
		},
		{
			name:    "empty signature",
			mutate:  func(r *ports.ResponseFields) { r.DV = "" },
			key:     "s3cr3t",
			outcome: OutcomeMalformed,
		},
		{
			name:    "tampered amount",
			mutate:  func(r *ports.ResponseFields) { r.PAmt = "1000" },
			key:     "s3cr3t",
			outcome: OutcomeMismatch,
		},
		{
			name:    "wrong key",
			mutate:  func(r *ports.ResponseFields) {},
			key:     "other",
			outcome: OutcomeMismatch,
		},
		{
			name:    "empty key",
			mutate:  func(r *ports.ResponseFields) {},
			key:     "",
			outcome: OutcomeSigningFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := validResponse()
			tt.mutate(&resp)

			assert.NotPanics(t, func() {
				assert.False(t, VerifyResponse(resp, tt.key))
			})
			assert.Equal(t, tt.outcome, verify(resp, tt.key))
		})
	}
}

func TestVerifyResponse_ConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	results := make([]bool, 32)

	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := validResponse()
			if i%2 == 1 {
				resp.PAmt = "1"
			}
			results[i] = VerifyResponse(resp, "s3cr3t")
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		assert.Equal(t, i%2 == 0, got, "result %d", i)
	}
}

func TestParseResponse(t *testing.T) {
	values := url.Values{
		"PRN":   {"PRN1"},
		"PID":   {"M1"},
		"PS":    {"success"},
		"RC":    {"successful", "ignored"},
		"UID":   {"UID-1"},
		"BC":    {"BC1"},
		"INI":   {"INI1"},
		"P_AMT": {"100"},
		"R_AMT": {"0"},
		"DV":    {testResponseDV},
		"prn":   {"lowercase keys are not Fonepay keys"},
	}

	resp := ParseResponse(values)

	assert.Equal(t, validResponse(), resp)
	assert.True(t, VerifyResponse(resp, "s3cr3t"))
}

func TestParseResponse_MissingKeys(t *testing.T) {
	resp := ParseResponse(url.Values{"rc": {"successful"}})

	require.Empty(t, resp.RC, "keys are case-sensitive")
	assert.False(t, VerifyResponse(resp, "s3cr3t"))
}
