// AngelaMos | 2026
// response_test.go

package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelopeBody struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *errorBody      `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelopeBody {
	t.Helper()
	var body envelopeBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestJSONErrorRendersAppError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", ValidationError("text is required"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not found", NotFoundError("entry"), http.StatusNotFound, "NOT_FOUND"},
		{"payment required", PaymentRequiredError("locked"), http.StatusPaymentRequired, "PAYMENT_REQUIRED"},
		{"signature", SignatureInvalidError(), http.StatusUnauthorized, "INVALID_SIGNATURE"},
		{"duplicate", DuplicateError("email"), http.StatusConflict, "DUPLICATE"},
		{"upstream", UpstreamError("payment service unavailable"), http.StatusInternalServerError, "PAYMENT_SERVICE_UNAVAILABLE"},
		{"wrapped", fmt.Errorf("outer: %w", NotFoundError("entry")), http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			JSONError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			body := decodeEnvelope(t, rec)
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestJSONErrorHidesUnknownErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONError(rec, errors.New("pq: connection refused to 10.0.0.3"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeEnvelope(t, rec)
	require.NotNil(t, body.Error)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")
}

func TestOKWrapsData(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, map[string]string{"insight": "hello"})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.True(t, body.Success)
	assert.JSONEq(t, `{"insight":"hello"}`, string(body.Data))
}

func TestRawJSONSkipsEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	RawJSON(rec, http.StatusOK, map[string]string{"status": "success"})

	assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())
}

func TestDuplicateKeyErrorUnwraps(t *testing.T) {
	err := fmt.Errorf("create user: %w", &DuplicateKeyError{Field: "email"})

	assert.ErrorIs(t, err, ErrDuplicateKey)

	var dup *DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "email", dup.Field)
}

func TestAppErrorUnwrapsSentinel(t *testing.T) {
	assert.ErrorIs(t, PaymentRequiredError("locked"), ErrPaymentRequired)
	assert.ErrorIs(t, SessionInvalidError(), ErrSessionInvalid)
	assert.True(t, IsAppError(fmt.Errorf("x: %w", ValidationError("bad"))))
	assert.False(t, IsAppError(errors.New("plain")))
}
