package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// amount200 writes 200 OK plus the body it received, proving the middleware
// both let the request through and restored r.Body.
var amount200 = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
})

// ---------------------------------------------------------------------------
// 1. Non-negative amount -> 200 OK, body preserved
// ---------------------------------------------------------------------------

func TestAmountCheck_ValidAmount(t *testing.T) {
	handler := AmountCheck()(amount200)

	body := `{"amount":100}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Body.String(); got != body {
		t.Errorf("body not preserved for handler: got %q, want %q", got, body)
	}
}

func TestAmountCheck_PaymentField(t *testing.T) {
	handler := AmountCheck()(amount200)

	body := `{"description":"fix bug","payment":40}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAmountCheck_ZeroIsAllowed(t *testing.T) {
	handler := AmountCheck()(amount200)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"payment":0}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

// ---------------------------------------------------------------------------
// 2. Negative or missing amount -> 400
// ---------------------------------------------------------------------------

func TestAmountCheck_NegativeAmount(t *testing.T) {
	handler := AmountCheck()(amount200)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":-5}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "non-negative") {
		t.Errorf("expected non-negative error message, got: %s", rec.Body.String())
	}
}

func TestAmountCheck_MissingAmount(t *testing.T) {
	handler := AmountCheck()(amount200)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"description":"no money"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "required") {
		t.Errorf("expected amount-required error message, got: %s", rec.Body.String())
	}
}

func TestAmountCheck_MalformedJSON(t *testing.T) {
	handler := AmountCheck()(amount200)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}
