package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

const ctxAmountKey contextKey = "parsed_amount"

// parsedAmount is stored in context so handlers can read the amount
// without re-parsing the body. Fund requests carry "amount", gig posts
// carry "payment"; whichever is present wins.
type parsedAmount struct {
	Amount  *int64 `json:"amount"`
	Payment *int64 `json:"payment"`
}

func (p *parsedAmount) value() (int64, bool) {
	if p.Amount != nil {
		return *p.Amount, true
	}
	if p.Payment != nil {
		return *p.Payment, true
	}
	return 0, false
}

// AmountFromCtx returns the amount parsed by AmountCheck, or 0 if not set.
func AmountFromCtx(ctx context.Context) int64 {
	if a, ok := ctx.Value(ctxAmountKey).(int64); ok {
		return a
	}
	return 0
}

// AmountCheck rejects currency-bearing requests with a missing or negative
// amount before they reach the engine. Reads the body to extract the
// amount, then replaces r.Body so downstream handlers can re-read it.
func AmountCheck() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bodyBytes, err := io.ReadAll(r.Body)
			r.Body.Close()
			if err != nil {
				http.Error(w, `{"error":"failed to read body"}`, http.StatusBadRequest)
				return
			}
			// Restore body for the handler.
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

			var peek parsedAmount
			if err := json.Unmarshal(bodyBytes, &peek); err != nil {
				http.Error(w, `{"error":"invalid JSON body"}`, http.StatusBadRequest)
				return
			}
			amount, ok := peek.value()
			if !ok {
				http.Error(w, `{"error":"amount is required"}`, http.StatusBadRequest)
				return
			}
			if amount < 0 {
				http.Error(w, `{"error":"amount must be non-negative"}`, http.StatusBadRequest)
				return
			}
			ctx := context.WithValue(r.Context(), ctxAmountKey, amount)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
