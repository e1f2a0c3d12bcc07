package router

import (
	"net/http"
	"strings"

	"github.com/gigboard/backend/internal/auth"
	"github.com/gigboard/backend/internal/handlers"
	"github.com/gigboard/backend/internal/middleware"
)

// New returns an http.Handler that serves the API under /api/v1.
// Middleware chain: BearerAuth on everything but /auth, plus AmountCheck
// on the two currency-bearing endpoints.
func New(authHandler *auth.Handler, h *handlers.Handler, validator middleware.TokenValidator) http.Handler {
	mux := http.NewServeMux()
	base := "/api/v1"

	mux.Handle(base+"/auth/register", methodPOST(authHandler.Register))
	mux.Handle(base+"/auth/login", methodPOST(authHandler.Login))

	authed := middleware.BearerAuth(validator)
	amount := middleware.AmountCheck()

	mux.Handle(base+"/ledgers", authed(methodPOST(h.CreateLedger)))
	mux.Handle(base+"/ledgers/active", authed(methodGET(h.GetActiveLedger)))

	mux.Handle(base+"/accounts", authed(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			h.RegisterAccount(w, r)
		case http.MethodGet:
			h.ListAccounts(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})))
	mux.Handle(base+"/accounts/", authed(accountItemHandler(h, amount)))

	mux.Handle(base+"/gigs", authed(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			amount(http.HandlerFunc(h.PostGig)).ServeHTTP(w, r)
		case http.MethodGet:
			h.ListGigs(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})))
	mux.Handle(base+"/gigs/", authed(gigItemHandler(h)))

	mux.Handle(base+"/notifications", authed(methodGET(h.ListNotifications)))
	mux.Handle(base+"/subscribers", authed(methodPOST(h.CreateSubscriber)))

	return mux
}

// accountItemHandler serves /accounts/{id}, /accounts/{id}/fund, and
// /accounts/{id}/entries.
func accountItemHandler(h *handlers.Handler, amount func(http.Handler) http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/fund") && r.Method == http.MethodPost:
			amount(http.HandlerFunc(h.FundAccount)).ServeHTTP(w, r)
		case strings.HasSuffix(r.URL.Path, "/entries") && r.Method == http.MethodGet:
			h.ListEntries(w, r)
		case r.Method == http.MethodGet:
			h.GetAccount(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

// gigItemHandler serves /gigs/{id} and the three lifecycle transitions.
func gigItemHandler(h *handlers.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/apply") && r.Method == http.MethodPost:
			h.ApplyForGig(w, r)
		case strings.HasSuffix(r.URL.Path, "/assign") && r.Method == http.MethodPost:
			h.AssignGig(w, r)
		case strings.HasSuffix(r.URL.Path, "/complete") && r.Method == http.MethodPost:
			h.CompleteGig(w, r)
		case r.Method == http.MethodGet:
			h.GetGig(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

func methodGET(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	})
}

func methodPOST(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	})
}
