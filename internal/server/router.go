package server

import (
	"net/http"

	"github.com/mybillport/billport/internal/auth"
	"github.com/mybillport/billport/internal/metrics"
	"github.com/mybillport/billport/internal/middleware"
)

// NewRouter assembles the full route table. Bill, scan, and split routes
// sit behind JWT auth; health and metrics do not.
func NewRouter(h *Handler, jwtManager *auth.JWTManager, m *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.Handle("GET /metrics", m.Handler())

	mux.HandleFunc("POST /api/auth/register", h.handleRegister)
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)

	authed := func(fn http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(jwtManager, fn)
	}

	mux.Handle("GET /api/bills", authed(h.handleListBills))
	mux.Handle("POST /api/bills", authed(h.handleCreateBill))
	mux.Handle("GET /api/bills/{id}", authed(h.handleGetBill))
	mux.Handle("PUT /api/bills/{id}", authed(h.handleUpdateBill))
	mux.Handle("DELETE /api/bills/{id}", authed(h.handleDeleteBill))
	mux.Handle("POST /api/bills/{id}/payments", authed(h.handleApplyPayment))
	mux.Handle("GET /api/bills/{id}/payments", authed(h.handleListPayments))
	mux.Handle("GET /api/bills/{id}/insights", authed(h.handleBillInsights))

	mux.Handle("POST /api/recurring/detect", authed(h.handleDetectRecurring))
	mux.Handle("POST /api/email/scan", authed(h.handleEmailScan))

	mux.Handle("POST /api/split", authed(h.handleCreateSplit))
	mux.Handle("GET /api/split/{id}", authed(h.handleGetSplit))
	mux.Handle("POST /api/split/{id}/mark-paid", authed(h.handleMarkPaid))

	return middleware.CORS(middleware.Logging(m, mux))
}
