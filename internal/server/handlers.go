package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mybillport/billport/internal/auth"
	"github.com/mybillport/billport/internal/billmail"
	"github.com/mybillport/billport/internal/middleware"
	"github.com/mybillport/billport/internal/models"
	"github.com/mybillport/billport/internal/recurring"
	"github.com/mybillport/billport/internal/service"
	"github.com/mybillport/billport/internal/split"
	"github.com/mybillport/billport/internal/storage"
)

// maxBodyBytes caps request payloads. Transaction exports are the largest
// expected body and stay well under this.
const maxBodyBytes = 1 << 20

// Handler carries the services the HTTP layer dispatches into.
type Handler struct {
	auth   *service.AuthService
	bills  *service.BillService
	scans  *service.ScanService
	splits *service.SplitService
}

// NewHandler builds the HTTP handler set.
func NewHandler(auth *service.AuthService, bills *service.BillService, scans *service.ScanService, splits *service.SplitService) *Handler {
	return &Handler{auth: auth, bills: bills, scans: scans, splits: splits}
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// serviceError maps known sentinels onto HTTP statuses; everything else
// is a 500 with the detail kept out of the response.
func serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, storage.ErrBillSettled):
		respondError(w, http.StatusConflict, "bill is already fully paid")
	case errors.Is(err, auth.ErrEmailExists):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrWeakPassword):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrInvalidBill):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := h.auth.Register(r.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var input models.BillInput
	if !decodeBody(w, r, &input) {
		return
	}
	view, err := h.bills.Create(r.Context(), middleware.GetUserID(r.Context()), input)
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

func (h *Handler) handleListBills(w http.ResponseWriter, r *http.Request) {
	views, err := h.bills.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handler) handleGetBill(w http.ResponseWriter, r *http.Request) {
	view, err := h.bills.Get(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id"))
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handler) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	var input models.BillInput
	if !decodeBody(w, r, &input) {
		return
	}
	view, err := h.bills.Update(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id"), input)
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handler) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	if err := h.bills.Delete(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id")); err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type paymentRequest struct {
	Amount      float64 `json:"amount"`
	PaymentType string  `json:"paymentType"`
}

type paymentResponse struct {
	Bill    *service.BillView `json:"bill"`
	Payment *models.Payment   `json:"payment"`
}

func (h *Handler) handleApplyPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "payment amount must be positive")
		return
	}
	view, payment, err := h.bills.Pay(r.Context(), storage.PaymentRequest{
		UserID:      middleware.GetUserID(r.Context()),
		BillID:      r.PathValue("id"),
		Amount:      req.Amount,
		PaymentType: req.PaymentType,
	})
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, paymentResponse{Bill: view, Payment: payment})
}

func (h *Handler) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.bills.Payments(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id"))
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, payments)
}

func (h *Handler) handleBillInsights(w http.ResponseWriter, r *http.Request) {
	insight, err := h.bills.Insights(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id"))
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, insight)
}

type transactionInput struct {
	Merchant string  `json:"merchant"`
	Amount   float64 `json:"amount"`
	Date     string  `json:"date"`
}

type detectRequest struct {
	Transactions []transactionInput `json:"transactions"`
}

func (h *Handler) handleDetectRecurring(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	txs := make([]recurring.Transaction, 0, len(req.Transactions))
	for i, in := range req.Transactions {
		date, err := models.ParseDate(in.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("transaction %d: unrecognized date %q", i, in.Date))
			return
		}
		txs = append(txs, recurring.Transaction{Merchant: in.Merchant, Amount: in.Amount, Date: date})
	}
	candidates := h.scans.DetectRecurring(middleware.GetUserID(r.Context()), txs)
	respondJSON(w, http.StatusOK, candidates)
}

type emailScanRequest struct {
	Messages []billmail.Message `json:"messages"`
}

func (h *Handler) handleEmailScan(w http.ResponseWriter, r *http.Request) {
	var req emailScanRequest
	if !decodeBody(w, r, &req) {
		return
	}
	candidates := h.scans.ScanEmails(middleware.GetUserID(r.Context()), req.Messages)
	respondJSON(w, http.StatusOK, candidates)
}

type splitRequest struct {
	BillName    string        `json:"billName"`
	TotalAmount float64       `json:"totalAmount"`
	People      []string      `json:"people"`
	Shares      []split.Share `json:"shares"`
}

func (h *Handler) handleCreateSplit(w http.ResponseWriter, r *http.Request) {
	var req splitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	session, err := h.splits.Create(req.BillName, req.TotalAmount, req.People, req.Shares)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleGetSplit(w http.ResponseWriter, r *http.Request) {
	session, err := h.splits.Get(r.PathValue("id"))
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

type markPaidRequest struct {
	Name string `json:"name"`
	Paid *bool  `json:"paid"`
}

func (h *Handler) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	var req markPaidRequest
	if !decodeBody(w, r, &req) {
		return
	}
	paid := true
	if req.Paid != nil {
		paid = *req.Paid
	}
	session, err := h.splits.MarkPaid(r.PathValue("id"), req.Name, paid)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			serviceError(w, err)
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
