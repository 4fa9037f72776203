// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mybillport/billport/internal/models"
)

// ErrNotFound is returned when the requested record does not exist or does
// not belong to the requesting user.
var ErrNotFound = errors.New("record not found")

// ErrBillSettled is returned when a payment targets a bill that is already
// fully paid.
var ErrBillSettled = errors.New("bill is already fully paid")

// PaymentRequest describes one payment to apply to a bill.
type PaymentRequest struct {
	BillID       string
	UserID       string
	Amount       float64
	PaymentType  string
	ProcessorRef string
}

// PaymentResult reports what ApplyPayment actually did.
type PaymentResult struct {
	Payment *models.Payment
	Bill    *models.Bill
	// Clamped is true when the requested amount exceeded the remaining
	// balance and was reduced.
	Clamped bool
}

// Store defines the interface for BillPort's persistence operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
type Store interface {
	// CreateBill persists a new bill, populating its ID and timestamps.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// GetBill retrieves one of the user's bills. Returns ErrNotFound when
	// the bill does not exist or belongs to another user.
	GetBill(ctx context.Context, userID, billID string) (*models.Bill, error)

	// ListBills returns all of the user's bills ordered by due date.
	ListBills(ctx context.Context, userID string) ([]*models.Bill, error)

	// ListBillsByCompany returns the user's bills for one biller, ordered
	// by due date ascending. This is the insight analyzer's history feed.
	ListBillsByCompany(ctx context.Context, userID, company string) ([]*models.Bill, error)

	// UpdateBill updates an existing bill's mutable fields.
	UpdateBill(ctx context.Context, bill *models.Bill) error

	// DeleteBill removes a bill and its payments. Deletion only ever
	// happens through an explicit user action.
	DeleteBill(ctx context.Context, userID, billID string) error

	// ApplyPayment atomically applies a payment to a bill: the new paid
	// amount is clamped at the bill's total and the audit Payment row
	// records the applied (post-clamp) amount, all in one transaction.
	ApplyPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error)

	// ListPayments returns the payment history for one of the user's bills,
	// oldest first.
	ListPayments(ctx context.Context, userID, billID string) ([]*models.Payment, error)

	// CreateUser persists a new user account.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email. Returns (nil, nil) when no
	// user has that email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID. Returns (nil, nil) when absent.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Close releases any resources held by the store.
	Close() error
}
