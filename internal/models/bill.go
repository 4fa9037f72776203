package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidBill wraps every validation failure so callers can map the
// whole class onto a 400 without matching message text.
var ErrInvalidBill = errors.New("invalid bill")

// PaymentStatus is the derived payment state of a bill.
type PaymentStatus string

const (
	StatusUnpaid  PaymentStatus = "unpaid"
	StatusPartial PaymentStatus = "partial"
	StatusPaid    PaymentStatus = "paid"
)

// Bill represents one payable obligation, scoped to exactly one user.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string `json:"id"`

	// UserID is the owner of the bill. Bills are never shared across users.
	UserID string `json:"userId"`

	// Name is the display label; Company is the billing entity. They may differ
	// (e.g. Name "Home Internet", Company "Rogers").
	Name    string `json:"name"`
	Company string `json:"company"`

	// TotalAmount is the full amount owed, in CAD. Non-negative.
	TotalAmount float64 `json:"totalAmount"`

	// PaidAmount is the cumulative amount paid so far.
	// 0 <= PaidAmount <= TotalAmount, and it never decreases.
	PaidAmount float64 `json:"paidAmount"`

	// DueDate is a calendar date; time of day carries no meaning.
	DueDate time.Time `json:"dueDate"`

	// Category is a free-form grouping tag ("utilities", "phone", ...). Used
	// for display only, not authoritative.
	Category string `json:"category"`

	// IsRecurring and RecurringFrequency are optional classification hints,
	// typically set from a detector candidate the user accepted.
	IsRecurring        bool   `json:"isRecurring"`
	RecurringFrequency string `json:"recurringFrequency,omitempty"`

	// CreatedAt / UpdatedAt are Unix timestamps.
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

// PaymentStatus derives the bill's payment state from its amounts.
// The status is never stored; recompute whenever PaidAmount changes.
func (b *Bill) PaymentStatus() PaymentStatus {
	switch {
	case b.TotalAmount > 0 && b.PaidAmount >= b.TotalAmount:
		return StatusPaid
	case b.PaidAmount > 0:
		return StatusPartial
	default:
		return StatusUnpaid
	}
}

// Validate checks caller-supplied bill fields.
func (b *Bill) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("%w: bill name is required", ErrInvalidBill)
	}
	if b.TotalAmount < 0 {
		return fmt.Errorf("%w: totalAmount must be non-negative", ErrInvalidBill)
	}
	if b.PaidAmount < 0 {
		return fmt.Errorf("%w: paidAmount must be non-negative", ErrInvalidBill)
	}
	if b.PaidAmount > b.TotalAmount {
		return fmt.Errorf("%w: paidAmount %.2f exceeds totalAmount %.2f", ErrInvalidBill, b.PaidAmount, b.TotalAmount)
	}
	if b.DueDate.IsZero() {
		return fmt.Errorf("%w: dueDate is required", ErrInvalidBill)
	}
	return nil
}

// BillInput is the wire shape accepted when creating or updating a bill.
// It tolerates the legacy field variants that accumulated in older clients:
// "amount" for totalAmount, "isPaid" as 0/1 or bool, "paid" as bool, and a
// bare "status" string. NormalizeBill folds all of them into the canonical
// Bill exactly once, at the boundary.
type BillInput struct {
	Name               string          `json:"name"`
	Company            string          `json:"company"`
	TotalAmount        *float64        `json:"totalAmount"`
	Amount             *float64        `json:"amount"`
	PaidAmount         *float64        `json:"paidAmount"`
	DueDate            string          `json:"dueDate"`
	Category           string          `json:"category"`
	IsRecurring        bool            `json:"isRecurring"`
	RecurringFrequency string          `json:"recurringFrequency"`
	IsPaid             json.RawMessage `json:"isPaid"`
	Paid               *bool           `json:"paid"`
	Status             string          `json:"status"`
}

// NormalizeBill converts a BillInput into a canonical Bill.
// Precedence for the total: totalAmount, then amount.
// Precedence for "already paid": explicit paidAmount, then isPaid/paid/status
// flags (which mark the bill fully paid).
func NormalizeBill(in BillInput) (Bill, error) {
	bill := Bill{
		Name:               strings.TrimSpace(in.Name),
		Company:            strings.TrimSpace(in.Company),
		Category:           strings.TrimSpace(in.Category),
		IsRecurring:        in.IsRecurring,
		RecurringFrequency: in.RecurringFrequency,
	}
	if bill.Company == "" {
		bill.Company = bill.Name
	}

	switch {
	case in.TotalAmount != nil:
		bill.TotalAmount = *in.TotalAmount
	case in.Amount != nil:
		bill.TotalAmount = *in.Amount
	default:
		return Bill{}, fmt.Errorf("%w: totalAmount is required", ErrInvalidBill)
	}

	due, err := ParseDate(in.DueDate)
	if err != nil {
		return Bill{}, fmt.Errorf("%w: unrecognized dueDate %q", ErrInvalidBill, in.DueDate)
	}
	bill.DueDate = due

	switch {
	case in.PaidAmount != nil:
		bill.PaidAmount = *in.PaidAmount
	case flagPaid(in):
		bill.PaidAmount = bill.TotalAmount
	}

	if err := bill.Validate(); err != nil {
		return Bill{}, err
	}
	return bill, nil
}

// flagPaid interprets the legacy paid markers.
func flagPaid(in BillInput) bool {
	if in.Paid != nil && *in.Paid {
		return true
	}
	if strings.EqualFold(in.Status, string(StatusPaid)) {
		return true
	}
	raw := strings.TrimSpace(string(in.IsPaid))
	return raw == "1" || raw == "true" || raw == `"1"` || raw == `"true"`
}

// dateLayouts are the accepted due-date formats, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"01/02/2006",
}

// ParseDate parses a calendar date from any accepted layout.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}
