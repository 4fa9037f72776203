package models

// Payment is an append-only audit record of a completed payment against a bill.
//
// AmountPaid records the amount actually applied after clamping against the
// bill's remaining balance, so the sum of payments for a bill can never exceed
// the bill's TotalAmount.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string `json:"id"`

	// BillID is the bill this payment was applied to.
	BillID string `json:"billId"`

	// UserID is the user who made the payment.
	UserID string `json:"userId"`

	// AmountPaid is the applied (post-clamp) amount.
	AmountPaid float64 `json:"amountPaid"`

	// PaymentType describes how the payment was made ("card", "bank", "manual").
	PaymentType string `json:"paymentType"`

	// ProcessorRef is the external payment processor's reference id, if any.
	ProcessorRef string `json:"processorRef,omitempty"`

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64 `json:"createdAt"`
}
