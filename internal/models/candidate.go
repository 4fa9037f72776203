package models

// ConfidenceBand buckets a confidence score for display.
type ConfidenceBand string

const (
	ConfidenceHigh   ConfidenceBand = "high"
	ConfidenceMedium ConfidenceBand = "medium"
	ConfidenceLow    ConfidenceBand = "low"
)

// BandForConfidence maps a [0,1] confidence score to its display band.
// >=0.8 high, >=0.6 medium, else low.
func BandForConfidence(confidence float64) ConfidenceBand {
	switch {
	case confidence >= 0.8:
		return ConfidenceHigh
	case confidence >= 0.6:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// RecurringBillCandidate is a derived recurring-charge suggestion. It is
// ephemeral: computed on demand from transaction history, never persisted.
type RecurringBillCandidate struct {
	Merchant      string         `json:"merchant"`
	Category      string         `json:"category"`
	AverageAmount float64        `json:"averageAmount"`
	Frequency     string         `json:"frequency"`
	Occurrences   int            `json:"occurrences"`
	LastDate      string         `json:"lastDate"`
	NextDueDate   string         `json:"nextDueDate"`
	Confidence    float64        `json:"confidence"`
	Band          ConfidenceBand `json:"band"`
}

// EmailBillCandidate is a derived bill suggestion extracted from email
// metadata. Ephemeral; only surfaced when Confidence exceeds the scan
// threshold.
type EmailBillCandidate struct {
	ID         string   `json:"id"`
	From       string   `json:"from"`
	Subject    string   `json:"subject"`
	Date       string   `json:"date"`
	Snippet    string   `json:"snippet"`
	Company    string   `json:"company"`
	Amount     *float64 `json:"amount"`
	DueDate    *string  `json:"dueDate"`
	Category   string   `json:"category"`
	Confidence float64  `json:"confidence"`
}
