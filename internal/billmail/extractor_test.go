package billmail

import (
	"math"
	"testing"
)

func TestExtractRogersBill(t *testing.T) {
	got := Extract(
		"billing@rogers.com",
		"Your Rogers bill is ready",
		"Amount due: $89.99, due by August 15, 2025",
	)

	if got.Confidence <= MinConfidence {
		t.Errorf("confidence = %v, want > %v", got.Confidence, MinConfidence)
	}
	if got.Company != "Rogers" {
		t.Errorf("company = %q, want Rogers", got.Company)
	}
	if got.Amount == nil || math.Abs(*got.Amount-89.99) > 0.001 {
		t.Errorf("amount = %v, want 89.99", got.Amount)
	}
	if got.DueDate == nil || *got.DueDate != "August 15, 2025" {
		t.Errorf("dueDate = %v, want August 15, 2025", got.DueDate)
	}
	if got.Category != "phone" {
		t.Errorf("category = %q, want phone", got.Category)
	}
}

func ptr(f float64) *float64 { return &f }

func TestExtractCompany(t *testing.T) {
	tests := []struct {
		name string
		from string
		want string
	}{
		{"display name wins", `"Toronto Hydro" <noreply@torontohydro.com>`, "Toronto Hydro"},
		{"unquoted display name", `Bell Canada <billing@bell.ca>`, "Bell Canada"},
		{"bare address falls back to domain", "statements@enbridge.com", "Enbridge"},
		{"subdomain uses second-level domain", "noreply@billing.telus.com", "Telus"},
		{"display name that is an email is ignored", `billing@fido.ca <billing@fido.ca>`, "Fido"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractCompany(tt.from); got != tt.want {
				t.Errorf("extractCompany(%q) = %q, want %q", tt.from, got, tt.want)
			}
		})
	}
}

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *float64
	}{
		{"plain amount", "pay $42.50 now", ptr(42.50)},
		{"thousands separator", "balance of $1,234.56", ptr(1234.56)},
		{"below plausible range skipped", "a $2 fee applies, total $95.00", ptr(95.00)},
		{"above plausible range skipped", "win $1,000,000 today", nil},
		{"no amount", "your account was updated", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractAmount(tt.text)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("extractAmount(%q) = %v, want nil", tt.text, *got)
			case tt.want != nil && (got == nil || math.Abs(*got-*tt.want) > 0.001):
				t.Errorf("extractAmount(%q) = %v, want %v", tt.text, got, *tt.want)
			}
		})
	}
}

func TestExtractDueDatePriority(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"due by phrase", "your bill is due by September 3, 2025", "September 3, 2025"},
		{"due date colon", "Due date: 09/03/2025", "09/03/2025"},
		{"payment due phrase", "Payment due: 10/15/2025", "10/15/2025"},
		{"bare slash date", "statement generated 08/01/2025", "08/01/2025"},
		{"explicit phrase beats bare date", "issued 01/01/2025, due on 02/02/2025", "02/02/2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractDueDate(tt.text)
			if got == nil || *got != tt.want {
				t.Errorf("extractDueDate(%q) = %v, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"hydro is utilities", "toronto hydro statement", "utilities"},
		{"cable resolves to internet by table order", "your cable package invoice", "internet"},
		{"netflix is subscription", "netflix payment received", "subscription"},
		{"visa is credit-card", "your visa minimum payment", "credit-card"},
		{"rent is housing", "rent receipt for july", "housing"},
		{"unknown is other", "hello from your cousin", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Categorize(tt.text); got != tt.want {
				t.Errorf("Categorize(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestScanMessagesThreshold(t *testing.T) {
	msgs := []Message{
		{
			ID:      "m1",
			From:    "billing@rogers.com",
			Subject: "Your Rogers bill is ready",
			Date:    "2025-08-01",
			Snippet: "Amount due: $89.99, due by August 15, 2025",
		},
		{
			ID:      "m2",
			From:    "friend@gmail.com",
			Subject: "lunch tomorrow?",
			Snippet: "see you at noon",
		},
	}

	got := ScanMessages(msgs)
	if len(got) != 1 {
		t.Fatalf("surfaced %d candidates, want 1", len(got))
	}
	if got[0].ID != "m1" {
		t.Errorf("surfaced %q, want m1", got[0].ID)
	}
	if got[0].Date != "2025-08-01" {
		t.Errorf("date = %q, want the message date", got[0].Date)
	}
}

func TestExtractConfidenceCap(t *testing.T) {
	// Pile every signal on: confidence must cap at 1.0.
	got := Extract(
		"noreply-billing-invoice-payment-statement-support-notifications@rbc.com",
		"invoice bill statement balance utility hydro rogers bell telus insurance mortgage visa",
		"amount due $250.00 payment due: 09/01/2025",
	)
	if got.Confidence > 1.0 {
		t.Errorf("confidence = %v, want capped at 1.0", got.Confidence)
	}
	if got.Confidence < 1.0-1e-9 {
		t.Errorf("confidence = %v, want cap reached with every signal firing", got.Confidence)
	}
}
