// Package billmail scores email metadata for bill-likelihood and extracts
// the fields needed to prefill a bill: company, amount, due date, category.
//
// Classification is deterministic keyword/pattern matching over the From
// header, subject and snippet. The same inputs always produce the same
// candidate; nothing here performs I/O.
package billmail

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mybillport/billport/internal/models"
)

// Confidence weights. Each independent signal adds its weight; the total
// is capped at 1.0.
const (
	keywordWeight = 0.1
	senderWeight  = 0.15
	amountWeight  = 0.2
	dueDateWeight = 0.1

	// MinConfidence is the surfacing threshold: candidates at or below it
	// are dropped silently.
	MinConfidence = 0.3

	// Plausible one-bill amount range, in dollars. Matches outside it are
	// ignored rather than treated as the bill amount.
	minPlausibleAmount = 5
	maxPlausibleAmount = 10000
)

// billKeywords is the bill-related vocabulary. Includes common Canadian
// utility, telecom and bank brands since those dominate the inbox traffic
// this feature targets.
var billKeywords = []string{
	"invoice", "bill", "statement", "payment due", "amount due", "balance",
	"utility", "hydro", "enbridge", "rogers", "bell", "telus", "fido", "koodo",
	"shaw", "videotron", "netflix", "spotify", "insurance", "mortgage", "rent",
	"visa", "mastercard", "rbc", "td", "scotiabank", "bmo", "cibc",
}

// senderPatterns are tokens that mark transactional billing senders.
var senderPatterns = []string{
	"noreply", "no-reply", "billing", "invoice", "payment", "statement",
	"customerservice", "support", "notifications",
}

var (
	amountRe = regexp.MustCompile(`\$\s?(\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?|\d+(?:\.\d{1,2})?)`)

	// Due-date patterns in priority order; the first match wins.
	dueDateRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)due\s+(?:date|by|on)[:\s]+([A-Za-z]+\s+\d{1,2},?\s+\d{4}|\d{1,2}/\d{1,2}/\d{2,4})`),
		regexp.MustCompile(`(?i)payment\s+due[:\s]+([A-Za-z]+\s+\d{1,2},?\s+\d{4}|\d{1,2}/\d{1,2}/\d{2,4})`),
		regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`),
	}

	displayNameRe = regexp.MustCompile(`^\s*"?([^"<]+?)"?\s*<[^>]+>`)
	emailRe       = regexp.MustCompile(`[A-Za-z0-9._%+-]+@([A-Za-z0-9.-]+)`)
)

// categoryRule maps keywords to a category. Order matters: keyword sets
// overlap ("cable" implies internet here, not subscription) and the first
// matching rule wins.
type categoryRule struct {
	category string
	keywords []string
}

var categoryRules = []categoryRule{
	{"utilities", []string{"hydro", "electric", "gas", "water", "enbridge", "utility"}},
	{"phone", []string{"mobile", "wireless", "rogers", "bell", "telus", "fido", "koodo"}},
	{"internet", []string{"internet", "cable", "fibe", "shaw", "videotron"}},
	{"insurance", []string{"insurance", "policy", "premium"}},
	{"subscription", []string{"netflix", "spotify", "subscription", "membership", "prime"}},
	{"credit-card", []string{"credit card", "visa", "mastercard", "amex", "minimum payment"}},
	{"banking", []string{"bank", "rbc", "scotiabank", "bmo", "cibc", "account statement"}},
	{"housing", []string{"rent", "mortgage", "lease", "condo fee"}},
}

const defaultCategory = "other"

// Message is the raw email metadata handed to the extractor.
type Message struct {
	ID      string `json:"id"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Date    string `json:"date"`
	Snippet string `json:"snippet"`
}

// Extract scores one message and pulls out the bill fields it can find.
// Malformed amounts or dates degrade to "no match" for that signal; the
// extractor never fails on bad-but-present data.
func Extract(from, subject, snippet string) models.EmailBillCandidate {
	combined := strings.ToLower(subject + " " + snippet)
	fromLower := strings.ToLower(from)

	confidence := 0.0
	for _, kw := range billKeywords {
		if strings.Contains(combined, kw) {
			confidence += keywordWeight
		}
	}
	for _, pat := range senderPatterns {
		if strings.Contains(fromLower, pat) {
			confidence += senderWeight
		}
	}

	amount := extractAmount(subject + " " + snippet)
	if amount != nil {
		confidence += amountWeight
	}

	dueDate := extractDueDate(subject + " " + snippet)
	if dueDate != nil {
		confidence += dueDateWeight
	}

	if confidence > 1.0 {
		confidence = 1.0
	}

	return models.EmailBillCandidate{
		From:       from,
		Subject:    subject,
		Snippet:    snippet,
		Company:    extractCompany(from),
		Amount:     amount,
		DueDate:    dueDate,
		Category:   Categorize(fromLower + " " + combined),
		Confidence: confidence,
	}
}

// ScanMessages runs Extract over a batch and keeps only candidates above
// the surfacing threshold. Dropped messages are not errors.
func ScanMessages(msgs []Message) []models.EmailBillCandidate {
	var out []models.EmailBillCandidate
	for _, msg := range msgs {
		cand := Extract(msg.From, msg.Subject, msg.Snippet)
		if cand.Confidence <= MinConfidence {
			continue
		}
		cand.ID = msg.ID
		if cand.ID == "" {
			cand.ID = uuid.New().String()
		}
		cand.Date = msg.Date
		out = append(out, cand)
	}
	return out
}

// extractAmount returns the first $-amount within the plausible bill range.
func extractAmount(text string) *float64 {
	for _, match := range amountRe.FindAllStringSubmatch(text, -1) {
		raw := strings.ReplaceAll(match[1], ",", "")
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if value >= minPlausibleAmount && value <= maxPlausibleAmount {
			return &value
		}
	}
	return nil
}

// extractDueDate returns the first due-date-looking token, checking the
// patterns in documented priority order.
func extractDueDate(text string) *string {
	for _, re := range dueDateRes {
		if m := re.FindStringSubmatch(text); m != nil {
			date := strings.TrimSpace(m[1])
			return &date
		}
	}
	return nil
}

// extractCompany prefers the display name in the From header; when absent
// (or when the "display name" is itself an address) it falls back to the
// capitalized second-level domain of the sender.
func extractCompany(from string) string {
	if m := displayNameRe.FindStringSubmatch(from); m != nil {
		name := strings.TrimSpace(m[1])
		if name != "" && !strings.Contains(name, "@") {
			return name
		}
	}
	if m := emailRe.FindStringSubmatch(from); m != nil {
		parts := strings.Split(m[1], ".")
		if len(parts) >= 2 {
			return capitalize(parts[len(parts)-2])
		}
		if len(parts) == 1 && parts[0] != "" {
			return capitalize(parts[0])
		}
	}
	return ""
}

// Categorize maps free text (a merchant name, sender, or subject line) to
// the first matching category. Shared with the recurring detector so both
// suggestion paths label candidates the same way.
func Categorize(text string) string {
	text = strings.ToLower(text)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.category
			}
		}
	}
	return defaultCategory
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
