package models

// InsightSource tags which path produced an Insight.
type InsightSource string

const (
	SourceDeterministic InsightSource = "deterministic"
	SourceAI            InsightSource = "ai"
)

// Insight is the spending analysis for one biller's bill history.
// This exact JSON shape is relied on by clients and must round-trip
// unchanged through the generative-text path.
type Insight struct {
	Summary       string        `json:"summary"`
	Trend         string        `json:"trend"`
	Tips          []string      `json:"tips"`
	PercentChange *float64      `json:"percentChange"`
	AvgAmount     float64       `json:"avgAmount"`
	MinAmount     float64       `json:"minAmount"`
	MaxAmount     float64       `json:"maxAmount"`
	Source        InsightSource `json:"source"`
}
