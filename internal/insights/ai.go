package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mybillport/billport/internal/models"
)

// TextGenerator produces free text from a prompt. The production
// implementation calls an external generative-text API; tests substitute
// a canned generator.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AIAnalyzer delegates insight phrasing to a generative-text service and
// falls back to the deterministic computation on any failure. Callers never
// see the raw external error, only an Insight whose Source says which path
// produced it.
type AIAnalyzer struct {
	gen TextGenerator
}

// NewAIAnalyzer wraps a text generator.
func NewAIAnalyzer(gen TextGenerator) *AIAnalyzer {
	return &AIAnalyzer{gen: gen}
}

// Analyze returns an AI-phrased Insight when the generator succeeds and
// produces a well-formed payload, and the deterministic Insight otherwise.
// Histories below two bills never reach the generator.
func (a *AIAnalyzer) Analyze(ctx context.Context, history []BillRecord) models.Insight {
	fallback := Analyze(history)
	if a == nil || a.gen == nil || len(history) < 2 {
		return fallback
	}

	raw, err := a.gen.Generate(ctx, buildPrompt(history, fallback))
	if err != nil {
		slog.Warn("insight generation unavailable, using deterministic result", "error", err)
		return fallback
	}

	insight, err := parseInsight(raw)
	if err != nil {
		slog.Warn("insight response unusable, using deterministic result", "error", err)
		return fallback
	}
	insight.Source = models.SourceAI
	return insight
}

// buildPrompt asks for a JSON object in exactly the Insight wire shape,
// seeding the model with the deterministic numbers so it rephrases rather
// than recomputes.
func buildPrompt(history []BillRecord, det models.Insight) string {
	var b strings.Builder
	b.WriteString("You are a personal finance assistant. Given this bill history for one biller, ")
	b.WriteString("respond with ONLY a JSON object with keys summary, trend, tips (array of strings), ")
	b.WriteString("percentChange, avgAmount, minAmount, maxAmount. Keep the numeric values exactly as provided.\n\n")
	fmt.Fprintf(&b, "Computed stats: avg=%.2f min=%.2f max=%.2f trend=%q", det.AvgAmount, det.MinAmount, det.MaxAmount, det.Trend)
	if det.PercentChange != nil {
		fmt.Fprintf(&b, " percentChange=%.1f", *det.PercentChange)
	}
	b.WriteString("\nBills (oldest first):\n")
	for _, rec := range history {
		fmt.Fprintf(&b, "- %s $%.2f %s\n", rec.DueDate.Format("2006-01-02"), rec.Amount, rec.Status)
	}
	return b.String()
}

// parseInsight extracts the first JSON object from the response text and
// validates the fields callers depend on. Models tend to wrap JSON in prose
// or code fences, so the parse is by brace-matching, not whole-body decode.
// The amount fields decode through pointers so an omitted field is
// distinguishable from a legitimate zero; percentChange alone may be null.
func parseInsight(raw string) (models.Insight, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return models.Insight{}, fmt.Errorf("no JSON object in response")
	}

	var payload struct {
		Summary       string   `json:"summary"`
		Trend         string   `json:"trend"`
		Tips          []string `json:"tips"`
		PercentChange *float64 `json:"percentChange"`
		AvgAmount     *float64 `json:"avgAmount"`
		MinAmount     *float64 `json:"minAmount"`
		MaxAmount     *float64 `json:"maxAmount"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return models.Insight{}, fmt.Errorf("decode insight: %w", err)
	}
	if strings.TrimSpace(payload.Summary) == "" {
		return models.Insight{}, fmt.Errorf("missing summary")
	}
	if strings.TrimSpace(payload.Trend) == "" {
		return models.Insight{}, fmt.Errorf("missing trend")
	}
	if len(payload.Tips) == 0 {
		return models.Insight{}, fmt.Errorf("missing tips")
	}
	if payload.AvgAmount == nil || payload.MinAmount == nil || payload.MaxAmount == nil {
		return models.Insight{}, fmt.Errorf("missing amount fields")
	}
	return models.Insight{
		Summary:       payload.Summary,
		Trend:         payload.Trend,
		Tips:          payload.Tips,
		PercentChange: payload.PercentChange,
		AvgAmount:     *payload.AvgAmount,
		MinAmount:     *payload.MinAmount,
		MaxAmount:     *payload.MaxAmount,
	}, nil
}

// AnthropicClient calls an Anthropic-style messages endpoint.
type AnthropicClient struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewAnthropicClient builds a client. timeout bounds the whole request;
// hitting it is just another fallback condition for AIAnalyzer.
func NewAnthropicClient(endpoint, apiKey, model string, timeout time.Duration) *AnthropicClient {
	return &AnthropicClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Generate sends the prompt and returns the first text block of the reply.
func (c *AnthropicClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:     c.model,
		MaxTokens: 1024,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("generation endpoint returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	for _, block := range parsed.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("response contained no text block")
}
