package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	generativelanguage "google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"

	"brokeaf/backend/models"
)

const (
	insightModel       = "models/gemini-2.5-flash"
	insightTemperature = 0.7
	insightSystem      = "You are an expert personal financial advisor. Your tone is encouraging, professional, and data-driven."

	// Shown to the user instead of an error. AI failures never become
	// hard failures.
	insightEmptyFallback = "Could not generate insights at this time."
	insightErrorFallback = "Error connecting to AI service. Please try again later."
)

// maxInsightTransactions caps how much of the transaction log goes
// into the prompt.
const maxInsightTransactions = 50

// InsightService turns a user's recent transactions into a prose
// summary through the Gemini API. The response is an opaque text blob
// passed straight to the caller.
type InsightService struct {
	models *generativelanguage.ModelsService
}

// NewInsightService builds the Gemini client. An empty API key
// returns a nil service; callers treat that as insights disabled.
func NewInsightService(ctx context.Context, apiKey string) (*InsightService, error) {
	if apiKey == "" {
		return nil, nil
	}
	svc, err := generativelanguage.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create generative language client: %w", err)
	}
	return &InsightService{models: svc.Models}, nil
}

// GenerateInsights asks the model for a spending summary. It always
// returns displayable text; service failures come back as the inline
// fallback message, never as an error.
func (s *InsightService) GenerateInsights(ctx context.Context, transactions []models.Transaction) string {
	if s == nil {
		return insightErrorFallback
	}

	req := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{
			{
				Role:  "user",
				Parts: []*generativelanguage.Part{{Text: buildInsightPrompt(transactions)}},
			},
		},
		SystemInstruction: &generativelanguage.Content{
			Parts: []*generativelanguage.Part{{Text: insightSystem}},
		},
		GenerationConfig: &generativelanguage.GenerationConfig{
			Temperature: insightTemperature,
		},
	}

	resp, err := s.models.GenerateContent(insightModel, req).Context(ctx).Do()
	if err != nil {
		log.Printf("Error generating insights: %v", err)
		return insightErrorFallback
	}

	text := responseText(resp)
	if text == "" {
		return insightEmptyFallback
	}
	return text
}

func buildInsightPrompt(transactions []models.Transaction) string {
	if len(transactions) > maxInsightTransactions {
		transactions = transactions[:maxInsightTransactions]
	}

	var lines []string
	for _, t := range transactions {
		amount := strconv.FormatFloat(t.Amount, 'f', -1, 64)
		lines = append(lines, fmt.Sprintf("%s: %s - ₹%s (%s) - %s",
			t.Date, strings.ToUpper(t.Type), amount, t.Category, t.Notes))
	}

	return fmt.Sprintf(`Analyze the following recent financial transactions for a personal finance app user in India (Currency: INR ₹).
Provide a concise, friendly, and actionable summary (max 300 words).

Structure your response with:
1. **Spending Patterns**: Highlight main expense categories or unusual spikes.
2. **Savings Potential**: Identify areas where they could cut back.
3. **Positive Feedback**: Acknowledge good habits (e.g., saving, regular income).

Transaction Log:
%s`, strings.Join(lines, "\n"))
}

func responseText(resp *generativelanguage.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var parts []string
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.Join(parts, "")
}
