package utils

import (
	"strings"
	"unicode/utf8"

	"www.github.com/Wanderer0074348/Yahmi/src/models"
)

// Pricing is the per-1M-token price of one service, in USD.
type Pricing struct {
	InputPer1M  float64
	OutputPer1M float64
}

// EstimateTokenCount estimates token count from text (rough approximation)
// More accurate: ~1 token per 4 characters for English
func EstimateTokenCount(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	tokenCount := utf8.RuneCountInString(text) / 4

	// Add some buffer for special tokens
	if tokenCount < 10 {
		tokenCount = 10
	}

	return tokenCount
}

// CalculateCost prices a call from its token counts.
func CalculateCost(inputTokens, outputTokens int, pricing Pricing) float64 {
	inputCost := float64(inputTokens) * pricing.InputPer1M / 1000000
	outputCost := float64(outputTokens) * pricing.OutputPer1M / 1000000
	return inputCost + outputCost
}

// EstimateUsage builds the usage record for one completion. Cache hits cost nothing.
func EstimateUsage(service, prompt, response string, pricing Pricing, cacheHit bool) *models.Usage {
	inputTokens := EstimateTokenCount(prompt)
	outputTokens := EstimateTokenCount(response)

	usage := &models.Usage{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  inputTokens + outputTokens,
		Service:      service,
	}
	if !cacheHit {
		usage.Cost = CalculateCost(inputTokens, outputTokens, pricing)
	}

	return usage
}
