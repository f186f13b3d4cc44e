package orchestrator

import (
	"strings"

	"github.com/neo-assistant/portfolio-chat/internal/client"
)

// Strategy selects how per-domain result sets are interleaved.
type Strategy string

const (
	// StrategyIdentity prioritizes facts about the assistant itself.
	StrategyIdentity Strategy = "identity"
	// StrategyHiring prioritizes portfolio work for hiring-flavored queries.
	StrategyHiring Strategy = "hiring"
	// StrategyDefault is the balanced ordering.
	StrategyDefault Strategy = "default"
)

var hiringKeywords = []string{"hire", "work", "project"}

// classifyMergeStrategy picks a strategy from surface features of the query.
// assistantName participates lowercased so "what is neo" style identity
// questions route correctly whatever the configured name is.
func classifyMergeStrategy(query, assistantName string) Strategy {
	q := strings.ToLower(query)

	if strings.Contains(q, "who are you") {
		return StrategyIdentity
	}
	if name := strings.ToLower(assistantName); name != "" &&
		strings.Contains(q, "what is "+name) {
		return StrategyIdentity
	}

	for _, kw := range hiringKeywords {
		if strings.Contains(q, kw) {
			return StrategyHiring
		}
	}
	return StrategyDefault
}

// mergeContext concatenates the per-domain lists in strategy order and
// truncates to topK. Each list is already sorted by descending score;
// merging never reorders within a domain and never re-scores across
// domains — domain priority is the ranking signal.
func mergeContext(res client.MultiSearchResponse, strategy Strategy, topK int) []client.SearchResultItem {
	var merged []client.SearchResultItem

	switch strategy {
	case StrategyIdentity:
		merged = append(merged, res.Assistant...)
		merged = append(merged, prefix(res.Portfolio, 2)...)
		merged = append(merged, prefix(res.Knowledge, 1)...)
	case StrategyHiring:
		merged = append(merged, res.Portfolio...)
		merged = append(merged, prefix(res.Assistant, 1)...)
		merged = append(merged, prefix(res.Knowledge, 1)...)
	default:
		merged = append(merged, res.Portfolio...)
		merged = append(merged, res.Assistant...)
		merged = append(merged, res.Knowledge...)
	}

	return prefix(merged, topK)
}

func prefix(items []client.SearchResultItem, n int) []client.SearchResultItem {
	if n < 0 {
		n = 0
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}
