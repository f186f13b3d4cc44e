package reasoning

import "strings"

// Query complexity buckets.
const (
	ComplexitySimple   = "SIMPLE"
	ComplexityModerate = "MODERATE"
	ComplexityComplex  = "COMPLEX"
)

// Suggested handling strategies.
const (
	StrategyDirectResponse = "DIRECT_RESPONSE"
	StrategyRAGWithContext = "RAG_WITH_CONTEXT"
	StrategyConversational = "CONVERSATIONAL"
)

// Estimated response types, paired with the strategy.
const (
	ResponseTypeGreeting       = "GREETING"
	ResponseTypeFarewell       = "FAREWELL"
	ResponseTypeInformative    = "INFORMATIVE"
	ResponseTypeConversational = "CONVERSATIONAL"
)

// Analysis is a cheap, rule-based read of an incoming query. It costs no
// model call and gives the orchestrator a routing hint.
type Analysis struct {
	Complexity        string
	RequiresContext   bool
	WordCount         int
	SuggestedStrategy string
	ResponseType      string
}

var questionWords = map[string]bool{
	"what": true, "who": true, "where": true, "when": true,
	"why": true, "how": true, "which": true,
}

var greetingWords = map[string]bool{
	"hi": true, "hello": true, "hey": true, "greetings": true,
}

var farewellWords = map[string]bool{
	"bye": true, "goodbye": true, "farewell": true, "thanks": true,
}

// Analyze classifies a query by size and shape. A question word anywhere in
// the query marks it as needing retrieved context, not just at the start:
// "tell me about what you built" still retrieves.
func Analyze(query string) Analysis {
	lower := strings.ToLower(strings.TrimSpace(query))
	words := strings.Fields(lower)
	for i, w := range words {
		words[i] = strings.Trim(w, ".,!?")
	}

	a := Analysis{WordCount: len(words)}

	switch {
	case len(words) <= 5:
		a.Complexity = ComplexitySimple
	case len(words) <= 15:
		a.Complexity = ComplexityModerate
	default:
		a.Complexity = ComplexityComplex
	}

	for _, w := range words {
		if questionWords[w] {
			a.RequiresContext = true
			break
		}
	}

	switch {
	case containsAny(words, greetingWords):
		a.SuggestedStrategy = StrategyDirectResponse
		a.ResponseType = ResponseTypeGreeting
	case containsAny(words, farewellWords) || strings.Contains(lower, "see you"):
		a.SuggestedStrategy = StrategyDirectResponse
		a.ResponseType = ResponseTypeFarewell
	case a.RequiresContext:
		a.SuggestedStrategy = StrategyRAGWithContext
		a.ResponseType = ResponseTypeInformative
	default:
		a.SuggestedStrategy = StrategyConversational
		a.ResponseType = ResponseTypeConversational
	}
	return a
}

func containsAny(words []string, set map[string]bool) bool {
	for _, w := range words {
		if set[w] {
			return true
		}
	}
	return false
}
