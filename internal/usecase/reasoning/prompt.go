package reasoning

import (
	"fmt"
	"strings"

	"github.com/neo-assistant/portfolio-chat/internal/domain"
)

// maxContextDocs bounds how many retrieved documents reach the prompt. The
// ranked prefix is taken as-is; the list is never re-sorted here.
const maxContextDocs = 4

const noContextLine = "No specific context available."

// buildPrompt assembles the generation prompt from the query, the detected
// intent and the ranked context documents.
func buildPrompt(assistantName, query, intent string, contextDocs []domain.SearchResult) string {
	switch intent {
	case domain.IntentGreeting:
		return fmt.Sprintf(
			"You are %s, a friendly portfolio assistant. The user greeted you. "+
				"Respond warmly in one or two sentences and invite them to ask about "+
				"projects, skills or experience.\n\nUser: %s\nAssistant:",
			assistantName, query)
	case domain.IntentFarewell:
		return fmt.Sprintf(
			"You are %s, a friendly portfolio assistant. The user is saying goodbye. "+
				"Respond with a short, warm farewell.\n\nUser: %s\nAssistant:",
			assistantName, query)
	}

	return fmt.Sprintf(
		"You are %s, a portfolio assistant. Answer the question using only the "+
			"context below. Be concise and factual; if the context does not cover "+
			"the question, say so instead of guessing.\n\n"+
			"Context:\n%s\n\nQuestion: %s\nAnswer:",
		assistantName, formatContext(contextDocs), query)
}

// formatContext renders the top documents as "name: content" lines.
func formatContext(docs []domain.SearchResult) string {
	if len(docs) == 0 {
		return noContextLine
	}
	if len(docs) > maxContextDocs {
		docs = docs[:maxContextDocs]
	}

	lines := make([]string, 0, len(docs))
	for _, doc := range docs {
		name := doc.Metadata["name"]
		if name == "" {
			name = "Content"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", name, doc.Content))
	}
	return strings.Join(lines, "\n")
}
