package domain

// Domain is a logical partition of the document collection. Each domain has
// its own vector index; membership is a partition, not overlapping.
type Domain string

const (
	// DomainAssistant holds facts about the bot itself.
	DomainAssistant Domain = "assistant"
	// DomainPortfolio holds facts about the portfolio subject.
	DomainPortfolio Domain = "portfolio"
	// DomainKnowledge holds general background facts.
	DomainKnowledge Domain = "knowledge"
)

// AllDomains returns the three domains in canonical order.
func AllDomains() []Domain {
	return []Domain{DomainAssistant, DomainPortfolio, DomainKnowledge}
}

// ValidDomain reports whether d names a known domain.
func ValidDomain(d Domain) bool {
	switch d {
	case DomainAssistant, DomainPortfolio, DomainKnowledge:
		return true
	}
	return false
}

// Document is a stored knowledge item within one domain. Metadata carries a
// schema-like type tag ("@type"), display name, and provenance fields.
type Document struct {
	ID       string            `json:"id,omitempty"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Vector   []float32         `json:"embedding,omitempty"`
}

// Name returns the display name from metadata, or "Unknown".
func (d *Document) Name() string {
	if n := d.Metadata["name"]; n != "" {
		return n
	}
	return "Unknown"
}

// Type returns the "@type" metadata tag, or "Content".
func (d *Document) Type() string {
	if t := d.Metadata["@type"]; t != "" {
		return t
	}
	return "Content"
}

// SearchResult is a Document projection returned per domain: content,
// metadata and a similarity score in [0,1]. Raw vectors are never exposed.
type SearchResult struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Score    float64           `json:"score"`
	Domain   Domain            `json:"domain,omitempty"`
}

// MultiSearchResult groups per-domain result sets. Each slice is already
// sorted by descending score; merge logic may only concatenate and truncate,
// never reorder within a domain.
type MultiSearchResult struct {
	Assistant []SearchResult
	Portfolio []SearchResult
	Knowledge []SearchResult
	// Partial is set when at least one requested domain's backend failed and
	// its results were substituted with an empty list.
	Partial bool
}

// TotalCount returns the number of results across all domains.
func (m *MultiSearchResult) TotalCount() int {
	return len(m.Assistant) + len(m.Portfolio) + len(m.Knowledge)
}

// ByDomain returns the result list for the given domain.
func (m *MultiSearchResult) ByDomain(d Domain) []SearchResult {
	switch d {
	case DomainAssistant:
		return m.Assistant
	case DomainPortfolio:
		return m.Portfolio
	case DomainKnowledge:
		return m.Knowledge
	}
	return nil
}
