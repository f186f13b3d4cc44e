package db

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName string
	Vector    []float32
	K         int
	// EFRuntime bounds the candidate pool explored by the approximate
	// search. Zero means the server default.
	EFRuntime int
	// TagFilters are ANDed equality pre-filters on tag fields.
	TagFilters   map[string]string
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
