package orchestrator

import (
	"testing"

	"github.com/neo-assistant/portfolio-chat/internal/client"
)

func TestClassifyMergeStrategy(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Strategy
	}{
		{"identity who are you", "Who are you exactly?", StrategyIdentity},
		{"identity assistant name", "What is Neo?", StrategyIdentity},
		{"hiring hire", "Can I hire you?", StrategyHiring},
		{"hiring work", "What kind of work do you do?", StrategyHiring},
		{"hiring project", "Tell me about a recent project", StrategyHiring},
		{"default", "What is RAG?", StrategyDefault},
		{"default skills", "What are your skills?", StrategyDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyMergeStrategy(tt.query, "Neo"); got != tt.want {
				t.Errorf("classifyMergeStrategy(%q) = %s, want %s", tt.query, got, tt.want)
			}
		})
	}
}

func TestClassifyMergeStrategy_NameConfigurable(t *testing.T) {
	if got := classifyMergeStrategy("what is atlas?", "Atlas"); got != StrategyIdentity {
		t.Fatalf("expected identity for configured name, got %s", got)
	}
	if got := classifyMergeStrategy("what is atlas?", "Neo"); got == StrategyIdentity {
		t.Fatal("identity matched the wrong assistant name")
	}
}

func tagged(domain string, n int) []client.SearchResultItem {
	items := make([]client.SearchResultItem, n)
	for i := range items {
		items[i] = client.SearchResultItem{
			Content: domain,
			Domain:  domain,
			Score:   1.0 - float64(i)*0.1,
		}
	}
	return items
}

func domains(items []client.SearchResultItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Domain
	}
	return out
}

func TestMergeContext_Identity(t *testing.T) {
	res := client.MultiSearchResponse{
		Assistant: tagged("assistant", 3),
		Portfolio: tagged("portfolio", 3),
		Knowledge: tagged("knowledge", 3),
	}

	merged := mergeContext(res, StrategyIdentity, 10)
	want := []string{"assistant", "assistant", "assistant", "portfolio", "portfolio", "knowledge"}
	got := domains(merged)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %v, want %v", i, got, want)
		}
	}
}

func TestMergeContext_Hiring(t *testing.T) {
	res := client.MultiSearchResponse{
		Assistant: tagged("assistant", 3),
		Portfolio: tagged("portfolio", 2),
		Knowledge: tagged("knowledge", 2),
	}

	merged := mergeContext(res, StrategyHiring, 10)
	want := []string{"portfolio", "portfolio", "assistant", "knowledge"}
	got := domains(merged)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %v, want %v", i, got, want)
		}
	}
}

func TestMergeContext_Default(t *testing.T) {
	res := client.MultiSearchResponse{
		Assistant: tagged("assistant", 1),
		Portfolio: tagged("portfolio", 1),
		Knowledge: tagged("knowledge", 1),
	}

	got := domains(mergeContext(res, StrategyDefault, 10))
	want := []string{"portfolio", "assistant", "knowledge"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestMergeContext_TruncatesToTopK(t *testing.T) {
	res := client.MultiSearchResponse{
		Assistant: tagged("assistant", 3),
		Portfolio: tagged("portfolio", 3),
		Knowledge: tagged("knowledge", 3),
	}

	merged := mergeContext(res, StrategyDefault, 5)
	if len(merged) != 5 {
		t.Fatalf("expected 5 docs, got %d", len(merged))
	}
	// the prefix survives: all portfolio docs, then the first two assistant
	got := domains(merged)
	want := []string{"portfolio", "portfolio", "portfolio", "assistant", "assistant"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestMergeContext_WithinDomainOrderPreserved(t *testing.T) {
	res := client.MultiSearchResponse{
		Portfolio: []client.SearchResultItem{
			{Content: "first", Score: 0.9, Domain: "portfolio"},
			{Content: "second", Score: 0.7, Domain: "portfolio"},
			{Content: "third", Score: 0.5, Domain: "portfolio"},
		},
	}

	merged := mergeContext(res, StrategyDefault, 10)
	for i, want := range []string{"first", "second", "third"} {
		if merged[i].Content != want {
			t.Fatalf("order broken at %d: %v", i, merged)
		}
	}
}

func TestMergeContext_EmptyDomains(t *testing.T) {
	merged := mergeContext(client.MultiSearchResponse{}, StrategyIdentity, 5)
	if len(merged) != 0 {
		t.Fatalf("expected empty merge, got %v", merged)
	}
}
