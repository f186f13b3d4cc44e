package history

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/neo-assistant/portfolio-chat/internal/domain"
)

type mockStore struct {
	lpushFn  func(ctx context.Context, key string, values ...string) error
	lrangeFn func(ctx context.Context, key string, start, stop int64) ([]string, error)
	llenFn   func(ctx context.Context, key string) (int64, error)
}

func (m *mockStore) LPush(ctx context.Context, key string, values ...string) error {
	if m.lpushFn != nil {
		return m.lpushFn(ctx, key, values...)
	}
	return nil
}

func (m *mockStore) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	if m.lrangeFn != nil {
		return m.lrangeFn(ctx, key, start, stop)
	}
	return nil, nil
}

func (m *mockStore) LLen(ctx context.Context, key string) (int64, error) {
	if m.llenFn != nil {
		return m.llenFn(ctx, key)
	}
	return 0, nil
}

func newTestRepo() (*Repo, *mockStore) {
	ms := &mockStore{}
	repo := New(ms, "neochat:")
	repo.now = func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return repo, ms
}

func mustMarshalTurn(t *testing.T, turn domain.ConversationTurn) string {
	t.Helper()
	data, err := json.Marshal(turn)
	if err != nil {
		t.Fatalf("marshal turn: %v", err)
	}
	return string(data)
}

func TestAppend_StoresJSONTurn(t *testing.T) {
	repo, ms := newTestRepo()
	ctx := context.Background()

	var gotKey string
	var gotValue string
	ms.lpushFn = func(_ context.Context, key string, values ...string) error {
		gotKey = key
		if len(values) != 1 {
			t.Fatalf("expected one value, got %d", len(values))
		}
		gotValue = values[0]
		return nil
	}

	id, err := repo.Append(ctx, "sess-1", "hello", "hi there", map[string]string{"intent": "GREETING"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated message ID")
	}
	if gotKey != "neochat:session:sess-1" {
		t.Errorf("unexpected key: %s", gotKey)
	}

	var turn domain.ConversationTurn
	if err := json.Unmarshal([]byte(gotValue), &turn); err != nil {
		t.Fatalf("stored value is not a JSON turn: %v", err)
	}
	if turn.MessageID != id {
		t.Errorf("message ID mismatch: %s vs %s", turn.MessageID, id)
	}
	if turn.UserMessage != "hello" || turn.BotResponse != "hi there" {
		t.Errorf("unexpected turn content: %+v", turn)
	}
	if turn.Metadata["intent"] != "GREETING" {
		t.Errorf("metadata not preserved: %v", turn.Metadata)
	}
	if !turn.Timestamp.Equal(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected timestamp: %v", turn.Timestamp)
	}
}

func TestAppend_StoreError(t *testing.T) {
	repo, ms := newTestRepo()
	ms.lpushFn = func(_ context.Context, _ string, _ ...string) error {
		return errors.New("connection reset")
	}
	_, err := repo.Append(context.Background(), "sess-1", "hello", "hi", nil)
	if err == nil {
		t.Fatal("expected error on store failure")
	}
}

func TestHistory_ChronologicalOrder(t *testing.T) {
	repo, ms := newTestRepo()
	ctx := context.Background()

	// The list is newest-first on disk.
	newest := mustMarshalTurn(t, domain.ConversationTurn{MessageID: "3", UserMessage: "third"})
	middle := mustMarshalTurn(t, domain.ConversationTurn{MessageID: "2", UserMessage: "second"})
	oldest := mustMarshalTurn(t, domain.ConversationTurn{MessageID: "1", UserMessage: "first"})

	ms.lrangeFn = func(_ context.Context, key string, start, stop int64) ([]string, error) {
		if key != "neochat:session:sess-1" {
			t.Errorf("unexpected key: %s", key)
		}
		if start != 0 || stop != 2 {
			t.Errorf("unexpected range: %d..%d", start, stop)
		}
		return []string{newest, middle, oldest}, nil
	}

	turns, err := repo.History(ctx, "sess-1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	for i, want := range []string{"1", "2", "3"} {
		if turns[i].MessageID != want {
			t.Errorf("turn %d: expected ID %s, got %s", i, want, turns[i].MessageID)
		}
	}
}

func TestHistory_DefaultLimit(t *testing.T) {
	repo, ms := newTestRepo()

	var gotStop int64
	ms.lrangeFn = func(_ context.Context, _ string, _, stop int64) ([]string, error) {
		gotStop = stop
		return nil, nil
	}

	if _, err := repo.History(context.Background(), "sess-1", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotStop != 9 {
		t.Fatalf("expected default window of 10 (stop=9), got stop=%d", gotStop)
	}
}

func TestHistory_SkipsCorruptEntries(t *testing.T) {
	repo, ms := newTestRepo()

	good := mustMarshalTurn(t, domain.ConversationTurn{MessageID: "1", UserMessage: "ok"})
	ms.lrangeFn = func(_ context.Context, _ string, _, _ int64) ([]string, error) {
		return []string{good, "{broken"}, nil
	}

	turns, err := repo.History(context.Background(), "sess-1", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(turns) != 1 || turns[0].MessageID != "1" {
		t.Fatalf("expected the one valid turn, got %+v", turns)
	}
}

func TestHistory_RoundTrip(t *testing.T) {
	repo, ms := newTestRepo()
	ctx := context.Background()

	// In-memory list with LPUSH semantics.
	var list []string
	ms.lpushFn = func(_ context.Context, _ string, values ...string) error {
		list = append(values, list...)
		return nil
	}
	ms.lrangeFn = func(_ context.Context, _ string, start, stop int64) ([]string, error) {
		if stop >= int64(len(list)) {
			stop = int64(len(list)) - 1
		}
		if start > stop {
			return nil, nil
		}
		return list[start : stop+1], nil
	}

	for _, msg := range []string{"first", "second", "third"} {
		if _, err := repo.Append(ctx, "sess-1", msg, "reply to "+msg, nil); err != nil {
			t.Fatalf("append %s: %v", msg, err)
		}
	}

	turns, err := repo.History(ctx, "sess-1", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	for i, want := range []string{"first", "second", "third"} {
		if turns[i].UserMessage != want {
			t.Errorf("turn %d: expected %q, got %q", i, want, turns[i].UserMessage)
		}
	}
}

func TestCount(t *testing.T) {
	repo, ms := newTestRepo()
	ms.llenFn = func(_ context.Context, key string) (int64, error) {
		if key != "neochat:session:sess-9" {
			t.Errorf("unexpected key: %s", key)
		}
		return 7, nil
	}
	n, err := repo.Count(context.Background(), "sess-9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 7 {
		t.Fatalf("expected 7, got %d", n)
	}
}
