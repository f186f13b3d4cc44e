package orchestrator

import (
	"context"

	"go.uber.org/zap"

	"github.com/neo-assistant/portfolio-chat/internal/client"
)

// mockPerception is the hand-rolled perception client for tests.
type mockPerception struct {
	embedFunc    func(ctx context.Context, text string) (client.EmbedResponse, error)
	classifyFunc func(ctx context.Context, text string) (client.ClassifyResponse, error)
	healthFunc   func(ctx context.Context) error

	embedCalls    int
	classifyCalls int
}

func (m *mockPerception) Embed(ctx context.Context, text string) (client.EmbedResponse, error) {
	m.embedCalls++
	if m.embedFunc != nil {
		return m.embedFunc(ctx, text)
	}
	return client.EmbedResponse{Embedding: []float32{0.1, 0.2, 0.3}, Dimensions: 3}, nil
}

func (m *mockPerception) Classify(ctx context.Context, text string) (client.ClassifyResponse, error) {
	m.classifyCalls++
	if m.classifyFunc != nil {
		return m.classifyFunc(ctx, text)
	}
	return client.ClassifyResponse{Intent: "technical_question", Confidence: 0.9}, nil
}

func (m *mockPerception) Health(ctx context.Context) error {
	if m.healthFunc != nil {
		return m.healthFunc(ctx)
	}
	return nil
}

// mockMemory records store requests so fire-and-forget persistence can be
// asserted on.
type mockMemory struct {
	multiSearchFunc func(ctx context.Context, req client.MultiSearchRequest) (client.MultiSearchResponse, error)
	storeFunc       func(ctx context.Context, req client.StoreRequest) (client.StoreResponse, error)
	healthFunc      func(ctx context.Context) error

	searchCalls int
	stored      chan client.StoreRequest
}

func newMockMemory() *mockMemory {
	return &mockMemory{stored: make(chan client.StoreRequest, 1)}
}

func (m *mockMemory) MultiSearch(ctx context.Context, req client.MultiSearchRequest) (client.MultiSearchResponse, error) {
	m.searchCalls++
	if m.multiSearchFunc != nil {
		return m.multiSearchFunc(ctx, req)
	}
	return client.MultiSearchResponse{}, nil
}

func (m *mockMemory) Store(ctx context.Context, req client.StoreRequest) (client.StoreResponse, error) {
	if m.stored != nil {
		m.stored <- req
	}
	if m.storeFunc != nil {
		return m.storeFunc(ctx, req)
	}
	return client.StoreResponse{MessageID: "msg-1", Status: "stored"}, nil
}

func (m *mockMemory) Health(ctx context.Context) error {
	if m.healthFunc != nil {
		return m.healthFunc(ctx)
	}
	return nil
}

type mockReasoning struct {
	generateFunc func(ctx context.Context, req client.GenerateRequest) (client.GenerateResponse, error)
	healthFunc   func(ctx context.Context) error

	generateCalls int
	lastGenerate  client.GenerateRequest
}

func (m *mockReasoning) Generate(ctx context.Context, req client.GenerateRequest) (client.GenerateResponse, error) {
	m.generateCalls++
	m.lastGenerate = req
	if m.generateFunc != nil {
		return m.generateFunc(ctx, req)
	}
	return client.GenerateResponse{Response: "Here is a helpful answer.", Confidence: 0.8}, nil
}

func (m *mockReasoning) Health(ctx context.Context) error {
	if m.healthFunc != nil {
		return m.healthFunc(ctx)
	}
	return nil
}

type mockSafety struct {
	validateInputFunc  func(ctx context.Context, text string) (client.ValidateInputResponse, error)
	validateOutputFunc func(ctx context.Context, text string) (client.ValidateOutputResponse, error)
	healthFunc         func(ctx context.Context) error

	inputCalls  int
	outputCalls int
}

func (m *mockSafety) ValidateInput(ctx context.Context, text string) (client.ValidateInputResponse, error) {
	m.inputCalls++
	if m.validateInputFunc != nil {
		return m.validateInputFunc(ctx, text)
	}
	return client.ValidateInputResponse{IsSafe: true, FilteredText: text}, nil
}

func (m *mockSafety) ValidateOutput(ctx context.Context, text string) (client.ValidateOutputResponse, error) {
	m.outputCalls++
	if m.validateOutputFunc != nil {
		return m.validateOutputFunc(ctx, text)
	}
	return client.ValidateOutputResponse{IsSafe: true, Confidence: 1.0}, nil
}

func (m *mockSafety) Health(ctx context.Context) error {
	if m.healthFunc != nil {
		return m.healthFunc(ctx)
	}
	return nil
}

type testEnv struct {
	perception *mockPerception
	memory     *mockMemory
	reasoning  *mockReasoning
	safety     *mockSafety
	svc        *Service
}

func newTestEnv() *testEnv {
	env := &testEnv{
		perception: &mockPerception{},
		memory:     newMockMemory(),
		reasoning:  &mockReasoning{},
		safety:     &mockSafety{},
	}
	env.svc = New(
		env.perception, env.memory, env.reasoning, env.safety,
		Config{AssistantName: "Neo", TopK: 5, TopKPerDomain: 3},
		zap.NewNop(),
	)
	return env
}
