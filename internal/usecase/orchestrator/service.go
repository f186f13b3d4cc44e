package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/neo-assistant/portfolio-chat/internal/client"
	"github.com/neo-assistant/portfolio-chat/internal/domain"
	"github.com/neo-assistant/portfolio-chat/internal/logger"
	"github.com/neo-assistant/portfolio-chat/internal/metrics"
)

// Canned bodies returned when a safety gate trips. The user never sees
// validator internals.
const (
	inputRefusal = "I can't help with that request. Please rephrase it and " +
		"I'll do my best to answer questions about the portfolio."
	outputRefusal = "I'm sorry, I couldn't produce a reliable answer to that. " +
		"Could you try asking in a different way?"
)

// PerceptionClient is the perception dependency surface.
type PerceptionClient interface {
	Embed(ctx context.Context, text string) (client.EmbedResponse, error)
	Classify(ctx context.Context, text string) (client.ClassifyResponse, error)
	Health(ctx context.Context) error
}

// MemoryClient is the memory dependency surface.
type MemoryClient interface {
	MultiSearch(ctx context.Context, req client.MultiSearchRequest) (client.MultiSearchResponse, error)
	Store(ctx context.Context, req client.StoreRequest) (client.StoreResponse, error)
	Health(ctx context.Context) error
}

// ReasoningClient is the reasoning dependency surface.
type ReasoningClient interface {
	Generate(ctx context.Context, req client.GenerateRequest) (client.GenerateResponse, error)
	Health(ctx context.Context) error
}

// SafetyClient is the safety dependency surface.
type SafetyClient interface {
	ValidateInput(ctx context.Context, text string) (client.ValidateInputResponse, error)
	ValidateOutput(ctx context.Context, text string) (client.ValidateOutputResponse, error)
	Health(ctx context.Context) error
}

// ChatInput is one user message. TopK overrides the configured context
// budget when positive.
type ChatInput struct {
	Query     string
	SessionID string
	TopK      int
}

// Source describes one context document that contributed to the answer.
type Source struct {
	Name  string
	Type  string
	Score float64
}

// ChatMetadata carries per-request pipeline facts back to the caller.
type ChatMetadata struct {
	Intent           string
	IntentConfidence float64
	ProcessingTimeMS int64
	SessionID        string
	ContextDocsFound int
	PartialRetrieval bool
}

// ChatOutput is the pipeline result.
type ChatOutput struct {
	Response string
	Sources  []Source
	Query    string
	Metadata ChatMetadata
}

// Config holds orchestration tunables.
type Config struct {
	AssistantName string
	TopK          int
	TopKPerDomain int
}

// Service drives the linear chat pipeline across the four dependencies:
// validate input, embed and classify, retrieve, merge, generate, validate
// output, persist, respond. Each dependency is called at most once per
// request and there are no retries.
type Service struct {
	perception PerceptionClient
	memory     MemoryClient
	reasoning  ReasoningClient
	safety     SafetyClient
	cfg        Config
	logger     *zap.Logger
}

// New creates the orchestrator service.
func New(
	p PerceptionClient, m MemoryClient, r ReasoningClient, s SafetyClient,
	cfg Config, log *zap.Logger,
) *Service {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.TopKPerDomain <= 0 {
		cfg.TopKPerDomain = 3
	}
	return &Service{
		perception: p,
		memory:     m,
		reasoning:  r,
		safety:     s,
		cfg:        cfg,
		logger:     log,
	}
}

// Chat runs one message through the full pipeline.
func (s *Service) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	start := time.Now()

	if in.Query == "" {
		return ChatOutput{}, fmt.Errorf("empty query: %w", domain.ErrInvalidRequest)
	}
	sessionID := in.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	log := logger.FromContext(ctx).With(zap.String("session_id", sessionID))

	// Gate first: unsafe input never reaches the downstream services.
	verdict, err := s.stageValidateInput(ctx, in.Query)
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("error").Inc()
		return ChatOutput{}, err
	}
	if !verdict.IsSafe {
		log.Warn("unsafe input refused", zap.Strings("issues", verdict.Issues))
		metrics.ChatRequestsTotal.WithLabelValues("refused_input").Inc()
		return ChatOutput{
			Response: inputRefusal,
			Query:    in.Query,
			Metadata: ChatMetadata{
				SessionID:        sessionID,
				ProcessingTimeMS: time.Since(start).Milliseconds(),
			},
		}, nil
	}

	embedding, classification, err := s.stagePerceive(ctx, in.Query, log)
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("error").Inc()
		return ChatOutput{}, err
	}

	searchRes, err := s.stageRetrieve(ctx, embedding)
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("error").Inc()
		return ChatOutput{}, err
	}
	if searchRes.Partial {
		log.Warn("retrieval degraded to partial results")
	}

	topK := in.TopK
	if topK <= 0 {
		topK = s.cfg.TopK
	}
	strategy := classifyMergeStrategy(in.Query, s.cfg.AssistantName)
	contextDocs := mergeContext(searchRes, strategy, topK)

	genRes, err := s.stageGenerate(ctx, in.Query, classification.Intent, contextDocs)
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("error").Inc()
		return ChatOutput{}, err
	}

	response := genRes.Response
	outcome := "answered"
	outVerdict, err := s.stageValidateOutput(ctx, response)
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("error").Inc()
		return ChatOutput{}, err
	}
	if !outVerdict.IsSafe {
		log.Warn("unsafe output replaced", zap.Strings("issues", outVerdict.Issues))
		response = outputRefusal
		outcome = "refused_output"
	}

	// Fire-and-forget persistence: the reply never waits on the log write,
	// and a dropped turn only loses history.
	s.storeDetached(ctx, sessionID, in.Query, response, classification.Intent, log)

	metrics.ChatRequestsTotal.WithLabelValues(outcome).Inc()
	return ChatOutput{
		Response: response,
		Sources:  buildSources(contextDocs),
		Query:    in.Query,
		Metadata: ChatMetadata{
			Intent:           classification.Intent,
			IntentConfidence: classification.Confidence,
			ProcessingTimeMS: time.Since(start).Milliseconds(),
			SessionID:        sessionID,
			ContextDocsFound: len(contextDocs),
			PartialRetrieval: searchRes.Partial,
		},
	}, nil
}

func (s *Service) stageValidateInput(ctx context.Context, query string) (client.ValidateInputResponse, error) {
	defer observeStage("validate_input")()
	res, err := s.safety.ValidateInput(ctx, query)
	if err != nil {
		return client.ValidateInputResponse{}, fmt.Errorf("validate input: %w", err)
	}
	return res, nil
}

// stagePerceive runs the embed and classify calls in parallel. Embedding
// failure is fatal; classification degrades to GENERAL_CONVERSATION since
// the pipeline can still answer without an intent.
func (s *Service) stagePerceive(
	ctx context.Context, query string, log *zap.Logger,
) ([]float32, client.ClassifyResponse, error) {
	defer observeStage("perceive")()

	var (
		embedRes    client.EmbedResponse
		embedErr    error
		classifyRes client.ClassifyResponse
		classifyErr error
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		classifyRes, classifyErr = s.perception.Classify(ctx, query)
	}()

	embedRes, embedErr = s.perception.Embed(ctx, query)
	<-done

	if embedErr != nil {
		return nil, client.ClassifyResponse{}, fmt.Errorf("embed query: %w", embedErr)
	}
	if classifyErr != nil {
		log.Warn("intent classification failed, using fallback", zap.Error(classifyErr))
		classifyRes = client.ClassifyResponse{Intent: domain.IntentConversation, Confidence: 0}
	}

	return embedRes.Embedding, classifyRes, nil
}

func (s *Service) stageRetrieve(ctx context.Context, embedding []float32) (client.MultiSearchResponse, error) {
	defer observeStage("retrieve")()
	res, err := s.memory.MultiSearch(ctx, client.MultiSearchRequest{
		Embedding:     embedding,
		TopKPerDomain: s.cfg.TopKPerDomain,
	})
	if err != nil {
		return client.MultiSearchResponse{}, fmt.Errorf("multi search: %w", err)
	}
	return res, nil
}

func (s *Service) stageGenerate(
	ctx context.Context, query, intent string, contextDocs []client.SearchResultItem,
) (client.GenerateResponse, error) {
	defer observeStage("generate")()
	res, err := s.reasoning.Generate(ctx, client.GenerateRequest{
		Query:   query,
		Intent:  intent,
		Context: contextDocs,
	})
	if err != nil {
		return client.GenerateResponse{}, fmt.Errorf("generate: %w", err)
	}
	return res, nil
}

func (s *Service) stageValidateOutput(ctx context.Context, text string) (client.ValidateOutputResponse, error) {
	defer observeStage("validate_output")()
	res, err := s.safety.ValidateOutput(ctx, text)
	if err != nil {
		return client.ValidateOutputResponse{}, fmt.Errorf("validate output: %w", err)
	}
	return res, nil
}

// storeDetached persists the turn on a detached context so the write
// survives the request ending. Failures are logged and dropped.
func (s *Service) storeDetached(
	ctx context.Context, sessionID, query, response, intent string, log *zap.Logger,
) {
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	go func() {
		defer cancel()
		_, err := s.memory.Store(storeCtx, client.StoreRequest{
			SessionID:   sessionID,
			UserMessage: query,
			BotResponse: response,
			Metadata:    map[string]string{"intent": intent},
		})
		if err != nil {
			log.Warn("failed to persist conversation turn", zap.Error(err))
		}
	}()
}

// Health fans out to all four dependencies in parallel.
func (s *Service) Health(ctx context.Context) map[string]error {
	type check struct {
		name string
		fn   func(context.Context) error
	}
	checks := []check{
		{"perception", s.perception.Health},
		{"memory", s.memory.Health},
		{"reasoning", s.reasoning.Health},
		{"safety", s.safety.Health},
	}

	results := make(map[string]error, len(checks))
	type outcome struct {
		name string
		err  error
	}
	ch := make(chan outcome, len(checks))
	for _, c := range checks {
		go func(c check) {
			ch <- outcome{c.name, c.fn(ctx)}
		}(c)
	}
	for range checks {
		o := <-ch
		results[o.name] = o.err
	}
	return results
}

func buildSources(docs []client.SearchResultItem) []Source {
	sources := make([]Source, 0, len(docs))
	for _, d := range docs {
		name := d.Metadata["name"]
		if name == "" {
			name = "Unknown"
		}
		typ := d.Metadata["@type"]
		if typ == "" {
			typ = "Content"
		}
		sources = append(sources, Source{Name: name, Type: typ, Score: d.Score})
	}
	return sources
}

func observeStage(stage string) func() {
	start := time.Now()
	return func() {
		metrics.PipelineStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}
