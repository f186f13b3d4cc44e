package document

import (
	"context"
	"fmt"

	"github.com/neo-assistant/portfolio-chat/internal/db"
	"github.com/neo-assistant/portfolio-chat/internal/domain"
)

// store is the consumer interface for documents (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Config holds index and candidate-pool tunables.
type Config struct {
	KeyPrefix           string
	Dimensions          int
	HNSWM               int
	HNSWEFConstruct     int
	MaxCandidates       int
	CandidateMultiplier int
}

// Repo implements usecase/memory.DocumentRepository over per-domain
// vector indexes.
type Repo struct {
	store store
	cfg   Config
}

// New creates a document repository.
func New(s store, cfg Config) *Repo {
	return &Repo{store: s, cfg: cfg}
}

// EnsureIndexes creates the vector index for every domain that does not
// have one yet. Existing indexes are left untouched.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	for _, d := range domain.AllDomains() {
		name := r.indexName(d)
		exists, err := r.store.IndexExists(ctx, name)
		if err != nil {
			return fmt.Errorf("check index %s: %w", name, err)
		}
		if exists {
			continue
		}
		def := r.indexDefinition(d)
		if err := r.store.CreateIndex(ctx, def); err != nil {
			return fmt.Errorf("create index %s: %w", name, err)
		}
	}
	return nil
}

// Upsert creates or replaces a single document in a domain.
func (r *Repo) Upsert(ctx context.Context, d domain.Domain, doc *domain.Document) error {
	if len(doc.Vector) != r.cfg.Dimensions {
		return fmt.Errorf("document %s: got %d dims, index has %d: %w",
			doc.ID, len(doc.Vector), r.cfg.Dimensions, domain.ErrVectorDimMismatch)
	}
	key := r.docKey(d, doc.ID)
	if err := r.store.HSet(ctx, key, buildFields(doc)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// UpsertBatch writes documents in one pipelined round trip.
func (r *Repo) UpsertBatch(ctx context.Context, d domain.Domain, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, 0, len(docs))
	for i := range docs {
		doc := &docs[i]
		if len(doc.Vector) != r.cfg.Dimensions {
			return fmt.Errorf("document %s: got %d dims, index has %d: %w",
				doc.ID, len(doc.Vector), r.cfg.Dimensions, domain.ErrVectorDimMismatch)
		}
		items = append(items, db.HashSetItem{
			Key:    r.docKey(d, doc.ID),
			Fields: buildFields(doc),
		})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset batch (%d docs): %w", len(items), err)
	}
	return nil
}

// Search runs a KNN query against one domain's index. Results come back
// ordered by descending similarity score.
func (r *Repo) Search(
	ctx context.Context, d domain.Domain, vector []float32, topK int, filters map[string]string,
) ([]domain.SearchResult, error) {
	if len(vector) != r.cfg.Dimensions {
		return nil, fmt.Errorf("query vector: got %d dims, index has %d: %w",
			len(vector), r.cfg.Dimensions, domain.ErrVectorDimMismatch)
	}

	q := &db.KNNQuery{
		IndexName:    r.indexName(d),
		Vector:       vector,
		K:            topK,
		EFRuntime:    candidatePool(topK, r.cfg.MaxCandidates, r.cfg.CandidateMultiplier),
		TagFilters:   filters,
		ReturnFields: []string{fieldContent, fieldMeta, fieldName, fieldType},
	}

	result, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("knn search %s: %w", d, err)
	}
	if len(result.Entries) == 0 {
		return nil, fmt.Errorf("knn search %s: %w", d, domain.ErrEmptyResult)
	}

	out := make([]domain.SearchResult, 0, len(result.Entries))
	for i := range result.Entries {
		out = append(out, parseSearchEntry(&result.Entries[i], d))
	}
	return out, nil
}

// Count returns the number of documents in a domain's index.
func (r *Repo) Count(ctx context.Context, d domain.Domain) (int, error) {
	n, err := r.store.SearchCount(ctx, r.indexName(d), "*")
	if err != nil {
		return 0, fmt.Errorf("search count %s: %w", d, err)
	}
	return n, nil
}

func (r *Repo) docKey(d domain.Domain, id string) string {
	return fmt.Sprintf("%sdoc:%s:%s", r.cfg.KeyPrefix, d, id)
}

func (r *Repo) indexName(d domain.Domain) string {
	return fmt.Sprintf("%sidx:%s", r.cfg.KeyPrefix, d)
}

func (r *Repo) indexDefinition(d domain.Domain) *db.IndexDefinition {
	return &db.IndexDefinition{
		Name:     r.indexName(d),
		Prefixes: []string{fmt.Sprintf("%sdoc:%s:", r.cfg.KeyPrefix, d)},
		Fields: []db.IndexField{
			{Name: fieldName, Type: db.IndexFieldTag},
			{Name: fieldType, Type: db.IndexFieldTag},
			{Name: fieldContent, Type: db.IndexFieldText},
			{
				Name:              fieldVector,
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         r.cfg.Dimensions,
				VectorDistance:    db.DistanceCosine,
				VectorM:           r.cfg.HNSWM,
				VectorEFConstruct: r.cfg.HNSWEFConstruct,
			},
		},
	}
}

// candidatePool bounds the approximate-search exploration: wide enough to
// keep recall at small topK, capped so large requests stay cheap.
func candidatePool(topK, maxCandidates, multiplier int) int {
	pool := topK * multiplier
	if pool > maxCandidates {
		return maxCandidates
	}
	return pool
}
