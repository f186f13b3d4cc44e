package document

import (
	"encoding/binary"
	"encoding/json"
	"math"

	"github.com/neo-assistant/portfolio-chat/internal/db"
	"github.com/neo-assistant/portfolio-chat/internal/domain"
)

// Hash field layout. The vector and content use reserved __ names so they
// can never collide with metadata tags.
const (
	fieldContent = "__content"
	fieldVector  = "__vector"
	fieldMeta    = "__meta"
	fieldName    = "name"
	fieldType    = "type"
)

// buildFields maps a document onto its hash representation: raw vector
// bytes, content, the full metadata as JSON, plus name/type copied out as
// filterable tags.
func buildFields(doc *domain.Document) map[string]string {
	fields := map[string]string{
		fieldContent: doc.Content,
		fieldVector:  encodeVector(doc.Vector),
		fieldName:    doc.Name(),
		fieldType:    doc.Type(),
	}
	if len(doc.Metadata) > 0 {
		if raw, err := json.Marshal(doc.Metadata); err == nil {
			fields[fieldMeta] = string(raw)
		}
	}
	return fields
}

// parseSearchEntry converts a search hit into a scored result. A corrupt
// __meta blob degrades to the tag fields rather than failing the search.
func parseSearchEntry(entry *db.SearchEntry, d domain.Domain) domain.SearchResult {
	meta := make(map[string]string)
	if raw := entry.Fields[fieldMeta]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			meta = make(map[string]string)
		}
	}
	if _, ok := meta["name"]; !ok {
		if v := entry.Fields[fieldName]; v != "" {
			meta["name"] = v
		}
	}
	if _, ok := meta["@type"]; !ok {
		if v := entry.Fields[fieldType]; v != "" {
			meta["@type"] = v
		}
	}
	return domain.SearchResult{
		Content:  entry.Fields[fieldContent],
		Metadata: meta,
		Score:    entry.Score,
		Domain:   d,
	}
}

// encodeVector packs float32 components as little-endian bytes, the layout
// FT.SEARCH expects for FLOAT32 vector fields.
func encodeVector(v []float32) string {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// decodeVector is the inverse of encodeVector. Trailing partial components
// are dropped.
func decodeVector(s string) []float32 {
	b := []byte(s)
	n := len(b) / 4
	v := make([]float32, n)
	for i := 0; i < n; i++ {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
