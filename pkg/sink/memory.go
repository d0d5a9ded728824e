package sink

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/agrisync/agrisync/pkg/ngsi"
)

// DefaultCapacity bounds a Memory sink created with a non-positive size.
const DefaultCapacity = 1024

// Memory keeps the most recently sent documents, keyed by id. Once full, the
// least recently used document is evicted.
type Memory struct {
	cache *lru.Cache[string, ngsi.Document]
}

// NewMemory creates a sink holding at most capacity documents.
func NewMemory(capacity int) (*Memory, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	cache, err := lru.New[string, ngsi.Document](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory sink: %w", err)
	}
	return &Memory{cache: cache}, nil
}

func (m *Memory) Name() string { return "memory" }

// Send stores a copy of doc, replacing any document with the same id.
func (m *Memory) Send(ctx context.Context, entityType string, doc ngsi.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id := doc.ID()
	if id == "" {
		return fmt.Errorf("document of type %s has no id", entityType)
	}
	m.cache.Add(id, doc.Clone())
	return nil
}

func (m *Memory) Fetch(ctx context.Context, id string) (ngsi.Document, error) {
	doc, ok := m.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return doc.Clone(), nil
}

// List returns documents of entityType from oldest to newest. An empty
// entityType lists every document.
func (m *Memory) List(ctx context.Context, entityType string) ([]ngsi.Document, error) {
	var out []ngsi.Document
	for _, id := range m.cache.Keys() {
		doc, ok := m.cache.Peek(id)
		if !ok {
			continue
		}
		if entityType == "" || doc.Type() == entityType {
			out = append(out, doc.Clone())
		}
	}
	return out, nil
}

// Len reports how many documents are held.
func (m *Memory) Len() int { return m.cache.Len() }
