package sink

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/agrisync/agrisync/pkg/ngsi"
)

// Writer emits each document as one JSON line.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (s *Writer) Name() string { return "writer" }

func (s *Writer) Send(ctx context.Context, entityType string, doc ngsi.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := doc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode %s document: %w", entityType, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write %s document: %w", entityType, err)
	}
	return nil
}
