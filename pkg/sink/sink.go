// Package sink defines where constructed documents are delivered and provides
// local implementations for development and tests.
package sink

import (
	"context"
	stderrors "errors"

	"github.com/agrisync/agrisync/pkg/ngsi"
)

// ErrNotFound is returned by Fetch when no document has the requested id.
var ErrNotFound = stderrors.New("entity not found")

// Sink accepts canonical documents.
type Sink interface {
	Send(ctx context.Context, entityType string, doc ngsi.Document) error
	Name() string
}

// Fetcher reads back a document by id.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (ngsi.Document, error)
}

// Lister enumerates stored documents of one entity type.
type Lister interface {
	List(ctx context.Context, entityType string) ([]ngsi.Document, error)
}
