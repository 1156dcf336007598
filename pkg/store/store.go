// Package store persists DID Documents keyed by their request path.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/identinet/did-web-server/pkg/didweb"
	"github.com/identinet/did-web-server/pkg/helpers"
	"github.com/identinet/did-web-server/pkg/model"
)

// Backend names accepted by New
const (
	BackendMem  = "mem"
	BackendFile = "file"
)

// Store is a keyed document map with at most one document per key.
// Each operation is atomic, concurrent readers observe either the
// previous or the new document, never a partial state.
type Store interface {
	// Get returns the document stored at key. Fails with
	// ErrDIDNotFound if the key is empty.
	Get(ctx context.Context, key string) (*model.Document, error)

	// Create stores a document at a previously empty key. Fails with
	// ErrDIDExists if a document is already present.
	Create(ctx context.Context, key string, doc *model.Document) (*model.Document, error)

	// Update replaces the document at an existing key. Fails with
	// ErrDIDNotFound if the key is empty.
	Update(ctx context.Context, key string, doc *model.Document) (*model.Document, error)

	// Remove deletes the document at key and returns the removed
	// document. Fails with ErrDIDNotFound if the key is empty.
	Remove(ctx context.Context, key string) (*model.Document, error)
}

// New selects a store backend by configuration
func New(cfg *model.Cfg) (Store, error) {
	switch cfg.Backend {
	case BackendMem:
		return NewMemStore(), nil
	case BackendFile:
		return NewFileStore(cfg.BackendFileStore)
	default:
		return nil, helpers.NewErrorDetails(helpers.ErrUnknownBackend.Title, fmt.Sprintf("unknown backend %q, expected %s or %s", cfg.Backend, BackendMem, BackendFile))
	}
}

// KeyFromSegments translates the validated segments of a DID into a
// store key. A root DID without segments is keyed under .well-known.
func KeyFromSegments(segments []string) string {
	if len(segments) == 0 {
		return didweb.WellKnown
	}
	return strings.Join(segments, "/")
}
