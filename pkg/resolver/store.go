package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/identinet/did-web-server/pkg/didweb"
	"github.com/identinet/did-web-server/pkg/model"
	"github.com/identinet/did-web-server/pkg/store"
)

// StoreResolver resolves did:web DIDs that this server itself hosts
// directly from the store, without going over the network. It is
// prepended to the chain in tests and allows documents on this server
// to authorize operations on each other.
type StoreResolver struct {
	cfg   *model.Cfg
	store store.Store
}

// NewStoreResolver creates a resolver backed by the server's own store
func NewStoreResolver(cfg *model.Cfg, s store.Store) *StoreResolver {
	return &StoreResolver{cfg: cfg, store: s}
}

// Resolve serves a DID hosted on this server from the store. DIDs of
// other hosts are rejected so that the chain continues.
func (r *StoreResolver) Resolve(ctx context.Context, did string) (*model.Document, error) {
	d, err := didweb.Parse(did)
	if err != nil {
		return nil, err
	}

	local, err := didweb.New(r.cfg.ExternalHostname, r.cfg.ExternalPort, "", "did.json")
	if err != nil {
		return nil, err
	}
	if d.Host() != local.Host() || d.Port() != local.Port() {
		return nil, fmt.Errorf("%s is not hosted on this server", did)
	}

	// drop the configured path prefix from the DID's segments
	segments := d.Segments()
	for _, prefixSeg := range splitPrefix(r.cfg.ExternalPath) {
		if len(segments) == 0 || segments[0] != prefixSeg {
			return nil, fmt.Errorf("%s is outside the configured path prefix", did)
		}
		segments = segments[1:]
	}

	return r.store.Get(ctx, store.KeyFromSegments(segments))
}

func splitPrefix(prefix string) []string {
	parts := []string{}
	for _, p := range strings.Split(prefix, "/") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
