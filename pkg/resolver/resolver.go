// Package resolver resolves DIDs into DID Documents. Resolution is
// composed from method resolvers tried in a fixed order, the first
// successful resolution wins.
package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/identinet/did-web-server/pkg/logger"
	"github.com/identinet/did-web-server/pkg/model"
)

// Resolver resolves a DID into its document
type Resolver interface {
	// Resolve returns the document of a DID or an error when the DID
	// can't be resolved by this resolver
	Resolve(ctx context.Context, did string) (*model.Document, error)
}

// Chain tries sub-resolvers in order and returns the first successful
// resolution. It is safe for concurrent use when its sub-resolvers are.
type Chain struct {
	resolvers []Resolver
}

// NewChain composes resolvers in resolution order
func NewChain(resolvers ...Resolver) *Chain {
	return &Chain{resolvers: resolvers}
}

// Prepend returns a new chain with additional resolvers tried first
func (c *Chain) Prepend(resolvers ...Resolver) *Chain {
	return &Chain{resolvers: append(resolvers, c.resolvers...)}
}

// Resolve tries each resolver until one succeeds
func (c *Chain) Resolve(ctx context.Context, did string) (*model.Document, error) {
	var lastErr error
	for _, r := range c.resolvers {
		doc, err := r.Resolve(ctx, did)
		if err == nil {
			return doc, nil
		}
		lastErr = err
	}

	if lastErr == nil {
		return nil, fmt.Errorf("no resolvers configured")
	}
	return nil, fmt.Errorf("all resolvers failed: %w", lastErr)
}

// Options select the resolvers of a chain
type Options struct {
	// Fallback HTTP DID resolver URL, tried after the built-in methods
	Fallback string
	// Override HTTP DID resolver URL, tried before the built-in methods
	Override string
	// Timeout per remote resolution call
	Timeout time.Duration
}

// New builds the resolver chain of a server configuration: an optional
// override resolver first, the built-in method resolvers next and an
// optional fallback resolver last.
func New(cfg *model.Cfg, log *logger.Log) *Chain {
	opts := Options{
		Fallback: cfg.Resolver,
		Override: cfg.ResolverOverride,
		Timeout:  time.Duration(cfg.ResolverTimeout) * time.Second,
	}

	resolvers := []Resolver{}
	if opts.Override != "" {
		resolvers = append(resolvers, NewHTTPResolver(opts.Override, opts.Timeout, log))
	}
	resolvers = append(resolvers,
		NewKeyResolver(),
		NewJWKResolver(),
		NewWebResolver(opts.Timeout, log),
	)
	if opts.Fallback != "" {
		resolvers = append(resolvers, NewHTTPResolver(opts.Fallback, opts.Timeout, log))
	}

	return NewChain(resolvers...)
}
