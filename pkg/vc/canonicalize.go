package vc

import (
	"crypto/sha256"
	"fmt"

	"github.com/piprate/json-gold/ld"
)

// Canonicalizer converts JSON-LD documents into the RDF canonical
// N-Quads form (RDFC-1.0 / URDNA2015) proofs are computed over.
type Canonicalizer struct {
	options *ld.JsonLdOptions
	loader  ld.DocumentLoader
}

// NewCanonicalizer creates a canonicalizer with a caching context
// loader
func NewCanonicalizer() *Canonicalizer {
	loader := ld.NewCachingDocumentLoader(ld.NewDefaultDocumentLoader(nil))

	opts := ld.NewJsonLdOptions("")
	opts.Algorithm = ld.AlgorithmURDNA2015
	opts.Format = "application/n-quads"
	opts.DocumentLoader = loader

	return &Canonicalizer{options: opts, loader: loader}
}

// Canonicalize normalizes a JSON-LD value into canonical N-Quads
func (c *Canonicalizer) Canonicalize(doc any) (string, error) {
	proc := ld.NewJsonLdProcessor()

	normalized, err := proc.Normalize(doc, c.options)
	if err != nil {
		return "", fmt.Errorf("normalization failed: %w", err)
	}

	normalizedStr, ok := normalized.(string)
	if !ok {
		return "", fmt.Errorf("unexpected normalized format: %T", normalized)
	}

	return normalizedStr, nil
}

// HashDocument canonicalizes a JSON-LD value and hashes the result
func (c *Canonicalizer) HashDocument(doc any) ([]byte, error) {
	canonical, err := c.Canonicalize(doc)
	if err != nil {
		return nil, err
	}

	hash := sha256.Sum256([]byte(canonical))
	return hash[:], nil
}
