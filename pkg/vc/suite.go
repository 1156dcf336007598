package vc

import (
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/multiformats/go-multibase"
)

// Suite signs and verifies Data Integrity proofs with Ed25519 over the
// RDF canonical form, following the EdDSA Cryptosuite construction:
// the signed payload is the SHA-256 hash of the canonical proof
// configuration concatenated with the SHA-256 hash of the canonical
// document.
type Suite struct {
	canon *Canonicalizer
}

// NewSuite creates a new EdDSA suite
func NewSuite() *Suite {
	return &Suite{canon: NewCanonicalizer()}
}

// SignOptions contains options for signing
type SignOptions struct {
	VerificationMethod string
	ProofPurpose       string
	Created            time.Time
	Domain             string
	Challenge          string
}

// proofConfig renders the canonicalized proof options of a proof. The
// proof value itself is never part of the signed payload.
func (s *Suite) proofConfig(proof *Proof, context any) map[string]any {
	config := map[string]any{
		"type":               proof.Type,
		"verificationMethod": proof.VerificationMethod,
		"proofPurpose":       proof.ProofPurpose,
	}
	if context != nil {
		config["@context"] = context
	}
	if proof.Cryptosuite != "" {
		config["cryptosuite"] = proof.Cryptosuite
	}
	if proof.Created != "" {
		config["created"] = proof.Created
	}
	if proof.Domain != "" {
		config["domain"] = proof.Domain
	}
	if proof.Challenge != "" {
		config["challenge"] = proof.Challenge
	}
	return config
}

// hashData computes the signed payload for a document and its proof
func (s *Suite) hashData(doc map[string]any, proof *Proof) ([]byte, error) {
	unsigned := make(map[string]any, len(doc))
	for k, v := range doc {
		if k == "proof" {
			continue
		}
		unsigned[k] = v
	}

	docHash, err := s.canon.HashDocument(unsigned)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize document: %w", err)
	}

	proofHash, err := s.canon.HashDocument(s.proofConfig(proof, doc["@context"]))
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize proof configuration: %w", err)
	}

	combined := make([]byte, 0, sha256.Size*2)
	combined = append(combined, proofHash...)
	combined = append(combined, docHash...)
	return combined, nil
}

// Sign attaches a Data Integrity proof to a JSON-LD document
func (s *Suite) Sign(doc map[string]any, key ed25519.PrivateKey, opts *SignOptions) (map[string]any, error) {
	if opts == nil || opts.VerificationMethod == "" || opts.ProofPurpose == "" {
		return nil, fmt.Errorf("verification method and proof purpose are required")
	}

	created := opts.Created
	if created.IsZero() {
		created = time.Now().UTC()
	}

	proof := &Proof{
		Type:               ProofTypeDataIntegrity,
		Cryptosuite:        CryptosuiteEdDSARDFC2022,
		Created:            created.Format(time.RFC3339),
		VerificationMethod: opts.VerificationMethod,
		ProofPurpose:       opts.ProofPurpose,
		Domain:             opts.Domain,
		Challenge:          opts.Challenge,
	}

	payload, err := s.hashData(doc, proof)
	if err != nil {
		return nil, err
	}

	signature := ed25519.Sign(key, payload)
	proofValue, err := multibase.Encode(multibase.Base58BTC, signature)
	if err != nil {
		return nil, fmt.Errorf("failed to encode signature: %w", err)
	}

	proofMap := s.proofConfig(proof, nil)
	proofMap["proofValue"] = proofValue

	signed := make(map[string]any, len(doc)+1)
	for k, v := range doc {
		signed[k] = v
	}
	switch existing := signed["proof"].(type) {
	case nil:
		signed["proof"] = proofMap
	case []any:
		signed["proof"] = append(existing, proofMap)
	default:
		signed["proof"] = []any{existing, proofMap}
	}

	return signed, nil
}

// Verify checks a Data Integrity proof of a JSON-LD document against a
// public key
func (s *Suite) Verify(doc map[string]any, proof *Proof, pub ed25519.PublicKey) error {
	switch proof.Type {
	case ProofTypeDataIntegrity:
		if proof.Cryptosuite != CryptosuiteEdDSARDFC2022 {
			return fmt.Errorf("unsupported cryptosuite %q", proof.Cryptosuite)
		}
	case ProofTypeEd25519Signature:
		// accepted, same construction with the 2020 suite name
	default:
		return fmt.Errorf("unsupported proof type %q", proof.Type)
	}

	if proof.ProofValue == "" {
		return fmt.Errorf("proof carries no proofValue")
	}

	_, signature, err := multibase.Decode(proof.ProofValue)
	if err != nil {
		return fmt.Errorf("failed to decode proofValue: %w", err)
	}

	payload, err := s.hashData(doc, proof)
	if err != nil {
		return err
	}

	if !ed25519.Verify(pub, payload, signature) {
		return fmt.Errorf("signature verification failed for %s", proof.VerificationMethod)
	}
	return nil
}
