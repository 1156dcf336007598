// Package vc implements the subset of the W3C Verifiable Credentials
// data model the server needs to verify presentations that carry DID
// Documents: parsing, Data Integrity proof verification over the RDF
// canonical form and credential-subject extraction.
package vc

import (
	"encoding/json"
	"fmt"
)

// Type names and proof purposes of the data model
const (
	TypeVerifiableCredential   = "VerifiableCredential"
	TypeVerifiablePresentation = "VerifiablePresentation"

	ProofTypeDataIntegrity      = "DataIntegrityProof"
	ProofTypeEd25519Signature   = "Ed25519Signature2020"
	CryptosuiteEdDSARDFC2022    = "eddsa-rdfc-2022"
	ProofPurposeAuthentication  = "authentication"
	ProofPurposeAssertionMethod = "assertionMethod"
)

// Proof is a Data Integrity proof attached to a credential or
// presentation, https://www.w3.org/TR/vc-data-integrity/
type Proof struct {
	Type               string `json:"type"`
	Cryptosuite        string `json:"cryptosuite,omitempty"`
	Created            string `json:"created,omitempty"`
	VerificationMethod string `json:"verificationMethod"`
	ProofPurpose       string `json:"proofPurpose"`
	Challenge          string `json:"challenge,omitempty"`
	Domain             string `json:"domain,omitempty"`
	Nonce              string `json:"nonce,omitempty"`
	ProofValue         string `json:"proofValue,omitempty"`
	JWS                string `json:"jws,omitempty"`
}

// Credential is a verifiable credential in JSON-LD form. The original
// JSON is retained for canonicalization.
type Credential struct {
	Issuer         string
	IssuanceDate   string
	ExpirationDate string
	Subjects       []map[string]any
	Proofs         []*Proof

	raw map[string]any
}

// Raw returns the credential as parsed, including unknown properties
func (c *Credential) Raw() map[string]any {
	return c.raw
}

// Presentation is a verifiable presentation. JWT formatted credentials
// are kept verbatim, they take no part in document selection.
type Presentation struct {
	Holder         string
	Credentials    []*Credential
	JWTCredentials []string
	Proofs         []*Proof

	raw map[string]any
}

// Raw returns the presentation as parsed
func (p *Presentation) Raw() map[string]any {
	return p.raw
}

// ParsePresentation parses a verifiable presentation from JSON
func ParsePresentation(data []byte) (*Presentation, error) {
	raw := map[string]any{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	p := &Presentation{raw: raw}
	if holder, ok := raw["holder"].(string); ok {
		p.Holder = holder
	}

	proofs, err := parseProofs(raw["proof"])
	if err != nil {
		return nil, err
	}
	p.Proofs = proofs

	for _, entry := range asSlice(raw["verifiableCredential"]) {
		switch v := entry.(type) {
		case string:
			p.JWTCredentials = append(p.JWTCredentials, v)
		case map[string]any:
			cred, err := parseCredential(v)
			if err != nil {
				return nil, err
			}
			p.Credentials = append(p.Credentials, cred)
		default:
			return nil, fmt.Errorf("unsupported verifiableCredential entry of type %T", entry)
		}
	}

	return p, nil
}

func parseCredential(raw map[string]any) (*Credential, error) {
	c := &Credential{raw: raw}

	switch issuer := raw["issuer"].(type) {
	case string:
		c.Issuer = issuer
	case map[string]any:
		if id, ok := issuer["id"].(string); ok {
			c.Issuer = id
		}
	}

	if d, ok := raw["issuanceDate"].(string); ok {
		c.IssuanceDate = d
	} else if d, ok := raw["validFrom"].(string); ok {
		c.IssuanceDate = d
	}
	if d, ok := raw["expirationDate"].(string); ok {
		c.ExpirationDate = d
	} else if d, ok := raw["validUntil"].(string); ok {
		c.ExpirationDate = d
	}

	for _, subject := range asSlice(raw["credentialSubject"]) {
		s, ok := subject.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unsupported credentialSubject of type %T", subject)
		}
		c.Subjects = append(c.Subjects, s)
	}

	proofs, err := parseProofs(raw["proof"])
	if err != nil {
		return nil, err
	}
	c.Proofs = proofs

	return c, nil
}

// parseProofs accepts a single proof object or an array of them
func parseProofs(v any) ([]*Proof, error) {
	proofs := []*Proof{}
	for _, entry := range asSlice(v) {
		data, err := json.Marshal(entry)
		if err != nil {
			return nil, err
		}
		proof := &Proof{}
		if err := json.Unmarshal(data, proof); err != nil {
			return nil, err
		}
		proofs = append(proofs, proof)
	}
	return proofs, nil
}

// asSlice normalizes a one-or-many JSON value
func asSlice(v any) []any {
	switch vv := v.(type) {
	case nil:
		return nil
	case []any:
		return vv
	default:
		return []any{vv}
	}
}
