package resolver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/identinet/did-web-server/pkg/model"

	"github.com/lestrrat-go/jwx/v3/jwk"
)

// JWKResolver resolves did:jwk identifiers, the DID encodes a single
// JWK as base64url.
type JWKResolver struct{}

// NewJWKResolver creates the built-in did:jwk resolver
func NewJWKResolver() *JWKResolver {
	return &JWKResolver{}
}

// Resolve synthesizes the document of a did:jwk DID with the single
// verification method #0, https://github.com/quartzjer/did-jwk
func (r *JWKResolver) Resolve(ctx context.Context, did string) (*model.Document, error) {
	encoded, found := strings.CutPrefix(did, "did:jwk:")
	if !found {
		return nil, fmt.Errorf("not a did:jwk DID: %s", did)
	}
	encoded, _, _ = strings.Cut(encoded, "#")

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode did:jwk: %w", err)
	}

	// parse to reject DIDs that don't carry a valid JWK
	if _, err := jwk.ParseKey(raw); err != nil {
		return nil, fmt.Errorf("did:jwk does not contain a valid JWK: %w", err)
	}

	vmID := did + "#0"
	doc := &model.Document{
		Context: json.RawMessage(`["https://www.w3.org/ns/did/v1","https://w3id.org/security/suites/jws-2020/v1"]`),
		ID:      did,
		VerificationMethod: []model.VerificationMethod{{
			ID:           vmID,
			Type:         "JsonWebKey2020",
			Controller:   did,
			PublicKeyJwk: json.RawMessage(raw),
		}},
		Authentication:       []model.VerificationMethodRef{{Ref: vmID}},
		AssertionMethod:      []model.VerificationMethodRef{{Ref: vmID}},
		CapabilityInvocation: []model.VerificationMethodRef{{Ref: vmID}},
		CapabilityDelegation: []model.VerificationMethodRef{{Ref: vmID}},
	}
	return doc, nil
}
