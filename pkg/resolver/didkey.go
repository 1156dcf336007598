package resolver

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/identinet/did-web-server/pkg/model"

	"github.com/multiformats/go-multibase"
)

// multicodec prefixes of supported public key types
const (
	multicodecEd25519 = 0xed
	multicodecP256    = 0x1200
)

// KeyResolver resolves did:key identifiers without any I/O, the key
// material is embedded in the DID itself.
type KeyResolver struct{}

// NewKeyResolver creates the built-in did:key resolver
func NewKeyResolver() *KeyResolver {
	return &KeyResolver{}
}

// Resolve synthesizes the document of a did:key DID. The single
// verification method is listed under authentication, assertionMethod,
// capabilityInvocation and capabilityDelegation; no keyAgreement entry
// is synthesized.
func (r *KeyResolver) Resolve(ctx context.Context, did string) (*model.Document, error) {
	multikey, found := strings.CutPrefix(did, "did:key:")
	if !found {
		return nil, fmt.Errorf("not a did:key DID: %s", did)
	}
	multikey, _, _ = strings.Cut(multikey, "#")

	keyType, err := multikeyType(multikey)
	if err != nil {
		return nil, err
	}

	vmID := did + "#" + multikey
	doc := &model.Document{
		Context: json.RawMessage(`["https://www.w3.org/ns/did/v1","https://w3id.org/security/multikey/v1"]`),
		ID:      did,
		VerificationMethod: []model.VerificationMethod{{
			ID:                 vmID,
			Type:               keyType,
			Controller:         did,
			PublicKeyMultibase: multikey,
		}},
		Authentication:       []model.VerificationMethodRef{{Ref: vmID}},
		AssertionMethod:      []model.VerificationMethodRef{{Ref: vmID}},
		CapabilityInvocation: []model.VerificationMethodRef{{Ref: vmID}},
		CapabilityDelegation: []model.VerificationMethodRef{{Ref: vmID}},
	}
	return doc, nil
}

// multikeyType validates a multikey and names its verification method
// type
func multikeyType(multikey string) (string, error) {
	_, decoded, err := multibase.Decode(multikey)
	if err != nil {
		return "", fmt.Errorf("failed to decode multikey: %w", err)
	}

	codec, read := binary.Uvarint(decoded)
	if read <= 0 {
		return "", fmt.Errorf("failed to decode multicodec varint")
	}

	switch codec {
	case multicodecEd25519:
		return "Multikey", nil
	case multicodecP256:
		return "Multikey", nil
	default:
		return "", fmt.Errorf("unsupported key type: multicodec 0x%x", codec)
	}
}
