package vc

import (
	"crypto/ed25519"
	"encoding/binary"
	"fmt"

	"github.com/identinet/did-web-server/pkg/model"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/multiformats/go-multibase"
)

const multicodecEd25519 = 0xed

// PublicKeyEd25519 extracts the Ed25519 public key of a verification
// method, from its multibase or JWK encoding.
func PublicKeyEd25519(vm *model.VerificationMethod) (ed25519.PublicKey, error) {
	if vm.PublicKeyMultibase != "" {
		return decodeMultikey(vm.PublicKeyMultibase)
	}

	if len(vm.PublicKeyJwk) > 0 {
		key, err := jwk.ParseKey(vm.PublicKeyJwk)
		if err != nil {
			return nil, fmt.Errorf("invalid publicKeyJwk on %s: %w", vm.ID, err)
		}
		var pub ed25519.PublicKey
		if err := jwk.Export(key, &pub); err != nil {
			return nil, fmt.Errorf("verification method %s does not hold an Ed25519 key: %w", vm.ID, err)
		}
		return pub, nil
	}

	return nil, fmt.Errorf("verification method %s carries no supported key encoding", vm.ID)
}

// decodeMultikey decodes a multibase encoded public key with its
// multicodec prefix
func decodeMultikey(multikey string) (ed25519.PublicKey, error) {
	_, decoded, err := multibase.Decode(multikey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode multikey: %w", err)
	}

	codec, read := binary.Uvarint(decoded)
	if read <= 0 {
		return nil, fmt.Errorf("failed to decode multicodec varint")
	}
	if codec != multicodecEd25519 {
		return nil, fmt.Errorf("unsupported key type: multicodec 0x%x, expected 0xed for Ed25519", codec)
	}

	keyBytes := decoded[read:]
	if len(keyBytes) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid Ed25519 public key size: got %d bytes, expected %d", len(keyBytes), ed25519.PublicKeySize)
	}

	return ed25519.PublicKey(keyBytes), nil
}
