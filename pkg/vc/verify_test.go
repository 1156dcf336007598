package vc

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"testing"
	"time"

	"github.com/identinet/did-web-server/pkg/helpers"
	"github.com/identinet/did-web-server/pkg/resolver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPresentation signs a credential with the issuer key and wraps
// it into a presentation signed by the holder key
func buildPresentation(t *testing.T, issuerDID string, issuerKey ed25519.PrivateKey, holderDID string, holderKey ed25519.PrivateKey, subjectID string, opts ProofOptions) []byte {
	t.Helper()
	suite := NewSuite()

	cred := testCredential(subjectID)
	cred["issuer"] = issuerDID
	signedCred, err := suite.Sign(cred, issuerKey, &SignOptions{
		VerificationMethod: verificationMethodOf(issuerDID),
		ProofPurpose:       ProofPurposeAssertionMethod,
	})
	require.NoError(t, err)

	presentation := map[string]any{
		"@context":             testContext,
		"type":                 []any{"VerifiablePresentation"},
		"holder":               holderDID,
		"verifiableCredential": []any{signedCred},
	}
	signedPresentation, err := suite.Sign(presentation, holderKey, &SignOptions{
		VerificationMethod: verificationMethodOf(holderDID),
		ProofPurpose:       opts.ProofPurpose,
		Domain:             opts.Domain,
		Challenge:          opts.Challenge,
	})
	require.NoError(t, err)

	data, err := json.Marshal(signedPresentation)
	require.NoError(t, err)
	return data
}

// verificationMethodOf derives the verification method id of a did:key
// DID
func verificationMethodOf(did string) string {
	return did + "#" + did[len("did:key:"):]
}

func TestVerifyPresentation(t *testing.T) {
	ctx := context.Background()
	verifier := NewVerifier(resolver.NewChain(resolver.NewKeyResolver()))

	holderDID, holderKey := generateDIDKey(t)
	opts := ProofOptions{
		Challenge:    "d992a524",
		Domain:       "localhost",
		ProofPurpose: ProofPurposeAuthentication,
	}

	data := buildPresentation(t, holderDID, holderKey, holderDID, holderKey, "did:web:localhost:alice", opts)
	p, err := ParsePresentation(data)
	require.NoError(t, err)

	assert.NoError(t, verifier.VerifyPresentation(ctx, p, opts))
}

func TestVerifyPresentationBindings(t *testing.T) {
	ctx := context.Background()
	verifier := NewVerifier(resolver.NewChain(resolver.NewKeyResolver()))

	holderDID, holderKey := generateDIDKey(t)
	signedOpts := ProofOptions{
		Challenge:    "expected-challenge",
		Domain:       "localhost",
		ProofPurpose: ProofPurposeAuthentication,
	}

	data := buildPresentation(t, holderDID, holderKey, holderDID, holderKey, "did:web:localhost:alice", signedOpts)

	tts := []struct {
		name string
		opts ProofOptions
		ok   bool
	}{
		{
			name: "matching bindings",
			opts: signedOpts,
			ok:   true,
		},
		{
			name: "any challenge accepted when none is expected",
			opts: ProofOptions{Domain: "localhost", ProofPurpose: ProofPurposeAuthentication},
			ok:   true,
		},
		{
			name: "wrong challenge",
			opts: ProofOptions{Challenge: "other", Domain: "localhost", ProofPurpose: ProofPurposeAuthentication},
		},
		{
			name: "wrong domain",
			opts: ProofOptions{Challenge: "expected-challenge", Domain: "example.com", ProofPurpose: ProofPurposeAuthentication},
		},
		{
			name: "wrong proof purpose",
			opts: ProofOptions{Challenge: "expected-challenge", Domain: "localhost", ProofPurpose: ProofPurposeAssertionMethod},
		},
	}

	for _, tt := range tts {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePresentation(data)
			require.NoError(t, err)

			err = verifier.VerifyPresentation(ctx, p, tt.opts)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, helpers.ErrPresentationInvalid)
		})
	}
}

func TestVerifyPresentationRejectsForeignSignature(t *testing.T) {
	ctx := context.Background()
	verifier := NewVerifier(resolver.NewChain(resolver.NewKeyResolver()))

	holderDID, holderKey := generateDIDKey(t)
	_, otherKey := generateDIDKey(t)

	opts := ProofOptions{Domain: "localhost", ProofPurpose: ProofPurposeAuthentication}

	// the proof names the holder's key but is signed with another one
	data := buildPresentation(t, holderDID, holderKey, holderDID, otherKey, "did:web:localhost:alice", opts)
	p, err := ParsePresentation(data)
	require.NoError(t, err)

	err = verifier.VerifyPresentation(ctx, p, opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, helpers.ErrPresentationInvalid)
}

func TestVerifyPresentationWithoutProof(t *testing.T) {
	verifier := NewVerifier(resolver.NewChain(resolver.NewKeyResolver()))

	data, err := json.Marshal(map[string]any{
		"@context": testContext,
		"type":     []any{"VerifiablePresentation"},
	})
	require.NoError(t, err)

	p, err := ParsePresentation(data)
	require.NoError(t, err)

	err = verifier.VerifyPresentation(context.Background(), p, ProofOptions{ProofPurpose: ProofPurposeAuthentication})
	assert.ErrorIs(t, err, helpers.ErrPresentationInvalid)
}

func TestFindSubject(t *testing.T) {
	holderDID, holderKey := generateDIDKey(t)
	opts := ProofOptions{Domain: "localhost", ProofPurpose: ProofPurposeAuthentication}

	data := buildPresentation(t, holderDID, holderKey, holderDID, holderKey, "did:web:localhost:alice", opts)
	p, err := ParsePresentation(data)
	require.NoError(t, err)

	cred, subject, err := p.FindSubject("did:web:localhost:alice")
	require.NoError(t, err)
	assert.NotNil(t, cred)
	assert.Equal(t, "did:web:localhost:alice", subject["id"])

	_, _, err = p.FindSubject("did:web:localhost:bob")
	assert.ErrorIs(t, err, helpers.ErrDIDDocMissing)
}

func TestValidateDates(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tts := []struct {
		name       string
		issuance   string
		expiration string
		ok         bool
	}{
		{name: "issued in the past", issuance: "2024-01-01T00:00:00Z", ok: true},
		{name: "not yet expired", issuance: "2024-01-01T00:00:00Z", expiration: "2030-01-01T00:00:00Z", ok: true},
		{name: "missing issuance date", issuance: ""},
		{name: "issued in the future", issuance: "2030-01-01T00:00:00Z"},
		{name: "expired", issuance: "2019-01-01T00:00:00Z", expiration: "2020-01-01T01:01:00Z"},
		{name: "unparsable issuance date", issuance: "not-a-date"},
		{name: "unparsable expiration date", issuance: "2024-01-01T00:00:00Z", expiration: "never"},
	}

	for _, tt := range tts {
		t.Run(tt.name, func(t *testing.T) {
			cred := &Credential{IssuanceDate: tt.issuance, ExpirationDate: tt.expiration}
			err := cred.ValidateDates(now)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, helpers.ErrPresentationInvalid)
		})
	}
}
