package vc

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"testing"
	"time"

	"github.com/multiformats/go-multibase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testContext keeps canonicalization self-contained, no remote context
// is fetched during tests
var testContext = map[string]any{"@vocab": "https://www.w3.org/2018/credentials#"}

func generateDIDKey(t *testing.T) (string, ed25519.PrivateKey) {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	prefixed := append([]byte{0xed, 0x01}, pub...)
	multikey, err := multibase.Encode(multibase.Base58BTC, prefixed)
	require.NoError(t, err)

	return "did:key:" + multikey, priv
}

func testCredential(subjectID string) map[string]any {
	return map[string]any{
		"@context":     testContext,
		"id":           "https://example.com/vc/123",
		"type":         []any{"VerifiableCredential"},
		"issuer":       "did:example:issuer",
		"issuanceDate": "2024-01-01T00:00:00Z",
		"credentialSubject": map[string]any{
			"id": subjectID,
		},
	}
}

func signedProof(t *testing.T, doc map[string]any) *Proof {
	t.Helper()
	proofs, err := parseProofs(doc["proof"])
	require.NoError(t, err)
	require.Len(t, proofs, 1)
	return proofs[0]
}

func TestSignAndVerify(t *testing.T) {
	suite := NewSuite()
	did, priv := generateDIDKey(t)
	pub := priv.Public().(ed25519.PublicKey)

	signed, err := suite.Sign(testCredential("did:example:alice"), priv, &SignOptions{
		VerificationMethod: did + "#key",
		ProofPurpose:       ProofPurposeAssertionMethod,
		Domain:             "localhost",
		Challenge:          "abc",
	})
	require.NoError(t, err)

	proof := signedProof(t, signed)
	assert.Equal(t, ProofTypeDataIntegrity, proof.Type)
	assert.Equal(t, CryptosuiteEdDSARDFC2022, proof.Cryptosuite)
	assert.Equal(t, "localhost", proof.Domain)
	assert.Equal(t, "abc", proof.Challenge)
	assert.NotEmpty(t, proof.ProofValue)

	assert.NoError(t, suite.Verify(signed, proof, pub))
}

func TestVerifyRejectsTamperedDocument(t *testing.T) {
	suite := NewSuite()
	did, priv := generateDIDKey(t)
	pub := priv.Public().(ed25519.PublicKey)

	signed, err := suite.Sign(testCredential("did:example:alice"), priv, &SignOptions{
		VerificationMethod: did + "#key",
		ProofPurpose:       ProofPurposeAssertionMethod,
	})
	require.NoError(t, err)
	proof := signedProof(t, signed)

	signed["credentialSubject"] = map[string]any{"id": "did:example:mallory"}
	assert.Error(t, suite.Verify(signed, proof, pub))
}

func TestVerifyRejectsTamperedProofOptions(t *testing.T) {
	suite := NewSuite()
	did, priv := generateDIDKey(t)
	pub := priv.Public().(ed25519.PublicKey)

	signed, err := suite.Sign(testCredential("did:example:alice"), priv, &SignOptions{
		VerificationMethod: did + "#key",
		ProofPurpose:       ProofPurposeAssertionMethod,
		Challenge:          "abc",
	})
	require.NoError(t, err)
	proof := signedProof(t, signed)

	proof.Challenge = "def"
	assert.Error(t, suite.Verify(signed, proof, pub), "the challenge is part of the signed payload")
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	suite := NewSuite()
	did, priv := generateDIDKey(t)
	_, otherPriv := generateDIDKey(t)

	signed, err := suite.Sign(testCredential("did:example:alice"), priv, &SignOptions{
		VerificationMethod: did + "#key",
		ProofPurpose:       ProofPurposeAssertionMethod,
	})
	require.NoError(t, err)
	proof := signedProof(t, signed)

	assert.Error(t, suite.Verify(signed, proof, otherPriv.Public().(ed25519.PublicKey)))
}

func TestVerifyRejectsUnsupportedSuite(t *testing.T) {
	suite := NewSuite()
	_, priv := generateDIDKey(t)
	pub := priv.Public().(ed25519.PublicKey)

	proof := &Proof{
		Type:               "RsaSignature2018",
		VerificationMethod: "did:example:issuer#key",
		ProofPurpose:       ProofPurposeAssertionMethod,
		ProofValue:         "z3FXQ",
	}
	assert.Error(t, suite.Verify(testCredential("did:example:alice"), proof, pub))
}

func TestSignRequiresOptions(t *testing.T) {
	suite := NewSuite()
	_, priv := generateDIDKey(t)

	_, err := suite.Sign(testCredential("did:example:alice"), priv, nil)
	assert.Error(t, err)

	_, err = suite.Sign(testCredential("did:example:alice"), priv, &SignOptions{})
	assert.Error(t, err)
}

func TestSignSetsCreated(t *testing.T) {
	suite := NewSuite()
	did, priv := generateDIDKey(t)

	before := time.Now().UTC().Add(-time.Second)
	signed, err := suite.Sign(testCredential("did:example:alice"), priv, &SignOptions{
		VerificationMethod: did + "#key",
		ProofPurpose:       ProofPurposeAssertionMethod,
	})
	require.NoError(t, err)
	proof := signedProof(t, signed)

	created, err := time.Parse(time.RFC3339, proof.Created)
	require.NoError(t, err)
	assert.True(t, created.After(before))
}

func TestParsePresentation(t *testing.T) {
	data, err := json.Marshal(map[string]any{
		"@context": testContext,
		"type":     []any{"VerifiablePresentation"},
		"holder":   "did:example:holder",
		"verifiableCredential": []any{
			testCredential("did:example:alice"),
			"eyJhbGciOiJFZERTQSJ9.e30.c2ln",
		},
		"proof": map[string]any{
			"type":               ProofTypeDataIntegrity,
			"cryptosuite":        CryptosuiteEdDSARDFC2022,
			"verificationMethod": "did:example:holder#key",
			"proofPurpose":       ProofPurposeAuthentication,
			"proofValue":         "z3FXQ",
		},
	})
	require.NoError(t, err)

	p, err := ParsePresentation(data)
	require.NoError(t, err)

	assert.Equal(t, "did:example:holder", p.Holder)
	require.Len(t, p.Credentials, 1)
	assert.Len(t, p.JWTCredentials, 1, "JWT credentials are kept verbatim")
	require.Len(t, p.Proofs, 1)
	assert.Equal(t, ProofPurposeAuthentication, p.Proofs[0].ProofPurpose)

	require.Len(t, p.Credentials[0].Subjects, 1)
	assert.Equal(t, "did:example:alice", p.Credentials[0].Subjects[0]["id"])
	assert.Equal(t, "2024-01-01T00:00:00Z", p.Credentials[0].IssuanceDate)
}
