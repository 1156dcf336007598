package vc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/identinet/did-web-server/pkg/helpers"
	"github.com/identinet/did-web-server/pkg/resolver"
)

// ProofOptions bind a presentation proof to one operation on one
// version of a document.
type ProofOptions struct {
	// Challenge the proof must carry. The empty string accepts any
	// challenge, used for operations on locations without a document.
	Challenge string

	// Domain the proof must be bound to
	Domain string

	// ProofPurpose the proof must declare
	ProofPurpose string
}

// Verifier verifies presentations and their credentials, resolving
// verification keys through a composed DID resolver.
type Verifier struct {
	suite    *Suite
	resolver resolver.Resolver
}

// NewVerifier creates a verifier on top of a resolver
func NewVerifier(r resolver.Resolver) *Verifier {
	return &Verifier{suite: NewSuite(), resolver: r}
}

// controllerDID extracts the DID a verification method belongs to
func controllerDID(verificationMethod string) string {
	did, _, _ := strings.Cut(verificationMethod, "#")
	return did
}

// resolveKey resolves the Ed25519 public key of a verification method
// through the resolver chain
func (v *Verifier) resolveKey(ctx context.Context, verificationMethod string) ([]byte, error) {
	doc, err := v.resolver.Resolve(ctx, controllerDID(verificationMethod))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", verificationMethod, err)
	}

	vm := doc.FindVerificationMethod(verificationMethod)
	if vm == nil {
		return nil, fmt.Errorf("verification method %s not found in resolved document", verificationMethod)
	}

	return PublicKeyEd25519(vm)
}

// VerifyPresentation verifies the proofs of a presentation and of all
// its JSON-LD credentials. Every presentation proof must bind the
// expected challenge, domain and proof purpose and verify against a
// key resolved through the chain. Credential proofs must verify, their
// binding is not constrained. JWT formatted credentials are ignored.
func (v *Verifier) VerifyPresentation(ctx context.Context, p *Presentation, opts ProofOptions) error {
	if len(p.Proofs) == 0 {
		return helpers.NewErrorDetails(helpers.ErrPresentationInvalid.Title, "presentation carries no proof")
	}

	for _, proof := range p.Proofs {
		if proof.ProofPurpose != opts.ProofPurpose {
			return helpers.NewErrorDetails(helpers.ErrPresentationInvalid.Title, fmt.Sprintf("proof purpose %q, expected %q", proof.ProofPurpose, opts.ProofPurpose))
		}
		if opts.Domain != "" && proof.Domain != opts.Domain {
			return helpers.NewErrorDetails(helpers.ErrPresentationInvalid.Title, fmt.Sprintf("proof domain %q, expected %q", proof.Domain, opts.Domain))
		}
		if opts.Challenge != "" && proof.Challenge != opts.Challenge {
			return helpers.NewErrorDetails(helpers.ErrPresentationInvalid.Title, "proof challenge does not match the current document")
		}

		pub, err := v.resolveKey(ctx, proof.VerificationMethod)
		if err != nil {
			return helpers.NewErrorDetails(helpers.ErrPresentationInvalid.Title, err.Error())
		}
		if err := v.suite.Verify(p.Raw(), proof, pub); err != nil {
			return helpers.NewErrorDetails(helpers.ErrPresentationInvalid.Title, err.Error())
		}
	}

	for _, cred := range p.Credentials {
		if len(cred.Proofs) == 0 {
			return helpers.NewErrorDetails(helpers.ErrPresentationInvalid.Title, "credential carries no proof")
		}
		for _, proof := range cred.Proofs {
			pub, err := v.resolveKey(ctx, proof.VerificationMethod)
			if err != nil {
				return helpers.NewErrorDetails(helpers.ErrPresentationInvalid.Title, err.Error())
			}
			if err := v.suite.Verify(cred.Raw(), proof, pub); err != nil {
				return helpers.NewErrorDetails(helpers.ErrPresentationInvalid.Title, err.Error())
			}
		}
	}

	return nil
}

// FindSubject selects the target credential of a presentation: the
// first JSON-LD credential with a subject whose id equals the expected
// DID. Later matches are ignored.
func (p *Presentation) FindSubject(did string) (*Credential, map[string]any, error) {
	for _, cred := range p.Credentials {
		for _, subject := range cred.Subjects {
			if id, ok := subject["id"].(string); ok && id == did {
				return cred, subject, nil
			}
		}
	}
	return nil, nil, helpers.NewErrorDetails(helpers.ErrDIDDocMissing.Title, "no valid DID Doc credential found")
}

// ValidateDates checks the temporal validity of a credential, the
// issuance date must lie strictly in the past and the expiration date,
// when present, strictly in the future.
func (c *Credential) ValidateDates(now time.Time) error {
	if c.IssuanceDate == "" {
		return helpers.NewErrorDetails(helpers.ErrPresentationInvalid.Title, "credential carries no issuance date")
	}

	issued, err := time.Parse(time.RFC3339, c.IssuanceDate)
	if err != nil {
		return helpers.NewErrorDetails(helpers.ErrPresentationInvalid.Title, fmt.Sprintf("invalid issuance date: %s", err))
	}
	if !issued.Before(now) {
		return helpers.NewErrorDetails(helpers.ErrPresentationInvalid.Title, "credential is not valid yet")
	}

	if c.ExpirationDate != "" {
		expires, err := time.Parse(time.RFC3339, c.ExpirationDate)
		if err != nil {
			return helpers.NewErrorDetails(helpers.ErrPresentationInvalid.Title, fmt.Sprintf("invalid expiration date: %s", err))
		}
		if !expires.After(now) {
			return helpers.NewErrorDetails(helpers.ErrPresentationInvalid.Title, "credential has expired")
		}
	}

	return nil
}
