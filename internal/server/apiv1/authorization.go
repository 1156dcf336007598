package apiv1

import (
	"context"
	"fmt"

	"github.com/identinet/did-web-server/pkg/helpers"
	"github.com/identinet/did-web-server/pkg/vc"
)

// authorize ensures that the presentation's proofs include at least
// one signature from a key authorized for the controlling DID under
// the assertionMethod relationship. The controlling DID differs per
// operation: the server owner authorizes create and delete, a
// document's own DID authorizes its update.
func (c *Client) authorize(ctx context.Context, controlling string, presentation *vc.Presentation) error {
	ctx, span := c.tracer.Start(ctx, "apiv1:authorize")
	defer span.End()

	if len(presentation.Proofs) == 0 {
		return helpers.NewErrorDetails(helpers.ErrPresentationInvalid.Title, "presentation carries no proof")
	}

	doc, err := c.resolver.Resolve(ctx, controlling)
	if err != nil {
		// a resolution failure prevents the authorization decision
		return helpers.NewErrorDetails(helpers.ErrPresentationInvalid.Title, fmt.Sprintf("failed to resolve authorizing DID %s: %s", controlling, err))
	}

	allowed := map[string]bool{}
	for _, id := range doc.RelationshipMethods(vc.ProofPurposeAssertionMethod) {
		allowed[id] = true
	}

	for _, proof := range presentation.Proofs {
		if allowed[proof.VerificationMethod] {
			return nil
		}
	}

	return helpers.NewErrorDetails(helpers.ErrPresentationInvalid.Title, fmt.Sprintf("presentation is not signed by a key of %s", controlling))
}
