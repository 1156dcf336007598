package apiv1

import (
	"context"
	"time"

	"github.com/identinet/did-web-server/pkg/helpers"
	"github.com/identinet/did-web-server/pkg/model"
	"github.com/identinet/did-web-server/pkg/vc"
)

// GetRequest addresses a stored document by its request path
type GetRequest struct {
	Path string
}

// Get returns the document stored at the request path
func (c *Client) Get(ctx context.Context, req *GetRequest) (*model.Document, error) {
	ctx, span := c.tracer.Start(ctx, "apiv1:Get")
	defer span.End()

	loc, err := c.resolveLocation(req.Path)
	if err != nil {
		return nil, err
	}

	return c.store.Get(ctx, loc.key)
}

// ProofParametersRequest addresses the proof parameters of a document
type ProofParametersRequest struct {
	Path string
}

// ProofParameters returns the parameters a client must bind into the
// proof of a presentation for the next operation on the DID
func (c *Client) ProofParameters(ctx context.Context, req *ProofParametersRequest) (*model.ProofParameters, error) {
	ctx, span := c.tracer.Start(ctx, "apiv1:ProofParameters")
	defer span.End()

	loc, err := c.resolveLocation(req.Path)
	if err != nil {
		return nil, err
	}

	doc, err := c.store.Get(ctx, loc.key)
	if err != nil {
		return nil, err
	}

	return c.proofParameters(loc, doc)
}

// CreateRequest carries the presentation that creates a document
type CreateRequest struct {
	Path         string
	Presentation []byte
}

// Create stores a document at a previously empty location. The
// presentation must be signed by the server owner and carry a
// credential whose subject is the new document.
func (c *Client) Create(ctx context.Context, req *CreateRequest) (*model.ProofParameters, error) {
	ctx, span := c.tracer.Start(ctx, "apiv1:Create")
	defer span.End()

	loc, err := c.resolveLocation(req.Path)
	if err != nil {
		return nil, err
	}

	if _, err := c.store.Get(ctx, loc.key); err == nil {
		return nil, helpers.NewErrorDetails(helpers.ErrDIDExists.Title, "DID already exists: "+loc.did.String())
	}

	presentation, err := vc.ParsePresentation(req.Presentation)
	if err != nil {
		return nil, helpers.NewErrorFromError(err)
	}

	if err := c.authorize(ctx, c.cfg.Owner, presentation); err != nil {
		return nil, err
	}

	// no document, no challenge: the proof binds domain and purpose
	opts := vc.ProofOptions{
		Domain:       c.cfg.ExternalHostname,
		ProofPurpose: vc.ProofPurposeAuthentication,
	}
	if err := c.verifier.VerifyPresentation(ctx, presentation, opts); err != nil {
		return nil, err
	}

	doc, err := c.extractDocument(presentation, loc)
	if err != nil {
		return nil, err
	}

	l := c.commitLock(loc.key)
	l.Lock()
	defer l.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, helpers.NewErrorDetails(helpers.ErrPresentationInvalid.Title, err.Error())
	}

	if _, err := c.store.Create(ctx, loc.key, doc); err != nil {
		return nil, err
	}

	c.log.Info("created", "did", loc.did.String())
	return c.proofParameters(loc, doc)
}

// UpdateRequest carries the presentation that replaces a document
type UpdateRequest struct {
	Path         string
	Presentation []byte
}

// Update replaces an existing document. The presentation must be
// signed by the DID itself and bind the challenge derived from the
// currently stored document.
func (c *Client) Update(ctx context.Context, req *UpdateRequest) (*model.ProofParameters, error) {
	ctx, span := c.tracer.Start(ctx, "apiv1:Update")
	defer span.End()

	loc, err := c.resolveLocation(req.Path)
	if err != nil {
		return nil, err
	}

	current, err := c.store.Get(ctx, loc.key)
	if err != nil {
		return nil, err
	}
	expected, err := challenge(current)
	if err != nil {
		return nil, err
	}

	presentation, err := vc.ParsePresentation(req.Presentation)
	if err != nil {
		return nil, helpers.NewErrorFromError(err)
	}

	if err := c.authorize(ctx, loc.did.String(), presentation); err != nil {
		return nil, err
	}

	opts := vc.ProofOptions{
		Challenge:    expected,
		Domain:       c.cfg.ExternalHostname,
		ProofPurpose: vc.ProofPurposeAuthentication,
	}
	if err := c.verifier.VerifyPresentation(ctx, presentation, opts); err != nil {
		return nil, err
	}

	doc, err := c.extractDocument(presentation, loc)
	if err != nil {
		return nil, err
	}

	l := c.commitLock(loc.key)
	l.Lock()
	defer l.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, helpers.NewErrorDetails(helpers.ErrPresentationInvalid.Title, err.Error())
	}

	// the challenge the proof was verified against must still describe
	// the stored document, concurrent writers lose this comparison
	now, err := c.currentChallenge(ctx, loc.key)
	if err != nil {
		return nil, err
	}
	if now == "" {
		return nil, helpers.NewErrorDetails(helpers.ErrDIDNotFound.Title, "DID not found")
	}
	if now != expected {
		return nil, helpers.NewErrorDetails(helpers.ErrPresentationInvalid.Title, "proof challenge does not match the current document")
	}

	if _, err := c.store.Update(ctx, loc.key, doc); err != nil {
		return nil, err
	}

	c.log.Info("updated", "did", loc.did.String())
	return c.proofParameters(loc, doc)
}

// DeleteRequest carries the presentation that removes a document
type DeleteRequest struct {
	Path         string
	Presentation []byte
}

// Delete removes an existing document. The presentation must be
// signed by the server owner and bind the current challenge.
func (c *Client) Delete(ctx context.Context, req *DeleteRequest) (*model.ProofParameters, error) {
	ctx, span := c.tracer.Start(ctx, "apiv1:Delete")
	defer span.End()

	loc, err := c.resolveLocation(req.Path)
	if err != nil {
		return nil, err
	}

	current, err := c.store.Get(ctx, loc.key)
	if err != nil {
		return nil, err
	}
	expected, err := challenge(current)
	if err != nil {
		return nil, err
	}

	presentation, err := vc.ParsePresentation(req.Presentation)
	if err != nil {
		return nil, helpers.NewErrorFromError(err)
	}

	if err := c.authorize(ctx, c.cfg.Owner, presentation); err != nil {
		return nil, err
	}

	opts := vc.ProofOptions{
		Challenge:    expected,
		Domain:       c.cfg.ExternalHostname,
		ProofPurpose: vc.ProofPurposeAuthentication,
	}
	if err := c.verifier.VerifyPresentation(ctx, presentation, opts); err != nil {
		return nil, err
	}

	l := c.commitLock(loc.key)
	l.Lock()
	defer l.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, helpers.NewErrorDetails(helpers.ErrPresentationInvalid.Title, err.Error())
	}

	now, err := c.currentChallenge(ctx, loc.key)
	if err != nil {
		return nil, err
	}
	if now == "" {
		return nil, helpers.NewErrorDetails(helpers.ErrDIDNotFound.Title, "DID not found")
	}
	if now != expected {
		return nil, helpers.NewErrorDetails(helpers.ErrPresentationInvalid.Title, "proof challenge does not match the current document")
	}

	if _, err := c.store.Remove(ctx, loc.key); err != nil {
		return nil, err
	}

	c.log.Info("removed", "did", loc.did.String())
	return c.proofParameters(loc, nil)
}

// extractDocument selects the credential issued for the location's DID
// and converts its subject into the proposed document. The round trip
// through the Document type strips properties outside the DID core
// data model.
func (c *Client) extractDocument(presentation *vc.Presentation, loc *location) (*model.Document, error) {
	cred, subject, err := presentation.FindSubject(loc.did.String())
	if err != nil {
		return nil, err
	}

	if err := cred.ValidateDates(time.Now().UTC()); err != nil {
		return nil, err
	}

	doc, err := model.DocumentFromValue(subject)
	if err != nil {
		return nil, helpers.NewErrorDetails(helpers.ErrContentConversion.Title, err.Error())
	}

	if doc.ID != loc.did.String() {
		return nil, helpers.NewErrorDetails(helpers.ErrDIDMismatch.Title, "document id "+doc.ID+" does not match "+loc.did.String())
	}

	return doc, nil
}
