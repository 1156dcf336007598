package apiv1

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/identinet/did-web-server/pkg/didweb"
	"github.com/identinet/did-web-server/pkg/helpers"
	"github.com/identinet/did-web-server/pkg/logger"
	"github.com/identinet/did-web-server/pkg/model"
	"github.com/identinet/did-web-server/pkg/resolver"
	"github.com/identinet/did-web-server/pkg/store"
	"github.com/identinet/did-web-server/pkg/trace"
	"github.com/identinet/did-web-server/pkg/vc"
)

// Client implements the lifecycle operations on DID Documents
type Client struct {
	cfg      *model.Cfg
	log      *logger.Log
	tracer   *trace.Tracer
	store    store.Store
	resolver resolver.Resolver
	verifier *vc.Verifier

	// commits serializes the read-check-and-write section per key,
	// verification itself runs outside of it
	mu      sync.Mutex
	commits map[string]*sync.Mutex
}

// New creates a new apiv1 client
func New(ctx context.Context, cfg *model.Cfg, s store.Store, r resolver.Resolver, tracer *trace.Tracer, log *logger.Log) (*Client, error) {
	c := &Client{
		cfg:      cfg,
		log:      log.New("apiv1"),
		tracer:   tracer,
		store:    s,
		resolver: r,
		verifier: vc.NewVerifier(r),
		commits:  make(map[string]*sync.Mutex),
	}

	c.log.Info("Started")

	return c, nil
}

// Close closes the client
func (c *Client) Close(ctx context.Context) error {
	c.log.Info("Stopped")
	return nil
}

// commitLock returns the mutex serializing commits on a key
func (c *Client) commitLock(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.commits[key]
	if !ok {
		l = &sync.Mutex{}
		c.commits[key] = l
	}
	return l
}

// location is a request path resolved into its DID and store key
type location struct {
	did *didweb.DID
	key string
}

// resolveLocation validates a request path and computes the DID and
// the store key it addresses. Validation happens before any I/O.
func (c *Client) resolveLocation(path string) (*location, error) {
	did, err := didweb.New(c.cfg.ExternalHostname, c.cfg.ExternalPort, c.cfg.ExternalPath, path)
	if err != nil {
		return nil, err
	}

	segments, err := didweb.RequestSegments(path)
	if err != nil {
		return nil, err
	}

	return &location{did: did, key: store.KeyFromSegments(segments)}, nil
}

// challenge derives the proof challenge of a document, the hex encoded
// SHA-256 hash of its canonical serialization
func challenge(doc *model.Document) (string, error) {
	data, err := doc.CanonicalSerialization()
	if err != nil {
		return "", helpers.NewErrorDetails(helpers.ErrContentConversion.Title, err.Error())
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// currentChallenge derives the challenge of the document currently
// stored at a key, the empty string when the key is empty
func (c *Client) currentChallenge(ctx context.Context, key string) (string, error) {
	doc, err := c.store.Get(ctx, key)
	if err != nil {
		if helpers.NewErrorFromError(err).Title == helpers.ErrDIDNotFound.Title {
			return "", nil
		}
		return "", err
	}
	return challenge(doc)
}

// proofParameters computes the proof parameters of a location from the
// document stored there, doc may be nil when the location is empty
func (c *Client) proofParameters(loc *location, doc *model.Document) (*model.ProofParameters, error) {
	params := &model.ProofParameters{
		Domain:       c.cfg.ExternalHostname,
		ProofPurpose: model.ProofPurposeAuthentication,
		DID:          loc.did.String(),
	}

	if doc != nil {
		ch, err := challenge(doc)
		if err != nil {
			return nil, err
		}
		params.Challenge = ch
	}

	return params, nil
}
