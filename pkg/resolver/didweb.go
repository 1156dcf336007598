package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/identinet/did-web-server/pkg/didweb"
	"github.com/identinet/did-web-server/pkg/logger"
	"github.com/identinet/did-web-server/pkg/model"

	"github.com/jellydator/ttlcache/v3"
)

const resolutionCacheTTL = 5 * time.Minute

// WebResolver resolves did:web identifiers by fetching the document
// from the well-known HTTPS location derived from the DID. Results are
// cached for a short period.
type WebResolver struct {
	client  *http.Client
	timeout time.Duration
	cache   *ttlcache.Cache[string, *model.Document]
	log     *logger.Log
}

// NewWebResolver creates the built-in did:web resolver
func NewWebResolver(timeout time.Duration, log *logger.Log) *WebResolver {
	r := &WebResolver{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		cache: ttlcache.New(
			ttlcache.WithTTL[string, *model.Document](resolutionCacheTTL),
			ttlcache.WithDisableTouchOnHit[string, *model.Document](),
		),
		log: log,
	}
	go r.cache.Start()
	return r
}

// URL translates a did:web DID into the location of its document
func (r *WebResolver) URL(did string) (string, error) {
	d, err := didweb.Parse(did)
	if err != nil {
		return "", err
	}

	// plain http for localhost, everything else is fetched over https
	scheme := "https"
	if d.Host() == "localhost" {
		scheme = "http"
	}

	host := d.Host()
	if (scheme == "https" && d.Port() != 443) || (scheme == "http" && d.Port() != 80) {
		host = fmt.Sprintf("%s:%d", d.Host(), d.Port())
	}

	path := didweb.WellKnown
	if segments := d.Segments(); len(segments) > 0 {
		path = strings.Join(segments, "/")
	}

	return fmt.Sprintf("%s://%s/%s/%s", scheme, host, path, didweb.DocumentFileName), nil
}

// Resolve fetches the document of a did:web DID
func (r *WebResolver) Resolve(ctx context.Context, did string) (*model.Document, error) {
	if !strings.HasPrefix(did, "did:"+didweb.MethodName+":") {
		return nil, fmt.Errorf("not a did:web DID: %s", did)
	}

	if item := r.cache.Get(did); item != nil {
		return item.Value(), nil
	}

	url, err := r.URL(did)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/did+ld+json, application/json")

	res, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status %d", url, res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	doc, err := model.ParseDocument(body)
	if err != nil {
		return nil, fmt.Errorf("invalid document at %s: %w", url, err)
	}

	r.cache.Set(did, doc, ttlcache.DefaultTTL)
	return doc, nil
}
