package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/identinet/did-web-server/pkg/logger"
	"github.com/identinet/did-web-server/pkg/model"

	"github.com/jellydator/ttlcache/v3"
)

// HTTPResolver delegates resolution of any DID method to an external
// HTTP DID resolver, GET <endpoint>/<did>. It serves as override or
// fallback of the chain.
type HTTPResolver struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
	cache    *ttlcache.Cache[string, *model.Document]
	log      *logger.Log
}

// resolutionResult is the universal-resolver response envelope
type resolutionResult struct {
	DIDDocument json.RawMessage `json:"didDocument"`
}

// NewHTTPResolver creates a resolver backed by an external endpoint
func NewHTTPResolver(endpoint string, timeout time.Duration, log *logger.Log) *HTTPResolver {
	r := &HTTPResolver{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
		timeout:  timeout,
		cache: ttlcache.New(
			ttlcache.WithTTL[string, *model.Document](resolutionCacheTTL),
			ttlcache.WithDisableTouchOnHit[string, *model.Document](),
		),
		log: log,
	}
	go r.cache.Start()
	return r
}

// Resolve asks the external resolver for the DID's document. Both a
// bare document and a DID resolution result envelope are accepted as
// response body.
func (r *HTTPResolver) Resolve(ctx context.Context, did string) (*model.Document, error) {
	if item := r.cache.Get(did); item != nil {
		return item.Value(), nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"/"+url.PathEscape(did), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/ld+json;profile=\"https://w3id.org/did-resolution\", application/did+ld+json, application/json")

	res, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resolver %s: %w", r.endpoint, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("resolver %s: status %d for %s", r.endpoint, res.StatusCode, did)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	result := &resolutionResult{}
	if err := json.Unmarshal(body, result); err == nil && len(result.DIDDocument) > 0 {
		body = result.DIDDocument
	}

	doc, err := model.ParseDocument(body)
	if err != nil {
		return nil, fmt.Errorf("resolver %s: invalid document for %s: %w", r.endpoint, did, err)
	}
	if doc.ID == "" {
		return nil, fmt.Errorf("resolver %s: no document for %s", r.endpoint, did)
	}

	r.cache.Set(did, doc, ttlcache.DefaultTTL)
	return doc, nil
}
