// Package didweb implements the identifier syntax of the did:web
// method, https://w3c-ccg.github.io/did-method-web/
package didweb

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/identinet/did-web-server/pkg/helpers"
)

// MethodName is the DID method implemented by this server
const MethodName = "web"

// WellKnown is the storage location of a root DID without segments
const WellKnown = ".well-known"

// DocumentFileName is the required filename of every DID request path
const DocumentFileName = "did.json"

// segmentRe is the character set of a DID method-specific id segment,
// https://w3c.github.io/did-core/#did-syntax
var segmentRe = regexp.MustCompile(`^([A-Za-z._-]|%[A-F][A-F])+$`)

// DID is a did:web identifier
type DID struct {
	host     string
	port     uint16
	segments []string
}

// Host returns the host part of the DID
func (d *DID) Host() string { return d.host }

// Port returns the port the DID refers to
func (d *DID) Port() uint16 { return d.port }

// Segments returns the path segments of the DID, empty for a root DID
func (d *DID) Segments() []string { return d.segments }

// defaultPort is the port assumed when the identifier carries none
func defaultPort(host string) uint16 {
	if host == "localhost" {
		return 8080
	}
	return 443
}

// parsePort validates the port of a DID. The empty string selects the
// protocol default, 8080 for localhost and 443 otherwise. Port 0 and
// non-numeric values are rejected.
func parsePort(host, port string) (uint16, error) {
	if port == "" {
		return defaultPort(host), nil
	}
	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return 0, helpers.NewErrorDetails(helpers.ErrDIDPortNotAllowed.Title, err.Error())
	}
	if p == 0 {
		return 0, helpers.NewErrorDetails(helpers.ErrDIDPortNotAllowed.Title, "Port '0' out of range, expected 1-65535")
	}
	return uint16(p), nil
}

// parseSegment validates a single segment of the method-specific id
func parseSegment(segment string) (string, error) {
	if !segmentRe.MatchString(segment) {
		return "", helpers.NewErrorDetails(helpers.ErrIllegalCharacter.Title, fmt.Sprintf("segment %q contains illegal character", segment))
	}
	return segment, nil
}

// splitPath splits a URL path on / and drops empty parts
func splitPath(path string) []string {
	parts := []string{}
	for _, p := range strings.Split(path, "/") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// New builds the DID a request path resolves to. The request path must
// name a did.json file. The path .well-known/did.json maps to the root
// DID without segments, every other path contributes its parent
// directories as segments, appended to the configured path prefix.
func New(host, port, pathPrefix, requestPath string) (*DID, error) {
	p, err := parsePort(host, port)
	if err != nil {
		return nil, err
	}

	if _, err := parseSegment(host); err != nil {
		return nil, err
	}

	parts := splitPath(requestPath)
	if len(parts) == 0 || parts[len(parts)-1] != DocumentFileName {
		return nil, helpers.NewErrorDetails(helpers.ErrNoFileName.Title, fmt.Sprintf("request path %q does not name a %s document", requestPath, DocumentFileName))
	}
	parts = parts[:len(parts)-1]

	segments := []string{}
	for _, seg := range splitPath(pathPrefix) {
		s, err := parseSegment(seg)
		if err != nil {
			return nil, err
		}
		segments = append(segments, s)
	}

	// .well-known/did.json addresses the root DID, it contributes no
	// segments
	if !(len(parts) == 1 && parts[0] == WellKnown) {
		for _, seg := range parts {
			s, err := parseSegment(seg)
			if err != nil {
				return nil, err
			}
			segments = append(segments, s)
		}
	}

	return &DID{host: host, port: p, segments: segments}, nil
}

// RequestSegments validates a request path and returns the segments it
// contributes to a DID, empty for the root path .well-known/did.json.
func RequestSegments(requestPath string) ([]string, error) {
	parts := splitPath(requestPath)
	if len(parts) == 0 || parts[len(parts)-1] != DocumentFileName {
		return nil, helpers.NewErrorDetails(helpers.ErrNoFileName.Title, fmt.Sprintf("request path %q does not name a %s document", requestPath, DocumentFileName))
	}
	parts = parts[:len(parts)-1]

	if len(parts) == 1 && parts[0] == WellKnown {
		return []string{}, nil
	}

	segments := make([]string, 0, len(parts))
	for _, seg := range parts {
		s, err := parseSegment(seg)
		if err != nil {
			return nil, err
		}
		segments = append(segments, s)
	}
	return segments, nil
}

// Parse parses a did:web string into its identifier value
func Parse(did string) (*DID, error) {
	prefix := "did:" + MethodName + ":"
	if !strings.HasPrefix(did, prefix) {
		return nil, helpers.NewErrorDetails(helpers.ErrIllegalCharacter.Title, fmt.Sprintf("%q is not a did:web DID", did))
	}

	parts := strings.Split(strings.TrimPrefix(did, prefix), ":")
	host := parts[0]
	port := ""
	if h, p, found := strings.Cut(host, "%3A"); found {
		host = h
		port = p
	}

	d := &DID{}
	p, err := parsePort(host, port)
	if err != nil {
		return nil, err
	}
	d.port = p

	if _, err := parseSegment(host); err != nil {
		return nil, err
	}
	d.host = host

	for _, seg := range parts[1:] {
		s, err := parseSegment(seg)
		if err != nil {
			return nil, err
		}
		d.segments = append(d.segments, s)
	}

	return d, nil
}

// String formats the DID. The protocol default port is elided,
// any other port is joined to the host percent-encoded.
func (d *DID) String() string {
	host := d.host
	if d.port != defaultPort(d.host) {
		host = fmt.Sprintf("%s%%3A%d", d.host, d.port)
	}

	if len(d.segments) == 0 {
		return fmt.Sprintf("did:%s:%s", MethodName, host)
	}
	return fmt.Sprintf("did:%s:%s:%s", MethodName, host, strings.Join(d.segments, ":"))
}
