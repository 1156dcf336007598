package model

import (
	"encoding/json"
)

// Document is a DID Document according to the W3C DID core data model.
// The server treats the document as opaque JSON-LD, the typed fields
// cover the attributes the lifecycle engine inspects: the id and the
// verification methods grouped under their relationships.
type Document struct {
	Context              json.RawMessage          `json:"@context,omitempty"`
	ID                   string                   `json:"id"`
	AlsoKnownAs          []string                 `json:"alsoKnownAs,omitempty"`
	Controller           json.RawMessage          `json:"controller,omitempty"`
	VerificationMethod   []VerificationMethod     `json:"verificationMethod,omitempty"`
	Authentication       []VerificationMethodRef  `json:"authentication,omitempty"`
	AssertionMethod      []VerificationMethodRef  `json:"assertionMethod,omitempty"`
	KeyAgreement         []VerificationMethodRef  `json:"keyAgreement,omitempty"`
	CapabilityInvocation []VerificationMethodRef  `json:"capabilityInvocation,omitempty"`
	CapabilityDelegation []VerificationMethodRef  `json:"capabilityDelegation,omitempty"`
	Service              []map[string]interface{} `json:"service,omitempty"`
}

// VerificationMethod is a key entry of a DID Document
type VerificationMethod struct {
	ID                 string          `json:"id"`
	Type               string          `json:"type,omitempty"`
	Controller         string          `json:"controller,omitempty"`
	PublicKeyMultibase string          `json:"publicKeyMultibase,omitempty"`
	PublicKeyBase58    string          `json:"publicKeyBase58,omitempty"`
	PublicKeyJwk       json.RawMessage `json:"publicKeyJwk,omitempty"`
}

// VerificationMethodRef is an entry of a verification relationship,
// either a reference to a verification method by id or an embedded
// verification method.
type VerificationMethodRef struct {
	Ref      string
	Embedded *VerificationMethod
}

// VMID returns the verification method identifier the entry points at.
func (r VerificationMethodRef) VMID() string {
	if r.Embedded != nil {
		return r.Embedded.ID
	}
	return r.Ref
}

// UnmarshalJSON accepts a JSON string reference or an embedded object.
func (r *VerificationMethodRef) UnmarshalJSON(data []byte) error {
	var ref string
	if err := json.Unmarshal(data, &ref); err == nil {
		r.Ref = ref
		r.Embedded = nil
		return nil
	}
	vm := &VerificationMethod{}
	if err := json.Unmarshal(data, vm); err != nil {
		return err
	}
	r.Ref = ""
	r.Embedded = vm
	return nil
}

// MarshalJSON renders the entry the way it was unmarshalled.
func (r VerificationMethodRef) MarshalJSON() ([]byte, error) {
	if r.Embedded != nil {
		return json.Marshal(r.Embedded)
	}
	return json.Marshal(r.Ref)
}

// ParseDocument parses a DID Document from JSON.
func ParseDocument(data []byte) (*Document, error) {
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// DocumentFromValue round-trips an arbitrary JSON value through the
// Document type. Properties outside the DID core data model are
// stripped in the process.
func DocumentFromValue(v interface{}) (*Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return ParseDocument(data)
}

// CanonicalSerialization returns the deterministic JSON encoding of the
// document that challenges are derived from. Encoding a typed struct
// keeps the member order fixed across processes.
func (d *Document) CanonicalSerialization() ([]byte, error) {
	return json.Marshal(d)
}

// RelationshipMethods returns the verification method identifiers
// listed under the given relationship.
func (d *Document) RelationshipMethods(relationship string) []string {
	var refs []VerificationMethodRef
	switch relationship {
	case "authentication":
		refs = d.Authentication
	case "assertionMethod":
		refs = d.AssertionMethod
	case "keyAgreement":
		refs = d.KeyAgreement
	case "capabilityInvocation":
		refs = d.CapabilityInvocation
	case "capabilityDelegation":
		refs = d.CapabilityDelegation
	default:
		return nil
	}

	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if id := ref.VMID(); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// FindVerificationMethod looks up a verification method by id, first in
// the verificationMethod section, then in embedded relationship
// entries.
func (d *Document) FindVerificationMethod(id string) *VerificationMethod {
	for i := range d.VerificationMethod {
		if d.VerificationMethod[i].ID == id {
			return &d.VerificationMethod[i]
		}
	}
	for _, refs := range [][]VerificationMethodRef{
		d.Authentication, d.AssertionMethod, d.KeyAgreement,
		d.CapabilityInvocation, d.CapabilityDelegation,
	} {
		for _, ref := range refs {
			if ref.Embedded != nil && ref.Embedded.ID == id {
				return ref.Embedded
			}
		}
	}
	return nil
}
