package model

// ProofPurposeAuthentication is the proof purpose bound into VP proofs
// that modify documents on this server.
const ProofPurposeAuthentication = "authentication"

// ProofParameters instruct a client how to construct the proof of a
// verifiable presentation for the next operation on a DID. The
// challenge is derived from the currently stored document and changes
// with every modification, binding a presentation to exactly one
// version of the document.
type ProofParameters struct {
	// Challenge is the hex encoded SHA-256 hash of the current
	// document's canonical serialization, absent when no document is
	// stored yet
	Challenge string `json:"challenge,omitempty"`

	// Domain is the externally visible hostname of this server
	Domain string `json:"domain"`

	// ProofPurpose the presentation proof must declare
	ProofPurpose string `json:"proofPurpose"`

	// DID the request path resolves to
	DID string `json:"did"`
}
