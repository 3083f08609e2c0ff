// Package election implements the Election configuration of spec.md §3:
// an immutable set of candidates, a height window, and a deterministic
// ElectionDomain field element derived from an opaque domain seed.
package election

import (
	"math/big"

	"github.com/vocdoni/zvote/address"
	"github.com/vocdoni/zvote/crypto/field"
	"github.com/vocdoni/zvote/crypto/hash"
)

// Candidate pairs a vote address with the human-meaningful choice label
// it represents.
type Candidate struct {
	Address address.VoteAddress
	Choice  string
}

// Election is the immutable per-session configuration: set once at
// initialization (spec.md §3 "Election is set at initialization and
// never mutated"), never mutated afterward.
type Election struct {
	ID                string
	StartHeight       uint32
	EndHeight         uint32
	SignatureRequired bool
	Candidates        []Candidate
	DomainSeed        []byte
}

var domainPerson = person16("Zcash_ElectionDom")

func person16(s string) []byte {
	b := make([]byte, 16)
	copy(b, s)
	return b
}

// Domain derives the ElectionDomain field element that parameterizes the
// domain-bound nullifier function, deterministically from DomainSeed.
func (e Election) Domain() field.Fp {
	digest := hash.Personalized(domainPerson, e.DomainSeed)
	return field.NewFp(new(big.Int).SetBytes(digest[:]))
}

// CandidateFor returns the Candidate matching addr, if the election
// recognizes it.
func (e Election) CandidateFor(addr address.VoteAddress) (Candidate, bool) {
	for _, c := range e.Candidates {
		if c.Address == addr {
			return c, true
		}
	}
	return Candidate{}, false
}
