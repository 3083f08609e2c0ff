// Package notes implements the Orchard note structure spec.md §3
// defines: a shielded note, its extracted commitment (CMX), and the two
// nullifier variants (global NF, domain-bound DNF). Commitment and
// nullifier derivation stand in for Orchard's Sinsemilla-based
// NoteCommit/PRF^nf with personalized BLAKE2b (see crypto/hash and
// DESIGN.md) — same substitution already used for the Merkle combine
// function, kept consistent across the binding layer.
package notes

import (
	"encoding/binary"
	"math/big"

	"github.com/vocdoni/zvote/crypto/field"
	"github.com/vocdoni/zvote/crypto/hash"
	"github.com/vocdoni/zvote/crypto/keys"
)

// RawAddressLen is the length of a raw Orchard recipient: an 11-byte
// diversifier followed by a 32-byte diversified transmission key.
const RawAddressLen = 43

// RawAddress is the 43-byte recipient a note is sent to.
type RawAddress [RawAddressLen]byte

// Note is a shielded Orchard note.
type Note struct {
	Recipient RawAddress
	Value     uint64
	Rho       field.Fp // the nullifier of the note that created this one's position context
	Rseed     [32]byte
}

var (
	commitPerson = person16("Zcash_NoteCommit")
	nfPerson     = person16("Zcash_OrchardNf")
	dnfPerson    = person16("Zcash_OrchardDnf")
)

func person16(s string) []byte {
	b := make([]byte, 16)
	copy(b, s)
	return b
}

// Commitment computes the note's extracted commitment (CMX): a
// personalized BLAKE2b digest of (recipient, value, rho, rseed), reduced
// into Fp, standing in for the x-coordinate of Orchard's NoteCommit.
func (n Note) Commitment() field.Fp {
	buf := make([]byte, 0, RawAddressLen+8+32+32)
	buf = append(buf, n.Recipient[:]...)
	buf = appendU64(buf, n.Value)
	rhoBytes := n.Rho.Bytes()
	buf = append(buf, rhoBytes[:]...)
	buf = append(buf, n.Rseed[:]...)
	digest := hash.Personalized(commitPerson, buf)
	return field.NewFp(new(big.Int).SetBytes(digest[:]))
}

// Nullifier computes the global nullifier nf = NF(fvk, note): a snapshot
// membership witness, independent of any particular election.
func (n Note) Nullifier(fvk keys.FullViewingKey) field.Fp {
	return deriveNullifier(nfPerson, fvk, n, nil)
}

// DomainNullifier computes the domain-bound nullifier dnf =
// NF_d(fvk, note, domain): the value a ballot actually publishes.
func (n Note) DomainNullifier(fvk keys.FullViewingKey, domain field.Fp) field.Fp {
	domainBytes := domain.Bytes()
	return deriveNullifier(dnfPerson, fvk, n, domainBytes[:])
}

func deriveNullifier(person []byte, fvk keys.FullViewingKey, n Note, domain []byte) field.Fp {
	nkBytes := fvk.Nk.Bytes()
	rhoBytes := n.Rho.Bytes()
	buf := make([]byte, 0, 32+32+32+len(domain))
	buf = append(buf, nkBytes[:]...)
	buf = append(buf, rhoBytes[:]...)
	buf = append(buf, n.Rseed[:]...)
	buf = append(buf, domain...)
	digest := hash.Personalized(person, buf)
	return field.NewFp(new(big.Int).SetBytes(digest[:]))
}

// Dummy constructs a dummy spend-note bound to rho, per spec.md §4.6 step
// 2's "generate dummy spend-notes via the protocol's dummy-note
// constructor". rseed is caller-supplied randomness; value is zero.
func Dummy(rho field.Fp, rseed [32]byte, recipient RawAddress) Note {
	return Note{Recipient: recipient, Value: 0, Rho: rho, Rseed: rseed}
}

func appendU64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}
