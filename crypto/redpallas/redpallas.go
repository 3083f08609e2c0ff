// Package redpallas implements the RedPallas Schnorr signature scheme
// spec.md uses for spend-authorization and binding signatures: sign with
// a scalar key, verify against its public point, both over the Pallas
// group from crypto/group. RedPallas proper additionally re-randomizes
// keys before signing (crypto/keys.RandomizeAsk/RandomizeAk already
// implements that half); this package is the plain Schnorr sign/verify
// underneath.
package redpallas

import (
	"math/big"

	"github.com/vocdoni/zvote/crypto/field"
	"github.com/vocdoni/zvote/crypto/group"
	"github.com/vocdoni/zvote/crypto/hash"
)

// SignatureLen is the wire length of a RedPallas signature: a compressed
// commitment point R (32 bytes) followed by the scalar response s (32
// bytes).
const SignatureLen = 64

// Signature is a RedPallas Schnorr signature (R, s).
type Signature [SignatureLen]byte

var challengePerson = person16("Zcash_RedPallasH")

func person16(s string) []byte {
	b := make([]byte, 16)
	copy(b, s)
	return b
}

// Sign produces a Schnorr signature over msg under secret key sk, using
// rand as the 32-byte nonce source (tests inject a deterministic value;
// production wires a CSPRNG, per spec.md §4.7).
func Sign(sk field.Fq, msg []byte, nonce [32]byte) Signature {
	k := nonceToFq(nonce)
	r := group.Generator().ScalarMul(k)
	c := challenge(r, msg)
	// s = k + c*sk
	s := k.Add(c.Mul(sk))

	var out Signature
	rBytes := r.Bytes()
	sBytes := s.Bytes()
	copy(out[:32], rBytes[:])
	copy(out[32:], sBytes[:])
	return out
}

// Verify checks sig against msg under the public key pk = sk*G.
func Verify(pk group.Point, msg []byte, sig Signature) bool {
	r, ok := group.FromBytes(sig[:32])
	if !ok {
		return false
	}
	s, ok := field.FqFromBytes(sig[32:])
	if !ok {
		return false
	}
	c := challenge(r, msg)
	// check s*G == R + c*pk
	lhs := group.Generator().ScalarMul(s)
	rhs := r.Add(pk.ScalarMul(c))
	return lhs.Bytes() == rhs.Bytes()
}

func challenge(r group.Point, msg []byte) field.Fq {
	rBytes := r.Bytes()
	buf := make([]byte, 0, 32+len(msg))
	buf = append(buf, rBytes[:]...)
	buf = append(buf, msg...)
	digest := hash.Personalized(challengePerson, buf)
	return field.NewFq(new(big.Int).SetBytes(digest[:]))
}

func nonceToFq(nonce [32]byte) field.Fq {
	return field.NewFq(new(big.Int).SetBytes(nonce[:]))
}
