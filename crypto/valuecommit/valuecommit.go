// Package valuecommit implements Orchard-style value commitments: a
// Pedersen commitment to a signed value under a blinding trapdoor, with
// the additive homomorphism spec.md §4.8 step 3 relies on to turn a sum
// of per-Action commitments directly into a binding verification key.
package valuecommit

import (
	"math/big"

	"github.com/vocdoni/zvote/crypto/field"
	"github.com/vocdoni/zvote/crypto/group"
)

// valueBase and trapdoorBase are the two generators the commitment is
// built from (in place of Orchard's ValueCommitV / ValueCommitR). They
// are Generator() and Generator().Double().Add(Generator()), so
// trapdoorBase = 3*valueBase: their discrete-log relation is public, and
// they are not independent generators (BindingSigningKey relies on this).
var (
	valueBase    = group.Generator()
	trapdoorBase = group.Generator().Double().Add(group.Generator())
)

// Trapdoor is the blinding randomness rcv of spec.md §4.6 step 3.
type Trapdoor = field.Fq

// Commitment is cv_net: a Pedersen commitment value*V + rcv*R.
type Commitment struct {
	point group.Point
}

// Commit builds Commit(value; rcv) = value*V + rcv*R. value may be
// negative (value_in - value_out); it is reduced into Fq via its
// two's-complement-free signed encoding below.
func Commit(value int64, rcv Trapdoor) Commitment {
	v := signedToFq(value)
	p := valueBase.ScalarMul(v).Add(trapdoorBase.ScalarMul(rcv))
	return Commitment{point: p}
}

// Add implements the additive homomorphism: Commit(a;r1) + Commit(b;r2) =
// Commit(a+b; r1+r2).
func (c Commitment) Add(other Commitment) Commitment {
	return Commitment{point: c.point.Add(other.point)}
}

// Sum folds Add over a slice of commitments, starting from the identity.
func Sum(cs []Commitment) Commitment {
	acc := Commitment{point: group.Identity()}
	for _, c := range cs {
		acc = acc.Add(c)
	}
	return acc
}

// Point exposes the underlying group element, e.g. to reinterpret a
// summed commitment as a RedPallas binding verification key.
func (c Commitment) Point() group.Point {
	return c.point
}

// Bytes is the 32-byte compressed encoding used as the wire cv_net field.
func (c Commitment) Bytes() [32]byte {
	return c.point.Bytes()
}

// FromBytes parses a compressed cv_net field back into a Commitment.
func FromBytes(b []byte) (Commitment, bool) {
	p, ok := group.FromBytes(b)
	if !ok {
		return Commitment{}, false
	}
	return Commitment{point: p}, true
}

// BindingSigningKey derives the RedPallas secret scalar whose public
// point is Sum of every Action's cv_net, for a balanced ballot (total
// value_in == total value_out across all Actions). Since trapdoorBase is
// built as 3*valueBase, Commit(v;rcv) = (v + 3*rcv)*valueBase; when the
// value terms cancel across a balanced ballot's Actions, the summed
// commitment reduces to (3*total_rcv)*valueBase, so signing under
// valueBase (RedPallas's fixed generator) requires the scalar 3*total_rcv
// rather than total_rcv itself (spec.md §4.6 step 6's "derive the binding
// signing key from total_rcv").
func BindingSigningKey(totalRcv Trapdoor) field.Fq {
	three := field.NewFq(big.NewInt(3))
	return totalRcv.Mul(three)
}

// signedToFq reduces a signed value into Fq using Euclidean modulus, so
// negative values (value_out > value_in) wrap to q - |value| as the
// additive-homomorphism arithmetic requires.
func signedToFq(value int64) field.Fq {
	v := big.NewInt(value)
	v.Mod(v, field.FqModulus())
	return field.NewFq(v)
}
