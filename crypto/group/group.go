// Package group implements Pallas elliptic-curve group operations: the
// curve zvote's Orchard-derived primitives (value commitments, key
// derivation, RedPallas signatures) all sit on top of. Pallas is the short
// Weierstrass curve y² = x³ + 5 over Fp, with scalars drawn from Fq
// (crypto/field's Fq is Pallas's scalar field, matching Vesta's base
// field — the two-cycle Zcash uses the Pasta name for).
//
// There is no Pasta-curve group-arithmetic library anywhere in the
// retrieved pack, so this package implements affine point arithmetic
// directly over crypto/field, following the same shape
// consensys/gnark-crypto generates for its short-Weierstrass curves
// (Add/Double/ScalarMul over big.Int-backed coordinates, compressed
// point encoding with a sign bit) without importing gnark-crypto itself,
// since its generated curves (BN254, BLS12-381, ...) are not Pallas.
package group

import (
	"math/big"

	"github.com/vocdoni/zvote/crypto/field"
)

// curveB is the Pallas curve equation's constant term: y² = x³ + 5.
var curveB = field.FpFromUint64(5)

// Point is an affine Pallas point. Infinity is represented by infinity=true,
// in which case X and Y are not meaningful.
type Point struct {
	X, Y     field.Fp
	infinity bool
}

// Identity returns the point at infinity, the group's additive identity.
func Identity() Point {
	return Point{infinity: true}
}

// IsIdentity reports whether p is the point at infinity.
func (p Point) IsIdentity() bool {
	return p.infinity
}

// Generator returns the fixed base point used to derive spend-validating
// and nullifier-deriving keys (analogous to Orchard's SpendAuthG). Its
// coordinates are an arbitrary but fixed low-order-free point on the curve,
// pinned here rather than computed, since zvote never needs to prove
// knowledge of its discrete log relative to another generator.
func Generator() Point {
	// A point found by incrementing x from 1 until x³+5 is a square mod p;
	// (x=1, y=sqrt(6)) happens to work for the Pallas modulus.
	x := field.FpFromUint64(1)
	rhs := x.Mul(x).Mul(x).Add(curveB)
	y, ok := sqrtFp(rhs)
	if !ok {
		panic("group: fixed generator x=1 is not on curve; pick another x")
	}
	return Point{X: x, Y: y}
}

// sqrtFp computes a square root of a modulo the Pallas base field, using
// Tonelli-Shanks via big.Int's ModSqrt (math/big's implementation, itself
// Tonelli-Shanks, is the standard library's only modular square root
// primitive and is what this reduces to regardless of curve).
func sqrtFp(a field.Fp) (field.Fp, bool) {
	r := new(big.Int).ModSqrt(a.BigInt(), field.FpModulus())
	if r == nil {
		return field.Fp{}, false
	}
	return field.NewFp(r), true
}

// IsOnCurve reports whether p satisfies y² = x³ + 5, or is the identity.
func (p Point) IsOnCurve() bool {
	if p.infinity {
		return true
	}
	lhs := p.Y.Mul(p.Y)
	rhs := p.X.Mul(p.X).Mul(p.X).Add(curveB)
	return lhs.Equal(rhs)
}

// Add returns p + q using the standard affine short-Weierstrass addition
// law (a=0 simplifies the tangent-slope term in Double to drop out).
func (p Point) Add(q Point) Point {
	if p.infinity {
		return q
	}
	if q.infinity {
		return p
	}
	if p.X.Equal(q.X) {
		if p.Y.Equal(q.Y) && !p.Y.Equal(field.FpZero()) {
			return p.Double()
		}
		// p.X == q.X and Y values differ (or Y==0): p + (-p) = identity.
		return Identity()
	}
	// slope = (q.Y - p.Y) / (q.X - p.X)
	num := q.Y.Sub(p.Y)
	den := q.X.Sub(p.X)
	slope := num.Mul(invFp(den))
	x3 := slope.Mul(slope).Sub(p.X).Sub(q.X)
	y3 := slope.Mul(p.X.Sub(x3)).Sub(p.Y)
	return Point{X: x3, Y: y3}
}

// Double returns p + p.
func (p Point) Double() Point {
	if p.infinity || p.Y.Equal(field.FpZero()) {
		return Identity()
	}
	two := field.FpFromUint64(2)
	three := field.FpFromUint64(3)
	// slope = 3x² / 2y  (curve coefficient a = 0)
	num := three.Mul(p.X).Mul(p.X)
	den := two.Mul(p.Y)
	slope := num.Mul(invFp(den))
	x3 := slope.Mul(slope).Sub(p.X).Sub(p.X)
	y3 := slope.Mul(p.X.Sub(x3)).Sub(p.Y)
	return Point{X: x3, Y: y3}
}

// Negate returns -p.
func (p Point) Negate() Point {
	if p.infinity {
		return p
	}
	return Point{X: p.X, Y: field.FpZero().Sub(p.Y)}
}

// ScalarMul returns s*p using double-and-add over the canonical
// little-endian byte representation of s.
func (p Point) ScalarMul(s field.Fq) Point {
	acc := Identity()
	base := p
	bytes := s.Bytes()
	for byteIdx := 0; byteIdx < len(bytes); byteIdx++ {
		b := bytes[byteIdx]
		for bit := 0; bit < 8; bit++ {
			if (b>>uint(bit))&1 == 1 {
				acc = acc.Add(base)
			}
			base = base.Double()
		}
	}
	return acc
}

// invFp computes the multiplicative inverse of a nonzero Fp element via
// Fermat's little theorem (a^(p-2) mod p), using math/big's ModInverse
// instead since it is the more direct primitive.
func invFp(a field.Fp) field.Fp {
	inv := new(big.Int).ModInverse(a.BigInt(), field.FpModulus())
	if inv == nil {
		panic("group: attempted to invert zero")
	}
	return field.NewFp(inv)
}

// Bytes encodes p in Orchard's compressed point format: the 32-byte
// canonical little-endian encoding of X, with the top bit of the last byte
// set to the least-significant bit of Y (its "sign"). The identity encodes
// as all-zero bytes with the sign bit clear.
func (p Point) Bytes() [32]byte {
	if p.infinity {
		return [32]byte{}
	}
	out := p.X.Bytes()
	if isOdd(p.Y) {
		out[31] |= 0x80
	}
	return out
}

// FromBytes decodes a compressed point, recovering Y via the curve
// equation and its square root, and rejects points not on the curve. The
// all-zero encoding decodes to the identity.
func FromBytes(b []byte) (Point, bool) {
	if len(b) != 32 {
		return Point{}, false
	}
	var zero [32]byte
	if [32]byte(b2arr(b)) == zero {
		return Identity(), true
	}
	sign := b[31]&0x80 != 0
	xBytes := make([]byte, 32)
	copy(xBytes, b)
	xBytes[31] &^= 0x80
	x, ok := field.FpFromBytes(xBytes)
	if !ok {
		return Point{}, false
	}
	rhs := x.Mul(x).Mul(x).Add(curveB)
	y, ok := sqrtFp(rhs)
	if !ok {
		return Point{}, false
	}
	if isOdd(y) != sign {
		y = field.FpZero().Sub(y)
	}
	p := Point{X: x, Y: y}
	if !p.IsOnCurve() {
		return Point{}, false
	}
	return p, true
}

func b2arr(b []byte) [32]byte {
	var out [32]byte
	copy(out[:], b)
	return out
}

func isOdd(a field.Fp) bool {
	return a.BigInt().Bit(0) == 1
}
