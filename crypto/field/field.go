// Package field implements the two prime fields of the Pallas/Vesta curve
// pair used by Orchard: Fp (the Pallas base field, in which note
// commitments, nullifiers and Merkle hashes live) and Fq (the Pallas scalar
// field, used for spend-authorization randomness).
//
// No pack example vendors a Pasta-curve library (the retrieved examples only
// carry BN254/BLS12-377/secp256k1 stacks via gnark-crypto and go-ethereum),
// so this package is a from-scratch, math/big-backed implementation of the
// two fixed prime fields rather than a wrapper around an existing one — see
// DESIGN.md for the standard-library justification. Its API shape (fixed
// 32-byte little-endian canonical encoding, an ordered Cmp, additive/
// multiplicative inverse) mirrors how gnark-crypto's fr.Element/fp.Element
// types are used elsewhere in the pack (vocdoni-davinci-node/circuits).
package field

import "math/big"

// Byte length of the canonical little-endian encoding of any element of Fp
// or Fq.
const ByteLen = 32

// pallasBaseModulus is the Pallas base field modulus p, i.e. the field Fp in
// which ExtractedNoteCommitment and Nullifier values live.
var pallasBaseModulus, _ = new(big.Int).SetString(
	"40000000000000000000000000000000224698fc094cf91b992d30ed00000001", 16)

// pallasScalarModulus is the Pallas scalar field modulus q, i.e. the field
// Fq used for spend-authorization/binding randomness (alpha, rcv).
var pallasScalarModulus, _ = new(big.Int).SetString(
	"40000000000000000000000000000000224698fc0994a8dd8c46eb2100000001", 16)

// Fp is an element of the Pallas base field.
type Fp struct{ v *big.Int }

// Fq is an element of the Pallas scalar field.
type Fq struct{ v *big.Int }

// FpModulus returns a copy of the Pallas base field modulus.
func FpModulus() *big.Int { return new(big.Int).Set(pallasBaseModulus) }

// FqModulus returns a copy of the Pallas scalar field modulus.
func FqModulus() *big.Int { return new(big.Int).Set(pallasScalarModulus) }

// NewFp reduces v modulo the base field and returns the resulting element.
func NewFp(v *big.Int) Fp { return Fp{new(big.Int).Mod(v, pallasBaseModulus)} }

// NewFq reduces v modulo the scalar field and returns the resulting element.
func NewFq(v *big.Int) Fq { return Fq{new(big.Int).Mod(v, pallasScalarModulus)} }

// FpFromUint64 builds a base-field element from a small non-negative integer
// (used for the fixed sentinel value 2 and for +/-1 offsets).
func FpFromUint64(v uint64) Fp { return NewFp(new(big.Int).SetUint64(v)) }

// FpZero, FpOne, FpSentinel are the field constants the Merkle layer needs:
// the additive identity, the multiplicative identity (used for the "+1"
// advance when building NF-range leaves), and the empty-right sentinel
// value 2 mandated by spec.md §4.5.
func FpZero() Fp     { return Fp{big.NewInt(0)} }
func FpOne() Fp      { return Fp{big.NewInt(1)} }
func FpSentinel() Fp { return FpFromUint64(2) }

// BigInt returns the element's value as a non-negative big.Int in [0, p).
func (a Fp) BigInt() *big.Int { return new(big.Int).Set(a.v) }
func (a Fq) BigInt() *big.Int { return new(big.Int).Set(a.v) }

// Add, Sub, Mul perform field arithmetic modulo p.
func (a Fp) Add(b Fp) Fp { return NewFp(new(big.Int).Add(a.v, b.v)) }
func (a Fp) Sub(b Fp) Fp { return NewFp(new(big.Int).Sub(a.v, b.v)) }
func (a Fp) Mul(b Fp) Fp { return NewFp(new(big.Int).Mul(a.v, b.v)) }

// Add, Sub, Mul perform field arithmetic modulo q.
func (a Fq) Add(b Fq) Fq { return NewFq(new(big.Int).Add(a.v, b.v)) }
func (a Fq) Sub(b Fq) Fq { return NewFq(new(big.Int).Sub(a.v, b.v)) }
func (a Fq) Mul(b Fq) Fq { return NewFq(new(big.Int).Mul(a.v, b.v)) }

// Inverse returns the multiplicative inverse of a, or the zero element if a
// is zero (mirrors the convention of gnark-crypto's field Inverse).
func (a Fq) Inverse() Fq {
	if a.v.Sign() == 0 {
		return Fq{big.NewInt(0)}
	}
	return Fq{new(big.Int).ModInverse(a.v, pallasScalarModulus)}
}

// PlusOne and MinusOne implement the "+1"/"-1" field arithmetic the NF-range
// leaf construction needs (spec.md §3): PlusOne(r) = r+1 mod p, MinusOne
// wraps to p-1 when r is zero (the field element "-1" closing the final
// gap).
func (a Fp) PlusOne() Fp  { return a.Add(FpOne()) }
func (a Fp) MinusOne() Fp { return a.Sub(FpOne()) }

// Cmp orders two base-field elements by their canonical integer
// representative. The NF set is kept sorted using this order (spec.md §3).
func (a Fp) Cmp(b Fp) int { return a.v.Cmp(b.v) }

// Equal reports value equality.
func (a Fp) Equal(b Fp) bool { return a.v.Cmp(b.v) == 0 }
func (a Fq) Equal(b Fq) bool { return a.v.Cmp(b.v) == 0 }

// Bytes returns the 32-byte canonical little-endian encoding.
func (a Fp) Bytes() [ByteLen]byte { return leBytes(a.v) }
func (a Fq) Bytes() [ByteLen]byte { return leBytes(a.v) }

func leBytes(v *big.Int) [ByteLen]byte {
	var out [ByteLen]byte
	be := v.Bytes() // big-endian, no leading zeros
	for i, b := range be {
		out[len(be)-1-i] = b
	}
	return out
}

// FpFromBytes decodes a 32-byte little-endian canonical encoding. It returns
// ok=false if the encoding represents a value >= the field modulus (not
// canonical) — this is the "off-curve"-style length/range check the address
// and ballot decoders rely on.
func FpFromBytes(b []byte) (Fp, bool) {
	v, ok := fromLEBytes(b, pallasBaseModulus)
	return Fp{v}, ok
}

// FqFromBytes decodes a 32-byte little-endian canonical encoding into Fq.
func FqFromBytes(b []byte) (Fq, bool) {
	v, ok := fromLEBytes(b, pallasScalarModulus)
	return Fq{v}, ok
}

func fromLEBytes(b []byte, modulus *big.Int) (*big.Int, bool) {
	if len(b) != ByteLen {
		return nil, false
	}
	be := make([]byte, ByteLen)
	for i, c := range b {
		be[ByteLen-1-i] = c
	}
	v := new(big.Int).SetBytes(be)
	if v.Cmp(modulus) >= 0 {
		return nil, false
	}
	return v, true
}
