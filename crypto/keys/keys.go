// Package keys implements Orchard-style key derivation: a spending key
// seed expands (via domain-separated BLAKE2b, standing in for Zcash's
// PRF-expand/Blake2b-512 hierarchy — see DESIGN.md) into a spend
// authorizing key, a nullifier-deriving key and an incoming viewing key,
// from which a full viewing key, addresses and nullifiers are all
// derived. Re-randomization of the spend-validating key and the spend
// authorizing key (spec.md §4.6 step 3, "rk = svk.randomize(alpha)")
// is implemented as the Schnorr-style rerandomizable-key pattern
// RedPallas itself depends on.
package keys

import (
	"math/big"

	"github.com/vocdoni/zvote/crypto/field"
	"github.com/vocdoni/zvote/crypto/group"
	"github.com/vocdoni/zvote/crypto/hash"
)

// SpendingKey is the 32-byte root secret a voter holds.
type SpendingKey [32]byte

// SpendAuthorizingKey (ask) signs spend-authorization; its corresponding
// public point is the SpendValidatingKey (ak).
type SpendAuthorizingKey = field.Fq

// SpendValidatingKey (ak) is the public point ask*G, published inside rk
// after randomization.
type SpendValidatingKey = group.Point

// NullifierDerivingKey (nk) parameterizes nullifier derivation.
type NullifierDerivingKey = field.Fq

// IncomingViewingKey (ivk) is the scalar used to recognize and decrypt
// notes sent to this voter's addresses.
type IncomingViewingKey = field.Fq

// FullViewingKey bundles the voter's derived keys; unlike an Orchard full
// viewing key it also carries Ask, the spend authorizing key.
type FullViewingKey struct {
	Ask SpendAuthorizingKey
	Ak  SpendValidatingKey
	Nk  NullifierDerivingKey
	Ivk IncomingViewingKey
}

var (
	expandAsk = person16("Zcash_ExpandAsk")
	expandNk  = person16("Zcash_ExpandNk")
	expandIvk = person16("Zcash_ExpandIvk")
)

// person16 pads or truncates a human-readable tag to the 16 bytes
// BLAKE2b's personalization parameter requires.
func person16(s string) []byte {
	b := make([]byte, 16)
	copy(b, s)
	return b
}

// Derive expands sk into its full viewing key.
func Derive(sk SpendingKey) FullViewingKey {
	ask := expandToFq(expandAsk, sk)
	nk := expandToFq(expandNk, sk)
	ivk := expandToFq(expandIvk, sk)
	ak := group.Generator().ScalarMul(ask)
	return FullViewingKey{Ask: ask, Ak: ak, Nk: nk, Ivk: ivk}
}

func expandToFq(person []byte, sk SpendingKey) field.Fq {
	digest := hash.Personalized(person, sk[:])
	return field.NewFq(new(big.Int).SetBytes(digest[:]))
}

// RandomizeAk applies the spend-validating-key re-randomization
// rk = ak + [alpha]G, matching the public half of RedPallas's
// rerandomizable signing keys.
func RandomizeAk(ak SpendValidatingKey, alpha field.Fq) SpendValidatingKey {
	return ak.Add(group.Generator().ScalarMul(alpha))
}

// RandomizeAsk applies the secret half: rsk = ask + alpha.
func RandomizeAsk(ask SpendAuthorizingKey, alpha field.Fq) SpendAuthorizingKey {
	return ask.Add(alpha)
}

// SpendValidatingKeyFromBytes parses a compressed point back into ak,
// used when decoding a unified viewing-key string (mnemonic.go).
func SpendValidatingKeyFromBytes(b []byte) (SpendValidatingKey, bool) {
	return group.FromBytes(b)
}

// NullifierDerivingKeyFromBytes parses a canonical scalar encoding back
// into nk or ivk (the two share a representation).
func NullifierDerivingKeyFromBytes(b []byte) (field.Fq, bool) {
	return field.FqFromBytes(b)
}
