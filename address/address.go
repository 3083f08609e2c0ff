// Package address implements the vote address codec of spec.md §4.1: a
// 43-byte raw Orchard recipient, encoded as bech32m under the
// human-readable prefix "zvote". There is no Zcash-specific address
// codec anywhere in the pack, so this wraps the general-purpose bech32m
// implementation from github.com/btcsuite/btcd/btcutil/bech32 (the
// teacher's own dependency tree pulls in btcsuite packages transitively
// through its Ethereum/web3 tooling; bech32 is the standard Go
// implementation of the encoding Zcash-style addresses use).
package address

import (
	"github.com/btcsuite/btcd/btcutil/bech32"

	"github.com/vocdoni/zvote/crypto/group"
	"github.com/vocdoni/zvote/errs"
)

// HRP is the human-readable prefix vote addresses are encoded under.
const HRP = "zvote"

// RawLen is the length of the raw recipient bytes before bech32 encoding.
const RawLen = 43

// VoteAddress is a 43-byte raw Orchard recipient: an 11-byte diversifier
// followed by a 32-byte diversified transmission key.
type VoteAddress [RawLen]byte

// Diversifier returns the address's 11-byte diversifier.
func (a VoteAddress) Diversifier() [11]byte {
	var d [11]byte
	copy(d[:], a[:11])
	return d
}

// pkdPoint returns the address's 32-byte diversified transmission key,
// parsed as a Pallas point for the point-on-curve check Decode performs.
func (a VoteAddress) pkdPoint() (group.Point, bool) {
	return group.FromBytes(a[11:])
}

// Encode renders a as bech32m text under HRP "zvote".
func Encode(a VoteAddress) (string, error) {
	data, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		return "", errs.Wrap(errs.Programmer, "address: bit conversion failed", err)
	}
	s, err := bech32.EncodeM(HRP, data)
	if err != nil {
		return "", errs.Wrap(errs.InvalidEncoding, "address: bech32m encode failed", err)
	}
	return s, nil
}

// Decode parses bech32m text back into a VoteAddress, failing with
// InvalidEncoding on a wrong HRP, wrong length after base32 expansion, or
// a recipient that fails Orchard's point-on-curve check.
func Decode(s string) (VoteAddress, error) {
	hrp, data, err := bech32.Decode(s)
	if err != nil {
		return VoteAddress{}, errs.Wrap(errs.InvalidEncoding, "address: malformed bech32", err)
	}
	if hrp != HRP {
		return VoteAddress{}, errs.New(errs.InvalidEncoding, "address: wrong human-readable prefix")
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return VoteAddress{}, errs.Wrap(errs.InvalidEncoding, "address: bit conversion failed", err)
	}
	if len(raw) != RawLen {
		return VoteAddress{}, errs.New(errs.InvalidEncoding, "address: wrong length after base32 expansion")
	}
	var a VoteAddress
	copy(a[:], raw)
	if _, ok := a.pkdPoint(); !ok {
		return VoteAddress{}, errs.New(errs.InvalidEncoding, "address: recipient fails point-on-curve check")
	}
	return a, nil
}
