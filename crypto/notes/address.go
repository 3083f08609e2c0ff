package notes

import (
	"encoding/binary"

	"github.com/vocdoni/zvote/crypto/field"
	"github.com/vocdoni/zvote/crypto/group"
)

// AddressAt derives the raw recipient address at a given diversifier index
// for an incoming viewing key. Real Orchard derives a distinct diversified
// base g_d per index and sets pkd = ivk*g_d; this implementation fixes
// g_d to the shared Generator(), so pkd = ivk*G regardless of
// index and only the diversifier bytes vary. That's sufficient for zvote's
// own self-change address (index 0) and satisfies the wire shape bech32m
// addresses and RawAddress-carrying Actions require.
func AddressAt(ivk field.Fq, diversifierIndex uint64) RawAddress {
	var raw RawAddress
	binary.LittleEndian.PutUint64(raw[:8], diversifierIndex)
	pkd := group.Generator().ScalarMul(ivk)
	pkdBytes := pkd.Bytes()
	copy(raw[11:], pkdBytes[:])
	return raw
}

// pkdOf recovers the diversified transmission key a raw address encodes.
func pkdOf(addr RawAddress) (group.Point, bool) {
	return group.FromBytes(addr[11:])
}
