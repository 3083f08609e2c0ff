package notes

import (
	"github.com/vocdoni/zvote/crypto/field"
	"github.com/vocdoni/zvote/crypto/group"
	"github.com/vocdoni/zvote/errs"
)

// OwnedNote is a note the local wallet holds spend authority over,
// carrying the bookkeeping fields the persistence layer tracks alongside
// it (spec.md §3's OwnedNote).
type OwnedNote struct {
	Note
	Position uint32
	Height   uint32
	Txid     []byte
}

// RecipientFromDiversifier rebuilds a raw address from a stored 11-byte
// diversifier and the owning incoming viewing key. Db rows only persist
// the diversifier (db.OwnedNoteRow.Div); the transmission key half is
// always ivk*G in this package's simplified diversified-base model (see
// AddressAt), so it is recomputed rather than stored twice.
func RecipientFromDiversifier(div [11]byte, ivk field.Fq) RawAddress {
	var raw RawAddress
	copy(raw[:11], div[:])
	pkdBytes := group.Generator().ScalarMul(ivk).Bytes()
	copy(raw[11:], pkdBytes[:])
	return raw
}

// Row is the minimal set of decoded byte fields a persisted note row
// supplies; RowToOwnedNote reassembles them into an OwnedNote without
// this package depending on the db package's concrete row type.
type Row struct {
	Position uint32
	Height   uint32
	Txid     []byte
	Value    uint64
	Div      []byte
	Rseed    []byte
	Rho      []byte
}

// RowToOwnedNote parses a persisted row's byte fields, reassembling the
// full Note under the owning ivk.
func RowToOwnedNote(ivk field.Fq, row Row) (OwnedNote, error) {
	if len(row.Div) != 11 {
		return OwnedNote{}, errs.New(errs.InvalidEncoding, "notes: stored diversifier has the wrong length")
	}
	if len(row.Rseed) != 32 {
		return OwnedNote{}, errs.New(errs.InvalidEncoding, "notes: stored rseed has the wrong length")
	}
	rho, ok := field.FpFromBytes(row.Rho)
	if !ok {
		return OwnedNote{}, errs.New(errs.InvalidEncoding, "notes: stored rho is not canonical")
	}
	var div [11]byte
	copy(div[:], row.Div)
	var rseed [32]byte
	copy(rseed[:], row.Rseed)

	n := Note{
		Recipient: RecipientFromDiversifier(div, ivk),
		Value:     row.Value,
		Rho:       rho,
		Rseed:     rseed,
	}
	return OwnedNote{Note: n, Position: row.Position, Height: row.Height, Txid: row.Txid}, nil
}
