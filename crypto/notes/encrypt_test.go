package notes_test

import (
	"math/big"
	"math/rand"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/zvote/crypto/field"
	"github.com/vocdoni/zvote/crypto/notes"
)

func TestEncryptTrialDecryptRoundTrip(t *testing.T) {
	c := qt.New(t)
	rng := rand.New(rand.NewSource(1))

	ivk := field.NewFq(big.NewInt(777))
	recipient := notes.AddressAt(ivk, 0)
	var rseed [32]byte
	rseed[0] = 9
	n := notes.Note{
		Recipient: recipient,
		Value:     123456,
		Rho:       field.NewFp(big.NewInt(42)),
		Rseed:     rseed,
	}

	eo, err := notes.Encrypt(rng, n, recipient)
	c.Assert(err, qt.IsNil)

	cmx := n.Commitment()
	recovered, ok := notes.TrialDecrypt(ivk, eo.Epk, eo.Enc, n.Rho, cmx)
	c.Assert(ok, qt.IsTrue)
	c.Assert(recovered.Value, qt.Equals, n.Value)
	c.Assert(recovered.Rseed, qt.Equals, n.Rseed)
	c.Assert(recovered.Recipient, qt.Equals, n.Recipient)
}

func TestTrialDecryptFailsWithWrongIvk(t *testing.T) {
	c := qt.New(t)
	rng := rand.New(rand.NewSource(2))

	ivk := field.NewFq(big.NewInt(111))
	recipient := notes.AddressAt(ivk, 0)
	var rseed [32]byte
	n := notes.Note{Recipient: recipient, Value: 5, Rho: field.NewFp(big.NewInt(1)), Rseed: rseed}

	eo, err := notes.Encrypt(rng, n, recipient)
	c.Assert(err, qt.IsNil)

	wrongIvk := field.NewFq(big.NewInt(222))
	_, ok := notes.TrialDecrypt(wrongIvk, eo.Epk, eo.Enc, n.Rho, n.Commitment())
	c.Assert(ok, qt.IsFalse)
}
