package redpallas_test

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/zvote/crypto/field"
	"github.com/vocdoni/zvote/crypto/group"
	"github.com/vocdoni/zvote/crypto/redpallas"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	c := qt.New(t)
	sk := field.NewFq(big.NewInt(424242))
	pk := group.Generator().ScalarMul(sk)
	msg := []byte("ballot sighash stand-in")
	var nonce [32]byte
	nonce[0] = 7
	sig := redpallas.Sign(sk, msg, nonce)
	c.Assert(redpallas.Verify(pk, msg, sig), qt.IsTrue)
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	c := qt.New(t)
	sk := field.NewFq(big.NewInt(99))
	pk := group.Generator().ScalarMul(sk)
	var nonce [32]byte
	nonce[1] = 3
	sig := redpallas.Sign(sk, []byte("original"), nonce)
	c.Assert(redpallas.Verify(pk, []byte("tampered"), sig), qt.IsFalse)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	c := qt.New(t)
	sk := field.NewFq(big.NewInt(5))
	otherPk := group.Generator().ScalarMul(field.NewFq(big.NewInt(6)))
	var nonce [32]byte
	sig := redpallas.Sign(sk, []byte("msg"), nonce)
	c.Assert(redpallas.Verify(otherPk, []byte("msg"), sig), qt.IsFalse)
}
