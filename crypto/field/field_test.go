package field_test

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/zvote/crypto/field"
)

func TestRoundTripBytes(t *testing.T) {
	c := qt.New(t)
	a := field.NewFp(big.NewInt(123456789))
	asBytes := a.Bytes()
	b, ok := field.FpFromBytes(asBytes[:])
	c.Assert(ok, qt.IsTrue)
	c.Assert(b.Equal(a), qt.IsTrue)
	c.Assert(len(asBytes), qt.Equals, field.ByteLen)
}

func TestNonCanonicalRejected(t *testing.T) {
	c := qt.New(t)
	modulus := field.FpModulus()
	b := make([]byte, field.ByteLen)
	be := modulus.Bytes()
	for i, v := range be {
		b[len(be)-1-i] = v
	}
	_, ok := field.FpFromBytes(b)
	c.Assert(ok, qt.IsFalse)
}

func TestPlusMinusOne(t *testing.T) {
	c := qt.New(t)
	zero := field.FpZero()
	minusOne := zero.MinusOne()
	c.Assert(minusOne.PlusOne().Equal(zero), qt.IsTrue)
}

func TestCmpOrdering(t *testing.T) {
	c := qt.New(t)
	a := field.NewFp(big.NewInt(10))
	b := field.NewFp(big.NewInt(20))
	c.Assert(a.Cmp(b) < 0, qt.IsTrue)
	c.Assert(b.Cmp(a) > 0, qt.IsTrue)
	c.Assert(a.Cmp(a) == 0, qt.IsTrue)
}

func TestFqInverse(t *testing.T) {
	c := qt.New(t)
	a := field.NewFq(big.NewInt(7))
	inv := a.Inverse()
	one := a.Mul(inv)
	c.Assert(one.Equal(field.NewFq(big.NewInt(1))), qt.IsTrue)
}
