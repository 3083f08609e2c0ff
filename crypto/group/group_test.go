package group_test

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/zvote/crypto/field"
	"github.com/vocdoni/zvote/crypto/group"
)

func TestGeneratorOnCurve(t *testing.T) {
	c := qt.New(t)
	g := group.Generator()
	c.Assert(g.IsOnCurve(), qt.IsTrue)
}

func TestIdentityIsAdditiveIdentity(t *testing.T) {
	c := qt.New(t)
	g := group.Generator()
	id := group.Identity()
	c.Assert(g.Add(id).Bytes(), qt.DeepEquals, g.Bytes())
	c.Assert(id.Add(g).Bytes(), qt.DeepEquals, g.Bytes())
}

func TestAddDoubleConsistency(t *testing.T) {
	c := qt.New(t)
	g := group.Generator()
	doubled := g.Double()
	added := g.Add(g)
	c.Assert(doubled.Bytes(), qt.DeepEquals, added.Bytes())
}

func TestNegateCancels(t *testing.T) {
	c := qt.New(t)
	g := group.Generator()
	sum := g.Add(g.Negate())
	c.Assert(sum.IsIdentity(), qt.IsTrue)
}

func TestScalarMulMatchesRepeatedAdd(t *testing.T) {
	c := qt.New(t)
	g := group.Generator()
	five := field.NewFq(big.NewInt(5))
	byMul := g.ScalarMul(five)

	acc := group.Identity()
	for i := 0; i < 5; i++ {
		acc = acc.Add(g)
	}
	c.Assert(byMul.Bytes(), qt.DeepEquals, acc.Bytes())
}

func TestCompressedRoundTrip(t *testing.T) {
	c := qt.New(t)
	g := group.Generator()
	three := field.NewFq(big.NewInt(3))
	p := g.ScalarMul(three)
	enc := p.Bytes()
	dec, ok := group.FromBytes(enc[:])
	c.Assert(ok, qt.IsTrue)
	c.Assert(dec.Bytes(), qt.DeepEquals, enc)
}

func TestIdentityRoundTrip(t *testing.T) {
	c := qt.New(t)
	id := group.Identity()
	enc := id.Bytes()
	dec, ok := group.FromBytes(enc[:])
	c.Assert(ok, qt.IsTrue)
	c.Assert(dec.IsIdentity(), qt.IsTrue)
}
