package valuecommit_test

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/zvote/crypto/field"
	"github.com/vocdoni/zvote/crypto/valuecommit"
)

func TestAdditiveHomomorphism(t *testing.T) {
	c := qt.New(t)
	r1 := field.NewFq(big.NewInt(11))
	r2 := field.NewFq(big.NewInt(22))
	a := valuecommit.Commit(100, r1)
	b := valuecommit.Commit(-40, r2)
	sum := a.Add(b)

	direct := valuecommit.Commit(60, r1.Add(r2))
	c.Assert(sum.Bytes(), qt.DeepEquals, direct.Bytes())
}

func TestSumMatchesPairwiseAdd(t *testing.T) {
	c := qt.New(t)
	cs := []valuecommit.Commitment{
		valuecommit.Commit(10, field.NewFq(big.NewInt(1))),
		valuecommit.Commit(20, field.NewFq(big.NewInt(2))),
		valuecommit.Commit(-5, field.NewFq(big.NewInt(3))),
	}
	sum := valuecommit.Sum(cs)
	pairwise := cs[0].Add(cs[1]).Add(cs[2])
	c.Assert(sum.Bytes(), qt.DeepEquals, pairwise.Bytes())
}

func TestBytesRoundTrip(t *testing.T) {
	c := qt.New(t)
	cm := valuecommit.Commit(500, field.NewFq(big.NewInt(77)))
	enc := cm.Bytes()
	back, ok := valuecommit.FromBytes(enc[:])
	c.Assert(ok, qt.IsTrue)
	c.Assert(back.Bytes(), qt.DeepEquals, enc)
}
