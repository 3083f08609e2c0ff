package merkle_test

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/zvote/crypto/field"
	"github.com/vocdoni/zvote/crypto/hash"
	"github.com/vocdoni/zvote/merkle"
)

func TestEmptyTreeRootIsSentinelCascade(t *testing.T) {
	c := qt.New(t)
	want := field.FpSentinel()
	for level := 0; level < merkle.Depth; level++ {
		want = hash.Combine(uint8(level), want, want)
	}
	got := merkle.BatchPaths(nil, nil)
	c.Assert(got.Root.Equal(want), qt.IsTrue)
}

func TestBothEmptyTreesAgree(t *testing.T) {
	c := qt.New(t)
	cmxRoot := merkle.BatchPaths(nil, nil).Root
	nfLeaves := merkle.BuildNFRangeLeaves(nil)
	nfRoot := merkle.BatchPaths(nfLeaves, nil).Root
	c.Assert(nfRoot.Equal(cmxRoot), qt.IsTrue)
}

func TestPathFoldsToRoot(t *testing.T) {
	c := qt.New(t)
	leaves := make([]field.Fp, 5)
	for i := range leaves {
		leaves[i] = field.NewFp(big.NewInt(int64(100 + i)))
	}
	positions := []uint32{0, 1, 2, 3, 4}
	res := merkle.BatchPaths(leaves, positions)
	for i, p := range positions {
		got := merkle.FoldPath(p, leaves[p], res.Paths[i])
		c.Assert(got.Equal(res.Root), qt.IsTrue, qt.Commentf("position %d", p))
	}
}

func TestDuplicatePositionsGiveSamePath(t *testing.T) {
	c := qt.New(t)
	leaves := make([]field.Fp, 8)
	for i := range leaves {
		leaves[i] = field.NewFp(big.NewInt(int64(i)))
	}
	res := merkle.BatchPaths(leaves, []uint32{3, 3})
	c.Assert(res.Paths[0], qt.DeepEquals, res.Paths[1])
}

func TestNFRangeSnapsToEvenGapStart(t *testing.T) {
	c := qt.New(t)
	nfs := []field.Fp{
		field.NewFp(big.NewInt(10)),
		field.NewFp(big.NewInt(20)),
		field.NewFp(big.NewInt(30)),
	}
	leaves := merkle.BuildNFRangeLeaves(nfs)
	// leaves = [0,9, 11,19, 21,29, 31,-1]
	for _, x := range []int64{5, 15, 25, 40} {
		pos := merkle.SnapToGapStart(leaves, field.NewFp(big.NewInt(x)))
		c.Assert(pos%2, qt.Equals, uint32(0))
		lower := leaves[pos]
		upper := leaves[pos+1]
		target := field.NewFp(big.NewInt(x))
		c.Assert(lower.Cmp(target) <= 0, qt.IsTrue, qt.Commentf("x=%d", x))
		// upper bound -1 wraps to field modulus-1, which is always >= target
		// for any plausible small x, so the Cmp check only makes sense when
		// upper hasn't wrapped past a small threshold; skip that comparison
		// for the last, open-ended gap.
		if x != 40 {
			c.Assert(upper.Cmp(target) >= 0, qt.IsTrue, qt.Commentf("x=%d", x))
		}
	}
}

func TestNFRangeEmptyHasNoLeaves(t *testing.T) {
	c := qt.New(t)
	leaves := merkle.BuildNFRangeLeaves(nil)
	c.Assert(len(leaves), qt.Equals, 0)
}
