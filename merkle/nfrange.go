package merkle

import "github.com/vocdoni/zvote/crypto/field"

// BuildNFRangeLeaves turns a sorted, deduplicated slice of revoked global
// nullifiers into the NF-range leaf sequence of spec.md §3: closed intervals
// of un-nullified field values. Leaves come in adjacent (even, odd) pairs,
// each one gap: (prev, nfs[i]-1), with prev advancing to nfs[i]+1 after each
// nullifier. A final pair (prev, -1) closes the range if prev != 0 (i.e. if
// there was at least one nullifier, and the last one wasn't nfs==-1 itself).
//
// The returned slice is monotonically increasing, which is what lets
// SnapToGapStart binary-search it directly instead of the original nfs.
func BuildNFRangeLeaves(nfs []field.Fp) []field.Fp {
	leaves := make([]field.Fp, 0, 2*len(nfs)+2)
	prev := field.FpZero()
	for _, r := range nfs {
		leaves = append(leaves, prev, r.Sub(field.FpOne()))
		prev = r.PlusOne()
	}
	if !prev.Equal(field.FpZero()) {
		leaves = append(leaves, prev, field.FpZero().MinusOne())
	}
	return leaves
}
