// Package merkle implements the dual Merkle anchoring layer: a fixed-depth
// commitment tree over extracted note commitments (CMX) and a fixed-depth
// nullifier-range tree over gaps between revoked nullifiers (NF), both
// batched through the same Orchard-style combine/sentinel algorithm
// (spec.md §4.5). There is no pack example of a dense, append-only binary
// Merkle tree with an advancing empty-sibling sentinel and batched
// multi-position authentication paths — the teacher's own state tree
// (vocdoni-davinci-node/state, backed by github.com/vocdoni/arbo) is a
// sparse key-indexed tree with a different combine rule and no batched-path
// operation, so this package is hand-written against spec.md's algorithm
// rather than adapted from arbo (see DESIGN.md).
package merkle

import (
	"sort"

	"github.com/vocdoni/zvote/crypto/field"
	"github.com/vocdoni/zvote/crypto/hash"
)

// Depth is the fixed tree depth both the CMX and NF trees use.
const Depth = 32

// Path is an authentication path: one sibling hash per level, from the leaf
// level up to (but not including) the root.
type Path [Depth]field.Fp

// Result is the output of a single batched pass over a tree: the root and
// one authentication path per requested position, in request order.
type Result struct {
	Root  field.Fp
	Paths []Path
}

// BatchPaths builds the root of a fixed-depth tree over leaves AND the
// authentication paths for every position in positions, in a single upward
// pass (spec.md §4.5). positions may be empty, and may contain duplicates;
// each entry of the returned Paths slice corresponds index-for-index to
// positions.
//
// At level 0 the working layer is leaves; if leaves is empty it is seeded
// with the empty-right sentinel Fp(2), and if its length is odd it is
// padded with that same sentinel. At every subsequent level, pairs are
// combined with hash.Combine(level, ·, ·); if the resulting layer is odd in
// length it is padded with the sentinel appropriate to that level, which is
// obtained by cascading er := Combine(level, er, er) alongside the tree
// itself.
func BatchPaths(leaves []field.Fp, positions []uint32) Result {
	layer := make([]field.Fp, len(leaves))
	copy(layer, leaves)

	er := field.FpSentinel()
	if len(layer) == 0 {
		layer = []field.Fp{er}
	}
	if len(layer)%2 == 1 {
		layer = append(layer, er)
	}

	pos := make([]uint32, len(positions))
	copy(pos, positions)
	paths := make([]Path, len(positions))

	for level := 0; level < Depth; level++ {
		for i, p := range pos {
			sibling := p ^ 1
			paths[i][level] = layer[sibling]
			pos[i] = p >> 1
		}

		next := make([]field.Fp, 0, (len(layer)+1)/2)
		for i := 0; i+1 < len(layer); i += 2 {
			next = append(next, hash.Combine(uint8(level), layer[i], layer[i+1]))
		}
		er = hash.Combine(uint8(level), er, er)
		if len(next)%2 == 1 {
			next = append(next, er)
		}
		layer = next
	}

	return Result{Root: layer[0], Paths: paths}
}

// FoldPath recomputes the root implied by leaf at the given position and its
// authentication path, by repeatedly combining with the recorded sibling at
// each level. Used by tests asserting the batched-path invariant of
// spec.md §8 ("the computed path, when folded with the leaf, equals the
// root").
func FoldPath(position uint32, leaf field.Fp, path Path) field.Fp {
	node := leaf
	p := position
	for level := 0; level < Depth; level++ {
		sibling := path[level]
		if p&1 == 0 {
			node = hash.Combine(uint8(level), node, sibling)
		} else {
			node = hash.Combine(uint8(level), sibling, node)
		}
		p >>= 1
	}
	return node
}

// SnapToGapStart locates target in the sorted leaves array (which, for an
// NF-range tree, is itself monotonically increasing by construction — see
// BuildNFRangeLeaves) by binary search, then clears the low bit to land on
// the even "gap start" leaf the circuit binds nf_start to (spec.md §4.5,
// §4.6). On an exact hit the matching index is used directly; on a miss,
// index-1 (the last leaf not exceeding target) is used, per spec.md §4.6's
// builder step.
func SnapToGapStart(leaves []field.Fp, target field.Fp) uint32 {
	if len(leaves) == 0 {
		return 0
	}
	i := sort.Search(len(leaves), func(j int) bool { return leaves[j].Cmp(target) >= 0 })
	if i >= len(leaves) || !leaves[i].Equal(target) {
		i--
	}
	if i < 0 {
		i = 0
	}
	return uint32(i) &^ 1
}
