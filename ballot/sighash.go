package ballot

import (
	"encoding/binary"

	"github.com/vocdoni/zvote/crypto/hash"
)

// Sighash computes the BLAKE2b-256 commitment spend-auth and binding
// signatures are made over: little-endian version, little-endian
// n_actions, then every Action's six fields concatenated in order
// cv_net || rk || nf || cmx || epk || enc (spec.md §3). Domain and
// anchors are intentionally excluded — the spec's sighash formula names
// only version, n_actions and the per-Action fields.
func Sighash(d BallotData) [32]byte {
	buf := make([]byte, 0, 8+len(d.Actions)*(32*5+52))
	var tmp4 [4]byte
	binary.LittleEndian.PutUint32(tmp4[:], d.Version)
	buf = append(buf, tmp4[:]...)
	binary.LittleEndian.PutUint32(tmp4[:], uint32(len(d.Actions)))
	buf = append(buf, tmp4[:]...)
	for _, a := range d.Actions {
		buf = append(buf, a.CvNet[:]...)
		buf = append(buf, a.Rk[:]...)
		buf = append(buf, a.Nf[:]...)
		buf = append(buf, a.Cmx[:]...)
		buf = append(buf, a.Epk[:]...)
		buf = append(buf, a.Enc[:]...)
	}
	return hash.Sighash(buf)
}
