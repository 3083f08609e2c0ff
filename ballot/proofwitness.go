package ballot

import (
	"math/big"

	"github.com/vocdoni/zvote/crypto/field"
	"github.com/vocdoni/zvote/crypto/halo2"
)

// Instance is the public statement spec.md §4.6 step 5 / §4.8 step 4
// builds per Action: everything the verifier can recompute or read off
// the wire without the spending secrets.
type Instance struct {
	CmxRoot field.Fp
	CvNet   [32]byte
	Dnf     field.Fp
	Rk      [32]byte
	Cmx     field.Fp
	Domain  field.Fp
	NfRoot  field.Fp
}

// PrivateWitness is the circuit's private input: VotePowerInfo and
// SpendInfo flattened to the scalars the stand-in halo2 circuit binds
// (see crypto/halo2 for why the real Merkle/Sinsemilla/RedPallas
// relations aren't reproduced in-circuit).
type PrivateWitness struct {
	Dnf        field.Fp // duplicated into the witness alongside the public Dnf
	NfStart    field.Fp
	SpendValue uint64
	SpendRho   field.Fp
	OutValue   uint64
	Alpha      field.Fq
	Rcv        field.Fq
}

func bigOf(v field.Fp) *big.Int { return v.BigInt() }

// toWitness assembles the halo2.Witness for one Action from its public
// instance, its private witness and inputsHash. It does not compute
// inputsHash itself: Build passes the digest computeInputsHash
// precomputes, and the circuit constrains the InputsHash field equal to
// its own in-circuit MiMC hash of the same values.
func toWitness(pub Instance, priv PrivateWitness, inputsHash *big.Int) halo2.Witness {
	var cvNetBig, rkBig big.Int
	cvNetBig.SetBytes(reverse(pub.CvNet[:]))
	rkBig.SetBytes(reverse(pub.Rk[:]))

	return halo2.Witness{
		InputsHash: inputsHash,
		CmxRoot:    bigOf(pub.CmxRoot),
		CvNet:      &cvNetBig,
		Dnf:        bigOf(pub.Dnf),
		Rk:         &rkBig,
		Cmx:        bigOf(pub.Cmx),
		Domain:     bigOf(pub.Domain),
		NfRoot:     bigOf(pub.NfRoot),
		Dnf2:       bigOf(priv.Dnf),
		NfStart:    bigOf(priv.NfStart),
		SpendValue: new(big.Int).SetUint64(priv.SpendValue),
		SpendRho:   bigOf(priv.SpendRho),
		OutValue:   new(big.Int).SetUint64(priv.OutValue),
		Alpha:      priv.Alpha.BigInt(),
		Rcv:        priv.Rcv.BigInt(),
	}
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
