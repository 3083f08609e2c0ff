package ballot

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	bn254mimc "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// computeInputsHash precomputes, outside the circuit, the same MiMC
// digest crypto/halo2's Circuit.Define constrains InputsHash against:
// gnark-crypto's native bn254/fr/mimc hash implements the identical
// permutation its std/hash/mimc in-circuit gadget does, which is the
// standard gnark idiom for producing a public hash input a prover commits
// to before proving (github.com/consensys/gnark-crypto is already a
// teacher dependency, used elsewhere in the pack's circuits packages for
// exactly this off-circuit/in-circuit pairing). Field order matches
// Circuit.Define's h.Write call exactly.
func computeInputsHash(pub Instance, priv PrivateWitness) *big.Int {
	h := bn254mimc.NewMiMC()

	var cvNetBig, rkBig big.Int
	cvNetBig.SetBytes(reverse(pub.CvNet[:]))
	rkBig.SetBytes(reverse(pub.Rk[:]))

	// Each value is reduced into the BN254 scalar field first, as the
	// circuit's witness assignment does; the native hash rejects blocks
	// that are not canonical field elements.
	r := ecc.BN254.ScalarField()
	write := func(v *big.Int) {
		buf := make([]byte, 32)
		new(big.Int).Mod(v, r).FillBytes(buf)
		h.Write(buf)
	}

	write(bigOf(pub.CmxRoot))
	write(&cvNetBig)
	write(bigOf(pub.Dnf))
	write(&rkBig)
	write(bigOf(pub.Cmx))
	write(bigOf(pub.Domain))
	write(bigOf(pub.NfRoot))
	write(bigOf(priv.Dnf))
	write(bigOf(priv.NfStart))
	write(new(big.Int).SetUint64(priv.SpendValue))
	write(bigOf(priv.SpendRho))
	write(new(big.Int).SetUint64(priv.OutValue))
	write(priv.Alpha.BigInt())
	write(priv.Rcv.BigInt())

	return new(big.Int).SetBytes(h.Sum(nil))
}
