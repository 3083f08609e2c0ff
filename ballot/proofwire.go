package ballot

import (
	"math/big"

	"github.com/vocdoni/zvote/crypto/halo2"
	"github.com/vocdoni/zvote/errs"
)

// inputsHashLen is the fixed-width big-endian prefix every wire Proof
// entry carries ahead of its groth16 bytes, so a verifier without access
// to the private witness can still recover the InputsHash the prover
// committed to (see inputshash.go and crypto/halo2's doc comment on why
// InputsHash cannot be independently recomputed from public data alone).
const inputsHashLen = 32

func encodeProofWire(inputsHash *big.Int, proof halo2.Proof) []byte {
	out := make([]byte, inputsHashLen, inputsHashLen+len(proof))
	inputsHash.FillBytes(out)
	return append(out, proof...)
}

func decodeProofWire(wire []byte) (*big.Int, halo2.Proof, error) {
	if len(wire) < inputsHashLen {
		return nil, nil, errs.New(errs.InvalidEncoding, "ballot: proof shorter than the inputs-hash prefix")
	}
	inputsHash := new(big.Int).SetBytes(wire[:inputsHashLen])
	proof := halo2.Proof(wire[inputsHashLen:])
	return inputsHash, proof, nil
}
