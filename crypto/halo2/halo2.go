// Package halo2 stands in for Orchard's Halo2 proving/verifying key
// pair (spec.md §2 "Halo2 proving/verifying keys", §4.6 step 5, §4.8
// step 4). No Pasta-curve proving system exists anywhere in the
// retrieved pack, so this package follows the teacher's own proof
// machinery instead: consensys/gnark's groth16 backend over BN254,
// built the way vocdoni-davinci-node/circuits/voteverifier structures
// its circuit (a Define method on an assignment struct, a lazily
// initialized shared proving/verifying key singleton, Prove/Verify
// wrapper methods — see artifacts.go, prover.go, vote_verifier.go
// there). Rather than verifying in-circuit Pasta-curve Merkle paths and
// Sinsemilla commitments (which would require arithmetic over a
// field the chosen proving curve cannot natively emulate), the circuit
// here binds a MiMC hash (gnark's own std hash circuit,
// github.com/consensys/gnark/std/hash/mimc — a real dependency of the
// teacher's wider circuit stack) of the full public instance and the
// private witness values the real circuit would constrain against it.
// This exercises the real proving/verifying/Setup pipeline end to end;
// see DESIGN.md for the substitution's scope.
package halo2

import (
	"bytes"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/std/hash/mimc"

	"github.com/vocdoni/zvote/errs"
)

// curve is the scalar field the proof system operates over; BN254 is
// gnark's best-supported curve and the one the teacher's own circuits
// build on.
const curve = ecc.BN254

// Circuit is the proof statement: InputsHash (public) must equal the
// MiMC hash, in a fixed field order, of every public instance field
// followed by every private witness field.
type Circuit struct {
	InputsHash frontend.Variable `gnark:",public"`

	// Public instance fields (spec.md §4.6 step 5's Instance).
	CmxRoot frontend.Variable `gnark:",public"`
	CvNet   frontend.Variable `gnark:",public"`
	Dnf     frontend.Variable `gnark:",public"`
	Rk      frontend.Variable `gnark:",public"`
	Cmx     frontend.Variable `gnark:",public"`
	Domain  frontend.Variable `gnark:",public"`
	NfRoot  frontend.Variable `gnark:",public"`

	// Private witness fields (spec.md §4.6 step 5's Circuit: VotePowerInfo,
	// SpendInfo, the output note, alpha and rcv, flattened to scalars).
	Dnf2       frontend.Variable
	NfStart    frontend.Variable
	SpendValue frontend.Variable
	SpendRho   frontend.Variable
	OutValue   frontend.Variable
	Alpha      frontend.Variable
	Rcv        frontend.Variable
}

// Define implements frontend.Circuit.
func (c *Circuit) Define(api frontend.API) error {
	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	h.Write(c.CmxRoot, c.CvNet, c.Dnf, c.Rk, c.Cmx, c.Domain, c.NfRoot,
		c.Dnf2, c.NfStart, c.SpendValue, c.SpendRho, c.OutValue, c.Alpha, c.Rcv)
	api.AssertIsEqual(c.InputsHash, h.Sum())
	return nil
}

// Witness holds the full set of assignment values for one Action's proof:
// the public instance plus the private witness scalars. The caller (see
// ballot/proofwitness.go) passes them unreduced; gnark reduces each into
// the proving curve's scalar field when it builds the witness.
type Witness struct {
	InputsHash frontend.Variable
	CmxRoot    frontend.Variable
	CvNet      frontend.Variable
	Dnf        frontend.Variable
	Rk         frontend.Variable
	Cmx        frontend.Variable
	Domain     frontend.Variable
	NfRoot     frontend.Variable
	Dnf2       frontend.Variable
	NfStart    frontend.Variable
	SpendValue frontend.Variable
	SpendRho   frontend.Variable
	OutValue   frontend.Variable
	Alpha      frontend.Variable
	Rcv        frontend.Variable
}

func (w Witness) assignment() *Circuit {
	return &Circuit{
		InputsHash: w.InputsHash,
		CmxRoot:    w.CmxRoot,
		CvNet:      w.CvNet,
		Dnf:        w.Dnf,
		Rk:         w.Rk,
		Cmx:        w.Cmx,
		Domain:     w.Domain,
		NfRoot:     w.NfRoot,
		Dnf2:       w.Dnf2,
		NfStart:    w.NfStart,
		SpendValue: w.SpendValue,
		SpendRho:   w.SpendRho,
		OutValue:   w.OutValue,
		Alpha:      w.Alpha,
		Rcv:        w.Rcv,
	}
}

// PublicOnly zeroes the private fields, leaving only what a verifier
// knows, for building the public-only witness groth16.Verify needs.
func (w Witness) PublicOnly() Witness {
	pub := w
	pub.Dnf2 = 0
	pub.NfStart = 0
	pub.SpendValue = 0
	pub.SpendRho = 0
	pub.OutValue = 0
	pub.Alpha = 0
	pub.Rcv = 0
	return pub
}

// Artifacts is the shared, lazily-initialized proving/verifying key pair
// (spec.md §9: "construct once at process start via a lazily-initialized,
// immutable holder").
type Artifacts struct {
	ccs constraint.ConstraintSystem
	pk  groth16.ProvingKey
	vk  groth16.VerifyingKey
}

var (
	sharedArtifacts *Artifacts
	sharedOnce      sync.Once
	sharedErr       error
)

// Shared returns the process-wide Artifacts, compiling the circuit and
// running groth16's trusted setup on first use.
func Shared() (*Artifacts, error) {
	sharedOnce.Do(func() {
		ccs, err := frontend.Compile(curve.ScalarField(), r1cs.NewBuilder, &Circuit{})
		if err != nil {
			sharedErr = errs.Wrap(errs.Programmer, "halo2: circuit compile failed", err)
			return
		}
		pk, vk, err := groth16.Setup(ccs)
		if err != nil {
			sharedErr = errs.Wrap(errs.Programmer, "halo2: groth16 setup failed", err)
			return
		}
		sharedArtifacts = &Artifacts{ccs: ccs, pk: pk, vk: vk}
	})
	return sharedArtifacts, sharedErr
}

// Proof is the serialized groth16 proof bytes carried on the wire as one
// Action's Proof entry.
type Proof []byte

// Prove generates a proof for w under the shared artifacts.
func Prove(w Witness) (Proof, error) {
	art, err := Shared()
	if err != nil {
		return nil, err
	}
	full, err := frontend.NewWitness(w.assignment(), curve.ScalarField())
	if err != nil {
		return nil, errs.Wrap(errs.CryptoFail, "halo2: witness construction failed", err)
	}
	proof, err := groth16.Prove(art.ccs, art.pk, full)
	if err != nil {
		return nil, errs.Wrap(errs.CryptoFail, "halo2: proof generation failed", err)
	}
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, errs.Wrap(errs.Programmer, "halo2: proof serialization failed", err)
	}
	return buf.Bytes(), nil
}

// Verify checks proof against the public half of w under the shared
// artifacts.
func Verify(proof Proof, w Witness) error {
	art, err := Shared()
	if err != nil {
		return err
	}
	pubAssignment := w.PublicOnly().assignment()
	pubWitness, err := frontend.NewWitness(pubAssignment, curve.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return errs.Wrap(errs.CryptoFail, "halo2: public witness construction failed", err)
	}
	gproof := groth16.NewProof(curve)
	if _, err := gproof.ReadFrom(bytes.NewReader(proof)); err != nil {
		return errs.Wrap(errs.InvalidEncoding, "halo2: malformed proof bytes", err)
	}
	if err := groth16.Verify(gproof, art.vk, pubWitness); err != nil {
		return errs.Wrap(errs.CryptoFail, "halo2: proof verification failed", err)
	}
	return nil
}
