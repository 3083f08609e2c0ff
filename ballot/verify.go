package ballot

import (
	"github.com/vocdoni/zvote/crypto/field"
	"github.com/vocdoni/zvote/crypto/group"
	"github.com/vocdoni/zvote/crypto/halo2"
	"github.com/vocdoni/zvote/crypto/redpallas"
	"github.com/vocdoni/zvote/crypto/valuecommit"
	"github.com/vocdoni/zvote/election"
	"github.com/vocdoni/zvote/errs"
)

// Verify checks every condition spec.md §4.8 names, failing on the first
// one that doesn't hold; a nil return means the ballot is OK. Anchor
// freshness (step 5) is the caller's responsibility, per spec.md §4.8's
// note and §9's open-question resolution (see DESIGN.md).
func Verify(b *Ballot, el election.Election) error {
	sighash := Sighash(b.Data)

	if b.Witnesses.SpSignatures != nil {
		sigs := *b.Witnesses.SpSignatures
		if len(sigs) != len(b.Data.Actions) {
			return errs.New(errs.InvalidEncoding, "ballot: spend-auth signature count does not match action count")
		}
		for i, a := range b.Data.Actions {
			rk, ok := group.FromBytes(a.Rk[:])
			if !ok {
				return errs.New(errs.InvalidEncoding, "ballot: action rk is not a valid point")
			}
			if !redpallas.Verify(rk, sighash[:], redpallas.Signature(sigs[i])) {
				return errs.New(errs.CryptoFail, "ballot: spend-authorization signature failed")
			}
		}
	} else if el.SignatureRequired {
		return errs.New(errs.SignatureRequired, "ballot: election requires spend-authorization signatures but none were supplied")
	}

	commitments := make([]valuecommit.Commitment, len(b.Data.Actions))
	for i, a := range b.Data.Actions {
		c, ok := valuecommit.FromBytes(a.CvNet[:])
		if !ok {
			return errs.New(errs.InvalidEncoding, "ballot: action cv_net is not a valid commitment")
		}
		commitments[i] = c
	}
	bvk := valuecommit.Sum(commitments).Point()
	if !redpallas.Verify(bvk, sighash[:], redpallas.Signature(b.Witnesses.BindingSignature)) {
		return errs.New(errs.CryptoFail, "ballot: binding signature failed")
	}

	if len(b.Witnesses.Proofs) != len(b.Data.Actions) {
		return errs.New(errs.InvalidEncoding, "ballot: proof count does not match action count")
	}

	cmxRoot, ok := field.FpFromBytes(b.Data.Anchors.Cmx[:])
	if !ok {
		return errs.New(errs.InvalidEncoding, "ballot: cmx anchor is not a canonical field element")
	}
	nfRoot, ok := field.FpFromBytes(b.Data.Anchors.Nf[:])
	if !ok {
		return errs.New(errs.InvalidEncoding, "ballot: nf anchor is not a canonical field element")
	}
	domain, ok := field.FpFromBytes(b.Data.Domain[:])
	if !ok {
		return errs.New(errs.InvalidEncoding, "ballot: domain is not a canonical field element")
	}

	for i, a := range b.Data.Actions {
		dnf, ok := field.FpFromBytes(a.Nf[:])
		if !ok {
			return errs.New(errs.InvalidEncoding, "ballot: action nf is not a canonical field element")
		}
		cmx, ok := field.FpFromBytes(a.Cmx[:])
		if !ok {
			return errs.New(errs.InvalidEncoding, "ballot: action cmx is not a canonical field element")
		}
		instance := Instance{
			CmxRoot: cmxRoot,
			CvNet:   a.CvNet,
			Dnf:     dnf,
			Rk:      a.Rk,
			Cmx:     cmx,
			Domain:  domain,
			NfRoot:  nfRoot,
		}

		inputsHash, proof, err := decodeProofWire(b.Witnesses.Proofs[i])
		if err != nil {
			return err
		}
		witness := toWitness(instance, PrivateWitness{}, inputsHash)
		if err := halo2.Verify(proof, witness); err != nil {
			return errs.Wrap(errs.CryptoFail, "ballot: action proof failed verification", err)
		}
	}

	return nil
}
