package ballot_test

import (
	"math/big"
	"math/rand"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/zvote/ballot"
	"github.com/vocdoni/zvote/crypto/field"
	"github.com/vocdoni/zvote/crypto/keys"
	"github.com/vocdoni/zvote/crypto/notes"
	"github.com/vocdoni/zvote/crypto/valuecommit"
	"github.com/vocdoni/zvote/election"
	"github.com/vocdoni/zvote/errs"
)

func sampleElection() election.Election {
	return election.Election{
		ID:                "election-1",
		SignatureRequired: true,
		DomainSeed:        []byte("zvote-test-domain"),
	}
}

func TestBuildThenVerify(t *testing.T) {
	c := qt.New(t)

	sk := keys.SpendingKey{1, 2, 3, 4}
	fvk := keys.Derive(sk)

	var ownRseed [32]byte
	ownRseed[0] = 5
	owned := notes.OwnedNote{
		Note: notes.Note{
			Recipient: notes.AddressAt(fvk.Ivk, 0),
			Value:     1000,
			Rho:       field.NewFp(big.NewInt(17)),
			Rseed:     ownRseed,
		},
		Position: 0,
		Height:   10,
		Txid:     []byte{0xaa},
	}

	candidateIvk := field.NewFq(big.NewInt(999))
	candidate := notes.AddressAt(candidateIvk, 0)

	params := ballot.BuildParams{
		Election:        sampleElection(),
		Sk:              &sk,
		Fvk:             fvk,
		Recipient:       candidate,
		Amount:          400,
		Unspent:         []notes.OwnedNote{owned},
		SortedGlobalNfs: nil,
		CmxLeaves:       []field.Fp{field.NewFp(big.NewInt(11)), field.NewFp(big.NewInt(12))},
		Rng:             rand.New(rand.NewSource(7)),
	}

	b, err := ballot.Build(params)
	c.Assert(err, qt.IsNil)
	c.Assert(len(b.Data.Actions), qt.Equals, 2)
	c.Assert(b.Witnesses.SpSignatures, qt.IsNotNil)

	err = ballot.Verify(b, sampleElection())
	c.Assert(err, qt.IsNil)
}

func TestVerifyFailsWithCryptoFailOnTamperedCvNet(t *testing.T) {
	c := qt.New(t)

	sk := keys.SpendingKey{1, 2, 3, 4}
	fvk := keys.Derive(sk)

	var ownRseed [32]byte
	ownRseed[0] = 5
	owned := notes.OwnedNote{
		Note: notes.Note{
			Recipient: notes.AddressAt(fvk.Ivk, 0),
			Value:     1000,
			Rho:       field.NewFp(big.NewInt(17)),
			Rseed:     ownRseed,
		},
		Position: 0,
		Height:   10,
		Txid:     []byte{0xaa},
	}

	candidateIvk := field.NewFq(big.NewInt(999))
	candidate := notes.AddressAt(candidateIvk, 0)

	params := ballot.BuildParams{
		Election:        sampleElection(),
		Sk:              &sk,
		Fvk:             fvk,
		Recipient:       candidate,
		Amount:          400,
		Unspent:         []notes.OwnedNote{owned},
		SortedGlobalNfs: nil,
		CmxLeaves:       []field.Fp{field.NewFp(big.NewInt(11)), field.NewFp(big.NewInt(12))},
		Rng:             rand.New(rand.NewSource(7)),
	}

	b, err := ballot.Build(params)
	c.Assert(err, qt.IsNil)

	// Swap in a different, still well-formed value commitment so the
	// corruption is caught by a signature check (the sighash changes, so
	// the spend-authorization signature check fails first, before the
	// binding-signature check) rather than by the curve-point decode (an
	// arbitrary flipped bit has even odds of
	// landing off-curve, which would mask the failure mode under test).
	tampered := valuecommit.Commit(1234, field.NewFq(big.NewInt(99))).Bytes()
	b.Data.Actions[0].CvNet = tampered

	err = ballot.Verify(b, sampleElection())
	c.Assert(err, qt.Not(qt.IsNil))
	c.Assert(errs.Is(err, errs.CryptoFail), qt.IsTrue)
}

func TestBuildFailsWithInsufficientFunds(t *testing.T) {
	c := qt.New(t)

	sk := keys.SpendingKey{9}
	fvk := keys.Derive(sk)
	var rseed [32]byte
	owned := notes.OwnedNote{
		Note: notes.Note{
			Recipient: notes.AddressAt(fvk.Ivk, 0),
			Value:     10,
			Rho:       field.NewFp(big.NewInt(1)),
			Rseed:     rseed,
		},
		Position: 0,
	}

	params := ballot.BuildParams{
		Election:  sampleElection(),
		Sk:        &sk,
		Fvk:       fvk,
		Recipient: notes.AddressAt(field.NewFq(big.NewInt(2)), 0),
		Amount:    10000,
		Unspent:   []notes.OwnedNote{owned},
		CmxLeaves: []field.Fp{field.NewFp(big.NewInt(1)), field.NewFp(big.NewInt(2))},
		Rng:       rand.New(rand.NewSource(1)),
	}

	_, err := ballot.Build(params)
	c.Assert(err, qt.ErrorMatches, "insufficient_funds:.*")
}

func TestBuildFailsWhenSignatureRequiredButNoKey(t *testing.T) {
	c := qt.New(t)

	sk := keys.SpendingKey{3}
	fvk := keys.Derive(sk)
	var rseed [32]byte
	owned := notes.OwnedNote{
		Note: notes.Note{
			Recipient: notes.AddressAt(fvk.Ivk, 0),
			Value:     1000,
			Rho:       field.NewFp(big.NewInt(1)),
			Rseed:     rseed,
		},
		Position: 0,
	}

	params := ballot.BuildParams{
		Election:  sampleElection(),
		Sk:        nil,
		Fvk:       fvk,
		Recipient: notes.AddressAt(field.NewFq(big.NewInt(2)), 0),
		Amount:    100,
		Unspent:   []notes.OwnedNote{owned},
		CmxLeaves: []field.Fp{field.NewFp(big.NewInt(1)), field.NewFp(big.NewInt(2))},
		Rng:       rand.New(rand.NewSource(1)),
	}

	_, err := ballot.Build(params)
	c.Assert(err, qt.ErrorMatches, "signature_required:.*")
}
