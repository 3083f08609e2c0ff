package ballot

import (
	"io"
	"math/big"

	"github.com/vocdoni/zvote/crypto/field"
	"github.com/vocdoni/zvote/crypto/halo2"
	"github.com/vocdoni/zvote/crypto/keys"
	"github.com/vocdoni/zvote/crypto/notes"
	"github.com/vocdoni/zvote/crypto/redpallas"
	"github.com/vocdoni/zvote/crypto/valuecommit"
	"github.com/vocdoni/zvote/election"
	"github.com/vocdoni/zvote/errs"
	"github.com/vocdoni/zvote/merkle"
)

// BuildParams are the inputs to Build (spec.md §4.6). Sk is nil when the
// voter supplied only a viewing key; Unspent must be ordered the way the
// greedy selection in step 1 expects (db.UnspentNotes already orders by
// position). SortedGlobalNfs and CmxLeaves are the full current state of
// the two published sets the ballot's anchors are computed against.
type BuildParams struct {
	Election        election.Election
	Sk              *keys.SpendingKey
	Fvk             keys.FullViewingKey
	Recipient       notes.RawAddress
	Amount          uint64
	Unspent         []notes.OwnedNote
	SortedGlobalNfs []field.Fp
	CmxLeaves       []field.Fp
	Rng             io.Reader
}

// perAction carries the intermediate values build() computes for one
// Action before they're folded into the returned Ballot.
type perAction struct {
	action    Action
	instance  Instance
	priv      PrivateWitness
	spSignKey field.Fq
	cmx       field.Fp
}

// Build assembles a complete, proven and (optionally) signed Ballot
// spending notes the voter owns under fvk, following spec.md §4.6's six
// steps in order.
func Build(p BuildParams) (*Ballot, error) {
	inputs, total, err := selectNotes(p.Unspent, p.Amount)
	if err != nil {
		return nil, err
	}
	change := total - p.Amount

	nActions := len(inputs)
	if nActions < 2 {
		nActions = 2
	}

	domain := p.Election.Domain()
	selfAddr := notes.AddressAt(p.Fvk.Ivk, 0)
	nfLeaves := merkle.BuildNFRangeLeaves(p.SortedGlobalNfs)

	built := make([]perAction, nActions)
	cmxPositions := make([]uint32, nActions)
	nfPositions := make([]uint32, nActions)
	totalRcv := field.NewFq(big.NewInt(0))

	for i := 0; i < nActions; i++ {
		fvkUse, spendNote, spendPosition, isReal, err := spendFor(p.Rng, p.Fvk, inputs, i)
		if err != nil {
			return nil, err
		}

		rho := spendNote.DomainNullifier(fvkUse, domain)

		outNote, outRecipient, err := outputFor(p.Rng, i, rho, p.Recipient, selfAddr, p.Amount, change)
		if err != nil {
			return nil, err
		}

		globalNf := spendNote.Nullifier(fvkUse)
		nfPos := merkle.SnapToGapStart(nfLeaves, globalNf)
		// With no nullifiers there are no range leaves: the whole field is
		// one gap starting at zero.
		nfStart := field.FpZero()
		if len(nfLeaves) > 0 {
			nfStart = nfLeaves[nfPos]
		}

		rcv, err := randFq(p.Rng)
		if err != nil {
			return nil, errs.Wrap(errs.Io, "ballot: reading rcv randomness failed", err)
		}
		totalRcv = totalRcv.Add(rcv)

		spendValue := uint64(0)
		if isReal {
			spendValue = spendNote.Value
		}
		cvNet := valuecommit.Commit(int64(spendValue)-int64(outNote.Value), rcv)

		alpha, err := randFq(p.Rng)
		if err != nil {
			return nil, errs.Wrap(errs.Io, "ballot: reading alpha randomness failed", err)
		}
		rk := keys.RandomizeAk(fvkUse.Ak, alpha)

		var spSignKey field.Fq
		if p.Sk != nil {
			spSignKey = keys.RandomizeAsk(fvkUse.Ask, alpha)
		}

		enc, err := notes.Encrypt(p.Rng, outNote, outRecipient)
		if err != nil {
			return nil, err
		}
		cmx := outNote.Commitment()

		built[i] = perAction{
			action: Action{
				CvNet: cvNet.Bytes(),
				Rk:    rk.Bytes(),
				Nf:    rho.Bytes(),
				Cmx:   cmx.Bytes(),
				Epk:   enc.Epk,
				Enc:   enc.Enc,
			},
			cmx: cmx,
			priv: PrivateWitness{
				Dnf:        rho,
				NfStart:    nfStart,
				SpendValue: spendValue,
				SpendRho:   spendNote.Rho,
				OutValue:   outNote.Value,
				Alpha:      alpha,
				Rcv:        rcv,
			},
			spSignKey: spSignKey,
		}
		cmxPositions[i] = spendPosition
		nfPositions[i] = nfPos
	}

	cmxResult := merkle.BatchPaths(p.CmxLeaves, cmxPositions)
	nfResult := merkle.BatchPaths(nfLeaves, nfPositions)

	actions := make([]Action, nActions)
	for i := range built {
		built[i].instance = Instance{
			CmxRoot: cmxResult.Root,
			CvNet:   built[i].action.CvNet,
			Dnf:     built[i].priv.Dnf,
			Rk:      built[i].action.Rk,
			Cmx:     built[i].cmx,
			Domain:  domain,
			NfRoot:  nfResult.Root,
		}
		actions[i] = built[i].action
	}

	data := BallotData{
		Version: 1,
		Domain:  domain.Bytes(),
		Actions: actions,
		Anchors: Anchors{Nf: nfResult.Root.Bytes(), Cmx: cmxResult.Root.Bytes()},
	}
	sighash := Sighash(data)

	proofs := make([][]byte, nActions)
	for i, b := range built {
		inputsHash := computeInputsHash(b.instance, b.priv)
		witness := toWitness(b.instance, b.priv, inputsHash)

		proof, err := halo2.Prove(witness)
		if err != nil {
			return nil, err
		}
		if err := halo2.Verify(proof, witness); err != nil {
			return nil, errs.Wrap(errs.CryptoFail, "ballot: freshly generated proof failed local verification", err)
		}
		proofs[i] = encodeProofWire(inputsHash, proof)
	}

	var spSignatures *[][64]byte
	if p.Sk != nil {
		sigs := make([][64]byte, nActions)
		for i, b := range built {
			nonce, err := rand32(p.Rng)
			if err != nil {
				return nil, errs.Wrap(errs.Io, "ballot: reading signature nonce failed", err)
			}
			sigs[i] = redpallas.Sign(b.spSignKey, sighash[:], nonce)
		}
		spSignatures = &sigs
	} else if p.Election.SignatureRequired {
		return nil, errs.New(errs.SignatureRequired, "ballot: election requires spend-authorization signatures but no spending key was supplied")
	}

	bindingKey := valuecommit.BindingSigningKey(totalRcv)
	bindingNonce, err := rand32(p.Rng)
	if err != nil {
		return nil, errs.Wrap(errs.Io, "ballot: reading binding-signature nonce failed", err)
	}
	bindingSig := redpallas.Sign(bindingKey, sighash[:], bindingNonce)

	return &Ballot{
		Data: data,
		Witnesses: BallotWitnesses{
			Proofs:           proofs,
			SpSignatures:     spSignatures,
			BindingSignature: bindingSig,
		},
	}, nil
}

// selectNotes implements step 1's greedy accumulation.
func selectNotes(unspent []notes.OwnedNote, amount uint64) ([]notes.OwnedNote, uint64, error) {
	var inputs []notes.OwnedNote
	var total uint64
	for _, n := range unspent {
		if total >= amount {
			break
		}
		inputs = append(inputs, n)
		total += n.Value
	}
	if total < amount {
		return nil, 0, errs.New(errs.InsufficientFunds, "ballot: owned notes do not cover the requested amount")
	}
	return inputs, total, nil
}

// spendFor resolves the i-th Action's spend side: a real input note and
// the voter's own fvk when one is available, otherwise a freshly
// generated dummy spend-note under an ephemeral, locally-held key (step
// 2's "generate dummy spend-notes via the protocol's dummy-note
// constructor" — ephemeral since nothing outside this call ever needs to
// reproduce it).
func spendFor(rng io.Reader, fvk keys.FullViewingKey, inputs []notes.OwnedNote, i int) (keys.FullViewingKey, notes.Note, uint32, bool, error) {
	if i < len(inputs) {
		return fvk, inputs[i].Note, inputs[i].Position, true, nil
	}
	dummySk, err := randSpendingKey(rng)
	if err != nil {
		return keys.FullViewingKey{}, notes.Note{}, 0, false, errs.Wrap(errs.Io, "ballot: reading dummy spending key randomness failed", err)
	}
	dummyFvk := keys.Derive(dummySk)
	rho, err := randFp(rng)
	if err != nil {
		return keys.FullViewingKey{}, notes.Note{}, 0, false, errs.Wrap(errs.Io, "ballot: reading dummy rho randomness failed", err)
	}
	rseed, err := rand32(rng)
	if err != nil {
		return keys.FullViewingKey{}, notes.Note{}, 0, false, errs.Wrap(errs.Io, "ballot: reading dummy rseed randomness failed", err)
	}
	recipient := notes.AddressAt(dummyFvk.Ivk, 0)
	return dummyFvk, notes.Dummy(rho, rseed, recipient), 0, false, nil
}

// outputFor builds the i-th Action's output note per step 3: the real
// recipient for i=0, self-change for i=1, a value-zero dummy bound to rho
// otherwise.
func outputFor(rng io.Reader, i int, rho field.Fp, recipient, selfAddr notes.RawAddress, amount, change uint64) (notes.Note, notes.RawAddress, error) {
	rseed, err := rand32(rng)
	if err != nil {
		return notes.Note{}, notes.RawAddress{}, errs.Wrap(errs.Io, "ballot: reading output rseed randomness failed", err)
	}
	switch i {
	case 0:
		return notes.Note{Recipient: recipient, Value: amount, Rho: rho, Rseed: rseed}, recipient, nil
	case 1:
		return notes.Note{Recipient: selfAddr, Value: change, Rho: rho, Rseed: rseed}, selfAddr, nil
	default:
		dummySk, err := randSpendingKey(rng)
		if err != nil {
			return notes.Note{}, notes.RawAddress{}, errs.Wrap(errs.Io, "ballot: reading dummy output key randomness failed", err)
		}
		dummyFvk := keys.Derive(dummySk)
		dummyRecipient := notes.AddressAt(dummyFvk.Ivk, 0)
		return notes.Dummy(rho, rseed, dummyRecipient), dummyRecipient, nil
	}
}

func randFq(rng io.Reader) (field.Fq, error) {
	var buf [32]byte
	if _, err := io.ReadFull(rng, buf[:]); err != nil {
		return field.Fq{}, err
	}
	return field.NewFq(new(big.Int).SetBytes(buf[:])), nil
}

func randFp(rng io.Reader) (field.Fp, error) {
	var buf [32]byte
	if _, err := io.ReadFull(rng, buf[:]); err != nil {
		return field.Fp{}, err
	}
	return field.NewFp(new(big.Int).SetBytes(buf[:])), nil
}

func rand32(rng io.Reader) ([32]byte, error) {
	var buf [32]byte
	_, err := io.ReadFull(rng, buf[:])
	return buf, err
}

func randSpendingKey(rng io.Reader) (keys.SpendingKey, error) {
	var sk keys.SpendingKey
	_, err := io.ReadFull(rng, sk[:])
	return sk, err
}
