// Package ballot implements the Ballot/BallotData/Action wire types of
// spec.md §3, the sighash (§3), the ballot builder (§4.6) and verifier
// (§4.8). JSON encoding hex-encodes every byte field in lowercase
// without a "0x" prefix, per spec.md §6 ("Ballot JSON. Each byte field
// is hex-encoded lowercase without 0x").
package ballot

import (
	"encoding/json"

	"github.com/vocdoni/zvote/errs"
	"github.com/vocdoni/zvote/types"
)

// Action is one spend-and-output unit inside a ballot (spec.md §3).
type Action struct {
	CvNet [32]byte
	Rk    [32]byte
	Nf    [32]byte // domain-bound nullifier
	Cmx   [32]byte
	Epk   [32]byte
	Enc   [52]byte
}

// Anchors carries the two committed Merkle roots a ballot's proofs were
// built against.
type Anchors struct {
	Nf  [32]byte
	Cmx [32]byte
}

// BallotData is the public, signed/proven portion of a ballot.
type BallotData struct {
	Version uint32
	Domain  [32]byte
	Actions []Action
	Anchors Anchors
}

// BallotWitnesses carries the cryptographic evidence accompanying
// BallotData: per-Action proofs, optional spend-authorization
// signatures, and the binding signature.
type BallotWitnesses struct {
	Proofs           [][]byte
	SpSignatures     *[][64]byte
	BindingSignature [64]byte
}

// Ballot is the full object a voter submits and a tallier/peer verifies.
type Ballot struct {
	Data      BallotData
	Witnesses BallotWitnesses
}

// ---- JSON encoding: hex-encoded byte fields, field order not load-bearing ----

type actionJSON struct {
	CvNet string `json:"cv_net"`
	Rk    string `json:"rk"`
	Nf    string `json:"nf"`
	Cmx   string `json:"cmx"`
	Epk   string `json:"epk"`
	Enc   string `json:"enc"`
}

func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(actionJSON{
		CvNet: types.HexBytes(a.CvNet[:]).Hex(),
		Rk:    types.HexBytes(a.Rk[:]).Hex(),
		Nf:    types.HexBytes(a.Nf[:]).Hex(),
		Cmx:   types.HexBytes(a.Cmx[:]).Hex(),
		Epk:   types.HexBytes(a.Epk[:]).Hex(),
		Enc:   types.HexBytes(a.Enc[:]).Hex(),
	})
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var j actionJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return errs.Wrap(errs.InvalidEncoding, "ballot: malformed action JSON", err)
	}
	fields := []struct {
		hexStr string
		out    []byte
	}{
		{j.CvNet, a.CvNet[:]},
		{j.Rk, a.Rk[:]},
		{j.Nf, a.Nf[:]},
		{j.Cmx, a.Cmx[:]},
		{j.Epk, a.Epk[:]},
		{j.Enc, a.Enc[:]},
	}
	for _, f := range fields {
		b, err := types.HexStringToHexBytes(f.hexStr)
		if err != nil {
			return errs.Wrap(errs.InvalidEncoding, "ballot: malformed hex in action field", err)
		}
		if len(b) != len(f.out) {
			return errs.New(errs.InvalidEncoding, "ballot: wrong-length action field")
		}
		copy(f.out, b)
	}
	return nil
}

type anchorsJSON struct {
	Nf  string `json:"nf"`
	Cmx string `json:"cmx"`
}

func (a Anchors) MarshalJSON() ([]byte, error) {
	return json.Marshal(anchorsJSON{Nf: types.HexBytes(a.Nf[:]).Hex(), Cmx: types.HexBytes(a.Cmx[:]).Hex()})
}

func (a *Anchors) UnmarshalJSON(data []byte) error {
	var j anchorsJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return errs.Wrap(errs.InvalidEncoding, "ballot: malformed anchors JSON", err)
	}
	nf, err := types.HexStringToHexBytes(j.Nf)
	if err != nil || len(nf) != 32 {
		return errs.New(errs.InvalidEncoding, "ballot: malformed nf anchor")
	}
	cmx, err := types.HexStringToHexBytes(j.Cmx)
	if err != nil || len(cmx) != 32 {
		return errs.New(errs.InvalidEncoding, "ballot: malformed cmx anchor")
	}
	copy(a.Nf[:], nf)
	copy(a.Cmx[:], cmx)
	return nil
}

type ballotDataJSON struct {
	Version uint32      `json:"version"`
	Domain  string      `json:"domain"`
	Actions []Action    `json:"actions"`
	Anchors anchorsJSON `json:"anchors"`
}

func (d BallotData) MarshalJSON() ([]byte, error) {
	return json.Marshal(ballotDataJSON{
		Version: d.Version,
		Domain:  types.HexBytes(d.Domain[:]).Hex(),
		Actions: d.Actions,
		Anchors: anchorsJSON{Nf: types.HexBytes(d.Anchors.Nf[:]).Hex(), Cmx: types.HexBytes(d.Anchors.Cmx[:]).Hex()},
	})
}

func (d *BallotData) UnmarshalJSON(data []byte) error {
	var j ballotDataJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return errs.Wrap(errs.InvalidEncoding, "ballot: malformed ballot data JSON", err)
	}
	domain, err := types.HexStringToHexBytes(j.Domain)
	if err != nil || len(domain) != 32 {
		return errs.New(errs.InvalidEncoding, "ballot: malformed domain")
	}
	nf, err := types.HexStringToHexBytes(j.Anchors.Nf)
	if err != nil || len(nf) != 32 {
		return errs.New(errs.InvalidEncoding, "ballot: malformed nf anchor")
	}
	cmx, err := types.HexStringToHexBytes(j.Anchors.Cmx)
	if err != nil || len(cmx) != 32 {
		return errs.New(errs.InvalidEncoding, "ballot: malformed cmx anchor")
	}
	d.Version = j.Version
	copy(d.Domain[:], domain)
	d.Actions = j.Actions
	copy(d.Anchors.Nf[:], nf)
	copy(d.Anchors.Cmx[:], cmx)
	return nil
}

type ballotWitnessesJSON struct {
	Proofs           []string  `json:"proofs"`
	SpSignatures     *[]string `json:"sp_signatures"`
	BindingSignature string    `json:"binding_signature"`
}

func (w BallotWitnesses) MarshalJSON() ([]byte, error) {
	j := ballotWitnessesJSON{
		BindingSignature: types.HexBytes(w.BindingSignature[:]).Hex(),
	}
	for _, p := range w.Proofs {
		j.Proofs = append(j.Proofs, types.HexBytes(p).Hex())
	}
	if w.SpSignatures != nil {
		sigs := make([]string, len(*w.SpSignatures))
		for i, s := range *w.SpSignatures {
			sigs[i] = types.HexBytes(s[:]).Hex()
		}
		j.SpSignatures = &sigs
	}
	return json.Marshal(j)
}

func (w *BallotWitnesses) UnmarshalJSON(data []byte) error {
	var j ballotWitnessesJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return errs.Wrap(errs.InvalidEncoding, "ballot: malformed witnesses JSON", err)
	}
	bs, err := types.HexStringToHexBytes(j.BindingSignature)
	if err != nil || len(bs) != 64 {
		return errs.New(errs.InvalidEncoding, "ballot: malformed binding signature")
	}
	copy(w.BindingSignature[:], bs)

	w.Proofs = nil
	for _, p := range j.Proofs {
		b, err := types.HexStringToHexBytes(p)
		if err != nil {
			return errs.New(errs.InvalidEncoding, "ballot: malformed proof hex")
		}
		w.Proofs = append(w.Proofs, b)
	}

	if j.SpSignatures == nil {
		w.SpSignatures = nil
		return nil
	}
	sigs := make([][64]byte, len(*j.SpSignatures))
	for i, s := range *j.SpSignatures {
		b, err := types.HexStringToHexBytes(s)
		if err != nil || len(b) != 64 {
			return errs.New(errs.InvalidEncoding, "ballot: malformed spend-auth signature")
		}
		copy(sigs[i][:], b)
	}
	w.SpSignatures = &sigs
	return nil
}
