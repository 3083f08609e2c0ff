// Package sync implements the ballot synchronizer of spec.md §4.4: pull
// new ballots from the tallier by sequential height, verify each, and
// apply its effects in one transaction. The pull-verify-apply shape
// mirrors vocdoni-davinci-node/sequencer/worker.go's master-polling loop
// (fetch the next unit of work by sequence number, validate it, commit
// its effects, advance the cursor) adapted from sequencer jobs to
// tallier ballots.
package sync

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/vocdoni/zvote/ballot"
	"github.com/vocdoni/zvote/crypto/field"
	"github.com/vocdoni/zvote/crypto/keys"
	"github.com/vocdoni/zvote/crypto/notes"
	"github.com/vocdoni/zvote/db"
	"github.com/vocdoni/zvote/election"
	"github.com/vocdoni/zvote/log"
)

// Puller is the tallier surface sync needs; tallier.Client satisfies it.
type Puller interface {
	NumBallots() (uint32, error)
	BallotAtHeight(i uint32) (*ballot.Ballot, error)
}

// Run pulls every ballot beyond the locally-stored count, verifies it
// against el, and applies its effects to store. A ballot that fails
// verification is skipped, logged, and does not abort the run (spec.md
// §4.4's failure semantics: "proof-verification failure is fatal for
// that ballot ... but non-fatal for the process"). Returns the number of
// ballots newly applied.
func Run(ctx context.Context, client Puller, store *db.DB, el election.Election, fvk keys.FullViewingKey) (uint32, error) {
	n, err := client.NumBallots()
	if err != nil {
		return 0, err
	}
	c, err := store.BallotCount(ctx)
	if err != nil {
		return 0, err
	}
	if c >= n {
		return 0, nil
	}

	domain := el.Domain()
	position, err := store.CmxCount(ctx)
	if err != nil {
		return 0, err
	}

	var applied uint32
	for height := c + 1; height <= n; height++ {
		select {
		case <-ctx.Done():
			return applied, ctx.Err()
		default:
		}

		b, err := client.BallotAtHeight(height)
		if err != nil {
			return applied, err
		}
		if err := ballot.Verify(b, el); err != nil {
			log.Errorw(err, "sync: ballot failed verification, skipping")
			continue
		}

		sighash := ballot.Sighash(b.Data)
		data, err := json.Marshal(b)
		if err != nil {
			return applied, err
		}

		txErr := store.WithTx(func(tx *sql.Tx) error {
			if err := db.InsertBallot(tx, el.ID, height, sighash[:], data); err != nil {
				return err
			}
			for _, action := range b.Data.Actions {
				if err := db.MarkSpent(tx, action.Nf[:], height); err != nil {
					return err
				}
				if row, ok := tryDecryptOutput(fvk, domain, action, sighash); ok {
					row.Position = position
					row.Height = height
					if err := db.InsertNote(tx, row); err != nil {
						return err
					}
				}
				if err := db.AppendCmx(tx, append([]byte(nil), action.Cmx[:]...)); err != nil {
					return err
				}
				if err := db.AppendNullifier(tx, append([]byte(nil), action.Nf[:]...)); err != nil {
					return err
				}
				position++
			}
			return nil
		})
		if txErr != nil {
			return applied, txErr
		}
		applied++
	}
	return applied, nil
}

// tryDecryptOutput mirrors ingest.tryDecrypt for a ballot's Action: the
// published (domain-bound) nf doubles as the candidate rho for the
// output note it accompanies, exactly as ballot.Build constructs it.
func tryDecryptOutput(fvk keys.FullViewingKey, domain field.Fp, action ballot.Action, txid [32]byte) (db.OwnedNoteRow, bool) {
	rho, ok := field.FpFromBytes(action.Nf[:])
	if !ok {
		return db.OwnedNoteRow{}, false
	}
	cmx, ok := field.FpFromBytes(action.Cmx[:])
	if !ok {
		return db.OwnedNoteRow{}, false
	}
	note, ok := notes.TrialDecrypt(fvk.Ivk, action.Epk, action.Enc, rho, cmx)
	if !ok {
		return db.OwnedNoteRow{}, false
	}

	nf := note.Nullifier(fvk).Bytes()
	dnf := note.DomainNullifier(fvk, domain).Bytes()
	rhoBytes := rho.Bytes()
	rseed := note.Rseed

	return db.OwnedNoteRow{
		Txid:  append([]byte(nil), txid[:]...),
		Value: note.Value,
		Div:   append([]byte(nil), note.Recipient[:11]...),
		Rseed: append([]byte(nil), rseed[:]...),
		Nf:    nf[:],
		Dnf:   dnf[:],
		Rho:   rhoBytes[:],
	}, true
}
