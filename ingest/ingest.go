// Package ingest implements the reference-data ingester of spec.md §4.3:
// it streams compact blocks over an election's height window, appends
// every action's CMX and revealed (global) nullifier unconditionally —
// the two append-only sets spec.md §1 names — and trial-decrypts each
// action against the voter's prepared incoming viewing key to recover
// owned notes. The streaming-source-plus-periodic-checkpoint shape follows
// vocdoni-davinci-node/sequencer's block-follower loops (poll a
// streaming source, persist a cursor, recover from the last checkpoint
// on restart) adapted from an Ethereum block poller to a compact-block
// gRPC stream.
package ingest

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/vocdoni/zvote/compactblock"
	"github.com/vocdoni/zvote/crypto/field"
	"github.com/vocdoni/zvote/crypto/keys"
	"github.com/vocdoni/zvote/crypto/notes"
	"github.com/vocdoni/zvote/db"
)

// progressInterval is how often (in blocks) Run reports progress besides
// the mandatory final-block report (spec.md §4.3 step 3).
const progressInterval = 1000

// Source streams CompactBlocks; compactblock.Client satisfies it.
type Source interface {
	GetBlockRange(ctx context.Context, start, end uint64, onBlock func(compactblock.CompactBlock) error) error
}

// Run walks (startHeight, endHeight] (spec.md §4.3's
// "[start_height+1, end_height]"), persisting recovered notes and CMXs
// into store, and calling onProgress every progressInterval blocks and
// at the final one. startHeight is normally the election's start height
// minus one on a first run, or the last checkpointed height on restart.
func Run(ctx context.Context, src Source, store *db.DB, fvk keys.FullViewingKey, domain field.Fp, startHeight, endHeight uint32, onProgress func(height uint32)) error {
	position, err := store.CmxCount(ctx)
	if err != nil {
		return err
	}

	return src.GetBlockRange(ctx, uint64(startHeight)+1, uint64(endHeight), func(cb compactblock.CompactBlock) error {
		err := store.WithTx(func(tx *sql.Tx) error {
			for _, vtx := range cb.Vtx {
				for _, action := range vtx.Actions {
					if err := db.AppendCmx(tx, append([]byte(nil), action.Cmx[:]...)); err != nil {
						return err
					}
					if err := db.AppendNullifier(tx, append([]byte(nil), action.Nullifier[:]...)); err != nil {
						return err
					}
					if row, ok := tryDecrypt(fvk, domain, action); ok {
						row.Position = position
						row.Height = cb.Height
						row.Txid = append([]byte(nil), vtx.Hash...)
						if err := db.InsertNote(tx, row); err != nil {
							return err
						}
					}
					position++
				}
			}
			return db.SetProp(tx, db.PropHeight, strconv.FormatUint(uint64(cb.Height), 10))
		})
		if err != nil {
			return err
		}
		if onProgress != nil && (cb.Height%progressInterval == 0 || cb.Height == endHeight) {
			onProgress(cb.Height)
		}
		return nil
	})
}

// tryDecrypt attempts domain-agnostic trial decryption of one action
// against fvk's incoming viewing key (spec.md §4.3 step 2). A decryption
// failure is the ordinary "not ours" outcome, not an error.
func tryDecrypt(fvk keys.FullViewingKey, domain field.Fp, action compactblock.CompactAction) (db.OwnedNoteRow, bool) {
	rho, ok := field.FpFromBytes(action.Nullifier[:])
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
		Value: note.Value,
		Div:   append([]byte(nil), note.Recipient[:11]...),
		Rseed: append([]byte(nil), rseed[:]...),
		Nf:    nf[:],
		Dnf:   dnf[:],
		Rho:   rhoBytes[:],
	}, true
}
