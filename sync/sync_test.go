package sync_test

import (
	"context"
	"database/sql"
	"math/big"
	"math/rand"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/zvote/ballot"
	"github.com/vocdoni/zvote/crypto/field"
	"github.com/vocdoni/zvote/crypto/keys"
	"github.com/vocdoni/zvote/crypto/notes"
	"github.com/vocdoni/zvote/db"
	"github.com/vocdoni/zvote/election"
	zsync "github.com/vocdoni/zvote/sync"
)

type fakePuller struct {
	ballots []*ballot.Ballot
}

func (f fakePuller) NumBallots() (uint32, error) { return uint32(len(f.ballots)), nil }

func (f fakePuller) BallotAtHeight(i uint32) (*ballot.Ballot, error) {
	return f.ballots[i-1], nil
}

func openTestDB(t *testing.T) *db.DB {
	path := filepath.Join(t.TempDir(), "zvote.sqlite")
	d, err := db.Open(path)
	qt.Assert(t, err, qt.IsNil)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestRunAppliesVerifiedBallot(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	store := openTestDB(t)

	sk := keys.SpendingKey{11, 22, 33}
	fvk := keys.Derive(sk)
	el := election.Election{ID: "e1", SignatureRequired: true, DomainSeed: []byte("sync-test-domain")}

	var ownRseed [32]byte
	ownRseed[0] = 9
	owned := notes.OwnedNote{
		Note: notes.Note{
			Recipient: notes.AddressAt(fvk.Ivk, 0),
			Value:     1000,
			Rho:       field.NewFp(big.NewInt(55)),
			Rseed:     ownRseed,
		},
		Position: 0,
	}
	candidate := notes.AddressAt(field.NewFq(big.NewInt(321)), 0)

	b, err := ballot.Build(ballot.BuildParams{
		Election:  el,
		Sk:        &sk,
		Fvk:       fvk,
		Recipient: candidate,
		Amount:    400,
		Unspent:   []notes.OwnedNote{owned},
		CmxLeaves: []field.Fp{field.NewFp(big.NewInt(1)), field.NewFp(big.NewInt(2))},
		Rng:       rand.New(rand.NewSource(3)),
	})
	c.Assert(err, qt.IsNil)

	// Pre-seed a note this ballot's first Action will spend, so MarkSpent
	// has a row to mark.
	spentDnf := append([]byte(nil), b.Data.Actions[0].Nf[:]...)
	err = store.WithTx(func(tx *sql.Tx) error {
		return db.InsertNote(tx, db.OwnedNoteRow{
			Position: 500,
			Height:   1,
			Txid:     []byte{0xbb},
			Value:    1000,
			Div:      make([]byte, 11),
			Rseed:    make([]byte, 32),
			Nf:       make([]byte, 32),
			Dnf:      spentDnf,
			Rho:      make([]byte, 32),
		})
	})
	c.Assert(err, qt.IsNil)

	applied, err := zsync.Run(ctx, fakePuller{ballots: []*ballot.Ballot{b}}, store, el, fvk)
	c.Assert(err, qt.IsNil)
	c.Assert(applied, qt.Equals, uint32(1))

	count, err := store.BallotCount(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(count, qt.Equals, uint32(1))

	cmxCount, err := store.CmxCount(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(cmxCount, qt.Equals, uint32(2))

	spentRow, found, err := store.NoteByDnf(ctx, spentDnf)
	c.Assert(err, qt.IsNil)
	c.Assert(found, qt.IsTrue)
	c.Assert(spentRow.Spent.Valid, qt.IsTrue)
	c.Assert(spentRow.Spent.Int64, qt.Equals, int64(1))

	// The change output (Action index 1, sent to our own address) should
	// have been recovered as a new owned note.
	unspent, err := store.UnspentNotes(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(len(unspent), qt.Equals, 1)
	c.Assert(unspent[0].Value, qt.Equals, uint64(600))
}

func TestRunIsIdempotentOnSecondCall(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	store := openTestDB(t)

	sk := keys.SpendingKey{11, 22, 33}
	fvk := keys.Derive(sk)
	el := election.Election{ID: "e1", SignatureRequired: true, DomainSeed: []byte("sync-test-domain")}

	var ownRseed [32]byte
	ownRseed[0] = 9
	owned := notes.OwnedNote{
		Note: notes.Note{
			Recipient: notes.AddressAt(fvk.Ivk, 0),
			Value:     1000,
			Rho:       field.NewFp(big.NewInt(55)),
			Rseed:     ownRseed,
		},
		Position: 0,
	}
	candidate := notes.AddressAt(field.NewFq(big.NewInt(321)), 0)

	b, err := ballot.Build(ballot.BuildParams{
		Election:  el,
		Sk:        &sk,
		Fvk:       fvk,
		Recipient: candidate,
		Amount:    400,
		Unspent:   []notes.OwnedNote{owned},
		CmxLeaves: []field.Fp{field.NewFp(big.NewInt(1)), field.NewFp(big.NewInt(2))},
		Rng:       rand.New(rand.NewSource(3)),
	})
	c.Assert(err, qt.IsNil)

	spentDnf := append([]byte(nil), b.Data.Actions[0].Nf[:]...)
	err = store.WithTx(func(tx *sql.Tx) error {
		return db.InsertNote(tx, db.OwnedNoteRow{
			Position: 500,
			Height:   1,
			Txid:     []byte{0xbb},
			Value:    1000,
			Div:      make([]byte, 11),
			Rseed:    make([]byte, 32),
			Nf:       make([]byte, 32),
			Dnf:      spentDnf,
			Rho:      make([]byte, 32),
		})
	})
	c.Assert(err, qt.IsNil)

	puller := fakePuller{ballots: []*ballot.Ballot{b}}

	applied, err := zsync.Run(ctx, puller, store, el, fvk)
	c.Assert(err, qt.IsNil)
	c.Assert(applied, qt.Equals, uint32(1))

	// store's local ballot count now matches the puller's NumBallots, so a
	// second Run call must be a no-op: it applies nothing and touches
	// neither the ballot log nor the cmx/nullifier sets again.
	applied, err = zsync.Run(ctx, puller, store, el, fvk)
	c.Assert(err, qt.IsNil)
	c.Assert(applied, qt.Equals, uint32(0))

	count, err := store.BallotCount(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(count, qt.Equals, uint32(1))

	cmxCount, err := store.CmxCount(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(cmxCount, qt.Equals, uint32(2))
}
