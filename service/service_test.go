package service_test

import (
	"context"
	"database/sql"
	"math/big"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/zvote/address"
	"github.com/vocdoni/zvote/crypto/field"
	"github.com/vocdoni/zvote/crypto/keys"
	"github.com/vocdoni/zvote/db"
	"github.com/vocdoni/zvote/election"
	"github.com/vocdoni/zvote/merkle"
	"github.com/vocdoni/zvote/service"
	"github.com/vocdoni/zvote/types"
)

func openTestDB(t *testing.T) *db.DB {
	path := filepath.Join(t.TempDir(), "zvote.sqlite")
	d, err := db.Open(path)
	qt.Assert(t, err, qt.IsNil)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestSetElectionAndGetProp(t *testing.T) {
	c := qt.New(t)
	store := openTestDB(t)
	svc := service.New(store, "", "", rand.New(rand.NewSource(1)))

	el := election.Election{ID: "e1", StartHeight: 10, EndHeight: 20, DomainSeed: []byte("d")}
	c.Assert(svc.SetElection(el), qt.IsNil)

	raw, err := svc.GetProp(context.Background(), db.PropElection)
	c.Assert(err, qt.IsNil)
	c.Assert(len(raw) > 0, qt.IsTrue)
}

func TestValidateKeyAndSetKeyGetAddress(t *testing.T) {
	c := qt.New(t)
	store := openTestDB(t)
	svc := service.New(store, "", "", rand.New(rand.NewSource(1)))

	sk := keys.SpendingKey{7, 8, 9}
	fvk := keys.Derive(sk)
	ufvk, err := keys.EncodeUFVK(fvk)
	c.Assert(err, qt.IsNil)

	c.Assert(svc.ValidateKey(ufvk), qt.IsTrue)
	c.Assert(svc.ValidateKey("not a key"), qt.IsFalse)

	c.Assert(svc.SetKey(ufvk), qt.IsNil)
	addr, err := svc.GetAddress()
	c.Assert(err, qt.IsNil)
	back, err := address.Decode(addr)
	c.Assert(err, qt.IsNil)
	c.Assert(back[:], qt.Not(qt.IsNil))
}

func TestComputeRootsEmptySet(t *testing.T) {
	c := qt.New(t)
	store := openTestDB(t)
	svc := service.New(store, "", "", rand.New(rand.NewSource(1)))

	roots, err := svc.ComputeRoots(context.Background())
	c.Assert(err, qt.IsNil)

	want := merkle.BatchPaths(nil, nil).Root.Bytes()
	wantHex := types.HexBytes(want[:]).Hex()
	c.Assert(roots.CmxRoot, qt.Equals, wantHex)
	c.Assert(roots.NfRoot, qt.Equals, wantHex)

	stored, err := store.GetProp(context.Background(), db.PropCmxRoot)
	c.Assert(err, qt.IsNil)
	c.Assert(stored, qt.Equals, wantHex)
}

func TestSaveDBAndOpenDBRoundTrip(t *testing.T) {
	c := qt.New(t)
	store := openTestDB(t)
	svc := service.New(store, "", "", rand.New(rand.NewSource(1)))

	el := election.Election{ID: "round-trip", DomainSeed: []byte("d")}
	c.Assert(svc.SetElection(el), qt.IsNil)

	savedPath := filepath.Join(t.TempDir(), "saved.sqlite")
	c.Assert(svc.SaveDB(savedPath), qt.IsNil)

	c.Assert(svc.OpenDB(savedPath), qt.IsNil)
	raw, err := svc.GetProp(context.Background(), db.PropElection)
	c.Assert(err, qt.IsNil)
	c.Assert(len(raw) > 0, qt.IsTrue)
}

func TestVoteSubmitsAndRecordsLocally(t *testing.T) {
	c := qt.New(t)
	store := openTestDB(t)

	sk := keys.SpendingKey{11, 22}
	fvk := keys.Derive(sk)
	ufvk, err := keys.EncodeUFVK(fvk)
	c.Assert(err, qt.IsNil)

	var submitted bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ballot" && r.Method == http.MethodPost {
			submitted = true
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	svc := service.New(store, "", srv.URL, rand.New(rand.NewSource(42)))
	el := election.Election{ID: "vote-test", DomainSeed: []byte("vote-domain")}
	c.Assert(svc.SetElection(el), qt.IsNil)
	c.Assert(svc.SetKey(ufvk), qt.IsNil)

	// Seed one unspent note, owned under our own fvk, worth enough to
	// cover the vote.
	ourAddr, err := svc.GetAddress()
	c.Assert(err, qt.IsNil)
	recipient, err := address.Decode(ourAddr)
	c.Assert(err, qt.IsNil)
	insertNote(c, store, recipient, 10000)

	result, err := svc.Vote(context.Background(), ourAddr, 10000)
	c.Assert(err, qt.IsNil)
	c.Assert(len(result.Hash) > 0, qt.IsTrue)
	c.Assert(submitted, qt.IsTrue)

	n, err := store.BallotCount(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, uint32(1))
}

func insertNote(c *qt.C, store *db.DB, recipient address.VoteAddress, value uint64) {
	rho := field.NewFp(big.NewInt(777))
	rhoBytes := rho.Bytes()
	err := store.WithTx(func(tx *sql.Tx) error {
		return db.InsertNote(tx, db.OwnedNoteRow{
			Position: 0,
			Height:   1,
			Txid:     []byte{0x01},
			Value:    value,
			Div:      append([]byte(nil), recipient[:11]...),
			Rseed:    make([]byte, 32),
			Nf:       make([]byte, 32),
			Dnf:      make([]byte, 32),
			Rho:      rhoBytes[:],
		})
	})
	c.Assert(err, qt.IsNil)
}
