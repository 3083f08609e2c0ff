// Package service implements the logical request-handler surface of
// spec.md §6: set_election, save_db, open_db, get_address, get_prop,
// validate_key, download_reference_data, sync, get_sync_height,
// get_available_balance, compute_roots and vote. It is the glue layer
// a UI shell calls into — the thin per-handler methods
// vocdoni-davinci-node/api's handlers play for its HTTP surface, except
// here the surface is transport-agnostic (service/httpapi.go puts an
// HTTP front on it) and every handler is guarded by one mutex over the
// session's mutable state (spec.md §5: "Application state ... is
// guarded by a single mutex; handlers acquire, clone out the minimum
// needed, and release before performing I/O").
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/vocdoni/zvote/address"
	"github.com/vocdoni/zvote/ballot"
	"github.com/vocdoni/zvote/compactblock"
	"github.com/vocdoni/zvote/crypto/field"
	"github.com/vocdoni/zvote/crypto/keys"
	"github.com/vocdoni/zvote/crypto/notes"
	"github.com/vocdoni/zvote/db"
	"github.com/vocdoni/zvote/election"
	"github.com/vocdoni/zvote/errs"
	"github.com/vocdoni/zvote/ingest"
	"github.com/vocdoni/zvote/merkle"
	zsync "github.com/vocdoni/zvote/sync"
	"github.com/vocdoni/zvote/tallier"
	"github.com/vocdoni/zvote/types"
)

// Roots is the compute_roots response: the two published anchors, hex
// encoded the same way every other byte field in the ballot wire format is.
type Roots struct {
	NfRoot  string `json:"nf_root"`
	CmxRoot string `json:"cmx_root"`
}

// VoteResult is the vote(address, amount) response.
type VoteResult struct {
	Hash string `json:"hash"`
}

// state is the mutable, mutex-guarded session state spec.md §5 names:
// "URL, election, key, pool handle". It is deliberately a flat struct
// so Service methods can clone it out under the lock and release before
// any I/O, rather than holding the lock across a download or HTTP call.
type state struct {
	lwdURL     string
	el         *election.Election
	fvk        *keys.FullViewingKey
	sk         *keys.SpendingKey
	store      *db.DB
	tallierURL string // tallier base URL
}

// Service holds one voter session's state and the RNG its ballot builder
// draws from.
type Service struct {
	mu  sync.Mutex
	st  state
	rng io.Reader
}

// New builds a Service for the given store, lightwalletd URL and
// tallier base URL; rng is normally crypto/rand.Reader in production
// and a deterministic source in tests (spec.md §4.7).
func New(store *db.DB, lwdURL, tallierURL string, rng io.Reader) *Service {
	return &Service{
		st:  state{store: store, lwdURL: lwdURL, tallierURL: tallierURL},
		rng: rng,
	}
}

// snapshot clones out the fields a handler needs and releases the lock
// before the caller does any I/O, per spec.md §5's handler discipline.
func (s *Service) snapshot() state {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

// SetElection installs el as the active election for this session
// (service surface's set_election) and persists it so a later OpenDB
// against the same file restores it.
func (s *Service) SetElection(el election.Election) error {
	data, err := json.Marshal(el)
	if err != nil {
		return errs.Wrap(errs.Programmer, "service: marshal election failed", err)
	}

	s.mu.Lock()
	store := s.st.store
	s.mu.Unlock()

	if err := store.WithTx(func(tx *sql.Tx) error {
		return db.SetProp(tx, db.PropElection, string(data))
	}); err != nil {
		return err
	}

	s.mu.Lock()
	s.st.el = &el
	s.mu.Unlock()
	return nil
}

// SaveDB copies the live database file to path, the persist half of
// save_db/open_db (spec.md §6; see DESIGN.md for the supplemented
// semantics this mirrors from the original Tauri state.rs).
func (s *Service) SaveDB(path string) error {
	store := s.snapshot().store
	src, err := os.Open(store.Path())
	if err != nil {
		return errs.Wrap(errs.Io, "service: open source db failed", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.Io, "service: create destination db failed", err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		return errs.Wrap(errs.Io, "service: copy db file failed", err)
	}
	return nil
}

// OpenDB swaps the active store for the database at path, re-derives the
// in-memory election/key state from its properties table (mirroring the
// original's "create schema, copy properties rows, swap pool" sequence,
// here inverted: open the target directly and hydrate from what it
// already has), and closes the previous store.
func (s *Service) OpenDB(path string) error {
	newStore, err := db.Open(path)
	if err != nil {
		return err
	}

	var el *election.Election
	if raw, err := newStore.GetProp(context.Background(), db.PropElection); err == nil {
		var parsed election.Election
		if jsonErr := json.Unmarshal([]byte(raw), &parsed); jsonErr == nil {
			el = &parsed
		}
	} else if !errs.Is(err, errs.MissingProperty) {
		_ = newStore.Close()
		return err
	}

	var fvk *keys.FullViewingKey
	var sk *keys.SpendingKey
	if raw, err := newStore.GetProp(context.Background(), db.PropKey); err == nil {
		parsedFvk, parsedSk, parseErr := keys.ParseKeyString(raw)
		if parseErr == nil {
			fvk = &parsedFvk
			sk = parsedSk
		}
	} else if !errs.Is(err, errs.MissingProperty) {
		_ = newStore.Close()
		return err
	}

	s.mu.Lock()
	old := s.st.store
	s.st.store = newStore
	s.st.el = el
	s.st.fvk = fvk
	s.st.sk = sk
	s.mu.Unlock()

	if old != nil {
		return old.Close()
	}
	return nil
}

// ValidateKey reports whether key parses as either a mnemonic or a
// unified viewing key, without installing it.
func (s *Service) ValidateKey(key string) bool {
	return keys.ValidateKey(key)
}

// SetKey parses and installs key as this session's voting key, deriving
// and persisting its full viewing key for later get_address/balance/vote
// calls.
func (s *Service) SetKey(key string) error {
	fvk, sk, err := keys.ParseKeyString(key)
	if err != nil {
		return err
	}

	store := s.snapshot().store
	if err := store.WithTx(func(tx *sql.Tx) error {
		return db.SetProp(tx, db.PropKey, key)
	}); err != nil {
		return err
	}

	s.mu.Lock()
	s.st.fvk = &fvk
	s.st.sk = sk
	s.mu.Unlock()
	return nil
}

// GetAddress returns the bech32m encoding of this voter's external
// address at diversifier index 0 (get_address).
func (s *Service) GetAddress() (string, error) {
	st := s.snapshot()
	if st.fvk == nil {
		return "", errs.New(errs.MissingProperty, "service: no key loaded")
	}
	raw := notes.AddressAt(st.fvk.Ivk, 0)
	return address.Encode(address.VoteAddress(raw))
}

// GetProp reads a named property from the active store (get_prop).
func (s *Service) GetProp(ctx context.Context, name string) (string, error) {
	return s.snapshot().store.GetProp(ctx, name)
}

// DownloadReferenceData streams the election's compact-block window
// from lwdURL, recovering owned notes and appending CMXs/nullifiers
// (download_reference_data). onProgress is called every 1000 blocks and
// at the final one, per spec.md §4.3/§4.7.
func (s *Service) DownloadReferenceData(ctx context.Context, onProgress func(height uint32)) error {
	st := s.snapshot()
	if st.el == nil {
		return errs.New(errs.MissingProperty, "service: no election loaded")
	}
	if st.fvk == nil {
		return errs.New(errs.MissingProperty, "service: no key loaded")
	}

	client, err := compactblock.Dial(ctx, st.lwdURL)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	startHeight := st.el.StartHeight
	if checkpoint, err := st.store.GetProp(ctx, db.PropHeight); err == nil {
		h, parseErr := strconv.ParseUint(checkpoint, 10, 32)
		if parseErr != nil {
			return errs.Wrap(errs.InvalidEncoding, "service: malformed height property", parseErr)
		}
		startHeight = uint32(h)
	} else if !errs.Is(err, errs.MissingProperty) {
		return err
	}

	domain := st.el.Domain()
	return ingest.Run(ctx, client, st.store, *st.fvk, domain, startHeight, st.el.EndHeight, onProgress)
}

// Sync pulls and applies every ballot the tallier has beyond what's
// stored locally (the sync service handler). Returns the number of
// newly applied ballots.
func (s *Service) Sync(ctx context.Context) (uint32, error) {
	st := s.snapshot()
	if st.el == nil {
		return 0, errs.New(errs.MissingProperty, "service: no election loaded")
	}
	if st.fvk == nil {
		return 0, errs.New(errs.MissingProperty, "service: no key loaded")
	}
	client := tallier.New(st.tallierURL)
	return zsync.Run(ctx, client, st.store, *st.el, *st.fvk)
}

// GetSyncHeight returns how many ballots have been applied locally so
// far (get_sync_height): the 1-indexed count the ballot-sync cursor
// names in spec.md §4.4 as local ballot count "c".
func (s *Service) GetSyncHeight(ctx context.Context) (uint32, error) {
	return s.snapshot().store.BallotCount(ctx)
}

// GetAvailableBalance sums every unspent owned note's value
// (get_available_balance).
func (s *Service) GetAvailableBalance(ctx context.Context) (uint64, error) {
	return s.snapshot().store.AvailableBalance(ctx)
}

// ComputeRoots derives the current CMX and NF-range roots with no
// positions requested and publishes them under the nf_root/cmx_root
// properties (compute_roots, spec.md §4.5 "Root publication").
func (s *Service) ComputeRoots(ctx context.Context) (Roots, error) {
	store := s.snapshot().store

	cmxLeaves, err := loadCmxLeaves(ctx, store)
	if err != nil {
		return Roots{}, err
	}
	nfLeaves, err := loadNfRangeLeaves(ctx, store)
	if err != nil {
		return Roots{}, err
	}

	cmxResult := merkle.BatchPaths(cmxLeaves, nil)
	nfResult := merkle.BatchPaths(nfLeaves, nil)

	cmxBytes := cmxResult.Root.Bytes()
	nfBytes := nfResult.Root.Bytes()
	roots := Roots{NfRoot: types.HexBytes(nfBytes[:]).Hex(), CmxRoot: types.HexBytes(cmxBytes[:]).Hex()}

	if err := store.WithTx(func(tx *sql.Tx) error {
		if err := db.SetProp(tx, db.PropCmxRoot, roots.CmxRoot); err != nil {
			return err
		}
		return db.SetProp(tx, db.PropNfRoot, roots.NfRoot)
	}); err != nil {
		return Roots{}, err
	}
	return roots, nil
}

// Vote builds a ballot spending amount to addr, submits it to the
// tallier, and records it locally: a ballots row plus a votes audit row
// in the same transaction (the supplemented "votes audit log" write
// path; see DESIGN.md). Returns the submitted ballot's sighash, hex
// encoded, as the vote(address, amount) → json response.
func (s *Service) Vote(ctx context.Context, addr string, amount uint64) (VoteResult, error) {
	st := s.snapshot()
	if st.el == nil {
		return VoteResult{}, errs.New(errs.MissingProperty, "service: no election loaded")
	}
	if st.fvk == nil {
		return VoteResult{}, errs.New(errs.MissingProperty, "service: no key loaded")
	}

	recipientAddr, err := address.Decode(addr)
	if err != nil {
		return VoteResult{}, err
	}
	if len(st.el.Candidates) > 0 {
		if _, ok := st.el.CandidateFor(recipientAddr); !ok {
			return VoteResult{}, errs.New(errs.MissingProperty, "service: recipient address is not a recognized candidate")
		}
	}

	unspentRows, err := st.store.UnspentNotes(ctx)
	if err != nil {
		return VoteResult{}, err
	}
	unspent := make([]notes.OwnedNote, 0, len(unspentRows))
	for _, row := range unspentRows {
		n, err := notes.RowToOwnedNote(st.fvk.Ivk, notes.Row{
			Position: row.Position, Height: row.Height, Txid: row.Txid,
			Value: row.Value, Div: row.Div, Rseed: row.Rseed, Rho: row.Rho,
		})
		if err != nil {
			return VoteResult{}, err
		}
		unspent = append(unspent, n)
	}

	cmxLeaves, err := loadCmxLeaves(ctx, st.store)
	if err != nil {
		return VoteResult{}, err
	}
	sortedNfs, err := loadSortedGlobalNfs(ctx, st.store)
	if err != nil {
		return VoteResult{}, err
	}

	b, err := ballot.Build(ballot.BuildParams{
		Election:        *st.el,
		Sk:              st.sk,
		Fvk:             *st.fvk,
		Recipient:       notes.RawAddress(recipientAddr),
		Amount:          amount,
		Unspent:         unspent,
		SortedGlobalNfs: sortedNfs,
		CmxLeaves:       cmxLeaves,
		Rng:             s.rng,
	})
	if err != nil {
		return VoteResult{}, err
	}

	client := tallier.New(st.tallierURL)
	if err := client.SubmitBallot(b); err != nil {
		return VoteResult{}, err
	}

	sighash := ballot.Sighash(b.Data)
	data, err := json.Marshal(b)
	if err != nil {
		return VoteResult{}, errs.Wrap(errs.Programmer, "service: marshal submitted ballot failed", err)
	}

	height, err := st.store.BallotCount(ctx)
	if err != nil {
		return VoteResult{}, err
	}

	if err := st.store.WithTx(func(tx *sql.Tx) error {
		if err := db.InsertBallot(tx, st.el.ID, height+1, sighash[:], data); err != nil {
			return err
		}
		return db.InsertVote(tx, sighash[:], addr, amount)
	}); err != nil {
		return VoteResult{}, err
	}

	return VoteResult{Hash: types.HexBytes(sighash[:]).Hex()}, nil
}

// Fetch is the escape-hatch GET {base}/{url} the UI shell uses for
// arbitrary text fetches (spec.md §6).
func (s *Service) Fetch(url string) (string, error) {
	return tallier.New(s.snapshot().tallierURL).Fetch(url)
}

func loadCmxLeaves(ctx context.Context, store *db.DB) ([]field.Fp, error) {
	raw, err := store.AllCmxs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]field.Fp, len(raw))
	for i, h := range raw {
		fp, ok := field.FpFromBytes(h)
		if !ok {
			return nil, errs.New(errs.Programmer, "service: stored cmx is not a canonical field element")
		}
		out[i] = fp
	}
	return out, nil
}

func loadSortedGlobalNfs(ctx context.Context, store *db.DB) ([]field.Fp, error) {
	raw, err := store.AllNullifiersSorted(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]field.Fp, len(raw))
	for i, h := range raw {
		fp, ok := field.FpFromBytes(h)
		if !ok {
			return nil, errs.New(errs.Programmer, "service: stored nullifier is not a canonical field element")
		}
		out[i] = fp
	}
	return out, nil
}

func loadNfRangeLeaves(ctx context.Context, store *db.DB) ([]field.Fp, error) {
	sorted, err := loadSortedGlobalNfs(ctx, store)
	if err != nil {
		return nil, err
	}
	return merkle.BuildNFRangeLeaves(sorted), nil
}

