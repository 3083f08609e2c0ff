package db

import (
	"context"
	"database/sql"

	"github.com/vocdoni/zvote/errs"
)

// InsertBallot persists one verified ballot row. hash is the ballot's
// sighash; height is its 1-indexed position in the tallier's sequence
// (spec.md §4.4, §6).
func InsertBallot(tx *sql.Tx, election string, height uint32, hash, data []byte) error {
	_, err := tx.Exec(`INSERT INTO ballots (election, height, hash, data) VALUES (?, ?, ?, ?)`,
		election, height, hash, data)
	if err != nil {
		return errs.Wrap(errs.Io, "db: insert ballot failed", err)
	}
	return nil
}

// BallotCount returns the number of locally stored ballots (spec.md §4.4
// "local ballot count c").
func (d *DB) BallotCount(ctx context.Context) (uint32, error) {
	var n uint32
	err := d.read.QueryRowContext(ctx, `SELECT COUNT(*) FROM ballots`).Scan(&n)
	if err != nil {
		return 0, errs.Wrap(errs.Io, "db: count ballots failed", err)
	}
	return n, nil
}

// InsertVote appends a row to the votes audit log: the human-facing
// record of "this hash cast this amount to this address", distinct from
// the opaque ballot bytes (spec.md §3 supplement; see DESIGN.md).
func InsertVote(tx *sql.Tx, hash []byte, address string, amount uint64) error {
	_, err := tx.Exec(`INSERT INTO votes (hash, address, amount) VALUES (?, ?, ?)`, hash, address, amount)
	if err != nil {
		return errs.Wrap(errs.Io, "db: insert vote audit row failed", err)
	}
	return nil
}
