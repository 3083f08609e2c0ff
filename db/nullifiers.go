package db

import (
	"context"
	"database/sql"

	"github.com/vocdoni/zvote/errs"
)

// AppendNullifier inserts a newly revealed global nullifier. hash is the
// field element's canonical little-endian encoding; revhash is its
// byte-reversal (big-endian), stored purely so SQLite's byte-lexicographic
// BLOB ordering on revhash coincides with numeric field order, letting
// AllNullifiersSorted push the sort into SQL (spec.md §4.2 "a sorted
// append-only nullifiers(hash, revhash)").
func AppendNullifier(tx *sql.Tx, hash []byte) error {
	rev := make([]byte, len(hash))
	for i, b := range hash {
		rev[len(hash)-1-i] = b
	}
	_, err := tx.Exec(`INSERT INTO nullifiers (hash, revhash) VALUES (?, ?)`, hash, rev)
	if err != nil {
		return errs.Wrap(errs.Io, "db: append nullifier failed", err)
	}
	return nil
}

// AllNullifiersSorted returns every known global nullifier's canonical
// little-endian bytes, sorted by ascending field-element value — the input
// the NF-range leaf builder needs (spec.md §4.5). Ordering by revhash (the
// big-endian byte-reversal) gives numeric field order directly from SQLite's
// BLOB comparison, so no Go-side re-sort is needed.
func (d *DB) AllNullifiersSorted(ctx context.Context) ([][]byte, error) {
	rows, err := d.read.QueryContext(ctx, `SELECT hash FROM nullifiers ORDER BY revhash ASC`)
	if err != nil {
		return nil, errs.Wrap(errs.Io, "db: read nullifiers failed", err)
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var h []byte
		if err := rows.Scan(&h); err != nil {
			return nil, errs.Wrap(errs.Io, "db: scan nullifier failed", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// HasNullifier reports whether hash is already a known spent nullifier.
func (d *DB) HasNullifier(ctx context.Context, hash []byte) (bool, error) {
	var n int
	err := d.read.QueryRowContext(ctx, `SELECT COUNT(*) FROM nullifiers WHERE hash = ?`, hash).Scan(&n)
	if err != nil {
		return false, errs.Wrap(errs.Io, "db: check nullifier failed", err)
	}
	return n > 0, nil
}
