package db

import (
	"context"
	"database/sql"

	"github.com/vocdoni/zvote/errs"
)

// OwnedNoteRow is the persisted shape of an OwnedNote (spec.md §3),
// augmented with the bookkeeping fields the notes table carries.
type OwnedNoteRow struct {
	Position uint32
	Height   uint32
	Txid     []byte
	Value    uint64
	Div      []byte
	Rseed    []byte
	Nf       []byte
	Dnf      []byte
	Rho      []byte
	Spent    sql.NullInt64
}

// InsertNote persists a newly trial-decrypted owned note.
func InsertNote(tx *sql.Tx, n OwnedNoteRow) error {
	_, err := tx.Exec(`
		INSERT INTO notes (position, height, txid, value, div, rseed, nf, dnf, rho, spent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		n.Position, n.Height, n.Txid, n.Value, n.Div, n.Rseed, n.Nf, n.Dnf, n.Rho)
	if err != nil {
		return errs.Wrap(errs.Io, "db: insert note failed", err)
	}
	return nil
}

// MarkSpent records the height at which dnf was observed as a published
// spend, if a note with that domain-nullifier exists and isn't already
// marked.
func MarkSpent(tx *sql.Tx, dnf []byte, height uint32) error {
	_, err := tx.Exec(`UPDATE notes SET spent = ? WHERE dnf = ? AND spent IS NULL`, height, dnf)
	if err != nil {
		return errs.Wrap(errs.Io, "db: mark note spent failed", err)
	}
	return nil
}

// UnspentNotes returns every owned note not yet marked spent, ordered by
// position (the order the builder's greedy selection walks them in).
func (d *DB) UnspentNotes(ctx context.Context) ([]OwnedNoteRow, error) {
	rows, err := d.read.QueryContext(ctx, `
		SELECT position, height, txid, value, div, rseed, nf, dnf, rho, spent
		FROM notes WHERE spent IS NULL ORDER BY position ASC`)
	if err != nil {
		return nil, errs.Wrap(errs.Io, "db: read unspent notes failed", err)
	}
	defer rows.Close()

	var out []OwnedNoteRow
	for rows.Next() {
		var n OwnedNoteRow
		if err := rows.Scan(&n.Position, &n.Height, &n.Txid, &n.Value, &n.Div,
			&n.Rseed, &n.Nf, &n.Dnf, &n.Rho, &n.Spent); err != nil {
			return nil, errs.Wrap(errs.Io, "db: scan note failed", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// AvailableBalance sums the value of every unspent owned note.
func (d *DB) AvailableBalance(ctx context.Context) (uint64, error) {
	var total sql.NullInt64
	err := d.read.QueryRowContext(ctx, `SELECT SUM(value) FROM notes WHERE spent IS NULL`).Scan(&total)
	if err != nil {
		return 0, errs.Wrap(errs.Io, "db: sum balance failed", err)
	}
	if !total.Valid {
		return 0, nil
	}
	return uint64(total.Int64), nil
}

// NoteByDnf looks up an owned note by its domain-bound nullifier, used
// when applying a synced ballot's spends.
func (d *DB) NoteByDnf(ctx context.Context, dnf []byte) (OwnedNoteRow, bool, error) {
	var n OwnedNoteRow
	err := d.read.QueryRowContext(ctx, `
		SELECT position, height, txid, value, div, rseed, nf, dnf, rho, spent
		FROM notes WHERE dnf = ?`, dnf).Scan(
		&n.Position, &n.Height, &n.Txid, &n.Value, &n.Div, &n.Rseed, &n.Nf, &n.Dnf, &n.Rho, &n.Spent)
	if err == sql.ErrNoRows {
		return OwnedNoteRow{}, false, nil
	}
	if err != nil {
		return OwnedNoteRow{}, false, errs.Wrap(errs.Io, "db: lookup note by dnf failed", err)
	}
	return n, true, nil
}
