package db

import (
	"context"
	"database/sql"

	"github.com/vocdoni/zvote/errs"
)

// AppendCmx appends one extracted note commitment. Position is implicit:
// cmxs is append-only and queried back by row order (spec.md §3 "CMX
// positions are dense 0..|CMX|-1; no gaps").
func AppendCmx(tx *sql.Tx, hash []byte) error {
	_, err := tx.Exec(`INSERT INTO cmxs (hash) VALUES (?)`, hash)
	if err != nil {
		return errs.Wrap(errs.Io, "db: append cmx failed", err)
	}
	return nil
}

// CmxCount returns the number of CMX rows, i.e. the next free position.
func (d *DB) CmxCount(ctx context.Context) (uint32, error) {
	var n uint32
	err := d.read.QueryRowContext(ctx, `SELECT COUNT(*) FROM cmxs`).Scan(&n)
	if err != nil {
		return 0, errs.Wrap(errs.Io, "db: count cmxs failed", err)
	}
	return n, nil
}

// CmxRange returns CMX hashes for positions [start, end), in position order.
func (d *DB) CmxRange(ctx context.Context, start, end uint32) ([][]byte, error) {
	rows, err := d.read.QueryContext(ctx,
		`SELECT hash FROM cmxs ORDER BY id ASC LIMIT ? OFFSET ?`, int(end-start), int(start))
	if err != nil {
		return nil, errs.Wrap(errs.Io, "db: read cmx range failed", err)
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var h []byte
		if err := rows.Scan(&h); err != nil {
			return nil, errs.Wrap(errs.Io, "db: scan cmx failed", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// AllCmxs returns every CMX hash in position order.
func (d *DB) AllCmxs(ctx context.Context) ([][]byte, error) {
	n, err := d.CmxCount(ctx)
	if err != nil {
		return nil, err
	}
	return d.CmxRange(ctx, 0, n)
}
