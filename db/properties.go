package db

import (
	"context"
	"database/sql"

	"github.com/vocdoni/zvote/errs"
)

// Well-known property names (spec.md §4.2).
const (
	PropURL     = "url"
	PropElection = "election"
	PropKey     = "key"
	PropHeight  = "height"
	PropCmxRoot = "cmx_root"
	PropNfRoot  = "nf_root"
	PropLwd     = "lwd"
)

// GetProp reads a named property, returning MissingProperty if absent.
func (d *DB) GetProp(ctx context.Context, name string) (string, error) {
	var value string
	err := d.read.QueryRowContext(ctx, `SELECT value FROM properties WHERE name = ?`, name).Scan(&value)
	if err == sql.ErrNoRows {
		return "", errs.New(errs.MissingProperty, "db: property "+name+" not set")
	}
	if err != nil {
		return "", errs.Wrap(errs.Io, "db: get property failed", err)
	}
	return value, nil
}

// SetProp upserts a named property, inside an existing transaction.
func SetProp(tx *sql.Tx, name, value string) error {
	_, err := tx.Exec(`
		INSERT INTO properties (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value`, name, value)
	if err != nil {
		return errs.Wrap(errs.Io, "db: set property failed", err)
	}
	return nil
}

// SetPropAuto opens its own transaction to set a single property; a
// convenience for standalone callers such as compute_roots.
func (d *DB) SetPropAuto(name, value string) error {
	return d.WithTx(func(tx *sql.Tx) error {
		return SetProp(tx, name, value)
	})
}
