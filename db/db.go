// Package db implements the SQLite persistence adapter of spec.md §4.2:
// a keyed property store, append-only cmxs/nullifiers tables, a notes
// table keyed by position, a ballots log, and a votes audit log. The
// connection-pool split (a single read-write connection serializing
// writes, a larger read-only pool for concurrent readers) and the goose
// migration wiring follow
// linghuying-vocdoni-node/vochain/indexer/indexer.go, the only example
// in the pack using database/sql + mattn/go-sqlite3 + pressly/goose.
package db

import (
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vocdoni/zvote/errs"
	"github.com/vocdoni/zvote/log"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// DB is the persistence adapter: one serialized read-write connection
// for the ballot-apply transactional path, and a pool of read-only
// connections for balance/root-compute queries (spec.md §5 "Readers
// ... take independent connections").
type DB struct {
	path string

	writeMu sync.Mutex
	write   *sql.DB
	read    *sql.DB
}

// Open opens (creating if absent) the SQLite database at path and runs
// pending goose migrations.
func Open(path string) (*DB, error) {
	write, err := sql.Open("sqlite3", fmt.Sprintf(
		"file:%s?mode=rwc&_journal_mode=wal&_txlock=immediate&_synchronous=normal&_foreign_keys=true", path))
	if err != nil {
		return nil, errs.Wrap(errs.Io, "db: open read-write connection failed", err)
	}
	write.SetMaxOpenConns(1)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return nil, errs.Wrap(errs.Programmer, "db: goose dialect setup failed", err)
	}
	goose.SetBaseFS(embedMigrations)
	if err := goose.Up(write, "migrations"); err != nil {
		return nil, errs.Wrap(errs.Io, "db: migration failed", err)
	}

	read, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro&_journal_mode=wal", path))
	if err != nil {
		return nil, errs.Wrap(errs.Io, "db: open read-only pool failed", err)
	}
	read.SetMaxOpenConns(16)

	return &DB{path: path, write: write, read: read}, nil
}

// Close releases both connection pools.
func (d *DB) Close() error {
	werr := d.write.Close()
	rerr := d.read.Close()
	if werr != nil {
		return errs.Wrap(errs.Io, "db: close write pool failed", werr)
	}
	if rerr != nil {
		return errs.Wrap(errs.Io, "db: close read pool failed", rerr)
	}
	return nil
}

// Path returns the file path the database was opened at, used to
// implement the save_db service handler by copying the underlying file.
func (d *DB) Path() string {
	return d.path
}

// WithTx runs fn inside one read-write transaction. Any multi-row effect
// of applying a ballot (spec.md §4.4 "applies its effects ... in one
// transaction") must go through this, never through ad hoc direct write
// calls, so that a mid-apply failure never leaves partial state.
func (d *DB) WithTx(fn func(*sql.Tx) error) (err error) {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	tx, err := d.write.Begin()
	if err != nil {
		return errs.Wrap(errs.Io, "db: begin transaction failed", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			log.Errorw(fmt.Errorf("panic: %v", p), "db: panic inside transaction, rolled back")
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Errorw(rbErr, "db: rollback failed")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return errs.Wrap(errs.Io, "db: commit failed", err)
	}
	return nil
}

// ReadConn returns the read-only *sql.DB pool; callers query through it
// and database/sql hands out its connections.
func (d *DB) ReadConn() *sql.DB {
	return d.read
}
