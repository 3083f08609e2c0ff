package db_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/zvote/db"
)

func openTestDB(t *testing.T) *db.DB {
	path := filepath.Join(t.TempDir(), "zvote.sqlite")
	d, err := db.Open(path)
	qt.Assert(t, err, qt.IsNil)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestPropertyRoundTrip(t *testing.T) {
	c := qt.New(t)
	d := openTestDB(t)
	ctx := context.Background()

	_, err := d.GetProp(ctx, db.PropHeight)
	c.Assert(err, qt.IsNotNil)

	err = d.SetPropAuto(db.PropHeight, "42")
	c.Assert(err, qt.IsNil)

	v, err := d.GetProp(ctx, db.PropHeight)
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, "42")
}

func TestCmxAppendAndCount(t *testing.T) {
	c := qt.New(t)
	d := openTestDB(t)
	ctx := context.Background()

	err := d.WithTx(func(tx *sql.Tx) error {
		for i := 0; i < 3; i++ {
			if err := db.AppendCmx(tx, []byte{byte(i)}); err != nil {
				return err
			}
		}
		return nil
	})
	c.Assert(err, qt.IsNil)

	n, err := d.CmxCount(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, uint32(3))

	all, err := d.AllCmxs(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(all, qt.DeepEquals, [][]byte{{0}, {1}, {2}})
}

func TestTxRollsBackOnError(t *testing.T) {
	c := qt.New(t)
	d := openTestDB(t)
	ctx := context.Background()

	sentinel := qt.New(t)
	_ = sentinel

	err := d.WithTx(func(tx *sql.Tx) error {
		if err := db.AppendCmx(tx, []byte{9}); err != nil {
			return err
		}
		return errFailed
	})
	c.Assert(err, qt.Equals, errFailed)

	n, err := d.CmxCount(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, uint32(0))
}

var errFailed = errTest("boom")

type errTest string

func (e errTest) Error() string { return string(e) }
