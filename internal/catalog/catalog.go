// Package catalog is the single embedded relational store every other
// subsystem reads and writes through. It owns atomic upserts, scoped
// transactional writes, and the aggregate query views consumed by the
// review UI.
package catalog

import (
	"database/sql"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"

	_ "modernc.org/sqlite"
)

// Catalog wraps the embedded sqlite database plus an advisory single-
// instance lock that keeps a second triage process from opening the same
// store.
type Catalog struct {
	db   *sql.DB
	lock *flock.Flock
}

// Open opens (creating if absent) the sqlite database at path, idempotently
// creates the schema, and acquires the advisory process lock at
// path+".lock".
func Open(path string) (*Catalog, error) {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, errors.Wrap(err, "acquire catalog lock")
	}
	if !locked {
		return nil, errors.New("catalog is already open by another process")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, errors.Wrap(err, "open catalog database")
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite: single-writer discipline

	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, errors.Wrap(err, "enable WAL journal mode")
	}
	if _, err := db.Exec(`PRAGMA foreign_keys=ON;`); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, errors.Wrap(err, "enable foreign keys")
	}

	c := &Catalog{db: db, lock: lock}
	if err := c.migrate(); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return c, nil
}

// Close releases the database handle and the advisory lock.
func (c *Catalog) Close() error {
	err := c.db.Close()
	if unlockErr := c.lock.Unlock(); unlockErr != nil && err == nil {
		err = unlockErr
	}
	return err
}

// withTx opens a transaction scope: f runs all its writes inside tx, which
// commits on f's normal return and rolls back on any error. A panic inside
// f also triggers rollback.
func (c *Catalog) withTx(f func(tx *sql.Tx) error) (err error) {
	tx, err := c.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = f(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}

func parseISO(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
