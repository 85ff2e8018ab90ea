// Package querycontext owns the in-memory SQL engine session: it
// registers the dynamic and static metadata tables, unions them into the
// `metadata` view, registers static content, and exposes a parameterized
// SQL surface for the FUSE adapter.
package querycontext

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/rmkfs/rmkfs/internal/rmkerr"
	"github.com/rmkfs/rmkfs/internal/schema"
	"github.com/rmkfs/rmkfs/internal/statictable"

	_ "modernc.org/sqlite"
)

// Context owns the shared SQL session and the reader/writer discipline
// over the dynamic metadata table described in spec §5: scan() parses
// into a local buffer lock-free and only takes the write lock across the
// final transactional swap; every query takes the read lock for the
// duration of its execution so it observes either the pre- or post-scan
// snapshot, never a mixture.
type Context struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens the in-memory engine and registers the fixed schema plus the
// static table contents. The dynamic table starts empty.
func New() (*Context, error) {
	db, err := sql.Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open in-memory query engine")
	}
	// A single connection keeps the ":memory:" database from being
	// silently forked per-connection and lets our RWMutex be the sole
	// arbiter of read/write interleaving, matching the documented
	// concurrency contract instead of relying on sqlite's own locking.
	db.SetMaxOpenConns(1)

	qc := &Context{db: db}
	if err := qc.init(); err != nil {
		db.Close()
		return nil, err
	}
	return qc, nil
}

func (c *Context) init() error {
	ddl := []string{
		schema.CreateMetadataDynamic,
		schema.CreateMetadataStatic,
		schema.CreateMetadataView,
		schema.CreateContent,
	}
	for _, stmt := range ddl {
		if _, err := c.db.Exec(stmt); err != nil {
			return errors.Wrapf(err, "failed to register schema: %s", stmt)
		}
	}

	metadata, content := statictable.Build()
	tx, err := c.db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to open registration transaction")
	}
	if err := insertMetadataRows(tx, "metadata_static", metadata); err != nil {
		tx.Rollback()
		return err
	}
	if err := insertContentRows(tx, content); err != nil {
		tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "failed to commit static table registration")
}

func insertMetadataRows(tx *sql.Tx, table string, rows []schema.Row) error {
	// table is always one of our own two constants (never kernel input),
	// so plain Sprintf substitution into the insert statement is safe.
	stmt, err := tx.Prepare(fmt.Sprintf(schema.InsertMetadata, table))
	if err != nil {
		return errors.Wrapf(err, "failed to prepare insert into %s", table)
	}
	defer stmt.Close()

	for _, r := range rows {
		var parent any
		if r.Parent != nil {
			parent = *r.Parent
		}
		if _, err := stmt.Exec(r.ID, r.Type, r.Name, parent, r.Ino, r.ParentIno); err != nil {
			return errors.Wrapf(err, "failed to insert row %q into %s", r.ID, table)
		}
	}
	return nil
}

func insertContentRows(tx *sql.Tx, rows []schema.ContentRow) error {
	stmt, err := tx.Prepare(schema.InsertContent)
	if err != nil {
		return errors.Wrap(err, "failed to prepare content insert")
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r.ID, r.Size, r.Content); err != nil {
			return errors.Wrapf(err, "failed to insert content row %q", r.ID)
		}
	}
	return nil
}

// ReplaceDynamic atomically replaces the contents of metadata_dynamic.
// Callers must have already parsed `rows` without holding any lock; this
// method only takes the write lock across the delete+insert transaction.
func (c *Context) ReplaceDynamic(ctx context.Context, rows []schema.Row) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin scan swap transaction")
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM metadata_dynamic"); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "failed to clear dynamic table")
	}
	if err := insertMetadataRows(tx, "metadata_dynamic", rows); err != nil {
		tx.Rollback()
		return err
	}

	return errors.Wrap(tx.Commit(), "failed to commit scan swap")
}

// Query runs a parameterized read-only query under the shared read lock,
// decoding rows with fn before returning. fn is called for every row and
// must not retain *sql.Rows beyond its invocation.
func (c *Context) Query(ctx context.Context, query string, args []any, fn func(*sql.Rows) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return &rmkerr.QueryError{Query: query, Cause: err}
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return errors.Wrap(rows.Err(), "row iteration failed")
}

// InsertContent memoizes a rendered notebook's bytes into the content
// table under the shared write lock, so later reads for the same id hit
// the table directly instead of re-rendering (spec §4.4/§9).
func (c *Context) InsertContent(ctx context.Context, id string, size uint64, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.ExecContext(ctx, schema.InsertContent, id, size, data)
	return errors.Wrap(err, "failed to memoize rendered content")
}

// Close releases the underlying engine handle.
func (c *Context) Close() error {
	return c.db.Close()
}

