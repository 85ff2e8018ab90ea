// Package scanner ingests a directory of `<id>.metadata` files into the
// query context's dynamic metadata table.
package scanner

import (
	"context"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/rmkfs/rmkfs/internal/ino"
	"github.com/rmkfs/rmkfs/internal/querycontext"
	"github.com/rmkfs/rmkfs/internal/rmkerr"
	"github.com/rmkfs/rmkfs/internal/schema"
)

// Scanner walks a canonicalized root directory and populates the query
// context's dynamic metadata table from it.
type Scanner struct {
	root string
	qc   *querycontext.Context
}

// New canonicalizes root and returns a Scanner bound to qc. It fails with
// *rmkerr.ScanError if root does not resolve.
func New(root string, qc *querycontext.Context) (*Scanner, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, &rmkerr.ScanError{Root: root, Cause: err}
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, &rmkerr.ScanError{Root: root, Cause: err}
	}
	return &Scanner{root: resolved, qc: qc}, nil
}

// Root returns the canonicalized scan root.
func (s *Scanner) Root() string { return s.root }

// Schema returns the fixed metadata schema (spec §4.1 schema()).
func (s *Scanner) Schema() []string {
	return []string{"id", "type", "name", "parent", "ino", "parent_ino"}
}

// Scan globs `<root>/*.metadata`, parses every match concurrently into a
// slot-indexed local buffer without holding any lock, derives
// ino/parent_ino, and then atomically replaces the dynamic table's
// contents. A single malformed file is fatal to the whole scan, surfaced
// as *rmkerr.NotebookError wrapping the parse failure, matching spec
// §4.1 ("Failure to parse a single file is fatal"). Scan is idempotent
// and may be called repeatedly.
//
// Parsing is fanned out across an errgroup bounded to GOMAXPROCS workers;
// each goroutine writes only to its own slice index, so the result
// preserves filesystem enumeration order (spec §4.1 "insertion =
// filesystem enumeration order") with no further synchronization needed
// before the swap.
func (s *Scanner) Scan(ctx context.Context) error {
	pattern := filepath.Join(s.root, "*.metadata")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return &rmkerr.ScanError{Root: s.root, Cause: err}
	}

	rows := make([]schema.Row, len(matches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range matches {
		i, path := i, path
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			row, err := parseMetadataFile(path)
			if err != nil {
				return &rmkerr.NotebookError{ID: path, Cause: err}
			}
			row.Ino = ino.Of(row.ID)
			row.ParentIno = ino.OfParent(row.Parent)
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return errors.Wrap(s.qc.ReplaceDynamic(ctx, rows), "failed to swap dynamic table")
}
