// Package fuseadapter translates FUSE kernel callbacks into parameterized
// SQL queries against the query context, decoding result columns into
// bazil.org/fuse attributes and directory entries (spec §4.5). Every
// callback is invoked on a kernel worker goroutine and must reply
// synchronously; query failures are logged and surfaced to the kernel as
// ENOENT, never as a panic.
package fuseadapter

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strings"
	"syscall"
	"time"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
	"bazil.org/fuse/fuseutil"

	"github.com/rmkfs/rmkfs/internal/ino"
	"github.com/rmkfs/rmkfs/internal/querycontext"
	"github.com/rmkfs/rmkfs/internal/renderer"
	"github.com/rmkfs/rmkfs/internal/rmkerr"
	"github.com/rmkfs/rmkfs/internal/schema"
)

const (
	blockSize = 512
	uid       = 501
	gid       = 20
	perm      = 0o755
	nlink     = 2
)

// FileSystem is the bazil.org/fuse FS implementation: one query context,
// one renderer pool, and a fixed attribute/entry TTL for the whole mount.
// It never exposes a write callback — spec §9 "No write path".
type FileSystem struct {
	qc   *querycontext.Context
	pool *renderer.Pool
	ttl  time.Duration
}

var _ fusefs.FS = (*FileSystem)(nil)

// New returns a FileSystem bridging the given query context and renderer
// pool, replying to every callback with the given attribute/entry TTL.
func New(qc *querycontext.Context, pool *renderer.Pool, ttl time.Duration) *FileSystem {
	return &FileSystem{qc: qc, pool: pool, ttl: ttl}
}

// Root implements fusefs.FS.
func (f *FileSystem) Root() (fusefs.Node, error) {
	return &node{ino: ino.Root, fs: f}, nil
}

// Destroy implements fusefs.FSDestroyer; nothing to flush in a read-only
// filesystem.
func (f *FileSystem) Destroy() {}

// node is a handle to one inode; it carries no cached attributes of its
// own, by design — every callback re-queries the unified metadata view so
// stale in-memory copies can never diverge from the dynamic table.
type node struct {
	ino uint64
	fs  *FileSystem
}

var (
	_ fusefs.Node               = (*node)(nil)
	_ fusefs.NodeStringLookuper = (*node)(nil)
	_ fusefs.HandleReadDirAller = (*node)(nil)
	_ fusefs.HandleReader       = (*node)(nil)
)

// row is the decoded result of a metadata (+content) lookup.
type row struct {
	ino    uint64
	typ    string
	name   string
	hasLen bool
	size   uint64
}

func kindOf(typ string) (fuse.DirentType, os.FileMode, bool) {
	switch typ {
	case schema.CollectionType:
		return fuse.DT_Dir, os.ModeDir | perm, true
	case schema.DocumentType:
		return fuse.DT_File, perm, true
	default:
		return fuse.DT_Unknown, 0, false
	}
}

// logUnknownType records a filtered row's unrecognized type through the
// shared error taxonomy (spec §7 UnknownFileType); the row itself is
// still silently dropped from the kernel-facing result (spec §8
// scenario 4) — this is diagnostic only.
func logUnknownType(op string, typ string) {
	log.Printf("rmkfs: %s: %v", op, &rmkerr.UnknownFileType{Type: typ})
}

// Attr implements getattr(ino) (spec §4.5).
func (n *node) Attr(ctx context.Context, a *fuse.Attr) error {
	const q = `SELECT DISTINCT ino, type, name, size
		FROM metadata LEFT OUTER JOIN content ON metadata.id = content.id
		WHERE ino = ? LIMIT 1`

	r, err := n.fs.queryOne(ctx, q, n.ino)
	if err != nil {
		log.Printf("rmkfs: getattr(%d): %v", n.ino, err)
		return fuse.ENOENT
	}
	if r == nil {
		return fuse.ENOENT
	}

	_, mode, ok := kindOf(r.typ)
	if !ok {
		logUnknownType("getattr", r.typ)
		return fuse.ENOENT
	}

	// A document's size is the length of its rendered bytes, so render and
	// memoize it here rather than report 0 before the first read.
	if r.typ == schema.DocumentType && !r.hasLen {
		id, _, err := n.fs.idAndType(ctx, n.ino)
		if err == nil {
			err = n.fs.ensureContent(ctx, id)
		}
		if err == nil {
			var rendered *row
			if rendered, err = n.fs.queryOne(ctx, q, n.ino); err == nil && rendered != nil {
				r = rendered
			}
		}
		if err != nil {
			log.Printf("rmkfs: getattr(%d): render: %v", n.ino, err)
		}
	}

	fillAttr(a, n.fs.ttl, r, mode)
	return nil
}

// Lookup implements lookup(parent_ino, name) (spec §4.5). Kernel-supplied
// names are passed as bind parameters, never string-interpolated; a name
// containing a quote is additionally rejected up front as defense in
// depth matching the reference design, never causing a panic either way
// (spec §8 scenario 3).
func (n *node) Lookup(ctx context.Context, name string) (fusefs.Node, error) {
	if strings.ContainsAny(name, "'\"") {
		return nil, fuse.ENOENT
	}

	const q = `SELECT DISTINCT ino, type, name, size
		FROM metadata LEFT OUTER JOIN content ON metadata.id = content.id
		WHERE parent_ino = ? AND name = ? LIMIT 1`

	r, err := n.fs.queryOne(ctx, q, n.ino, name)
	if err != nil {
		log.Printf("rmkfs: lookup(%d, %q): %v", n.ino, name, err)
		return nil, fuse.ENOENT
	}
	if r == nil {
		return nil, fuse.ENOENT
	}
	if _, _, ok := kindOf(r.typ); !ok {
		logUnknownType("lookup", r.typ)
		return nil, fuse.ENOENT
	}

	return &node{ino: r.ino, fs: n.fs}, nil
}

// ReadDirAll implements readdir(ino, offset) (spec §4.5), returning every
// child in one batch; bazil.org/fuse handles splitting the reply across
// the kernel-provided buffer itself.
func (n *node) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	const q = `SELECT DISTINCT ino, type, name FROM metadata
		WHERE parent_ino = ? ORDER BY ino`

	var entries []fuse.Dirent
	err := n.fs.qc.Query(ctx, q, []any{n.ino}, func(rows *sql.Rows) error {
		var childIno uint64
		var typ, name string
		if err := rows.Scan(&childIno, &typ, &name); err != nil {
			return err
		}
		dt, _, ok := kindOf(typ)
		if !ok {
			logUnknownType("readdir", typ) // row silently filtered (spec §8 scenario 4)
			return nil
		}
		entries = append(entries, fuse.Dirent{Inode: childIno, Name: name, Type: dt})
		return nil
	})
	if err != nil {
		log.Printf("rmkfs: readdir(%d): %v", n.ino, err)
		return nil, fuse.ENOENT
	}
	return entries, nil
}

// Read implements read(ino, offset, size) (spec §4.5). DocumentType
// content missing from the content table (normally already rendered by
// Attr) is synthesized by the renderer pool and memoized there so later
// reads hit it directly (spec §9 option b).
func (n *node) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	id, typ, err := n.fs.idAndType(ctx, n.ino)
	if err != nil {
		log.Printf("rmkfs: read(%d): %v", n.ino, err)
		return fuse.ENOENT
	}
	if typ != schema.DocumentType {
		return fuse.Errno(syscall.EISDIR)
	}

	if err := n.fs.ensureContent(ctx, id); err != nil {
		log.Printf("rmkfs: render(%s): %v", id, err)
		return fuse.ENOENT
	}

	data, err := n.fs.contentFor(ctx, n.ino)
	if err != nil {
		log.Printf("rmkfs: read content(%d): %v", n.ino, err)
		return fuse.ENOENT
	}

	fuseutil.HandleRead(req, resp, data)
	return nil
}

func fillAttr(a *fuse.Attr, ttl time.Duration, r *row, mode os.FileMode) {
	size := uint64(0)
	if r.hasLen {
		size = r.size
	}
	a.Valid = ttl
	a.Inode = r.ino
	a.Size = size
	a.Blocks = (size + blockSize - 1) / blockSize
	epoch := time.Unix(0, 0)
	a.Atime, a.Mtime, a.Ctime, a.Crtime = epoch, epoch, epoch, epoch
	a.Mode = mode
	a.Nlink = nlink
	a.Uid = uid
	a.Gid = gid
	a.BlockSize = blockSize
}

func (f *FileSystem) queryOne(ctx context.Context, q string, args ...any) (*row, error) {
	var out *row
	err := f.qc.Query(ctx, q, args, func(rows *sql.Rows) error {
		var r row
		var size *int64
		if err := rows.Scan(&r.ino, &r.typ, &r.name, &size); err != nil {
			return err
		}
		if size != nil {
			r.hasLen = true
			r.size = uint64(*size)
		}
		out = &r
		return nil
	})
	return out, err
}

func (f *FileSystem) idAndType(ctx context.Context, childIno uint64) (string, string, error) {
	const q = `SELECT id, type FROM metadata WHERE ino = ? LIMIT 1`
	var id, typ string
	found := false
	err := f.qc.Query(ctx, q, []any{childIno}, func(rows *sql.Rows) error {
		found = true
		return rows.Scan(&id, &typ)
	})
	if err != nil {
		return "", "", err
	}
	if !found {
		return "", "", &rmkerr.NotFound{Ino: childIno}
	}
	return id, typ, nil
}

func (f *FileSystem) ensureContent(ctx context.Context, id string) error {
	const exists = `SELECT 1 FROM content WHERE id = ? LIMIT 1`
	found := false
	err := f.qc.Query(ctx, exists, []any{id}, func(rows *sql.Rows) error {
		found = true
		return nil
	})
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	data, err := f.pool.Render(ctx, id)
	if err != nil {
		return err
	}
	return f.qc.InsertContent(ctx, id, uint64(len(data)), data)
}

func (f *FileSystem) contentFor(ctx context.Context, childIno uint64) ([]byte, error) {
	const q = `SELECT content FROM metadata JOIN content ON metadata.id = content.id
		WHERE metadata.ino = ? LIMIT 1`
	var data []byte
	found := false
	err := f.qc.Query(ctx, q, []any{childIno}, func(rows *sql.Rows) error {
		found = true
		return rows.Scan(&data)
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &rmkerr.NotFound{Ino: childIno}
	}
	return data, nil
}
