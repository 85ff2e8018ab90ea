package fuseadapter_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmkfs/rmkfs/internal/fuseadapter"
	"github.com/rmkfs/rmkfs/internal/ino"
	"github.com/rmkfs/rmkfs/internal/querycontext"
	"github.com/rmkfs/rmkfs/internal/renderer"
	"github.com/rmkfs/rmkfs/internal/schema"
)

func newTestFS(t *testing.T, root string) *fuseadapter.FileSystem {
	t.Helper()
	qc, err := querycontext.New()
	require.NoError(t, err)
	t.Cleanup(func() { qc.Close() })

	folderID := "folder-1"
	docID := "doc-1"
	weirdID := "weird-1"
	rows := []schema.Row{
		{ID: folderID, Type: schema.CollectionType, Name: "Work", Ino: ino.Of(folderID), ParentIno: ino.Root},
		{ID: docID, Type: schema.DocumentType, Name: "Notes.pdf", Ino: ino.Of(docID), ParentIno: ino.Of(folderID)},
		{ID: weirdID, Type: "SomethingElse", Name: "Weird", Ino: ino.Of(weirdID), ParentIno: ino.Root},
	}
	require.NoError(t, qc.ReplaceDynamic(context.Background(), rows))

	pool := renderer.NewPool(root, 2, renderer.NewMinimalRenderer())
	return fuseadapter.New(qc, pool, time.Second)
}

func Test_Root_HasReservedInode(t *testing.T) {
	fs := newTestFS(t, t.TempDir())
	node, err := fs.Root()
	require.NoError(t, err)

	var attr fuse.Attr
	require.NoError(t, node.Attr(context.Background(), &attr))
	assert.Equal(t, ino.Root, attr.Inode)
	assert.True(t, attr.Mode.IsDir())
}

func Test_Lookup_FindsChildAndGetattrRoundTrips(t *testing.T) {
	fs := newTestFS(t, t.TempDir())
	root, err := fs.Root()
	require.NoError(t, err)

	folder, err := root.(fusefs.NodeStringLookuper).Lookup(context.Background(), "Work")
	require.NoError(t, err)

	var attr fuse.Attr
	require.NoError(t, folder.Attr(context.Background(), &attr))
	assert.True(t, attr.Mode.IsDir())
}

func Test_Lookup_RejectsNameWithQuote(t *testing.T) {
	fs := newTestFS(t, t.TempDir())
	root, err := fs.Root()
	require.NoError(t, err)

	_, err = root.(fusefs.NodeStringLookuper).Lookup(context.Background(), "bad'name")
	assert.Equal(t, fuse.ENOENT, err)
}

func Test_Lookup_MissingChildReturnsENOENT(t *testing.T) {
	fs := newTestFS(t, t.TempDir())
	root, err := fs.Root()
	require.NoError(t, err)

	_, err = root.(fusefs.NodeStringLookuper).Lookup(context.Background(), "does-not-exist")
	assert.Equal(t, fuse.ENOENT, err)
}

func Test_ReadDirAll_ListsKnownChildren(t *testing.T) {
	fs := newTestFS(t, t.TempDir())
	root, err := fs.Root()
	require.NoError(t, err)

	entries, err := root.(fusefs.HandleReadDirAller).ReadDirAll(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, "Work")
	assert.NotContains(t, names, "Weird")
}

func Test_Lookup_UnknownTypeRowIsFiltered(t *testing.T) {
	fs := newTestFS(t, t.TempDir())
	root, err := fs.Root()
	require.NoError(t, err)

	_, err = root.(fusefs.NodeStringLookuper).Lookup(context.Background(), "Weird")
	assert.Equal(t, fuse.ENOENT, err)
}

func Test_Read_SynthesizesAndClampsAtEnd(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "doc-1.content"), []byte(`{"pages":["p1"]}`), 0o644))

	fs := newTestFS(t, root)
	rootNode, err := fs.Root()
	require.NoError(t, err)

	folder, err := rootNode.(fusefs.NodeStringLookuper).Lookup(context.Background(), "Work")
	require.NoError(t, err)
	doc, err := folder.(fusefs.NodeStringLookuper).Lookup(context.Background(), "Notes.pdf")
	require.NoError(t, err)

	var attr fuse.Attr
	require.NoError(t, doc.Attr(context.Background(), &attr))
	require.Greater(t, attr.Size, uint64(0))

	req := &fuse.ReadRequest{Offset: int64(attr.Size) - 2, Size: 100}
	resp := &fuse.ReadResponse{}
	require.NoError(t, doc.(fusefs.HandleReader).Read(context.Background(), req, resp))
	assert.Len(t, resp.Data, 2) // clamped to what remains past offset
}
