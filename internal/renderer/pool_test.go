package renderer_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmkfs/rmkfs/internal/renderer"
)

type countingRenderer struct {
	calls int32
	delay time.Duration
}

func (c *countingRenderer) Render(nb *renderer.Notebook) ([]byte, error) {
	atomic.AddInt32(&c.calls, 1)
	time.Sleep(c.delay)
	return []byte("rendered:" + nb.ID), nil
}

func writeNotebook(t *testing.T, root, id string) {
	t.Helper()
	body := `{"pages":["p1","p2"]}`
	require.NoError(t, os.WriteFile(filepath.Join(root, id+".content"), []byte(body), 0o644))
}

func Test_Render_CollapsesConcurrentRequestsForSameId(t *testing.T) {
	root := t.TempDir()
	writeNotebook(t, root, "doc-1")

	cr := &countingRenderer{delay: 20 * time.Millisecond}
	pool := renderer.NewPool(root, 4, cr)

	const n = 10
	var wg sync.WaitGroup
	results := make([][]byte, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data, err := pool.Render(context.Background(), "doc-1")
			require.NoError(t, err)
			results[i] = data
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&cr.calls))
	for _, r := range results {
		assert.Equal(t, "rendered:doc-1", string(r))
	}
}

func Test_Render_MemoizesAcrossSeparateCalls(t *testing.T) {
	root := t.TempDir()
	writeNotebook(t, root, "doc-2")

	cr := &countingRenderer{}
	pool := renderer.NewPool(root, 2, cr)
	ctx := context.Background()

	_, err := pool.Render(ctx, "doc-2")
	require.NoError(t, err)
	_, err = pool.Render(ctx, "doc-2")
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&cr.calls))
}

func Test_Render_MissingNotebookReturnsError(t *testing.T) {
	root := t.TempDir()
	pool := renderer.NewPool(root, 1, renderer.NewMinimalRenderer())

	_, err := pool.Render(context.Background(), "does-not-exist")
	assert.Error(t, err)
}
