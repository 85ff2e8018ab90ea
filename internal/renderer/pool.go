// Package renderer backs dynamic `content` rows for DocumentType entries:
// a fixed-size pool of workers turns a notebook id into rendered PDF
// bytes on demand, memoizing the result for the life of the mount.
package renderer

import (
	"context"
	"sync"

	"github.com/rmkfs/rmkfs/internal/rmkerr"
	"golang.org/x/sync/singleflight"
)

// DefaultPoolSize is the pool's worker count when the caller doesn't
// override it (spec §4.4 "default 4 workers").
const DefaultPoolSize = 4

// Pool bounds concurrent renders to its size and memoizes results by
// notebook id with no eviction (spec §4.4, §5 shared resource (d)).
// Concurrent reads for the same id that race before the first completes
// are collapsed into a single render via singleflight, rather than
// redoing the (potentially expensive) render once per waiter.
type Pool struct {
	root     string
	renderer PageRenderer
	sem      chan struct{}
	group    singleflight.Group
	memo     sync.Map // id -> []byte
}

// NewPool constructs a pool bounded to size concurrent renders, loading
// notebooks from root and rendering them with renderer.
func NewPool(root string, size int, renderer PageRenderer) *Pool {
	if size <= 0 {
		size = DefaultPoolSize
	}
	return &Pool{
		root:     root,
		renderer: renderer,
		sem:      make(chan struct{}, size),
	}
}

// Render returns the PDF bytes for notebook id, rendering (and
// memoizing) on first access. A context cancellation only abandons the
// caller's wait; in-flight work for other waiters on the same id
// completes and is cached regardless (spec §4.4 cancellation contract).
func (p *Pool) Render(ctx context.Context, id string) ([]byte, error) {
	if cached, ok := p.memo.Load(id); ok {
		return cached.([]byte), nil
	}

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)

	go func() {
		v, err, _ := p.group.Do(id, func() (interface{}, error) {
			p.sem <- struct{}{}
			defer func() { <-p.sem }()

			nb, err := LoadNotebook(p.root, id)
			if err != nil {
				return nil, &rmkerr.NotebookError{ID: id, Cause: err}
			}
			data, err := p.renderer.Render(nb)
			if err != nil {
				return nil, &rmkerr.NotebookError{ID: id, Cause: err}
			}
			p.memo.Store(id, data)
			return data, nil
		})
		if err != nil {
			done <- result{err: err}
			return
		}
		done <- result{data: v.([]byte)}
	}()

	select {
	case r := <-done:
		return r.data, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
