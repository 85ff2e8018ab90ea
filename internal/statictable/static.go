// Package statictable builds the compile-time constant relations that
// contribute pseudo-entries (".", "..", and platform dot-files) to the
// unified metadata view.
package statictable

import (
	"github.com/rmkfs/rmkfs/internal/ino"
	"github.com/rmkfs/rmkfs/internal/schema"
)

// node is the build-time description of one static entry; ino/parent_ino
// follow the same derivation as dynamic rows (internal/ino).
type node struct {
	id      string
	typ     string
	name    string
	parent  *string
	content []byte
}

// baseNodes are the entries present on every platform.
var baseNodes = []node{
	{id: ".", typ: schema.CollectionType, name: ".", parent: nil},
	{id: ".", typ: schema.CollectionType, name: "..", parent: nil},
}

// Build materializes the static metadata and content rows, ready for
// registration with the query context. platformNodes (defined per-OS in
// static_darwin.go / static_other.go) is appended to baseNodes.
func Build() ([]schema.Row, []schema.ContentRow) {
	all := make([]node, 0, len(baseNodes)+len(platformNodes))
	all = append(all, baseNodes...)
	all = append(all, platformNodes...)

	metadata := make([]schema.Row, 0, len(all))
	content := make([]schema.ContentRow, 0, len(all))

	for _, n := range all {
		row := schema.Row{
			ID:        n.id,
			Type:      n.typ,
			Name:      n.name,
			Parent:    n.parent,
			Ino:       ino.Of(n.id),
			ParentIno: ino.OfParent(n.parent),
		}
		metadata = append(metadata, row)
		content = append(content, schema.ContentRow{
			ID:      n.id,
			Size:    uint64(len(n.content)),
			Content: n.content,
		})
	}

	return metadata, content
}
