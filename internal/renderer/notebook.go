package renderer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Notebook is the opaque parsed representation of one on-device document:
// its `.content` sidecar (page count/order) plus the raw `.rm` page files.
// The binary `.rm` page format and the real PDF codec are the external
// collaborators named in spec §1 "Out of scope" — Notebook only carries
// enough to let a PageRenderer produce *some* bytes; it does not decode
// strokes.
type Notebook struct {
	ID    string
	Pages []string // paths to <id>/<page>.rm, in document order
}

type rawContent struct {
	Pages []string `json:"pages"`
}

// LoadNotebook reads `<root>/<id>.content` to discover the notebook's page
// order. It never reads the `.rm` page bodies themselves — that parse is
// the out-of-scope external collaborator's job; LoadNotebook only needs to
// know how many pages exist so a placeholder renderer can produce a
// same-shaped PDF.
func LoadNotebook(root, id string) (*Notebook, error) {
	path := filepath.Join(root, id+".content")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read content sidecar for %s", id)
	}

	var raw rawContent
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "failed to parse content sidecar for %s", id)
	}

	pages := make([]string, 0, len(raw.Pages))
	for _, p := range raw.Pages {
		pages = append(pages, filepath.Join(root, id, fmt.Sprintf("%s.rm", p)))
	}

	return &Notebook{ID: id, Pages: pages}, nil
}
