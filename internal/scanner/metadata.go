package scanner

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rmkfs/rmkfs/internal/schema"
)

// rawMetadata mirrors the on-device reMarkable `<id>.metadata` JSON
// document. Only the fields the filesystem core cares about are decoded;
// the remainder of the document (lastModified, version, pinned, ...) is
// the external collaborator's concern and is ignored here.
type rawMetadata struct {
	Type        string `json:"type"`
	VisibleName string `json:"visibleName"`
	Parent      string `json:"parent"`
}

// parseMetadataFile reads and decodes a single `<id>.metadata` file,
// returning the decoded row, whose ID is derived from the filename
// (without ino/parent_ino, which the caller derives).
func parseMetadataFile(path string) (schema.Row, error) {
	id := strings.TrimSuffix(filepath.Base(path), ".metadata")

	data, err := os.ReadFile(path)
	if err != nil {
		return schema.Row{}, errors.Wrapf(err, "failed to read metadata file %s", path)
	}

	var raw rawMetadata
	if err := json.Unmarshal(data, &raw); err != nil {
		return schema.Row{}, errors.Wrapf(err, "failed to parse metadata file %s", path)
	}

	// Unrecognized `type` values are kept verbatim rather than failing the
	// scan: spec §4.1 only treats a read/parse failure as fatal. Rows with
	// an unknown type are carried into metadata_dynamic and filtered later,
	// at query time, by the same kindOf check the FUSE adapter already
	// applies to every row (spec §8 scenario 4).
	name := raw.VisibleName
	if raw.Type == schema.DocumentType {
		name = name + ".pdf"
	}

	var parent *string
	if raw.Parent != "" {
		p := raw.Parent
		parent = &p
	}

	return schema.Row{
		ID:     id,
		Type:   raw.Type,
		Name:   name,
		Parent: parent,
	}, nil
}
