package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMetadata(t *testing.T, dir, id, body string) string {
	t.Helper()
	path := filepath.Join(dir, id+".metadata")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func Test_ParseMetadataFile_DocumentGetsPdfSuffix(t *testing.T) {
	dir := t.TempDir()
	path := writeMetadata(t, dir, "doc-1", `{"type":"DocumentType","visibleName":"Notes"}`)

	row, err := parseMetadataFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Notes.pdf", row.Name)
	assert.Equal(t, "doc-1", row.ID)
	assert.Nil(t, row.Parent)
}

func Test_ParseMetadataFile_CollectionKeepsNameAsIs(t *testing.T) {
	dir := t.TempDir()
	path := writeMetadata(t, dir, "folder-1", `{"type":"CollectionType","visibleName":"Work"}`)

	row, err := parseMetadataFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Work", row.Name)
}

func Test_ParseMetadataFile_CapturesParent(t *testing.T) {
	dir := t.TempDir()
	path := writeMetadata(t, dir, "doc-2", `{"type":"DocumentType","visibleName":"Sub","parent":"folder-1"}`)

	row, err := parseMetadataFile(path)
	require.NoError(t, err)
	require.NotNil(t, row.Parent)
	assert.Equal(t, "folder-1", *row.Parent)
}

func Test_ParseMetadataFile_UnknownTypeIsKeptVerbatim(t *testing.T) {
	dir := t.TempDir()
	path := writeMetadata(t, dir, "weird-1", `{"type":"SomethingElse","visibleName":"?"}`)

	row, err := parseMetadataFile(path)
	require.NoError(t, err)
	assert.Equal(t, "SomethingElse", row.Type)
	assert.Equal(t, "?", row.Name) // no .pdf suffix: only DocumentType rows get one
}

func Test_ParseMetadataFile_MalformedJsonFails(t *testing.T) {
	dir := t.TempDir()
	path := writeMetadata(t, dir, "broken-1", `{not json`)

	_, err := parseMetadataFile(path)
	assert.Error(t, err)
}
