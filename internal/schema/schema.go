// Package schema holds the fixed relational schemas shared by the static
// table builder, the dynamic scanner, and the query context: metadata(id,
// type, name, parent, ino, parent_ino) and content(id, size, content).
package schema

// Entry kinds used in the `type` column of metadata.
const (
	CollectionType = "CollectionType" // directory
	DocumentType   = "DocumentType"   // file
)

// Row is a single decoded metadata row, shared between the static table
// builder and the dynamic scanner.
type Row struct {
	ID         string
	Type       string
	Name       string
	Parent     *string
	Ino        uint64
	ParentIno  uint64
}

// ContentRow is a single decoded content row.
type ContentRow struct {
	ID      string
	Size    uint64
	Content []byte
}

// DDL statements that register the fixed schema against the query engine.
// The dynamic and static metadata tables are unioned into the `metadata`
// view that every FUSE callback queries.
const (
	CreateMetadataDynamic = `CREATE TABLE metadata_dynamic (
		id          TEXT NOT NULL,
		type        TEXT NOT NULL,
		name        TEXT NOT NULL,
		parent      TEXT,
		ino         INTEGER NOT NULL,
		parent_ino  INTEGER NOT NULL
	)`

	CreateMetadataStatic = `CREATE TABLE metadata_static (
		id          TEXT NOT NULL,
		type        TEXT NOT NULL,
		name        TEXT NOT NULL,
		parent      TEXT,
		ino         INTEGER NOT NULL,
		parent_ino  INTEGER NOT NULL
	)`

	CreateMetadataView = `CREATE VIEW metadata AS
		SELECT id, type, name, parent, ino, parent_ino FROM metadata_dynamic
		UNION ALL
		SELECT id, type, name, parent, ino, parent_ino FROM metadata_static`

	CreateContent = `CREATE TABLE content (
		id      TEXT NOT NULL,
		size    INTEGER NOT NULL,
		content BLOB
	)`
)

// InsertMetadata is the parameterized insert shared by the scanner (into
// metadata_dynamic) and the static table builder (into metadata_static).
const InsertMetadata = `INSERT INTO %s (id, type, name, parent, ino, parent_ino) VALUES (?, ?, ?, ?, ?, ?)`

// InsertContent is the parameterized insert for the content table.
const InsertContent = `INSERT INTO content (id, size, content) VALUES (?, ?, ?)`
