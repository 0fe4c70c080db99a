// Package memory implements the document memory layer for engram.
//
// Documents are digested exactly once into a bounded, structured [Record]
// instead of being chunked and retrieved per query. The full set of records
// is synthesized into a single context block that callers inject into the
// system prompt of every chat request.
//
// The [Manager] is the only type the rest of the application talks to. It
// binds identity assignment, the document reader, the compression engine,
// and the store into the learn/forget/list/context/cite operations.
package memory

import "context"

// Store is durable, quota-bounded keyed storage of compressed records.
// Implementations own the backing file and its eviction policy.
type Store interface {
	// Put inserts or overwrites a record, persists, and enforces the quota.
	Put(record *Record) error

	// Remove deletes one record and persists. Returns ErrNotFound for an
	// unknown id.
	Remove(id string) error

	// Get returns the record for the given id.
	Get(id string) (*Record, error)

	// List returns cheap listings for every record, sorted by id.
	List() []Listing

	// Snapshot returns a copy of every record, sorted by id.
	Snapshot() []*Record

	// FindCitation searches a record's retained raw text for an exact,
	// case-insensitive substring match and returns a context window around
	// the first hit. Returns ErrNotFound for an unknown id and
	// ErrNoCitation when the query does not occur.
	FindCitation(id, query string) (string, error)

	// Close releases store resources.
	Close() error
}

// Compressor turns one document's raw text into a record. Compression
// degrades through fallback paths rather than failing, so no error is
// returned.
type Compressor interface {
	Compress(ctx context.Context, id, name, text string) *Record
}

// DocumentReader converts a file path into plain text.
type DocumentReader interface {
	Read(path string) (string, error)
}
