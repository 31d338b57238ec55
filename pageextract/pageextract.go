// Package pageextract defines the boundary between annotation
// serialization and an external PDF parser: given an input document,
// list its pages and produce, for any one of them, a self-contained
// subgraph of indirect objects that reproduces it. It deliberately has
// no dependency on the root pdfannot package's annotation types — it
// only ever deals in raw bytes and object ids, so it can be swapped or
// tested on its own.
package pageextract

import "errors"

// ErrNoSuchPage is returned by RawExtractor.ExtractPage when pageIndex is
// out of range for the document.
var ErrNoSuchPage = errors.New("pageextract: page index out of range")

// Allocator returns the next available object id on every call. The
// caller (the pdfannot driver) and the Extractor share exactly one
// Allocator instance per Serialize call, so extracted object ids never
// collide with ids the driver assigns itself.
type Allocator func() int

// Subgraph is a self-contained chunk of already-serialized indirect
// objects (each a complete "<id> 0 obj ... endobj" span) reproducing one
// page, plus the object id of the page dictionary within that chunk.
type Subgraph struct {
	Bytes   []byte
	PageRef int
}

// Extractor is the page-discovery and subgraph-extraction capability
// the driver needs from an external PDF parser.
type Extractor interface {
	// PageCount returns the number of pages in data.
	PageCount(data []byte) (int, error)
	// ExtractPage returns page pageIndex (zero-based) of data as a
	// self-contained Subgraph, allocating any object ids it needs
	// through alloc.
	ExtractPage(data []byte, pageIndex int, alloc Allocator) (Subgraph, error)
	// MaxObjectID returns the highest indirect-object id already used
	// in data, so a caller can seed its own allocator above it and
	// keep the two id spaces disjoint.
	MaxObjectID(data []byte) (int, error)
}
