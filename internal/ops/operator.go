package ops

import (
	"coldb/internal/chunk"
	"coldb/internal/shred"
)

// Operator is a node of the physical plan: on_prepare recursively prepares
// children and builds helper state; on_execute runs the operator once,
// consuming children's output chunks and producing its own. Read operators
// return nil, nil at end of stream (rather than an empty chunk) so a caller
// can distinguish "last chunk had rows" from "no more chunks" without
// special-casing cardinality 0.
type Operator interface {
	// Prepare recursively prepares children and builds any helper state
	// (e.g. a scan state, a hash table for group-by). Called exactly once
	// before the first Execute.
	Prepare() error

	// Execute runs the operator once and returns its next output chunk, or
	// (nil, nil) at end of stream.
	Execute(ctx *Context) (*chunk.DataChunk, error)

	// Modified returns the row ids this operator's last Execute call wrote,
	// deleted, or inserted; nil for read-only operators.
	Modified() []int64
}

// DocumentSource is the child shape operator_insert requires: a list of
// documents rather than a column chunk. A literal in-memory batch is the
// only implementation this engine needs, since document ingestion always
// arrives as a materialized batch from the caller.
type DocumentSource interface {
	Documents() ([]shred.Document, error)
}

// LiteralDocuments is a DocumentSource backed by an already-materialized
// slice, used as operator_insert's child.
type LiteralDocuments struct {
	docs []shred.Document
}

// NewLiteralDocuments wraps docs as a DocumentSource.
func NewLiteralDocuments(docs []shred.Document) *LiteralDocuments {
	return &LiteralDocuments{docs: docs}
}

// Documents returns the wrapped batch.
func (l *LiteralDocuments) Documents() ([]shred.Document, error) {
	return l.docs, nil
}

// baseModified is embedded by write operators to implement Modified without
// repeating the same field+getter in each type.
type baseModified struct {
	modified []int64
}

func (b *baseModified) Modified() []int64 { return b.modified }

// LiteralChunk is a one-shot Operator yielding a single, already-built data
// chunk, used by the planner as the row-table insert's child when the
// caller hands it a pre-shredded chunk rather than documents.
type LiteralChunk struct {
	chunk    *chunk.DataChunk
	executed bool
}

// NewLiteralChunk wraps c as a one-shot Operator.
func NewLiteralChunk(c *chunk.DataChunk) *LiteralChunk {
	return &LiteralChunk{chunk: c}
}

func (l *LiteralChunk) Prepare() error { return nil }

func (l *LiteralChunk) Execute(ctx *Context) (*chunk.DataChunk, error) {
	if l.executed {
		return nil, nil
	}
	l.executed = true
	return l.chunk, nil
}

func (l *LiteralChunk) Modified() []int64 { return nil }
