package shred

import (
	"coldb/internal/chunk"
	"coldb/internal/ltype"
	"coldb/internal/schema"
)

// ColumnResult reports what registering one leaf's (path, type) did against
// the computed schema, mirroring schema.AppendResult plus the union tag
// when the column is (now) a union.
type ColumnResult struct {
	ColumnID int64
	IsUnion  bool
	UnionTag int
	HasTag   bool
	Outcome  schema.AppendResult
}

// Shredder turns a batch of documents into a data chunk matching the
// schema's current column set after every document in the batch has been
// registered, evolving the schema as it goes.
type Shredder struct {
	Schema *schema.Schema
}

// New returns a shredder driving the given computed schema.
func New(s *schema.Schema) *Shredder {
	return &Shredder{Schema: s}
}

// ShredBatch walks every document, registers each leaf's (path, type) with
// the schema, and returns a chunk whose columns are the schema's resulting
// column set (current schema plus every path discovered in this batch),
// one row per document. A document missing a path leaves that row's cell
// NULL; a union column stores the variant tag and payload in the cell's
// ltype.Value (VariantTag/Payload) rather than as separate child vectors —
// the tag is still recoverable via schema.GetUnionTag for any payload type.
func (s *Shredder) ShredBatch(docs []Document, capacity int) (*chunk.DataChunk, []map[string]ColumnResult, error) {
	perDoc := make([]map[string]ColumnResult, len(docs))
	leavesByDoc := make([][]Leaf, len(docs))

	for i, doc := range docs {
		leaves, err := iterLeaves(doc)
		if err != nil {
			return nil, nil, err
		}
		leavesByDoc[i] = leaves
		results := make(map[string]ColumnResult, len(leaves))
		for _, leaf := range leaves {
			outcome := s.Schema.Append(leaf.Path, leaf.Type)
			cr := ColumnResult{Outcome: outcome}
			if id, ok := s.Schema.ColumnID(leaf.Path); ok {
				cr.ColumnID = id
			}
			if s.Schema.IsUnion(leaf.Path) {
				cr.IsUnion = true
				if tag, err := s.Schema.GetUnionTag(leaf.Path, leaf.Type); err == nil {
					cr.UnionTag = tag
					cr.HasTag = true
				}
			}
			results[leaf.Path] = cr
		}
		perDoc[i] = results
	}

	st := s.Schema.LatestTypesStruct()
	names := make([]string, len(st.Fields))
	types := make([]ltype.Type, len(st.Fields))
	for i, f := range st.Fields {
		names[i] = f.Name
		types[i] = f.Type
	}

	if capacity <= 0 {
		capacity = chunk.DefaultCapacity
	}
	out, err := chunk.NewDataChunk(names, types, capacity)
	if err != nil {
		return nil, nil, err
	}

	for row, leaves := range leavesByDoc {
		byPath := make(map[string]Leaf, len(leaves))
		for _, l := range leaves {
			byPath[l.Path] = l
		}
		for colIdx, name := range names {
			leaf, present := byPath[name]
			if !present {
				continue
			}
			value := leaf.Value
			// Ask the schema as it stands after the whole batch, so rows
			// registered before a later row promoted the column are tagged too.
			if s.Schema.IsUnion(name) {
				if tag, err := s.Schema.GetUnionTag(name, leaf.Type); err == nil {
					payload := value
					value = ltype.Value{Tag: ltype.Union, VariantTag: tag, Payload: &payload}
				}
			}
			if err := out.Column(colIdx).SetValue(row, value); err != nil {
				return nil, nil, err
			}
		}
	}
	if err := out.SetCardinality(len(docs)); err != nil {
		return nil, nil, err
	}
	return out, perDoc, nil
}
