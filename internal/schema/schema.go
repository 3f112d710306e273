// Package schema implements the computed schema: a live mapping from
// JSON-pointer path to column type that discovers fields as documents are
// shredded, reference-counts how many live rows carry each type version, and
// promotes a path to a tagged union the moment a conflicting type appears
// under it. Promotion is additive only — the original column is never
// rewritten in place; union_types only ever grows until every version under
// a path is dropped, at which point the whole path disappears.
package schema

import (
	"sync"

	"coldb/internal/coldberr"
	"coldb/internal/ltype"
	"coldb/internal/vtrie"
)

// AppendResult reports what append(path, type) did, per the computed schema
// contract: a brand-new path, a refcount bump on an already-current type, or
// a conflicting type that pushed the path into (or further into) a union.
type AppendResult int

const (
	New AppendResult = iota
	Existing
	UnionExtended
)

func (r AppendResult) String() string {
	switch r {
	case New:
		return "New"
	case Existing:
		return "Existing"
	case UnionExtended:
		return "UnionExtended"
	default:
		return "Invalid"
	}
}

// entry is everything the schema tracks for one path: its column id, the
// versioned history of types it has carried, and — once a conflict has
// occurred — the union's first-seen variant ordering.
type entry struct {
	columnID   int64
	alias      string
	versions   *vtrie.VersionedValue[ltype.Type]
	isUnion    bool
	unionTypes []ltype.Type
}

// Schema is the computed schema for one table: path -> entry, plus the
// column-id allocator. A Schema is safe for concurrent use: every method
// holds the schema's own RWMutex for its whole duration, so a reader never
// observes a half-applied Append or Drop. internal/table keeps no reference
// to it.
type Schema struct {
	mu        sync.RWMutex
	paths     map[string]*entry
	order     []string // column order, insertion order, stable across drops
	nextColID int64
}

// New returns an empty computed schema.
func New() *Schema {
	return &Schema{paths: make(map[string]*entry)}
}

// Append registers one more occurrence of type under path. See AppendResult
// for the three outcomes. Append never fails: a type conflict silently
// widens the path to a union rather than returning an error.
func (s *Schema) Append(path string, t ltype.Type) AppendResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.paths[path]
	if !ok {
		e = &entry{
			columnID: s.nextColID,
			alias:    path,
			versions: vtrie.New(ltype.Equal),
		}
		s.nextColID++
		s.paths[path] = e
		s.order = append(s.order, path)
		e.versions.Append(t)
		return New
	}

	wasUnion := e.isUnion
	var priorLatest ltype.Type
	hadPrior := false
	if !wasUnion {
		if v, ok := e.versions.Latest(); ok {
			priorLatest, hadPrior = v.Value, true
		}
	}

	e.versions.Append(t)
	if e.versions.AliveCount() > 1 {
		if !wasUnion {
			e.isUnion = true
			// First conflict: tag=0 must stay the original pre-conflict
			// type, so seed it before the type that just collided with it.
			if hadPrior && !containsType(e.unionTypes, priorLatest) {
				e.unionTypes = append(e.unionTypes, priorLatest)
			}
		}
		if !containsType(e.unionTypes, t) {
			e.unionTypes = append(e.unionTypes, t)
		}
		return UnionExtended
	}
	return Existing
}

// Drop releases n refcounts on type under path. If this empties
// the path's alive versions, the path and its column id are erased. Drop on
// a nonexistent path is a documented no-op, not an error.
func (s *Schema) Drop(path string, t ltype.Type, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.paths[path]
	if !ok {
		return
	}
	e.versions.Release(t, n)
	if e.versions.Empty() {
		delete(s.paths, path)
		s.order = removeString(s.order, path)
	}
}

// TryAppend is append's pure counterpart: it never mutates, and returns a
// non-empty diagnostic string describing the conflict iff path already
// carries a different, non-union type. Callers use it to decide whether to
// warn before committing a batch.
func (s *Schema) TryAppend(path string, t ltype.Type) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.paths[path]
	if !ok {
		return ""
	}
	latest, hadLatest := e.versions.Latest()
	if !hadLatest {
		return ""
	}
	if ltype.Equal(latest.Value, t) {
		return ""
	}
	if e.isUnion {
		return ""
	}
	return "type conflict at " + path + ": column is " + latest.Value.String() + ", got " + t.String()
}

// LatestTypesStruct returns a STRUCT whose fields are the live columns, in
// insertion order, with their current (union-aware) type and alias. For a
// union column the field type is the UNION of union_types, not any single
// variant.
func (s *Schema) LatestTypesStruct() ltype.Type {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields := make([]ltype.StructField, 0, len(s.order))
	for _, path := range s.order {
		e := s.paths[path]
		var ft ltype.Type
		if e.isUnion {
			ft = ltype.NewUnion(e.unionTypes...)
		} else if latest, ok := e.versions.Latest(); ok {
			ft = latest.Value
		} else {
			continue
		}
		fields = append(fields, ltype.StructField{Name: path, Type: ft.WithAlias(e.alias)})
	}
	return ltype.NewStruct(fields...)
}

// GetUnionTag returns the index of t within path's union_types, in
// first-seen order. It errors with coldberr.TypeError if path is not a union
// column or t is not one of its variants.
func (s *Schema) GetUnionTag(path string, t ltype.Type) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.paths[path]
	if !ok {
		return 0, coldberr.Newf(coldberr.NotFound, "no such column: %s", path)
	}
	if !e.isUnion {
		return 0, coldberr.Newf(coldberr.TypeError, "column %s is not a union", path)
	}
	for i, v := range e.unionTypes {
		if ltype.Equal(v, t) {
			return i, nil
		}
	}
	return 0, coldberr.Newf(coldberr.TypeError, "type %s is not a variant of union column %s", t, path)
}

// ColumnID returns the column id assigned to path, or (0, false) if path is
// not currently live. Column ids are dense and never recycled: dropping a
// path removes it from lookup but does not return its id to the pool.
func (s *Schema) ColumnID(path string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.paths[path]
	if !ok {
		return 0, false
	}
	return e.columnID, true
}

// IsUnion reports whether path has been promoted to a union. The flag stays
// set after drops leave a single alive type; it goes only when the path
// itself is erased.
func (s *Schema) IsUnion(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.paths[path]
	return ok && e.isUnion
}

// UnionTypes returns a copy of path's first-seen variant ordering, or nil if
// path is not a union column.
func (s *Schema) UnionTypes(path string) []ltype.Type {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.paths[path]
	if !ok || !e.isUnion {
		return nil
	}
	out := make([]ltype.Type, len(e.unionTypes))
	copy(out, e.unionTypes)
	return out
}

// ColumnCount returns the number of live columns. Promoting a column to
// union never changes this count.
func (s *Schema) ColumnCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func containsType(types []ltype.Type, t ltype.Type) bool {
	for _, existing := range types {
		if ltype.Equal(existing, t) {
			return true
		}
	}
	return false
}

func removeString(ss []string, target string) []string {
	out := ss[:0]
	for _, s := range ss {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}
