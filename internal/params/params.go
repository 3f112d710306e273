// Package params implements the parameter store: a dense, numbered
// bind-parameter table attached to one statement. Callers assign ids with
// Bind; Store.Get matches filter.ParamLookup, which is how the planner and
// the operator pipeline resolve ids during predicate evaluation.
package params

import (
	"coldb/internal/coldberr"
	"coldb/internal/ltype"
)

// Store is a statement-scoped parameter table. Ids are dense: the first
// bound value gets id 0, the next id 1, and so on.
type Store struct {
	values []ltype.Value
}

// New returns an empty parameter store.
func New() *Store {
	return &Store{}
}

// Bind appends value as the next parameter and returns its id.
func (s *Store) Bind(value ltype.Value) int {
	s.values = append(s.values, value)
	return len(s.values) - 1
}

// Get resolves a parameter id, matching filter.ParamLookup's signature so a
// Store can be passed directly as one.
func (s *Store) Get(id int) (ltype.Value, bool) {
	if id < 0 || id >= len(s.values) {
		return ltype.Value{}, false
	}
	return s.values[id], true
}

// MustGet resolves a parameter id, returning a coldberr.BoundsError if it is
// out of range, for call sites that already expect the id to be present.
func (s *Store) MustGet(id int) (ltype.Value, error) {
	v, ok := s.Get(id)
	if !ok {
		return ltype.Value{}, coldberr.Newf(coldberr.BoundsError, "parameter %d is not bound", id)
	}
	return v, nil
}

// Len returns the number of bound parameters.
func (s *Store) Len() int { return len(s.values) }
