// Package table implements the columnar table: block-backed (in the sense
// of fixed-capacity chunks rather than real disk pages) column storage with
// append / scan / delete / update / fetch, plus the primary-key hash from a
// document's _id to its row id.
package table

import (
	"sync"

	"coldb/internal/blockcache"
	"coldb/internal/chunk"
	"coldb/internal/coldberr"
	"coldb/internal/filter"
	"coldb/internal/ltype"
)

// DocumentID is the 12-byte opaque primary key carried by documents that
// have an /_id field (24 hex characters on the wire).
type DocumentID [12]byte

// columnState is one column's current type metadata, mirroring the live
// computed schema at the moment the column was last touched.
type columnState struct {
	path string
	typ  ltype.Type
}

// Table is single-writer/multi-reader columnar storage for one collection.
// Writers (append/delete/update) serialize on mu; Scan and Fetch hold the
// read lock for the whole call, so a write waits for in-flight reads and
// a read never observes a half-applied write, matching the
// shared-read-pin / exclusive-write-token model in the concurrency design.
type Table struct {
	mu sync.RWMutex

	columns  []columnState
	chunks   []*chunk.DataChunk
	rowIDs   []int64 // never populated: a row's id is its position across chunks (see locateRows)
	validity []bool  // one entry per logical row, across all chunks, in row-id order
	rowCount int64

	pkToRow map[DocumentID]int64
	rowToPK map[int64]DocumentID

	capacity int
	blocks   *blockcache.Cache
}

// New returns an empty table over the given column set, using capacity rows
// per chunk (chunk.DefaultCapacity if capacity <= 0).
func New(names []string, types []ltype.Type, capacity int) *Table {
	if capacity <= 0 {
		capacity = chunk.DefaultCapacity
	}
	cols := make([]columnState, len(names))
	for i := range names {
		cols[i] = columnState{path: names[i], typ: types[i]}
	}
	return &Table{
		columns:  cols,
		pkToRow:  make(map[DocumentID]int64),
		rowToPK:  make(map[int64]DocumentID),
		capacity: capacity,
		blocks:   blockcache.New(),
	}
}

// ColumnNames returns the table's current column names, in column order.
func (t *Table) ColumnNames() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.path
	}
	return out
}

// ColumnTypes returns the table's current column types, in column order.
func (t *Table) ColumnTypes() []ltype.Type {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]ltype.Type, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.typ
	}
	return out
}

// RowCount returns the total number of rows ever appended, alive or not.
func (t *Table) RowCount() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rowCount
}

// AppendState tracks one in-flight append session: the row id the next
// appended row will receive.
type AppendState struct {
	rowStart int64
}

// InitializeAppend opens an append session, reserving the current row count
// as the session's starting row id.
func (t *Table) InitializeAppend() *AppendState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return &AppendState{rowStart: t.rowCount}
}

// Append writes c's rows contiguously starting at state.rowStart, assigning
// dense row ids in insertion order, and updates the primary-key map for any
// row carrying pkColumn (pass "" to skip PK tracking). c's columns must
// include every column the table currently has (by name); any column in c
// the table does not yet have is a schema-evolution event: the new column is
// adopted and every chunk appended before it is retroactively given an
// all-NULL vector for it, so column indices stay aligned across the whole
// table's chunk history.
func (t *Table) Append(state *AppendState, c *chunk.DataChunk, pkColumn string, pkOf func(ltype.Value) (DocumentID, bool)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := c.Cardinality()
	if n == 0 {
		return nil
	}

	t.adoptNewColumns(c)

	pkIdx := -1
	if pkColumn != "" {
		if idx, ok := c.ColumnIndex(pkColumn); ok {
			pkIdx = idx
		}
	}

	// Pin the tail block for the duration of the write, mirroring a real
	// buffer pool's pin-before-write/unpin-after discipline.
	blockID := len(t.chunks)
	release := t.blocks.Acquire(blockID)
	defer release()

	t.chunks = append(t.chunks, c)
	for col := 0; col < c.ColumnCount(); col++ {
		if min, max, ok := columnMinMax(c, col); ok {
			t.blocks.SetRange(blockID, col, min, max)
		}
	}
	for row := 0; row < n; row++ {
		rowID := t.rowCount
		t.validity = append(t.validity, true)
		if pkIdx >= 0 && c.Column(pkIdx).Valid(row) && pkOf != nil {
			if id, ok := pkOf(c.Column(pkIdx).Value(row)); ok {
				t.pkToRow[id] = rowID
				t.rowToPK[rowID] = id
			}
		}
		t.rowCount++
	}
	state.rowStart += int64(n)
	return nil
}

// columnMinMax scans c's column col for its [min, max] over valid, orderable
// values, feeding the block min/max metadata Scan uses to skip blocks a
// pushdown filter provably excludes. ok is false if col has no valid,
// comparable value in c (e.g. all-NULL, or a type compare doesn't order).
func columnMinMax(c *chunk.DataChunk, col int) (min, max ltype.Value, ok bool) {
	v := c.Column(col)
	for row := 0; row < c.Cardinality(); row++ {
		if !v.Valid(row) {
			continue
		}
		val := v.Value(row)
		if !ok {
			min, max, ok = val, val, true
			continue
		}
		if cmp, comparable := filter.Compare(val, min); comparable && cmp < 0 {
			min = val
		}
		if cmp, comparable := filter.Compare(val, max); comparable && cmp > 0 {
			max = val
		}
	}
	return min, max, ok
}

// DeleteState opens a delete session. It carries no state beyond marking
// the session as open; kept as a type for contract symmetry with the other
// initialize_* operations and to leave room for future batching.
type DeleteState struct{}

// InitializeDelete opens a delete session.
func (t *Table) InitializeDelete() *DeleteState { return &DeleteState{} }

// DeleteRows marks the first n row ids in ids as logically deleted.
// Deleting an already-deleted or out-of-range row id is a no-op, making the
// operation idempotent.
func (t *Table) DeleteRows(_ *DeleteState, ids []int64, n int) (deleted int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := 0; i < n && i < len(ids); i++ {
		rowID := ids[i]
		if rowID < 0 || rowID >= int64(len(t.validity)) {
			continue
		}
		if !t.validity[rowID] {
			continue
		}
		t.validity[rowID] = false
		deleted++
		if pk, ok := t.rowToPK[rowID]; ok {
			delete(t.pkToRow, pk)
			delete(t.rowToPK, rowID)
		}
	}
	return deleted
}

// UpdateState opens an update session, analogous to DeleteState.
type UpdateState struct{}

// InitializeUpdate opens an update session.
func (t *Table) InitializeUpdate() *UpdateState { return &UpdateState{} }

// Update overwrites, for each row id in rowIDs, the named cells from the
// correspondingly-indexed row of chunk c. c's columns must match the
// table's schema order at update time.
func (t *Table) Update(_ *UpdateState, rowIDs []int64, c *chunk.DataChunk) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(rowIDs) != c.Cardinality() {
		return coldberr.Newf(coldberr.Internal, "update: %d row ids but chunk cardinality %d", len(rowIDs), c.Cardinality())
	}
	location := t.locateRows(rowIDs)
	touched := make(map[int]bool)
	for srcRow, loc := range location {
		if loc.chunkIdx < 0 {
			continue
		}
		touched[loc.chunkIdx] = true
		dst := t.chunks[loc.chunkIdx]
		for col := 0; col < c.ColumnCount() && col < dst.ColumnCount(); col++ {
			if !c.Column(col).Valid(srcRow) {
				if err := dst.Column(col).SetNull(loc.rowInChunk); err != nil {
					return err
				}
				continue
			}
			if err := dst.Column(col).SetValue(loc.rowInChunk, c.Column(col).Value(srcRow)); err != nil {
				return err
			}
		}
	}
	// Refresh the block min/max of every rewritten chunk so Scan never
	// skips a block on a range the overwrite made stale.
	for ci := range touched {
		dst := t.chunks[ci]
		for col := 0; col < dst.ColumnCount(); col++ {
			if min, max, ok := columnMinMax(dst, col); ok {
				t.blocks.SetRange(ci, col, min, max)
			}
		}
	}
	return nil
}

// adoptNewColumns extends t.columns with any column of c the table does not
// already carry (by name), then backfills every previously stored chunk
// with an all-NULL vector for each newly adopted column, preserving column
// index alignment between old and new chunks. Callers must hold t.mu.
func (t *Table) adoptNewColumns(c *chunk.DataChunk) {
	known := make(map[string]bool, len(t.columns))
	for _, col := range t.columns {
		known[col.path] = true
	}

	names := c.ColumnNames()
	types := c.Types()
	var added []columnState
	for i, name := range names {
		if known[name] {
			continue
		}
		cs := columnState{path: name, typ: types[i]}
		t.columns = append(t.columns, cs)
		added = append(added, cs)
		known[name] = true
	}
	if len(added) == 0 {
		return
	}
	for _, existing := range t.chunks {
		for _, cs := range added {
			existing.AddColumn(cs.path, cs.typ)
		}
	}
}

type rowLocation struct {
	chunkIdx   int
	rowInChunk int
}

// locateRows maps each global row id to its owning chunk and in-chunk
// offset. Chunk boundaries are at cumulative cardinality: Append stores each
// caller chunk as-is, so chunks may hold any number of rows.
func (t *Table) locateRows(rowIDs []int64) []rowLocation {
	out := make([]rowLocation, len(rowIDs))
	for i, rowID := range rowIDs {
		out[i] = rowLocation{chunkIdx: -1}
		remaining := rowID
		for ci, c := range t.chunks {
			if remaining < int64(c.Cardinality()) {
				out[i] = rowLocation{chunkIdx: ci, rowInChunk: int(remaining)}
				break
			}
			remaining -= int64(c.Cardinality())
		}
	}
	return out
}

// ScanState tracks progress through a scan: which chunk/row to resume from,
// the projected column indices, and a schema-snapshot filter tree taken at
// InitializeScan so later schema evolution is invisible to this scan.
type ScanState struct {
	columnIndices []int
	pushdown      *filter.Filter
	chunkIdx      int
	rowInChunk    int
}

// InitializeScan prepares a scan over columnIndices (nil means all current
// columns), applying pushdown during Scan. The column set and pushdown tree
// are fixed for the lifetime of the returned state, per the schema-snapshot
// ordering guarantee.
func (t *Table) InitializeScan(columnIndices []int, pushdown *filter.Filter) *ScanState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if columnIndices == nil {
		columnIndices = make([]int, len(t.columns))
		for i := range columnIndices {
			columnIndices[i] = i
		}
	}
	return &ScanState{columnIndices: columnIndices, pushdown: pushdown}
}

// Scan fills out up to its capacity with the next rows satisfying the
// state's pushdown filter and the liveness bitmap, advancing state. It
// returns the number of rows written; 0 means end of scan.
func (t *Table) Scan(state *ScanState, out *chunk.DataChunk) (int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out.Reset()
	written := 0
	cap := out.Capacity()

	for written < cap && state.chunkIdx < len(t.chunks) {
		c := t.chunks[state.chunkIdx]
		release := t.blocks.Acquire(state.chunkIdx)

		if state.rowInChunk == 0 && state.pushdown != nil {
			blockIdx := state.chunkIdx
			rng := func(col int) (ltype.Value, ltype.Value, bool) { return t.blocks.Range(blockIdx, col) }
			if state.pushdown.CanSkipBlock(rng) {
				release()
				state.chunkIdx++
				continue
			}
		}

		for written < cap && state.rowInChunk < c.Cardinality() {
			rowID := t.globalRowID(state.chunkIdx, state.rowInChunk)
			row := state.rowInChunk
			state.rowInChunk++

			if rowID >= int64(len(t.validity)) || !t.validity[rowID] {
				continue
			}
			if state.pushdown != nil && !state.pushdown.EvalChunkRow(c, row) {
				continue
			}
			if err := t.copyRowInto(out, written, c, row, state.columnIndices); err != nil {
				release()
				return 0, err
			}
			written++
		}
		release()
		if state.rowInChunk >= c.Cardinality() {
			state.chunkIdx++
			state.rowInChunk = 0
		}
	}
	if err := out.SetCardinality(written); err != nil {
		return 0, err
	}
	return written, nil
}

// Fetch point-fetches the first n row ids from ids into out, projected to
// columnIndices. Row ids with no live row are silently skipped, mirroring
// primary-key scan's silent-skip-on-absent-id policy.
func (t *Table) Fetch(out *chunk.DataChunk, columnIndices []int, ids []int64, n int) (int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out.Reset()
	written := 0
	for i := 0; i < n && i < len(ids) && written < out.Capacity(); i++ {
		rowID := ids[i]
		if rowID < 0 || rowID >= int64(len(t.validity)) || !t.validity[rowID] {
			continue
		}
		loc := t.locateRows([]int64{rowID})[0]
		if loc.chunkIdx < 0 {
			continue
		}
		release := t.blocks.Acquire(loc.chunkIdx)
		err := t.copyRowInto(out, written, t.chunks[loc.chunkIdx], loc.rowInChunk, columnIndices)
		release()
		if err != nil {
			return 0, err
		}
		written++
	}
	if err := out.SetCardinality(written); err != nil {
		return 0, err
	}
	return written, nil
}

func (t *Table) copyRowInto(out *chunk.DataChunk, dstRow int, src *chunk.DataChunk, srcRow int, columnIndices []int) error {
	for dstCol, srcCol := range columnIndices {
		if dstCol >= out.ColumnCount() || srcCol >= src.ColumnCount() {
			continue
		}
		if !src.Column(srcCol).Valid(srcRow) {
			continue
		}
		if err := out.Column(dstCol).SetValue(dstRow, src.Column(srcCol).Value(srcRow)); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) globalRowID(chunkIdx, rowInChunk int) int64 {
	var base int64
	for i := 0; i < chunkIdx; i++ {
		base += int64(t.chunks[i].Cardinality())
	}
	return base + int64(rowInChunk)
}

// GetRowID looks up the row id for a primary key, returning (0, false) if
// the id is absent or its row has since been deleted.
func (t *Table) GetRowID(id DocumentID) (int64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rowID, ok := t.pkToRow[id]
	return rowID, ok
}

// IsAlive reports whether rowID is a currently-live row.
func (t *Table) IsAlive(rowID int64) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return rowID >= 0 && rowID < int64(len(t.validity)) && t.validity[rowID]
}
