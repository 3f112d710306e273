// Package catalog is the process-wide namespace -> table map backing
// CREATE TABLE. A write replaces the whole namespace map (copy-on-write at
// table granularity), and every read or write takes the catalog's single
// sync.RWMutex, so a reader waits while any write to the catalog is in
// progress. The package holds no type registry: column types are passed in
// by the caller at CreateTable time.
package catalog

import (
	"sync"

	"coldb/internal/coldberr"
	"coldb/internal/ltype"
	"coldb/internal/schema"
	"coldb/internal/table"
)

// StorageKind is the `storage` option of CREATE TABLE ... WITH.
type StorageKind string

const (
	// Documents is row-oriented, schema fixed at create time.
	Documents StorageKind = "documents"
	// Columns is column-oriented, schema fixed at create time. The default
	// when `storage` is omitted.
	Columns StorageKind = "columns"
	// DocumentTable is column-oriented with dynamic schema via the computed
	// schema (internal/schema) — the hard path this engine exists for.
	DocumentTable StorageKind = "document_table"
)

// TableEntry is one catalog entry: a table's storage kind plus its backing
// store. DocumentTable entries carry a live *schema.Schema that evolves as
// documents are inserted; Documents/Columns entries have a fixed schema
// decided at CREATE TABLE time and leave Schema nil.
type TableEntry struct {
	Name    string
	Storage StorageKind
	Data    *table.Table
	Schema  *schema.Schema // non-nil iff Storage == DocumentTable
}

// Catalog is a namespace -> table map. A namespace corresponds to what SQL
// calls a database/schema; this engine's CLI exposes exactly one implicit
// namespace, but the type stays multi-namespace to mirror the teacher's
// Database/Table nesting and leave room for multi-tenant embedding.
type Catalog struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]*TableEntry
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{namespaces: make(map[string]map[string]*TableEntry)}
}

// CreateTable registers a new table under namespace. It errors with
// coldberr.SchemaConflict if the table already exists.
func (c *Catalog) CreateTable(namespace, name string, storage StorageKind, columnNames []string, columnTypes []ltype.Type) (*TableEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ns, ok := c.namespaces[namespace]
	if !ok {
		ns = make(map[string]*TableEntry)
		c.namespaces[namespace] = ns
	}
	if _, exists := ns[name]; exists {
		return nil, coldberr.Newf(coldberr.SchemaConflict, "table %s.%s already exists", namespace, name)
	}

	entry := &TableEntry{
		Name:    name,
		Storage: storage,
		Data:    table.New(columnNames, columnTypes, 0),
	}
	if storage == DocumentTable {
		entry.Schema = schema.New()
		for i, n := range columnNames {
			entry.Schema.Append(n, columnTypes[i])
		}
	}

	// Copy-on-write at table granularity: replace the whole namespace map
	// so concurrent readers holding the old map never observe a partial
	// write.
	next := make(map[string]*TableEntry, len(ns)+1)
	for k, v := range ns {
		next[k] = v
	}
	next[name] = entry
	c.namespaces[namespace] = next

	return entry, nil
}

// FindTable looks up namespace.name, mirroring the teacher catalog's
// FindTable lookup. Returns (nil, false) if either segment is absent.
func (c *Catalog) FindTable(namespace, name string) (*TableEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ns, ok := c.namespaces[namespace]
	if !ok {
		return nil, false
	}
	entry, ok := ns[name]
	return entry, ok
}

// DropTable removes namespace.name from the catalog. It is a no-op if the
// table does not exist.
func (c *Catalog) DropTable(namespace, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ns, ok := c.namespaces[namespace]
	if !ok {
		return
	}
	next := make(map[string]*TableEntry, len(ns))
	for k, v := range ns {
		if k != name {
			next[k] = v
		}
	}
	c.namespaces[namespace] = next
}

// ListTables returns the names of every table in namespace.
func (c *Catalog) ListTables(namespace string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ns, ok := c.namespaces[namespace]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(ns))
	for name := range ns {
		out = append(out, name)
	}
	return out
}
