// Package planner turns a logical plan node into a physical operator tree:
// on_plan(logical_node, limit) -> operator_tree, dispatching on node kind and
// routing data-bearing nodes to a storage-specific subplanner (document-table
// vs row-table), per the computed-schema engine's storage model.
package planner

import (
	"encoding/hex"

	"coldb/internal/catalog"
	"coldb/internal/chunk"
	"coldb/internal/coldberr"
	"coldb/internal/filter"
	"coldb/internal/ltype"
	"coldb/internal/ops"
	"coldb/internal/shred"
	"coldb/internal/table"
)

// Kind is the logical-node tag set the planner dispatches on. DDL kinds
// (CreateCollection, CreateDatabase, CreateIndex, CreateType and their Drop
// counterparts) have no physical operator — they are executed directly
// against the catalog by ExecuteDDL, not by Plan.
type Kind int

const (
	Aggregate Kind = iota
	CreateCollection
	CreateDatabase
	CreateIndex
	CreateType
	Data
	Delete
	DropCollection
	DropDatabase
	DropIndex
	DropType
	Insert
	Join
	Limit
	Match
	Group
	Sort
	Function
	Update
)

// Node is one logical-plan node. Not every field applies to every Kind; see
// the per-kind comments in plan().
type Node struct {
	Kind       Kind
	Namespace  string
	Collection string
	Children   []*Node

	Predicate     *filter.Expr
	ColumnIndices []int

	// Match/Limit
	LimitN int

	// Group/Aggregate
	GroupBy    []int
	Aggregates []ops.Aggregate
	SortKeys   []ops.SortKey

	// Join
	JoinType ops.JoinType

	// Insert: exactly one of Documents or Chunk is set for a document-table
	// vs row-table insert, per the insert_t routing rule. When neither is
	// set, Children[0] is planned and used as the row-table ChunkSource.
	Documents []shred.Document
	Chunk     *chunk.DataChunk

	// Update
	Updates []ops.UpdateExpr
	Upsert  bool

	// RowID recovers the table row id for a left-row during delete/update;
	// nil means "row index equals row id" (only valid for an un-deleted,
	// single-chunk table, e.g. in tests).
	RowID func(*chunk.DataChunk, int) int64
}

// Plan walks node and returns the operator tree that implements it,
// resolving bound parameters through params. limit is -1 for unbounded.
func Plan(node *Node, cat *catalog.Catalog, params filter.ParamLookup) (ops.Operator, error) {
	return plan(node, -1, cat, params)
}

func plan(node *Node, limit int, cat *catalog.Catalog, params filter.ParamLookup) (ops.Operator, error) {
	if node == nil {
		return nil, coldberr.New(coldberr.Internal, "planner: nil logical node")
	}

	switch node.Kind {
	case Match:
		return planMatch(node, limit, cat, params)

	case Limit:
		if len(node.Children) != 1 {
			return nil, coldberr.New(coldberr.Internal, "planner: limit requires exactly one child")
		}
		return plan(node.Children[0], node.LimitN, cat, params)

	case Aggregate:
		return planAggregate(node, cat, params)

	case Group:
		// A bare group with no ORDER BY reuses aggregation with no sort keys,
		// matching the planner's stated reuse of group/sort regardless of
		// storage kind.
		return planAggregate(node, cat, params)

	case Sort:
		if len(node.Children) != 1 {
			return nil, coldberr.New(coldberr.Internal, "planner: sort requires exactly one child")
		}
		child, err := plan(node.Children[0], -1, cat, params)
		if err != nil {
			return nil, err
		}
		return &ops.OperatorSort{Child: child, Keys: node.SortKeys}, nil

	case Join:
		if len(node.Children) != 2 {
			return nil, coldberr.New(coldberr.Internal, "planner: join requires exactly two children")
		}
		left, err := plan(node.Children[0], -1, cat, params)
		if err != nil {
			return nil, err
		}
		right, err := plan(node.Children[1], -1, cat, params)
		if err != nil {
			return nil, err
		}
		return &ops.OperatorJoin{Left: left, Right: right, Predicate: node.Predicate, Params: params, Type: node.JoinType}, nil

	case Insert:
		return planInsert(node, cat, params)

	case Delete:
		return planDelete(node, cat, params)

	case Update:
		return planUpdate(node, cat, params)

	case Data:
		if node.Chunk != nil {
			return ops.NewLiteralChunk(node.Chunk), nil
		}
		return nil, coldberr.New(coldberr.Internal, "planner: data node carries no chunk")

	case Function:
		// No physical operator evaluates bare scalar-function projections;
		// the engine's operator set (scan, pk-scan, insert, delete, update,
		// group, sort, join, aggregate) has no "project" stage.
		return nil, coldberr.New(coldberr.Unsupported, "planner: function projection nodes are not implemented")

	case CreateCollection, CreateDatabase, CreateIndex, CreateType,
		DropCollection, DropDatabase, DropIndex, DropType:
		return nil, coldberr.New(coldberr.Unsupported, "planner: DDL nodes have no operator tree; call ExecuteDDL")

	default:
		return nil, coldberr.Newf(coldberr.Internal, "planner: unknown logical node kind %d", node.Kind)
	}
}

func planMatch(node *Node, limit int, cat *catalog.Catalog, params filter.ParamLookup) (ops.Operator, error) {
	entry, ok := cat.FindTable(node.Namespace, node.Collection)
	if !ok {
		return nil, coldberr.Newf(coldberr.NotFound, "no such collection: %s.%s", node.Namespace, node.Collection)
	}

	if entry.Storage == catalog.DocumentTable {
		if id, ok := pkEqualityID(node, entry, params); ok {
			return &ops.PrimaryKeyScan{
				Table:         entry.Data,
				IDs:           []table.DocumentID{id},
				ColumnIndices: node.ColumnIndices,
			}, nil
		}
	}

	return &ops.FullScan{
		Table:         entry.Data,
		Predicate:     node.Predicate,
		Params:        params,
		Limit:         limit,
		ColumnIndices: node.ColumnIndices,
	}, nil
}

// pkEqualityID pattern-matches node.Predicate against `_id = $p` (the
// column named "_id" compared for equality against a bound parameter, in either
// operand order) and resolves the parameter to a document id.
func pkEqualityID(node *Node, entry *catalog.TableEntry, params filter.ParamLookup) (table.DocumentID, bool) {
	if node.Predicate == nil || params == nil {
		return table.DocumentID{}, false
	}
	e := *node.Predicate
	if e.And || e.Or || e.Not || e.CmpOp != filter.Eq {
		return table.DocumentID{}, false
	}

	pkCol, ok := pkColumnIndex(entry)
	if !ok {
		return table.DocumentID{}, false
	}

	var paramKey filter.Key
	switch {
	case e.LHS.Value == nil && !e.LHS.IsParam && e.LHS.Column == pkCol && e.RHS.IsParam:
		paramKey = e.RHS
	case e.RHS.Value == nil && !e.RHS.IsParam && e.RHS.Column == pkCol && e.LHS.IsParam:
		paramKey = e.LHS
	default:
		return table.DocumentID{}, false
	}

	v, ok := params(paramKey.Param)
	if !ok {
		return table.DocumentID{}, false
	}
	return DecodeDocumentID(v)
}

func pkColumnIndex(entry *catalog.TableEntry) (int, bool) {
	for i, name := range entry.Data.ColumnNames() {
		if name == "_id" {
			return i, true
		}
	}
	return 0, false
}

// DecodeDocumentID converts a bound value's 24-hex-character wire form (or
// raw 12-byte string) into a DocumentID, used both by PK-scan pattern
// matching and by every document-table insert to populate the PK map.
func DecodeDocumentID(v ltype.Value) (table.DocumentID, bool) {
	var id table.DocumentID
	if len(v.Str) == 24 {
		b, err := hex.DecodeString(v.Str)
		if err != nil || len(b) != 12 {
			return id, false
		}
		copy(id[:], b)
		return id, true
	}
	if len(v.Str) == 12 {
		copy(id[:], v.Str)
		return id, true
	}
	return id, false
}

func planAggregate(node *Node, cat *catalog.Catalog, params filter.ParamLookup) (ops.Operator, error) {
	if len(node.Children) != 1 {
		return nil, coldberr.New(coldberr.Internal, "planner: aggregate requires exactly one child")
	}
	scanOp, err := plan(node.Children[0], -1, cat, params)
	if err != nil {
		return nil, err
	}
	fullScan, ok := scanOp.(*ops.FullScan)
	if !ok {
		return nil, coldberr.New(coldberr.Internal, "planner: aggregate requires a full_scan child")
	}
	return ops.NewAggregation(fullScan, node.GroupBy, node.Aggregates, node.SortKeys), nil
}

func planInsert(node *Node, cat *catalog.Catalog, params filter.ParamLookup) (ops.Operator, error) {
	entry, ok := cat.FindTable(node.Namespace, node.Collection)
	if !ok {
		return nil, coldberr.Newf(coldberr.NotFound, "no such collection: %s.%s", node.Namespace, node.Collection)
	}

	if entry.Storage == catalog.DocumentTable && node.Documents != nil {
		sh := shred.New(entry.Schema)
		return &ops.OperatorInsert{
			Table:    entry.Data,
			Shredder: sh,
			Source:   ops.NewLiteralDocuments(node.Documents),
			PKColumn: "_id",
			PKOf:     DecodeDocumentID,
		}, nil
	}

	var chunkSrc ops.Operator
	switch {
	case node.Chunk != nil:
		chunkSrc = ops.NewLiteralChunk(node.Chunk)
	case len(node.Children) == 1:
		child, err := plan(node.Children[0], -1, cat, params)
		if err != nil {
			return nil, err
		}
		chunkSrc = child
	default:
		return nil, coldberr.New(coldberr.Internal, "planner: insert needs Documents, Chunk, or one child")
	}

	return &ops.OperatorInsert{
		Table:       entry.Data,
		ChunkSource: chunkSrc,
		PKColumn:    "_id",
		PKOf:        DecodeDocumentID,
	}, nil
}

func planDelete(node *Node, cat *catalog.Catalog, params filter.ParamLookup) (ops.Operator, error) {
	entry, ok := cat.FindTable(node.Namespace, node.Collection)
	if !ok {
		return nil, coldberr.Newf(coldberr.NotFound, "no such collection: %s.%s", node.Namespace, node.Collection)
	}
	if len(node.Children) < 1 {
		return nil, coldberr.New(coldberr.Internal, "planner: delete requires a left child")
	}
	left, err := plan(node.Children[0], -1, cat, params)
	if err != nil {
		return nil, err
	}
	var right ops.Operator
	if len(node.Children) > 1 {
		right, err = plan(node.Children[1], -1, cat, params)
		if err != nil {
			return nil, err
		}
	}
	return &ops.OperatorDelete{
		Table:     entry.Data,
		Left:      left,
		Right:     right,
		Predicate: node.Predicate,
		Params:    params,
		LeftRowID: node.RowID,
	}, nil
}

func planUpdate(node *Node, cat *catalog.Catalog, params filter.ParamLookup) (ops.Operator, error) {
	entry, ok := cat.FindTable(node.Namespace, node.Collection)
	if !ok {
		return nil, coldberr.Newf(coldberr.NotFound, "no such collection: %s.%s", node.Namespace, node.Collection)
	}
	if len(node.Children) < 1 {
		return nil, coldberr.New(coldberr.Internal, "planner: update requires a left child")
	}
	left, err := plan(node.Children[0], -1, cat, params)
	if err != nil {
		return nil, err
	}
	var right ops.Operator
	if len(node.Children) > 1 {
		right, err = plan(node.Children[1], -1, cat, params)
		if err != nil {
			return nil, err
		}
	}
	if node.Upsert && entry.Storage != catalog.DocumentTable && right != nil {
		return nil, coldberr.New(coldberr.Unsupported, "planner: UPDATE...JOIN upsert requires a document-table target")
	}
	return &ops.OperatorUpdate{
		Table:     entry.Data,
		Left:      left,
		Right:     right,
		Predicate: node.Predicate,
		Params:    params,
		Updates:   node.Updates,
		Upsert:    node.Upsert,
		RowID:     node.RowID,
	}, nil
}

// ExecuteDDL runs a DDL node directly against the catalog; DDL kinds have no
// operator-tree representation. create_index/create_type and their Drop
// counterparts are unsupported: secondary indexes and user-defined types are
// explicit non-goals. storage selects the CREATE TABLE ... WITH storage kind
// (catalog.Columns is the default when the option is absent).
func ExecuteDDL(node *Node, cat *catalog.Catalog, storage catalog.StorageKind, columnNames []string, columnTypes []ltype.Type) error {
	switch node.Kind {
	case CreateCollection:
		_, err := cat.CreateTable(node.Namespace, node.Collection, storage, columnNames, columnTypes)
		return err
	case CreateDatabase:
		return nil
	case DropCollection:
		cat.DropTable(node.Namespace, node.Collection)
		return nil
	case DropDatabase:
		return nil
	case CreateIndex, DropIndex:
		return coldberr.New(coldberr.Unsupported, "planner: secondary indexes are out of scope")
	case CreateType, DropType:
		return coldberr.New(coldberr.Unsupported, "planner: user-defined types are out of scope")
	default:
		return coldberr.Newf(coldberr.Internal, "planner: %d is not a DDL node", node.Kind)
	}
}
