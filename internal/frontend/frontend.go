// Package frontend wraps the already-vendored TiDB SQL parser to read two
// real surface forms: a schema-carrying CREATE TABLE statement (with a
// trailing WITH(...) storage option clause) and a restricted WHERE
// comparison expression. It is deliberately thin: no SELECT/INSERT/JOIN/
// GROUP BY grammar is accepted, since the planner's Go API (coldb/internal/
// planner.Plan) is the real, documented entry point into the engine.
package frontend

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/opcode"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"

	"coldb/internal/catalog"
	"coldb/internal/coldberr"
	"coldb/internal/filter"
	"coldb/internal/ltype"
)

// CreateTable is the parsed result of one CREATE TABLE statement: the
// column list plus the storage option carried in its trailing WITH clause.
type CreateTable struct {
	Name        string
	ColumnNames []string
	ColumnTypes []ltype.Type
	Storage     catalog.StorageKind
}

// withClausePattern matches a trailing `WITH (storage='...')` clause. TiDB's
// CREATE TABLE grammar has no WITH(...) production of its own, so it is
// stripped before parsing and read back out here.
var withClausePattern = regexp.MustCompile(`(?is)\)\s*WITH\s*\(\s*storage\s*=\s*'([^']*)'\s*\)\s*;?\s*$`)

// Parser parses the thin CREATE TABLE and WHERE surface forms this engine
// exposes over SQL text.
type Parser struct {
	p *parser.Parser
}

// New returns a Parser ready to parse statements.
func New() *Parser {
	return &Parser{p: parser.New()}
}

// ParseCreateTable parses a single `CREATE TABLE name (...) WITH
// (storage='documents'|'columns'|'document_table')` statement. The WITH
// clause is optional; its absence defaults to catalog.Columns.
func (fp *Parser) ParseCreateTable(sql string) (*CreateTable, error) {
	storage := catalog.Columns
	stripped := sql
	if m := withClausePattern.FindStringSubmatchIndex(sql); m != nil {
		raw := sql[m[2]:m[3]]
		s, err := parseStorageKind(raw)
		if err != nil {
			return nil, err
		}
		storage = s
		stripped = sql[:m[0]] + ")" + sql[m[1]:]
	}

	stmtNodes, _, err := fp.p.Parse(stripped, "", "")
	if err != nil {
		return nil, coldberr.Wrap(coldberr.ParseError, err, "frontend: parse CREATE TABLE")
	}
	if len(stmtNodes) != 1 {
		return nil, coldberr.Newf(coldberr.ParseError, "frontend: expected exactly one statement, got %d", len(stmtNodes))
	}
	create, ok := stmtNodes[0].(*ast.CreateTableStmt)
	if !ok {
		return nil, coldberr.New(coldberr.ParseError, "frontend: statement is not CREATE TABLE")
	}

	names := make([]string, 0, len(create.Cols))
	types := make([]ltype.Type, 0, len(create.Cols))
	for _, col := range create.Cols {
		names = append(names, col.Name.Name.O)
		t, err := mapColumnType(col.Tp.String())
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}

	return &CreateTable{
		Name:        create.Table.Name.O,
		ColumnNames: names,
		ColumnTypes: types,
		Storage:     storage,
	}, nil
}

func parseStorageKind(raw string) (catalog.StorageKind, error) {
	switch catalog.StorageKind(raw) {
	case catalog.Documents, catalog.Columns, catalog.DocumentTable:
		return catalog.StorageKind(raw), nil
	default:
		return "", coldberr.Newf(coldberr.ParseError, "frontend: unsupported storage %q", raw)
	}
}

// mapColumnType maps a MySQL column type string, as rendered by TiDB's
// ast.FieldType.String(), to this engine's logical type system.
func mapColumnType(raw string) (ltype.Type, error) {
	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "tinyint"):
		return ltype.NewTinyInt(), nil
	case strings.HasPrefix(lower, "smallint"):
		return ltype.NewSmallInt(), nil
	case strings.HasPrefix(lower, "bigint"):
		return ltype.NewBigInt(), nil
	case strings.HasPrefix(lower, "int"), strings.HasPrefix(lower, "integer"):
		return ltype.NewInteger(), nil
	case strings.HasPrefix(lower, "float"):
		return ltype.NewFloat(), nil
	case strings.HasPrefix(lower, "double"), strings.HasPrefix(lower, "decimal"), strings.HasPrefix(lower, "numeric"):
		return ltype.NewDouble(), nil
	case strings.HasPrefix(lower, "bool"):
		return ltype.NewBoolean(), nil
	case strings.HasPrefix(lower, "date") && !strings.HasPrefix(lower, "datetime"):
		return ltype.NewDate(), nil
	case strings.HasPrefix(lower, "datetime"), strings.HasPrefix(lower, "timestamp"):
		return ltype.NewTimestamp(), nil
	case strings.HasPrefix(lower, "varchar"), strings.HasPrefix(lower, "char"),
		strings.HasPrefix(lower, "text"), strings.HasPrefix(lower, "json"):
		return ltype.NewStringLiteral(), nil
	default:
		return ltype.Type{}, coldberr.Newf(coldberr.Unsupported, "frontend: unsupported column type %q", raw)
	}
}

// ParseWhere parses a restricted `<path> <op> <value>` comparison, optionally
// composed with AND/OR/NOT, into a filter.Expr. columnIndex resolves a JSON
// pointer path to its column index in the target table.
func (fp *Parser) ParseWhere(where string, columnIndex func(path string) (int, bool)) (filter.Expr, error) {
	sql := "SELECT 1 WHERE " + where
	stmtNodes, _, err := fp.p.Parse(sql, "", "")
	if err != nil {
		return filter.Expr{}, coldberr.Wrap(coldberr.ParseError, err, "frontend: parse WHERE")
	}
	if len(stmtNodes) != 1 {
		return filter.Expr{}, coldberr.New(coldberr.ParseError, "frontend: expected exactly one WHERE expression")
	}
	sel, ok := stmtNodes[0].(*ast.SelectStmt)
	if !ok || sel.Where == nil {
		return filter.Expr{}, coldberr.New(coldberr.ParseError, "frontend: malformed WHERE expression")
	}

	return convertExpr(sel.Where, columnIndex)
}

func convertExpr(e ast.ExprNode, columnIndex func(string) (int, bool)) (filter.Expr, error) {
	switch n := e.(type) {
	case *ast.BinaryOperationExpr:
		switch n.Op {
		case opcode.LogicAnd:
			l, err := convertExpr(n.L, columnIndex)
			if err != nil {
				return filter.Expr{}, err
			}
			r, err := convertExpr(n.R, columnIndex)
			if err != nil {
				return filter.Expr{}, err
			}
			return filter.And(l, r), nil
		case opcode.LogicOr:
			l, err := convertExpr(n.L, columnIndex)
			if err != nil {
				return filter.Expr{}, err
			}
			r, err := convertExpr(n.R, columnIndex)
			if err != nil {
				return filter.Expr{}, err
			}
			return filter.Or(l, r), nil
		default:
			return convertComparison(n, columnIndex)
		}
	case *ast.UnaryOperationExpr:
		if n.Op == opcode.Not {
			child, err := convertExpr(n.V, columnIndex)
			if err != nil {
				return filter.Expr{}, err
			}
			return filter.Not(child), nil
		}
	case *ast.PatternRegexpExpr:
		return convertRegex(n, columnIndex)
	}
	return filter.Expr{}, coldberr.New(coldberr.Unsupported, "frontend: unsupported WHERE expression form")
}

func convertComparison(n *ast.BinaryOperationExpr, columnIndex func(string) (int, bool)) (filter.Expr, error) {
	op, err := mapOp(n.Op)
	if err != nil {
		return filter.Expr{}, err
	}
	lhs, err := convertOperand(n.L, columnIndex)
	if err != nil {
		return filter.Expr{}, err
	}
	rhs, err := convertOperand(n.R, columnIndex)
	if err != nil {
		return filter.Expr{}, err
	}
	return filter.Leaf(op, lhs, rhs), nil
}

func convertRegex(n *ast.PatternRegexpExpr, columnIndex func(string) (int, bool)) (filter.Expr, error) {
	lhs, err := convertOperand(n.Expr, columnIndex)
	if err != nil {
		return filter.Expr{}, err
	}
	rhs, err := convertOperand(n.Pattern, columnIndex)
	if err != nil {
		return filter.Expr{}, err
	}
	leaf := filter.Leaf(filter.Regex, lhs, rhs)
	if n.Not {
		return filter.Not(leaf), nil
	}
	return leaf, nil
}

func mapOp(op opcode.Op) (filter.Op, error) {
	switch op {
	case opcode.EQ:
		return filter.Eq, nil
	case opcode.NE:
		return filter.Ne, nil
	case opcode.LT:
		return filter.Lt, nil
	case opcode.LE:
		return filter.Le, nil
	case opcode.GT:
		return filter.Gt, nil
	case opcode.GE:
		return filter.Ge, nil
	default:
		return 0, coldberr.Newf(coldberr.Unsupported, "frontend: unsupported comparison operator %v", op)
	}
}

func convertOperand(e ast.ExprNode, columnIndex func(string) (int, bool)) (filter.Key, error) {
	switch n := e.(type) {
	case *ast.ColumnNameExpr:
		path := n.Name.Name.O
		idx, ok := columnIndex(path)
		if !ok {
			return filter.Key{}, coldberr.Newf(coldberr.NotFound, "frontend: unknown column %q", path)
		}
		return filter.ColumnKey(idx, filter.Left), nil
	case ast.ValueExpr:
		v, err := valueFromDatum(n)
		if err != nil {
			return filter.Key{}, err
		}
		return filter.ConstKey(v), nil
	default:
		return filter.Key{}, coldberr.New(coldberr.Unsupported, "frontend: unsupported WHERE operand")
	}
}

// valueFromDatum converts a parsed SQL literal to a logical value, using
// the fmt %v form of ast.ValueExpr's GetValue as the simplest
// dialect-independent path: that printed form is re-parsed as an int, float,
// or bool, and otherwise kept as a string.
func valueFromDatum(v ast.ValueExpr) (ltype.Value, error) {
	s := fmt.Sprintf("%v", v.GetValue())
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ltype.IntValue(ltype.BigInt, i), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return ltype.FloatValue(ltype.Double, f), nil
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return ltype.BoolValue(b), nil
	}
	return ltype.StringValue(s), nil
}
