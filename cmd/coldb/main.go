// Package main is the coldb CLI: a thin, real surface over the engine's Go
// API (internal/planner.Plan), demonstrating create/insert/select/export-mysql
// end to end. It uses cobra, exactly as the teacher's own CLI mains do.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"coldb/internal/catalog"
	"coldb/internal/frontend"
	"coldb/internal/ltype"
	"coldb/internal/mysqlexport"
	"coldb/internal/ops"
	"coldb/internal/output"
	"coldb/internal/planner"
	"coldb/internal/shred"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "coldb",
		Short: "Embedded dynamic-schema columnar storage and query engine",
	}

	rootCmd.AddCommand(createCmd())
	rootCmd.AddCommand(insertCmd())
	rootCmd.AddCommand(selectCmd())
	rootCmd.AddCommand(exportMySQLCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

// --- state: a non-durable JSON snapshot bridging independent CLI
// invocations, since real persistence is out of scope (spec Non-goals).
// It records each table's declared schema plus, for document tables, the
// raw documents inserted so far; select/insert replay it through the real
// insert path to rebuild an in-memory catalog before acting.

type tableState struct {
	Storage     catalog.StorageKind `json:"storage"`
	ColumnNames []string            `json:"columnNames"`
	ColumnTypes []string            `json:"columnTypes"`
	Documents   []string            `json:"documents,omitempty"`
}

type snapshot struct {
	Tables map[string]*tableState `json:"tables"`
}

func loadSnapshot(path string) (*snapshot, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return &snapshot{Tables: map[string]*tableState{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("coldb: open state file: %w", err)
	}
	defer f.Close()

	var s snapshot
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return nil, fmt.Errorf("coldb: decode state file: %w", err)
	}
	if s.Tables == nil {
		s.Tables = map[string]*tableState{}
	}
	return &s, nil
}

func saveSnapshot(path string, s *snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("coldb: create state file: %w", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// rebuildCatalog replays every table's recorded schema and documents through
// the real planner.Insert path, producing a catalog equivalent to one that
// had never left memory.
func rebuildCatalog(s *snapshot) (*catalog.Catalog, error) {
	cat := catalog.New()
	for name, ts := range s.Tables {
		types, err := decodeTypes(ts.ColumnTypes)
		if err != nil {
			return nil, err
		}
		if _, err := cat.CreateTable("", name, ts.Storage, ts.ColumnNames, types); err != nil {
			return nil, err
		}
		if len(ts.Documents) == 0 {
			continue
		}
		docs := make([]shred.Document, len(ts.Documents))
		for i, d := range ts.Documents {
			docs[i] = shred.Document(d)
		}
		node := &planner.Node{Kind: planner.Insert, Collection: name, Documents: docs}
		op, err := planner.Plan(node, cat, nil)
		if err != nil {
			return nil, err
		}
		if err := op.Prepare(); err != nil {
			return nil, err
		}
		if _, err := op.Execute(ops.NewContext()); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

func decodeTypes(raw []string) ([]ltype.Type, error) {
	types := make([]ltype.Type, len(raw))
	for i, r := range raw {
		switch r {
		case "string":
			types[i] = ltype.NewStringLiteral()
		case "bigint":
			types[i] = ltype.NewBigInt()
		case "double":
			types[i] = ltype.NewDouble()
		case "boolean":
			types[i] = ltype.NewBoolean()
		default:
			return nil, fmt.Errorf("coldb: unknown recorded column type %q", r)
		}
	}
	return types, nil
}

func encodeTypes(types []ltype.Type) []string {
	out := make([]string, len(types))
	for i, t := range types {
		switch t.Tag {
		case ltype.StringLiteral:
			out[i] = "string"
		case ltype.BigInt:
			out[i] = "bigint"
		case ltype.Double:
			out[i] = "double"
		case ltype.Boolean:
			out[i] = "boolean"
		default:
			out[i] = "string"
		}
	}
	return out
}

// --- create ---

func createCmd() *cobra.Command {
	var statePath string
	cmd := &cobra.Command{
		Use:   "create <CREATE TABLE ... statement>",
		Short: "Create a collection from a CREATE TABLE ... WITH (storage='...') statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runCreate(args[0], statePath)
		},
	}
	cmd.Flags().StringVar(&statePath, "state", ".coldb-state.json", "Path to the engine's state snapshot file")
	return cmd
}

func runCreate(stmt, statePath string) error {
	s, err := loadSnapshot(statePath)
	if err != nil {
		return err
	}

	p := frontend.New()
	ct, err := p.ParseCreateTable(stmt)
	if err != nil {
		return err
	}
	if _, exists := s.Tables[ct.Name]; exists {
		return fmt.Errorf("coldb: collection %q already exists", ct.Name)
	}

	s.Tables[ct.Name] = &tableState{
		Storage:     ct.Storage,
		ColumnNames: ct.ColumnNames,
		ColumnTypes: encodeTypes(ct.ColumnTypes),
	}
	if err := saveSnapshot(statePath, s); err != nil {
		return err
	}
	log.Printf("created collection %s (storage=%s)", ct.Name, ct.Storage)
	return nil
}

// --- insert ---

func insertCmd() *cobra.Command {
	var statePath string
	cmd := &cobra.Command{
		Use:   "insert <collection>",
		Short: "Insert newline-delimited JSON documents read from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runInsert(args[0], statePath)
		},
	}
	cmd.Flags().StringVar(&statePath, "state", ".coldb-state.json", "Path to the engine's state snapshot file")
	return cmd
}

func runInsert(collection, statePath string) error {
	s, err := loadSnapshot(statePath)
	if err != nil {
		return err
	}
	ts, ok := s.Tables[collection]
	if !ok {
		return fmt.Errorf("coldb: no such collection: %s", collection)
	}
	if ts.Storage != catalog.DocumentTable {
		return fmt.Errorf("coldb: insert only supports document_table collections (non-goal: row-table CLI ingestion)")
	}

	cat, err := rebuildCatalog(s)
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(os.Stdin)
	var newDocs []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		newDocs = append(newDocs, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("coldb: read stdin: %w", err)
	}
	if len(newDocs) == 0 {
		log.Println("no documents read from stdin")
		return nil
	}

	docs := make([]shred.Document, len(newDocs))
	for i, d := range newDocs {
		docs[i] = shred.Document(d)
	}
	node := &planner.Node{Kind: planner.Insert, Collection: collection, Documents: docs}
	op, err := planner.Plan(node, cat, nil)
	if err != nil {
		return err
	}
	if err := op.Prepare(); err != nil {
		return err
	}
	if _, err := op.Execute(ops.NewContext()); err != nil {
		return err
	}

	ts.Documents = append(ts.Documents, newDocs...)
	entry, _ := cat.FindTable("", collection)
	ts.ColumnNames = entry.Data.ColumnNames()
	ts.ColumnTypes = encodeTypes(entry.Data.ColumnTypes())

	if err := saveSnapshot(statePath, s); err != nil {
		return err
	}
	log.Printf("inserted %d document(s) into %s", len(newDocs), collection)
	return nil
}

// --- select ---

func selectCmd() *cobra.Command {
	var statePath, where, format string
	cmd := &cobra.Command{
		Use:   "select <collection>",
		Short: "Scan a collection, optionally filtered by --where",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runSelect(args[0], where, format, statePath)
		},
	}
	cmd.Flags().StringVar(&statePath, "state", ".coldb-state.json", "Path to the engine's state snapshot file")
	cmd.Flags().StringVar(&where, "where", "", "Restricted WHERE comparison expression, e.g. \"age > 30\"")
	cmd.Flags().StringVarP(&format, "format", "f", "sql", "Output format: sql, json, or summary")
	return cmd
}

func runSelect(collection, where, format, statePath string) error {
	s, err := loadSnapshot(statePath)
	if err != nil {
		return err
	}
	if _, ok := s.Tables[collection]; !ok {
		return fmt.Errorf("coldb: no such collection: %s", collection)
	}

	cat, err := rebuildCatalog(s)
	if err != nil {
		return err
	}
	entry, _ := cat.FindTable("", collection)

	node := &planner.Node{Kind: planner.Match, Collection: collection}
	if where != "" {
		columnIndex := func(path string) (int, bool) {
			for i, n := range entry.Data.ColumnNames() {
				if n == path {
					return i, true
				}
			}
			return 0, false
		}
		expr, err := frontend.New().ParseWhere(where, columnIndex)
		if err != nil {
			return err
		}
		node.Predicate = &expr
	}

	op, err := planner.Plan(node, cat, nil)
	if err != nil {
		return err
	}
	if err := op.Prepare(); err != nil {
		return err
	}
	out, err := op.Execute(ops.NewContext())
	if err != nil {
		return err
	}

	formatter, err := output.NewFormatter(format)
	if err != nil {
		return err
	}
	text, err := formatter.FormatRows(out)
	if err != nil {
		return err
	}
	fmt.Print(text)
	return nil
}

// --- export-mysql ---

func exportMySQLCmd() *cobra.Command {
	var statePath, dsn string
	cmd := &cobra.Command{
		Use:   "export-mysql <collection>",
		Short: "Render (and optionally execute) a CREATE TABLE statement for collection against MySQL",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runExportMySQL(args[0], dsn, statePath)
		},
	}
	cmd.Flags().StringVar(&statePath, "state", ".coldb-state.json", "Path to the engine's state snapshot file")
	cmd.Flags().StringVar(&dsn, "dsn", "", "MySQL DSN to execute the CREATE TABLE against; if empty, only prints the DDL")
	return cmd
}

func runExportMySQL(collection, dsn, statePath string) error {
	s, err := loadSnapshot(statePath)
	if err != nil {
		return err
	}
	ts, ok := s.Tables[collection]
	if !ok {
		return fmt.Errorf("coldb: no such collection: %s", collection)
	}
	types, err := decodeTypes(ts.ColumnTypes)
	if err != nil {
		return err
	}

	exporter := mysqlexport.NewExporter(mysqlexport.Options{DSN: dsn, Out: os.Stdout})
	if dsn == "" {
		ddl, err := exporter.Render(collection, ts.ColumnNames, types)
		if err != nil {
			return err
		}
		fmt.Print(ddl + "\n")
		return nil
	}

	ctx := context.Background()
	if err := exporter.Connect(ctx); err != nil {
		return err
	}
	defer exporter.Close()
	return exporter.Export(ctx, collection, ts.ColumnNames, types)
}
