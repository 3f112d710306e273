package mysqlexport

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	_ "github.com/go-sql-driver/mysql"

	"coldb/internal/coldberr"
	"coldb/internal/ltype"
)

// Options configures an Exporter: the DSN to connect to and an optional
// diagnostic writer, mirroring the teacher applier's Options.Out/In shape.
type Options struct {
	DSN string
	Out io.Writer
}

// Exporter renders a table's schema as MySQL DDL and, optionally, executes
// it against a live MySQL instance. It holds no rollback or preflight
// machinery: exporting is a one-way, best-effort debugging aid.
type Exporter struct {
	db        *sql.DB
	options   Options
	generator *Generator
	out       io.Writer
}

// NewExporter returns an Exporter configured with options.
func NewExporter(options Options) *Exporter {
	out := options.Out
	if out == nil {
		out = io.Discard
	}
	return &Exporter{
		options:   options,
		generator: NewGenerator(),
		out:       out,
	}
}

func (e *Exporter) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(e.out, format, args...)
}

// Connect opens and pings a connection to options.DSN.
func (e *Exporter) Connect(ctx context.Context) error {
	db, err := sql.Open("mysql", e.options.DSN)
	if err != nil {
		return coldberr.Wrap(coldberr.Internal, err, "mysqlexport: open connection")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return coldberr.Wrap(coldberr.Internal, err, "mysqlexport: ping connection")
	}
	e.db = db
	return nil
}

// Close closes the underlying connection, if one was opened.
func (e *Exporter) Close() error {
	if e.db == nil {
		return nil
	}
	return e.db.Close()
}

// Render returns the CREATE TABLE statement for name without executing it.
func (e *Exporter) Render(name string, columnNames []string, columnTypes []ltype.Type) (string, error) {
	return e.generator.GenerateCreateTable(name, columnNames, columnTypes)
}

// Export executes the rendered CREATE TABLE statement against the connected
// MySQL instance. Call Connect first.
func (e *Exporter) Export(ctx context.Context, name string, columnNames []string, columnTypes []ltype.Type) error {
	if e.db == nil {
		return coldberr.New(coldberr.Internal, "mysqlexport: not connected")
	}
	ddl, err := e.Render(name, columnNames, columnTypes)
	if err != nil {
		return err
	}
	e.printf("%s\n", ddl)
	if _, err := e.db.ExecContext(ctx, ddl); err != nil {
		return coldberr.Wrap(coldberr.Internal, err, "mysqlexport: execute CREATE TABLE")
	}
	return nil
}
