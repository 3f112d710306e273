package mysqlexport

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"

	"coldb/internal/ltype"
)

type testMySQLContainer struct {
	container *mysql.MySQLContainer
	dsn       string
}

func setupMySQL(t *testing.T) *testMySQLContainer {
	t.Helper()
	ctx := context.Background()

	mysqlContainer, err := mysql.Run(ctx, "mysql:8.0",
		mysql.WithDatabase("coldb"),
		mysql.WithUsername("root"),
		mysql.WithPassword("testpass"),
	)
	require.NoError(t, err, "failed to start MySQL container")

	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(mysqlContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := mysqlContainer.ConnectionString(ctx, "parseTime=true")
	require.NoError(t, err, "failed to get connection string")

	return &testMySQLContainer{container: mysqlContainer, dsn: dsn}
}

func TestExporterExportIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tc := setupMySQL(t)
	ctx := context.Background()

	exporter := NewExporter(Options{DSN: tc.dsn})
	require.NoError(t, exporter.Connect(ctx))
	t.Cleanup(func() { _ = exporter.Close() })

	err := exporter.Export(ctx, "people", []string{"name", "age"}, []ltype.Type{ltype.NewStringLiteral(), ltype.NewBigInt()})
	require.NoError(t, err)

	db, err := sql.Open("mysql", tc.dsn)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.QueryContext(ctx, "SELECT name, age FROM people")
	require.NoError(t, err)
	defer rows.Close()
	assert.NoError(t, rows.Err())
}

func TestExporterExportWithoutConnectFails(t *testing.T) {
	exporter := NewExporter(Options{DSN: "unused"})
	err := exporter.Export(context.Background(), "t", []string{"a"}, []ltype.Type{ltype.NewBigInt()})
	assert.Error(t, err)
}
