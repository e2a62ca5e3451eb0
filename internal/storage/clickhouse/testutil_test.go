package clickhouse

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const schemaDir = "../migrations/clickhouse"

// newTestConn starts a ClickHouse container, creates the prices schema in
// database "advisor_test" and returns a connection to it.
func newTestConn(t *testing.T) *Conn {
	t.Helper()

	if testing.Short() {
		t.Skip("clickhouse integration test skipped in short mode")
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "clickhouse/clickhouse-server:24.1-alpine",
			ExposedPorts: []string{"9000/tcp"},
			Env: map[string]string{
				"CLICKHOUSE_DB":       "advisor_test",
				"CLICKHOUSE_USER":     "default",
				"CLICKHOUSE_PASSWORD": "",
			},
			WaitingFor: wait.ForAll(
				wait.ForLog("Application: Ready for connections").WithStartupTimeout(90*time.Second),
				wait.ForListeningPort("9000/tcp"),
			),
		},
		Started: true,
	})
	require.NoError(t, err, "start clickhouse container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate clickhouse container: %v", err)
		}
	})

	endpoint, err := container.PortEndpoint(ctx, "9000/tcp", "")
	require.NoError(t, err)

	conn, err := NewConn(ctx, fmt.Sprintf("clickhouse://%s/advisor_test", endpoint))
	require.NoError(t, err, "open connection")
	t.Cleanup(func() { conn.Close() })

	for _, stmt := range schemaStatements(t) {
		require.NoError(t, conn.Exec(ctx, stmt), "apply schema statement %q", stmt)
	}
	return conn
}

// schemaStatements splits the schema files into single statements, since the
// native protocol runs one statement per Exec. Comment lines are dropped.
func schemaStatements(t *testing.T) []string {
	t.Helper()

	schema := os.DirFS(schemaDir)
	names, err := fs.Glob(schema, "*.sql")
	require.NoError(t, err)

	var stmts []string
	for _, name := range names {
		body, err := fs.ReadFile(schema, name)
		require.NoError(t, err, "read %s", name)

		var kept strings.Builder
		for _, line := range strings.Split(string(body), "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				continue
			}
			kept.WriteString(line)
			kept.WriteByte('\n')
		}
		for _, stmt := range strings.Split(kept.String(), ";") {
			if stmt = strings.TrimSpace(stmt); stmt != "" {
				stmts = append(stmts, stmt)
			}
		}
	}
	return stmts
}
