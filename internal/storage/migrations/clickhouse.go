package migrations

import (
	"context"
	"fmt"
	"strings"

	chstore "robo-advisor-lab/internal/storage/clickhouse"
)

// RunClickhouseMigrations creates the DSN's database if needed and applies all
// embedded SQL files. Returns a connection to the target database for reuse.
func RunClickhouseMigrations(ctx context.Context, dsn string) (*chstore.Conn, error) {
	dbName, err := databaseFromDSN(dsn)
	if err != nil {
		return nil, err
	}

	adminConn, err := chstore.NewConnWithDatabase(ctx, dsn, "")
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse admin: %w", err)
	}
	if err := adminConn.Exec(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", dbName)); err != nil {
		adminConn.Close()
		return nil, fmt.Errorf("create database %s: %w", dbName, err)
	}
	if err := adminConn.Close(); err != nil {
		return nil, fmt.Errorf("close admin connection: %w", err)
	}

	conn, err := chstore.NewConnWithDatabase(ctx, dsn, dbName)
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse db: %w", err)
	}

	files, err := readMigrations(ClickhouseFS, "clickhouse")
	if err != nil {
		conn.Close()
		return nil, err
	}

	for _, f := range files {
		stmts, err := splitStatements(f.sql)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("split migration %s: %w", f.name, err)
		}
		// the native protocol runs one statement per Exec
		for _, stmt := range stmts {
			if err := conn.Exec(ctx, stmt); err != nil {
				conn.Close()
				return nil, fmt.Errorf("apply migration %s: %w", f.name, err)
			}
		}
	}

	return conn, nil
}

// splitStatements drops "--" comment lines and splits the rest on semicolons.
// A semicolon inside a single-quoted literal is rejected rather than split.
func splitStatements(input string) ([]string, error) {
	var filtered []string
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		filtered = append(filtered, line)
	}
	joined := strings.Join(filtered, "\n")

	inString := false
	for i := 0; i < len(joined); i++ {
		switch {
		case joined[i] == '\'' && i+1 < len(joined) && joined[i+1] == '\'':
			i++
		case joined[i] == '\'':
			inString = !inString
		case joined[i] == ';' && inString:
			return nil, fmt.Errorf("semicolon inside string literal at offset %d", i)
		}
	}

	var stmts []string
	for _, part := range strings.Split(joined, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, nil
}

func databaseFromDSN(dsn string) (string, error) {
	return chstore.DatabaseName(dsn)
}
