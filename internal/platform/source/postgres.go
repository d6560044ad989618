package source

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/termbridge/termbridge/internal/domain/terminology"
)

// NewPool creates a pgx connection pool for deployments that keep the
// published datasets in Postgres instead of workbook files.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// LoadNamastePG reads one NAMASTE system's table. Columns map
// positionally, same as the workbook loader; values of any column type
// are coerced to their string form, and rows that fail to decode are
// skipped rather than failing the load.
func LoadNamastePG(ctx context.Context, pool *pgxpool.Pool, table string) ([]terminology.NamasteRecord, error) {
	rows, err := pool.Query(ctx, "SELECT * FROM "+pgx.Identifier{table}.Sanitize())
	if err != nil {
		return nil, fmt.Errorf("query table %s: %w", table, err)
	}
	defer rows.Close()

	var records []terminology.NamasteRecord
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			continue
		}
		raw := make([]string, 0, len(values))
		for _, v := range values {
			raw = append(raw, coerceString(v))
		}
		if len(raw) > 0 && isHeaderRow(raw) {
			continue
		}
		if rec, ok := namasteRecordFromRow(raw); ok {
			records = append(records, rec)
		}
	}
	if err := rows.Err(); err != nil {
		return records, fmt.Errorf("scan table %s: %w", table, err)
	}
	return records, nil
}

func coerceString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

// TableSource names one Postgres-backed source table.
type TableSource struct {
	Name  string
	Table string
}

// PGChecker reports connectivity and table presence for Postgres
// sources.
type PGChecker struct {
	pool   *pgxpool.Pool
	tables []TableSource
}

// NewPGChecker creates a checker for the given source tables.
func NewPGChecker(pool *pgxpool.Pool, tables []TableSource) *PGChecker {
	return &PGChecker{pool: pool, tables: tables}
}

// CheckSources implements terminology.SourceChecker.
func (c *PGChecker) CheckSources(ctx context.Context) []terminology.SourceStatus {
	existing, err := c.listTables(ctx)
	statuses := make([]terminology.SourceStatus, 0, len(c.tables))
	for _, src := range c.tables {
		st := terminology.SourceStatus{Source: src.Name, Tables: []string{}}
		switch {
		case err != nil:
			st.Status = fmt.Sprintf("Error: %v", err)
		case existing[src.Table]:
			st.Status = "Connected"
			st.Tables = []string{src.Table}
		default:
			st.Status = "Table not found"
		}
		statuses = append(statuses, st)
	}
	return statuses
}

func (c *PGChecker) listTables(ctx context.Context) (map[string]bool, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT tablename FROM pg_catalog.pg_tables WHERE schemaname = 'public' ORDER BY tablename`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables[name] = true
	}
	return tables, rows.Err()
}
