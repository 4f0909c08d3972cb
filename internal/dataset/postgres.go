package dataset

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/JonMunkholm/agrimap/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultTable is the table read by PostgresSource when none is configured.
const DefaultTable = "businesses"

// PoolConfig holds connection pool settings for PostgresSource.
type PoolConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// PostgresSource reads the canonical columns from a table.
// Each column is cast in SQL so integer, numeric and varchar columns all scan
// into the record's nullable fields.
type PostgresSource struct {
	pool  *pgxpool.Pool
	table string
	name  string
}

// NewPostgresSource connects a pool and verifies it with a ping.
func NewPostgresSource(ctx context.Context, cfg PoolConfig, table string) (*PostgresSource, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	if table == "" {
		table = DefaultTable
	}
	return &PostgresSource{pool: pool, table: table, name: sourceName(cfg.URL, table)}, nil
}

// Name returns "postgres:<database>/<table>" without credentials.
func (s *PostgresSource) Name() string { return s.name }

// Close releases the pool.
func (s *PostgresSource) Close() {
	s.pool.Close()
}

// Load reads every row ordered by business id.
func (s *PostgresSource) Load(ctx context.Context) (*core.Dataset, error) {
	rows, err := s.pool.Query(ctx, selectQuery(s.table))
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", core.ErrDataLoad, s.table, err)
	}
	defer rows.Close()

	ds := &core.Dataset{Columns: core.CanonicalColumns()}
	for rows.Next() {
		var rec core.BusinessRecord
		if err := rows.Scan(scanTargets(&rec)...); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", core.ErrDataLoad, err)
		}
		core.DropNonFinite(&rec)
		ds.Records = append(ds.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", core.ErrDataLoad, err)
	}
	return ds, nil
}

// selectQuery lists the schema columns in canonical order.
func selectQuery(table string) string {
	cols := make([]string, len(core.Fields))
	for i, f := range core.Fields {
		col := pgx.Identifier{f.Name}.Sanitize()
		if f.Type == core.FieldNumeric {
			cols[i] = col + "::float8"
		} else {
			cols[i] = col + "::text"
		}
	}
	id := pgx.Identifier{"business_id"}.Sanitize()
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY %s NULLS LAST",
		strings.Join(cols, ", "),
		pgx.Identifier(strings.Split(table, ".")).Sanitize(),
		id,
	)
}

// scanTargets points each selected column at its record field.
func scanTargets(rec *core.BusinessRecord) []any {
	dest := make([]any, len(core.Fields))
	for i, f := range core.Fields {
		if f.Type == core.FieldNumeric {
			dest[i] = f.Number(rec)
		} else {
			dest[i] = f.Text(rec)
		}
	}
	return dest
}

func sourceName(rawURL, table string) string {
	db := "postgres"
	if u, err := url.Parse(rawURL); err == nil {
		if name := strings.TrimPrefix(u.Path, "/"); name != "" {
			db = name
		}
	}
	return "postgres:" + db + "/" + table
}
