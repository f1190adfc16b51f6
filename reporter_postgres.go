package osmlinks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/pkg/errors"
)

const (
	postgresFlagsTable = "osmlinks_flags"
	postgresTimeout    = 10 * time.Second
)

// PostgresReporter stores flags in PostgreSQL table. Repeated flag for the same run, check and way replaces previous one
type PostgresReporter struct {
	pool      *pgxpool.Pool
	tableName string
	ownsPool  bool
}

// NewPostgresReporter connects to database and prepares table
func NewPostgresReporter(ctx context.Context, dsn string) (*PostgresReporter, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "Can't parse DSN")
	}
	poolCfg.MaxConns = 8
	poolCfg.MaxConnIdleTime = 10 * time.Second

	connectCtx, cancel := context.WithTimeout(ctx, postgresTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, errors.Wrap(err, "Can't connect")
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "Can't ping")
	}
	reporter, err := NewPostgresReporterWithPool(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	reporter.ownsPool = true
	return reporter, nil
}

// NewPostgresReporterWithPool uses existing pool. Pool is not closed by Close
func NewPostgresReporterWithPool(ctx context.Context, pool *pgxpool.Pool) (*PostgresReporter, error) {
	reporter := &PostgresReporter{
		pool:      pool,
		tableName: postgresFlagsTable,
	}
	if err := reporter.ensureTable(ctx); err != nil {
		return nil, err
	}
	return reporter, nil
}

func (reporter *PostgresReporter) ensureTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			run_id        UUID NOT NULL,
			check_name    TEXT NOT NULL,
			osm_way_id    BIGINT NOT NULL,
			edges         BIGINT[] NOT NULL,
			verdict       TEXT NOT NULL,
			highway       TEXT NOT NULL,
			suggested     TEXT,
			access        TEXT,
			length_meters DOUBLE PRECISION NOT NULL,
			limit_meters  DOUBLE PRECISION,
			geohash       TEXT,
			instruction   TEXT NOT NULL,
			geom_wkt      TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (run_id, check_name, osm_way_id)
		)
	`, reporter.tableName)
	queryCtx, cancel := context.WithTimeout(ctx, postgresTimeout)
	defer cancel()
	_, err := reporter.pool.Exec(queryCtx, query)
	if err != nil {
		return errors.Wrap(err, "Can't create flags table")
	}
	return nil
}

func (reporter *PostgresReporter) Report(ctx context.Context, flag *Flag) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, check_name, osm_way_id, edges, verdict, highway, suggested, access, length_meters, limit_meters, geohash, instruction, geom_wkt)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (run_id, check_name, osm_way_id) DO UPDATE SET
			edges = EXCLUDED.edges,
			verdict = EXCLUDED.verdict,
			highway = EXCLUDED.highway,
			suggested = EXCLUDED.suggested,
			access = EXCLUDED.access,
			length_meters = EXCLUDED.length_meters,
			limit_meters = EXCLUDED.limit_meters,
			geohash = EXCLUDED.geohash,
			instruction = EXCLUDED.instruction,
			geom_wkt = EXCLUDED.geom_wkt
	`, reporter.tableName)

	edges := make([]int64, len(flag.Edges))
	for i, id := range flag.Edges {
		edges[i] = int64(id)
	}
	var suggested, access *string
	if flag.Verdict.Suggested != HIGHWAY_UNDEFINED {
		value := flag.Verdict.Suggested.String()
		suggested = &value
	}
	if flag.Verdict.Access != "" {
		access = &flag.Verdict.Access
	}
	var limit *float64
	if flag.Verdict.LimitMeters > 0 {
		limit = &flag.Verdict.LimitMeters
	}

	queryCtx, cancel := context.WithTimeout(ctx, postgresTimeout)
	defer cancel()
	_, err := reporter.pool.Exec(queryCtx, query,
		flag.RunID, flag.CheckName, int64(flag.WayID), edges,
		flag.Verdict.Type.String(), flag.Verdict.Highway.String(), suggested, access,
		flag.Verdict.LengthMeters, limit, flag.Geohash, flag.Instruction, wkt.MarshalString(flag.Geom),
	)
	if err != nil {
		return errors.Wrapf(err, "Can't save flag for way %d", flag.WayID)
	}
	return nil
}

// CountFlags returns number of stored flags for the run
func (reporter *PostgresReporter) CountFlags(ctx context.Context, runID uuid.UUID) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE run_id = $1`, reporter.tableName)
	var count int
	err := reporter.pool.QueryRow(ctx, query, runID).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "Can't count flags")
	}
	return count, nil
}

func (reporter *PostgresReporter) Close() error {
	if reporter.ownsPool {
		reporter.pool.Close()
	}
	return nil
}
