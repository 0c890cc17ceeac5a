package telemetry

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBMetricsConfig holds database metric options
type DBMetricsConfig struct {
	Enabled            bool
	SlowQueryThreshold time.Duration
}

// DBMetrics records query latency and exposes connection pool gauges
type DBMetrics struct {
	queryTotal     *Counter
	queryDuration  *Histogram
	slowQueryTotal *Counter
	poolReg        metric.Registration
	config         DBMetricsConfig
	logger         *zap.Logger
}

// NewDBMetrics creates the instruments. Pool gauges are observed from sqlDB
// on every collection; pass nil to skip them.
func NewDBMetrics(meter metric.Meter, sqlDB *sql.DB, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = 200 * time.Millisecond
	}

	m := &DBMetrics{config: cfg, logger: logger}
	var err error
	if m.queryTotal, err = NewCounter(meter, "db_query_total", "Database queries by operation", "{query}"); err != nil {
		return nil, err
	}
	if m.slowQueryTotal, err = NewCounter(meter, "db_slow_query_total", "Queries slower than the threshold", "{query}"); err != nil {
		return nil, err
	}
	m.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	if sqlDB != nil {
		if err := m.observePool(meter, sqlDB); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *DBMetrics) observePool(meter metric.Meter, sqlDB *sql.DB) error {
	conns, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Connections in the pool by state"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	maxConns, err := meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Maximum open connections"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}

	m.poolReg, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(maxConns, int64(stats.MaxOpenConnections))
		o.ObserveInt64(conns, int64(stats.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(conns, int64(stats.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(conns, int64(stats.OpenConnections), metric.WithAttributes(AttrDBState.String("open")))
		return nil
	}, conns, maxConns)
	return err
}

// RecordQuery records one executed statement
func (m *DBMetrics) RecordQuery(ctx context.Context, operation, table string, d time.Duration) {
	operation = strings.ToUpper(operation)
	if operation == "" {
		operation = "UNKNOWN"
	}
	m.queryTotal.Inc(ctx, AttrDBOperation.String(operation))
	m.queryDuration.RecordDuration(ctx, d, AttrDBOperation.String(operation))
	if d > m.config.SlowQueryThreshold {
		if table == "" {
			table = "unknown"
		}
		m.slowQueryTotal.Inc(ctx, AttrDBTable.String(table))
	}
}

// Register installs the timing callbacks on db
func (m *DBMetrics) Register(db *gorm.DB) error {
	if !m.config.Enabled {
		return nil
	}
	return registerAround(db, "coderr:metrics",
		func(string) func(*gorm.DB) { return markQueryStart },
		func(op string) func(*gorm.DB) {
			return func(db *gorm.DB) {
				ctx := db.Statement.Context
				if ctx == nil {
					return
				}
				start, ok := ctx.Value(queryStartKey{}).(time.Time)
				if !ok {
					return
				}
				verb, ok := processorVerbs[op]
				if !ok {
					verb = sqlVerb(db.Statement.SQL.String())
				}
				m.RecordQuery(ctx, verb, db.Statement.Table, time.Since(start))
			}
		},
	)
}

// Close unregisters the pool callback
func (m *DBMetrics) Close() error {
	if m.poolReg == nil {
		return nil
	}
	return m.poolReg.Unregister()
}

var processorVerbs = map[string]string{
	"create": "INSERT",
	"query":  "SELECT",
	"update": "UPDATE",
	"delete": "DELETE",
}

// sqlVerb returns the leading SQL keyword of a raw statement
func sqlVerb(sql string) string {
	sql = strings.ToUpper(strings.TrimSpace(sql))
	for _, verb := range []string{"SELECT", "INSERT", "UPDATE", "DELETE", "WITH"} {
		if strings.HasPrefix(sql, verb) {
			if verb == "WITH" {
				return "SELECT"
			}
			return verb
		}
	}
	return "OTHER"
}
