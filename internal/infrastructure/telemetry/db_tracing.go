package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds database tracing options
type DBTracingConfig struct {
	Enabled bool
	// LogFullSQL keeps bound variables in db.statement
	LogFullSQL      bool
	SlowQueryThresh time.Duration
	DBName          string
}

// DBTracingPlugin registers otelgorm plus slow-query annotations
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates the plugin
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

type queryStartKey struct{}

// Register installs otelgorm and the timing callbacks on db
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.config.Enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBName)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	err := registerAround(db, "coderr:trace",
		func(string) func(*gorm.DB) { return markQueryStart },
		func(string) func(*gorm.DB) { return p.annotate },
	)
	if err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
	)
	return nil
}

// gormCallbackRegistrar is the subset of gorm's callback builder used here
type gormCallbackRegistrar interface {
	Register(name string, fn func(*gorm.DB)) error
}

// registerAround installs before/after callbacks around every gorm processor.
// The factories receive the operation name (create, query, update, delete, row, raw).
func registerAround(db *gorm.DB, prefix string, before, after func(op string) func(*gorm.DB)) error {
	cb := db.Callback()
	processors := []struct {
		op     string
		before gormCallbackRegistrar
		after  gormCallbackRegistrar
	}{
		{"create", cb.Create().Before("gorm:create"), cb.Create().After("gorm:create")},
		{"query", cb.Query().Before("gorm:query"), cb.Query().After("gorm:query")},
		{"update", cb.Update().Before("gorm:update"), cb.Update().After("gorm:update")},
		{"delete", cb.Delete().Before("gorm:delete"), cb.Delete().After("gorm:delete")},
		{"row", cb.Row().Before("gorm:row"), cb.Row().After("gorm:row")},
		{"raw", cb.Raw().Before("gorm:raw"), cb.Raw().After("gorm:raw")},
	}
	for _, proc := range processors {
		if err := proc.before.Register(prefix+"_start_"+proc.op, before(proc.op)); err != nil {
			return err
		}
		if err := proc.after.Register(prefix+"_end_"+proc.op, after(proc.op)); err != nil {
			return err
		}
	}
	return nil
}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (p *DBTracingPlugin) annotate(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > p.config.SlowQueryThresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query", trace.WithAttributes(
			attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
		))
	}
}
