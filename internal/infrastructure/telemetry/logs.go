package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogsConfig holds log export configuration
type LogsConfig struct {
	Enabled           bool
	CollectorEndpoint string
	ServiceName       string
	Insecure          bool
}

// LoggerProvider owns the SDK logger provider used by the zap bridge
type LoggerProvider struct {
	provider    *sdklog.LoggerProvider
	serviceName string
	logger      *zap.Logger
}

// NewLoggerProvider builds an OTLP/gRPC exporting log provider and installs it globally
func NewLoggerProvider(ctx context.Context, cfg LogsConfig, logger *zap.Logger) (*LoggerProvider, error) {
	lp := &LoggerProvider{serviceName: cfg.ServiceName, logger: logger}
	if !cfg.Enabled {
		return lp, nil
	}

	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP logs exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	lp.provider = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	global.SetLoggerProvider(lp.provider)

	logger.Info("Log export enabled", zap.String("collector_endpoint", cfg.CollectorEndpoint))
	return lp, nil
}

// Core returns a zap core shipping entries to the provider, or nil when export is off.
// Pass it to logger.New as an extra core.
func (lp *LoggerProvider) Core() zapcore.Core {
	if lp.provider == nil {
		return nil
	}
	return otelzap.NewCore(lp.serviceName, otelzap.WithLoggerProvider(lp.provider))
}

// IsEnabled reports whether logs are exported
func (lp *LoggerProvider) IsEnabled() bool {
	return lp.provider != nil
}

// Shutdown flushes pending records
func (lp *LoggerProvider) Shutdown(ctx context.Context) error {
	if lp.provider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := lp.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown logger provider: %w", err)
	}
	return nil
}
