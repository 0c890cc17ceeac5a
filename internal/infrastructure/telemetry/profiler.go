package telemetry

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// ProfilerConfig holds Pyroscope settings
type ProfilerConfig struct {
	Enabled         bool
	ServerAddress   string
	ApplicationName string
	// Allocation and goroutine profiles are collected in addition to CPU
	IncludeMemory bool
}

// Profiler wraps a running Pyroscope session
type Profiler struct {
	profiler *pyroscope.Profiler
	logger   *zap.Logger
	once     sync.Once
}

// NewProfiler starts continuous profiling. Disabled config yields an inert profiler.
func NewProfiler(cfg ProfilerConfig, logger *zap.Logger) (*Profiler, error) {
	p := &Profiler{logger: logger}
	if !cfg.Enabled {
		return p, nil
	}
	if cfg.ServerAddress == "" {
		return nil, errors.New("profiler server address is required")
	}
	if cfg.ApplicationName == "" {
		return nil, errors.New("profiler application name is required")
	}

	tags := map[string]string{}
	if hostname, err := os.Hostname(); err == nil {
		tags["hostname"] = hostname
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ApplicationName,
		ServerAddress:   cfg.ServerAddress,
		Logger:          pyroscopeLogger{logger.Named("pyroscope").Sugar()},
		Tags:            tags,
		ProfileTypes:    profileTypes(cfg.IncludeMemory),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start Pyroscope profiler: %w", err)
	}
	p.profiler = profiler

	logger.Info("Continuous profiling enabled",
		zap.String("server_address", cfg.ServerAddress),
		zap.String("application_name", cfg.ApplicationName),
	)
	return p, nil
}

func profileTypes(includeMemory bool) []pyroscope.ProfileType {
	types := []pyroscope.ProfileType{pyroscope.ProfileCPU}
	if includeMemory {
		types = append(types,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		)
	}
	return types
}

// IsEnabled reports whether a session is running
func (p *Profiler) IsEnabled() bool {
	return p.profiler != nil
}

// Stop ends the session. Safe to call more than once.
func (p *Profiler) Stop() error {
	if p.profiler == nil {
		return nil
	}
	var err error
	p.once.Do(func() {
		err = p.profiler.Stop()
	})
	return err
}

type pyroscopeLogger struct {
	s *zap.SugaredLogger
}

func (l pyroscopeLogger) Infof(format string, args ...any)  { l.s.Infof(format, args...) }
func (l pyroscopeLogger) Debugf(format string, args ...any) { l.s.Debugf(format, args...) }
func (l pyroscopeLogger) Errorf(format string, args ...any) { l.s.Errorf(format, args...) }
