package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
)

// Pyroscope label names attached to request goroutines
const (
	ProfilingLabelRoute    = "route"
	ProfilingLabelMethod   = "method"
	ProfilingLabelResource = "resource"
)

// ProfilingConfig holds configuration for the profiling middleware.
type ProfilingConfig struct {
	Enabled          bool
	SkipPathPrefixes []string
}

// DefaultProfilingConfig skips health checks and the docs
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:          true,
		SkipPathPrefixes: []string{"/health", "/swagger", "/media"},
	}
}

// ProfilingWithConfig tags CPU and allocation samples taken while a request
// runs with its route, method and resource, so flame graphs can be split per endpoint.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		labels := profilingLabels(c)
		pyroscope.TagWrapper(c.Request.Context(), pyroscope.Labels(labels...), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func profilingLabels(c *gin.Context) []string {
	labels := []string{ProfilingLabelMethod, c.Request.Method}
	route := c.FullPath()
	if route == "" {
		return labels
	}
	labels = append(labels, ProfilingLabelRoute, route)
	if resource := resourceFromRoute(route); resource != "" {
		labels = append(labels, ProfilingLabelResource, resource)
	}
	return labels
}

// resourceFromRoute returns the first static segment after /api:
// "/api/offers/:id/" -> "offers"
func resourceFromRoute(route string) string {
	for _, part := range strings.Split(route, "/") {
		if part == "" || part == "api" || strings.HasPrefix(part, ":") || strings.HasPrefix(part, "*") {
			continue
		}
		return part
	}
	return ""
}
