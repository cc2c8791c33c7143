// File: server/options.go
// Author: momentics <momentics@gmail.com>
//
// Functional options for Server construction.

package server

// Option customizes a Server's Config before it is started.
type Option func(*Config)

// WithMetricsAddr enables the Prometheus /metrics HTTP surface on addr.
func WithMetricsAddr(addr string) Option {
	return func(c *Config) { c.MetricsAddr = addr }
}

// WithLogLevel overrides the default "info" log level.
func WithLogLevel(level string) Option {
	return func(c *Config) { c.LogLevel = level }
}

// WithLogEncoding overrides the default "console" log encoding.
func WithLogEncoding(encoding string) Option {
	return func(c *Config) { c.LogEncoding = encoding }
}
