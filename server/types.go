// File: server/types.go
// Author: momentics <momentics@gmail.com>
//
// Config and DefaultConfig for the reactor-chat Server facade.

package server

// Config holds the parameters for one reactor-chat server instance.
type Config struct {
	// ListenPort is the port the Reactor engine binds. Only this port is
	// ever bound.
	ListenPort int

	// ExtraPorts are additional CLI-supplied ports, accepted and logged
	// as unused.
	ExtraPorts []int

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string
	// LogEncoding is "console" or "json".
	LogEncoding string

	// MetricsAddr, if non-empty, serves a Prometheus /metrics endpoint on
	// this address (e.g. ":9090"). Empty disables the HTTP surface
	// entirely; the wire protocol itself carries no metrics.
	MetricsAddr string
}

// DefaultConfig returns the server's compiled-in defaults. There is no
// server-side config file, only these defaults and CLI args.
func DefaultConfig() *Config {
	return &Config{
		ListenPort:  8888,
		LogLevel:    "info",
		LogEncoding: "console",
		MetricsAddr: "",
	}
}
