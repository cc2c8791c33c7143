// File: api/control.go
// Package api
// Author: momentics
//
// Runtime statistics and debug contract exposed by the server facade.
// There is no live config reload in a reactor-chat server (no config file
// to reload), so Control covers only stats and debug probes.

package api

// Control exposes live metrics and debug introspection for a running
// Server, surfaced by adapters.ControlAdapter.
type Control interface {
	// Stats returns aggregated runtime counters (connection count,
	// messages processed, parse errors) merged with debug probe output.
	Stats() map[string]any

	// RegisterDebugProbe dynamically registers a named debug probe
	// function, invoked on every Stats() call.
	RegisterDebugProbe(name string, fn func() any)

	// Set records a named runtime stat, surfaced by the next Stats call.
	Set(key string, value any)
}
