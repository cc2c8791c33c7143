// File: adapters/control_adapter.go
// Package adapters
// Author: momentics <momentics@gmail.com>
//
// Control adapter implementing api.Control over control package
// primitives: an ad-hoc stats snapshot (components Set named values as
// they work) merged with on-demand debug probes. Scrape-based
// monitoring lives separately in metrics.Registry, served over /metrics
// by the server facade.

package adapters

import (
	"github.com/momentics/reactor-chat/api"
	"github.com/momentics/reactor-chat/control"
)

var _ api.Debug = (*control.DebugProbes)(nil)

// ControlAdapter bridges api.Control to internal control primitives.
type ControlAdapter struct {
	stats *control.StatsRegistry
	debug *control.DebugProbes
}

// NewControlAdapter constructs a ControlAdapter with empty stats and
// probe registries.
func NewControlAdapter() api.Control {
	return &ControlAdapter{
		stats: control.NewStatsRegistry(),
		debug: control.NewDebugProbes(),
	}
}

// Stats returns merged ad-hoc stats and debug probe data.
func (c *ControlAdapter) Stats() map[string]any {
	combined := make(map[string]any)
	for k, v := range c.stats.Snapshot() {
		combined["stats."+k] = v
	}
	for k, v := range c.debug.DumpState() {
		combined["debug."+k] = v
	}
	return combined
}

// RegisterDebugProbe registers a named debug probe function.
func (c *ControlAdapter) RegisterDebugProbe(name string, fn func() any) {
	c.debug.RegisterProbe(name, fn)
}

// Set records a named runtime stat, surfaced by the next Stats call.
func (c *ControlAdapter) Set(key string, value any) {
	c.stats.Set(key, value)
}
