// Package tracing turns model hooks into trace records and statistics.
package tracing

import "github.com/sarchlab/boxstack/sim"

// A Tracer observes a model through its hooks.
type Tracer interface {
	sim.Hook
}

// CollectTrace registers the tracer with every hookable domain.
func CollectTrace(tracer Tracer, domains ...sim.Hookable) {
	for _, d := range domains {
		d.AcceptHook(tracer)
	}
}
