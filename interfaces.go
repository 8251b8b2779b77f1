package inject

import (
	"context"
	"iter"
)

// Injector is the lookup surface of a built container. Components may
// declare an injection point of this type (or of *Container) to receive
// the container itself; that reference sits above the component graph
// and creates no ownership cycle.
type Injector interface {
	// Get retrieves the first instance assignable to t.
	Get(t Type) (any, bool)

	// Stream yields every instance assignable to t.
	Stream(t Type) iter.Seq[any]

	// Injectables yields the registered component types.
	Injectables() iter.Seq[Type]

	// InjectInto populates inject-tagged fields on a caller-owned struct.
	InjectInto(target any) error

	// HealthCheck verifies the health of every component that opts in.
	HealthCheck(ctx context.Context) error

	// Stop drives every component to Stopped.
	Stop(ctx context.Context) error
}

// HealthChecker is an optional interface a component may implement.
// Container.HealthCheck calls it; the container itself never does so
// during build or stop.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
