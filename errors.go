package inject

import (
	"errors"
)

// Error variables used throughout the package
var (
	// ErrNotInstantiable is returned when a registered type cannot be
	// instantiated, for example when it is not a struct type.
	ErrNotInstantiable = errors.New("component type cannot be instantiated")

	// ErrMissingImplementation is returned when a required dependency has
	// no assignable instance in the container.
	ErrMissingImplementation = errors.New("could not find any installed implementation")

	// ErrConfigCoercion is returned when a configuration value cannot be
	// parsed into the declared type of its field.
	ErrConfigCoercion = errors.New("configuration value cannot be coerced")

	// ErrConfigSource is returned when a configuration source fails to load.
	ErrConfigSource = errors.New("configuration source failed")

	// ErrStuckGraph is returned when the lifecycle engine completes a full
	// pass without progress while components still have states to reach.
	ErrStuckGraph = errors.New("lifecycle engine made no progress")

	// ErrCyclicReference accompanies ErrStuckGraph when the stall can be
	// attributed to a dependency cycle crossing a state boundary.
	ErrCyclicReference = errors.New("cyclic reference crosses a state boundary")

	// ErrHookInvocation is returned when a lifecycle hook fails. The cause
	// is preserved in the error chain.
	ErrHookInvocation = errors.New("lifecycle hook failed")

	// ErrInvalidHook is returned when a declared hook is not a usable
	// function, for example when it returns anything other than an error.
	ErrInvalidHook = errors.New("invalid lifecycle hook")

	// ErrInvalidTag is returned when an inject or config struct tag is
	// malformed.
	ErrInvalidTag = errors.New("malformed struct tag")
)
