package inject

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"runtime"
)

var (
	contextType = elem[context.Context]()
	errorType   = elem[error]()
)

// Hook attaches a function to a lifecycle state: the engine invokes it
// while the component transitions into the hook's target state. The
// function may take a leading context.Context; every other parameter is
// an injection point resolved at the moment of invocation.
type Hook struct {
	state       State
	fn          reflect.Value
	paramStates map[int]State
}

// NewHook declares a hook invoked when the component reaches state.
func NewHook(state State, fn any) Hook {
	return Hook{state: state, fn: reflect.ValueOf(fn)}
}

// WithState raises the minimum state the param-th injected parameter must
// have reached before the hook may run. The leading context parameter, if
// any, does not count. Declaring a state also makes the parameter
// mandatory.
func (h Hook) WithState(param int, state State) Hook {
	states := make(map[int]State, len(h.paramStates)+1)
	maps.Copy(states, h.paramStates)
	states[param] = state
	h.paramStates = states
	return h
}

// State returns the target state of the hook.
func (h Hook) State() State { return h.state }

// signature validates the hook function and returns its injected
// parameter types.
func (h Hook) signature() (params []reflect.Type, hasCtx bool, err error) {
	if !h.fn.IsValid() || h.fn.Kind() != reflect.Func {
		return nil, false, fmt.Errorf("%w: not a function", ErrInvalidHook)
	}
	t := h.fn.Type()
	if t.NumOut() > 1 || (t.NumOut() == 1 && t.Out(0) != errorType) {
		return nil, false, fmt.Errorf("%w: %s must return error or nothing", ErrInvalidHook, h.name())
	}
	if t.IsVariadic() {
		return nil, false, fmt.Errorf("%w: %s must not be variadic", ErrInvalidHook, h.name())
	}

	start := 0
	if t.NumIn() > 0 && t.In(0) == contextType {
		hasCtx = true
		start = 1
	}
	for i := start; i < t.NumIn(); i++ {
		params = append(params, t.In(i))
	}
	return params, hasCtx, nil
}

func (h Hook) name() string {
	if !h.fn.IsValid() || h.fn.Kind() != reflect.Func {
		return "<invalid>"
	}
	if fn := runtime.FuncForPC(h.fn.Pointer()); fn != nil {
		return fn.Name()
	}
	return h.fn.Type().String()
}

// HookProvider is implemented by components that attach lifecycle hooks.
// It is consulted once, right after the instance is created; the returned
// hooks are fixed for the lifetime of the container.
type HookProvider interface {
	LifecycleHooks() []Hook
}
