// Package inject is a dependency-injection container with a staged
// lifecycle engine.
//
// Component types are registered with a [Builder]; Build instantiates
// each of them exactly once, binds configuration values onto their
// config-tagged fields, wires their inject-tagged fields, and drives
// every component through the ordered lifecycle states Created,
// Initialized, Resolved and Started. Stop later drives them to Stopped.
//
// A component declares its needs through struct tags and small optional
// interfaces:
//
//	type Server struct {
//		Repo *Repository `inject:""`            // wired after creation
//		Pool *Pool       `inject:"initialized"` // Pool must be Initialized first
//		Port int         `config:"port" default:"8080"`
//	}
//
//	func (s *Server) LifecycleHooks() []inject.Hook {
//		return []inject.Hook{inject.NewHook(inject.Started, s.listen)}
//	}
//
// Mutual references between components are legal as long as they do not
// demand a state the other side cannot reach: all instances exist before
// any reference is wired. When the lifecycle engine cannot make progress
// it fails the build, naming the stalled components and, when possible,
// the cycle that caused the stall.
//
// Lookups scan instances newest-registration-first, which makes the most
// recently registered implementation of a key the default one. Lookup
// targets may be pointers to structs, embedded ancestor structs, or
// interfaces.
package inject
