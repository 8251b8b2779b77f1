package inject

import (
	typetostring "github.com/samber/go-type-to-string"
)

// Key is a canonical registration key a component declares for itself.
// Registering a component that declares a key also files it under that
// key, so lookups by the key's type resolve to the component.
type Key struct {
	name      string
	overwrite bool
}

// KeyFor declares a key under the type T. The key overwrites: registering
// a component carrying it clears earlier candidates filed under T.
func KeyFor[T any]() Key {
	return Key{name: typetostring.GetType[T](), overwrite: true}
}

// NoOverwrite returns a copy of k that appends to the key's candidate
// list instead of replacing it. The newest candidate still becomes the
// lookup default.
func (k Key) NoOverwrite() Key {
	k.overwrite = false
	return k
}

// Name returns the key string components are filed under.
func (k Key) Name() string { return k.name }

// Overwrite reports whether registering under k clears earlier candidates.
func (k Key) Overwrite() bool { return k.overwrite }

// Keyed is implemented by component types that declare canonical keys.
// Embedding a marker struct that implements Keyed spreads the declaration
// to every component embedding it, the way an annotation on a shared
// ancestor covers all of its subtypes.
type Keyed interface {
	InjectKeys() []Key
}
