// Package registry provides namespaced name-to-implementation lookup tables.
package registry

import (
	"fmt"
	"strings"
)

// UnknownTypeError is returned when a key is not registered in a namespace
type UnknownTypeError struct {
	Namespace string
	Key       string
	Known     []string
}

func (e *UnknownTypeError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown %s %q: nothing registered", e.Namespace, e.Key)
	}
	return fmt.Sprintf("unknown %s %q (known: %s)", e.Namespace, e.Key, strings.Join(e.Known, ", "))
}

// DuplicateKeyError is returned when a key is registered twice in one namespace
type DuplicateKeyError struct {
	Namespace string
	Key       string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s %q is already registered", e.Namespace, e.Key)
}

// FrozenError is returned when registering into a registry after Freeze
type FrozenError struct {
	Namespace string
	Key       string
}

func (e *FrozenError) Error() string {
	return fmt.Sprintf("cannot register %s %q: registry is frozen", e.Namespace, e.Key)
}
