package rhi

import (
	"errors"
	"fmt"
	"sync"
)

// Backend opens devices on one native API or implementation.
type Backend interface {
	Name() string
	CreateDevice(desc DeviceCreationDesc) (Device, error)
}

// ErrNoBackend is returned when no registered backend matches a request.
var ErrNoBackend = errors.New("rhi: no backend registered")

var (
	backendsMu sync.RWMutex
	backends   []Backend
)

// RegisterBackend registers b. It is meant to be called from init functions
// in backend packages. A backend registered under an existing name replaces
// the previous one.
func RegisterBackend(b Backend) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	for i, old := range backends {
		if old.Name() == b.Name() {
			backends[i] = b
			return
		}
	}
	backends = append(backends, b)
}

// UnregisterBackend removes the backend with the given name.
// This is useful for testing.
func UnregisterBackend(name string) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	for i, b := range backends {
		if b.Name() == name {
			backends = append(backends[:i], backends[i+1:]...)
			return
		}
	}
}

// Backends returns the registered backends in registration order.
func Backends() []Backend {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	return append([]Backend(nil), backends...)
}

// LookupBackend returns the backend registered under name. An empty name
// selects the first registered backend.
func LookupBackend(name string) (Backend, error) {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	if len(backends) == 0 {
		return nil, ErrNoBackend
	}
	if name == "" {
		return backends[0], nil
	}
	for _, b := range backends {
		if b.Name() == name {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoBackend, name)
}
