package rhi

import (
	"errors"
	"testing"
)

type fakeBackend struct {
	name string
	dev  Device
}

func (b fakeBackend) Name() string { return b.name }

func (b fakeBackend) CreateDevice(DeviceCreationDesc) (Device, error) {
	return b.dev, nil
}

type fakeDevice struct {
	ifaces Interfaces
}

func (d *fakeDevice) Desc() *DeviceDesc      { return &DeviceDesc{} }
func (d *fakeDevice) Interfaces() Interfaces { return d.ifaces }
func (d *fakeDevice) Destroy()               {}

func saveBackends(t *testing.T) {
	t.Helper()
	backendsMu.Lock()
	saved := backends
	backends = nil
	backendsMu.Unlock()
	t.Cleanup(func() {
		backendsMu.Lock()
		backends = saved
		backendsMu.Unlock()
	})
}

func TestLookupBackendEmpty(t *testing.T) {
	saveBackends(t)
	if _, err := LookupBackend(""); !errors.Is(err, ErrNoBackend) {
		t.Errorf("LookupBackend() error = %v, want ErrNoBackend", err)
	}
}

func TestRegisterBackend(t *testing.T) {
	saveBackends(t)

	RegisterBackend(fakeBackend{name: "a"})
	RegisterBackend(fakeBackend{name: "b"})

	b, err := LookupBackend("")
	if err != nil {
		t.Fatalf("LookupBackend(\"\") error = %v", err)
	}
	if b.Name() != "a" {
		t.Errorf("default backend = %q, want %q", b.Name(), "a")
	}
	if b, err = LookupBackend("b"); err != nil || b.Name() != "b" {
		t.Errorf("LookupBackend(b) = %v, %v", b, err)
	}
	if _, err = LookupBackend("missing"); !errors.Is(err, ErrNoBackend) {
		t.Errorf("LookupBackend(missing) error = %v, want ErrNoBackend", err)
	}

	// Same name replaces in place.
	dev := &fakeDevice{}
	RegisterBackend(fakeBackend{name: "a", dev: dev})
	if got := len(Backends()); got != 2 {
		t.Fatalf("len(Backends()) = %d, want 2", got)
	}
	b, _ = LookupBackend("a")
	if d, _ := b.CreateDevice(DeviceCreationDesc{}); d != dev {
		t.Error("re-registered backend was not replaced")
	}

	UnregisterBackend("a")
	if b, _ = LookupBackend(""); b.Name() != "b" {
		t.Errorf("after unregister default = %q, want b", b.Name())
	}
}

func TestRequireInterfaces(t *testing.T) {
	dev := &fakeDevice{ifaces: Interfaces{Version: CurrentVersion()}}
	if err := RequireInterfaces(dev); err != nil {
		t.Errorf("RequireInterfaces() with no kinds = %v", err)
	}
	err := RequireInterfaces(dev, InterfaceCore)
	if ResultOf(err) != Unsupported {
		t.Errorf("RequireInterfaces(Core) result = %v, want UNSUPPORTED", ResultOf(err))
	}

	old := &fakeDevice{ifaces: Interfaces{Version: Version{Major: 0, Minor: 9}}}
	if got := ResultOf(RequireInterfaces(old)); got != UnsatisfiedDependency {
		t.Errorf("version mismatch result = %v, want UNSATISFIED_DEPENDENCY", got)
	}
}
