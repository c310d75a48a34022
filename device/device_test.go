package device_test

import (
	"errors"
	"testing"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/backend/null"
	"github.com/gogpu/rhi/device"
	"github.com/gogpu/rhi/validation"
)

func TestCreate(t *testing.T) {
	tests := []struct {
		name       string
		validation bool
	}{
		{"plain", false},
		{"validated", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, err := device.Create(rhi.DeviceCreationDesc{
				Backend:          null.BackendNull,
				EnableValidation: tt.validation,
				Logger:           rhi.NopLogger(),
				Options:          []null.Option{null.WithLogger(rhi.NopLogger())},
			})
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			t.Cleanup(dev.Destroy)

			_, validated := dev.(*validation.Device)
			if validated != tt.validation {
				t.Errorf("validated = %v, want %v", validated, tt.validation)
			}
			if err := rhi.RequireInterfaces(dev, rhi.InterfaceCore, rhi.InterfaceHelper); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestCreateGraphicsAPIHint(t *testing.T) {
	dev, err := device.Create(rhi.DeviceCreationDesc{
		Backend:     null.BackendNull,
		GraphicsAPI: rhi.GraphicsAPIVulkan,
		Options:     []null.Option{null.WithLogger(rhi.NopLogger())},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer dev.Destroy()
	if got := dev.Desc().GraphicsAPI; got != rhi.GraphicsAPIVulkan {
		t.Errorf("GraphicsAPI = %v, want Vulkan", got)
	}
}

func TestCreateErrors(t *testing.T) {
	tests := []struct {
		name string
		desc rhi.DeviceCreationDesc
		want error
	}{
		{"unknown backend", rhi.DeviceCreationDesc{Backend: "metal9"}, rhi.ErrNoBackend},
		{"bad options", rhi.DeviceCreationDesc{Backend: null.BackendNull, Options: "fast"}, null.ErrBadOptions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, err := device.Create(tt.desc)
			if dev != nil {
				dev.Destroy()
				t.Fatal("device created")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMustCreatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustCreate did not panic")
		}
	}()
	device.MustCreate(rhi.DeviceCreationDesc{Backend: "metal9"})
}
