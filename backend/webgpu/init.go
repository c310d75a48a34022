package webgpu

import (
	"github.com/cockroachdb/errors"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
)

// BackendWebGPU is the name the backend registers under.
const BackendWebGPU = "webgpu"

// Config passes an existing HAL device and queue through
// DeviceCreationDesc.Options.
type Config struct {
	Device  hal.Device
	Queue   hal.Queue
	Options []Option
}

// Backend opens webgpu devices. DeviceCreationDesc.Options may carry a
// Config, a gpucontext.DeviceProvider, a []Option or nothing. Without a
// device to wrap, the backend opens the first Vulkan adapter; the HAL
// Vulkan backend must then be linked in:
//
//	import _ "github.com/gogpu/wgpu/hal/vulkan"
type Backend struct{}

// Name returns BackendWebGPU.
func (Backend) Name() string { return BackendWebGPU }

// CreateDevice returns a device for desc.
func (Backend) CreateDevice(desc rhi.DeviceCreationDesc) (rhi.Device, error) {
	switch desc.GraphicsAPI {
	case rhi.GraphicsAPINone, rhi.GraphicsAPIWebGPU, rhi.GraphicsAPIVulkan:
	default:
		return nil, errors.Wrapf(ErrNotSupported, "webgpu: graphics API %v", desc.GraphicsAPI)
	}
	switch o := desc.Options.(type) {
	case Config:
		return New(o.Device, o.Queue, o.Options...)
	case *Config:
		if o == nil {
			return nil, ErrBadOptions
		}
		return New(o.Device, o.Queue, o.Options...)
	case gpucontext.DeviceProvider:
		return NewFromProvider(o)
	case []Option:
		return open(o)
	case nil:
		return open(nil)
	default:
		return nil, ErrBadOptions
	}
}

// open creates a device on a HAL adapter the rhi device owns, preferring
// discrete and integrated GPUs.
func open(opts []Option) (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, errors.Wrap(ErrNotSupported, "webgpu: no HAL backend linked in")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, nativeError("create instance", err, false)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, errors.Wrap(rhi.Unsupported, "webgpu: no GPU adapters found")
	}
	selected := &adapters[0]
	for i := range adapters {
		t := adapters[i].Info.DeviceType
		if t == gputypes.DeviceTypeDiscreteGPU || t == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	limits := gputypes.DefaultLimits()
	openDev, err := selected.Adapter.Open(gputypes.Features(0), limits)
	if err != nil {
		instance.Destroy()
		return nil, nativeError("open device", err, true)
	}
	opts = append([]Option{WithLimits(limits)}, opts...)
	d, err := New(openDev.Device, openDev.Queue, opts...)
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	d.desc.Adapter.Name = selected.Info.Name
	d.onDestroy = append(d.onDestroy, openDev.Device.Destroy, instance.Destroy)
	return d, nil
}

// init registers the backend on package import.
//
// To make it available to rhi.LookupBackend:
//
//	import _ "github.com/gogpu/rhi/backend/webgpu"
func init() {
	rhi.RegisterBackend(Backend{})
}
