package webgpu

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/streamer"
)

// Device is an rhi.Device running on a HAL device and queue.
//
// Device is safe for concurrent use. Command buffers are not: each one must
// be recorded by a single goroutine at a time.
type Device struct {
	hal   hal.Device
	queue hal.Queue

	desc         rhi.DeviceDesc
	ifaces       rhi.Interfaces
	logger       *slog.Logger
	label        string
	fenceTimeout time.Duration
	queues       [rhi.QueueTypeMaxNum]*queue

	// submitMu serializes submissions. idle is signaled after every
	// submission; retired command buffers are freed once it passes their
	// value.
	submitMu  sync.Mutex
	idle      hal.Fence
	idleValue uint64
	retired   []retiredCommandBuffer

	warned    sync.Map
	closeOnce sync.Once
	onDestroy []func()
}

type retiredCommandBuffer struct {
	buf   hal.CommandBuffer
	value uint64
}

var _ rhi.Device = (*Device)(nil)

// New returns a device that records into device and submits to hq. The
// caller keeps ownership of both; Destroy releases only what the rhi device
// created.
func New(device hal.Device, hq hal.Queue, opts ...Option) (*Device, error) {
	if device == nil || hq == nil {
		return nil, ErrBadProvider
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = rhi.Logger()
	}

	idle, err := device.CreateFence()
	if err != nil {
		return nil, nativeError("create idle fence", err, false)
	}

	d := &Device{
		hal:          device,
		queue:        hq,
		desc:         descFromLimits(o.label, o.limits),
		logger:       o.logger,
		label:        o.label,
		fenceTimeout: o.fenceTimeout,
		idle:         idle,
	}
	for t := range rhi.QueueTypeMaxNum {
		q := &queue{queueType: t}
		q.dev = d
		d.queues[t] = q
	}

	c := &core{d}
	d.ifaces = rhi.Interfaces{
		Version:  rhi.CurrentVersion(),
		Core:     c,
		Helper:   &helper{d},
		Streamer: streamer.New(c),
	}

	d.logger.Info("webgpu: device created",
		"label", d.label,
		"maxBufferSize", d.desc.BufferMaxSize,
		"maxTexture2D", d.desc.Texture2DMaxDim)
	return d, nil
}

// halProvider is implemented by hosts that share HAL objects, such as the
// gogpu application runtime.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// NewFromProvider returns a device sharing the GPU device of a host
// application. The provider must also expose its HAL device and queue.
func NewFromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Device, error) {
	if provider == nil {
		return nil, ErrBadProvider
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrBadProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok {
		return nil, ErrBadProvider
	}
	hq, ok := hp.HalQueue().(hal.Queue)
	if !ok {
		return nil, ErrBadProvider
	}
	d, err := New(device, hq, opts...)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("webgpu: device shared with host",
		"surfaceFormat", provider.SurfaceFormat())
	return d, nil
}

// descFromLimits reports HAL limits in rhi terms. WebGPU has no ray tracing,
// mesh shaders, shading rate or programmable sample locations.
func descFromLimits(label string, l gputypes.Limits) rhi.DeviceDesc {
	return rhi.DeviceDesc{
		Adapter: rhi.AdapterDesc{
			Name: label,
		},
		GraphicsAPI: rhi.GraphicsAPIWebGPU,
		Version:     rhi.CurrentVersion(),

		ViewportMaxNum:    1,
		ViewportBoundsMin: -32768,
		ViewportBoundsMax: 32767,

		AttachmentMaxDim:      clamp16(l.MaxTextureDimension2D),
		AttachmentLayerMaxNum: clamp16(l.MaxTextureArrayLayers),
		ColorAttachmentMaxNum: uint32(l.MaxColorAttachments),

		ColorSampleMaxNum:   4,
		DepthSampleMaxNum:   4,
		StencilSampleMaxNum: 4,

		Texture1DMaxDim:         clamp16(l.MaxTextureDimension1D),
		Texture2DMaxDim:         clamp16(l.MaxTextureDimension2D),
		Texture3DMaxDim:         clamp16(l.MaxTextureDimension3D),
		TextureArrayLayerMaxNum: clamp16(l.MaxTextureArrayLayers),
		BufferMaxSize:           uint64(l.MaxBufferSize),

		UploadBufferTextureRowAlignment:     copyBytesPerRowAlignment,
		UploadBufferTextureSliceAlignment:   copyBytesPerRowAlignment,
		BufferShaderResourceOffsetAlignment: uint32(l.MinStorageBufferOffsetAlignment),
		ConstantBufferOffsetAlignment:       uint32(l.MinUniformBufferOffsetAlignment),

		PipelineLayoutDescriptorSetMaxNum: uint32(l.MaxBindGroups),

		DescriptorSetSamplerMaxNum:        uint32(l.MaxSamplersPerShaderStage),
		DescriptorSetConstantBufferMaxNum: uint32(l.MaxUniformBuffersPerShaderStage),
		DescriptorSetStorageBufferMaxNum:  uint32(l.MaxStorageBuffersPerShaderStage),
		DescriptorSetTextureMaxNum:        uint32(l.MaxSampledTexturesPerShaderStage),

		ComputeShaderWorkGroupMaxNum: [3]uint32{
			uint32(l.MaxComputeWorkgroupsPerDimension),
			uint32(l.MaxComputeWorkgroupsPerDimension),
			uint32(l.MaxComputeWorkgroupsPerDimension),
		},
		ComputeShaderSharedMemoryMaxSize: uint32(l.MaxComputeWorkgroupStorageSize),

		IsIndependentFrontAndBackStencilSupported: true,
	}
}

// copyBytesPerRowAlignment is the WebGPU row pitch alignment for
// buffer-texture copies.
const copyBytesPerRowAlignment = 256

func clamp16[T ~uint32 | ~uint64](v T) uint16 {
	if v > 0xffff {
		return 0xffff
	}
	return uint16(v)
}

// Desc returns the device description.
func (d *Device) Desc() *rhi.DeviceDesc { return &d.desc }

// Interfaces returns the function tables of the device.
func (d *Device) Interfaces() rhi.Interfaces { return d.ifaces }

// HalDevice returns the underlying HAL device.
func (d *Device) HalDevice() hal.Device { return d.hal }

// Destroy waits for submitted work and releases the objects the device owns.
// The HAL device and queue are left to their owner, unless the device was
// opened by the registered backend.
func (d *Device) Destroy() {
	d.closeOnce.Do(func() {
		d.submitMu.Lock()
		if d.idleValue > 0 {
			if _, err := d.hal.Wait(d.idle, d.idleValue, d.fenceTimeout); err != nil {
				d.logger.Warn("webgpu: wait on destroy failed", "err", err)
			}
		}
		for _, r := range d.retired {
			d.hal.FreeCommandBuffer(r.buf)
		}
		d.retired = nil
		d.hal.DestroyFence(d.idle)
		d.submitMu.Unlock()

		for _, fn := range d.onDestroy {
			fn()
		}
		d.logger.Debug("webgpu: device destroyed", "label", d.label)
	})
}

// submit sends bufs to the queue, signals f to value when f is not nil, and
// always signals the idle fence after it. The caller holds submitMu.
func (d *Device) submit(bufs []hal.CommandBuffer, f hal.Fence, value uint64) error {
	if f != nil {
		if err := d.queue.Submit(bufs, f, value); err != nil {
			return nativeError("submit", err, false)
		}
		bufs = nil
	}
	d.idleValue++
	if err := d.queue.Submit(bufs, d.idle, d.idleValue); err != nil {
		return nativeError("submit", err, false)
	}
	return nil
}

// unsupported logs once per device that a feature WebGPU cannot express
// was requested and dropped.
func (d *Device) unsupported(feature string) {
	if _, seen := d.warned.LoadOrStore(feature, struct{}{}); !seen {
		d.logger.Warn("webgpu: unsupported feature ignored", "feature", feature)
	}
}

// collect frees retired command buffers the GPU is done with. The caller
// holds submitMu.
func (d *Device) collect() {
	n := 0
	for _, r := range d.retired {
		if done, err := d.hal.Wait(d.idle, r.value, 0); err != nil || !done {
			break
		}
		d.hal.FreeCommandBuffer(r.buf)
		n++
	}
	d.retired = append(d.retired[:0], d.retired[n:]...)
}

// waitIdle blocks until everything submitted so far has completed.
func (d *Device) waitIdle() error {
	d.submitMu.Lock()
	defer d.submitMu.Unlock()
	if err := d.submit(nil, nil, 0); err != nil {
		return err
	}
	ok, err := d.hal.Wait(d.idle, d.idleValue, d.fenceTimeout)
	if err != nil {
		return nativeError("wait", err, false)
	}
	if !ok {
		return ErrTimeout
	}
	d.collect()
	return nil
}
