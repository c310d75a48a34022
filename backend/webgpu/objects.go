package webgpu

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
)

// object is embedded in every handle.
type object struct {
	dev  *Device
	name atomic.Pointer[string]
}

func (o *object) SetDebugName(name string) { o.name.Store(&name) }

// NativeObject returns 0 for objects without a HAL resource behind them.
func (o *object) NativeObject() uint64 { return 0 }

func (o *object) label(kind string) string {
	if p := o.name.Load(); p != nil {
		return *p
	}
	return o.dev.label + " " + kind
}

func (o *object) device() *Device { return o.dev }

// nativeHandle returns the native handle of HAL resources that expose one.
func nativeHandle(r any) uint64 {
	if h, ok := r.(interface{ NativeHandle() uintptr }); ok {
		return uint64(h.NativeHandle())
	}
	return 0
}

type owned interface{ device() *Device }

// get resolves h to a handle of type T created by d.
func get[T owned](d *Device, h any) (T, bool) {
	o, ok := h.(T)
	if !ok || o.device() != d {
		var zero T
		return zero, false
	}
	return o, true
}

type queue struct {
	object
	queueType rhi.QueueType
}

type commandAllocator struct {
	object
	queue *queue

	mu   sync.Mutex
	cmds []*commandBuffer
}

type fence struct {
	object
	hal hal.Fence

	// signaled is the highest value submitted for signaling, completed the
	// highest value the GPU is known to have reached.
	signaled  atomic.Uint64
	completed atomic.Uint64
}

func (f *fence) NativeObject() uint64 { return nativeHandle(f.hal) }

// complete raises the completed value of f to v.
func (f *fence) complete(v uint64) { raise(&f.completed, v) }

// raise sets v to x unless v already holds a larger value.
func raise(v *atomic.Uint64, x uint64) {
	for {
		cur := v.Load()
		if cur >= x || v.CompareAndSwap(cur, x) {
			return
		}
	}
}

type buffer struct {
	object
	desc rhi.BufferDesc
	hal  hal.Buffer

	mu     sync.Mutex
	shadow []byte
	mapped bool
	mapOff uint64
	mapLen uint64
}

func (b *buffer) BufferDesc() *rhi.BufferDesc { return &b.desc }
func (b *buffer) NativeObject() uint64        { return uint64(b.hal.NativeHandle()) }

type texture struct {
	object
	desc rhi.TextureDesc
	hal  hal.Texture
}

func (t *texture) TextureDesc() *rhi.TextureDesc { return &t.desc }
func (t *texture) NativeObject() uint64          { return uint64(t.hal.NativeHandle()) }

type descriptorKind uint8

const (
	bufferView descriptorKind = iota
	textureView
	sampler
)

type descriptor struct {
	object
	kind descriptorKind

	// textureView
	texture  *texture
	view     hal.TextureView
	viewType rhi.TextureViewType

	// sampler
	sampler hal.Sampler

	// bufferView
	buffer *buffer
	offset uint64
	size   uint64
}

func (d *descriptor) NativeObject() uint64 {
	switch d.kind {
	case textureView:
		return uint64(d.view.NativeHandle())
	case sampler:
		return nativeHandle(d.sampler)
	default:
		return d.buffer.NativeObject()
	}
}

// setLayout is the bind group layout of one descriptor set. Range i starts
// at slot rangeStart[i]; dynamic constant buffers follow the ranges.
type setLayout struct {
	hal        hal.BindGroupLayout
	bindings   []uint32
	rangeStart []uint32
	rangeNum   []uint32
	dynamic    []uint32
}

func (l *setLayout) slotNum() int { return len(l.bindings) + len(l.dynamic) }

type pipelineLayout struct {
	object
	hal  hal.PipelineLayout
	sets []setLayout
}

type descriptorPool struct {
	object
	desc rhi.DescriptorPoolDesc

	mu   sync.Mutex
	sets []*descriptorSet
}

type descriptorSet struct {
	object
	pool   *descriptorPool
	layout *setLayout

	mu      sync.Mutex
	slots   []*descriptor
	group   hal.BindGroup
	dirty   bool
	retired []hal.BindGroup
}

type pipeline struct {
	object
	layout  *pipelineLayout
	render  hal.RenderPipeline
	compute hal.ComputePipeline
	modules []hal.ShaderModule

	// Vertex stream slots in pipeline order; streams bound through
	// CmdSetVertexBuffers are looked up by binding slot.
	streams []uint16
}

func (p *pipeline) isCompute() bool { return p.compute != nil }

func (p *pipeline) NativeObject() uint64 {
	if p.compute != nil {
		return nativeHandle(p.compute)
	}
	return nativeHandle(p.render)
}
