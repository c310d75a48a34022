package null

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/rhi"
)

// object is embedded in every handle.
type object struct {
	dev    *Device
	id     uint64
	native uint64
	name   atomic.Pointer[string]
}

func (o *object) init(d *Device) {
	o.dev = d
	o.id = d.newID()
	o.native = o.id
}

func (o *object) SetDebugName(name string) { o.name.Store(&name) }

// NativeObject returns the object id, or the adopted native handle for
// objects created through the Wrapper table.
func (o *object) NativeObject() uint64 { return o.native }

// DebugName returns the last name set with SetDebugName.
func (o *object) DebugName() string {
	if p := o.name.Load(); p != nil {
		return *p
	}
	return ""
}

func (o *object) device() *Device { return o.dev }

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
}

type commandBuffer struct {
	object

	mu        sync.Mutex
	recording bool
	ops       []func()
}

func (c *commandBuffer) push(op func()) {
	c.mu.Lock()
	c.ops = append(c.ops, op)
	c.mu.Unlock()
}

// execute runs the recorded operations in order.
func (c *commandBuffer) execute() {
	c.mu.Lock()
	ops := c.ops
	c.mu.Unlock()
	for _, op := range ops {
		op()
	}
}

type fence struct {
	object
	value atomic.Uint64
}

type descriptorPool struct {
	object
	desc rhi.DescriptorPoolDesc

	mu   sync.Mutex
	sets uint32
}

type descriptorKind uint8

const (
	bufferView descriptorKind = iota
	textureView
	sampler
	accelerationStructureView
)

type descriptor struct {
	object
	kind    descriptorKind
	buffer  *buffer
	texture *texture
}

type pipelineLayout struct {
	object
	setNum uint32
}

type descriptorSet struct {
	object
	pool *descriptorPool
}

type pipeline struct {
	object
	groupNum uint32
}

type buffer struct {
	object
	desc rhi.BufferDesc

	mu   sync.Mutex
	data []byte
}

func (b *buffer) BufferDesc() *rhi.BufferDesc { return &b.desc }

// bytes returns the backing memory, allocating it on first use. The caller
// must hold b.mu.
func (b *buffer) bytes() []byte {
	if b.data == nil {
		b.data = make([]byte, b.desc.Size)
	}
	return b.data
}

// Bytes returns a copy of the buffer contents.
func (b *buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.bytes()...)
}

type texture struct {
	object
	desc rhi.TextureDesc
}

func (t *texture) TextureDesc() *rhi.TextureDesc { return &t.desc }

type queryPool struct {
	object
	queryType rhi.QueryType
	capacity  uint32
}

func (p *queryPool) QueryType() rhi.QueryType { return p.queryType }

type accelerationStructure struct {
	object
	asType            rhi.AccelerationStructureType
	size              uint64
	buildScratchSize  uint64
	updateScratchSize uint64
}

type micromap struct {
	object
	size             uint64
	buildScratchSize uint64
}

type swapChain struct {
	object
	textures []rhi.Texture

	mu    sync.Mutex
	index uint32
}
