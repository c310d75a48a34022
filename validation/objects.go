package validation

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/rhi"
)

// object is the part shared by every wrapper: the owning device, the
// backend handle and the debug name.
type object[T rhi.Object] struct {
	dev       *Device
	impl      T
	name      atomic.Pointer[string]
	destroyed atomic.Bool
}

func (o *object[T]) init(dev *Device, impl T) {
	o.dev = dev
	o.impl = impl
}

// SetDebugName names the object and forwards the name to the backend.
func (o *object[T]) SetDebugName(name string) {
	o.name.Store(&name)
	o.impl.SetDebugName(name)
}

// NativeObject returns the backend's native handle.
func (o *object[T]) NativeObject() uint64 { return o.impl.NativeObject() }

// DebugName returns the name last set with SetDebugName.
func (o *object[T]) DebugName() string {
	if p := o.name.Load(); p != nil {
		return *p
	}
	return ""
}

func (o *object[T]) owner() *Device      { return o.dev }
func (o *object[T]) implHandle() T       { return o.impl }
func (o *object[T]) markDestroyed() bool { return !o.destroyed.Swap(true) }
func (o *object[T]) isDestroyed() bool   { return o.destroyed.Load() }

type wrapper[T rhi.Object] interface {
	comparable
	owner() *Device
	implHandle() T
	markDestroyed() bool
	isDestroyed() bool
}

// unwrap returns the wrapper behind h and its backend handle. A nil handle
// yields zero values and true. A handle that is not a wrapper of the right
// kind created by d yields false.
func unwrap[W wrapper[T], T rhi.Object](d *Device, h T) (W, T, bool) {
	var (
		w    W
		none T
	)
	if any(h) == nil {
		return w, none, true
	}
	w, ok := any(h).(W)
	if !ok || w.owner() != d {
		return w, none, false
	}
	return w, w.implHandle(), true
}

type commandQueue struct {
	object[rhi.CommandQueue]
	queueType rhi.QueueType
}

type commandAllocator struct {
	object[rhi.CommandAllocator]
	queue *commandQueue
}

type fence struct {
	object[rhi.Fence]
}

type descriptorPool struct {
	object[rhi.DescriptorPool]
	desc rhi.DescriptorPoolDesc

	mu      sync.Mutex
	setNum  uint32
	usedNum [rhi.DescriptorTypeMaxNum]uint32
}

// reserve accounts for setNum sets holding perType descriptors in total.
// On exhaustion nothing is reserved and the name of the exhausted resource
// is returned.
func (p *descriptorPool) reserve(setNum uint32, perType *[rhi.DescriptorTypeMaxNum]uint32) (exhausted string, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.setNum+setNum > p.desc.DescriptorSetMaxNum {
		return "descriptor sets", false
	}
	for t := range rhi.DescriptorTypeMaxNum {
		if p.usedNum[t]+perType[t] > p.desc.MaxNum(t) {
			return t.String() + " descriptors", false
		}
	}
	p.setNum += setNum
	for t := range rhi.DescriptorTypeMaxNum {
		p.usedNum[t] += perType[t]
	}
	return "", true
}

// release undoes a reservation.
func (p *descriptorPool) release(setNum uint32, perType *[rhi.DescriptorTypeMaxNum]uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setNum -= setNum
	for t := range rhi.DescriptorTypeMaxNum {
		p.usedNum[t] -= perType[t]
	}
}

func (p *descriptorPool) reset() {
	p.mu.Lock()
	p.setNum = 0
	p.usedNum = [rhi.DescriptorTypeMaxNum]uint32{}
	p.mu.Unlock()
}

type descriptorSetLayout struct {
	ranges          []rhi.DescriptorRangeDesc
	dynamicBuffers  uint32
	variableSizedAt int // index of the variable sized range, or -1
}

type pipelineLayout struct {
	object[rhi.PipelineLayout]
	sets            []descriptorSetLayout
	rootConstants   []rhi.RootConstantDesc
	rootDescriptors []rhi.RootDescriptorDesc
}

type descriptorSet struct {
	object[rhi.DescriptorSet]
	layout   *descriptorSetLayout
	variable uint32
}

// rangeCapacity returns the number of descriptors range i holds in this set.
func (s *descriptorSet) rangeCapacity(i int) uint32 {
	if i == s.layout.variableSizedAt {
		return s.variable
	}
	return s.layout.ranges[i].DescriptorNum
}

type pipeline struct {
	object[rhi.Pipeline]
	layout        *pipelineLayout
	writesDepth   bool
	writesStencil bool
}

type buffer struct {
	object[rhi.Buffer]
	desc   rhi.BufferDesc
	mapped atomic.Bool
}

// BufferDesc returns the creation description.
func (b *buffer) BufferDesc() *rhi.BufferDesc { return &b.desc }

type texture struct {
	object[rhi.Texture]
	desc rhi.TextureDesc
}

// TextureDesc returns the creation description.
func (t *texture) TextureDesc() *rhi.TextureDesc { return &t.desc }

type descriptorKind uint8

const (
	descriptorBufferView descriptorKind = iota
	descriptorTextureView
	descriptorSampler
	descriptorAccelerationStructure
)

type descriptor struct {
	object[rhi.Descriptor]
	kind            descriptorKind
	bufferViewType  rhi.BufferViewType
	textureViewType rhi.TextureViewType
	buffer          *buffer
	texture         *texture
}

// isStorage reports whether the descriptor is a storage buffer or storage
// texture view.
func (d *descriptor) isStorage() bool {
	switch d.kind {
	case descriptorBufferView:
		return d.bufferViewType == rhi.BufferViewShaderResourceStorage
	case descriptorTextureView:
		return d.textureViewType == rhi.TextureViewShaderResourceStorage ||
			d.textureViewType == rhi.TextureViewShaderResourceStorageArray
	default:
		return false
	}
}

func (d *descriptor) isDepthReadonly() bool {
	return d.kind == descriptorTextureView &&
		(d.textureViewType == rhi.TextureViewDepthReadonlyStencilAttachment ||
			d.textureViewType == rhi.TextureViewDepthStencilReadonly)
}

func (d *descriptor) isStencilReadonly() bool {
	return d.kind == descriptorTextureView &&
		(d.textureViewType == rhi.TextureViewDepthAttachmentStencilReadonly ||
			d.textureViewType == rhi.TextureViewDepthStencilReadonly)
}

type queryPool struct {
	object[rhi.QueryPool]
	queryType rhi.QueryType
	capacity  uint32
	imported  bool
}

// QueryType returns the pool's query type.
func (q *queryPool) QueryType() rhi.QueryType { return q.queryType }

// inBounds reports whether [offset, offset+num) fits the pool. Imported
// pools have unknown capacity and always pass.
func (q *queryPool) inBounds(offset, num uint32) bool {
	if q.imported {
		return true
	}
	return uint64(offset)+uint64(num) <= uint64(q.capacity)
}

type accelerationStructure struct {
	object[rhi.AccelerationStructure]
	asType            rhi.AccelerationStructureType
	size              uint64
	buildScratchSize  uint64
	updateScratchSize uint64
	deviceAddress     uint64
}

type micromap struct {
	object[rhi.Micromap]
	size             uint64
	buildScratchSize uint64
}

type streamer struct {
	object[rhi.Streamer]
	constantBuffer *buffer
	queuedFrameNum uint64

	mu      sync.Mutex
	frame   uint64
	staging map[rhi.Buffer]*stagingBuffer
}

// stagingBuffer is a backend staging buffer and the frame it was last
// handed out in.
type stagingBuffer struct {
	buf  *buffer
	seen uint64
}

type swapChain struct {
	object[rhi.SwapChain]
	textures []rhi.Texture
}

// need unwraps a handle that must not be nil. Failures are reported.
func need[W wrapper[T], T rhi.Object](d *Device, op, what string, h T) (W, T, error) {
	if any(h) == nil {
		var (
			w    W
			none T
		)
		return w, none, d.fail(ErrInvalidArgument, op, "'%s' is nil", what)
	}
	return opt[W](d, op, what, h)
}

// opt unwraps a handle that may be nil. Foreign and destroyed handles are
// reported.
func opt[W wrapper[T], T rhi.Object](d *Device, op, what string, h T) (W, T, error) {
	w, impl, ok := unwrap[W](d, h)
	if !ok {
		return w, impl, d.foreign(op, "'"+what+"'")
	}
	if any(h) != nil && w.isDestroyed() {
		var none T
		return w, none, d.fail(ErrInvalidState, op, "'%s' is destroyed", what)
	}
	return w, impl, nil
}

// fits reports whether [offset, offset+size) lies within total bytes.
func fits(offset, size, total uint64) bool {
	return offset <= total && size <= total-offset
}
