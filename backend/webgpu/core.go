package webgpu

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
)

type core struct {
	d *Device
}

var _ rhi.CoreInterface = (*core)(nil)

func (c *core) GetDeviceDesc() *rhi.DeviceDesc { return &c.d.desc }

func (c *core) GetFormatSupport(format rhi.Format) rhi.FormatSupportBits {
	var bits rhi.FormatSupportBits
	if _, ok := vertexFormat(format); ok {
		bits |= rhi.FormatSupportVertexBuffer
	}
	if textureFormat(format) == gputypes.TextureFormatUndefined {
		return bits
	}
	p := format.Props()
	bits |= rhi.FormatSupportTexture
	switch {
	case p.IsDepth || p.IsStencil:
		bits |= rhi.FormatSupportDepthStencilAttachment
	case p.IsCompressed:
	default:
		bits |= rhi.FormatSupportColorAttachment
		if !p.IsInteger {
			bits |= rhi.FormatSupportBlend
		}
		if storageFormat(format) {
			bits |= rhi.FormatSupportStorageTexture
		}
	}
	return bits
}

// storageFormat reports the formats WebGPU guarantees as storage textures.
func storageFormat(f rhi.Format) bool {
	switch f {
	case rhi.FormatRGBA8Unorm, rhi.FormatRGBA8Snorm, rhi.FormatRGBA8Uint, rhi.FormatRGBA8Sint,
		rhi.FormatRGBA16Sfloat, rhi.FormatR32Uint, rhi.FormatR32Sint, rhi.FormatR32Sfloat,
		rhi.FormatRG32Uint, rhi.FormatRG32Sfloat, rhi.FormatRGBA32Uint, rhi.FormatRGBA32Sfloat:
		return true
	}
	return false
}

// GetQuerySize returns 0: HAL exposes no query pools.
func (c *core) GetQuerySize(rhi.QueryPool) uint32 { return 0 }

func (c *core) GetFenceValue(h rhi.Fence) uint64 {
	f, ok := get[*fence](c.d, h)
	if !ok {
		return 0
	}
	completed, signaled := f.completed.Load(), f.signaled.Load()
	if completed >= signaled {
		return completed
	}
	done, err := c.d.hal.Wait(f.hal, signaled, 0)
	if err == nil && done {
		f.complete(signaled)
		return signaled
	}
	return completed
}

// GetCommandQueue returns one of three queues that all submit to the single
// HAL queue.
func (c *core) GetCommandQueue(queueType rhi.QueueType) (rhi.CommandQueue, error) {
	if queueType >= rhi.QueueTypeMaxNum {
		return nil, errors.Wrapf(rhi.InvalidArgument, "webgpu: queue type %d", queueType)
	}
	return c.d.queues[queueType], nil
}

func (c *core) CreateCommandAllocator(q rhi.CommandQueue) (rhi.CommandAllocator, error) {
	qu, ok := get[*queue](c.d, q)
	if !ok {
		return nil, ErrForeignObject
	}
	a := &commandAllocator{queue: qu}
	a.dev = c.d
	return a, nil
}

func (c *core) CreateCommandBuffer(allocator rhi.CommandAllocator) (rhi.CommandBuffer, error) {
	a, ok := get[*commandAllocator](c.d, allocator)
	if !ok {
		return nil, ErrForeignObject
	}
	cb := &commandBuffer{allocator: a}
	cb.dev = c.d
	a.mu.Lock()
	a.cmds = append(a.cmds, cb)
	a.mu.Unlock()
	return cb, nil
}

func (c *core) CreateFence(initialValue uint64) (rhi.Fence, error) {
	hf, err := c.d.hal.CreateFence()
	if err != nil {
		return nil, nativeError("create fence", err, false)
	}
	f := &fence{hal: hf}
	f.dev = c.d
	f.signaled.Store(initialValue)
	f.completed.Store(initialValue)
	return f, nil
}

// CreateDescriptorPool only records capacity; bind groups are allocated by
// HAL when a set is first bound.
func (c *core) CreateDescriptorPool(desc *rhi.DescriptorPoolDesc) (rhi.DescriptorPool, error) {
	p := &descriptorPool{desc: *desc}
	p.dev = c.d
	return p, nil
}

func (c *core) CreateBuffer(desc *rhi.BufferDesc) (rhi.Buffer, error) {
	if desc.Size > c.d.desc.BufferMaxSize {
		return nil, errors.Wrapf(rhi.OutOfMemory, "webgpu: buffer size %d exceeds %d", desc.Size, c.d.desc.BufferMaxSize)
	}
	b := &buffer{desc: *desc}
	b.dev = c.d
	hb, err := c.d.hal.CreateBuffer(&hal.BufferDescriptor{
		Label: b.label("buffer"),
		Size:  alignUp(desc.Size, 4),
		Usage: bufferUsage(desc.Usage),
	})
	if err != nil {
		return nil, nativeError("create buffer", err, true)
	}
	b.hal = hb
	return b, nil
}

func (c *core) CreateTexture(desc *rhi.TextureDesc) (rhi.Texture, error) {
	format := textureFormat(desc.Format)
	if format == gputypes.TextureFormatUndefined {
		return nil, errors.Wrapf(ErrNotSupported, "texture format %s", desc.Format)
	}
	layers := max(uint32(desc.Depth), desc.LayerNum, 1)
	t := &texture{desc: *desc}
	t.dev = c.d
	ht, err := c.d.hal.CreateTexture(&hal.TextureDescriptor{
		Label: t.label("texture"),
		Size: hal.Extent3D{
			Width:              uint32(max(desc.Width, 1)),
			Height:             uint32(max(desc.Height, 1)),
			DepthOrArrayLayers: layers,
		},
		MipLevelCount: max(desc.MipNum, 1),
		SampleCount:   uint32(max(desc.SampleNum, 1)),
		Dimension:     textureDimension(desc.Type),
		Format:        format,
		Usage:         textureUsage(desc.Usage),
	})
	if err != nil {
		return nil, nativeError("create texture", err, true)
	}
	t.hal = ht
	return t, nil
}

func (c *core) CreateBufferView(desc *rhi.BufferViewDesc) (rhi.Descriptor, error) {
	b, ok := get[*buffer](c.d, desc.Buffer)
	if !ok {
		return nil, ErrForeignObject
	}
	size := desc.Size
	if size == rhi.WholeSize {
		size = b.desc.Size - desc.Offset
	}
	v := &descriptor{kind: bufferView, buffer: b, offset: desc.Offset, size: size}
	v.dev = c.d
	return v, nil
}

func (c *core) CreateTextureView(desc *rhi.TextureViewDesc) (rhi.Descriptor, error) {
	t, ok := get[*texture](c.d, desc.Texture)
	if !ok {
		return nil, ErrForeignObject
	}
	format := desc.Format
	if format == rhi.FormatUnknown {
		format = t.desc.Format
	}
	v := &descriptor{kind: textureView, texture: t, viewType: desc.ViewType}
	v.dev = c.d
	hv, err := c.d.hal.CreateTextureView(t.hal, &hal.TextureViewDescriptor{
		Label:           v.label("texture view"),
		Format:          textureFormat(format),
		Dimension:       viewDimension(t.desc.Type, desc.ViewType),
		Aspect:          aspect(desc.Planes),
		BaseMipLevel:    desc.MipOffset,
		MipLevelCount:   desc.MipNum,
		BaseArrayLayer:  desc.LayerOffset,
		ArrayLayerCount: desc.LayerNum,
	})
	if err != nil {
		return nil, nativeError("create texture view", err, false)
	}
	v.view = hv
	return v, nil
}

func (c *core) CreateSampler(desc *rhi.SamplerDesc) (rhi.Descriptor, error) {
	s := &descriptor{kind: sampler}
	s.dev = c.d
	lodMax := desc.MipMax
	if lodMax == 0 {
		lodMax = 32
	}
	hd := &hal.SamplerDescriptor{
		Label:        s.label("sampler"),
		AddressModeU: addressMode(desc.AddressModes.U),
		AddressModeV: addressMode(desc.AddressModes.V),
		AddressModeW: addressMode(desc.AddressModes.W),
		MagFilter:    filterMode(desc.Filters.Mag),
		MinFilter:    filterMode(desc.Filters.Min),
		MipmapFilter: filterMode(desc.Filters.Mip),
		LodMinClamp:  desc.MipMin,
		LodMaxClamp:  lodMax,
	}
	if desc.CompareFunc != rhi.CompareNone {
		hd.Compare = compareFunction(desc.CompareFunc)
	}
	hs, err := c.d.hal.CreateSampler(hd)
	if err != nil {
		return nil, nativeError("create sampler", err, false)
	}
	s.sampler = hs
	return s, nil
}

// CreatePipelineLayout builds one bind group layout per descriptor set.
// Descriptor i of a range is bound at BaseRegisterIndex+i.
func (c *core) CreatePipelineLayout(desc *rhi.PipelineLayoutDesc) (rhi.PipelineLayout, error) {
	if len(desc.RootConstants) != 0 || len(desc.RootDescriptors) != 0 {
		return nil, errors.Wrap(ErrNotSupported, "root constants and root descriptors")
	}
	l := &pipelineLayout{sets: make([]setLayout, len(desc.DescriptorSets))}
	l.dev = c.d

	groups := make([]hal.BindGroupLayout, 0, len(desc.DescriptorSets))
	for i := range desc.DescriptorSets {
		sl, err := c.createSetLayout(l, i, &desc.DescriptorSets[i])
		if err != nil {
			c.destroySetLayouts(groups)
			return nil, err
		}
		l.sets[i] = sl
		groups = append(groups, sl.hal)
	}

	hl, err := c.d.hal.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            l.label("pipeline layout"),
		BindGroupLayouts: groups,
	})
	if err != nil {
		c.destroySetLayouts(groups)
		return nil, nativeError("create pipeline layout", err, false)
	}
	l.hal = hl
	return l, nil
}

func (c *core) createSetLayout(l *pipelineLayout, index int, set *rhi.DescriptorSetDesc) (setLayout, error) {
	var sl setLayout
	var entries []gputypes.BindGroupLayoutEntry
	for r := range set.Ranges {
		rd := &set.Ranges[r]
		sl.rangeStart = append(sl.rangeStart, uint32(len(sl.bindings)))
		sl.rangeNum = append(sl.rangeNum, rd.DescriptorNum)
		for i := range rd.DescriptorNum {
			binding := rd.BaseRegisterIndex + i
			e, ok := bindingLayout(binding, rd)
			if !ok {
				return sl, errors.Wrapf(ErrNotSupported, "descriptor type %s in set %d", rd.DescriptorType, index)
			}
			entries = append(entries, e)
			sl.bindings = append(sl.bindings, binding)
		}
	}
	for _, dcb := range set.DynamicConstantBuffers {
		e := gputypes.BindGroupLayoutEntry{
			Binding: dcb.RegisterIndex,
			Buffer: &gputypes.BufferBindingLayout{
				Type:             gputypes.BufferBindingTypeUniform,
				HasDynamicOffset: true,
			},
		}
		setVisibility(&e, dcb.ShaderStages)
		entries = append(entries, e)
		sl.dynamic = append(sl.dynamic, dcb.RegisterIndex)
	}

	hg, err := c.d.hal.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   l.label("set layout"),
		Entries: entries,
	})
	if err != nil {
		return sl, nativeError("create bind group layout", err, false)
	}
	sl.hal = hg
	return sl, nil
}

func (c *core) destroySetLayouts(groups []hal.BindGroupLayout) {
	for _, g := range groups {
		c.d.hal.DestroyBindGroupLayout(g)
	}
}

// spirvMagic is the first word of a SPIR-V module.
const spirvMagic = 0x07230203

// createShaderModule accepts SPIR-V or WGSL source. Anything that does not
// start with the SPIR-V magic number is treated as WGSL text.
func (c *core) createShaderModule(sd *rhi.ShaderDesc, label string) (hal.ShaderModule, error) {
	var src hal.ShaderSource
	code := sd.Bytecode
	if len(code) >= 4 && len(code)%4 == 0 && binary.LittleEndian.Uint32(code) == spirvMagic {
		words := make([]uint32, len(code)/4)
		for i := range words {
			words[i] = binary.LittleEndian.Uint32(code[i*4:])
		}
		src.SPIRV = words
	} else {
		src.WGSL = string(code)
	}
	m, err := c.d.hal.CreateShaderModule(&hal.ShaderModuleDescriptor{Label: label, Source: src})
	if err != nil {
		return nil, nativeError("create shader module", err, false)
	}
	return m, nil
}

func entryPoint(sd *rhi.ShaderDesc) string {
	if sd.EntryPointName == "" {
		return "main"
	}
	return sd.EntryPointName
}

func (c *core) CreateGraphicsPipeline(desc *rhi.GraphicsPipelineDesc) (rhi.Pipeline, error) {
	l, ok := get[*pipelineLayout](c.d, desc.PipelineLayout)
	if !ok {
		return nil, ErrForeignObject
	}
	var vs, fs *rhi.ShaderDesc
	for i := range desc.Shaders {
		sd := &desc.Shaders[i]
		switch sd.Stage {
		case rhi.StageVertexShader:
			vs = sd
		case rhi.StageFragmentShader:
			fs = sd
		default:
			return nil, errors.Wrapf(ErrNotSupported, "shader stage %#x", sd.Stage)
		}
	}
	if vs == nil {
		return nil, errors.Wrap(rhi.InvalidArgument, "webgpu: graphics pipeline needs a vertex shader")
	}

	p := &pipeline{layout: l}
	p.dev = c.d
	hd := &hal.RenderPipelineDescriptor{
		Label:  p.label("graphics pipeline"),
		Layout: l.hal,
		Primitive: gputypes.PrimitiveState{
			Topology:  topology(desc.InputAssembly.Topology),
			CullMode:  cullMode(desc.Rasterization.CullMode),
			FrontFace: gputypes.FrontFaceCW,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	}
	if desc.Rasterization.FrontCounterClockwise {
		hd.Primitive.FrontFace = gputypes.FrontFaceCCW
	}
	if ms := desc.Multisample; ms != nil && ms.SampleNum > 1 {
		hd.Multisample.Count = uint32(ms.SampleNum)
	}

	vm, err := c.createShaderModule(vs, p.label("vertex shader"))
	if err != nil {
		return nil, err
	}
	p.modules = append(p.modules, vm)
	hd.Vertex = hal.VertexState{Module: vm, EntryPoint: entryPoint(vs)}
	if vi := desc.VertexInput; vi != nil {
		for s, stream := range vi.Streams {
			vb := gputypes.VertexBufferLayout{
				ArrayStride: uint64(stream.Stride),
				StepMode:    gputypes.VertexStepModeVertex,
			}
			if stream.PerInstance {
				vb.StepMode = gputypes.VertexStepModeInstance
			}
			for _, a := range vi.Attributes {
				if int(a.StreamIndex) != s {
					continue
				}
				f, ok := vertexFormat(a.Format)
				if !ok {
					c.destroyModules(p)
					return nil, errors.Wrapf(ErrNotSupported, "vertex format %s", a.Format)
				}
				vb.Attributes = append(vb.Attributes, gputypes.VertexAttribute{
					Format:         f,
					Offset:         uint64(a.Offset),
					ShaderLocation: a.Location,
				})
			}
			hd.Vertex.Buffers = append(hd.Vertex.Buffers, vb)
			p.streams = append(p.streams, stream.BindingSlot)
		}
	}

	om := &desc.OutputMerger
	if fs != nil {
		fm, err := c.createShaderModule(fs, p.label("fragment shader"))
		if err != nil {
			c.destroyModules(p)
			return nil, err
		}
		p.modules = append(p.modules, fm)
		fragment := &hal.FragmentState{Module: fm, EntryPoint: entryPoint(fs)}
		for i := range om.Colors {
			ca := &om.Colors[i]
			target := gputypes.ColorTargetState{
				Format:    textureFormat(ca.Format),
				WriteMask: colorWriteMask(ca.ColorWriteMask),
			}
			if ca.BlendEnabled {
				target.Blend = &gputypes.BlendState{
					Color: blendComponent(&ca.ColorBlend),
					Alpha: blendComponent(&ca.AlphaBlend),
				}
			}
			fragment.Targets = append(fragment.Targets, target)
		}
		hd.Fragment = fragment
	}
	if om.DepthStencilFormat != rhi.FormatUnknown {
		hd.DepthStencil = &hal.DepthStencilState{
			Format:            textureFormat(om.DepthStencilFormat),
			DepthWriteEnabled: om.Depth.Write,
			DepthCompare:      compareFunction(om.Depth.CompareFunc),
			StencilFront:      stencilFace(&om.Stencil.Front),
			StencilBack:       stencilFace(&om.Stencil.Back),
			StencilReadMask:   uint32(om.Stencil.Front.CompareMask),
			StencilWriteMask:  uint32(om.Stencil.Front.WriteMask),
		}
	}
	if desc.Rasterization.DepthBias.IsEnabled() {
		c.d.logger.Warn("webgpu: static depth bias is ignored")
	}

	rp, err := c.d.hal.CreateRenderPipeline(hd)
	if err != nil {
		c.destroyModules(p)
		return nil, nativeError("create render pipeline", err, false)
	}
	p.render = rp
	return p, nil
}

func (c *core) CreateComputePipeline(desc *rhi.ComputePipelineDesc) (rhi.Pipeline, error) {
	l, ok := get[*pipelineLayout](c.d, desc.PipelineLayout)
	if !ok {
		return nil, ErrForeignObject
	}
	p := &pipeline{layout: l}
	p.dev = c.d
	m, err := c.createShaderModule(&desc.Shader, p.label("compute shader"))
	if err != nil {
		return nil, err
	}
	p.modules = append(p.modules, m)
	cp, err := c.d.hal.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   p.label("compute pipeline"),
		Layout:  l.hal,
		Compute: hal.ComputeState{Module: m, EntryPoint: entryPoint(&desc.Shader)},
	})
	if err != nil {
		c.destroyModules(p)
		return nil, nativeError("create compute pipeline", err, false)
	}
	p.compute = cp
	return p, nil
}

func (c *core) destroyModules(p *pipeline) {
	for _, m := range p.modules {
		c.d.hal.DestroyShaderModule(m)
	}
	p.modules = nil
}

// CreateQueryPool fails: HAL has no query sets.
func (c *core) CreateQueryPool(desc *rhi.QueryPoolDesc) (rhi.QueryPool, error) {
	return nil, errors.Wrapf(ErrNotSupported, "query pools of type %d", desc.QueryType)
}

func (c *core) DestroyCommandAllocator(h rhi.CommandAllocator) {
	a, ok := get[*commandAllocator](c.d, h)
	if !ok {
		return
	}
	a.mu.Lock()
	cmds := a.cmds
	a.cmds = nil
	a.mu.Unlock()
	for _, cb := range cmds {
		cb.release()
	}
}

func (c *core) DestroyCommandBuffer(h rhi.CommandBuffer) {
	cb, ok := get[*commandBuffer](c.d, h)
	if !ok {
		return
	}
	cb.release()
	a := cb.allocator
	a.mu.Lock()
	for i, x := range a.cmds {
		if x == cb {
			a.cmds = append(a.cmds[:i], a.cmds[i+1:]...)
			break
		}
	}
	a.mu.Unlock()
}

func (c *core) DestroyFence(h rhi.Fence) {
	if f, ok := get[*fence](c.d, h); ok {
		c.d.hal.DestroyFence(f.hal)
	}
}

func (c *core) DestroyDescriptorPool(h rhi.DescriptorPool) {
	if p, ok := get[*descriptorPool](c.d, h); ok {
		c.ResetDescriptorPool(p)
	}
}

func (c *core) DestroyBuffer(h rhi.Buffer) {
	if b, ok := get[*buffer](c.d, h); ok {
		c.d.hal.DestroyBuffer(b.hal)
		b.mu.Lock()
		b.shadow = nil
		b.mu.Unlock()
	}
}

func (c *core) DestroyTexture(h rhi.Texture) {
	if t, ok := get[*texture](c.d, h); ok {
		c.d.hal.DestroyTexture(t.hal)
	}
}

func (c *core) DestroyDescriptor(h rhi.Descriptor) {
	v, ok := get[*descriptor](c.d, h)
	if !ok {
		return
	}
	switch v.kind {
	case textureView:
		c.d.hal.DestroyTextureView(v.view)
	case sampler:
		c.d.hal.DestroySampler(v.sampler)
	}
}

func (c *core) DestroyPipelineLayout(h rhi.PipelineLayout) {
	l, ok := get[*pipelineLayout](c.d, h)
	if !ok {
		return
	}
	c.d.hal.DestroyPipelineLayout(l.hal)
	for i := range l.sets {
		c.d.hal.DestroyBindGroupLayout(l.sets[i].hal)
	}
}

func (c *core) DestroyPipeline(h rhi.Pipeline) {
	p, ok := get[*pipeline](c.d, h)
	if !ok {
		return
	}
	if p.compute != nil {
		c.d.hal.DestroyComputePipeline(p.compute)
	} else {
		c.d.hal.DestroyRenderPipeline(p.render)
	}
	c.destroyModules(p)
}

func (c *core) DestroyQueryPool(rhi.QueryPool) {}

// MapBuffer returns a host shadow of the range. Readback buffers are read
// through the queue first; the caller must have waited for the GPU work that
// wrote them.
func (c *core) MapBuffer(h rhi.Buffer, offset, size uint64) ([]byte, error) {
	b, ok := get[*buffer](c.d, h)
	if !ok {
		return nil, ErrForeignObject
	}
	if !b.desc.Location.IsHostVisible() {
		return nil, ErrNotMappable
	}
	if size == rhi.WholeSize {
		size = b.desc.Size - offset
	}
	if offset+size > b.desc.Size {
		return nil, errors.Wrapf(rhi.InvalidArgument, "webgpu: map range %d+%d exceeds size %d", offset, size, b.desc.Size)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.shadow == nil {
		b.shadow = make([]byte, alignUp(b.desc.Size, 4))
	}
	if b.desc.Location == rhi.MemoryLocationHostReadback {
		lo, hi := alignDown(offset, 4), alignUp(offset+size, 4)
		if err := c.d.queue.ReadBuffer(b.hal, lo, b.shadow[lo:hi]); err != nil {
			return nil, nativeError("read buffer", err, false)
		}
	}
	b.mapped, b.mapOff, b.mapLen = true, offset, size
	return b.shadow[offset : offset+size : offset+size], nil
}

// UnmapBuffer writes the mapped range of upload buffers back to the GPU.
func (c *core) UnmapBuffer(h rhi.Buffer) {
	b, ok := get[*buffer](c.d, h)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.mapped {
		return
	}
	b.mapped = false
	if b.desc.Location == rhi.MemoryLocationHostReadback || b.mapLen == 0 {
		return
	}
	lo, hi := alignDown(b.mapOff, 4), alignUp(b.mapOff+b.mapLen, 4)
	c.d.queue.WriteBuffer(b.hal, lo, b.shadow[lo:hi])
}

func (c *core) AllocateDescriptorSets(h rhi.DescriptorPool, lh rhi.PipelineLayout, setIndex, instanceNum, _ uint32) ([]rhi.DescriptorSet, error) {
	p, ok := get[*descriptorPool](c.d, h)
	if !ok {
		return nil, ErrForeignObject
	}
	l, ok := get[*pipelineLayout](c.d, lh)
	if !ok {
		return nil, ErrForeignObject
	}
	if int(setIndex) >= len(l.sets) {
		return nil, errors.Wrapf(rhi.InvalidArgument, "webgpu: set index %d of %d", setIndex, len(l.sets))
	}
	sl := &l.sets[setIndex]

	p.mu.Lock()
	defer p.mu.Unlock()
	if uint64(len(p.sets))+uint64(instanceNum) > uint64(p.desc.DescriptorSetMaxNum) {
		return nil, ErrPoolExhausted
	}
	sets := make([]rhi.DescriptorSet, instanceNum)
	for i := range sets {
		s := &descriptorSet{pool: p, layout: sl, slots: make([]*descriptor, sl.slotNum()), dirty: true}
		s.dev = c.d
		p.sets = append(p.sets, s)
		sets[i] = s
	}
	return sets, nil
}

// ResetDescriptorPool frees every set of the pool and its bind groups.
func (c *core) ResetDescriptorPool(h rhi.DescriptorPool) {
	p, ok := get[*descriptorPool](c.d, h)
	if !ok {
		return
	}
	p.mu.Lock()
	sets := p.sets
	p.sets = nil
	p.mu.Unlock()
	for _, s := range sets {
		s.mu.Lock()
		for _, g := range s.retired {
			c.d.hal.DestroyBindGroup(g)
		}
		if s.group != nil {
			c.d.hal.DestroyBindGroup(s.group)
		}
		s.group, s.retired = nil, nil
		s.mu.Unlock()
	}
}

func (c *core) UpdateDescriptorRanges(h rhi.DescriptorSet, rangeOffset uint32, updates []rhi.DescriptorRangeUpdateDesc) {
	s, ok := get[*descriptorSet](c.d, h)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range updates {
		r := int(rangeOffset) + i
		if r >= len(s.layout.rangeStart) {
			return
		}
		base := s.layout.rangeStart[r] + u.BaseDescriptor
		for j, dh := range u.Descriptors {
			if uint32(j)+u.BaseDescriptor >= s.layout.rangeNum[r] {
				break
			}
			v, _ := get[*descriptor](c.d, dh)
			s.slots[base+uint32(j)] = v
		}
	}
	s.dirty = true
}

func (c *core) UpdateDynamicConstantBuffers(h rhi.DescriptorSet, base uint32, buffers []rhi.Descriptor) {
	s, ok := get[*descriptorSet](c.d, h)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	first := len(s.layout.bindings) + int(base)
	for i, dh := range buffers {
		if first+i >= len(s.slots) {
			break
		}
		v, _ := get[*descriptor](c.d, dh)
		s.slots[first+i] = v
	}
	s.dirty = true
}

func (c *core) CopyDescriptorSet(h rhi.DescriptorSet, desc *rhi.DescriptorSetCopyDesc) {
	dst, ok := get[*descriptorSet](c.d, h)
	if !ok {
		return
	}
	src, ok := get[*descriptorSet](c.d, desc.SrcDescriptorSet)
	if !ok {
		return
	}
	src.mu.Lock()
	slots := append([]*descriptor(nil), src.slots...)
	src.mu.Unlock()

	dst.mu.Lock()
	defer dst.mu.Unlock()
	for i := range desc.RangeNum {
		sr, dr := int(desc.SrcBaseRange+i), int(desc.DstBaseRange+i)
		if sr >= len(src.layout.rangeStart) || dr >= len(dst.layout.rangeStart) {
			break
		}
		n := min(src.layout.rangeNum[sr], dst.layout.rangeNum[dr])
		copy(dst.slots[dst.layout.rangeStart[dr]:][:n], slots[src.layout.rangeStart[sr]:][:n])
	}
	for i := range desc.DynamicConstantBufferNum {
		si := len(src.layout.bindings) + int(desc.SrcBaseDynamicConstantBuffer+i)
		di := len(dst.layout.bindings) + int(desc.DstBaseDynamicConstantBuffer+i)
		if si >= len(slots) || di >= len(dst.slots) {
			break
		}
		dst.slots[di] = slots[si]
	}
	dst.dirty = true
}

// bindGroup returns the bind group for the current contents of s, building
// a new one after updates. Replaced groups stay alive until the pool is
// reset, since submitted work may still use them.
func (s *descriptorSet) bindGroup() (hal.BindGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty && s.group != nil {
		return s.group, nil
	}
	entries := make([]gputypes.BindGroupEntry, 0, len(s.slots))
	for i, v := range s.slots {
		var binding uint32
		if i < len(s.layout.bindings) {
			binding = s.layout.bindings[i]
		} else {
			binding = s.layout.dynamic[i-len(s.layout.bindings)]
		}
		if v == nil {
			return nil, errors.Wrapf(rhi.InvalidArgument, "webgpu: binding %d is not written", binding)
		}
		e := gputypes.BindGroupEntry{Binding: binding}
		switch v.kind {
		case textureView:
			e.Resource = gputypes.TextureViewBinding{TextureView: uintptr(v.view.NativeHandle())}
		case sampler:
			e.Resource = gputypes.SamplerBinding{Sampler: uintptr(nativeHandle(v.sampler))}
		default:
			e.Resource = gputypes.BufferBinding{Buffer: v.buffer.hal.NativeHandle(), Offset: v.offset, Size: v.size}
		}
		entries = append(entries, e)
	}
	g, err := s.dev.hal.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   s.label("descriptor set"),
		Layout:  s.layout.hal,
		Entries: entries,
	})
	if err != nil {
		return nil, nativeError("create bind group", err, false)
	}
	if s.group != nil {
		s.retired = append(s.retired, s.group)
	}
	s.group, s.dirty = g, false
	return g, nil
}

// QueueSubmit waits for WaitFences on the CPU, then submits. The first
// signal fence is signaled by the submission itself, the others by empty
// submissions that follow it.
func (c *core) QueueSubmit(q rhi.CommandQueue, desc *rhi.QueueSubmitDesc) error {
	if _, ok := get[*queue](c.d, q); !ok {
		return ErrForeignObject
	}
	for _, w := range desc.WaitFences {
		if err := c.wait(w.Fence, w.Value); err != nil {
			return err
		}
	}

	bufs := make([]hal.CommandBuffer, 0, len(desc.CommandBuffers))
	cmds := make([]*commandBuffer, 0, len(desc.CommandBuffers))
	for _, h := range desc.CommandBuffers {
		cb, ok := get[*commandBuffer](c.d, h)
		if !ok {
			return ErrForeignObject
		}
		if cb.recorded == nil {
			return errors.Wrap(ErrNotRecording, "submitting a command buffer that was not ended")
		}
		bufs = append(bufs, cb.recorded)
		cmds = append(cmds, cb)
	}

	d := c.d
	d.submitMu.Lock()
	defer d.submitMu.Unlock()
	d.collect()

	var first hal.Fence
	var firstValue uint64
	var rest []*fence
	var restValues []uint64
	for i, s := range desc.SignalFences {
		f, ok := get[*fence](d, s.Fence)
		if !ok {
			return ErrForeignObject
		}
		if i == 0 {
			first, firstValue = f.hal, s.Value
		} else {
			rest = append(rest, f)
			restValues = append(restValues, s.Value)
		}
	}
	if err := d.submit(bufs, first, firstValue); err != nil {
		return err
	}
	for i, f := range rest {
		if err := d.queue.Submit(nil, f.hal, restValues[i]); err != nil {
			return nativeError("signal fence", err, false)
		}
	}
	for _, s := range desc.SignalFences {
		f, _ := get[*fence](d, s.Fence)
		raise(&f.signaled, s.Value)
	}
	for _, cb := range cmds {
		cb.submitted = d.idleValue
	}
	return nil
}

// Wait blocks until fence reaches value or the fence timeout expires.
func (c *core) Wait(h rhi.Fence, value uint64) {
	if err := c.wait(h, value); err != nil {
		c.d.logger.Error("webgpu: fence wait failed", "value", value, "err", err)
	}
}

func (c *core) wait(h rhi.Fence, value uint64) error {
	f, ok := get[*fence](c.d, h)
	if !ok {
		return ErrForeignObject
	}
	if f.completed.Load() >= value {
		return nil
	}
	done, err := c.d.hal.Wait(f.hal, value, c.d.fenceTimeout)
	if err != nil {
		return nativeError("wait", err, false)
	}
	if !done {
		return ErrTimeout
	}
	f.complete(value)
	return nil
}

func alignUp(v, a uint64) uint64   { return (v + a - 1) / a * a }
func alignDown(v, a uint64) uint64 { return v / a * a }
