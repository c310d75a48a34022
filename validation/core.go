// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package validation

import (
	"math/bits"

	"github.com/gogpu/rhi"
)

// coreVal validates the Core table. Cmd* methods live in commandbuffer.go
// and barrier.go.
type coreVal struct {
	d *Device
}

var _ rhi.CoreInterface = (*coreVal)(nil)

// destroy forwards a Destroy* call after rejecting foreign handles and
// double destruction. A nil handle is a no-op.
func destroy[W wrapper[T], T rhi.Object](d *Device, op, what string, h T, fn func(T)) {
	w, impl, ok := unwrap[W](d, h)
	if !ok {
		_ = d.foreign(op, "'"+what+"'")
		return
	}
	if any(h) == nil {
		return
	}
	if !w.markDestroyed() {
		d.errorf(op, "'%s' is already destroyed", what)
		return
	}
	d.debug(op)
	fn(impl)
}

func isPowerOfTwo(n uint32) bool { return bits.OnesCount32(n) == 1 }

func (c *coreVal) GetDeviceDesc() *rhi.DeviceDesc { return c.d.desc }

func (c *coreVal) GetFormatSupport(format rhi.Format) rhi.FormatSupportBits {
	if format >= rhi.FormatMaxNum {
		c.d.errorf("GetFormatSupport", "'format' is invalid")
		return 0
	}
	return c.d.core.GetFormatSupport(format)
}

func (c *coreVal) GetQuerySize(pool rhi.QueryPool) uint32 {
	_, impl, err := need[*queryPool](c.d, "GetQuerySize", "queryPool", pool)
	if err != nil {
		return 0
	}
	return c.d.core.GetQuerySize(impl)
}

func (c *coreVal) GetFenceValue(f rhi.Fence) uint64 {
	_, impl, err := need[*fence](c.d, "GetFenceValue", "fence", f)
	if err != nil {
		return 0
	}
	return c.d.core.GetFenceValue(impl)
}

// GetCommandQueue returns the same wrapper for a backend queue on every call.
func (c *coreVal) GetCommandQueue(queueType rhi.QueueType) (rhi.CommandQueue, error) {
	const op = "GetCommandQueue"
	d := c.d
	if queueType >= rhi.QueueTypeMaxNum {
		return nil, d.fail(ErrInvalidArgument, op, "'queueType' is invalid")
	}
	impl, err := d.core.GetCommandQueue(queueType)
	if err != nil {
		return nil, err
	}
	return d.wrapQueue(impl, queueType), nil
}

func (d *Device) wrapQueue(impl rhi.CommandQueue, queueType rhi.QueueType) *commandQueue {
	d.mu.Lock()
	defer d.mu.Unlock()
	if q, ok := d.queues[impl]; ok {
		return q
	}
	q := &commandQueue{queueType: queueType}
	q.init(d, impl)
	d.queues[impl] = q
	return q
}

func (c *coreVal) CreateCommandAllocator(queue rhi.CommandQueue) (rhi.CommandAllocator, error) {
	const op = "CreateCommandAllocator"
	d := c.d
	q, queueImpl, err := need[*commandQueue](d, op, "queue", queue)
	if err != nil {
		return nil, err
	}
	impl, err := d.core.CreateCommandAllocator(queueImpl)
	if err != nil {
		return nil, err
	}
	a := &commandAllocator{queue: q}
	a.init(d, impl)
	return a, nil
}

func (c *coreVal) CreateCommandBuffer(allocator rhi.CommandAllocator) (rhi.CommandBuffer, error) {
	const op = "CreateCommandBuffer"
	d := c.d
	a, allocImpl, err := need[*commandAllocator](d, op, "commandAllocator", allocator)
	if err != nil {
		return nil, err
	}
	impl, err := d.core.CreateCommandBuffer(allocImpl)
	if err != nil {
		return nil, err
	}
	d.debug(op, "queue", a.queue.queueType)
	return newCommandBuffer(d, impl, a), nil
}

func (c *coreVal) CreateFence(initialValue uint64) (rhi.Fence, error) {
	impl, err := c.d.core.CreateFence(initialValue)
	if err != nil {
		return nil, err
	}
	f := &fence{}
	f.init(c.d, impl)
	return f, nil
}

func (c *coreVal) CreateDescriptorPool(desc *rhi.DescriptorPoolDesc) (rhi.DescriptorPool, error) {
	const op = "CreateDescriptorPool"
	d := c.d
	if desc == nil {
		return nil, d.fail(ErrInvalidArgument, op, "'desc' is nil")
	}
	impl, err := d.core.CreateDescriptorPool(desc)
	if err != nil {
		return nil, err
	}
	p := &descriptorPool{desc: *desc}
	p.init(d, impl)
	return p, nil
}

func (c *coreVal) CreateBuffer(desc *rhi.BufferDesc) (rhi.Buffer, error) {
	const op = "CreateBuffer"
	d := c.d
	if desc == nil {
		return nil, d.fail(ErrInvalidArgument, op, "'desc' is nil")
	}
	if desc.Size == 0 {
		return nil, d.fail(ErrInvalidArgument, op, "'Size' is 0")
	}
	impl, err := d.core.CreateBuffer(desc)
	if err != nil {
		return nil, err
	}
	b := &buffer{desc: *desc}
	b.init(d, impl)
	d.debug(op, "size", desc.Size, "usage", uint16(desc.Usage))
	return b, nil
}

func (c *coreVal) CreateTexture(desc *rhi.TextureDesc) (rhi.Texture, error) {
	const op = "CreateTexture"
	d := c.d
	if err := d.checkTextureDesc(op, desc); err != nil {
		return nil, err
	}
	impl, err := d.core.CreateTexture(desc)
	if err != nil {
		return nil, err
	}
	d.debug(op, "format", desc.Format.String(), "width", desc.Width, "height", desc.Height)
	return d.newTexture(impl, desc), nil
}

func (d *Device) newTexture(impl rhi.Texture, desc *rhi.TextureDesc) *texture {
	t := &texture{desc: *desc}
	t.init(d, impl)
	return t
}

func (d *Device) checkTextureDesc(op string, desc *rhi.TextureDesc) error {
	switch {
	case desc == nil:
		return d.fail(ErrInvalidArgument, op, "'desc' is nil")
	case !desc.Format.IsValid():
		return d.fail(ErrInvalidArgument, op, "'Format' is invalid")
	case desc.Width == 0:
		return d.fail(ErrInvalidArgument, op, "'Width' is 0")
	case desc.MipNum == 0:
		return d.fail(ErrInvalidArgument, op, "'MipNum' is 0")
	case desc.LayerNum == 0:
		return d.fail(ErrInvalidArgument, op, "'LayerNum' is 0")
	case desc.Type == rhi.TextureType3D && desc.LayerNum != 1:
		return d.fail(ErrInvalidArgument, op, "'LayerNum' must be 1 for a 3D texture")
	case desc.SampleNum > 1 && !isPowerOfTwo(uint32(desc.SampleNum)):
		return d.fail(ErrInvalidArgument, op, "'SampleNum' is not a power of two")
	}
	return nil
}

func (c *coreVal) CreateBufferView(desc *rhi.BufferViewDesc) (rhi.Descriptor, error) {
	const op = "CreateBufferView"
	d := c.d
	if desc == nil {
		return nil, d.fail(ErrInvalidArgument, op, "'desc' is nil")
	}
	b, bufImpl, err := need[*buffer](d, op, "Buffer", desc.Buffer)
	if err != nil {
		return nil, err
	}
	size := b.desc.Size
	if desc.Offset >= size {
		return nil, d.fail(ErrInvalidArgument, op, "'Offset' is out of bounds (%d >= %d)", desc.Offset, size)
	}
	if desc.Size != rhi.WholeSize && !fits(desc.Offset, desc.Size, size) {
		return nil, d.fail(ErrInvalidArgument, op, "'Offset + Size' is out of bounds (%d + %d > %d)", desc.Offset, desc.Size, size)
	}

	inner := *desc
	inner.Buffer = bufImpl
	impl, err := d.core.CreateBufferView(&inner)
	if err != nil {
		return nil, err
	}
	v := &descriptor{kind: descriptorBufferView, bufferViewType: desc.ViewType, buffer: b}
	v.init(d, impl)
	return v, nil
}

// viewUsage returns the texture usage a view type requires.
func viewUsage(t rhi.TextureViewType) rhi.TextureUsageBits {
	switch t {
	case rhi.TextureViewShaderResource, rhi.TextureViewShaderResourceArray,
		rhi.TextureViewShaderResourceCube, rhi.TextureViewShaderResourceCubeArray:
		return rhi.TextureUsageShaderResource
	case rhi.TextureViewShaderResourceStorage, rhi.TextureViewShaderResourceStorageArray:
		return rhi.TextureUsageShaderResourceStorage
	case rhi.TextureViewColorAttachment:
		return rhi.TextureUsageColorAttachment
	case rhi.TextureViewShadingRateAttachment:
		return rhi.TextureUsageShadingRateAttachment
	default:
		return rhi.TextureUsageDepthStencilAttachment
	}
}

func (c *coreVal) CreateTextureView(desc *rhi.TextureViewDesc) (rhi.Descriptor, error) {
	const op = "CreateTextureView"
	d := c.d
	if desc == nil {
		return nil, d.fail(ErrInvalidArgument, op, "'desc' is nil")
	}
	t, texImpl, err := need[*texture](d, op, "Texture", desc.Texture)
	if err != nil {
		return nil, err
	}
	td := &t.desc

	if desc.MipOffset >= td.MipNum {
		return nil, d.fail(ErrInvalidArgument, op, "'MipOffset' is out of bounds (%d >= %d)", desc.MipOffset, td.MipNum)
	}
	if desc.MipNum != rhi.RemainingMips && uint64(desc.MipOffset)+uint64(desc.MipNum) > uint64(td.MipNum) {
		return nil, d.fail(ErrInvalidArgument, op, "'MipOffset + MipNum' is out of bounds (%d + %d > %d)", desc.MipOffset, desc.MipNum, td.MipNum)
	}
	layers := td.LayerNum
	if td.Type == rhi.TextureType3D {
		layers = uint32(max(td.Depth, 1))
	}
	if desc.LayerOffset >= layers {
		return nil, d.fail(ErrInvalidArgument, op, "'LayerOffset' is out of bounds (%d >= %d)", desc.LayerOffset, layers)
	}
	if desc.LayerNum != rhi.RemainingLayers && uint64(desc.LayerOffset)+uint64(desc.LayerNum) > uint64(layers) {
		return nil, d.fail(ErrInvalidArgument, op, "'LayerOffset + LayerNum' is out of bounds (%d + %d > %d)", desc.LayerOffset, desc.LayerNum, layers)
	}
	if want := viewUsage(desc.ViewType); td.Usage&want == 0 {
		return nil, d.fail(ErrInvalidArgument, op, "the texture usage mask does not allow view type %d", desc.ViewType)
	}

	inner := *desc
	inner.Texture = texImpl
	impl, err := d.core.CreateTextureView(&inner)
	if err != nil {
		return nil, err
	}
	v := &descriptor{kind: descriptorTextureView, textureViewType: desc.ViewType, texture: t}
	v.init(d, impl)
	return v, nil
}

func (c *coreVal) CreateSampler(desc *rhi.SamplerDesc) (rhi.Descriptor, error) {
	const op = "CreateSampler"
	d := c.d
	switch {
	case desc == nil:
		return nil, d.fail(ErrInvalidArgument, op, "'desc' is nil")
	case desc.MipMin > desc.MipMax:
		return nil, d.fail(ErrInvalidArgument, op, "'MipMin' is greater than 'MipMax'")
	case desc.Anisotropy > 16:
		return nil, d.fail(ErrInvalidArgument, op, "'Anisotropy' is greater than 16")
	case desc.Filters.Ext != rhi.FilterExtNone && !d.desc.IsTextureFilterMinMaxSupported:
		return nil, d.fail(ErrUnsupported, op, "'IsTextureFilterMinMaxSupported' is false")
	}
	impl, err := d.core.CreateSampler(desc)
	if err != nil {
		return nil, err
	}
	s := &descriptor{kind: descriptorSampler}
	s.init(d, impl)
	return s, nil
}

func (c *coreVal) CreatePipelineLayout(desc *rhi.PipelineLayoutDesc) (rhi.PipelineLayout, error) {
	const op = "CreatePipelineLayout"
	d := c.d
	if desc == nil {
		return nil, d.fail(ErrInvalidArgument, op, "'desc' is nil")
	}
	spaces := make(map[uint32]struct{}, len(desc.DescriptorSets))
	sets := make([]descriptorSetLayout, len(desc.DescriptorSets))
	for i, set := range desc.DescriptorSets {
		if _, dup := spaces[set.RegisterSpace]; dup {
			return nil, d.fail(ErrInvalidArgument, op, "'DescriptorSets[%d].RegisterSpace' %d is used twice", i, set.RegisterSpace)
		}
		spaces[set.RegisterSpace] = struct{}{}

		sets[i] = descriptorSetLayout{
			ranges:          append([]rhi.DescriptorRangeDesc(nil), set.Ranges...),
			dynamicBuffers:  uint32(len(set.DynamicConstantBuffers)),
			variableSizedAt: -1,
		}
		for j, r := range set.Ranges {
			if r.DescriptorType >= rhi.DescriptorTypeMaxNum {
				return nil, d.fail(ErrInvalidArgument, op, "'DescriptorSets[%d].Ranges[%d].DescriptorType' is invalid", i, j)
			}
			if r.IsVariableSized {
				if j != len(set.Ranges)-1 {
					return nil, d.fail(ErrInvalidArgument, op, "'DescriptorSets[%d].Ranges[%d]' is variable sized but not the last range", i, j)
				}
				sets[i].variableSizedAt = j
			}
		}
	}
	for i, rc := range desc.RootConstants {
		if rc.Size == 0 || rc.Size%4 != 0 {
			return nil, d.fail(ErrInvalidArgument, op, "'RootConstants[%d].Size' must be a non-zero multiple of 4", i)
		}
	}

	impl, err := d.core.CreatePipelineLayout(desc)
	if err != nil {
		return nil, err
	}
	pl := &pipelineLayout{
		sets:            sets,
		rootConstants:   append([]rhi.RootConstantDesc(nil), desc.RootConstants...),
		rootDescriptors: append([]rhi.RootDescriptorDesc(nil), desc.RootDescriptors...),
	}
	pl.init(d, impl)
	return pl, nil
}

func (c *coreVal) CreateGraphicsPipeline(desc *rhi.GraphicsPipelineDesc) (rhi.Pipeline, error) {
	const op = "CreateGraphicsPipeline"
	d := c.d
	if desc == nil {
		return nil, d.fail(ErrInvalidArgument, op, "'desc' is nil")
	}
	pl, layoutImpl, err := need[*pipelineLayout](d, op, "PipelineLayout", desc.PipelineLayout)
	if err != nil {
		return nil, err
	}
	var stages rhi.StageBits
	for i, sh := range desc.Shaders {
		if len(sh.Bytecode) == 0 {
			return nil, d.fail(ErrInvalidArgument, op, "'Shaders[%d].Bytecode' is empty", i)
		}
		stages |= sh.Stage
	}
	if stages&(rhi.StageVertexShader|rhi.StageMeshShader) == 0 {
		return nil, d.fail(ErrInvalidArgument, op, "a vertex or mesh shader is required")
	}
	if stages&rhi.StageMeshShader != 0 && !d.desc.IsMeshShaderSupported {
		return nil, d.fail(ErrUnsupported, op, "'IsMeshShaderSupported' is false")
	}
	if n := uint32(len(desc.OutputMerger.Colors)); n > d.desc.ColorAttachmentMaxNum {
		return nil, d.fail(ErrInvalidArgument, op, "%d color attachments exceed 'ColorAttachmentMaxNum' (%d)", n, d.desc.ColorAttachmentMaxNum)
	}
	if ms := desc.Multisample; ms != nil && ms.SampleNum > 1 && !isPowerOfTwo(uint32(ms.SampleNum)) {
		return nil, d.fail(ErrInvalidArgument, op, "'Multisample.SampleNum' is not a power of two")
	}
	if desc.OutputMerger.Depth.BoundsTest && !d.desc.IsDepthBoundsTestSupported {
		return nil, d.fail(ErrUnsupported, op, "'IsDepthBoundsTestSupported' is false")
	}

	inner := *desc
	inner.PipelineLayout = layoutImpl
	impl, err := d.core.CreateGraphicsPipeline(&inner)
	if err != nil {
		return nil, err
	}
	p := &pipeline{
		layout:        pl,
		writesDepth:   desc.WritesDepth(),
		writesStencil: desc.WritesStencil(),
	}
	p.init(d, impl)
	return p, nil
}

func (c *coreVal) CreateComputePipeline(desc *rhi.ComputePipelineDesc) (rhi.Pipeline, error) {
	const op = "CreateComputePipeline"
	d := c.d
	if desc == nil {
		return nil, d.fail(ErrInvalidArgument, op, "'desc' is nil")
	}
	pl, layoutImpl, err := need[*pipelineLayout](d, op, "PipelineLayout", desc.PipelineLayout)
	if err != nil {
		return nil, err
	}
	if len(desc.Shader.Bytecode) == 0 {
		return nil, d.fail(ErrInvalidArgument, op, "'Shader.Bytecode' is empty")
	}
	inner := *desc
	inner.PipelineLayout = layoutImpl
	impl, err := d.core.CreateComputePipeline(&inner)
	if err != nil {
		return nil, err
	}
	p := &pipeline{layout: pl}
	p.init(d, impl)
	return p, nil
}

func (c *coreVal) CreateQueryPool(desc *rhi.QueryPoolDesc) (rhi.QueryPool, error) {
	const op = "CreateQueryPool"
	d := c.d
	switch {
	case desc == nil:
		return nil, d.fail(ErrInvalidArgument, op, "'desc' is nil")
	case desc.Capacity == 0:
		return nil, d.fail(ErrInvalidArgument, op, "'Capacity' is 0")
	case desc.QueryType >= rhi.QueryTypeMaxNum:
		return nil, d.fail(ErrInvalidArgument, op, "'QueryType' is invalid")
	case desc.QueryType == rhi.QueryTypeTimestampCopyQueue && !d.desc.IsCopyQueueTimestampSupported:
		return nil, d.fail(ErrUnsupported, op, "'IsCopyQueueTimestampSupported' is false")
	case (desc.QueryType == rhi.QueryTypeAccelerationStructureSize ||
		desc.QueryType == rhi.QueryTypeAccelerationStructureCompactedSize) && d.desc.RayTracingTier == 0:
		return nil, d.fail(ErrUnsupported, op, "'RayTracingTier' is 0")
	case desc.QueryType == rhi.QueryTypeMicromapCompactedSize && !d.desc.IsMicromapSupported:
		return nil, d.fail(ErrUnsupported, op, "'IsMicromapSupported' is false")
	}
	impl, err := d.core.CreateQueryPool(desc)
	if err != nil {
		return nil, err
	}
	q := &queryPool{queryType: desc.QueryType, capacity: desc.Capacity}
	q.init(d, impl)
	return q, nil
}

func (c *coreVal) DestroyCommandAllocator(allocator rhi.CommandAllocator) {
	destroy[*commandAllocator](c.d, "DestroyCommandAllocator", "commandAllocator", allocator, c.d.core.DestroyCommandAllocator)
}

func (c *coreVal) DestroyCommandBuffer(cmd rhi.CommandBuffer) {
	destroy[*commandBuffer](c.d, "DestroyCommandBuffer", "commandBuffer", cmd, c.d.core.DestroyCommandBuffer)
}

func (c *coreVal) DestroyFence(f rhi.Fence) {
	destroy[*fence](c.d, "DestroyFence", "fence", f, c.d.core.DestroyFence)
}

func (c *coreVal) DestroyDescriptorPool(pool rhi.DescriptorPool) {
	destroy[*descriptorPool](c.d, "DestroyDescriptorPool", "descriptorPool", pool, c.d.core.DestroyDescriptorPool)
}

func (c *coreVal) DestroyBuffer(buf rhi.Buffer) {
	destroy[*buffer](c.d, "DestroyBuffer", "buffer", buf, c.d.core.DestroyBuffer)
}

func (c *coreVal) DestroyTexture(tex rhi.Texture) {
	destroy[*texture](c.d, "DestroyTexture", "texture", tex, c.d.core.DestroyTexture)
}

func (c *coreVal) DestroyDescriptor(desc rhi.Descriptor) {
	destroy[*descriptor](c.d, "DestroyDescriptor", "descriptor", desc, c.d.core.DestroyDescriptor)
}

func (c *coreVal) DestroyPipelineLayout(layout rhi.PipelineLayout) {
	destroy[*pipelineLayout](c.d, "DestroyPipelineLayout", "pipelineLayout", layout, c.d.core.DestroyPipelineLayout)
}

func (c *coreVal) DestroyPipeline(p rhi.Pipeline) {
	destroy[*pipeline](c.d, "DestroyPipeline", "pipeline", p, c.d.core.DestroyPipeline)
}

func (c *coreVal) DestroyQueryPool(pool rhi.QueryPool) {
	destroy[*queryPool](c.d, "DestroyQueryPool", "queryPool", pool, c.d.core.DestroyQueryPool)
}

func (c *coreVal) MapBuffer(buf rhi.Buffer, offset, size uint64) ([]byte, error) {
	const op = "MapBuffer"
	d := c.d
	b, impl, err := need[*buffer](d, op, "buffer", buf)
	if err != nil {
		return nil, err
	}
	if !b.desc.Location.IsHostVisible() {
		return nil, d.fail(ErrInvalidArgument, op, "the buffer is not host visible")
	}
	if size == rhi.WholeSize {
		if offset >= b.desc.Size {
			return nil, d.fail(ErrInvalidArgument, op, "'offset' is out of bounds (%d >= %d)", offset, b.desc.Size)
		}
	} else if !fits(offset, size, b.desc.Size) {
		return nil, d.fail(ErrInvalidArgument, op, "'offset + size' is out of bounds (%d + %d > %d)", offset, size, b.desc.Size)
	}
	if b.mapped.Swap(true) {
		return nil, d.fail(ErrInvalidState, op, "the buffer is already mapped")
	}
	data, err := d.core.MapBuffer(impl, offset, size)
	if err != nil {
		b.mapped.Store(false)
		return nil, err
	}
	return data, nil
}

func (c *coreVal) UnmapBuffer(buf rhi.Buffer) {
	const op = "UnmapBuffer"
	d := c.d
	b, impl, err := need[*buffer](d, op, "buffer", buf)
	if err != nil {
		return
	}
	if !b.mapped.Swap(false) {
		d.errorf(op, "the buffer is not mapped")
		return
	}
	d.core.UnmapBuffer(impl)
}

func (c *coreVal) AllocateDescriptorSets(pool rhi.DescriptorPool, layout rhi.PipelineLayout, setIndex, instanceNum, variableDescriptorNum uint32) ([]rhi.DescriptorSet, error) {
	const op = "AllocateDescriptorSets"
	d := c.d
	p, poolImpl, err := need[*descriptorPool](d, op, "descriptorPool", pool)
	if err != nil {
		return nil, err
	}
	pl, layoutImpl, err := need[*pipelineLayout](d, op, "pipelineLayout", layout)
	if err != nil {
		return nil, err
	}
	if setIndex >= uint32(len(pl.sets)) {
		return nil, d.fail(ErrInvalidArgument, op, "'setIndex' is out of bounds (%d >= %d)", setIndex, len(pl.sets))
	}
	if instanceNum == 0 {
		return nil, d.fail(ErrInvalidArgument, op, "'instanceNum' is 0")
	}
	sl := &pl.sets[setIndex]
	if variableDescriptorNum != 0 && sl.variableSizedAt < 0 {
		return nil, d.fail(ErrInvalidArgument, op, "'variableDescriptorNum' is not 0, but the set has no variable sized range")
	}

	var perType [rhi.DescriptorTypeMaxNum]uint32
	for i, r := range sl.ranges {
		n := r.DescriptorNum
		if i == sl.variableSizedAt {
			n = variableDescriptorNum
		}
		perType[r.DescriptorType] += n * instanceNum
	}
	if exhausted, ok := p.reserve(instanceNum, &perType); !ok {
		return nil, d.fail(ErrInvalidArgument, op, "the descriptor pool is out of %s", exhausted)
	}

	impls, err := d.core.AllocateDescriptorSets(poolImpl, layoutImpl, setIndex, instanceNum, variableDescriptorNum)
	if err != nil {
		p.release(instanceNum, &perType)
		return nil, err
	}
	sets := make([]rhi.DescriptorSet, len(impls))
	for i, impl := range impls {
		s := &descriptorSet{layout: sl, variable: variableDescriptorNum}
		s.init(d, impl)
		sets[i] = s
	}
	return sets, nil
}

func (c *coreVal) ResetDescriptorPool(pool rhi.DescriptorPool) {
	p, impl, err := need[*descriptorPool](c.d, "ResetDescriptorPool", "descriptorPool", pool)
	if err != nil {
		return
	}
	p.reset()
	c.d.core.ResetDescriptorPool(impl)
}

func (c *coreVal) UpdateDescriptorRanges(set rhi.DescriptorSet, rangeOffset uint32, updates []rhi.DescriptorRangeUpdateDesc) {
	const op = "UpdateDescriptorRanges"
	d := c.d
	s, setImpl, err := need[*descriptorSet](d, op, "descriptorSet", set)
	if err != nil {
		return
	}
	rangeNum := uint64(len(s.layout.ranges))
	if uint64(rangeOffset)+uint64(len(updates)) > rangeNum {
		d.errorf(op, "'rangeOffset + len(updates)' is out of bounds (%d + %d > %d)", rangeOffset, len(updates), rangeNum)
		return
	}

	total := 0
	for i, u := range updates {
		capacity := s.rangeCapacity(int(rangeOffset) + i)
		if uint64(u.BaseDescriptor)+uint64(len(u.Descriptors)) > uint64(capacity) {
			d.errorf(op, "'updates[%d]' is out of bounds (%d + %d > %d)", i, u.BaseDescriptor, len(u.Descriptors), capacity)
			return
		}
		for _, h := range u.Descriptors {
			if _, _, err := need[*descriptor](d, op, "updates[].Descriptors[]", h); err != nil {
				return
			}
		}
		total += len(u.Descriptors)
	}

	descs := d.descriptorScratch.Get(total)
	defer d.descriptorScratch.Put(descs)
	inner := d.updateScratch.Get(len(updates))
	defer d.updateScratch.Put(inner)
	for i, u := range updates {
		out := descs[:len(u.Descriptors):len(u.Descriptors)]
		descs = descs[len(u.Descriptors):]
		for j, h := range u.Descriptors {
			out[j] = h.(*descriptor).implHandle()
		}
		inner[i] = rhi.DescriptorRangeUpdateDesc{Descriptors: out, BaseDescriptor: u.BaseDescriptor}
	}
	d.core.UpdateDescriptorRanges(setImpl, rangeOffset, inner)
}

func (c *coreVal) UpdateDynamicConstantBuffers(set rhi.DescriptorSet, baseDynamicConstantBuffer uint32, buffers []rhi.Descriptor) {
	const op = "UpdateDynamicConstantBuffers"
	d := c.d
	s, setImpl, err := need[*descriptorSet](d, op, "descriptorSet", set)
	if err != nil {
		return
	}
	if uint64(baseDynamicConstantBuffer)+uint64(len(buffers)) > uint64(s.layout.dynamicBuffers) {
		d.errorf(op, "'baseDynamicConstantBuffer + len(buffers)' is out of bounds (%d + %d > %d)",
			baseDynamicConstantBuffer, len(buffers), s.layout.dynamicBuffers)
		return
	}
	inner := d.descriptorScratch.Get(len(buffers))
	defer d.descriptorScratch.Put(inner)
	for i, h := range buffers {
		w, impl, err := need[*descriptor](d, op, "buffers[]", h)
		if err != nil {
			return
		}
		if w.kind != descriptorBufferView {
			d.errorf(op, "'buffers[%d]' must be a buffer view", i)
			return
		}
		inner[i] = impl
	}
	d.core.UpdateDynamicConstantBuffers(setImpl, baseDynamicConstantBuffer, inner)
}

func (c *coreVal) CopyDescriptorSet(set rhi.DescriptorSet, desc *rhi.DescriptorSetCopyDesc) {
	const op = "CopyDescriptorSet"
	d := c.d
	dst, dstImpl, err := need[*descriptorSet](d, op, "descriptorSet", set)
	if err != nil {
		return
	}
	if desc == nil {
		d.errorf(op, "'desc' is nil")
		return
	}
	src, srcImpl, err := need[*descriptorSet](d, op, "SrcDescriptorSet", desc.SrcDescriptorSet)
	if err != nil {
		return
	}
	if uint64(desc.SrcBaseRange)+uint64(desc.RangeNum) > uint64(len(src.layout.ranges)) {
		d.errorf(op, "'SrcBaseRange + RangeNum' is out of bounds")
		return
	}
	if uint64(desc.DstBaseRange)+uint64(desc.RangeNum) > uint64(len(dst.layout.ranges)) {
		d.errorf(op, "'DstBaseRange + RangeNum' is out of bounds")
		return
	}
	if uint64(desc.SrcBaseDynamicConstantBuffer)+uint64(desc.DynamicConstantBufferNum) > uint64(src.layout.dynamicBuffers) {
		d.errorf(op, "'SrcBaseDynamicConstantBuffer + DynamicConstantBufferNum' is out of bounds")
		return
	}
	if uint64(desc.DstBaseDynamicConstantBuffer)+uint64(desc.DynamicConstantBufferNum) > uint64(dst.layout.dynamicBuffers) {
		d.errorf(op, "'DstBaseDynamicConstantBuffer + DynamicConstantBufferNum' is out of bounds")
		return
	}
	inner := *desc
	inner.SrcDescriptorSet = srcImpl
	d.core.CopyDescriptorSet(dstImpl, &inner)
}

func (c *coreVal) ResetCommandAllocator(allocator rhi.CommandAllocator) {
	if _, impl, err := need[*commandAllocator](c.d, "ResetCommandAllocator", "commandAllocator", allocator); err == nil {
		c.d.core.ResetCommandAllocator(impl)
	}
}

// translateFences unwraps the fences of a submission into out.
func (d *Device) translateFences(op string, in, out []rhi.FenceSubmitDesc) error {
	for i, f := range in {
		_, impl, err := need[*fence](d, op, "Fence", f.Fence)
		if err != nil {
			return err
		}
		out[i] = f
		out[i].Fence = impl
	}
	return nil
}

func (c *coreVal) QueueSubmit(queue rhi.CommandQueue, desc *rhi.QueueSubmitDesc) error {
	const op = "QueueSubmit"
	d := c.d
	_, queueImpl, err := need[*commandQueue](d, op, "queue", queue)
	if err != nil {
		return err
	}
	if desc == nil {
		return d.fail(ErrInvalidArgument, op, "'desc' is nil")
	}

	cmds := d.cmdScratch.Get(len(desc.CommandBuffers))
	defer d.cmdScratch.Put(cmds)
	for i, h := range desc.CommandBuffers {
		cb, impl, err := need[*commandBuffer](d, op, "CommandBuffers[]", h)
		if err != nil {
			return err
		}
		if cb.isRecording && !cb.isWrapped {
			return d.fail(ErrInvalidState, op, "'CommandBuffers[%d]' is still recording", i)
		}
		cmds[i] = impl
	}

	fences := d.fenceScratch.Get(len(desc.WaitFences) + len(desc.SignalFences))
	defer d.fenceScratch.Put(fences)
	waits := fences[:len(desc.WaitFences):len(desc.WaitFences)]
	signals := fences[len(desc.WaitFences):]
	if err := d.translateFences(op, desc.WaitFences, waits); err != nil {
		return err
	}
	if err := d.translateFences(op, desc.SignalFences, signals); err != nil {
		return err
	}

	_, scImpl, err := opt[*swapChain](d, op, "SwapChain", desc.SwapChain)
	if err != nil {
		return err
	}

	return d.core.QueueSubmit(queueImpl, &rhi.QueueSubmitDesc{
		WaitFences:     waits,
		CommandBuffers: cmds,
		SignalFences:   signals,
		SwapChain:      scImpl,
	})
}

func (c *coreVal) Wait(f rhi.Fence, value uint64) {
	if _, impl, err := need[*fence](c.d, "Wait", "fence", f); err == nil {
		c.d.core.Wait(impl, value)
	}
}
