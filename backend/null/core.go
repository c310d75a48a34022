package null

import (
	"github.com/cockroachdb/errors"

	"github.com/gogpu/rhi"
)

type core struct {
	d *Device
}

var _ rhi.CoreInterface = (*core)(nil)

func (c *core) GetDeviceDesc() *rhi.DeviceDesc {
	c.d.record("GetDeviceDesc")
	return &c.d.desc
}

// GetFormatSupport derives support from the format's properties.
func (c *core) GetFormatSupport(format rhi.Format) rhi.FormatSupportBits {
	c.d.record("GetFormatSupport")
	if !format.IsValid() {
		return rhi.FormatSupportUnsupported
	}
	p := format.Props()
	switch {
	case p.IsDepth || p.IsStencil:
		return rhi.FormatSupportTexture | rhi.FormatSupportDepthStencilAttachment
	case p.IsCompressed:
		return rhi.FormatSupportTexture
	}
	bits := rhi.FormatSupportTexture | rhi.FormatSupportStorageTexture |
		rhi.FormatSupportColorAttachment | rhi.FormatSupportBuffer |
		rhi.FormatSupportStorageBuffer | rhi.FormatSupportVertexBuffer
	if !p.IsInteger {
		bits |= rhi.FormatSupportBlend
	}
	if format == rhi.FormatR32Uint || format == rhi.FormatR32Sint {
		bits |= rhi.FormatSupportStorageTextureAtomics
	}
	return bits
}

func (c *core) GetQuerySize(pool rhi.QueryPool) uint32 {
	c.d.record("GetQuerySize")
	p, ok := get[*queryPool](c.d, pool)
	if !ok {
		return 0
	}
	if p.queryType == rhi.QueryTypePipelineStatistics {
		return 11 * 8
	}
	return 8
}

func (c *core) GetFenceValue(f rhi.Fence) uint64 {
	c.d.record("GetFenceValue")
	if fe, ok := get[*fence](c.d, f); ok {
		return fe.value.Load()
	}
	return 0
}

func (c *core) GetCommandQueue(queueType rhi.QueueType) (rhi.CommandQueue, error) {
	c.d.record("GetCommandQueue")
	if queueType >= rhi.QueueTypeMaxNum {
		return nil, errors.Wrapf(rhi.InvalidArgument, "null: queue type %d", queueType)
	}
	return c.d.queues[queueType], nil
}

func (c *core) CreateCommandAllocator(q rhi.CommandQueue) (rhi.CommandAllocator, error) {
	c.d.record("CreateCommandAllocator")
	qu, ok := get[*queue](c.d, q)
	if !ok {
		return nil, ErrForeignObject
	}
	a := &commandAllocator{queue: qu}
	a.init(c.d)
	return a, nil
}

func (c *core) CreateCommandBuffer(allocator rhi.CommandAllocator) (rhi.CommandBuffer, error) {
	c.d.record("CreateCommandBuffer")
	if _, ok := get[*commandAllocator](c.d, allocator); !ok {
		return nil, ErrForeignObject
	}
	cb := &commandBuffer{}
	cb.init(c.d)
	return cb, nil
}

func (c *core) CreateFence(initialValue uint64) (rhi.Fence, error) {
	c.d.record("CreateFence")
	f := &fence{}
	f.init(c.d)
	f.value.Store(initialValue)
	return f, nil
}

func (c *core) CreateDescriptorPool(desc *rhi.DescriptorPoolDesc) (rhi.DescriptorPool, error) {
	c.d.record("CreateDescriptorPool")
	p := &descriptorPool{desc: *desc}
	p.init(c.d)
	return p, nil
}

func (c *core) CreateBuffer(desc *rhi.BufferDesc) (rhi.Buffer, error) {
	c.d.record("CreateBuffer")
	if desc.Size > c.d.desc.BufferMaxSize {
		return nil, errors.Wrapf(rhi.OutOfMemory, "null: buffer size %d", desc.Size)
	}
	b := &buffer{desc: *desc}
	b.init(c.d)
	return b, nil
}

func (c *core) CreateTexture(desc *rhi.TextureDesc) (rhi.Texture, error) {
	c.d.record("CreateTexture")
	t := &texture{desc: *desc}
	t.init(c.d)
	return t, nil
}

func (c *core) CreateBufferView(desc *rhi.BufferViewDesc) (rhi.Descriptor, error) {
	c.d.record("CreateBufferView")
	b, ok := get[*buffer](c.d, desc.Buffer)
	if !ok {
		return nil, ErrForeignObject
	}
	v := &descriptor{kind: bufferView, buffer: b}
	v.init(c.d)
	return v, nil
}

func (c *core) CreateTextureView(desc *rhi.TextureViewDesc) (rhi.Descriptor, error) {
	c.d.record("CreateTextureView")
	t, ok := get[*texture](c.d, desc.Texture)
	if !ok {
		return nil, ErrForeignObject
	}
	v := &descriptor{kind: textureView, texture: t}
	v.init(c.d)
	return v, nil
}

func (c *core) CreateSampler(*rhi.SamplerDesc) (rhi.Descriptor, error) {
	c.d.record("CreateSampler")
	s := &descriptor{kind: sampler}
	s.init(c.d)
	return s, nil
}

func (c *core) CreatePipelineLayout(desc *rhi.PipelineLayoutDesc) (rhi.PipelineLayout, error) {
	c.d.record("CreatePipelineLayout")
	l := &pipelineLayout{setNum: uint32(len(desc.DescriptorSets))}
	l.init(c.d)
	return l, nil
}

func (c *core) CreateGraphicsPipeline(*rhi.GraphicsPipelineDesc) (rhi.Pipeline, error) {
	c.d.record("CreateGraphicsPipeline")
	p := &pipeline{}
	p.init(c.d)
	return p, nil
}

func (c *core) CreateComputePipeline(*rhi.ComputePipelineDesc) (rhi.Pipeline, error) {
	c.d.record("CreateComputePipeline")
	p := &pipeline{}
	p.init(c.d)
	return p, nil
}

func (c *core) CreateQueryPool(desc *rhi.QueryPoolDesc) (rhi.QueryPool, error) {
	c.d.record("CreateQueryPool")
	p := &queryPool{queryType: desc.QueryType, capacity: desc.Capacity}
	p.init(c.d)
	return p, nil
}

func (c *core) DestroyCommandAllocator(rhi.CommandAllocator) { c.d.record("DestroyCommandAllocator") }
func (c *core) DestroyCommandBuffer(rhi.CommandBuffer)       { c.d.record("DestroyCommandBuffer") }
func (c *core) DestroyFence(rhi.Fence)                       { c.d.record("DestroyFence") }
func (c *core) DestroyDescriptorPool(rhi.DescriptorPool)     { c.d.record("DestroyDescriptorPool") }
func (c *core) DestroyTexture(rhi.Texture)                   { c.d.record("DestroyTexture") }
func (c *core) DestroyDescriptor(rhi.Descriptor)             { c.d.record("DestroyDescriptor") }
func (c *core) DestroyPipelineLayout(rhi.PipelineLayout)     { c.d.record("DestroyPipelineLayout") }
func (c *core) DestroyPipeline(rhi.Pipeline)                 { c.d.record("DestroyPipeline") }
func (c *core) DestroyQueryPool(rhi.QueryPool)               { c.d.record("DestroyQueryPool") }

func (c *core) DestroyBuffer(b rhi.Buffer) {
	c.d.record("DestroyBuffer")
	if buf, ok := get[*buffer](c.d, b); ok {
		buf.mu.Lock()
		buf.data = nil
		buf.mu.Unlock()
	}
}

// MapBuffer returns a window into the buffer's host memory. The returned
// slice aliases the buffer until UnmapBuffer.
func (c *core) MapBuffer(b rhi.Buffer, offset, size uint64) ([]byte, error) {
	c.d.record("MapBuffer")
	buf, ok := get[*buffer](c.d, b)
	if !ok {
		return nil, ErrForeignObject
	}
	if !buf.desc.Location.IsHostVisible() {
		return nil, ErrNotMappable
	}
	if size == rhi.WholeSize {
		size = buf.desc.Size - offset
	}
	if offset+size > buf.desc.Size {
		return nil, errors.Wrapf(rhi.InvalidArgument, "null: map range %d+%d exceeds %d", offset, size, buf.desc.Size)
	}
	buf.mu.Lock()
	defer buf.mu.Unlock()
	return buf.bytes()[offset : offset+size], nil
}

func (c *core) UnmapBuffer(rhi.Buffer) { c.d.record("UnmapBuffer") }

func (c *core) AllocateDescriptorSets(pool rhi.DescriptorPool, _ rhi.PipelineLayout, _, instanceNum, _ uint32) ([]rhi.DescriptorSet, error) {
	c.d.record("AllocateDescriptorSets")
	p, ok := get[*descriptorPool](c.d, pool)
	if !ok {
		return nil, ErrForeignObject
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sets+instanceNum > p.desc.DescriptorSetMaxNum {
		return nil, ErrPoolExhausted
	}
	p.sets += instanceNum
	sets := make([]rhi.DescriptorSet, instanceNum)
	for i := range sets {
		s := &descriptorSet{pool: p}
		s.init(c.d)
		sets[i] = s
	}
	return sets, nil
}

func (c *core) ResetDescriptorPool(pool rhi.DescriptorPool) {
	c.d.record("ResetDescriptorPool")
	if p, ok := get[*descriptorPool](c.d, pool); ok {
		p.mu.Lock()
		p.sets = 0
		p.mu.Unlock()
	}
}

func (c *core) UpdateDescriptorRanges(rhi.DescriptorSet, uint32, []rhi.DescriptorRangeUpdateDesc) {
	c.d.record("UpdateDescriptorRanges")
}

func (c *core) UpdateDynamicConstantBuffers(rhi.DescriptorSet, uint32, []rhi.Descriptor) {
	c.d.record("UpdateDynamicConstantBuffers")
}

func (c *core) CopyDescriptorSet(rhi.DescriptorSet, *rhi.DescriptorSetCopyDesc) {
	c.d.record("CopyDescriptorSet")
}

func (c *core) BeginCommandBuffer(cmd rhi.CommandBuffer, _ rhi.DescriptorPool) error {
	c.d.record("BeginCommandBuffer")
	cb, ok := get[*commandBuffer](c.d, cmd)
	if !ok {
		return ErrForeignObject
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.ops = cb.ops[:0]
	cb.recording = true
	return nil
}

func (c *core) EndCommandBuffer(cmd rhi.CommandBuffer) error {
	c.d.record("EndCommandBuffer")
	cb, ok := get[*commandBuffer](c.d, cmd)
	if !ok {
		return ErrForeignObject
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.recording = false
	return nil
}

func (c *core) CmdSetDescriptorPool(rhi.CommandBuffer, rhi.DescriptorPool) {
	c.d.record("CmdSetDescriptorPool")
}

func (c *core) CmdSetPipelineLayout(rhi.CommandBuffer, rhi.PipelineLayout) {
	c.d.record("CmdSetPipelineLayout")
}

func (c *core) CmdSetDescriptorSet(rhi.CommandBuffer, uint32, rhi.DescriptorSet, []uint32) {
	c.d.record("CmdSetDescriptorSet")
}

func (c *core) CmdSetRootConstants(rhi.CommandBuffer, uint32, []byte) {
	c.d.record("CmdSetRootConstants")
}

func (c *core) CmdSetRootDescriptor(rhi.CommandBuffer, uint32, rhi.Descriptor) {
	c.d.record("CmdSetRootDescriptor")
}

func (c *core) CmdSetPipeline(rhi.CommandBuffer, rhi.Pipeline)         { c.d.record("CmdSetPipeline") }
func (c *core) CmdBarrier(rhi.CommandBuffer, *rhi.BarrierGroupDesc)    { c.d.record("CmdBarrier") }
func (c *core) CmdSetViewports(rhi.CommandBuffer, []rhi.Viewport)      { c.d.record("CmdSetViewports") }
func (c *core) CmdSetScissors(rhi.CommandBuffer, []rhi.Rect)           { c.d.record("CmdSetScissors") }
func (c *core) CmdSetStencilReference(rhi.CommandBuffer, uint8, uint8) { c.d.record("CmdSetStencilReference") }
func (c *core) CmdSetDepthBounds(rhi.CommandBuffer, float32, float32)  { c.d.record("CmdSetDepthBounds") }
func (c *core) CmdSetBlendConstants(rhi.CommandBuffer, rhi.Color32f)   { c.d.record("CmdSetBlendConstants") }
func (c *core) CmdSetShadingRate(rhi.CommandBuffer, *rhi.ShadingRateDesc) {
	c.d.record("CmdSetShadingRate")
}
func (c *core) CmdSetDepthBias(rhi.CommandBuffer, *rhi.DepthBiasDesc) { c.d.record("CmdSetDepthBias") }

func (c *core) CmdSetIndexBuffer(rhi.CommandBuffer, rhi.Buffer, uint64, rhi.IndexType) {
	c.d.record("CmdSetIndexBuffer")
}

func (c *core) CmdSetVertexBuffers(rhi.CommandBuffer, uint32, []rhi.Buffer, []uint64) {
	c.d.record("CmdSetVertexBuffers")
}

func (c *core) CmdSetSampleLocations(rhi.CommandBuffer, []rhi.SampleLocation, uint8) {
	c.d.record("CmdSetSampleLocations")
}

func (c *core) CmdBeginRendering(rhi.CommandBuffer, *rhi.AttachmentsDesc) {
	c.d.record("CmdBeginRendering")
}

func (c *core) CmdClearAttachments(rhi.CommandBuffer, []rhi.ClearDesc, []rhi.Rect) {
	c.d.record("CmdClearAttachments")
}

func (c *core) CmdDraw(rhi.CommandBuffer, *rhi.DrawDesc)               { c.d.record("CmdDraw") }
func (c *core) CmdDrawIndexed(rhi.CommandBuffer, *rhi.DrawIndexedDesc) { c.d.record("CmdDrawIndexed") }
func (c *core) CmdDrawIndirect(rhi.CommandBuffer, *rhi.DrawIndirectDesc) {
	c.d.record("CmdDrawIndirect")
}
func (c *core) CmdDrawIndexedIndirect(rhi.CommandBuffer, *rhi.DrawIndirectDesc) {
	c.d.record("CmdDrawIndexedIndirect")
}
func (c *core) CmdEndRendering(rhi.CommandBuffer) { c.d.record("CmdEndRendering") }

func (c *core) CmdDispatch(rhi.CommandBuffer, rhi.DispatchDesc) { c.d.record("CmdDispatch") }
func (c *core) CmdDispatchIndirect(rhi.CommandBuffer, rhi.Buffer, uint64) {
	c.d.record("CmdDispatchIndirect")
}

// CmdCopyBuffer copies host memory when the command buffer is submitted.
func (c *core) CmdCopyBuffer(cmd rhi.CommandBuffer, dst rhi.Buffer, dstOffset uint64, src rhi.Buffer, srcOffset, size uint64) {
	c.d.record("CmdCopyBuffer")
	cb, ok := get[*commandBuffer](c.d, cmd)
	if !ok {
		return
	}
	d, ok1 := get[*buffer](c.d, dst)
	s, ok2 := get[*buffer](c.d, src)
	if !ok1 || !ok2 {
		return
	}
	if size == rhi.WholeSize {
		size = s.desc.Size
	}
	cb.push(func() {
		tmp := make([]byte, size)
		s.mu.Lock()
		copy(tmp, s.bytes()[srcOffset:srcOffset+size])
		s.mu.Unlock()
		d.mu.Lock()
		copy(d.bytes()[dstOffset:dstOffset+size], tmp)
		d.mu.Unlock()
	})
}

func (c *core) CmdCopyTexture(rhi.CommandBuffer, rhi.Texture, *rhi.TextureRegionDesc, rhi.Texture, *rhi.TextureRegionDesc) {
	c.d.record("CmdCopyTexture")
}

func (c *core) CmdResolveTexture(rhi.CommandBuffer, rhi.Texture, *rhi.TextureRegionDesc, rhi.Texture, *rhi.TextureRegionDesc) {
	c.d.record("CmdResolveTexture")
}

func (c *core) CmdUploadBufferToTexture(rhi.CommandBuffer, rhi.Texture, *rhi.TextureRegionDesc, rhi.Buffer, *rhi.TextureDataLayoutDesc) {
	c.d.record("CmdUploadBufferToTexture")
}

func (c *core) CmdReadbackTextureToBuffer(rhi.CommandBuffer, rhi.Buffer, *rhi.TextureDataLayoutDesc, rhi.Texture, *rhi.TextureRegionDesc) {
	c.d.record("CmdReadbackTextureToBuffer")
}

// CmdZeroBuffer clears host memory when the command buffer is submitted.
func (c *core) CmdZeroBuffer(cmd rhi.CommandBuffer, b rhi.Buffer, offset, size uint64) {
	c.d.record("CmdZeroBuffer")
	cb, ok := get[*commandBuffer](c.d, cmd)
	if !ok {
		return
	}
	buf, ok := get[*buffer](c.d, b)
	if !ok {
		return
	}
	if size == rhi.WholeSize {
		size = buf.desc.Size - offset
	}
	cb.push(func() {
		buf.mu.Lock()
		clear(buf.bytes()[offset : offset+size])
		buf.mu.Unlock()
	})
}

func (c *core) CmdClearStorage(rhi.CommandBuffer, *rhi.ClearStorageDesc) {
	c.d.record("CmdClearStorage")
}

func (c *core) CmdResetQueries(rhi.CommandBuffer, rhi.QueryPool, uint32, uint32) {
	c.d.record("CmdResetQueries")
}

func (c *core) CmdBeginQuery(rhi.CommandBuffer, rhi.QueryPool, uint32) { c.d.record("CmdBeginQuery") }
func (c *core) CmdEndQuery(rhi.CommandBuffer, rhi.QueryPool, uint32)   { c.d.record("CmdEndQuery") }

func (c *core) CmdCopyQueries(rhi.CommandBuffer, rhi.QueryPool, uint32, uint32, rhi.Buffer, uint64) {
	c.d.record("CmdCopyQueries")
}

func (c *core) CmdBeginAnnotation(rhi.CommandBuffer, string, uint32) {
	c.d.record("CmdBeginAnnotation")
}

func (c *core) CmdEndAnnotation(rhi.CommandBuffer)              { c.d.record("CmdEndAnnotation") }
func (c *core) CmdAnnotation(rhi.CommandBuffer, string, uint32) { c.d.record("CmdAnnotation") }

func (c *core) ResetCommandAllocator(rhi.CommandAllocator) { c.d.record("ResetCommandAllocator") }

// QueueSubmit runs the recorded work of every command buffer and then
// signals the fences.
func (c *core) QueueSubmit(q rhi.CommandQueue, desc *rhi.QueueSubmitDesc) error {
	c.d.record("QueueSubmit")
	if _, ok := get[*queue](c.d, q); !ok {
		return ErrForeignObject
	}
	for _, cmd := range desc.CommandBuffers {
		if cb, ok := get[*commandBuffer](c.d, cmd); ok {
			cb.execute()
		}
	}
	for _, s := range desc.SignalFences {
		if f, ok := get[*fence](c.d, s.Fence); ok {
			f.value.Store(s.Value)
		}
	}
	return nil
}

// Wait returns immediately: submitted work has completed by the time
// QueueSubmit returns.
func (c *core) Wait(rhi.Fence, uint64) { c.d.record("Wait") }
