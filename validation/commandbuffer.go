// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package validation

import (
	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/internal/scratch"
)

// commandBuffer tracks the recording state of one command buffer.
//
// State transitions:
//
//	Idle ──BeginCommandBuffer──▶ Recording ──CmdBeginRendering──▶ InRenderPass
//	 ▲                             │    ▲                              │
//	 └──────EndCommandBuffer───────┘    └───────CmdEndRendering────────┘
//
// A command buffer created from a native handle stays in Recording after
// EndCommandBuffer.
type commandBuffer struct {
	object[rhi.CommandBuffer]
	allocator *commandAllocator

	isRecording  bool
	isRenderPass bool
	isWrapped    bool

	pipeline        *pipeline
	pipelineLayout  *pipelineLayout
	colors          []*descriptor
	depthStencil    *descriptor
	annotationStack int32

	buffers         scratch.Stack[rhi.Buffer]
	descriptors     scratch.Stack[rhi.Descriptor]
	bufferBarriers  scratch.Stack[rhi.BufferBarrierDesc]
	textureBarriers scratch.Stack[rhi.TextureBarrierDesc]
	tlasBuilds      scratch.Stack[rhi.BuildTopLevelAccelerationStructureDesc]
	blasBuilds      scratch.Stack[rhi.BuildBottomLevelAccelerationStructureDesc]
	geometries      scratch.Stack[rhi.BottomLevelGeometryDesc]
	micromapRefs    scratch.Stack[rhi.BottomLevelMicromapDesc]
	micromapBuilds  scratch.Stack[rhi.BuildMicromapDesc]
	micromaps       scratch.Stack[rhi.Micromap]
	structures      scratch.Stack[rhi.AccelerationStructure]
}

func newCommandBuffer(d *Device, impl rhi.CommandBuffer, allocator *commandAllocator) *commandBuffer {
	cb := &commandBuffer{
		allocator: allocator,
		colors:    make([]*descriptor, d.desc.ColorAttachmentMaxNum),
	}
	cb.init(d, impl)
	return cb
}

func (cb *commandBuffer) resetAttachments() {
	clear(cb.colors)
	cb.depthStencil = nil
}

// checkReadonly warns when the bound pipeline writes an aspect that the
// bound depth-stencil attachment exposes read-only.
func (cb *commandBuffer) checkReadonly(op string) {
	if cb.pipeline == nil || cb.depthStencil == nil {
		return
	}
	if cb.depthStencil.isDepthReadonly() && cb.pipeline.writesDepth {
		cb.dev.warnf(op, "depth is read-only, but the pipeline writes to depth; only Vulkan performs the write")
	}
	if cb.depthStencil.isStencilReadonly() && cb.pipeline.writesStencil {
		cb.dev.warnf(op, "stencil is read-only, but the pipeline writes to stencil; only Vulkan performs the write")
	}
}

type scope uint8

const (
	scopeAny scope = iota
	scopeInsidePass
	scopeOutsidePass
)

// recording returns the command buffer behind cmd if op may be recorded into
// it in scope s. Violations are reported.
func (d *Device) recording(op string, cmd rhi.CommandBuffer, s scope) (*commandBuffer, rhi.CommandBuffer, bool) {
	cb, impl, err := need[*commandBuffer](d, op, "commandBuffer", cmd)
	if err != nil {
		return nil, nil, false
	}
	if !cb.isRecording {
		d.errorf(op, "the command buffer must be in the recording state")
		return nil, nil, false
	}
	switch s {
	case scopeInsidePass:
		if !cb.isRenderPass {
			d.errorf(op, "must be called inside 'CmdBeginRendering/CmdEndRendering'")
			return nil, nil, false
		}
	case scopeOutsidePass:
		if cb.isRenderPass {
			d.errorf(op, "must be called outside of 'CmdBeginRendering/CmdEndRendering'")
			return nil, nil, false
		}
	}
	return cb, impl, true
}

func (c *coreVal) BeginCommandBuffer(cmd rhi.CommandBuffer, pool rhi.DescriptorPool) error {
	const op = "BeginCommandBuffer"
	d := c.d
	cb, impl, err := need[*commandBuffer](d, op, "commandBuffer", cmd)
	if err != nil {
		return err
	}
	if cb.isRecording {
		return d.fail(ErrInvalidState, op, "the command buffer is already in the recording state")
	}
	_, poolImpl, err := opt[*descriptorPool](d, op, "descriptorPool", pool)
	if err != nil {
		return err
	}

	err = d.core.BeginCommandBuffer(impl, poolImpl)

	cb.pipeline = nil
	cb.pipelineLayout = nil
	cb.isRenderPass = false
	cb.annotationStack = 0
	cb.resetAttachments()
	if err == nil {
		cb.isRecording = true
	}
	return err
}

func (c *coreVal) EndCommandBuffer(cmd rhi.CommandBuffer) error {
	const op = "EndCommandBuffer"
	d := c.d
	cb, impl, err := need[*commandBuffer](d, op, "commandBuffer", cmd)
	if err != nil {
		return err
	}
	if !cb.isRecording {
		return d.fail(ErrInvalidState, op, "the command buffer must be in the recording state")
	}
	if cb.annotationStack > 0 {
		d.warnf(op, "'CmdBeginAnnotation' is called more times than 'CmdEndAnnotation'")
	} else if cb.annotationStack < 0 {
		d.warnf(op, "'CmdEndAnnotation' is called more times than 'CmdBeginAnnotation'")
	}

	err = d.core.EndCommandBuffer(impl)
	if err == nil {
		cb.isRecording = cb.isWrapped
	}
	return err
}

func (c *coreVal) CmdSetDescriptorPool(cmd rhi.CommandBuffer, pool rhi.DescriptorPool) {
	const op = "CmdSetDescriptorPool"
	d := c.d
	_, impl, ok := d.recording(op, cmd, scopeAny)
	if !ok {
		return
	}
	_, poolImpl, err := need[*descriptorPool](d, op, "descriptorPool", pool)
	if err != nil {
		return
	}
	d.core.CmdSetDescriptorPool(impl, poolImpl)
}

func (c *coreVal) CmdSetPipelineLayout(cmd rhi.CommandBuffer, layout rhi.PipelineLayout) {
	const op = "CmdSetPipelineLayout"
	d := c.d
	cb, impl, ok := d.recording(op, cmd, scopeAny)
	if !ok {
		return
	}
	pl, layoutImpl, err := need[*pipelineLayout](d, op, "pipelineLayout", layout)
	if err != nil {
		return
	}
	cb.pipelineLayout = pl
	d.core.CmdSetPipelineLayout(impl, layoutImpl)
}

func (c *coreVal) CmdSetDescriptorSet(cmd rhi.CommandBuffer, setIndex uint32, set rhi.DescriptorSet, dynamicConstantBufferOffsets []uint32) {
	const op = "CmdSetDescriptorSet"
	d := c.d
	cb, impl, ok := d.recording(op, cmd, scopeAny)
	if !ok {
		return
	}
	if cb.pipelineLayout == nil {
		d.errorf(op, "'CmdSetPipelineLayout' has not been called")
		return
	}
	if setIndex >= uint32(len(cb.pipelineLayout.sets)) {
		d.errorf(op, "'setIndex' is out of bounds (%d >= %d)", setIndex, len(cb.pipelineLayout.sets))
		return
	}
	ds, setImpl, err := need[*descriptorSet](d, op, "descriptorSet", set)
	if err != nil {
		return
	}
	if want := ds.layout.dynamicBuffers; uint32(len(dynamicConstantBufferOffsets)) != want {
		d.errorf(op, "%d dynamic constant buffer offsets given, the set has %d", len(dynamicConstantBufferOffsets), want)
		return
	}
	d.core.CmdSetDescriptorSet(impl, setIndex, setImpl, dynamicConstantBufferOffsets)
}

func (c *coreVal) CmdSetRootConstants(cmd rhi.CommandBuffer, rootConstantIndex uint32, data []byte) {
	const op = "CmdSetRootConstants"
	d := c.d
	cb, impl, ok := d.recording(op, cmd, scopeAny)
	if !ok {
		return
	}
	pl := cb.pipelineLayout
	if pl == nil {
		d.errorf(op, "'CmdSetPipelineLayout' has not been called")
		return
	}
	if rootConstantIndex >= uint32(len(pl.rootConstants)) {
		d.errorf(op, "'rootConstantIndex' is out of bounds (%d >= %d)", rootConstantIndex, len(pl.rootConstants))
		return
	}
	if size := pl.rootConstants[rootConstantIndex].Size; uint32(len(data)) > size {
		d.errorf(op, "%d bytes of data exceed the root constant size %d", len(data), size)
		return
	}
	d.core.CmdSetRootConstants(impl, rootConstantIndex, data)
}

func (c *coreVal) CmdSetRootDescriptor(cmd rhi.CommandBuffer, rootDescriptorIndex uint32, desc rhi.Descriptor) {
	const op = "CmdSetRootDescriptor"
	d := c.d
	cb, impl, ok := d.recording(op, cmd, scopeAny)
	if !ok {
		return
	}
	pl := cb.pipelineLayout
	if pl == nil {
		d.errorf(op, "'CmdSetPipelineLayout' has not been called")
		return
	}
	if rootDescriptorIndex >= uint32(len(pl.rootDescriptors)) {
		d.errorf(op, "'rootDescriptorIndex' is out of bounds (%d >= %d)", rootDescriptorIndex, len(pl.rootDescriptors))
		return
	}
	w, descImpl, err := need[*descriptor](d, op, "descriptor", desc)
	if err != nil {
		return
	}
	if w.kind != descriptorBufferView {
		d.errorf(op, "'descriptor' must be a buffer view")
		return
	}
	d.core.CmdSetRootDescriptor(impl, rootDescriptorIndex, descImpl)
}

func (c *coreVal) CmdSetPipeline(cmd rhi.CommandBuffer, p rhi.Pipeline) {
	const op = "CmdSetPipeline"
	d := c.d
	cb, impl, ok := d.recording(op, cmd, scopeAny)
	if !ok {
		return
	}
	pw, pipelineImpl, err := need[*pipeline](d, op, "pipeline", p)
	if err != nil {
		return
	}
	cb.pipeline = pw
	cb.checkReadonly(op)
	d.core.CmdSetPipeline(impl, pipelineImpl)
}

func (c *coreVal) CmdSetIndexBuffer(cmd rhi.CommandBuffer, buf rhi.Buffer, offset uint64, indexType rhi.IndexType) {
	const op = "CmdSetIndexBuffer"
	d := c.d
	_, impl, ok := d.recording(op, cmd, scopeAny)
	if !ok {
		return
	}
	_, bufImpl, err := need[*buffer](d, op, "buffer", buf)
	if err != nil {
		return
	}
	d.core.CmdSetIndexBuffer(impl, bufImpl, offset, indexType)
}

func (c *coreVal) CmdSetVertexBuffers(cmd rhi.CommandBuffer, baseSlot uint32, buffers []rhi.Buffer, offsets []uint64) {
	const op = "CmdSetVertexBuffers"
	d := c.d
	cb, impl, ok := d.recording(op, cmd, scopeAny)
	if !ok {
		return
	}
	if cb.pipeline == nil {
		d.errorf(op, "'CmdSetPipeline' has not been called")
		return
	}
	if offsets != nil && len(offsets) != len(buffers) {
		d.errorf(op, "%d offsets given for %d buffers", len(offsets), len(buffers))
		return
	}

	inner, mark := cb.buffers.Alloc(len(buffers))
	defer cb.buffers.Release(mark)
	for i, b := range buffers {
		_, bufImpl, err := opt[*buffer](d, op, "buffers", b)
		if err != nil {
			return
		}
		inner[i] = bufImpl
	}
	d.core.CmdSetVertexBuffers(impl, baseSlot, inner, offsets)
}

func (c *coreVal) CmdSetViewports(cmd rhi.CommandBuffer, viewports []rhi.Viewport) {
	const op = "CmdSetViewports"
	d := c.d
	_, impl, ok := d.recording(op, cmd, scopeAny)
	if !ok {
		return
	}
	if n := d.desc.ViewportMaxNum; n != 0 && uint32(len(viewports)) > n {
		d.errorf(op, "'len(viewports)' exceeds 'ViewportMaxNum' (%d > %d)", len(viewports), n)
		return
	}
	if !d.desc.IsViewportOriginBottomLeftSupported {
		for i := range viewports {
			if viewports[i].OriginBottomLeft {
				d.errorf(op, "'IsViewportOriginBottomLeftSupported' is false")
				return
			}
		}
	}
	d.core.CmdSetViewports(impl, viewports)
}

func (c *coreVal) CmdSetScissors(cmd rhi.CommandBuffer, rects []rhi.Rect) {
	const op = "CmdSetScissors"
	d := c.d
	_, impl, ok := d.recording(op, cmd, scopeAny)
	if !ok {
		return
	}
	if n := d.desc.ViewportMaxNum; n != 0 && uint32(len(rects)) > n {
		d.errorf(op, "'len(rects)' exceeds 'ViewportMaxNum' (%d > %d)", len(rects), n)
		return
	}
	d.core.CmdSetScissors(impl, rects)
}

func (c *coreVal) CmdSetStencilReference(cmd rhi.CommandBuffer, frontRef, backRef uint8) {
	if _, impl, ok := c.d.recording("CmdSetStencilReference", cmd, scopeAny); ok {
		c.d.core.CmdSetStencilReference(impl, frontRef, backRef)
	}
}

func (c *coreVal) CmdSetDepthBounds(cmd rhi.CommandBuffer, boundsMin, boundsMax float32) {
	const op = "CmdSetDepthBounds"
	d := c.d
	_, impl, ok := d.recording(op, cmd, scopeAny)
	if !ok {
		return
	}
	if !d.desc.IsDepthBoundsTestSupported {
		d.errorf(op, "'IsDepthBoundsTestSupported' is false")
		return
	}
	d.core.CmdSetDepthBounds(impl, boundsMin, boundsMax)
}

func (c *coreVal) CmdSetBlendConstants(cmd rhi.CommandBuffer, color rhi.Color32f) {
	if _, impl, ok := c.d.recording("CmdSetBlendConstants", cmd, scopeAny); ok {
		c.d.core.CmdSetBlendConstants(impl, color)
	}
}

func (c *coreVal) CmdSetSampleLocations(cmd rhi.CommandBuffer, locations []rhi.SampleLocation, sampleNum uint8) {
	const op = "CmdSetSampleLocations"
	d := c.d
	_, impl, ok := d.recording(op, cmd, scopeAny)
	if !ok {
		return
	}
	if d.desc.SampleLocationsTier == 0 {
		d.errorf(op, "'SampleLocationsTier' is 0")
		return
	}
	d.core.CmdSetSampleLocations(impl, locations, sampleNum)
}

func (c *coreVal) CmdSetShadingRate(cmd rhi.CommandBuffer, desc *rhi.ShadingRateDesc) {
	const op = "CmdSetShadingRate"
	d := c.d
	_, impl, ok := d.recording(op, cmd, scopeAny)
	if !ok {
		return
	}
	if d.desc.ShadingRateTier == 0 {
		d.errorf(op, "'ShadingRateTier' is 0")
		return
	}
	d.core.CmdSetShadingRate(impl, desc)
}

func (c *coreVal) CmdSetDepthBias(cmd rhi.CommandBuffer, desc *rhi.DepthBiasDesc) {
	const op = "CmdSetDepthBias"
	d := c.d
	_, impl, ok := d.recording(op, cmd, scopeAny)
	if !ok {
		return
	}
	if !d.desc.IsDynamicDepthBiasSupported {
		d.errorf(op, "'IsDynamicDepthBiasSupported' is false")
		return
	}
	d.core.CmdSetDepthBias(impl, desc)
}

func (c *coreVal) CmdBeginRendering(cmd rhi.CommandBuffer, desc *rhi.AttachmentsDesc) {
	const op = "CmdBeginRendering"
	d := c.d
	cb, impl, ok := d.recording(op, cmd, scopeOutsidePass)
	if !ok {
		return
	}
	if desc == nil {
		d.errorf(op, "'desc' is nil")
		return
	}
	if desc.ShadingRate != nil && d.desc.ShadingRateTier == 0 {
		d.errorf(op, "'ShadingRateTier' is 0")
		return
	}
	if uint32(len(desc.Colors)) > d.desc.ColorAttachmentMaxNum {
		d.errorf(op, "%d color attachments exceed 'ColorAttachmentMaxNum' (%d)", len(desc.Colors), d.desc.ColorAttachmentMaxNum)
		return
	}

	colors, mark := cb.descriptors.Alloc(len(desc.Colors))
	defer cb.descriptors.Release(mark)
	for i, h := range desc.Colors {
		_, colorImpl, err := opt[*descriptor](d, op, "Colors", h)
		if err != nil {
			return
		}
		colors[i] = colorImpl
	}
	ds, dsImpl, err := opt[*descriptor](d, op, "DepthStencil", desc.DepthStencil)
	if err != nil {
		return
	}
	_, srImpl, err := opt[*descriptor](d, op, "ShadingRate", desc.ShadingRate)
	if err != nil {
		return
	}

	cb.isRenderPass = true
	cb.resetAttachments()
	for i, h := range desc.Colors {
		if h != nil {
			cb.colors[i] = h.(*descriptor)
		}
	}
	cb.depthStencil = ds
	cb.checkReadonly(op)

	inner := *desc
	inner.Colors = colors
	inner.DepthStencil = dsImpl
	inner.ShadingRate = srImpl
	d.core.CmdBeginRendering(impl, &inner)
}

func (c *coreVal) CmdEndRendering(cmd rhi.CommandBuffer) {
	cb, impl, ok := c.d.recording("CmdEndRendering", cmd, scopeInsidePass)
	if !ok {
		return
	}
	cb.isRenderPass = false
	cb.resetAttachments()
	c.d.core.CmdEndRendering(impl)
}

func (c *coreVal) CmdClearAttachments(cmd rhi.CommandBuffer, clears []rhi.ClearDesc, rects []rhi.Rect) {
	const op = "CmdClearAttachments"
	d := c.d
	cb, impl, ok := d.recording(op, cmd, scopeInsidePass)
	if !ok {
		return
	}
	for i := range clears {
		cl := &clears[i]
		if cl.Planes&rhi.PlaneAll == 0 {
			d.errorf(op, "'clears[%d].Planes' must include COLOR, DEPTH or STENCIL", i)
			return
		}
		if cl.Planes&rhi.PlaneColor != 0 {
			if cl.ColorAttachmentIndex >= d.desc.ColorAttachmentMaxNum {
				d.errorf(op, "'clears[%d].ColorAttachmentIndex' is out of bounds (%d >= %d)", i, cl.ColorAttachmentIndex, d.desc.ColorAttachmentMaxNum)
				return
			}
			if cb.colors[cl.ColorAttachmentIndex] == nil {
				d.errorf(op, "color attachment %d is not bound", cl.ColorAttachmentIndex)
				return
			}
		} else if cl.ColorAttachmentIndex != 0 {
			d.errorf(op, "'clears[%d].ColorAttachmentIndex' must be 0 for a depth-stencil clear", i)
			return
		}
		if cl.Planes&(rhi.PlaneDepth|rhi.PlaneStencil) != 0 && cb.depthStencil == nil {
			d.errorf(op, "'clears[%d]' clears depth-stencil, but no depth-stencil attachment is bound", i)
			return
		}
	}
	d.core.CmdClearAttachments(impl, clears, rects)
}

func (c *coreVal) CmdDraw(cmd rhi.CommandBuffer, desc *rhi.DrawDesc) {
	if _, impl, ok := c.d.recording("CmdDraw", cmd, scopeInsidePass); ok {
		c.d.core.CmdDraw(impl, desc)
	}
}

func (c *coreVal) CmdDrawIndexed(cmd rhi.CommandBuffer, desc *rhi.DrawIndexedDesc) {
	if _, impl, ok := c.d.recording("CmdDrawIndexed", cmd, scopeInsidePass); ok {
		c.d.core.CmdDrawIndexed(impl, desc)
	}
}

// indirect validates and translates an indirect draw description.
func (d *Device) indirect(op string, desc *rhi.DrawIndirectDesc) (rhi.DrawIndirectDesc, bool) {
	if desc == nil {
		d.errorf(op, "'desc' is nil")
		return rhi.DrawIndirectDesc{}, false
	}
	buf, bufImpl, err := need[*buffer](d, op, "Buffer", desc.Buffer)
	if err != nil {
		return rhi.DrawIndirectDesc{}, false
	}
	if desc.Offset >= buf.desc.Size {
		d.errorf(op, "'Offset' is out of bounds (%d >= %d)", desc.Offset, buf.desc.Size)
		return rhi.DrawIndirectDesc{}, false
	}
	_, countImpl, err := opt[*buffer](d, op, "CountBuffer", desc.CountBuffer)
	if err != nil {
		return rhi.DrawIndirectDesc{}, false
	}
	if desc.CountBuffer != nil && !d.desc.IsDrawIndirectCountSupported {
		d.errorf(op, "'CountBuffer' is not nil, but 'IsDrawIndirectCountSupported' is false")
		return rhi.DrawIndirectDesc{}, false
	}
	inner := *desc
	inner.Buffer = bufImpl
	inner.CountBuffer = countImpl
	return inner, true
}

func (c *coreVal) CmdDrawIndirect(cmd rhi.CommandBuffer, desc *rhi.DrawIndirectDesc) {
	const op = "CmdDrawIndirect"
	_, impl, ok := c.d.recording(op, cmd, scopeInsidePass)
	if !ok {
		return
	}
	if inner, ok := c.d.indirect(op, desc); ok {
		c.d.core.CmdDrawIndirect(impl, &inner)
	}
}

func (c *coreVal) CmdDrawIndexedIndirect(cmd rhi.CommandBuffer, desc *rhi.DrawIndirectDesc) {
	const op = "CmdDrawIndexedIndirect"
	_, impl, ok := c.d.recording(op, cmd, scopeInsidePass)
	if !ok {
		return
	}
	if inner, ok := c.d.indirect(op, desc); ok {
		c.d.core.CmdDrawIndexedIndirect(impl, &inner)
	}
}

func (c *coreVal) CmdDispatch(cmd rhi.CommandBuffer, desc rhi.DispatchDesc) {
	if _, impl, ok := c.d.recording("CmdDispatch", cmd, scopeOutsidePass); ok {
		c.d.core.CmdDispatch(impl, desc)
	}
}

func (c *coreVal) CmdDispatchIndirect(cmd rhi.CommandBuffer, buf rhi.Buffer, offset uint64) {
	const op = "CmdDispatchIndirect"
	d := c.d
	_, impl, ok := d.recording(op, cmd, scopeOutsidePass)
	if !ok {
		return
	}
	b, bufImpl, err := need[*buffer](d, op, "buffer", buf)
	if err != nil {
		return
	}
	if offset >= b.desc.Size {
		d.errorf(op, "'offset' is out of bounds (%d >= %d)", offset, b.desc.Size)
		return
	}
	d.core.CmdDispatchIndirect(impl, bufImpl, offset)
}

func (c *coreVal) CmdCopyBuffer(cmd rhi.CommandBuffer, dst rhi.Buffer, dstOffset uint64, src rhi.Buffer, srcOffset, size uint64) {
	const op = "CmdCopyBuffer"
	d := c.d
	_, impl, ok := d.recording(op, cmd, scopeOutsidePass)
	if !ok {
		return
	}
	dstBuf, dstImpl, err := need[*buffer](d, op, "dstBuffer", dst)
	if err != nil {
		return
	}
	srcBuf, srcImpl, err := need[*buffer](d, op, "srcBuffer", src)
	if err != nil {
		return
	}
	if size == rhi.WholeSize {
		if srcOffset != 0 || dstOffset != 0 {
			d.errorf(op, "'WholeSize' is used, but 'srcOffset' and 'dstOffset' are not 0")
			return
		}
		if srcBuf.desc.Size != dstBuf.desc.Size {
			d.errorf(op, "'WholeSize' is used, but the buffer sizes differ (%d != %d)", srcBuf.desc.Size, dstBuf.desc.Size)
			return
		}
	} else {
		if !fits(srcOffset, size, srcBuf.desc.Size) {
			d.errorf(op, "'srcOffset + size' is out of bounds (%d + %d > %d)", srcOffset, size, srcBuf.desc.Size)
			return
		}
		if !fits(dstOffset, size, dstBuf.desc.Size) {
			d.errorf(op, "'dstOffset + size' is out of bounds (%d + %d > %d)", dstOffset, size, dstBuf.desc.Size)
			return
		}
	}
	d.core.CmdCopyBuffer(impl, dstImpl, dstOffset, srcImpl, srcOffset, size)
}

// checkRegion reports a region that selects a missing subresource.
func (d *Device) checkRegion(op, what string, t *texture, r *rhi.TextureRegionDesc) error {
	if r == nil {
		return nil
	}
	if r.MipOffset >= t.desc.MipNum {
		return d.fail(ErrInvalidArgument, op, "'%s.MipOffset' is out of bounds (%d >= %d)", what, r.MipOffset, t.desc.MipNum)
	}
	if t.desc.Type != rhi.TextureType3D && r.LayerOffset >= t.desc.LayerNum {
		return d.fail(ErrInvalidArgument, op, "'%s.LayerOffset' is out of bounds (%d >= %d)", what, r.LayerOffset, t.desc.LayerNum)
	}
	return nil
}

func (c *coreVal) CmdCopyTexture(cmd rhi.CommandBuffer, dst rhi.Texture, dstRegion *rhi.TextureRegionDesc, src rhi.Texture, srcRegion *rhi.TextureRegionDesc) {
	const op = "CmdCopyTexture"
	d := c.d
	_, impl, ok := d.recording(op, cmd, scopeOutsidePass)
	if !ok {
		return
	}
	dstTex, dstImpl, err := need[*texture](d, op, "dst", dst)
	if err != nil {
		return
	}
	srcTex, srcImpl, err := need[*texture](d, op, "src", src)
	if err != nil {
		return
	}
	if d.checkRegion(op, "dstRegion", dstTex, dstRegion) != nil || d.checkRegion(op, "srcRegion", srcTex, srcRegion) != nil {
		return
	}
	d.core.CmdCopyTexture(impl, dstImpl, dstRegion, srcImpl, srcRegion)
}

func (c *coreVal) CmdResolveTexture(cmd rhi.CommandBuffer, dst rhi.Texture, dstRegion *rhi.TextureRegionDesc, src rhi.Texture, srcRegion *rhi.TextureRegionDesc) {
	const op = "CmdResolveTexture"
	d := c.d
	_, impl, ok := d.recording(op, cmd, scopeOutsidePass)
	if !ok {
		return
	}
	dstTex, dstImpl, err := need[*texture](d, op, "dst", dst)
	if err != nil {
		return
	}
	srcTex, srcImpl, err := need[*texture](d, op, "src", src)
	if err != nil {
		return
	}
	if d.checkRegion(op, "dstRegion", dstTex, dstRegion) != nil || d.checkRegion(op, "srcRegion", srcTex, srcRegion) != nil {
		return
	}
	d.core.CmdResolveTexture(impl, dstImpl, dstRegion, srcImpl, srcRegion)
}

func (c *coreVal) CmdUploadBufferToTexture(cmd rhi.CommandBuffer, dst rhi.Texture, dstRegion *rhi.TextureRegionDesc, src rhi.Buffer, srcLayout *rhi.TextureDataLayoutDesc) {
	const op = "CmdUploadBufferToTexture"
	d := c.d
	_, impl, ok := d.recording(op, cmd, scopeOutsidePass)
	if !ok {
		return
	}
	dstTex, dstImpl, err := need[*texture](d, op, "dst", dst)
	if err != nil {
		return
	}
	srcBuf, srcImpl, err := need[*buffer](d, op, "src", src)
	if err != nil {
		return
	}
	if srcLayout == nil {
		d.errorf(op, "'srcLayout' is nil")
		return
	}
	if srcLayout.Offset >= srcBuf.desc.Size {
		d.errorf(op, "'srcLayout.Offset' is out of bounds (%d >= %d)", srcLayout.Offset, srcBuf.desc.Size)
		return
	}
	if d.checkRegion(op, "dstRegion", dstTex, dstRegion) != nil {
		return
	}
	d.core.CmdUploadBufferToTexture(impl, dstImpl, dstRegion, srcImpl, srcLayout)
}

func (c *coreVal) CmdReadbackTextureToBuffer(cmd rhi.CommandBuffer, dst rhi.Buffer, dstLayout *rhi.TextureDataLayoutDesc, src rhi.Texture, srcRegion *rhi.TextureRegionDesc) {
	const op = "CmdReadbackTextureToBuffer"
	d := c.d
	_, impl, ok := d.recording(op, cmd, scopeOutsidePass)
	if !ok {
		return
	}
	dstBuf, dstImpl, err := need[*buffer](d, op, "dst", dst)
	if err != nil {
		return
	}
	srcTex, srcImpl, err := need[*texture](d, op, "src", src)
	if err != nil {
		return
	}
	if dstLayout == nil {
		d.errorf(op, "'dstLayout' is nil")
		return
	}
	if dstLayout.Offset >= dstBuf.desc.Size {
		d.errorf(op, "'dstLayout.Offset' is out of bounds (%d >= %d)", dstLayout.Offset, dstBuf.desc.Size)
		return
	}
	if d.checkRegion(op, "srcRegion", srcTex, srcRegion) != nil {
		return
	}
	d.core.CmdReadbackTextureToBuffer(impl, dstImpl, dstLayout, srcImpl, srcRegion)
}

func (c *coreVal) CmdZeroBuffer(cmd rhi.CommandBuffer, buf rhi.Buffer, offset, size uint64) {
	const op = "CmdZeroBuffer"
	d := c.d
	_, impl, ok := d.recording(op, cmd, scopeOutsidePass)
	if !ok {
		return
	}
	b, bufImpl, err := need[*buffer](d, op, "buffer", buf)
	if err != nil {
		return
	}
	if size == rhi.WholeSize {
		if offset != 0 {
			d.errorf(op, "'WholeSize' is used, but 'offset' is not 0")
			return
		}
	} else if !fits(offset, size, b.desc.Size) {
		d.errorf(op, "'offset + size' is out of bounds (%d + %d > %d)", offset, size, b.desc.Size)
		return
	}
	d.core.CmdZeroBuffer(impl, bufImpl, offset, size)
}

func (c *coreVal) CmdClearStorage(cmd rhi.CommandBuffer, desc *rhi.ClearStorageDesc) {
	const op = "CmdClearStorage"
	d := c.d
	_, impl, ok := d.recording(op, cmd, scopeOutsidePass)
	if !ok {
		return
	}
	if desc == nil {
		d.errorf(op, "'desc' is nil")
		return
	}
	w, descImpl, err := need[*descriptor](d, op, "StorageDescriptor", desc.StorageDescriptor)
	if err != nil {
		return
	}
	if !w.isStorage() {
		d.errorf(op, "'StorageDescriptor' must be a SHADER_RESOURCE_STORAGE view")
		return
	}
	inner := *desc
	inner.StorageDescriptor = descImpl
	d.core.CmdClearStorage(impl, &inner)
}

func (c *coreVal) CmdResetQueries(cmd rhi.CommandBuffer, pool rhi.QueryPool, offset, num uint32) {
	const op = "CmdResetQueries"
	d := c.d
	_, impl, ok := d.recording(op, cmd, scopeOutsidePass)
	if !ok {
		return
	}
	qp, poolImpl, err := need[*queryPool](d, op, "queryPool", pool)
	if err != nil {
		return
	}
	if !qp.inBounds(offset, num) {
		d.errorf(op, "'offset + num' is out of bounds (%d + %d > %d)", offset, num, qp.capacity)
		return
	}
	d.core.CmdResetQueries(impl, poolImpl, offset, num)
}

func (c *coreVal) CmdBeginQuery(cmd rhi.CommandBuffer, pool rhi.QueryPool, offset uint32) {
	const op = "CmdBeginQuery"
	d := c.d
	_, impl, ok := d.recording(op, cmd, scopeAny)
	if !ok {
		return
	}
	qp, poolImpl, err := need[*queryPool](d, op, "queryPool", pool)
	if err != nil {
		return
	}
	if qp.queryType == rhi.QueryTypeTimestamp || qp.queryType == rhi.QueryTypeTimestampCopyQueue {
		d.errorf(op, "'BeginQuery' is not supported for timestamp queries")
		return
	}
	if !qp.inBounds(offset, 1) {
		d.errorf(op, "'offset' is out of bounds (%d >= %d)", offset, qp.capacity)
		return
	}
	d.core.CmdBeginQuery(impl, poolImpl, offset)
}

func (c *coreVal) CmdEndQuery(cmd rhi.CommandBuffer, pool rhi.QueryPool, offset uint32) {
	const op = "CmdEndQuery"
	d := c.d
	_, impl, ok := d.recording(op, cmd, scopeAny)
	if !ok {
		return
	}
	qp, poolImpl, err := need[*queryPool](d, op, "queryPool", pool)
	if err != nil {
		return
	}
	if !qp.inBounds(offset, 1) {
		d.errorf(op, "'offset' is out of bounds (%d >= %d)", offset, qp.capacity)
		return
	}
	d.core.CmdEndQuery(impl, poolImpl, offset)
}

func (c *coreVal) CmdCopyQueries(cmd rhi.CommandBuffer, pool rhi.QueryPool, offset, num uint32, dst rhi.Buffer, dstOffset uint64) {
	const op = "CmdCopyQueries"
	d := c.d
	_, impl, ok := d.recording(op, cmd, scopeOutsidePass)
	if !ok {
		return
	}
	qp, poolImpl, err := need[*queryPool](d, op, "queryPool", pool)
	if err != nil {
		return
	}
	if !qp.inBounds(offset, num) {
		d.errorf(op, "'offset + num' is out of bounds (%d + %d > %d)", offset, num, qp.capacity)
		return
	}
	dstBuf, dstImpl, err := need[*buffer](d, op, "dstBuffer", dst)
	if err != nil {
		return
	}
	if dstOffset >= dstBuf.desc.Size {
		d.errorf(op, "'dstOffset' is out of bounds (%d >= %d)", dstOffset, dstBuf.desc.Size)
		return
	}
	d.core.CmdCopyQueries(impl, poolImpl, offset, num, dstImpl, dstOffset)
}

func (c *coreVal) CmdBeginAnnotation(cmd rhi.CommandBuffer, name string, bgra uint32) {
	cb, impl, ok := c.d.recording("CmdBeginAnnotation", cmd, scopeAny)
	if !ok {
		return
	}
	cb.annotationStack++
	c.d.core.CmdBeginAnnotation(impl, name, bgra)
}

func (c *coreVal) CmdEndAnnotation(cmd rhi.CommandBuffer) {
	cb, impl, ok := c.d.recording("CmdEndAnnotation", cmd, scopeAny)
	if !ok {
		return
	}
	cb.annotationStack--
	c.d.core.CmdEndAnnotation(impl)
}

func (c *coreVal) CmdAnnotation(cmd rhi.CommandBuffer, name string, bgra uint32) {
	if _, impl, ok := c.d.recording("CmdAnnotation", cmd, scopeAny); ok {
		c.d.core.CmdAnnotation(impl, name, bgra)
	}
}
