package webgpu

import (
	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
)

// commandBuffer records into a HAL command encoder. Render and compute
// passes are opened on the first command that needs them; bound state is
// kept on the command buffer and replayed into every new pass.
type commandBuffer struct {
	object
	allocator *commandAllocator

	encoder   hal.CommandEncoder
	recording bool
	recorded  hal.CommandBuffer
	submitted uint64

	render  hal.RenderPassEncoder
	compute hal.ComputePassEncoder
	target  *renderTarget

	state bindState
}

// renderTarget holds the attachments of the current CmdBeginRendering
// scope and the clears to apply when the next HAL pass starts.
type renderTarget struct {
	colors       []*descriptor
	depth        *descriptor
	clearColors  []*gputypes.Color
	clearDepth   *float32
	clearStencil *uint32
}

type boundSet struct {
	set     *descriptorSet
	offsets []uint32
}

type vertexStream struct {
	buffer *buffer
	offset uint64
}

type bindState struct {
	layout   *pipelineLayout
	pipeline *pipeline
	sets     map[uint32]boundSet
	vertex   map[uint16]vertexStream

	indexBuffer *buffer
	indexOffset uint64
	indexType   rhi.IndexType

	viewport    *rhi.Viewport
	scissor     *rhi.Rect
	blend       *gputypes.Color
	stencilRef  *uint32
	dirtySets   uint32
	dirtyStream bool
	dirtyIndex  bool
	dirtyPipe   bool
}

func (s *bindState) reset() {
	*s = bindState{
		sets:   make(map[uint32]boundSet),
		vertex: make(map[uint16]vertexStream),
	}
}

// invalidate marks everything for re-application in a new pass.
func (s *bindState) invalidate() {
	s.dirtyPipe = true
	s.dirtySets = ^uint32(0)
	s.dirtyStream = true
	s.dirtyIndex = true
}

// release drops recorded work. Submitted command buffers are freed by the
// device once the GPU is done with them.
func (cb *commandBuffer) release() {
	if cb.recording {
		cb.endPasses()
		cb.encoder.DiscardEncoding()
		cb.encoder, cb.recording = nil, false
	}
	if cb.recorded == nil {
		return
	}
	d := cb.dev
	d.submitMu.Lock()
	if cb.submitted == 0 {
		d.hal.FreeCommandBuffer(cb.recorded)
	} else {
		d.retired = append(d.retired, retiredCommandBuffer{buf: cb.recorded, value: cb.submitted})
	}
	d.submitMu.Unlock()
	cb.recorded, cb.submitted = nil, 0
}

func (cb *commandBuffer) endPasses() {
	cb.endCompute()
	if cb.render != nil {
		cb.render.End()
		cb.render = nil
	}
}

func (cb *commandBuffer) endCompute() {
	if cb.compute != nil {
		cb.compute.End()
		cb.compute = nil
	}
}

// ensureRender opens a HAL render pass for the current render target,
// applying pending clears, and replays bound state into it.
func (cb *commandBuffer) ensureRender() hal.RenderPassEncoder {
	if cb.render != nil {
		return cb.render
	}
	t := cb.target
	desc := &hal.RenderPassDescriptor{Label: cb.label("render pass")}
	for i, v := range t.colors {
		ca := hal.RenderPassColorAttachment{
			View:    v.view,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}
		if c := t.clearColors[i]; c != nil {
			ca.LoadOp, ca.ClearValue = gputypes.LoadOpClear, *c
		}
		desc.ColorAttachments = append(desc.ColorAttachments, ca)
	}
	if v := t.depth; v != nil {
		props := v.texture.desc.Format.Props()
		ds := &hal.RenderPassDepthStencilAttachment{View: v.view}
		if props.IsDepth {
			ds.DepthLoadOp, ds.DepthStoreOp = gputypes.LoadOpLoad, gputypes.StoreOpStore
			if t.clearDepth != nil {
				ds.DepthLoadOp, ds.DepthClearValue = gputypes.LoadOpClear, *t.clearDepth
			}
		}
		if props.IsStencil {
			ds.StencilLoadOp, ds.StencilStoreOp = gputypes.LoadOpLoad, gputypes.StoreOpStore
			if t.clearStencil != nil {
				ds.StencilLoadOp, ds.StencilClearValue = gputypes.LoadOpClear, *t.clearStencil
			}
		}
		desc.DepthStencilAttachment = ds
	}
	clear(t.clearColors)
	t.clearDepth, t.clearStencil = nil, nil

	cb.render = cb.encoder.BeginRenderPass(desc)
	s := &cb.state
	s.invalidate()
	if v := s.viewport; v != nil {
		cb.render.SetViewport(v.X, v.Y, v.Width, v.Height, v.DepthMin, v.DepthMax)
	}
	if r := s.scissor; r != nil {
		cb.render.SetScissorRect(uint32(max(r.X, 0)), uint32(max(r.Y, 0)), uint32(r.Width), uint32(r.Height))
	}
	if s.blend != nil {
		cb.render.SetBlendConstant(s.blend)
	}
	if s.stencilRef != nil {
		cb.render.SetStencilReference(*s.stencilRef)
	}
	return cb.render
}

func (cb *commandBuffer) ensureCompute() hal.ComputePassEncoder {
	if cb.compute == nil {
		cb.compute = cb.encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: cb.label("compute pass")})
		cb.state.invalidate()
	}
	return cb.compute
}

// flushSets binds every dirty descriptor set through bind.
func (cb *commandBuffer) flushSets(bind func(index uint32, g hal.BindGroup, offsets []uint32)) bool {
	s := &cb.state
	for i, b := range s.sets {
		if i >= 32 || s.dirtySets&(1<<i) == 0 {
			continue
		}
		g, err := b.set.bindGroup()
		if err != nil {
			cb.dev.logger.Error("webgpu: descriptor set dropped", "set", i, "err", err)
			return false
		}
		bind(i, g, b.offsets)
	}
	s.dirtySets = 0
	return true
}

// flushGraphics opens the render pass and applies pending state. It
// reports false if the draw must be dropped.
func (cb *commandBuffer) flushGraphics() (hal.RenderPassEncoder, bool) {
	rp := cb.ensureRender()
	s := &cb.state
	p := s.pipeline
	if p == nil || p.isCompute() {
		cb.dev.logger.Error("webgpu: draw without a graphics pipeline")
		return nil, false
	}
	if s.dirtyPipe {
		rp.SetPipeline(p.render)
		s.dirtyPipe = false
	}
	if !cb.flushSets(func(i uint32, g hal.BindGroup, offsets []uint32) { rp.SetBindGroup(i, g, offsets) }) {
		return nil, false
	}
	if s.dirtyStream {
		for slot, binding := range p.streams {
			if vs, ok := s.vertex[binding]; ok {
				rp.SetVertexBuffer(uint32(slot), vs.buffer.hal, vs.offset)
			}
		}
		s.dirtyStream = false
	}
	if s.dirtyIndex && s.indexBuffer != nil {
		rp.SetIndexBuffer(s.indexBuffer.hal, indexFormat(s.indexType), s.indexOffset)
		s.dirtyIndex = false
	}
	return rp, true
}

func (cb *commandBuffer) flushCompute() (hal.ComputePassEncoder, bool) {
	cp := cb.ensureCompute()
	s := &cb.state
	p := s.pipeline
	if p == nil || !p.isCompute() {
		cb.dev.logger.Error("webgpu: dispatch without a compute pipeline")
		return nil, false
	}
	if s.dirtyPipe {
		cp.SetPipeline(p.compute)
		s.dirtyPipe = false
	}
	if !cb.flushSets(func(i uint32, g hal.BindGroup, offsets []uint32) { cp.SetBindGroup(i, g, offsets) }) {
		return nil, false
	}
	return cp, true
}

// cmd resolves a command buffer in the recording state.
func (c *core) cmd(h rhi.CommandBuffer) (*commandBuffer, bool) {
	cb, ok := get[*commandBuffer](c.d, h)
	if !ok || !cb.recording {
		return nil, false
	}
	return cb, true
}

func (c *core) BeginCommandBuffer(h rhi.CommandBuffer, _ rhi.DescriptorPool) error {
	cb, ok := get[*commandBuffer](c.d, h)
	if !ok {
		return ErrForeignObject
	}
	if cb.recording {
		return errors.Wrap(rhi.Failure, "webgpu: command buffer is already recording")
	}
	cb.release()
	enc, err := c.d.hal.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: cb.label("command encoder")})
	if err != nil {
		return nativeError("create command encoder", err, true)
	}
	if err := enc.BeginEncoding(cb.label("command buffer")); err != nil {
		return nativeError("begin encoding", err, false)
	}
	cb.encoder, cb.recording, cb.target = enc, true, nil
	cb.state.reset()
	return nil
}

func (c *core) EndCommandBuffer(h rhi.CommandBuffer) error {
	cb, ok := get[*commandBuffer](c.d, h)
	if !ok {
		return ErrForeignObject
	}
	if !cb.recording {
		return ErrNotRecording
	}
	cb.endPasses()
	buf, err := cb.encoder.EndEncoding()
	cb.encoder, cb.recording = nil, false
	if err != nil {
		return nativeError("end encoding", err, false)
	}
	cb.recorded = buf
	return nil
}

// ResetCommandAllocator drops the recorded work of every command buffer
// created from the allocator.
func (c *core) ResetCommandAllocator(h rhi.CommandAllocator) {
	a, ok := get[*commandAllocator](c.d, h)
	if !ok {
		return
	}
	a.mu.Lock()
	cmds := append([]*commandBuffer(nil), a.cmds...)
	a.mu.Unlock()
	for _, cb := range cmds {
		cb.release()
	}
}

func (c *core) CmdSetDescriptorPool(rhi.CommandBuffer, rhi.DescriptorPool) {}

func (c *core) CmdSetPipelineLayout(h rhi.CommandBuffer, lh rhi.PipelineLayout) {
	cb, ok := c.cmd(h)
	if !ok {
		return
	}
	if l, ok := get[*pipelineLayout](c.d, lh); ok && l != cb.state.layout {
		cb.state.layout = l
		clear(cb.state.sets)
	}
}

func (c *core) CmdSetDescriptorSet(h rhi.CommandBuffer, setIndex uint32, sh rhi.DescriptorSet, offsets []uint32) {
	cb, ok := c.cmd(h)
	if !ok {
		return
	}
	s, ok := get[*descriptorSet](c.d, sh)
	if !ok {
		return
	}
	cb.state.sets[setIndex] = boundSet{set: s, offsets: append([]uint32(nil), offsets...)}
	cb.state.dirtySets |= 1 << setIndex
}

func (c *core) CmdSetRootConstants(h rhi.CommandBuffer, _ uint32, _ []byte) {
	c.d.unsupported("CmdSetRootConstants")
}

func (c *core) CmdSetRootDescriptor(h rhi.CommandBuffer, _ uint32, _ rhi.Descriptor) {
	c.d.unsupported("CmdSetRootDescriptor")
}

func (c *core) CmdSetPipeline(h rhi.CommandBuffer, ph rhi.Pipeline) {
	cb, ok := c.cmd(h)
	if !ok {
		return
	}
	p, ok := get[*pipeline](c.d, ph)
	if !ok {
		return
	}
	s := &cb.state
	if s.pipeline != p {
		s.pipeline = p
		s.dirtyPipe = true
		s.dirtyStream = true
		s.dirtySets = ^uint32(0)
	}
}

// CmdBarrier transitions textures between HAL usages. Buffer and global
// barriers need no commands: HAL orders buffer access within a submission.
func (c *core) CmdBarrier(h rhi.CommandBuffer, desc *rhi.BarrierGroupDesc) {
	cb, ok := c.cmd(h)
	if !ok || cb.render != nil {
		return
	}
	cb.endCompute()
	barriers := make([]hal.TextureBarrier, 0, len(desc.Textures))
	for i := range desc.Textures {
		tb := &desc.Textures[i]
		t, ok := get[*texture](c.d, tb.Texture)
		if !ok {
			continue
		}
		before, after := layoutUsage(tb.Before.Layout), layoutUsage(tb.After.Layout)
		if after == 0 || before == after {
			continue
		}
		barriers = append(barriers, hal.TextureBarrier{
			Texture: t.hal,
			Usage:   hal.TextureUsageTransition{OldUsage: before, NewUsage: after},
		})
	}
	if len(barriers) != 0 {
		cb.encoder.TransitionTextures(barriers)
	}
}

func (c *core) CmdSetIndexBuffer(h rhi.CommandBuffer, bh rhi.Buffer, offset uint64, indexType rhi.IndexType) {
	cb, ok := c.cmd(h)
	if !ok {
		return
	}
	if b, ok := get[*buffer](c.d, bh); ok {
		s := &cb.state
		s.indexBuffer, s.indexOffset, s.indexType = b, offset, indexType
		s.dirtyIndex = true
	}
}

func (c *core) CmdSetVertexBuffers(h rhi.CommandBuffer, baseSlot uint32, buffers []rhi.Buffer, offsets []uint64) {
	cb, ok := c.cmd(h)
	if !ok {
		return
	}
	for i, bh := range buffers {
		slot := uint16(baseSlot) + uint16(i)
		b, ok := get[*buffer](c.d, bh)
		if !ok {
			delete(cb.state.vertex, slot)
			continue
		}
		var off uint64
		if i < len(offsets) {
			off = offsets[i]
		}
		cb.state.vertex[slot] = vertexStream{buffer: b, offset: off}
	}
	cb.state.dirtyStream = true
}

// CmdSetViewports keeps the first viewport; WebGPU has a single one.
func (c *core) CmdSetViewports(h rhi.CommandBuffer, viewports []rhi.Viewport) {
	cb, ok := c.cmd(h)
	if !ok || len(viewports) == 0 {
		return
	}
	v := viewports[0]
	cb.state.viewport = &v
	if cb.render != nil {
		cb.render.SetViewport(v.X, v.Y, v.Width, v.Height, v.DepthMin, v.DepthMax)
	}
}

func (c *core) CmdSetScissors(h rhi.CommandBuffer, rects []rhi.Rect) {
	cb, ok := c.cmd(h)
	if !ok || len(rects) == 0 {
		return
	}
	r := rects[0]
	cb.state.scissor = &r
	if cb.render != nil {
		cb.render.SetScissorRect(uint32(max(r.X, 0)), uint32(max(r.Y, 0)), uint32(r.Width), uint32(r.Height))
	}
}

// CmdSetStencilReference uses frontRef for both faces.
func (c *core) CmdSetStencilReference(h rhi.CommandBuffer, frontRef, backRef uint8) {
	cb, ok := c.cmd(h)
	if !ok {
		return
	}
	if frontRef != backRef {
		c.d.unsupported("separate back stencil reference")
	}
	ref := uint32(frontRef)
	cb.state.stencilRef = &ref
	if cb.render != nil {
		cb.render.SetStencilReference(ref)
	}
}

func (c *core) CmdSetDepthBounds(rhi.CommandBuffer, float32, float32) {
	c.d.unsupported("CmdSetDepthBounds")
}

func (c *core) CmdSetBlendConstants(h rhi.CommandBuffer, color rhi.Color32f) {
	cb, ok := c.cmd(h)
	if !ok {
		return
	}
	col := color64(color)
	cb.state.blend = &col
	if cb.render != nil {
		cb.render.SetBlendConstant(&col)
	}
}

func color64(c rhi.Color32f) gputypes.Color {
	return gputypes.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A)}
}

func (c *core) CmdSetSampleLocations(rhi.CommandBuffer, []rhi.SampleLocation, uint8) {
	c.d.unsupported("CmdSetSampleLocations")
}

func (c *core) CmdSetShadingRate(rhi.CommandBuffer, *rhi.ShadingRateDesc) {
	c.d.unsupported("CmdSetShadingRate")
}

func (c *core) CmdSetDepthBias(rhi.CommandBuffer, *rhi.DepthBiasDesc) {
	c.d.unsupported("CmdSetDepthBias")
}

// CmdBeginRendering only records the attachments. The HAL pass starts with
// the first draw or at CmdEndRendering, so clears issued first become load
// operations.
func (c *core) CmdBeginRendering(h rhi.CommandBuffer, desc *rhi.AttachmentsDesc) {
	cb, ok := c.cmd(h)
	if !ok {
		return
	}
	cb.endCompute()
	t := &renderTarget{clearColors: make([]*gputypes.Color, len(desc.Colors))}
	for _, vh := range desc.Colors {
		v, _ := get[*descriptor](c.d, vh)
		if v == nil || v.kind != textureView {
			c.d.logger.Error("webgpu: color attachment is not a texture view")
			return
		}
		t.colors = append(t.colors, v)
	}
	if desc.DepthStencil != nil {
		v, _ := get[*descriptor](c.d, desc.DepthStencil)
		if v == nil || v.kind != textureView {
			c.d.logger.Error("webgpu: depth attachment is not a texture view")
			return
		}
		t.depth = v
	}
	if desc.ShadingRate != nil {
		c.d.unsupported("shading rate attachment")
	}
	cb.target = t
}

// CmdClearAttachments restarts the render pass with clear load operations.
// Only clears covering the whole attachment can be expressed.
func (c *core) CmdClearAttachments(h rhi.CommandBuffer, clears []rhi.ClearDesc, rects []rhi.Rect) {
	cb, ok := c.cmd(h)
	if !ok || cb.target == nil {
		return
	}
	t := cb.target
	for _, r := range rects {
		if !coversTarget(t, r) {
			c.d.unsupported("partial CmdClearAttachments")
			return
		}
	}
	if cb.render != nil {
		cb.render.End()
		cb.render = nil
	}
	for _, cl := range clears {
		if cl.Planes&rhi.PlaneColor != 0 && int(cl.ColorAttachmentIndex) < len(t.colors) {
			col := color64(cl.Value.Color)
			t.clearColors[cl.ColorAttachmentIndex] = &col
		}
		if cl.Planes&rhi.PlaneDepth != 0 {
			depth := cl.Value.Depth
			t.clearDepth = &depth
		}
		if cl.Planes&rhi.PlaneStencil != 0 {
			stencil := uint32(cl.Value.Stencil)
			t.clearStencil = &stencil
		}
	}
}

func coversTarget(t *renderTarget, r rhi.Rect) bool {
	v := t.depth
	if len(t.colors) != 0 {
		v = t.colors[0]
	}
	if v == nil {
		return true
	}
	d := &v.texture.desc
	return r.X <= 0 && r.Y <= 0 &&
		int(r.X)+int(r.Width) >= int(d.Width) && int(r.Y)+int(r.Height) >= int(max(d.Height, 1))
}

func (c *core) CmdDraw(h rhi.CommandBuffer, desc *rhi.DrawDesc) {
	cb, ok := c.cmd(h)
	if !ok || cb.target == nil {
		return
	}
	if rp, ok := cb.flushGraphics(); ok {
		rp.Draw(desc.VertexNum, desc.InstanceNum, desc.BaseVertex, desc.BaseInstance)
	}
}

func (c *core) CmdDrawIndexed(h rhi.CommandBuffer, desc *rhi.DrawIndexedDesc) {
	cb, ok := c.cmd(h)
	if !ok || cb.target == nil {
		return
	}
	if rp, ok := cb.flushGraphics(); ok {
		rp.DrawIndexed(desc.IndexNum, desc.InstanceNum, desc.BaseIndex, desc.BaseVertex, desc.BaseInstance)
	}
}

// Sizes of the indirect argument structures.
const (
	drawArgsSize        = 16
	drawIndexedArgsSize = 20
	dispatchArgsSize    = 12
)

func (c *core) CmdDrawIndirect(h rhi.CommandBuffer, desc *rhi.DrawIndirectDesc) {
	c.drawIndirect(h, desc, false)
}

func (c *core) CmdDrawIndexedIndirect(h rhi.CommandBuffer, desc *rhi.DrawIndirectDesc) {
	c.drawIndirect(h, desc, true)
}

// drawIndirect unrolls multi-draws into DrawNum single indirect draws.
func (c *core) drawIndirect(h rhi.CommandBuffer, desc *rhi.DrawIndirectDesc, indexed bool) {
	cb, ok := c.cmd(h)
	if !ok || cb.target == nil {
		return
	}
	if desc.CountBuffer != nil {
		c.d.unsupported("indirect draw count")
		return
	}
	b, ok := get[*buffer](c.d, desc.Buffer)
	if !ok {
		return
	}
	rp, ok := cb.flushGraphics()
	if !ok {
		return
	}
	stride := uint64(desc.Stride)
	if stride == 0 {
		stride = drawArgsSize
		if indexed {
			stride = drawIndexedArgsSize
		}
	}
	for i := range uint64(max(desc.DrawNum, 1)) {
		off := desc.Offset + i*stride
		if indexed {
			rp.DrawIndexedIndirect(b.hal, off)
		} else {
			rp.DrawIndirect(b.hal, off)
		}
	}
}

// CmdEndRendering starts the pass if nothing was drawn, so pending clears
// still happen, then ends it.
func (c *core) CmdEndRendering(h rhi.CommandBuffer) {
	cb, ok := c.cmd(h)
	if !ok || cb.target == nil {
		return
	}
	cb.ensureRender().End()
	cb.render, cb.target = nil, nil
}

func (c *core) CmdDispatch(h rhi.CommandBuffer, desc rhi.DispatchDesc) {
	cb, ok := c.cmd(h)
	if !ok || cb.target != nil {
		return
	}
	if cp, ok := cb.flushCompute(); ok {
		cp.Dispatch(desc.X, desc.Y, desc.Z)
	}
}

func (c *core) CmdDispatchIndirect(h rhi.CommandBuffer, bh rhi.Buffer, offset uint64) {
	cb, ok := c.cmd(h)
	if !ok || cb.target != nil {
		return
	}
	b, ok := get[*buffer](c.d, bh)
	if !ok {
		return
	}
	if cp, ok := cb.flushCompute(); ok {
		cp.DispatchIndirect(b.hal, offset)
	}
}

// copyCmd resolves a command buffer for a transfer command, closing any
// compute pass first.
func (c *core) copyCmd(h rhi.CommandBuffer) (*commandBuffer, bool) {
	cb, ok := c.cmd(h)
	if !ok || cb.target != nil {
		return nil, false
	}
	cb.endCompute()
	return cb, true
}

func (c *core) CmdCopyBuffer(h rhi.CommandBuffer, dh rhi.Buffer, dstOffset uint64, sh rhi.Buffer, srcOffset, size uint64) {
	cb, ok := c.copyCmd(h)
	if !ok {
		return
	}
	dst, ok1 := get[*buffer](c.d, dh)
	src, ok2 := get[*buffer](c.d, sh)
	if !ok1 || !ok2 {
		return
	}
	if size == rhi.WholeSize {
		size = min(src.desc.Size-srcOffset, dst.desc.Size-dstOffset)
	}
	cb.encoder.CopyBufferToBuffer(src.hal, dst.hal, []hal.BufferCopy{
		{SrcOffset: srcOffset, DstOffset: dstOffset, Size: size},
	})
}

// region resolves a texture region, where zero extents select the rest of
// the mip level.
func region(t *texture, r *rhi.TextureRegionDesc) (hal.ImageCopyTexture, hal.Extent3D) {
	var rd rhi.TextureRegionDesc
	if r != nil {
		rd = *r
	}
	d := &t.desc
	w := max(uint32(d.Width)>>rd.MipOffset, 1)
	h := max(uint32(d.Height)>>rd.MipOffset, 1)
	depth := max(uint32(d.Depth)>>rd.MipOffset, 1)
	z := uint32(rd.Z)
	if d.Type != rhi.TextureType3D {
		depth, z = 1, rd.LayerOffset
	}
	size := hal.Extent3D{Width: uint32(rd.Width), Height: uint32(rd.Height), DepthOrArrayLayers: uint32(rd.Depth)}
	if size.Width == 0 {
		size.Width = w - uint32(rd.X)
	}
	if size.Height == 0 {
		size.Height = h - uint32(rd.Y)
	}
	if size.DepthOrArrayLayers == 0 {
		size.DepthOrArrayLayers = depth - min(uint32(rd.Z), depth-1)
	}
	return hal.ImageCopyTexture{
		Texture:  t.hal,
		MipLevel: rd.MipOffset,
		Origin:   hal.Origin3D{X: uint32(rd.X), Y: uint32(rd.Y), Z: z},
		Aspect:   aspect(rd.Planes),
	}, size
}

func (c *core) CmdCopyTexture(h rhi.CommandBuffer, dh rhi.Texture, dstRegion *rhi.TextureRegionDesc, sh rhi.Texture, srcRegion *rhi.TextureRegionDesc) {
	cb, ok := c.copyCmd(h)
	if !ok {
		return
	}
	dst, ok1 := get[*texture](c.d, dh)
	src, ok2 := get[*texture](c.d, sh)
	if !ok1 || !ok2 {
		return
	}
	srcBase, size := region(src, srcRegion)
	dstBase, _ := region(dst, dstRegion)
	cb.encoder.CopyTextureToTexture(src.hal, dst.hal, []hal.TextureCopy{
		{SrcBase: srcBase, DstBase: dstBase, Size: size},
	})
}

// CmdResolveTexture is dropped: WebGPU resolves only through render pass
// resolve targets.
func (c *core) CmdResolveTexture(rhi.CommandBuffer, rhi.Texture, *rhi.TextureRegionDesc, rhi.Texture, *rhi.TextureRegionDesc) {
	c.d.unsupported("CmdResolveTexture")
}

func dataLayout(l *rhi.TextureDataLayoutDesc, height uint32) hal.ImageDataLayout {
	rows := height
	if l.RowPitch != 0 && l.SlicePitch != 0 {
		rows = l.SlicePitch / l.RowPitch
	}
	return hal.ImageDataLayout{Offset: l.Offset, BytesPerRow: l.RowPitch, RowsPerImage: rows}
}

func (c *core) CmdUploadBufferToTexture(h rhi.CommandBuffer, dh rhi.Texture, dstRegion *rhi.TextureRegionDesc, sh rhi.Buffer, srcLayout *rhi.TextureDataLayoutDesc) {
	cb, ok := c.copyCmd(h)
	if !ok {
		return
	}
	dst, ok1 := get[*texture](c.d, dh)
	src, ok2 := get[*buffer](c.d, sh)
	if !ok1 || !ok2 {
		return
	}
	base, size := region(dst, dstRegion)
	cb.encoder.CopyBufferToTexture(src.hal, dst.hal, []hal.BufferTextureCopy{{
		BufferLayout: dataLayout(srcLayout, size.Height),
		TextureBase:  base,
		Size:         size,
	}})
}

func (c *core) CmdReadbackTextureToBuffer(h rhi.CommandBuffer, dh rhi.Buffer, dstLayout *rhi.TextureDataLayoutDesc, sh rhi.Texture, srcRegion *rhi.TextureRegionDesc) {
	cb, ok := c.copyCmd(h)
	if !ok {
		return
	}
	dst, ok1 := get[*buffer](c.d, dh)
	src, ok2 := get[*texture](c.d, sh)
	if !ok1 || !ok2 {
		return
	}
	base, size := region(src, srcRegion)
	cb.encoder.CopyTextureToBuffer(src.hal, dst.hal, []hal.BufferTextureCopy{{
		BufferLayout: dataLayout(dstLayout, size.Height),
		TextureBase:  base,
		Size:         size,
	}})
}

func (c *core) CmdZeroBuffer(h rhi.CommandBuffer, bh rhi.Buffer, offset, size uint64) {
	cb, ok := c.copyCmd(h)
	if !ok {
		return
	}
	b, ok := get[*buffer](c.d, bh)
	if !ok {
		return
	}
	if size == rhi.WholeSize {
		size = b.desc.Size - offset
	}
	cb.encoder.ClearBuffer(b.hal, offset, size)
}

func (c *core) CmdClearStorage(rhi.CommandBuffer, *rhi.ClearStorageDesc) {
	c.d.unsupported("CmdClearStorage")
}

func (c *core) CmdResetQueries(rhi.CommandBuffer, rhi.QueryPool, uint32, uint32) {}
func (c *core) CmdBeginQuery(rhi.CommandBuffer, rhi.QueryPool, uint32)           {}
func (c *core) CmdEndQuery(rhi.CommandBuffer, rhi.QueryPool, uint32)             {}
func (c *core) CmdCopyQueries(rhi.CommandBuffer, rhi.QueryPool, uint32, uint32, rhi.Buffer, uint64) {
}

// debugMarkers is implemented by HAL encoders that support debug groups.
type debugMarkers interface {
	PushDebugGroup(label string)
	PopDebugGroup()
	InsertDebugMarker(label string)
}

func (c *core) CmdBeginAnnotation(h rhi.CommandBuffer, name string, _ uint32) {
	if cb, ok := c.cmd(h); ok {
		if m, ok := cb.encoder.(debugMarkers); ok {
			m.PushDebugGroup(name)
		}
	}
}

func (c *core) CmdEndAnnotation(h rhi.CommandBuffer) {
	if cb, ok := c.cmd(h); ok {
		if m, ok := cb.encoder.(debugMarkers); ok {
			m.PopDebugGroup()
		}
	}
}

func (c *core) CmdAnnotation(h rhi.CommandBuffer, name string, _ uint32) {
	if cb, ok := c.cmd(h); ok {
		if m, ok := cb.encoder.(debugMarkers); ok {
			m.InsertDebugMarker(name)
		}
	}
}
