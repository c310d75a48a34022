package null

import (
	"encoding/binary"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/gogpu/rhi"
)

type rayTracing struct {
	d *Device
}

var _ rhi.RayTracingInterface = (*rayTracing)(nil)

func (r *rayTracing) CreateRayTracingPipeline(desc *rhi.RayTracingPipelineDesc) (rhi.Pipeline, error) {
	r.d.record("CreateRayTracingPipeline")
	p := &pipeline{groupNum: uint32(len(desc.ShaderGroups))}
	p.init(r.d)
	return p, nil
}

// CreateAccelerationStructure sizes the structure from its primitive count:
// 64 bytes per primitive or instance plus a 256 byte header.
func (r *rayTracing) CreateAccelerationStructure(desc *rhi.AccelerationStructureDesc) (rhi.AccelerationStructure, error) {
	r.d.record("CreateAccelerationStructure")
	var primitives uint64
	if desc.Type == rhi.AccelerationStructureTopLevel {
		primitives = uint64(desc.InstanceNum)
	} else {
		for i := range desc.Geometries {
			g := &desc.Geometries[i]
			if g.Type == rhi.BottomLevelGeometryAABBs {
				primitives += uint64(g.AABBs.Num)
			} else {
				primitives += uint64(g.Triangles.PrimitiveNum())
			}
		}
	}
	size := 256 + 64*primitives
	if desc.OptimizedSize != 0 {
		size = desc.OptimizedSize
	}
	as := &accelerationStructure{
		asType:            desc.Type,
		size:              size,
		buildScratchSize:  size / 2,
		updateScratchSize: size / 4,
	}
	as.init(r.d)
	return as, nil
}

func (r *rayTracing) CreateAccelerationStructureDescriptor(h rhi.AccelerationStructure) (rhi.Descriptor, error) {
	r.d.record("CreateAccelerationStructureDescriptor")
	if _, ok := get[*accelerationStructure](r.d, h); !ok {
		return nil, ErrForeignObject
	}
	v := &descriptor{kind: accelerationStructureView}
	v.init(r.d)
	return v, nil
}

func (r *rayTracing) CreateMicromap(desc *rhi.MicromapDesc) (rhi.Micromap, error) {
	r.d.record("CreateMicromap")
	if !r.d.desc.IsMicromapSupported {
		return nil, ErrNotSupported
	}
	var triangles uint64
	for _, u := range desc.Usages {
		triangles += uint64(u.TriangleNum)
	}
	size := 128 + 16*triangles
	if desc.OptimizedSize != 0 {
		size = desc.OptimizedSize
	}
	mm := &micromap{size: size, buildScratchSize: size / 2}
	mm.init(r.d)
	return mm, nil
}

func (r *rayTracing) DestroyAccelerationStructure(rhi.AccelerationStructure) {
	r.d.record("DestroyAccelerationStructure")
}

func (r *rayTracing) DestroyMicromap(rhi.Micromap) { r.d.record("DestroyMicromap") }

func (r *rayTracing) GetAccelerationStructureDeviceAddress(h rhi.AccelerationStructure) uint64 {
	r.d.record("GetAccelerationStructureDeviceAddress")
	if as, ok := get[*accelerationStructure](r.d, h); ok {
		return as.id << 16
	}
	return 0
}

func (r *rayTracing) GetAccelerationStructureBuildScratchBufferSize(h rhi.AccelerationStructure) uint64 {
	r.d.record("GetAccelerationStructureBuildScratchBufferSize")
	if as, ok := get[*accelerationStructure](r.d, h); ok {
		return as.buildScratchSize
	}
	return 0
}

func (r *rayTracing) GetAccelerationStructureUpdateScratchBufferSize(h rhi.AccelerationStructure) uint64 {
	r.d.record("GetAccelerationStructureUpdateScratchBufferSize")
	if as, ok := get[*accelerationStructure](r.d, h); ok {
		return as.updateScratchSize
	}
	return 0
}

func (r *rayTracing) GetAccelerationStructureSize(h rhi.AccelerationStructure) uint64 {
	r.d.record("GetAccelerationStructureSize")
	if as, ok := get[*accelerationStructure](r.d, h); ok {
		return as.size
	}
	return 0
}

func (r *rayTracing) GetMicromapBuildScratchBufferSize(h rhi.Micromap) uint64 {
	r.d.record("GetMicromapBuildScratchBufferSize")
	if mm, ok := get[*micromap](r.d, h); ok {
		return mm.buildScratchSize
	}
	return 0
}

func (r *rayTracing) GetMicromapSize(h rhi.Micromap) uint64 {
	r.d.record("GetMicromapSize")
	if mm, ok := get[*micromap](r.d, h); ok {
		return mm.size
	}
	return 0
}

// WriteShaderGroupIdentifiers writes the pipeline id and the group index
// into each identifier so tests can tell them apart.
func (r *rayTracing) WriteShaderGroupIdentifiers(h rhi.Pipeline, base, num uint32, dst []byte) error {
	r.d.record("WriteShaderGroupIdentifiers")
	p, ok := get[*pipeline](r.d, h)
	if !ok {
		return ErrForeignObject
	}
	if base+num > p.groupNum {
		return errors.Wrapf(rhi.InvalidArgument, "null: groups [%d, %d) out of %d", base, base+num, p.groupNum)
	}
	size := int(r.d.desc.RayTracingShaderGroupIdentifierSize)
	if len(dst) < int(num)*size || size < 16 {
		return errors.Wrap(rhi.InvalidArgument, "null: identifier buffer too small")
	}
	for i := range int(num) {
		id := dst[i*size : (i+1)*size]
		clear(id)
		binary.LittleEndian.PutUint64(id, p.id)
		binary.LittleEndian.PutUint64(id[8:], uint64(base)+uint64(i))
	}
	return nil
}

func (r *rayTracing) CmdBuildTopLevelAccelerationStructures(rhi.CommandBuffer, []rhi.BuildTopLevelAccelerationStructureDesc) {
	r.d.record("CmdBuildTopLevelAccelerationStructures")
}

func (r *rayTracing) CmdBuildBottomLevelAccelerationStructures(rhi.CommandBuffer, []rhi.BuildBottomLevelAccelerationStructureDesc) {
	r.d.record("CmdBuildBottomLevelAccelerationStructures")
}

func (r *rayTracing) CmdBuildMicromaps(rhi.CommandBuffer, []rhi.BuildMicromapDesc) {
	r.d.record("CmdBuildMicromaps")
}

func (r *rayTracing) CmdWriteMicromapsSizes(rhi.CommandBuffer, []rhi.Micromap, rhi.QueryPool, uint32) {
	r.d.record("CmdWriteMicromapsSizes")
}

func (r *rayTracing) CmdWriteAccelerationStructuresSizes(rhi.CommandBuffer, []rhi.AccelerationStructure, rhi.QueryPool, uint32) {
	r.d.record("CmdWriteAccelerationStructuresSizes")
}

func (r *rayTracing) CmdCopyMicromap(rhi.CommandBuffer, rhi.Micromap, rhi.Micromap, rhi.CopyMode) {
	r.d.record("CmdCopyMicromap")
}

func (r *rayTracing) CmdCopyAccelerationStructure(rhi.CommandBuffer, rhi.AccelerationStructure, rhi.AccelerationStructure, rhi.CopyMode) {
	r.d.record("CmdCopyAccelerationStructure")
}

func (r *rayTracing) CmdDispatchRays(rhi.CommandBuffer, *rhi.DispatchRaysDesc) {
	r.d.record("CmdDispatchRays")
}

func (r *rayTracing) CmdDispatchRaysIndirect(rhi.CommandBuffer, rhi.Buffer, uint64) {
	r.d.record("CmdDispatchRaysIndirect")
}

type meshShader struct {
	d *Device
}

func (m *meshShader) CmdDrawMeshTasks(rhi.CommandBuffer, *rhi.DrawMeshTasksDesc) {
	m.d.record("CmdDrawMeshTasks")
}

func (m *meshShader) CmdDrawMeshTasksIndirect(rhi.CommandBuffer, *rhi.DrawIndirectDesc) {
	m.d.record("CmdDrawMeshTasksIndirect")
}

// swapChains presents nowhere. Its textures are ordinary null textures
// handed out round robin.
type swapChains struct {
	d *Device
}

func (s *swapChains) CreateSwapChain(desc *rhi.SwapChainDesc) (rhi.SwapChain, error) {
	s.d.record("CreateSwapChain")
	if !s.d.desc.IsSwapChainSupported {
		return nil, ErrNotSupported
	}
	sc := &swapChain{textures: make([]rhi.Texture, desc.TextureNum)}
	sc.init(s.d)
	sc.native = uint64(desc.Window.Handle)
	for i := range sc.textures {
		t := &texture{desc: rhi.TextureDesc{
			Type:      rhi.TextureType2D,
			Usage:     rhi.TextureUsageColorAttachment,
			Format:    desc.Format,
			Width:     desc.Width,
			Height:    desc.Height,
			Depth:     1,
			MipNum:    1,
			LayerNum:  1,
			SampleNum: 1,
		}}
		t.init(s.d)
		sc.textures[i] = t
	}
	return sc, nil
}

func (s *swapChains) DestroySwapChain(rhi.SwapChain) { s.d.record("DestroySwapChain") }

func (s *swapChains) GetSwapChainTextures(h rhi.SwapChain) []rhi.Texture {
	s.d.record("GetSwapChainTextures")
	if sc, ok := get[*swapChain](s.d, h); ok {
		return sc.textures
	}
	return nil
}

func (s *swapChains) AcquireNextTexture(h rhi.SwapChain) (uint32, error) {
	s.d.record("AcquireNextTexture")
	sc, ok := get[*swapChain](s.d, h)
	if !ok {
		return 0, ErrForeignObject
	}
	if len(sc.textures) == 0 {
		return 0, errors.Wrap(rhi.Failure, "null: swap chain has no textures")
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	i := sc.index
	sc.index = (sc.index + 1) % uint32(len(sc.textures))
	return i, nil
}

func (s *swapChains) WaitForPresent(rhi.SwapChain, time.Duration) error {
	s.d.record("WaitForPresent")
	return nil
}

func (s *swapChains) QueuePresent(rhi.SwapChain) error {
	s.d.record("QueuePresent")
	return nil
}

type wrapper struct {
	d *Device
}

func (w *wrapper) CreateCommandBufferFromNative(desc *rhi.NativeCommandBufferDesc) (rhi.CommandBuffer, error) {
	w.d.record("CreateCommandBufferFromNative")
	cb := &commandBuffer{recording: true}
	cb.init(w.d)
	cb.native = uint64(desc.CommandBuffer)
	return cb, nil
}

func (w *wrapper) CreateBufferFromNative(desc *rhi.NativeBufferDesc) (rhi.Buffer, error) {
	w.d.record("CreateBufferFromNative")
	b := &buffer{}
	if desc.Desc != nil {
		b.desc = *desc.Desc
	}
	b.init(w.d)
	b.native = uint64(desc.Buffer)
	return b, nil
}

func (w *wrapper) CreateTextureFromNative(desc *rhi.NativeTextureDesc) (rhi.Texture, error) {
	w.d.record("CreateTextureFromNative")
	t := &texture{}
	if desc.Desc != nil {
		t.desc = *desc.Desc
	}
	t.init(w.d)
	t.native = uint64(desc.Texture)
	return t, nil
}

func (w *wrapper) CreateQueryPoolFromNative(desc *rhi.NativeQueryPoolDesc) (rhi.QueryPool, error) {
	w.d.record("CreateQueryPoolFromNative")
	p := &queryPool{queryType: desc.QueryType, capacity: desc.Capacity}
	p.init(w.d)
	p.native = uint64(desc.QueryPool)
	return p, nil
}

func (w *wrapper) CreateAccelerationStructureFromNative(desc *rhi.NativeAccelerationStructureDesc) (rhi.AccelerationStructure, error) {
	w.d.record("CreateAccelerationStructureFromNative")
	as := &accelerationStructure{
		asType:            desc.Type,
		size:              desc.Size,
		buildScratchSize:  desc.BuildScratchSize,
		updateScratchSize: desc.UpdateScratchSize,
	}
	as.init(w.d)
	as.native = uint64(desc.AccelerationStructure)
	return as, nil
}

// helper uploads by copying into host memory directly.
type helper struct {
	d *Device
}

func (h *helper) UploadData(q rhi.CommandQueue, _ []rhi.TextureUploadDesc, buffers []rhi.BufferUploadDesc) error {
	h.d.record("UploadData")
	if _, ok := get[*queue](h.d, q); !ok {
		return ErrForeignObject
	}
	for i := range buffers {
		in := &buffers[i]
		b, ok := get[*buffer](h.d, in.Buffer)
		if !ok {
			return ErrForeignObject
		}
		b.mu.Lock()
		copy(b.bytes()[in.Offset:], in.Data)
		b.mu.Unlock()
	}
	return nil
}

func (h *helper) WaitForIdle(q rhi.CommandQueue) error {
	h.d.record("WaitForIdle")
	if _, ok := get[*queue](h.d, q); !ok {
		return ErrForeignObject
	}
	return nil
}
