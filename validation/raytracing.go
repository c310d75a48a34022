package validation

import "github.com/gogpu/rhi"

type rayTracingVal struct {
	d *Device
}

var _ rhi.RayTracingInterface = (*rayTracingVal)(nil)

// unsupported reports a device that cannot trace rays at all.
func (r *rayTracingVal) unsupported(op string) error {
	if r.d.desc.RayTracingTier == 0 {
		return r.d.fail(ErrUnsupported, op, "'RayTracingTier' is 0")
	}
	return nil
}

// translateGeometries unwraps the buffers and micromaps of in into out.
// refs holds one micromap reference slot per geometry.
func (d *Device) translateGeometries(op string, in, out []rhi.BottomLevelGeometryDesc, refs []rhi.BottomLevelMicromapDesc) error {
	for i := range in {
		g := &in[i]
		out[i] = *g
		if g.Type == rhi.BottomLevelGeometryAABBs {
			_, impl, err := need[*buffer](d, op, "AABBs.Buffer", g.AABBs.Buffer)
			if err != nil {
				return err
			}
			out[i].AABBs.Buffer = impl
			continue
		}

		tri := &out[i].Triangles
		var err error
		if _, tri.VertexBuffer, err = need[*buffer](d, op, "Triangles.VertexBuffer", g.Triangles.VertexBuffer); err != nil {
			return err
		}
		if _, tri.IndexBuffer, err = opt[*buffer](d, op, "Triangles.IndexBuffer", g.Triangles.IndexBuffer); err != nil {
			return err
		}
		if _, tri.TransformBuffer, err = opt[*buffer](d, op, "Triangles.TransformBuffer", g.Triangles.TransformBuffer); err != nil {
			return err
		}
		if mm := g.Triangles.Micromap; mm != nil {
			if !d.desc.IsMicromapSupported {
				return d.fail(ErrUnsupported, op, "'IsMicromapSupported' is false")
			}
			refs[i] = *mm
			if _, refs[i].Micromap, err = need[*micromap](d, op, "Triangles.Micromap.Micromap", mm.Micromap); err != nil {
				return err
			}
			if _, refs[i].IndexBuffer, err = opt[*buffer](d, op, "Triangles.Micromap.IndexBuffer", mm.IndexBuffer); err != nil {
				return err
			}
			tri.Micromap = &refs[i]
		}
	}
	return nil
}

func (r *rayTracingVal) CreateRayTracingPipeline(desc *rhi.RayTracingPipelineDesc) (rhi.Pipeline, error) {
	const op = "CreateRayTracingPipeline"
	d := r.d
	if err := r.unsupported(op); err != nil {
		return nil, err
	}
	if desc == nil || desc.ShaderLibrary == nil {
		return nil, d.fail(ErrInvalidArgument, op, "'ShaderLibrary' is nil")
	}
	pl, layoutImpl, err := need[*pipelineLayout](d, op, "PipelineLayout", desc.PipelineLayout)
	if err != nil {
		return nil, err
	}
	shaders := desc.ShaderLibrary.Shaders
	for i, sh := range shaders {
		if len(sh.Bytecode) == 0 {
			return nil, d.fail(ErrInvalidArgument, op, "'ShaderLibrary.Shaders[%d].Bytecode' is empty", i)
		}
	}
	for i, g := range desc.ShaderGroups {
		for _, idx := range g.ShaderIndices {
			if idx > uint32(len(shaders)) {
				return nil, d.fail(ErrInvalidArgument, op, "'ShaderGroups[%d]' references shader %d of %d", i, idx, len(shaders))
			}
		}
	}
	if desc.RecursionMaxDepth > d.desc.RayTracingShaderRecursionMaxDepth {
		return nil, d.fail(ErrInvalidArgument, op, "'RecursionMaxDepth' exceeds %d", d.desc.RayTracingShaderRecursionMaxDepth)
	}

	inner := *desc
	inner.PipelineLayout = layoutImpl
	impl, err := d.rayTracing.CreateRayTracingPipeline(&inner)
	if err != nil {
		return nil, err
	}
	p := &pipeline{layout: pl}
	p.init(d, impl)
	return p, nil
}

func (r *rayTracingVal) CreateAccelerationStructure(desc *rhi.AccelerationStructureDesc) (rhi.AccelerationStructure, error) {
	const op = "CreateAccelerationStructure"
	d := r.d
	if err := r.unsupported(op); err != nil {
		return nil, err
	}
	if desc == nil {
		return nil, d.fail(ErrInvalidArgument, op, "'desc' is nil")
	}
	inner := *desc
	if desc.Type == rhi.AccelerationStructureBottomLevel {
		if len(desc.Geometries) == 0 {
			return nil, d.fail(ErrInvalidArgument, op, "a bottom level acceleration structure needs geometries")
		}
		geometries := make([]rhi.BottomLevelGeometryDesc, len(desc.Geometries))
		refs := make([]rhi.BottomLevelMicromapDesc, len(desc.Geometries))
		if err := d.translateGeometries(op, desc.Geometries, geometries, refs); err != nil {
			return nil, err
		}
		inner.Geometries = geometries
	} else if desc.InstanceNum == 0 {
		return nil, d.fail(ErrInvalidArgument, op, "'InstanceNum' is 0")
	}

	impl, err := d.rayTracing.CreateAccelerationStructure(&inner)
	if err != nil {
		return nil, err
	}
	return d.newAccelerationStructure(impl, desc.Type), nil
}

// newAccelerationStructure wraps impl and caches its sizes.
func (d *Device) newAccelerationStructure(impl rhi.AccelerationStructure, asType rhi.AccelerationStructureType) *accelerationStructure {
	as := &accelerationStructure{
		asType:            asType,
		size:              d.rayTracing.GetAccelerationStructureSize(impl),
		buildScratchSize:  d.rayTracing.GetAccelerationStructureBuildScratchBufferSize(impl),
		updateScratchSize: d.rayTracing.GetAccelerationStructureUpdateScratchBufferSize(impl),
		deviceAddress:     d.rayTracing.GetAccelerationStructureDeviceAddress(impl),
	}
	as.init(d, impl)
	return as
}

func (r *rayTracingVal) CreateAccelerationStructureDescriptor(as rhi.AccelerationStructure) (rhi.Descriptor, error) {
	const op = "CreateAccelerationStructureDescriptor"
	d := r.d
	_, asImpl, err := need[*accelerationStructure](d, op, "accelerationStructure", as)
	if err != nil {
		return nil, err
	}
	impl, err := d.rayTracing.CreateAccelerationStructureDescriptor(asImpl)
	if err != nil {
		return nil, err
	}
	v := &descriptor{kind: descriptorAccelerationStructure}
	v.init(d, impl)
	return v, nil
}

func (r *rayTracingVal) CreateMicromap(desc *rhi.MicromapDesc) (rhi.Micromap, error) {
	const op = "CreateMicromap"
	d := r.d
	if !d.desc.IsMicromapSupported {
		return nil, d.fail(ErrUnsupported, op, "'IsMicromapSupported' is false")
	}
	if desc == nil || len(desc.Usages) == 0 {
		return nil, d.fail(ErrInvalidArgument, op, "'Usages' is empty")
	}
	impl, err := d.rayTracing.CreateMicromap(desc)
	if err != nil {
		return nil, err
	}
	m := &micromap{
		size:             d.rayTracing.GetMicromapSize(impl),
		buildScratchSize: d.rayTracing.GetMicromapBuildScratchBufferSize(impl),
	}
	m.init(d, impl)
	return m, nil
}

func (r *rayTracingVal) DestroyAccelerationStructure(as rhi.AccelerationStructure) {
	destroy[*accelerationStructure](r.d, "DestroyAccelerationStructure", "accelerationStructure", as, r.d.rayTracing.DestroyAccelerationStructure)
}

func (r *rayTracingVal) DestroyMicromap(mm rhi.Micromap) {
	destroy[*micromap](r.d, "DestroyMicromap", "micromap", mm, r.d.rayTracing.DestroyMicromap)
}

func (r *rayTracingVal) GetAccelerationStructureDeviceAddress(as rhi.AccelerationStructure) uint64 {
	w, _, err := need[*accelerationStructure](r.d, "GetAccelerationStructureDeviceAddress", "accelerationStructure", as)
	if err != nil {
		return 0
	}
	return w.deviceAddress
}

func (r *rayTracingVal) GetAccelerationStructureBuildScratchBufferSize(as rhi.AccelerationStructure) uint64 {
	w, _, err := need[*accelerationStructure](r.d, "GetAccelerationStructureBuildScratchBufferSize", "accelerationStructure", as)
	if err != nil {
		return 0
	}
	return w.buildScratchSize
}

func (r *rayTracingVal) GetAccelerationStructureUpdateScratchBufferSize(as rhi.AccelerationStructure) uint64 {
	w, _, err := need[*accelerationStructure](r.d, "GetAccelerationStructureUpdateScratchBufferSize", "accelerationStructure", as)
	if err != nil {
		return 0
	}
	return w.updateScratchSize
}

func (r *rayTracingVal) GetAccelerationStructureSize(as rhi.AccelerationStructure) uint64 {
	w, _, err := need[*accelerationStructure](r.d, "GetAccelerationStructureSize", "accelerationStructure", as)
	if err != nil {
		return 0
	}
	return w.size
}

func (r *rayTracingVal) GetMicromapBuildScratchBufferSize(mm rhi.Micromap) uint64 {
	w, _, err := need[*micromap](r.d, "GetMicromapBuildScratchBufferSize", "micromap", mm)
	if err != nil {
		return 0
	}
	return w.buildScratchSize
}

func (r *rayTracingVal) GetMicromapSize(mm rhi.Micromap) uint64 {
	w, _, err := need[*micromap](r.d, "GetMicromapSize", "micromap", mm)
	if err != nil {
		return 0
	}
	return w.size
}

func (r *rayTracingVal) WriteShaderGroupIdentifiers(p rhi.Pipeline, baseShaderGroupIndex, shaderGroupNum uint32, dst []byte) error {
	const op = "WriteShaderGroupIdentifiers"
	d := r.d
	_, impl, err := need[*pipeline](d, op, "pipeline", p)
	if err != nil {
		return err
	}
	size := uint64(shaderGroupNum) * uint64(d.desc.RayTracingShaderGroupIdentifierSize)
	if uint64(len(dst)) < size {
		return d.fail(ErrInvalidArgument, op, "'dst' holds %d bytes, %d needed", len(dst), size)
	}
	return d.rayTracing.WriteShaderGroupIdentifiers(impl, baseShaderGroupIndex, shaderGroupNum, dst)
}

func (r *rayTracingVal) CmdBuildTopLevelAccelerationStructures(cmd rhi.CommandBuffer, descs []rhi.BuildTopLevelAccelerationStructureDesc) {
	const op = "CmdBuildTopLevelAccelerationStructures"
	d := r.d
	cb, impl, ok := d.recording(op, cmd, scopeOutsidePass)
	if !ok || r.unsupported(op) != nil {
		return
	}

	inner, mark := cb.tlasBuilds.Alloc(len(descs))
	defer cb.tlasBuilds.Release(mark)
	for i := range descs {
		in := &descs[i]
		out := &inner[i]
		*out = *in

		var err error
		if _, out.Dst, err = need[*accelerationStructure](d, op, "Dst", in.Dst); err != nil {
			return
		}
		if _, out.Src, err = opt[*accelerationStructure](d, op, "Src", in.Src); err != nil {
			return
		}
		instances, instImpl, err := need[*buffer](d, op, "InstanceBuffer", in.InstanceBuffer)
		if err != nil {
			return
		}
		scratchBuf, scratchImpl, err := need[*buffer](d, op, "ScratchBuffer", in.ScratchBuffer)
		if err != nil {
			return
		}
		if in.InstanceOffset >= instances.desc.Size {
			d.errorf(op, "'descs[%d].InstanceOffset' is out of bounds (%d >= %d)", i, in.InstanceOffset, instances.desc.Size)
			return
		}
		if in.ScratchOffset >= scratchBuf.desc.Size {
			d.errorf(op, "'descs[%d].ScratchOffset' is out of bounds (%d >= %d)", i, in.ScratchOffset, scratchBuf.desc.Size)
			return
		}
		out.InstanceBuffer = instImpl
		out.ScratchBuffer = scratchImpl
	}
	d.rayTracing.CmdBuildTopLevelAccelerationStructures(impl, inner)
}

func (r *rayTracingVal) CmdBuildBottomLevelAccelerationStructures(cmd rhi.CommandBuffer, descs []rhi.BuildBottomLevelAccelerationStructureDesc) {
	const op = "CmdBuildBottomLevelAccelerationStructures"
	d := r.d
	cb, impl, ok := d.recording(op, cmd, scopeOutsidePass)
	if !ok || r.unsupported(op) != nil {
		return
	}

	geometryNum := 0
	for i := range descs {
		geometryNum += len(descs[i].Geometries)
	}
	inner, mark := cb.blasBuilds.Alloc(len(descs))
	defer cb.blasBuilds.Release(mark)
	geometries, geoMark := cb.geometries.Alloc(geometryNum)
	defer cb.geometries.Release(geoMark)
	refs, refMark := cb.micromapRefs.Alloc(geometryNum)
	defer cb.micromapRefs.Release(refMark)

	for i := range descs {
		in := &descs[i]
		out := &inner[i]
		*out = *in

		var err error
		if _, out.Dst, err = need[*accelerationStructure](d, op, "Dst", in.Dst); err != nil {
			return
		}
		if _, out.Src, err = opt[*accelerationStructure](d, op, "Src", in.Src); err != nil {
			return
		}
		scratchBuf, scratchImpl, err := need[*buffer](d, op, "ScratchBuffer", in.ScratchBuffer)
		if err != nil {
			return
		}
		if len(in.Geometries) == 0 {
			d.errorf(op, "'descs[%d].Geometries' is empty", i)
			return
		}
		if in.ScratchOffset >= scratchBuf.desc.Size {
			d.errorf(op, "'descs[%d].ScratchOffset' is out of bounds (%d >= %d)", i, in.ScratchOffset, scratchBuf.desc.Size)
			return
		}
		out.ScratchBuffer = scratchImpl

		n := len(in.Geometries)
		if err := d.translateGeometries(op, in.Geometries, geometries[:n:n], refs[:n:n]); err != nil {
			return
		}
		out.Geometries = geometries[:n:n]
		geometries = geometries[n:]
		refs = refs[n:]
	}
	d.rayTracing.CmdBuildBottomLevelAccelerationStructures(impl, inner)
}

func (r *rayTracingVal) CmdBuildMicromaps(cmd rhi.CommandBuffer, descs []rhi.BuildMicromapDesc) {
	const op = "CmdBuildMicromaps"
	d := r.d
	cb, impl, ok := d.recording(op, cmd, scopeOutsidePass)
	if !ok {
		return
	}
	if !d.desc.IsMicromapSupported {
		d.errorf(op, "'IsMicromapSupported' is false")
		return
	}

	inner, mark := cb.micromapBuilds.Alloc(len(descs))
	defer cb.micromapBuilds.Release(mark)
	for i := range descs {
		in := &descs[i]
		out := &inner[i]
		*out = *in

		var err error
		if _, out.Dst, err = need[*micromap](d, op, "Dst", in.Dst); err != nil {
			return
		}
		data, dataImpl, err := need[*buffer](d, op, "DataBuffer", in.DataBuffer)
		if err != nil {
			return
		}
		triangles, triImpl, err := need[*buffer](d, op, "TriangleBuffer", in.TriangleBuffer)
		if err != nil {
			return
		}
		scratchBuf, scratchImpl, err := need[*buffer](d, op, "ScratchBuffer", in.ScratchBuffer)
		if err != nil {
			return
		}
		if in.DataOffset >= data.desc.Size {
			d.errorf(op, "'descs[%d].DataOffset' is out of bounds (%d >= %d)", i, in.DataOffset, data.desc.Size)
			return
		}
		if in.TriangleOffset >= triangles.desc.Size {
			d.errorf(op, "'descs[%d].TriangleOffset' is out of bounds (%d >= %d)", i, in.TriangleOffset, triangles.desc.Size)
			return
		}
		if in.ScratchOffset >= scratchBuf.desc.Size {
			d.errorf(op, "'descs[%d].ScratchOffset' is out of bounds (%d >= %d)", i, in.ScratchOffset, scratchBuf.desc.Size)
			return
		}
		out.DataBuffer = dataImpl
		out.TriangleBuffer = triImpl
		out.ScratchBuffer = scratchImpl
	}
	d.rayTracing.CmdBuildMicromaps(impl, inner)
}

func (r *rayTracingVal) CmdWriteMicromapsSizes(cmd rhi.CommandBuffer, micromaps []rhi.Micromap, pool rhi.QueryPool, queryPoolOffset uint32) {
	const op = "CmdWriteMicromapsSizes"
	d := r.d
	cb, impl, ok := d.recording(op, cmd, scopeOutsidePass)
	if !ok {
		return
	}
	qp, poolImpl, err := need[*queryPool](d, op, "queryPool", pool)
	if err != nil {
		return
	}
	if qp.queryType != rhi.QueryTypeMicromapCompactedSize {
		d.errorf(op, "'queryPool' query type must be MICROMAP_COMPACTED_SIZE")
		return
	}
	if !qp.inBounds(queryPoolOffset, uint32(len(micromaps))) {
		d.errorf(op, "'queryPoolOffset + len(micromaps)' is out of bounds (%d + %d > %d)", queryPoolOffset, len(micromaps), qp.capacity)
		return
	}

	inner, mark := cb.micromaps.Alloc(len(micromaps))
	defer cb.micromaps.Release(mark)
	for i, m := range micromaps {
		if _, inner[i], err = need[*micromap](d, op, "micromaps[]", m); err != nil {
			return
		}
	}
	d.rayTracing.CmdWriteMicromapsSizes(impl, inner, poolImpl, queryPoolOffset)
}

func (r *rayTracingVal) CmdWriteAccelerationStructuresSizes(cmd rhi.CommandBuffer, structures []rhi.AccelerationStructure, pool rhi.QueryPool, queryPoolOffset uint32) {
	const op = "CmdWriteAccelerationStructuresSizes"
	d := r.d
	cb, impl, ok := d.recording(op, cmd, scopeOutsidePass)
	if !ok || r.unsupported(op) != nil {
		return
	}
	qp, poolImpl, err := need[*queryPool](d, op, "queryPool", pool)
	if err != nil {
		return
	}
	if qp.queryType != rhi.QueryTypeAccelerationStructureSize && qp.queryType != rhi.QueryTypeAccelerationStructureCompactedSize {
		d.errorf(op, "'queryPool' query type must be ACCELERATION_STRUCTURE_SIZE or ACCELERATION_STRUCTURE_COMPACTED_SIZE")
		return
	}
	if !qp.inBounds(queryPoolOffset, uint32(len(structures))) {
		d.errorf(op, "'queryPoolOffset + len(structures)' is out of bounds (%d + %d > %d)", queryPoolOffset, len(structures), qp.capacity)
		return
	}

	inner, mark := cb.structures.Alloc(len(structures))
	defer cb.structures.Release(mark)
	for i, as := range structures {
		if _, inner[i], err = need[*accelerationStructure](d, op, "structures[]", as); err != nil {
			return
		}
	}
	d.rayTracing.CmdWriteAccelerationStructuresSizes(impl, inner, poolImpl, queryPoolOffset)
}

func (r *rayTracingVal) CmdCopyMicromap(cmd rhi.CommandBuffer, dst, src rhi.Micromap, mode rhi.CopyMode) {
	const op = "CmdCopyMicromap"
	d := r.d
	_, impl, ok := d.recording(op, cmd, scopeOutsidePass)
	if !ok {
		return
	}
	_, dstImpl, err := need[*micromap](d, op, "dst", dst)
	if err != nil {
		return
	}
	_, srcImpl, err := need[*micromap](d, op, "src", src)
	if err != nil {
		return
	}
	if mode >= rhi.CopyModeMaxNum {
		d.errorf(op, "'copyMode' is invalid")
		return
	}
	d.rayTracing.CmdCopyMicromap(impl, dstImpl, srcImpl, mode)
}

func (r *rayTracingVal) CmdCopyAccelerationStructure(cmd rhi.CommandBuffer, dst, src rhi.AccelerationStructure, mode rhi.CopyMode) {
	const op = "CmdCopyAccelerationStructure"
	d := r.d
	_, impl, ok := d.recording(op, cmd, scopeOutsidePass)
	if !ok || r.unsupported(op) != nil {
		return
	}
	_, dstImpl, err := need[*accelerationStructure](d, op, "dst", dst)
	if err != nil {
		return
	}
	_, srcImpl, err := need[*accelerationStructure](d, op, "src", src)
	if err != nil {
		return
	}
	if mode >= rhi.CopyModeMaxNum {
		d.errorf(op, "'copyMode' is invalid")
		return
	}
	d.rayTracing.CmdCopyAccelerationStructure(impl, dstImpl, srcImpl, mode)
}

func (r *rayTracingVal) CmdDispatchRays(cmd rhi.CommandBuffer, desc *rhi.DispatchRaysDesc) {
	const op = "CmdDispatchRays"
	d := r.d
	_, impl, ok := d.recording(op, cmd, scopeOutsidePass)
	if !ok || r.unsupported(op) != nil {
		return
	}
	if desc == nil {
		d.errorf(op, "'desc' is nil")
		return
	}
	if desc.RaygenShader.Buffer == nil {
		d.errorf(op, "'RaygenShader.Buffer' is nil")
		return
	}
	if desc.RaygenShader.Size == 0 {
		d.errorf(op, "'RaygenShader.Size' is 0")
		return
	}

	align := uint64(max(d.desc.ShaderBindingTableAlignment, 1))
	tables := [...]struct {
		name string
		in   *rhi.StringArray
	}{
		{"RaygenShader", &desc.RaygenShader},
		{"MissShaders", &desc.MissShaders},
		{"HitShaderGroups", &desc.HitShaderGroups},
		{"CallableShaders", &desc.CallableShaders},
	}
	inner := *desc
	outs := [...]*rhi.StringArray{&inner.RaygenShader, &inner.MissShaders, &inner.HitShaderGroups, &inner.CallableShaders}
	for i, t := range tables {
		if t.in.Offset%align != 0 {
			d.errorf(op, "'%s.Offset' is not aligned to 'ShaderBindingTableAlignment' (%d)", t.name, align)
			return
		}
		_, bufImpl, err := opt[*buffer](d, op, t.name+".Buffer", t.in.Buffer)
		if err != nil {
			return
		}
		outs[i].Buffer = bufImpl
	}
	d.rayTracing.CmdDispatchRays(impl, &inner)
}

func (r *rayTracingVal) CmdDispatchRaysIndirect(cmd rhi.CommandBuffer, buf rhi.Buffer, offset uint64) {
	const op = "CmdDispatchRaysIndirect"
	d := r.d
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
	if d.desc.RayTracingTier < 2 {
		d.errorf(op, "'RayTracingTier' must be at least 2")
		return
	}
	d.rayTracing.CmdDispatchRaysIndirect(impl, bufImpl, offset)
}
