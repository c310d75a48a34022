package validation_test

import (
	"errors"
	"testing"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/backend/null"
	"github.com/gogpu/rhi/validation"
)

func TestRayTracingUnsupported(t *testing.T) {
	// The table is present, but the device reports tier 0.
	h := newHarness(t, null.WithAllInterfaces())
	rt := h.dev.Interfaces().RayTracing

	_, err := rt.CreateAccelerationStructure(&rhi.AccelerationStructureDesc{InstanceNum: 1})
	if !errors.Is(err, validation.ErrUnsupported) {
		t.Errorf("CreateAccelerationStructure error = %v, want ErrUnsupported", err)
	}
	h.expect(t, 1, 0, "'RayTracingTier' is 0")

	_, err = rt.CreateRayTracingPipeline(&rhi.RayTracingPipelineDesc{})
	if !errors.Is(err, validation.ErrUnsupported) {
		t.Errorf("CreateRayTracingPipeline error = %v, want ErrUnsupported", err)
	}
	h.expect(t, 1, 0, "'RayTracingTier' is 0")

	cmd := h.recording(t)
	sbt := h.buffer(t, rhi.BufferDesc{Size: 256, Usage: rhi.BufferUsageShaderBindingTable})
	h.clean(t)
	rt.CmdDispatchRays(cmd, &rhi.DispatchRaysDesc{RaygenShader: rhi.StringArray{Buffer: sbt, Size: 32}, X: 1, Y: 1, Z: 1})
	h.expect(t, 1, 0, "'RayTracingTier' is 0")
	if n := h.inner.Calls("CmdDispatchRays"); n != 0 {
		t.Errorf("CmdDispatchRays forwarded %d times", n)
	}
}

func rayTracingHarness(t *testing.T, tier uint8) *harness {
	t.Helper()
	desc := null.DefaultDeviceDesc()
	desc.RayTracingTier = tier
	return newHarness(t, null.WithDeviceDesc(desc))
}

func TestAccelerationStructures(t *testing.T) {
	h := rayTracingHarness(t, 2)
	rt := h.dev.Interfaces().RayTracing
	vertices := h.buffer(t, rhi.BufferDesc{Size: 36, Usage: rhi.BufferUsageAccelerationStructureBuildInput})
	h.clean(t)

	_, err := rt.CreateAccelerationStructure(&rhi.AccelerationStructureDesc{Type: rhi.AccelerationStructureTopLevel})
	if !errors.Is(err, validation.ErrInvalidArgument) {
		t.Errorf("empty top level: error = %v", err)
	}
	h.expect(t, 1, 0, "'InstanceNum' is 0")

	_, err = rt.CreateAccelerationStructure(&rhi.AccelerationStructureDesc{Type: rhi.AccelerationStructureBottomLevel})
	if !errors.Is(err, validation.ErrInvalidArgument) {
		t.Errorf("empty bottom level: error = %v", err)
	}
	h.expect(t, 1, 0, "a bottom level acceleration structure needs geometries")

	triangle := rhi.BottomLevelGeometryDesc{
		Type: rhi.BottomLevelGeometryTriangles,
		Triangles: rhi.BottomLevelTrianglesDesc{
			VertexBuffer: vertices,
			VertexNum:    3,
			VertexStride: 12,
			VertexFormat: rhi.FormatRGB32Sfloat,
		},
	}
	noVertices := triangle
	noVertices.Triangles.VertexBuffer = nil
	_, err = rt.CreateAccelerationStructure(&rhi.AccelerationStructureDesc{
		Type:       rhi.AccelerationStructureBottomLevel,
		Geometries: []rhi.BottomLevelGeometryDesc{noVertices},
	})
	if !errors.Is(err, validation.ErrInvalidArgument) {
		t.Errorf("missing vertex buffer: error = %v", err)
	}
	h.expect(t, 1, 0, "'Triangles.VertexBuffer' is nil")

	blas, err := rt.CreateAccelerationStructure(&rhi.AccelerationStructureDesc{
		Type:       rhi.AccelerationStructureBottomLevel,
		Geometries: []rhi.BottomLevelGeometryDesc{triangle},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := rt.GetAccelerationStructureSize(blas); got != 320 {
		t.Errorf("GetAccelerationStructureSize() = %d, want 320", got)
	}
	if got := rt.GetAccelerationStructureBuildScratchBufferSize(blas); got != 160 {
		t.Errorf("GetAccelerationStructureBuildScratchBufferSize() = %d, want 160", got)
	}
	if rt.GetAccelerationStructureDeviceAddress(blas) == 0 {
		t.Error("GetAccelerationStructureDeviceAddress() = 0")
	}
	h.clean(t)

	// Sizes are cached at creation: the queries are not forwarded.
	h.inner.ResetCalls()
	rt.GetAccelerationStructureSize(blas)
	rt.GetAccelerationStructureUpdateScratchBufferSize(blas)
	if n := h.inner.TotalCalls(); n != 0 {
		t.Errorf("size queries forwarded %d calls", n)
	}

	scratch := h.buffer(t, rhi.BufferDesc{Size: 160, Usage: rhi.BufferUsageScratchBuffer})
	cmd := h.recording(t)
	h.clean(t)
	rt.CmdBuildBottomLevelAccelerationStructures(cmd, []rhi.BuildBottomLevelAccelerationStructureDesc{{
		Dst:           blas,
		Geometries:    []rhi.BottomLevelGeometryDesc{triangle},
		ScratchBuffer: scratch,
	}})
	h.clean(t)
	rt.CmdBuildBottomLevelAccelerationStructures(cmd, []rhi.BuildBottomLevelAccelerationStructureDesc{{
		Dst:           blas,
		Geometries:    []rhi.BottomLevelGeometryDesc{triangle},
		ScratchBuffer: scratch,
		ScratchOffset: 160,
	}})
	h.expect(t, 1, 0, "'descs[0].ScratchOffset' is out of bounds (160 >= 160)")
	if n := h.inner.Calls("CmdBuildBottomLevelAccelerationStructures"); n != 1 {
		t.Errorf("CmdBuildBottomLevelAccelerationStructures forwarded %d times, want 1", n)
	}

	rt.DestroyAccelerationStructure(blas)
	rt.DestroyAccelerationStructure(blas)
	h.expect(t, 1, 0, "'accelerationStructure' is already destroyed")
}

func TestDispatchRays(t *testing.T) {
	tests := []struct {
		name string
		desc func(sbt rhi.Buffer) *rhi.DispatchRaysDesc
		want string
	}{
		{"valid", func(sbt rhi.Buffer) *rhi.DispatchRaysDesc {
			return &rhi.DispatchRaysDesc{
				RaygenShader: rhi.StringArray{Buffer: sbt, Size: 32, Stride: 32},
				MissShaders:  rhi.StringArray{Buffer: sbt, Offset: 64, Size: 32, Stride: 32},
				X:            8, Y: 8, Z: 1,
			}
		}, ""},
		{"no raygen", func(rhi.Buffer) *rhi.DispatchRaysDesc {
			return &rhi.DispatchRaysDesc{X: 1, Y: 1, Z: 1}
		}, "'RaygenShader.Buffer' is nil"},
		{"empty raygen", func(sbt rhi.Buffer) *rhi.DispatchRaysDesc {
			return &rhi.DispatchRaysDesc{RaygenShader: rhi.StringArray{Buffer: sbt}}
		}, "'RaygenShader.Size' is 0"},
		{"misaligned miss table", func(sbt rhi.Buffer) *rhi.DispatchRaysDesc {
			return &rhi.DispatchRaysDesc{
				RaygenShader: rhi.StringArray{Buffer: sbt, Size: 32},
				MissShaders:  rhi.StringArray{Buffer: sbt, Offset: 32, Size: 32},
			}
		}, "'MissShaders.Offset' is not aligned to 'ShaderBindingTableAlignment' (64)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := rayTracingHarness(t, 2)
			rt := h.dev.Interfaces().RayTracing
			sbt := h.buffer(t, rhi.BufferDesc{Size: 256, Usage: rhi.BufferUsageShaderBindingTable})
			cmd := h.recording(t)
			h.clean(t)

			rt.CmdDispatchRays(cmd, tt.desc(sbt))
			if tt.want == "" {
				h.clean(t)
				if n := h.inner.Calls("CmdDispatchRays"); n != 1 {
					t.Errorf("CmdDispatchRays forwarded %d times, want 1", n)
				}
				return
			}
			h.expect(t, 1, 0, tt.want)
			if n := h.inner.Calls("CmdDispatchRays"); n != 0 {
				t.Error("rejected dispatch was forwarded")
			}
		})
	}
}

func TestDispatchRaysIndirectNeedsTier2(t *testing.T) {
	for _, tier := range []uint8{1, 2} {
		h := rayTracingHarness(t, tier)
		rt := h.dev.Interfaces().RayTracing
		args := h.buffer(t, rhi.BufferDesc{Size: 128, Usage: rhi.BufferUsageArgumentBuffer})
		cmd := h.recording(t)
		h.clean(t)

		rt.CmdDispatchRaysIndirect(cmd, args, 0)
		if tier < 2 {
			h.expect(t, 1, 0, "'RayTracingTier' must be at least 2")
			continue
		}
		h.clean(t)
		rt.CmdDispatchRaysIndirect(cmd, args, 128)
		h.expect(t, 1, 0, "'offset' is out of bounds (128 >= 128)")
	}
}

func TestWriteShaderGroupIdentifiers(t *testing.T) {
	h := rayTracingHarness(t, 2)
	rt := h.dev.Interfaces().RayTracing
	layout := h.layout(t, rhi.PipelineLayoutDesc{})
	code := []byte{0x03, 0x02, 0x23, 0x07}

	_, err := rt.CreateRayTracingPipeline(&rhi.RayTracingPipelineDesc{
		PipelineLayout: layout,
		ShaderLibrary:  &rhi.ShaderLibraryDesc{Shaders: []rhi.ShaderDesc{{Stage: rhi.StageRaygenShader, Bytecode: code}}},
		ShaderGroups:   []rhi.ShaderGroupDesc{{ShaderIndices: [3]uint32{2}}},
	})
	if !errors.Is(err, validation.ErrInvalidArgument) {
		t.Errorf("dangling shader index: error = %v", err)
	}
	h.expect(t, 1, 0, "'ShaderGroups[0]' references shader 2 of 1")

	p, err := rt.CreateRayTracingPipeline(&rhi.RayTracingPipelineDesc{
		PipelineLayout:    layout,
		ShaderLibrary:     &rhi.ShaderLibraryDesc{Shaders: []rhi.ShaderDesc{{Stage: rhi.StageRaygenShader, Bytecode: code}}},
		ShaderGroups:      []rhi.ShaderGroupDesc{{ShaderIndices: [3]uint32{1}}},
		RecursionMaxDepth: 1,
	})
	if err != nil {
		t.Fatal(err)
	}

	size := int(h.dev.Desc().RayTracingShaderGroupIdentifierSize)
	if err := rt.WriteShaderGroupIdentifiers(p, 0, 1, make([]byte, size-1)); !errors.Is(err, validation.ErrInvalidArgument) {
		t.Errorf("short dst: error = %v", err)
	}
	h.expect(t, 1, 0, "'dst' holds")
	if err := rt.WriteShaderGroupIdentifiers(p, 0, 1, make([]byte, size)); err != nil {
		t.Errorf("WriteShaderGroupIdentifiers() = %v", err)
	}
	h.clean(t)
}

func TestMeshShaderDraws(t *testing.T) {
	tests := []struct {
		name      string
		supported bool
		inPass    bool
		want      string
	}{
		{"supported", true, true, ""},
		{"outside pass", true, false, "must be called inside 'CmdBeginRendering/CmdEndRendering'"},
		{"unsupported", false, true, "'IsMeshShaderSupported' is false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, null.WithAllInterfaces(), null.WithMeshShader(tt.supported))
			cmd := h.recording(t)
			if tt.inPass {
				h.renderPass(t, cmd)
			}
			h.clean(t)

			h.dev.Interfaces().MeshShader.CmdDrawMeshTasks(cmd, &rhi.DrawMeshTasksDesc{X: 4, Y: 1, Z: 1})
			forwarded := h.inner.Calls("CmdDrawMeshTasks")
			if tt.want == "" {
				h.clean(t)
				if forwarded != 1 {
					t.Errorf("CmdDrawMeshTasks forwarded %d times, want 1", forwarded)
				}
				return
			}
			h.expect(t, 1, 0, tt.want)
			if forwarded != 0 {
				t.Error("rejected draw was forwarded")
			}
		})
	}
}

func TestSwapChain(t *testing.T) {
	h := newHarness(t)
	sc := h.dev.Interfaces().SwapChain
	valid := rhi.SwapChainDesc{
		Window:       rhi.Window{Handle: 0x1000},
		CommandQueue: h.queue,
		Width:        640,
		Height:       480,
		TextureNum:   3,
		Format:       rhi.FormatBGRA8Unorm,
	}

	tests := []struct {
		name   string
		modify func(*rhi.SwapChainDesc)
		want   string
	}{
		{"zero width", func(d *rhi.SwapChainDesc) { d.Width = 0 }, "'Width' and 'Height' must be non-zero"},
		{"single texture", func(d *rhi.SwapChainDesc) { d.TextureNum = 1 }, "'TextureNum' must be at least 2"},
		{"no queue", func(d *rhi.SwapChainDesc) { d.CommandQueue = nil }, "'CommandQueue' is nil"},
	}
	for _, tt := range tests {
		desc := valid
		tt.modify(&desc)
		if _, err := sc.CreateSwapChain(&desc); !errors.Is(err, validation.ErrInvalidArgument) {
			t.Errorf("%s: error = %v, want ErrInvalidArgument", tt.name, err)
		}
		h.expect(t, 1, 0, tt.want)
	}

	chain, err := sc.CreateSwapChain(&valid)
	if err != nil {
		t.Fatal(err)
	}
	textures := sc.GetSwapChainTextures(chain)
	if len(textures) != 3 {
		t.Fatalf("%d swap chain textures, want 3", len(textures))
	}
	again := sc.GetSwapChainTextures(chain)
	for i := range textures {
		if textures[i] != again[i] {
			t.Errorf("texture %d wrapped twice", i)
		}
	}
	if chain.NativeObject() != 0x1000 {
		t.Errorf("NativeObject() = %#x, want the window handle", chain.NativeObject())
	}

	// Swap chain textures validate like any other texture.
	idx, err := sc.AcquireNextTexture(chain)
	if err != nil {
		t.Fatal(err)
	}
	view := h.view(t, textures[idx], rhi.TextureViewColorAttachment)
	cmd := h.recording(t)
	h.core.CmdBeginRendering(cmd, &rhi.AttachmentsDesc{Colors: []rhi.Descriptor{view}})
	h.core.CmdEndRendering(cmd)
	if err := h.core.EndCommandBuffer(cmd); err != nil {
		t.Fatal(err)
	}
	if err := h.core.QueueSubmit(h.queue, &rhi.QueueSubmitDesc{CommandBuffers: []rhi.CommandBuffer{cmd}, SwapChain: chain}); err != nil {
		t.Fatal(err)
	}
	if err := sc.QueuePresent(chain); err != nil {
		t.Fatal(err)
	}
	h.clean(t)

	sc.DestroySwapChain(chain)
	sc.DestroySwapChain(chain)
	h.expect(t, 1, 0, "'swapChain' is already destroyed")
}

func TestSwapChainUnsupported(t *testing.T) {
	desc := null.DefaultDeviceDesc()
	desc.IsSwapChainSupported = false
	h := newHarness(t, null.WithDeviceDesc(desc), null.WithAllInterfaces())
	_, err := h.dev.Interfaces().SwapChain.CreateSwapChain(&rhi.SwapChainDesc{CommandQueue: h.queue, Width: 1, Height: 1, TextureNum: 2})
	if !errors.Is(err, validation.ErrUnsupported) {
		t.Errorf("error = %v, want ErrUnsupported", err)
	}
	h.expect(t, 1, 0, "'IsSwapChainSupported' is false")
}

func TestStreamer(t *testing.T) {
	h := newHarness(t)
	st := h.dev.Interfaces().Streamer
	hostDesc := rhi.StreamerDesc{
		RingBufferSize:         1024,
		DynamicBufferLocation:  rhi.MemoryLocationHostUpload,
		ConstantBufferSize:     1024,
		ConstantBufferLocation: rhi.MemoryLocationHostUpload,
		QueuedFrameNum:         2,
	}

	bad := hostDesc
	bad.DynamicBufferLocation = rhi.MemoryLocationDevice
	if _, err := st.CreateStreamer(&bad); !errors.Is(err, validation.ErrInvalidArgument) {
		t.Errorf("device local ring: error = %v", err)
	}
	h.expect(t, 1, 0, "'DynamicBufferLocation' must be host visible")
	bad = hostDesc
	bad.QueuedFrameNum = 0
	if _, err := st.CreateStreamer(&bad); !errors.Is(err, validation.ErrInvalidArgument) {
		t.Errorf("no frames: error = %v", err)
	}
	h.expect(t, 1, 0, "'QueuedFrameNum' is 0")

	s, err := st.CreateStreamer(&hostDesc)
	if err != nil {
		t.Fatal(err)
	}
	cb := st.GetStreamerConstantBuffer(s)
	if cb == nil {
		t.Fatal("GetStreamerConstantBuffer() = nil")
	}
	if cb != st.GetStreamerConstantBuffer(s) {
		t.Error("constant buffer wrapped twice")
	}
	// The constant buffer is a validated buffer of this device.
	h.core.CmdZeroBuffer(h.recording(t), cb, 0, rhi.WholeSize)
	h.clean(t)

	if _, err := st.StreamConstantData(s, make([]byte, 2048)); !errors.Is(err, validation.ErrInvalidArgument) {
		t.Errorf("oversized constants: error = %v", err)
	}
	h.expect(t, 1, 0, "2048 bytes exceed the constant buffer size 1024")

	dst := h.buffer(t, rhi.BufferDesc{Size: 16, Location: rhi.MemoryLocationHostReadback})
	_, _, err = st.StreamBufferData(s, &rhi.StreamBufferDataDesc{Data: make([]byte, 8), DstBuffer: dst, DstOffset: 12})
	if !errors.Is(err, validation.ErrInvalidArgument) {
		t.Errorf("past the destination: error = %v", err)
	}
	h.expect(t, 1, 0, "'DstOffset + len(Data)' is out of bounds (12 + 8 > 16)")

	first, _, err := st.StreamBufferData(s, &rhi.StreamBufferDataDesc{Data: []byte("streamed"), DstBuffer: dst, DstOffset: 8})
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := st.StreamBufferData(s, &rhi.StreamBufferDataDesc{Data: []byte("x")})
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("one staging buffer got two wrappers")
	}

	cmd := h.recording(t)
	h.renderPass(t, cmd)
	h.clean(t)
	st.CmdCopyStreamedData(cmd, s)
	h.expect(t, 1, 0, "must be called outside of")
	h.core.CmdEndRendering(cmd)
	st.CmdCopyStreamedData(cmd, s)
	if err := h.core.EndCommandBuffer(cmd); err != nil {
		t.Fatal(err)
	}
	if err := h.core.QueueSubmit(h.queue, &rhi.QueueSubmitDesc{CommandBuffers: []rhi.CommandBuffer{cmd}}); err != nil {
		t.Fatal(err)
	}
	st.EndStreamerFrame(s)
	h.clean(t)

	got, err := h.core.MapBuffer(dst, 8, rhi.WholeSize)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "streamed" {
		t.Errorf("dst tail = %q, want %q", got, "streamed")
	}
	h.core.UnmapBuffer(dst)

	st.DestroyStreamer(s)
	h.clean(t)
}

func TestUploadData(t *testing.T) {
	h := newHarness(t)
	helper := h.dev.Interfaces().Helper
	buf := h.buffer(t, rhi.BufferDesc{Size: 8, Usage: rhi.BufferUsageVertexBuffer, Location: rhi.MemoryLocationHostUpload})
	tex := h.texture(t, rhi.FormatRGBA8Unorm, rhi.TextureUsageShaderResource)
	h.clean(t)

	vertexRead := rhi.AccessStage{Access: rhi.AccessVertexBuffer, Stages: rhi.StageVertexShader}
	sampled := rhi.AccessLayoutStage{Access: rhi.AccessShaderResource, Layout: rhi.LayoutShaderResource, Stages: rhi.StageFragmentShader}

	tests := []struct {
		name     string
		textures []rhi.TextureUploadDesc
		buffers  []rhi.BufferUploadDesc
		want     string
	}{
		{"buffer past end", nil, []rhi.BufferUploadDesc{{Buffer: buf, Data: make([]byte, 8), Offset: 4, After: vertexRead}},
			"'buffers[0]' is out of bounds (4 + 8 > 8)"},
		{"buffer access", nil, []rhi.BufferUploadDesc{{Buffer: buf, Data: []byte{1}, After: rhi.AccessStage{Access: rhi.AccessConstantBuffer}}},
			"'buffers[0].After.Access' is not supported by the usage mask of the buffer"},
		{"subresource count", []rhi.TextureUploadDesc{{Texture: tex, Subresources: make([]rhi.TextureSubresourceUploadDesc, 1), After: sampled}}, nil,
			"'textures[0].Subresources' has 1 entries, the texture has 2 subresources"},
		{"texture layout", []rhi.TextureUploadDesc{{Texture: tex, After: rhi.AccessLayoutStage{Layout: rhi.LayoutColorAttachment}}}, nil,
			"'textures[0].After.Layout' is not supported by the usage mask of the texture"},
	}
	for _, tt := range tests {
		if err := helper.UploadData(h.queue, tt.textures, tt.buffers); !errors.Is(err, validation.ErrInvalidArgument) {
			t.Errorf("%s: error = %v, want ErrInvalidArgument", tt.name, err)
		}
		h.expect(t, 1, 0, tt.want)
	}
	if n := h.inner.Calls("UploadData"); n != 0 {
		t.Errorf("rejected uploads forwarded %d times", n)
	}

	err := helper.UploadData(h.queue,
		[]rhi.TextureUploadDesc{{Texture: tex, After: sampled}},
		[]rhi.BufferUploadDesc{{Buffer: buf, Data: []byte("vertices"), After: vertexRead}},
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := helper.WaitForIdle(h.queue); err != nil {
		t.Fatal(err)
	}
	h.clean(t)

	got, err := h.core.MapBuffer(buf, 0, rhi.WholeSize)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "vertices" {
		t.Errorf("buffer = %q, want %q", got, "vertices")
	}
}

func TestWrapperAdoptsNativeObjects(t *testing.T) {
	h := newHarness(t)
	w := h.dev.Interfaces().Wrapper

	if _, err := w.CreateBufferFromNative(&rhi.NativeBufferDesc{}); !errors.Is(err, validation.ErrInvalidArgument) {
		t.Errorf("zero handle: error = %v", err)
	}
	h.expect(t, 1, 0, "'Buffer' is 0")

	buf, err := w.CreateBufferFromNative(&rhi.NativeBufferDesc{
		Buffer: 0xb0,
		Desc:   &rhi.BufferDesc{Size: 32, Location: rhi.MemoryLocationHostUpload},
	})
	if err != nil {
		t.Fatal(err)
	}
	if buf.NativeObject() != 0xb0 {
		t.Errorf("NativeObject() = %#x", buf.NativeObject())
	}
	// Adopted buffers are checked against the description they were
	// adopted with.
	if _, err := h.core.MapBuffer(buf, 16, 32); !errors.Is(err, validation.ErrInvalidArgument) {
		t.Errorf("map past the end: error = %v", err)
	}
	h.expect(t, 1, 0, "(16 + 32 > 32)")

	tex, err := w.CreateTextureFromNative(&rhi.NativeTextureDesc{
		Texture: 0x7e,
		Desc: &rhi.TextureDesc{
			Type: rhi.TextureType2D, Usage: rhi.TextureUsageColorAttachment, Format: rhi.FormatRGBA8Unorm,
			Width: 4, Height: 4, Depth: 1, MipNum: 1, LayerNum: 1, SampleNum: 1,
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	h.view(t, tex, rhi.TextureViewColorAttachment)
	h.clean(t)
}

func TestStreamerDropsRetiredStagingBuffers(t *testing.T) {
	h := newHarness(t)
	st := h.dev.Interfaces().Streamer
	s, err := st.CreateStreamer(&rhi.StreamerDesc{
		RingBufferSize:        256,
		DynamicBufferLocation: rhi.MemoryLocationHostUpload,
		QueuedFrameNum:        2,
	})
	if err != nil {
		t.Fatal(err)
	}
	staged, _, err := st.StreamBufferData(s, &rhi.StreamBufferDataDesc{Data: []byte("data")})
	if err != nil {
		t.Fatal(err)
	}
	dst := h.buffer(t, rhi.BufferDesc{Size: 64})
	cmd := h.recording(t)

	// Data stays valid for QueuedFrameNum frames.
	st.EndStreamerFrame(s)
	st.EndStreamerFrame(s)
	h.core.CmdCopyBuffer(cmd, dst, 0, staged, 0, 4)
	h.clean(t)

	st.EndStreamerFrame(s)
	h.core.CmdCopyBuffer(cmd, dst, 0, staged, 0, 4)
	h.expect(t, 1, 0, "'srcBuffer' is destroyed")
	if n := h.inner.Calls("CmdCopyBuffer"); n != 1 {
		t.Errorf("CmdCopyBuffer forwarded %d times, want 1", n)
	}

	again, _, err := st.StreamBufferData(s, &rhi.StreamBufferDataDesc{Data: []byte("more")})
	if err != nil {
		t.Fatal(err)
	}
	if again == staged {
		t.Error("a retired staging wrapper was handed out again")
	}
	h.core.CmdCopyBuffer(cmd, dst, 0, again, 0, 4)
	h.clean(t)
}

func TestStreamTextureDataRegion(t *testing.T) {
	h := newHarness(t)
	st := h.dev.Interfaces().Streamer
	s, err := st.CreateStreamer(&rhi.StreamerDesc{
		RingBufferSize:        4096,
		DynamicBufferLocation: rhi.MemoryLocationHostUpload,
		QueuedFrameNum:        1,
	})
	if err != nil {
		t.Fatal(err)
	}
	tex := h.texture(t, rhi.FormatRGBA8Unorm, rhi.TextureUsageShaderResource)
	h.clean(t)
	h.inner.ResetCalls()

	_, _, err = st.StreamTextureData(s, &rhi.StreamTextureDataDesc{
		Data:       make([]byte, 64),
		DataLayout: rhi.TextureDataLayoutDesc{RowPitch: 16, SlicePitch: 64},
		DstTexture: tex,
		DstRegion:  rhi.TextureRegionDesc{MipOffset: 2},
	})
	if !errors.Is(err, validation.ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
	h.expect(t, 1, 0, "'DstRegion.MipOffset' is out of bounds (2 >= 2)")
	if n := h.inner.Calls("StreamTextureData"); n != 0 {
		t.Errorf("StreamTextureData forwarded %d times", n)
	}
}

func TestBuildTopLevelAccelerationStructures(t *testing.T) {
	tests := []struct {
		name   string
		inPass bool
		modify func(*rhi.BuildTopLevelAccelerationStructureDesc)
		want   string
	}{
		{"valid", false, func(*rhi.BuildTopLevelAccelerationStructureDesc) {}, ""},
		{"update", false, func(d *rhi.BuildTopLevelAccelerationStructureDesc) { d.Src = d.Dst }, ""},
		{"inside pass", true, func(*rhi.BuildTopLevelAccelerationStructureDesc) {}, "must be called outside of"},
		{"no dst", false, func(d *rhi.BuildTopLevelAccelerationStructureDesc) { d.Dst = nil }, "'Dst' is nil"},
		{"no instances", false, func(d *rhi.BuildTopLevelAccelerationStructureDesc) { d.InstanceBuffer = nil }, "'InstanceBuffer' is nil"},
		{"no scratch", false, func(d *rhi.BuildTopLevelAccelerationStructureDesc) { d.ScratchBuffer = nil }, "'ScratchBuffer' is nil"},
		{"instance offset", false, func(d *rhi.BuildTopLevelAccelerationStructureDesc) { d.InstanceOffset = 64 }, "'descs[0].InstanceOffset' is out of bounds (64 >= 64)"},
		{"scratch offset", false, func(d *rhi.BuildTopLevelAccelerationStructureDesc) { d.ScratchOffset = 512 }, "'descs[0].ScratchOffset' is out of bounds (512 >= 512)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, null.WithRayTracing(true))
			rt := h.dev.Interfaces().RayTracing
			tlas, err := rt.CreateAccelerationStructure(&rhi.AccelerationStructureDesc{
				Type:        rhi.AccelerationStructureTopLevel,
				InstanceNum: 1,
			})
			if err != nil {
				t.Fatal(err)
			}
			desc := rhi.BuildTopLevelAccelerationStructureDesc{
				Dst:            tlas,
				InstanceNum:    1,
				InstanceBuffer: h.buffer(t, rhi.BufferDesc{Size: 64, Usage: rhi.BufferUsageAccelerationStructureBuildInput}),
				ScratchBuffer:  h.buffer(t, rhi.BufferDesc{Size: 512, Usage: rhi.BufferUsageScratchBuffer}),
			}
			tt.modify(&desc)
			cmd := h.recording(t)
			if tt.inPass {
				h.renderPass(t, cmd)
			}
			h.clean(t)
			h.inner.ResetCalls()

			rt.CmdBuildTopLevelAccelerationStructures(cmd, []rhi.BuildTopLevelAccelerationStructureDesc{desc})
			forwarded := h.inner.Calls("CmdBuildTopLevelAccelerationStructures")
			if tt.want == "" {
				h.clean(t)
				if forwarded != 1 {
					t.Errorf("CmdBuildTopLevelAccelerationStructures forwarded %d times, want 1", forwarded)
				}
				return
			}
			h.expect(t, 1, 0, tt.want)
			if forwarded != 0 {
				t.Error("rejected build was forwarded")
			}
		})
	}
}

func TestBuildMicromaps(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*rhi.BuildMicromapDesc)
		want   string
	}{
		{"valid", func(*rhi.BuildMicromapDesc) {}, ""},
		{"no dst", func(d *rhi.BuildMicromapDesc) { d.Dst = nil }, "'Dst' is nil"},
		{"no data", func(d *rhi.BuildMicromapDesc) { d.DataBuffer = nil }, "'DataBuffer' is nil"},
		{"no triangles", func(d *rhi.BuildMicromapDesc) { d.TriangleBuffer = nil }, "'TriangleBuffer' is nil"},
		{"data offset", func(d *rhi.BuildMicromapDesc) { d.DataOffset = 64 }, "'descs[0].DataOffset' is out of bounds (64 >= 64)"},
		{"triangle offset", func(d *rhi.BuildMicromapDesc) { d.TriangleOffset = 32 }, "'descs[0].TriangleOffset' is out of bounds (32 >= 32)"},
		{"scratch offset", func(d *rhi.BuildMicromapDesc) { d.ScratchOffset = 256 }, "'descs[0].ScratchOffset' is out of bounds (256 >= 256)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, null.WithRayTracing(true))
			rt := h.dev.Interfaces().RayTracing
			mm, err := rt.CreateMicromap(&rhi.MicromapDesc{Usages: []rhi.MicromapUsageDesc{
				{TriangleNum: 4, SubdivisionLevel: 1, Format: rhi.MicromapFormatOpacity2State},
			}})
			if err != nil {
				t.Fatal(err)
			}
			input := rhi.BufferDesc{Usage: rhi.BufferUsageMicromapBuildInput}
			input.Size = 64
			data := h.buffer(t, input)
			input.Size = 32
			triangles := h.buffer(t, input)
			desc := rhi.BuildMicromapDesc{
				Dst:            mm,
				DataBuffer:     data,
				TriangleBuffer: triangles,
				ScratchBuffer:  h.buffer(t, rhi.BufferDesc{Size: 256, Usage: rhi.BufferUsageScratchBuffer}),
			}
			tt.modify(&desc)
			cmd := h.recording(t)
			h.clean(t)
			h.inner.ResetCalls()

			rt.CmdBuildMicromaps(cmd, []rhi.BuildMicromapDesc{desc})
			forwarded := h.inner.Calls("CmdBuildMicromaps")
			if tt.want == "" {
				h.clean(t)
				if forwarded != 1 {
					t.Errorf("CmdBuildMicromaps forwarded %d times, want 1", forwarded)
				}
				return
			}
			h.expect(t, 1, 0, tt.want)
			if forwarded != 0 {
				t.Error("rejected build was forwarded")
			}
		})
	}

	// Tier 2 ray tracing without micromaps.
	h := rayTracingHarness(t, 2)
	cmd := h.recording(t)
	h.clean(t)
	h.dev.Interfaces().RayTracing.CmdBuildMicromaps(cmd, []rhi.BuildMicromapDesc{{}})
	h.expect(t, 1, 0, "'IsMicromapSupported' is false")
	if n := h.inner.Calls("CmdBuildMicromaps"); n != 0 {
		t.Errorf("CmdBuildMicromaps forwarded %d times", n)
	}
}

// sizeQueries holds the objects size writes report on.
type sizeQueries struct {
	as             rhi.AccelerationStructure
	mm             rhi.Micromap
	asPool, mmPool rhi.QueryPool
	occlusion      rhi.QueryPool
}

func TestWriteSizes(t *testing.T) {
	tests := []struct {
		name   string
		op     string
		record func(rt rhi.RayTracingInterface, cmd rhi.CommandBuffer, q *sizeQueries)
		want   string
	}{
		{"structures", "CmdWriteAccelerationStructuresSizes", func(rt rhi.RayTracingInterface, cmd rhi.CommandBuffer, q *sizeQueries) {
			rt.CmdWriteAccelerationStructuresSizes(cmd, []rhi.AccelerationStructure{q.as, q.as}, q.asPool, 0)
		}, ""},
		{"structures pool type", "CmdWriteAccelerationStructuresSizes", func(rt rhi.RayTracingInterface, cmd rhi.CommandBuffer, q *sizeQueries) {
			rt.CmdWriteAccelerationStructuresSizes(cmd, []rhi.AccelerationStructure{q.as}, q.occlusion, 0)
		}, "'queryPool' query type must be ACCELERATION_STRUCTURE_SIZE or ACCELERATION_STRUCTURE_COMPACTED_SIZE"},
		{"structures past pool", "CmdWriteAccelerationStructuresSizes", func(rt rhi.RayTracingInterface, cmd rhi.CommandBuffer, q *sizeQueries) {
			rt.CmdWriteAccelerationStructuresSizes(cmd, []rhi.AccelerationStructure{q.as, q.as}, q.asPool, 1)
		}, "'queryPoolOffset + len(structures)' is out of bounds (1 + 2 > 2)"},
		{"nil structure", "CmdWriteAccelerationStructuresSizes", func(rt rhi.RayTracingInterface, cmd rhi.CommandBuffer, q *sizeQueries) {
			rt.CmdWriteAccelerationStructuresSizes(cmd, []rhi.AccelerationStructure{nil}, q.asPool, 0)
		}, "'structures[]' is nil"},
		{"micromaps", "CmdWriteMicromapsSizes", func(rt rhi.RayTracingInterface, cmd rhi.CommandBuffer, q *sizeQueries) {
			rt.CmdWriteMicromapsSizes(cmd, []rhi.Micromap{q.mm}, q.mmPool, 1)
		}, ""},
		{"micromaps pool type", "CmdWriteMicromapsSizes", func(rt rhi.RayTracingInterface, cmd rhi.CommandBuffer, q *sizeQueries) {
			rt.CmdWriteMicromapsSizes(cmd, []rhi.Micromap{q.mm}, q.asPool, 0)
		}, "'queryPool' query type must be MICROMAP_COMPACTED_SIZE"},
		{"micromaps past pool", "CmdWriteMicromapsSizes", func(rt rhi.RayTracingInterface, cmd rhi.CommandBuffer, q *sizeQueries) {
			rt.CmdWriteMicromapsSizes(cmd, []rhi.Micromap{q.mm}, q.mmPool, 2)
		}, "'queryPoolOffset + len(micromaps)' is out of bounds (2 + 1 > 2)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, null.WithRayTracing(true))
			rt := h.dev.Interfaces().RayTracing
			q := &sizeQueries{}
			var err error
			if q.as, err = rt.CreateAccelerationStructure(&rhi.AccelerationStructureDesc{Type: rhi.AccelerationStructureTopLevel, InstanceNum: 4}); err != nil {
				t.Fatal(err)
			}
			if q.mm, err = rt.CreateMicromap(&rhi.MicromapDesc{Usages: []rhi.MicromapUsageDesc{{TriangleNum: 1, Format: rhi.MicromapFormatOpacity4State}}}); err != nil {
				t.Fatal(err)
			}
			pool := func(qt rhi.QueryType) rhi.QueryPool {
				p, err := h.core.CreateQueryPool(&rhi.QueryPoolDesc{QueryType: qt, Capacity: 2})
				if err != nil {
					t.Fatal(err)
				}
				return p
			}
			q.asPool = pool(rhi.QueryTypeAccelerationStructureCompactedSize)
			q.mmPool = pool(rhi.QueryTypeMicromapCompactedSize)
			q.occlusion = pool(rhi.QueryTypeOcclusion)
			cmd := h.recording(t)
			h.clean(t)
			h.inner.ResetCalls()

			tt.record(rt, cmd, q)
			forwarded := h.inner.Calls(tt.op)
			if tt.want == "" {
				h.clean(t)
				if forwarded != 1 {
					t.Errorf("%s forwarded %d times, want 1", tt.op, forwarded)
				}
				return
			}
			h.expect(t, 1, 0, tt.want)
			if forwarded != 0 {
				t.Errorf("rejected %s was forwarded", tt.op)
			}
		})
	}
}
