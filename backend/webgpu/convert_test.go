package webgpu

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rhi"
)

func TestTextureFormat(t *testing.T) {
	tests := []struct {
		in   rhi.Format
		want gputypes.TextureFormat
	}{
		{rhi.FormatRGBA8Unorm, gputypes.TextureFormatRGBA8Unorm},
		{rhi.FormatBGRA8Srgb, gputypes.TextureFormatBGRA8UnormSrgb},
		{rhi.FormatD32Sfloat, gputypes.TextureFormatDepth32Float},
		{rhi.FormatRGB32Sfloat, gputypes.TextureFormatUndefined},
		{rhi.FormatMaxNum, gputypes.TextureFormatUndefined},
	}
	for _, tt := range tests {
		if got := textureFormat(tt.in); got != tt.want {
			t.Errorf("textureFormat(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestVertexFormat(t *testing.T) {
	if f, ok := vertexFormat(rhi.FormatRGB32Sfloat); !ok || f != gputypes.VertexFormatFloat32x3 {
		t.Errorf("vertexFormat(RGB32Sfloat) = %v, %v", f, ok)
	}
	if _, ok := vertexFormat(rhi.FormatD16Unorm); ok {
		t.Error("depth format accepted as vertex format")
	}
}

func TestBufferUsageAddsCopies(t *testing.T) {
	u := bufferUsage(rhi.BufferUsageVertexBuffer | rhi.BufferUsageArgumentBuffer)
	want := gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst |
		gputypes.BufferUsageVertex | gputypes.BufferUsageIndirect
	if u != want {
		t.Errorf("bufferUsage = %v, want %v", u, want)
	}
	if u := bufferUsage(rhi.BufferUsageShaderResourceStorage); u&gputypes.BufferUsageStorage == 0 {
		t.Error("storage usage missing")
	}
}

func TestLayoutUsage(t *testing.T) {
	tests := []struct {
		in   rhi.Layout
		want gputypes.TextureUsage
	}{
		{rhi.LayoutUnknown, 0},
		{rhi.LayoutColorAttachment, gputypes.TextureUsageRenderAttachment},
		{rhi.LayoutShaderResource, gputypes.TextureUsageTextureBinding},
		{rhi.LayoutShaderResourceStorage, gputypes.TextureUsageStorageBinding},
		{rhi.LayoutCopySource, gputypes.TextureUsageCopySrc},
		{rhi.LayoutCopyDestination, gputypes.TextureUsageCopyDst},
	}
	for _, tt := range tests {
		if got := layoutUsage(tt.in); got != tt.want {
			t.Errorf("layoutUsage(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestViewDimension(t *testing.T) {
	tests := []struct {
		tex  rhi.TextureType
		view rhi.TextureViewType
		want gputypes.TextureViewDimension
	}{
		{rhi.TextureType2D, rhi.TextureViewShaderResource, gputypes.TextureViewDimension2D},
		{rhi.TextureType2D, rhi.TextureViewShaderResourceArray, gputypes.TextureViewDimension2DArray},
		{rhi.TextureType2D, rhi.TextureViewShaderResourceCube, gputypes.TextureViewDimensionCube},
		{rhi.TextureType3D, rhi.TextureViewShaderResource, gputypes.TextureViewDimension3D},
		{rhi.TextureType1D, rhi.TextureViewShaderResource, gputypes.TextureViewDimension1D},
	}
	for _, tt := range tests {
		if got := viewDimension(tt.tex, tt.view); got != tt.want {
			t.Errorf("viewDimension(%v, %v) = %v, want %v", tt.tex, tt.view, got, tt.want)
		}
	}
}

func TestSetVisibility(t *testing.T) {
	tests := []struct {
		name   string
		stages rhi.StageBits
		want   gputypes.BindGroupLayoutEntry
	}{
		{"all", rhi.StageAll, gputypes.BindGroupLayoutEntry{Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment | gputypes.ShaderStageCompute}},
		{"vertex", rhi.StageVertexShader, gputypes.BindGroupLayoutEntry{Visibility: gputypes.ShaderStageVertex}},
		{"fragment", rhi.StageFragmentShader, gputypes.BindGroupLayoutEntry{Visibility: gputypes.ShaderStageFragment}},
		{"compute", rhi.StageComputeShader, gputypes.BindGroupLayoutEntry{Visibility: gputypes.ShaderStageCompute}},
		{"graphics", rhi.StageGraphicsShaders, gputypes.BindGroupLayoutEntry{Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e gputypes.BindGroupLayoutEntry
			setVisibility(&e, tt.stages)
			if e.Visibility != tt.want.Visibility {
				t.Errorf("Visibility = %v, want %v", e.Visibility, tt.want.Visibility)
			}
		})
	}
}

func TestBindingLayout(t *testing.T) {
	tests := []struct {
		typ rhi.DescriptorType
		ok  bool
	}{
		{rhi.DescriptorTypeSampler, true},
		{rhi.DescriptorTypeConstantBuffer, true},
		{rhi.DescriptorTypeTexture, true},
		{rhi.DescriptorTypeStorageBuffer, true},
		{rhi.DescriptorTypeStorageTexture, false},
		{rhi.DescriptorTypeAccelerationStructure, false},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			r := &rhi.DescriptorRangeDesc{DescriptorType: tt.typ, DescriptorNum: 1, ShaderStages: rhi.StageAll}
			e, ok := bindingLayout(3, r)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if e.Binding != 3 {
				t.Errorf("Binding = %d, want 3", e.Binding)
			}
		})
	}
}

func TestStencilFace(t *testing.T) {
	s := stencilFace(&rhi.StencilDesc{
		CompareFunc: rhi.CompareLess,
		Fail:        rhi.StencilZero,
		Pass:        rhi.StencilReplace,
		DepthFail:   rhi.StencilInvert,
	})
	if s.Compare != gputypes.CompareFunctionLess {
		t.Errorf("Compare = %v", s.Compare)
	}
}
