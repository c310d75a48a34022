package webgpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
)

// textureFormats maps rhi formats to WebGPU texture formats. Formats WebGPU
// lacks map to TextureFormatUndefined.
var textureFormats = [rhi.FormatMaxNum]gputypes.TextureFormat{
	rhi.FormatR8Unorm: gputypes.TextureFormatR8Unorm,
	rhi.FormatR8Snorm: gputypes.TextureFormatR8Snorm,
	rhi.FormatR8Uint:  gputypes.TextureFormatR8Uint,
	rhi.FormatR8Sint:  gputypes.TextureFormatR8Sint,

	rhi.FormatRG8Unorm: gputypes.TextureFormatRG8Unorm,
	rhi.FormatRG8Snorm: gputypes.TextureFormatRG8Snorm,
	rhi.FormatRG8Uint:  gputypes.TextureFormatRG8Uint,
	rhi.FormatRG8Sint:  gputypes.TextureFormatRG8Sint,

	rhi.FormatBGRA8Unorm: gputypes.TextureFormatBGRA8Unorm,
	rhi.FormatBGRA8Srgb:  gputypes.TextureFormatBGRA8UnormSrgb,

	rhi.FormatRGBA8Unorm: gputypes.TextureFormatRGBA8Unorm,
	rhi.FormatRGBA8Srgb:  gputypes.TextureFormatRGBA8UnormSrgb,
	rhi.FormatRGBA8Snorm: gputypes.TextureFormatRGBA8Snorm,
	rhi.FormatRGBA8Uint:  gputypes.TextureFormatRGBA8Uint,
	rhi.FormatRGBA8Sint:  gputypes.TextureFormatRGBA8Sint,

	rhi.FormatR16Uint:   gputypes.TextureFormatR16Uint,
	rhi.FormatR16Sint:   gputypes.TextureFormatR16Sint,
	rhi.FormatR16Sfloat: gputypes.TextureFormatR16Float,

	rhi.FormatRG16Sfloat:   gputypes.TextureFormatRG16Float,
	rhi.FormatRGBA16Sfloat: gputypes.TextureFormatRGBA16Float,

	rhi.FormatR32Uint:   gputypes.TextureFormatR32Uint,
	rhi.FormatR32Sint:   gputypes.TextureFormatR32Sint,
	rhi.FormatR32Sfloat: gputypes.TextureFormatR32Float,

	rhi.FormatRG32Uint:   gputypes.TextureFormatRG32Uint,
	rhi.FormatRG32Sfloat: gputypes.TextureFormatRG32Float,

	rhi.FormatRGBA32Uint:   gputypes.TextureFormatRGBA32Uint,
	rhi.FormatRGBA32Sfloat: gputypes.TextureFormatRGBA32Float,

	rhi.FormatR10G10B10A2Unorm: gputypes.TextureFormatRGB10A2Unorm,
	rhi.FormatR11G11B10Ufloat:  gputypes.TextureFormatRG11B10Ufloat,

	rhi.FormatBC1RGBAUnorm: gputypes.TextureFormatBC1RGBAUnorm,
	rhi.FormatBC3RGBAUnorm: gputypes.TextureFormatBC3RGBAUnorm,
	rhi.FormatBC4RUnorm:    gputypes.TextureFormatBC4RUnorm,
	rhi.FormatBC5RGUnorm:   gputypes.TextureFormatBC5RGUnorm,
	rhi.FormatBC7RGBAUnorm: gputypes.TextureFormatBC7RGBAUnorm,

	rhi.FormatD16Unorm:           gputypes.TextureFormatDepth16Unorm,
	rhi.FormatD24UnormS8Uint:     gputypes.TextureFormatDepth24PlusStencil8,
	rhi.FormatD32Sfloat:          gputypes.TextureFormatDepth32Float,
	rhi.FormatD32SfloatS8UintX24: gputypes.TextureFormatDepth32FloatStencil8,
}

func textureFormat(f rhi.Format) gputypes.TextureFormat {
	if f >= rhi.FormatMaxNum {
		return gputypes.TextureFormatUndefined
	}
	return textureFormats[f]
}

// vertexFormat maps the formats that make sense as vertex attributes.
func vertexFormat(f rhi.Format) (gputypes.VertexFormat, bool) {
	switch f {
	case rhi.FormatR32Sfloat:
		return gputypes.VertexFormatFloat32, true
	case rhi.FormatRG32Sfloat:
		return gputypes.VertexFormatFloat32x2, true
	case rhi.FormatRGB32Sfloat:
		return gputypes.VertexFormatFloat32x3, true
	case rhi.FormatRGBA32Sfloat:
		return gputypes.VertexFormatFloat32x4, true
	case rhi.FormatR32Uint:
		return gputypes.VertexFormatUint32, true
	case rhi.FormatRG32Uint:
		return gputypes.VertexFormatUint32x2, true
	case rhi.FormatRGBA32Uint:
		return gputypes.VertexFormatUint32x4, true
	case rhi.FormatR32Sint:
		return gputypes.VertexFormatSint32, true
	case rhi.FormatRGBA8Unorm:
		return gputypes.VertexFormatUnorm8x4, true
	case rhi.FormatRGBA8Uint:
		return gputypes.VertexFormatUint8x4, true
	case rhi.FormatRG16Sfloat:
		return gputypes.VertexFormatFloat16x2, true
	case rhi.FormatRGBA16Sfloat:
		return gputypes.VertexFormatFloat16x4, true
	}
	return 0, false
}

// bufferUsage always adds copy usages: uploads, readbacks and zeroing all
// go through copies.
func bufferUsage(u rhi.BufferUsageBits) gputypes.BufferUsage {
	usage := gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst
	if u&rhi.BufferUsageVertexBuffer != 0 {
		usage |= gputypes.BufferUsageVertex
	}
	if u&rhi.BufferUsageIndexBuffer != 0 {
		usage |= gputypes.BufferUsageIndex
	}
	if u&rhi.BufferUsageConstantBuffer != 0 {
		usage |= gputypes.BufferUsageUniform
	}
	if u&(rhi.BufferUsageShaderResource|rhi.BufferUsageShaderResourceStorage) != 0 {
		usage |= gputypes.BufferUsageStorage
	}
	if u&rhi.BufferUsageArgumentBuffer != 0 {
		usage |= gputypes.BufferUsageIndirect
	}
	return usage
}

func textureUsage(u rhi.TextureUsageBits) gputypes.TextureUsage {
	usage := gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst
	if u&rhi.TextureUsageShaderResource != 0 {
		usage |= gputypes.TextureUsageTextureBinding
	}
	if u&rhi.TextureUsageShaderResourceStorage != 0 {
		usage |= gputypes.TextureUsageStorageBinding
	}
	if u&(rhi.TextureUsageColorAttachment|rhi.TextureUsageDepthStencilAttachment) != 0 {
		usage |= gputypes.TextureUsageRenderAttachment
	}
	return usage
}

// layoutUsage maps a texture layout to the WebGPU usage the texture is in
// while it has that layout. HAL derives its barriers from usages.
func layoutUsage(l rhi.Layout) gputypes.TextureUsage {
	switch l {
	case rhi.LayoutColorAttachment, rhi.LayoutDepthStencilAttachment, rhi.LayoutDepthStencilReadonly, rhi.LayoutPresent:
		return gputypes.TextureUsageRenderAttachment
	case rhi.LayoutShaderResource:
		return gputypes.TextureUsageTextureBinding
	case rhi.LayoutShaderResourceStorage:
		return gputypes.TextureUsageStorageBinding
	case rhi.LayoutCopySource:
		return gputypes.TextureUsageCopySrc
	case rhi.LayoutCopyDestination:
		return gputypes.TextureUsageCopyDst
	}
	return 0
}

func textureDimension(t rhi.TextureType) gputypes.TextureDimension {
	switch t {
	case rhi.TextureType1D:
		return gputypes.TextureDimension1D
	case rhi.TextureType3D:
		return gputypes.TextureDimension3D
	}
	return gputypes.TextureDimension2D
}

func viewDimension(tex rhi.TextureType, v rhi.TextureViewType) gputypes.TextureViewDimension {
	switch tex {
	case rhi.TextureType1D:
		return gputypes.TextureViewDimension1D
	case rhi.TextureType3D:
		return gputypes.TextureViewDimension3D
	}
	switch v {
	case rhi.TextureViewShaderResourceArray, rhi.TextureViewShaderResourceStorageArray:
		return gputypes.TextureViewDimension2DArray
	case rhi.TextureViewShaderResourceCube:
		return gputypes.TextureViewDimensionCube
	case rhi.TextureViewShaderResourceCubeArray:
		return gputypes.TextureViewDimensionCubeArray
	}
	return gputypes.TextureViewDimension2D
}

func aspect(p rhi.PlaneBits) gputypes.TextureAspect {
	switch p {
	case rhi.PlaneDepth:
		return gputypes.TextureAspectDepthOnly
	case rhi.PlaneStencil:
		return gputypes.TextureAspectStencilOnly
	}
	return gputypes.TextureAspectAll
}

func addressMode(m rhi.AddressMode) gputypes.AddressMode {
	switch m {
	case rhi.AddressModeMirroredRepeat:
		return gputypes.AddressModeMirrorRepeat
	case rhi.AddressModeClampToEdge, rhi.AddressModeClampToBorder, rhi.AddressModeMirrorClampToEdge:
		return gputypes.AddressModeClampToEdge
	}
	return gputypes.AddressModeRepeat
}

func filterMode(f rhi.Filter) gputypes.FilterMode {
	if f == rhi.FilterLinear {
		return gputypes.FilterModeLinear
	}
	return gputypes.FilterModeNearest
}

var compareFunctions = [...]gputypes.CompareFunction{
	rhi.CompareNone:         gputypes.CompareFunctionAlways,
	rhi.CompareAlways:       gputypes.CompareFunctionAlways,
	rhi.CompareNever:        gputypes.CompareFunctionNever,
	rhi.CompareEqual:        gputypes.CompareFunctionEqual,
	rhi.CompareNotEqual:     gputypes.CompareFunctionNotEqual,
	rhi.CompareLess:         gputypes.CompareFunctionLess,
	rhi.CompareLessEqual:    gputypes.CompareFunctionLessEqual,
	rhi.CompareGreater:      gputypes.CompareFunctionGreater,
	rhi.CompareGreaterEqual: gputypes.CompareFunctionGreaterEqual,
}

func compareFunction(c rhi.CompareFunc) gputypes.CompareFunction {
	if int(c) >= len(compareFunctions) {
		return gputypes.CompareFunctionAlways
	}
	return compareFunctions[c]
}

var stencilOperations = [...]hal.StencilOperation{
	rhi.StencilKeep:              hal.StencilOperationKeep,
	rhi.StencilZero:              hal.StencilOperationZero,
	rhi.StencilReplace:           hal.StencilOperationReplace,
	rhi.StencilIncrementAndClamp: hal.StencilOperationIncrementClamp,
	rhi.StencilDecrementAndClamp: hal.StencilOperationDecrementClamp,
	rhi.StencilInvert:            hal.StencilOperationInvert,
	rhi.StencilIncrementAndWrap:  hal.StencilOperationIncrementWrap,
	rhi.StencilDecrementAndWrap:  hal.StencilOperationDecrementWrap,
}

func stencilFace(s *rhi.StencilDesc) hal.StencilFaceState {
	op := func(f rhi.StencilFunc) hal.StencilOperation {
		if int(f) >= len(stencilOperations) {
			return hal.StencilOperationKeep
		}
		return stencilOperations[f]
	}
	return hal.StencilFaceState{
		Compare:     compareFunction(s.CompareFunc),
		FailOp:      op(s.Fail),
		DepthFailOp: op(s.DepthFail),
		PassOp:      op(s.Pass),
	}
}

var blendFactors = [...]gputypes.BlendFactor{
	rhi.BlendFactorZero:             gputypes.BlendFactorZero,
	rhi.BlendFactorOne:              gputypes.BlendFactorOne,
	rhi.BlendFactorSrcColor:         gputypes.BlendFactorSrc,
	rhi.BlendFactorOneMinusSrcColor: gputypes.BlendFactorOneMinusSrc,
	rhi.BlendFactorDstColor:         gputypes.BlendFactorDst,
	rhi.BlendFactorOneMinusDstColor: gputypes.BlendFactorOneMinusDst,
	rhi.BlendFactorSrcAlpha:         gputypes.BlendFactorSrcAlpha,
	rhi.BlendFactorOneMinusSrcAlpha: gputypes.BlendFactorOneMinusSrcAlpha,
	rhi.BlendFactorDstAlpha:         gputypes.BlendFactorDstAlpha,
	rhi.BlendFactorOneMinusDstAlpha: gputypes.BlendFactorOneMinusDstAlpha,
}

var blendOperations = [...]gputypes.BlendOperation{
	rhi.BlendOpAdd:             gputypes.BlendOperationAdd,
	rhi.BlendOpSubtract:        gputypes.BlendOperationSubtract,
	rhi.BlendOpReverseSubtract: gputypes.BlendOperationReverseSubtract,
	rhi.BlendOpMin:             gputypes.BlendOperationMin,
	rhi.BlendOpMax:             gputypes.BlendOperationMax,
}

func blendComponent(b *rhi.BlendingDesc) gputypes.BlendComponent {
	c := gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorOne,
		DstFactor: gputypes.BlendFactorZero,
		Operation: gputypes.BlendOperationAdd,
	}
	if int(b.SrcFactor) < len(blendFactors) {
		c.SrcFactor = blendFactors[b.SrcFactor]
	}
	if int(b.DstFactor) < len(blendFactors) {
		c.DstFactor = blendFactors[b.DstFactor]
	}
	if int(b.Op) < len(blendOperations) {
		c.Operation = blendOperations[b.Op]
	}
	return c
}

func colorWriteMask(m rhi.ColorWriteBits) gputypes.ColorWriteMask {
	var mask gputypes.ColorWriteMask
	if m&rhi.ColorWriteR != 0 {
		mask |= gputypes.ColorWriteMaskRed
	}
	if m&rhi.ColorWriteG != 0 {
		mask |= gputypes.ColorWriteMaskGreen
	}
	if m&rhi.ColorWriteB != 0 {
		mask |= gputypes.ColorWriteMaskBlue
	}
	if m&rhi.ColorWriteA != 0 {
		mask |= gputypes.ColorWriteMaskAlpha
	}
	return mask
}

func topology(t rhi.Topology) gputypes.PrimitiveTopology {
	switch t {
	case rhi.TopologyPointList:
		return gputypes.PrimitiveTopologyPointList
	case rhi.TopologyLineList:
		return gputypes.PrimitiveTopologyLineList
	case rhi.TopologyLineStrip:
		return gputypes.PrimitiveTopologyLineStrip
	case rhi.TopologyTriangleStrip:
		return gputypes.PrimitiveTopologyTriangleStrip
	}
	return gputypes.PrimitiveTopologyTriangleList
}

func cullMode(c rhi.CullMode) gputypes.CullMode {
	switch c {
	case rhi.CullModeFront:
		return gputypes.CullModeFront
	case rhi.CullModeBack:
		return gputypes.CullModeBack
	}
	return gputypes.CullModeNone
}

func indexFormat(t rhi.IndexType) gputypes.IndexFormat {
	if t == rhi.IndexTypeUint32 {
		return gputypes.IndexFormatUint32
	}
	return gputypes.IndexFormatUint16
}

// setVisibility maps a stage mask to WebGPU visibility. Every graphics
// stage before rasterization folds into the vertex stage.
func setVisibility(e *gputypes.BindGroupLayoutEntry, s rhi.StageBits) {
	if s == rhi.StageAll || s == rhi.StageNone {
		e.Visibility = gputypes.ShaderStageVertex | gputypes.ShaderStageFragment | gputypes.ShaderStageCompute
		return
	}
	if s&(rhi.StageGraphicsShaders&^rhi.StageFragmentShader) != 0 {
		e.Visibility |= gputypes.ShaderStageVertex
	}
	if s&rhi.StageFragmentShader != 0 {
		e.Visibility |= gputypes.ShaderStageFragment
	}
	if s&rhi.StageComputeShader != 0 {
		e.Visibility |= gputypes.ShaderStageCompute
	}
}

// bindingLayout builds the layout entry for one descriptor of a range.
func bindingLayout(binding uint32, r *rhi.DescriptorRangeDesc) (gputypes.BindGroupLayoutEntry, bool) {
	e := gputypes.BindGroupLayoutEntry{Binding: binding}
	setVisibility(&e, r.ShaderStages)
	switch r.DescriptorType {
	case rhi.DescriptorTypeSampler:
		e.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}
	case rhi.DescriptorTypeConstantBuffer:
		e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}
	case rhi.DescriptorTypeTexture:
		e.Texture = &gputypes.TextureBindingLayout{
			SampleType:    gputypes.TextureSampleTypeFloat,
			ViewDimension: gputypes.TextureViewDimension2D,
		}
	case rhi.DescriptorTypeBuffer, rhi.DescriptorTypeStructuredBuffer:
		e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}
	case rhi.DescriptorTypeStorageBuffer, rhi.DescriptorTypeStorageStructuredBuffer:
		e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}
	default:
		// Storage textures need a format up front and acceleration
		// structures do not exist in WebGPU.
		return e, false
	}
	return e, true
}
