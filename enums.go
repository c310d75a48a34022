package rhi

// WholeSize selects the remainder of a buffer starting at the given offset.
const WholeSize uint64 = 0

// RemainingMips and RemainingLayers select every mip level or array layer
// starting at the given offset.
const (
	RemainingMips   uint32 = 0
	RemainingLayers uint32 = 0
)

// GraphicsAPI identifies the native API a backend talks to.
type GraphicsAPI uint8

// Graphics APIs.
const (
	GraphicsAPINone GraphicsAPI = iota
	GraphicsAPID3D11
	GraphicsAPID3D12
	GraphicsAPIVulkan
	GraphicsAPIWebGPU
)

func (a GraphicsAPI) String() string {
	switch a {
	case GraphicsAPINone:
		return "NONE"
	case GraphicsAPID3D11:
		return "D3D11"
	case GraphicsAPID3D12:
		return "D3D12"
	case GraphicsAPIVulkan:
		return "VK"
	case GraphicsAPIWebGPU:
		return "WEBGPU"
	default:
		return "UNKNOWN"
	}
}

// Vendor identifies the GPU vendor.
type Vendor uint8

// Vendors.
const (
	VendorUnknown Vendor = iota
	VendorNVIDIA
	VendorAMD
	VendorIntel
)

// QueueType selects a command queue family.
type QueueType uint8

// Queue types.
const (
	QueueTypeGraphics QueueType = iota
	QueueTypeCompute
	QueueTypeCopy

	QueueTypeMaxNum
)

// MemoryLocation describes where a resource's memory lives.
type MemoryLocation uint8

// Memory locations.
const (
	MemoryLocationDevice MemoryLocation = iota
	MemoryLocationDeviceUpload
	MemoryLocationHostUpload
	MemoryLocationHostReadback
)

// IsHostVisible reports whether memory at this location can be mapped.
func (m MemoryLocation) IsHostVisible() bool {
	return m != MemoryLocationDevice
}

// PlaneBits selects texture aspects.
type PlaneBits uint8

// Texture planes.
const (
	PlaneColor PlaneBits = 1 << iota
	PlaneDepth
	PlaneStencil

	PlaneNone PlaneBits = 0
	PlaneAll  PlaneBits = PlaneColor | PlaneDepth | PlaneStencil
)

// AccessBits describes how a resource is accessed by the GPU.
type AccessBits uint32

// Access bits.
const (
	AccessIndexBuffer AccessBits = 1 << iota
	AccessVertexBuffer
	AccessConstantBuffer
	AccessArgumentBuffer
	AccessColorAttachment
	AccessShadingRateAttachment
	AccessDepthStencilAttachmentWrite
	AccessDepthStencilAttachmentRead
	AccessCopySource
	AccessCopyDestination
	AccessResolveSource
	AccessResolveDestination
	AccessAccelerationStructureRead
	AccessAccelerationStructureWrite
	AccessMicromapRead
	AccessMicromapWrite
	AccessShaderResource
	AccessShaderResourceStorage
	AccessShaderBindingTable

	AccessNone AccessBits = 0
)

// Layout is a texture layout.
type Layout uint8

// Texture layouts.
const (
	LayoutUnknown Layout = iota
	LayoutColorAttachment
	LayoutDepthStencilAttachment
	LayoutDepthStencilReadonly
	LayoutShaderResource
	LayoutShaderResourceStorage
	LayoutCopySource
	LayoutCopyDestination
	LayoutPresent
	LayoutShadingRateAttachment

	LayoutMaxNum
)

// StageBits selects pipeline stages.
type StageBits uint32

// Pipeline stages.
const (
	StageIndexInput StageBits = 1 << iota
	StageVertexShader
	StageTessControlShader
	StageTessEvaluationShader
	StageGeometryShader
	StageTaskShader
	StageMeshShader
	StageFragmentShader
	StageDepthStencilAttachment
	StageColorAttachment
	StageComputeShader
	StageRaygenShader
	StageMissShader
	StageIntersectionShader
	StageClosestHitShader
	StageAnyHitShader
	StageCallableShader
	StageCopy
	StageClearStorage
	StageResolve
	StageAccelerationStructure
	StageMicromap
	StageIndirect

	StageNone StageBits = 0
	StageAll  StageBits = 1<<31 - 1

	StageGraphicsShaders = StageVertexShader | StageTessControlShader | StageTessEvaluationShader |
		StageGeometryShader | StageTaskShader | StageMeshShader | StageFragmentShader
	StageRayTracingShaders = StageRaygenShader | StageMissShader | StageIntersectionShader |
		StageClosestHitShader | StageAnyHitShader | StageCallableShader
)

// BufferUsageBits describes the roles a buffer may play.
type BufferUsageBits uint16

// Buffer usages.
const (
	BufferUsageShaderResource BufferUsageBits = 1 << iota
	BufferUsageShaderResourceStorage
	BufferUsageVertexBuffer
	BufferUsageIndexBuffer
	BufferUsageConstantBuffer
	BufferUsageArgumentBuffer
	BufferUsageScratchBuffer
	BufferUsageShaderBindingTable
	BufferUsageAccelerationStructureBuildInput
	BufferUsageMicromapBuildInput

	BufferUsageNone BufferUsageBits = 0
)

// TextureUsageBits describes the roles a texture may play.
type TextureUsageBits uint8

// Texture usages.
const (
	TextureUsageShaderResource TextureUsageBits = 1 << iota
	TextureUsageShaderResourceStorage
	TextureUsageColorAttachment
	TextureUsageDepthStencilAttachment
	TextureUsageShadingRateAttachment

	TextureUsageNone TextureUsageBits = 0
)

// TextureType is the dimensionality of a texture.
type TextureType uint8

// Texture types.
const (
	TextureType1D TextureType = iota
	TextureType2D
	TextureType3D
)

// TextureViewType describes how a texture view is bound.
type TextureViewType uint8

// Texture view types.
const (
	TextureViewShaderResource TextureViewType = iota
	TextureViewShaderResourceArray
	TextureViewShaderResourceCube
	TextureViewShaderResourceCubeArray
	TextureViewShaderResourceStorage
	TextureViewShaderResourceStorageArray
	TextureViewColorAttachment
	TextureViewDepthStencilAttachment
	TextureViewDepthReadonlyStencilAttachment
	TextureViewDepthAttachmentStencilReadonly
	TextureViewDepthStencilReadonly
	TextureViewShadingRateAttachment
)

// BufferViewType describes how a buffer view is bound.
type BufferViewType uint8

// Buffer view types.
const (
	BufferViewShaderResource BufferViewType = iota
	BufferViewShaderResourceStorage
	BufferViewConstant
)

// DescriptorType is the kind of resource bound by a descriptor range.
type DescriptorType uint8

// Descriptor types.
const (
	DescriptorTypeSampler DescriptorType = iota
	DescriptorTypeConstantBuffer
	DescriptorTypeTexture
	DescriptorTypeStorageTexture
	DescriptorTypeBuffer
	DescriptorTypeStorageBuffer
	DescriptorTypeStructuredBuffer
	DescriptorTypeStorageStructuredBuffer
	DescriptorTypeAccelerationStructure

	DescriptorTypeMaxNum
)

var descriptorTypeNames = [DescriptorTypeMaxNum]string{
	"SAMPLER",
	"CONSTANT_BUFFER",
	"TEXTURE",
	"STORAGE_TEXTURE",
	"BUFFER",
	"STORAGE_BUFFER",
	"STRUCTURED_BUFFER",
	"STORAGE_STRUCTURED_BUFFER",
	"ACCELERATION_STRUCTURE",
}

func (t DescriptorType) String() string {
	if t < DescriptorTypeMaxNum {
		return descriptorTypeNames[t]
	}
	return "UNKNOWN"
}

// QueryType is the kind of data collected by a query pool.
type QueryType uint8

// Query types.
const (
	QueryTypeTimestamp QueryType = iota
	QueryTypeTimestampCopyQueue
	QueryTypeOcclusion
	QueryTypePipelineStatistics
	QueryTypeAccelerationStructureSize
	QueryTypeAccelerationStructureCompactedSize
	QueryTypeMicromapCompactedSize

	QueryTypeMaxNum
)

// IndexType is the element type of an index buffer.
type IndexType uint8

// Index types.
const (
	IndexTypeUint16 IndexType = iota
	IndexTypeUint32
)

// Size returns the size of one index in bytes.
func (t IndexType) Size() uint32 {
	if t == IndexTypeUint16 {
		return 2
	}
	return 4
}

// Topology is the primitive topology of a graphics pipeline.
type Topology uint8

// Topologies.
const (
	TopologyPointList Topology = iota
	TopologyLineList
	TopologyLineStrip
	TopologyTriangleList
	TopologyTriangleStrip
	TopologyPatchList
)

// CullMode selects faces to discard.
type CullMode uint8

// Cull modes.
const (
	CullModeNone CullMode = iota
	CullModeFront
	CullModeBack
)

// FillMode selects how polygons are rasterized.
type FillMode uint8

// Fill modes.
const (
	FillModeSolid FillMode = iota
	FillModeWireframe
)

// CompareFunc is a depth, stencil or sampler comparison.
type CompareFunc uint8

// Comparison functions.
const (
	CompareNone CompareFunc = iota
	CompareAlways
	CompareNever
	CompareEqual
	CompareNotEqual
	CompareLess
	CompareLessEqual
	CompareGreater
	CompareGreaterEqual
)

// StencilFunc is a stencil operation.
type StencilFunc uint8

// Stencil operations.
const (
	StencilKeep StencilFunc = iota
	StencilZero
	StencilReplace
	StencilIncrementAndClamp
	StencilDecrementAndClamp
	StencilInvert
	StencilIncrementAndWrap
	StencilDecrementAndWrap
)

// BlendFactor and BlendOp configure color blending.
type (
	BlendFactor uint8
	BlendOp     uint8
)

// Blend factors.
const (
	BlendFactorZero BlendFactor = iota
	BlendFactorOne
	BlendFactorSrcColor
	BlendFactorOneMinusSrcColor
	BlendFactorDstColor
	BlendFactorOneMinusDstColor
	BlendFactorSrcAlpha
	BlendFactorOneMinusSrcAlpha
	BlendFactorDstAlpha
	BlendFactorOneMinusDstAlpha
)

// Blend operations.
const (
	BlendOpAdd BlendOp = iota
	BlendOpSubtract
	BlendOpReverseSubtract
	BlendOpMin
	BlendOpMax
)

// ColorWriteBits masks color channel writes.
type ColorWriteBits uint8

// Color write masks.
const (
	ColorWriteR ColorWriteBits = 1 << iota
	ColorWriteG
	ColorWriteB
	ColorWriteA

	ColorWriteNone ColorWriteBits = 0
	ColorWriteRGBA                = ColorWriteR | ColorWriteG | ColorWriteB | ColorWriteA
)

// Filter, FilterExt and AddressMode configure samplers.
type (
	Filter      uint8
	FilterExt   uint8
	AddressMode uint8
)

// Sampler filters.
const (
	FilterNearest Filter = iota
	FilterLinear
)

// Sampler reduction modes.
const (
	FilterExtNone FilterExt = iota
	FilterExtMin
	FilterExtMax
)

// Sampler address modes.
const (
	AddressModeRepeat AddressMode = iota
	AddressModeMirroredRepeat
	AddressModeClampToEdge
	AddressModeClampToBorder
	AddressModeMirrorClampToEdge
)

// ShadingRate is a coarse pixel shading rate.
type ShadingRate uint8

// Shading rates.
const (
	ShadingRateFragmentSize1x1 ShadingRate = iota
	ShadingRateFragmentSize1x2
	ShadingRateFragmentSize2x1
	ShadingRateFragmentSize2x2
	ShadingRateFragmentSize2x4
	ShadingRateFragmentSize4x2
	ShadingRateFragmentSize4x4
)

// ShadingRateCombiner merges pipeline, primitive and attachment rates.
type ShadingRateCombiner uint8

// Shading rate combiners.
const (
	ShadingRateCombinerReplace ShadingRateCombiner = iota
	ShadingRateCombinerKeep
	ShadingRateCombinerMin
	ShadingRateCombinerMax
	ShadingRateCombinerSum
)

// CopyMode selects clone or compaction for acceleration structure and
// micromap copies.
type CopyMode uint8

// Copy modes.
const (
	CopyModeClone CopyMode = iota
	CopyModeCompact

	CopyModeMaxNum
)

// FormatSupportBits reports what a format can be used for.
type FormatSupportBits uint16

// Format support bits.
const (
	FormatSupportTexture FormatSupportBits = 1 << iota
	FormatSupportStorageTexture
	FormatSupportColorAttachment
	FormatSupportDepthStencilAttachment
	FormatSupportBlend
	FormatSupportStorageTextureAtomics
	FormatSupportBuffer
	FormatSupportStorageBuffer
	FormatSupportVertexBuffer

	FormatSupportUnsupported FormatSupportBits = 0
)
