package rhi

import "log/slog"

// AdapterDesc identifies the physical device behind a Device.
type AdapterDesc struct {
	Name                   string
	LUID                   uint64
	VideoMemorySize        uint64
	SharedSystemMemorySize uint64
	DeviceID               uint32
	Vendor                 Vendor
}

// DeviceDesc reports the limits and capabilities of a device.
type DeviceDesc struct {
	Adapter     AdapterDesc
	GraphicsAPI GraphicsAPI
	Version     Version

	// Viewports
	ViewportMaxNum    uint32
	ViewportBoundsMin int32
	ViewportBoundsMax int32

	// Attachments
	AttachmentMaxDim      uint16
	AttachmentLayerMaxNum uint16
	ColorAttachmentMaxNum uint32

	// Multi-sampling
	ColorSampleMaxNum   uint8
	DepthSampleMaxNum   uint8
	StencilSampleMaxNum uint8

	// Resources
	Texture1DMaxDim         uint16
	Texture2DMaxDim         uint16
	Texture3DMaxDim         uint16
	TextureArrayLayerMaxNum uint16
	BufferMaxSize           uint64

	// Memory alignment
	UploadBufferTextureRowAlignment      uint32
	UploadBufferTextureSliceAlignment    uint32
	BufferShaderResourceOffsetAlignment  uint32
	ConstantBufferOffsetAlignment        uint32
	ShaderBindingTableAlignment          uint32
	ScratchBufferOffsetAlignment         uint32
	AccelerationStructureOffsetAlignment uint32
	MicromapOffsetAlignment              uint32

	// Pipeline layout
	PipelineLayoutDescriptorSetMaxNum  uint32
	PipelineLayoutRootConstantMaxSize  uint32
	PipelineLayoutRootDescriptorMaxNum uint32

	// Descriptor sets
	DescriptorSetSamplerMaxNum        uint32
	DescriptorSetConstantBufferMaxNum uint32
	DescriptorSetStorageBufferMaxNum  uint32
	DescriptorSetTextureMaxNum        uint32

	// Compute
	ComputeShaderWorkGroupMaxNum     [3]uint32
	ComputeShaderSharedMemoryMaxSize uint32

	// Ray tracing
	RayTracingShaderGroupIdentifierSize uint32
	RayTracingShaderTableMaxStride      uint32
	RayTracingShaderRecursionMaxDepth   uint32
	RayTracingGeometryObjectMaxNum      uint32

	// Mesh shaders
	MeshControlSharedMemoryMaxSize     uint32
	MeshEvaluationOutputVerticesMaxNum uint32

	// Timing
	TimestampFrequencyHz uint64

	// Tiers: 0 means unsupported.
	ShadingRateTier        uint8
	SampleLocationsTier    uint8
	RayTracingTier         uint8
	ConservativeRasterTier uint8

	// Features
	IsViewportOriginBottomLeftSupported       bool
	IsDepthBoundsTestSupported                bool
	IsDrawIndirectCountSupported              bool
	IsDynamicDepthBiasSupported               bool
	IsMeshShaderSupported                     bool
	IsMicromapSupported                       bool
	IsIndependentFrontAndBackStencilSupported bool
	IsTextureFilterMinMaxSupported            bool
	IsCopyQueueTimestampSupported             bool
	IsSwapChainSupported                      bool
}

// DeviceCreationDesc selects and configures a backend at device creation.
type DeviceCreationDesc struct {
	// Backend is the registered backend name. Empty selects the first one.
	Backend string

	// GraphicsAPI is a hint for backends that drive several native APIs.
	GraphicsAPI GraphicsAPI

	// EnableValidation wraps the device in the validation layer.
	EnableValidation bool

	// Logger receives validation diagnostics. Nil uses Logger().
	Logger *slog.Logger

	// Options carries backend-specific configuration.
	Options any
}

// BufferDesc describes a buffer.
type BufferDesc struct {
	Size            uint64
	StructureStride uint32
	Usage           BufferUsageBits
	Location        MemoryLocation
}

// TextureDesc describes a texture.
type TextureDesc struct {
	Type      TextureType
	Usage     TextureUsageBits
	Format    Format
	Location  MemoryLocation
	Width     uint16
	Height    uint16
	Depth     uint16
	MipNum    uint32
	LayerNum  uint32
	SampleNum uint8
}

// BufferViewDesc describes a typed or structured view of a buffer range.
type BufferViewDesc struct {
	Buffer   Buffer
	ViewType BufferViewType
	Format   Format
	Offset   uint64
	Size     uint64 // WholeSize selects the rest of the buffer
}

// TextureViewDesc describes a view of a texture subresource range.
type TextureViewDesc struct {
	Texture     Texture
	ViewType    TextureViewType
	Format      Format
	Planes      PlaneBits
	MipOffset   uint32
	MipNum      uint32 // RemainingMips selects the rest
	LayerOffset uint32
	LayerNum    uint32 // RemainingLayers selects the rest
}

// AddressModes sets per-axis sampler addressing.
type AddressModes struct {
	U, V, W AddressMode
}

// Filters sets sampler filtering.
type Filters struct {
	Min, Mag, Mip Filter
	Ext           FilterExt
}

// SamplerDesc describes a sampler.
type SamplerDesc struct {
	Filters      Filters
	Anisotropy   uint8
	MipBias      float32
	MipMin       float32
	MipMax       float32
	AddressModes AddressModes
	CompareFunc  CompareFunc
	BorderColor  Color32f
	IsInteger    bool
}

// Color32f is a floating-point RGBA color.
type Color32f struct {
	R, G, B, A float32
}

// DescriptorRangeDesc describes a contiguous run of descriptors in a set.
type DescriptorRangeDesc struct {
	BaseRegisterIndex uint32
	DescriptorNum     uint32
	DescriptorType    DescriptorType
	ShaderStages      StageBits
	IsArray           bool
	IsVariableSized   bool
}

// DynamicConstantBufferDesc describes a constant buffer bound with a
// per-draw offset.
type DynamicConstantBufferDesc struct {
	RegisterIndex uint32
	ShaderStages  StageBits
}

// DescriptorSetDesc describes one descriptor set of a pipeline layout.
type DescriptorSetDesc struct {
	RegisterSpace          uint32
	Ranges                 []DescriptorRangeDesc
	DynamicConstantBuffers []DynamicConstantBufferDesc
}

// RootConstantDesc describes push constants.
type RootConstantDesc struct {
	RegisterIndex uint32
	Size          uint32
	ShaderStages  StageBits
}

// RootDescriptorDesc describes a descriptor bound directly in the layout.
type RootDescriptorDesc struct {
	RegisterIndex  uint32
	DescriptorType DescriptorType
	ShaderStages   StageBits
}

// PipelineLayoutDesc describes the binding model of a pipeline.
type PipelineLayoutDesc struct {
	RootRegisterSpace uint32
	RootConstants     []RootConstantDesc
	RootDescriptors   []RootDescriptorDesc
	DescriptorSets    []DescriptorSetDesc
	ShaderStages      StageBits
}

// DescriptorPoolDesc sets the capacity of a descriptor pool.
type DescriptorPoolDesc struct {
	DescriptorSetMaxNum           uint32
	SamplerMaxNum                 uint32
	ConstantBufferMaxNum          uint32
	DynamicConstantBufferMaxNum   uint32
	TextureMaxNum                 uint32
	StorageTextureMaxNum          uint32
	BufferMaxNum                  uint32
	StorageBufferMaxNum           uint32
	StructuredBufferMaxNum        uint32
	StorageStructuredBufferMaxNum uint32
	AccelerationStructureMaxNum   uint32
}

// MaxNum returns the pool capacity for descriptors of type t.
func (d *DescriptorPoolDesc) MaxNum(t DescriptorType) uint32 {
	switch t {
	case DescriptorTypeSampler:
		return d.SamplerMaxNum
	case DescriptorTypeConstantBuffer:
		return d.ConstantBufferMaxNum
	case DescriptorTypeTexture:
		return d.TextureMaxNum
	case DescriptorTypeStorageTexture:
		return d.StorageTextureMaxNum
	case DescriptorTypeBuffer:
		return d.BufferMaxNum
	case DescriptorTypeStorageBuffer:
		return d.StorageBufferMaxNum
	case DescriptorTypeStructuredBuffer:
		return d.StructuredBufferMaxNum
	case DescriptorTypeStorageStructuredBuffer:
		return d.StorageStructuredBufferMaxNum
	case DescriptorTypeAccelerationStructure:
		return d.AccelerationStructureMaxNum
	default:
		return 0
	}
}

// DescriptorRangeUpdateDesc writes descriptors into one range of a set.
type DescriptorRangeUpdateDesc struct {
	Descriptors    []Descriptor
	BaseDescriptor uint32
}

// DescriptorSetCopyDesc copies ranges between descriptor sets.
type DescriptorSetCopyDesc struct {
	SrcDescriptorSet             DescriptorSet
	SrcBaseRange                 uint32
	DstBaseRange                 uint32
	RangeNum                     uint32
	SrcBaseDynamicConstantBuffer uint32
	DstBaseDynamicConstantBuffer uint32
	DynamicConstantBufferNum     uint32
}

// QueryPoolDesc describes a query pool.
type QueryPoolDesc struct {
	QueryType QueryType
	Capacity  uint32
}

// ShaderDesc is one shader stage's bytecode. The backend decides which
// bytecode formats it accepts.
type ShaderDesc struct {
	Stage          StageBits
	Bytecode       []byte
	EntryPointName string
}

// VertexAttributeDesc describes one vertex attribute.
type VertexAttributeDesc struct {
	Location     uint32
	Offset       uint32
	Format       Format
	StreamIndex  uint16
	SemanticName string
}

// VertexStreamDesc describes one vertex buffer binding.
type VertexStreamDesc struct {
	Stride      uint16
	BindingSlot uint16
	PerInstance bool
}

// VertexInputDesc describes the vertex fetch of a graphics pipeline.
type VertexInputDesc struct {
	Attributes []VertexAttributeDesc
	Streams    []VertexStreamDesc
}

// InputAssemblyDesc configures primitive assembly.
type InputAssemblyDesc struct {
	Topology            Topology
	TessControlPointNum uint8
	PrimitiveRestart    bool
}

// RasterizationDesc configures the rasterizer.
type RasterizationDesc struct {
	FillMode              FillMode
	CullMode              CullMode
	FrontCounterClockwise bool
	DepthBias             DepthBiasDesc
	DepthClamp            bool
	LineSmoothing         bool
	ConservativeRaster    bool
	ShadingRate           bool
}

// MultisampleDesc configures multi-sampling.
type MultisampleDesc struct {
	SampleMask      uint32
	SampleNum       uint8
	AlphaToCoverage bool
	SampleLocations bool
}

// StencilDesc configures one face of the stencil test.
type StencilDesc struct {
	CompareFunc CompareFunc
	Fail        StencilFunc
	Pass        StencilFunc
	DepthFail   StencilFunc
	WriteMask   uint8
	CompareMask uint8
}

// DepthAttachmentDesc configures the depth test.
type DepthAttachmentDesc struct {
	CompareFunc CompareFunc
	Write       bool
	BoundsTest  bool
}

// StencilAttachmentDesc configures the stencil test.
type StencilAttachmentDesc struct {
	Front StencilDesc
	Back  StencilDesc
}

// BlendingDesc configures blending for one channel group.
type BlendingDesc struct {
	SrcFactor BlendFactor
	DstFactor BlendFactor
	Op        BlendOp
}

// ColorAttachmentDesc describes one render target of a graphics pipeline.
type ColorAttachmentDesc struct {
	Format         Format
	ColorBlend     BlendingDesc
	AlphaBlend     BlendingDesc
	ColorWriteMask ColorWriteBits
	BlendEnabled   bool
}

// OutputMergerDesc describes the attachments a graphics pipeline writes.
type OutputMergerDesc struct {
	Colors             []ColorAttachmentDesc
	Depth              DepthAttachmentDesc
	Stencil            StencilAttachmentDesc
	DepthStencilFormat Format
}

// GraphicsPipelineDesc describes a graphics pipeline.
type GraphicsPipelineDesc struct {
	PipelineLayout PipelineLayout
	VertexInput    *VertexInputDesc
	InputAssembly  InputAssemblyDesc
	Rasterization  RasterizationDesc
	Multisample    *MultisampleDesc
	OutputMerger   OutputMergerDesc
	Shaders        []ShaderDesc
}

// WritesDepth reports whether the pipeline writes the depth aspect.
func (d *GraphicsPipelineDesc) WritesDepth() bool {
	return d.OutputMerger.Depth.Write && d.OutputMerger.DepthStencilFormat.Props().IsDepth
}

// WritesStencil reports whether the pipeline may write the stencil aspect.
func (d *GraphicsPipelineDesc) WritesStencil() bool {
	if !d.OutputMerger.DepthStencilFormat.Props().IsStencil {
		return false
	}
	s := d.OutputMerger.Stencil
	return s.Front.WriteMask != 0 || s.Back.WriteMask != 0
}

// ComputePipelineDesc describes a compute pipeline.
type ComputePipelineDesc struct {
	PipelineLayout PipelineLayout
	Shader         ShaderDesc
}
