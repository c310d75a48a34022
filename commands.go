package rhi

// Viewport is a rasterization viewport.
type Viewport struct {
	X, Y             float32
	Width, Height    float32
	DepthMin         float32
	DepthMax         float32
	OriginBottomLeft bool
}

// Rect is an integer rectangle.
type Rect struct {
	X, Y          int16
	Width, Height uint16
}

// SampleLocation is a programmable sample position in 1/16 pixel units.
type SampleLocation struct {
	X, Y int8
}

// DepthBiasDesc configures depth biasing.
type DepthBiasDesc struct {
	Constant float32
	Clamp    float32
	Slope    float32
}

// IsEnabled reports whether any bias term is non-zero.
func (d DepthBiasDesc) IsEnabled() bool {
	return d.Constant != 0 || d.Slope != 0
}

// ShadingRateDesc sets the per-draw shading rate and combiners.
type ShadingRateDesc struct {
	ShadingRate        ShadingRate
	PrimitiveCombiner  ShadingRateCombiner
	AttachmentCombiner ShadingRateCombiner
}

// AttachmentsDesc lists the attachments of a render pass.
type AttachmentsDesc struct {
	DepthStencil Descriptor
	ShadingRate  Descriptor
	Colors       []Descriptor
	ViewMask     uint32
}

// ClearValue is either a color or a depth/stencil pair.
type ClearValue struct {
	Color   Color32f
	Depth   float32
	Stencil uint8
}

// ClearDesc clears one attachment of the current render pass.
type ClearDesc struct {
	Value                ClearValue
	Planes               PlaneBits
	ColorAttachmentIndex uint32
}

// ClearStorageDesc clears a storage buffer or storage texture view.
type ClearStorageDesc struct {
	StorageDescriptor Descriptor
	Value             [4]uint32
	SetIndex          uint32
	RangeIndex        uint32
	DescriptorIndex   uint32
}

// DrawDesc is a non-indexed draw.
type DrawDesc struct {
	VertexNum    uint32
	InstanceNum  uint32
	BaseVertex   uint32
	BaseInstance uint32
}

// DrawIndexedDesc is an indexed draw.
type DrawIndexedDesc struct {
	IndexNum     uint32
	InstanceNum  uint32
	BaseIndex    uint32
	BaseVertex   int32
	BaseInstance uint32
}

// DrawIndirectDesc describes an indirect draw, optionally with a GPU
// supplied draw count.
type DrawIndirectDesc struct {
	Buffer            Buffer
	Offset            uint64
	DrawNum           uint32
	Stride            uint32
	CountBuffer       Buffer
	CountBufferOffset uint64
}

// DispatchDesc is a compute dispatch grid.
type DispatchDesc struct {
	X, Y, Z uint32
}

// AccessStage is an access mask and a stage mask.
type AccessStage struct {
	Access AccessBits
	Stages StageBits
}

// AccessLayoutStage is an access mask, a texture layout and a stage mask.
type AccessLayoutStage struct {
	Access AccessBits
	Layout Layout
	Stages StageBits
}

// GlobalBarrierDesc is a memory barrier not tied to a resource.
type GlobalBarrierDesc struct {
	Before AccessStage
	After  AccessStage
}

// BufferBarrierDesc transitions a buffer.
type BufferBarrierDesc struct {
	Buffer Buffer
	Before AccessStage
	After  AccessStage
}

// TextureBarrierDesc transitions a texture subresource range.
type TextureBarrierDesc struct {
	Texture     Texture
	Before      AccessLayoutStage
	After       AccessLayoutStage
	MipOffset   uint32
	MipNum      uint32
	LayerOffset uint32
	LayerNum    uint32
	Planes      PlaneBits
	SrcQueue    CommandQueue
	DstQueue    CommandQueue
}

// BarrierGroupDesc groups barriers recorded by one CmdBarrier call.
type BarrierGroupDesc struct {
	Globals  []GlobalBarrierDesc
	Buffers  []BufferBarrierDesc
	Textures []TextureBarrierDesc
}

// TextureRegionDesc selects a region of one texture subresource.
type TextureRegionDesc struct {
	X, Y, Z     uint16
	Width       uint16 // 0 selects the whole mip width
	Height      uint16
	Depth       uint16
	MipOffset   uint32
	LayerOffset uint32
	Planes      PlaneBits
}

// TextureDataLayoutDesc describes texel data laid out in a buffer.
type TextureDataLayoutDesc struct {
	Offset     uint64
	RowPitch   uint32
	SlicePitch uint32
}

// FenceSubmitDesc signals or waits for a fence value at given stages.
type FenceSubmitDesc struct {
	Fence  Fence
	Value  uint64
	Stages StageBits
}

// QueueSubmitDesc is one queue submission.
type QueueSubmitDesc struct {
	WaitFences     []FenceSubmitDesc
	CommandBuffers []CommandBuffer
	SignalFences   []FenceSubmitDesc
	SwapChain      SwapChain
}
