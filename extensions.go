package rhi

// TextureSubresourceUploadDesc is the data of one mip level of one layer.
type TextureSubresourceUploadDesc struct {
	Slices     []byte
	SliceNum   uint32
	RowPitch   uint32
	SlicePitch uint32
}

// TextureUploadDesc uploads every subresource of a texture. Subresources
// are ordered layer-major: all mips of layer 0, then layer 1, and so on.
// A nil Subresources slice only transitions the texture.
type TextureUploadDesc struct {
	Subresources []TextureSubresourceUploadDesc
	Texture      Texture
	After        AccessLayoutStage
	Planes       PlaneBits
}

// BufferUploadDesc uploads data into a buffer at an offset.
type BufferUploadDesc struct {
	Data   []byte
	Buffer Buffer
	Offset uint64
	After  AccessStage
}

// StreamerDesc configures a streamer.
type StreamerDesc struct {
	// RingBufferSize is the initial staging capacity. The ring grows on
	// demand.
	RingBufferSize uint64

	// DynamicBufferLocation and DynamicBufferUsage configure the staging ring.
	DynamicBufferLocation MemoryLocation
	DynamicBufferUsage    BufferUsageBits

	// ConstantBufferSize sizes the dedicated constant ring; 0 disables it.
	ConstantBufferSize     uint64
	ConstantBufferLocation MemoryLocation

	// QueuedFrameNum is the number of frames in flight, at least 1.
	QueuedFrameNum uint32
}

// StreamBufferDataDesc streams data into a buffer.
type StreamBufferDataDesc struct {
	Data               []byte
	DstBuffer          Buffer
	DstOffset          uint64
	PlacementAlignment uint32
}

// StreamTextureDataDesc streams data into a texture region.
type StreamTextureDataDesc struct {
	Data               []byte
	DataLayout         TextureDataLayoutDesc
	DstTexture         Texture
	DstRegion          TextureRegionDesc
	PlacementAlignment uint32
}

// Window is a native window for swap chain creation.
type Window struct {
	Handle  uintptr
	Display uintptr
}

// SwapChainDesc describes a swap chain.
type SwapChainDesc struct {
	Window               Window
	CommandQueue         CommandQueue
	Width                uint16
	Height               uint16
	TextureNum           uint8
	Format               Format
	VerticalSyncInterval uint8
	QueuedFrameNum       uint8
	Waitable             bool
}

// NativeCommandBufferDesc wraps a native command list.
type NativeCommandBufferDesc struct {
	CommandBuffer    uintptr
	CommandAllocator uintptr
	QueueType        QueueType
}

// NativeBufferDesc wraps a native buffer.
type NativeBufferDesc struct {
	Buffer uintptr
	Desc   *BufferDesc
}

// NativeTextureDesc wraps a native texture.
type NativeTextureDesc struct {
	Texture uintptr
	Desc    *TextureDesc
}

// NativeQueryPoolDesc wraps a native query pool. The capacity of a wrapped
// pool may be unknown; Capacity is informative only.
type NativeQueryPoolDesc struct {
	QueryPool uintptr
	QueryType QueryType
	Capacity  uint32
}

// NativeAccelerationStructureDesc wraps a native acceleration structure.
type NativeAccelerationStructureDesc struct {
	AccelerationStructure uintptr
	Buffer                uintptr
	Size                  uint64
	BuildScratchSize      uint64
	UpdateScratchSize     uint64
	Type                  AccelerationStructureType
}
