package rhi

// Object is the trait shared by every handle: it can be named for debugging
// and exposes the backend's native object for interop.
type Object interface {
	SetDebugName(name string)

	// NativeObject returns the backend's native handle, or 0 if the backend
	// has none.
	NativeObject() uint64
}

// Handles. Each is opaque; only the backend that created a handle (or the
// validation layer wrapping it) may interpret it.
type (
	CommandQueue     interface{ Object }
	CommandAllocator interface{ Object }
	CommandBuffer    interface{ Object }
	Fence            interface{ Object }
	DescriptorPool   interface{ Object }
	DescriptorSet    interface{ Object }
	PipelineLayout   interface{ Object }
	Pipeline         interface{ Object }
	SwapChain        interface{ Object }
	Streamer         interface{ Object }
	Micromap         interface{ Object }

	// Descriptor is a buffer view, texture view, sampler or acceleration
	// structure view.
	Descriptor interface{ Object }

	AccelerationStructure interface{ Object }
)

// Buffer is a linear GPU allocation.
type Buffer interface {
	Object
	BufferDesc() *BufferDesc
}

// Texture is an image GPU allocation.
type Texture interface {
	Object
	TextureDesc() *TextureDesc
}

// QueryPool is a fixed-capacity array of GPU queries.
type QueryPool interface {
	Object
	QueryType() QueryType
}
