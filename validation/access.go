package validation

import "github.com/gogpu/rhi"

// IsBufferAccessMaskSupported reports whether a buffer created with usage may
// be accessed with every bit of access.
//
// Attachment, acceleration structure and shading rate accesses are never
// valid for buffers. Copy, resolve and shader binding table accesses need no
// usage bit.
func IsBufferAccessMaskSupported(usage rhi.BufferUsageBits, access rhi.AccessBits) bool {
	const never = rhi.AccessColorAttachment |
		rhi.AccessDepthStencilAttachmentWrite |
		rhi.AccessDepthStencilAttachmentRead |
		rhi.AccessAccelerationStructureRead |
		rhi.AccessAccelerationStructureWrite |
		rhi.AccessShadingRateAttachment
	if access&never != 0 {
		return false
	}

	required := rhi.BufferUsageNone
	if access&rhi.AccessVertexBuffer != 0 {
		required |= rhi.BufferUsageVertexBuffer
	}
	if access&rhi.AccessIndexBuffer != 0 {
		required |= rhi.BufferUsageIndexBuffer
	}
	if access&rhi.AccessConstantBuffer != 0 {
		required |= rhi.BufferUsageConstantBuffer
	}
	if access&rhi.AccessArgumentBuffer != 0 {
		required |= rhi.BufferUsageArgumentBuffer
	}
	if access&rhi.AccessShaderResource != 0 {
		required |= rhi.BufferUsageShaderResource
	}
	if access&rhi.AccessShaderResourceStorage != 0 {
		required |= rhi.BufferUsageShaderResourceStorage
	}
	return usage&required == required
}

// IsTextureAccessMaskSupported reports whether a texture created with usage
// may be accessed with every bit of access.
//
// Vertex, index, constant, argument and acceleration structure accesses are
// never valid for textures.
func IsTextureAccessMaskSupported(usage rhi.TextureUsageBits, access rhi.AccessBits) bool {
	const never = rhi.AccessVertexBuffer |
		rhi.AccessIndexBuffer |
		rhi.AccessConstantBuffer |
		rhi.AccessArgumentBuffer |
		rhi.AccessAccelerationStructureRead |
		rhi.AccessAccelerationStructureWrite
	if access&never != 0 {
		return false
	}

	required := rhi.TextureUsageNone
	if access&rhi.AccessShaderResource != 0 {
		required |= rhi.TextureUsageShaderResource
	}
	if access&rhi.AccessShaderResourceStorage != 0 {
		required |= rhi.TextureUsageShaderResourceStorage
	}
	if access&rhi.AccessColorAttachment != 0 {
		required |= rhi.TextureUsageColorAttachment
	}
	if access&(rhi.AccessDepthStencilAttachmentWrite|rhi.AccessDepthStencilAttachmentRead) != 0 {
		required |= rhi.TextureUsageDepthStencilAttachment
	}
	if access&rhi.AccessShadingRateAttachment != 0 {
		required |= rhi.TextureUsageShadingRateAttachment
	}
	return usage&required == required
}

// layoutUsage maps each layout to the texture usage it requires.
var layoutUsage = [rhi.LayoutMaxNum]rhi.TextureUsageBits{
	rhi.LayoutUnknown:                rhi.TextureUsageNone,
	rhi.LayoutColorAttachment:        rhi.TextureUsageColorAttachment,
	rhi.LayoutDepthStencilAttachment: rhi.TextureUsageDepthStencilAttachment,
	rhi.LayoutDepthStencilReadonly:   rhi.TextureUsageDepthStencilAttachment,
	rhi.LayoutShaderResource:         rhi.TextureUsageShaderResource,
	rhi.LayoutShaderResourceStorage:  rhi.TextureUsageShaderResourceStorage,
	rhi.LayoutCopySource:             rhi.TextureUsageNone,
	rhi.LayoutCopyDestination:        rhi.TextureUsageNone,
	rhi.LayoutPresent:                rhi.TextureUsageNone,
	rhi.LayoutShadingRateAttachment:  rhi.TextureUsageShadingRateAttachment,
}

// IsTextureLayoutSupported reports whether a texture created with usage may
// be placed in layout. Out-of-range layouts are never supported.
func IsTextureLayoutSupported(usage rhi.TextureUsageBits, layout rhi.Layout) bool {
	if layout >= rhi.LayoutMaxNum {
		return false
	}
	required := layoutUsage[layout]
	return usage&required == required
}
