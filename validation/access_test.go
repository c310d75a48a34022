package validation

import (
	"testing"

	"github.com/gogpu/rhi"
)

func TestIsBufferAccessMaskSupported(t *testing.T) {
	tests := []struct {
		name   string
		usage  rhi.BufferUsageBits
		access rhi.AccessBits
		want   bool
	}{
		{"no access", rhi.BufferUsageNone, rhi.AccessNone, true},
		{"copy needs no usage", rhi.BufferUsageNone, rhi.AccessCopySource | rhi.AccessCopyDestination, true},
		{"shader binding table", rhi.BufferUsageNone, rhi.AccessShaderBindingTable, true},
		{"vertex", rhi.BufferUsageVertexBuffer, rhi.AccessVertexBuffer, true},
		{"vertex without usage", rhi.BufferUsageIndexBuffer, rhi.AccessVertexBuffer, false},
		{"constant", rhi.BufferUsageConstantBuffer, rhi.AccessConstantBuffer, true},
		{"argument", rhi.BufferUsageArgumentBuffer, rhi.AccessArgumentBuffer, true},
		{"storage", rhi.BufferUsageShaderResourceStorage, rhi.AccessShaderResourceStorage, true},
		{"storage as read only", rhi.BufferUsageShaderResourceStorage, rhi.AccessShaderResource, false},
		{"every required bit", rhi.BufferUsageVertexBuffer, rhi.AccessVertexBuffer | rhi.AccessIndexBuffer, false},
		{"color attachment", ^rhi.BufferUsageNone, rhi.AccessColorAttachment, false},
		{"depth read", ^rhi.BufferUsageNone, rhi.AccessDepthStencilAttachmentRead, false},
		{"acceleration structure", ^rhi.BufferUsageNone, rhi.AccessAccelerationStructureRead, false},
		{"shading rate", ^rhi.BufferUsageNone, rhi.AccessShadingRateAttachment, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBufferAccessMaskSupported(tt.usage, tt.access); got != tt.want {
				t.Errorf("IsBufferAccessMaskSupported(%#x, %#x) = %v, want %v", tt.usage, tt.access, got, tt.want)
			}
		})
	}
}

func TestIsTextureAccessMaskSupported(t *testing.T) {
	tests := []struct {
		name   string
		usage  rhi.TextureUsageBits
		access rhi.AccessBits
		want   bool
	}{
		{"no access", rhi.TextureUsageNone, rhi.AccessNone, true},
		{"copy needs no usage", rhi.TextureUsageNone, rhi.AccessCopyDestination | rhi.AccessResolveSource, true},
		{"sampled", rhi.TextureUsageShaderResource, rhi.AccessShaderResource, true},
		{"sampled without usage", rhi.TextureUsageColorAttachment, rhi.AccessShaderResource, false},
		{"color attachment", rhi.TextureUsageColorAttachment, rhi.AccessColorAttachment, true},
		{"depth write", rhi.TextureUsageDepthStencilAttachment, rhi.AccessDepthStencilAttachmentWrite, true},
		{"depth without usage", rhi.TextureUsageShaderResource, rhi.AccessDepthStencilAttachmentRead, false},
		{"shading rate", rhi.TextureUsageShadingRateAttachment, rhi.AccessShadingRateAttachment, true},
		{"vertex buffer", ^rhi.TextureUsageNone, rhi.AccessVertexBuffer, false},
		{"constant buffer", ^rhi.TextureUsageNone, rhi.AccessConstantBuffer, false},
		{"acceleration structure", ^rhi.TextureUsageNone, rhi.AccessAccelerationStructureWrite, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTextureAccessMaskSupported(tt.usage, tt.access); got != tt.want {
				t.Errorf("IsTextureAccessMaskSupported(%#x, %#x) = %v, want %v", tt.usage, tt.access, got, tt.want)
			}
		})
	}
}

func TestIsTextureLayoutSupported(t *testing.T) {
	tests := []struct {
		usage  rhi.TextureUsageBits
		layout rhi.Layout
		want   bool
	}{
		{rhi.TextureUsageNone, rhi.LayoutUnknown, true},
		{rhi.TextureUsageNone, rhi.LayoutCopySource, true},
		{rhi.TextureUsageNone, rhi.LayoutPresent, true},
		{rhi.TextureUsageColorAttachment, rhi.LayoutColorAttachment, true},
		{rhi.TextureUsageShaderResource, rhi.LayoutColorAttachment, false},
		{rhi.TextureUsageDepthStencilAttachment, rhi.LayoutDepthStencilReadonly, true},
		{rhi.TextureUsageShaderResource, rhi.LayoutShaderResource, true},
		{rhi.TextureUsageShaderResource, rhi.LayoutShaderResourceStorage, false},
		{rhi.TextureUsageShadingRateAttachment, rhi.LayoutShadingRateAttachment, true},
		{^rhi.TextureUsageNone, rhi.LayoutMaxNum, false},
		{^rhi.TextureUsageNone, rhi.Layout(200), false},
	}
	for _, tt := range tests {
		if got := IsTextureLayoutSupported(tt.usage, tt.layout); got != tt.want {
			t.Errorf("IsTextureLayoutSupported(%#x, %d) = %v, want %v", tt.usage, tt.layout, got, tt.want)
		}
	}
}
