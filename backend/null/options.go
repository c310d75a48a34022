package null

import (
	"log/slog"

	"github.com/gogpu/rhi"
)

// Option configures a null device.
//
// Example:
//
//	dev := null.New(
//	    null.WithRayTracing(true),
//	    null.WithMeshShader(true),
//	)
type Option func(*options)

type options struct {
	desc          rhi.DeviceDesc
	logger        *slog.Logger
	allInterfaces bool
}

// WithDeviceDesc replaces the reported device description.
func WithDeviceDesc(desc rhi.DeviceDesc) Option {
	return func(o *options) {
		o.desc = desc
	}
}

// WithGraphicsAPI sets the API the device claims to run on.
func WithGraphicsAPI(api rhi.GraphicsAPI) Option {
	return func(o *options) {
		o.desc.GraphicsAPI = api
	}
}

// WithRayTracing enables tier 2 ray tracing with micromaps and exposes the
// RayTracing table.
func WithRayTracing(enabled bool) Option {
	return func(o *options) {
		if enabled {
			o.desc.RayTracingTier = 2
			o.desc.IsMicromapSupported = true
		} else {
			o.desc.RayTracingTier = 0
			o.desc.IsMicromapSupported = false
		}
	}
}

// WithMeshShader enables mesh shaders and exposes the MeshShader table.
func WithMeshShader(enabled bool) Option {
	return func(o *options) {
		o.desc.IsMeshShaderSupported = enabled
	}
}

// WithLogger sets the logger for device lifetime events. By default the
// shared rhi.Logger() is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithAllInterfaces exposes every function table regardless of the
// capabilities in the device description. It is useful for exercising
// capability checks in layers above the device.
func WithAllInterfaces() Option {
	return func(o *options) {
		o.allInterfaces = true
	}
}

// DefaultDeviceDesc returns the description reported by New without
// options.
func DefaultDeviceDesc() rhi.DeviceDesc {
	return rhi.DeviceDesc{
		Adapter: rhi.AdapterDesc{
			Name:            "null",
			VideoMemorySize: 1 << 30,
		},
		GraphicsAPI: rhi.GraphicsAPINone,
		Version:     rhi.CurrentVersion(),

		ViewportMaxNum:    16,
		ViewportBoundsMin: -32768,
		ViewportBoundsMax: 32767,

		AttachmentMaxDim:      16384,
		AttachmentLayerMaxNum: 2048,
		ColorAttachmentMaxNum: 8,

		ColorSampleMaxNum:   8,
		DepthSampleMaxNum:   8,
		StencilSampleMaxNum: 8,

		Texture1DMaxDim:         16384,
		Texture2DMaxDim:         16384,
		Texture3DMaxDim:         2048,
		TextureArrayLayerMaxNum: 2048,
		BufferMaxSize:           1 << 32,

		UploadBufferTextureRowAlignment:      256,
		UploadBufferTextureSliceAlignment:    512,
		BufferShaderResourceOffsetAlignment:  16,
		ConstantBufferOffsetAlignment:        256,
		ShaderBindingTableAlignment:          64,
		ScratchBufferOffsetAlignment:         256,
		AccelerationStructureOffsetAlignment: 256,
		MicromapOffsetAlignment:              256,

		PipelineLayoutDescriptorSetMaxNum:  8,
		PipelineLayoutRootConstantMaxSize:  256,
		PipelineLayoutRootDescriptorMaxNum: 8,

		DescriptorSetSamplerMaxNum:        2048,
		DescriptorSetConstantBufferMaxNum: 2048,
		DescriptorSetStorageBufferMaxNum:  2048,
		DescriptorSetTextureMaxNum:        2048,

		ComputeShaderWorkGroupMaxNum:     [3]uint32{65535, 65535, 65535},
		ComputeShaderSharedMemoryMaxSize: 32 << 10,

		RayTracingShaderGroupIdentifierSize: 32,
		RayTracingShaderTableMaxStride:      4096,
		RayTracingShaderRecursionMaxDepth:   31,
		RayTracingGeometryObjectMaxNum:      1 << 24,

		MeshControlSharedMemoryMaxSize:     32 << 10,
		MeshEvaluationOutputVerticesMaxNum: 256,

		TimestampFrequencyHz: 1_000_000_000,

		ShadingRateTier:        1,
		SampleLocationsTier:    1,
		ConservativeRasterTier: 1,

		IsViewportOriginBottomLeftSupported:       true,
		IsDepthBoundsTestSupported:                true,
		IsDrawIndirectCountSupported:              true,
		IsDynamicDepthBiasSupported:               true,
		IsIndependentFrontAndBackStencilSupported: true,
		IsTextureFilterMinMaxSupported:            true,
		IsCopyQueueTimestampSupported:             true,
		IsSwapChainSupported:                      true,
	}
}
