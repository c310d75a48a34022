// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rhi

import (
	"fmt"
	"time"
)

// Device is an opened GPU device.
//
// All functionality is reached through the tables returned by Interfaces.
// Destroy releases the device; objects created from it must be destroyed
// first.
type Device interface {
	Desc() *DeviceDesc
	Interfaces() Interfaces
	Destroy()
}

// Interfaces is the set of function tables a device provides. A nil field
// means the device does not support that table.
type Interfaces struct {
	Version Version

	Core       CoreInterface
	Helper     HelperInterface
	RayTracing RayTracingInterface
	MeshShader MeshShaderInterface
	Streamer   StreamerInterface
	SwapChain  SwapChainInterface
	Wrapper    WrapperInterface
}

// InterfaceKind names one function table.
type InterfaceKind uint8

// Function tables.
const (
	InterfaceCore InterfaceKind = iota
	InterfaceHelper
	InterfaceRayTracing
	InterfaceMeshShader
	InterfaceStreamer
	InterfaceSwapChain
	InterfaceWrapper
)

func (k InterfaceKind) String() string {
	switch k {
	case InterfaceCore:
		return "Core"
	case InterfaceHelper:
		return "Helper"
	case InterfaceRayTracing:
		return "RayTracing"
	case InterfaceMeshShader:
		return "MeshShader"
	case InterfaceStreamer:
		return "Streamer"
	case InterfaceSwapChain:
		return "SwapChain"
	case InterfaceWrapper:
		return "Wrapper"
	default:
		return fmt.Sprintf("InterfaceKind(%d)", uint8(k))
	}
}

// Has reports whether the table of the given kind is present.
func (i Interfaces) Has(k InterfaceKind) bool {
	switch k {
	case InterfaceCore:
		return i.Core != nil
	case InterfaceHelper:
		return i.Helper != nil
	case InterfaceRayTracing:
		return i.RayTracing != nil
	case InterfaceMeshShader:
		return i.MeshShader != nil
	case InterfaceStreamer:
		return i.Streamer != nil
	case InterfaceSwapChain:
		return i.SwapChain != nil
	case InterfaceWrapper:
		return i.Wrapper != nil
	default:
		return false
	}
}

// RequireInterfaces returns an error wrapping Unsupported naming the first
// table in kinds that dev does not provide.
func RequireInterfaces(dev Device, kinds ...InterfaceKind) error {
	ifaces := dev.Interfaces()
	if ifaces.Version.Major != VersionMajor {
		return fmt.Errorf("rhi: device API version %d.%d, want %d.x: %w",
			ifaces.Version.Major, ifaces.Version.Minor, VersionMajor, UnsatisfiedDependency)
	}
	for _, k := range kinds {
		if !ifaces.Has(k) {
			return fmt.Errorf("rhi: %s interface: %w", k, Unsupported)
		}
	}
	return nil
}

// CoreInterface is the mandatory function table: resource creation,
// descriptor management, command recording and submission.
//
// Cmd* methods record into a command buffer and report no error; a
// validating device logs contract violations and drops the call instead.
// Implementations must not retain slices passed as arguments.
type CoreInterface interface {
	GetDeviceDesc() *DeviceDesc
	GetFormatSupport(format Format) FormatSupportBits
	GetQuerySize(pool QueryPool) uint32
	GetFenceValue(fence Fence) uint64
	GetCommandQueue(queueType QueueType) (CommandQueue, error)

	CreateCommandAllocator(queue CommandQueue) (CommandAllocator, error)
	CreateCommandBuffer(allocator CommandAllocator) (CommandBuffer, error)
	CreateFence(initialValue uint64) (Fence, error)
	CreateDescriptorPool(desc *DescriptorPoolDesc) (DescriptorPool, error)
	CreateBuffer(desc *BufferDesc) (Buffer, error)
	CreateTexture(desc *TextureDesc) (Texture, error)
	CreateBufferView(desc *BufferViewDesc) (Descriptor, error)
	CreateTextureView(desc *TextureViewDesc) (Descriptor, error)
	CreateSampler(desc *SamplerDesc) (Descriptor, error)
	CreatePipelineLayout(desc *PipelineLayoutDesc) (PipelineLayout, error)
	CreateGraphicsPipeline(desc *GraphicsPipelineDesc) (Pipeline, error)
	CreateComputePipeline(desc *ComputePipelineDesc) (Pipeline, error)
	CreateQueryPool(desc *QueryPoolDesc) (QueryPool, error)

	DestroyCommandAllocator(allocator CommandAllocator)
	DestroyCommandBuffer(cmd CommandBuffer)
	DestroyFence(fence Fence)
	DestroyDescriptorPool(pool DescriptorPool)
	DestroyBuffer(buffer Buffer)
	DestroyTexture(texture Texture)
	DestroyDescriptor(descriptor Descriptor)
	DestroyPipelineLayout(layout PipelineLayout)
	DestroyPipeline(pipeline Pipeline)
	DestroyQueryPool(pool QueryPool)

	MapBuffer(buffer Buffer, offset, size uint64) ([]byte, error)
	UnmapBuffer(buffer Buffer)

	AllocateDescriptorSets(pool DescriptorPool, layout PipelineLayout, setIndex, instanceNum, variableDescriptorNum uint32) ([]DescriptorSet, error)
	ResetDescriptorPool(pool DescriptorPool)
	UpdateDescriptorRanges(set DescriptorSet, rangeOffset uint32, updates []DescriptorRangeUpdateDesc)
	UpdateDynamicConstantBuffers(set DescriptorSet, baseDynamicConstantBuffer uint32, buffers []Descriptor)
	CopyDescriptorSet(set DescriptorSet, desc *DescriptorSetCopyDesc)

	BeginCommandBuffer(cmd CommandBuffer, pool DescriptorPool) error
	EndCommandBuffer(cmd CommandBuffer) error

	CmdSetDescriptorPool(cmd CommandBuffer, pool DescriptorPool)
	CmdSetPipelineLayout(cmd CommandBuffer, layout PipelineLayout)
	CmdSetDescriptorSet(cmd CommandBuffer, setIndex uint32, set DescriptorSet, dynamicConstantBufferOffsets []uint32)
	CmdSetRootConstants(cmd CommandBuffer, rootConstantIndex uint32, data []byte)
	CmdSetRootDescriptor(cmd CommandBuffer, rootDescriptorIndex uint32, descriptor Descriptor)
	CmdSetPipeline(cmd CommandBuffer, pipeline Pipeline)
	CmdBarrier(cmd CommandBuffer, desc *BarrierGroupDesc)
	CmdSetIndexBuffer(cmd CommandBuffer, buffer Buffer, offset uint64, indexType IndexType)
	CmdSetVertexBuffers(cmd CommandBuffer, baseSlot uint32, buffers []Buffer, offsets []uint64)
	CmdSetViewports(cmd CommandBuffer, viewports []Viewport)
	CmdSetScissors(cmd CommandBuffer, rects []Rect)
	CmdSetStencilReference(cmd CommandBuffer, frontRef, backRef uint8)
	CmdSetDepthBounds(cmd CommandBuffer, boundsMin, boundsMax float32)
	CmdSetBlendConstants(cmd CommandBuffer, color Color32f)
	CmdSetSampleLocations(cmd CommandBuffer, locations []SampleLocation, sampleNum uint8)
	CmdSetShadingRate(cmd CommandBuffer, desc *ShadingRateDesc)
	CmdSetDepthBias(cmd CommandBuffer, desc *DepthBiasDesc)

	CmdBeginRendering(cmd CommandBuffer, desc *AttachmentsDesc)
	CmdClearAttachments(cmd CommandBuffer, clears []ClearDesc, rects []Rect)
	CmdDraw(cmd CommandBuffer, desc *DrawDesc)
	CmdDrawIndexed(cmd CommandBuffer, desc *DrawIndexedDesc)
	CmdDrawIndirect(cmd CommandBuffer, desc *DrawIndirectDesc)
	CmdDrawIndexedIndirect(cmd CommandBuffer, desc *DrawIndirectDesc)
	CmdEndRendering(cmd CommandBuffer)

	CmdDispatch(cmd CommandBuffer, desc DispatchDesc)
	CmdDispatchIndirect(cmd CommandBuffer, buffer Buffer, offset uint64)

	CmdCopyBuffer(cmd CommandBuffer, dst Buffer, dstOffset uint64, src Buffer, srcOffset, size uint64)
	CmdCopyTexture(cmd CommandBuffer, dst Texture, dstRegion *TextureRegionDesc, src Texture, srcRegion *TextureRegionDesc)
	CmdResolveTexture(cmd CommandBuffer, dst Texture, dstRegion *TextureRegionDesc, src Texture, srcRegion *TextureRegionDesc)
	CmdUploadBufferToTexture(cmd CommandBuffer, dst Texture, dstRegion *TextureRegionDesc, src Buffer, srcLayout *TextureDataLayoutDesc)
	CmdReadbackTextureToBuffer(cmd CommandBuffer, dst Buffer, dstLayout *TextureDataLayoutDesc, src Texture, srcRegion *TextureRegionDesc)
	CmdZeroBuffer(cmd CommandBuffer, buffer Buffer, offset, size uint64)
	CmdClearStorage(cmd CommandBuffer, desc *ClearStorageDesc)

	CmdResetQueries(cmd CommandBuffer, pool QueryPool, offset, num uint32)
	CmdBeginQuery(cmd CommandBuffer, pool QueryPool, offset uint32)
	CmdEndQuery(cmd CommandBuffer, pool QueryPool, offset uint32)
	CmdCopyQueries(cmd CommandBuffer, pool QueryPool, offset, num uint32, dst Buffer, dstOffset uint64)

	CmdBeginAnnotation(cmd CommandBuffer, name string, bgra uint32)
	CmdEndAnnotation(cmd CommandBuffer)
	CmdAnnotation(cmd CommandBuffer, name string, bgra uint32)

	ResetCommandAllocator(allocator CommandAllocator)
	QueueSubmit(queue CommandQueue, desc *QueueSubmitDesc) error
	Wait(fence Fence, value uint64)
}

// HelperInterface bundles convenience operations built on Core.
type HelperInterface interface {
	UploadData(queue CommandQueue, textures []TextureUploadDesc, buffers []BufferUploadDesc) error
	WaitForIdle(queue CommandQueue) error
}

// RayTracingInterface creates acceleration structures and records ray
// tracing work.
type RayTracingInterface interface {
	CreateRayTracingPipeline(desc *RayTracingPipelineDesc) (Pipeline, error)
	CreateAccelerationStructure(desc *AccelerationStructureDesc) (AccelerationStructure, error)
	CreateAccelerationStructureDescriptor(as AccelerationStructure) (Descriptor, error)
	CreateMicromap(desc *MicromapDesc) (Micromap, error)
	DestroyAccelerationStructure(as AccelerationStructure)
	DestroyMicromap(mm Micromap)

	GetAccelerationStructureDeviceAddress(as AccelerationStructure) uint64
	GetAccelerationStructureBuildScratchBufferSize(as AccelerationStructure) uint64
	GetAccelerationStructureUpdateScratchBufferSize(as AccelerationStructure) uint64
	GetAccelerationStructureSize(as AccelerationStructure) uint64
	GetMicromapBuildScratchBufferSize(mm Micromap) uint64
	GetMicromapSize(mm Micromap) uint64

	WriteShaderGroupIdentifiers(pipeline Pipeline, baseShaderGroupIndex, shaderGroupNum uint32, dst []byte) error

	CmdBuildTopLevelAccelerationStructures(cmd CommandBuffer, descs []BuildTopLevelAccelerationStructureDesc)
	CmdBuildBottomLevelAccelerationStructures(cmd CommandBuffer, descs []BuildBottomLevelAccelerationStructureDesc)
	CmdBuildMicromaps(cmd CommandBuffer, descs []BuildMicromapDesc)
	CmdWriteMicromapsSizes(cmd CommandBuffer, micromaps []Micromap, pool QueryPool, queryPoolOffset uint32)
	CmdWriteAccelerationStructuresSizes(cmd CommandBuffer, structures []AccelerationStructure, pool QueryPool, queryPoolOffset uint32)
	CmdCopyMicromap(cmd CommandBuffer, dst, src Micromap, mode CopyMode)
	CmdCopyAccelerationStructure(cmd CommandBuffer, dst, src AccelerationStructure, mode CopyMode)
	CmdDispatchRays(cmd CommandBuffer, desc *DispatchRaysDesc)
	CmdDispatchRaysIndirect(cmd CommandBuffer, buffer Buffer, offset uint64)
}

// MeshShaderInterface records mesh shader draws.
type MeshShaderInterface interface {
	CmdDrawMeshTasks(cmd CommandBuffer, desc *DrawMeshTasksDesc)
	CmdDrawMeshTasksIndirect(cmd CommandBuffer, desc *DrawIndirectDesc)
}

// StreamerInterface streams CPU data into GPU resources through a staging
// ring.
type StreamerInterface interface {
	CreateStreamer(desc *StreamerDesc) (Streamer, error)
	DestroyStreamer(s Streamer)

	// GetStreamerConstantBuffer returns the constant ring, or nil.
	GetStreamerConstantBuffer(s Streamer) Buffer

	// StreamConstantData copies data into the constant ring and returns the
	// byte offset it was placed at.
	StreamConstantData(s Streamer, data []byte) (uint32, error)

	// StreamBufferData and StreamTextureData copy data into the staging ring
	// and queue a copy to the destination. They return the staging buffer
	// and the offset the data was placed at.
	StreamBufferData(s Streamer, desc *StreamBufferDataDesc) (Buffer, uint64, error)
	StreamTextureData(s Streamer, desc *StreamTextureDataDesc) (Buffer, uint64, error)

	// CmdCopyStreamedData records all queued copies.
	CmdCopyStreamedData(cmd CommandBuffer, s Streamer)

	// EndStreamerFrame advances to the next frame in flight.
	EndStreamerFrame(s Streamer)
}

// SwapChainInterface presents textures to a window.
type SwapChainInterface interface {
	CreateSwapChain(desc *SwapChainDesc) (SwapChain, error)
	DestroySwapChain(sc SwapChain)
	GetSwapChainTextures(sc SwapChain) []Texture
	AcquireNextTexture(sc SwapChain) (uint32, error)
	WaitForPresent(sc SwapChain, timeout time.Duration) error
	QueuePresent(sc SwapChain) error
}

// WrapperInterface adopts objects created outside rhi.
type WrapperInterface interface {
	CreateCommandBufferFromNative(desc *NativeCommandBufferDesc) (CommandBuffer, error)
	CreateBufferFromNative(desc *NativeBufferDesc) (Buffer, error)
	CreateTextureFromNative(desc *NativeTextureDesc) (Texture, error)
	CreateQueryPoolFromNative(desc *NativeQueryPoolDesc) (QueryPool, error)
	CreateAccelerationStructureFromNative(desc *NativeAccelerationStructureDesc) (AccelerationStructure, error)
}
