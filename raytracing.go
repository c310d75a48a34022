package rhi

// AccelerationStructureType distinguishes top and bottom levels.
type AccelerationStructureType uint8

// Acceleration structure types.
const (
	AccelerationStructureTopLevel AccelerationStructureType = iota
	AccelerationStructureBottomLevel
)

// AccelerationStructureBits are build flags.
type AccelerationStructureBits uint8

// Acceleration structure build flags.
const (
	AccelerationStructureAllowUpdate AccelerationStructureBits = 1 << iota
	AccelerationStructureAllowCompaction
	AccelerationStructureAllowDataAccess
	AccelerationStructureAllowMicromapUpdate
	AccelerationStructureAllowDisableMicromaps
	AccelerationStructurePreferFastTrace
	AccelerationStructurePreferFastBuild
	AccelerationStructureMinimizeMemory

	AccelerationStructureNone AccelerationStructureBits = 0
)

// BottomLevelGeometryType distinguishes triangle and AABB geometry.
type BottomLevelGeometryType uint8

// Geometry types.
const (
	BottomLevelGeometryTriangles BottomLevelGeometryType = iota
	BottomLevelGeometryAABBs
)

// BottomLevelGeometryBits are per-geometry flags.
type BottomLevelGeometryBits uint8

// Geometry flags.
const (
	BottomLevelGeometryOpaque BottomLevelGeometryBits = 1 << iota
	BottomLevelGeometryNoDuplicateAnyHitInvocation

	BottomLevelGeometryNone BottomLevelGeometryBits = 0
)

// MicromapFormat is the opacity micromap encoding.
type MicromapFormat uint8

// Micromap formats.
const (
	MicromapFormatOpacity2State MicromapFormat = 1 + iota
	MicromapFormatOpacity4State
)

// MicromapBits are micromap build flags.
type MicromapBits uint8

// Micromap build flags.
const (
	MicromapAllowCompaction MicromapBits = 1 << iota
	MicromapPreferFastTrace
	MicromapPreferFastBuild

	MicromapNone MicromapBits = 0
)

// BottomLevelMicromapDesc attaches a micromap to triangle geometry.
type BottomLevelMicromapDesc struct {
	Micromap     Micromap
	IndexBuffer  Buffer
	IndexOffset  uint64
	BaseTriangle uint32
	IndexType    IndexType
}

// BottomLevelTrianglesDesc is triangle geometry input.
type BottomLevelTrianglesDesc struct {
	VertexBuffer    Buffer
	VertexOffset    uint64
	VertexNum       uint32
	VertexStride    uint16
	VertexFormat    Format
	IndexBuffer     Buffer
	IndexOffset     uint64
	IndexNum        uint32
	IndexType       IndexType
	TransformBuffer Buffer
	TransformOffset uint64
	Micromap        *BottomLevelMicromapDesc
}

// PrimitiveNum returns the number of triangles described.
func (t *BottomLevelTrianglesDesc) PrimitiveNum() uint32 {
	if t.IndexNum != 0 {
		return t.IndexNum / 3
	}
	return t.VertexNum / 3
}

// BottomLevelAABBsDesc is procedural AABB geometry input.
type BottomLevelAABBsDesc struct {
	Buffer Buffer
	Offset uint64
	Num    uint32
	Stride uint32
}

// BottomLevelGeometryDesc is one geometry of a bottom-level structure.
type BottomLevelGeometryDesc struct {
	Flags     BottomLevelGeometryBits
	Type      BottomLevelGeometryType
	Triangles BottomLevelTrianglesDesc
	AABBs     BottomLevelAABBsDesc
}

// AccelerationStructureDesc describes an acceleration structure.
type AccelerationStructureDesc struct {
	OptimizedSize uint64 // from a compacted size query, 0 if unknown
	Geometries    []BottomLevelGeometryDesc
	InstanceNum   uint32 // top level only
	Flags         AccelerationStructureBits
	Type          AccelerationStructureType
}

// MicromapUsageDesc is one histogram entry of a micromap build.
type MicromapUsageDesc struct {
	TriangleNum      uint32
	SubdivisionLevel uint16
	Format           MicromapFormat
}

// MicromapDesc describes a micromap.
type MicromapDesc struct {
	OptimizedSize uint64
	Usages        []MicromapUsageDesc
	Flags         MicromapBits
}

// BuildTopLevelAccelerationStructureDesc is one top-level build.
type BuildTopLevelAccelerationStructureDesc struct {
	Dst            AccelerationStructure
	Src            AccelerationStructure // non-nil for an update
	InstanceNum    uint32
	InstanceBuffer Buffer
	InstanceOffset uint64
	ScratchBuffer  Buffer
	ScratchOffset  uint64
}

// BuildBottomLevelAccelerationStructureDesc is one bottom-level build.
type BuildBottomLevelAccelerationStructureDesc struct {
	Dst           AccelerationStructure
	Src           AccelerationStructure
	Geometries    []BottomLevelGeometryDesc
	ScratchBuffer Buffer
	ScratchOffset uint64
}

// BuildMicromapDesc is one micromap build.
type BuildMicromapDesc struct {
	Dst            Micromap
	DataBuffer     Buffer
	DataOffset     uint64
	TriangleBuffer Buffer
	TriangleOffset uint64
	ScratchBuffer  Buffer
	ScratchOffset  uint64
}

// StringArray is a region of a shader binding table.
type StringArray struct {
	Buffer Buffer
	Offset uint64
	Size   uint64
	Stride uint64
}

// DispatchRaysDesc is a ray dispatch.
type DispatchRaysDesc struct {
	RaygenShader    StringArray
	MissShaders     StringArray
	HitShaderGroups StringArray
	CallableShaders StringArray
	X, Y, Z         uint32
}

// ShaderLibraryDesc lists the shaders of a ray tracing pipeline.
type ShaderLibraryDesc struct {
	Shaders []ShaderDesc
}

// ShaderGroupDesc references 1-based shader indices in the library;
// 0 means unused.
type ShaderGroupDesc struct {
	ShaderIndices [3]uint32
}

// RayTracingPipelineDesc describes a ray tracing pipeline.
type RayTracingPipelineDesc struct {
	PipelineLayout         PipelineLayout
	ShaderLibrary          *ShaderLibraryDesc
	ShaderGroups           []ShaderGroupDesc
	RecursionMaxDepth      uint32
	RayPayloadMaxSize      uint32
	RayHitAttributeMaxSize uint32
}

// DrawMeshTasksDesc is a mesh shader task grid.
type DrawMeshTasksDesc struct {
	X, Y, Z uint32
}
