package rhi

// Format is a texel or vertex attribute format.
type Format uint8

// Formats.
const (
	FormatUnknown Format = iota

	FormatR8Unorm
	FormatR8Snorm
	FormatR8Uint
	FormatR8Sint

	FormatRG8Unorm
	FormatRG8Snorm
	FormatRG8Uint
	FormatRG8Sint

	FormatBGRA8Unorm
	FormatBGRA8Srgb

	FormatRGBA8Unorm
	FormatRGBA8Srgb
	FormatRGBA8Snorm
	FormatRGBA8Uint
	FormatRGBA8Sint

	FormatR16Unorm
	FormatR16Uint
	FormatR16Sint
	FormatR16Sfloat

	FormatRG16Unorm
	FormatRG16Sfloat

	FormatRGBA16Unorm
	FormatRGBA16Sfloat

	FormatR32Uint
	FormatR32Sint
	FormatR32Sfloat

	FormatRG32Uint
	FormatRG32Sfloat

	FormatRGB32Sfloat

	FormatRGBA32Uint
	FormatRGBA32Sfloat

	FormatR10G10B10A2Unorm
	FormatR11G11B10Ufloat

	FormatBC1RGBAUnorm
	FormatBC3RGBAUnorm
	FormatBC4RUnorm
	FormatBC5RGUnorm
	FormatBC7RGBAUnorm

	FormatD16Unorm
	FormatD24UnormS8Uint
	FormatD32Sfloat
	FormatD32SfloatS8UintX24

	FormatMaxNum
)

// FormatProps describes the memory layout and traits of a format.
type FormatProps struct {
	Name         string
	Stride       uint8 // bytes per texel, or per block for compressed formats
	BlockWidth   uint8
	IsDepth      bool
	IsStencil    bool
	IsCompressed bool
	IsSrgb       bool
	IsInteger    bool
	IsFloat      bool
}

var formatProps = [FormatMaxNum]FormatProps{
	FormatUnknown: {Name: "UNKNOWN", BlockWidth: 1},

	FormatR8Unorm: {Name: "R8_UNORM", Stride: 1, BlockWidth: 1},
	FormatR8Snorm: {Name: "R8_SNORM", Stride: 1, BlockWidth: 1},
	FormatR8Uint:  {Name: "R8_UINT", Stride: 1, BlockWidth: 1, IsInteger: true},
	FormatR8Sint:  {Name: "R8_SINT", Stride: 1, BlockWidth: 1, IsInteger: true},

	FormatRG8Unorm: {Name: "RG8_UNORM", Stride: 2, BlockWidth: 1},
	FormatRG8Snorm: {Name: "RG8_SNORM", Stride: 2, BlockWidth: 1},
	FormatRG8Uint:  {Name: "RG8_UINT", Stride: 2, BlockWidth: 1, IsInteger: true},
	FormatRG8Sint:  {Name: "RG8_SINT", Stride: 2, BlockWidth: 1, IsInteger: true},

	FormatBGRA8Unorm: {Name: "BGRA8_UNORM", Stride: 4, BlockWidth: 1},
	FormatBGRA8Srgb:  {Name: "BGRA8_SRGB", Stride: 4, BlockWidth: 1, IsSrgb: true},

	FormatRGBA8Unorm: {Name: "RGBA8_UNORM", Stride: 4, BlockWidth: 1},
	FormatRGBA8Srgb:  {Name: "RGBA8_SRGB", Stride: 4, BlockWidth: 1, IsSrgb: true},
	FormatRGBA8Snorm: {Name: "RGBA8_SNORM", Stride: 4, BlockWidth: 1},
	FormatRGBA8Uint:  {Name: "RGBA8_UINT", Stride: 4, BlockWidth: 1, IsInteger: true},
	FormatRGBA8Sint:  {Name: "RGBA8_SINT", Stride: 4, BlockWidth: 1, IsInteger: true},

	FormatR16Unorm:  {Name: "R16_UNORM", Stride: 2, BlockWidth: 1},
	FormatR16Uint:   {Name: "R16_UINT", Stride: 2, BlockWidth: 1, IsInteger: true},
	FormatR16Sint:   {Name: "R16_SINT", Stride: 2, BlockWidth: 1, IsInteger: true},
	FormatR16Sfloat: {Name: "R16_SFLOAT", Stride: 2, BlockWidth: 1, IsFloat: true},

	FormatRG16Unorm:  {Name: "RG16_UNORM", Stride: 4, BlockWidth: 1},
	FormatRG16Sfloat: {Name: "RG16_SFLOAT", Stride: 4, BlockWidth: 1, IsFloat: true},

	FormatRGBA16Unorm:  {Name: "RGBA16_UNORM", Stride: 8, BlockWidth: 1},
	FormatRGBA16Sfloat: {Name: "RGBA16_SFLOAT", Stride: 8, BlockWidth: 1, IsFloat: true},

	FormatR32Uint:   {Name: "R32_UINT", Stride: 4, BlockWidth: 1, IsInteger: true},
	FormatR32Sint:   {Name: "R32_SINT", Stride: 4, BlockWidth: 1, IsInteger: true},
	FormatR32Sfloat: {Name: "R32_SFLOAT", Stride: 4, BlockWidth: 1, IsFloat: true},

	FormatRG32Uint:   {Name: "RG32_UINT", Stride: 8, BlockWidth: 1, IsInteger: true},
	FormatRG32Sfloat: {Name: "RG32_SFLOAT", Stride: 8, BlockWidth: 1, IsFloat: true},

	FormatRGB32Sfloat: {Name: "RGB32_SFLOAT", Stride: 12, BlockWidth: 1, IsFloat: true},

	FormatRGBA32Uint:   {Name: "RGBA32_UINT", Stride: 16, BlockWidth: 1, IsInteger: true},
	FormatRGBA32Sfloat: {Name: "RGBA32_SFLOAT", Stride: 16, BlockWidth: 1, IsFloat: true},

	FormatR10G10B10A2Unorm: {Name: "R10_G10_B10_A2_UNORM", Stride: 4, BlockWidth: 1},
	FormatR11G11B10Ufloat:  {Name: "R11_G11_B10_UFLOAT", Stride: 4, BlockWidth: 1, IsFloat: true},

	FormatBC1RGBAUnorm: {Name: "BC1_RGBA_UNORM", Stride: 8, BlockWidth: 4, IsCompressed: true},
	FormatBC3RGBAUnorm: {Name: "BC3_RGBA_UNORM", Stride: 16, BlockWidth: 4, IsCompressed: true},
	FormatBC4RUnorm:    {Name: "BC4_R_UNORM", Stride: 8, BlockWidth: 4, IsCompressed: true},
	FormatBC5RGUnorm:   {Name: "BC5_RG_UNORM", Stride: 16, BlockWidth: 4, IsCompressed: true},
	FormatBC7RGBAUnorm: {Name: "BC7_RGBA_UNORM", Stride: 16, BlockWidth: 4, IsCompressed: true},

	FormatD16Unorm:           {Name: "D16_UNORM", Stride: 2, BlockWidth: 1, IsDepth: true},
	FormatD24UnormS8Uint:     {Name: "D24_UNORM_S8_UINT", Stride: 4, BlockWidth: 1, IsDepth: true, IsStencil: true},
	FormatD32Sfloat:          {Name: "D32_SFLOAT", Stride: 4, BlockWidth: 1, IsDepth: true, IsFloat: true},
	FormatD32SfloatS8UintX24: {Name: "D32_SFLOAT_S8_UINT_X24", Stride: 8, BlockWidth: 1, IsDepth: true, IsStencil: true, IsFloat: true},
}

// Props returns the properties of the format. Unknown values map to the
// properties of FormatUnknown.
func (f Format) Props() FormatProps {
	if f < FormatMaxNum {
		return formatProps[f]
	}
	return formatProps[FormatUnknown]
}

// String returns the canonical name of the format.
func (f Format) String() string { return f.Props().Name }

// IsValid reports whether f is a known, concrete format.
func (f Format) IsValid() bool { return f > FormatUnknown && f < FormatMaxNum }

// IsDepthStencil reports whether f has a depth or stencil aspect.
func (f Format) IsDepthStencil() bool {
	p := f.Props()
	return p.IsDepth || p.IsStencil
}

// Planes returns the aspects present in the format.
func (f Format) Planes() PlaneBits {
	p := f.Props()
	if !p.IsDepth && !p.IsStencil {
		return PlaneColor
	}
	var planes PlaneBits
	if p.IsDepth {
		planes |= PlaneDepth
	}
	if p.IsStencil {
		planes |= PlaneStencil
	}
	return planes
}
