package rhi

import "testing"

func TestFormatPropsTableComplete(t *testing.T) {
	for f := FormatUnknown + 1; f < FormatMaxNum; f++ {
		p := f.Props()
		if p.Name == "" {
			t.Errorf("format %d has no name", f)
		}
		if p.Stride == 0 {
			t.Errorf("%s: stride = 0", p.Name)
		}
		if p.BlockWidth == 0 {
			t.Errorf("%s: block width = 0", p.Name)
		}
	}
}

func TestFormatPlanes(t *testing.T) {
	tests := []struct {
		f    Format
		want PlaneBits
	}{
		{FormatRGBA8Unorm, PlaneColor},
		{FormatD16Unorm, PlaneDepth},
		{FormatD24UnormS8Uint, PlaneDepth | PlaneStencil},
		{FormatD32SfloatS8UintX24, PlaneDepth | PlaneStencil},
	}
	for _, tt := range tests {
		if got := tt.f.Planes(); got != tt.want {
			t.Errorf("%s.Planes() = %b, want %b", tt.f, got, tt.want)
		}
	}
}

func TestFormatIsValid(t *testing.T) {
	if FormatUnknown.IsValid() {
		t.Error("FormatUnknown.IsValid() = true")
	}
	if FormatMaxNum.IsValid() {
		t.Error("FormatMaxNum.IsValid() = true")
	}
	if !FormatBC7RGBAUnorm.IsValid() {
		t.Error("FormatBC7RGBAUnorm.IsValid() = false")
	}
	if got := Format(250).String(); got != "UNKNOWN" {
		t.Errorf("Format(250).String() = %q, want UNKNOWN", got)
	}
}

func TestDescriptorTypeString(t *testing.T) {
	if got := DescriptorTypeStorageStructuredBuffer.String(); got != "STORAGE_STRUCTURED_BUFFER" {
		t.Errorf("String() = %q", got)
	}
	if got := DescriptorTypeMaxNum.String(); got != "UNKNOWN" {
		t.Errorf("String() = %q", got)
	}
}

func TestPipelineWrites(t *testing.T) {
	desc := GraphicsPipelineDesc{}
	desc.OutputMerger.DepthStencilFormat = FormatD24UnormS8Uint
	if desc.WritesDepth() || desc.WritesStencil() {
		t.Error("pipeline without depth write or stencil mask should not write")
	}
	desc.OutputMerger.Depth.Write = true
	desc.OutputMerger.Stencil.Back.WriteMask = 0xFF
	if !desc.WritesDepth() {
		t.Error("WritesDepth() = false, want true")
	}
	if !desc.WritesStencil() {
		t.Error("WritesStencil() = false, want true")
	}
	desc.OutputMerger.DepthStencilFormat = FormatD32Sfloat
	if desc.WritesStencil() {
		t.Error("WritesStencil() with a depth-only format = true")
	}
}
