package webgpu

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rhi"
)

func TestBackendName(t *testing.T) {
	b, err := rhi.LookupBackend(BackendWebGPU)
	if err != nil {
		t.Fatalf("LookupBackend: %v", err)
	}
	if b.Name() != BackendWebGPU {
		t.Errorf("Name() = %q, want %q", b.Name(), BackendWebGPU)
	}
}

func TestCreateDeviceRejects(t *testing.T) {
	tests := []struct {
		name string
		desc rhi.DeviceCreationDesc
		want error
	}{
		{"options type", rhi.DeviceCreationDesc{Options: 42}, ErrBadOptions},
		{"nil config", rhi.DeviceCreationDesc{Options: (*Config)(nil)}, ErrBadOptions},
		{"empty config", rhi.DeviceCreationDesc{Options: Config{}}, ErrBadProvider},
		{"graphics API", rhi.DeviceCreationDesc{GraphicsAPI: rhi.GraphicsAPID3D12}, rhi.Unsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, err := Backend{}.CreateDevice(tt.desc)
			if dev != nil {
				t.Fatal("device created")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewRejectsMissingObjects(t *testing.T) {
	if _, err := New(nil, nil); !errors.Is(err, ErrBadProvider) {
		t.Errorf("New(nil, nil) err = %v, want ErrBadProvider", err)
	}
	if _, err := NewFromProvider(nil); !errors.Is(err, ErrBadProvider) {
		t.Errorf("NewFromProvider(nil) err = %v, want ErrBadProvider", err)
	}
}

func TestDescFromLimits(t *testing.T) {
	l := gputypes.DefaultLimits()
	desc := descFromLimits("test", l)
	if desc.GraphicsAPI != rhi.GraphicsAPIWebGPU {
		t.Errorf("GraphicsAPI = %v, want WebGPU", desc.GraphicsAPI)
	}
	if desc.Adapter.Name != "test" {
		t.Errorf("Adapter.Name = %q, want %q", desc.Adapter.Name, "test")
	}
	if desc.ViewportMaxNum != 1 {
		t.Errorf("ViewportMaxNum = %d, want 1", desc.ViewportMaxNum)
	}
	if desc.UploadBufferTextureRowAlignment != copyBytesPerRowAlignment {
		t.Errorf("row alignment = %d, want %d", desc.UploadBufferTextureRowAlignment, copyBytesPerRowAlignment)
	}
	if desc.BufferMaxSize != uint64(l.MaxBufferSize) {
		t.Errorf("BufferMaxSize = %d, want %d", desc.BufferMaxSize, l.MaxBufferSize)
	}
	if desc.RayTracingTier != 0 || desc.IsMeshShaderSupported {
		t.Error("ray tracing or mesh shaders reported")
	}
}

func TestClamp16(t *testing.T) {
	if got := clamp16(uint32(1 << 20)); got != 0xffff {
		t.Errorf("clamp16(1<<20) = %d", got)
	}
	if got := clamp16(uint64(8192)); got != 8192 {
		t.Errorf("clamp16(8192) = %d", got)
	}
}

func TestGetRejectsForeignObjects(t *testing.T) {
	d1, d2 := &Device{}, &Device{}
	f := &fence{}
	f.dev = d1
	if _, ok := get[*fence](d1, f); !ok {
		t.Error("own fence rejected")
	}
	if _, ok := get[*fence](d2, f); ok {
		t.Error("foreign fence accepted")
	}
	if _, ok := get[*buffer](d1, f); ok {
		t.Error("fence accepted as buffer")
	}
	if _, ok := get[*fence](d1, nil); ok {
		t.Error("nil accepted")
	}
}

func TestObjectLabel(t *testing.T) {
	d := &Device{label: "scene"}
	b := &buffer{}
	b.dev = d
	if got := b.label("buffer"); got != "scene buffer" {
		t.Errorf("label = %q, want %q", got, "scene buffer")
	}
	b.SetDebugName("vertices")
	if got := b.label("buffer"); got != "vertices" {
		t.Errorf("label = %q, want %q", got, "vertices")
	}
}

func TestUnsupportedWarnsOnce(t *testing.T) {
	var buf bytes.Buffer
	d := &Device{logger: slog.New(slog.NewTextHandler(&buf, nil))}
	d.unsupported("CmdSetDepthBounds")
	d.unsupported("CmdSetDepthBounds")
	d.unsupported("CmdSetShadingRate")
	if n := strings.Count(buf.String(), "unsupported feature ignored"); n != 2 {
		t.Errorf("got %d warnings, want 2:\n%s", n, buf.String())
	}
}

func TestFenceRaise(t *testing.T) {
	f := &fence{}
	f.complete(5)
	f.complete(3)
	if got := f.completed.Load(); got != 5 {
		t.Errorf("completed = %d, want 5", got)
	}
	raise(&f.signaled, 7)
	if got := f.signaled.Load(); got != 7 {
		t.Errorf("signaled = %d, want 7", got)
	}
}

func TestRegion(t *testing.T) {
	tex2D := &texture{desc: rhi.TextureDesc{Type: rhi.TextureType2D, Width: 256, Height: 128, Depth: 1, MipNum: 4, LayerNum: 6}}
	tex3D := &texture{desc: rhi.TextureDesc{Type: rhi.TextureType3D, Width: 64, Height: 64, Depth: 32, MipNum: 2, LayerNum: 1}}

	tests := []struct {
		name       string
		tex        *texture
		region     *rhi.TextureRegionDesc
		w, h, d, z uint32
	}{
		{"whole", tex2D, nil, 256, 128, 1, 0},
		{"mip", tex2D, &rhi.TextureRegionDesc{MipOffset: 2}, 64, 32, 1, 0},
		{"layer", tex2D, &rhi.TextureRegionDesc{LayerOffset: 3}, 256, 128, 1, 3},
		{"offset", tex2D, &rhi.TextureRegionDesc{X: 16, Y: 8}, 240, 120, 1, 0},
		{"explicit", tex2D, &rhi.TextureRegionDesc{Width: 10, Height: 20}, 10, 20, 1, 0},
		{"volume", tex3D, nil, 64, 64, 32, 0},
		{"volume mip", tex3D, &rhi.TextureRegionDesc{MipOffset: 1, Z: 4}, 32, 32, 12, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, size := region(tt.tex, tt.region)
			if size.Width != tt.w || size.Height != tt.h || size.DepthOrArrayLayers != tt.d {
				t.Errorf("size = %dx%dx%d, want %dx%dx%d",
					size.Width, size.Height, size.DepthOrArrayLayers, tt.w, tt.h, tt.d)
			}
			if base.Origin.Z != tt.z {
				t.Errorf("origin z = %d, want %d", base.Origin.Z, tt.z)
			}
		})
	}
}

func TestCoversTarget(t *testing.T) {
	view := &descriptor{kind: textureView, texture: &texture{desc: rhi.TextureDesc{Width: 100, Height: 50}}}
	target := &renderTarget{colors: []*descriptor{view}}
	tests := []struct {
		name string
		rect rhi.Rect
		want bool
	}{
		{"exact", rhi.Rect{Width: 100, Height: 50}, true},
		{"larger", rhi.Rect{X: -10, Y: -10, Width: 200, Height: 200}, true},
		{"partial", rhi.Rect{X: 10, Width: 50, Height: 50}, false},
		{"short", rhi.Rect{Width: 100, Height: 49}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := coversTarget(target, tt.rect); got != tt.want {
				t.Errorf("coversTarget(%+v) = %v, want %v", tt.rect, got, tt.want)
			}
		})
	}
}

func TestDataLayout(t *testing.T) {
	l := dataLayout(&rhi.TextureDataLayoutDesc{Offset: 512, RowPitch: 256, SlicePitch: 256 * 64}, 32)
	if l.Offset != 512 || l.BytesPerRow != 256 || l.RowsPerImage != 64 {
		t.Errorf("layout = %+v", l)
	}
	l = dataLayout(&rhi.TextureDataLayoutDesc{RowPitch: 256}, 32)
	if l.RowsPerImage != 32 {
		t.Errorf("RowsPerImage = %d, want 32", l.RowsPerImage)
	}
}
