package streamer_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/backend/null"
	"github.com/gogpu/rhi/streamer"
)

type fixture struct {
	dev  *null.Device
	core rhi.CoreInterface
	str  *streamer.Interface
	q    rhi.CommandQueue
	cmd  rhi.CommandBuffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dev := null.New(null.WithLogger(rhi.NopLogger()))
	t.Cleanup(dev.Destroy)
	core := dev.Interfaces().Core
	q, err := core.GetCommandQueue(rhi.QueueTypeGraphics)
	if err != nil {
		t.Fatal(err)
	}
	alloc, err := core.CreateCommandAllocator(q)
	if err != nil {
		t.Fatal(err)
	}
	cmd, err := core.CreateCommandBuffer(alloc)
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{dev: dev, core: core, str: streamer.New(core), q: q, cmd: cmd}
}

func (f *fixture) create(t *testing.T, desc rhi.StreamerDesc) rhi.Streamer {
	t.Helper()
	s, err := f.str.CreateStreamer(&desc)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.str.DestroyStreamer(s) })
	return s
}

func (f *fixture) read(t *testing.T, b rhi.Buffer) []byte {
	t.Helper()
	data, err := f.core.MapBuffer(b, 0, rhi.WholeSize)
	if err != nil {
		t.Fatal(err)
	}
	defer f.core.UnmapBuffer(b)
	return append([]byte(nil), data...)
}

func hostDesc(frames uint32) rhi.StreamerDesc {
	return rhi.StreamerDesc{
		RingBufferSize:         256,
		DynamicBufferLocation:  rhi.MemoryLocationHostUpload,
		ConstantBufferSize:     1024,
		ConstantBufferLocation: rhi.MemoryLocationHostUpload,
		QueuedFrameNum:         frames,
	}
}

func TestCreateStreamerRejectsZeroFrames(t *testing.T) {
	f := newFixture(t)
	_, err := f.str.CreateStreamer(&rhi.StreamerDesc{DynamicBufferLocation: rhi.MemoryLocationHostUpload})
	if rhi.ResultOf(err) != rhi.InvalidArgument {
		t.Errorf("error = %v, want INVALID_ARGUMENT", err)
	}
}

func TestStreamConstantData(t *testing.T) {
	f := newFixture(t)
	s := f.create(t, hostDesc(2))

	var offsets []uint32
	for range 5 {
		off, err := f.str.StreamConstantData(s, make([]byte, 200))
		if err != nil {
			t.Fatal(err)
		}
		offsets = append(offsets, off)
	}
	// 256 byte alignment in a 1024 byte ring: the fifth write wraps.
	want := []uint32{0, 256, 512, 768, 0}
	for i := range want {
		if offsets[i] != want[i] {
			t.Errorf("offsets = %v, want %v", offsets, want)
			break
		}
	}

	cb := f.str.GetStreamerConstantBuffer(s)
	if cb == nil || cb.BufferDesc().Size != 1024 {
		t.Fatalf("constant buffer = %v", cb)
	}
	if _, err := f.str.StreamConstantData(s, make([]byte, 2048)); rhi.ResultOf(err) != rhi.InvalidArgument {
		t.Errorf("oversized constants: error = %v", err)
	}
}

func TestStreamConstantDataWithoutRing(t *testing.T) {
	f := newFixture(t)
	desc := hostDesc(1)
	desc.ConstantBufferSize = 0
	s := f.create(t, desc)
	if f.str.GetStreamerConstantBuffer(s) != nil {
		t.Error("GetStreamerConstantBuffer() != nil without a constant ring")
	}
	if _, err := f.str.StreamConstantData(s, []byte{1}); !errors.Is(err, streamer.ErrNoConstantBuffer) {
		t.Errorf("error = %v, want ErrNoConstantBuffer", err)
	}
}

func TestStreamBufferDataCopiesOnSubmit(t *testing.T) {
	f := newFixture(t)
	s := f.create(t, hostDesc(2))
	dst, err := f.core.CreateBuffer(&rhi.BufferDesc{Size: 8, Location: rhi.MemoryLocationHostReadback})
	if err != nil {
		t.Fatal(err)
	}

	staging, offset, err := f.str.StreamBufferData(s, &rhi.StreamBufferDataDesc{
		Data:      []byte("abcd"),
		DstBuffer: dst,
		DstOffset: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := f.read(t, staging)[offset : offset+4]; string(got) != "abcd" {
		t.Errorf("staging holds %q, want %q", got, "abcd")
	}
	if n := s.(*streamer.Streamer).Pending(); n != 1 {
		t.Fatalf("Pending() = %d, want 1", n)
	}

	if err := f.core.BeginCommandBuffer(f.cmd, nil); err != nil {
		t.Fatal(err)
	}
	f.str.CmdCopyStreamedData(f.cmd, s)
	if err := f.core.EndCommandBuffer(f.cmd); err != nil {
		t.Fatal(err)
	}
	if n := s.(*streamer.Streamer).Pending(); n != 0 {
		t.Errorf("Pending() after record = %d, want 0", n)
	}
	if err := f.core.QueueSubmit(f.q, &rhi.QueueSubmitDesc{CommandBuffers: []rhi.CommandBuffer{f.cmd}}); err != nil {
		t.Fatal(err)
	}
	if got, want := f.read(t, dst), []byte("\x00\x00abcd\x00\x00"); !bytes.Equal(got, want) {
		t.Errorf("dst = %q, want %q", got, want)
	}
}

func TestStagingGrowsAndRecycles(t *testing.T) {
	f := newFixture(t)
	s := f.create(t, hostDesc(2))
	f.dev.ResetCalls()

	first, _, err := f.str.StreamBufferData(s, &rhi.StreamBufferDataDesc{Data: make([]byte, 200)})
	if err != nil {
		t.Fatal(err)
	}
	grown, offset, err := f.str.StreamBufferData(s, &rhi.StreamBufferDataDesc{Data: make([]byte, 200)})
	if err != nil {
		t.Fatal(err)
	}
	if grown == first || offset != 0 {
		t.Fatalf("second write should land at the start of a new buffer, got offset %d", offset)
	}
	if got := grown.BufferDesc().Size; got != 512 {
		t.Errorf("grown size = %d, want 512", got)
	}
	if n := f.dev.Calls("DestroyBuffer"); n != 0 {
		t.Fatalf("old staging buffer destroyed while its frame is in flight")
	}

	// Frame 1, then back to frame 0: the retired buffer goes away.
	f.str.EndStreamerFrame(s)
	f.str.EndStreamerFrame(s)
	if n := f.dev.Calls("DestroyBuffer"); n != 1 {
		t.Errorf("DestroyBuffer calls = %d, want 1", n)
	}

	// The slot was rewound, so the next write reuses the grown buffer.
	again, offset, err := f.str.StreamBufferData(s, &rhi.StreamBufferDataDesc{Data: make([]byte, 16)})
	if err != nil {
		t.Fatal(err)
	}
	if again != grown || offset != 0 {
		t.Errorf("rewound slot: got offset %d in a different buffer", offset)
	}
}

func TestStreamTextureDataAlignsPlacement(t *testing.T) {
	f := newFixture(t)
	desc := hostDesc(1)
	desc.RingBufferSize = 4096
	s := f.create(t, desc)
	tex, err := f.core.CreateTexture(&rhi.TextureDesc{
		Type: rhi.TextureType2D, Format: rhi.FormatRGBA8Unorm,
		Width: 4, Height: 4, Depth: 1, MipNum: 1, LayerNum: 1, SampleNum: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := f.str.StreamBufferData(s, &rhi.StreamBufferDataDesc{Data: make([]byte, 3)}); err != nil {
		t.Fatal(err)
	}
	_, offset, err := f.str.StreamTextureData(s, &rhi.StreamTextureDataDesc{
		Data:       make([]byte, 64),
		DataLayout: rhi.TextureDataLayoutDesc{RowPitch: 16, SlicePitch: 64},
		DstTexture: tex,
	})
	if err != nil {
		t.Fatal(err)
	}
	align := uint64(f.core.GetDeviceDesc().UploadBufferTextureSliceAlignment)
	if offset%align != 0 || offset == 0 {
		t.Errorf("texture data placed at %d, want a non-zero multiple of %d", offset, align)
	}

	if err := f.core.BeginCommandBuffer(f.cmd, nil); err != nil {
		t.Fatal(err)
	}
	f.dev.ResetCalls()
	f.str.CmdCopyStreamedData(f.cmd, s)
	if n := f.dev.Calls("CmdUploadBufferToTexture"); n != 1 {
		t.Errorf("CmdUploadBufferToTexture calls = %d, want 1", n)
	}
	if n := f.dev.Calls("CmdCopyBuffer"); n != 0 {
		t.Errorf("CmdCopyBuffer calls = %d, want 0 for data without destination", n)
	}
}

func TestForeignStreamer(t *testing.T) {
	f := newFixture(t)
	other := streamer.New(f.core)
	s := f.create(t, hostDesc(1))
	if _, err := other.StreamConstantData(s, []byte{1}); !errors.Is(err, streamer.ErrForeignStreamer) {
		t.Errorf("error = %v, want ErrForeignStreamer", err)
	}
}
