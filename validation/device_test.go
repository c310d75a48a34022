package validation_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/backend/null"
	"github.com/gogpu/rhi/validation"
)

// harness is a validating device over a null backend with captured
// diagnostics.
type harness struct {
	dev   *validation.Device
	inner *null.Device
	core  rhi.CoreInterface
	queue rhi.CommandQueue
	log   *bytes.Buffer

	errs, warns int64
}

func newHarness(t *testing.T, opts ...null.Option) *harness {
	t.Helper()
	inner := null.New(append([]null.Option{null.WithLogger(rhi.NopLogger())}, opts...)...)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	dev, err := validation.Wrap(inner, validation.WithLogger(logger), validation.WithName("test"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(dev.Destroy)

	core := dev.Interfaces().Core
	q, err := core.GetCommandQueue(rhi.QueueTypeGraphics)
	if err != nil {
		t.Fatal(err)
	}
	return &harness{dev: dev, inner: inner, core: core, queue: q, log: &buf}
}

// expect checks the diagnostics reported since the previous call. msg, if
// not empty, must appear in the log.
func (h *harness) expect(t *testing.T, errs, warns int64, msg string) {
	t.Helper()
	gotErrs := h.dev.ErrorCount() - h.errs
	gotWarns := h.dev.WarningCount() - h.warns
	h.errs, h.warns = h.dev.ErrorCount(), h.dev.WarningCount()
	if gotErrs != errs || gotWarns != warns {
		t.Errorf("reported %d errors and %d warnings, want %d and %d\nlog:\n%s", gotErrs, gotWarns, errs, warns, h.log)
	}
	if msg != "" && !strings.Contains(h.log.String(), msg) {
		t.Errorf("log does not mention %q\nlog:\n%s", msg, h.log)
	}
	h.log.Reset()
}

// clean checks that nothing was reported since the previous check.
func (h *harness) clean(t *testing.T) {
	t.Helper()
	h.expect(t, 0, 0, "")
}

func (h *harness) commandBuffer(t *testing.T) rhi.CommandBuffer {
	t.Helper()
	alloc, err := h.core.CreateCommandAllocator(h.queue)
	if err != nil {
		t.Fatal(err)
	}
	cmd, err := h.core.CreateCommandBuffer(alloc)
	if err != nil {
		t.Fatal(err)
	}
	return cmd
}

// recording returns a command buffer that has been begun.
func (h *harness) recording(t *testing.T) rhi.CommandBuffer {
	t.Helper()
	cmd := h.commandBuffer(t)
	if err := h.core.BeginCommandBuffer(cmd, nil); err != nil {
		t.Fatal(err)
	}
	return cmd
}

func (h *harness) buffer(t *testing.T, desc rhi.BufferDesc) rhi.Buffer {
	t.Helper()
	b, err := h.core.CreateBuffer(&desc)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func (h *harness) texture(t *testing.T, format rhi.Format, usage rhi.TextureUsageBits) rhi.Texture {
	t.Helper()
	tex, err := h.core.CreateTexture(&rhi.TextureDesc{
		Type:      rhi.TextureType2D,
		Usage:     usage,
		Format:    format,
		Width:     16,
		Height:    16,
		Depth:     1,
		MipNum:    2,
		LayerNum:  1,
		SampleNum: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	return tex
}

func (h *harness) view(t *testing.T, tex rhi.Texture, viewType rhi.TextureViewType) rhi.Descriptor {
	t.Helper()
	v, err := h.core.CreateTextureView(&rhi.TextureViewDesc{
		Texture:  tex,
		ViewType: viewType,
		Format:   tex.TextureDesc().Format,
	})
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func (h *harness) layout(t *testing.T, desc rhi.PipelineLayoutDesc) rhi.PipelineLayout {
	t.Helper()
	pl, err := h.core.CreatePipelineLayout(&desc)
	if err != nil {
		t.Fatal(err)
	}
	return pl
}

func TestWrapRequiresCore(t *testing.T) {
	if _, err := validation.Wrap(nil); !errors.Is(err, validation.ErrInvalidArgument) {
		t.Errorf("Wrap(nil) error = %v, want ErrInvalidArgument", err)
	}
}

func TestWrapMirrorsTables(t *testing.T) {
	tests := []struct {
		name string
		opts []null.Option
	}{
		{"default", nil},
		{"all interfaces", []null.Option{null.WithAllInterfaces()}},
		{"ray tracing", []null.Option{null.WithRayTracing(true)}},
	}
	kinds := []rhi.InterfaceKind{
		rhi.InterfaceCore, rhi.InterfaceHelper, rhi.InterfaceRayTracing, rhi.InterfaceMeshShader,
		rhi.InterfaceStreamer, rhi.InterfaceSwapChain, rhi.InterfaceWrapper,
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.opts...)
			for _, k := range kinds {
				if got, want := h.dev.Interfaces().Has(k), h.inner.Interfaces().Has(k); got != want {
					t.Errorf("%s present = %v, inner has it = %v", k, got, want)
				}
			}
			if h.dev.Desc() != h.inner.Desc() {
				t.Error("Desc() differs from the inner device's")
			}
		})
	}
}

func TestResultsCarryCodes(t *testing.T) {
	tests := []struct {
		err  error
		want rhi.Result
	}{
		{validation.ErrInvalidArgument, rhi.InvalidArgument},
		{validation.ErrInvalidState, rhi.Failure},
		{validation.ErrUnsupported, rhi.Unsupported},
		{validation.ErrForeignObject, rhi.InvalidArgument},
	}
	for _, tt := range tests {
		if got := rhi.ResultOf(tt.err); got != tt.want {
			t.Errorf("ResultOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestDiagnosticAttributes(t *testing.T) {
	h := newHarness(t)
	_, err := h.core.CreateBuffer(&rhi.BufferDesc{})
	if !errors.Is(err, validation.ErrInvalidArgument) {
		t.Fatalf("error = %v", err)
	}
	line := h.log.String()
	for _, want := range []string{"level=ERROR", "validation: 'Size' is 0", "op=CreateBuffer", "device=test"} {
		if !strings.Contains(line, want) {
			t.Errorf("log %q does not contain %q", line, want)
		}
	}
	if !strings.Contains(err.Error(), "CreateBuffer: 'Size' is 0") {
		t.Errorf("error text = %q", err)
	}
	h.expect(t, 1, 0, "")
}

func TestBreakOnError(t *testing.T) {
	inner := null.New(null.WithLogger(rhi.NopLogger()))
	var ops []string
	dev, err := validation.Wrap(inner,
		validation.WithLogger(rhi.NopLogger()),
		validation.WithBreakOnError(func(op string) { ops = append(ops, op) }),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Destroy()

	core := dev.Interfaces().Core
	core.CreateBuffer(&rhi.BufferDesc{})
	core.CreateQueryPool(&rhi.QueryPoolDesc{})
	if want := []string{"CreateBuffer", "CreateQueryPool"}; strings.Join(ops, ",") != strings.Join(want, ",") {
		t.Errorf("hook saw %v, want %v", ops, want)
	}
	if dev.ErrorCount() != 2 {
		t.Errorf("ErrorCount() = %d, want 2", dev.ErrorCount())
	}
}

func TestForeignHandles(t *testing.T) {
	a := newHarness(t)
	b := newHarness(t)
	foreign := b.buffer(t, rhi.BufferDesc{Size: 64, Location: rhi.MemoryLocationHostUpload})
	raw := b.inner.Interfaces().Core

	_, err := a.core.MapBuffer(foreign, 0, rhi.WholeSize)
	if !errors.Is(err, validation.ErrForeignObject) {
		t.Errorf("MapBuffer(foreign) error = %v, want ErrForeignObject", err)
	}
	a.expect(t, 1, 0, "'buffer' was not created by this device")

	// An unwrapped backend handle is foreign too.
	rawBuf, err := raw.CreateBuffer(&rhi.BufferDesc{Size: 64})
	if err != nil {
		t.Fatal(err)
	}
	a.core.DestroyBuffer(rawBuf)
	a.expect(t, 1, 0, "was not created by this device")
	if n := a.inner.Calls("DestroyBuffer"); n != 0 {
		t.Errorf("foreign destroy forwarded %d times", n)
	}
}

func TestDestroy(t *testing.T) {
	h := newHarness(t)
	buf := h.buffer(t, rhi.BufferDesc{Size: 16})
	h.clean(t)

	h.core.DestroyBuffer(buf)
	h.clean(t)
	h.core.DestroyBuffer(buf)
	h.expect(t, 1, 0, "'buffer' is already destroyed")
	if n := h.inner.Calls("DestroyBuffer"); n != 1 {
		t.Errorf("DestroyBuffer forwarded %d times, want 1", n)
	}

	h.core.DestroyBuffer(nil)
	h.core.DestroyTexture(nil)
	h.core.DestroyPipeline(nil)
	h.clean(t)
}

func TestDebugNamesForward(t *testing.T) {
	h := newHarness(t)
	buf := h.buffer(t, rhi.BufferDesc{Size: 16})
	buf.SetDebugName("vertices")
	type named interface{ DebugName() string }
	if got := buf.(named).DebugName(); got != "vertices" {
		t.Errorf("DebugName() = %q", got)
	}
	if buf.NativeObject() == 0 {
		t.Error("NativeObject() = 0, want the backend id")
	}
}

func TestGetCommandQueueIsStable(t *testing.T) {
	h := newHarness(t)
	q, err := h.core.GetCommandQueue(rhi.QueueTypeGraphics)
	if err != nil {
		t.Fatal(err)
	}
	if q != h.queue {
		t.Error("GetCommandQueue returned a new wrapper for the same queue")
	}
	if _, err := h.core.GetCommandQueue(rhi.QueueTypeMaxNum); !errors.Is(err, validation.ErrInvalidArgument) {
		t.Errorf("invalid queue type: error = %v", err)
	}
}
