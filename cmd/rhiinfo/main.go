// Command rhiinfo opens a device on a registered backend and prints what it
// reports: limits, function tables and format support. With -smoke it also
// records and submits a small copy workload.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"maps"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/gogpu/rhi"
	_ "github.com/gogpu/rhi/backend/null"
	_ "github.com/gogpu/rhi/backend/webgpu"
	"github.com/gogpu/rhi/device"
	"github.com/gogpu/rhi/validation"

	_ "github.com/gogpu/wgpu/hal/vulkan"
)

type report struct {
	Backend    string            `json:"backend"`
	Adapter    string            `json:"adapter"`
	API        string            `json:"api"`
	Version    string            `json:"version"`
	Validation bool              `json:"validation"`
	Interfaces []string          `json:"interfaces"`
	Limits     map[string]uint64 `json:"limits"`
	Formats    map[string]string `json:"formats,omitempty"`
	Smoke      *smokeResult      `json:"smoke,omitempty"`
}

type smokeResult struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
	Errors   int64  `json:"validationErrors"`
	Warnings int64  `json:"validationWarnings"`
}

func main() {
	var (
		backend  = flag.String("backend", "", "backend name (empty selects the first registered)")
		validate = flag.Bool("validation", true, "enable the validation layer")
		verbose  = flag.Bool("v", false, "log at debug level")
		asJSON   = flag.Bool("json", false, "print the report as JSON")
		formats  = flag.Bool("formats", false, "include format support")
		smoke    = flag.Bool("smoke", false, "record and submit a copy workload")
		list     = flag.Bool("list", false, "list registered backends and exit")
	)
	flag.Parse()

	if *list {
		for _, b := range rhi.Backends() {
			fmt.Println(b.Name())
		}
		return
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	rhi.SetLogger(logger)

	b, err := rhi.LookupBackend(*backend)
	if err != nil {
		log.Fatalf("rhiinfo: %v", err)
	}
	dev, err := device.Create(rhi.DeviceCreationDesc{
		Backend:          b.Name(),
		EnableValidation: *validate,
		Logger:           logger,
	})
	if err != nil {
		log.Fatalf("rhiinfo: %v", err)
	}
	defer dev.Destroy()

	r := describe(b.Name(), dev, *validate)
	if *formats {
		r.Formats = formatSupport(dev.Interfaces().Core)
	}
	if *smoke {
		r.Smoke = runSmoke(dev)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			log.Fatalf("rhiinfo: %v", err)
		}
		return
	}
	printReport(os.Stdout, r)
	if r.Smoke != nil && !r.Smoke.OK {
		os.Exit(1)
	}
}

func describe(backend string, dev rhi.Device, validated bool) *report {
	d := dev.Desc()
	r := &report{
		Backend:    backend,
		Adapter:    d.Adapter.Name,
		API:        d.GraphicsAPI.String(),
		Version:    fmt.Sprintf("%d.%d", d.Version.Major, d.Version.Minor),
		Validation: validated,
		Limits: map[string]uint64{
			"bufferMaxSize":            d.BufferMaxSize,
			"texture2DMaxDim":          uint64(d.Texture2DMaxDim),
			"texture3DMaxDim":          uint64(d.Texture3DMaxDim),
			"textureArrayLayerMaxNum":  uint64(d.TextureArrayLayerMaxNum),
			"colorAttachmentMaxNum":    uint64(d.ColorAttachmentMaxNum),
			"viewportMaxNum":           uint64(d.ViewportMaxNum),
			"descriptorSetMaxNum":      uint64(d.PipelineLayoutDescriptorSetMaxNum),
			"uploadRowAlignment":       uint64(d.UploadBufferTextureRowAlignment),
			"constantBufferAlignment":  uint64(d.ConstantBufferOffsetAlignment),
			"rayTracingTier":           uint64(d.RayTracingTier),
			"computeSharedMemoryBytes": uint64(d.ComputeShaderSharedMemoryMaxSize),
		},
	}
	ifaces := dev.Interfaces()
	for k := rhi.InterfaceCore; k <= rhi.InterfaceWrapper; k++ {
		if ifaces.Has(k) {
			r.Interfaces = append(r.Interfaces, k.String())
		}
	}
	return r
}

func formatSupport(core rhi.CoreInterface) map[string]string {
	names := []struct {
		bit  rhi.FormatSupportBits
		name string
	}{
		{rhi.FormatSupportTexture, "T"},
		{rhi.FormatSupportStorageTexture, "S"},
		{rhi.FormatSupportColorAttachment, "C"},
		{rhi.FormatSupportDepthStencilAttachment, "D"},
		{rhi.FormatSupportBlend, "B"},
		{rhi.FormatSupportBuffer, "b"},
		{rhi.FormatSupportVertexBuffer, "V"},
	}
	out := make(map[string]string)
	for f := rhi.Format(1); f < rhi.FormatMaxNum; f++ {
		bits := core.GetFormatSupport(f)
		if bits == rhi.FormatSupportUnsupported {
			continue
		}
		var s []byte
		for _, n := range names {
			if bits&n.bit != 0 {
				s = append(s, n.name...)
			} else {
				s = append(s, '-')
			}
		}
		out[f.String()] = string(s)
	}
	return out
}

// runSmoke uploads a buffer, copies it on the GPU and waits for the copy.
func runSmoke(dev rhi.Device) *smokeResult {
	res := &smokeResult{}
	if err := smokeCopy(dev); err != nil {
		res.Error = err.Error()
	} else {
		res.OK = true
	}
	if v, ok := dev.(*validation.Device); ok {
		res.Errors, res.Warnings = v.ErrorCount(), v.WarningCount()
		res.OK = res.OK && res.Errors == 0
	}
	return res
}

func smokeCopy(dev rhi.Device) error {
	ifaces := dev.Interfaces()
	if err := rhi.RequireInterfaces(dev, rhi.InterfaceCore, rhi.InterfaceHelper); err != nil {
		return err
	}
	core, helper := ifaces.Core, ifaces.Helper

	queue, err := core.GetCommandQueue(rhi.QueueTypeGraphics)
	if err != nil {
		return err
	}
	const size = 4096
	src, err := core.CreateBuffer(&rhi.BufferDesc{Size: size, Usage: rhi.BufferUsageShaderResource})
	if err != nil {
		return err
	}
	defer core.DestroyBuffer(src)
	dst, err := core.CreateBuffer(&rhi.BufferDesc{Size: size, Usage: rhi.BufferUsageShaderResource})
	if err != nil {
		return err
	}
	defer core.DestroyBuffer(dst)

	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i)
	}
	if err := helper.UploadData(queue, nil, []rhi.BufferUploadDesc{{Data: data, Buffer: src}}); err != nil {
		return err
	}

	alloc, err := core.CreateCommandAllocator(queue)
	if err != nil {
		return err
	}
	defer core.DestroyCommandAllocator(alloc)
	cmd, err := core.CreateCommandBuffer(alloc)
	if err != nil {
		return err
	}
	defer core.DestroyCommandBuffer(cmd)

	if err := core.BeginCommandBuffer(cmd, nil); err != nil {
		return err
	}
	core.CmdBeginAnnotation(cmd, "smoke copy", 0)
	core.CmdCopyBuffer(cmd, dst, 0, src, 0, rhi.WholeSize)
	core.CmdEndAnnotation(cmd)
	if err := core.EndCommandBuffer(cmd); err != nil {
		return err
	}

	fence, err := core.CreateFence(0)
	if err != nil {
		return err
	}
	defer core.DestroyFence(fence)
	err = core.QueueSubmit(queue, &rhi.QueueSubmitDesc{
		CommandBuffers: []rhi.CommandBuffer{cmd},
		SignalFences:   []rhi.FenceSubmitDesc{{Fence: fence, Value: 1, Stages: rhi.StageAll}},
	})
	if err != nil {
		return err
	}
	core.Wait(fence, 1)
	if got := core.GetFenceValue(fence); got < 1 {
		return fmt.Errorf("fence value %d after wait", got)
	}
	return nil
}

func printReport(w io.Writer, r *report) {
	fmt.Fprintf(w, "backend:    %s\n", r.Backend)
	fmt.Fprintf(w, "adapter:    %s\n", r.Adapter)
	fmt.Fprintf(w, "api:        %s %s\n", r.API, r.Version)
	fmt.Fprintf(w, "validation: %v\n", r.Validation)
	fmt.Fprintf(w, "interfaces: %v\n\n", r.Interfaces)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, k := range slices.Sorted(maps.Keys(r.Limits)) {
		fmt.Fprintf(tw, "%s\t%d\n", k, r.Limits[k])
	}
	tw.Flush()

	if len(r.Formats) != 0 {
		fmt.Fprintln(w, "\nformat support (T texture, S storage, C color, D depth, B blend, b buffer, V vertex):")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, k := range slices.Sorted(maps.Keys(r.Formats)) {
			fmt.Fprintf(tw, "%s\t%s\n", k, r.Formats[k])
		}
		tw.Flush()
	}
	if s := r.Smoke; s != nil {
		status := "ok"
		if !s.OK {
			status = "FAILED " + s.Error
		}
		fmt.Fprintf(w, "\nsmoke: %s (validation errors %d, warnings %d)\n", status, s.Errors, s.Warnings)
	}
}
