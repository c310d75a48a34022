package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/backend/null"
	"github.com/gogpu/rhi/device"
)

func newDevice(t *testing.T, validate bool) rhi.Device {
	t.Helper()
	dev, err := device.Create(rhi.DeviceCreationDesc{
		Backend:          null.BackendNull,
		EnableValidation: validate,
		Logger:           rhi.NopLogger(),
		Options:          []null.Option{null.WithLogger(rhi.NopLogger())},
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(dev.Destroy)
	return dev
}

func TestSmoke(t *testing.T) {
	for _, validate := range []bool{false, true} {
		dev := newDevice(t, validate)
		res := runSmoke(dev)
		if !res.OK {
			t.Errorf("validation=%v: smoke failed: %s (errors %d)", validate, res.Error, res.Errors)
		}
	}
}

func TestReport(t *testing.T) {
	dev := newDevice(t, true)
	r := describe(null.BackendNull, dev, true)
	r.Formats = formatSupport(dev.Interfaces().Core)
	if len(r.Formats) == 0 {
		t.Error("no supported formats")
	}
	if r.Interfaces[0] != "Core" {
		t.Errorf("interfaces = %v", r.Interfaces)
	}

	var buf bytes.Buffer
	printReport(&buf, r)
	for _, want := range []string{"backend:    null", "bufferMaxSize", "RGBA8_UNORM"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("report lacks %q:\n%s", want, buf.String())
		}
	}
}
