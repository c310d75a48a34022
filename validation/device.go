// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package validation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/internal/scratch"
)

// Device is a validating rhi.Device.
type Device struct {
	inner  rhi.Device
	desc   *rhi.DeviceDesc
	ifaces rhi.Interfaces

	// Inner tables, resolved once at Wrap.
	core       rhi.CoreInterface
	helper     rhi.HelperInterface
	rayTracing rhi.RayTracingInterface
	meshShader rhi.MeshShaderInterface
	streamer   rhi.StreamerInterface
	swapChain  rhi.SwapChainInterface
	wrapper    rhi.WrapperInterface

	logger       *slog.Logger
	name         string
	breakOnError func(op string)

	errorCount   atomic.Int64
	warningCount atomic.Int64

	mu     sync.Mutex
	queues map[rhi.CommandQueue]*commandQueue

	// Scratch for device-level calls, which may run concurrently.
	descriptorScratch scratch.Pool[rhi.Descriptor]
	updateScratch     scratch.Pool[rhi.DescriptorRangeUpdateDesc]
	cmdScratch        scratch.Pool[rhi.CommandBuffer]
	fenceScratch      scratch.Pool[rhi.FenceSubmitDesc]
	textureScratch    scratch.Pool[rhi.TextureUploadDesc]
	bufferScratch     scratch.Pool[rhi.BufferUploadDesc]
}

var _ rhi.Device = (*Device)(nil)

// Wrap returns a validating device in front of dev. The inner device must
// provide the Core table; every other table is wrapped only if dev provides
// it.
//
// The returned device owns dev: Destroy destroys both.
func Wrap(dev rhi.Device, opts ...Option) (*Device, error) {
	if dev == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "Wrap: device is nil")
	}

	o := options{logger: rhi.Logger()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = rhi.NopLogger()
	}

	inner := dev.Interfaces()
	if inner.Core == nil {
		return nil, errors.Wrap(ErrUnsupported, "Wrap: device has no Core interface")
	}

	d := &Device{
		inner:        dev,
		desc:         dev.Desc(),
		core:         inner.Core,
		helper:       inner.Helper,
		rayTracing:   inner.RayTracing,
		meshShader:   inner.MeshShader,
		streamer:     inner.Streamer,
		swapChain:    inner.SwapChain,
		wrapper:      inner.Wrapper,
		logger:       o.logger,
		name:         o.name,
		breakOnError: o.breakOnError,
		queues:       make(map[rhi.CommandQueue]*commandQueue),
	}
	if d.name == "" {
		d.name = d.desc.Adapter.Name
	}

	d.ifaces = rhi.Interfaces{
		Version: inner.Version,
		Core:    &coreVal{d},
	}
	if d.helper != nil {
		d.ifaces.Helper = &helperVal{d}
	}
	if d.rayTracing != nil {
		d.ifaces.RayTracing = &rayTracingVal{d}
	}
	if d.meshShader != nil {
		d.ifaces.MeshShader = &meshShaderVal{d}
	}
	if d.streamer != nil {
		d.ifaces.Streamer = &streamerVal{d}
	}
	if d.swapChain != nil {
		d.ifaces.SwapChain = &swapChainVal{d}
	}
	if d.wrapper != nil {
		d.ifaces.Wrapper = &wrapperVal{d}
	}

	d.logger.Debug("validation: device wrapped",
		"device", d.name,
		"api", d.desc.GraphicsAPI.String())
	return d, nil
}

// Desc returns the inner device's description.
func (d *Device) Desc() *rhi.DeviceDesc { return d.desc }

// Interfaces returns the validating tables.
func (d *Device) Interfaces() rhi.Interfaces { return d.ifaces }

// Destroy destroys the inner device.
func (d *Device) Destroy() { d.inner.Destroy() }

// Inner returns the wrapped device.
func (d *Device) Inner() rhi.Device { return d.inner }

// ErrorCount returns the number of errors reported so far.
func (d *Device) ErrorCount() int64 { return d.errorCount.Load() }

// WarningCount returns the number of warnings reported so far.
func (d *Device) WarningCount() int64 { return d.warningCount.Load() }

// report logs a diagnostic for op.
func (d *Device) report(level slog.Level, op, msg string, attrs []any) {
	if level >= slog.LevelError {
		d.errorCount.Add(1)
	} else {
		d.warningCount.Add(1)
	}
	if d.logger.Enabled(context.Background(), level) {
		args := make([]any, 0, len(attrs)+4)
		args = append(args, "op", op, "device", d.name)
		args = append(args, attrs...)
		d.logger.Log(context.Background(), level, "validation: "+msg, args...)
	}
	if level >= slog.LevelError && d.breakOnError != nil {
		d.breakOnError(op)
	}
}

// errorf reports a violated precondition of a call that returns nothing.
func (d *Device) errorf(op, format string, args ...any) {
	d.report(slog.LevelError, op, fmt.Sprintf(format, args...), nil)
}

// warnf reports a soft inconsistency. The call is still forwarded.
func (d *Device) warnf(op, format string, args ...any) {
	d.report(slog.LevelWarn, op, fmt.Sprintf(format, args...), nil)
}

// fail reports a violated precondition and returns it as an error wrapping
// sentinel.
func (d *Device) fail(sentinel error, op, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	d.report(slog.LevelError, op, msg, nil)
	return errors.Wrapf(sentinel, "%s: %s", op, msg)
}

// debug logs object lifetime events.
func (d *Device) debug(op string, attrs ...any) {
	if d.logger.Enabled(context.Background(), slog.LevelDebug) {
		d.logger.Debug("validation: "+op, append([]any{"device", d.name}, attrs...)...)
	}
}

// foreign reports a handle that was not created by d.
func (d *Device) foreign(op, what string) error {
	return d.fail(ErrForeignObject, op, "%s was not created by this device", what)
}
