package webgpu

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/gogpu/rhi"
)

// Package errors for the HAL backend. Each wraps the matching rhi.Result.
var (
	// ErrForeignObject is returned when a handle created by another device
	// is passed in.
	ErrForeignObject = errors.Wrap(rhi.InvalidArgument, "webgpu: object belongs to another device")

	// ErrNotSupported is returned for features HAL cannot express.
	ErrNotSupported = errors.Wrap(rhi.Unsupported, "webgpu: not supported")

	// ErrNotMappable is returned by MapBuffer for device-local buffers.
	ErrNotMappable = errors.Wrap(rhi.InvalidArgument, "webgpu: buffer is not host visible")

	// ErrNotRecording is returned when a command buffer is used in the wrong
	// state.
	ErrNotRecording = errors.Wrap(rhi.Failure, "webgpu: command buffer is not recording")

	// ErrPoolExhausted is returned when a descriptor pool has no room left.
	ErrPoolExhausted = errors.Wrap(rhi.OutOfMemory, "webgpu: descriptor pool exhausted")

	// ErrBadProvider is returned by NewFromProvider when the provider does
	// not expose HAL objects.
	ErrBadProvider = errors.Wrap(rhi.InvalidArgument, "webgpu: provider does not expose hal.Device and hal.Queue")

	// ErrBadOptions is returned by the registered backend when
	// DeviceCreationDesc.Options has an unexpected type.
	ErrBadOptions = errors.Wrap(rhi.InvalidArgument, "webgpu: unexpected Options type")

	// ErrTimeout is returned when a fence wait exceeds the fence timeout.
	ErrTimeout = errors.Wrap(rhi.DeviceLost, "webgpu: fence wait timed out")
)

// nativeError wraps an error returned by HAL. Allocation failures map to
// rhi.OutOfMemory, everything else to rhi.Failure.
func nativeError(op string, err error, oom bool) error {
	code := rhi.Failure
	if oom {
		code = rhi.OutOfMemory
	}
	return fmt.Errorf("webgpu: %s: %w: %w", op, code, err)
}
