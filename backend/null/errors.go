package null

import (
	"github.com/cockroachdb/errors"

	"github.com/gogpu/rhi"
)

// Package errors for the null backend. Each wraps the matching rhi.Result,
// so rhi.ResultOf classifies them.
var (
	// ErrForeignObject is returned when a handle created by another backend
	// is passed in.
	ErrForeignObject = errors.Wrap(rhi.InvalidArgument, "null: object belongs to another device")

	// ErrNotMappable is returned by MapBuffer for device-local buffers.
	ErrNotMappable = errors.Wrap(rhi.InvalidArgument, "null: buffer is not host visible")

	// ErrPoolExhausted is returned when a descriptor pool has no room left.
	ErrPoolExhausted = errors.Wrap(rhi.OutOfMemory, "null: descriptor pool exhausted")

	// ErrNotSupported is returned for features the device was created
	// without.
	ErrNotSupported = errors.Wrap(rhi.Unsupported, "null: feature not enabled")

	// ErrBadOptions is returned by the registered backend when
	// DeviceCreationDesc.Options has an unexpected type.
	ErrBadOptions = errors.Wrap(rhi.InvalidArgument, "null: Options must be []null.Option")
)
