package validation

import (
	"github.com/cockroachdb/errors"

	"github.com/gogpu/rhi"
)

// Errors returned by validated calls. Each one carries an rhi.Result, so
// rhi.ResultOf works on every error returned from this package.
var (
	// ErrInvalidArgument reports a call argument that violates its contract.
	ErrInvalidArgument = errors.Wrap(rhi.InvalidArgument, "validation")

	// ErrInvalidState reports a call made in the wrong object state, such as
	// beginning a command buffer that is already recording.
	ErrInvalidState = errors.Wrap(rhi.Failure, "validation: invalid state")

	// ErrUnsupported reports a call the device lacks the capability for.
	ErrUnsupported = errors.Wrap(rhi.Unsupported, "validation")

	// ErrForeignObject reports a handle that was not created by this
	// validating device.
	ErrForeignObject = errors.Wrap(rhi.InvalidArgument, "validation: foreign object")
)

