// Package device opens rhi devices through the backend registry.
//
// Backends register themselves on import:
//
//	import (
//	    "github.com/gogpu/rhi"
//	    "github.com/gogpu/rhi/device"
//	    _ "github.com/gogpu/rhi/backend/null"
//	)
//
//	dev, err := device.Create(rhi.DeviceCreationDesc{
//	    Backend:          "null",
//	    EnableValidation: true,
//	})
package device

import (
	"github.com/cockroachdb/errors"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/validation"
)

// Create opens a device on the backend named by desc.Backend, or the first
// registered backend if the name is empty. With desc.EnableValidation the
// device is returned behind the validation layer, which then owns it.
func Create(desc rhi.DeviceCreationDesc) (rhi.Device, error) {
	b, err := rhi.LookupBackend(desc.Backend)
	if err != nil {
		return nil, err
	}
	logger := desc.Logger
	if logger == nil {
		logger = rhi.Logger()
	}

	dev, err := b.CreateDevice(desc)
	if err != nil {
		return nil, errors.Wrapf(err, "device: create on %q", b.Name())
	}
	if !desc.EnableValidation {
		logger.Debug("device: created", "backend", b.Name())
		return dev, nil
	}

	vdev, err := validation.Wrap(dev, validation.WithLogger(logger))
	if err != nil {
		dev.Destroy()
		return nil, errors.Wrap(err, "device: enable validation")
	}
	logger.Debug("device: created", "backend", b.Name(), "validation", true)
	return vdev, nil
}

// MustCreate is like Create but panics on error.
func MustCreate(desc rhi.DeviceCreationDesc) rhi.Device {
	dev, err := Create(desc)
	if err != nil {
		panic(err)
	}
	return dev
}
