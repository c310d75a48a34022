package null

import "github.com/gogpu/rhi"

// BackendNull is the name the null backend registers under.
const BackendNull = "null"

// Backend opens null devices. DeviceCreationDesc.Options may carry a
// []Option.
type Backend struct{}

// Name returns BackendNull.
func (Backend) Name() string { return BackendNull }

// CreateDevice returns a new null device.
func (Backend) CreateDevice(desc rhi.DeviceCreationDesc) (rhi.Device, error) {
	var opts []Option
	switch o := desc.Options.(type) {
	case nil:
	case []Option:
		opts = o
	default:
		return nil, ErrBadOptions
	}
	if desc.GraphicsAPI != rhi.GraphicsAPINone {
		opts = append([]Option{WithGraphicsAPI(desc.GraphicsAPI)}, opts...)
	}
	return New(opts...), nil
}

// init registers the null backend on package import.
//
// To make it available to rhi.LookupBackend:
//
//	import _ "github.com/gogpu/rhi/backend/null"
func init() {
	rhi.RegisterBackend(Backend{})
}
