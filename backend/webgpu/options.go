package webgpu

import (
	"log/slog"
	"time"

	"github.com/gogpu/gputypes"
)

// Option configures a webgpu device.
//
// Example:
//
//	dev, err := webgpu.New(device, queue,
//	    webgpu.WithLimits(limits),
//	    webgpu.WithLabel("editor"),
//	)
type Option func(*options)

type options struct {
	limits       gputypes.Limits
	label        string
	logger       *slog.Logger
	fenceTimeout time.Duration
}

func defaultOptions() options {
	return options{
		limits:       gputypes.DefaultLimits(),
		label:        "webgpu",
		fenceTimeout: defaultFenceTimeout,
	}
}

// defaultFenceTimeout bounds every CPU wait on a HAL fence.
const defaultFenceTimeout = 5 * time.Second

// WithLimits sets the limits the HAL device was opened with. They are
// reported through the device description. By default
// gputypes.DefaultLimits() is assumed.
func WithLimits(limits gputypes.Limits) Option {
	return func(o *options) {
		o.limits = limits
	}
}

// WithLabel sets the prefix used for HAL debug labels and the adapter name.
func WithLabel(label string) Option {
	return func(o *options) {
		if label != "" {
			o.label = label
		}
	}
}

// WithLogger sets the logger for device events. By default the shared
// rhi.Logger() is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithFenceTimeout bounds CPU waits on fences. Zero keeps the default of
// five seconds.
func WithFenceTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.fenceTimeout = d
		}
	}
}
