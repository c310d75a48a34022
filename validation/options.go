package validation

import "log/slog"

// Option configures a validating device.
//
// Example:
//
//	vd, err := validation.Wrap(dev,
//	    validation.WithLogger(slog.Default()),
//	    validation.WithName("main"),
//	)
type Option func(*options)

type options struct {
	logger       *slog.Logger
	name         string
	breakOnError func(op string)
}

// WithLogger sets the logger that receives diagnostics. By default the
// shared rhi.Logger() is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithName sets the device name attached to every diagnostic.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithBreakOnError installs a hook called synchronously after every
// reported error, with the name of the failing call. It is meant for tests
// and for setting debugger breakpoints.
func WithBreakOnError(fn func(op string)) Option {
	return func(o *options) {
		o.breakOnError = fn
	}
}
