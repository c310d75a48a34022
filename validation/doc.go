// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package validation wraps an rhi.Device and checks every call against its
// usage contract before forwarding it to the backend.
//
// The wrapped device is itself an rhi.Device, so clients cannot tell whether
// validation is active:
//
//	vd, err := validation.Wrap(dev, validation.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	core := vd.Interfaces().Core
//
// Every object created through a validating device is a wrapper that owns
// the backend object and the metadata needed for later checks, such as
// buffer sizes, texture usages and query pool capacities. Handles passed in
// are translated back to backend handles before forwarding.
//
// A violated precondition is logged at [slog.LevelError] with an "op"
// attribute naming the call, and the call is dropped: nothing is forwarded
// and no wrapper state changes. Calls that return an error also return one
// wrapping [ErrInvalidArgument], [ErrInvalidState] or [ErrUnsupported].
// Soft inconsistencies are logged at [slog.LevelWarn] and forwarded.
//
// Command buffers follow the backend's threading contract: one goroutine at
// a time, no locks on the recording path. Device-level calls are safe for
// concurrent use.
package validation
