// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package rhi is a rendering hardware interface: one stable, versioned set of
// function tables over interchangeable graphics and compute backends.
//
// Client code creates a [Device] once and then talks to it exclusively
// through the tables returned by [Device.Interfaces]:
//
//	dev, err := device.Create(rhi.DeviceCreationDesc{
//	    Backend:          "null",
//	    EnableValidation: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Destroy()
//
//	core := dev.Interfaces().Core
//	buf, err := core.CreateBuffer(&rhi.BufferDesc{Size: 256, Usage: rhi.BufferUsageConstantBuffer})
//
// A nil table in [Interfaces] means the device does not provide it. Use
// [RequireInterfaces] to fail early when a table is mandatory.
//
// # Backends
//
// Backends live under backend/ and register themselves with
// [RegisterBackend] from an init function. The null backend records calls
// without touching a GPU. The webgpu backend runs on gogpu/wgpu/hal.
//
// # Validation
//
// The validation package wraps any [Device] and checks every call against its
// usage contract before forwarding it. Violations are reported through
// log/slog and the offending call is dropped. See package validation.
//
// # Logging
//
// By default rhi produces no log output. Call [SetLogger] to enable it.
package rhi
