// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package webgpu implements rhi on top of github.com/gogpu/wgpu/hal.
//
// The backend runs on any HAL backend and reports itself as
// rhi.GraphicsAPIWebGPU. It exposes the Core, Helper and Streamer tables. Ray tracing, mesh shaders, swap chains and
// native wrapping are not available through HAL.
//
// A device can be built from a HAL device and queue the caller already owns:
//
//	dev, err := webgpu.New(halDevice, halQueue, webgpu.WithLabel("scene"))
//
// or from a host that shares its GPU device, such as gogpu:
//
//	dev, err := webgpu.NewFromProvider(provider)
//
// Importing the package registers it with rhi under BackendWebGPU. Without
// a device in Options the registered backend opens a Vulkan adapter of its
// own and destroys it with the rhi device.
//
// # Model differences
//
// HAL follows WebGPU, so a few rhi concepts are emulated:
//
//   - Descriptor sets become bind groups. A set is rebuilt into a new bind
//     group the first time it is bound after an update.
//   - Descriptor pools only account for capacity.
//   - Buffer mapping goes through a host shadow copy: MapBuffer reads the
//     buffer through the queue, UnmapBuffer writes the mapped range back.
//   - Render and compute passes are opened lazily. Pipeline, bind groups and
//     vertex streams are re-applied when a pass starts.
//   - CmdClearAttachments restarts the render pass with clear load
//     operations, so only whole-attachment clears are honored.
//   - Multi-draw indirect is unrolled into single indirect draws.
//
// Calls HAL cannot express (root constants, queries, shading rate, depth
// bounds, depth bias state, sample locations) are dropped with a warning.
package webgpu
