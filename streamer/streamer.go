// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package streamer implements rhi.StreamerInterface on top of any
// rhi.CoreInterface.
//
// A streamer owns one staging buffer per queued frame. Each staging buffer
// is a linear allocator that is rewound when its frame slot comes around
// again, so data streamed in frame N stays valid until frame
// N+QueuedFrameNum begins. When a frame outgrows its staging buffer a larger
// one replaces it and the old buffer is kept alive until the slot is reused.
//
// Constant data goes to a separate ring that wraps around and is aligned to
// DeviceDesc.ConstantBufferOffsetAlignment.
//
// Backends expose it as their Streamer table:
//
//	ifaces.Streamer = streamer.New(core)
package streamer

import (
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/gogpu/rhi"
)

// Package errors.
var (
	// ErrForeignStreamer is returned when a streamer created by another
	// Interface is passed in.
	ErrForeignStreamer = errors.New("streamer: streamer was not created by this interface")

	// ErrNoConstantBuffer is returned by StreamConstantData when the streamer
	// was created with ConstantBufferSize 0.
	ErrNoConstantBuffer = errors.New("streamer: no constant buffer")
)

// defaultRingSize is used when StreamerDesc.RingBufferSize is 0.
const defaultRingSize = 64 << 10

// Interface implements rhi.StreamerInterface.
type Interface struct {
	core rhi.CoreInterface
}

var _ rhi.StreamerInterface = (*Interface)(nil)

// New returns a streamer table that allocates and records through core.
func New(core rhi.CoreInterface) *Interface {
	return &Interface{core: core}
}

type copyKind uint8

const (
	copyToBuffer copyKind = iota
	copyToTexture
)

// request is a copy queued by StreamBufferData or StreamTextureData.
type request struct {
	kind      copyKind
	src       rhi.Buffer
	srcOffset uint64
	size      uint64

	dstBuffer rhi.Buffer
	dstOffset uint64

	dstTexture rhi.Texture
	dstRegion  rhi.TextureRegionDesc
	layout     rhi.TextureDataLayoutDesc
}

type frame struct {
	buffer  rhi.Buffer
	size    uint64
	used    uint64
	garbage []rhi.Buffer
}

// Streamer is the handle returned by CreateStreamer.
type Streamer struct {
	owner *Interface
	desc  rhi.StreamerDesc
	name  string

	mu         sync.Mutex
	frames     []frame
	frameIndex int
	pending    []request

	constants      rhi.Buffer
	constantOffset uint64
}

// SetDebugName names the streamer and the buffers it owns.
func (s *Streamer) SetDebugName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
	if s.constants != nil {
		s.constants.SetDebugName(name + " constants")
	}
	for i := range s.frames {
		if b := s.frames[i].buffer; b != nil {
			b.SetDebugName(name + " staging")
		}
	}
}

// NativeObject returns 0: a streamer has no native counterpart.
func (s *Streamer) NativeObject() uint64 { return 0 }

// Pending returns the number of copies waiting for CmdCopyStreamedData.
func (s *Streamer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (in *Interface) lookup(h rhi.Streamer) (*Streamer, error) {
	s, ok := h.(*Streamer)
	if !ok || s == nil || s.owner != in {
		return nil, ErrForeignStreamer
	}
	return s, nil
}

func alignUp(v, a uint64) uint64 {
	if a <= 1 {
		return v
	}
	return (v + a - 1) / a * a
}

// CreateStreamer allocates the constant ring up front; staging buffers are
// created on first use.
func (in *Interface) CreateStreamer(desc *rhi.StreamerDesc) (rhi.Streamer, error) {
	if desc == nil || desc.QueuedFrameNum == 0 {
		return nil, errors.Wrap(rhi.InvalidArgument, "streamer: QueuedFrameNum must be at least 1")
	}
	s := &Streamer{
		owner:  in,
		desc:   *desc,
		frames: make([]frame, desc.QueuedFrameNum),
	}
	if s.desc.RingBufferSize == 0 {
		s.desc.RingBufferSize = defaultRingSize
	}
	if desc.ConstantBufferSize != 0 {
		cb, err := in.core.CreateBuffer(&rhi.BufferDesc{
			Size:     desc.ConstantBufferSize,
			Usage:    rhi.BufferUsageConstantBuffer,
			Location: desc.ConstantBufferLocation,
		})
		if err != nil {
			return nil, errors.Wrap(err, "streamer: create constant buffer")
		}
		s.constants = cb
	}
	return s, nil
}

// DestroyStreamer releases every buffer the streamer owns.
func (in *Interface) DestroyStreamer(h rhi.Streamer) {
	s, err := in.lookup(h)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.frames {
		f := &s.frames[i]
		in.releaseGarbage(f)
		if f.buffer != nil {
			in.core.DestroyBuffer(f.buffer)
			f.buffer = nil
		}
	}
	if s.constants != nil {
		in.core.DestroyBuffer(s.constants)
		s.constants = nil
	}
	s.pending = nil
}

func (in *Interface) GetStreamerConstantBuffer(h rhi.Streamer) rhi.Buffer {
	s, err := in.lookup(h)
	if err != nil || s.constants == nil {
		return nil
	}
	return s.constants
}

// write copies data into b at offset through a temporary mapping.
func (in *Interface) write(b rhi.Buffer, offset uint64, data []byte) error {
	dst, err := in.core.MapBuffer(b, offset, uint64(len(data)))
	if err != nil {
		return errors.Wrap(err, "streamer: map")
	}
	copy(dst, data)
	in.core.UnmapBuffer(b)
	return nil
}

func (in *Interface) StreamConstantData(h rhi.Streamer, data []byte) (uint32, error) {
	s, err := in.lookup(h)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.constants == nil {
		return 0, ErrNoConstantBuffer
	}
	size := uint64(len(data))
	if size > s.desc.ConstantBufferSize {
		return 0, errors.Wrapf(rhi.InvalidArgument, "streamer: %d bytes exceed the constant buffer size %d", size, s.desc.ConstantBufferSize)
	}

	align := uint64(in.core.GetDeviceDesc().ConstantBufferOffsetAlignment)
	offset := alignUp(s.constantOffset, align)
	if offset+size > s.desc.ConstantBufferSize {
		offset = 0
	}
	if err := in.write(s.constants, offset, data); err != nil {
		return 0, err
	}
	s.constantOffset = offset + size
	return uint32(offset), nil
}

// allocate reserves size bytes in the current frame's staging buffer,
// growing it if needed.
func (in *Interface) allocate(s *Streamer, size, align uint64) (rhi.Buffer, uint64, error) {
	f := &s.frames[s.frameIndex]
	offset := alignUp(f.used, align)
	if f.buffer == nil || offset+size > f.size {
		newSize := max(s.desc.RingBufferSize, f.size*2)
		for newSize < size {
			newSize *= 2
		}
		b, err := in.core.CreateBuffer(&rhi.BufferDesc{
			Size:     newSize,
			Usage:    s.desc.DynamicBufferUsage,
			Location: s.desc.DynamicBufferLocation,
		})
		if err != nil {
			return nil, 0, errors.Wrap(err, "streamer: grow staging buffer")
		}
		if s.name != "" {
			b.SetDebugName(s.name + " staging")
		}
		if f.buffer != nil {
			f.garbage = append(f.garbage, f.buffer)
		}
		f.buffer, f.size, offset = b, newSize, 0
	}
	f.used = offset + size
	return f.buffer, offset, nil
}

func (in *Interface) StreamBufferData(h rhi.Streamer, desc *rhi.StreamBufferDataDesc) (rhi.Buffer, uint64, error) {
	s, err := in.lookup(h)
	if err != nil {
		return nil, 0, err
	}
	if desc == nil {
		return nil, 0, errors.Wrap(rhi.InvalidArgument, "streamer: desc is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	size := uint64(len(desc.Data))
	b, offset, err := in.allocate(s, size, max(uint64(desc.PlacementAlignment), 1))
	if err != nil {
		return nil, 0, err
	}
	if err := in.write(b, offset, desc.Data); err != nil {
		return nil, 0, err
	}
	if desc.DstBuffer != nil {
		s.pending = append(s.pending, request{
			kind:      copyToBuffer,
			src:       b,
			srcOffset: offset,
			size:      size,
			dstBuffer: desc.DstBuffer,
			dstOffset: desc.DstOffset,
		})
	}
	return b, offset, nil
}

func (in *Interface) StreamTextureData(h rhi.Streamer, desc *rhi.StreamTextureDataDesc) (rhi.Buffer, uint64, error) {
	s, err := in.lookup(h)
	if err != nil {
		return nil, 0, err
	}
	if desc == nil {
		return nil, 0, errors.Wrap(rhi.InvalidArgument, "streamer: desc is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dd := in.core.GetDeviceDesc()
	align := max(uint64(desc.PlacementAlignment), uint64(dd.UploadBufferTextureSliceAlignment), 1)
	size := uint64(len(desc.Data))
	b, offset, err := in.allocate(s, size, align)
	if err != nil {
		return nil, 0, err
	}
	if err := in.write(b, offset, desc.Data); err != nil {
		return nil, 0, err
	}
	layout := desc.DataLayout
	layout.Offset = offset
	s.pending = append(s.pending, request{
		kind:       copyToTexture,
		src:        b,
		srcOffset:  offset,
		size:       size,
		dstTexture: desc.DstTexture,
		dstRegion:  desc.DstRegion,
		layout:     layout,
	})
	return b, offset, nil
}

// CmdCopyStreamedData records every queued copy into cmd and clears the
// queue.
func (in *Interface) CmdCopyStreamedData(cmd rhi.CommandBuffer, h rhi.Streamer) {
	s, err := in.lookup(h)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.pending {
		r := &s.pending[i]
		switch r.kind {
		case copyToBuffer:
			in.core.CmdCopyBuffer(cmd, r.dstBuffer, r.dstOffset, r.src, r.srcOffset, r.size)
		case copyToTexture:
			in.core.CmdUploadBufferToTexture(cmd, r.dstTexture, &r.dstRegion, r.src, &r.layout)
		}
	}
	clear(s.pending)
	s.pending = s.pending[:0]
}

// EndStreamerFrame moves to the next frame slot and rewinds it. Buffers
// retired while that slot was last in use are destroyed.
func (in *Interface) EndStreamerFrame(h rhi.Streamer) {
	s, err := in.lookup(h)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frameIndex = (s.frameIndex + 1) % len(s.frames)
	f := &s.frames[s.frameIndex]
	in.releaseGarbage(f)
	f.used = 0
}

func (in *Interface) releaseGarbage(f *frame) {
	for _, b := range f.garbage {
		in.core.DestroyBuffer(b)
	}
	clear(f.garbage)
	f.garbage = f.garbage[:0]
}
