package validation

import "github.com/gogpu/rhi"

type streamerVal struct {
	d *Device
}

var _ rhi.StreamerInterface = (*streamerVal)(nil)

// stagingBuffer returns the wrapper for a staging buffer handed out by the
// backend streamer, creating it on first sight.
func (s *streamer) stagingBuffer(impl rhi.Buffer) rhi.Buffer {
	if impl == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.staging[impl]; ok {
		e.seen = s.frame
		return e.buf
	}
	b := &buffer{desc: *impl.BufferDesc()}
	b.init(s.dev, impl)
	s.staging[impl] = &stagingBuffer{buf: b, seen: s.frame}
	return b
}

// endFrame drops staging buffers not handed out for a whole frame cycle.
// The backend may destroy them once their frame slot is reused, so the
// dropped wrappers are marked destroyed.
func (s *streamer) endFrame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame++
	for impl, e := range s.staging {
		if e.seen+s.queuedFrameNum < s.frame {
			e.buf.markDestroyed()
			delete(s.staging, impl)
		}
	}
}

func (v *streamerVal) CreateStreamer(desc *rhi.StreamerDesc) (rhi.Streamer, error) {
	const op = "CreateStreamer"
	d := v.d
	switch {
	case desc == nil:
		return nil, d.fail(ErrInvalidArgument, op, "'desc' is nil")
	case desc.QueuedFrameNum == 0:
		return nil, d.fail(ErrInvalidArgument, op, "'QueuedFrameNum' is 0")
	case desc.ConstantBufferSize != 0 && !desc.ConstantBufferLocation.IsHostVisible():
		return nil, d.fail(ErrInvalidArgument, op, "'ConstantBufferLocation' must be host visible")
	case !desc.DynamicBufferLocation.IsHostVisible():
		return nil, d.fail(ErrInvalidArgument, op, "'DynamicBufferLocation' must be host visible")
	}
	impl, err := d.streamer.CreateStreamer(desc)
	if err != nil {
		return nil, err
	}
	s := &streamer{
		queuedFrameNum: uint64(desc.QueuedFrameNum),
		staging:        make(map[rhi.Buffer]*stagingBuffer),
	}
	s.init(d, impl)
	if cb := d.streamer.GetStreamerConstantBuffer(impl); cb != nil {
		s.constantBuffer = &buffer{desc: *cb.BufferDesc()}
		s.constantBuffer.init(d, cb)
	}
	return s, nil
}

func (v *streamerVal) DestroyStreamer(s rhi.Streamer) {
	destroy[*streamer](v.d, "DestroyStreamer", "streamer", s, v.d.streamer.DestroyStreamer)
}

func (v *streamerVal) GetStreamerConstantBuffer(s rhi.Streamer) rhi.Buffer {
	w, _, err := need[*streamer](v.d, "GetStreamerConstantBuffer", "streamer", s)
	if err != nil || w.constantBuffer == nil {
		return nil
	}
	return w.constantBuffer
}

func (v *streamerVal) StreamConstantData(s rhi.Streamer, data []byte) (uint32, error) {
	const op = "StreamConstantData"
	d := v.d
	w, impl, err := need[*streamer](d, op, "streamer", s)
	if err != nil {
		return 0, err
	}
	if w.constantBuffer == nil {
		return 0, d.fail(ErrInvalidState, op, "the streamer has no constant buffer")
	}
	if len(data) == 0 {
		return 0, d.fail(ErrInvalidArgument, op, "'data' is empty")
	}
	if uint64(len(data)) > w.constantBuffer.desc.Size {
		return 0, d.fail(ErrInvalidArgument, op, "%d bytes exceed the constant buffer size %d", len(data), w.constantBuffer.desc.Size)
	}
	return d.streamer.StreamConstantData(impl, data)
}

func (v *streamerVal) StreamBufferData(s rhi.Streamer, desc *rhi.StreamBufferDataDesc) (rhi.Buffer, uint64, error) {
	const op = "StreamBufferData"
	d := v.d
	w, impl, err := need[*streamer](d, op, "streamer", s)
	if err != nil {
		return nil, 0, err
	}
	if desc == nil {
		return nil, 0, d.fail(ErrInvalidArgument, op, "'desc' is nil")
	}
	if len(desc.Data) == 0 {
		return nil, 0, d.fail(ErrInvalidArgument, op, "'Data' is empty")
	}
	dst, dstImpl, err := opt[*buffer](d, op, "DstBuffer", desc.DstBuffer)
	if err != nil {
		return nil, 0, err
	}
	if dst != nil && !fits(desc.DstOffset, uint64(len(desc.Data)), dst.desc.Size) {
		return nil, 0, d.fail(ErrInvalidArgument, op, "'DstOffset + len(Data)' is out of bounds (%d + %d > %d)", desc.DstOffset, len(desc.Data), dst.desc.Size)
	}
	inner := *desc
	inner.DstBuffer = dstImpl
	staging, offset, err := d.streamer.StreamBufferData(impl, &inner)
	if err != nil {
		return nil, 0, err
	}
	return w.stagingBuffer(staging), offset, nil
}

func (v *streamerVal) StreamTextureData(s rhi.Streamer, desc *rhi.StreamTextureDataDesc) (rhi.Buffer, uint64, error) {
	const op = "StreamTextureData"
	d := v.d
	w, impl, err := need[*streamer](d, op, "streamer", s)
	if err != nil {
		return nil, 0, err
	}
	if desc == nil {
		return nil, 0, d.fail(ErrInvalidArgument, op, "'desc' is nil")
	}
	dst, dstImpl, err := need[*texture](d, op, "DstTexture", desc.DstTexture)
	if err != nil {
		return nil, 0, err
	}
	if len(desc.Data) == 0 {
		return nil, 0, d.fail(ErrInvalidArgument, op, "'Data' is empty")
	}
	if err := d.checkRegion(op, "DstRegion", dst, &desc.DstRegion); err != nil {
		return nil, 0, err
	}
	inner := *desc
	inner.DstTexture = dstImpl
	staging, offset, err := d.streamer.StreamTextureData(impl, &inner)
	if err != nil {
		return nil, 0, err
	}
	return w.stagingBuffer(staging), offset, nil
}

func (v *streamerVal) CmdCopyStreamedData(cmd rhi.CommandBuffer, s rhi.Streamer) {
	const op = "CmdCopyStreamedData"
	d := v.d
	_, impl, ok := d.recording(op, cmd, scopeOutsidePass)
	if !ok {
		return
	}
	_, sImpl, err := need[*streamer](d, op, "streamer", s)
	if err != nil {
		return
	}
	d.streamer.CmdCopyStreamedData(impl, sImpl)
}

func (v *streamerVal) EndStreamerFrame(s rhi.Streamer) {
	w, impl, err := need[*streamer](v.d, "EndStreamerFrame", "streamer", s)
	if err != nil {
		return
	}
	v.d.streamer.EndStreamerFrame(impl)
	w.endFrame()
}
