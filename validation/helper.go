package validation

import "github.com/gogpu/rhi"

type helperVal struct {
	d *Device
}

var _ rhi.HelperInterface = (*helperVal)(nil)

func (h *helperVal) UploadData(queue rhi.CommandQueue, textures []rhi.TextureUploadDesc, buffers []rhi.BufferUploadDesc) error {
	const op = "UploadData"
	d := h.d
	_, queueImpl, err := need[*commandQueue](d, op, "queue", queue)
	if err != nil {
		return err
	}

	texs := d.textureScratch.Get(len(textures))
	defer d.textureScratch.Put(texs)
	for i := range textures {
		in := &textures[i]
		t, impl, err := need[*texture](d, op, "textures[].Texture", in.Texture)
		if err != nil {
			return err
		}
		if in.Subresources != nil {
			layers := t.desc.LayerNum
			if t.desc.Type == rhi.TextureType3D {
				layers = 1
			}
			if want := uint64(t.desc.MipNum) * uint64(layers); uint64(len(in.Subresources)) != want {
				return d.fail(ErrInvalidArgument, op, "'textures[%d].Subresources' has %d entries, the texture has %d subresources", i, len(in.Subresources), want)
			}
		}
		if !IsTextureAccessMaskSupported(t.desc.Usage, in.After.Access) {
			return d.fail(ErrInvalidArgument, op, "'textures[%d].After.Access' is not supported by the usage mask of the texture", i)
		}
		if !IsTextureLayoutSupported(t.desc.Usage, in.After.Layout) {
			return d.fail(ErrInvalidArgument, op, "'textures[%d].After.Layout' is not supported by the usage mask of the texture", i)
		}
		texs[i] = *in
		texs[i].Texture = impl
	}

	bufs := d.bufferScratch.Get(len(buffers))
	defer d.bufferScratch.Put(bufs)
	for i := range buffers {
		in := &buffers[i]
		b, impl, err := need[*buffer](d, op, "buffers[].Buffer", in.Buffer)
		if err != nil {
			return err
		}
		if !fits(in.Offset, uint64(len(in.Data)), b.desc.Size) {
			return d.fail(ErrInvalidArgument, op, "'buffers[%d]' is out of bounds (%d + %d > %d)", i, in.Offset, len(in.Data), b.desc.Size)
		}
		if !IsBufferAccessMaskSupported(b.desc.Usage, in.After.Access) {
			return d.fail(ErrInvalidArgument, op, "'buffers[%d].After.Access' is not supported by the usage mask of the buffer", i)
		}
		bufs[i] = *in
		bufs[i].Buffer = impl
	}

	return d.helper.UploadData(queueImpl, texs, bufs)
}

func (h *helperVal) WaitForIdle(queue rhi.CommandQueue) error {
	_, impl, err := need[*commandQueue](h.d, "WaitForIdle", "queue", queue)
	if err != nil {
		return err
	}
	return h.d.helper.WaitForIdle(impl)
}
