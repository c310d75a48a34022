package validation

import "github.com/gogpu/rhi"

func (c *coreVal) CmdBarrier(cmd rhi.CommandBuffer, desc *rhi.BarrierGroupDesc) {
	const op = "CmdBarrier"
	d := c.d
	cb, impl, ok := d.recording(op, cmd, scopeOutsidePass)
	if !ok {
		return
	}
	if desc == nil {
		d.errorf(op, "'desc' is nil")
		return
	}

	for i := range desc.Buffers {
		bb := &desc.Buffers[i]
		b, _, err := need[*buffer](d, op, "Buffers[].Buffer", bb.Buffer)
		if err != nil {
			return
		}
		if !IsBufferAccessMaskSupported(b.desc.Usage, bb.Before.Access) {
			d.errorf(op, "'Buffers[%d].Before.Access' is not supported by the usage mask of the buffer", i)
			return
		}
		if !IsBufferAccessMaskSupported(b.desc.Usage, bb.After.Access) {
			d.errorf(op, "'Buffers[%d].After.Access' is not supported by the usage mask of the buffer", i)
			return
		}
	}

	for i := range desc.Textures {
		tb := &desc.Textures[i]
		t, _, err := need[*texture](d, op, "Textures[].Texture", tb.Texture)
		if err != nil {
			return
		}
		usage := t.desc.Usage
		if !IsTextureAccessMaskSupported(usage, tb.Before.Access) {
			d.errorf(op, "'Textures[%d].Before.Access' is not supported by the usage mask of the texture", i)
			return
		}
		if !IsTextureAccessMaskSupported(usage, tb.After.Access) {
			d.errorf(op, "'Textures[%d].After.Access' is not supported by the usage mask of the texture", i)
			return
		}
		if !IsTextureLayoutSupported(usage, tb.Before.Layout) {
			d.errorf(op, "'Textures[%d].Before.Layout' is not supported by the usage mask of the texture", i)
			return
		}
		if !IsTextureLayoutSupported(usage, tb.After.Layout) {
			d.errorf(op, "'Textures[%d].After.Layout' is not supported by the usage mask of the texture", i)
			return
		}
		if _, _, err := opt[*commandQueue](d, op, "Textures[].SrcQueue", tb.SrcQueue); err != nil {
			return
		}
		if _, _, err := opt[*commandQueue](d, op, "Textures[].DstQueue", tb.DstQueue); err != nil {
			return
		}
	}

	buffers, bufMark := cb.bufferBarriers.Alloc(len(desc.Buffers))
	defer cb.bufferBarriers.Release(bufMark)
	for i := range desc.Buffers {
		buffers[i] = desc.Buffers[i]
		buffers[i].Buffer = desc.Buffers[i].Buffer.(*buffer).implHandle()
	}

	textures, texMark := cb.textureBarriers.Alloc(len(desc.Textures))
	defer cb.textureBarriers.Release(texMark)
	for i := range desc.Textures {
		src := &desc.Textures[i]
		textures[i] = *src
		textures[i].Texture = src.Texture.(*texture).implHandle()
		_, textures[i].SrcQueue, _ = unwrap[*commandQueue](d, src.SrcQueue)
		_, textures[i].DstQueue, _ = unwrap[*commandQueue](d, src.DstQueue)
	}

	d.core.CmdBarrier(impl, &rhi.BarrierGroupDesc{
		Globals:  desc.Globals,
		Buffers:  buffers,
		Textures: textures,
	})
}
