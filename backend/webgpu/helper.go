package webgpu

import (
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
)

// helper uploads through the HAL queue, which stages writes itself.
// Layout transitions in the upload descriptions need no commands here.
type helper struct {
	d *Device
}

func (h *helper) UploadData(q rhi.CommandQueue, textures []rhi.TextureUploadDesc, buffers []rhi.BufferUploadDesc) error {
	d := h.d
	if _, ok := get[*queue](d, q); !ok {
		return ErrForeignObject
	}
	for i := range textures {
		if err := h.uploadTexture(&textures[i]); err != nil {
			return err
		}
	}
	for i := range buffers {
		bu := &buffers[i]
		b, ok := get[*buffer](d, bu.Buffer)
		if !ok {
			return ErrForeignObject
		}
		if len(bu.Data) == 0 {
			continue
		}
		d.queue.WriteBuffer(b.hal, bu.Offset, bu.Data)
	}
	return d.waitIdle()
}

// uploadTexture writes subresources in layer-major order.
func (h *helper) uploadTexture(tu *rhi.TextureUploadDesc) error {
	t, ok := get[*texture](h.d, tu.Texture)
	if !ok {
		return ErrForeignObject
	}
	if tu.Subresources == nil {
		return nil
	}
	desc := &t.desc
	mips := max(desc.MipNum, 1)
	layers := max(desc.LayerNum, 1)
	for layer := range layers {
		for mip := range mips {
			i := layer*mips + mip
			if int(i) >= len(tu.Subresources) {
				return nil
			}
			sr := &tu.Subresources[i]
			if len(sr.Slices) == 0 {
				continue
			}
			w := max(uint32(desc.Width)>>mip, 1)
			ht := max(uint32(desc.Height)>>mip, 1)
			rows := ht
			if sr.RowPitch != 0 && sr.SlicePitch != 0 {
				rows = sr.SlicePitch / sr.RowPitch
			}
			h.d.queue.WriteTexture(
				&hal.ImageCopyTexture{
					Texture:  t.hal,
					MipLevel: mip,
					Origin:   hal.Origin3D{Z: layer},
					Aspect:   aspect(tu.Planes),
				},
				sr.Slices,
				&hal.ImageDataLayout{
					BytesPerRow:  sr.RowPitch,
					RowsPerImage: rows,
				},
				&hal.Extent3D{Width: w, Height: ht, DepthOrArrayLayers: max(sr.SliceNum, 1)},
			)
		}
	}
	return nil
}

func (h *helper) WaitForIdle(q rhi.CommandQueue) error {
	if _, ok := get[*queue](h.d, q); !ok {
		return ErrForeignObject
	}
	return h.d.waitIdle()
}
