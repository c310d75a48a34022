package validation

import "github.com/gogpu/rhi"

type wrapperVal struct {
	d *Device
}

var _ rhi.WrapperInterface = (*wrapperVal)(nil)

// CreateCommandBufferFromNative wraps a native command list. The result is
// in the recording state and stays there after EndCommandBuffer, because
// the native owner controls its lifetime.
func (w *wrapperVal) CreateCommandBufferFromNative(desc *rhi.NativeCommandBufferDesc) (rhi.CommandBuffer, error) {
	const op = "CreateCommandBufferFromNative"
	d := w.d
	if desc == nil || desc.CommandBuffer == 0 {
		return nil, d.fail(ErrInvalidArgument, op, "'CommandBuffer' is 0")
	}
	impl, err := d.wrapper.CreateCommandBufferFromNative(desc)
	if err != nil {
		return nil, err
	}
	cb := newCommandBuffer(d, impl, nil)
	cb.isWrapped = true
	cb.isRecording = true
	return cb, nil
}

func (w *wrapperVal) CreateBufferFromNative(desc *rhi.NativeBufferDesc) (rhi.Buffer, error) {
	const op = "CreateBufferFromNative"
	d := w.d
	if desc == nil || desc.Buffer == 0 {
		return nil, d.fail(ErrInvalidArgument, op, "'Buffer' is 0")
	}
	impl, err := d.wrapper.CreateBufferFromNative(desc)
	if err != nil {
		return nil, err
	}
	bd := desc.Desc
	if bd == nil {
		bd = impl.BufferDesc()
	}
	b := &buffer{desc: *bd}
	b.init(d, impl)
	return b, nil
}

func (w *wrapperVal) CreateTextureFromNative(desc *rhi.NativeTextureDesc) (rhi.Texture, error) {
	const op = "CreateTextureFromNative"
	d := w.d
	if desc == nil || desc.Texture == 0 {
		return nil, d.fail(ErrInvalidArgument, op, "'Texture' is 0")
	}
	impl, err := d.wrapper.CreateTextureFromNative(desc)
	if err != nil {
		return nil, err
	}
	td := desc.Desc
	if td == nil {
		td = impl.TextureDesc()
	}
	return d.newTexture(impl, td), nil
}

// CreateQueryPoolFromNative wraps a native query pool. Its capacity is not
// trusted, so range checks are skipped for it.
func (w *wrapperVal) CreateQueryPoolFromNative(desc *rhi.NativeQueryPoolDesc) (rhi.QueryPool, error) {
	const op = "CreateQueryPoolFromNative"
	d := w.d
	switch {
	case desc == nil || desc.QueryPool == 0:
		return nil, d.fail(ErrInvalidArgument, op, "'QueryPool' is 0")
	case desc.QueryType >= rhi.QueryTypeMaxNum:
		return nil, d.fail(ErrInvalidArgument, op, "'QueryType' is invalid")
	}
	impl, err := d.wrapper.CreateQueryPoolFromNative(desc)
	if err != nil {
		return nil, err
	}
	q := &queryPool{queryType: desc.QueryType, capacity: desc.Capacity, imported: true}
	q.init(d, impl)
	return q, nil
}

func (w *wrapperVal) CreateAccelerationStructureFromNative(desc *rhi.NativeAccelerationStructureDesc) (rhi.AccelerationStructure, error) {
	const op = "CreateAccelerationStructureFromNative"
	d := w.d
	if desc == nil || desc.AccelerationStructure == 0 {
		return nil, d.fail(ErrInvalidArgument, op, "'AccelerationStructure' is 0")
	}
	impl, err := d.wrapper.CreateAccelerationStructureFromNative(desc)
	if err != nil {
		return nil, err
	}
	as := &accelerationStructure{
		asType:            desc.Type,
		size:              desc.Size,
		buildScratchSize:  desc.BuildScratchSize,
		updateScratchSize: desc.UpdateScratchSize,
	}
	as.init(d, impl)
	return as, nil
}
