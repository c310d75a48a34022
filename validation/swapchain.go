package validation

import (
	"time"

	"github.com/gogpu/rhi"
)

type swapChainVal struct {
	d *Device
}

var _ rhi.SwapChainInterface = (*swapChainVal)(nil)

func (s *swapChainVal) CreateSwapChain(desc *rhi.SwapChainDesc) (rhi.SwapChain, error) {
	const op = "CreateSwapChain"
	d := s.d
	switch {
	case !d.desc.IsSwapChainSupported:
		return nil, d.fail(ErrUnsupported, op, "'IsSwapChainSupported' is false")
	case desc == nil:
		return nil, d.fail(ErrInvalidArgument, op, "'desc' is nil")
	case desc.Width == 0 || desc.Height == 0:
		return nil, d.fail(ErrInvalidArgument, op, "'Width' and 'Height' must be non-zero")
	case desc.TextureNum < 2:
		return nil, d.fail(ErrInvalidArgument, op, "'TextureNum' must be at least 2")
	}
	_, queueImpl, err := need[*commandQueue](d, op, "CommandQueue", desc.CommandQueue)
	if err != nil {
		return nil, err
	}

	inner := *desc
	inner.CommandQueue = queueImpl
	impl, err := d.swapChain.CreateSwapChain(&inner)
	if err != nil {
		return nil, err
	}
	sc := &swapChain{}
	sc.init(d, impl)
	for _, t := range d.swapChain.GetSwapChainTextures(impl) {
		sc.textures = append(sc.textures, d.newTexture(t, t.TextureDesc()))
	}
	return sc, nil
}

func (s *swapChainVal) DestroySwapChain(sc rhi.SwapChain) {
	destroy[*swapChain](s.d, "DestroySwapChain", "swapChain", sc, s.d.swapChain.DestroySwapChain)
}

// GetSwapChainTextures returns wrappers created once per swap chain, so
// barriers and views on swap chain images validate like any other texture.
func (s *swapChainVal) GetSwapChainTextures(sc rhi.SwapChain) []rhi.Texture {
	w, _, err := need[*swapChain](s.d, "GetSwapChainTextures", "swapChain", sc)
	if err != nil {
		return nil
	}
	return w.textures
}

func (s *swapChainVal) AcquireNextTexture(sc rhi.SwapChain) (uint32, error) {
	_, impl, err := need[*swapChain](s.d, "AcquireNextTexture", "swapChain", sc)
	if err != nil {
		return 0, err
	}
	return s.d.swapChain.AcquireNextTexture(impl)
}

func (s *swapChainVal) WaitForPresent(sc rhi.SwapChain, timeout time.Duration) error {
	_, impl, err := need[*swapChain](s.d, "WaitForPresent", "swapChain", sc)
	if err != nil {
		return err
	}
	return s.d.swapChain.WaitForPresent(impl, timeout)
}

func (s *swapChainVal) QueuePresent(sc rhi.SwapChain) error {
	_, impl, err := need[*swapChain](s.d, "QueuePresent", "swapChain", sc)
	if err != nil {
		return err
	}
	return s.d.swapChain.QueuePresent(impl)
}
