package null

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/streamer"
)

// Device is a null rhi.Device.
//
// Device is safe for concurrent use.
type Device struct {
	desc   rhi.DeviceDesc
	ifaces rhi.Interfaces
	logger *slog.Logger

	nextID atomic.Uint64
	queues [rhi.QueueTypeMaxNum]*queue

	callsMu sync.Mutex
	calls   map[string]int
	total   int
}

var _ rhi.Device = (*Device)(nil)

// New returns a null device. Without options it reports
// DefaultDeviceDesc: no ray tracing and no mesh shaders.
func New(opts ...Option) *Device {
	o := options{desc: DefaultDeviceDesc(), logger: rhi.Logger()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = rhi.NopLogger()
	}

	d := &Device{
		desc:   o.desc,
		logger: o.logger,
		calls:  make(map[string]int),
	}
	for t := range rhi.QueueTypeMaxNum {
		q := &queue{queueType: t}
		q.init(d)
		d.queues[t] = q
	}

	c := &core{d}
	d.ifaces = rhi.Interfaces{
		Version: rhi.CurrentVersion(),
		Core:    c,
		Helper:  &helper{d},
		Wrapper: &wrapper{d},
	}
	d.ifaces.Streamer = &counting{Interface: streamer.New(c), d: d}
	if o.allInterfaces || d.desc.RayTracingTier != 0 {
		d.ifaces.RayTracing = &rayTracing{d}
	}
	if o.allInterfaces || d.desc.IsMeshShaderSupported {
		d.ifaces.MeshShader = &meshShader{d}
	}
	if o.allInterfaces || d.desc.IsSwapChainSupported {
		d.ifaces.SwapChain = &swapChains{d}
	}

	d.logger.Info("null: device created",
		"adapter", d.desc.Adapter.Name,
		"rayTracingTier", d.desc.RayTracingTier,
		"meshShader", d.desc.IsMeshShaderSupported)
	return d
}

// Desc returns the device description.
func (d *Device) Desc() *rhi.DeviceDesc { return &d.desc }

// Interfaces returns the function tables of the device.
func (d *Device) Interfaces() rhi.Interfaces { return d.ifaces }

// Destroy releases the device.
func (d *Device) Destroy() {
	d.record("Destroy")
	d.logger.Debug("null: device destroyed", "adapter", d.desc.Adapter.Name)
}

// Calls returns how many times the named method was called on any table of
// the device.
func (d *Device) Calls(name string) int {
	d.callsMu.Lock()
	defer d.callsMu.Unlock()
	return d.calls[name]
}

// TotalCalls returns the number of calls across all methods.
func (d *Device) TotalCalls() int {
	d.callsMu.Lock()
	defer d.callsMu.Unlock()
	return d.total
}

// ResetCalls clears all call counters.
func (d *Device) ResetCalls() {
	d.callsMu.Lock()
	defer d.callsMu.Unlock()
	clear(d.calls)
	d.total = 0
}

func (d *Device) record(name string) {
	d.callsMu.Lock()
	d.calls[name]++
	d.total++
	d.callsMu.Unlock()
}

func (d *Device) newID() uint64 { return d.nextID.Add(1) }

// counting forwards to the generic streamer and counts the calls.
type counting struct {
	*streamer.Interface
	d *Device
}

func (s *counting) CreateStreamer(desc *rhi.StreamerDesc) (rhi.Streamer, error) {
	s.d.record("CreateStreamer")
	return s.Interface.CreateStreamer(desc)
}

func (s *counting) DestroyStreamer(h rhi.Streamer) {
	s.d.record("DestroyStreamer")
	s.Interface.DestroyStreamer(h)
}

func (s *counting) StreamConstantData(h rhi.Streamer, data []byte) (uint32, error) {
	s.d.record("StreamConstantData")
	return s.Interface.StreamConstantData(h, data)
}

func (s *counting) StreamBufferData(h rhi.Streamer, desc *rhi.StreamBufferDataDesc) (rhi.Buffer, uint64, error) {
	s.d.record("StreamBufferData")
	return s.Interface.StreamBufferData(h, desc)
}

func (s *counting) StreamTextureData(h rhi.Streamer, desc *rhi.StreamTextureDataDesc) (rhi.Buffer, uint64, error) {
	s.d.record("StreamTextureData")
	return s.Interface.StreamTextureData(h, desc)
}

func (s *counting) CmdCopyStreamedData(cmd rhi.CommandBuffer, h rhi.Streamer) {
	s.d.record("CmdCopyStreamedData")
	s.Interface.CmdCopyStreamedData(cmd, h)
}

func (s *counting) EndStreamerFrame(h rhi.Streamer) {
	s.d.record("EndStreamerFrame")
	s.Interface.EndStreamerFrame(h)
}
