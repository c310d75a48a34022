package validation

import "github.com/gogpu/rhi"

type meshShaderVal struct {
	d *Device
}

var _ rhi.MeshShaderInterface = (*meshShaderVal)(nil)

func (m *meshShaderVal) CmdDrawMeshTasks(cmd rhi.CommandBuffer, desc *rhi.DrawMeshTasksDesc) {
	const op = "CmdDrawMeshTasks"
	d := m.d
	_, impl, ok := d.recording(op, cmd, scopeInsidePass)
	if !ok {
		return
	}
	if !d.desc.IsMeshShaderSupported {
		d.errorf(op, "'IsMeshShaderSupported' is false")
		return
	}
	d.meshShader.CmdDrawMeshTasks(impl, desc)
}

func (m *meshShaderVal) CmdDrawMeshTasksIndirect(cmd rhi.CommandBuffer, desc *rhi.DrawIndirectDesc) {
	const op = "CmdDrawMeshTasksIndirect"
	d := m.d
	_, impl, ok := d.recording(op, cmd, scopeInsidePass)
	if !ok {
		return
	}
	if !d.desc.IsMeshShaderSupported {
		d.errorf(op, "'IsMeshShaderSupported' is false")
		return
	}
	if inner, ok := d.indirect(op, desc); ok {
		d.meshShader.CmdDrawMeshTasksIndirect(impl, &inner)
	}
}
