// Package null provides an rhi backend that talks to no GPU.
//
// Every call is counted, so tests can check what a layer in front of the
// device forwarded:
//
//	dev := null.New()
//	core := dev.Interfaces().Core
//	...
//	if n := dev.Calls("CmdDraw"); n != 1 {
//	    t.Errorf("CmdDraw forwarded %d times", n)
//	}
//
// Buffers are backed by host memory. Buffer copies and clears recorded into
// a command buffer run when the command buffer is submitted, and fences are
// signaled at submission, so readback through MapBuffer works without a
// GPU. Textures carry no storage.
//
// Importing the package registers it under the name "null":
//
//	import _ "github.com/gogpu/rhi/backend/null"
package null
