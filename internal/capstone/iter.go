package capstone

// #include <capstone/capstone.h>
import "C"

import (
	"iter"
	"runtime"
	"unsafe"
)

// DisasmIter decodes code one instruction at a time into a single reusable
// native slot, so memory use does not grow with the input. Each yielded
// Instruction is only valid inside the loop body that received it; keeping
// it longer panics with ErrReleased on use. Iteration stops at the end of
// the buffer or at the first undecodable sequence; LastError tells the two
// apart.
func (e *Engine) DisasmIter(code []byte, address uint64) iter.Seq[Instruction] {
	return func(yield func(Instruction) bool) {
		if e.closed || len(code) == 0 {
			return
		}
		slot := C.cs_malloc(e.handle)
		if slot == nil {
			return
		}
		defer C.cs_free(slot, 1)

		var pinner runtime.Pinner
		pinner.Pin(&code[0])
		defer pinner.Unpin()

		ptr := (*C.uint8_t)(unsafe.Pointer(&code[0]))
		size := C.size_t(len(code))
		addr := C.uint64_t(address)
		for C.cs_disasm_iter(e.handle, &ptr, &size, &addr, slot) {
			if p := e.skipData.recovered(); p != nil {
				panic(p)
			}
			l := &lease{}
			more := yield(Instruction{raw: slot, arch: e.arch, lease: l})
			l.end()
			if !more {
				return
			}
		}
		if p := e.skipData.recovered(); p != nil {
			panic(p)
		}
	}
}
