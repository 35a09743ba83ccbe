package capstone

// #include <capstone/capstone.h>
import "C"

import (
	"runtime/cgo"
	"unsafe"
)

// csbindSkipData is the only C callback registered with the engine. The
// user data word carries a cgo.Handle to the Go side state. It lives in its
// own file because a file exporting Go functions may only declare, not
// define, C functions in its preamble.
//
//export csbindSkipData
func csbindSkipData(code *C.uint8_t, codeSize C.size_t, offset C.size_t, userData unsafe.Pointer) (skip C.size_t) {
	state := (*(*cgo.Handle)(userData)).Value().(*skipDataState)
	defer func() {
		// A panic must not unwind through the engine's C frames; Disasm
		// raises it again once the engine has returned.
		if r := recover(); r != nil {
			state.panicked = r
			skip = 0
		}
	}()

	data := unsafe.Slice((*byte)(unsafe.Pointer(code)), int(codeSize))
	n := state.callback(data, int(offset))
	if n < 0 {
		n = 0
	}
	return C.size_t(n)
}
