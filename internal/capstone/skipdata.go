package capstone

/*
#include <stdlib.h>
#include <capstone/capstone.h>

extern size_t csbindSkipData(uint8_t *code, size_t code_size, size_t offset, void *user_data);
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"
)

// DefaultSkipDataMnemonic is printed for skipped data when no mnemonic is
// configured.
const DefaultSkipDataMnemonic = ".byte"

// SkipDataCallback is consulted for every undecodable position in skip-data
// mode. It returns the number of bytes to skip; 0 stops decoding.
//
// Under Disasm, code is the whole input buffer and offset the position of
// the first undecodable byte in it. Under DisasmIter, code is what remains
// of the buffer and offset is always 0. In both cases code[offset:] starts
// at the undecodable byte.
type SkipDataCallback func(code []byte, offset int) int

// SkipDataConfig configures skip-data mode.
type SkipDataConfig struct {
	// Mnemonic is printed for skipped data, DefaultSkipDataMnemonic if empty.
	Mnemonic string
	// Callback chooses how much to skip. When nil the engine skips one
	// architecture specific unit (e.g. 1 byte on x86, 4 on ARM).
	Callback SkipDataCallback
}

// skipData holds the native memory handed to CS_OPT_SKIPDATA_SETUP. The
// engine refers to it until it is closed or reconfigured.
type skipData struct {
	opt      *C.cs_opt_skipdata
	mnemonic *C.char
	state    *skipDataState
	handle   cgo.Handle
	userData unsafe.Pointer // C memory holding handle
}

// skipDataState is what the trampoline reaches through the cgo handle.
type skipDataState struct {
	callback SkipDataCallback
	panicked any
}

func newSkipData(cfg SkipDataConfig) *skipData {
	mnemonic := cfg.Mnemonic
	if mnemonic == "" {
		mnemonic = DefaultSkipDataMnemonic
	}

	s := &skipData{
		opt:      (*C.cs_opt_skipdata)(C.calloc(1, C.sizeof_cs_opt_skipdata)),
		mnemonic: C.CString(mnemonic),
	}
	s.opt.mnemonic = s.mnemonic
	if cfg.Callback != nil {
		s.state = &skipDataState{callback: cfg.Callback}
		s.handle = cgo.NewHandle(s.state)
		s.userData = C.malloc(C.size_t(unsafe.Sizeof(s.handle)))
		*(*cgo.Handle)(s.userData) = s.handle
		s.opt.callback = C.cs_skipdata_cb_t(C.csbindSkipData)
		s.opt.user_data = s.userData
	}
	return s
}

// recovered returns and clears a panic raised by the callback during the
// last decode.
func (s *skipData) recovered() any {
	if s == nil || s.state == nil {
		return nil
	}
	p := s.state.panicked
	s.state.panicked = nil
	return p
}

func (s *skipData) free() {
	if s == nil {
		return
	}
	if s.userData != nil {
		s.handle.Delete()
		C.free(s.userData)
	}
	C.free(unsafe.Pointer(s.mnemonic))
	C.free(unsafe.Pointer(s.opt))
}

// SetSkipDataSetup installs the skip-data mnemonic and callback. It does not
// switch skip-data mode on; use SetOption(OptSkipData, OptOn) or the
// Builder, which does both.
func (e *Engine) SetSkipDataSetup(cfg SkipDataConfig) error {
	if e.closed {
		return ErrClosed
	}
	s := newSkipData(cfg)
	err := errnoOf(C.cs_option(e.handle, C.cs_opt_type(optSkipDataSetup), C.size_t(uintptr(unsafe.Pointer(s.opt)))))
	if err != nil {
		s.free()
		return err
	}
	e.skipData.free()
	e.skipData = s
	return nil
}
