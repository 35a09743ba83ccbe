package capstone

// #include <capstone/capstone.h>
import "C"

import (
	"errors"
	"fmt"
)

// Errno is an error code reported by the engine (cs_err).
type Errno int

const (
	ErrOK       Errno = C.CS_ERR_OK
	ErrMem      Errno = C.CS_ERR_MEM       // out of memory
	ErrArch     Errno = C.CS_ERR_ARCH      // unsupported architecture
	ErrHandle   Errno = C.CS_ERR_HANDLE    // invalid handle
	ErrCsh      Errno = C.CS_ERR_CSH       // invalid csh argument
	ErrMode     Errno = C.CS_ERR_MODE      // invalid or unsupported mode
	ErrOption   Errno = C.CS_ERR_OPTION    // invalid or unsupported option
	ErrDetail   Errno = C.CS_ERR_DETAIL    // detail is unavailable because CS_OPT_DETAIL is off
	ErrMemSetup Errno = C.CS_ERR_MEMSETUP  // dynamic memory management uninitialized
	ErrVersion  Errno = C.CS_ERR_VERSION   // unsupported version
	ErrDiet     Errno = C.CS_ERR_DIET      // information irrelevant in diet engine
	ErrSkipData Errno = C.CS_ERR_SKIPDATA  // access irrelevant data for a skipped data instruction
	ErrX86ATT   Errno = C.CS_ERR_X86_ATT   // AT&T syntax compiled out
	ErrX86Intel Errno = C.CS_ERR_X86_INTEL // Intel syntax compiled out
	ErrX86Masm  Errno = C.CS_ERR_X86_MASM  // MASM syntax compiled out
)

func (e Errno) Error() string {
	return "capstone: " + C.GoString(C.cs_strerror(C.cs_err(e)))
}

var (
	ErrClosed         = errors.New("capstone: engine closed")
	ErrReleased       = errors.New("capstone: instructions released")
	ErrNoInstructions = errors.New("capstone: no instructions decoded")
	ErrUnsupported    = errors.New("capstone: unsupported")
)

// DecodeError is returned by Disasm when no instruction could be decoded.
// Code is the engine's last error, ErrOK for input that simply holds no
// valid instruction.
type DecodeError struct {
	Address uint64
	Code    Errno
}

func (e *DecodeError) Error() string {
	if e.Code == ErrOK {
		return fmt.Sprintf("%v at 0x%x", ErrNoInstructions, e.Address)
	}
	return fmt.Sprintf("%v at 0x%x: %v", ErrNoInstructions, e.Address, e.Code)
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrNoInstructions
}

func (e *DecodeError) Unwrap() error {
	if e.Code == ErrOK {
		return nil
	}
	return e.Code
}

func errnoOf(code C.cs_err) error {
	if code == C.CS_ERR_OK {
		return nil
	}
	return Errno(code)
}
