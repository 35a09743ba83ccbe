package capstone

// #cgo LDFLAGS: -lcapstone
// #cgo freebsd CFLAGS: -I/usr/local/include
// #cgo freebsd LDFLAGS: -L/usr/local/lib
// #include <stdlib.h>
// #include <capstone/capstone.h>
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"
)

// Engine owns one native Capstone context. It is not safe for concurrent
// use; see the package documentation.
type Engine struct {
	handle C.csh
	arch   Arch
	mode   Mode
	detail bool
	closed bool

	skipData *skipData
}

// Open creates an engine for arch and mode. The error is an Errno, ErrArch
// or ErrMode for combinations the library does not support.
func Open(arch Arch, mode Mode) (*Engine, error) {
	var handle C.csh
	if err := errnoOf(C.cs_open(C.cs_arch(arch), C.cs_mode(mode), &handle)); err != nil {
		return nil, err
	}
	return &Engine{handle: handle, arch: arch, mode: mode}, nil
}

func (e *Engine) Arch() Arch { return e.arch }
func (e *Engine) Mode() Mode { return e.mode }

// Detail reports whether CS_OPT_DETAIL was switched on through this engine.
func (e *Engine) Detail() bool { return e.detail }

// SetOption applies an enumerated option. Options only affect instructions
// decoded afterwards.
func (e *Engine) SetOption(typ OptionType, value OptionValue) error {
	if e.closed {
		return ErrClosed
	}
	if err := errnoOf(C.cs_option(e.handle, C.cs_opt_type(typ), C.size_t(value))); err != nil {
		return err
	}
	switch typ {
	case OptDetail:
		e.detail = value == OptOn
	case OptMode:
		e.mode = Mode(value)
	}
	return nil
}

// SetMnemonic replaces the mnemonic printed for instruction id. An empty
// mnemonic restores the default.
func (e *Engine) SetMnemonic(id uint, mnemonic string) error {
	if e.closed {
		return ErrClosed
	}
	opt := (*C.cs_opt_mnem)(C.calloc(1, C.sizeof_cs_opt_mnem))
	defer C.free(unsafe.Pointer(opt))
	opt.id = C.uint(id)
	if mnemonic != "" {
		opt.mnemonic = C.CString(mnemonic)
		defer C.free(unsafe.Pointer(opt.mnemonic))
	}
	return errnoOf(C.cs_option(e.handle, C.CS_OPT_MNEMONIC, C.size_t(uintptr(unsafe.Pointer(opt)))))
}

// Disasm decodes code, numbering instructions from address. A count of 0
// decodes until the buffer is exhausted or an undecodable sequence is
// reached; otherwise at most count instructions are decoded.
//
// When nothing could be decoded the error is a *DecodeError carrying the
// engine's last error code; errors.Is(err, ErrNoInstructions) holds.
func (e *Engine) Disasm(code []byte, address uint64, count uint64) (*Instructions, error) {
	if e.closed {
		return nil, ErrClosed
	}
	if len(code) == 0 {
		return nil, &DecodeError{Address: address, Code: Errno(C.cs_errno(e.handle))}
	}

	var insn *C.cs_insn
	n := C.cs_disasm(
		e.handle,
		(*C.uint8_t)(unsafe.Pointer(&code[0])),
		C.size_t(len(code)),
		C.uint64_t(address),
		C.size_t(count),
		&insn,
	)
	if p := e.skipData.recovered(); p != nil {
		if n > 0 {
			C.cs_free(insn, n)
		}
		panic(p)
	}
	if n == 0 {
		return nil, &DecodeError{Address: address, Code: Errno(C.cs_errno(e.handle))}
	}
	return newInstructions(insn, n, e.arch), nil
}

// DisasmAll decodes until the buffer is exhausted or an undecodable sequence
// is reached.
func (e *Engine) DisasmAll(code []byte, address uint64) (*Instructions, error) {
	return e.Disasm(code, address, 0)
}

// LastError returns the error of the last failed call on this engine, nil if
// there was none.
func (e *Engine) LastError() error {
	if e.closed {
		return ErrClosed
	}
	return errnoOf(C.cs_errno(e.handle))
}

// RegName returns the name of register id, false if the id is unknown.
func (e *Engine) RegName(id uint) (string, bool) {
	if e.closed {
		return "", false
	}
	return goString(C.cs_reg_name(e.handle, C.uint(id)))
}

// InsnName returns the name of instruction id, false if the id is unknown.
func (e *Engine) InsnName(id uint) (string, bool) {
	if e.closed {
		return "", false
	}
	return goString(C.cs_insn_name(e.handle, C.uint(id)))
}

// GroupName returns the name of group id, false if the id is unknown.
func (e *Engine) GroupName(id uint) (string, bool) {
	if e.closed {
		return "", false
	}
	return goString(C.cs_group_name(e.handle, C.uint(id)))
}

// InsnGroup reports whether insn belongs to group. It needs detail mode.
func (e *Engine) InsnGroup(insn Instruction, group uint) bool {
	if e.closed {
		return false
	}
	insn.lease.check()
	r := C.cs_insn_group(e.handle, insn.raw, C.uint(group))
	runtime.KeepAlive(insn.lease)
	return bool(r)
}

// RegRead reports whether insn implicitly reads reg. It needs detail mode.
func (e *Engine) RegRead(insn Instruction, reg uint) bool {
	if e.closed {
		return false
	}
	insn.lease.check()
	r := C.cs_reg_read(e.handle, insn.raw, C.uint(reg))
	runtime.KeepAlive(insn.lease)
	return bool(r)
}

// RegWrite reports whether insn implicitly writes reg. It needs detail mode.
func (e *Engine) RegWrite(insn Instruction, reg uint) bool {
	if e.closed {
		return false
	}
	insn.lease.check()
	r := C.cs_reg_write(e.handle, insn.raw, C.uint(reg))
	runtime.KeepAlive(insn.lease)
	return bool(r)
}

// RegsAccess returns every register read and written by insn, explicit
// operands included. It needs detail mode.
func (e *Engine) RegsAccess(insn Instruction) (read, write []uint16, err error) {
	if e.closed {
		return nil, nil, ErrClosed
	}
	insn.lease.check()

	var regsRead, regsWrite C.cs_regs
	var readCount, writeCount C.uint8_t
	err = errnoOf(C.cs_regs_access(e.handle, insn.raw, &regsRead[0], &readCount, &regsWrite[0], &writeCount))
	runtime.KeepAlive(insn.lease)
	if err != nil {
		return nil, nil, err
	}
	read = newValueView((*uint16)(unsafe.Pointer(&regsRead[0])), readCount, len(regsRead), nil).Collect()
	write = newValueView((*uint16)(unsafe.Pointer(&regsWrite[0])), writeCount, len(regsWrite), nil).Collect()
	return read, write, nil
}

// OpCount returns the number of operands of insn with the given
// architecture specific operand type.
func (e *Engine) OpCount(insn Instruction, opType uint) int {
	if e.closed {
		return -1
	}
	insn.lease.check()
	r := C.cs_op_count(e.handle, insn.raw, C.uint(opType))
	runtime.KeepAlive(insn.lease)
	return int(r)
}

// OpIndex returns the index of the position-th (1-based) operand of insn
// with the given type, -1 if there is none.
func (e *Engine) OpIndex(insn Instruction, opType uint, position int) int {
	if e.closed {
		return -1
	}
	insn.lease.check()
	r := C.cs_op_index(e.handle, insn.raw, C.uint(opType), C.uint(position))
	runtime.KeepAlive(insn.lease)
	return int(r)
}

// Close releases the native context and any option state the engine kept
// alive for it. Closing twice returns ErrClosed. A failure of the native
// release means the library state is corrupt and panics.
func (e *Engine) Close() error {
	if e.closed {
		return ErrClosed
	}
	e.closed = true
	if err := errnoOf(C.cs_close(&e.handle)); err != nil {
		panic(fmt.Sprintf("capstone: releasing %v engine: %v", e.arch, err))
	}
	e.skipData.free()
	e.skipData = nil
	return nil
}

// Version returns the major and minor version of the linked library.
func Version() (major, minor int) {
	var ma, mi C.int
	C.cs_version(&ma, &mi)
	return int(ma), int(mi)
}

// Support answers a support query: an Arch value, SupportDiet or
// SupportX86Reduce.
func Support(query int) bool {
	return bool(C.cs_support(C.int(query)))
}

// SupportArch reports whether the library was built with arch.
func SupportArch(arch Arch) bool {
	return Support(int(arch))
}
