package capstone

// #include <capstone/capstone.h>
import "C"

import (
	"bytes"
	"fmt"
	"unsafe"
)

// Instruction is a borrowed view of one decoded instruction. It is valid
// while the Instructions it came from is open.
type Instruction struct {
	raw   *C.cs_insn
	arch  Arch
	lease *lease
}

// ID is the architecture specific instruction id (X86_INS_*, ARM_INS_*...).
// Data skipped in skip-data mode has id 0.
func (i Instruction) ID() uint {
	return uint(load(&i.raw.id, i.lease))
}

// Address of the instruction.
func (i Instruction) Address() uint64 {
	return uint64(load(&i.raw.address, i.lease))
}

// Size is the number of bytes the instruction occupies.
func (i Instruction) Size() int {
	return int(load(&i.raw.size, i.lease))
}

// Bytes returns a copy of the instruction's encoding.
func (i Instruction) Bytes() []byte {
	raw := load(&i.raw.bytes, i.lease)
	return newValueView((*byte)(unsafe.Pointer(&raw[0])), i.Size(), len(raw), nil).Collect()
}

// Mnemonic returns the instruction mnemonic, e.g. "mov".
func (i Instruction) Mnemonic() string {
	m := load(&i.raw.mnemonic, i.lease)
	return cString(m[:])
}

// OpStr returns the operand text, e.g. "r9, rdx".
func (i Instruction) OpStr() string {
	s := load(&i.raw.op_str, i.lease)
	return cString(s[:])
}

// Arch is the architecture the instruction was decoded with.
func (i Instruction) Arch() Arch { return i.arch }

// Detail returns the detail record. It is absent unless CS_OPT_DETAIL was on
// when the instruction was decoded.
func (i Instruction) Detail() (Detail, bool) {
	d := load(&i.raw.detail, i.lease)
	if d == nil {
		return Detail{}, false
	}
	return Detail{raw: d, arch: i.arch, lease: i.lease}, true
}

func (i Instruction) String() string {
	return fmt.Sprintf("0x%x:\t%s\t%s", i.Address(), i.Mnemonic(), i.OpStr())
}

// cString copies a fixed-capacity NUL-terminated buffer into a Go string,
// never reading past the end of buf.
func cString(buf []C.char) string {
	if len(buf) == 0 {
		return ""
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&buf[0])), len(buf))
	if n := bytes.IndexByte(b, 0); n >= 0 {
		b = b[:n]
	}
	return string(b)
}

// goString converts a C string returned by the engine. A NULL pointer
// reports false.
func goString(s *C.char) (string, bool) {
	if s == nil {
		return "", false
	}
	return C.GoString(s), true
}
