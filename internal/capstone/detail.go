package capstone

// #include <capstone/capstone.h>
import "C"

import (
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Detail is the detail record of one instruction. It can only be obtained
// from Instruction.Detail and always carries the architecture the
// instruction was decoded with.
type Detail struct {
	raw   *C.cs_detail
	arch  Arch
	lease *lease
}

// ArchDetail is the architecture specific part of a Detail. The concrete
// type is one of *X86Detail, *ArmDetail, *Arm64Detail, *MipsDetail,
// *PPCDetail, *SparcDetail, *SysZDetail or *XCoreDetail; no other type
// implements it.
type ArchDetail interface {
	Arch() Arch
	isArchDetail()
}

// Arch is the architecture that selects the union variant.
func (d Detail) Arch() Arch { return d.arch }

// RegsRead lists registers implicitly read by the instruction.
func (d Detail) RegsRead() View[uint16] {
	return newValueView((*uint16)(unsafe.Pointer(&d.raw.regs_read[0])), load(&d.raw.regs_read_count, d.lease), len(d.raw.regs_read), d.lease)
}

// RegsWrite lists registers implicitly written by the instruction.
func (d Detail) RegsWrite() View[uint16] {
	return newValueView((*uint16)(unsafe.Pointer(&d.raw.regs_write[0])), load(&d.raw.regs_write_count, d.lease), len(d.raw.regs_write), d.lease)
}

// Groups lists the groups the instruction belongs to.
func (d Detail) Groups() View[uint8] {
	return newValueView((*uint8)(unsafe.Pointer(&d.raw.groups[0])), load(&d.raw.groups_count, d.lease), len(d.raw.groups), d.lease)
}

// Variant returns the union member selected by the architecture, or nil for
// an architecture without a typed variant.
func (d Detail) Variant() ArchDetail {
	d.lease.check()
	switch d.arch {
	case ArchX86:
		return &X86Detail{raw: (*C.cs_x86)(d.union()), lease: d.lease}
	case ArchARM:
		return &ArmDetail{raw: (*C.cs_arm)(d.union()), lease: d.lease}
	case ArchARM64:
		return &Arm64Detail{raw: (*C.cs_arm64)(d.union()), lease: d.lease}
	case ArchMIPS:
		return &MipsDetail{raw: (*C.cs_mips)(d.union()), lease: d.lease}
	case ArchPPC:
		return &PPCDetail{raw: (*C.cs_ppc)(d.union()), lease: d.lease}
	case ArchSPARC:
		return &SparcDetail{raw: (*C.cs_sparc)(d.union()), lease: d.lease}
	case ArchSysZ:
		return &SysZDetail{raw: (*C.cs_sysz)(d.union()), lease: d.lease}
	case ArchXCore:
		return &XCoreDetail{raw: (*C.cs_xcore)(d.union()), lease: d.lease}
	}
	return nil
}

// X86 returns the x86 variant; ok is false for any other architecture.
func (d Detail) X86() (x *X86Detail, ok bool) {
	x, ok = d.Variant().(*X86Detail)
	return
}

// Arm returns the ARM variant; ok is false for any other architecture.
func (d Detail) Arm() (x *ArmDetail, ok bool) {
	x, ok = d.Variant().(*ArmDetail)
	return
}

// Arm64 returns the ARM64 variant; ok is false for any other architecture.
func (d Detail) Arm64() (x *Arm64Detail, ok bool) {
	x, ok = d.Variant().(*Arm64Detail)
	return
}

// Mips returns the MIPS variant; ok is false for any other architecture.
func (d Detail) Mips() (x *MipsDetail, ok bool) {
	x, ok = d.Variant().(*MipsDetail)
	return
}

// PPC returns the PowerPC variant; ok is false for any other architecture.
func (d Detail) PPC() (x *PPCDetail, ok bool) {
	x, ok = d.Variant().(*PPCDetail)
	return
}

// Sparc returns the SPARC variant; ok is false for any other architecture.
func (d Detail) Sparc() (x *SparcDetail, ok bool) {
	x, ok = d.Variant().(*SparcDetail)
	return
}

// SysZ returns the SystemZ variant; ok is false for any other architecture.
func (d Detail) SysZ() (x *SysZDetail, ok bool) {
	x, ok = d.Variant().(*SysZDetail)
	return
}

// XCore returns the XCore variant; ok is false for any other architecture.
func (d Detail) XCore() (x *XCoreDetail, ok bool) {
	x, ok = d.Variant().(*XCoreDetail)
	return
}

// union returns the address of the architecture union inside the record.
func (d Detail) union() unsafe.Pointer {
	return unsafe.Pointer(&d.raw.anon0[0])
}

// unionField reinterprets the start of an operand's value union as T. The
// caller selects T from the operand's own type field.
func unionField[T any](u *byte) T {
	return *(*T)(unsafe.Pointer(u))
}

// operand is a borrowed operand record. Every read goes through load, so
// a handle kept past Close panics instead of reading freed memory.
type operand[T any] struct {
	raw   *T
	lease *lease
}

func (o operand[T]) load() T { return load(o.raw, o.lease) }

// operandView builds the operand view of a detail variant, bounded by its
// op_count field.
func operandView[E, T any, N constraints.Integer](ops []E, count *N, l *lease, wrap func(operand[E]) T) View[T] {
	return newView(&ops[0], load(count, l), len(ops), l, func(p *E, l *lease) T {
		return wrap(operand[E]{raw: p, lease: l})
	})
}

// countOps counts the operands whose type equals typ.
func countOps[T any](ops View[T], typ uint, typeOf func(T) uint) int {
	n := 0
	for op := range ops.Values() {
		if typeOf(op) == typ {
			n++
		}
	}
	return n
}
