package capstone

// #include <capstone/capstone.h>
import "C"

// ARM64 operand types.
const (
	Arm64OpInvalid  = C.ARM64_OP_INVALID
	Arm64OpReg      = C.ARM64_OP_REG
	Arm64OpImm      = C.ARM64_OP_IMM
	Arm64OpMem      = C.ARM64_OP_MEM
	Arm64OpFP       = C.ARM64_OP_FP
	Arm64OpCImm     = C.ARM64_OP_CIMM
	Arm64OpRegMRS   = C.ARM64_OP_REG_MRS
	Arm64OpRegMSR   = C.ARM64_OP_REG_MSR
	Arm64OpPState   = C.ARM64_OP_PSTATE
	Arm64OpSys      = C.ARM64_OP_SYS
	Arm64OpPrefetch = C.ARM64_OP_PREFETCH
	Arm64OpBarrier  = C.ARM64_OP_BARRIER
)

// Arm64Detail is the ARM64 member of the detail union.
type Arm64Detail struct {
	raw   *C.cs_arm64
	lease *lease
}

func (*Arm64Detail) Arch() Arch    { return ArchARM64 }
func (*Arm64Detail) isArchDetail() {}

func (a *Arm64Detail) CC() uint          { return uint(load(&a.raw.cc, a.lease)) }
func (a *Arm64Detail) UpdateFlags() bool { return bool(load(&a.raw.update_flags, a.lease)) }
func (a *Arm64Detail) Writeback() bool   { return bool(load(&a.raw.writeback, a.lease)) }

// Operands is bounded by op_count.
func (a *Arm64Detail) Operands() View[Arm64Operand] {
	return operandView(a.raw.operands[:], &a.raw.op_count, a.lease, func(o operand[C.cs_arm64_op]) Arm64Operand {
		return Arm64Operand{o}
	})
}

// OpCount returns the number of operands of the given Arm64Op* type.
func (a *Arm64Detail) OpCount(typ uint) int {
	return countOps(a.Operands(), typ, Arm64Operand.Type)
}

// Arm64Operand is one ARM64 operand, borrowed from the detail record.
type Arm64Operand struct {
	operand[C.cs_arm64_op]
}

type Arm64Shifter struct {
	Type  uint
	Value uint
}

type Arm64MemOperand struct {
	Base  uint
	Index uint
	Disp  int32
}

func (o Arm64Operand) Type() uint       { return uint(o.load()._type) }
func (o Arm64Operand) VectorIndex() int { return int(o.load().vector_index) }
func (o Arm64Operand) Vas() int         { return int(o.load().vas) }
func (o Arm64Operand) Ext() uint        { return uint(o.load().ext) }
func (o Arm64Operand) Access() uint8    { return uint8(o.load().access) }

func (o Arm64Operand) Shift() Arm64Shifter {
	op := o.load()
	return Arm64Shifter{Type: uint(op.shift._type), Value: uint(op.shift.value)}
}

// Reg returns the register of an Arm64OpReg, Arm64OpRegMRS or Arm64OpRegMSR
// operand.
func (o Arm64Operand) Reg() uint {
	op := o.load()
	switch uint(op._type) {
	case Arm64OpReg, Arm64OpRegMRS, Arm64OpRegMSR:
		return uint(unionField[C.uint](&op.anon0[0]))
	}
	return 0
}

func (o Arm64Operand) Imm() int64 {
	op := o.load()
	switch uint(op._type) {
	case Arm64OpImm, Arm64OpCImm:
		return int64(unionField[C.int64_t](&op.anon0[0]))
	}
	return 0
}

func (o Arm64Operand) FP() float64 {
	op := o.load()
	if uint(op._type) != Arm64OpFP {
		return 0
	}
	return float64(unionField[C.double](&op.anon0[0]))
}

func (o Arm64Operand) Mem() (Arm64MemOperand, bool) {
	op := o.load()
	if uint(op._type) != Arm64OpMem {
		return Arm64MemOperand{}, false
	}
	m := unionField[C.arm64_op_mem](&op.anon0[0])
	return Arm64MemOperand{
		Base:  uint(m.base),
		Index: uint(m.index),
		Disp:  int32(m.disp),
	}, true
}

// PState, Sys, Prefetch and Barrier return the operation encoded by the
// operand of the matching type, 0 otherwise.
func (o Arm64Operand) PState() int { return o.unionInt(Arm64OpPState) }

func (o Arm64Operand) Sys() uint {
	op := o.load()
	if uint(op._type) != Arm64OpSys {
		return 0
	}
	return uint(unionField[C.uint](&op.anon0[0]))
}

func (o Arm64Operand) Prefetch() int { return o.unionInt(Arm64OpPrefetch) }
func (o Arm64Operand) Barrier() int  { return o.unionInt(Arm64OpBarrier) }

func (o Arm64Operand) unionInt(typ uint) int {
	op := o.load()
	if uint(op._type) != typ {
		return 0
	}
	return int(unionField[C.int](&op.anon0[0]))
}
