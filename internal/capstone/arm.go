package capstone

// #include <capstone/capstone.h>
import "C"

// ARM operand types.
const (
	ArmOpInvalid = C.ARM_OP_INVALID
	ArmOpReg     = C.ARM_OP_REG
	ArmOpImm     = C.ARM_OP_IMM
	ArmOpMem     = C.ARM_OP_MEM
	ArmOpFP      = C.ARM_OP_FP
	ArmOpCImm    = C.ARM_OP_CIMM
	ArmOpPImm    = C.ARM_OP_PIMM
	ArmOpSetend  = C.ARM_OP_SETEND
	ArmOpSysReg  = C.ARM_OP_SYSREG
)

// ArmDetail is the ARM member of the detail union.
type ArmDetail struct {
	raw   *C.cs_arm
	lease *lease
}

func (*ArmDetail) Arch() Arch    { return ArchARM }
func (*ArmDetail) isArchDetail() {}

func (a *ArmDetail) UserMode() bool    { return bool(load(&a.raw.usermode, a.lease)) }
func (a *ArmDetail) VectorSize() int   { return int(load(&a.raw.vector_size, a.lease)) }
func (a *ArmDetail) VectorData() int   { return int(load(&a.raw.vector_data, a.lease)) }
func (a *ArmDetail) CPSMode() int      { return int(load(&a.raw.cps_mode, a.lease)) }
func (a *ArmDetail) CPSFlag() int      { return int(load(&a.raw.cps_flag, a.lease)) }
func (a *ArmDetail) CC() uint          { return uint(load(&a.raw.cc, a.lease)) }
func (a *ArmDetail) UpdateFlags() bool { return bool(load(&a.raw.update_flags, a.lease)) }
func (a *ArmDetail) Writeback() bool   { return bool(load(&a.raw.writeback, a.lease)) }
func (a *ArmDetail) MemBarrier() int   { return int(load(&a.raw.mem_barrier, a.lease)) }

// Operands is bounded by op_count.
func (a *ArmDetail) Operands() View[ArmOperand] {
	return operandView(a.raw.operands[:], &a.raw.op_count, a.lease, func(o operand[C.cs_arm_op]) ArmOperand {
		return ArmOperand{o}
	})
}

// OpCount returns the number of operands of the given ArmOp* type.
func (a *ArmDetail) OpCount(typ uint) int {
	return countOps(a.Operands(), typ, ArmOperand.Type)
}

// ArmOperand is one ARM operand, borrowed from the detail record.
type ArmOperand struct {
	operand[C.cs_arm_op]
}

type ArmShifter struct {
	Type  uint
	Value uint
}

type ArmMemOperand struct {
	Base   uint
	Index  uint
	Scale  int
	Disp   int
	LShift int
}

func (o ArmOperand) Type() uint { return uint(o.load()._type) }

func (o ArmOperand) VectorIndex() int { return int(o.load().vector_index) }

func (o ArmOperand) Shift() ArmShifter {
	op := o.load()
	return ArmShifter{Type: uint(op.shift._type), Value: uint(op.shift.value)}
}

// Reg returns the register of an ArmOpReg or ArmOpSysReg operand.
func (o ArmOperand) Reg() uint {
	op := o.load()
	switch uint(op._type) {
	case ArmOpReg, ArmOpSysReg:
		return uint(unionField[C.int](&op.anon0[0]))
	}
	return 0
}

// Imm returns the value of an immediate operand (ArmOpImm, ArmOpCImm,
// ArmOpPImm).
func (o ArmOperand) Imm() int32 {
	op := o.load()
	switch uint(op._type) {
	case ArmOpImm, ArmOpCImm, ArmOpPImm:
		return int32(unionField[C.int32_t](&op.anon0[0]))
	}
	return 0
}

func (o ArmOperand) FP() float64 {
	op := o.load()
	if uint(op._type) != ArmOpFP {
		return 0
	}
	return float64(unionField[C.double](&op.anon0[0]))
}

func (o ArmOperand) Mem() (ArmMemOperand, bool) {
	op := o.load()
	if uint(op._type) != ArmOpMem {
		return ArmMemOperand{}, false
	}
	m := unionField[C.arm_op_mem](&op.anon0[0])
	return ArmMemOperand{
		Base:   uint(m.base),
		Index:  uint(m.index),
		Scale:  int(m.scale),
		Disp:   int(m.disp),
		LShift: int(m.lshift),
	}, true
}

func (o ArmOperand) Setend() int {
	op := o.load()
	if uint(op._type) != ArmOpSetend {
		return 0
	}
	return int(unionField[C.int](&op.anon0[0]))
}

func (o ArmOperand) Subtracted() bool { return bool(o.load().subtracted) }
func (o ArmOperand) Access() uint8    { return uint8(o.load().access) }
func (o ArmOperand) NeonLane() int    { return int(o.load().neon_lane) }
