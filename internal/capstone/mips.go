package capstone

// #include <capstone/capstone.h>
import "C"

const (
	MipsOpInvalid = C.MIPS_OP_INVALID
	MipsOpReg     = C.MIPS_OP_REG
	MipsOpImm     = C.MIPS_OP_IMM
	MipsOpMem     = C.MIPS_OP_MEM
)

// MipsDetail is the MIPS member of the detail union.
type MipsDetail struct {
	raw   *C.cs_mips
	lease *lease
}

func (*MipsDetail) Arch() Arch    { return ArchMIPS }
func (*MipsDetail) isArchDetail() {}

func (m *MipsDetail) Operands() View[MipsOperand] {
	return operandView(m.raw.operands[:], &m.raw.op_count, m.lease, func(o operand[C.cs_mips_op]) MipsOperand {
		return MipsOperand{o}
	})
}

func (m *MipsDetail) OpCount(typ uint) int {
	return countOps(m.Operands(), typ, MipsOperand.Type)
}

type MipsOperand struct {
	operand[C.cs_mips_op]
}

type MipsMemOperand struct {
	Base uint
	Disp int64
}

func (o MipsOperand) Type() uint { return uint(o.load()._type) }

func (o MipsOperand) Reg() uint {
	op := o.load()
	if uint(op._type) != MipsOpReg {
		return 0
	}
	return uint(unionField[C.uint](&op.anon0[0]))
}

func (o MipsOperand) Imm() int64 {
	op := o.load()
	if uint(op._type) != MipsOpImm {
		return 0
	}
	return int64(unionField[C.int64_t](&op.anon0[0]))
}

func (o MipsOperand) Mem() (MipsMemOperand, bool) {
	op := o.load()
	if uint(op._type) != MipsOpMem {
		return MipsMemOperand{}, false
	}
	m := unionField[C.mips_op_mem](&op.anon0[0])
	return MipsMemOperand{Base: uint(m.base), Disp: int64(m.disp)}, true
}
