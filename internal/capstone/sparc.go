package capstone

// #include <capstone/capstone.h>
import "C"

const (
	SparcOpInvalid = C.SPARC_OP_INVALID
	SparcOpReg     = C.SPARC_OP_REG
	SparcOpImm     = C.SPARC_OP_IMM
	SparcOpMem     = C.SPARC_OP_MEM
)

// SparcDetail is the SPARC member of the detail union.
type SparcDetail struct {
	raw   *C.cs_sparc
	lease *lease
}

func (*SparcDetail) Arch() Arch    { return ArchSPARC }
func (*SparcDetail) isArchDetail() {}

func (s *SparcDetail) CC() uint   { return uint(load(&s.raw.cc, s.lease)) }
func (s *SparcDetail) Hint() uint { return uint(load(&s.raw.hint, s.lease)) }

func (s *SparcDetail) Operands() View[SparcOperand] {
	return operandView(s.raw.operands[:], &s.raw.op_count, s.lease, func(o operand[C.cs_sparc_op]) SparcOperand {
		return SparcOperand{o}
	})
}

func (s *SparcDetail) OpCount(typ uint) int {
	return countOps(s.Operands(), typ, SparcOperand.Type)
}

type SparcOperand struct {
	operand[C.cs_sparc_op]
}

type SparcMemOperand struct {
	Base  uint8
	Index uint8
	Disp  int32
}

func (o SparcOperand) Type() uint { return uint(o.load()._type) }

func (o SparcOperand) Reg() uint {
	op := o.load()
	if uint(op._type) != SparcOpReg {
		return 0
	}
	return uint(unionField[C.uint](&op.anon0[0]))
}

func (o SparcOperand) Imm() int64 {
	op := o.load()
	if uint(op._type) != SparcOpImm {
		return 0
	}
	return int64(unionField[C.int64_t](&op.anon0[0]))
}

func (o SparcOperand) Mem() (SparcMemOperand, bool) {
	op := o.load()
	if uint(op._type) != SparcOpMem {
		return SparcMemOperand{}, false
	}
	m := unionField[C.sparc_op_mem](&op.anon0[0])
	return SparcMemOperand{Base: uint8(m.base), Index: uint8(m.index), Disp: int32(m.disp)}, true
}
