package capstone

// #include <capstone/capstone.h>
import "C"

const (
	SysZOpInvalid = C.SYSZ_OP_INVALID
	SysZOpReg     = C.SYSZ_OP_REG
	SysZOpImm     = C.SYSZ_OP_IMM
	SysZOpMem     = C.SYSZ_OP_MEM
	SysZOpACReg   = C.SYSZ_OP_ACREG // access register
)

// SysZDetail is the SystemZ member of the detail union.
type SysZDetail struct {
	raw   *C.cs_sysz
	lease *lease
}

func (*SysZDetail) Arch() Arch    { return ArchSysZ }
func (*SysZDetail) isArchDetail() {}

func (s *SysZDetail) CC() uint { return uint(load(&s.raw.cc, s.lease)) }

func (s *SysZDetail) Operands() View[SysZOperand] {
	return operandView(s.raw.operands[:], &s.raw.op_count, s.lease, func(o operand[C.cs_sysz_op]) SysZOperand {
		return SysZOperand{o}
	})
}

func (s *SysZDetail) OpCount(typ uint) int {
	return countOps(s.Operands(), typ, SysZOperand.Type)
}

type SysZOperand struct {
	operand[C.cs_sysz_op]
}

type SysZMemOperand struct {
	Base   uint8
	Index  uint8
	Length uint64
	Disp   int64
}

func (o SysZOperand) Type() uint { return uint(o.load()._type) }

// Reg returns the register of an SysZOpReg or SysZOpACReg operand.
func (o SysZOperand) Reg() uint {
	op := o.load()
	switch uint(op._type) {
	case SysZOpReg, SysZOpACReg:
		return uint(unionField[C.uint](&op.anon0[0]))
	}
	return 0
}

func (o SysZOperand) Imm() int64 {
	op := o.load()
	if uint(op._type) != SysZOpImm {
		return 0
	}
	return int64(unionField[C.int64_t](&op.anon0[0]))
}

func (o SysZOperand) Mem() (SysZMemOperand, bool) {
	op := o.load()
	if uint(op._type) != SysZOpMem {
		return SysZMemOperand{}, false
	}
	m := unionField[C.sysz_op_mem](&op.anon0[0])
	return SysZMemOperand{
		Base:   uint8(m.base),
		Index:  uint8(m.index),
		Length: uint64(m.length),
		Disp:   int64(m.disp),
	}, true
}
