package capstone

// #include <capstone/capstone.h>
import "C"

// PowerPC operand types.
const (
	PPCOpInvalid = C.PPC_OP_INVALID
	PPCOpReg     = C.PPC_OP_REG
	PPCOpImm     = C.PPC_OP_IMM
	PPCOpMem     = C.PPC_OP_MEM
	PPCOpCRX     = C.PPC_OP_CRX // condition register field
)

// PPCDetail is the PowerPC member of the detail union.
type PPCDetail struct {
	raw   *C.cs_ppc
	lease *lease
}

func (*PPCDetail) Arch() Arch    { return ArchPPC }
func (*PPCDetail) isArchDetail() {}

// BC is the branch code, BH the branch hint.
func (p *PPCDetail) BC() int         { return int(load(&p.raw.bc, p.lease)) }
func (p *PPCDetail) BH() int         { return int(load(&p.raw.bh, p.lease)) }
func (p *PPCDetail) UpdateCR0() bool { return bool(load(&p.raw.update_cr0, p.lease)) }

// Operands is bounded by op_count.
func (p *PPCDetail) Operands() View[PPCOperand] {
	return operandView(p.raw.operands[:], &p.raw.op_count, p.lease, func(o operand[C.cs_ppc_op]) PPCOperand {
		return PPCOperand{o}
	})
}

// OpCount returns the number of operands of the given PPCOp* type.
func (p *PPCDetail) OpCount(typ uint) int {
	return countOps(p.Operands(), typ, PPCOperand.Type)
}

// PPCOperand is one PowerPC operand, borrowed from the detail record.
type PPCOperand struct {
	operand[C.cs_ppc_op]
}

type PPCMemOperand struct {
	Base uint
	Disp int32
}

type PPCCRXOperand struct {
	Scale uint
	Reg   uint
	Cond  uint
}

func (o PPCOperand) Type() uint { return uint(o.load()._type) }

func (o PPCOperand) Reg() uint {
	op := o.load()
	if uint(op._type) != PPCOpReg {
		return 0
	}
	return uint(unionField[C.uint](&op.anon0[0]))
}

func (o PPCOperand) Imm() int64 {
	op := o.load()
	if uint(op._type) != PPCOpImm {
		return 0
	}
	return int64(unionField[C.int64_t](&op.anon0[0]))
}

func (o PPCOperand) Mem() (PPCMemOperand, bool) {
	op := o.load()
	if uint(op._type) != PPCOpMem {
		return PPCMemOperand{}, false
	}
	m := unionField[C.ppc_op_mem](&op.anon0[0])
	return PPCMemOperand{Base: uint(m.base), Disp: int32(m.disp)}, true
}

func (o PPCOperand) CRX() (PPCCRXOperand, bool) {
	op := o.load()
	if uint(op._type) != PPCOpCRX {
		return PPCCRXOperand{}, false
	}
	c := unionField[C.ppc_op_crx](&op.anon0[0])
	return PPCCRXOperand{Scale: uint(c.scale), Reg: uint(c.reg), Cond: uint(c.cond)}, true
}
