package capstone

// #include <capstone/capstone.h>
import "C"

const (
	XCoreOpInvalid = C.XCORE_OP_INVALID
	XCoreOpReg     = C.XCORE_OP_REG
	XCoreOpImm     = C.XCORE_OP_IMM
	XCoreOpMem     = C.XCORE_OP_MEM
)

type XCoreDetail struct {
	raw   *C.cs_xcore
	lease *lease
}

func (*XCoreDetail) Arch() Arch    { return ArchXCore }
func (*XCoreDetail) isArchDetail() {}

func (x *XCoreDetail) Operands() View[XCoreOperand] {
	return operandView(x.raw.operands[:], &x.raw.op_count, x.lease, func(o operand[C.cs_xcore_op]) XCoreOperand {
		return XCoreOperand{o}
	})
}

func (x *XCoreDetail) OpCount(typ uint) int {
	return countOps(x.Operands(), typ, XCoreOperand.Type)
}

type XCoreOperand struct {
	operand[C.cs_xcore_op]
}

type XCoreMemOperand struct {
	Base   uint8
	Index  uint8
	Disp   int32
	Direct int
}

func (o XCoreOperand) Type() uint { return uint(o.load()._type) }

func (o XCoreOperand) Reg() uint {
	op := o.load()
	if uint(op._type) != XCoreOpReg {
		return 0
	}
	return uint(unionField[C.uint](&op.anon0[0]))
}

func (o XCoreOperand) Imm() int32 {
	op := o.load()
	if uint(op._type) != XCoreOpImm {
		return 0
	}
	return int32(unionField[C.int32_t](&op.anon0[0]))
}

func (o XCoreOperand) Mem() (XCoreMemOperand, bool) {
	op := o.load()
	if uint(op._type) != XCoreOpMem {
		return XCoreMemOperand{}, false
	}
	m := unionField[C.xcore_op_mem](&op.anon0[0])
	return XCoreMemOperand{
		Base:   uint8(m.base),
		Index:  uint8(m.index),
		Disp:   int32(m.disp),
		Direct: int(m.direct),
	}, true
}
