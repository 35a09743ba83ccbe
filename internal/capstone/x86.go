package capstone

// #include <capstone/capstone.h>
import "C"

// X86 operand types.
const (
	X86OpInvalid = C.X86_OP_INVALID
	X86OpReg     = C.X86_OP_REG
	X86OpImm     = C.X86_OP_IMM
	X86OpMem     = C.X86_OP_MEM
)

// Frequently used x86 registers. Any other id can be named with
// Engine.RegName.
const (
	X86RegInvalid = C.X86_REG_INVALID
	X86RegEAX     = C.X86_REG_EAX
	X86RegEBP     = C.X86_REG_EBP
	X86RegESP     = C.X86_REG_ESP
	X86RegEFLAGS  = C.X86_REG_EFLAGS
	X86RegRAX     = C.X86_REG_RAX
	X86RegRBX     = C.X86_REG_RBX
	X86RegRCX     = C.X86_REG_RCX
	X86RegRDX     = C.X86_REG_RDX
	X86RegRSI     = C.X86_REG_RSI
	X86RegRDI     = C.X86_REG_RDI
	X86RegRBP     = C.X86_REG_RBP
	X86RegRSP     = C.X86_REG_RSP
	X86RegRIP     = C.X86_REG_RIP
	X86RegR8      = C.X86_REG_R8
	X86RegR9      = C.X86_REG_R9
)

// Frequently used x86 instruction ids.
const (
	X86InsCall = C.X86_INS_CALL
	X86InsMov  = C.X86_INS_MOV
	X86InsRet  = C.X86_INS_RET
	X86InsXor  = C.X86_INS_XOR
)

// X86Detail is the x86 member of the detail union.
type X86Detail struct {
	raw   *C.cs_x86
	lease *lease
}

func (*X86Detail) Arch() Arch    { return ArchX86 }
func (*X86Detail) isArchDetail() {}

// Prefix holds up to four prefix bytes, 0 where absent.
func (x *X86Detail) Prefix() [4]uint8 {
	raw := load(&x.raw.prefix, x.lease)
	var p [4]uint8
	for i := range p {
		p[i] = uint8(raw[i])
	}
	return p
}

// Opcode holds the opcode bytes, padded with 0.
func (x *X86Detail) Opcode() [4]uint8 {
	raw := load(&x.raw.opcode, x.lease)
	var p [4]uint8
	for i := range p {
		p[i] = uint8(raw[i])
	}
	return p
}

func (x *X86Detail) Rex() uint8      { return uint8(load(&x.raw.rex, x.lease)) }
func (x *X86Detail) AddrSize() uint8 { return uint8(load(&x.raw.addr_size, x.lease)) }
func (x *X86Detail) ModRM() uint8    { return uint8(load(&x.raw.modrm, x.lease)) }
func (x *X86Detail) SIB() uint8      { return uint8(load(&x.raw.sib, x.lease)) }
func (x *X86Detail) Disp() int64     { return int64(load(&x.raw.disp, x.lease)) }
func (x *X86Detail) SibIndex() uint  { return uint(load(&x.raw.sib_index, x.lease)) }
func (x *X86Detail) SibScale() int8  { return int8(load(&x.raw.sib_scale, x.lease)) }
func (x *X86Detail) SibBase() uint   { return uint(load(&x.raw.sib_base, x.lease)) }

// Operands is bounded by op_count.
func (x *X86Detail) Operands() View[X86Operand] {
	return operandView(x.raw.operands[:], &x.raw.op_count, x.lease, func(o operand[C.cs_x86_op]) X86Operand {
		return X86Operand{o}
	})
}

// OpCount returns the number of operands of the given X86Op* type.
func (x *X86Detail) OpCount(typ uint) int {
	return countOps(x.Operands(), typ, X86Operand.Type)
}

// X86Operand is one x86 operand, borrowed from the detail record. It is
// valid while the instructions it came from are open.
type X86Operand struct {
	operand[C.cs_x86_op]
}

// X86MemOperand is a copied x86 memory operand.
type X86MemOperand struct {
	Segment uint
	Base    uint
	Index   uint
	Scale   int
	Disp    int64
}

// Type is one of the X86Op* constants and selects which value accessor is
// meaningful.
func (o X86Operand) Type() uint { return uint(o.load()._type) }

// Reg returns the register of an X86OpReg operand, X86RegInvalid otherwise.
func (o X86Operand) Reg() uint {
	op := o.load()
	if uint(op._type) != X86OpReg {
		return X86RegInvalid
	}
	return uint(unionField[C.x86_reg](&op.anon0[0]))
}

// Imm returns the value of an X86OpImm operand, 0 otherwise.
func (o X86Operand) Imm() int64 {
	op := o.load()
	if uint(op._type) != X86OpImm {
		return 0
	}
	return int64(unionField[C.int64_t](&op.anon0[0]))
}

// Mem returns the memory reference of an X86OpMem operand.
func (o X86Operand) Mem() (X86MemOperand, bool) {
	op := o.load()
	if uint(op._type) != X86OpMem {
		return X86MemOperand{}, false
	}
	m := unionField[C.x86_op_mem](&op.anon0[0])
	return X86MemOperand{
		Segment: uint(m.segment),
		Base:    uint(m.base),
		Index:   uint(m.index),
		Scale:   int(m.scale),
		Disp:    int64(m.disp),
	}, true
}

// Size is the operand size in bytes.
func (o X86Operand) Size() uint8 { return uint8(o.load().size) }

// Access is a combination of AcRead and AcWrite.
func (o X86Operand) Access() uint8 { return uint8(o.load().access) }
