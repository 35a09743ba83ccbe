package disasm

import (
	"csbind/internal/capstone"
)

// OperandKind classifies an operand independently of the architecture.
type OperandKind string

const (
	KindReg   OperandKind = "reg"
	KindImm   OperandKind = "imm"
	KindMem   OperandKind = "mem"
	KindFP    OperandKind = "fp"
	KindOther OperandKind = "other"
)

// Operand is an owned, architecture independent operand.
type Operand struct {
	Kind OperandKind `json:"kind"`
	Reg  string      `json:"reg,omitempty"`
	Imm  int64       `json:"imm,omitempty"`
	FP   float64     `json:"fp,omitempty"`
	Mem  *Mem        `json:"mem,omitempty"`
}

// Mem is a memory reference. Empty register names mean the component is
// absent.
type Mem struct {
	Base  string `json:"base,omitempty"`
	Index string `json:"index,omitempty"`
	Scale int    `json:"scale,omitempty"`
	Disp  int64  `json:"disp"`
}

func operands(e *capstone.Engine, v capstone.ArchDetail) []Operand {
	var out []Operand
	reg := func(id uint) string {
		if id == 0 {
			return ""
		}
		return regName(e, id)
	}

	switch d := v.(type) {
	case *capstone.X86Detail:
		for _, op := range d.Operands().All() {
			switch op.Type() {
			case capstone.X86OpReg:
				out = append(out, Operand{Kind: KindReg, Reg: reg(op.Reg())})
			case capstone.X86OpImm:
				out = append(out, Operand{Kind: KindImm, Imm: op.Imm()})
			case capstone.X86OpMem:
				m, _ := op.Mem()
				out = append(out, Operand{Kind: KindMem, Mem: &Mem{Base: reg(m.Base), Index: reg(m.Index), Scale: m.Scale, Disp: m.Disp}})
			default:
				out = append(out, Operand{Kind: KindOther})
			}
		}
	case *capstone.ArmDetail:
		for _, op := range d.Operands().All() {
			switch op.Type() {
			case capstone.ArmOpReg, capstone.ArmOpSysReg:
				out = append(out, Operand{Kind: KindReg, Reg: reg(op.Reg())})
			case capstone.ArmOpImm, capstone.ArmOpCImm, capstone.ArmOpPImm:
				out = append(out, Operand{Kind: KindImm, Imm: int64(op.Imm())})
			case capstone.ArmOpFP:
				out = append(out, Operand{Kind: KindFP, FP: op.FP()})
			case capstone.ArmOpMem:
				m, _ := op.Mem()
				out = append(out, Operand{Kind: KindMem, Mem: &Mem{Base: reg(m.Base), Index: reg(m.Index), Scale: m.Scale, Disp: int64(m.Disp)}})
			default:
				out = append(out, Operand{Kind: KindOther})
			}
		}
	case *capstone.Arm64Detail:
		for _, op := range d.Operands().All() {
			switch op.Type() {
			case capstone.Arm64OpReg:
				out = append(out, Operand{Kind: KindReg, Reg: reg(op.Reg())})
			case capstone.Arm64OpImm, capstone.Arm64OpCImm:
				out = append(out, Operand{Kind: KindImm, Imm: op.Imm()})
			case capstone.Arm64OpFP:
				out = append(out, Operand{Kind: KindFP, FP: op.FP()})
			case capstone.Arm64OpMem:
				m, _ := op.Mem()
				out = append(out, Operand{Kind: KindMem, Mem: &Mem{Base: reg(m.Base), Index: reg(m.Index), Disp: int64(m.Disp)}})
			default:
				out = append(out, Operand{Kind: KindOther})
			}
		}
	case *capstone.MipsDetail:
		for _, op := range d.Operands().All() {
			switch op.Type() {
			case capstone.MipsOpReg:
				out = append(out, Operand{Kind: KindReg, Reg: reg(op.Reg())})
			case capstone.MipsOpImm:
				out = append(out, Operand{Kind: KindImm, Imm: op.Imm()})
			case capstone.MipsOpMem:
				m, _ := op.Mem()
				out = append(out, Operand{Kind: KindMem, Mem: &Mem{Base: reg(m.Base), Disp: m.Disp}})
			default:
				out = append(out, Operand{Kind: KindOther})
			}
		}
	case *capstone.PPCDetail:
		for _, op := range d.Operands().All() {
			switch op.Type() {
			case capstone.PPCOpReg:
				out = append(out, Operand{Kind: KindReg, Reg: reg(op.Reg())})
			case capstone.PPCOpImm:
				out = append(out, Operand{Kind: KindImm, Imm: op.Imm()})
			case capstone.PPCOpMem:
				m, _ := op.Mem()
				out = append(out, Operand{Kind: KindMem, Mem: &Mem{Base: reg(m.Base), Disp: int64(m.Disp)}})
			default:
				out = append(out, Operand{Kind: KindOther})
			}
		}
	case *capstone.SparcDetail:
		for _, op := range d.Operands().All() {
			switch op.Type() {
			case capstone.SparcOpReg:
				out = append(out, Operand{Kind: KindReg, Reg: reg(op.Reg())})
			case capstone.SparcOpImm:
				out = append(out, Operand{Kind: KindImm, Imm: op.Imm()})
			case capstone.SparcOpMem:
				m, _ := op.Mem()
				out = append(out, Operand{Kind: KindMem, Mem: &Mem{Base: reg(uint(m.Base)), Index: reg(uint(m.Index)), Disp: int64(m.Disp)}})
			default:
				out = append(out, Operand{Kind: KindOther})
			}
		}
	case *capstone.SysZDetail:
		for _, op := range d.Operands().All() {
			switch op.Type() {
			case capstone.SysZOpReg, capstone.SysZOpACReg:
				out = append(out, Operand{Kind: KindReg, Reg: reg(op.Reg())})
			case capstone.SysZOpImm:
				out = append(out, Operand{Kind: KindImm, Imm: op.Imm()})
			case capstone.SysZOpMem:
				m, _ := op.Mem()
				out = append(out, Operand{Kind: KindMem, Mem: &Mem{Base: reg(uint(m.Base)), Index: reg(uint(m.Index)), Disp: m.Disp}})
			default:
				out = append(out, Operand{Kind: KindOther})
			}
		}
	case *capstone.XCoreDetail:
		for _, op := range d.Operands().All() {
			switch op.Type() {
			case capstone.XCoreOpReg:
				out = append(out, Operand{Kind: KindReg, Reg: reg(op.Reg())})
			case capstone.XCoreOpImm:
				out = append(out, Operand{Kind: KindImm, Imm: int64(op.Imm())})
			case capstone.XCoreOpMem:
				m, _ := op.Mem()
				out = append(out, Operand{Kind: KindMem, Mem: &Mem{Base: reg(uint(m.Base)), Index: reg(uint(m.Index)), Disp: int64(m.Disp)}})
			default:
				out = append(out, Operand{Kind: KindOther})
			}
		}
	}
	return out
}
