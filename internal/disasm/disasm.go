// Package disasm defines an owned instruction representation copied out of
// engine buffers, so listings can outlive the Instructions they came from.
package disasm

import (
	"fmt"
	"slices"
	"strings"

	"csbind/internal/capstone"
)

// Inst is a decoded instruction that owns its data.
type Inst struct {
	VA     uint64  `json:"va"`               // virtual address of instruction
	Size   int     `json:"size"`             // encoded length in bytes
	ID     uint    `json:"id"`               // architecture specific instruction id, 0 for skipped data
	Op     string  `json:"op"`               // mnemonic
	Args   string  `json:"args,omitempty"`   // operand text
	Raw    []byte  `json:"raw"`              // raw encoding
	Detail *Detail `json:"detail,omitempty"` // nil unless decoded with detail on
}

// Text is the formatted "op args" form.
func (i Inst) Text() string {
	if i.Args == "" {
		return i.Op
	}
	return i.Op + " " + i.Args
}

// IsData reports whether the instruction is data skipped in skip-data mode.
func (i Inst) IsData() bool { return i.ID == 0 }

// End is the address just past the instruction.
func (i Inst) End() uint64 { return i.VA + uint64(i.Size) }

// Detail is the architecture independent part of an instruction's detail
// record plus its operands, with every id resolved to a name.
type Detail struct {
	RegsRead  []string  `json:"regs_read,omitempty"`
	RegsWrite []string  `json:"regs_write,omitempty"`
	Groups    []string  `json:"groups,omitempty"`
	Operands  []Operand `json:"operands,omitempty"`
}

// InGroup reports whether the instruction belongs to the named group.
func (d *Detail) InGroup(name string) bool {
	return d != nil && slices.Contains(d.Groups, name)
}

// Stream is a linear sequence of instructions.
type Stream []Inst

// Find returns the instruction starting at va.
func (s Stream) Find(va uint64) (Inst, bool) {
	i, ok := slices.BinarySearchFunc(s, va, func(in Inst, va uint64) int {
		switch {
		case in.VA < va:
			return -1
		case in.VA > va:
			return 1
		}
		return 0
	})
	if !ok {
		return Inst{}, false
	}
	return s[i], true
}

// Size is the number of bytes covered by the stream.
func (s Stream) Size() int {
	n := 0
	for _, in := range s {
		n += in.Size
	}
	return n
}

// String renders one instruction per line as "va: op args".
func (s Stream) String() string {
	var b strings.Builder
	for _, in := range s {
		fmt.Fprintf(&b, "%#x:\t%s\n", in.VA, in.Text())
	}
	return b.String()
}

// Convert copies insn out of engine memory. e resolves register and group
// names for the detail record.
func Convert(e *capstone.Engine, insn capstone.Instruction) Inst {
	in := Inst{
		VA:   insn.Address(),
		Size: insn.Size(),
		ID:   insn.ID(),
		Op:   insn.Mnemonic(),
		Args: insn.OpStr(),
		Raw:  insn.Bytes(),
	}
	if d, ok := insn.Detail(); ok && !in.IsData() {
		in.Detail = convertDetail(e, d)
	}
	return in
}

// From converts every instruction of insns.
func From(e *capstone.Engine, insns *capstone.Instructions) Stream {
	s := make(Stream, 0, insns.Len())
	for _, insn := range insns.All() {
		s = append(s, Convert(e, insn))
	}
	return s
}

// Decode disassembles code at va into an owned stream, releasing the native
// instructions before returning. count bounds the number of instructions; 0
// decodes as much as possible.
func Decode(e *capstone.Engine, code []byte, va uint64, count uint64) (Stream, error) {
	insns, err := e.Disasm(code, va, count)
	if err != nil {
		return nil, err
	}
	defer insns.Close()
	return From(e, insns), nil
}

// DecodeIter is Decode through the engine's single-slot iterator; memory
// held by the engine stays constant whatever the size of code.
func DecodeIter(e *capstone.Engine, code []byte, va uint64, count uint64) (Stream, error) {
	var s Stream
	for insn := range e.DisasmIter(code, va) {
		s = append(s, Convert(e, insn))
		if count != 0 && uint64(len(s)) == count {
			break
		}
	}
	if len(s) == 0 {
		return nil, &capstone.DecodeError{Address: va, Code: errnoOf(e.LastError())}
	}
	return s, nil
}

func errnoOf(err error) capstone.Errno {
	if code, ok := err.(capstone.Errno); ok {
		return code
	}
	return capstone.ErrOK
}

func convertDetail(e *capstone.Engine, d capstone.Detail) *Detail {
	out := &Detail{}
	for r := range d.RegsRead().Values() {
		out.RegsRead = append(out.RegsRead, regName(e, uint(r)))
	}
	for r := range d.RegsWrite().Values() {
		out.RegsWrite = append(out.RegsWrite, regName(e, uint(r)))
	}
	for g := range d.Groups().Values() {
		name, ok := e.GroupName(uint(g))
		if !ok {
			name = fmt.Sprintf("group%d", g)
		}
		out.Groups = append(out.Groups, name)
	}
	out.Operands = operands(e, d.Variant())
	return out
}

func regName(e *capstone.Engine, id uint) string {
	if name, ok := e.RegName(id); ok {
		return name
	}
	return fmt.Sprintf("reg%d", id)
}
