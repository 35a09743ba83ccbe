// Package annotate recovers the data an instruction refers to, so listings
// can show string literals and symbol names next to address arithmetic.
package annotate

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"csbind/internal/capstone"
	"csbind/internal/disasm"
)

// MaxStringLength bounds the bytes read for one string literal.
const MaxStringLength = 128

// Image resolves addresses of the binary a stream was decoded from.
type Image interface {
	Label(va uint64) string
	IsReadOnlyData(va uint64) bool
	CString(va uint64, max int) (string, bool)
}

// EscapeUnprintable keeps printable runes and escapes the rest as \uXXXX.
// Invalid UTF-8 is escaped as \xXX.
func EscapeUnprintable(b []byte) string {
	var sb strings.Builder
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		switch {
		case r == utf8.RuneError && size == 1:
			fmt.Fprintf(&sb, "\\x%02X", b[0])
		case unicode.IsPrint(r):
			sb.WriteRune(r)
		default:
			fmt.Fprintf(&sb, "\\u%04X", r)
		}
		b = b[size:]
	}
	return sb.String()
}

// Refs returns the address each instruction of s computes or loads from,
// keyed by instruction address. Instructions need detail. Calls and jumps
// are left out.
//
// x86 references are RIP relative or absolute memory operands. AArch64
// references are ADR, literal loads and ADRP pages completed by a later ADD
// or memory offset on the same register:
//
//	adrp x0, 0x4a0000
//	add  x0, x0, #0x123     ; 0x4a0123
func Refs(arch capstone.Arch, s disasm.Stream) map[uint64]uint64 {
	switch arch {
	case capstone.ArchX86:
		return x86Refs(s)
	case capstone.ArchARM64:
		return arm64Refs(s)
	}
	return nil
}

func isBranch(in disasm.Inst) bool {
	return in.Detail.InGroup("call") || in.Detail.InGroup("jump")
}

func x86Refs(s disasm.Stream) map[uint64]uint64 {
	refs := map[uint64]uint64{}
	for _, in := range s {
		if in.Detail == nil || isBranch(in) {
			continue
		}
		for _, op := range in.Detail.Operands {
			if op.Kind != disasm.KindMem || op.Mem == nil {
				continue
			}
			switch m := op.Mem; {
			case m.Base == "rip" && m.Index == "":
				refs[in.VA] = uint64(int64(in.End()) + m.Disp)
			case m.Base == "" && m.Index == "" && m.Disp > 0:
				refs[in.VA] = uint64(m.Disp)
			}
		}
	}
	return refs
}

func arm64Refs(s disasm.Stream) map[uint64]uint64 {
	refs := map[uint64]uint64{}
	pages := map[string]uint64{}
	for _, in := range s {
		if in.Detail == nil || isBranch(in) {
			continue
		}
		ops := in.Detail.Operands
		switch {
		case in.Op == "adrp" && len(ops) == 2 && ops[1].Kind == disasm.KindImm:
			pages[ops[0].Reg] = uint64(ops[1].Imm)
			continue
		case in.Op == "adr" && len(ops) == 2 && ops[1].Kind == disasm.KindImm:
			refs[in.VA] = uint64(ops[1].Imm)
		case strings.HasPrefix(in.Op, "ldr") && len(ops) == 2 && ops[1].Kind == disasm.KindImm:
			refs[in.VA] = uint64(ops[1].Imm)
		case in.Op == "add" && len(ops) == 3 && ops[1].Kind == disasm.KindReg && ops[2].Kind == disasm.KindImm &&
			!strings.Contains(in.Args, "lsl"):
			if page, ok := pages[ops[1].Reg]; ok {
				refs[in.VA] = page + uint64(ops[2].Imm)
			}
		default:
			for _, op := range ops {
				if op.Kind != disasm.KindMem || op.Mem == nil || op.Mem.Index != "" {
					continue
				}
				if page, ok := pages[op.Mem.Base]; ok {
					refs[in.VA] = uint64(int64(page) + op.Mem.Disp)
				}
			}
		}
		// The destination no longer holds the page.
		if len(ops) > 0 && ops[0].Kind == disasm.KindReg {
			delete(pages, ops[0].Reg)
		}
	}
	return refs
}

// Comments renders the references of s as listing comments: a quoted
// literal for strings in read-only data, otherwise the covering symbol.
// x86 immediates that point at read-only strings are included too, which
// catches non-PIE code such as "mov edi, 0x402004".
func Comments(arch capstone.Arch, s disasm.Stream, im Image) map[uint64]string {
	out := map[uint64]string{}
	for va, target := range Refs(arch, s) {
		if c := describe(im, target, true); c != "" {
			out[va] = c
		}
	}
	if arch != capstone.ArchX86 {
		return out
	}
	for _, in := range s {
		if _, ok := out[in.VA]; ok || in.Detail == nil || isBranch(in) {
			continue
		}
		for _, op := range in.Detail.Operands {
			if op.Kind != disasm.KindImm || op.Imm <= 0 {
				continue
			}
			if c := describe(im, uint64(op.Imm), false); c != "" {
				out[in.VA] = c
				break
			}
		}
	}
	return out
}

// describe names target. Without withLabel only string literals qualify.
func describe(im Image, target uint64, withLabel bool) string {
	if im.IsReadOnlyData(target) {
		if str, ok := im.CString(target, MaxStringLength); ok && str != "" {
			return `"` + EscapeUnprintable([]byte(str)) + `"`
		}
	}
	if !withLabel {
		return ""
	}
	return im.Label(target)
}
