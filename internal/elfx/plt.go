package elfx

import (
	"debug/elf"

	"github.com/ianlancetaylor/demangle"

	"csbind/internal/capstone"
	"csbind/internal/disasm"
)

const pltStubSize = 16

// ResolvePLT names the PLT stubs of x86-64 and AArch64 binaries after the
// symbols their GOT slots are relocated against, adding "name@plt" entries
// to Syms. It decodes every stub with e, which must match Target and have
// detail enabled. It returns the number of stubs named.
func (im *Image) ResolvePLT(e *capstone.Engine) int {
	if im.PLT.Size == 0 || !e.Detail() {
		return 0
	}
	gotNames := im.pltRelocations()
	if len(gotNames) == 0 {
		return 0
	}

	named := 0
	for va := im.PLT.VA; va+pltStubSize <= im.PLT.VA+im.PLT.Size; va += pltStubSize {
		stub, ok := im.SliceVA(va, pltStubSize)
		if !ok {
			break
		}
		s, err := disasm.Decode(e, stub, va, 0)
		if err != nil {
			continue
		}
		got, ok := stubGOT(e.Arch(), s)
		if !ok {
			continue
		}
		name, ok := gotNames[got]
		if !ok {
			continue
		}
		im.Syms = append(im.Syms, Sym{
			Name: demangle.Filter(name, demangle.NoClones) + "@plt",
			Raw:  name + "@plt",
			Addr: va,
			Size: pltStubSize,
			PLT:  true,
		})
		named++
	}
	if named > 0 {
		im.sortSymbols()
	}
	return named
}

// stubGOT extracts the GOT slot a PLT stub jumps through.
//
// x86-64:
//
//	jmp qword ptr [rip + disp]      ; possibly after endbr64 / bnd
//
// AArch64:
//
//	adrp x16, <page>
//	ldr  x17, [x16, #offset]
//	add  x16, x16, #offset
//	br   x17
func stubGOT(arch capstone.Arch, s disasm.Stream) (uint64, bool) {
	switch arch {
	case capstone.ArchX86:
		for _, in := range s {
			if in.Op != "jmp" || in.Detail == nil || len(in.Detail.Operands) != 1 {
				continue
			}
			op := in.Detail.Operands[0]
			if op.Kind == disasm.KindMem && op.Mem.Base == "rip" {
				return uint64(int64(in.End()) + op.Mem.Disp), true
			}
		}
	case capstone.ArchARM64:
		if len(s) < 2 || s[0].Op != "adrp" || s[1].Op != "ldr" || s[0].Detail == nil || s[1].Detail == nil {
			return 0, false
		}
		adrp, ldr := s[0].Detail.Operands, s[1].Detail.Operands
		if len(adrp) != 2 || len(ldr) != 2 || adrp[1].Kind != disasm.KindImm || ldr[1].Kind != disasm.KindMem {
			return 0, false
		}
		if ldr[1].Mem.Base != adrp[0].Reg {
			return 0, false
		}
		return uint64(adrp[1].Imm + ldr[1].Mem.Disp), true
	}
	return 0, false
}

// pltRelocations maps GOT slot addresses to the names of the dynamic
// symbols relocated into them. Only 64-bit RELA tables are read.
func (im *Image) pltRelocations() map[uint64]string {
	sec := im.File.Section(".rela.plt")
	if sec == nil || im.File.Class != elf.ELFCLASS64 {
		return nil
	}
	data, err := sec.Data()
	if err != nil {
		return nil
	}
	dynsyms, err := im.File.DynamicSymbols()
	if err != nil {
		return nil
	}

	order := im.File.ByteOrder
	const entrySize = 24 // r_offset, r_info, r_addend
	out := map[uint64]string{}
	for off := 0; off+entrySize <= len(data); off += entrySize {
		rOffset := order.Uint64(data[off:])
		rInfo := order.Uint64(data[off+8:])
		// DynamicSymbols drops the null symbol at index 0.
		idx := elf.R_SYM64(rInfo)
		if idx == 0 || int(idx) > len(dynsyms) {
			continue
		}
		out[rOffset] = dynsyms[idx-1].Name
	}
	return out
}
