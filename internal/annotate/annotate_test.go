package annotate

import (
	"testing"

	"csbind/internal/capstone"
	"csbind/internal/disasm"
)

type fakeImage struct {
	rodata  [2]uint64 // [start, end)
	strings map[uint64]string
	labels  map[uint64]string
}

func (f fakeImage) Label(va uint64) string { return f.labels[va] }

func (f fakeImage) IsReadOnlyData(va uint64) bool {
	return va >= f.rodata[0] && va < f.rodata[1]
}

func (f fakeImage) CString(va uint64, max int) (string, bool) {
	s, ok := f.strings[va]
	return s, ok && len(s) < max
}

func reg(name string) disasm.Operand { return disasm.Operand{Kind: disasm.KindReg, Reg: name} }
func imm(v int64) disasm.Operand     { return disasm.Operand{Kind: disasm.KindImm, Imm: v} }
func mem(base string, disp int64) disasm.Operand {
	return disasm.Operand{Kind: disasm.KindMem, Mem: &disasm.Mem{Base: base, Disp: disp}}
}

func inst(va uint64, size int, op, args string, ops ...disasm.Operand) disasm.Inst {
	return disasm.Inst{VA: va, Size: size, ID: 1, Op: op, Args: args, Detail: &disasm.Detail{Operands: ops}}
}

func TestEscapeUnprintable(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{name: "printable", in: []byte("hello, world"), want: "hello, world"},
		{name: "newline", in: []byte("a\nb"), want: `a\u000Ab`},
		{name: "invalid utf8", in: []byte{'a', 0xff}, want: `a\xFF`},
		{name: "unicode", in: []byte("héllo"), want: "héllo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeUnprintable(tt.in); got != tt.want {
				t.Errorf("EscapeUnprintable(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRefsX86(t *testing.T) {
	call := inst(0x100c, 5, "call", "qword ptr [rip + 0x100]", mem("rip", 0x100))
	call.Detail.Groups = []string{"call"}
	s := disasm.Stream{
		inst(0x1000, 7, "lea", "rdi, [rip + 0xff9]", reg("rdi"), mem("rip", 0xff9)),
		inst(0x1007, 5, "mov", "eax, dword ptr [0x3000]", reg("eax"), mem("", 0x3000)),
		call,
		inst(0x1011, 4, "mov", "rax, qword ptr [rbp - 8]", reg("rax"), mem("rbp", -8)),
	}

	refs := Refs(capstone.ArchX86, s)
	want := map[uint64]uint64{0x1000: 0x2000, 0x1007: 0x3000}
	if len(refs) != len(want) {
		t.Fatalf("Refs = %#v, want %#v", refs, want)
	}
	for va, target := range want {
		if refs[va] != target {
			t.Errorf("Refs[%#x] = %#x, want %#x", va, refs[va], target)
		}
	}
}

func TestRefsARM64(t *testing.T) {
	s := disasm.Stream{
		inst(0x400000, 4, "adrp", "x0, 0x4a0000", reg("x0"), imm(0x4a0000)),
		inst(0x400004, 4, "add", "x0, x0, #0x123", reg("x0"), reg("x0"), imm(0x123)),
		inst(0x400008, 4, "adrp", "x16, 0x4b0000", reg("x16"), imm(0x4b0000)),
		inst(0x40000c, 4, "ldr", "x17, [x16, #0xf80]", reg("x17"), mem("x16", 0xf80)),
		inst(0x400010, 4, "mov", "x16, x1", reg("x16"), reg("x1")),
		inst(0x400014, 4, "ldr", "x2, [x16, #8]", reg("x2"), mem("x16", 8)),
		inst(0x400018, 4, "adr", "x3, #0x400100", reg("x3"), imm(0x400100)),
		inst(0x40001c, 4, "ldr", "x4, #0x400200", reg("x4"), imm(0x400200)),
		inst(0x400020, 4, "adrp", "x5, 0x4c0000", reg("x5"), imm(0x4c0000)),
		inst(0x400024, 4, "add", "x5, x5, #1, lsl #12", reg("x5"), reg("x5"), imm(1)),
	}

	refs := Refs(capstone.ArchARM64, s)
	want := map[uint64]uint64{
		0x400004: 0x4a0123,
		0x40000c: 0x4b0f80,
		0x400018: 0x400100,
		0x40001c: 0x400200,
	}
	if len(refs) != len(want) {
		t.Fatalf("Refs = %#v, want %#v", refs, want)
	}
	for va, target := range want {
		if refs[va] != target {
			t.Errorf("Refs[%#x] = %#x, want %#x", va, refs[va], target)
		}
	}
}

func TestRefsOtherArch(t *testing.T) {
	if refs := Refs(capstone.ArchMIPS, disasm.Stream{inst(0, 4, "nop", "")}); len(refs) != 0 {
		t.Errorf("Refs(mips) = %v", refs)
	}
}

func TestComments(t *testing.T) {
	im := fakeImage{
		rodata:  [2]uint64{0x2000, 0x3000},
		strings: map[uint64]string{0x2000: "hello\n", 0x2100: "usage"},
		labels:  map[uint64]string{0x4000: "counter"},
	}
	s := disasm.Stream{
		inst(0x1000, 7, "lea", "rdi, [rip + 0xff9]", reg("rdi"), mem("rip", 0xff9)),
		inst(0x1007, 7, "mov", "eax, dword ptr [0x4000]", reg("eax"), mem("", 0x4000)),
		inst(0x100e, 5, "mov", "edi, 0x2100", reg("edi"), imm(0x2100)),
		inst(0x1013, 5, "mov", "edi, 0x4000", reg("edi"), imm(0x4000)),
		inst(0x1018, 5, "mov", "eax, 1", reg("eax"), imm(1)),
	}

	got := Comments(capstone.ArchX86, s, im)
	want := map[uint64]string{
		0x1000: `"hello\u000A"`,
		0x1007: "counter",
		0x100e: `"usage"`,
	}
	if len(got) != len(want) {
		t.Fatalf("Comments = %#v, want %#v", got, want)
	}
	for va, c := range want {
		if got[va] != c {
			t.Errorf("Comments[%#x] = %q, want %q", va, got[va], c)
		}
	}
}
