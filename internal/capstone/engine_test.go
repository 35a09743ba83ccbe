package capstone

import (
	"errors"
	"testing"
)

// xor ebp, ebp; mov r9, rdx
var x86Code = []byte{0x31, 0xed, 0x49, 0x89, 0xd1}

const x86Base = 0x4a7aa0

func openX86(t *testing.T) *Engine {
	t.Helper()
	e, err := Open(ArchX86, Mode64)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestOpenSupportedArchitectures(t *testing.T) {
	tests := []struct {
		name string
		arch Arch
		mode Mode
	}{
		{name: "arm", arch: ArchARM, mode: ModeARM},
		{name: "thumb", arch: ArchARM, mode: ModeThumb},
		{name: "arm64", arch: ArchARM64, mode: ModeLittleEndian},
		{name: "mips32", arch: ArchMIPS, mode: ModeMIPS32 | ModeBigEndian},
		{name: "x86-16", arch: ArchX86, mode: Mode16},
		{name: "x86-32", arch: ArchX86, mode: Mode32},
		{name: "x86-64", arch: ArchX86, mode: Mode64},
		{name: "ppc64", arch: ArchPPC, mode: Mode64 | ModeBigEndian},
		{name: "sparc", arch: ArchSPARC, mode: ModeBigEndian},
		{name: "sysz", arch: ArchSysZ, mode: ModeBigEndian},
		{name: "xcore", arch: ArchXCore, mode: ModeBigEndian},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !SupportArch(tt.arch) {
				t.Skipf("%v not compiled into the library", tt.arch)
			}
			e, err := Open(tt.arch, tt.mode)
			if err != nil {
				t.Fatalf("Open(%v, %#x): %v", tt.arch, tt.mode, err)
			}
			if e.Arch() != tt.arch || e.Mode() != tt.mode {
				t.Errorf("engine reports %v/%#x", e.Arch(), e.Mode())
			}
			if err := e.Close(); err != nil {
				t.Errorf("Close: %v", err)
			}
		})
	}
}

func TestOpenInvalidArch(t *testing.T) {
	e, err := Open(Arch(999), Mode64)
	if err == nil {
		e.Close()
		t.Fatal("Open succeeded for an invalid architecture")
	}
	if !errors.Is(err, ErrArch) {
		t.Errorf("err = %v, want ErrArch", err)
	}
}

func TestDisasmX86(t *testing.T) {
	e := openX86(t)

	insns, err := e.Disasm(x86Code, x86Base, 0)
	if err != nil {
		t.Fatalf("Disasm: %v", err)
	}
	defer insns.Close()

	want := []struct {
		address  uint64
		size     int
		mnemonic string
		opStr    string
		id       uint
	}{
		{address: 0x4a7aa0, size: 2, mnemonic: "xor", opStr: "ebp, ebp", id: X86InsXor},
		{address: 0x4a7aa2, size: 3, mnemonic: "mov", opStr: "r9, rdx", id: X86InsMov},
	}
	if insns.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", insns.Len(), len(want))
	}
	if insns.Arch() != ArchX86 {
		t.Errorf("Arch() = %v", insns.Arch())
	}
	for i, insn := range insns.All() {
		w := want[i]
		if insn.Address() != w.address {
			t.Errorf("insn %d address = %#x, want %#x", i, insn.Address(), w.address)
		}
		if insn.Size() != w.size || len(insn.Bytes()) != w.size {
			t.Errorf("insn %d size = %d (%d bytes), want %d", i, insn.Size(), len(insn.Bytes()), w.size)
		}
		if insn.Mnemonic() != w.mnemonic || insn.OpStr() != w.opStr {
			t.Errorf("insn %d = %q %q, want %q %q", i, insn.Mnemonic(), insn.OpStr(), w.mnemonic, w.opStr)
		}
		if insn.ID() != w.id {
			t.Errorf("insn %d id = %d, want %d", i, insn.ID(), w.id)
		}
		if _, ok := insn.Detail(); ok {
			t.Errorf("insn %d has detail while detail mode is off", i)
		}
	}
}

func TestDisasmCount(t *testing.T) {
	e := openX86(t)

	tests := []struct {
		name  string
		count uint64
		want  int
	}{
		{name: "unbounded", count: 0, want: 2},
		{name: "one", count: 1, want: 1},
		{name: "more than available", count: 10, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			insns, err := e.Disasm(x86Code, x86Base, tt.count)
			if err != nil {
				t.Fatalf("Disasm: %v", err)
			}
			defer insns.Close()
			if insns.Len() != tt.want {
				t.Errorf("Len() = %d, want %d", insns.Len(), tt.want)
			}
		})
	}
}

func TestDisasmNoInstructions(t *testing.T) {
	e := openX86(t)

	tests := []struct {
		name string
		code []byte
	}{
		{name: "empty", code: nil},
		{name: "truncated", code: []byte{0x0f}},
		{name: "invalid opcode", code: []byte{0xff, 0xff}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			insns, err := e.Disasm(tt.code, 0x1000, 0)
			if err == nil {
				insns.Close()
				t.Fatalf("Disasm(% x) succeeded", tt.code)
			}
			if !errors.Is(err, ErrNoInstructions) {
				t.Errorf("err = %v, want ErrNoInstructions", err)
			}
			var de *DecodeError
			if !errors.As(err, &de) || de.Address != 0x1000 {
				t.Errorf("err = %#v, want *DecodeError at 0x1000", err)
			}
		})
	}
}

func TestDisasmStopsAtInvalidBytes(t *testing.T) {
	e := openX86(t)

	code := []byte{0x31, 0xed, 0xff, 0xff}
	insns, err := e.DisasmAll(code, 0)
	if err != nil {
		t.Fatalf("DisasmAll: %v", err)
	}
	defer insns.Close()
	if insns.Len() != 1 {
		t.Errorf("Len() = %d, want 1", insns.Len())
	}
}

func TestNames(t *testing.T) {
	e := openX86(t)

	if name, ok := e.RegName(X86RegRAX); !ok || name != "rax" {
		t.Errorf("RegName(RAX) = %q, %v", name, ok)
	}
	if name, ok := e.InsnName(X86InsMov); !ok || name != "mov" {
		t.Errorf("InsnName(MOV) = %q, %v", name, ok)
	}
	if name, ok := e.GroupName(GrpJump); !ok || name != "jump" {
		t.Errorf("GroupName(JUMP) = %q, %v", name, ok)
	}
	if _, ok := e.RegName(100000); ok {
		t.Error("RegName accepted an unknown register")
	}
}

func TestSetOptionSyntax(t *testing.T) {
	e := openX86(t)

	if err := e.SetOption(OptSyntax, OptSyntaxATT); err != nil {
		t.Fatalf("SetOption(ATT): %v", err)
	}
	insns, err := e.Disasm(x86Code, x86Base, 1)
	if err != nil {
		t.Fatalf("Disasm: %v", err)
	}
	defer insns.Close()
	if got := insns.At(0).OpStr(); got != "%ebp, %ebp" {
		t.Errorf("AT&T operands = %q", got)
	}
}

func TestSetOptionInvalid(t *testing.T) {
	e := openX86(t)
	if err := e.SetOption(OptionType(999), OptOn); !errors.Is(err, ErrOption) {
		t.Errorf("err = %v, want ErrOption", err)
	}
}

func TestSetMnemonic(t *testing.T) {
	e := openX86(t)

	if err := e.SetMnemonic(X86InsMov, "copy"); err != nil {
		t.Fatalf("SetMnemonic: %v", err)
	}
	insns, err := e.DisasmAll(x86Code, x86Base)
	if err != nil {
		t.Fatalf("DisasmAll: %v", err)
	}
	defer insns.Close()
	if got := insns.At(1).Mnemonic(); got != "copy" {
		t.Errorf("mnemonic = %q, want copy", got)
	}
}

func TestDetailQueries(t *testing.T) {
	e := openX86(t)
	if err := e.SetOption(OptDetail, OptOn); err != nil {
		t.Fatalf("SetOption(detail): %v", err)
	}
	if !e.Detail() {
		t.Fatal("Detail() = false after switching it on")
	}

	insns, err := e.DisasmAll(x86Code, x86Base)
	if err != nil {
		t.Fatalf("DisasmAll: %v", err)
	}
	defer insns.Close()

	xor := insns.At(0)
	if !e.RegWrite(xor, X86RegEFLAGS) {
		t.Error("xor does not write EFLAGS")
	}
	if e.RegRead(xor, X86RegEFLAGS) {
		t.Error("xor reads EFLAGS")
	}
	if got := e.OpCount(xor, X86OpReg); got != 2 {
		t.Errorf("OpCount(reg) = %d, want 2", got)
	}
	if got := e.OpIndex(xor, X86OpReg, 2); got != 1 {
		t.Errorf("OpIndex(reg, 2) = %d, want 1", got)
	}

	_, write, err := e.RegsAccess(insns.At(1))
	if err != nil {
		t.Fatalf("RegsAccess: %v", err)
	}
	found := false
	for _, r := range write {
		if r == X86RegR9 {
			found = true
		}
	}
	if !found {
		t.Errorf("mov writes %v, want r9 among them", write)
	}
}

func TestClosedEngine(t *testing.T) {
	e, err := Open(ArchX86, Mode32)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := e.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close = %v, want ErrClosed", err)
	}
	if _, err := e.Disasm(x86Code, 0, 0); !errors.Is(err, ErrClosed) {
		t.Errorf("Disasm after Close = %v, want ErrClosed", err)
	}
	if err := e.SetOption(OptDetail, OptOn); !errors.Is(err, ErrClosed) {
		t.Errorf("SetOption after Close = %v, want ErrClosed", err)
	}
	if _, ok := e.RegName(X86RegEAX); ok {
		t.Error("RegName answered after Close")
	}
}

func TestVersion(t *testing.T) {
	major, _ := Version()
	if major < 4 {
		t.Errorf("major version = %d, want at least 4", major)
	}
	if !SupportArch(ArchX86) {
		t.Error("x86 not supported")
	}
}
