package disasm

import (
	"encoding/json"
	"errors"
	"testing"

	"csbind/internal/capstone"
)

func engine(t *testing.T, b capstone.Builder) *capstone.Engine {
	t.Helper()
	e, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestDecode(t *testing.T) {
	e := engine(t, capstone.NewBuilder(capstone.ArchX86, capstone.Mode64))
	code := []byte{0x31, 0xed, 0x49, 0x89, 0xd1}

	tests := []struct {
		name   string
		decode func(*capstone.Engine, []byte, uint64, uint64) (Stream, error)
	}{
		{name: "batch", decode: Decode},
		{name: "iter", decode: DecodeIter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := tt.decode(e, code, 0x4a7aa0, 0)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(s) != 2 {
				t.Fatalf("len = %d, want 2", len(s))
			}
			if s[0].Text() != "xor ebp, ebp" || s[1].Text() != "mov r9, rdx" {
				t.Errorf("texts = %q, %q", s[0].Text(), s[1].Text())
			}
			if s[1].VA != 0x4a7aa2 || s[0].End() != s[1].VA {
				t.Errorf("addresses %#x..%#x, %#x", s[0].VA, s[0].End(), s[1].VA)
			}
			if s.Size() != len(code) {
				t.Errorf("Size() = %d, want %d", s.Size(), len(code))
			}
			if s[0].Detail != nil {
				t.Error("detail present with detail off")
			}
			if in, ok := s.Find(0x4a7aa2); !ok || in.Op != "mov" {
				t.Errorf("Find(0x4a7aa2) = %+v, %v", in, ok)
			}
			if _, ok := s.Find(0x4a7aa1); ok {
				t.Error("Find matched the middle of an instruction")
			}

			one, err := tt.decode(e, code, 0x4a7aa0, 1)
			if err != nil || len(one) != 1 {
				t.Errorf("count 1: %d instructions, %v", len(one), err)
			}
		})
	}
}

func TestDecodeFailure(t *testing.T) {
	e := engine(t, capstone.NewBuilder(capstone.ArchX86, capstone.Mode64))
	for _, decode := range []func(*capstone.Engine, []byte, uint64, uint64) (Stream, error){Decode, DecodeIter} {
		if _, err := decode(e, []byte{0xff, 0xff}, 0, 0); !errors.Is(err, capstone.ErrNoInstructions) {
			t.Errorf("err = %v, want ErrNoInstructions", err)
		}
	}
}

func TestDecodeDetail(t *testing.T) {
	e := engine(t, capstone.NewBuilder(capstone.ArchX86, capstone.Mode64).Detail(true))

	// mov rax, qword ptr [rbp - 8]; call 0x1010
	s, err := Decode(e, []byte{0x48, 0x8b, 0x45, 0xf8, 0xe8, 0x07, 0x00, 0x00, 0x00}, 0x1000, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(s) != 2 {
		t.Fatalf("len = %d, want 2", len(s))
	}

	mov := s[0].Detail
	if mov == nil || len(mov.Operands) != 2 {
		t.Fatalf("mov detail = %+v", mov)
	}
	if op := mov.Operands[0]; op.Kind != KindReg || op.Reg != "rax" {
		t.Errorf("operand 0 = %+v", op)
	}
	if op := mov.Operands[1]; op.Kind != KindMem || op.Mem.Base != "rbp" || op.Mem.Index != "" || op.Mem.Disp != -8 {
		t.Errorf("operand 1 = %+v", op)
	}

	call := s[1].Detail
	if !call.InGroup("call") {
		t.Errorf("call groups = %v", call.Groups)
	}
	if op := call.Operands[0]; op.Kind != KindImm || op.Imm != 0x1010 {
		t.Errorf("call operand = %+v", op)
	}

	b, err := json.Marshal(s[1])
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back Inst
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.VA != 0x1004 || back.Detail == nil || !back.Detail.InGroup("call") {
		t.Errorf("round trip = %+v", back)
	}
}

func TestSkippedData(t *testing.T) {
	e := engine(t, capstone.NewBuilder(capstone.ArchX86, capstone.Mode64).Detail(true).SkipData(true))

	s, err := Decode(e, []byte{0xff, 0xff, 0x31, 0xed}, 0, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(s) != 3 {
		t.Fatalf("len = %d, want 3", len(s))
	}
	if !s[0].IsData() || s[0].Detail != nil {
		t.Errorf("first = %+v, want data without detail", s[0])
	}
	if s[2].IsData() || s[2].Op != "xor" {
		t.Errorf("last = %+v", s[2])
	}
}
