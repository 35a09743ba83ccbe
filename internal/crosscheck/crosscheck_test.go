package crosscheck

import (
	"errors"
	"testing"

	"csbind/internal/capstone"
	"csbind/internal/disasm"
)

func decode(t *testing.T, b capstone.Builder, code []byte) disasm.Stream {
	t.Helper()
	var s disasm.Stream
	err := b.Do(func(e *capstone.Engine) error {
		var err error
		s, err = disasm.Decode(e, code, 0x1000, 0)
		return err
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return s
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name string
		arch capstone.Arch
		mode capstone.Mode
		code []byte
		want int
	}{
		{
			name: "x86-64",
			arch: capstone.ArchX86, mode: capstone.Mode64,
			code: []byte{0x31, 0xed, 0x49, 0x89, 0xd1, 0xc3}, // xor ebp, ebp; mov r9, rdx; ret
			want: 3,
		},
		{
			name: "x86-32",
			arch: capstone.ArchX86, mode: capstone.Mode32,
			code: []byte{0x55, 0x89, 0xe5}, // push ebp; mov ebp, esp
			want: 2,
		},
		{
			name: "arm64",
			arch: capstone.ArchARM64, mode: capstone.ModeLittleEndian,
			code: []byte{0xc0, 0x03, 0x5f, 0xd6}, // ret
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := decode(t, capstone.NewBuilder(tt.arch, tt.mode), tt.code)
			r, err := Check(tt.arch, tt.mode, tt.code, 0x1000, s)
			if err != nil {
				t.Fatalf("Check: %v", err)
			}
			if r.Checked != tt.want {
				t.Errorf("Checked = %d, want %d", r.Checked, tt.want)
			}
			if len(r.Mismatches) != 0 {
				t.Errorf("mismatches: %v", r.Mismatches)
			}
		})
	}
}

func TestCheckSkipsData(t *testing.T) {
	code := []byte{0xff, 0xff, 0xc3}
	s := decode(t, capstone.NewBuilder(capstone.ArchX86, capstone.Mode64).SkipData(true), code)
	r, err := Check(capstone.ArchX86, capstone.Mode64, code, 0x1000, s)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if r.Skipped != 2 || r.Checked != 1 {
		t.Errorf("report = %+v", r)
	}
}

func TestCheckDetectsLengthMismatch(t *testing.T) {
	// xor ebp, ebp; ret
	code := []byte{0x31, 0xed, 0xc3}

	tests := []struct {
		name string
		base uint64
		in   disasm.Inst
		want Kind
	}{
		{
			name: "engine shorter",
			base: 0x1000,
			in:   disasm.Inst{VA: 0x1000, Size: 1, ID: 1, Op: "xor", Raw: []byte{0x31}},
			want: KindLength,
		},
		{
			name: "engine longer",
			base: 0x1000,
			in:   disasm.Inst{VA: 0x1000, Size: 3, ID: 1, Op: "xor", Args: "ebp, ebp", Raw: []byte{0x31, 0xed, 0xc3}},
			want: KindLength,
		},
		{
			name: "outside buffer",
			base: 0x2000,
			in:   disasm.Inst{VA: 0x1000, Size: 1, ID: 1, Op: "xor", Raw: []byte{0x31}},
			want: KindRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Check(capstone.ArchX86, capstone.Mode64, code, tt.base, disasm.Stream{tt.in})
			if err != nil {
				t.Fatalf("Check: %v", err)
			}
			if len(r.Mismatches) != 1 || r.Mismatches[0].Kind != tt.want {
				t.Fatalf("report = %+v, want one %s mismatch", r, tt.want)
			}
			want := 0
			if tt.want == KindLength {
				want = 1
			}
			if got := r.Lengths(); got != want {
				t.Errorf("Lengths() = %d, want %d", got, want)
			}
		})
	}
}

func TestCheckNoReference(t *testing.T) {
	if _, err := Check(capstone.ArchMIPS, capstone.ModeMIPS32, nil, 0, nil); !errors.Is(err, ErrNoReference) {
		t.Errorf("err = %v, want ErrNoReference", err)
	}
}
