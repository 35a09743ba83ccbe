package colorize

import (
	"strings"
	"testing"

	"csbind/internal/capstone"
)

func TestLineKeepsText(t *testing.T) {
	tests := []struct {
		name string
		arch capstone.Arch
		line string
	}{
		{name: "x86", arch: capstone.ArchX86, line: "0x4a7aa0: xor ebp, ebp"},
		{name: "arm64", arch: capstone.ArchARM64, line: "0x1000: ldr x17, [x16, #0xf80]"},
		{name: "mips", arch: capstone.ArchMIPS, line: "0x1000: addiu $sp, $sp, -0x20"},
		{name: "no address", arch: capstone.ArchX86, line: "; skipped 4 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CSBIND_NO_COLOR", "")
			t.Setenv("NO_COLOR", "")
			got := Line(tt.arch, tt.line)
			if plain := StripANSI(got); plain != tt.line {
				t.Errorf("visible text = %q, want %q", plain, tt.line)
			}
		})
	}
}

func TestDisabled(t *testing.T) {
	t.Setenv("CSBIND_NO_COLOR", "1")
	line := "0x1000: nop"
	if got := Line(capstone.ArchX86, line); got != line {
		t.Errorf("Line() = %q with colors disabled", got)
	}
	got, err := Assembly(capstone.ArchX86, line)
	if err != nil || got != line {
		t.Errorf("Assembly() = %q, %v", got, err)
	}
}

func TestAddressIsDimmed(t *testing.T) {
	t.Setenv("CSBIND_NO_COLOR", "")
	t.Setenv("NO_COLOR", "")
	got := Line(capstone.ArchX86, "0x10: ret")
	if !strings.HasPrefix(got, "\033[38;2;79;79;79m0x10:\033[0m ") {
		t.Errorf("Line() = %q", got)
	}
}

func TestStyleRegistered(t *testing.T) {
	if getStyle().Name != "csbind-dark" {
		t.Errorf("style = %q", getStyle().Name)
	}
}
