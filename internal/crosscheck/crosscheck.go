// Package crosscheck compares engine output with the pure Go decoders in
// golang.org/x/arch. Instruction lengths must agree exactly; mnemonics are
// compared case-insensitively and differences are reported separately since
// the two decoders pick different aliases for some encodings.
package crosscheck

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/arch/arm64/arm64asm"
	"golang.org/x/arch/x86/x86asm"

	"csbind/internal/capstone"
	"csbind/internal/disasm"
)

// ErrNoReference is returned for architectures without a reference decoder.
var ErrNoReference = errors.New("no reference decoder")

// Kind classifies a disagreement between the engine and the reference
// decoder.
type Kind string

const (
	KindLength   Kind = "length"   // instruction boundaries differ
	KindMnemonic Kind = "mnemonic" // same length, different mnemonic
	KindRejected Kind = "rejected" // reference decoder failed on the bytes
)

// Mismatch is one instruction the two decoders disagree on. Engine and
// Reference hold the text each side produced, or the reference error for
// KindRejected.
type Mismatch struct {
	VA        uint64 `json:"va"`
	Kind      Kind   `json:"kind"`
	Engine    string `json:"engine"`
	Reference string `json:"reference"`
}

// String formats the mismatch as one report line.
func (m Mismatch) String() string {
	return fmt.Sprintf("%#x %s: engine %q, reference %q", m.VA, m.Kind, m.Engine, m.Reference)
}

// Report summarizes one Check run.
type Report struct {
	Checked    int        `json:"checked"`
	Skipped    int        `json:"skipped"` // skip-data entries
	Mismatches []Mismatch `json:"mismatches,omitempty"`
}

// Lengths counts mismatches that disagree on instruction boundaries.
func (r Report) Lengths() int {
	n := 0
	for _, m := range r.Mismatches {
		if m.Kind == KindLength {
			n++
		}
	}
	return n
}

type reference func(raw []byte, va uint64) (length int, text string, err error)

func referenceFor(arch capstone.Arch, mode capstone.Mode) (reference, error) {
	switch {
	case arch == capstone.ArchX86:
		bits := 16
		switch {
		case mode&capstone.Mode64 != 0:
			bits = 64
		case mode&capstone.Mode32 != 0:
			bits = 32
		}
		return func(raw []byte, va uint64) (int, string, error) {
			inst, err := x86asm.Decode(raw, bits)
			if err != nil {
				return 0, "", err
			}
			return inst.Len, x86asm.IntelSyntax(inst, va, nil), nil
		}, nil
	case arch == capstone.ArchARM64 && mode&capstone.ModeBigEndian == 0:
		return func(raw []byte, va uint64) (int, string, error) {
			inst, err := arm64asm.Decode(raw)
			if err != nil {
				return 0, "", err
			}
			return 4, arm64asm.GNUSyntax(inst), nil
		}, nil
	}
	return nil, fmt.Errorf("%v: %w", arch, ErrNoReference)
}

// Check decodes every instruction of s again with the reference decoder for
// arch and mode. code is the buffer s was decoded from, starting at base.
// The reference decodes from the instruction's position in code rather than
// from the engine's bytes, so it can disagree on where an instruction ends.
func Check(arch capstone.Arch, mode capstone.Mode, code []byte, base uint64, s disasm.Stream) (Report, error) {
	ref, err := referenceFor(arch, mode)
	if err != nil {
		return Report{}, err
	}

	var r Report
	for _, in := range s {
		if in.IsData() {
			r.Skipped++
			continue
		}
		r.Checked++
		n, text, err := ref(window(code, base, in), in.VA)
		switch {
		case err != nil:
			r.Mismatches = append(r.Mismatches, Mismatch{VA: in.VA, Kind: KindRejected, Engine: in.Text(), Reference: err.Error()})
		case n != in.Size:
			r.Mismatches = append(r.Mismatches, Mismatch{VA: in.VA, Kind: KindLength, Engine: in.Text(), Reference: text})
		case !strings.EqualFold(in.Op, mnemonic(text)):
			r.Mismatches = append(r.Mismatches, Mismatch{VA: in.VA, Kind: KindMnemonic, Engine: in.Text(), Reference: text})
		}
	}
	return r, nil
}

// window returns the bytes of code from in's address to the end. It falls
// back to the engine's own bytes when in lies outside code.
func window(code []byte, base uint64, in disasm.Inst) []byte {
	if in.VA < base || in.VA-base >= uint64(len(code)) {
		return in.Raw
	}
	return code[in.VA-base:]
}

func mnemonic(text string) string {
	op, _, _ := strings.Cut(text, " ")
	return op
}
