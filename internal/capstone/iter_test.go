package capstone

import (
	"errors"
	"testing"
)

func TestDisasmIter(t *testing.T) {
	e := openX86(t)

	var got []string
	for insn := range e.DisasmIter(x86Code, x86Base) {
		got = append(got, insn.String())
	}
	want := []string{"0x4a7aa0:\txor\tebp, ebp", "0x4a7aa2:\tmov\tr9, rdx"}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("insn %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDisasmIterEarlyBreak(t *testing.T) {
	e := openX86(t)

	n := 0
	for range e.DisasmIter(x86Code, x86Base) {
		n++
		break
	}
	if n != 1 {
		t.Errorf("yielded %d, want 1", n)
	}
}

func TestDisasmIterInstructionExpires(t *testing.T) {
	e := openX86(t)

	var kept Instruction
	for insn := range e.DisasmIter(x86Code, x86Base) {
		kept = insn
	}

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrReleased) {
			t.Fatalf("recovered %v, want ErrReleased", r)
		}
	}()
	kept.Mnemonic()
}

func TestDisasmIterStopsAtData(t *testing.T) {
	e := openX86(t)

	n := 0
	for range e.DisasmIter([]byte{0x31, 0xed, 0xff, 0xff, 0x31, 0xed}, 0) {
		n++
	}
	if n != 1 {
		t.Errorf("yielded %d, want 1", n)
	}
	for range e.DisasmIter(nil, 0) {
		t.Fatal("empty input yielded an instruction")
	}
}
