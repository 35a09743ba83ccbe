package capstone

// #include <capstone/capstone.h>
import "C"

import (
	"iter"
	"runtime"
)

// nativeInsns is an engine allocated instruction array. Pointer and count
// are only ever used together.
type nativeInsns struct {
	ptr   *C.cs_insn
	count C.size_t
}

func (n nativeInsns) free() {
	C.cs_free(n.ptr, n.count)
}

// Instructions owns the instructions decoded by one Disasm call.
//
// Close releases the native array. If a value is dropped without Close the
// array is released once the value and every instruction, detail and
// operand borrowed from it are unreachable.
type Instructions struct {
	native nativeInsns
	view   View[Instruction]
	arch   Arch
	lease  *lease
}

func newInstructions(ptr *C.cs_insn, count C.size_t, arch Arch) *Instructions {
	native := nativeInsns{ptr: ptr, count: count}
	l := &lease{}
	l.cleanup = runtime.AddCleanup(l, nativeInsns.free, native)
	return &Instructions{
		native: native,
		view: newView(ptr, count, int(count), l, func(p *C.cs_insn, l *lease) Instruction {
			return Instruction{raw: p, arch: arch, lease: l}
		}),
		arch:  arch,
		lease: l,
	}
}

// Len returns the number of decoded instructions.
func (s *Instructions) Len() int { return s.view.Len() }

// IsEmpty reports whether the set holds no instruction.
func (s *Instructions) IsEmpty() bool { return s.view.Len() == 0 }

// Arch is the architecture the instructions were decoded with.
func (s *Instructions) Arch() Arch { return s.arch }

// At returns instruction i. It panics if i is out of range or the set was
// closed.
func (s *Instructions) At(i int) Instruction { return s.view.At(i) }

// All yields the instructions in decode order. Iteration can be repeated.
func (s *Instructions) All() iter.Seq2[int, Instruction] { return s.view.All() }

// Close releases the native array. Instructions, details and operands
// borrowed from the set must not be used afterwards; they panic with
// ErrReleased. Calling Close again is a no-op.
func (s *Instructions) Close() error {
	if s.lease.end() {
		s.native.free()
	}
	return nil
}
