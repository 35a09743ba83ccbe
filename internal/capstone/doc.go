// Package capstone is a memory-safe layer over the Capstone disassembly engine.
//
// All cgo code of the repository lives in this package. Nothing outside it
// sees a C type, a C pointer or a csh handle.
//
// # Ownership
//
// An Engine owns exactly one native context. It is created by Open (or
// Builder.Build) and released by Close, which must run on every exit path:
//
//	e, err := capstone.Open(capstone.ArchX86, capstone.Mode64)
//	if err != nil {
//		return err
//	}
//	defer e.Close()
//
// Builder.Do wraps the same pattern. A failure of the native close is not a
// recoverable condition and panics.
//
// Instructions owns the array returned by one Disasm call and frees it with
// the pointer and count it was created with, exactly once, on Close.
//
// # Borrowed views
//
// Instruction, Detail, the per-architecture details, the operands and every
// View borrow memory owned by an Instructions value. Each of them holds the
// lease of that memory, so the set stays allocated while any of them is
// reachable, and each read checks the lease first. After Close, touching one
// panics with ErrReleased instead of reading freed memory. Register, group
// and byte views yield copies. Views are bounded by the count field stored
// next to each fixed-capacity array and never by a sentinel.
//
// # Detail union
//
// The native detail record stores the per-architecture data in an untagged
// union. Detail carries the architecture of the engine that decoded the
// instruction and only ever exposes the matching variant, through Variant or
// the typed accessors (X86, Arm, ...). The one unchecked assumption left is
// that the engine decoded the instruction with the architecture it was opened
// with, which Capstone guarantees.
//
// Detail is only present when CS_OPT_DETAIL was switched on before the
// instructions were decoded. Register and group predicates on Engine read the
// detail record and are meaningless without it.
//
// # Threading
//
// An Engine is not safe for concurrent use: options and the last error are
// per-handle mutable state. Callers must serialize all calls on one Engine.
// Distinct engines can be used from different goroutines freely.
package capstone
