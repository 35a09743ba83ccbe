package capstone

import (
	"fmt"
	"iter"
	"runtime"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// lease tracks whether the native memory a view borrows from is still owned.
// The cleanup that frees the memory is attached to the lease, so every value
// that reads native memory must hold the lease and keep it reachable for the
// duration of the read.
type lease struct {
	released bool
	cleanup  runtime.Cleanup
}

func (l *lease) check() {
	if l != nil && l.released {
		panic(ErrReleased)
	}
}

// end marks the lease released and cancels its cleanup. It reports false if
// the lease had already ended.
func (l *lease) end() bool {
	if l.released {
		return false
	}
	l.released = true
	l.cleanup.Stop()
	return true
}

// load copies *p after checking l, keeping l reachable until the copy is
// done.
func load[T any](p *T, l *lease) T {
	l.check()
	v := *p
	runtime.KeepAlive(l)
	return v
}

// View is a read-only window onto a native array described by a base
// address and a separate element count. It never owns the memory and never
// allocates while iterating.
//
// Elements are produced on access. Views of plain values (registers,
// groups, bytes) yield copies; views of records (instructions, operands)
// yield handles that carry the lease and check it on every read.
type View[T any] struct {
	base  unsafe.Pointer
	size  uintptr
	count int
	cap   int
	lease *lease
	elem  func(unsafe.Pointer, *lease) T
}

// newView builds a view of count elements starting at base. The count is
// clamped to [0, capacity], so a corrupt count field can never walk past the
// end of the fixed-capacity array it describes. elem turns the address of
// one element into the value handed to callers.
func newView[E, T any, N constraints.Integer](base *E, count N, capacity int, l *lease, elem func(*E, *lease) T) View[T] {
	n := int(count)
	if n < 0 || base == nil {
		n = 0
	}
	if n > capacity {
		n = capacity
	}
	var zero E
	return View[T]{
		base:  unsafe.Pointer(base),
		size:  unsafe.Sizeof(zero),
		count: n,
		cap:   capacity,
		lease: l,
		elem: func(p unsafe.Pointer, l *lease) T {
			return elem((*E)(p), l)
		},
	}
}

// newValueView is a view whose elements are copied out of native memory.
func newValueView[E any, N constraints.Integer](base *E, count N, capacity int, l *lease) View[E] {
	return newView(base, count, capacity, l, load[E])
}

// Len returns the logical number of elements.
func (v View[T]) Len() int { return v.count }

// Cap returns the capacity of the underlying fixed array.
func (v View[T]) Cap() int { return v.cap }

// At returns element i. It panics if i is outside [0, Len()) or the memory
// was released.
func (v View[T]) At(i int) T {
	if i < 0 || i >= v.count {
		panic(fmt.Sprintf("capstone: view index %d out of range [0:%d]", i, v.count))
	}
	return v.at(i)
}

func (v View[T]) at(i int) T {
	v.lease.check()
	e := v.elem(unsafe.Add(v.base, uintptr(i)*v.size), v.lease)
	runtime.KeepAlive(v.lease)
	return e
}

// All yields every element in order. Each call starts again at index 0.
func (v View[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < v.count; i++ {
			if !yield(i, v.at(i)) {
				return
			}
		}
	}
}

// Values yields every element in order.
func (v View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < v.count; i++ {
			if !yield(v.at(i)) {
				return
			}
		}
	}
}

// Collect gathers the elements into a new slice. For value views the slice
// outlives the view.
func (v View[T]) Collect() []T {
	v.lease.check()
	if v.count == 0 {
		return nil
	}
	out := make([]T, v.count)
	for i := range out {
		out[i] = v.at(i)
	}
	return out
}
