package capstone

import (
	"errors"
	"slices"
	"testing"
)

func TestViewClampsCount(t *testing.T) {
	backing := [4]uint16{10, 20, 30, 40}

	tests := []struct {
		name  string
		count int
		want  []uint16
	}{
		{name: "empty", count: 0, want: nil},
		{name: "partial", count: 2, want: []uint16{10, 20}},
		{name: "full", count: 4, want: []uint16{10, 20, 30, 40}},
		{name: "count beyond capacity", count: 9, want: []uint16{10, 20, 30, 40}},
		{name: "negative count", count: -3, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newValueView(&backing[0], tt.count, len(backing), nil)
			if v.Len() != len(tt.want) {
				t.Fatalf("Len() = %d, want %d", v.Len(), len(tt.want))
			}
			if v.Cap() != len(backing) {
				t.Errorf("Cap() = %d, want %d", v.Cap(), len(backing))
			}
			if v.Len() > v.Cap() {
				t.Errorf("Len() %d exceeds Cap() %d", v.Len(), v.Cap())
			}
			if got := v.Collect(); !slices.Equal(got, tt.want) {
				t.Errorf("Collect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestViewNilBase(t *testing.T) {
	v := newValueView[uint8](nil, 5, 8, nil)
	if v.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", v.Len())
	}
	for range v.All() {
		t.Fatal("nil view yielded an element")
	}
}

func TestViewIterationIsRestartable(t *testing.T) {
	backing := [3]uint8{1, 2, 3}
	v := newValueView(&backing[0], uint8(3), len(backing), nil)

	first := slices.Collect(v.Values())
	second := slices.Collect(v.Values())
	if !slices.Equal(first, second) || !slices.Equal(first, []uint8{1, 2, 3}) {
		t.Fatalf("iterations differ: %v then %v", first, second)
	}

	var indices []int
	for i, e := range v.All() {
		indices = append(indices, i)
		if e != backing[i] {
			t.Errorf("element %d = %d, want %d", i, e, backing[i])
		}
	}
	if !slices.Equal(indices, []int{0, 1, 2}) {
		t.Errorf("indices = %v", indices)
	}
}

func TestViewRecordAddresses(t *testing.T) {
	type record struct {
		a, b uint32
		c    uint8
	}
	backing := [3]record{{a: 1}, {a: 2}, {a: 3}}
	v := newView(&backing[0], 3, len(backing), nil, func(p *record, _ *lease) *record { return p })

	for i, p := range v.All() {
		if p != &backing[i] {
			t.Errorf("element %d is not borrowed from the backing array", i)
		}
	}
}

func TestViewEarlyBreak(t *testing.T) {
	backing := [5]int32{1, 2, 3, 4, 5}
	v := newValueView(&backing[0], 5, len(backing), nil)

	var seen []int32
	for _, e := range v.All() {
		seen = append(seen, e)
		if e == 2 {
			break
		}
	}
	if !slices.Equal(seen, []int32{1, 2}) {
		t.Errorf("seen = %v, want [1 2]", seen)
	}
}

func TestViewAtOutOfRange(t *testing.T) {
	backing := [4]uint16{1, 2, 3, 4}
	v := newValueView(&backing[0], 2, len(backing), nil)

	if got := v.At(1); got != 2 {
		t.Fatalf("At(1) = %d, want 2", got)
	}
	for _, i := range []int{-1, 2, 3} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("At(%d) did not panic", i)
				}
			}()
			v.At(i)
		}()
	}
}

func TestViewReleasedLease(t *testing.T) {
	backing := [2]uint8{7, 8}
	l := &lease{}
	v := newValueView(&backing[0], 2, len(backing), l)
	if got := v.Collect(); !slices.Equal(got, []uint8{7, 8}) {
		t.Fatalf("Collect() = %v", got)
	}

	if !l.end() {
		t.Fatal("first end() = false")
	}
	if l.end() {
		t.Fatal("second end() = true")
	}

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrReleased) {
			t.Fatalf("recovered %v, want ErrReleased", r)
		}
	}()
	v.At(0)
}

func TestOperandHandleOutlivesLease(t *testing.T) {
	backing := [2]uint16{5, 6}
	l := &lease{}
	v := newView(&backing[0], 2, len(backing), l, func(p *uint16, l *lease) operand[uint16] {
		return operand[uint16]{raw: p, lease: l}
	})
	kept := v.At(1)
	if got := kept.load(); got != 6 {
		t.Fatalf("load() = %d, want 6", got)
	}
	l.end()

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrReleased) {
			t.Fatalf("recovered %v, want ErrReleased", r)
		}
	}()
	kept.load()
}
