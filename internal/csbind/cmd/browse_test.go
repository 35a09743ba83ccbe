package cmd

import (
	"os"
	"runtime"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/v2/list"

	"csbind/internal/disasm"
	"csbind/internal/elfx"
)

func TestUntilReturn(t *testing.T) {
	ret := &disasm.Detail{Groups: []string{"ret"}}
	s := disasm.Stream{
		{VA: 0x1000, Size: 2, ID: 1, Op: "xor"},
		{VA: 0x1002, Size: 1, ID: 2, Op: "ret", Detail: ret},
		{VA: 0x1003, Size: 1, ID: 3, Op: "nop"},
	}

	tests := []struct {
		name string
		in   disasm.Stream
		want int
	}{
		{name: "cut after ret", in: s, want: 2},
		{name: "no ret", in: s[2:], want: 1},
		{name: "empty", in: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := untilReturn(tt.in); len(got) != tt.want {
				t.Errorf("untilReturn() kept %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestSymbolItemFilterValue(t *testing.T) {
	item := symbolItem{sym: elfx.Sym{Name: "foo::bar()", Raw: "_ZN3foo3barEv", Addr: 0x1000}}
	if got := item.FilterValue(); got != "foo::bar()" {
		t.Errorf("FilterValue() = %q", got)
	}
}

func TestBrowseModelLoading(t *testing.T) {
	m := newBrowseModel("/tmp/example")
	if !m.loading || m.pane != paneSymbols {
		t.Fatalf("initial state: loading %v pane %v", m.loading, m.pane)
	}
	if !strings.Contains(m.summary(), "Loading") {
		t.Errorf("summary while loading:\n%s", m.summary())
	}
	if !strings.Contains(m.View(), "Loading symbols") {
		t.Errorf("view while loading:\n%s", m.View())
	}
}

func TestBrowseModelLoadError(t *testing.T) {
	m := newBrowseModel("/nonexistent/file")
	msg := loadImageCmd(m.path)()
	next, _ := m.Update(msg)
	bm := next.(browseModel)
	if bm.loading || bm.err == nil {
		t.Fatalf("loading %v err %v", bm.loading, bm.err)
	}
	if !strings.Contains(bm.summary(), "error") {
		t.Errorf("summary:\n%s", bm.summary())
	}
}

func TestBrowseModelDisassemble(t *testing.T) {
	if runtime.GOOS != "linux" || (runtime.GOARCH != "amd64" && runtime.GOARCH != "arm64") {
		t.Skip("needs a linux amd64 or arm64 test binary")
	}
	exe, err := os.Executable()
	if err != nil {
		t.Skip(err)
	}
	t.Setenv("CSBIND_NO_COLOR", "1")

	m := newBrowseModel(exe)
	next, _ := m.Update(loadImageCmd(exe)())
	bm := next.(browseModel)
	if bm.err != nil {
		t.Fatalf("load: %v", bm.err)
	}
	defer bm.image.Close()

	if len(bm.symbols.Items()) != len(bm.image.Syms) || len(bm.image.Syms) == 0 {
		t.Errorf("list has %d items for %d symbols", len(bm.symbols.Items()), len(bm.image.Syms))
	}
	if bm.symbols.FilterState() != list.Unfiltered {
		t.Errorf("filter state = %v", bm.symbols.FilterState())
	}
	if !strings.Contains(bm.summary(), "PLT stubs named") {
		t.Errorf("summary:\n%s", bm.summary())
	}

	sym, ok := bm.image.FindFunctionByName("runtime.main")
	if !ok {
		t.Skip("runtime.main not in symbol table")
	}
	out := bm.disassemble(sym)
	if !strings.HasPrefix(out, "runtime.main:\n") {
		t.Errorf("listing does not start with the symbol label:\n%.200s", out)
	}
	if strings.Contains(out, "op0:") {
		t.Error("listing includes operand detail lines")
	}
}
