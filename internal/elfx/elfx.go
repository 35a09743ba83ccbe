// Package elfx opens ELF binaries, maps virtual addresses to file offsets and
// picks the engine configuration that matches the file's machine.
package elfx

import (
	"bytes"
	"debug/elf"
	"errors"
	"fmt"
	"os"
	"slices"
	"syscall"

	"github.com/ianlancetaylor/demangle"

	"csbind/internal/capstone"
)

// ErrUnsupportedMachine is returned by Target for machines the engine cannot
// decode.
var ErrUnsupportedMachine = errors.New("unsupported machine")

type Image struct {
	Path  string
	File  *elf.File
	All   []byte
	Loads []Seg
	Text  Section
	PLT   Section
	Syms  []Sym // sorted by address
	f     *os.File
}

type Seg struct {
	Vaddr, Off, Filesz uint64
	Flags              elf.ProgFlag
}

type Section struct {
	Name          string
	VA, Off, Size uint64
}

// Sym is a function or object symbol. Name is demangled when possible; Raw
// keeps the name as stored in the file.
type Sym struct {
	Name string
	Raw  string
	Addr uint64
	Size uint64
	PLT  bool
}

func Open(path string) (*Image, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open elf: %w", err)
	}

	of, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open file: %w", err)
	}

	fi, err := of.Stat()
	if err != nil {
		of.Close()
		f.Close()
		return nil, fmt.Errorf("stat file: %w", err)
	}

	all, err := syscall.Mmap(int(of.Fd()), 0, int(fi.Size()), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		of.Close()
		f.Close()
		return nil, fmt.Errorf("mmap file: %w", err)
	}

	im := &Image{Path: path, File: f, All: all, f: of}
	for _, p := range f.Progs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		im.Loads = append(im.Loads, Seg{
			Vaddr:  p.Vaddr,
			Off:    p.Off,
			Filesz: p.Filesz,
			Flags:  p.Flags,
		})
	}

	if s, ok := im.Section(".text"); ok {
		im.Text = s
	}
	if s, ok := im.Section(".plt.sec"); ok {
		im.PLT = s
	} else if s, ok := im.Section(".plt"); ok {
		im.PLT = s
	}

	// Fallback if stripped of section headers.
	if im.Text.Size == 0 {
		for _, l := range im.Loads {
			if l.Flags&elf.PF_X != 0 && l.Filesz > 0 {
				im.Text = Section{"LOAD(exec)", l.Vaddr, l.Off, l.Filesz}
				break
			}
		}
	}

	im.loadSymbols()
	return im, nil
}

// Close unmaps the memory and closes the underlying files.
func (im *Image) Close() error {
	var err1, err2 error
	if im.All != nil {
		err1 = syscall.Munmap(im.All)
		im.All = nil
	}
	if im.f != nil {
		err2 = im.f.Close()
		im.f = nil
	}
	if im.File != nil {
		err3 := im.File.Close()
		if err3 != nil && err2 == nil {
			err2 = err3
		}
		im.File = nil
	}
	if err1 != nil {
		return err1
	}
	return err2
}

// Section looks up a section by name. Sections without file contents
// (.bss) are reported as missing.
func (im *Image) Section(name string) (Section, bool) {
	s := im.File.Section(name)
	if s == nil || s.Type == elf.SHT_NOBITS || s.Size == 0 {
		return Section{}, false
	}
	return Section{s.Name, s.Addr, s.Offset, s.Size}, true
}

// Bytes returns the contents of s from the mapped file.
func (im *Image) Bytes(s Section) ([]byte, bool) {
	end := s.Off + s.Size
	if s.Size == 0 || end < s.Off || end > uint64(len(im.All)) {
		return nil, false
	}
	return im.All[s.Off:end], true
}

// VA2Off translates a virtual address into a file offset
// using PT_LOAD segments. It returns false if VA is unmapped.
func (im *Image) VA2Off(va uint64) (uint64, bool) {
	for _, l := range im.Loads {
		if va >= l.Vaddr && va < l.Vaddr+l.Filesz {
			return l.Off + (va - l.Vaddr), true
		}
	}
	return 0, false
}

// SliceVA returns a subslice of the mapped file corresponding to the virtual address range [va, va+size).
// It returns (nil, false) if the VA is unmapped or the range is out of bounds.
func (im *Image) SliceVA(va uint64, size uint64) ([]byte, bool) {
	off, ok := im.VA2Off(va)
	if !ok {
		return nil, false
	}
	if size == 0 {
		return []byte{}, true
	}
	end := off + size
	if end > uint64(len(im.All)) {
		return nil, false
	}
	return im.All[off:end], true
}

// Target returns the architecture and mode that decode the file's code.
func (im *Image) Target() (capstone.Arch, capstone.Mode, error) {
	f := im.File
	var endian capstone.Mode
	if f.Data == elf.ELFDATA2MSB {
		endian = capstone.ModeBigEndian
	}

	switch f.Machine {
	case elf.EM_386:
		return capstone.ArchX86, capstone.Mode32, nil
	case elf.EM_X86_64:
		return capstone.ArchX86, capstone.Mode64, nil
	case elf.EM_ARM:
		mode := capstone.ModeARM
		if f.Entry&1 != 0 {
			mode = capstone.ModeThumb
		}
		return capstone.ArchARM, mode | endian, nil
	case elf.EM_AARCH64:
		return capstone.ArchARM64, endian, nil
	case elf.EM_MIPS:
		if f.Class == elf.ELFCLASS64 {
			return capstone.ArchMIPS, capstone.ModeMIPS64 | endian, nil
		}
		return capstone.ArchMIPS, capstone.ModeMIPS32 | endian, nil
	case elf.EM_PPC:
		return capstone.ArchPPC, capstone.Mode32 | endian, nil
	case elf.EM_PPC64:
		return capstone.ArchPPC, capstone.Mode64 | endian, nil
	case elf.EM_SPARC:
		return capstone.ArchSPARC, capstone.ModeBigEndian, nil
	case elf.EM_SPARCV9:
		return capstone.ArchSPARC, capstone.ModeBigEndian | capstone.ModeV9, nil
	case elf.EM_S390:
		return capstone.ArchSysZ, capstone.ModeBigEndian, nil
	}
	return 0, 0, fmt.Errorf("%v: %w", f.Machine, ErrUnsupportedMachine)
}

// SymbolAt returns the symbol covering va and the offset of va into it.
func (im *Image) SymbolAt(va uint64) (Sym, uint64, bool) {
	i, found := slices.BinarySearchFunc(im.Syms, va, func(s Sym, va uint64) int {
		switch {
		case s.Addr < va:
			return -1
		case s.Addr > va:
			return 1
		}
		return 0
	})
	if found {
		return im.Syms[i], 0, true
	}
	if i == 0 {
		return Sym{}, 0, false
	}
	s := im.Syms[i-1]
	if va < s.Addr+s.Size {
		return s, va - s.Addr, true
	}
	return Sym{}, 0, false
}

// Label renders va as "name" or "name+0x10", or "" if no symbol covers it.
func (im *Image) Label(va uint64) string {
	s, off, ok := im.SymbolAt(va)
	switch {
	case !ok:
		return ""
	case off == 0:
		return s.Name
	}
	return fmt.Sprintf("%s+%#x", s.Name, off)
}

// FindFunctionByName searches for a function by its raw or demangled name.
func (im *Image) FindFunctionByName(name string) (Sym, bool) {
	for _, s := range im.Syms {
		if !s.PLT && (s.Name == name || s.Raw == name) {
			return s, true
		}
	}
	return Sym{}, false
}

// loadSymbols merges .symtab and .dynsym. Stripped binaries simply end up
// with fewer entries.
func (im *Image) loadSymbols() {
	seen := map[uint64]bool{}
	add := func(syms []elf.Symbol) {
		for _, s := range syms {
			typ := elf.ST_TYPE(s.Info)
			if s.Value == 0 || s.Name == "" || (typ != elf.STT_FUNC && typ != elf.STT_OBJECT) {
				continue
			}
			if seen[s.Value] {
				continue
			}
			seen[s.Value] = true
			im.Syms = append(im.Syms, Sym{
				Name: demangle.Filter(s.Name, demangle.NoClones),
				Raw:  s.Name,
				Addr: s.Value,
				Size: s.Size,
			})
		}
	}
	if syms, err := im.File.Symbols(); err == nil {
		add(syms)
	}
	if syms, err := im.File.DynamicSymbols(); err == nil {
		add(syms)
	}
	im.sortSymbols()
}

func (im *Image) sortSymbols() {
	slices.SortFunc(im.Syms, func(a, b Sym) int {
		switch {
		case a.Addr < b.Addr:
			return -1
		case a.Addr > b.Addr:
			return 1
		}
		return 0
	})
}

// IsReadOnlyData reports whether va lies in an allocated section that is
// neither writable nor executable, such as .rodata.
func (im *Image) IsReadOnlyData(va uint64) bool {
	for _, s := range im.File.Sections {
		if s.Type != elf.SHT_PROGBITS || s.Flags&elf.SHF_ALLOC == 0 || s.Flags&(elf.SHF_WRITE|elf.SHF_EXECINSTR) != 0 {
			continue
		}
		if va >= s.Addr && va < s.Addr+s.Size {
			return true
		}
	}
	return false
}

// CString reads a NUL terminated string of at most max bytes at va. Strings
// that run past max without a terminator are reported as missing.
func (im *Image) CString(va uint64, max int) (string, bool) {
	for n := uint64(max); n > 0; n /= 2 {
		b, ok := im.SliceVA(va, n)
		if !ok {
			continue
		}
		if i := bytes.IndexByte(b, 0); i >= 0 {
			return string(b[:i]), true
		}
		return "", false
	}
	return "", false
}
