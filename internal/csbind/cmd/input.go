package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"csbind/internal/capstone"
	"csbind/internal/disasm"
	"csbind/internal/elfx"
)

// ParseHex decodes hex text such as "31ed4989d1", "31 ed 49", "0x31,0xed"
// or "\x31\xed".
func ParseHex(s string) ([]byte, error) {
	var b strings.Builder
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	for _, f := range fields {
		f = strings.ReplaceAll(f, `\x`, "")
		f = strings.TrimPrefix(strings.TrimPrefix(f, "0x"), "0X")
		b.WriteString(f)
	}
	code, err := hex.DecodeString(b.String())
	if err != nil {
		return nil, fmt.Errorf("parse hex: %w", err)
	}
	return code, nil
}

func addDecodeFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("arch", "a", "x86", "Architecture: arm, arm64, mips, x86, ppc, sparc, sysz, xcore")
	cmd.Flags().StringSliceP("mode", "m", nil, "Mode flags, e.g. 64 or thumb,big (default depends on arch)")
	cmd.Flags().String("syntax", "", "Syntax: intel, att, masm, noregname")
	cmd.Flags().Bool("skipdata", false, "Emit undecodable bytes as data instead of stopping")
	cmd.Flags().String("skipdata-mnemonic", "", "Mnemonic for skipped data (implies --skipdata)")
	cmd.Flags().Int("skip-size", 0, "Bytes to skip per undecodable position (implies --skipdata)")
	cmd.Flags().Uint64("address", 0x1000, "Address of the first byte")
	cmd.Flags().Uint64("count", 0, "Maximum number of instructions, 0 for all")
	cmd.Flags().Bool("iter", false, "Decode one instruction at a time")
	cmd.Flags().String("elf", "", "Decode a section of an ELF file instead of hex input")
	cmd.Flags().String("section", ".text", "Section to decode with --elf")
	cmd.Flags().String("symbol", "", "Decode one function of the --elf file, by raw or demangled name")
}

// resolveConfig merges the --config file with flags set on the command line.
func resolveConfig(cmd *cobra.Command) (Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := LoadConfig(path)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("arch") {
		cfg.Arch, _ = flags.GetString("arch")
		cfg.Mode = nil
	}
	if flags.Changed("mode") {
		cfg.Mode, _ = flags.GetStringSlice("mode")
	}
	if flags.Changed("syntax") {
		cfg.Syntax, _ = flags.GetString("syntax")
	}
	if flags.Lookup("detail") != nil && flags.Changed("detail") {
		cfg.Detail, _ = flags.GetBool("detail")
	}
	if flags.Changed("skipdata") {
		cfg.SkipData, _ = flags.GetBool("skipdata")
	}
	if flags.Changed("skipdata-mnemonic") {
		cfg.SkipDataMnemonic, _ = flags.GetString("skipdata-mnemonic")
	}
	if flags.Changed("skip-size") {
		cfg.SkipDataSize, _ = flags.GetInt("skip-size")
	}
	if cfg.SkipDataSize < 0 {
		return cfg, fmt.Errorf("skip size %d is negative", cfg.SkipDataSize)
	}
	return cfg, nil
}

// input is the code to decode and where it comes from.
type input struct {
	code  []byte
	va    uint64
	arch  capstone.Arch
	mode  capstone.Mode
	image *elfx.Image // nil for hex input
}

func (in *input) Close() error {
	if in.image == nil {
		return nil
	}
	return in.image.Close()
}

// label names va after the covering symbol of an ELF input.
func (in *input) label(va uint64) string {
	if in.image == nil {
		return ""
	}
	return in.image.Label(va)
}

// loadInput reads hex arguments, hex on stdin, or an ELF section.
func loadInput(cmd *cobra.Command, args []string, cfg Config) (*input, error) {
	flags := cmd.Flags()
	address, _ := flags.GetUint64("address")

	if path, _ := flags.GetString("elf"); path != "" {
		return loadELF(path, flags.Changed("address"), address, cmd)
	}
	if symbol, _ := flags.GetString("symbol"); symbol != "" {
		return nil, fmt.Errorf("--symbol %s needs --elf", symbol)
	}

	arch, mode, err := cfg.Target()
	if err != nil {
		return nil, err
	}
	text := strings.Join(args, " ")
	if len(args) == 0 {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		text = string(b)
	}
	code, err := ParseHex(text)
	if err != nil {
		return nil, err
	}
	return &input{code: code, va: address, arch: arch, mode: mode}, nil
}

func loadELF(path string, haveAddress bool, address uint64, cmd *cobra.Command) (*input, error) {
	im, err := elfx.Open(path)
	if err != nil {
		return nil, err
	}
	arch, mode, err := im.Target()
	if err != nil {
		im.Close()
		return nil, err
	}

	code, va, err := elfCode(im, haveAddress, address, cmd)
	if err != nil {
		im.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	// PLT names come from a private detail engine so the listing options
	// stay as configured.
	err = capstone.NewBuilder(arch, mode).Detail(true).Do(func(e *capstone.Engine) error {
		n := im.ResolvePLT(e)
		slog.Debug("Resolved PLT stubs", "count", n)
		return nil
	})
	if err != nil {
		slog.Warn("PLT resolution failed", "error", err)
	}

	return &input{code: code, va: va, arch: arch, mode: mode, image: im}, nil
}

// elfCode selects the bytes to decode: the --symbol function when given,
// otherwise the --section, optionally starting at address. Functions
// without a size run to the end of their section.
func elfCode(im *elfx.Image, haveAddress bool, address uint64, cmd *cobra.Command) ([]byte, uint64, error) {
	if symbol, _ := cmd.Flags().GetString("symbol"); symbol != "" {
		sym, ok := im.FindFunctionByName(symbol)
		if !ok {
			return nil, 0, fmt.Errorf("no function %s", symbol)
		}
		if sym.Size > 0 {
			code, ok := im.SliceVA(sym.Addr, sym.Size)
			if !ok {
				return nil, 0, fmt.Errorf("function %s has no file data", sym.Name)
			}
			return code, sym.Addr, nil
		}
		haveAddress, address = true, sym.Addr
	}

	name, _ := cmd.Flags().GetString("section")
	sec, ok := im.Section(name)
	if !ok {
		return nil, 0, fmt.Errorf("no section %s", name)
	}
	code, ok := im.Bytes(sec)
	if !ok {
		return nil, 0, fmt.Errorf("section %s has no file data", name)
	}
	if !haveAddress {
		return code, sec.VA, nil
	}
	if address < sec.VA || address >= sec.VA+uint64(len(code)) {
		return nil, 0, fmt.Errorf("address %#x outside %s", address, name)
	}
	return code[address-sec.VA:], address, nil
}

// decode disassembles in with the engine described by cfg.
func decode(cmd *cobra.Command, cfg Config, in *input) (disasm.Stream, error) {
	count, _ := cmd.Flags().GetUint64("count")
	useIter, _ := cmd.Flags().GetBool("iter")

	b, err := cfg.Builder(in.arch, in.mode)
	if err != nil {
		return nil, err
	}

	var s disasm.Stream
	err = b.Do(func(e *capstone.Engine) error {
		var err error
		if useIter {
			s, err = disasm.DecodeIter(e, in.code, in.va, count)
		} else {
			s, err = disasm.Decode(e, in.code, in.va, count)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("disassemble %s: %w", in.arch, err)
	}
	slog.Debug("Decoded", "arch", in.arch, "mode", in.mode, "instructions", len(s), "bytes", s.Size())
	return s, nil
}
