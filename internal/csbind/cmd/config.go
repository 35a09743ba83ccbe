package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"csbind/internal/capstone"
)

// Config is the optional JSON configuration file. Command-line flags that
// are set explicitly take precedence over it.
type Config struct {
	Arch             string          `json:"arch,omitempty" jsonschema:"title=Architecture,enum=arm,enum=arm64,enum=mips,enum=x86,enum=ppc,enum=sparc,enum=sysz,enum=xcore,description=Instruction set to decode"`
	Mode             []string        `json:"mode,omitempty" jsonschema:"title=Mode,description=Mode flags combined with or (e.g. 64 or thumb and big)"`
	Syntax           string          `json:"syntax,omitempty" jsonschema:"title=Syntax,enum=default,enum=intel,enum=att,enum=masm,enum=noregname"`
	Detail           bool            `json:"detail,omitempty" jsonschema:"title=Detail,description=Decode operands and implicit registers"`
	SkipData         bool            `json:"skipdata,omitempty" jsonschema:"title=Skip data,description=Emit undecodable bytes as data instead of stopping"`
	SkipDataMnemonic string          `json:"skipdataMnemonic,omitempty" jsonschema:"title=Skip data mnemonic,description=Mnemonic printed for skipped data (implies skipdata)"`
	SkipDataSize     int             `json:"skipdataSize,omitempty" jsonschema:"title=Skip data size,minimum=0,description=Bytes skipped per undecodable position (implies skipdata)"`
	Mnemonics        map[uint]string `json:"mnemonics,omitempty" jsonschema:"title=Mnemonic overrides,description=Instruction id to replacement mnemonic"`
	Debug            bool            `json:"debug,omitempty" jsonschema:"title=Debug,description=Enable debug logging"`
}

// LoadConfig reads a configuration file. An empty path yields the zero
// Config.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

var modeNames = map[string]capstone.Mode{
	"little":   capstone.ModeLittleEndian,
	"arm":      capstone.ModeARM,
	"16":       capstone.Mode16,
	"32":       capstone.Mode32,
	"64":       capstone.Mode64,
	"thumb":    capstone.ModeThumb,
	"mclass":   capstone.ModeMClass,
	"v8":       capstone.ModeV8,
	"micro":    capstone.ModeMicro,
	"mips3":    capstone.ModeMIPS3,
	"mips32r6": capstone.ModeMIPS32R6,
	"v9":       capstone.ModeV9,
	"big":      capstone.ModeBigEndian,
	"mips32":   capstone.ModeMIPS32,
	"mips64":   capstone.ModeMIPS64,
}

// ParseMode or-s together named mode flags. Names may also be given as one
// comma or plus separated string.
func ParseMode(names []string) (capstone.Mode, error) {
	var mode capstone.Mode
	for _, name := range names {
		for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == ',' || r == '+' }) {
			m, ok := modeNames[strings.ToLower(strings.TrimSpace(part))]
			if !ok {
				return 0, fmt.Errorf("unknown mode %q", part)
			}
			mode |= m
		}
	}
	return mode, nil
}

// defaultMode picks the usual mode for arch when none is configured.
func defaultMode(arch capstone.Arch) capstone.Mode {
	switch arch {
	case capstone.ArchX86:
		return capstone.Mode64
	case capstone.ArchARM:
		return capstone.ModeARM
	case capstone.ArchMIPS:
		return capstone.ModeMIPS32 | capstone.ModeBigEndian
	case capstone.ArchPPC:
		return capstone.Mode64 | capstone.ModeBigEndian
	case capstone.ArchSPARC, capstone.ArchSysZ, capstone.ArchXCore:
		return capstone.ModeBigEndian
	}
	return capstone.ModeLittleEndian
}

// Target resolves the configured architecture and mode.
func (c Config) Target() (capstone.Arch, capstone.Mode, error) {
	name := c.Arch
	if name == "" {
		name = "x86"
	}
	arch, ok := capstone.ParseArch(name)
	if !ok {
		return 0, 0, fmt.Errorf("unknown architecture %q", name)
	}
	if len(c.Mode) == 0 {
		return arch, defaultMode(arch), nil
	}
	mode, err := ParseMode(c.Mode)
	if err != nil {
		return 0, 0, err
	}
	return arch, mode, nil
}

// Builder turns the configuration into an engine builder for arch and mode.
func (c Config) Builder(arch capstone.Arch, mode capstone.Mode) (capstone.Builder, error) {
	b := capstone.NewBuilder(arch, mode).Detail(c.Detail)
	if c.Syntax != "" {
		syntax, ok := capstone.ParseSyntax(c.Syntax)
		if !ok {
			return b, fmt.Errorf("unknown syntax %q", c.Syntax)
		}
		b = b.Syntax(syntax)
	}
	if c.SkipData {
		b = b.SkipData(true)
	}
	if c.SkipDataMnemonic != "" || c.SkipDataSize > 0 {
		var cb capstone.SkipDataCallback
		if n := c.SkipDataSize; n > 0 {
			cb = func(code []byte, offset int) int {
				return min(n, len(code)-offset)
			}
		}
		b = b.SkipDataSetup(c.SkipDataMnemonic, cb)
	}
	for id, m := range c.Mnemonics {
		b = b.Mnemonic(id, m)
	}
	return b, nil
}
