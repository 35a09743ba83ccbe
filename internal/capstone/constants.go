package capstone

// #include <capstone/capstone.h>
import "C"

import "strings"

// Arch identifies the instruction set an Engine decodes.
type Arch int

const (
	ArchARM   Arch = C.CS_ARCH_ARM   // ARM, including Thumb and Thumb-2
	ArchARM64 Arch = C.CS_ARCH_ARM64 // ARM-64, also called AArch64
	ArchMIPS  Arch = C.CS_ARCH_MIPS
	ArchX86   Arch = C.CS_ARCH_X86 // x86 and x86-64
	ArchPPC   Arch = C.CS_ARCH_PPC
	ArchSPARC Arch = C.CS_ARCH_SPARC
	ArchSysZ  Arch = C.CS_ARCH_SYSZ
	ArchXCore Arch = C.CS_ARCH_XCORE
)

// Architectures lists every architecture with a typed detail variant.
var Architectures = []Arch{
	ArchARM, ArchARM64, ArchMIPS, ArchX86, ArchPPC, ArchSPARC, ArchSysZ, ArchXCore,
}

var archNames = map[Arch]string{
	ArchARM:   "arm",
	ArchARM64: "arm64",
	ArchMIPS:  "mips",
	ArchX86:   "x86",
	ArchPPC:   "ppc",
	ArchSPARC: "sparc",
	ArchSysZ:  "sysz",
	ArchXCore: "xcore",
}

func (a Arch) String() string {
	if name, ok := archNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseArch maps a lower-case name as printed by Arch.String back to its Arch.
func ParseArch(name string) (Arch, bool) {
	name = strings.ToLower(name)
	for arch, n := range archNames {
		if n == name {
			return arch, true
		}
	}
	return 0, false
}

// Mode selects a variant of an architecture. Modes are flags and can be or-ed.
type Mode uint

const (
	ModeLittleEndian Mode = C.CS_MODE_LITTLE_ENDIAN // little endian (default)
	ModeARM          Mode = C.CS_MODE_ARM           // 32-bit ARM
	Mode16           Mode = C.CS_MODE_16            // 16-bit x86
	Mode32           Mode = C.CS_MODE_32            // 32-bit x86
	Mode64           Mode = C.CS_MODE_64            // 64-bit x86, PPC
	ModeThumb        Mode = C.CS_MODE_THUMB         // ARM Thumb, including Thumb-2
	ModeMClass       Mode = C.CS_MODE_MCLASS        // ARM Cortex-M
	ModeV8           Mode = C.CS_MODE_V8            // ARMv8 A32 encodings
	ModeMicro        Mode = C.CS_MODE_MICRO         // MicroMips
	ModeMIPS3        Mode = C.CS_MODE_MIPS3
	ModeMIPS32R6     Mode = C.CS_MODE_MIPS32R6
	ModeV9           Mode = C.CS_MODE_V9 // SparcV9
	ModeBigEndian    Mode = C.CS_MODE_BIG_ENDIAN
	ModeMIPS32       Mode = C.CS_MODE_MIPS32
	ModeMIPS64       Mode = C.CS_MODE_MIPS64
)

// OptionType is the kind of a runtime engine option.
type OptionType int

const (
	OptSyntax        OptionType = C.CS_OPT_SYNTAX
	OptDetail        OptionType = C.CS_OPT_DETAIL
	OptMode          OptionType = C.CS_OPT_MODE
	OptSkipData      OptionType = C.CS_OPT_SKIPDATA
	optSkipDataSetup OptionType = C.CS_OPT_SKIPDATA_SETUP
	optMnemonic      OptionType = C.CS_OPT_MNEMONIC
	OptUnsigned      OptionType = C.CS_OPT_UNSIGNED
)

// OptionValue is the value of an enumerated option.
type OptionValue uint

const (
	OptOff             OptionValue = C.CS_OPT_OFF
	OptOn              OptionValue = C.CS_OPT_ON
	OptSyntaxDefault   OptionValue = C.CS_OPT_SYNTAX_DEFAULT
	OptSyntaxIntel     OptionValue = C.CS_OPT_SYNTAX_INTEL
	OptSyntaxATT       OptionValue = C.CS_OPT_SYNTAX_ATT
	OptSyntaxNoRegName OptionValue = C.CS_OPT_SYNTAX_NOREGNAME
	OptSyntaxMasm      OptionValue = C.CS_OPT_SYNTAX_MASM
)

var syntaxNames = map[string]OptionValue{
	"default":   OptSyntaxDefault,
	"intel":     OptSyntaxIntel,
	"att":       OptSyntaxATT,
	"noregname": OptSyntaxNoRegName,
	"masm":      OptSyntaxMasm,
}

// ParseSyntax maps a syntax name (intel, att, masm, noregname, default) to
// its option value.
func ParseSyntax(name string) (OptionValue, bool) {
	v, ok := syntaxNames[strings.ToLower(name)]
	return v, ok
}

// Instruction groups shared by all architectures.
const (
	GrpInvalid        = C.CS_GRP_INVALID
	GrpJump           = C.CS_GRP_JUMP
	GrpCall           = C.CS_GRP_CALL
	GrpRet            = C.CS_GRP_RET
	GrpInt            = C.CS_GRP_INT
	GrpIret           = C.CS_GRP_IRET
	GrpPrivilege      = C.CS_GRP_PRIVILEGE
	GrpBranchRelative = C.CS_GRP_BRANCH_RELATIVE
)

// Operand access flags shared by all architectures. They can be combined.
const (
	AcRead  = C.CS_AC_READ
	AcWrite = C.CS_AC_WRITE
)

// Support queries beyond architecture numbers.
const (
	SupportDiet      = C.CS_SUPPORT_DIET
	SupportX86Reduce = C.CS_SUPPORT_X86_REDUCE
)
