package colorize

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/x/exp/charmtone"
)

// ListingDark is the style used for disassembly listings. Registering it on
// package initialization makes it reachable through styles.Get.
var ListingDark = styles.Register(chroma.MustNewStyle("csbind-dark", chroma.StyleEntries{
	chroma.Text:       charmtone.Salt.Hex(),
	chroma.Background: "bg:" + charmtone.Pepper.Hex(),
	chroma.Comment:    charmtone.Squid.Hex(),

	// mnemonics
	chroma.Keyword:       charmtone.Salt.Hex(),
	chroma.KeywordPseudo: charmtone.Squid.Hex(), // .byte and other skipped data
	chroma.NameFunction:  charmtone.Salt.Hex(),

	// registers
	chroma.Name:         charmtone.Malibu.Hex(),
	chroma.NameBuiltin:  charmtone.Malibu.Hex(),
	chroma.NameVariable: charmtone.Malibu.Hex(),

	chroma.LiteralNumber:        charmtone.Coral.Hex(),
	chroma.LiteralNumberHex:     charmtone.Coral.Hex(),
	chroma.LiteralNumberBin:     charmtone.Coral.Hex(),
	chroma.LiteralNumberOct:     charmtone.Coral.Hex(),
	chroma.LiteralNumberInteger: charmtone.Coral.Hex(),
	chroma.LiteralNumberFloat:   charmtone.Coral.Hex(),

	chroma.NameLabel: charmtone.Zest.Hex(),

	chroma.Operator:    charmtone.Smoke.Hex(),
	chroma.Punctuation: charmtone.Smoke.Hex(),
	chroma.String:      charmtone.Citron.Hex(),
}))
