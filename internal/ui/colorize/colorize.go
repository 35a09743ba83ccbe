// Package colorize highlights disassembly listings for the terminal.
package colorize

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"csbind/internal/capstone"
)

// Disabled reports whether CSBIND_NO_COLOR or NO_COLOR is set.
func Disabled() bool {
	return os.Getenv("CSBIND_NO_COLOR") != "" || os.Getenv("NO_COLOR") != ""
}

// lexerFor returns an assembly lexer for arch, falling back to GAS.
func lexerFor(arch capstone.Arch) chroma.Lexer {
	var candidates []string
	switch arch {
	case capstone.ArchX86:
		candidates = []string{"nasm", "gas"}
	case capstone.ArchARM, capstone.ArchARM64:
		candidates = []string{"armasm", "gas"}
	default:
		candidates = []string{"gas"}
	}
	for _, name := range candidates {
		if lexer := lexers.Get(name); lexer != nil {
			return lexer
		}
	}
	return nil
}

// getStyle returns the listing style with fallbacks
func getStyle() *chroma.Style {
	candidates := []string{ListingDark.Name, "dracula", "monokai"}
	for _, name := range candidates {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

// getTerminalFormatter returns an appropriate terminal formatter
func getTerminalFormatter() chroma.Formatter {
	candidates := []string{"terminal16m", "terminal256"}
	for _, name := range candidates {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// Assembly highlights a block of assembly text decoded for arch. The text is
// returned unchanged when colors are disabled or no lexer is available.
func Assembly(arch capstone.Arch, code string) (string, error) {
	if Disabled() {
		return code, nil
	}
	lexer := lexerFor(arch)
	if lexer == nil {
		return code, nil
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code, err
	}
	var buf strings.Builder
	if err := getTerminalFormatter().Format(&buf, getStyle(), iterator); err != nil {
		return code, err
	}
	return buf.String(), nil
}

// Line highlights one listing line of the form "<hex address> <rest>". The
// address is dimmed and the rest goes through the lexer. Lines that do not
// start with an address are highlighted as a whole.
func Line(arch capstone.Arch, line string) string {
	if Disabled() {
		return line
	}

	addr, rest, ok := strings.Cut(line, " ")
	if !ok || !isAddress(addr) {
		return highlight(arch, line)
	}
	return fmt.Sprintf("\033[38;2;79;79;79m%s\033[0m %s", addr, highlight(arch, rest))
}

func highlight(arch capstone.Arch, s string) string {
	out, err := Assembly(arch, s)
	if err != nil {
		return s
	}
	// Formatters terminate the block with a newline the caller did not ask for.
	if !strings.HasSuffix(s, "\n") {
		out = strings.TrimSuffix(out, "\n")
	}
	return out
}

func isAddress(s string) bool {
	s = strings.TrimSuffix(strings.TrimPrefix(s, "0x"), ":")
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isHexChar(s[i]) {
			return false
		}
	}
	return true
}

// isHexChar checks if a character is a hexadecimal digit
func isHexChar(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// StripANSI removes ANSI escape sequences.
func StripANSI(s string) string {
	var result strings.Builder
	inEscape := false

	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
		} else if inEscape {
			if r == 'm' {
				inEscape = false
			}
		} else {
			result.WriteRune(r)
		}
	}

	return result.String()
}
