package cmd

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/exp/charmtone"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"csbind/internal/annotate"
	"csbind/internal/capstone"
	"csbind/internal/disasm"
	"csbind/internal/ui/colorize"
)

func newDisasmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disasm [hex...]",
		Short: "Disassemble hex bytes or an ELF section",
		Long: `Disassemble machine code given as hex arguments, as hex on standard input,
or read from a section of an ELF file.`,
		Example: `
# x86-64 at the default address
csbind disasm 31ed4989d1

# ARM Thumb with operand detail
csbind disasm --arch arm --mode thumb --detail 70 47

# Keep going over data, emitting it as db
echo "ff ff 31 ed" | csbind disasm --skipdata-mnemonic db
  `,
		RunE: runDisasm,
	}
	addDecodeFlags(cmd)
	cmd.Flags().Bool("detail", false, "Show operands, groups and implicit registers")
	cmd.Flags().Bool("json", false, "Print instructions as JSON")
	cmd.Flags().Bool("dump", false, "Dump the decoded instructions as Go values")
	return cmd
}

func runDisasm(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	in, err := loadInput(cmd, args, cfg)
	if err != nil {
		return err
	}
	defer in.Close()

	// ELF listings annotate references, which needs operands.
	showDetail := cfg.Detail
	if in.image != nil {
		cfg.Detail = true
	}
	s, err := decode(cmd, cfg, in)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	asJSON, _ := cmd.Flags().GetBool("json")
	dump, _ := cmd.Flags().GetBool("dump")
	switch {
	case asJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case dump:
		spew.Fdump(out, s)
		return nil
	}

	l := listing{
		arch:    in.arch,
		label:   in.label,
		color:   isTerminal(cmd) && !colorize.Disabled(),
		details: showDetail,
	}
	if in.image != nil {
		l.notes = annotate.Comments(in.arch, s, in.image)
	}
	l.write(out, s)
	return nil
}

var (
	addrStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Squid.Hex()))
	bytesStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Smoke.Hex()))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Malibu.Hex())).Bold(true)
	noteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Zest.Hex()))
	dataStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Coral.Hex()))
)

// bytesColumn is wide enough for the longest x86 instruction.
const bytesColumn = 3*15 - 1

// listing formats a stream as address, raw bytes and text columns.
type listing struct {
	arch    capstone.Arch
	label   func(va uint64) string
	color   bool
	details bool              // print operands and registers under each instruction
	notes   map[uint64]string // trailing comments keyed by instruction address
}

func (l listing) style(s lipgloss.Style, text string) string {
	if !l.color {
		return text
	}
	return s.Render(text)
}

func (l listing) write(w io.Writer, s disasm.Stream) {
	for _, in := range s {
		if name := l.label(in.VA); name != "" && !strings.Contains(name, "+") {
			fmt.Fprintf(w, "\n%s\n", l.style(labelStyle, name+":"))
		}
		fmt.Fprintln(w, l.line(in))
		if l.details && in.Detail != nil {
			for _, d := range detailLines(in.Detail) {
				fmt.Fprintf(w, "%*s%s\n", 10, "", l.style(noteStyle, d))
			}
		}
	}
}

// line renders one instruction. Branch and call targets that fall on a
// symbol get a trailing comment.
func (l listing) line(in disasm.Inst) string {
	addr := fmt.Sprintf("%08x", in.VA)
	raw := fmt.Sprintf("%-*s", bytesColumn, spaced(in.Raw))
	text := in.Op
	if in.Args != "" {
		text = fmt.Sprintf("%-7s %s", in.Op, in.Args)
	}
	var note string
	if target, ok := branchTarget(in); ok {
		if name := l.label(target); name != "" {
			note = "; " + name
		}
	} else if c, ok := l.notes[in.VA]; ok {
		note = "; " + c
	}

	if !l.color {
		return strings.TrimRight(strings.Join([]string{addr, raw, text, note}, "  "), " ")
	}
	switch {
	case in.IsData():
		text = dataStyle.Render(text)
	default:
		if hl, err := colorize.Assembly(l.arch, text); err == nil {
			text = strings.TrimSuffix(hl, "\n")
		}
	}
	line := addrStyle.Render(addr) + "  " + bytesStyle.Render(raw) + "  " + text
	if note != "" {
		line += "  " + noteStyle.Render(note)
	}
	return line
}

// spaced renders raw bytes as "31 ed".
func spaced(raw []byte) string {
	h := hex.EncodeToString(raw)
	var b strings.Builder
	for i := 0; i < len(h); i += 2 {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(h[i : i+2])
	}
	return b.String()
}

// branchTarget returns the immediate target of a call or jump decoded with
// detail.
func branchTarget(in disasm.Inst) (uint64, bool) {
	d := in.Detail
	if !d.InGroup("call") && !d.InGroup("jump") {
		return 0, false
	}
	for _, op := range d.Operands {
		if op.Kind == disasm.KindImm {
			return uint64(op.Imm), true
		}
	}
	return 0, false
}

func detailLines(d *disasm.Detail) []string {
	var lines []string
	for i, op := range d.Operands {
		lines = append(lines, fmt.Sprintf("op%d: %s", i, formatOperand(op)))
	}
	if len(d.RegsRead) > 0 {
		lines = append(lines, "reads: "+strings.Join(d.RegsRead, " "))
	}
	if len(d.RegsWrite) > 0 {
		lines = append(lines, "writes: "+strings.Join(d.RegsWrite, " "))
	}
	if len(d.Groups) > 0 {
		lines = append(lines, "groups: "+strings.Join(d.Groups, " "))
	}
	return lines
}

func formatOperand(op disasm.Operand) string {
	switch op.Kind {
	case disasm.KindReg:
		return "reg " + op.Reg
	case disasm.KindImm:
		if op.Imm < 0 {
			return fmt.Sprintf("imm -%#x", -op.Imm)
		}
		return fmt.Sprintf("imm %#x", op.Imm)
	case disasm.KindFP:
		return fmt.Sprintf("fp %g", op.FP)
	case disasm.KindMem:
		if op.Mem == nil {
			return "mem"
		}
		return "mem " + formatMem(*op.Mem)
	}
	return string(op.Kind)
}

func formatMem(m disasm.Mem) string {
	var parts []string
	if m.Base != "" {
		parts = append(parts, m.Base)
	}
	if m.Index != "" {
		idx := m.Index
		if m.Scale > 1 {
			idx = fmt.Sprintf("%s*%d", idx, m.Scale)
		}
		parts = append(parts, idx)
	}
	expr := strings.Join(parts, " + ")
	switch {
	case m.Disp == 0 && expr != "":
	case expr == "":
		expr = fmt.Sprintf("%#x", m.Disp)
	case m.Disp < 0:
		expr += fmt.Sprintf(" - %#x", -m.Disp)
	default:
		expr += fmt.Sprintf(" + %#x", m.Disp)
	}
	return "[" + expr + "]"
}
