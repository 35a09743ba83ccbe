package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/spf13/cobra"

	"csbind/internal/annotate"
	"csbind/internal/capstone"
	"csbind/internal/disasm"
	"csbind/internal/elfx"
	"csbind/internal/ui/colorize"
	"csbind/internal/ui/styles"
)

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse FILE",
		Short: "Browse the symbols of an ELF file and disassemble them",
		Long: `Open an ELF file in an interactive browser. Pick a symbol from the
filterable list and press Enter to disassemble it. Tab and Shift+Tab cycle
between the symbol list, the listing and the file summary.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			program := tea.NewProgram(
				newBrowseModel(path),
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
			)
			m, err := program.Run()
			if err != nil {
				slog.Error("TUI run error", "error", err)
				return fmt.Errorf("TUI error: %v", err)
			}
			if bm, ok := m.(browseModel); ok && bm.image != nil {
				return bm.image.Close()
			}
			return nil
		},
	}
}

type pane int

const (
	paneSymbols pane = iota
	paneListing
	paneInfo
	paneCount
)

// maxUnsized bounds the bytes decoded for symbols without a size.
const maxUnsized = 256

type symbolItem struct {
	sym elfx.Sym
}

func (i symbolItem) FilterValue() string { return i.sym.Name }

type symbolDelegate struct{}

func (d symbolDelegate) Height() int                               { return 1 }
func (d symbolDelegate) Spacing() int                              { return 0 }
func (d symbolDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d symbolDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(symbolItem)
	if !ok {
		return
	}

	indicator := " "
	addr := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	name := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	if index == m.Index() {
		indicator = ">"
		addr = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
		name = name.Foreground(lipgloss.Color("214"))
	}
	if i.sym.PLT {
		name = name.Faint(true)
	}
	fmt.Fprintf(w, " %s  %s  %s", indicator, addr.Render(fmt.Sprintf("%08x", i.sym.Addr)), name.Render(i.sym.Name))
}

type imageLoadedMsg struct {
	image *elfx.Image
	arch  capstone.Arch
	mode  capstone.Mode
	plt   int
	err   error
}

// loadImageCmd opens the file and names its PLT stubs off the UI goroutine.
func loadImageCmd(path string) tea.Cmd {
	return func() tea.Msg {
		im, err := elfx.Open(path)
		if err != nil {
			return imageLoadedMsg{err: err}
		}
		arch, mode, err := im.Target()
		if err != nil {
			im.Close()
			return imageLoadedMsg{err: err}
		}
		var plt int
		err = capstone.NewBuilder(arch, mode).Detail(true).Do(func(e *capstone.Engine) error {
			plt = im.ResolvePLT(e)
			return nil
		})
		if err != nil {
			im.Close()
			return imageLoadedMsg{err: err}
		}
		return imageLoadedMsg{image: im, arch: arch, mode: mode, plt: plt}
	}
}

type browseModel struct {
	path    string
	image   *elfx.Image
	arch    capstone.Arch
	mode    capstone.Mode
	plt     int
	err     error
	loading bool

	symbols list.Model
	listing viewport.Model
	info    viewport.Model
	spinner spinner.Model
	pane    pane
	width   int
	height  int
}

func newBrowseModel(path string) browseModel {
	symbols := list.New([]list.Item{}, symbolDelegate{}, 80, 24)
	symbols.SetShowStatusBar(false)
	symbols.SetFilteringEnabled(true)
	symbols.Title = filepath.Base(path)
	symbols.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		MarginLeft(2)
	symbols.SetShowHelp(true)

	listing := viewport.New()
	listing.SetWidth(80)
	listing.SetHeight(22)
	listing.SetContent("Select a symbol and press Enter.")

	info := viewport.New()
	info.SetWidth(80)
	info.SetHeight(22)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

	m := browseModel{
		path:    path,
		loading: true,
		symbols: symbols,
		listing: listing,
		info:    info,
		spinner: s,
		width:   80,
		height:  24,
	}
	m.updateInfo()
	return m
}

func (m browseModel) Init() tea.Cmd {
	return tea.Batch(
		loadImageCmd(m.path),
		m.spinner.Tick,
	)
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case imageLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.updateInfo()
			return m, nil
		}
		m.image, m.arch, m.mode, m.plt = msg.image, msg.arch, msg.mode, msg.plt
		items := make([]list.Item, 0, len(m.image.Syms))
		for _, sym := range m.image.Syms {
			items = append(items, symbolItem{sym: sym})
		}
		m.updateInfo()
		return m, m.symbols.SetItems(items)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.symbols.SetWidth(msg.Width)
		m.symbols.SetHeight(msg.Height - 1)
		m.listing.SetWidth(msg.Width)
		m.listing.SetHeight(msg.Height - 1)
		m.info.SetWidth(msg.Width)
		m.info.SetHeight(msg.Height - 1)
		m.updateInfo()
		return m, nil

	case tea.KeyMsg:
		filtering := m.pane == paneSymbols && m.symbols.FilterState() == list.Filtering
		switch key := msg.String(); {
		case key == "ctrl+c", key == "q" && !filtering:
			return m, tea.Quit
		case filtering:
		case key == "tab":
			m.pane = (m.pane + 1) % paneCount
			return m, nil
		case key == "shift+tab":
			m.pane = (m.pane + paneCount - 1) % paneCount
			return m, nil
		case key == "enter" && m.pane == paneSymbols:
			if item, ok := m.symbols.SelectedItem().(symbolItem); ok {
				m.listing.SetContent(m.disassemble(item.sym))
				m.listing.GotoTop()
				m.pane = paneListing
			}
			return m, nil
		}
	}

	switch m.pane {
	case paneSymbols:
		m.symbols, cmd = m.symbols.Update(msg)
	case paneListing:
		m.listing, cmd = m.listing.Update(msg)
	case paneInfo:
		m.info, cmd = m.info.Update(msg)
	}
	return m, cmd
}

func (m browseModel) View() string {
	var content, menu string
	switch m.pane {
	case paneSymbols:
		switch {
		case m.loading:
			content = fmt.Sprintf("\n  %s Loading symbols...", m.spinner.View())
		case m.err != nil:
			content = fmt.Sprintf("\n  %v", m.err)
		default:
			content = m.symbols.View()
		}
		menu = " Enter: disassemble • /: filter • Tab: cycle • Q: quit "
	case paneListing:
		content = m.listing.View()
		menu = " ↑/↓: scroll • Tab: cycle • Q: quit "
	case paneInfo:
		content = m.info.View()
		menu = " Tab: cycle • Q: quit "
	}

	menuStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("252")).
		Padding(0, 1).
		Width(m.width)

	return content + "\n" + menuStyle.Render(menu)
}

// disassemble lists sym with detail on so call and jump targets are named.
// Symbols without a size are decoded up to the first return.
func (m browseModel) disassemble(sym elfx.Sym) string {
	size := sym.Size
	if size == 0 {
		size = maxUnsized
	}
	code, ok := m.image.SliceVA(sym.Addr, size)
	for !ok && size > 1 {
		size /= 2
		code, ok = m.image.SliceVA(sym.Addr, size)
	}
	if !ok {
		return fmt.Sprintf("%s: no file data at %#x", sym.Name, sym.Addr)
	}

	var s disasm.Stream
	err := capstone.NewBuilder(m.arch, m.mode).Detail(true).SkipData(true).Do(func(e *capstone.Engine) error {
		var err error
		s, err = disasm.Decode(e, code, sym.Addr, 0)
		return err
	})
	if err != nil {
		return fmt.Sprintf("%s: %v", sym.Name, err)
	}
	if sym.Size == 0 {
		s = untilReturn(s)
	}

	var b strings.Builder
	l := listing{
		arch:  m.arch,
		label: m.image.Label,
		color: !colorize.Disabled(),
		notes: annotate.Comments(m.arch, s, m.image),
	}
	l.write(&b, s)
	return strings.TrimPrefix(b.String(), "\n")
}

// untilReturn cuts s after its first return instruction.
func untilReturn(s disasm.Stream) disasm.Stream {
	for i, in := range s {
		if in.Detail.InGroup("ret") {
			return s[:i+1]
		}
	}
	return s
}

func (m *browseModel) updateInfo() {
	m.info.SetContent(styles.Render(m.summary(), max(m.width-2, 20)))
}

// summary describes the file and engine as markdown.
func (m browseModel) summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", filepath.Base(m.path))
	fmt.Fprintf(&b, "`%s`\n\n", m.path)
	switch {
	case m.loading:
		b.WriteString("Loading...\n")
		return b.String()
	case m.err != nil:
		fmt.Fprintf(&b, "**error:** %v\n", m.err)
		return b.String()
	}

	f := m.image.File
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| machine | %v |\n", f.Machine)
	fmt.Fprintf(&b, "| type | %v |\n", f.Type)
	fmt.Fprintf(&b, "| entry | %#x |\n", f.Entry)
	fmt.Fprintf(&b, "| arch | %s (mode %#x) |\n", m.arch, uint(m.mode))
	if m.image.Text.Size > 0 {
		fmt.Fprintf(&b, "| .text | %#x, %d bytes |\n", m.image.Text.VA, m.image.Text.Size)
	}
	fmt.Fprintf(&b, "| symbols | %d |\n", len(m.image.Syms))
	fmt.Fprintf(&b, "| PLT stubs named | %d |\n", m.plt)

	major, minor := capstone.Version()
	fmt.Fprintf(&b, "\nDecoded with Capstone %d.%d.\n", major, minor)
	if entry, _, ok := m.image.SymbolAt(f.Entry); ok {
		fmt.Fprintf(&b, "\nEntry point is in `%s`.\n", entry.Name)
	}
	return b.String()
}
