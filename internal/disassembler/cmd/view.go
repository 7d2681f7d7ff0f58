package cmd

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	pathpkg "path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/spf13/cobra"

	"disassembler/internal/decoder"
	"disassembler/internal/disasm"
	"disassembler/internal/disassembler/styles"
	"disassembler/internal/engine"
	"disassembler/internal/isa"
)

var viewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "Browse a listing interactively",
	Long: `Open a listing in a terminal viewer. Tab switches between the listing
and the opcode table; Enter on an opcode jumps to its first use.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		compat := cfg.Compat
		if cmd.Flags().Changed("compat") {
			compat, _ = cmd.Flags().GetBool("compat")
		}
		hexInput, _ := cmd.Flags().GetBool("hex")

		program := tea.NewProgram(
			newModel(args[0], hexInput, decoder.PolicyFor(compat)),
			tea.WithAltScreen(),
			tea.WithContext(cmd.Context()),
			// Mouse tracking disabled to allow native text selection
		)
		if _, err := program.Run(); err != nil {
			slog.Error("TUI run error", "error", err)
			return fmt.Errorf("TUI error: %v", err)
		}
		return nil
	},
}

func init() {
	viewCmd.Flags().Bool("compat", false, "Decode compatibility encodings and keep unknown opcodes as raw bytes")
	viewCmd.Flags().Bool("hex", false, "Input is a hex dump instead of raw bytes")
}

type viewMode int

const (
	viewListing viewMode = iota
	viewOpcodes
)

// headerLines is the number of lines above the first instruction.
const headerLines = 4

type opcodeItem struct {
	entry isa.Entry
	uses  int
}

func (i opcodeItem) Title() string {
	return fmt.Sprintf("0x%02x  %s", i.entry.Opcode, i.entry.Mnemonic)
}

func (i opcodeItem) Description() string { return "" }

func (i opcodeItem) FilterValue() string { return i.entry.Mnemonic }

// Custom item delegate for the opcode list
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(opcodeItem)
	if !ok {
		return
	}

	indicator := " "
	opStyle := styles.NormalStyle
	if index == m.Index() {
		indicator = ">"
		opStyle = styles.SelectedStyle
	}

	ops := make([]string, len(i.entry.Operands))
	for n, op := range i.entry.Operands {
		ops[n] = op.String()
	}
	fmt.Fprintf(w, " %s  %s  %-8s %-20s %s",
		indicator,
		opStyle.Render(fmt.Sprintf("0x%02x", i.entry.Opcode)),
		i.entry.Mnemonic,
		strings.Join(ops, ", "),
		styles.StatusStyle.Render(fmt.Sprintf("%s  %d uses", i.entry.Tier, i.uses)))
}

type model struct {
	viewport viewport.Model
	opcodes  list.Model
	spinner  spinner.Model
	mode     viewMode
	path     string
	hexInput bool
	policy   decoder.Policy
	stream   disasm.Stream
	digest   string
	err      error
	loading  bool
	width    int
	height   int
}

// Message types
type listingMsg struct {
	stream disasm.Stream
	digest string
	err    error
}

// decodeCmd reads and disassembles the file off the UI loop.
func decodeCmd(path string, hexInput bool, policy decoder.Policy) tea.Cmd {
	return func() tea.Msg {
		code, err := readInput(path, nil, hexInput)
		if err != nil {
			return listingMsg{err: err}
		}
		sum := sha256.Sum256(code)
		stream, err := engine.Listing(code, policy)
		return listingMsg{stream: stream, digest: hex.EncodeToString(sum[:]), err: err}
	}
}

func newModel(path string, hexInput bool, policy decoder.Policy) model {
	vp := viewport.New()
	vp.SetWidth(80)
	vp.SetHeight(24)

	opcodes := list.New([]list.Item{}, itemDelegate{}, 80, 24)
	opcodes.SetShowStatusBar(false)
	opcodes.SetFilteringEnabled(true)
	opcodes.Title = "Opcodes"
	opcodes.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		MarginLeft(2)
	opcodes.SetShowHelp(true)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SelectedStyle

	m := model{
		viewport: vp,
		opcodes:  opcodes,
		spinner:  s,
		mode:     viewListing,
		path:     path,
		hexInput: hexInput,
		policy:   policy,
		loading:  true,
		width:    80,
		height:   24,
	}
	m.updateContent()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		decodeCmd(m.path, m.hexInput, m.policy),
		m.spinner.Tick,
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case listingMsg:
		m.loading = false
		m.stream = msg.stream
		m.digest = msg.digest
		m.err = msg.err
		m.updateOpcodes()
		m.updateContent()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		m.updateContent()
		return m, cmd

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		// Let the list own the keyboard while it is filtering
		if m.mode == viewOpcodes && m.opcodes.FilterState() == list.Filtering {
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			break
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "shift+tab":
			m.toggleMode()
			return m, nil
		case "enter":
			if m.mode == viewOpcodes {
				if item, ok := m.opcodes.SelectedItem().(opcodeItem); ok {
					m.jumpTo(item.entry.Mnemonic)
				}
				return m, nil
			}
		}
	}

	// Update the active view
	switch m.mode {
	case viewOpcodes:
		m.opcodes, cmd = m.opcodes.Update(msg)
	default:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	content := m.viewport.View()
	menu := " Tab: opcodes • Q: quit "
	if m.mode == viewOpcodes {
		content = m.opcodes.View()
		menu = " Enter: jump to first use • /: filter • Tab: listing • Q: quit "
	}

	menuStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("252")).
		Padding(0, 1).
		Width(m.width)

	return content + "\n" + menuStyle.Render(menu)
}

func (m *model) resize(width, height int) {
	if width == m.width && height == m.height {
		return
	}
	m.width = width
	m.height = height
	m.viewport.SetWidth(width)
	m.viewport.SetHeight(height - 2)
	m.opcodes.SetWidth(width)
	m.opcodes.SetHeight(height - 2)
	m.updateContent()
}

func (m *model) toggleMode() {
	if m.mode == viewListing && len(m.opcodes.Items()) > 0 {
		m.mode = viewOpcodes
		return
	}
	m.mode = viewListing
}

// jumpTo scrolls the listing to the first instruction using mnemonic.
func (m *model) jumpTo(mnemonic string) {
	for i, in := range m.stream {
		if in.Op == mnemonic {
			m.mode = viewListing
			m.viewport.SetYOffset(headerLines + i)
			return
		}
	}
}

// updateOpcodes lists the opcodes that occur in the listing.
func (m *model) updateOpcodes() {
	uses := make(map[string]int)
	for _, in := range m.stream {
		uses[in.Op]++
	}

	policyTier := m.policy.Tier()
	var items []list.Item
	for _, e := range isa.Entries() {
		if best, ok := isa.Lookup(e.Opcode, policyTier); !ok || best.Tier != e.Tier {
			continue
		}
		if n := uses[e.Mnemonic]; n > 0 {
			items = append(items, opcodeItem{entry: e, uses: n})
		}
	}
	m.opcodes.SetItems(items)
}

func (m *model) updateContent() {
	var lines []string
	lines = append(lines, styles.TitleStyle.Render("Disassembler"))
	lines = append(lines, styles.HeaderStyle.Render("; "+pathpkg.Base(m.path)))

	switch {
	case m.loading:
		lines = append(lines, fmt.Sprintf("%s Decoding...", m.spinner.View()))
	case m.digest != "":
		lines = append(lines, styles.StatusStyle.Render(fmt.Sprintf("; %s  %s  %d instructions", m.digest[:16], m.policy, len(m.stream))))
	default:
		lines = append(lines, "")
	}
	lines = append(lines, "")

	if m.err != nil {
		lines = append(lines, styles.ErrorStyle.Render(fmt.Sprintf("no listing: %v", m.err)))
	} else if !m.loading {
		lines = append(lines, renderListing(m.stream, true))
	}

	m.viewport.SetContent(strings.Join(lines, "\n"))
}
