package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/blockstack/pkg/block"
	"github.com/matzehuels/blockstack/pkg/errors"
)

// List styles
var (
	listTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorText)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorFaint)
)

// =============================================================================
// PaletteModel - Interactive definition selection
// =============================================================================

// PaletteModel is the bubbletea model for choosing a palette definition.
type PaletteModel struct {
	Defs     []block.Definition
	Cursor   int
	Selected *block.Definition
	Height   int
	Offset   int
}

// NewPaletteModel creates a picker over defs.
func NewPaletteModel(defs []block.Definition) PaletteModel {
	return PaletteModel{Defs: defs, Height: 12}
}

func (m PaletteModel) Init() tea.Cmd {
	return nil
}

func (m PaletteModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Defs)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Defs) == 0 {
				return m, tea.Quit
			}
			d := m.Defs[m.Cursor]
			m.Selected = &d
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 3)
	}
	return m, nil
}

func (m PaletteModel) View() string {
	var b strings.Builder

	b.WriteString(listTitleStyle.Render("Pick a Block"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Defs))
	for i := m.Offset; i < end; i++ {
		d := m.Defs[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%-28s %s", cursor, block.DisplayName(d.Label), listDimStyle.Render(string(d.Kind)))
		if i == m.Cursor {
			line = listSelectedStyle.Render(line)
		} else {
			line = listNormalStyle.Render(line)
		}
		b.WriteString(swatch(d.Color) + " " + line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.Defs)), len(m.Defs))))
	return b.String()
}

// runPicker shows the picker and returns the chosen definition, if any.
func runPicker(ctx context.Context, defs []block.Definition, in io.Reader, out io.Writer) (block.Definition, bool, error) {
	if len(defs) == 0 {
		return block.Definition{}, false, errors.New(errors.ErrCodeNotFound, "palette is empty")
	}
	prog := tea.NewProgram(NewPaletteModel(defs), tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	final, err := prog.Run()
	if err != nil {
		return block.Definition{}, false, errors.Wrap(errors.ErrCodeInternal, err, "run picker")
	}
	m, ok := final.(PaletteModel)
	if !ok || m.Selected == nil {
		return block.Definition{}, false, nil
	}
	return *m.Selected, true, nil
}
