package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/blockstack/pkg/palette"
)

func press(m PaletteModel, keys ...string) PaletteModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(PaletteModel)
	}
	return m
}

func TestPaletteModelSelect(t *testing.T) {
	defs := palette.Defaults()
	m := press(NewPaletteModel(defs), "down", "j", "k", "down", "enter")

	if m.Selected == nil {
		t.Fatal("Selected = nil, want a definition")
	}
	if m.Selected.Label != defs[2].Label {
		t.Errorf("Selected = %q, want %q", m.Selected.Label, defs[2].Label)
	}
}

func TestPaletteModelBounds(t *testing.T) {
	defs := palette.Defaults()
	m := press(NewPaletteModel(defs), "up", "up")
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d after moving up from the top, want 0", m.Cursor)
	}

	keys := make([]string, len(defs)+3)
	for i := range keys {
		keys[i] = "down"
	}
	m = press(m, keys...)
	if m.Cursor != len(defs)-1 {
		t.Errorf("Cursor = %d after moving past the end, want %d", m.Cursor, len(defs)-1)
	}
}

func TestPaletteModelScroll(t *testing.T) {
	m := NewPaletteModel(palette.Defaults())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 9})
	m = press(next.(PaletteModel), "down", "down", "down", "down")

	if m.Height != 3 {
		t.Fatalf("Height = %d, want 3", m.Height)
	}
	if m.Offset != 2 {
		t.Errorf("Offset = %d, want 2", m.Offset)
	}
	view := m.View()
	if strings.Contains(view, "say _") || !strings.Contains(view, "if _ then") {
		t.Errorf("View() shows the wrong window:\n%s", view)
	}
	if !strings.Contains(view, "[5/7]") {
		t.Errorf("View() missing position [5/7]:\n%s", view)
	}
}

func TestPaletteModelQuit(t *testing.T) {
	m := press(NewPaletteModel(palette.Defaults()), "down", "esc")
	if m.Selected != nil {
		t.Errorf("Selected = %v after esc, want nil", m.Selected)
	}
}
