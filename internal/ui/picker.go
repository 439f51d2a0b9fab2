package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrNothingToPick is returned by PickItem for an empty list.
var ErrNothingToPick = errors.New("no items to pick from")

// PickerItem is one choice in the picker. Value is what PickItem returns.
type PickerItem struct {
	Label    string
	SubLabel string
	Value    string
}

type pickerModel struct {
	title    string
	items    []PickerItem
	cursor   int
	chosen   int // -1 until a choice is made
	canceled bool
}

func newPicker(title string, items []PickerItem) pickerModel {
	return pickerModel{title: title, items: items, chosen: -1}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	n := len(m.items)
	switch s := key.String(); s {
	case "q", "esc", "ctrl+c":
		m.canceled = true
		return m, tea.Quit
	case "up", "k":
		m.cursor = (m.cursor - 1 + n) % n
	case "down", "j", "tab":
		m.cursor = (m.cursor + 1) % n
	case "enter", " ":
		m.chosen = m.cursor
		return m, tea.Quit
	default:
		// 1-9 jump straight to an entry.
		if i, err := strconv.Atoi(s); err == nil && i >= 1 && i <= n {
			m.cursor, m.chosen = i-1, i-1
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.canceled || m.chosen >= 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n" + StyleTitle.Render("  "+m.title) + "\n\n")
	for i, item := range m.items {
		marker := "   "
		if i == m.cursor {
			marker = " ▸ "
		}
		line := fmt.Sprintf("%s%d  %s", marker, i+1, StyleValue.Render(item.Label))
		if item.SubLabel != "" {
			line += "  " + StyleMeta.Render(item.SubLabel)
		}
		if i == m.cursor {
			line = StyleSelected.Render(line)
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n" + StyleMeta.Render("  ↑↓ move   1-9 jump   enter select   q cancel") + "\n")
	return sb.String()
}

// value is the chosen item's Value, or "" when the picker was canceled.
func (m pickerModel) value() string {
	if m.canceled || m.chosen < 0 {
		return ""
	}
	return m.items[m.chosen].Value
}

// PickItem shows items full-screen and returns the chosen Value. Cancel
// returns "" with a nil error.
func PickItem(title string, items []PickerItem) (string, error) {
	if len(items) == 0 {
		return "", ErrNothingToPick
	}
	final, err := tea.NewProgram(newPicker(title, items), tea.WithAltScreen()).Run()
	if err != nil {
		return "", fmt.Errorf("picker: %w", err)
	}
	return final.(pickerModel).value(), nil
}
