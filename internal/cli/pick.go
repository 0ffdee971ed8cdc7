package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/etiket/pkg/errors"
	"github.com/matzehuels/etiket/pkg/rows"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listCheckedStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// maxPickColumns bounds the number of data columns shown in the picker table.
const maxPickColumns = 4

// =============================================================================
// RowPickerModel - Interactive row selection
// =============================================================================

// RowPickerModel is the bubbletea model for choosing which rows to print.
type RowPickerModel struct {
	Set       *rows.Set
	Cursor    int
	Checked   map[int]bool
	Height    int
	Offset    int
	Confirmed bool
}

// NewRowPickerModel creates a picker over set with no rows checked.
func NewRowPickerModel(set *rows.Set) RowPickerModel {
	return RowPickerModel{
		Set:     set,
		Checked: make(map[int]bool),
		Height:  15,
	}
}

func (m RowPickerModel) Init() tea.Cmd {
	return nil
}

func (m RowPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < m.Set.Len()-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if m.Checked[m.Cursor] {
				delete(m.Checked, m.Cursor)
			} else {
				m.Checked[m.Cursor] = true
			}
		case "a":
			if len(m.Checked) == m.Set.Len() {
				m.Checked = make(map[int]bool)
			} else {
				for i := range m.Set.Rows {
					m.Checked[i] = true
				}
			}
		case "enter":
			if len(m.Checked) == 0 {
				m.Checked[m.Cursor] = true
			}
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

// Selection returns the checked row indices in ascending order.
func (m RowPickerModel) Selection() []int {
	var out []int
	for i := range m.Set.Rows {
		if m.Checked[i] {
			out = append(out, i)
		}
	}
	return out
}

func (m RowPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Rows to Print"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ print  q quit"))
	b.WriteString("\n\n")

	cols := m.Set.Columns
	if len(cols) > maxPickColumns {
		cols = cols[:maxPickColumns]
	}

	end := min(m.Offset+m.Height, m.Set.Len())
	tableRows := [][]string{}
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		check := "[ ]"
		if m.Checked[i] {
			check = "[x]"
		}
		cells := []string{cursor + check, fmt.Sprintf("%d", i)}
		for _, col := range cols {
			v, _ := m.Set.Rows[i].Get(col)
			cells = append(cells, v)
		}
		tableRows = append(tableRows, cells)
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	headers := append([]string{"", "#"}, cols...)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(tableRows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case m.Checked[idx]:
				return listCheckedStyle
			default:
				return lipgloss.NewStyle()
			}
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] %d selected", m.Cursor+1, m.Set.Len(), len(m.Checked))))

	return b.String()
}

// pickRows runs the interactive picker and returns the chosen row indices.
func pickRows(set *rows.Set) ([]int, error) {
	final, err := tea.NewProgram(NewRowPickerModel(set)).Run()
	if err != nil {
		return nil, fmt.Errorf("row picker: %w", err)
	}
	m := final.(RowPickerModel)
	if !m.Confirmed {
		return nil, errors.New(errors.ErrCodeInvalidSelection, "no rows selected")
	}
	return m.Selection(), nil
}
