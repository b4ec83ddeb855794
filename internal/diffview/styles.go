package diffview

import (
	"github.com/charmbracelet/lipgloss"

	"mergeview/internal/fragment"
)

var (
	insertedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Background(lipgloss.Color("22"))
	deletedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("210")).Background(lipgloss.Color("52"))
	modifiedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("153")).Background(lipgloss.Color("17"))
	invalidStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	innerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("94")).Bold(true)
	plainStyle    = lipgloss.NewStyle()
	gutterStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true)
	dividerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
)

func styleFor(t fragment.ChangeType) lipgloss.Style {
	switch t {
	case fragment.Inserted:
		return insertedStyle
	case fragment.Deleted:
		return deletedStyle
	case fragment.Modified:
		return modifiedStyle
	default:
		return plainStyle
	}
}

func markFor(t fragment.ChangeType) rune {
	switch t {
	case fragment.Inserted:
		return '+'
	case fragment.Deleted:
		return '-'
	case fragment.Modified:
		return '~'
	default:
		return ' '
	}
}
