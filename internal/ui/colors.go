package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#008FD5", "#04B575", "#FF5F5F", "#FFA500", "#626262")

// Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title   lipgloss.Style
	success lipgloss.Style
	error   lipgloss.Style
	warning lipgloss.Style
	help    lipgloss.Style
	label   lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title:   NewBold(t).MarginBottom(1),
		success: NewBold(s),
		error:   NewBold(e),
		warning: NewStyle(w),
		help:    NewEm(h),
		label:   NewStyle(h).Width(14),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
