package main

import (
	"io"
	"os"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
)

var (
	pathStyle     = lipgloss.NewStyle().Bold(true)
	positionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // gray
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // red
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // green
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4")) // blue
)

// styledWriter downsamples styled output to what w supports, stripping it
// entirely when w is not a terminal.
func styledWriter(w io.Writer) io.Writer {
	return colorprofile.NewWriter(w, os.Environ())
}
