package cmd

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderConvertHelp renders the help text for the convert command with lipgloss styling
func renderConvertHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginTop(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("10"))

	commandStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("14"))

	commentStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Italic(true)

	flagStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("Examples"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Parts on the command line"))
	b.WriteString("\n")
	b.WriteString("  " + commandStyle.Render("cad-to-h5m convert blanket.stp:mat1 firstwall.stp:tungsten -o dagmc.h5m"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Sector model with reflecting cut faces"))
	b.WriteString("\n")
	b.WriteString("  " + commandStyle.Render("cad-to-h5m convert blanket.stp:mat1 wedge.stp:vacuum:reflective \\"))
	b.WriteString("\n")
	b.WriteString("    " + commandStyle.Render("--reflective-name reflective --cubit dagmc.cub5"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Part syntax:"))
	b.WriteString("\n")

	specs := []struct {
		spec string
		desc string
	}{
		{"file:tag", "Import file and tag its volumes with mat:tag"},
		{"file:tag:reflective", "Also track the reflecting cut faces of this part"},
		{"file", ".stp, .step or .sat"},
		{"tag", "Material tag, at most 27 characters"},
	}

	maxWidth := 0
	for _, s := range specs {
		if len(s.spec) > maxWidth {
			maxWidth = len(s.spec)
		}
	}

	for _, s := range specs {
		padding := strings.Repeat(" ", maxWidth-len(s.spec)+2)
		b.WriteString("  " + flagStyle.Render(s.spec) + padding + commentStyle.Render(s.desc))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("YAML config mode"))
	b.WriteString("\n")
	b.WriteString("  " + commandStyle.Render("cad-to-h5m convert config.yaml"))
	b.WriteString("\n")
	b.WriteString("  " + commentStyle.Render("Flags given on the command line override the config file"))
	b.WriteString("\n")

	return b.String()
}
