package views

import (
	"fmt"
	"strings"

	"procsweep/internal/session"
	"procsweep/ui/tui/styles"
)

// sectionLimit caps how many entries a collapsed info section shows
// before asking for its expand key.
const sectionLimit = 5

// RenderInfo draws the detail pane for the selected process: identity,
// CPU history chart, children, and the expandable deep-inspection
// sections (environment, files, namespaces, cgroups).
func RenderInfo(sess *session.Session, theme styles.Theme, chart string) string {
	d := sess.Info()
	if d == nil {
		return theme.Dim.Render("  no process selected")
	}

	var sb strings.Builder
	sb.WriteString(theme.Title.Render(fmt.Sprintf("Process %d", d.PID)) + "\n\n")
	sb.WriteString(fmt.Sprintf("Parent: %d   State: %s   Threads: %d\n", d.ParentPID, d.State, d.ThreadCount))
	if len(d.Cmdline) > 0 {
		sb.WriteString("Cmd:    " + strings.Join(d.Cmdline, " ") + "\n")
	}
	if d.Cwd != "" {
		sb.WriteString("Cwd:    " + d.Cwd + "\n")
	}

	if chart != "" {
		sb.WriteString("\n" + theme.Header.Render("CPU history") + "\n")
		sb.WriteString(chart + "\n")
	}

	if len(d.Children) > 0 {
		sb.WriteString("\n" + theme.Header.Render("Children") + "\n")
		for _, c := range d.Children {
			sb.WriteString(fmt.Sprintf("  %d %s (%s)\n", c.PID, c.Name, c.State))
		}
	}
	if len(d.Capabilities) > 0 {
		sb.WriteString("\n" + theme.Header.Render("Capabilities") + " " + strings.Join(d.Capabilities, " ") + "\n")
	}
	if len(d.OpenPorts) > 0 {
		sb.WriteString("\n" + theme.Header.Render("Listening") + "\n")
		for _, p := range d.OpenPorts {
			sb.WriteString("  " + p + "\n")
		}
	}

	sb.WriteString(renderSection(theme, "Environment [e]", d.Environ, sess.InfoExpanded('e')))
	sb.WriteString(renderSection(theme, "Open files [f]", d.OpenFiles, sess.InfoExpanded('f')))
	sb.WriteString(renderSection(theme, "Namespaces [n]", d.Namespaces, sess.InfoExpanded('n')))
	sb.WriteString(renderSection(theme, "Cgroups [c]", d.Cgroups, sess.InfoExpanded('c')))

	if len(d.MemoryMaps) > 0 && sess.InfoExpanded('f') {
		sb.WriteString(renderSection(theme, "Memory maps", d.MemoryMaps, true))
	}

	sb.WriteString("\n" + theme.Dim.Render("esc to close"))
	return sb.String()
}

func renderSection(theme styles.Theme, title string, entries []string, expanded bool) string {
	if len(entries) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n" + theme.Header.Render(title) + "\n")

	shown := entries
	if !expanded && len(shown) > sectionLimit {
		shown = shown[:sectionLimit]
	}
	for _, e := range shown {
		sb.WriteString("  " + e + "\n")
	}
	if !expanded && len(entries) > sectionLimit {
		sb.WriteString(theme.Dim.Render(fmt.Sprintf("  … %d more\n", len(entries)-sectionLimit)))
	}
	return sb.String()
}
