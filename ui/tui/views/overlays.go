package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"procsweep/internal/session"
	"procsweep/internal/signals"
	"procsweep/ui/tui/styles"
)

// RenderSignalMenu draws the full signal picker.
func RenderSignalMenu(sess *session.Session, theme styles.Theme, height int) string {
	all := signals.All()
	top, bottom := viewportBounds(sess.SignalMenuIndex(), len(all), height-4)

	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Send signal") + "\n\n")
	for i := top; i < bottom; i++ {
		sig := all[i]
		line := fmt.Sprintf("%2d %-10s %s", sig.Number(), sig.String(), sig.Description())
		if i == sess.SignalMenuIndex() {
			line = theme.Selected.Render(line)
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n" + theme.Dim.Render("enter to send, esc to cancel"))
	return theme.Overlay.Render(sb.String())
}

// RenderShellConfirm draws the shell guard confirmation for a deferred
// kill, with the risk classification when one applies.
func RenderShellConfirm(pending *signals.Pending, risk signals.Risk, theme styles.Theme) string {
	var sb strings.Builder
	if pending.Kind == signals.PendingTree {
		sb.WriteString("This subtree includes the shell you are running in.\n")
	} else {
		sb.WriteString("One of these targets is the shell you are running in.\n")
	}
	sb.WriteString(fmt.Sprintf("Signal: %s  Targets: %v\n", pending.Signal, pending.Targets))

	switch risk.Severity {
	case signals.SeverityCritical:
		sb.WriteString(theme.RiskCritical.Render("CRITICAL: "+risk.Reason) + "\n")
	case signals.SeverityElevated:
		sb.WriteString(theme.RiskElevated.Render("elevated: "+risk.Reason) + "\n")
	}

	sb.WriteString("\n" + theme.StatusWarn.Render("Kill it anyway? [y/n]"))
	return theme.Prompt.Render(sb.String())
}

// RenderHistory draws the signal history overlay, newest first.
func RenderHistory(history *signals.History, theme styles.Theme) string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Signal history") + "\n\n")

	events := history.Events()
	if len(events) == 0 {
		sb.WriteString(theme.Dim.Render("no signals sent yet"))
	}
	for _, e := range events {
		status := theme.StatusInfo.Render("ok")
		if !e.Succeeded() {
			status = theme.StatusError.Render(signals.Explain(e.Err))
		}
		sb.WriteString(fmt.Sprintf("%s  %-9s → %s (%d)  %s\n",
			e.Time.Format("15:04:05"), e.Signal, e.ProcessName, e.PID, status))
	}
	sb.WriteString("\n" + theme.Dim.Render("h or esc to close"))
	return theme.Overlay.Render(sb.String())
}

// RenderHelp draws the key binding overlay.
func RenderHelp(theme styles.Theme) string {
	rows := []struct{ key, what string }{
		{"/", "search (text, /regex/, /killed)"},
		{"j k ↑ ↓", "move"},
		{"g G", "top / bottom"},
		{"space", "mark for multi-kill, u clears"},
		{"x X", "kill with SIGTERM / SIGKILL"},
		{"s", "pick another signal"},
		{"t", "process tree (c folds a subtree)"},
		{"i enter", "process details"},
		{"a", "toggle other users' processes"},
		{"< >", "cycle sort column, r reverses"},
		{"h", "signal history"},
		{"q", "quit"},
	}

	var sb strings.Builder
	sb.WriteString(theme.Title.Render("procsweep keys") + "\n\n")
	for _, r := range rows {
		sb.WriteString(theme.Header.Render(pad(r.key, 10)) + " " + r.what + "\n")
	}
	sb.WriteString("\n" + theme.Dim.Render("? or esc to close"))
	return theme.Overlay.Render(sb.String())
}

// RenderSearchLine draws the query input line with its mode tag.
func RenderSearchLine(sess *session.Session, theme styles.Theme, inputView string) string {
	tag := theme.Dim.Render("[" + sess.QueryMode().String() + "]")
	if sess.QueryError() != nil {
		tag = theme.StatusError.Render("[invalid]")
	}
	if sess.Mode() == session.ModeSearch {
		return tag + " " + inputView
	}
	if sess.QueryRaw() == "" {
		return theme.Dim.Render("press / to search")
	}
	return tag + " " + sess.QueryRaw()
}

// RenderStatusBar draws the bottom line: status message on the left,
// table counters on the right.
func RenderStatusBar(sess *session.Session, theme styles.Theme, width int) string {
	status := sess.Status()
	var left string
	switch status.Level {
	case session.LevelError:
		left = theme.StatusError.Render(status.Text)
	case session.LevelWarn:
		left = theme.StatusWarn.Render(status.Text)
	default:
		left = theme.StatusInfo.Render(status.Text)
	}

	counter := fmt.Sprintf("%d shown", len(sess.Rows()))
	if sess.QueryMode().String() == "killed" {
		counter = fmt.Sprintf("%d killed", len(sess.HistoryRows()))
	}
	if n := sess.MarkedCount(); n > 0 {
		counter = fmt.Sprintf("%d marked · %s", n, counter)
	}
	right := theme.Dim.Render(counter)

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
