package signals

import (
	"strings"

	"procsweep/internal/collector"
)

// Severity grades how dangerous signaling a process is.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityElevated
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityElevated:
		return "Elevated"
	case SeverityCritical:
		return "Critical"
	default:
		return "None"
	}
}

// Risk is a severity with a human reason, computed on demand and never
// stored on the snapshot.
type Risk struct {
	Severity Severity
	Reason   string
}

// Combine merges two assessments, keeping the more severe one. A Critical
// result can never be downgraded by a later Elevated match.
func (r Risk) Combine(other Risk) Risk {
	if other.Severity > r.Severity {
		return other
	}
	return r
}

// Name substrings that mark a process as load-bearing for the host or the
// user's session. Checked against the lowercased process name.
var criticalNames = []struct {
	substr   string
	severity Severity
	reason   string
}{
	{"systemd", SeverityCritical, "init system"},
	{"launchd", SeverityCritical, "init system"},
	{"xorg", SeverityCritical, "display server"},
	{"xwayland", SeverityCritical, "display server"},
	{"windowserver", SeverityCritical, "display server"},
	{"gnome-shell", SeverityCritical, "desktop shell"},
	{"plasmashell", SeverityCritical, "desktop shell"},
	{"kwin", SeverityCritical, "window manager"},
	{"mutter", SeverityCritical, "window manager"},
	{"sway", SeverityCritical, "window manager"},
	{"hyprland", SeverityCritical, "window manager"},
	{"loginwindow", SeverityCritical, "login session"},
	{"sshd", SeverityElevated, "remote access daemon"},
	{"networkmanager", SeverityElevated, "network daemon"},
	{"dbus", SeverityElevated, "message bus"},
	{"pipewire", SeverityElevated, "audio server"},
	{"pulseaudio", SeverityElevated, "audio server"},
	{"wireplumber", SeverityElevated, "audio server"},
	{"cron", SeverityElevated, "scheduler daemon"},
}

// AssessRisk classifies how risky signaling this process would be.
// Matches combine by maximum severity; the root-owned rule applies only
// when nothing more specific matched.
func AssessRisk(snap collector.Snapshot, callerParent int32) Risk {
	risk := Risk{}

	if snap.PID == 1 {
		risk = risk.Combine(Risk{SeverityCritical, "init process"})
	}
	if callerParent > 0 && snap.PID == callerParent {
		risk = risk.Combine(Risk{SeverityCritical, "current shell"})
	}

	name := strings.ToLower(snap.Name)
	for _, entry := range criticalNames {
		if strings.Contains(name, entry.substr) {
			risk = risk.Combine(Risk{entry.severity, entry.reason})
		}
	}

	if risk.Severity == SeverityNone && snap.User == "root" {
		risk = Risk{SeverityElevated, "root-owned process"}
	}

	return risk
}
