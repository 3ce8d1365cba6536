// Package signals owns signal dispatch: the signal table, the safety
// pipeline applied before every delivery, subtree kills, risk
// classification, and the bounded dispatch history.
package signals

// Signal is a classic unix signal identified by its number.
type Signal int

const (
	SIGHUP Signal = iota + 1
	SIGINT
	SIGQUIT
	SIGILL
	SIGTRAP
	SIGABRT
	SIGBUS
	SIGFPE
	SIGKILL
	SIGUSR1
	SIGSEGV
	SIGUSR2
	SIGPIPE
	SIGALRM
	SIGTERM
	SIGSTKFLT
	SIGCHLD
	SIGCONT
	SIGSTOP
	SIGTSTP
	SIGTTIN
	SIGTTOU
	SIGURG
	SIGXCPU
	SIGXFSZ
	SIGVTALRM
	SIGPROF
	SIGWINCH
	SIGIO
	SIGPWR
	SIGSYS
)

// Default is what kill keys and the signal menu preselect.
const Default = SIGTERM

var signalNames = [...]string{
	"SIGHUP", "SIGINT", "SIGQUIT", "SIGILL", "SIGTRAP", "SIGABRT",
	"SIGBUS", "SIGFPE", "SIGKILL", "SIGUSR1", "SIGSEGV", "SIGUSR2",
	"SIGPIPE", "SIGALRM", "SIGTERM", "SIGSTKFLT", "SIGCHLD", "SIGCONT",
	"SIGSTOP", "SIGTSTP", "SIGTTIN", "SIGTTOU", "SIGURG", "SIGXCPU",
	"SIGXFSZ", "SIGVTALRM", "SIGPROF", "SIGWINCH", "SIGIO", "SIGPWR",
	"SIGSYS",
}

var signalDescriptions = [...]string{
	"reload config", "interrupt", "quit & core dump", "illegal instruction",
	"trace trap", "abort", "bus error", "floating point exception",
	"force kill", "user signal 1", "segmentation fault", "user signal 2",
	"broken pipe", "alarm", "graceful shutdown", "stack fault",
	"child status change", "resume", "stop process", "terminal stop",
	"background read", "background write", "urgent condition",
	"cpu time limit exceeded", "file size limit exceeded", "virtual alarm",
	"profiling timer", "window resize", "asynchronous i/o", "power failure",
	"bad system call",
}

// All returns every signal in numeric order.
func All() []Signal {
	out := make([]Signal, len(signalNames))
	for i := range out {
		out[i] = Signal(i + 1)
	}
	return out
}

func (s Signal) Valid() bool {
	return s >= SIGHUP && s <= SIGSYS
}

func (s Signal) Number() int { return int(s) }

func (s Signal) String() string {
	if !s.Valid() {
		return "SIG?"
	}
	return signalNames[s-1]
}

func (s Signal) Description() string {
	if !s.Valid() {
		return "unknown signal"
	}
	return signalDescriptions[s-1]
}

// FromNumber maps a raw signal number onto a Signal, reporting whether
// the number is in the supported range.
func FromNumber(n int) (Signal, bool) {
	s := Signal(n)
	return s, s.Valid()
}
