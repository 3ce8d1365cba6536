package collector

import (
	"log/slog"
	"os"
	"os/user"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// ============================================================================
// DATA STRUCTURES
// ============================================================================

// State is the lifecycle state reported by the OS for a process.
type State int

const (
	StateUnknown State = iota
	StateRunning
	StateSleeping
	StateStopped
	StateZombie
	StateIdle
	StateWaiting
	StateLocked
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "Running"
	case StateSleeping:
		return "Sleeping"
	case StateStopped:
		return "Stopped"
	case StateZombie:
		return "Zombie"
	case StateIdle:
		return "Idle"
	case StateWaiting:
		return "Waiting"
	case StateLocked:
		return "Locked"
	default:
		return "Unknown"
	}
}

func stateFromStatus(codes []string) State {
	if len(codes) == 0 {
		return StateUnknown
	}
	switch codes[0] {
	case process.Running:
		return StateRunning
	case process.Sleep:
		return StateSleeping
	case process.Stop:
		return StateStopped
	case process.Zombie:
		return StateZombie
	case process.Idle:
		return StateIdle
	case process.Wait:
		return StateWaiting
	case process.Lock:
		return StateLocked
	default:
		return StateUnknown
	}
}

// Snapshot is one process as observed during a single refresh cycle.
// Snapshots are immutable; the engine only derives views from them.
type Snapshot struct {
	PID         int32
	ParentPID   int32 // 0 when the parent is unknown
	Name        string
	CPUPercent  float64
	MemoryBytes uint64
	UID         uint32
	User        string
	Runtime     time.Duration
	Cmdline     []string
	Cwd         string
	Environ     []string
	State       State
}

// ============================================================================
// INTERFACE DEFINITION
// ============================================================================

// Provider is the surface the session engine consumes. It enumerates
// processes, resolves caller identity, reads extended details for the info
// pane, and performs the raw signal syscall.
type Provider interface {
	Processes(includeSystem bool) []Snapshot
	Details(pid int32) (*Details, bool)
	Kill(pid int32, signum int) error
	TotalMemoryBytes() uint64

	Username() string
	IsRoot() bool
	PID() int32
	ParentPID() int32
}

// ============================================================================
// CONCRETE IMPLEMENTATION
// ============================================================================

// MinRefreshInterval is the floor between full process-table refreshes.
// CPU deltas sampled faster than this are meaningless, so callers inside
// the window get the cached snapshot list instead of a fresh OS query.
const MinRefreshInterval = 200 * time.Millisecond

// SystemCollector is the gopsutil-backed Provider. All caches are fields,
// never package state, so independent collectors stay isolated.
type SystemCollector struct {
	handles     map[int32]*process.Process // reused so CPU% deltas accumulate
	userCache   map[uint32]string
	cached      []Snapshot
	lastRefresh time.Time
	minInterval time.Duration

	currentUID uint32
	username   string
	isRoot     bool
	pid        int32
	ppid       int32

	lookupUser func(uid string) (string, error)
	log        *slog.Logger
}

func NewSystemCollector(log *slog.Logger) *SystemCollector {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	c := &SystemCollector{
		handles:     make(map[int32]*process.Process),
		userCache:   make(map[uint32]string),
		minInterval: MinRefreshInterval,
		currentUID:  uint32(os.Getuid()),
		isRoot:      os.Geteuid() == 0,
		pid:         int32(os.Getpid()),
		ppid:        int32(os.Getppid()),
		lookupUser: func(uid string) (string, error) {
			u, err := user.LookupId(uid)
			if err != nil {
				return "", err
			}
			return u.Username, nil
		},
		log: log,
	}
	c.username = c.usernameForUID(c.currentUID)
	return c
}

func (c *SystemCollector) Username() string { return c.username }
func (c *SystemCollector) IsRoot() bool     { return c.isRoot }
func (c *SystemCollector) PID() int32       { return c.pid }
func (c *SystemCollector) ParentPID() int32 { return c.ppid }

// Processes returns a snapshot of all live processes. Calls inside the
// minimum refresh window reuse the previous snapshot list.
func (c *SystemCollector) Processes(includeSystem bool) []Snapshot {
	if c.cached != nil && time.Since(c.lastRefresh) < c.minInterval {
		return filterOwned(c.cached, c.currentUID, includeSystem)
	}

	procs, err := process.Processes()
	if err != nil {
		c.log.Warn("process enumeration failed", "error", err)
		return filterOwned(c.cached, c.currentUID, includeSystem)
	}

	snaps := make([]Snapshot, 0, len(procs))
	seen := make(map[int32]bool, len(procs))

	for _, p := range procs {
		pid := p.Pid
		handle, ok := c.handles[pid]
		if !ok {
			handle = p
			c.handles[pid] = handle
		}

		name, err := handle.Name()
		if err != nil {
			continue // vanished mid-enumeration
		}

		snap := Snapshot{PID: pid, Name: name}
		snap.CPUPercent, _ = handle.CPUPercent()
		if info, err := handle.MemoryInfo(); err == nil && info != nil {
			snap.MemoryBytes = info.RSS
		}
		if uids, err := handle.Uids(); err == nil && len(uids) > 0 {
			snap.UID = uids[0]
			snap.User = c.usernameForUID(uids[0])
		} else {
			snap.User = "unknown"
		}
		if created, err := handle.CreateTime(); err == nil && created > 0 {
			snap.Runtime = time.Since(time.UnixMilli(created))
		}
		snap.Cmdline, _ = handle.CmdlineSlice()
		snap.Cwd, _ = handle.Cwd()
		snap.Environ, _ = handle.Environ()
		if ppid, err := handle.Ppid(); err == nil && ppid > 0 {
			snap.ParentPID = ppid
		}
		if codes, err := handle.Status(); err == nil {
			snap.State = stateFromStatus(codes)
		}

		seen[pid] = true
		snaps = append(snaps, snap)
	}

	for pid := range c.handles {
		if !seen[pid] {
			delete(c.handles, pid)
		}
	}

	c.cached = snaps
	c.lastRefresh = time.Now()
	return filterOwned(snaps, c.currentUID, includeSystem)
}

func (c *SystemCollector) TotalMemoryBytes() uint64 {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0
	}
	return vm.Total
}

func (c *SystemCollector) usernameForUID(uid uint32) string {
	if name, ok := c.userCache[uid]; ok {
		return name
	}
	name, err := c.lookupUser(strconv.FormatUint(uint64(uid), 10))
	if err != nil || name == "" {
		name = "unknown"
	}
	c.userCache[uid] = name
	return name
}

// filterOwned narrows a snapshot list to processes owned by the caller
// unless system processes were requested. Processes with an unresolved
// owner are treated as system processes.
func filterOwned(snaps []Snapshot, uid uint32, includeSystem bool) []Snapshot {
	if includeSystem {
		return snaps
	}
	owned := make([]Snapshot, 0, len(snaps))
	for _, s := range snaps {
		if s.User != "unknown" && s.UID == uid {
			owned = append(owned, s)
		}
	}
	return owned
}
