package collector

import "github.com/shirou/gopsutil/v4/process"

// ChildProcess is a direct child summarized for the info pane.
type ChildProcess struct {
	PID   int32
	Name  string
	State State
}

// Details is the extended information shown in the info pane. It is read
// on demand and never feeds the filtering or dispatch paths.
type Details struct {
	PID          int32
	ParentPID    int32
	State        State
	ThreadCount  int
	Cmdline      []string
	Cwd          string
	Environ      []string
	Children     []ChildProcess
	Capabilities []string
	OpenFiles    []string
	OpenPorts    []string
	Cgroups      []string
	Namespaces   []string
	MemoryMaps   []string
}

// Details gathers extended info for one pid. The second return is false
// when the process no longer exists.
func (c *SystemCollector) Details(pid int32) (*Details, bool) {
	p, err := process.NewProcess(pid)
	if err != nil {
		return nil, false
	}

	d := &Details{PID: pid}
	if ppid, err := p.Ppid(); err == nil && ppid > 0 {
		d.ParentPID = ppid
	}
	if codes, err := p.Status(); err == nil {
		d.State = stateFromStatus(codes)
	}
	if threads, err := p.NumThreads(); err == nil {
		d.ThreadCount = int(threads)
	}
	if d.ThreadCount == 0 {
		d.ThreadCount = 1
	}
	d.Cmdline, _ = p.CmdlineSlice()
	d.Cwd, _ = p.Cwd()
	d.Environ, _ = p.Environ()

	for _, snap := range c.Processes(true) {
		if snap.ParentPID == pid {
			d.Children = append(d.Children, ChildProcess{
				PID:   snap.PID,
				Name:  snap.Name,
				State: snap.State,
			})
		}
	}

	d.Capabilities = readCapabilities(pid)
	d.OpenFiles = readOpenFiles(pid)
	d.OpenPorts = readOpenPorts(pid)
	d.Cgroups = readCgroups(pid)
	d.Namespaces = readNamespaces(pid)
	d.MemoryMaps = readMemoryMaps(pid)
	return d, true
}
