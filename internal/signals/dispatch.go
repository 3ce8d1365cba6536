package signals

import (
	"errors"
	"log/slog"
	"slices"
	"time"

	"procsweep/internal/collector"
)

// Outcome is the result of one delivery attempt. Failures are data; a
// batch never aborts because one target was bad.
type Outcome struct {
	PID    int32
	Name   string
	Signal Signal
	Err    error
}

// TreeOutcome is the result of one subtree kill. Traversal is fail-fast:
// Signaled holds the pids delivered before the first error, and nothing is
// rolled back (signals cannot be un-sent).
type TreeOutcome struct {
	Root     int32
	Signaled []int32
	Err      error
}

// PendingKind tags the deferred destructive action awaiting confirmation.
type PendingKind int

const (
	PendingDirect PendingKind = iota
	PendingTree
)

// Pending is a destructive action deferred by the shell guard. At most one
// is outstanding; the session owns it until confirmed or cancelled.
type Pending struct {
	Kind    PendingKind
	Targets []int32
	Signal  Signal
}

// Dispatcher validates and executes signal delivery against a Provider,
// recording every attempt in the bounded history.
type Dispatcher struct {
	provider collector.Provider
	history  *History
	now      func() time.Time
	log      *slog.Logger
}

func NewDispatcher(provider collector.Provider, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{
		provider: provider,
		history:  NewHistory(),
		now:      time.Now,
		log:      log,
	}
}

func (d *Dispatcher) History() *History { return d.history }

// Send delivers sig to each pid independently, returning one outcome per
// target. When the shell guard fires the whole batch is deferred into the
// returned Pending instead; allowShell bypasses the guard.
func (d *Dispatcher) Send(pids []int32, sig Signal, allowShell bool) ([]Outcome, *Pending) {
	if pending := d.shellGuard(pids, pids, sig, PendingDirect, allowShell); pending != nil {
		return nil, pending
	}

	byPID := d.snapshotIndex()
	outcomes := make([]Outcome, 0, len(pids))
	for _, pid := range pids {
		outcomes = append(outcomes, d.signalOne(byPID, pid, sig))
	}
	return outcomes, nil
}

// SendTree delivers sig to each root's whole subtree in post-order, so
// children are always signaled before the parent that spawned them. Each
// root's traversal is fail-fast; roots are independent of each other.
func (d *Dispatcher) SendTree(roots []int32, sig Signal, allowShell bool) ([]TreeOutcome, *Pending) {
	byPID := d.snapshotIndex()
	children := childIndex(byPID)

	var expanded []int32
	for _, root := range roots {
		expanded = append(expanded, postOrder(root, children)...)
	}
	if pending := d.shellGuard(roots, expanded, sig, PendingTree, allowShell); pending != nil {
		return nil, pending
	}

	outcomes := make([]TreeOutcome, 0, len(roots))
	for _, root := range roots {
		outcomes = append(outcomes, d.killTree(byPID, children, root, sig))
	}
	return outcomes, nil
}

func (d *Dispatcher) killTree(byPID map[int32]collector.Snapshot, children map[int32][]int32, root int32, sig Signal) TreeOutcome {
	out := TreeOutcome{Root: root}

	if root == 1 || root == d.provider.PID() {
		out.Err = targetErr(root, ErrProtectedTarget)
		return out
	}
	if _, ok := byPID[root]; !ok {
		out.Err = targetErr(root, ErrNotFound)
		return out
	}

	for _, pid := range postOrder(root, children) {
		result := d.signalOne(byPID, pid, sig)
		if result.Err != nil {
			out.Err = targetErr(pid, result.Err)
			return out
		}
		out.Signaled = append(out.Signaled, pid)
	}
	return out
}

// signalOne runs the full safety pipeline for a single target and records
// the attempt in history regardless of outcome.
func (d *Dispatcher) signalOne(byPID map[int32]collector.Snapshot, pid int32, sig Signal) Outcome {
	out := Outcome{PID: pid, Name: "unknown", Signal: sig}

	snap, ok := byPID[pid]
	if ok {
		out.Name = snap.Name
	}

	switch {
	case !ok:
		out.Err = ErrNotFound
	case pid == 1 || pid == d.provider.PID():
		out.Err = ErrProtectedTarget
	case !d.provider.IsRoot() && snap.User == "unknown":
		out.Err = ErrPermissionDenied
	case !d.provider.IsRoot() && snap.User != d.provider.Username():
		out.Err = ErrPermissionDenied
	case !sig.Valid():
		out.Err = ErrPlatformUnsupported
	default:
		out.Err = mapRawError(d.provider.Kill(pid, sig.Number()))
	}

	d.history.Record(Event{
		Time:        d.now(),
		PID:         pid,
		ProcessName: out.Name,
		Signal:      sig,
		Err:         out.Err,
	})
	if out.Err != nil {
		d.log.Warn("signal dispatch failed", "pid", pid, "signal", sig.String(), "error", out.Err)
	} else {
		d.log.Info("signal dispatched", "pid", pid, "signal", sig.String(), "name", out.Name)
	}
	return out
}

// shellGuard defers the whole operation when a non-root caller is about to
// signal their own shell. roots carries the user-facing targets to retry
// with, expanded the full set of pids the operation would touch.
func (d *Dispatcher) shellGuard(roots, expanded []int32, sig Signal, kind PendingKind, allowShell bool) *Pending {
	if allowShell || d.provider.IsRoot() {
		return nil
	}
	parent := d.provider.ParentPID()
	if parent <= 0 || !slices.Contains(expanded, parent) {
		return nil
	}
	return &Pending{Kind: kind, Targets: slices.Clone(roots), Signal: sig}
}

func (d *Dispatcher) snapshotIndex() map[int32]collector.Snapshot {
	snaps := d.provider.Processes(true)
	byPID := make(map[int32]collector.Snapshot, len(snaps))
	for _, s := range snaps {
		byPID[s.PID] = s
	}
	return byPID
}

func childIndex(byPID map[int32]collector.Snapshot) map[int32][]int32 {
	children := make(map[int32][]int32)
	for _, s := range byPID {
		if s.ParentPID > 0 {
			children[s.ParentPID] = append(children[s.ParentPID], s.PID)
		}
	}
	for _, list := range children {
		slices.Sort(list)
	}
	return children
}

// postOrder lists the subtree rooted at pid, all descendants before their
// ancestor. The visited set keeps contradictory parent data from looping.
func postOrder(root int32, children map[int32][]int32) []int32 {
	var order []int32
	visited := make(map[int32]bool)

	var walk func(pid int32)
	walk = func(pid int32) {
		if visited[pid] {
			return
		}
		visited[pid] = true
		for _, child := range children[pid] {
			walk(child)
		}
		order = append(order, pid)
	}
	walk(root)
	return order
}

func mapRawError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, collector.ErrNoProcess):
		return ErrNotFound
	case errors.Is(err, collector.ErrPermission):
		return ErrPermissionDenied
	case errors.Is(err, collector.ErrBadSignal):
		return ErrPlatformUnsupported
	default:
		return err
	}
}
