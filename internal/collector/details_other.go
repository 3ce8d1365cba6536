//go:build !linux

package collector

// The /proc readers are Linux-only; elsewhere the info pane shows the
// gopsutil-backed basics and leaves these sections empty.

func readCapabilities(pid int32) []string { return nil }
func readOpenFiles(pid int32) []string    { return nil }
func readOpenPorts(pid int32) []string    { return nil }
func readCgroups(pid int32) []string      { return nil }
func readNamespaces(pid int32) []string   { return nil }
func readMemoryMaps(pid int32) []string   { return nil }
