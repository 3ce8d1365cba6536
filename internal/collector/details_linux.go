//go:build linux

package collector

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const memoryMapLimit = 64

func readCapabilities(pid int32) []string {
	file, err := os.Open(fmt.Sprintf("/proc/%d/status", pid))
	if err != nil {
		return nil
	}
	defer file.Close()

	var caps []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := scanner.Text(); strings.HasPrefix(line, "Cap") {
			caps = append(caps, line)
		}
	}
	return caps
}

func readOpenFiles(pid int32) []string {
	dir := fmt.Sprintf("/proc/%d/fd", pid)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		target, err := os.Readlink(filepath.Join(dir, entry.Name()))
		if err != nil {
			target = "<permission denied>"
		}
		files = append(files, fmt.Sprintf("fd %s -> %s", entry.Name(), target))
	}
	sort.Strings(files)
	return files
}

func readOpenPorts(pid int32) []string {
	var ports []string
	for _, table := range []string{"tcp", "tcp6"} {
		file, err := os.Open(fmt.Sprintf("/proc/%d/net/%s", pid, table))
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(file)
		first := true
		for scanner.Scan() {
			line := scanner.Text()
			if first || strings.TrimSpace(line) == "" {
				first = false
				continue
			}
			if parsed, ok := parseTCPLine(line); ok {
				ports = append(ports, table+": "+parsed)
			}
		}
		file.Close()
	}
	return ports
}

func parseTCPLine(line string) (string, bool) {
	columns := strings.Fields(line)
	if len(columns) < 4 {
		return "", false
	}
	return fmt.Sprintf("%s -> %s (%s)", columns[1], columns[2], tcpStateName(columns[3])), true
}

func tcpStateName(code string) string {
	switch code {
	case "01":
		return "ESTABLISHED"
	case "02":
		return "SYN-SENT"
	case "03":
		return "SYN-RECEIVED"
	case "04":
		return "FIN-WAIT-1"
	case "05":
		return "FIN-WAIT-2"
	case "06":
		return "TIME-WAIT"
	case "07":
		return "CLOSE"
	case "08":
		return "CLOSE-WAIT"
	case "09":
		return "LAST-ACK"
	case "0A":
		return "LISTEN"
	case "0B":
		return "CLOSING"
	case "0C":
		return "NEW-SYN-RECV"
	default:
		return "UNKNOWN"
	}
}

func readCgroups(pid int32) []string {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/cgroup", pid))
	if err != nil {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func readNamespaces(pid int32) []string {
	dir := fmt.Sprintf("/proc/%d/ns", pid)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var namespaces []string
	for _, entry := range entries {
		target, err := os.Readlink(filepath.Join(dir, entry.Name()))
		if err != nil {
			target = "<permission denied>"
		}
		namespaces = append(namespaces, entry.Name()+": "+target)
	}
	sort.Strings(namespaces)
	return namespaces
}

func readMemoryMaps(pid int32) []string {
	file, err := os.Open(fmt.Sprintf("/proc/%d/maps", pid))
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() && len(lines) < memoryMapLimit {
		lines = append(lines, scanner.Text())
	}
	if len(lines) == memoryMapLimit {
		lines = append(lines, "...")
	}
	return lines
}
