package listener

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// WritePIDFile records the current process id
func WritePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create pid directory: %w", err)
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0600)
}

// RemovePIDFile deletes the pidfile, ignoring a missing one
func RemovePIDFile(path string) {
	_ = os.Remove(path)
}

// ReadPID returns the pid from the pidfile if that process is still alive
func ReadPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid pid file: %w", err)
	}

	// Signal 0 probes for existence without delivering anything
	proc, err := os.FindProcess(pid)
	if err != nil {
		return 0, err
	}
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		return 0, fmt.Errorf("process %d not running: %w", pid, err)
	}

	return pid, nil
}

// IsRunning reports whether the pidfile points at a live process
func IsRunning(path string) bool {
	_, err := ReadPID(path)
	return err == nil
}
