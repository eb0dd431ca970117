package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// daemonRuntimeState is written next to the pid file while the daemon runs.
type daemonRuntimeState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	Store     string    `json:"store"`
}

// pidFile is the path of the daemon's pid file. The runtime state lives
// beside it with a .json suffix.
type pidFile string

func (f pidFile) path() string      { return string(f) }
func (f pidFile) statePath() string { return string(f) + ".json" }

func (f pidFile) read() (int, error) {
	//nolint:gosec // daemon pid path is configured by the local user
	data, err := os.ReadFile(f.path())
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", f.path())
	}
	return pid, nil
}

// claim records the current process, creating the directory if needed.
func (f pidFile) claim(st daemonRuntimeState) error {
	if err := os.MkdirAll(filepath.Dir(f.path()), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}
	if err := os.WriteFile(f.path(), []byte(strconv.Itoa(st.PID)+"\n"), 0o600); err != nil {
		return err
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.statePath(), append(data, '\n'), 0o600)
}

func (f pidFile) release() {
	_ = os.Remove(f.path())
	_ = os.Remove(f.statePath())
}

func (f pidFile) state() (daemonRuntimeState, error) {
	var st daemonRuntimeState
	//nolint:gosec // daemon state path is configured by the local user
	data, err := os.ReadFile(f.statePath())
	if err != nil {
		return st, err
	}
	err = json.Unmarshal(data, &st)
	return st, err
}

// running returns the daemon pid when the pid file names a live process.
func (f pidFile) running() (int, bool) {
	pid, err := f.read()
	if err != nil {
		return 0, false
	}
	return pid, processAlive(pid)
}

// ensureFree fails when a daemon is alive and clears a stale pid file.
func (f pidFile) ensureFree() error {
	pid, err := f.read()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if processAlive(pid) {
		return fmt.Errorf("daemon already running (pid %d)", pid)
	}
	f.release()
	return nil
}

// addr returns the address the live daemon recorded, or fallback.
func (f pidFile) addr(fallback string) string {
	if st, err := f.state(); err == nil && st.Addr != "" {
		return st.Addr
	}
	return fallback
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

func filterDetachArg(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}
