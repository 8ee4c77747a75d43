package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Paths holds all resolved filesystem paths for the .kwscan/ project directory.
// All fields are pre-computed strings, so access never allocates access after construction.
type Paths struct {
	Root   string // .kwscan/
	DB     string // .kwscan/kwscan.db
	Config string // .kwscan/config.yaml

	LogDir    string // .kwscan/log/
	DaemonLog string // .kwscan/log/daemon.log

	RunDir  string // .kwscan/run/
	PIDFile string // .kwscan/run/daemon.pid
}

// NewPaths constructs all resolved paths from a project root directory.
func NewPaths(projectRoot string) *Paths {
	root := filepath.Join(projectRoot, ".kwscan")
	return &Paths{
		Root:   root,
		DB:     filepath.Join(root, "kwscan.db"),
		Config: filepath.Join(root, "config.yaml"),

		LogDir:    filepath.Join(root, "log"),
		DaemonLog: filepath.Join(root, "log", "daemon.log"),

		RunDir:  filepath.Join(root, "run"),
		PIDFile: filepath.Join(root, "run", "daemon.pid"),
	}
}

// EnsureDirs creates all subdirectories under .kwscan/. Idempotent.
func (p *Paths) EnsureDirs() error {
	for _, d := range []string{p.Root, p.LogDir, p.RunDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

// WritePID records the daemon's process id.
func (p *Paths) WritePID(pid int) error {
	return os.WriteFile(p.PIDFile, []byte(strconv.Itoa(pid)+"\n"), 0644)
}

// ReadPID returns the recorded daemon process id.
func (p *Paths) ReadPID() (int, error) {
	data, err := os.ReadFile(p.PIDFile)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", p.PIDFile, err)
	}
	return pid, nil
}

// CleanEphemeral removes ephemeral runtime files (PID file).
// Called on clean daemon shutdown.
func (p *Paths) CleanEphemeral() {
	os.Remove(p.PIDFile)
}
