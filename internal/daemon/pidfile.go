// Package daemon tracks a background API server through a small state file.
package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Record describes a running server.
type Record struct {
	PID       int       `json:"pid"`
	Port      int       `json:"port"`
	StartedAt time.Time `json:"startedAt"`
}

// PIDFile manages the state file for daemon process tracking.
type PIDFile struct {
	Path string
}

// NewPIDFile creates a PIDFile manager for the given path.
func NewPIDFile(path string) *PIDFile {
	return &PIDFile{Path: path}
}

// Write records the current process as a server listening on port.
func (p *PIDFile) Write(port int) error {
	return p.WriteRecord(Record{PID: os.Getpid(), Port: port, StartedAt: time.Now().UTC()})
}

// WriteRecord writes rec to the file, creating parent directories.
func (p *PIDFile) WriteRecord(rec Record) error {
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o755); err != nil {
		return fmt.Errorf("create pid dir: %w", err)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return os.WriteFile(p.Path, append(data, '\n'), 0o644)
}

// Read reads the record from the file. A file holding only a PID number is
// accepted and yields a record with Port 0.
func (p *PIDFile) Read() (Record, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return Record{}, err
	}

	text := strings.TrimSpace(string(data))
	var rec Record
	if strings.HasPrefix(text, "{") {
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return Record{}, fmt.Errorf("invalid PID file content: %w", err)
		}
	} else {
		pid, err := strconv.Atoi(text)
		if err != nil {
			return Record{}, fmt.Errorf("invalid PID file content: %w", err)
		}
		rec.PID = pid
	}
	if rec.PID <= 0 {
		return Record{}, fmt.Errorf("invalid PID file content: pid %d", rec.PID)
	}
	return rec, nil
}

// Remove deletes the PID file. A missing file is not an error.
func (p *PIDFile) Remove() error {
	if err := os.Remove(p.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Status reports the recorded server and whether it is still alive. A file
// left behind by a dead process is removed.
func (p *PIDFile) Status() (Record, bool) {
	rec, running := p.IsRunning()
	if rec.PID != 0 && !running {
		_ = p.Remove()
	}
	return rec, running
}
