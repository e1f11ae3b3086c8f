//go:build !windows

package daemon

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIDFile_WriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.pid")
	pf := NewPIDFile(path)

	started := time.Date(2025, 11, 27, 9, 30, 0, 0, time.UTC)
	require.NoError(t, pf.WriteRecord(Record{PID: 12345, Port: 9090, StartedAt: started}))

	rec, err := pf.Read()
	require.NoError(t, err)
	assert.Equal(t, 12345, rec.PID)
	assert.Equal(t, 9090, rec.Port)
	assert.True(t, started.Equal(rec.StartedAt))
}

func TestPIDFile_Write_CurrentPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "serve.pid")
	pf := NewPIDFile(path)

	require.NoError(t, pf.Write(8080))

	rec, err := pf.Read()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), rec.PID)
	assert.Equal(t, 8080, rec.Port)
	assert.False(t, rec.StartedAt.IsZero())
}

func TestPIDFile_Read_PlainPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.pid")
	require.NoError(t, os.WriteFile(path, []byte("4242\n"), 0o644))

	rec, err := NewPIDFile(path).Read()
	require.NoError(t, err)
	assert.Equal(t, 4242, rec.PID)
	assert.Zero(t, rec.Port)
}

func TestPIDFile_Read_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent.pid")

	_, err := NewPIDFile(path).Read()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPIDFile_Read_InvalidContent(t *testing.T) {
	for name, content := range map[string]string{
		"garbage":  "not-a-number\n",
		"bad json": "{\"pid\":",
		"zero pid": "{\"pid\":0,\"port\":8080}",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.pid")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			_, err := NewPIDFile(path).Read()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid PID file content")
		})
	}
}

func TestPIDFile_Remove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.pid")
	pf := NewPIDFile(path)
	require.NoError(t, pf.WriteRecord(Record{PID: 1}))

	require.NoError(t, pf.Remove())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Removing again is fine
	assert.NoError(t, pf.Remove())
}

func TestPIDFile_IsRunning_CurrentProcess(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "serve.pid"))
	require.NoError(t, pf.Write(8080))

	rec, running := pf.IsRunning()
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), rec.PID)
}

func TestPIDFile_IsRunning_DeadProcess(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "serve.pid"))

	// Use a very high PID that almost certainly doesn't exist.
	require.NoError(t, pf.WriteRecord(Record{PID: 999999, Port: 8080}))

	rec, running := pf.IsRunning()
	assert.Equal(t, 999999, rec.PID)
	assert.False(t, running)
}

func TestPIDFile_IsRunning_NoFile(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "nonexistent.pid"))

	rec, running := pf.IsRunning()
	assert.Zero(t, rec.PID)
	assert.False(t, running)
}

func TestPIDFile_Status_RemovesStaleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.pid")
	pf := NewPIDFile(path)
	require.NoError(t, pf.WriteRecord(Record{PID: 999999, Port: 8080}))

	_, running := pf.Status()
	assert.False(t, running)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "stale pid file should be removed")
}

func TestPIDFile_Status_KeepsLiveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.pid")
	pf := NewPIDFile(path)
	require.NoError(t, pf.Write(8080))

	rec, running := pf.Status()
	assert.True(t, running)
	assert.Equal(t, 8080, rec.Port)
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestPIDFile_Signal(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "serve.pid"))
	require.NoError(t, pf.Write(8080))

	// Signal 0 just checks if process exists, doesn't actually send a signal.
	assert.NoError(t, pf.Signal(syscall.Signal(0)))
}

func TestPIDFile_Signal_NoFile(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "nonexistent.pid"))

	err := pf.Signal(syscall.Signal(0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read PID file")
}
