package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/climops/precip-analysis/internal/domain"
)

// DiagnosticsFileName is the diagnostics log's name inside the output
// directory.
const DiagnosticsFileName = "error_log.txt"

// DiagnosticsLog collects per-sample and per-day problems for operator
// review. The file is truncated once at run start and then only appended to,
// so it always describes the current run. Safe for concurrent window jobs.
type DiagnosticsLog struct {
	mu   sync.Mutex
	file *os.File
}

// OpenDiagnosticsLog truncates and opens the run's diagnostics file in dir.
func OpenDiagnosticsLog(dir string) (*DiagnosticsLog, error) {
	path := filepath.Join(dir, DiagnosticsFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open diagnostics log: %w", err)
	}
	return &DiagnosticsLog{file: f}, nil
}

// Record appends one timestamped line attributing msg to a window.
func (d *DiagnosticsLog) Record(w domain.Window, msg string) error {
	line := fmt.Sprintf("[%s] window %s: %s\n",
		domain.Now().UTC().Format(time.RFC3339), w, msg)

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.file.WriteString(line); err != nil {
		return fmt.Errorf("record diagnostic: %w", err)
	}
	return nil
}

// Path returns the log file's location for the run summary.
func (d *DiagnosticsLog) Path() string {
	return d.file.Name()
}

// Close flushes and closes the underlying file.
func (d *DiagnosticsLog) Close() error {
	return d.file.Close()
}
