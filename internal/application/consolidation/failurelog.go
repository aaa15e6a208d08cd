package consolidation

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FailureLog appends failed batches to a timestamped log file so an operator
// can inspect and resubmit them. The file is created lazily on the first
// failure; a clean run leaves nothing behind.
type FailureLog struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// NewFailureLog builds a log destined for dir with the given filename prefix,
// e.g. "BadBatches" or "DistillerBadBatches".
func NewFailureLog(dir, prefix string) *FailureLog {
	name := fmt.Sprintf("%s-%s.log", prefix, time.Now().Format("2006-01-02_15-04-05"))
	return &FailureLog{path: filepath.Join(dir, name)}
}

// Path returns the log file location whether or not it exists yet.
func (l *FailureLog) Path() string { return l.path }

// Record appends one failed batch block.
func (l *FailureLog) Record(batchNumber int, status, errorDetail, llmResponse string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
			return fmt.Errorf("failed to create failure log dir: %w", err)
		}
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open failure log: %w", err)
		}
		l.file = f
	}

	if errorDetail == "" {
		errorDetail = "N/A"
	}
	if llmResponse == "" {
		llmResponse = "No response captured."
	}

	_, err := fmt.Fprintf(l.file,
		"--- FAILED BATCH #%d ---\nTimestamp: %s\nStatus: %s\nError Detail: %s\nLLM Raw Response:\n%s\n\n",
		batchNumber, time.Now().Format(time.RFC3339), status, errorDetail, llmResponse)
	if err != nil {
		return fmt.Errorf("failed to write failure log: %w", err)
	}
	return nil
}

// Close releases the underlying file if one was opened.
func (l *FailureLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
