package event

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// AuditLogger appends one line per event to an audit file.  It is the
// in-process stand-in for the audit module's event consumer: every
// lifecycle transition is recorded regardless of what other subscribers do
// with it.
type AuditLogger struct {
	mu   sync.Mutex
	path string
}

// NewAuditLogger writes to the given file, creating parent directories on
// first use.  Defaults to logs/reservation-audit.log.
func NewAuditLogger(path string) *AuditLogger {
	if strings.TrimSpace(path) == "" {
		path = filepath.Join("logs", "reservation-audit.log")
	}
	return &AuditLogger{path: path}
}

func (a *AuditLogger) HandleEvent(_ context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", e.Name(), err)
	}
	line := fmt.Sprintf("%s %s %s\n", time.Now().UTC().Format(time.RFC3339), e.Name(), payload)

	a.mu.Lock()
	defer a.mu.Unlock()
	if dir := filepath.Dir(a.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", a.path, err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("append %s: %w", a.path, err)
	}
	return nil
}
