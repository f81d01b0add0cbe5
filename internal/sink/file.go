package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sri5hat/aptdetection/internal/domain"
)

// FileSink appends alerts to a JSONL file, one alert per line.
type FileSink struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
	path string
}

// NewFileSink opens (or creates) the JSONL file at path.
func NewFileSink(path string) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("file sink path is empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sink directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open sink file: %w", err)
	}
	return &FileSink{file: f, enc: json.NewEncoder(f), path: path}, nil
}

// WriteAlert appends one JSON line.
func (s *FileSink) WriteAlert(ctx context.Context, a *domain.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(a); err != nil {
		return fmt.Errorf("failed to write alert to %s: %w", s.path, err)
	}
	return nil
}

// Name identifies the sink in logs.
func (s *FileSink) Name() string { return "file" }

// Close flushes and closes the file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
