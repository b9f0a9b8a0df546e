package report

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxLineSize bounds a single report line when reading
const maxLineSize = 4 * 1024 * 1024

// Stats contains statistics about written reports
type Stats struct {
	TotalWritten  int64
	BytesWritten  int64
	WriteErrors   int64
	LastWriteTime time.Time
}

// FileWriter appends one JSON line per report to a file named after the
// time it was opened. Safe for concurrent use.
type FileWriter struct {
	path   string
	logger zerolog.Logger

	mu    sync.Mutex
	file  *os.File
	stats Stats
}

// FileName returns the report file name for a writer opened at now
func FileName(now time.Time, id uuid.UUID) string {
	return fmt.Sprintf("game-%s-%s.log", now.Format("060102150405"), strings.SplitN(id.String(), "-", 2)[0])
}

// NewFileWriter creates dir if needed and opens a fresh report file in it
func NewFileWriter(dir string, logger zerolog.Logger) (*FileWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(dir, FileName(time.Now(), uuid.New()))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}

	fw := &FileWriter{
		path:   path,
		logger: logger.With().Str("component", "ReportWriter").Logger(),
		file:   file,
	}
	fw.logger.Info().Str("filename", path).Msg("Opened report file")
	return fw, nil
}

// Path returns the file the writer appends to
func (fw *FileWriter) Path() string { return fw.path }

// Write appends r as one JSON line
func (fw *FileWriter) Write(ctx context.Context, r Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.file == nil {
		return ErrWriterClosed
	}

	data, err := json.Marshal(r)
	if err != nil {
		fw.stats.WriteErrors++
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	n, err := fw.file.Write(append(data, '\n'))
	if err != nil {
		fw.stats.WriteErrors++
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := fw.file.Sync(); err != nil {
		fw.logger.Warn().Err(err).Msg("Failed to sync report file")
	}

	fw.stats.TotalWritten++
	fw.stats.BytesWritten += int64(n)
	fw.stats.LastWriteTime = time.Now()

	fw.logger.Debug().
		Str("game_id", r.GameID).
		Str("player", r.Player).
		Int("bytes", n).
		Msg("Wrote report")
	return nil
}

// Close closes the underlying file. Later writes fail with ErrWriterClosed.
func (fw *FileWriter) Close() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.file == nil {
		return nil
	}
	err := fw.file.Close()
	fw.file = nil
	return err
}

// Stats returns write statistics
func (fw *FileWriter) Stats() Stats {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.stats
}

// Read loads the reports stored in path. An empty gameID returns all of them.
func Read(path, gameID string) ([]Report, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var reports []Report
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var r Report
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report: %w", err)
		}
		if gameID == "" || r.GameID == gameID {
			reports = append(reports, r)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return reports, nil
}
