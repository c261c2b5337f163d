package experience

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

var (
	// ErrPersistenceNotConfigured is returned when persistence operations are attempted without configuration
	ErrPersistenceNotConfigured = errors.New("persistence layer not configured")
	// ErrInvalidPersistenceType is returned when an unknown persistence type is specified
	ErrInvalidPersistenceType = errors.New("invalid persistence type")
)

// ExperimentIDField is the record field used to filter reads.
const ExperimentIDField = "experimentId"

// PersistenceType represents the type of persistence backend
type PersistenceType string

const (
	// PersistenceTypeNone disables persistence
	PersistenceTypeNone PersistenceType = "none"
	// PersistenceTypeFile enables file-based persistence
	PersistenceTypeFile PersistenceType = "file"
)

// PersistenceConfig contains configuration for the persistence layer
type PersistenceConfig struct {
	Type PersistenceType

	BaseDir          string
	MaxFileSize      int64 // Max size per file in bytes
	RotationInterval time.Duration
}

// DefaultPersistenceConfig returns a default persistence configuration
func DefaultPersistenceConfig() PersistenceConfig {
	return PersistenceConfig{
		Type:        PersistenceTypeNone,
		BaseDir:     "reports",
		MaxFileSize: 10 * 1024 * 1024, // 10MB
	}
}

// PersistenceLayer stores run reports. Reports are write-mostly records for
// later inspection; nothing learned is ever loaded back from them.
type PersistenceLayer interface {
	// Write persists a batch of report records
	Write(ctx context.Context, records []*structpb.Struct) error

	// Read retrieves records, optionally filtered by experiment ID
	Read(ctx context.Context, experimentID string, limit int) ([]*structpb.Struct, error)

	// Close cleanly shuts down the persistence layer
	Close() error

	// Stats returns persistence statistics
	Stats() PersistenceStats
}

// PersistenceStats contains statistics about persistence operations
type PersistenceStats struct {
	TotalWritten  int64
	TotalRead     int64
	BytesWritten  int64
	BytesRead     int64
	WriteErrors   int64
	ReadErrors    int64
	LastWriteTime time.Time
	LastReadTime  time.Time
}

// FilePersistence writes records as newline delimited protojson files
type FilePersistence struct {
	config PersistenceConfig
	logger zerolog.Logger

	mu    sync.RWMutex
	stats PersistenceStats

	currentFile *os.File
	currentSize int64
	fileIndex   int

	closeChan chan struct{}
	wg        sync.WaitGroup
}

// NewFilePersistence creates a new file-based persistence layer
func NewFilePersistence(config PersistenceConfig, logger zerolog.Logger) (*FilePersistence, error) {
	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	fp := &FilePersistence{
		config:    config,
		logger:    logger.With().Str("component", "file_persistence").Logger(),
		closeChan: make(chan struct{}),
	}

	if err := fp.rotateFile(); err != nil {
		return nil, err
	}

	if config.RotationInterval > 0 {
		fp.wg.Add(1)
		go fp.rotationLoop()
	}

	return fp, nil
}

// Write persists a batch of records to file
func (fp *FilePersistence) Write(ctx context.Context, records []*structpb.Struct) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	if fp.currentFile == nil {
		return ErrPersistenceNotConfigured
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}

		if fp.config.MaxFileSize > 0 && fp.currentSize >= fp.config.MaxFileSize {
			if err := fp.rotateFile(); err != nil {
				fp.stats.WriteErrors++
				return fmt.Errorf("failed to rotate file: %w", err)
			}
		}

		data, err := protojson.Marshal(rec)
		if err != nil {
			fp.stats.WriteErrors++
			return fmt.Errorf("failed to marshal record: %w", err)
		}

		n, err := fp.currentFile.Write(append(data, '\n'))
		if err != nil {
			fp.stats.WriteErrors++
			return fmt.Errorf("failed to write record: %w", err)
		}

		fp.currentSize += int64(n)
		fp.stats.TotalWritten++
		fp.stats.BytesWritten += int64(n)
	}

	if err := fp.currentFile.Sync(); err != nil {
		fp.logger.Warn().Err(err).Msg("Failed to sync file")
	}

	fp.stats.LastWriteTime = time.Now()

	fp.logger.Debug().
		Int("batch_size", len(records)).
		Int64("file_size", fp.currentSize).
		Msg("Wrote report batch to file")

	return nil
}

// Read retrieves records from storage
func (fp *FilePersistence) Read(ctx context.Context, experimentID string, limit int) ([]*structpb.Struct, error) {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	pattern := filepath.Join(fp.config.BaseDir, "reports_*.ndjson")
	files, err := filepath.Glob(pattern)
	if err != nil {
		fp.stats.ReadErrors++
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	var records []*structpb.Struct
	for _, file := range files {
		if limit > 0 && len(records) >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		recs, err := fp.readFile(file, experimentID, limit-len(records))
		if err != nil {
			fp.stats.ReadErrors++
			fp.logger.Warn().
				Err(err).
				Str("file", file).
				Msg("Failed to read report file")
			continue
		}

		records = append(records, recs...)
	}

	fp.stats.LastReadTime = time.Now()
	fp.stats.TotalRead += int64(len(records))

	return records, nil
}

// readFile reads records from a single file
func (fp *FilePersistence) readFile(filename, experimentID string, limit int) ([]*structpb.Struct, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var records []*structpb.Struct
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		if limit > 0 && len(records) >= limit {
			break
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		rec := &structpb.Struct{}
		if err := protojson.Unmarshal(line, rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}

		if experimentID == "" || rec.GetFields()[ExperimentIDField].GetStringValue() == experimentID {
			records = append(records, rec)
			fp.stats.BytesRead += int64(len(line))
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return records, nil
}

// rotateFile closes the current file and opens a new one
func (fp *FilePersistence) rotateFile() error {
	if fp.currentFile != nil {
		if err := fp.currentFile.Close(); err != nil {
			fp.logger.Warn().Err(err).Msg("Failed to close previous file")
		}
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(fp.config.BaseDir, fmt.Sprintf("reports_%s_%d.ndjson", timestamp, fp.fileIndex))
	fp.fileIndex++

	for {
		if _, err := os.Stat(filename); os.IsNotExist(err) {
			break
		}
		fp.fileIndex++
		filename = filepath.Join(fp.config.BaseDir, fmt.Sprintf("reports_%s_%d.ndjson", timestamp, fp.fileIndex))
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	fp.currentFile = file
	fp.currentSize = 0

	fp.logger.Info().
		Str("filename", filename).
		Msg("Rotated to new report file")

	return nil
}

// rotationLoop handles periodic file rotation
func (fp *FilePersistence) rotationLoop() {
	defer fp.wg.Done()

	ticker := time.NewTicker(fp.config.RotationInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fp.mu.Lock()
			if err := fp.rotateFile(); err != nil {
				fp.logger.Error().Err(err).Msg("Failed to rotate file")
			}
			fp.mu.Unlock()

		case <-fp.closeChan:
			return
		}
	}
}

// Close cleanly shuts down the persistence layer
func (fp *FilePersistence) Close() error {
	close(fp.closeChan)
	fp.wg.Wait()

	fp.mu.Lock()
	defer fp.mu.Unlock()

	if fp.currentFile != nil {
		err := fp.currentFile.Close()
		fp.currentFile = nil
		return err
	}

	return nil
}

// Stats returns persistence statistics
func (fp *FilePersistence) Stats() PersistenceStats {
	fp.mu.RLock()
	defer fp.mu.RUnlock()
	return fp.stats
}

// NullPersistence is a no-op persistence layer
type NullPersistence struct{}

func (n *NullPersistence) Write(ctx context.Context, records []*structpb.Struct) error {
	return nil
}

func (n *NullPersistence) Read(ctx context.Context, experimentID string, limit int) ([]*structpb.Struct, error) {
	return nil, nil
}

func (n *NullPersistence) Close() error {
	return nil
}

func (n *NullPersistence) Stats() PersistenceStats {
	return PersistenceStats{}
}

// NewPersistenceLayer creates a persistence layer based on configuration
func NewPersistenceLayer(config PersistenceConfig, logger zerolog.Logger) (PersistenceLayer, error) {
	switch config.Type {
	case PersistenceTypeNone, "":
		return &NullPersistence{}, nil
	case PersistenceTypeFile:
		return NewFilePersistence(config, logger)
	default:
		return nil, ErrInvalidPersistenceType
	}
}
