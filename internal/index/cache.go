package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/eshop-cloud/recall/internal/domain"
)

// FileCache persists the index as one JSON snapshot file, so a restart
// does not re-embed the whole catalog.
type FileCache struct {
	path   string
	logger *zap.Logger
}

// NewFileCache creates a cache at the given path, creating parent
// directories as needed.
func NewFileCache(path string, logger *zap.Logger) (*FileCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileCache{path: path, logger: logger}, nil
}

// Save writes a full snapshot, replacing the previous one. The write
// goes through a temp file and rename so a crash never leaves a
// half-written cache.
func (c *FileCache) Save(entries []domain.ProductVector) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replace cache: %w", err)
	}

	c.logger.Debug("Embedding cache saved", zap.Int("entries", len(entries)))
	return nil
}

// Load reads the snapshot. A missing, malformed or dimensionally
// inconsistent file is reported as (nil, false) -- the build protocol
// treats all of those as a cold start.
func (c *FileCache) Load() ([]domain.ProductVector, bool) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("Failed to read embedding cache", zap.Error(err))
		}
		return nil, false
	}

	var entries []domain.ProductVector
	if err := json.Unmarshal(data, &entries); err != nil {
		c.logger.Warn("Embedding cache is malformed, ignoring", zap.Error(err))
		return nil, false
	}
	if len(entries) == 0 {
		return nil, false
	}

	if err := validateDimensions(entries); err != nil {
		c.logger.Warn("Embedding cache rejected", zap.Error(err))
		return nil, false
	}

	c.logger.Info("Embedding cache loaded", zap.Int("entries", len(entries)))
	return entries, true
}

// Exists reports whether a snapshot file is present.
func (c *FileCache) Exists() bool {
	_, err := os.Stat(c.path)
	return err == nil
}

// validateDimensions enforces the single-dimension invariant: an index
// with mixed embedding dimensions is invalid and must be rebuilt.
func validateDimensions(entries []domain.ProductVector) error {
	if len(entries) == 0 {
		return nil
	}
	dim := len(entries[0].Embedding)
	if dim == 0 {
		return fmt.Errorf("entry %s has empty embedding: %w", entries[0].ProductID, domain.ErrDimensionMismatch)
	}
	for _, e := range entries[1:] {
		if len(e.Embedding) != dim {
			return fmt.Errorf("entry %s has dimension %d, expected %d: %w",
				e.ProductID, len(e.Embedding), dim, domain.ErrDimensionMismatch)
		}
	}
	return nil
}
