package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hazemk/borsa/internal/common"
	"github.com/hazemk/borsa/internal/models"
)

// RecommendationStore persists deploy-capital recommendations as a
// single JSON array file, newest-first. Growth is unbounded; entries are
// only removed by explicit delete.
type RecommendationStore struct {
	path   string
	logger *common.Logger
	mu     sync.Mutex
}

// NewRecommendationStore creates a store backed by the given file path.
func NewRecommendationStore(logger *common.Logger, path string) *RecommendationStore {
	return &RecommendationStore{path: path, logger: logger}
}

func (s *RecommendationStore) load() ([]models.Recommendation, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var records []models.Recommendation
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}
	return records, nil
}

func (s *RecommendationStore) save(records []models.Recommendation) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Append prepends a recommendation to the history (newest-first) and
// returns the stored record with its assigned ID.
func (s *RecommendationStore) Append(rec models.Recommendation) (*models.Recommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	records, err := s.load()
	if err != nil {
		return nil, err
	}

	records = append([]models.Recommendation{rec}, records...)
	if err := s.save(records); err != nil {
		return nil, err
	}

	s.logger.Debug().Str("id", rec.ID).Msg("Recommendation saved")
	return &rec, nil
}

// List returns all recommendations, newest-first.
func (s *RecommendationStore) List() ([]models.Recommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.Recommendation{}
	}
	return records, nil
}

// Delete removes one recommendation by ID. Returns false if no entry
// with that ID exists.
func (s *RecommendationStore) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return false, err
	}

	kept := records[:0]
	found := false
	for _, r := range records {
		if r.ID == id {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return false, nil
	}

	if err := s.save(kept); err != nil {
		return false, err
	}
	s.logger.Debug().Str("id", id).Msg("Recommendation deleted")
	return true, nil
}
