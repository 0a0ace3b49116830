package repository

import (
	"context"
	"sync"

	"go-mser-detector/pkg/models"
)

// maxHistoryPerURL bounds the stored results per image URL
const maxHistoryPerURL = 50

// memoryDetectionRepository is an in-memory DetectionRepository. Results are
// kept per ID with a bounded per-URL history, oldest first.
type memoryDetectionRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.DetectionResult
	history map[string][]string
}

// NewMemoryDetectionRepository creates an in-memory detection result store
func NewMemoryDetectionRepository() DetectionRepository {
	return &memoryDetectionRepository{
		byID:    make(map[string]*models.DetectionResult),
		history: make(map[string][]string),
	}
}

func (r *memoryDetectionRepository) SaveDetection(ctx context.Context, result *models.DetectionResult) error {
	if result == nil || result.ID == "" {
		return ErrMissingDetectionID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[result.ID] = result
	if result.ImageURL == "" {
		return nil
	}

	ids := append(r.history[result.ImageURL], result.ID)
	if len(ids) > maxHistoryPerURL {
		evicted := ids[:len(ids)-maxHistoryPerURL]
		ids = ids[len(ids)-maxHistoryPerURL:]
		for _, id := range evicted {
			delete(r.byID, id)
		}
	}
	r.history[result.ImageURL] = ids
	return nil
}

func (r *memoryDetectionRepository) GetDetection(ctx context.Context, id string) (*models.DetectionResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, ok := r.byID[id]
	if !ok {
		return nil, ErrDetectionNotFound
	}
	return result, nil
}

func (r *memoryDetectionRepository) GetDetectionHistory(ctx context.Context, imageURL string) ([]*models.DetectionResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.history[imageURL]
	results := make([]*models.DetectionResult, 0, len(ids))
	for _, id := range ids {
		if result, ok := r.byID[id]; ok {
			results = append(results, result)
		}
	}
	return results, nil
}
