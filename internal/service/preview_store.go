package service

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/noah-isme/sma-lesson-grid-api/internal/models"
	appErrors "github.com/noah-isme/sma-lesson-grid-api/pkg/errors"
)

// previewStore keeps unconfirmed grids in process memory. Entries expire after the
// configured TTL; every write refreshes the expiry.
type previewStore struct {
	mu    sync.Mutex
	items *gocache.Cache
}

func newPreviewStore(ttl, cleanupInterval time.Duration) *previewStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 10 * time.Minute
	}
	return &previewStore{items: gocache.New(ttl, cleanupInterval)}
}

func (s *previewStore) Save(preview models.LessonGridPreview) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items.Set(preview.ID, clonePreview(preview), gocache.DefaultExpiration)
}

func (s *previewStore) Get(id string) (models.LessonGridPreview, bool) {
	raw, ok := s.items.Get(id)
	if !ok {
		return models.LessonGridPreview{}, false
	}
	return clonePreview(raw.(models.LessonGridPreview)), true
}

// Update applies fn to a copy of the preview and stores the result when fn succeeds.
// Updates are serialised so state checks inside fn cannot race.
func (s *previewStore) Update(id string, fn func(*models.LessonGridPreview) error) (models.LessonGridPreview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.items.Get(id)
	if !ok {
		return models.LessonGridPreview{}, appErrors.Clone(appErrors.ErrNotFound, "lesson grid preview not found or expired")
	}
	preview := clonePreview(raw.(models.LessonGridPreview))
	if err := fn(&preview); err != nil {
		return models.LessonGridPreview{}, err
	}
	preview.UpdatedAt = time.Now().UTC()
	s.items.Set(id, preview, gocache.DefaultExpiration)
	return clonePreview(preview), nil
}

func (s *previewStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items.Delete(id)
}

func (s *previewStore) Count() int {
	return s.items.ItemCount()
}

func clonePreview(p models.LessonGridPreview) models.LessonGridPreview {
	out := p
	out.Config.Weekdays = append([]string(nil), p.Config.Weekdays...)
	out.Config.Breaks = append([]models.BreakInterval(nil), p.Config.Breaks...)
	out.Slots = append([]models.LessonSlotDraft(nil), p.Slots...)
	if p.BreakPlacement != nil {
		out.BreakPlacement = make(map[int]models.BreakPlacement, len(p.BreakPlacement))
		for k, v := range p.BreakPlacement {
			out.BreakPlacement[k] = v
		}
	}
	return out
}
