package memory

import (
	"context"
	"sync"
	"time"

	"workshop-app-be/internal/entity"
	"workshop-app-be/internal/repository/contract"
	"workshop-app-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ProgressRepository keeps completions in process memory. It backs local
// workshops that run without the content service database.
type ProgressRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
}

var _ contract.ProgressRepository = (*ProgressRepository)(nil)

func NewProgressRepository() *ProgressRepository {
	// Progress never expires; purge is only a safety net for deleted users
	c := cache.New(cache.NoExpiration, 10*time.Minute)
	return &ProgressRepository{
		cache: c,
	}
}

// Save records a completion. Completing the same item twice is a no-op.
func (r *ProgressRepository) Save(userID string, completion *entity.ProgressCompletion) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.load(userID)
	for _, c := range existing {
		if c.ExerciseNumber == completion.ExerciseNumber && c.StepNumber == completion.StepNumber && c.Type == completion.Type {
			return
		}
	}
	saved := *completion
	saved.UserId = userID
	if saved.Id == uuid.Nil {
		saved.Id = uuid.New()
	}
	if saved.CompletedAt.IsZero() {
		saved.CompletedAt = time.Now()
	}
	r.cache.Set(userID, append(existing, &saved), cache.DefaultExpiration)
}

func (r *ProgressRepository) load(userID string) []*entity.ProgressCompletion {
	if x, found := r.cache.Get(userID); found {
		return x.([]*entity.ProgressCompletion)
	}
	return nil
}

func (r *ProgressRepository) FindByUser(ctx context.Context, userID string, specs ...specification.Specification) ([]*entity.ProgressCompletion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	stored := r.load(userID)
	r.mu.Unlock()

	out := make([]*entity.ProgressCompletion, 0, len(stored))
	for _, c := range stored {
		if matches(c, specs) {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

func matches(c *entity.ProgressCompletion, specs []specification.Specification) bool {
	for _, spec := range specs {
		if s, ok := spec.(specification.ByExercise); ok && s.ExerciseNumber != c.ExerciseNumber {
			return false
		}
	}
	return true
}

func (r *ProgressRepository) Delete(userID string) {
	r.cache.Delete(userID)
}
