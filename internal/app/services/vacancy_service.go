package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/schoolhub/internal/app/models"
	"github.com/yigit/schoolhub/internal/app/repositories"
	"github.com/yigit/schoolhub/internal/pkg/apperrors"
	"github.com/yigit/schoolhub/internal/pkg/cache"
)

// VacancyService tells the operator whether a destination placement already has students.
// It is advisory: the promotion engine never consults it.
type VacancyService interface {
	CountOccupants(ctx context.Context, classID int64, sectionID *int64) (*models.Occupancy, error)
	// Invalidate drops cached counts for the given placements and their classes.
	Invalidate(ctx context.Context, placements ...models.Placement)
}

// vacancyServiceImpl implements VacancyService
type vacancyServiceImpl struct {
	students repositories.StudentStore
	classes  repositories.ClassStore
	cache    cache.Cache
	ttl      time.Duration
	log      zerolog.Logger

	// gens counts invalidations per key; a count read before an invalidation is never cached.
	mu   sync.Mutex
	gens map[string]uint64
}

// NewVacancyService creates a new VacancyService. A nil cache disables caching.
func NewVacancyService(
	students repositories.StudentStore,
	classes repositories.ClassStore,
	occupancyCache cache.Cache,
	ttl time.Duration,
	log zerolog.Logger,
) VacancyService {
	if occupancyCache == nil {
		occupancyCache = cache.Noop{}
	}
	return &vacancyServiceImpl{
		students: students,
		classes:  classes,
		cache:    occupancyCache,
		ttl:      ttl,
		log:      log.With().Str("service", "vacancy").Logger(),
		gens:     make(map[string]uint64),
	}
}

// CountOccupants counts Active students at exactly the given placement.
// For a class with sections the section is mandatory; for a class without, it must be nil.
func (s *vacancyServiceImpl) CountOccupants(ctx context.Context, classID int64, sectionID *int64) (*models.Occupancy, error) {
	class, err := s.classes.GetClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	if class.HasSections() {
		if sectionID == nil {
			return nil, apperrors.NewValidationError("section required")
		}
		if !class.HasSection(*sectionID) {
			return nil, apperrors.NewValidationError("invalid target section")
		}
	} else if sectionID != nil {
		return nil, apperrors.NewValidationError("invalid target section")
	}

	key := cache.OccupancyKey(classID, sectionID)
	count, hit, err := s.cache.GetInt64(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Occupancy cache read failed, falling back to store")
	}
	if !hit {
		gen := s.generation(key)
		count, err = s.students.CountActiveByPlacement(ctx, classID, sectionID)
		if err != nil {
			return nil, err
		}
		s.cacheCount(ctx, key, gen, count)
	}

	return &models.Occupancy{
		ClassID:   classID,
		SectionID: sectionID,
		Count:     count,
		Vacant:    count == 0,
	}, nil
}

func (s *vacancyServiceImpl) Invalidate(ctx context.Context, placements ...models.Placement) {
	if len(placements) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(placements)*2)
	keys := make([]string, 0, len(placements)*2)
	add := func(k string) {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	for _, p := range placements {
		add(cache.OccupancyKey(p.ClassID, nil))
		if p.SectionID != nil {
			add(cache.OccupancyKey(p.ClassID, p.SectionID))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		s.gens[k]++
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Warn().Err(err).Strs("keys", keys).Msg("Occupancy cache invalidation failed")
	}
}

func (s *vacancyServiceImpl) generation(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[key]
}

// cacheCount caches count unless key was invalidated after gen was taken.
// Invalidations from other instances sharing the Redis cache are not seen here,
// so a stale count can survive there for at most the TTL.
func (s *vacancyServiceImpl) cacheCount(ctx context.Context, key string, gen uint64, count int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gens[key] != gen {
		return
	}
	if err := s.cache.SetInt64(ctx, key, count, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Occupancy cache write failed")
	}
}
