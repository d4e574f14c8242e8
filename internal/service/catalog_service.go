package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/selimk/obs-catalog-api/internal/cache"
	"github.com/selimk/obs-catalog-api/internal/models"
	"github.com/selimk/obs-catalog-api/internal/schedule"
)

// CatalogFetcher is the external collaborator reaching the OBS source.
// Both calls are independently failing network operations.
type CatalogFetcher interface {
	FetchDepartments(ctx context.Context) ([]models.Department, error)
	FetchDepartmentTable(ctx context.Context, deptID int) ([][]string, error)
}

// CatalogServiceConfig tunes cache behaviour.
type CatalogServiceConfig struct {
	CacheTTL      time.Duration
	MaxCacheDepts int
}

type deptEntry struct {
	offerings []models.CourseOffering
	fetchedAt time.Time
}

// indexedOffering carries the fill timestamp of the department fetch that
// produced it, so index freshness can track the department-level TTL.
type indexedOffering struct {
	offering  models.CourseOffering
	indexedAt time.Time
}

// CatalogService owns the three catalog caches: the department directory,
// the per-department offering cache and the CRN index. Fetch failures are
// absorbed here; callers receive stale or empty data, never an error.
type CatalogService struct {
	fetcher CatalogFetcher
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
	cfg     CatalogServiceConfig

	mu          sync.Mutex
	directory   []models.Department
	directoryAt time.Time
	deptCache   *cache.LRU[int, deptEntry]
	crnIndex    map[string]indexedOffering

	flight singleflight.Group
}

// CatalogServiceParams groups constructor dependencies.
type CatalogServiceParams struct {
	Fetcher CatalogFetcher
	Metrics *MetricsService
	Logger  *zap.Logger
	Config  CatalogServiceConfig
}

// NewCatalogService constructs a CatalogService with sane defaults.
func NewCatalogService(params CatalogServiceParams) *CatalogService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	if cfg.MaxCacheDepts <= 0 {
		cfg.MaxCacheDepts = 50
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		fetcher:   params.Fetcher,
		metrics:   params.Metrics,
		logger:    logger,
		now:       time.Now,
		cfg:       cfg,
		deptCache: cache.NewLRU[int, deptEntry](cfg.MaxCacheDepts),
		crnIndex:  make(map[string]indexedOffering),
	}
}

// Departments returns the department directory, refreshing it when older
// than the TTL. On fetch failure the previous value, possibly stale or
// empty, is returned.
func (s *CatalogService) Departments(ctx context.Context) []models.Department {
	s.mu.Lock()
	if s.directory != nil && s.now().Sub(s.directoryAt) < s.cfg.CacheTTL {
		directory := s.directory
		s.mu.Unlock()
		return directory
	}
	s.mu.Unlock()

	result, _, _ := s.flight.Do("departments", func() (interface{}, error) {
		// A waiter may arrive just after another flight refreshed the
		// directory; serve that result instead of fetching again.
		s.mu.Lock()
		if s.directory != nil && s.now().Sub(s.directoryAt) < s.cfg.CacheTTL {
			directory := s.directory
			s.mu.Unlock()
			return directory, nil
		}
		s.mu.Unlock()

		start := time.Now()
		departments, err := s.fetcher.FetchDepartments(ctx)
		s.metrics.ObserveUpstreamFetch("departments", time.Since(start), err)
		if err != nil {
			s.logger.Error("department fetch failed", zap.Error(err))
			s.mu.Lock()
			stale := s.directory
			s.mu.Unlock()
			return stale, nil
		}

		s.mu.Lock()
		s.directory = departments
		s.directoryAt = s.now()
		s.mu.Unlock()
		s.logger.Info("fetched departments", zap.Int("count", len(departments)))
		return departments, nil
	})

	if result == nil {
		return nil
	}
	return result.([]models.Department)
}

// Courses returns the offerings of one department, fetching and parsing on
// a cold or stale entry. Every successful fill also updates the CRN index.
// On fetch failure a stale entry is served when present, else an empty list.
func (s *CatalogService) Courses(ctx context.Context, deptID int) []models.CourseOffering {
	s.mu.Lock()
	if entry, ok := s.deptCache.Get(deptID); ok && s.now().Sub(entry.fetchedAt) < s.cfg.CacheTTL {
		s.mu.Unlock()
		s.metrics.RecordCacheLookup(true)
		return entry.offerings
	}
	s.mu.Unlock()
	s.metrics.RecordCacheLookup(false)

	result, _, _ := s.flight.Do(deptKey(deptID), func() (interface{}, error) {
		s.mu.Lock()
		if entry, ok := s.deptCache.Get(deptID); ok && s.now().Sub(entry.fetchedAt) < s.cfg.CacheTTL {
			s.mu.Unlock()
			return entry.offerings, nil
		}
		s.mu.Unlock()

		start := time.Now()
		rows, err := s.fetcher.FetchDepartmentTable(ctx, deptID)
		s.metrics.ObserveUpstreamFetch("courses", time.Since(start), err)
		if err != nil {
			s.logger.Error("course fetch failed", zap.Int("dept_id", deptID), zap.Error(err))
			s.mu.Lock()
			defer s.mu.Unlock()
			if entry, ok := s.deptCache.Peek(deptID); ok {
				return entry.offerings, nil
			}
			return []models.CourseOffering{}, nil
		}

		offerings := schedule.Parse(rows)

		s.mu.Lock()
		now := s.now()
		s.deptCache.Put(deptID, deptEntry{offerings: offerings, fetchedAt: now})
		s.indexOfferings(offerings, now)
		s.mu.Unlock()

		s.logger.Info("cached department courses",
			zap.Int("dept_id", deptID),
			zap.Int("count", len(offerings)),
		)
		return offerings, nil
	})

	if result == nil {
		return []models.CourseOffering{}
	}
	return result.([]models.CourseOffering)
}

// CachedOffering reports the indexed offering for a CRN. Index entries
// older than the cache TTL are treated as misses so a CRN lookup can never
// return data staler than the department-level TTL allows.
func (s *CatalogService) CachedOffering(crn string) (models.CourseOffering, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.crnIndex[crn]
	if !ok {
		return models.CourseOffering{}, false
	}
	if s.now().Sub(entry.indexedAt) >= s.cfg.CacheTTL {
		return models.CourseOffering{}, false
	}
	return entry.offering, true
}

// indexOfferings is the explicit index-update step following a successful
// department fill. Last writer wins per CRN. Callers hold s.mu.
func (s *CatalogService) indexOfferings(offerings []models.CourseOffering, at time.Time) {
	for _, offering := range offerings {
		s.crnIndex[offering.CRN] = indexedOffering{offering: offering, indexedAt: at}
	}
}

func deptKey(deptID int) string {
	// singleflight keys share one namespace with the directory key.
	return "dept:" + strconv.Itoa(deptID)
}
