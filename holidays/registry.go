package holidays

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/meenmo/moschedule/calendar"
	"github.com/meenmo/moschedule/metrics"
)

type cacheKey struct {
	id         string
	start, end int
}

func (k cacheKey) String() string { return fmt.Sprintf("%s/%d-%d", k.id, k.start, k.end) }

// Registry maps calendar ids to sources and caches the calendars built from
// them. Concurrent requests for the same calendar share one build.
type Registry struct {
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu      sync.RWMutex
	sources map[string]Source
	version map[string]int
	cache   map[cacheKey]*calendar.HolidayCalendar

	group singleflight.Group
}

// NewRegistry returns a registry preloaded with the built-in markets.
func NewRegistry(logger *zap.Logger, m *metrics.Metrics) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		logger:  logger,
		metrics: m,
		sources: make(map[string]Source),
		version: make(map[string]int),
		cache:   make(map[cacheKey]*calendar.HolidayCalendar),
	}
	for _, id := range []MarketID{TARGET, USD, NONE} {
		src, _ := ForMarket(id)
		r.sources[string(id)] = src
	}
	return r
}

// Register adds or replaces the source for id and drops its cached
// calendars.
func (r *Registry) Register(id string, src Source) {
	id = normalizeID(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[id] = src
	r.version[id]++
	for k := range r.cache {
		if k.id == id {
			delete(r.cache, k)
		}
	}
	r.logger.Info("Holiday source registered", zap.String("calendar", id), zap.String("source", src.Name()))
}

// IDs lists the registered calendar ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.sources))
	for id := range r.sources {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Calendar returns the calendar for id covering [startYear, endYear].
func (r *Registry) Calendar(ctx context.Context, id string, startYear, endYear int) (*calendar.HolidayCalendar, error) {
	key := cacheKey{id: normalizeID(id), start: startYear, end: endYear}
	if cal, ok := r.cached(key); ok {
		return cal, nil
	}

	ch := r.group.DoChan(key.String(), func() (any, error) {
		if cal, ok := r.cached(key); ok {
			return cal, nil
		}
		return r.build(key)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*calendar.HolidayCalendar), nil
	}
}

func (r *Registry) cached(key cacheKey) (*calendar.HolidayCalendar, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cal, ok := r.cache[key]
	return cal, ok
}

func (r *Registry) build(key cacheKey) (*calendar.HolidayCalendar, error) {
	r.mu.RLock()
	src, ok := r.sources[key.id]
	version := r.version[key.id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMarket, key.id)
	}

	begin := time.Now()
	cal, err := r.buildFrom(src, key)
	r.metrics.IncrementCalendarBuild(key.id, err)
	if err != nil {
		r.logger.Warn("Failed to build holiday calendar", zap.String("calendar", key.id), zap.Error(err))
		return nil, err
	}

	r.mu.Lock()
	// A source replaced during the build must not have its stale calendar
	// cached.
	if r.version[key.id] == version {
		r.cache[key] = cal
	}
	r.mu.Unlock()

	r.logger.Info("Holiday calendar built",
		zap.String("calendar", key.id),
		zap.Int("start_year", key.start),
		zap.Int("end_year", key.end),
		zap.Int("holidays", cal.HolidayCount()),
		zap.Duration("elapsed", time.Since(begin)))
	return cal, nil
}

func (r *Registry) buildFrom(src Source, key cacheKey) (*calendar.HolidayCalendar, error) {
	hs, err := src.Holidays(key.start, key.end)
	if err != nil {
		return nil, fmt.Errorf("%s: holidays: %w", key.id, err)
	}
	cal, err := calendar.New(src.Weekend(), hs, key.start, key.end)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key.id, err)
	}
	return cal, nil
}
