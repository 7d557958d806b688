package holidays_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/meenmo/moschedule/calendar"
	"github.com/meenmo/moschedule/dates"
	"github.com/meenmo/moschedule/holidays"
	"github.com/meenmo/moschedule/metrics"
)

// countingSource counts Holidays calls.
type countingSource struct {
	holidays.StaticSource
	calls atomic.Int32
	err   error
}

func (c *countingSource) Holidays(startYear, endYear int) ([]dates.Date, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return c.StaticSource.Holidays(startYear, endYear)
}

type RegistrySuite struct {
	suite.Suite
	registry *holidays.Registry
	metrics  *metrics.Metrics
	ctx      context.Context
}

func (s *RegistrySuite) SetupTest() {
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.registry = holidays.NewRegistry(zaptest.NewLogger(s.T()), s.metrics)
	s.ctx = context.Background()
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) newSource(id string) *countingSource {
	return &countingSource{StaticSource: holidays.StaticSource{
		ID:    id,
		Mask:  calendar.WeekendSaturdaySunday,
		Dates: []dates.Date{dates.MustFromYMD(2024, 12, 25)},
	}}
}

// TestBuiltins verifies the built-in markets are registered.
func (s *RegistrySuite) TestBuiltins() {
	s.Equal([]string{"NONE", "TARGET", "USD"}, s.registry.IDs())

	cal, err := s.registry.Calendar(s.ctx, "target", 2024, 2025)
	s.Require().NoError(err)
	s.Equal(2024, cal.StartYear())
	s.Equal(2025, cal.EndYear())

	again, err := s.registry.Calendar(s.ctx, "TARGET", 2024, 2025)
	s.Require().NoError(err)
	s.Same(cal, again)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.CalendarBuilds.WithLabelValues("TARGET", "ok")))
}

// TestCaching verifies each window is built once, including under
// concurrent requests.
func (s *RegistrySuite) TestCaching() {
	src := s.newSource("KRX")
	s.registry.Register("krx", src)

	var wg sync.WaitGroup
	results := make([]*calendar.HolidayCalendar, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cal, err := s.registry.Calendar(s.ctx, "KRX", 2024, 2024)
			s.NoError(err)
			results[i] = cal
		}()
	}
	wg.Wait()

	s.Equal(int32(1), src.calls.Load())
	for _, cal := range results {
		s.Same(results[0], cal)
	}

	_, err := s.registry.Calendar(s.ctx, "KRX", 2024, 2025)
	s.Require().NoError(err)
	s.Equal(int32(2), src.calls.Load())
}

// TestRegisterEvicts verifies replacing a source drops its cached calendars.
func (s *RegistrySuite) TestRegisterEvicts() {
	first := s.newSource("KRX")
	s.registry.Register("KRX", first)
	before, err := s.registry.Calendar(s.ctx, "KRX", 2024, 2024)
	s.Require().NoError(err)
	s.Equal(1, before.HolidayCount())

	second := s.newSource("KRX")
	second.Dates = nil
	s.registry.Register("KRX", second)
	after, err := s.registry.Calendar(s.ctx, "KRX", 2024, 2024)
	s.Require().NoError(err)
	s.Equal(0, after.HolidayCount())
	s.Equal(int32(1), second.calls.Load())
}

// TestErrors verifies failures are reported and not cached.
func (s *RegistrySuite) TestErrors() {
	s.Run("unknown calendar", func() {
		_, err := s.registry.Calendar(s.ctx, "JPN", 2024, 2024)
		s.Require().ErrorIs(err, holidays.ErrUnknownMarket)
	})

	s.Run("source failure is not cached", func() {
		src := s.newSource("BAD")
		src.err = errors.New("feed unavailable")
		s.registry.Register("BAD", src)

		_, err := s.registry.Calendar(s.ctx, "BAD", 2024, 2024)
		s.Require().ErrorContains(err, "feed unavailable")
		_, err = s.registry.Calendar(s.ctx, "BAD", 2024, 2024)
		s.Require().Error(err)
		s.Equal(int32(2), src.calls.Load())
		s.Equal(2.0, testutil.ToFloat64(s.metrics.CalendarBuilds.WithLabelValues("BAD", "error")))
	})

	s.Run("invalid window", func() {
		_, err := s.registry.Calendar(s.ctx, "NONE", 2025, 2024)
		s.Require().ErrorIs(err, calendar.ErrConfig)
	})

	s.Run("cancelled context", func() {
		ctx, cancel := context.WithCancel(s.ctx)
		cancel()
		// The build may win the race with cancellation.
		if _, err := s.registry.Calendar(ctx, "USD", 2030, 2030); err != nil {
			s.ErrorIs(err, context.Canceled)
		}
	})
}
