package services

import (
	"context"
	"fmt"
	"time"

	"github.com/okrasimirov/rota/internal/core/domain"
)

const dateLayout = "2006-01-02"

// StatsService derives the consistency counter from the install date and
// the completion log. It never stores derived values.
type StatsService struct {
	rotationRepo domain.RotationRepository
	logRepo      domain.CompletionLogRepository
	now          func() time.Time
}

func NewStatsService(rotationRepo domain.RotationRepository, logRepo domain.CompletionLogRepository, now func() time.Time) *StatsService {
	if now == nil {
		now = time.Now
	}
	return &StatsService{
		rotationRepo: rotationRepo,
		logRepo:      logRepo,
		now:          now,
	}
}

// EnsureInstallDate initializes the install date on first run. The
// repository guards the check-then-set, so concurrent callers all end up
// with the date the first writer stored.
func (s *StatsService) EnsureInstallDate(ctx context.Context) (time.Time, error) {
	return s.rotationRepo.InitInstallDate(ctx, s.now().UTC())
}

// RecordDayComplete appends today to the completion log. Recording twice
// on the same calendar day is a no-op; the returned bool reports whether
// a new entry was written.
func (s *StatsService) RecordDayComplete(ctx context.Context) (bool, error) {
	today := s.now().UTC().Format(dateLayout)

	added, err := s.logRepo.Add(ctx, today)
	if err != nil {
		return false, fmt.Errorf("record day complete: %w", err)
	}
	return added, nil
}

// Stats computes the current snapshot. Day of install counts as day 1.
func (s *StatsService) Stats(ctx context.Context) (*domain.Stats, error) {
	installDate, err := s.EnsureInstallDate(ctx)
	if err != nil {
		return nil, fmt.Errorf("ensure install date: %w", err)
	}

	dates, err := s.logRepo.Dates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load completion log: %w", err)
	}

	totalDays := calendarDaysBetween(installDate, s.now().UTC()) + 1
	if totalDays < 1 {
		totalDays = 1
	}

	return &domain.Stats{
		TotalDays:     totalDays,
		CompletedDays: len(dates),
	}, nil
}

func calendarDaysBetween(from, to time.Time) int {
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toDay.Sub(fromDay).Hours() / 24)
}
