package timetable

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/unimate-backend/internal/domain"
	"github.com/unimate-backend/internal/pkg/id"
)

type Service interface {
	List(ctx context.Context, userID string) ([]domain.TimetableEntry, error)
	Create(ctx context.Context, userID string, req domain.UpsertTimetableEntryRequest) (*domain.TimetableEntry, error)
	Update(ctx context.Context, userID, entryID string, req domain.UpsertTimetableEntryRequest) (*domain.TimetableEntry, error)
	Delete(ctx context.Context, userID, entryID string) error
}

type entryStore interface {
	Put(ctx context.Context, e *domain.TimetableEntry) error
	Get(ctx context.Context, userID, entryID string) (*domain.TimetableEntry, error)
	ListByUser(ctx context.Context, userID string) ([]domain.TimetableEntry, error)
	Update(ctx context.Context, userID, entryID string, fields map[string]interface{}) error
	Delete(ctx context.Context, userID, entryID string) error
}

type service struct {
	repo entryStore
}

type ServiceDeps struct {
	EntryRepo entryStore
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.EntryRepo}
}

func (s *service) List(ctx context.Context, userID string) ([]domain.TimetableEntry, error) {
	entries, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].DayOfWeek != entries[j].DayOfWeek {
			return entries[i].DayOfWeek < entries[j].DayOfWeek
		}
		return entries[i].StartPeriod < entries[j].StartPeriod
	})
	return entries, nil
}

func (s *service) Create(ctx context.Context, userID string, req domain.UpsertTimetableEntryRequest) (*domain.TimetableEntry, error) {
	if err := checkPeriods(req); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	e := &domain.TimetableEntry{
		UserID:      userID,
		EntryID:     id.New(),
		CourseTitle: req.CourseTitle,
		DayOfWeek:   req.DayOfWeek,
		StartPeriod: req.StartPeriod,
		EndPeriod:   req.EndPeriod,
		Location:    req.Location,
		Color:       req.Color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Put(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *service) Update(ctx context.Context, userID, entryID string, req domain.UpsertTimetableEntryRequest) (*domain.TimetableEntry, error) {
	if err := checkPeriods(req); err != nil {
		return nil, err
	}
	if _, err := s.repo.Get(ctx, userID, entryID); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{
		"course_title": req.CourseTitle,
		"day_of_week":  req.DayOfWeek,
		"start_period": req.StartPeriod,
		"end_period":   req.EndPeriod,
		"location":     req.Location,
		"color":        req.Color,
		"updated_at":   time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := s.repo.Update(ctx, userID, entryID, fields); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID, entryID)
}

func (s *service) Delete(ctx context.Context, userID, entryID string) error {
	if _, err := s.repo.Get(ctx, userID, entryID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, userID, entryID)
}

func checkPeriods(req domain.UpsertTimetableEntryRequest) error {
	if req.EndPeriod < req.StartPeriod {
		return fmt.Errorf("end period precedes start period: %w", domain.ErrBadRequest)
	}
	return nil
}
