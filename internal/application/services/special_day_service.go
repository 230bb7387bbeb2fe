package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/daybook/core/internal/adapters/localstore"
	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/ports"
)

// SpecialDayService handles special day operations
type SpecialDayService struct {
	days   ports.SpecialDayRepository
	writer *SyncWriter
}

// NewSpecialDayService creates a new special day service
func NewSpecialDayService(days ports.SpecialDayRepository, writer *SyncWriter) *SpecialDayService {
	return &SpecialDayService{days: days, writer: writer}
}

var _ ports.SpecialDayService = (*SpecialDayService)(nil)

func (s *SpecialDayService) List(ctx context.Context, userID uuid.UUID) ([]*entities.SpecialDay, error) {
	days, err := s.days.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list special days: %w", err)
	}
	return days, nil
}

// Set marks date, replacing any existing marker for it.
func (s *SpecialDayService) Set(ctx context.Context, userID uuid.UUID, date string, req ports.SetSpecialDayRequest) (*entities.SpecialDay, ports.WriteResult, error) {
	if err := entities.ValidateDate(date); err != nil {
		return nil, ports.WriteResult{}, err
	}
	if req.Type == "" {
		return nil, ports.WriteResult{}, fmt.Errorf("%w: type is required", entities.ErrInvalidInput)
	}

	day := &entities.SpecialDay{UserID: userID, Date: date, Type: req.Type}
	result, err := s.writer.Write(ctx, userID, "set",
		func(ctx context.Context) error { return s.days.Upsert(ctx, day) },
		localstore.SpecialDaysKey(userID.String()), day,
	)
	if err != nil {
		return nil, result, err
	}
	return day, result, nil
}

func (s *SpecialDayService) Delete(ctx context.Context, userID uuid.UUID, date string) (ports.WriteResult, error) {
	if err := entities.ValidateDate(date); err != nil {
		return ports.WriteResult{}, err
	}

	payload := struct {
		Date string `json:"date"`
	}{date}

	return s.writer.Write(ctx, userID, "delete",
		func(ctx context.Context) error { return s.days.Delete(ctx, userID, date) },
		localstore.SpecialDaysKey(userID.String()), payload,
	)
}
