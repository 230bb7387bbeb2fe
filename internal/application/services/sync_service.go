package services

import (
	"github.com/google/uuid"

	"github.com/daybook/core/internal/application/orchestrator"
	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/ports"
)

// SyncService reports the per-user orchestrator state.
type SyncService struct {
	registry *orchestrator.Registry
}

// NewSyncService creates a new sync service
func NewSyncService(registry *orchestrator.Registry) *SyncService {
	return &SyncService{registry: registry}
}

var _ ports.SyncService = (*SyncService)(nil)

func (s *SyncService) State(userID uuid.UUID) entities.SyncState {
	return s.registry.For(userID).State()
}

// Reset acknowledges a saved or error status, returning it to idle.
func (s *SyncService) Reset(userID uuid.UUID) entities.SyncState {
	o := s.registry.For(userID)
	o.Reset()
	return o.State()
}
