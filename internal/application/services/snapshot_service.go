package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/daybook/core/internal/application/loader"
	"github.com/daybook/core/internal/application/retry"
	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/ports"
)

// SnapshotService loads snapshots through the retry policy. The loader only
// fails when every read fails, so retries cover total outages.
type SnapshotService struct {
	loader *loader.Loader
	policy *retry.Policy
}

// NewSnapshotService creates a new snapshot service
func NewSnapshotService(l *loader.Loader, policy *retry.Policy) *SnapshotService {
	return &SnapshotService{loader: l, policy: policy}
}

var _ ports.SnapshotService = (*SnapshotService)(nil)

func (s *SnapshotService) Get(ctx context.Context, userID uuid.UUID) (*entities.Snapshot, error) {
	return retry.Do(ctx, s.policy, func(ctx context.Context) (*entities.Snapshot, error) {
		return s.loader.Load(ctx, userID)
	})
}

func (s *SnapshotService) Refresh(ctx context.Context, userID uuid.UUID) (*entities.Snapshot, error) {
	return retry.Do(ctx, s.policy, func(ctx context.Context) (*entities.Snapshot, error) {
		return s.loader.Refresh(ctx, userID)
	})
}

// ClearCache drops the user's cached snapshot.
func (s *SnapshotService) ClearCache(ctx context.Context, userID uuid.UUID) error {
	return s.loader.ClearCache(ctx, userID)
}
