package service

import (
	"context"

	"herald/internal/services/feed/domain"
	"herald/internal/services/feed/repo"
)

// Archive adapts the repo storage to the read port used by the ops API
type Archive struct {
	st repo.Storage
}

// NewArchive wraps a storage; a nil storage yields empty reads
func NewArchive(st repo.Storage) *Archive {
	return &Archive{st: st}
}

// RecentNotifications implements domain.ArchiveReader
func (a *Archive) RecentNotifications(ctx context.Context, limit int) ([]domain.Notification, error) {
	if a == nil || a.st == nil {
		return nil, nil
	}
	return a.st.Recent(ctx, limit)
}
