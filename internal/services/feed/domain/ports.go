package domain

import "context"

// SyncerPort is the public surface of the feed synchronizer
type SyncerPort interface {
	// RunOnce executes a single fetch/classify/deliver cycle
	RunOnce(ctx context.Context) (SyncReport, error)

	// RunForever repeats cycles with an interruptible idle wait until the
	// context is cancelled or the configured window is exhausted
	RunForever(ctx context.Context) error
}

// ArchiveReader exposes delivered notifications to the ops API
type ArchiveReader interface {
	RecentNotifications(ctx context.Context, limit int) ([]Notification, error)
}
