// Package chat delivers rendered notification lines to a chat surface
package chat

import "context"

// Notifier posts one formatted line to the configured surface.
// Implementations must preserve call order within a single goroutine
type Notifier interface {
	Notify(ctx context.Context, line string) error
}
