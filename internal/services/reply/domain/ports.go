// Package domain holds the reply service's ports
package domain

import "context"

// ReplierPort answers ad-hoc object mentions found in chat text
type ReplierPort interface {
	// RepliesFor scans text for revision, commit and paste mentions and
	// returns one summary line per distinct mention, in mention order
	RepliesFor(ctx context.Context, text string) ([]string, error)
}
