// Package repo persists delivered notifications for the ops API
package repo

import (
	"context"

	"herald/internal/modkit/repokit"
	"herald/internal/services/feed/domain"

	perr "herald/internal/platform/errors"
)

// Storage is the delivery archive surface
type Storage interface {
	Insert(ctx context.Context, n domain.Notification) error
	Recent(ctx context.Context, limit int) ([]domain.Notification, error)
}

// NewPG returns a binder for the Postgres-backed archive
func NewPG() repokit.Binder[Storage] {
	return repokit.BindFunc[Storage](func(q repokit.Queryer) Storage {
		return &pgStore{q: q}
	})
}

type pgStore struct {
	q repokit.Queryer
}

func (s *pgStore) Insert(ctx context.Context, n domain.Notification) error {
	const sql = `
		INSERT INTO feed_notifications
			(id, story_phid, chronokey, actor, kind, action_key, body, delivered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`
	_, err := s.q.Exec(ctx, sql,
		n.ID, n.StoryPHID, int64(n.Chronokey), n.Actor,
		string(n.Kind), string(n.ActionKey), n.Body, n.DeliveredAt)
	if err != nil {
		return perr.DBf("insert notification: %v", err)
	}
	return nil
}

func (s *pgStore) Recent(ctx context.Context, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	const sql = `
		SELECT id, story_phid, chronokey, actor, kind, action_key, body, delivered_at
		FROM feed_notifications
		ORDER BY chronokey DESC
		LIMIT $1`
	rows, err := s.q.Query(ctx, sql, limit)
	if err != nil {
		return nil, perr.DBf("query notifications: %v", err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var key int64
		var kind, action string
		if err := rows.Scan(&n.ID, &n.StoryPHID, &key, &n.Actor, &kind, &action, &n.Body, &n.DeliveredAt); err != nil {
			return nil, perr.DBf("scan notification: %v", err)
		}
		n.Chronokey = domain.Chronokey(key)
		n.Kind = kindFromString(kind)
		n.ActionKey = actionFromString(action)
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.DBf("iterate notifications: %v", err)
	}
	return out, nil
}
