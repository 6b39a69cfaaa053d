package repo

import (
	"context"

	"herald/internal/modkit/repokit"
	"herald/internal/services/feed/domain"
)

// NewTxStorage binds the archive to a TxRunner so each call runs in its
// own transaction
func NewTxStorage(tx repokit.TxRunner) Storage {
	return txStorage{tx: tx, b: NewPG()}
}

type txStorage struct {
	tx repokit.TxRunner
	b  repokit.Binder[Storage]
}

func (s txStorage) Insert(ctx context.Context, n domain.Notification) error {
	return repokit.WithTx(ctx, s.tx, func(q repokit.Queryer) error {
		return s.b.Bind(q).Insert(ctx, n)
	})
}

func (s txStorage) Recent(ctx context.Context, limit int) ([]domain.Notification, error) {
	var out []domain.Notification
	err := repokit.WithTx(ctx, s.tx, func(q repokit.Queryer) error {
		var err error
		out, err = s.b.Bind(q).Recent(ctx, limit)
		return err
	})
	return out, err
}
