//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"herald/internal/core/grammar"
	"herald/internal/modkit/repokit"
	"herald/internal/services/feed/domain"
)

func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mapped.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

// poolQueryer adapts a raw pgxpool to the repokit surface for this test
type poolQueryer struct{ p *pgxpool.Pool }

func (q poolQueryer) Exec(ctx context.Context, sql string, args ...any) (repokit.CommandTag, error) {
	ct, err := q.p.Exec(ctx, sql, args...)
	return execTag{ct.String(), ct.RowsAffected()}, err
}

func (q poolQueryer) Query(ctx context.Context, sql string, args ...any) (repokit.Rows, error) {
	rs, err := q.p.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return poolRows{rs}, nil
}

func (q poolQueryer) QueryRow(ctx context.Context, sql string, args ...any) repokit.Row {
	return q.p.QueryRow(ctx, sql, args...)
}

type execTag struct {
	s string
	n int64
}

func (t execTag) String() string      { return t.s }
func (t execTag) RowsAffected() int64 { return t.n }

type poolRows struct{ r interface {
	Next() bool
	Scan(...any) error
	Err() error
	Close()
} }

func (x poolRows) Next() bool            { return x.r.Next() }
func (x poolRows) Scan(dst ...any) error { return x.r.Scan(dst...) }
func (x poolRows) Err() error            { return x.r.Err() }
func (x poolRows) Close()                { x.r.Close() }

const schema = `
	CREATE TABLE IF NOT EXISTS feed_notifications (
		id UUID PRIMARY KEY,
		story_phid TEXT NOT NULL,
		chronokey BIGINT NOT NULL,
		actor TEXT NOT NULL,
		kind TEXT NOT NULL,
		action_key TEXT NOT NULL,
		body TEXT NOT NULL,
		delivered_at TIMESTAMPTZ NOT NULL
	)`

func TestArchiveInsertAndRecent_Integration(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema); err != nil {
		t.Fatalf("create table: %v", err)
	}

	st := repokit.MustBind(NewPG(), poolQueryer{pool})

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		n := domain.Notification{
			ID:          uuid.NewString(),
			StoryPHID:   fmt.Sprintf("PHID-STRY-%d", i),
			Chronokey:   domain.Chronokey(1000 + i),
			Actor:       "alice",
			Kind:        grammar.KindRevision,
			ActionKey:   grammar.KeyCreated,
			Body:        fmt.Sprintf("alice created D%d (Fix thing) <https://phab/D%d>.", i, i),
			DeliveredAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := st.Insert(ctx, n); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	got, err := st.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("recent = %d rows, want 2", len(got))
	}
	if got[0].Chronokey != 1002 || got[1].Chronokey != 1001 {
		t.Fatalf("recent order wrong: %d, %d", got[0].Chronokey, got[1].Chronokey)
	}
	if got[0].Kind != grammar.KindRevision || got[0].ActionKey != grammar.KeyCreated {
		t.Fatalf("round trip lost enums: %+v", got[0])
	}
}
