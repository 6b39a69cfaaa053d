// Package service implements the feed synchronization cycle: fetch a page
// around the durable cursor, enrich refs, classify narratives, filter,
// advance the cursor and deliver the surviving lines in order
package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"herald/internal/adapters/chat"
	"herald/internal/adapters/conduit"
	"herald/internal/core/grammar"
	"herald/internal/core/render"
	"herald/internal/platform/logger"
	"herald/internal/services/feed/domain"
	"herald/internal/services/feed/repo"

	perr "herald/internal/platform/errors"
)

const (
	defaultStoryLimit = 15
	defaultInterval   = 60 * time.Second
)

// Config is the immutable per-run configuration of the synchronizer
type Config struct {
	Direction  domain.Direction
	StoryLimit int
	Interval   time.Duration

	// Epoch window bounds, 0 means unbounded on that side
	EpochAfter  int64
	EpochBefore int64

	// Actor filtering by display name, case-insensitive. A non-empty
	// allow list admits only its members; the deny list always wins
	AllowActors []string
	DenyActors  []string

	NotifyCommit  bool
	NotifyRetitle bool

	ObscureNames bool
	Bolding      bool
	HTMLLinks    bool

	// NewsPrefix is prepended to every delivered line; PrintDate adds the
	// record's wall-clock date after it
	NewsPrefix string
	PrintDate  bool

	CursorPath string
}

func (c Config) withDefaults() Config {
	if c.Direction == "" {
		c.Direction = domain.Forward
	}
	if c.StoryLimit <= 0 {
		c.StoryLimit = defaultStoryLimit
	}
	if c.Interval <= 0 {
		c.Interval = defaultInterval
	}
	return c
}

// Syncer runs the fetch/classify/deliver loop. One cycle at a time; the
// cursor and the per-cycle resolver cache are never shared across cycles
type Syncer struct {
	cfg      Config
	api      conduitAPI
	notifier chat.Notifier
	cursors  *CursorStore
	archive  repo.Storage
	class    *grammar.Classifier
	log      logger.Logger

	cur       domain.Cursor
	haveCur   bool
	loaded    bool
	lastSaved domain.Chronokey
	allow     map[string]bool
	deny      map[string]bool
	cycle     uint64
}

// NewSyncer wires a Syncer. The archive may be nil when no database is
// configured; delivery then skips the archival step
func NewSyncer(cfg Config, api conduitAPI, notifier chat.Notifier, archive repo.Storage) *Syncer {
	cfg = cfg.withDefaults()
	rend := render.Renderer{
		Bolding:      cfg.Bolding,
		ObscureNames: cfg.ObscureNames,
		HTMLLinks:    cfg.HTMLLinks,
	}
	return &Syncer{
		cfg:      cfg,
		api:      api,
		notifier: notifier,
		cursors:  NewCursorStore(cfg.CursorPath),
		archive:  archive,
		class:    grammar.New(rend, grammar.Policy{NotifyCommit: cfg.NotifyCommit, NotifyRetitle: cfg.NotifyRetitle}),
		log:      *logger.Named("sync"),
		allow:    lowerSet(cfg.AllowActors),
		deny:     lowerSet(cfg.DenyActors),
	}
}

func lowerSet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	m := make(map[string]bool, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			m[strings.ToLower(n)] = true
		}
	}
	return m
}

// RunOnce implements domain.SyncerPort
func (s *Syncer) RunOnce(ctx context.Context) (domain.SyncReport, error) {
	s.cycle++
	ctx = logger.WithCycle(ctx, s.cycle)
	log := logger.C(ctx).With().Str("component", "sync").Logger()
	var rep domain.SyncReport

	if !s.loaded {
		s.cur, s.haveCur = s.cursors.Load()
		s.lastSaved = s.cur.Key
		s.loaded = true
		if s.haveCur {
			log.Info().Uint64("chronokey", uint64(s.cur.Key)).Msg("cursor restored")
		} else {
			log.Info().Msg("no cursor, starting from most recent")
		}
	}

	if s.haveCur && s.windowExhausted() {
		rep.Exhausted = true
		rep.Cursor = s.cur
		return rep, nil
	}

	stories, err := s.fetch(ctx)
	if err != nil {
		return rep, err
	}
	if s.cfg.Direction == domain.Backward && len(stories) == 0 {
		rep.Exhausted = true
		rep.Cursor = s.cur
		return rep, nil
	}

	// emission order is by chronokey, not the feed's native order
	sort.Slice(stories, func(i, j int) bool {
		if s.cfg.Direction == domain.Backward {
			return stories[i].Key > stories[j].Key
		}
		return stories[i].Key < stories[j].Key
	})

	res := newResolver(s.api, log)
	refs := make([]string, 0, len(stories)*2)
	for _, st := range stories {
		refs = append(refs, st.AuthorPHID, st.ObjectPHID)
	}
	res.ResolveBatch(ctx, refs)

	lines, notes := s.interpret(ctx, log, res, stories, &rep)

	if s.haveCur && s.cur.Key != s.lastSaved {
		if err := s.cursors.Save(s.cur); err != nil {
			log.Error().Err(err).Msg("cursor save failed, will retry next cycle")
		} else {
			s.lastSaved = s.cur.Key
		}
	}

	for i, line := range lines {
		if err := s.notifier.Notify(ctx, line); err != nil {
			log.Error().Err(err).Str("line", line).Msg("delivery failed, continuing")
			continue
		}
		rep.Emitted++
		if s.archive != nil {
			if err := s.archive.Insert(ctx, notes[i]); err != nil {
				log.Error().Err(err).Msg("archive insert failed")
			}
		}
	}

	rep.Cursor = s.cur
	log.Debug().Int("seen", rep.Seen).Int("emitted", rep.Emitted).Msg("cycle complete")
	return rep, nil
}

// RunForever implements domain.SyncerPort. Transport failures abort only
// their cycle; cancellation ends the loop cleanly; anything else is fatal
func (s *Syncer) RunForever(ctx context.Context) error {
	for {
		rep, err := s.RunOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if !perr.Retryable(err) {
				return err
			}
			s.log.Warn().Err(err).Msg("cycle aborted, retrying after idle interval")
		}
		if rep.Exhausted {
			s.log.Info().Uint64("chronokey", uint64(rep.Cursor.Key)).Msg("feed window exhausted")
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.cfg.Interval):
		}
	}
}

func (s *Syncer) fetch(ctx context.Context) ([]domain.Story, error) {
	args := conduit.FeedQueryArgs{Limit: s.cfg.StoryLimit}
	if s.haveCur {
		// the feed is served most recent first, so the fetch bound is the
		// inverse of the traversal direction
		if s.cfg.Direction == domain.Forward {
			args.Before = uint64(s.cur.Key)
		} else {
			args.After = uint64(s.cur.Key)
		}
	}
	raw, err := s.api.FeedQuery(ctx, args)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Story, 0, len(raw))
	for _, r := range raw {
		key, err := r.Key()
		if err != nil {
			s.log.Warn().Str("story", r.PHID).Str("key", r.ChronologicalKey).Msg("unparsable chronokey, skipping record")
			continue
		}
		out = append(out, domain.Story{
			PHID:       r.PHID,
			Key:        domain.Chronokey(key),
			Epoch:      r.EpochSeconds(),
			AuthorPHID: r.AuthorPHID,
			ObjectPHID: r.Data.ObjectPHID,
			Text:       r.Text,
		})
	}
	return out, nil
}

func (s *Syncer) interpret(ctx context.Context, log logger.Logger, res *resolver, stories []domain.Story, rep *domain.SyncReport) ([]string, []domain.Notification) {
	var lines []string
	var notes []domain.Notification
	for _, st := range stories {
		s.advance(st)
		rep.Seen++

		if !s.inEpochWindow(st.Epoch) {
			continue
		}
		target, ok := res.Target(st.ObjectPHID)
		if !ok {
			werr := perr.UnresolvedReff("object %s on story %s", st.ObjectPHID, st.PHID)
			log.Warn().Err(werr).Msg("skipping record with unresolved object")
			continue
		}

		var actor string
		if IsSentinelActor(st.AuthorPHID) && target.Kind == grammar.KindCommit {
			actor, ok = res.CommitAuthor(ctx, st.ObjectPHID)
		} else {
			actor, ok = res.ActorName(st.AuthorPHID)
		}
		if !ok {
			werr := perr.UnresolvedReff("actor %s on story %s", st.AuthorPHID, st.PHID)
			log.Warn().Err(werr).Msg("skipping record with unresolved actor")
			continue
		}
		if s.filteredActor(actor) {
			continue
		}

		a := s.class.Classify(grammar.Input{ActorName: actor, Target: target, Narrative: st.Text})
		if !a.Emittable() {
			continue
		}
		line := s.composeLine(st, a.Text)
		lines = append(lines, line)
		notes = append(notes, domain.Notification{
			ID:          uuid.NewString(),
			StoryPHID:   st.PHID,
			Chronokey:   st.Key,
			Actor:       actor,
			Kind:        a.Kind,
			ActionKey:   a.Key,
			Body:        line,
			DeliveredAt: time.Now().UTC(),
		})
	}
	return lines, notes
}

// advance moves the cursor past a seen record, filtered or not
func (s *Syncer) advance(st domain.Story) {
	if !s.haveCur {
		s.cur = domain.Cursor{Key: st.Key, Epoch: st.Epoch}
		s.haveCur = true
		return
	}
	next := s.cfg.Direction.Advance(s.cur.Key, st.Key)
	if next != s.cur.Key {
		s.cur = domain.Cursor{Key: next, Epoch: st.Epoch}
	}
}

// windowExhausted reports whether the cursor's epoch has crossed the
// configured bound in the traversal direction. A zero cursor epoch, as
// after a restart, never exhausts
func (s *Syncer) windowExhausted() bool {
	if s.cur.Epoch == 0 {
		return false
	}
	if s.cfg.Direction == domain.Forward {
		return s.cfg.EpochBefore > 0 && s.cur.Epoch > s.cfg.EpochBefore
	}
	return s.cfg.EpochAfter > 0 && s.cur.Epoch < s.cfg.EpochAfter
}

func (s *Syncer) inEpochWindow(epoch int64) bool {
	if s.cfg.EpochAfter > 0 && epoch < s.cfg.EpochAfter {
		return false
	}
	if s.cfg.EpochBefore > 0 && epoch > s.cfg.EpochBefore {
		return false
	}
	return true
}

func (s *Syncer) filteredActor(name string) bool {
	low := strings.ToLower(name)
	if s.deny[low] {
		return true
	}
	if s.allow != nil && !s.allow[low] {
		return true
	}
	return false
}

func (s *Syncer) composeLine(st domain.Story, text string) string {
	var b strings.Builder
	if s.cfg.NewsPrefix != "" {
		b.WriteString(s.cfg.NewsPrefix)
		b.WriteString(" ")
	}
	if s.cfg.PrintDate && st.Epoch > 0 {
		b.WriteString("[" + time.Unix(st.Epoch, 0).UTC().Format("2006-01-02 15:04") + "] ")
	}
	b.WriteString(text)
	return b.String()
}
