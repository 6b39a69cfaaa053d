package service

import (
	"context"
	"strings"

	"herald/internal/adapters/conduit"
	"herald/internal/core/grammar"
	"herald/internal/platform/logger"
)

// conduitAPI is the slice of the Conduit client the synchronizer needs.
// Kept narrow so cycle tests can fake the upstream
type conduitAPI interface {
	PHIDQuery(ctx context.Context, phids []string) (map[string]conduit.EntityInfo, error)
	FeedQuery(ctx context.Context, args conduit.FeedQueryArgs) ([]conduit.Story, error)
	DiffusionQueryCommitsByPHID(ctx context.Context, phids []string) (map[string]conduit.Commit, error)
}

// IsSentinelActor reports whether an author ref denotes the tracker's
// synthetic "no account" actor, as seen on commits pushed outside the UI
func IsSentinelActor(phid string) bool {
	return phid == "" || strings.HasPrefix(phid, "PHID-VOID")
}

// resolver caches entity lookups for the duration of one cycle. Names can
// change upstream, so the cache never outlives the batch that filled it
type resolver struct {
	api      conduitAPI
	log      logger.Logger
	entities map[string]conduit.EntityInfo
}

func newResolver(api conduitAPI, log logger.Logger) *resolver {
	return &resolver{
		api:      api,
		log:      log,
		entities: map[string]conduit.EntityInfo{},
	}
}

// ResolveBatch fetches all uncached refs in one phid.query call. A batch
// failure leaves the cache as is: the missing keys read as unresolved and
// the affected records get skipped rather than crashing the cycle
func (r *resolver) ResolveBatch(ctx context.Context, phids []string) {
	missing := make([]string, 0, len(phids))
	seen := map[string]bool{}
	for _, p := range phids {
		if p == "" || seen[p] || IsSentinelActor(p) {
			continue
		}
		seen[p] = true
		if _, ok := r.entities[p]; !ok {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return
	}
	got, err := r.api.PHIDQuery(ctx, missing)
	if err != nil {
		r.log.Warn().Err(err).Int("refs", len(missing)).Msg("batch resolution failed, records will be skipped")
		return
	}
	for phid, info := range got {
		r.entities[phid] = info
	}
}

// ActorName returns the display name for an actor ref
func (r *resolver) ActorName(phid string) (string, bool) {
	info, ok := r.entities[phid]
	if !ok {
		return "", false
	}
	return info.Name, true
}

// Target returns the classified target for an object ref
func (r *resolver) Target(phid string) (grammar.Target, bool) {
	info, ok := r.entities[phid]
	if !ok {
		return grammar.Target{}, false
	}
	return grammar.Target{
		Kind:  grammar.KindFromPHIDType(info.Type),
		ID:    info.Name,
		Title: info.Title(),
		Link:  info.URI,
	}, true
}

// CommitAuthor fetches the author name straight from commit metadata.
// Used when the story's author ref is the sentinel actor
func (r *resolver) CommitAuthor(ctx context.Context, commitPHID string) (string, bool) {
	commits, err := r.api.DiffusionQueryCommitsByPHID(ctx, []string{commitPHID})
	if err != nil {
		r.log.Warn().Err(err).Str("commit", commitPHID).Msg("commit author lookup failed")
		return "", false
	}
	c, ok := commits[commitPHID]
	if !ok || c.AuthorName == "" {
		return "", false
	}
	return c.AuthorName, true
}
