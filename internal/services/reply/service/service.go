// Package service answers chat mentions of tracker objects with one-line
// summaries. It shares the Conduit client with the poll loop but keeps its
// own per-call lookup state, never the loop's cycle cache
package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"herald/internal/adapters/conduit"
	"herald/internal/core/render"
	"herald/internal/platform/logger"
)

// refPattern matches revision (D16), commit (rPabc123) and paste (P7)
// mentions. Word boundaries keep the P rule from eating the tail of rP refs
var refPattern = regexp.MustCompile(`\b(D\d+|rP[0-9a-zA-Z]+|P\d+)\b`)

type conduitAPI interface {
	DifferentialQuery(ctx context.Context, ids []int) ([]conduit.Revision, error)
	DiffusionQueryCommitsByName(ctx context.Context, names []string) (map[string]conduit.Commit, error)
	PasteQuery(ctx context.Context, ids []int) (map[string]conduit.Paste, error)
}

// Svc implements domain.ReplierPort
type Svc struct {
	api  conduitAPI
	rend render.Renderer
	log  logger.Logger
}

// New constructs the reply service
func New(api conduitAPI, rend render.Renderer) *Svc {
	return &Svc{api: api, rend: rend, log: *logger.Named("reply")}
}

// RepliesFor scans text and builds summary lines in mention order.
// Unresolvable mentions are dropped silently: chat text is full of D- and
// P-shaped words that are not object refs
func (s *Svc) RepliesFor(ctx context.Context, text string) ([]string, error) {
	refs := scan(text)
	if len(refs) == 0 {
		return nil, nil
	}

	var revIDs, pasteIDs []int
	var commitNames []string
	for _, ref := range refs {
		switch {
		case strings.HasPrefix(ref, "rP"):
			commitNames = append(commitNames, ref)
		case strings.HasPrefix(ref, "D"):
			if n, err := strconv.Atoi(ref[1:]); err == nil {
				revIDs = append(revIDs, n)
			}
		default:
			if n, err := strconv.Atoi(ref[1:]); err == nil {
				pasteIDs = append(pasteIDs, n)
			}
		}
	}

	lines := map[string]string{}

	if len(revIDs) > 0 {
		revs, err := s.api.DifferentialQuery(ctx, revIDs)
		if err != nil {
			return nil, err
		}
		for _, r := range revs {
			lines["D"+r.ID] = "D" + r.ID + ": " + r.Title + " [" + r.StatusName + "] " + s.rend.Link(r.URI)
		}
	}
	if len(commitNames) > 0 {
		commits, err := s.api.DiffusionQueryCommitsByName(ctx, commitNames)
		if err != nil {
			return nil, err
		}
		for name, c := range commits {
			lines[name] = name + ": " + c.Summary + " " + s.rend.Link(c.URI)
		}
	}
	if len(pasteIDs) > 0 {
		pastes, err := s.api.PasteQuery(ctx, pasteIDs)
		if err != nil {
			return nil, err
		}
		for _, p := range pastes {
			lines[p.ObjectName] = p.ObjectName + ": " + p.Title + " " + s.rend.Link(p.URI)
		}
	}

	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if line, ok := lines[ref]; ok {
			out = append(out, line)
		}
	}
	return out, nil
}

// scan extracts distinct refs preserving first-mention order
func scan(text string) []string {
	seen := map[string]bool{}
	var out []string
	for _, ref := range refPattern.FindAllString(text, -1) {
		if !seen[ref] {
			seen[ref] = true
			out = append(out, ref)
		}
	}
	return out
}
