package service

import (
	"context"
	"errors"
	"testing"

	"herald/internal/adapters/conduit"
	"herald/internal/core/render"
)

type fakeAPI struct {
	revs    []conduit.Revision
	commits map[string]conduit.Commit
	pastes  map[string]conduit.Paste
	err     error

	revCalls, commitCalls, pasteCalls int
}

func (f *fakeAPI) DifferentialQuery(_ context.Context, ids []int) ([]conduit.Revision, error) {
	f.revCalls++
	return f.revs, f.err
}

func (f *fakeAPI) DiffusionQueryCommitsByName(_ context.Context, names []string) (map[string]conduit.Commit, error) {
	f.commitCalls++
	return f.commits, f.err
}

func (f *fakeAPI) PasteQuery(_ context.Context, ids []int) (map[string]conduit.Paste, error) {
	f.pasteCalls++
	return f.pastes, f.err
}

func TestScanOrderAndDedup(t *testing.T) {
	refs := scan("see D16 and rP1a2b3c, also P7 then D16 again (and D300)")
	want := []string{"D16", "rP1a2b3c", "P7", "D300"}
	if len(refs) != len(want) {
		t.Fatalf("refs = %v", refs)
	}
	for i := range want {
		if refs[i] != want[i] {
			t.Fatalf("refs = %v, want %v", refs, want)
		}
	}
}

func TestScanDoesNotSplitCommitRefs(t *testing.T) {
	refs := scan("commit rP123 only")
	if len(refs) != 1 || refs[0] != "rP123" {
		t.Fatalf("refs = %v", refs)
	}
}

func TestRepliesInMentionOrder(t *testing.T) {
	api := &fakeAPI{
		revs: []conduit.Revision{
			{ID: "16", Title: "Fix thing", URI: "https://phab/D16", StatusName: "Accepted"},
		},
		commits: map[string]conduit.Commit{
			"rP1a2b3c": {Summary: "Fix the build", URI: "https://phab/rP1a2b3c"},
		},
		pastes: map[string]conduit.Paste{
			"PHID-PSTE-1": {ObjectName: "P7", Title: "debug log", URI: "https://phab/P7"},
		},
	}
	s := New(api, render.Renderer{})

	got, err := s.RepliesFor(context.Background(), "look at P7 and D16, then rP1a2b3c")
	if err != nil {
		t.Fatalf("RepliesFor: %v", err)
	}
	want := []string{
		"P7: debug log <https://phab/P7>",
		"D16: Fix thing [Accepted] <https://phab/D16>",
		"rP1a2b3c: Fix the build <https://phab/rP1a2b3c>",
	}
	if len(got) != len(want) {
		t.Fatalf("got = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestUnresolvableMentionsDropped(t *testing.T) {
	api := &fakeAPI{
		revs: []conduit.Revision{{ID: "16", Title: "Fix thing", URI: "https://phab/D16", StatusName: "Accepted"}},
	}
	s := New(api, render.Renderer{})

	got, err := s.RepliesFor(context.Background(), "D16 and D99999")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got = %v, want just D16", got)
	}
}

func TestNoMentionsNoLookups(t *testing.T) {
	api := &fakeAPI{}
	s := New(api, render.Renderer{})

	got, err := s.RepliesFor(context.Background(), "nothing interesting here")
	if err != nil || got != nil {
		t.Fatalf("got = %v err = %v", got, err)
	}
	if api.revCalls+api.commitCalls+api.pasteCalls != 0 {
		t.Fatal("lookups performed for mention-free text")
	}
}

func TestLookupErrorSurfaces(t *testing.T) {
	api := &fakeAPI{err: errors.New("conduit down")}
	s := New(api, render.Renderer{})

	if _, err := s.RepliesFor(context.Background(), "D16"); err == nil {
		t.Fatal("error swallowed")
	}
}
