package grammar

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"herald/internal/core/render"
)

func plain(policy Policy) *Classifier {
	return New(render.Renderer{}, policy)
}

func revision(id, title string) Target {
	return Target{Kind: KindRevision, ID: id, Title: title, Link: "https://phab.example.org/" + id}
}

func TestCreatedRevision(t *testing.T) {
	c := plain(Policy{})
	a := c.Classify(Input{
		ActorName: "alice",
		Target:    revision("D42", "Fix thing"),
		Narrative: "alice created D42: Fix thing.",
	})
	require.Equal(t, KeyCreated, a.Key)
	require.True(t, a.Emittable())
	require.Equal(t, 1, strings.Count(a.Text, "D42"))
	require.Equal(t, 1, strings.Count(a.Text, "Fix thing"))
}

func TestGenericPhrases(t *testing.T) {
	c := plain(Policy{})
	cases := map[string]ActionKey{
		"updated the diff for":     KeyUpdatedDiff,
		"abandoned":                KeyAbandoned,
		"accepted":                 KeyAccepted,
		"requested changes to":     KeyRequestedChanges,
		"planned changes to":       KeyPlannedChanges,
		"added a comment to":       KeyCommented,
		"added inline comments to": KeyInlineCommented,
	}
	for phrase, want := range cases {
		a := c.Classify(Input{
			ActorName: "bob",
			Target:    revision("D7", "Refactor parser"),
			Narrative: "bob " + phrase + " D7: Refactor parser.",
		})
		require.Equalf(t, want, a.Key, "phrase %q", phrase)
		require.Containsf(t, a.Text, phrase, "phrase %q", phrase)
	}
}

func TestRetitledSuppression(t *testing.T) {
	in := Input{
		ActorName: "alice",
		Target:    revision("D42", "Fix thing"),
		Narrative: `alice retitled D42: Fix thing from "Fix thing" to "Fix things".`,
	}

	a := plain(Policy{}).Classify(in)
	require.Equal(t, KeyRetitled, a.Key)
	require.True(t, a.Suppressed)
	require.Empty(t, a.Text)
	require.False(t, a.Emittable())

	a = plain(Policy{NotifyRetitle: true}).Classify(in)
	require.Equal(t, KeyRetitled, a.Key)
	require.False(t, a.Suppressed)
	require.Contains(t, a.Text, "retitled")
}

func TestCommittedSuppression(t *testing.T) {
	in := Input{
		ActorName: "carol",
		Target:    Target{Kind: KindCommit, ID: "rP1a2b3c", Title: "Fix the build", Link: "https://phab.example.org/rP1a2b3c"},
		Narrative: "carol committed rP1a2b3c: Fix the build.",
	}

	a := plain(Policy{}).Classify(in)
	require.Equal(t, KeyCommitted, a.Key)
	require.True(t, a.Suppressed)

	a = plain(Policy{NotifyCommit: true}).Classify(in)
	require.Equal(t, KeyCommitted, a.Key)
	require.Contains(t, a.Text, "committed")
	require.Contains(t, a.Text, "rP1a2b3c")
}

func TestAddedReviewerExtractsNames(t *testing.T) {
	c := plain(Policy{})
	a := c.Classify(Input{
		ActorName: "alice",
		Target:    revision("D42", "Fix thing"),
		Narrative: "alice added a reviewer for D42: Fix thing: bob.",
	})
	require.Equal(t, KeyAddedReviewer, a.Key)
	require.Equal(t, []string{"bob"}, a.Participants)
	require.Contains(t, a.Text, "bob")

	a = c.Classify(Input{
		ActorName: "alice",
		Target:    revision("D42", "Fix thing"),
		Narrative: "alice added reviewers for D42: Fix thing: bob, carol.",
	})
	require.Equal(t, []string{"bob", "carol"}, a.Participants)
}

func TestAwardedToken(t *testing.T) {
	c := plain(Policy{})
	a := c.Classify(Input{
		ActorName: "bob",
		Target:    revision("D9", "Speed up sync"),
		Narrative: "bob awarded D9: Speed up sync a Like token.",
	})
	require.Equal(t, KeyAwarded, a.Key)
	require.Equal(t, []string{"Like"}, a.Participants)
	require.Contains(t, a.Text, "Like token")
}

func TestClosedLongForm(t *testing.T) {
	c := plain(Policy{})
	a := c.Classify(Input{
		ActorName: "alice",
		Target:    revision("D42", "Fix thing"),
		Narrative: "alice closed D42: Fix thing by committing rP1a2b3c: Fix thing.",
	})
	require.Equal(t, KeyClosed, a.Key)
	require.True(t, a.Emittable())
}

func TestPasteOmitsColon(t *testing.T) {
	c := plain(Policy{})
	a := c.Classify(Input{
		ActorName: "dave",
		Target:    Target{Kind: KindPaste, ID: "P7", Title: "debug log", Link: "https://phab.example.org/P7"},
		Narrative: "dave created P7 debug log.",
	})
	require.Equal(t, KeyCreated, a.Key)
	require.Contains(t, a.Text, "P7")

	// the revision separator must not match pastes
	a = c.Classify(Input{
		ActorName: "dave",
		Target:    Target{Kind: KindPaste, ID: "P7", Title: "debug log"},
		Narrative: "dave created P7: debug log.",
	})
	require.Equal(t, KeyUnknown, a.Key)
}

func TestProjectMembersObscured(t *testing.T) {
	c := New(render.Renderer{ObscureNames: true}, Policy{})
	a := c.Classify(Input{
		ActorName: "alice",
		Target:    Target{Kind: KindProject, ID: "Backend", Title: "", Link: "https://phab.example.org/project/1/"},
		Narrative: "alice added members for Backend: bob, carol.",
	})
	require.Equal(t, KeyAddedMember, a.Key)
	require.Equal(t, []string{"bob", "carol"}, a.Participants)
	require.NotContains(t, a.Text, "bob")
	require.NotContains(t, a.Text, "carol")
	require.Contains(t, render.Strip(a.Text), "bob, carol")
}

func TestUnknownNarrative(t *testing.T) {
	c := plain(Policy{})
	a := c.Classify(Input{
		ActorName: "alice",
		Target:    revision("D42", "Fix thing"),
		Narrative: "alice frobnicated D42: Fix thing.",
	})
	require.Equal(t, KeyUnknown, a.Key)
	require.False(t, a.Emittable())
	require.Empty(t, a.Text)
}

func TestNarrativeMissingActorPrefix(t *testing.T) {
	c := plain(Policy{})
	a := c.Classify(Input{
		ActorName: "alice",
		Target:    revision("D42", "Fix thing"),
		Narrative: "someone else created D42: Fix thing.",
	})
	require.Equal(t, KeyUnknown, a.Key)
}

func TestImageMacroUnsupported(t *testing.T) {
	c := plain(Policy{})
	a := c.Classify(Input{
		ActorName: "alice",
		Target:    Target{Kind: KindImageMacro, ID: "macro-wow", Title: ""},
		Narrative: "alice created an image macro.",
	})
	require.Equal(t, KeyUnknown, a.Key)
}

func TestKindFromPHIDType(t *testing.T) {
	require.Equal(t, KindRevision, KindFromPHIDType("DREV"))
	require.Equal(t, KindCommit, KindFromPHIDType("CMIT"))
	require.Equal(t, KindPaste, KindFromPHIDType("PSTE"))
	require.Equal(t, KindProject, KindFromPHIDType("PROJ"))
	require.Equal(t, KindImageMacro, KindFromPHIDType("MCRO"))
	require.Equal(t, KindUnknown, KindFromPHIDType("USER"))
}
