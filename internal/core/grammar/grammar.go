// Package grammar classifies free-text feed narratives into typed actions.
//
// The upstream tracker renders every story as prose built from the actor's
// display name, a fixed action phrase and the target object's id and title.
// Classification runs an ordered list of (predicate, extractor) rules per
// target kind; special multi-field shapes are tried before the generic
// phrase + " " + id + sep + title + "." form. Anything that matches no rule
// comes back as an unknown action so the raw text can be logged for later
// grammar extension, never as a crash
package grammar

import (
	"strings"

	"herald/internal/core/render"
	"herald/internal/platform/logger"
)

// Kind is the category of object a story is about
type Kind string

const (
	KindRevision   Kind = "revision"
	KindCommit     Kind = "commit"
	KindPaste      Kind = "paste"
	KindProject    Kind = "project"
	KindImageMacro Kind = "image-macro"
	KindUnknown    Kind = "unknown"
)

// KindFromPHIDType maps the tracker's PHID type constants to a Kind
func KindFromPHIDType(t string) Kind {
	switch t {
	case "DREV":
		return KindRevision
	case "CMIT":
		return KindCommit
	case "PSTE":
		return KindPaste
	case "PROJ":
		return KindProject
	case "MCRO":
		return KindImageMacro
	default:
		return KindUnknown
	}
}

// ActionKey identifies a recognized action within a kind's closed vocabulary
type ActionKey string

const (
	KeyUnknown          ActionKey = "unknown"
	KeyCreated          ActionKey = "created"
	KeyUpdatedDiff      ActionKey = "updated-diff"
	KeyUpdatedSummary   ActionKey = "updated-summary"
	KeyAbandoned        ActionKey = "abandoned"
	KeyReclaimed        ActionKey = "reclaimed"
	KeyAccepted         ActionKey = "accepted"
	KeyRequestedChanges ActionKey = "requested-changes"
	KeyRequestedReview  ActionKey = "requested-review"
	KeyPlannedChanges   ActionKey = "planned-changes"
	KeyCommandeered     ActionKey = "commandeered"
	KeyCommented        ActionKey = "commented"
	KeyInlineCommented  ActionKey = "inline-commented"
	KeyRaisedConcern    ActionKey = "raised-concern"
	KeyResigned         ActionKey = "resigned"
	KeyClosed           ActionKey = "closed"
	KeyRetitled         ActionKey = "retitled"
	KeyAddedReviewer    ActionKey = "added-reviewer"
	KeyAwarded          ActionKey = "awarded"
	KeySetRepository    ActionKey = "set-repository"
	KeyCommitted        ActionKey = "committed"
	KeyEdited           ActionKey = "edited"
	KeyArchived         ActionKey = "archived"
	KeyRenamed          ActionKey = "renamed"
	KeyAddedMember      ActionKey = "added-member"
)

// Target is the resolved object a narrative talks about
type Target struct {
	Kind  Kind
	ID    string
	Title string
	Link  string
}

// Input is one enriched record ready for classification
type Input struct {
	ActorName string
	Target    Target
	Narrative string
}

// Action is the classification result. Text is empty both when the action
// is suppressed by policy and when the narrative was unclassifiable; the
// Suppressed flag and KeyUnknown keep the two apart
type Action struct {
	Kind         Kind
	Key          ActionKey
	Participants []string
	Text         string
	Suppressed   bool
}

// Emittable reports whether the action should produce a notification
func (a Action) Emittable() bool {
	return a.Key != KeyUnknown && !a.Suppressed
}

// Policy carries the per-action emission switches
type Policy struct {
	NotifyCommit  bool
	NotifyRetitle bool
}

// Classifier turns narratives into Actions under a render and policy config.
// It is stateless after construction and safe for concurrent use
type Classifier struct {
	rend   render.Renderer
	policy Policy
	log    logger.Logger
	rules  map[Kind][]rule
}

type rule struct {
	name string
	try  func(in Input, rest string) (Action, bool)
}

// New constructs a Classifier
func New(rend render.Renderer, policy Policy) *Classifier {
	c := &Classifier{
		rend:   rend,
		policy: policy,
		log:    *logger.Named("grammar"),
	}
	c.rules = map[Kind][]rule{
		KindRevision: {
			{"added-reviewer", c.ruleAddedReviewer},
			{"closed", c.ruleClosed},
			{"set-repository", c.ruleSetRepository},
			{"awarded", c.ruleAwarded},
			{"retitled", c.ruleRetitled},
			{"generic", c.genericRule(revisionPhrases, ": ")},
		},
		KindCommit: {
			{"committed", c.ruleCommitted},
			{"awarded", c.ruleAwarded},
			{"generic", c.genericRule(commitPhrases, ": ")},
		},
		KindPaste: {
			// paste narratives omit the colon between id and title
			{"generic", c.genericRule(pastePhrases, " ")},
		},
		KindProject: {
			{"added-member", c.ruleAddedMembers},
			{"generic", c.genericRule(projectPhrases, "")},
		},
		// image-macro stories have no stable narrative shape upstream and
		// are reported as unknown on purpose
		KindImageMacro: nil,
	}
	return c
}

var revisionPhrases = map[string]ActionKey{
	"created":                  KeyCreated,
	"updated the diff for":     KeyUpdatedDiff,
	"updated the summary of":   KeyUpdatedSummary,
	"abandoned":                KeyAbandoned,
	"reclaimed":                KeyReclaimed,
	"accepted":                 KeyAccepted,
	"requested changes to":     KeyRequestedChanges,
	"requested review of":      KeyRequestedReview,
	"planned changes to":       KeyPlannedChanges,
	"commandeered":             KeyCommandeered,
	"added a comment to":       KeyCommented,
	"added inline comments to": KeyInlineCommented,
	"resigned from":            KeyResigned,
	"updated":                  KeyUpdatedDiff,
}

var commitPhrases = map[string]ActionKey{
	"added a comment to":       KeyCommented,
	"added inline comments to": KeyInlineCommented,
	"raised a concern with":    KeyRaisedConcern,
	"accepted":                 KeyAccepted,
	"resigned from auditing":   KeyResigned,
}

var pastePhrases = map[string]ActionKey{
	"created":  KeyCreated,
	"edited":   KeyEdited,
	"archived": KeyArchived,
}

var projectPhrases = map[string]ActionKey{
	"created":  KeyCreated,
	"renamed":  KeyRenamed,
	"archived": KeyArchived,
}

// Classify derives an Action from one enriched record. It never fails:
// unmatched narratives yield KeyUnknown and a log line with the raw text
func (c *Classifier) Classify(in Input) Action {
	head := in.ActorName + " "
	if in.ActorName == "" || !strings.HasPrefix(in.Narrative, head) {
		return c.unknown(in, "narrative does not start with actor name")
	}
	rest := in.Narrative[len(head):]

	for _, r := range c.rules[in.Target.Kind] {
		if a, ok := r.try(in, rest); ok {
			return a
		}
	}
	return c.unknown(in, "no grammar rule matched")
}

func (c *Classifier) unknown(in Input, why string) Action {
	c.log.Warn().
		Str("kind", string(in.Target.Kind)).
		Str("object", in.Target.ID).
		Str("narrative", in.Narrative).
		Msg("unclassifiable narrative: " + why)
	return Action{Kind: in.Target.Kind, Key: KeyUnknown}
}

// genericRule matches phrase + " " + id + sep + title + "." where the
// phrase must belong to the kind's closed vocabulary. An empty sep means
// the object has no separate title ("created ProjectName.")
func (c *Classifier) genericRule(vocab map[string]ActionKey, sep string) func(Input, string) (Action, bool) {
	return func(in Input, rest string) (Action, bool) {
		suffix := " " + in.Target.ID + "."
		if sep != "" && in.Target.Title != "" {
			suffix = " " + in.Target.ID + sep + in.Target.Title + "."
		}
		if !strings.HasSuffix(rest, suffix) {
			return Action{}, false
		}
		phrase := strings.TrimSuffix(rest, suffix)
		key, ok := vocab[phrase]
		if !ok {
			return Action{}, false
		}
		return Action{
			Kind: in.Target.Kind,
			Key:  key,
			Text: c.format(in, phrase),
		}, true
	}
}

// ruleAddedReviewer handles "added a reviewer for D42: Title: bob." and the
// plural "added reviewers for" variant, extracting the reviewer names
func (c *Classifier) ruleAddedReviewer(in Input, rest string) (Action, bool) {
	obj := in.Target.ID + ": " + in.Target.Title + ": "
	var phrase string
	switch {
	case strings.HasPrefix(rest, "added a reviewer for "+obj):
		phrase = "added a reviewer for"
	case strings.HasPrefix(rest, "added reviewers for "+obj):
		phrase = "added reviewers for"
	default:
		return Action{}, false
	}
	tail := strings.TrimPrefix(rest, phrase+" "+obj)
	if !strings.HasSuffix(tail, ".") {
		return Action{}, false
	}
	names := strings.Split(strings.TrimSuffix(tail, "."), ", ")
	obscured := make([]string, len(names))
	for i, n := range names {
		obscured[i] = c.rend.Name(n)
	}
	return Action{
		Kind:         in.Target.Kind,
		Key:          KeyAddedReviewer,
		Participants: names,
		Text:         c.format(in, phrase+" "+strings.Join(obscured, ", ")+" on"),
	}, true
}

// ruleClosed matches any "closed D42: Title…" narrative, including the
// "closed … by committing …" long form, before the generic rule can miss it
func (c *Classifier) ruleClosed(in Input, rest string) (Action, bool) {
	if !strings.HasPrefix(rest, "closed "+in.Target.ID+": "+in.Target.Title) {
		return Action{}, false
	}
	return Action{
		Kind: in.Target.Kind,
		Key:  KeyClosed,
		Text: c.format(in, "closed"),
	}, true
}

func (c *Classifier) ruleSetRepository(in Input, rest string) (Action, bool) {
	if !strings.HasPrefix(rest, "set the repository for "+in.Target.ID+": "+in.Target.Title) {
		return Action{}, false
	}
	return Action{
		Kind: in.Target.Kind,
		Key:  KeySetRepository,
		Text: c.format(in, "set the repository for"),
	}, true
}

// ruleAwarded matches "awarded D42: Title a <token> token." and keeps the
// token name as a participant
func (c *Classifier) ruleAwarded(in Input, rest string) (Action, bool) {
	sep := ": "
	head := "awarded " + in.Target.ID + sep + in.Target.Title + " a "
	if !strings.HasPrefix(rest, head) || !strings.HasSuffix(rest, " token.") {
		return Action{}, false
	}
	token := strings.TrimSuffix(strings.TrimPrefix(rest, head), " token.")
	return Action{
		Kind:         in.Target.Kind,
		Key:          KeyAwarded,
		Participants: []string{token},
		Text:         c.format(in, "awarded a "+token+" token to"),
	}, true
}

// ruleRetitled suppresses retitle chatter unless the policy wants it
func (c *Classifier) ruleRetitled(in Input, rest string) (Action, bool) {
	if !strings.HasPrefix(rest, "retitled "+in.Target.ID) {
		return Action{}, false
	}
	a := Action{Kind: in.Target.Kind, Key: KeyRetitled}
	if !c.policy.NotifyRetitle {
		a.Suppressed = true
		return a, true
	}
	a.Text = c.format(in, "retitled")
	return a, true
}

// ruleCommitted suppresses plain commit stories unless the policy wants them
func (c *Classifier) ruleCommitted(in Input, rest string) (Action, bool) {
	if !strings.HasPrefix(rest, "committed "+in.Target.ID) {
		return Action{}, false
	}
	a := Action{Kind: in.Target.Kind, Key: KeyCommitted}
	if !c.policy.NotifyCommit {
		a.Suppressed = true
		return a, true
	}
	a.Text = c.format(in, "committed")
	return a, true
}

// ruleAddedMembers handles project membership narratives, obscuring the
// member names so chat clients do not ping them
func (c *Classifier) ruleAddedMembers(in Input, rest string) (Action, bool) {
	var phrase string
	switch {
	case strings.HasPrefix(rest, "added a member for "):
		phrase = "added a member for"
	case strings.HasPrefix(rest, "added members for "):
		phrase = "added members for"
	default:
		return Action{}, false
	}
	tail := strings.TrimPrefix(rest, phrase+" ")
	idx := strings.LastIndex(tail, ": ")
	if idx < 0 || !strings.HasSuffix(tail, ".") {
		return Action{}, false
	}
	names := strings.Split(strings.TrimSuffix(tail[idx+2:], "."), ", ")
	obscured := make([]string, len(names))
	for i, n := range names {
		obscured[i] = c.rend.Name(n)
	}
	var b strings.Builder
	b.WriteString(c.rend.Name(in.ActorName))
	b.WriteString(" " + phrase + " " + c.rend.Bold(in.Target.ID) + ": ")
	b.WriteString(strings.Join(obscured, ", "))
	if in.Target.Link != "" {
		b.WriteString(" " + c.rend.Link(in.Target.Link))
	}
	b.WriteString(".")
	return Action{
		Kind:         in.Target.Kind,
		Key:          KeyAddedMember,
		Participants: names,
		Text:         b.String(),
	}, true
}

// format renders the generic output template
func (c *Classifier) format(in Input, phrase string) string {
	t := in.Target
	var b strings.Builder
	b.WriteString(c.rend.Name(in.ActorName))
	b.WriteString(" " + phrase + " " + c.rend.Bold(t.ID))
	if t.Title != "" {
		b.WriteString(" (" + t.Title + ")")
	}
	if t.Link != "" {
		b.WriteString(" " + c.rend.Link(t.Link))
	}
	b.WriteString(".")
	return b.String()
}
