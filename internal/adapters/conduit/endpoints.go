package conduit

import (
	"context"
	"net/url"
	"strconv"
)

// PHIDQuery resolves a batch of PHIDs to their entity info, keyed by PHID.
// An empty input returns an empty map without a network round trip
func (c *Client) PHIDQuery(ctx context.Context, phids []string) (map[string]EntityInfo, error) {
	if len(phids) == 0 {
		return map[string]EntityInfo{}, nil
	}
	params := url.Values{}
	for i, p := range phids {
		params.Set("phids["+strconv.Itoa(i)+"]", p)
	}
	out := map[string]EntityInfo{}
	if err := c.call(ctx, "phid.query", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FeedQueryArgs bound one page of feed.query. Before and After are
// exclusive chronological-key bounds; zero means unbounded on that side
type FeedQueryArgs struct {
	Before uint64
	After  uint64
	Limit  int
}

// FeedQuery fetches one page of feed stories, most recent first, with
// plain-text narratives
func (c *Client) FeedQuery(ctx context.Context, args FeedQueryArgs) ([]Story, error) {
	params := url.Values{}
	params.Set("view", "text")
	if args.Limit > 0 {
		params.Set("limit", strconv.Itoa(args.Limit))
	}
	if args.Before > 0 {
		params.Set("before", strconv.FormatUint(args.Before, 10))
	}
	if args.After > 0 {
		params.Set("after", strconv.FormatUint(args.After, 10))
	}
	raw := map[string]Story{}
	if err := c.call(ctx, "feed.query", params, &raw); err != nil {
		return nil, err
	}
	out := make([]Story, 0, len(raw))
	for phid, st := range raw {
		if st.PHID == "" {
			st.PHID = phid
		}
		out = append(out, st)
	}
	return out, nil
}

// DifferentialQuery looks up revisions by numeric id ("D42" without the D)
func (c *Client) DifferentialQuery(ctx context.Context, ids []int) ([]Revision, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	params := url.Values{}
	for i, id := range ids {
		params.Set("ids["+strconv.Itoa(i)+"]", strconv.Itoa(id))
	}
	var out []Revision
	if err := c.call(ctx, "differential.query", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DiffusionQueryCommitsByPHID looks up commits by PHID, keyed by PHID
func (c *Client) DiffusionQueryCommitsByPHID(ctx context.Context, phids []string) (map[string]Commit, error) {
	if len(phids) == 0 {
		return map[string]Commit{}, nil
	}
	params := url.Values{}
	for i, p := range phids {
		params.Set("phids["+strconv.Itoa(i)+"]", p)
	}
	data, _, err := c.queryCommits(ctx, params)
	return data, err
}

// DiffusionQueryCommitsByName looks up commits by object name ("rP1a2b3c"),
// keyed by the requested name via the endpoint's identifier map
func (c *Client) DiffusionQueryCommitsByName(ctx context.Context, names []string) (map[string]Commit, error) {
	if len(names) == 0 {
		return map[string]Commit{}, nil
	}
	params := url.Values{}
	for i, n := range names {
		params.Set("names["+strconv.Itoa(i)+"]", n)
	}
	data, idents, err := c.queryCommits(ctx, params)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Commit, len(idents))
	for name, phid := range idents {
		if commit, ok := data[phid]; ok {
			out[name] = commit
		}
	}
	return out, nil
}

func (c *Client) queryCommits(ctx context.Context, params url.Values) (map[string]Commit, map[string]string, error) {
	var out struct {
		Data          map[string]Commit `json:"data"`
		IdentifierMap map[string]string `json:"identifierMap"`
	}
	if err := c.call(ctx, "diffusion.querycommits", params, &out); err != nil {
		return nil, nil, err
	}
	if out.Data == nil {
		out.Data = map[string]Commit{}
	}
	if out.IdentifierMap == nil {
		out.IdentifierMap = map[string]string{}
	}
	return out.Data, out.IdentifierMap, nil
}

// PasteQuery looks up pastes by numeric id, keyed by PHID
func (c *Client) PasteQuery(ctx context.Context, ids []int) (map[string]Paste, error) {
	if len(ids) == 0 {
		return map[string]Paste{}, nil
	}
	params := url.Values{}
	for i, id := range ids {
		params.Set("ids["+strconv.Itoa(i)+"]", strconv.Itoa(id))
	}
	out := map[string]Paste{}
	if err := c.call(ctx, "paste.query", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}
