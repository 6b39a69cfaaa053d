package conduit

import (
	"encoding/json"
	"strconv"
	"strings"
)

// EntityInfo is one row from phid.query. Name is the short object id
// ("D42", "rP1a2b3c"), FullName the id plus title
type EntityInfo struct {
	PHID     string `json:"phid"`
	Type     string `json:"type"`
	TypeName string `json:"typeName"`
	Name     string `json:"name"`
	FullName string `json:"fullName"`
	URI      string `json:"uri"`
	Status   string `json:"status"`
}

// Title strips the leading "Name: " prefix from FullName. Some object
// types (projects, users) carry no separate title and yield ""
func (e EntityInfo) Title() string {
	rest := strings.TrimPrefix(e.FullName, e.Name)
	rest = strings.TrimPrefix(rest, ":")
	return strings.TrimSpace(rest)
}

// Story is one feed.query entry. ChronologicalKey is a decimal string on
// the wire and can exceed int53, so it stays opaque here
type Story struct {
	PHID             string      `json:"storyPHID"`
	Class            string      `json:"class"`
	Epoch            json.Number `json:"epoch"`
	AuthorPHID       string      `json:"authorPHID"`
	ChronologicalKey string      `json:"chronologicalKey"`
	Text             string      `json:"text"`
	Data             StoryData   `json:"data"`
}

// StoryData is the class-specific payload; only the object ref matters here
type StoryData struct {
	ObjectPHID string `json:"objectPHID"`
}

// Key parses the chronological key as an unsigned 64-bit ordinal
func (s Story) Key() (uint64, error) {
	return strconv.ParseUint(s.ChronologicalKey, 10, 64)
}

// EpochSeconds returns the story timestamp, 0 when absent or malformed
func (s Story) EpochSeconds() int64 {
	n, err := s.Epoch.Int64()
	if err != nil {
		return 0
	}
	return n
}

// Revision is one row from differential.query
type Revision struct {
	ID         string `json:"id"`
	PHID       string `json:"phid"`
	Title      string `json:"title"`
	URI        string `json:"uri"`
	StatusName string `json:"statusName"`
}

// Commit is one row from diffusion.querycommits
type Commit struct {
	ID         string `json:"id"`
	PHID       string `json:"phid"`
	Identifier string `json:"identifier"`
	URI        string `json:"uri"`
	Summary    string `json:"summary"`
	AuthorPHID string `json:"authorPHID"`
	AuthorName string `json:"authorName"`
}

// Paste is one row from paste.query
type Paste struct {
	ID         string `json:"id"`
	PHID       string `json:"phid"`
	ObjectName string `json:"objectName"`
	Title      string `json:"title"`
	URI        string `json:"uri"`
	AuthorPHID string `json:"authorPHID"`
}
