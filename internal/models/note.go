// Package models defines the domain types for Ansuz.
package models

import "time"

// Note represents a parsed Markdown file in the vault.
//
// ID is optional: notes without one still participate in keyword scoring
// and recency, but cannot be targeted by link expansion or referenced from
// other notes. Where IDs collide, the note loaded last wins in any
// id-keyed lookup.
type Note struct {
	Path        string                 `json:"path"`
	ID          string                 `json:"id,omitempty"`
	Type        string                 `json:"type,omitempty"`
	Title       string                 `json:"title,omitempty"`
	Tags        []string               `json:"tags,omitempty"`
	Links       []Link                 `json:"links,omitempty"`
	Created     time.Time              `json:"created,omitempty"`
	Updated     time.Time              `json:"updated,omitempty"`
	Confidence  string                 `json:"confidence,omitempty"`
	Body        string                 `json:"body"`
	Frontmatter map[string]interface{} `json:"frontmatter,omitempty"`
	Checksum    string                 `json:"checksum,omitempty"`
}

// HasUpdated reports whether the note carries a resolvable updated date.
// Missing or malformed dates leave Updated at its zero value, which keeps
// the note out of recency consideration without being an error.
func (n *Note) HasUpdated() bool {
	return !n.Updated.IsZero()
}

// Link is a directed front matter reference to another note by id.
// The target does not have to exist yet; unresolved links are valid and
// act as dead ends during graph traversal.
type Link struct {
	To  string `json:"to"`
	Rel string `json:"rel,omitempty"`
}

// NoteMetadata is a lightweight representation returned by list operations.
type NoteMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
