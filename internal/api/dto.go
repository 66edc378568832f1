package api

import (
	"time"

	"github.com/oddrun/ansuz/internal/index"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// UpdateNoteRequest is the request body for updating a note.
type UpdateNoteRequest struct {
	Content string `json:"content"`
}

// NoteListItem is one entry in a list response.
type NoteListItem struct {
	Path       string    `json:"path"`
	ID         string    `json:"id,omitempty"`
	Type       string    `json:"type,omitempty"`
	Title      string    `json:"title,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	Confidence string    `json:"confidence,omitempty"`
	Updated    string    `json:"updated,omitempty"`
	Checksum   string    `json:"checksum"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toListItem(n index.NoteRow) NoteListItem {
	return NoteListItem{
		Path:       n.Path,
		ID:         n.NoteID,
		Type:       n.Type,
		Title:      n.Title,
		Tags:       n.Tags,
		Confidence: n.Confidence,
		Updated:    n.Updated,
		Checksum:   n.Checksum,
		UpdatedAt:  n.UpdatedAt,
	}
}

// PackRequest is the request body for POST /pack.
type PackRequest struct {
	Question   string   `json:"question"`
	Seeds      []string `json:"seeds,omitempty"`
	Hops       *int     `json:"hops,omitempty"`
	RecentDays *int     `json:"recent_days,omitempty"`
	TopK       *int     `json:"topk,omitempty"`
	MaxTokens  *int     `json:"max_tokens,omitempty"`
}

// PackResponse carries the rendered context pack plus run statistics.
type PackResponse struct {
	Document   string `json:"document"`
	Candidates int    `json:"candidates"`
	Included   int    `json:"included"`
	EstTokens  int    `json:"est_tokens"`
}
