package pack

import (
	"testing"
	"time"

	"github.com/oddrun/ansuz/internal/models"
)

func TestRecent_Boundary(t *testing.T) {
	now := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	notes := []models.Note{
		{ID: "on.cutoff", Updated: now.AddDate(0, 0, -30)},
		{ID: "one.older", Updated: now.AddDate(0, 0, -31)},
		{ID: "fresh", Updated: now},
	}
	got := Recent(notes, 30, now)
	if _, ok := got["on.cutoff"]; !ok {
		t.Error("note updated exactly at the cutoff should be included")
	}
	if _, ok := got["one.older"]; ok {
		t.Error("note one day older than the cutoff should be excluded")
	}
	if _, ok := got["fresh"]; !ok {
		t.Error("note updated today should be included")
	}
}

func TestRecent_UnknownDateExcluded(t *testing.T) {
	now := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	notes := []models.Note{{ID: "undated"}}
	if got := Recent(notes, 30, now); len(got) != 0 {
		t.Errorf("recent = %v, want empty", got)
	}
}

func TestRecent_NoIDExcluded(t *testing.T) {
	now := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	notes := []models.Note{{Updated: now}}
	if got := Recent(notes, 30, now); len(got) != 0 {
		t.Errorf("recent = %v, want empty", got)
	}
}
