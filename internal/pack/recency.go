package pack

import (
	"time"

	"github.com/oddrun/ansuz/internal/models"
)

// Recent returns the ids of notes whose updated date falls within the last
// days relative to now. Notes without a resolvable updated date, or
// without an id, are excluded — recency is simply undetermined for them.
func Recent(notes []models.Note, days int, now time.Time) map[string]struct{} {
	cutoff := now.AddDate(0, 0, -days)
	recent := make(map[string]struct{})
	for i := range notes {
		n := &notes[i]
		if n.ID == "" || !n.HasUpdated() {
			continue
		}
		if !n.Updated.Before(cutoff) {
			recent[n.ID] = struct{}{}
		}
	}
	return recent
}
