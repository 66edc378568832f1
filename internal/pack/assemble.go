package pack

import (
	"sort"

	"github.com/oddrun/ansuz/internal/models"
	"github.com/oddrun/ansuz/internal/vault"
)

// Candidate is a note paired with its relevance score.
type Candidate struct {
	Note  models.Note
	Score float64
}

// Assemble unions three candidate sources — link expansion from the seeds
// (skipped when no seeds are given), the recency window, and the keyword
// top-K — then resolves, re-scores, and ranks the union.
//
// Ranking is score-descending with an id-ascending tie-break, so equal
// scores order deterministically regardless of map iteration.
func Assemble(notes []models.Note, p Params, terms []string) []Candidate {
	candidateIDs := make(map[string]struct{})

	if len(p.Seeds) > 0 {
		for id := range Expand(notes, p.Seeds, p.Hops) {
			candidateIDs[id] = struct{}{}
		}
	}

	for id := range Recent(notes, p.RecentDays, p.Now) {
		candidateIDs[id] = struct{}{}
	}

	// Keyword top-K: slice the score-sorted list to topk first, then keep
	// entries with a positive score and a present id. Slots consumed by
	// id-less or zero-score notes are not refilled.
	scored := make([]Candidate, len(notes))
	for i, n := range notes {
		scored[i] = Candidate{Note: n, Score: Score(&notes[i], terms)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	top := scored
	if p.TopK < len(top) {
		top = top[:p.TopK]
	}
	for _, c := range top {
		if c.Note.ID != "" && c.Score > 0 {
			candidateIDs[c.Note.ID] = struct{}{}
		}
	}

	// Resolve ids back to notes; ids that were never loaded drop silently.
	byID := vault.ByID(notes)
	candidates := make([]Candidate, 0, len(candidateIDs))
	for id := range candidateIDs {
		n, ok := byID[id]
		if !ok {
			continue
		}
		candidates = append(candidates, Candidate{Note: n, Score: Score(&n, terms)})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Note.ID < candidates[j].Note.ID
	})
	return candidates
}
