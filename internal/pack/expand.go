package pack

import (
	"github.com/oddrun/ansuz/internal/models"
	"github.com/oddrun/ansuz/internal/vault"
)

// Expand returns the seed ids plus every id reachable by following
// outbound front matter links for up to hops rounds of breadth-first
// traversal.
//
// The growing visited set bounds the walk: an id never re-enters the
// frontier, so cycles terminate without explicit detection. Targets that
// do not resolve to a loaded note are dead ends and never join the
// frontier. hops = 0 returns exactly the seed set.
func Expand(notes []models.Note, seeds []string, hops int) map[string]struct{} {
	byID := vault.ByID(notes)

	expanded := make(map[string]struct{}, len(seeds))
	frontier := make(map[string]struct{}, len(seeds))
	for _, id := range seeds {
		expanded[id] = struct{}{}
		frontier[id] = struct{}{}
	}

	for round := 0; round < hops; round++ {
		next := make(map[string]struct{})
		for id := range frontier {
			note, ok := byID[id]
			if !ok {
				continue
			}
			for _, link := range note.Links {
				target := link.To
				if target == "" {
					continue
				}
				if _, resolvable := byID[target]; !resolvable {
					continue
				}
				if _, seen := expanded[target]; seen {
					continue
				}
				next[target] = struct{}{}
			}
		}
		for id := range next {
			expanded[id] = struct{}{}
		}
		frontier = next
		if len(frontier) == 0 {
			break
		}
	}
	return expanded
}
