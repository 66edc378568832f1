package pack

import (
	"testing"

	"github.com/oddrun/ansuz/internal/models"
)

// linked builds a note with an id and outbound link targets.
func linked(id string, targets ...string) models.Note {
	n := models.Note{ID: id, Title: id}
	for _, to := range targets {
		n.Links = append(n.Links, models.Link{To: to})
	}
	return n
}

func sameSet(t *testing.T, got map[string]struct{}, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("set size = %d, want %d: %v", len(got), len(want), got)
	}
	for _, id := range want {
		if _, ok := got[id]; !ok {
			t.Errorf("missing %q in %v", id, got)
		}
	}
}

func TestExpand_ZeroHopsReturnsSeeds(t *testing.T) {
	notes := []models.Note{linked("a", "b"), linked("b", "c"), linked("c")}
	got := Expand(notes, []string{"a"}, 0)
	sameSet(t, got, "a")
}

func TestExpand_SingleHop(t *testing.T) {
	notes := []models.Note{linked("a", "b", "c"), linked("b", "d"), linked("c"), linked("d")}
	got := Expand(notes, []string{"a"}, 1)
	sameSet(t, got, "a", "b", "c")
}

func TestExpand_Monotonic(t *testing.T) {
	notes := []models.Note{linked("a", "b"), linked("b", "c"), linked("c", "d"), linked("d")}
	for hops := 0; hops < 4; hops++ {
		smaller := Expand(notes, []string{"a"}, hops)
		larger := Expand(notes, []string{"a"}, hops+1)
		for id := range smaller {
			if _, ok := larger[id]; !ok {
				t.Errorf("hops=%d: %q missing from hops=%d expansion", hops, id, hops+1)
			}
		}
	}
}

func TestExpand_CycleTerminates(t *testing.T) {
	notes := []models.Note{linked("a", "b"), linked("b", "a")}
	got := Expand(notes, []string{"a"}, 10)
	sameSet(t, got, "a", "b")
}

func TestExpand_DeadLinkIsNoOp(t *testing.T) {
	notes := []models.Note{linked("a", "ghost.note")}
	got := Expand(notes, []string{"a"}, 3)
	sameSet(t, got, "a")
}

func TestExpand_IdleTermination(t *testing.T) {
	// Hop count far larger than the graph; the empty frontier stops the walk.
	notes := []models.Note{linked("a", "b"), linked("b")}
	got := Expand(notes, []string{"a"}, 1000)
	sameSet(t, got, "a", "b")
}

func TestExpand_UnknownSeedKept(t *testing.T) {
	// Seeds are always part of the output even when they resolve to nothing.
	notes := []models.Note{linked("a")}
	got := Expand(notes, []string{"never.written"}, 2)
	sameSet(t, got, "never.written")
}
