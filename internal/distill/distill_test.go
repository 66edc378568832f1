package distill

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/oddrun/ansuz/internal/apperr"
	"github.com/oddrun/ansuz/internal/parser"
	"github.com/oddrun/ansuz/internal/storage"
)

func testStore(t *testing.T) storage.Provider {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return store
}

func TestCreate(t *testing.T) {
	store := testStore(t)
	now := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	res, err := Create(store, Input{
		Topic:     "KG schema decision",
		Decisions: "Adopted links.to records, see [[topic.ontology]]",
		Knowledge: "context pack = seeds + graph expansion + recent notes",
		Links:     []string{"decision.kg_schema_v1"},
	}, now, false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.ID != "log.2025-06-30_kg_schema_decision" {
		t.Errorf("id = %q", res.ID)
	}
	if res.Path != "logs/2025-06-30_kg_schema_decision.md" {
		t.Errorf("path = %q", res.Path)
	}

	data, err := store.Read(res.Path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	content := string(data)

	// The note must parse back with typed fields intact.
	parsed, err := parser.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.ID != res.ID {
		t.Errorf("parsed id = %q", parsed.ID)
	}
	if parsed.Type != "log" {
		t.Errorf("parsed type = %q", parsed.Type)
	}
	if len(parsed.Links) != 2 {
		t.Fatalf("parsed links = %v, want the explicit and auto-extracted link", parsed.Links)
	}
	if parsed.Links[0].To != "decision.kg_schema_v1" || parsed.Links[1].To != "topic.ontology" {
		t.Errorf("parsed links = %v", parsed.Links)
	}
	if parsed.Updated != now {
		t.Errorf("parsed updated = %v", parsed.Updated)
	}

	for _, want := range []string{
		"# 2025-06-30 Distill — KG schema decision",
		"## Decisions",
		"## New Knowledge",
		"- [[decision.kg_schema_v1]]",
		"- [[topic.ontology]]",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("content missing %q", want)
		}
	}
	if strings.Contains(content, "## Context") {
		t.Error("empty sections should be omitted")
	}
}

func TestCreate_TopicRequired(t *testing.T) {
	store := testStore(t)
	if _, err := Create(store, Input{Topic: "  "}, time.Now(), false); err == nil {
		t.Error("expected error for empty topic")
	}
}

func TestCreate_RefusesOverwrite(t *testing.T) {
	store := testStore(t)
	now := time.Now()
	if _, err := Create(store, Input{Topic: "same day topic"}, now, false); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := Create(store, Input{Topic: "same day topic"}, now, false)
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestCreate_NoLinks(t *testing.T) {
	store := testStore(t)
	res, err := Create(store, Input{Topic: "plain"}, time.Now(), false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	data, _ := store.Read(res.Path)
	if !strings.Contains(string(data), "links: []") {
		t.Error("expected empty links list in front matter")
	}
}
