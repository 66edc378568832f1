package mcpserver

// NoteFormatContract describes the canonical Markdown note format that
// LLM consumers should follow when creating notes.
const NoteFormatContract = `# Ansuz Note Format Contract

Every Markdown note stored in the vault SHOULD follow this structure.

## Structure

` + "```" + `markdown
---
id: topic.example            # stable id: <type>.<slug>; required for linking
type: topic                  # one of: topic, org, person, project, decision, log
title: Human-readable title
tags: [tag-one, tag-two]     # OPTIONAL - lowercase, used for filtering and scoring
links:                       # OPTIONAL - typed references to other note ids
  - to: topic.other
    rel: related
created: 2026-01-15          # OPTIONAL - YYYY-MM-DD
updated: 2026-01-15          # OPTIONAL - YYYY-MM-DD; drives recency selection
confidence: medium           # OPTIONAL - low, medium, high (default medium)
---

Body text in standard Markdown.

Use [[wikilinks]] to mention other notes by id.
` + "```" + `

## Rules

1. Front matter sits between ` + "`---`" + ` fences at the very top of the file.
   A note without front matter is valid but cannot be linked to.
2. ` + "`id`" + ` is the stable handle other notes link to. Never change it after
   creation; links and backlinks key on it.
3. ` + "`links`" + ` entries name a target id in ` + "`to`" + ` and an optional relation in
   ` + "`rel`" + ` (related, parent, depends-on, ...). A bare string is also accepted
   as a target.
4. ` + "`updated`" + ` should be bumped on every meaningful edit. Notes without it
   never appear in recency-based context packs.
5. File paths end with ` + "`.md`" + ` and use forward slashes. Notes live in a
   folder per type: topics/, orgs/, people/, projects/, decisions/, logs/.
6. Encoding is UTF-8.

## Sections the packer understands

- ` + "`## Summary`" + ` - a short abstract. Context packs quote it when present.
- ` + "`## Key Points`" + ` - bullet list of essentials. Also quoted by packs.

Keep both near the top of the body; the rest of the note is free-form.

## Assets

Binary files live in the flat ` + "`assets/`" + ` directory under the vault root.
Reference them with an absolute path: ` + "`![description](/assets/file.png)`" + `.

## Example

` + "```" + `markdown
---
id: topic.vector_search
type: topic
title: Vector Search
tags: [retrieval, embeddings]
links:
  - to: topic.rag
    rel: related
created: 2026-08-01
updated: 2026-08-20
confidence: high
---

# Vector Search

## Summary
Approximate nearest neighbour search over embedding vectors.

## Key Points
- HNSW graphs trade memory for recall.
- Quantisation cuts index size at a small recall cost.

See [[topic.rag]] for how retrieval feeds generation.
` + "```" + `
`
