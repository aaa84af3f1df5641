// Package search derives filtered views of a paper without touching it.
package search

import (
	"strings"

	"paperbuilder/internal/model"
)

// Filter returns a deep-copied view of doc restricted to the sections and
// groups matching query, case-insensitively.
//
// A group matches when its type or instruction contains the query. A section
// is kept when its title or instruction contains the query or when any of its
// groups match; kept sections carry only their matching groups. Questions are
// never filtered on their own. The query is matched as given, surrounding
// spaces included; only the empty query returns the whole paper.
func Filter(doc model.Document, query string) model.Document {
	q := strings.ToLower(query)
	if q == "" {
		return doc.Clone()
	}

	view := model.Document{}
	for _, s := range doc {
		groups := []model.QuestionGroup{}
		for _, g := range s.Groups {
			if GroupMatches(g, q) {
				groups = append(groups, g.Clone())
			}
		}
		if len(groups) == 0 && !SectionMatches(s, q) {
			continue
		}
		section := s
		section.Groups = groups
		view = append(view, section)
	}
	return view
}

// GroupMatches reports whether the group's type or instruction contains the
// lowercased query q.
func GroupMatches(g model.QuestionGroup, q string) bool {
	return strings.Contains(strings.ToLower(string(g.Type)), q) ||
		strings.Contains(strings.ToLower(g.Instruction), q)
}

// SectionMatches reports whether the section's own title or instruction
// contains the lowercased query q.
func SectionMatches(s model.Section, q string) bool {
	return strings.Contains(strings.ToLower(s.Title), q) ||
		strings.Contains(strings.ToLower(s.Instruction), q)
}
