package model

import (
	"fmt"
	"strings"
)

// QuestionGroup is a cluster of questions sharing a type and an instruction.
// Logic is only set when Type is conditional.
type QuestionGroup struct {
	ID          string       `json:"id"`
	Type        QuestionType `json:"type"`
	Instruction string       `json:"instruction"`
	Logic       Logic        `json:"logic,omitempty"`
	Questions   []Question   `json:"questions"`
}

// Label returns the display heading for the group
func (g *QuestionGroup) Label() string {
	return g.Type.Label()
}

// QuestionCount returns the number of questions in the group
func (g *QuestionGroup) QuestionCount() int {
	return len(g.Questions)
}

// FindQuestion returns the question with the given id, or nil
func (g *QuestionGroup) FindQuestion(id string) *Question {
	for i := range g.Questions {
		if g.Questions[i].ID == id {
			return &g.Questions[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the group, ids included
func (g QuestionGroup) Clone() QuestionGroup {
	qs := make([]Question, len(g.Questions))
	for i, q := range g.Questions {
		qs[i] = q.Clone()
	}
	g.Questions = qs
	return g
}

// Section is a titled block of the paper
type Section struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Instruction string          `json:"instruction"`
	Groups      []QuestionGroup `json:"groups"`
}

// QuestionCount is the in-order sum of the groups' question counts
func (s *Section) QuestionCount() int {
	n := 0
	for i := range s.Groups {
		n += s.Groups[i].QuestionCount()
	}
	return n
}

// FindGroup returns the group with the given id, or nil
func (s *Section) FindGroup(id string) *QuestionGroup {
	for i := range s.Groups {
		if s.Groups[i].ID == id {
			return &s.Groups[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the section, ids included
func (s Section) Clone() Section {
	groups := make([]QuestionGroup, len(s.Groups))
	for i, g := range s.Groups {
		groups[i] = g.Clone()
	}
	s.Groups = groups
	return s
}

// Document is an ordered sequence of sections. Its JSON form is a bare array.
type Document []Section

// Clone returns a deep copy of the document. A nil document clones to an empty one.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for i, s := range d {
		out[i] = s.Clone()
	}
	return out
}

// Normalize replaces absent lists (JSON null or a missing field) with empty
// ones in place, so the document always encodes with arrays.
func (d Document) Normalize() Document {
	if d == nil {
		return Document{}
	}
	for si := range d {
		s := &d[si]
		if s.Groups == nil {
			s.Groups = []QuestionGroup{}
		}
		for gi := range s.Groups {
			g := &s.Groups[gi]
			if g.Questions == nil {
				g.Questions = []Question{}
			}
			for qi := range g.Questions {
				normalizeContent(g.Questions[qi].Content)
			}
		}
	}
	return d
}

func normalizeContent(c Content) {
	switch c := c.(type) {
	case *MCQContent:
		c.Choices = emptyIfNil(c.Choices)
	case *TrueFalseContent:
		c.Choices = emptyIfNil(c.Choices)
	case *ShortContent:
		c.SubQuestions = emptyIfNil(c.SubQuestions)
	case *LongContent:
		c.SubQuestions = emptyIfNil(c.SubQuestions)
	case *ConditionalContent:
		c.Questions = emptyIfNil(c.Questions)
	case *ParagraphContent:
		c.Questions = emptyIfNil(c.Questions)
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// QuestionCount returns the number of questions in the whole document
func (d Document) QuestionCount() int {
	n := 0
	for i := range d {
		n += d[i].QuestionCount()
	}
	return n
}

// FindSection returns the section with the given id, or nil
func (d Document) FindSection(id string) *Section {
	for i := range d {
		if d[i].ID == id {
			return &d[i]
		}
	}
	return nil
}

// SectionIndex returns the position of the section, or -1
func (d Document) SectionIndex(id string) int {
	for i := range d {
		if d[i].ID == id {
			return i
		}
	}
	return -1
}

// IDs returns every section, group and question id in document order
func (d Document) IDs() []string {
	var ids []string
	for _, s := range d {
		ids = append(ids, s.ID)
		for _, g := range s.Groups {
			ids = append(ids, g.ID)
			for _, q := range g.Questions {
				ids = append(ids, q.ID)
			}
		}
	}
	return ids
}

// Numbering maps question ids to their 1-based display numbers. Numbers are
// assigned by a depth-first walk of sections, groups and questions.
func (d Document) Numbering() map[string]int {
	numbers := make(map[string]int)
	n := 0
	for _, s := range d {
		for _, g := range s.Groups {
			for _, q := range g.Questions {
				n++
				numbers[q.ID] = n
			}
		}
	}
	return numbers
}

// QuestionNumber returns the display number of a question, or 0 if absent
func (d Document) QuestionNumber(id string) int {
	return d.Numbering()[id]
}

// Validate checks every entity and the global id uniqueness invariant. It
// collects all problems instead of stopping at the first.
func (d Document) Validate() []error {
	var errs []error
	seen := make(map[string]string)
	check := func(id, where string) {
		if strings.TrimSpace(id) == "" {
			errs = append(errs, fmt.Errorf("%s: missing id", where))
			return
		}
		if prev, dup := seen[id]; dup {
			errs = append(errs, fmt.Errorf("%s: duplicate id %q (also used by %s)", where, id, prev))
			return
		}
		seen[id] = where
	}

	for si, s := range d {
		sw := fmt.Sprintf("sections[%d]", si)
		check(s.ID, sw)
		if strings.TrimSpace(s.Title) == "" {
			errs = append(errs, fmt.Errorf("%s: %w", sw, ErrEmptyTitle))
		}
		for gi, g := range s.Groups {
			gw := fmt.Sprintf("%s.groups[%d]", sw, gi)
			check(g.ID, gw)
			if !g.Type.Valid() {
				errs = append(errs, fmt.Errorf("%s: %w: %q", gw, ErrInvalidType, g.Type))
			}
			if g.Type == QuestionTypeConditional && !g.Logic.Valid() {
				errs = append(errs, fmt.Errorf("%s: %w: %q", gw, ErrInvalidLogic, g.Logic))
			}
			if g.Type != QuestionTypeConditional && g.Logic != "" {
				errs = append(errs, fmt.Errorf("%s: logic set on %s group", gw, g.Type))
			}
			for qi := range g.Questions {
				q := &g.Questions[qi]
				qw := fmt.Sprintf("%s.questions[%d]", gw, qi)
				check(q.ID, qw)
				if err := q.Validate(); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", qw, err))
				}
			}
		}
	}
	return errs
}
