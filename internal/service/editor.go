package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"paperbuilder/internal/idgen"
	"paperbuilder/internal/model"
	"paperbuilder/internal/persist"
	"paperbuilder/internal/search"

	"go.uber.org/zap"
)

// ErrSaveFailed marks a mutation that was applied in memory but could not be
// written to storage. The returned entity, if any, is still valid.
var ErrSaveFailed = errors.New("autosave failed")

const copySuffix = " (copy)"

// Editor owns the paper being edited. It is the only mutation surface: every
// operation runs under one lock, applies to a private copy of the document,
// swaps the copy in and autosaves it.
type Editor struct {
	mu  sync.Mutex
	doc model.Document

	ids          idgen.Generator
	storage      persist.Storage
	broadcaster  Broadcaster
	logger       *zap.Logger
	strictImport bool
}

// EditorOption configures an Editor
type EditorOption func(*Editor)

// WithBroadcaster pushes the paper to live preview subscribers after each change
func WithBroadcaster(b Broadcaster) EditorOption {
	return func(e *Editor) { e.broadcaster = b }
}

// WithLogger sets the editor logger
func WithLogger(l *zap.Logger) EditorOption {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithStrictImport toggles entity validation on import (on by default).
// When off, import only checks that the payload is a JSON array.
func WithStrictImport(strict bool) EditorOption {
	return func(e *Editor) { e.strictImport = strict }
}

// NewEditor creates an editor with an empty paper. Call Load to restore the
// autosaved one.
func NewEditor(storage persist.Storage, ids idgen.Generator, opts ...EditorOption) *Editor {
	e := &Editor{
		doc:          model.Document{},
		ids:          ids,
		storage:      storage,
		logger:       zap.NewNop(),
		strictImport: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load restores the autosaved paper. A missing or unparsable payload leaves
// an empty paper; only storage read failures are returned.
func (e *Editor) Load(ctx context.Context) error {
	data, err := e.storage.Load(ctx)
	if errors.Is(err, persist.ErrNoData) {
		e.logger.Info("no saved paper, starting empty")
		e.replace(model.Document{})
		return nil
	}
	if err != nil {
		return fmt.Errorf("load paper: %w", err)
	}

	doc, err := persist.Decode(data)
	if err != nil {
		e.logger.Warn("saved paper is unreadable, starting empty", zap.Error(err))
		doc = model.Document{}
	}
	e.replace(doc)
	e.logger.Info("paper loaded", zap.Int("sections", len(doc)), zap.Int("questions", doc.QuestionCount()))
	return nil
}

func (e *Editor) replace(doc model.Document) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.doc = doc
}

// Document returns a deep copy of the current paper
func (e *Editor) Document() model.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Clone()
}

// Filter returns the view of the paper matching query
func (e *Editor) Filter(query string) model.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return search.Filter(e.doc, query)
}

// mutate applies fn to a copy of the paper and commits the result. Errors
// from fn leave the paper untouched.
func (e *Editor) mutate(ctx context.Context, op string, fn func(doc model.Document) (model.Document, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := fn(e.doc.Clone())
	if err != nil {
		e.logger.Debug("paper operation rejected", zap.String("op", op), zap.Error(err))
		return err
	}
	e.doc = next
	e.logger.Debug("paper updated", zap.String("op", op), zap.Int("sections", len(next)))

	if e.broadcaster != nil {
		e.broadcaster.BroadcastPaper(MsgPaperUpdated, PaperUpdate{Op: op, Paper: next.Clone()})
	}
	return e.saveLocked(ctx, op)
}

func (e *Editor) saveLocked(ctx context.Context, op string) error {
	data, err := persist.Encode(e.doc)
	if err != nil {
		e.logger.Error("autosave encode failed", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	if err := e.storage.Save(ctx, data); err != nil {
		e.logger.Error("autosave write failed", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	return nil
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, model.ErrNotFound)
}

func findGroup(doc model.Document, sectionID, groupID string) (*model.QuestionGroup, error) {
	s := doc.FindSection(sectionID)
	if s == nil {
		return nil, notFound("section", sectionID)
	}
	g := s.FindGroup(groupID)
	if g == nil {
		return nil, notFound("group", groupID)
	}
	return g, nil
}

func cleanTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", model.ErrEmptyTitle
	}
	return title, nil
}

// groupLogic drops logic for non-conditional groups and defaults it to OR
// for conditional ones.
func groupLogic(t model.QuestionType, logic model.Logic) (model.Logic, error) {
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", model.ErrInvalidType, t)
	}
	if t != model.QuestionTypeConditional {
		return "", nil
	}
	if logic == "" {
		return model.LogicOr, nil
	}
	if !logic.Valid() {
		return "", fmt.Errorf("%w: %q", model.ErrInvalidLogic, logic)
	}
	return logic, nil
}

// AddSection appends a new empty section
func (e *Editor) AddSection(ctx context.Context, title, instruction string) (*model.Section, error) {
	title, err := cleanTitle(title)
	if err != nil {
		return nil, err
	}
	section := model.Section{
		ID:          e.ids.NewID(),
		Title:       title,
		Instruction: strings.TrimSpace(instruction),
		Groups:      []model.QuestionGroup{},
	}
	err = e.mutate(ctx, "add_section", func(doc model.Document) (model.Document, error) {
		return append(doc, section), nil
	})
	return committed(&section, err)
}

// EditSection rewrites a section's title and instruction; groups are untouched
func (e *Editor) EditSection(ctx context.Context, id, title, instruction string) error {
	title, err := cleanTitle(title)
	if err != nil {
		return err
	}
	return e.mutate(ctx, "edit_section", func(doc model.Document) (model.Document, error) {
		s := doc.FindSection(id)
		if s == nil {
			return nil, notFound("section", id)
		}
		s.Title = title
		s.Instruction = strings.TrimSpace(instruction)
		return doc, nil
	})
}

// RenameSection is the inline title edit. Blank input keeps the prior title.
func (e *Editor) RenameSection(ctx context.Context, id, newTitle string) error {
	title := strings.TrimSpace(newTitle)
	return e.mutate(ctx, "rename_section", func(doc model.Document) (model.Document, error) {
		s := doc.FindSection(id)
		if s == nil {
			return nil, notFound("section", id)
		}
		if title != "" {
			s.Title = title
		}
		return doc, nil
	})
}

// DeleteSection removes a section with all of its groups and questions
func (e *Editor) DeleteSection(ctx context.Context, id string) error {
	return e.mutate(ctx, "delete_section", func(doc model.Document) (model.Document, error) {
		i := doc.SectionIndex(id)
		if i < 0 {
			return nil, notFound("section", id)
		}
		return append(doc[:i], doc[i+1:]...), nil
	})
}

// DuplicateSection appends a deep copy of a section in which every section,
// group and question gets a fresh id.
func (e *Editor) DuplicateSection(ctx context.Context, id string) (*model.Section, error) {
	var dup model.Section
	err := e.mutate(ctx, "duplicate_section", func(doc model.Document) (model.Document, error) {
		s := doc.FindSection(id)
		if s == nil {
			return nil, notFound("section", id)
		}
		dup = s.Clone()
		dup.ID = e.ids.NewID()
		dup.Title += copySuffix
		for gi := range dup.Groups {
			g := &dup.Groups[gi]
			g.ID = e.ids.NewID()
			for qi := range g.Questions {
				g.Questions[qi].ID = e.ids.NewID()
			}
		}
		return append(doc, dup.Clone()), nil
	})
	return committed(&dup, err)
}

// ReorderSections replaces the section order. order must name every current
// section exactly once.
func (e *Editor) ReorderSections(ctx context.Context, order []string) error {
	return e.mutate(ctx, "reorder_sections", func(doc model.Document) (model.Document, error) {
		if len(order) != len(doc) {
			return nil, fmt.Errorf("%w: got %d ids for %d sections", model.ErrInvalidReorder, len(order), len(doc))
		}
		next := make(model.Document, 0, len(doc))
		used := make(map[string]bool, len(order))
		for _, id := range order {
			if used[id] {
				return nil, fmt.Errorf("%w: %q listed twice", model.ErrInvalidReorder, id)
			}
			s := doc.FindSection(id)
			if s == nil {
				return nil, fmt.Errorf("%w: unknown section %q", model.ErrInvalidReorder, id)
			}
			used[id] = true
			next = append(next, *s)
		}
		return next, nil
	})
}

// MoveSection is the drag and drop primitive: it removes the section at from
// and inserts it at to.
func (e *Editor) MoveSection(ctx context.Context, from, to int) error {
	return e.mutate(ctx, "move_section", func(doc model.Document) (model.Document, error) {
		if from < 0 || from >= len(doc) || to < 0 || to >= len(doc) {
			return nil, fmt.Errorf("%w: move %d -> %d with %d sections", model.ErrInvalidReorder, from, to, len(doc))
		}
		moved := doc[from]
		doc = append(doc[:from], doc[from+1:]...)
		doc = append(doc[:to], append(model.Document{moved}, doc[to:]...)...)
		return doc, nil
	})
}

// AddGroup appends a group to a section. logic is kept only for conditional groups.
func (e *Editor) AddGroup(ctx context.Context, sectionID string, t model.QuestionType, instruction string, logic model.Logic) (*model.QuestionGroup, error) {
	logic, err := groupLogic(t, logic)
	if err != nil {
		return nil, err
	}
	group := model.QuestionGroup{
		ID:          e.ids.NewID(),
		Type:        t,
		Instruction: strings.TrimSpace(instruction),
		Logic:       logic,
		Questions:   []model.Question{},
	}
	err = e.mutate(ctx, "add_group", func(doc model.Document) (model.Document, error) {
		s := doc.FindSection(sectionID)
		if s == nil {
			return nil, notFound("section", sectionID)
		}
		s.Groups = append(s.Groups, group)
		return doc, nil
	})
	return committed(&group, err)
}

// EditGroup rewrites a group's type, instruction and logic; questions are untouched
func (e *Editor) EditGroup(ctx context.Context, sectionID, groupID string, t model.QuestionType, instruction string, logic model.Logic) error {
	logic, err := groupLogic(t, logic)
	if err != nil {
		return err
	}
	return e.mutate(ctx, "edit_group", func(doc model.Document) (model.Document, error) {
		g, err := findGroup(doc, sectionID, groupID)
		if err != nil {
			return nil, err
		}
		g.Type = t
		g.Instruction = strings.TrimSpace(instruction)
		g.Logic = logic
		return doc, nil
	})
}

// DeleteGroup removes a group and its questions from its section
func (e *Editor) DeleteGroup(ctx context.Context, sectionID, groupID string) error {
	return e.mutate(ctx, "delete_group", func(doc model.Document) (model.Document, error) {
		s := doc.FindSection(sectionID)
		if s == nil {
			return nil, notFound("section", sectionID)
		}
		for i := range s.Groups {
			if s.Groups[i].ID == groupID {
				s.Groups = append(s.Groups[:i], s.Groups[i+1:]...)
				return doc, nil
			}
		}
		return nil, notFound("group", groupID)
	})
}

// AddQuestion appends a question to a group. The question's own type selects
// its content shape; any id on q is replaced.
func (e *Editor) AddQuestion(ctx context.Context, sectionID, groupID string, q model.Question) (*model.Question, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	question := q.Clone()
	question.ID = e.ids.NewID()
	err := e.mutate(ctx, "add_question", func(doc model.Document) (model.Document, error) {
		g, err := findGroup(doc, sectionID, groupID)
		if err != nil {
			return nil, err
		}
		g.Questions = append(g.Questions, question.Clone())
		return doc, nil
	})
	return committed(&question, err)
}

// EditQuestion replaces a question's type and content, keeping its id
func (e *Editor) EditQuestion(ctx context.Context, sectionID, groupID, questionID string, q model.Question) error {
	if err := q.Validate(); err != nil {
		return err
	}
	return e.mutate(ctx, "edit_question", func(doc model.Document) (model.Document, error) {
		g, err := findGroup(doc, sectionID, groupID)
		if err != nil {
			return nil, err
		}
		existing := g.FindQuestion(questionID)
		if existing == nil {
			return nil, notFound("question", questionID)
		}
		existing.Type = q.Type
		existing.Content = q.Content.Clone()
		return doc, nil
	})
}

// DeleteQuestion removes one question. An emptied group is kept.
func (e *Editor) DeleteQuestion(ctx context.Context, sectionID, groupID, questionID string) error {
	return e.mutate(ctx, "delete_question", func(doc model.Document) (model.Document, error) {
		g, err := findGroup(doc, sectionID, groupID)
		if err != nil {
			return nil, err
		}
		for i := range g.Questions {
			if g.Questions[i].ID == questionID {
				g.Questions = append(g.Questions[:i], g.Questions[i+1:]...)
				return doc, nil
			}
		}
		return nil, notFound("question", questionID)
	})
}

// ExportJSON returns the paper as indented JSON, ready to be offered as paper.json
func (e *Editor) ExportJSON() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return persist.EncodePretty(e.doc)
}

// ImportJSON replaces the whole paper with data. Anything other than a valid
// array of sections is rejected and the current paper is kept.
func (e *Editor) ImportJSON(ctx context.Context, data []byte) error {
	decode := persist.Decode
	if e.strictImport {
		decode = persist.DecodeStrict
	}
	doc, err := decode(data)
	if err != nil {
		e.logger.Warn("paper import rejected", zap.Error(err))
		return err
	}
	return e.mutate(ctx, "import", func(model.Document) (model.Document, error) {
		return doc, nil
	})
}

// committed returns v alongside err when the mutation itself was applied
func committed[T any](v *T, err error) (*T, error) {
	if err != nil && !errors.Is(err, ErrSaveFailed) {
		return nil, err
	}
	return v, err
}
