package service

import (
	"context"
	"errors"
	"testing"

	"paperbuilder/internal/confirm"
	"paperbuilder/internal/idgen"
	"paperbuilder/internal/model"
	"paperbuilder/internal/persist"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStorage accepts loads but rejects every save
type failingStorage struct {
	persist.MemoryStorage
}

func (f *failingStorage) Save(ctx context.Context, data []byte) error {
	return errors.New("disk full")
}

type recordingBroadcaster struct {
	ops []string
}

func (b *recordingBroadcaster) BroadcastPaper(msgType string, payload interface{}) {
	b.ops = append(b.ops, payload.(PaperUpdate).Op)
}

func newTestEditor(t *testing.T) (*Editor, *persist.MemoryStorage) {
	t.Helper()
	storage := persist.NewMemoryStorage()
	e := NewEditor(storage, &idgen.Sequence{Prefix: "id"})
	require.NoError(t, e.Load(context.Background()))
	return e, storage
}

func mcq(choices ...string) model.Question {
	return model.Question{Type: model.QuestionTypeMCQ, Content: &model.MCQContent{Choices: choices}}
}

// buildPaper creates two sections with groups and questions
func buildPaper(t *testing.T, e *Editor) model.Document {
	t.Helper()
	ctx := context.Background()

	s1, err := e.AddSection(ctx, "Section A", "algebra basics")
	require.NoError(t, err)
	g1, err := e.AddGroup(ctx, s1.ID, model.QuestionTypeMCQ, "Pick one", "")
	require.NoError(t, err)
	_, err = e.AddQuestion(ctx, s1.ID, g1.ID, mcq("A", "B"))
	require.NoError(t, err)
	_, err = e.AddQuestion(ctx, s1.ID, g1.ID, mcq("C", "D", "E"))
	require.NoError(t, err)
	g2, err := e.AddGroup(ctx, s1.ID, model.QuestionTypeConditional, "Answer any one", model.LogicOr)
	require.NoError(t, err)
	_, err = e.AddQuestion(ctx, s1.ID, g2.ID, model.Question{
		Type:    model.QuestionTypeConditional,
		Content: &model.ConditionalContent{Questions: []string{"x", "y"}, Logic: model.LogicOr},
	})
	require.NoError(t, err)

	s2, err := e.AddSection(ctx, "Literature", "")
	require.NoError(t, err)
	g3, err := e.AddGroup(ctx, s2.ID, model.QuestionTypeFillInBlanks, "vocabulary", "")
	require.NoError(t, err)
	_, err = e.AddQuestion(ctx, s2.ID, g3.ID, model.Question{
		Type:    model.QuestionTypeFillInBlanks,
		Content: &model.FillInBlanksContent{Question: "The ___ sat on the mat"},
	})
	require.NoError(t, err)

	return e.Document()
}

func assertUniqueIDs(t *testing.T, doc model.Document) {
	t.Helper()
	seen := make(map[string]bool)
	for _, id := range doc.IDs() {
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestEditor_AddEditDeleteScenario(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEditor(t)

	s, err := e.AddSection(ctx, "Quiz 1", "")
	require.NoError(t, err)
	g, err := e.AddGroup(ctx, s.ID, model.QuestionTypeMCQ, "Pick one", "")
	require.NoError(t, err)
	q, err := e.AddQuestion(ctx, s.ID, g.ID, model.Question{
		Type:    model.QuestionTypeMCQ,
		Content: &model.MCQContent{Choices: []string{"A", "B"}, CorrectAnswer: 0},
	})
	require.NoError(t, err)

	doc := e.Document()
	require.Len(t, doc, 1)
	require.Len(t, doc[0].Groups, 1)
	require.Len(t, doc[0].Groups[0].Questions, 1)
	assert.Equal(t, 1, doc.QuestionNumber(q.ID))

	require.NoError(t, e.DeleteQuestion(ctx, s.ID, g.ID, q.ID))
	doc = e.Document()
	require.Len(t, doc[0].Groups, 1, "emptied group must be kept")
	assert.Empty(t, doc[0].Groups[0].Questions)
}

func TestEditor_SectionTitleRules(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEditor(t)

	_, err := e.AddSection(ctx, "   ", "x")
	assert.ErrorIs(t, err, model.ErrEmptyTitle)

	s, err := e.AddSection(ctx, "  Part A  ", "")
	require.NoError(t, err)
	assert.Equal(t, "Part A", s.Title)

	assert.ErrorIs(t, e.EditSection(ctx, s.ID, "", "new"), model.ErrEmptyTitle)

	require.NoError(t, e.RenameSection(ctx, s.ID, "  "))
	assert.Equal(t, "Part A", e.Document()[0].Title)

	require.NoError(t, e.RenameSection(ctx, s.ID, "Part One"))
	assert.Equal(t, "Part One", e.Document()[0].Title)
}

func TestEditor_EditSectionKeepsGroups(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEditor(t)
	doc := buildPaper(t, e)

	require.NoError(t, e.EditSection(ctx, doc[0].ID, "Algebra", "new instruction"))
	after := e.Document()
	assert.Equal(t, "Algebra", after[0].Title)
	assert.Equal(t, "new instruction", after[0].Instruction)
	if diff := cmp.Diff(doc[0].Groups, after[0].Groups); diff != "" {
		t.Errorf("groups changed (-want +got):\n%s", diff)
	}
}

func TestEditor_UnknownIDsReturnNotFound(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEditor(t)
	doc := buildPaper(t, e)
	s, g := doc[0], doc[0].Groups[0]

	errs := []error{
		e.EditSection(ctx, "nope", "t", ""),
		e.RenameSection(ctx, "nope", "t"),
		e.DeleteSection(ctx, "nope"),
		e.EditGroup(ctx, s.ID, "nope", model.QuestionTypeMCQ, "", ""),
		e.DeleteGroup(ctx, "nope", g.ID),
		e.DeleteGroup(ctx, s.ID, "nope"),
		e.EditQuestion(ctx, s.ID, g.ID, "nope", mcq("a", "b")),
		e.DeleteQuestion(ctx, s.ID, g.ID, "nope"),
	}
	_, err := e.DuplicateSection(ctx, "nope")
	errs = append(errs, err)
	_, err = e.AddGroup(ctx, "nope", model.QuestionTypeMCQ, "", "")
	errs = append(errs, err)
	_, err = e.AddQuestion(ctx, s.ID, "nope", mcq("a", "b"))
	errs = append(errs, err)

	for i, err := range errs {
		assert.ErrorIs(t, err, model.ErrNotFound, "operation %d", i)
	}
	if diff := cmp.Diff(doc, e.Document()); diff != "" {
		t.Errorf("paper changed by failed operations (-want +got):\n%s", diff)
	}
}

func TestEditor_CascadeDelete(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEditor(t)
	doc := buildPaper(t, e)

	require.NoError(t, e.DeleteSection(ctx, doc[0].ID))
	after := e.Document()
	require.Len(t, after, 1)
	if diff := cmp.Diff(doc[1], after[0]); diff != "" {
		t.Errorf("other section changed (-want +got):\n%s", diff)
	}

	remaining := make(map[string]bool)
	for _, id := range after.IDs() {
		remaining[id] = true
	}
	for _, g := range doc[0].Groups {
		assert.False(t, remaining[g.ID])
		for _, q := range g.Questions {
			assert.False(t, remaining[q.ID])
		}
	}
}

func TestEditor_DeleteGroupOnlyTouchesItsSection(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEditor(t)
	doc := buildPaper(t, e)

	require.NoError(t, e.DeleteGroup(ctx, doc[0].ID, doc[0].Groups[0].ID))
	after := e.Document()
	require.Len(t, after[0].Groups, 1)
	assert.Equal(t, doc[0].Groups[1].ID, after[0].Groups[0].ID)
	assert.Empty(t, cmp.Diff(doc[1], after[1]))
}

func TestEditor_DuplicateSectionIsDeep(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEditor(t)
	doc := buildPaper(t, e)
	orig := doc[0]

	dup, err := e.DuplicateSection(ctx, orig.ID)
	require.NoError(t, err)

	after := e.Document()
	require.Len(t, after, 3)
	assert.Equal(t, dup.ID, after[2].ID, "clone is appended")
	assert.Equal(t, "Section A (copy)", after[2].Title)
	assertUniqueIDs(t, after)

	origIDs := make(map[string]bool)
	origDoc := model.Document{orig}
	for _, id := range origDoc.IDs() {
		origIDs[id] = true
	}
	dupDoc := model.Document{after[2]}
	for _, id := range dupDoc.IDs() {
		assert.False(t, origIDs[id], "id %s shared with original", id)
	}

	// value-equal apart from ids and the title suffix
	stripIDs := cmp.FilterPath(func(p cmp.Path) bool {
		return p.Last().String() == ".ID"
	}, cmp.Ignore())
	clone := after[2]
	clone.Title = orig.Title
	if diff := cmp.Diff(orig, clone, stripIDs); diff != "" {
		t.Errorf("duplicate differs from original (-want +got):\n%s", diff)
	}

	// editing the copy leaves the original alone
	require.NoError(t, e.EditQuestion(ctx, dup.ID, dup.Groups[0].ID, dup.Groups[0].Questions[0].ID, mcq("X", "Y")))
	assert.Empty(t, cmp.Diff(orig, e.Document()[0]))
}

func TestEditor_ReorderSections(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEditor(t)
	buildPaper(t, e)
	s3, err := e.AddSection(ctx, "Section C", "")
	require.NoError(t, err)
	doc := e.Document()

	order := []string{s3.ID, doc[0].ID, doc[1].ID}
	require.NoError(t, e.ReorderSections(ctx, order))

	after := e.Document()
	var got []string
	for _, s := range after {
		got = append(got, s.ID)
	}
	assert.Equal(t, order, got)
	assert.Empty(t, cmp.Diff(doc[0], after[1]))
}

func TestEditor_ReorderRejectsNonPermutation(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEditor(t)
	doc := buildPaper(t, e)

	cases := map[string][]string{
		"too short": {doc[0].ID},
		"duplicate": {doc[0].ID, doc[0].ID},
		"unknown":   {doc[0].ID, "ghost"},
	}
	for name, order := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, e.ReorderSections(ctx, order), model.ErrInvalidReorder)
			assert.Empty(t, cmp.Diff(doc, e.Document()))
		})
	}
}

func TestEditor_MoveSection(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEditor(t)
	buildPaper(t, e)
	_, err := e.AddSection(ctx, "Section C", "")
	require.NoError(t, err)
	doc := e.Document()

	require.NoError(t, e.MoveSection(ctx, 0, 2))
	after := e.Document()
	assert.Equal(t, []string{doc[1].ID, doc[2].ID, doc[0].ID}, []string{after[0].ID, after[1].ID, after[2].ID})

	require.NoError(t, e.MoveSection(ctx, 2, 0))
	assert.Empty(t, cmp.Diff(doc, e.Document()))

	assert.ErrorIs(t, e.MoveSection(ctx, 0, 3), model.ErrInvalidReorder)
	assert.ErrorIs(t, e.MoveSection(ctx, -1, 0), model.ErrInvalidReorder)
}

func TestEditor_GroupLogic(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEditor(t)
	s, err := e.AddSection(ctx, "S", "")
	require.NoError(t, err)

	g, err := e.AddGroup(ctx, s.ID, model.QuestionTypeMCQ, "", model.LogicAnd)
	require.NoError(t, err)
	assert.Empty(t, g.Logic, "logic is dropped for non-conditional groups")

	g, err = e.AddGroup(ctx, s.ID, model.QuestionTypeConditional, "", "")
	require.NoError(t, err)
	assert.Equal(t, model.LogicOr, g.Logic)

	require.NoError(t, e.EditGroup(ctx, s.ID, g.ID, model.QuestionTypeConditional, "Answer all", model.LogicAnd))
	assert.Equal(t, model.LogicAnd, e.Document()[0].Groups[1].Logic)

	require.NoError(t, e.EditGroup(ctx, s.ID, g.ID, model.QuestionTypeShort, "Answer briefly", model.LogicAnd))
	assert.Empty(t, e.Document()[0].Groups[1].Logic)

	_, err = e.AddGroup(ctx, s.ID, model.QuestionTypeConditional, "", "XOR")
	assert.ErrorIs(t, err, model.ErrInvalidLogic)
	_, err = e.AddGroup(ctx, s.ID, "essay", "", "")
	assert.ErrorIs(t, err, model.ErrInvalidType)
}

func TestEditor_QuestionContentIsValidated(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEditor(t)
	doc := buildPaper(t, e)
	s, g := doc[0], doc[0].Groups[0]

	_, err := e.AddQuestion(ctx, s.ID, g.ID, mcq("only one"))
	assert.ErrorIs(t, err, model.ErrInvalidContent)

	err = e.EditQuestion(ctx, s.ID, g.ID, g.Questions[0].ID, model.Question{Type: model.QuestionTypeTrueFalse, Content: model.NewTrueFalse(5)})
	assert.ErrorIs(t, err, model.ErrInvalidContent)
	assert.Empty(t, cmp.Diff(doc, e.Document()))
}

func TestEditor_EditQuestionKeepsID(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEditor(t)
	doc := buildPaper(t, e)
	s, g := doc[0], doc[0].Groups[0]
	qid := g.Questions[1].ID

	require.NoError(t, e.EditQuestion(ctx, s.ID, g.ID, qid, model.Question{ID: "ignored", Type: model.QuestionTypeTrueFalse, Content: model.NewTrueFalse(1)}))
	q := e.Document()[0].Groups[0].Questions[1]
	assert.Equal(t, qid, q.ID)
	assert.Equal(t, model.QuestionTypeTrueFalse, q.Type)
	assert.Equal(t, 2, e.Document().QuestionNumber(qid))
}

func TestEditor_IDsStayUnique(t *testing.T) {
	ctx := context.Background()
	e := NewEditor(persist.NewMemoryStorage(), idgen.UUIDv7{})
	doc := buildPaper(t, e)
	assertUniqueIDs(t, doc)

	for i := 0; i < 3; i++ {
		_, err := e.DuplicateSection(ctx, doc[0].ID)
		require.NoError(t, err)
		assertUniqueIDs(t, e.Document())
	}
	require.NoError(t, e.DeleteSection(ctx, doc[1].ID))
	assertUniqueIDs(t, e.Document())
}

func TestEditor_AutosavesEveryMutation(t *testing.T) {
	ctx := context.Background()
	e, storage := newTestEditor(t)
	doc := buildPaper(t, e)

	data, err := storage.Load(ctx)
	require.NoError(t, err)
	saved, err := persist.Decode(data)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(doc, saved))

	// a fresh editor restores the same paper
	restored := NewEditor(storage, &idgen.Sequence{Prefix: "other"})
	require.NoError(t, restored.Load(ctx))
	assert.Empty(t, cmp.Diff(doc, restored.Document()))
}

func TestEditor_LoadFallsBackToEmpty(t *testing.T) {
	ctx := context.Background()
	storage := persist.NewMemoryStorage()
	require.NoError(t, storage.Save(ctx, []byte("not json")))

	e := NewEditor(storage, &idgen.Sequence{})
	require.NoError(t, e.Load(ctx))
	assert.NotNil(t, e.Document())
	assert.Empty(t, e.Document())
}

func TestEditor_SaveFailureKeepsMutation(t *testing.T) {
	ctx := context.Background()
	e := NewEditor(&failingStorage{}, &idgen.Sequence{Prefix: "id"})

	s, err := e.AddSection(ctx, "Kept", "")
	assert.ErrorIs(t, err, ErrSaveFailed)
	require.NotNil(t, s)

	doc := e.Document()
	require.Len(t, doc, 1)
	assert.Equal(t, s.ID, doc[0].ID)

	assert.ErrorIs(t, e.RenameSection(ctx, s.ID, "Still kept"), ErrSaveFailed)
	assert.Equal(t, "Still kept", e.Document()[0].Title)
}

func TestEditor_ExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEditor(t)
	doc := buildPaper(t, e)

	data, err := e.ExportJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  {", "export is pretty-printed")

	other, _ := newTestEditor(t)
	require.NoError(t, other.ImportJSON(ctx, data))
	if diff := cmp.Diff(doc, other.Document()); diff != "" {
		t.Errorf("import(export(D)) != D (-want +got):\n%s", diff)
	}
}

func TestEditor_MalformedImportLeavesPaperUnchanged(t *testing.T) {
	ctx := context.Background()
	e, storage := newTestEditor(t)
	doc := buildPaper(t, e)
	savedBefore, err := storage.Load(ctx)
	require.NoError(t, err)

	err = e.ImportJSON(ctx, []byte(`{"not":"an array"}`))
	assert.ErrorIs(t, err, persist.ErrInvalidFormat)

	err = e.ImportJSON(ctx, []byte(`[{"id":`))
	assert.ErrorIs(t, err, persist.ErrParseFailed)

	err = e.ImportJSON(ctx, []byte(`[{"id":"s","title":"","groups":[]}]`))
	var verr *persist.ValidationError
	assert.ErrorAs(t, err, &verr)

	assert.Empty(t, cmp.Diff(doc, e.Document()))
	savedAfter, err := storage.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, savedBefore, savedAfter)
}

func TestEditor_LenientImportOnlyChecksShape(t *testing.T) {
	ctx := context.Background()
	e := NewEditor(persist.NewMemoryStorage(), &idgen.Sequence{}, WithStrictImport(false))

	require.NoError(t, e.ImportJSON(ctx, []byte(`[{"id":"dup","title":"","groups":[]},{"id":"dup","title":"x","groups":[]}]`)))
	assert.Len(t, e.Document(), 2)
}

func TestEditor_BroadcastsAfterMutation(t *testing.T) {
	ctx := context.Background()
	b := &recordingBroadcaster{}
	e := NewEditor(persist.NewMemoryStorage(), &idgen.Sequence{}, WithBroadcaster(b))

	s, err := e.AddSection(ctx, "S", "")
	require.NoError(t, err)
	require.NoError(t, e.RenameSection(ctx, s.ID, "T"))
	_ = e.DeleteSection(ctx, "missing")

	assert.Equal(t, []string{"add_section", "rename_section"}, b.ops)
}

func TestEditor_FilterDoesNotMutate(t *testing.T) {
	e, _ := newTestEditor(t)
	doc := buildPaper(t, e)

	view := e.Filter("vocabulary")
	require.Len(t, view, 1)
	assert.Equal(t, "Literature", view[0].Title)
	assert.Empty(t, cmp.Diff(doc, e.Filter("")))
	assert.Empty(t, cmp.Diff(doc, e.Document()))
}

func TestEditor_SatisfiesGateDeleter(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEditor(t)
	doc := buildPaper(t, e)

	gate := confirm.NewGate(confirm.NewMemoryStore(), e, nil)
	_, err := gate.RequestConfirm(ctx, "author", confirm.Action{Kind: confirm.KindDeleteSection, SectionID: doc[0].ID})
	require.NoError(t, err)
	assert.Len(t, e.Document(), 2)

	_, err = gate.Confirm(ctx, "author")
	require.NoError(t, err)
	assert.Len(t, e.Document(), 1)
}
