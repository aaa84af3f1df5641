package search

import (
	"testing"

	"paperbuilder/internal/model"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func examplePaper() model.Document {
	return model.Document{
		{
			ID:          "A",
			Title:       "Mathematics",
			Instruction: "algebra basics",
			Groups: []model.QuestionGroup{
				{
					ID:   "gA",
					Type: model.QuestionTypeMCQ,
					Questions: []model.Question{
						{ID: "q1", Type: model.QuestionTypeMCQ, Content: &model.MCQContent{Choices: []string{"1", "2"}}},
					},
				},
			},
		},
		{
			ID:    "B",
			Title: "Literature",
			Groups: []model.QuestionGroup{
				{
					ID:          "gB1",
					Type:        model.QuestionTypeFillInBlanks,
					Instruction: "vocabulary",
					Questions: []model.Question{
						{ID: "q2", Type: model.QuestionTypeFillInBlanks, Content: &model.FillInBlanksContent{Question: "A ___ is a word"}},
					},
				},
				{
					ID:          "gB2",
					Type:        model.QuestionTypeLong,
					Instruction: "Essay writing",
					Questions:   []model.Question{},
				},
			},
		},
	}
}

func sectionIDs(doc model.Document) []string {
	var ids []string
	for _, s := range doc {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestFilter_EmptyQueryIsIdentity(t *testing.T) {
	doc := examplePaper()
	if diff := cmp.Diff(doc, Filter(doc, "")); diff != "" {
		t.Errorf("Filter(\"\") changed the paper (-want +got):\n%s", diff)
	}
}

func TestFilter_WhitespaceIsLiteral(t *testing.T) {
	doc := examplePaper()

	assert.Equal(t, []string{"A", "B"}, sectionIDs(Filter(doc, " ")), "single spaces occur in both sections")
	assert.Empty(t, Filter(doc, "   "))
	assert.Empty(t, Filter(doc, "basics "))
	assert.Equal(t, []string{"A"}, sectionIDs(Filter(doc, " basics")))
}

func TestFilter_SectionInstructionMatch(t *testing.T) {
	view := Filter(examplePaper(), "algebra")
	assert.Equal(t, []string{"A"}, sectionIDs(view))
}

func TestFilter_GroupInstructionMatch(t *testing.T) {
	view := Filter(examplePaper(), "vocabulary")
	require.Equal(t, []string{"B"}, sectionIDs(view))
	require.Len(t, view[0].Groups, 1)
	assert.Equal(t, "gB1", view[0].Groups[0].ID)
	assert.Len(t, view[0].Groups[0].Questions, 1, "questions are never filtered individually")
}

func TestFilter_GroupTypeMatchIsCaseInsensitive(t *testing.T) {
	view := Filter(examplePaper(), "MCQ")
	require.Equal(t, []string{"A"}, sectionIDs(view))
	assert.Equal(t, "gA", view[0].Groups[0].ID)
}

func TestFilter_SectionTitleMatchKeepsOnlyMatchingGroups(t *testing.T) {
	view := Filter(examplePaper(), "literature")
	require.Equal(t, []string{"B"}, sectionIDs(view))
	assert.Empty(t, view[0].Groups)
}

func TestFilter_NoMatch(t *testing.T) {
	view := Filter(examplePaper(), "chemistry")
	assert.NotNil(t, view)
	assert.Empty(t, view)
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	doc := examplePaper()
	before := doc.Clone()

	view := Filter(doc, "essay")
	require.Len(t, view, 1)
	view[0].Title = "changed"
	view[0].Groups[0].Instruction = "changed"

	if diff := cmp.Diff(before, doc); diff != "" {
		t.Errorf("input paper was mutated (-want +got):\n%s", diff)
	}
}
