package persist

import (
	"context"
	"path/filepath"
	"testing"

	"paperbuilder/internal/model"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paper() model.Document {
	return model.Document{
		{
			ID:          "s1",
			Title:       "Reading",
			Instruction: "Read carefully",
			Groups: []model.QuestionGroup{
				{
					ID:   "g1",
					Type: model.QuestionTypeParagraph,
					Questions: []model.Question{
						{ID: "q1", Type: model.QuestionTypeParagraph, Content: &model.ParagraphContent{Paragraph: "Rivers flow.", Questions: []string{"Where?", "Why?"}}},
					},
				},
			},
		},
	}
}

func TestEncode_NilIsEmptyArray(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	data, err = EncodePretty(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	for name, encode := range map[string]func(model.Document) ([]byte, error){
		"compact": Encode,
		"pretty":  EncodePretty,
	} {
		t.Run(name, func(t *testing.T) {
			data, err := encode(paper())
			require.NoError(t, err)
			doc, err := DecodeStrict(data)
			require.NoError(t, err)
			if diff := cmp.Diff(paper(), doc); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_ShapeErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"object", `{"not":"an array"}`, ErrInvalidFormat},
		{"string", `"paper"`, ErrInvalidFormat},
		{"null", `null`, ErrInvalidFormat},
		{"array of numbers", `[1,2]`, ErrInvalidFormat},
		{"truncated", `[{"id":"s1"`, ErrParseFailed},
		{"empty", ``, ErrParseFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDecode_EmptyArray(t *testing.T) {
	doc, err := Decode([]byte(" [] "))
	require.NoError(t, err)
	assert.NotNil(t, doc)
	assert.Empty(t, doc)
}

func TestDecode_NullListsBecomeEmpty(t *testing.T) {
	input := `[
	  {"id":"s1","title":"A","instruction":""},
	  {"id":"s2","title":"B","instruction":"","groups":[
	    {"id":"g1","type":"mcq","instruction":"","questions":null},
	    {"id":"g2","type":"short-question","instruction":"","questions":[
	      {"id":"q1","type":"short-question","content":{"question":"Why?","subQuestions":null}}
	    ]}
	  ]}
	]`
	doc, err := DecodeStrict([]byte(input))
	require.NoError(t, err)

	assert.NotNil(t, doc[0].Groups)
	assert.NotNil(t, doc[1].Groups[0].Questions)
	short := doc[1].Groups[1].Questions[0].Content.(*model.ShortContent)
	assert.NotNil(t, short.SubQuestions)

	data, err := Encode(doc)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "null")
	assert.Contains(t, string(data), `"groups":[]`)
	assert.Contains(t, string(data), `"questions":[]`)
	assert.Contains(t, string(data), `"subQuestions":[]`)
}

func TestDecodeStrict_CollectsProblems(t *testing.T) {
	input := `[
	  {"id":"s1","title":"A","instruction":"","groups":[
	    {"id":"g1","type":"conditional","instruction":"","questions":[
	      {"id":"s1","type":"mcq","content":{"choices":["only"],"correctAnswer":0}}
	    ]}
	  ]}
	]`
	_, err := DecodeStrict([]byte(input))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 3)
	assert.ErrorIs(t, err, model.ErrInvalidLogic)
	assert.ErrorIs(t, err, model.ErrInvalidContent)
}

func TestFileStorage(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "paper.json")
	s := NewFileStorage(path)

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, ErrNoData)

	require.NoError(t, s.Save(ctx, []byte(`[]`)))
	require.NoError(t, s.Save(ctx, []byte(`[{"id":"s1"}]`)))

	data, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"s1"}]`, string(data))

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".paper-*"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temp files are cleaned up")
}

func TestMemoryStorage_CopiesData(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	buf := []byte(`[]`)
	require.NoError(t, s.Save(ctx, buf))
	buf[0] = '{'

	data, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}
