package model

import (
	"encoding/json"
	"fmt"
)

// QuestionType defines the kind of a question or question group
type QuestionType string

const (
	QuestionTypeMCQ          QuestionType = "mcq"
	QuestionTypeTrueFalse    QuestionType = "true-false"
	QuestionTypeFillInBlanks QuestionType = "fill-in-the-blanks"
	QuestionTypeShort        QuestionType = "short-question"
	QuestionTypeLong         QuestionType = "long-question"
	QuestionTypeConditional  QuestionType = "conditional"
	QuestionTypeParagraph    QuestionType = "para-question"
)

// QuestionTypes lists every supported type in editor menu order
var QuestionTypes = []QuestionType{
	QuestionTypeMCQ,
	QuestionTypeTrueFalse,
	QuestionTypeFillInBlanks,
	QuestionTypeShort,
	QuestionTypeLong,
	QuestionTypeConditional,
	QuestionTypeParagraph,
}

var typeLabels = map[QuestionType]string{
	QuestionTypeMCQ:          "Multiple Choice Questions",
	QuestionTypeTrueFalse:    "True / False",
	QuestionTypeFillInBlanks: "Fill in the Blanks",
	QuestionTypeShort:        "Short Questions",
	QuestionTypeLong:         "Long Questions",
	QuestionTypeConditional:  "Conditional Questions",
	QuestionTypeParagraph:    "Paragraph Based Questions",
}

// Valid reports whether t is one of the supported question types
func (t QuestionType) Valid() bool {
	_, ok := typeLabels[t]
	return ok
}

// Label returns the display label for a group of this type
func (t QuestionType) Label() string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

// Logic states how the alternatives of a conditional question are answered
type Logic string

const (
	LogicAnd Logic = "AND" // answer all
	LogicOr  Logic = "OR"  // answer any one
)

// Valid reports whether l is AND or OR
func (l Logic) Valid() bool {
	return l == LogicAnd || l == LogicOr
}

// Question is a single assessment item. Content always matches Type.
type Question struct {
	ID      string       `json:"id"`
	Type    QuestionType `json:"type"`
	Content Content      `json:"content"`
}

type questionWire struct {
	ID      string          `json:"id"`
	Type    QuestionType    `json:"type"`
	Content json.RawMessage `json:"content"`
}

// MarshalJSON writes the question with its type-specific content object
func (q Question) MarshalJSON() ([]byte, error) {
	content := q.Content
	if content == nil {
		c, err := NewContent(q.Type)
		if err != nil {
			return nil, err
		}
		content = c
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(questionWire{ID: q.ID, Type: q.Type, Content: raw})
}

// UnmarshalJSON decodes content into the variant selected by type
func (q *Question) UnmarshalJSON(data []byte) error {
	var w questionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	content, err := NewContent(w.Type)
	if err != nil {
		return err
	}
	if len(w.Content) > 0 && string(w.Content) != "null" {
		if err := json.Unmarshal(w.Content, content); err != nil {
			return fmt.Errorf("question %s: decode %s content: %w", w.ID, w.Type, err)
		}
	}
	q.ID = w.ID
	q.Type = w.Type
	q.Content = content
	return nil
}

// Validate checks the type tag and the content shape
func (q *Question) Validate() error {
	if !q.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, q.Type)
	}
	if q.Content == nil {
		return fmt.Errorf("%w: missing content", ErrInvalidContent)
	}
	if q.Content.Kind() != q.Type {
		return fmt.Errorf("%w: %s content on %s question", ErrInvalidContent, q.Content.Kind(), q.Type)
	}
	return q.Content.Validate()
}

// Clone returns a deep copy of the question
func (q Question) Clone() Question {
	if q.Content != nil {
		q.Content = q.Content.Clone()
	}
	return q
}
