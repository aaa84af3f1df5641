package model

import (
	"fmt"
	"strings"
)

// Content is the type-specific payload of a question. The set of
// implementations is closed; use a type switch over the pointer types below.
type Content interface {
	Kind() QuestionType
	Validate() error
	Clone() Content
	content()
}

// NewContent returns an empty payload for the given question type
func NewContent(t QuestionType) (Content, error) {
	switch t {
	case QuestionTypeMCQ:
		return &MCQContent{Choices: []string{}}, nil
	case QuestionTypeTrueFalse:
		return &TrueFalseContent{Choices: trueFalseChoices()}, nil
	case QuestionTypeFillInBlanks:
		return &FillInBlanksContent{}, nil
	case QuestionTypeShort:
		return &ShortContent{Written{SubQuestions: []string{}}}, nil
	case QuestionTypeLong:
		return &LongContent{Written{SubQuestions: []string{}}}, nil
	case QuestionTypeConditional:
		return &ConditionalContent{Questions: []string{}, Logic: LogicOr}, nil
	case QuestionTypeParagraph:
		return &ParagraphContent{Questions: []string{}}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidType, t)
}

// MCQContent is a multiple-choice payload
type MCQContent struct {
	Choices       []string `json:"choices"`
	CorrectAnswer int      `json:"correctAnswer"`
}

func (c *MCQContent) Kind() QuestionType { return QuestionTypeMCQ }

func (c *MCQContent) Validate() error {
	if len(c.Choices) < 2 {
		return fmt.Errorf("%w: mcq needs at least 2 choices, got %d", ErrInvalidContent, len(c.Choices))
	}
	if c.CorrectAnswer < 0 || c.CorrectAnswer >= len(c.Choices) {
		return fmt.Errorf("%w: correct answer %d out of range", ErrInvalidContent, c.CorrectAnswer)
	}
	return nil
}

func (c *MCQContent) Clone() Content {
	return &MCQContent{Choices: cloneStrings(c.Choices), CorrectAnswer: c.CorrectAnswer}
}

func (*MCQContent) content() {}

// TrueFalseContent always carries the fixed choices True and False
type TrueFalseContent struct {
	Choices       []string `json:"choices"`
	CorrectAnswer int      `json:"correctAnswer"`
}

func trueFalseChoices() []string { return []string{"True", "False"} }

// NewTrueFalse builds a true/false payload with the given correct index
func NewTrueFalse(correct int) *TrueFalseContent {
	return &TrueFalseContent{Choices: trueFalseChoices(), CorrectAnswer: correct}
}

func (c *TrueFalseContent) Kind() QuestionType { return QuestionTypeTrueFalse }

func (c *TrueFalseContent) Validate() error {
	if len(c.Choices) != 2 || c.Choices[0] != "True" || c.Choices[1] != "False" {
		return fmt.Errorf("%w: true-false choices must be [True False]", ErrInvalidContent)
	}
	if c.CorrectAnswer != 0 && c.CorrectAnswer != 1 {
		return fmt.Errorf("%w: true-false answer must be 0 or 1, got %d", ErrInvalidContent, c.CorrectAnswer)
	}
	return nil
}

func (c *TrueFalseContent) Clone() Content {
	return &TrueFalseContent{Choices: cloneStrings(c.Choices), CorrectAnswer: c.CorrectAnswer}
}

func (*TrueFalseContent) content() {}

// FillInBlanksContent is a single prompt with blanks marked inline
type FillInBlanksContent struct {
	Question string `json:"question"`
}

func (c *FillInBlanksContent) Kind() QuestionType { return QuestionTypeFillInBlanks }

func (c *FillInBlanksContent) Validate() error {
	if strings.TrimSpace(c.Question) == "" {
		return fmt.Errorf("%w: fill-in-the-blanks prompt is empty", ErrInvalidContent)
	}
	return nil
}

func (c *FillInBlanksContent) Clone() Content {
	cp := *c
	return &cp
}

func (*FillInBlanksContent) content() {}

// Written is the shared shape of short and long answer questions
type Written struct {
	Question     string   `json:"question,omitempty"`
	SubQuestions []string `json:"subQuestions"`
}

func (w Written) clone() Written {
	return Written{Question: w.Question, SubQuestions: cloneStrings(w.SubQuestions)}
}

// ShortContent is a short-answer payload
type ShortContent struct {
	Written
}

func (c *ShortContent) Kind() QuestionType { return QuestionTypeShort }
func (c *ShortContent) Validate() error { return nil }
func (c *ShortContent) Clone() Content { return &ShortContent{c.Written.clone()} }
func (*ShortContent) content() {}

// LongContent is a long-answer payload
type LongContent struct {
	Written
}

func (c *LongContent) Kind() QuestionType { return QuestionTypeLong }
func (c *LongContent) Validate() error { return nil }
func (c *LongContent) Clone() Content { return &LongContent{c.Written.clone()} }
func (*LongContent) content() {}

// ConditionalContent lists alternative questions joined by Logic
type ConditionalContent struct {
	Questions []string `json:"questions"`
	Logic     Logic    `json:"logic"`
}

func (c *ConditionalContent) Kind() QuestionType { return QuestionTypeConditional }

func (c *ConditionalContent) Validate() error {
	if !c.Logic.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLogic, c.Logic)
	}
	if len(c.Questions) == 0 {
		return fmt.Errorf("%w: conditional question has no alternatives", ErrInvalidContent)
	}
	return nil
}

func (c *ConditionalContent) Clone() Content {
	return &ConditionalContent{Questions: cloneStrings(c.Questions), Logic: c.Logic}
}

func (*ConditionalContent) content() {}

// ParagraphContent is a passage with questions keyed to it
type ParagraphContent struct {
	Paragraph string   `json:"paragraph"`
	Questions []string `json:"questions"`
}

func (c *ParagraphContent) Kind() QuestionType { return QuestionTypeParagraph }

func (c *ParagraphContent) Validate() error {
	if strings.TrimSpace(c.Paragraph) == "" {
		return fmt.Errorf("%w: paragraph is empty", ErrInvalidContent)
	}
	return nil
}

func (c *ParagraphContent) Clone() Content {
	return &ParagraphContent{Paragraph: c.Paragraph, Questions: cloneStrings(c.Questions)}
}

func (*ParagraphContent) content() {}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
