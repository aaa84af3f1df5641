package main

import (
	"context"
	"errors"
	"fmt"

	"paperbuilder/internal/model"
	"paperbuilder/internal/service"

	"github.com/spf13/cobra"
)

func newSeedCmd(opts *options) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a sample paper using every question type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			if len(a.Editor.Document()) > 0 {
				if !force {
					return errors.New("paper is not empty, use --force to replace it")
				}
				if err := a.Editor.ImportJSON(ctx, []byte("[]")); err != nil {
					return err
				}
			}

			if err := seedPaper(ctx, a.Editor); err != nil {
				return err
			}
			doc := a.Editor.Document()
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d sections (%d questions)\n", len(doc), doc.QuestionCount())
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing paper")
	return cmd
}

type seedGroup struct {
	typ         model.QuestionType
	instruction string
	logic       model.Logic
	questions   []model.Content
}

type seedSection struct {
	title       string
	instruction string
	groups      []seedGroup
}

var samplePaper = []seedSection{
	{
		title:       "Section A: Objective",
		instruction: "Attempt all questions. Each carries one mark.",
		groups: []seedGroup{
			{
				typ:         model.QuestionTypeMCQ,
				instruction: "Choose the correct option",
				questions: []model.Content{
					&model.MCQContent{Choices: []string{"Mercury", "Venus", "Earth", "Mars"}, CorrectAnswer: 0},
					&model.MCQContent{Choices: []string{"2", "3", "5", "7"}, CorrectAnswer: 3},
				},
			},
			{
				typ:         model.QuestionTypeTrueFalse,
				instruction: "Mark each statement true or false",
				questions: []model.Content{
					model.NewTrueFalse(0),
					model.NewTrueFalse(1),
				},
			},
			{
				typ:         model.QuestionTypeFillInBlanks,
				instruction: "Fill in the blanks",
				questions: []model.Content{
					&model.FillInBlanksContent{Question: "Water boils at ___ degrees Celsius at sea level."},
				},
			},
		},
	},
	{
		title:       "Section B: Written",
		instruction: "Answer in complete sentences.",
		groups: []seedGroup{
			{
				typ:         model.QuestionTypeShort,
				instruction: "Answer briefly",
				questions: []model.Content{
					&model.ShortContent{Written: model.Written{Question: "Define photosynthesis.", SubQuestions: []string{}}},
				},
			},
			{
				typ:         model.QuestionTypeLong,
				instruction: "Answer in detail",
				questions: []model.Content{
					&model.LongContent{Written: model.Written{
						Question:     "Describe the water cycle.",
						SubQuestions: []string{"Evaporation", "Condensation", "Precipitation"},
					}},
				},
			},
			{
				typ:         model.QuestionTypeConditional,
				instruction: "Attempt any one",
				logic:       model.LogicOr,
				questions: []model.Content{
					&model.ConditionalContent{
						Questions: []string{"Explain Newton's first law.", "Explain Newton's third law."},
						Logic:     model.LogicOr,
					},
				},
			},
			{
				typ:         model.QuestionTypeParagraph,
				instruction: "Read the passage and answer the questions",
				questions: []model.Content{
					&model.ParagraphContent{
						Paragraph: "The Amazon rainforest produces a large share of the world's oxygen.",
						Questions: []string{"Where is the Amazon rainforest?", "Why is it important?"},
					},
				},
			},
		},
	},
}

// seedPaper builds samplePaper through the editor so every id is generated
// and every change is autosaved.
func seedPaper(ctx context.Context, e *service.Editor) error {
	for _, ss := range samplePaper {
		section, err := e.AddSection(ctx, ss.title, ss.instruction)
		if err != nil {
			return fmt.Errorf("add section %q: %w", ss.title, err)
		}
		for _, sg := range ss.groups {
			group, err := e.AddGroup(ctx, section.ID, sg.typ, sg.instruction, sg.logic)
			if err != nil {
				return fmt.Errorf("add %s group: %w", sg.typ, err)
			}
			for _, c := range sg.questions {
				q := model.Question{Type: c.Kind(), Content: c.Clone()}
				if _, err := e.AddQuestion(ctx, section.ID, group.ID, q); err != nil {
					return fmt.Errorf("add %s question: %w", sg.typ, err)
				}
			}
		}
	}
	return nil
}
