package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"paperbuilder/internal/model"
	"paperbuilder/internal/persist"

	"github.com/spf13/cobra"
)

func newExportCmd(opts *options) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the paper as indented JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			data, err := a.Editor.ExportJSON()
			if err != nil {
				return err
			}
			if output == "-" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			doc := a.Editor.Document()
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d sections (%d questions) to %s\n", len(doc), doc.QuestionCount(), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", persist.ExportFileName, `output path, or "-" for stdout`)
	return cmd
}

func newImportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the paper with an exported file",
		Long: `Replace the whole paper with the contents of an exported file.

The current paper is kept when the file is not a valid array of sections.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			a, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			if err := a.Editor.ImportJSON(cmd.Context(), data); err != nil {
				printProblems(cmd.ErrOrStderr(), err)
				return err
			}
			doc := a.Editor.Document()
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d sections (%d questions)\n", len(doc), doc.QuestionCount())
			return nil
		},
	}
}

func newSearchCmd(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Print the sections and groups matching a query",
		Long: `Print the part of the paper whose section titles, section instructions,
group types or group instructions contain the query, ignoring case.

With no query the whole paper is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			view := a.Editor.Filter(query)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}
			if len(view) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no matching sections")
				return nil
			}
			printOutline(cmd.OutOrStdout(), view)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the view as JSON")
	return cmd
}

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check the paper, or an exported file, for structural problems",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var problems []error
			if len(args) == 1 {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				if _, err := persist.DecodeStrict(data); err != nil {
					var verr *persist.ValidationError
					if !errors.As(err, &verr) {
						return err
					}
					problems = verr.Problems
				}
			} else {
				a, err := opts.open(cmd.Context())
				if err != nil {
					return err
				}
				defer a.Close(cmd.Context())
				problems = a.Editor.Document().Validate()
			}

			if len(problems) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			}
			for _, p := range problems {
				fmt.Fprintln(cmd.ErrOrStderr(), "  -", p)
			}
			return fmt.Errorf("%d problems found", len(problems))
		},
	}
}

func printProblems(w io.Writer, err error) {
	var verr *persist.ValidationError
	if !errors.As(err, &verr) {
		return
	}
	for _, p := range verr.Problems {
		fmt.Fprintln(w, "  -", p)
	}
}

// printOutline renders the document the way the preview lists it
func printOutline(w io.Writer, doc model.Document) {
	numbers := doc.Numbering()
	for i, s := range doc {
		fmt.Fprintf(w, "%d. %s\n", i+1, s.Title)
		if s.Instruction != "" {
			fmt.Fprintf(w, "   %s\n", s.Instruction)
		}
		for _, g := range s.Groups {
			header := g.Label()
			if g.Type == model.QuestionTypeConditional {
				header += " (" + string(g.Logic) + ")"
			}
			if g.Instruction != "" {
				header += ": " + g.Instruction
			}
			fmt.Fprintf(w, "   %s\n", header)
			for _, q := range g.Questions {
				fmt.Fprintf(w, "     Q%d. %s\n", numbers[q.ID], summarize(q))
			}
		}
	}
}

func summarize(q model.Question) string {
	switch c := q.Content.(type) {
	case *model.MCQContent:
		return strings.Join(c.Choices, " / ")
	case *model.TrueFalseContent:
		if c.CorrectAnswer >= 0 && c.CorrectAnswer < len(c.Choices) {
			return "answer: " + c.Choices[c.CorrectAnswer]
		}
		return "true / false"
	case *model.FillInBlanksContent:
		return c.Question
	case *model.ShortContent:
		return written(c.Written)
	case *model.LongContent:
		return written(c.Written)
	case *model.ConditionalContent:
		return strings.Join(c.Questions, " "+string(c.Logic)+" ")
	case *model.ParagraphContent:
		return fmt.Sprintf("%s (%d questions)", c.Paragraph, len(c.Questions))
	}
	return string(q.Type)
}

func written(w model.Written) string {
	if len(w.SubQuestions) == 0 {
		return w.Question
	}
	return fmt.Sprintf("%s (%d parts)", w.Question, len(w.SubQuestions))
}
