package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"botanize/internal/traits"
)

func newQuestionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "questions [organ]",
		Short: "List organs, or the trait questions asked about one organ",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return printOrgans(cmd, ctx)
			}
			organ, err := traits.ParseOrgan(args[0])
			if err != nil {
				return err
			}
			store, err := ctx.loadTaxonomy(cmd.Context())
			if err != nil {
				return err
			}
			cards := traits.Cards(organ, store.Vocabulary())
			if ctx.jsonOutput() {
				if cards == nil {
					cards = []traits.Card{}
				}
				return writeJSON(cmd, cards)
			}
			out := cmd.OutOrStdout()
			if len(cards) == 0 {
				fmt.Fprintf(out, "No questions for %s\n", organ)
				return nil
			}
			rows := make([][]string, 0, len(cards))
			for _, card := range cards {
				options := make([]string, 0, len(card.Options))
				for _, term := range card.Options {
					options = append(options, term.Term)
				}
				rows = append(rows, []string{card.Title, string(card.Category), strings.Join(options, ", ")})
			}
			fmt.Fprintln(out, renderTable([]string{"Question", "Category", "Options"}, rows, nil))
			return nil
		},
	}
}

func printOrgans(cmd *cobra.Command, ctx *commandContext) error {
	organs := traits.Organs()
	if ctx.jsonOutput() {
		type organSummary struct {
			Organ     traits.Organ `json:"organ"`
			Questions int          `json:"questions"`
		}
		out := make([]organSummary, 0, len(organs))
		for _, organ := range organs {
			out = append(out, organSummary{Organ: organ, Questions: len(traits.QuestionsFor(organ))})
		}
		return writeJSON(cmd, out)
	}
	rows := make([][]string, 0, len(organs))
	for _, organ := range organs {
		rows = append(rows, []string{string(organ), strconv.Itoa(len(traits.QuestionsFor(organ)))})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Organ", "Questions"}, rows, []columnAlignment{alignLeft, alignRight}))
	return nil
}
