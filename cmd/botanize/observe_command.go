package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"botanize/internal/entitlement"
	"botanize/internal/journal"
	"botanize/internal/observe"
	"botanize/internal/session"
	"botanize/internal/taxonomy"
	"botanize/internal/traits"
)

type observeOutput struct {
	Organ    traits.Organ     `json:"organ"`
	Answered int              `json:"answered"`
	Limited  bool             `json:"quota_exhausted"`
	Results  []observe.Result `json:"results"`
	Entry    *journal.Entry   `json:"entry,omitempty"`
}

func newObserveCommand(ctx *commandContext) *cobra.Command {
	var organFlag string
	var answers []string
	var interactive bool
	var limit int
	var save bool

	cmd := &cobra.Command{
		Use:   "observe",
		Short: "Match species against the traits you observed",
		Example: `  botanize observe --organ leaf --answer "Leaf_Type=Simple" --answer "Leaf_Arrangement=Alternate"
  botanize observe --organ flower --interactive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			organ, err := traits.ParseOrgan(organFlag)
			if err != nil {
				return err
			}
			gate, err := ctx.gate()
			if err != nil {
				return err
			}
			if save && !gate.Allows(entitlement.FeatureJournal) {
				return fmt.Errorf("%w: saving to the journal needs a paid tier", session.ErrEntitlementRequired)
			}
			store, err := ctx.loadTaxonomy(cmd.Context())
			if err != nil {
				return err
			}
			tracker := ctx.openTracker(cmd.Context(), gate)
			obs, err := session.NewObserveSession(observe.NewMatcher(store, ctx.log()), tracker, organ, ctx.log())
			if err != nil {
				return err
			}

			var limited bool
			if interactive {
				limited, err = runInteractive(cmd, obs, store.Vocabulary())
			} else {
				limited, err = applyAnswers(cmd, obs, answers)
			}
			if err != nil {
				return err
			}
			if limited {
				fmt.Fprintf(cmd.ErrOrStderr(), "Daily limit of %d answers reached; upgrade for unlimited matching.\n", tracker.Limit())
			}

			results := obs.Results()
			output := observeOutput{Organ: organ, Answered: obs.Answered(), Limited: limited, Results: results}
			if save && len(results) > 0 {
				j, err := ctx.openJournal(cmd.Context())
				if err != nil {
					return err
				}
				if j == nil {
					return errors.New("journal is disabled")
				}
				entry, err := j.Add(cmd.Context(), session.ObservationEntry(results[0], obs.Selection()))
				if err != nil {
					return err
				}
				output.Entry = &entry
			}
			if limit > 0 && len(output.Results) > limit {
				output.Results = output.Results[:limit]
			}

			if ctx.jsonOutput() {
				if output.Results == nil {
					output.Results = []observe.Result{}
				}
				return writeJSON(cmd, output)
			}
			printObserveResults(cmd.OutOrStdout(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&organFlag, "organ", "o", "leaf", "Organ to describe (leaf, flower, fruit, bark)")
	cmd.Flags().StringArrayVarP(&answers, "answer", "a", nil, "Trait answer as Category=Value (repeatable)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Answer questions one at a time")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum results to print (0 for all)")
	cmd.Flags().BoolVar(&save, "save", false, "Save the best match to the journal")
	return cmd
}

// applyAnswers feeds Category=Value pairs to the session and stops at the
// first quota denial.
func applyAnswers(cmd *cobra.Command, obs *session.ObserveSession, answers []string) (bool, error) {
	for _, raw := range answers {
		name, value, ok := strings.Cut(raw, "=")
		if !ok {
			return false, fmt.Errorf("answer %q must be Category=Value", raw)
		}
		category, err := taxonomy.ParseCategory(name)
		if err != nil {
			return false, err
		}
		if err := obs.Answer(cmd.Context(), category, value); err != nil {
			if errors.Is(err, session.ErrQuotaExceeded) {
				return true, nil
			}
			return false, err
		}
	}
	return false, nil
}

// runInteractive walks the questionnaire over stdin. Input is an option number
// or free text; "s" skips, "b" goes back and "q" finishes early.
func runInteractive(cmd *cobra.Command, obs *session.ObserveSession, vocabulary *taxonomy.Vocabulary) (bool, error) {
	in := bufio.NewScanner(cmd.InOrStdin())
	out := cmd.OutOrStdout()
	for {
		q, ok := obs.Current()
		if !ok {
			return false, nil
		}
		options := vocabulary.Options(q.Category)
		fmt.Fprintf(out, "\n[%d/%d] %s\n", obs.Index()+1, len(obs.Questions()), q.Title)
		for i, term := range options {
			line := fmt.Sprintf("  %2d) %s", i+1, term.Term)
			if term.DescriptionShort != "" {
				line += " - " + term.DescriptionShort
			}
			fmt.Fprintln(out, line)
		}
		fmt.Fprint(out, "answer (number or text, s=skip, b=back, q=done): ")
		if !in.Scan() {
			return false, in.Err()
		}
		input := strings.TrimSpace(in.Text())
		switch strings.ToLower(input) {
		case "", "s":
			obs.Skip()
			continue
		case "b":
			obs.Back()
			continue
		case "q":
			return false, nil
		}
		value := input
		if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(options) {
			value = options[n-1].Term
		}
		if err := obs.Answer(cmd.Context(), q.Category, value); err != nil {
			if errors.Is(err, session.ErrQuotaExceeded) {
				return true, nil
			}
			return false, err
		}
		if results := obs.Results(); len(results) > 0 {
			fmt.Fprintf(out, "  %d candidates, best %s (%s)\n",
				len(results), results[0].Species.ScientificName, formatPercent(results[0].Percentage))
		}
	}
}

func printObserveResults(out io.Writer, output observeOutput) {
	if len(output.Results) == 0 {
		fmt.Fprintln(out, "No matching species")
	} else {
		rows := make([][]string, 0, len(output.Results))
		for i, r := range output.Results {
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				r.Species.ScientificName,
				r.Species.CommonName,
				r.Species.Family,
				formatPercent(r.Percentage),
				fmt.Sprintf("%d/%d", r.Matched, r.Compared),
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"#", "Species", "Common name", "Family", "Match", "Traits"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight}))
	}
	if output.Entry != nil {
		fmt.Fprintf(out, "Saved journal entry %s\n", output.Entry.ID)
	}
}
