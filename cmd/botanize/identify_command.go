package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"botanize/internal/recognition"
	"botanize/internal/session"
	"botanize/internal/taxonomy"
	"botanize/internal/traits"
)

func newIdentifyCommand(ctx *commandContext) *cobra.Command {
	var organFlag string
	var verify []string
	var save bool

	cmd := &cobra.Command{
		Use:   "identify PHOTO",
		Short: "Identify a plant photo, optionally re-scored with traits you verified",
		Example: `  botanize identify leaf.jpg --organ leaf
  botanize identify leaf.jpg --organ leaf --verify "Leaf_Margin=Lobed" --save`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			organ, err := traits.ParseOrgan(organFlag)
			if err != nil {
				return err
			}
			verified := traits.Selection{}
			for _, raw := range verify {
				name, value, ok := strings.Cut(raw, "=")
				if !ok {
					return fmt.Errorf("verified trait %q must be Category=Value", raw)
				}
				category, err := taxonomy.ParseCategory(name)
				if err != nil {
					return err
				}
				verified.Set(category, value)
			}

			image, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read photo: %w", err)
			}
			gate, err := ctx.gate()
			if err != nil {
				return err
			}
			recognizer, err := ctx.recognizer()
			if err != nil {
				return err
			}
			store, err := ctx.loadTaxonomy(cmd.Context())
			if err != nil {
				return err
			}
			var writer session.JournalWriter
			if save {
				j, err := ctx.openJournal(cmd.Context())
				if err != nil {
					return err
				}
				if j != nil {
					writer = j
				}
			}

			identifier := session.NewIdentifier(recognizer, ctx.adjuster(store), gate, writer, ctx.log())
			result, err := identifier.Identify(cmd.Context(), session.IdentifyRequest{
				Request:  recognition.Request{Image: image, Filename: filepath.Base(args[0]), Organ: organ},
				Verified: verified,
				Save:     save,
			})
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			printIdentification(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&organFlag, "organ", "o", "auto", "Organ in the photo (leaf, flower, fruit, bark, auto)")
	cmd.Flags().StringArrayVar(&verify, "verify", nil, "Trait verified by eye as Category=Value (repeatable, enables both mode)")
	cmd.Flags().BoolVar(&save, "save", false, "Save the best candidate to the journal")
	return cmd
}

func printIdentification(out io.Writer, result session.Identification) {
	if len(result.Ranked) == 0 {
		fmt.Fprintln(out, "No species recognised in the photo")
		return
	}
	rows := make([][]string, 0, len(result.Ranked))
	for i, a := range result.Ranked {
		local := "-"
		if a.LocalRecord {
			local = strconv.Itoa(a.Verified)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			a.Candidate.ScientificName,
			a.Candidate.CommonName(),
			a.Candidate.Family,
			formatScore(a.Candidate.Score),
			formatScore(a.Score),
			local,
		})
	}
	fmt.Fprintf(out, "Mode: %s\n", result.Mode)
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Species", "Common name", "Family", "Score", "Adjusted", "Verified"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight}))
	if result.Entry != nil {
		fmt.Fprintf(out, "Saved journal entry %s: %s\n", result.Entry.ID, result.Entry.Notes)
	}
}
