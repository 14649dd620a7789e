package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"botanize/internal/entitlement"
	"botanize/internal/journal"
	"botanize/internal/session"
)

const journalTimeFormat = "2006-01-02 15:04"

func newJournalCommand(ctx *commandContext) *cobra.Command {
	journalCmd := &cobra.Command{
		Use:     "journal",
		Aliases: []string{"j"},
		Short:   "Browse saved identifications",
	}
	journalCmd.AddCommand(newJournalListCommand(ctx))
	journalCmd.AddCommand(newJournalShowCommand(ctx))
	journalCmd.AddCommand(newJournalRemoveCommand(ctx))
	return journalCmd
}

func newJournalListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List journal entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := requireJournal(cmd.Context(), ctx)
			if err != nil {
				return err
			}
			entries, err := j.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				if entries == nil {
					entries = []journal.Entry{}
				}
				return writeJSON(cmd, entries)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Journal is empty")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					shortID(e.ID),
					e.CreatedAt.Local().Format(journalTimeFormat),
					e.ScientificName,
					e.CommonName,
					string(e.Mode),
					formatScore(e.AdjustedScore),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Saved", "Species", "Common name", "Mode", "Score"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight}))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to list (0 for all)")
	return cmd
}

func newJournalShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one journal entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := requireJournal(cmd.Context(), ctx)
			if err != nil {
				return err
			}
			entry, err := resolveEntry(cmd.Context(), j, args[0])
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, entry)
			}
			printEntry(cmd.OutOrStdout(), entry)
			return nil
		},
	}
}

func newJournalRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove ID",
		Aliases: []string{"rm"},
		Short:   "Delete a journal entry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := requireJournal(cmd.Context(), ctx)
			if err != nil {
				return err
			}
			entry, err := resolveEntry(cmd.Context(), j, args[0])
			if err != nil {
				return err
			}
			if err := j.Delete(cmd.Context(), entry.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s (%s)\n", shortID(entry.ID), entry.ScientificName)
			return nil
		},
	}
}

func requireJournal(ctx context.Context, cc *commandContext) (*journal.Journal, error) {
	gate, err := cc.gate()
	if err != nil {
		return nil, err
	}
	if !gate.Allows(entitlement.FeatureJournal) {
		return nil, fmt.Errorf("%w: the journal needs a paid tier", session.ErrEntitlementRequired)
	}
	j, err := cc.openJournal(ctx)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, errors.New("journal is disabled (set journal.enabled = true)")
	}
	return j, nil
}

// resolveEntry accepts a full id or the unique prefix printed by list.
func resolveEntry(ctx context.Context, j *journal.Journal, id string) (journal.Entry, error) {
	entry, err := j.Get(ctx, id)
	if err == nil || !errors.Is(err, journal.ErrNotFound) {
		return entry, err
	}
	entries, listErr := j.List(ctx, 0)
	if listErr != nil {
		return journal.Entry{}, listErr
	}
	var matches []journal.Entry
	for _, e := range entries {
		if strings.HasPrefix(e.ID, id) {
			matches = append(matches, e)
		}
	}
	switch len(matches) {
	case 0:
		return journal.Entry{}, err
	case 1:
		return matches[0], nil
	default:
		return journal.Entry{}, fmt.Errorf("id prefix %q matches %d entries", id, len(matches))
	}
}

func printEntry(out io.Writer, e journal.Entry) {
	fmt.Fprintf(out, "ID:        %s\n", e.ID)
	fmt.Fprintf(out, "Saved:     %s\n", e.CreatedAt.Local().Format(time.RFC1123))
	fmt.Fprintf(out, "Species:   %s\n", e.ScientificName)
	if e.CommonName != "" {
		fmt.Fprintf(out, "Common:    %s\n", e.CommonName)
	}
	if e.Family != "" {
		fmt.Fprintf(out, "Family:    %s\n", e.Family)
	}
	fmt.Fprintf(out, "Mode:      %s\n", e.Mode)
	fmt.Fprintf(out, "Score:     %s (raw %s)\n", formatScore(e.AdjustedScore), formatScore(e.RawScore))
	if len(e.VerifiedTraits) > 0 {
		keys := make([]string, 0, len(e.VerifiedTraits))
		for category, value := range e.VerifiedTraits {
			keys = append(keys, fmt.Sprintf("%s=%s", category.Label(), value))
		}
		sort.Strings(keys)
		fmt.Fprintf(out, "Traits:    %s\n", strings.Join(keys, ", "))
	}
	if e.Notes != "" {
		fmt.Fprintf(out, "Notes:     %s\n", e.Notes)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
