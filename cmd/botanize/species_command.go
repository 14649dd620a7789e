package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"botanize/internal/entitlement"
	"botanize/internal/session"
	"botanize/internal/taxonomy"
)

func newSpeciesCommand(ctx *commandContext) *cobra.Command {
	speciesCmd := &cobra.Command{
		Use:   "species",
		Short: "Browse the species reference",
	}
	speciesCmd.AddCommand(newSpeciesShowCommand(ctx))
	speciesCmd.AddCommand(newSpeciesSearchCommand(ctx))
	speciesCmd.AddCommand(newSpeciesFamiliesCommand(ctx))
	return speciesCmd
}

func newSpeciesShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show a species profile by scientific name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.loadTaxonomy(cmd.Context())
			if err != nil {
				return err
			}
			species, ok := store.Lookup(args[0])
			if !ok {
				return fmt.Errorf("species %q not found", args[0])
			}
			gate, err := ctx.gate()
			if err != nil {
				return err
			}
			if !species.Free && !gate.Allows(entitlement.FeatureAllSpecies) {
				return fmt.Errorf("%w: %s is outside the free species set", session.ErrEntitlementRequired, species.ScientificName)
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, species)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s", species.ScientificName)
			if species.CommonName != "" {
				fmt.Fprintf(out, " (%s)", species.CommonName)
			}
			fmt.Fprintln(out)
			if species.Family != "" {
				fmt.Fprintf(out, "Family: %s\n", species.Family)
			}
			if species.Description != "" {
				fmt.Fprintf(out, "\n%s\n", species.Description)
			}
			documented := species.Traits()
			rows := make([][]string, 0, len(documented))
			for _, category := range taxonomy.Categories() {
				if value, ok := documented[category]; ok {
					rows = append(rows, []string{category.Label(), value})
				}
			}
			if len(rows) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTable([]string{"Trait", "Value"}, rows, nil))
			}
			return nil
		},
	}
}

func newSpeciesSearchCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Search species by name, family, or description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.loadTaxonomy(cmd.Context())
			if err != nil {
				return err
			}
			gate, err := ctx.gate()
			if err != nil {
				return err
			}
			hits := store.Search(strings.Join(args, " "), limit)
			if ctx.jsonOutput() {
				if hits == nil {
					hits = []taxonomy.SearchHit{}
				}
				return writeJSON(cmd, hits)
			}
			out := cmd.OutOrStdout()
			if len(hits) == 0 {
				fmt.Fprintln(out, "No species found")
				return nil
			}
			allSpecies := gate.Allows(entitlement.FeatureAllSpecies)
			rows := make([][]string, 0, len(hits))
			for _, h := range hits {
				access := ""
				if !h.Species.Free && !allSpecies {
					access = "locked"
				}
				rows = append(rows, []string{h.Species.ScientificName, h.Species.CommonName, h.Species.Family, access})
			}
			fmt.Fprintln(out, renderTable([]string{"Species", "Common name", "Family", "Access"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum results (0 for all)")
	return cmd
}

func newSpeciesFamiliesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "families",
		Short: "List plant families with species counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.loadTaxonomy(cmd.Context())
			if err != nil {
				return err
			}
			families := store.Families()
			if ctx.jsonOutput() {
				return writeJSON(cmd, families)
			}
			rows := make([][]string, 0, len(families))
			for _, f := range families {
				rows = append(rows, []string{f.Family, strconv.Itoa(f.Species)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Family", "Species"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
}
