package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"botanize/internal/quota"
)

func newQuotaCommand(ctx *commandContext) *cobra.Command {
	quotaCmd := &cobra.Command{
		Use:   "quota",
		Short: "Inspect the daily trait-answer allowance",
	}
	quotaCmd.AddCommand(newQuotaStatusCommand(ctx))
	quotaCmd.AddCommand(newQuotaAnswerCommand(ctx))
	return quotaCmd
}

func newQuotaStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show today's answer count",
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, err := quotaTracker(cmd, ctx)
			if err != nil {
				return err
			}
			status := tracker.Status(cmd.Context())
			if ctx.jsonOutput() {
				return writeJSON(cmd, status)
			}
			printQuotaStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}
}

// newQuotaAnswerCommand charges one answer, for front ends that keep their own
// questionnaire state.
func newQuotaAnswerCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "answer",
		Short: "Record one trait answer against today's allowance",
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, err := quotaTracker(cmd, ctx)
			if err != nil {
				return err
			}
			outcome := tracker.RecordAnswer(cmd.Context())
			status := tracker.Status(cmd.Context())
			if ctx.jsonOutput() {
				if err := writeJSON(cmd, struct {
					Outcome string       `json:"outcome"`
					Quota   quota.Status `json:"quota"`
				}{outcome.String(), status}); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Answer %s\n", outcome)
				printQuotaStatus(cmd.OutOrStdout(), status)
			}
			if outcome == quota.Denied {
				return fmt.Errorf("daily limit of %d answers reached", status.Limit)
			}
			return nil
		},
	}
}

func quotaTracker(cmd *cobra.Command, ctx *commandContext) (*quota.Tracker, error) {
	gate, err := ctx.gate()
	if err != nil {
		return nil, err
	}
	return ctx.openTracker(cmd.Context(), gate), nil
}

func printQuotaStatus(out io.Writer, status quota.Status) {
	colorize := shouldColorize(out)
	if status.Unlimited {
		fmt.Fprintln(out, renderStatusLine("Answers", statusOK, "unlimited", colorize))
		return
	}
	kind := statusOK
	if status.Remaining == 0 {
		kind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Date", statusInfo, status.Date, colorize))
	fmt.Fprintln(out, renderStatusLine("Answers", kind,
		fmt.Sprintf("%d of %d used, %d remaining", status.Count, status.Limit, status.Remaining), colorize))
}
