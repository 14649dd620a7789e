package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"botanize/internal/api"
	"botanize/internal/daemon"
	"botanize/internal/logging"
	"botanize/internal/observe"
	"botanize/internal/preflight"
	"botanize/internal/session"
	"botanize/internal/taxonomy"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logging: %w", err)
			}
			ctx.useLogger(logger)

			for _, r := range preflight.Failed(preflight.RunAll(cmd.Context(), cfg)) {
				logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
					logging.String("check", r.Name),
					logging.String("detail", r.Detail))
			}

			store, err := ctx.loadTaxonomy(cmd.Context())
			if err != nil {
				return err
			}
			gate, err := ctx.gate()
			if err != nil {
				return err
			}
			tracker := ctx.openTracker(cmd.Context(), gate)
			j, err := ctx.openJournal(cmd.Context())
			if err != nil {
				return err
			}
			adjuster := ctx.adjuster(store)

			deps := api.Deps{
				Taxonomy: store,
				Matcher:  observe.NewMatcher(store, logger),
				Adjuster: adjuster,
				Tracker:  tracker,
				Gate:     gate,
				Token:    cfg.API.Token,
			}
			var writer session.JournalWriter
			if j != nil {
				deps.Journal = j
				writer = j
			}
			if rec, err := ctx.recognizer(); err == nil {
				deps.Identifier = session.NewIdentifier(rec, adjuster, gate, writer, logger)
			} else {
				logging.WarnWithContext(logger, "photo identification disabled", "recognition_unavailable",
					logging.Error(err),
					logging.String(logging.FieldImpact, "/api/identify answers 503"))
			}

			if bind == "" {
				bind = cfg.API.Bind
			}
			server, err := api.New(bind, deps, logger)
			if err != nil {
				return err
			}
			if err := server.Listen(); err != nil {
				return err
			}
			components := []daemon.Named{{Name: "api", Component: server}}

			if cfg.Taxonomy.Watch {
				watcher, err := taxonomy.NewWatcher(store, ctx.taxonomySources(), logger)
				if err != nil {
					return err
				}
				components = append(components, daemon.Named{Name: "taxonomy-watch", Component: watcher})
			}

			d, err := daemon.New(cfg.LockPath(), logger, components...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", server.Addr())
			if err := d.Run(cmd.Context()); err != nil {
				if errors.Is(err, daemon.ErrAlreadyRunning) {
					return fmt.Errorf("%w (lock %s)", err, cfg.LockPath())
				}
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Override api.bind")
	return cmd
}
