package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"camelize/internal/core/app"
	"camelize/internal/core/config"
	"camelize/internal/core/decision"
	"camelize/internal/data/history"
	"camelize/internal/shared/observability"

	"github.com/spf13/cobra"
)

type runOptions struct {
	dryRun    bool
	diff      bool
	readonly  []string
	logFile   string
	decisions string
	history   bool
}

func (o *runOptions) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "report renames without writing files")
	cmd.Flags().BoolVar(&o.diff, "diff", false, "print a unified diff for every changed file")
	cmd.Flags().StringArrayVar(&o.readonly, "readonly", nil, "glob of files used for resolution but never modified (repeatable)")
	cmd.Flags().StringVar(&o.logFile, "log-file", "", "write logs to this file instead of stderr")
	cmd.Flags().Lookup("log-file").NoOptDefVal = resolveLogPath()
	cmd.Flags().StringVar(&o.decisions, "decisions", "", "decision log destination: stdout, stderr or a file path")
	cmd.Flags().BoolVar(&o.history, "history", false, "record the run in the history database")
}

func (o *runOptions) apply(cfg *config.Config) {
	if o.dryRun {
		cfg.Write.DryRun = true
	}
	if o.diff {
		cfg.Write.Diff = true
	}
	cfg.Exclude.Readonly = append(cfg.Exclude.Readonly, o.readonly...)
	if o.decisions != "" {
		cfg.DecisionLog.Output = o.decisions
	}
	if o.history {
		cfg.History.Enabled = true
	}
}

// session holds what convert and watch share: logging, tracing, the decision sink, the
// history store and the service.
type session struct {
	cfg     *config.Config
	cfgPath string
	svc     *app.Service
	closers []func() error
}

func openSession(ctx context.Context, g *globalOptions, o *runOptions, stdout, stderr io.Writer) (*session, error) {
	closeLogs := configureLogging(stderr, g.verbose, o.logFile)
	s := &session{closers: []func() error{func() error { closeLogs(); return nil }}}

	cfg, cfgPath, root, err := loadConfig(g.configPath)
	if err != nil {
		s.Close()
		return nil, err
	}
	o.apply(cfg)
	s.cfg, s.cfgPath = cfg, cfgPath

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
		Endpoint:    cfg.Observability.OTLPEndpoint,
		Insecure:    cfg.Observability.Insecure(),
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	s.closers = append(s.closers, func() error {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return shutdown(flushCtx)
	})

	sink, closeSink, err := openDecisionSink(cfg.DecisionLog.Output, cfg.DecisionLog.Prefix, stdout, stderr)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.closers = append(s.closers, closeSink)

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(cfg.History.Path)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, store.Close)
	}

	s.svc, err = app.NewService(app.Options{
		Config:    cfg,
		Root:      root,
		Decisions: sink,
		History:   store,
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases resources in reverse order of acquisition.
func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			slog.Warn("failed to release resource", "error", err)
		}
	}
	s.closers = nil
}

func newConvertCmd(g *globalOptions) *cobra.Command {
	var o runOptions
	cmd := &cobra.Command{
		Use:   "convert [paths...]",
		Short: "Convert snake_case declarations under paths (default: config paths)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), g, &o, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			report, err := s.svc.Run(cmd.Context(), args)
			if err != nil {
				return err
			}
			for _, d := range report.Diffs {
				fmt.Fprint(cmd.OutOrStdout(), d.Diff)
			}
			renderSummary(cmd.ErrOrStderr(), report)
			return nil
		},
	}
	o.register(cmd)
	return cmd
}

func newWatchCmd(g *globalOptions) *cobra.Command {
	var (
		o           runOptions
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Convert once, then again whenever a source file changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), g, &o, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			if metricsAddr != "" {
				s.cfg.Observability.MetricsAddr = metricsAddr
			}
			status := newRunStatus()
			if addr := s.cfg.Observability.MetricsAddr; addr != "" {
				srv := NewObservabilityServer(addr, status.Health)
				if err := srv.Start(cmd.Context()); err != nil {
					return err
				}
				defer func() {
					stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Stop(stopCtx)
				}()
			}

			return s.svc.Watch(cmd.Context(), args, app.WatchOptions{
				ConfigPath: s.cfgPath,
				OnReport: func(report *app.Report, err error) {
					status.Record(report, err)
					if err != nil {
						return
					}
					for _, d := range report.Diffs {
						fmt.Fprint(cmd.OutOrStdout(), d.Diff)
					}
					renderSummary(cmd.ErrOrStderr(), report)
				},
			})
		},
	}
	o.register(cmd)
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics and /health on this address")
	return cmd
}

func newHistoryCmd(g *globalOptions) *cobra.Command {
	var (
		limit int
		runID string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs, or the decisions of one run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			closeLogs := configureLogging(cmd.ErrOrStderr(), g.verbose, "")
			defer closeLogs()

			cfg, _, _, err := loadConfig(g.configPath)
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			if runID != "" {
				records, err := store.LoadDecisions(runID)
				if err != nil {
					return err
				}
				sink := decision.NewCSVSink(cmd.OutOrStdout(), cfg.DecisionLog.Prefix)
				for _, r := range records {
					if err := sink.Emit(r); err != nil {
						return err
					}
				}
				return nil
			}

			runs, err := store.ListRuns(limit)
			if err != nil {
				return err
			}
			renderRuns(cmd.OutOrStdout(), runs, time.Now())
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of runs to list (0 for all)")
	cmd.Flags().StringVar(&runID, "run", "", "print the decision log of this run id")
	return cmd
}
