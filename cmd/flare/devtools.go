package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flare-dev/flare/internal/config"
	"github.com/flare-dev/flare/pkg/devtools"
	"github.com/flare-dev/flare/pkg/flare"
	"github.com/flare-dev/flare/pkg/observe"
	"github.com/flare-dev/flare/pkg/persist"
)

func devtoolsCmd() *cobra.Command {
	var (
		configDir string
		addr      string
	)

	cmd := &cobra.Command{
		Use:   "devtools",
		Short: "Serve the runtime inspector",
		Long: `Start the inspector HTTP server and stream runtime events from a
demo workload. Endpoints:

  GET /metrics      Prometheus scrape endpoint
  GET /api/stats    runtime counters
  GET /api/signals  registered signal values
  GET /ws           live event stream`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configDir)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Devtools.Addr
			}
			flare.MaxUpdateRounds = cfg.Runtime.MaxUpdateRounds
			flare.DebugMode = cfg.Runtime.Debug

			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

			hub := devtools.NewHub()
			metrics := observe.Metrics(
				observe.WithNamespace(cfg.Metrics.Namespace),
				observe.WithSubsystem(cfg.Metrics.Subsystem),
			)
			flare.SetRecorder(flare.MultiRecorder(hub, metrics))
			defer flare.SetRecorder(nil)

			reg := persist.NewRegistry()
			dispose := startInspectorWorkload(reg, logger)
			defer dispose()

			srv := devtools.NewServer(hub,
				devtools.WithAddr(addr),
				devtools.WithLogger(logger),
				devtools.WithSignalRegistry(reg),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVarP(&configDir, "config-dir", "c", ".", "Directory containing flare.yaml")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides flare.yaml)")

	return cmd
}

// startInspectorWorkload creates a small reactive graph so the
// inspector has something to show, and returns its dispose function.
func startInspectorWorkload(reg *persist.Registry, logger *slog.Logger) func() {
	return flare.Root(func() {
		count := flare.NewIntSignal(0, flare.PersistKey("count"))
		doubled := flare.NewMemo(func() int { return count.Get() * 2 })

		flare.CreateEffect(func() flare.Cleanup {
			logger.Debug("workload tick", "count", count.Get(), "doubled", doubled.Get())
			return nil
		})

		if err := reg.Register(count); err != nil {
			logger.Error("register failed", "error", err)
		}

		count.Inc()
	})
}
