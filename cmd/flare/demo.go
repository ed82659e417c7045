package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/flare-dev/flare/internal/config"
	"github.com/flare-dev/flare/pkg/flare"
	"github.com/flare-dev/flare/pkg/persist"
)

func demoCmd() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Walk through the reactive runtime",
		Long: `Run a scripted tour of signals, memos, effects, batches,
watchers, context, and snapshot persistence.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configDir)
			if err != nil {
				return err
			}
			flare.MaxUpdateRounds = cfg.Runtime.MaxUpdateRounds
			flare.DebugMode = cfg.Runtime.Debug

			logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
			runDemo(logger)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configDir, "config-dir", "c", ".", "Directory containing flare.yaml")

	return cmd
}

func runDemo(logger *slog.Logger) {
	printBanner()

	dispose := flare.Root(func() {
		demoCounter(logger)
		demoDerived(logger)
		demoWatch(logger)
		demoContext(logger)
		demoPersist(logger)
	})
	dispose()

	fmt.Println()
	success("demo complete")
}

// demoCounter shows an effect re-running as its signal changes.
func demoCounter(logger *slog.Logger) {
	info("— signals and effects —")

	count := flare.NewIntSignal(0)
	flare.CreateEffect(func() flare.Cleanup {
		logger.Info("count changed", "value", count.Get())
		return nil
	})

	count.Inc()
	count.Add(9)
}

// demoDerived shows memos and glitch-free batched updates.
func demoDerived(logger *slog.Logger) {
	info("— memos and batches —")

	price := flare.NewSignal(100)
	quantity := flare.NewSignal(2)
	total := flare.NewMemo(func() int { return price.Get() * quantity.Get() })

	flare.CreateEffect(func() flare.Cleanup {
		logger.Info("total changed", "value", total.Get())
		return nil
	})

	flare.Batch(func() {
		price.Set(90)
		quantity.Set(3)
	})
}

// demoWatch shows watchers observing transitions with previous values.
func demoWatch(logger *slog.Logger) {
	info("— watchers —")

	temp := flare.NewSignal(20)
	stop := flare.Watch(func() int { return temp.Get() }, func(value int, prev *int) {
		if prev == nil {
			logger.Info("temperature observed", "value", value)
			return
		}
		logger.Info("temperature moved", "from", *prev, "to", value)
	}, true)
	defer stop()

	temp.Set(23)
	temp.Set(19)
}

// demoContext shows scoped values resolved through the owner tree.
func demoContext(logger *slog.Logger) {
	info("— context —")

	theme := flare.CreateContext[string]("theme")
	theme.Provide("dark")

	inner := flare.Root(func() {
		logger.Info("theme resolved", "value", theme.MustUse())
	})
	inner()
}

// demoPersist shows snapshot save and restore through a memory store.
func demoPersist(logger *slog.Logger) {
	info("— persistence —")

	name := flare.NewSignal("ada", flare.PersistKey("name"))
	visits := flare.NewIntSignal(1, flare.PersistKey("visits"))

	reg := persist.NewRegistry()
	for _, sig := range []flare.PersistableSignal{name, visits} {
		if err := reg.Register(sig); err != nil {
			logger.Error("register failed", "error", err)
			return
		}
	}

	store := persist.NewMemoryStore()
	ctx := context.Background()
	if err := reg.SaveTo(ctx, store, "demo"); err != nil {
		logger.Error("save failed", "error", err)
		return
	}

	name.Set("grace")
	visits.Inc()

	if err := reg.LoadFrom(ctx, store, "demo"); err != nil {
		logger.Error("load failed", "error", err)
		return
	}
	logger.Info("state restored", "name", name.Peek(), "visits", visits.Peek())
}
