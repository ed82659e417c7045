package main

import (
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/flare-dev/flare/pkg/flare"
)

type profile struct {
	Name      string
	Signals   int
	Effects   int
	Writes    int
	BatchSize int
	MaxProcs  int
}

var profiles = map[string]profile{
	"fast": {
		Name:      "fast",
		Signals:   100,
		Effects:   100,
		Writes:    10_000,
		BatchSize: 10,
	},
	"standard": {
		Name:      "standard",
		Signals:   1_000,
		Effects:   1_000,
		Writes:    100_000,
		BatchSize: 25,
	},
	"stress": {
		Name:      "stress",
		Signals:   5_000,
		Effects:   5_000,
		Writes:    500_000,
		BatchSize: 50,
		MaxProcs:  4,
	},
}

func benchCmd() *cobra.Command {
	var profileName string

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure propagation throughput",
		Long: `Build a signal/effect graph and measure write propagation
throughput for unbatched and batched writes.

Profiles:
  fast      100 signals, 10k writes (quick smoke run)
  standard  1k signals, 100k writes
  stress    5k signals, 500k writes, GOMAXPROCS=4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := profiles[profileName]
			if !ok {
				names := make([]string, 0, len(profiles))
				for name := range profiles {
					names = append(names, name)
				}
				sort.Strings(names)
				return fmt.Errorf("unknown profile %q, expected one of %v", profileName, names)
			}
			runBench(p)
			return nil
		},
	}

	cmd.Flags().StringVarP(&profileName, "profile", "p", "standard", "Benchmark profile (fast, standard, stress)")

	return cmd
}

func runBench(p profile) {
	if p.MaxProcs > 0 {
		runtime.GOMAXPROCS(p.MaxProcs)
	}

	printBanner()
	info("profile: %s (%d signals, %d effects, %d writes)", p.Name, p.Signals, p.Effects, p.Writes)

	dispose := flare.Root(func() {
		signals := make([]*flare.Signal[int], p.Signals)
		for i := range signals {
			signals[i] = flare.NewSignal(0)
		}

		var runs int
		for i := 0; i < p.Effects; i++ {
			sig := signals[i%len(signals)]
			flare.CreateEffect(func() flare.Cleanup {
				_ = sig.Get()
				runs++
				return nil
			})
		}

		unbatched := measure(func() {
			for i := 0; i < p.Writes; i++ {
				signals[i%len(signals)].Set(i)
			}
		})
		report("unbatched", p.Writes, unbatched)

		batched := measure(func() {
			for i := 0; i < p.Writes; i += p.BatchSize {
				base := i
				flare.Batch(func() {
					for j := 0; j < p.BatchSize && base+j < p.Writes; j++ {
						signals[(base+j)%len(signals)].Set(base + j + 1)
					}
				})
			}
		})
		report(fmt.Sprintf("batched (%d/batch)", p.BatchSize), p.Writes, batched)

		info("effect runs: %d", runs)
	})
	dispose()

	success("bench complete")
}

func measure(fn func()) time.Duration {
	start := time.Now()
	fn()
	return time.Since(start)
}

func report(label string, writes int, elapsed time.Duration) {
	perSec := float64(writes) / elapsed.Seconds()
	info("%-22s %10d writes in %8s  (%.0f writes/sec)", label, writes, elapsed.Round(time.Millisecond), perSec)
}
