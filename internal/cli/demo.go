package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sluice-go/sluice/pkg/gate"
)

func newDemoCmd() *cobra.Command {
	var (
		calls   int
		pause   time.Duration
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Walk through multi-limit admission locally",
		Long: `Runs a local gate with two overlapping limits (2 per second and
3 per 2 seconds) and sends a burst of calls through it, printing each
admission outcome. Halfway through, the limit set is replaced at
runtime to show that swapped-in limits start with clean history.`,
		Example: `  sluice demo
  sluice demo --calls 8 --pause 100ms --verbose`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(calls, pause, verbose)
		},
	}

	cmd.Flags().IntVar(&calls, "calls", 6, "number of calls per phase")
	cmd.Flags().DurationVar(&pause, "pause", 50*time.Millisecond, "pause between calls")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "print delay and rejection events as they happen")

	return cmd
}

func runDemo(calls int, pause time.Duration, verbose bool) error {
	if calls <= 0 {
		return fmt.Errorf("calls must be positive, got %d", calls)
	}

	perSecond := gate.MustLimit(2, time.Second)
	perTwoSeconds := gate.MustLimit(3, 2*time.Second)

	var opts []gate.Option
	if verbose {
		opts = append(opts, gate.WithObserver(func(ev gate.Event) {
			switch ev.Kind {
			case gate.EventDelayed:
				fmt.Printf("    ... window %d/%s full, waiting %s\n", ev.MaxRequests, ev.Window, ev.Wait.Round(time.Millisecond))
			case gate.EventRejected:
				fmt.Printf("    ... window %d/%s still full after waiting\n", ev.MaxRequests, ev.Window)
			}
		}))
	}

	var performed int
	g, err := gate.New(func(ctx context.Context, name string) error {
		performed++
		return nil
	}, []*gate.Limit{perSecond, perTwoSeconds}, opts...)
	if err != nil {
		return err
	}

	fmt.Printf("Phase 1: limits %s and %s\n", perSecond, perTwoSeconds)
	runBurst(g, calls, pause)

	// Replace the whole set. The new descriptors carry no history, so
	// calls that were throttled a moment ago sail through.
	relaxed := gate.MustLimit(10, time.Second)
	g.UpdateRateLimits([]*gate.Limit{relaxed})
	fmt.Printf("\nPhase 2: limits replaced at runtime with %s\n", relaxed)
	runBurst(g, calls, pause)

	fmt.Printf("\n%d of %d calls performed\n", performed, 2*calls)
	return nil
}

func runBurst[A any](g *gate.Gate[A], calls int, pause time.Duration) {
	var zero A
	for i := 1; i <= calls; i++ {
		start := time.Now()
		err := g.Perform(context.Background(), zero)
		elapsed := time.Since(start).Round(time.Millisecond)
		switch {
		case err == nil && elapsed < 5*time.Millisecond:
			fmt.Printf("  call %d: admitted\n", i)
		case err == nil:
			fmt.Printf("  call %d: admitted after %s\n", i, elapsed)
		default:
			fmt.Printf("  call %d: rejected after %s (%v)\n", i, elapsed, err)
		}
		if pause > 0 {
			time.Sleep(pause)
		}
	}
}
