package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sluice-go/sluice/internal/generate"
)

func newGenerateCmd() *cobra.Command {
	opts := generate.DefaultOptions()
	var verbose bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Send synthetic traffic at a running sluice server",
		Long: `Sends a paced stream of requests at a server's gated work endpoint
and reports how many were admitted, throttled, or failed. Patterns:

  steady   evenly spaced requests at the target rate
  burst    clustered bursts with quiet gaps
  ramp     starts slow and accelerates toward the target rate`,
		Example: `  sluice generate
  sluice generate --target http://localhost:9090 --count 200 --rate 20
  sluice generate --pattern burst --count 100 --rate 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zap.NewNop()
			if verbose {
				var err error
				logger, err = zap.NewDevelopment()
				if err != nil {
					return err
				}
				defer func() { _ = logger.Sync() }()
			}

			runner := generate.NewRunner(logger)
			res, err := runner.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			fmt.Printf("sent %d requests in %s: %d admitted, %d throttled, %d failed\n",
				res.Sent, res.Elapsed.Round(time.Millisecond),
				res.Succeeded, res.Throttled, res.Failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Target, "target", opts.Target, "base URL of the sluice server")
	cmd.Flags().IntVar(&opts.Count, "count", opts.Count, "total requests to send")
	cmd.Flags().Float64Var(&opts.Rate, "rate", opts.Rate, "target requests per second")
	cmd.Flags().StringVar(&opts.Pattern, "pattern", opts.Pattern, "traffic pattern (steady, burst, ramp)")
	cmd.Flags().IntVar(&opts.Names, "names", opts.Names, "size of the synthetic job-name pool")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "rng seed (0 = time-based)")

	return cmd
}
