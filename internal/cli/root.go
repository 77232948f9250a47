package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root sluice command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sluice",
		Short: "Multi-window admission gate for throttled actions",
		Long: `Sluice throttles an action against several independent sliding-window
rate limits at once. Run it as an HTTP gateway, drive synthetic traffic
at it, or walk through the admission mechanics locally with demo.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newDemoCmd(),
		newGenerateCmd(),
	)

	return root
}
