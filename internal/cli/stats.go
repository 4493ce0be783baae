package cli

import (
	"github.com/spf13/cobra"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show row counts per entity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(rootOpts, cmd)
		},
		SilenceUsage: true,
	}
	return cmd
}

func runStats(opts *RootOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	s, closeStore, err := openStore(ctx, opts)
	if err != nil {
		return err
	}
	defer closeStore()

	st, err := s.Stats(ctx)
	if err != nil {
		return err
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if formatter.Format == "json" {
		return formatter.JSON(st)
	}

	formatter.Line("topics:        %d", st.Topics)
	formatter.Line("users:         %d", st.Users)
	formatter.Line("subscriptions: %d", st.Subscriptions)
	formatter.Line("messages:      %d", st.Messages)
	formatter.Line("dellog:        %d", st.DelLog)
	return nil
}
