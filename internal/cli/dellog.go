package cli

import (
	"github.com/spf13/cobra"

	"pouch/internal/store"
)

// NewDelLogCommand creates the dellog command.
func NewDelLogCommand(rootOpts *RootOptions) *cobra.Command {
	var since, before, limit int
	var showMax bool

	cmd := &cobra.Command{
		Use:   "dellog <topic>",
		Short: "List deletion tombstones for a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if showMax {
				return runDelLogMax(rootOpts, cmd, args[0])
			}
			q := store.Query{Since: since, Before: before, Limit: limit}
			return runDelLog(rootOpts, cmd, args[0], q)
		},
		SilenceUsage: true,
	}

	cmd.Flags().IntVar(&since, "since", 0, "lowest clear id to include")
	cmd.Flags().IntVar(&before, "before", 0, "exclusive upper clear id bound")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of entries (0 = all)")
	cmd.Flags().BoolVar(&showMax, "max", false, "show only the highest clear id entry")

	return cmd
}

func runDelLog(opts *RootOptions, cmd *cobra.Command, topic string, q store.Query) error {
	ctx := cmd.Context()
	s, closeStore, err := openStore(ctx, opts)
	if err != nil {
		return err
	}
	defer closeStore()

	ranges, err := s.DelLog(ctx, topic, q)
	if err != nil {
		return err
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if formatter.Format == "json" {
		return formatter.JSON(ranges)
	}

	formatter.Line("%8s %8s", "LOW", "HI")
	for _, r := range ranges {
		formatter.Line("%8d %8d", r.Low, r.Hi)
	}
	return nil
}

func runDelLogMax(opts *RootOptions, cmd *cobra.Command, topic string) error {
	ctx := cmd.Context()
	s, closeStore, err := openStore(ctx, opts)
	if err != nil {
		return err
	}
	defer closeStore()

	entry, err := s.MaxDelID(ctx, topic)
	if err != nil {
		return err
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if formatter.Format == "json" {
		return formatter.JSON(entry)
	}

	if entry == nil {
		formatter.Line("no tombstones for %s", topic)
		return nil
	}
	formatter.Line("clear=%d low=%d hi=%d", entry.ClearID, entry.Low, entry.Hi)
	return nil
}
