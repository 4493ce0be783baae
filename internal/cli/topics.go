package cli

import (
	"github.com/spf13/cobra"
)

// NewTopicsCommand creates the topics command.
func NewTopicsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topics",
		Short: "List cached topics, most recently touched first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTopics(rootOpts, cmd)
		},
		SilenceUsage: true,
	}
	return cmd
}

func runTopics(opts *RootOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	s, closeStore, err := openStore(ctx, opts)
	if err != nil {
		return err
	}
	defer closeStore()

	topics, err := s.Topics(ctx, nil)
	if err != nil {
		return err
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if formatter.Format == "json" {
		return formatter.JSON(topics)
	}

	formatter.Line("%-24s %8s %8s %8s  %s", "TOPIC", "SEQ", "READ", "UNREAD", "TOUCHED")
	for _, topic := range topics {
		touched := ""
		if topic.TouchedAt != nil {
			touched = topic.TouchedAt.Format("2006-01-02 15:04:05")
		}
		formatter.Line("%-24s %8d %8d %8d  %s",
			topic.Name, intOrZero(topic.SeqID), intOrZero(topic.ReadSeqID), topic.Unread, touched)
	}
	return nil
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
