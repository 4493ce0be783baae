package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"pouch/internal/store"
)

// NewMessagesCommand creates the messages command.
func NewMessagesCommand(rootOpts *RootOptions) *cobra.Command {
	var since, before, limit int

	cmd := &cobra.Command{
		Use:   "messages <topic>",
		Short: "List cached messages for a topic, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := store.Query{Since: since, Before: before, Limit: limit}
			return runMessages(rootOpts, cmd, args[0], q)
		},
		SilenceUsage: true,
	}

	cmd.Flags().IntVar(&since, "since", 0, "lowest sequence id to include")
	cmd.Flags().IntVar(&before, "before", 0, "exclusive upper sequence id bound")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of messages (0 = all)")

	return cmd
}

func runMessages(opts *RootOptions, cmd *cobra.Command, topic string, q store.Query) error {
	ctx := cmd.Context()
	s, closeStore, err := openStore(ctx, opts)
	if err != nil {
		return err
	}
	defer closeStore()

	msgs, err := s.Messages(ctx, topic, q, nil)
	if err != nil {
		return err
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if formatter.Format == "json" {
		return formatter.JSON(msgs)
	}

	formatter.Line("%6s %-20s %-20s %7s  %s", "SEQ", "FROM", "TS", "STATUS", "CONTENT")
	for _, msg := range msgs {
		ts := ""
		if msg.CreatedAt != nil {
			ts = msg.CreatedAt.Format("2006-01-02 15:04:05")
		}
		content, err := json.Marshal(msg.Content)
		if err != nil {
			content = []byte("?")
		}
		formatter.Line("%6d %-20s %-20s %7d  %s", msg.SeqID, msg.From, ts, msg.Status, content)
	}
	return nil
}
