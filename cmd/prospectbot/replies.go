package main

import (
	"fmt"

	"evolve-engine/internal/config"
	"evolve-engine/internal/replies"

	"github.com/spf13/cobra"
)

var repliesCmd = &cobra.Command{
	Use:   "replies",
	Short: "Mark contacted threads whose lead has written back",
	Long: `Reads unseen mail from the last three months over IMAP (without marking
it read) and stamps repliedAt on every contacted thread whose email address
sent one of them.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := config.ValidateIMAP(cfg); err != nil {
			return err
		}

		t := &replies.Tracker{
			Inbox:     &replies.IMAPInbox{Cfg: cfg.IMAP, Log: logger.Named("imap")},
			StatePath: cfg.StatePath(),
			Log:       logger.Named("replies"),
		}
		found, err := t.Check(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d new reply(ies)\n", len(found))
		return nil
	},
}
