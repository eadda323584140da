package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"evolve-engine/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "List contacted threads",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := store.LoadState(cfg.StatePath())
		if err != nil && !errors.Is(err, store.ErrCorruptState) {
			return err
		}
		if err != nil {
			logger.Warn("state file unreadable", zap.Error(err))
		}
		return printState(cmd.OutOrStdout(), st)
	},
}

func printState(w io.Writer, st *store.RunState) error {
	urls := make([]string, 0, len(st.Contacted))
	for u := range st.Contacted {
		urls = append(urls, u)
	}
	sort.Slice(urls, func(i, j int) bool {
		return st.Contacted[urls[i]].SentAt.Before(st.Contacted[urls[j]].SentAt)
	})

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SENT\tEMAIL\tKEYWORD\tREPLIED\tTHREAD")
	for _, u := range urls {
		rec := st.Contacted[u]
		replied := "-"
		if rec.RepliedAt != nil {
			replied = rec.RepliedAt.Format(time.DateOnly)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", rec.SentAt.Format(time.DateOnly), rec.Email, rec.Keyword, replied, u)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d thread(s) contacted\n", len(urls))
	return err
}
