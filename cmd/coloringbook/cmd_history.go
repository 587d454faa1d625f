package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and manage the generation history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List history items, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newCoreService(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = service.Close() }()

		items, err := service.History(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tMODE\tRESULTS\tPROMPT")
		for _, item := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				item.ID, item.CreatedAt.Local().Format("2006-01-02 15:04"), item.Mode, len(item.Results), firstLine(item.Prompt))
		}
		return w.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Print one history item as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newCoreService(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = service.Close() }()

		item, err := service.HistoryItem(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(item)
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete one history item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newCoreService(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = service.Close() }()
		return service.DeleteHistoryItem(cmd.Context(), args[0])
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the whole history",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newCoreService(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = service.Close() }()
		return service.ClearHistory(cmd.Context())
	},
}

func init() {
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd, historyClearCmd)
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i] + " ..."
		}
	}
	return s
}
