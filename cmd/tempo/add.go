package main

import (
	"fmt"
	"time"

	"github.com/dori/tempo/internal/model"
	"github.com/spf13/cobra"
)

func addCmd(configPath *string) *cobra.Command {
	var remind string

	cmd := &cobra.Command{
		Use:   "add <title> <description>",
		Short: "Add a todo",
		Long: `Add a todo without starting the TUI.

The reminder accepts a duration (+15m), a clock time (16:30, tomorrow 09:00),
YYYY-MM-DDTHH:MM in local time or RFC3339.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := model.Draft{Title: args[0], Description: args[1]}
			if remind != "" {
				at, err := model.ParseRemind(remind, time.Now())
				if err != nil {
					return err
				}
				draft.RemindIn = &at
			}

			a, err := openCommand(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			todo, err := a.Controller.Create(cmd.Context(), draft)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Added #%d: %s\n", todo.ID, todo.Title)
			if todo.RemindIn != nil {
				fmt.Fprintf(out, "  Reminder: %s\n", todo.RemindIn.Local().Format("Mon, Jan 2 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&remind, "remind", "r", "", "Reminder time")
	return cmd
}
