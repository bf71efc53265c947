package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dori/tempo/internal/derive"
	"github.com/dori/tempo/internal/model"
	"github.com/spf13/cobra"
)

func listCmd(configPath *string) *cobra.Command {
	var done, open bool
	var date string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List todos grouped by date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if done && open {
				return errors.New("--done and --open are mutually exclusive")
			}
			if date != "" {
				if _, err := time.Parse(model.DateLayout, date); err != nil {
					return fmt.Errorf("invalid --date %q, want YYYY-MM-DD", date)
				}
			}

			ctx := cmd.Context()
			a, err := openCommand(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			var todos []model.Todo
			switch {
			case date != "":
				todos, err = a.Store.FindUpdatedOn(ctx, date)
			case done || open:
				todos, err = a.Store.FindByStatus(ctx, done)
			default:
				todos, err = a.Store.GetAll(ctx)
			}
			if err != nil {
				return err
			}
			if date != "" && (done || open) {
				completed, uncompleted := derive.Partition(todos)
				todos = uncompleted
				if done {
					todos = completed
				}
			}

			printTodos(cmd.OutOrStdout(), todos, time.Now())
			return nil
		},
	}

	cmd.Flags().BoolVar(&done, "done", false, "Only completed todos")
	cmd.Flags().BoolVar(&open, "open", false, "Only open todos")
	cmd.Flags().StringVar(&date, "date", "", "Only todos updated on this UTC date (YYYY-MM-DD)")
	return cmd
}

func printTodos(w io.Writer, todos []model.Todo, now time.Time) {
	if len(todos) == 0 {
		fmt.Fprintln(w, "No todos.")
		return
	}

	for _, s := range derive.Sections(todos) {
		if s.Groups.Count() == 0 {
			continue
		}
		if s.Completed {
			fmt.Fprintf(w, "Done (%d)\n", s.Groups.Count())
		} else {
			fmt.Fprintf(w, "Open (%d)\n", s.Groups.Count())
		}
		for _, key := range s.Groups.Keys {
			fmt.Fprintf(w, "  %s\n", key)
			for _, t := range s.Groups.ByKey[key] {
				fmt.Fprintf(w, "    %s\n", formatTodo(t, now))
			}
		}
	}
}

func formatTodo(t model.Todo, now time.Time) string {
	box := "[ ]"
	if t.Status {
		box = "[x]"
	}
	line := fmt.Sprintf("%s #%d %s: %s", box, t.ID, t.Title, t.Description)
	if t.RemindIn != nil && !t.Status {
		line += fmt.Sprintf(" (remind %s)", model.Humanize(*t.RemindIn, now))
	}
	if d, ok := t.SessionElapsed(now); ok {
		state := "ended"
		if t.SessionRunning() {
			state = "running"
		}
		line += fmt.Sprintf(" [%s %s]", state, model.Decompose(d))
	}
	return line
}
