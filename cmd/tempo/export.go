package main

import (
	"fmt"

	"github.com/dori/tempo/internal/export"
	"github.com/spf13/cobra"
)

func exportCmd(configPath *string) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all todos to " + export.FileName,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openCommand(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if dir == "" {
				dir = a.Config.DataDir
			}
			todos := a.Controller.Todos()
			path, err := export.WriteFile(dir, todos)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d todos to %s\n", len(todos), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "output", "o", "", "Output directory (default: data dir)")
	return cmd
}
