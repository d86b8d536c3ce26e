package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models available to the configured credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		backend, _, err := newBackends(ctx)
		if err != nil {
			return err
		}

		names, err := backend.ListModels(ctx)
		if err != nil {
			return err
		}
		for _, name := range names {
			marker := " "
			if name == "models/"+cfg.Provider.Model || name == cfg.Provider.Model {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, name)
		}
		return nil
	},
}
