package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rohzzn/medical-rag/internal/api"
)

func init() {
	rootCmd.AddCommand(modeCmd)
}

var modeCmd = &cobra.Command{
	Use:   "mode <hybrid|vector|vector_cypher>",
	Short: "Set the retriever mode for subsequent queries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := api.RetrieverMode(args[0])
		if !mode.Valid() {
			return fmt.Errorf("unknown retriever mode %q (valid: %v)", args[0], api.Modes())
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		client := api.New(cfg.APIBaseURL, store)
		if err := client.SetRetrieverMode(cmd.Context(), mode); err != nil {
			return fmt.Errorf("set retriever mode: %w", err)
		}

		fmt.Printf("Retriever mode set to %s.\n", mode)
		return nil
	},
}
