package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/mention-cli/internal/research"
)

var brandsCmd = &cobra.Command{
	Use:   "brands",
	Short: "List the brands configured for research",
	RunE: func(cmd *cobra.Command, args []string) error {
		brands, err := research.LoadBrands(cfg.Brands.Path)
		if err != nil {
			return err
		}
		if len(brands) == 0 {
			fmt.Println("no brands configured")
			return nil
		}

		for _, b := range brands {
			fmt.Printf("%-20s %-15s keywords: %s\n", b.Name, b.Category, strings.Join(b.Keywords, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(brandsCmd)
}
