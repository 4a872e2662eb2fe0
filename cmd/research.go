package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/mention-cli/internal/report"
	"github.com/sells-group/mention-cli/internal/research"
)

var researchJSON bool

var researchCmd = &cobra.Command{
	Use:   "research <brand>",
	Short: "Run the full research pipeline for one configured brand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		brands, err := research.LoadBrands(cfg.Brands.Path)
		if err != nil {
			return err
		}
		brand, ok := research.FindBrand(brands, args[0])
		if !ok {
			return eris.Errorf("unknown brand %q (see `mention-cli brands`)", args[0])
		}

		runner, err := buildRunner(cfg)
		if err != nil {
			return err
		}

		progress := research.NewProgress(64)
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for msg := range progress.Events() {
				fmt.Fprintln(os.Stderr, msg)
			}
		}()

		result, err := runner.Run(ctx, brand, progress)
		progress.Close()
		wg.Wait()
		if err != nil {
			return err
		}

		if researchJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		summary := report.Build(result.Brand, result.Posts, result.Diagnostics)
		fmt.Print(report.Render(summary, result.Diagnostics))
		return nil
	},
}

func init() {
	researchCmd.Flags().BoolVar(&researchJSON, "json", false, "emit the full judged post set as JSON")
	rootCmd.AddCommand(researchCmd)
}
