package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/barelyfunctional/site/internal/progress"
	"github.com/barelyfunctional/site/internal/site"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the site as static HTML",
	Long: `Renders every route to <output>/<route>/index.html, plus 404.html and the
stylesheets, so the site can be hosted by any static file server. The count
page talks to counter.remote_url.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("output", "site", "output directory")
	exportCmd.Flags().String("counter-url", "", "counter service base URL (overrides counter.remote_url)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger()
	s, err := newSite(cfg, logger, false)
	if err != nil {
		return err
	}

	outputDir, _ := cmd.Flags().GetString("output")
	counterURL, _ := cmd.Flags().GetString("counter-url")
	if counterURL == "" {
		counterURL = cfg.Counter.RemoteURL
	}

	pageCount, err := s.Export(site.ExportOptions{OutputDir: outputDir, CounterURL: counterURL}, progress.New(os.Stderr, logger))
	if err != nil {
		return fmt.Errorf("exporting site: %w", err)
	}

	fmt.Printf("Static site exported: %s (%d pages)\n", outputDir, pageCount)
	return nil
}
