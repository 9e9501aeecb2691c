package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/barelyfunctional/site/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "blog",
	Short: "Barely Functional blog server",
	Long: `blog serves a personal blog and portfolio: Markdown articles with
highlighted code, a navigation shell, and a small click counter backed by
SQLite or Postgres. It can also export the whole site as static HTML.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
