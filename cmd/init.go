package cmd

import (
	"github.com/spf13/cobra"

	"github.com/barelyfunctional/site/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize blog configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the blog and writes a .blog.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
