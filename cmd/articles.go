package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var articlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "List registered articles",
	Long:  `Loads the content and prints every article's slug, date, topic and title. Fails on duplicate or reserved slugs, like serve does.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := newSite(cfg, newLogger(), false)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SLUG\tDATE\tTOPIC\tTITLE")
		for _, a := range s.Registry().All() {
			date := "-"
			if !a.Date.IsZero() {
				date = a.Date.Format("2006-01-02")
			}
			topic := a.Topic
			if topic == "" {
				topic = "-"
			}
			fmt.Fprintf(tw, "/%s\t%s\t%s\t%s\n", a.Slug, date, topic, a.Title)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(articlesCmd)
}
