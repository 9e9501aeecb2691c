package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/barelyfunctional/site/internal/widget"
)

var (
	countURL   string
	countClick bool
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Show the click counter, optionally clicking it",
	Long: `Mounts the counter widget against a running counter service and prints
its state. With --click the button is pressed once and the count the service
reports back is printed.`,
	RunE: runCount,
}

func init() {
	countCmd.Flags().StringVar(&countURL, "url", "", "counter service base URL (overrides counter.remote_url)")
	countCmd.Flags().BoolVar(&countClick, "click", false, "press the button once")
	rootCmd.AddCommand(countCmd)
}

func runCount(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	base := countURL
	if base == "" {
		base = cfg.Counter.RemoteURL
	}
	client := widget.NewClient(base, &http.Client{Timeout: 10 * time.Second})

	var failed bool
	w := widget.New(client, loggerFunc(func(msg string, args ...any) {
		failed = true
		logger.Error(msg, args...)
	}))
	defer w.Unmount()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	w.Mount(ctx)
	w.Wait()
	if failed {
		return fmt.Errorf("could not read count from %s", base)
	}
	fmt.Printf("Count: %d\n", w.Snapshot().Count)

	if !countClick {
		return nil
	}
	w.Click(ctx)
	w.Wait()
	if failed {
		return fmt.Errorf("increment failed; count is still %d", w.Snapshot().Count)
	}
	fmt.Printf("Clicked! Count: %d\n", w.Snapshot().Count)
	return nil
}

// loggerFunc adapts a function to widget.Logger.
type loggerFunc func(msg string, args ...any)

func (f loggerFunc) Error(msg string, args ...any) { f(msg, args...) }
