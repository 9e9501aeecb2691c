package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/barelyfunctional/site/internal/counter"
	"github.com/barelyfunctional/site/internal/server"
	"github.com/barelyfunctional/site/internal/watch"
)

var (
	servePort  int
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the blog and the click counter API",
	Long: `Starts the HTTP server: every shell page and article, the GET/PUT /count
API, /healthz and /metrics. With --watch and a content directory configured,
edits to the content are picked up without a restart and open pages reload.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (overrides server.port)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload content on change (requires content.dir)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	watching := serveWatch && cfg.Content.Dir != ""
	if serveWatch && !watching {
		fmt.Fprintln(os.Stderr, "Warning: --watch needs content.dir; serving bundled content without watching")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newSite(cfg, logger, watching)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := server.New(server.Config{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		TrustProxy:     cfg.Server.TrustProxy,
	}, logger)

	if store != nil {
		var limiter *counter.RateLimiter
		if cfg.Counter.RatePerSecond > 0 {
			limiter = counter.NewRateLimiter(rate.Limit(cfg.Counter.RatePerSecond), cfg.Counter.Burst)
		}
		counter.RegisterRoutes(srv.Router(), store, limiter, logger)
	} else {
		logger.Warn("counter backend disabled; /count is not served")
	}
	s.RegisterRoutes(srv.Router())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if watching {
		w, err := watch.New(cfg.Content.Dir, watch.DefaultDebounce, func() { s.Reload() }, logger)
		if err != nil {
			stop()
			g.Wait()
			return err
		}
		g.Go(func() error { return w.Run(gctx) })
		logger.Info("watching content", "dir", cfg.Content.Dir)
	}

	fmt.Fprintf(os.Stderr, "blog %s serving %d articles at http://localhost:%d\n", Version, s.Registry().Len(), cfg.Server.Port)
	return g.Wait()
}
