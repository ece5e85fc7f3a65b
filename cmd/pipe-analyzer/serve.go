package main

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/ritzau/pipe-analyzer/pkg/config"
	"github.com/ritzau/pipe-analyzer/pkg/logging"
	"github.com/ritzau/pipe-analyzer/pkg/metrics"
	"github.com/ritzau/pipe-analyzer/pkg/pubsub"
	"github.com/ritzau/pipe-analyzer/pkg/runner"
	"github.com/ritzau/pipe-analyzer/pkg/watcher"
	"github.com/ritzau/pipe-analyzer/pkg/web"
	"github.com/spf13/cobra"
)

const (
	watchQuietPeriod = 300 * time.Millisecond
	watchMaxWait     = 2 * time.Second
)

func (a *app) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve analysis results over HTTP, optionally re-analyzing on file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), cmd)
		},
	}

	cmd.Flags().Int("port", 8080, "HTTP port")
	cmd.Flags().Bool("watch", false, "re-analyze when the pipe table or config file changes")
	cmd.Flags().Bool("open", false, "open the API in a browser")
	return cmd
}

func (a *app) serve(ctx context.Context, cmd *cobra.Command) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reg := metrics.DefaultRegistry()
	publisher := pubsub.NewSSEPublisher()
	pubsub.ConfigureAnalysisTopics(publisher)
	server := web.NewServer(publisher, reg)

	r := runner.New(a.cfg,
		runner.WithServer(server),
		runner.WithPublisher(publisher),
		runner.WithMetrics(reg),
		runner.WithReload(func() (*config.Config, error) {
			return a.loadConfig(cmd)
		}),
	)

	// A broken network still gets a server; the API answers 503 until a
	// later run succeeds.
	if _, err := r.Run(ctx, runner.ReasonStartup); err != nil && !a.cfg.Watch {
		return err
	}

	if a.cfg.Watch {
		if err := a.startWatching(ctx, r); err != nil {
			return err
		}
	}

	if a.cfg.OpenBrowser {
		go func() {
			// Give the listener a moment to come up
			time.Sleep(500 * time.Millisecond)
			openBrowser(fmt.Sprintf("http://localhost:%d/api/summary", a.cfg.Port))
		}()
	}

	return server.Start(ctx, a.cfg.Port)
}

func (a *app) startWatching(ctx context.Context, r *runner.Runner) error {
	fw, err := watcher.NewFileWatcher(a.cfg.Input, a.configFile())
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		_ = fw.Stop()
		return err
	}

	debouncer := watcher.NewDebouncer(fw.Events(), watchQuietPeriod, watchMaxWait)
	debouncer.Start(ctx)
	go r.Watch(ctx, debouncer.Output())

	logging.Info("Watching for changes", "input", a.cfg.Input, "config", a.configFile())
	return nil
}

func openBrowser(url string) {
	var name string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		name = "open"
		args = []string{url}
	case "linux":
		name = "xdg-open"
		args = []string{url}
	case "windows":
		name = "cmd"
		args = []string{"/c", "start", url}
	default:
		logging.Warn("Cannot open browser on this platform", "os", runtime.GOOS)
		return
	}

	if err := exec.Command(name, args...).Start(); err != nil {
		logging.Warn("Failed to open browser", "error", err)
	}
}
