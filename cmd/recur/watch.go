package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/amonks/recur/internal/metrics"
	"github.com/amonks/recur/internal/watch"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the vault and repeat projects as they are completed",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

var watchMetricsAddr string

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, like 127.0.0.1:9464")
	addConfirmFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	debounce, err := a.config.Watch.DebounceDuration()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	m.ObserveCache(a.vault.Cache())
	detector, handler := a.workflow(a.confirmer(), m)

	watcher, err := watch.New(a.vault, watch.Options{
		Debounce:   debounce,
		Dispatcher: detector,
		Workspace:  a.workspace,
		Logger:     a.console,
		OnEvent:    m.ObserveEvent,
		OnDrop:     m.ObserveDropped,
	})
	if err != nil {
		return err
	}
	handler.Refresher = watcher

	metricsErrs := make(chan error, 1)
	if watchMetricsAddr != "" {
		listener, err := net.Listen("tcp", watchMetricsAddr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", watchMetricsAddr, err)
		}
		a.console.Infof("Serving metrics on http://%s/metrics", listener.Addr())
		go func() {
			metricsErrs <- m.Serve(ctx, listener)
		}()
	}

	go func() {
		select {
		case <-watcher.Ready():
			a.console.Infof("Watching %s", a.vault.Root())
		case <-ctx.Done():
		}
	}()

	if err := watcher.Run(ctx); err != nil {
		return err
	}

	stop()
	if watchMetricsAddr != "" {
		if err := <-metricsErrs; err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("serve metrics: %w", err)
		}
	}
	return nil
}
