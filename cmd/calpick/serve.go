package main

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"calpick/internal/config"
	"calpick/internal/ics"
	appLog "calpick/internal/log"
	"calpick/internal/web"
)

var listenAddr string

const idleSweepSchedule = "@every 1m"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the calendar grid and picker sessions over HTTP",
	Long: `serve starts the HTTP API and the browser picker page. When ICS
feeds are configured under marks.ics they are refreshed on the
marks.refresh schedule and their event days are marked in every grid.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "override listen address, e.g. 0.0.0.0:8080")
}

// newRefresher builds the marks refresher for the configured feeds.
func newRefresher(c *config.Config) *ics.Refresher {
	sources := make([]ics.Source, 0, len(c.Marks.ICS))
	for _, s := range c.Marks.ICS {
		id := s.ID
		if id == "" {
			id = s.Name
		}
		sources = append(sources, ics.Source{ID: id, URL: s.URL})
	}
	return ics.NewRefresher(ics.RefresherConfig{
		Fetcher:     ics.NewFetcher(c.Marks.CacheDir, nil),
		Sources:     sources,
		Location:    c.Location(),
		RangeMonths: c.Marks.RangeMonths,
	})
}

func runServe(cmd *cobra.Command, _ []string) error {
	if listenAddr != "" {
		conf.Listen = listenAddr
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	refresher := newRefresher(conf)
	srv, err := web.NewServer(conf, web.WithMarker(refresher.Marker()))
	if err != nil {
		return err
	}

	appLog.Info("calpick starting", "version", version, "listen", conf.Listen, "ics_count", len(conf.Marks.ICS))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx)
	})
	if len(conf.Marks.ICS) > 0 {
		g.Go(func() error {
			return refresher.Run(gctx, conf.Marks.Refresh)
		})
	}
	if conf.SessionIdleMinutes > 0 {
		g.Go(func() error {
			return sweepIdlePickers(gctx, srv, idleSweepSchedule)
		})
	}

	err = g.Wait()
	appLog.Info("calpick exiting")
	return err
}

// sweepIdlePickers closes idle picker sessions on schedule until ctx is done.
func sweepIdlePickers(ctx context.Context, srv *web.Server, schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { srv.CloseIdle() }); err != nil {
		return fmt.Errorf("idle sweep schedule %q: %w", schedule, err)
	}
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
