package main

import (
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"calpick/internal/capture"
	"calpick/internal/dialog"
	appLog "calpick/internal/log"
	"calpick/internal/picker"
	"calpick/internal/web"
)

var snapshotOpts struct {
	picker   pickerFlags
	out      string
	width    int
	height   int
	timeout  time.Duration
	fullPage bool
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Render the picker page in headless Chromium and save a PNG",
	Long: `snapshot starts a private HTTP server, opens a picker session and
captures the browser page. Scroll tasks queued by the first frame, such as
bringing the current year into view, are run by the browser driver before
the screenshot.`,
	Example: `  calpick snapshot --open-to year --out var/year.png
  calpick snapshot --months 2 --week-numbers`,
	Args: cobra.NoArgs,
	RunE: runSnapshot,
}

func init() {
	snapshotOpts.picker.register(snapshotCmd)
	fs := snapshotCmd.Flags()
	fs.StringVarP(&snapshotOpts.out, "out", "o", "calpick.png", "output PNG path")
	fs.IntVar(&snapshotOpts.width, "width", capture.DefaultWidth, "viewport width in pixels")
	fs.IntVar(&snapshotOpts.height, "height", capture.DefaultHeight, "viewport height in pixels")
	fs.DurationVar(&snapshotOpts.timeout, "timeout", capture.DefaultTimeoutSec*time.Second, "capture timeout")
	fs.BoolVar(&snapshotOpts.fullPage, "full-page", false, "capture the whole document")
}

// snapshotParams carries the command-line overrides into a picker session.
func snapshotParams(opts picker.Options) *dialog.Parameters {
	params := dialog.NewParameters().
		Add(web.ParamLocale, opts.Locale).
		Add(web.ParamOpenTo, opts.OpenTo).
		Add(web.ParamDisplayMonths, opts.DisplayMonths).
		Add(web.ParamMaxMonthColumns, opts.MaxMonthColumns).
		Add(web.ParamWeekNumbers, opts.ShowWeekNumbers)
	if opts.FirstDayOfWeek != nil {
		params.Add(web.ParamFirstDay, *opts.FirstDayOfWeek)
	}
	if opts.Month != nil {
		params.Add(web.ParamMonth, opts.Month)
	}
	if opts.Date != nil {
		params.Add(web.ParamDate, opts.Date)
	}
	return params
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	opts, err := snapshotOpts.picker.options(cmd, conf)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("open-to") {
		opts.OpenTo = picker.ViewYear
	}

	srv, err := web.NewServer(conf)
	if err != nil {
		return err
	}
	id, err := srv.ShowPicker("snapshot", snapshotParams(opts))
	if err != nil {
		return err
	}
	frame, err := srv.Frame(id)
	if err != nil {
		return err
	}
	scrollTo := make([]string, 0, len(frame.Tasks))
	for _, t := range frame.Tasks {
		if t.Type == "scroll" {
			scrollTo = append(scrollTo, t.ElementID)
		}
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(gctx, ln)
	})
	g.Go(func() error {
		// The server stops once the capture is done either way.
		defer cancel()
		pageURL := fmt.Sprintf("http://%s/?picker=%s&tasks=external", ln.Addr(), url.QueryEscape(id))
		return capture.CapturePNG(gctx, capture.Options{
			URL:        pageURL,
			OutputPath: snapshotOpts.out,
			Width:      snapshotOpts.width,
			Height:     snapshotOpts.height,
			Timeout:    snapshotOpts.timeout,
			ScrollTo:   scrollTo,
			FullPage:   snapshotOpts.fullPage,
		})
	})
	if err := g.Wait(); err != nil {
		return err
	}

	appLog.Info("snapshot saved", "path", snapshotOpts.out, "picker", id)
	fmt.Fprintln(cmd.OutOrStdout(), snapshotOpts.out)
	return nil
}
