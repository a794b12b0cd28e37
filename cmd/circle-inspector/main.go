package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	pkgerrors "github.com/pkg/errors"

	"circle-inspector/internal/debug/timing"
	"circle-inspector/internal/logger"
	"circle-inspector/internal/models"
	"circle-inspector/internal/opencv/memory"
	"circle-inspector/internal/opencv/safe"
	"circle-inspector/internal/pipeline"
	"circle-inspector/internal/processing/chain"
	"circle-inspector/internal/views"
)

const (
	appName    = "circle-inspector"
	appVersion = "1.0.0"
	stdinPath  = "-"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return 2
	}
	if opts.version {
		fmt.Fprintf(stdout, "%s %s\n", appName, appVersion)
		return 0
	}

	cfg, err := opts.configure()
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return 2
	}

	log := logger.NewConsoleLogger(logger.LevelFromEnv())
	if err := inspect(ctx, opts, cfg, stdin, log); err != nil {
		log.Error("main", err, map[string]interface{}{"image": opts.imagePath})
		return 1
	}
	return 0
}

func inspect(ctx context.Context, opts options, cfg models.Config, stdin io.Reader, log logger.Logger) error {
	tracker := memory.NewTracker()
	defer logMemory(log, tracker)

	img, err := loadInput(opts.imagePath, stdin, tracker)
	if err != nil {
		return err
	}
	defer img.Close()

	coordinator, err := pipeline.NewCoordinator(cfg, log, timing.NewTracker(log))
	if err != nil {
		return err
	}

	if opts.debugDir != "" {
		if err := saveDebugStages(ctx, coordinator, img, opts.debugDir, log); err != nil {
			return err
		}
	}

	result, err := coordinator.Run(ctx, img)
	if err != nil {
		return pkgerrors.Wrapf(err, "processing %s", opts.imagePath)
	}
	defer result.Close()

	if opts.savePath != "" {
		if err := pipeline.SaveImage(opts.savePath, result.Processed); err != nil {
			return err
		}
		log.Info("main", "processed image saved", map[string]interface{}{"path": opts.savePath})
	}

	presenters := make([]pipeline.Presenter, 0, 2)
	if opts.figurePath != "" {
		presenters = append(presenters, pipeline.FigureSaver{Path: opts.figurePath})
	}
	if !opts.noWindow {
		window := views.NewWindowPresenter(log, appVersion)
		window.SetStatus(statusLine(result.Summary))
		presenters = append(presenters, window)
	}

	for _, p := range presenters {
		if err := p.Present(result.Original, result.Processed); err != nil {
			return pkgerrors.Wrap(err, "presenting result")
		}
	}

	return nil
}

// loadInput reads the image from path, or decodes it from stdin when path is "-"
func loadInput(path string, stdin io.Reader, tracker *memory.Tracker) (*safe.Mat, error) {
	if path != stdinPath {
		return pipeline.LoadImage(path, tracker)
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, &models.DecodeError{Path: path, Err: err}
	}
	return pipeline.DecodeImage(data, tracker)
}

func saveDebugStages(ctx context.Context, coordinator *pipeline.Coordinator, img *safe.Mat, dir string, log logger.Logger) error {
	stages, err := coordinator.Cleaner().Stages(ctx, img)
	if err != nil {
		return pkgerrors.Wrap(err, "cleaning stages")
	}
	defer chain.CloseStages(stages)

	paths, err := pipeline.SaveStages(dir, stages)
	if err != nil {
		return err
	}
	log.Debug("main", "cleaning stages saved", map[string]interface{}{
		"dir":    dir,
		"stages": len(paths),
	})
	return nil
}

func statusLine(s pipeline.Summary) string {
	line := fmt.Sprintf("%d contours, %d large circles, %d small circles, %d non-circles",
		s.Contours, s.LargeCircles, s.SmallCircles, s.NonCircles)
	if s.HoughFound {
		line += fmt.Sprintf(", %d hough circles", s.HoughCircles)
	}
	return line
}

// logMemory reports the raster bookkeeping once every Mat of the run is released
func logMemory(log logger.Logger, tracker *memory.Tracker) {
	stats := tracker.GetStats()
	fields := map[string]interface{}{
		"allocations": stats.AllocationCount,
		"allocated":   stats.TotalAllocated,
		"released":    stats.TotalDeallocated,
		"live":        stats.ActiveMats,
	}
	if tracker.Live() > 0 {
		fields["live_tags"] = tracker.LiveTags()
		log.Warning("main", "rasters still open after run", fields)
		return
	}
	log.Debug("main", "raster memory released", fields)
}
