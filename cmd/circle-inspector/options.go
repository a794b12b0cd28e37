package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"circle-inspector/internal/models"
)

type options struct {
	imagePath  string
	draw       string
	captions   string
	output     string
	configPath string
	savePath   string
	figurePath string
	debugDir   string
	noWindow   bool
	version    bool
}

func parseOptions(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.imagePath, "image", "", "Path to the input image, or - for stdin (required)")
	fs.StringVar(&opts.draw, "draw", string(models.DrawHough), "Circle outlines to draw: contour or hough")
	fs.StringVar(&opts.captions, "captions", "no", "Draw shape and size captions: yes or no")
	fs.StringVar(&opts.output, "output", string(models.OutputOriginal), "Annotation base: original or binary")
	fs.StringVar(&opts.configPath, "config", "", "YAML file overriding the default thresholds")
	fs.StringVar(&opts.savePath, "save", "", "Write the processed image to this path")
	fs.StringVar(&opts.figurePath, "figure", "", "Write the side-by-side figure to this path")
	fs.StringVar(&opts.debugDir, "debug-dir", "", "Write every cleaning stage to this directory")
	fs.BoolVar(&opts.noWindow, "no-window", false, "Do not open the result window")
	fs.BoolVar(&opts.version, "version", false, "Print the version and exit")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.version {
		return opts, nil
	}
	if opts.imagePath == "" {
		return opts, errors.New("the --image flag is required")
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	return opts, nil
}

// configure loads the config file and applies the command-line switches on top of it
func (o options) configure() (models.Config, error) {
	cfg, err := models.LoadConfig(o.configPath)
	if err != nil {
		return cfg, err
	}

	draw, err := models.ParseDrawMode(o.draw)
	if err != nil {
		return cfg, errors.Wrap(err, "--draw")
	}
	captions, err := models.ParseCaptions(o.captions)
	if err != nil {
		return cfg, errors.Wrap(err, "--captions")
	}
	output, err := models.ParseOutputMode(o.output)
	if err != nil {
		return cfg, errors.Wrap(err, "--output")
	}

	cfg.Run = models.RunConfig{Draw: draw, Captions: captions, Output: output}
	return cfg, nil
}
