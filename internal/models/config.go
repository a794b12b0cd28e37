package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DrawMode selects which detector's circle outlines reach the processed image
type DrawMode string

const (
	DrawContour DrawMode = "contour"
	DrawHough   DrawMode = "hough"
)

// OutputMode selects the base layer annotations are drawn onto
type OutputMode string

const (
	OutputOriginal OutputMode = "original"
	OutputBinary   OutputMode = "binary"
)

// DegeneratePolicy decides what happens when a contour has zero perimeter
type DegeneratePolicy string

const (
	// DegenerateHalt stops examining every remaining contour of the image.
	DegenerateHalt DegeneratePolicy = "halt"
	// DegenerateSkip drops only the offending contour.
	DegenerateSkip DegeneratePolicy = "skip"
	// DegenerateAbort fails the classification with a DegenerateContourError.
	DegenerateAbort DegeneratePolicy = "abort"
)

// ParseDrawMode accepts "contour" or "hough"
func ParseDrawMode(value string) (DrawMode, error) {
	switch DrawMode(value) {
	case DrawContour, DrawHough:
		return DrawMode(value), nil
	default:
		return "", fmt.Errorf("invalid draw mode %q: expected contour or hough", value)
	}
}

// ParseOutputMode accepts "original" or "binary"
func ParseOutputMode(value string) (OutputMode, error) {
	switch OutputMode(value) {
	case OutputOriginal, OutputBinary:
		return OutputMode(value), nil
	default:
		return "", fmt.Errorf("invalid output mode %q: expected original or binary", value)
	}
}

// ParseCaptions accepts "yes" or "no"
func ParseCaptions(value string) (bool, error) {
	switch value {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	default:
		return false, fmt.Errorf("invalid captions value %q: expected yes or no", value)
	}
}

// RunConfig holds the three user-facing switches of a pipeline run
type RunConfig struct {
	Draw     DrawMode   `yaml:"draw"`
	Captions bool       `yaml:"captions"`
	Output   OutputMode `yaml:"output"`
}

// CleanerParams parameterizes binarization and noise removal
type CleanerParams struct {
	// OpeningRadius is the disk radius, in pixels, of the distance-transform opening.
	OpeningRadius float32 `yaml:"opening_radius"`
	CannyLow      float32 `yaml:"canny_low"`
	CannyHigh     float32 `yaml:"canny_high"`
	// InvertForeground complements the Otsu mask before opening, so dark objects on a
	// light background are opened as foreground.
	InvertForeground bool `yaml:"invert_foreground"`
}

// ClassifierParams holds the contour classification thresholds
type ClassifierParams struct {
	// Pi defaults to 3.14; the circularity threshold is tuned against that value.
	Pi                  float64          `yaml:"pi"`
	MinCircularity      float64          `yaml:"min_circularity"`
	MinVertices         int              `yaml:"min_vertices"`
	ApproxEpsilonFactor float64          `yaml:"approx_epsilon_factor"`
	DiameterThreshold   int              `yaml:"diameter_threshold"`
	OnDegenerate        DegeneratePolicy `yaml:"on_degenerate"`
}

// HoughParams mirrors the HoughCircles gradient-method arguments
type HoughParams struct {
	DP        float64 `yaml:"dp"`
	MinDist   float64 `yaml:"min_dist"`
	Param1    float64 `yaml:"param1"`
	Param2    float64 `yaml:"param2"`
	MinRadius int     `yaml:"min_radius"`
	MaxRadius int     `yaml:"max_radius"`
}

// AnnotationStyle describes how outlines and captions are rendered.
// Colors are hex strings (#RRGGBB).
type AnnotationStyle struct {
	OutlineColor      string  `yaml:"outline_color"`
	OutlineThickness  int     `yaml:"outline_thickness"`
	CircleTextColor   string  `yaml:"circle_text_color"`
	NonCircleColor    string  `yaml:"non_circle_text_color"`
	FontScale         float64 `yaml:"font_scale"`
	TextThickness     int     `yaml:"text_thickness"`
	SecondLineOffsetY int     `yaml:"second_line_offset_y"`
}

// Config is the complete, explicit configuration of the pipeline
type Config struct {
	Run        RunConfig        `yaml:"run"`
	Cleaner    CleanerParams    `yaml:"cleaner"`
	Classifier ClassifierParams `yaml:"classifier"`
	Hough      HoughParams      `yaml:"hough"`
	Annotation AnnotationStyle  `yaml:"annotation"`
}

func DefaultCleanerParams() CleanerParams {
	return CleanerParams{
		OpeningRadius:    10,
		CannyLow:         1,
		CannyHigh:        255,
		InvertForeground: false,
	}
}

func DefaultClassifierParams() ClassifierParams {
	return ClassifierParams{
		Pi:                  3.14,
		MinCircularity:      0.78,
		MinVertices:         11,
		ApproxEpsilonFactor: 0.01,
		DiameterThreshold:   10,
		OnDegenerate:        DegenerateHalt,
	}
}

func DefaultHoughParams() HoughParams {
	return HoughParams{
		DP:        1.134,
		MinDist:   50,
		Param1:    50,
		Param2:    30,
		MinRadius: 5,
		MaxRadius: 120,
	}
}

func DefaultAnnotationStyle() AnnotationStyle {
	return AnnotationStyle{
		OutlineColor:      "#0000FF",
		OutlineThickness:  2,
		CircleTextColor:   "#0000FF",
		NonCircleColor:    "#FF00FF",
		FontScale:         0.5,
		TextThickness:     1,
		SecondLineOffsetY: 15,
	}
}

// DefaultConfig returns the configuration matching the command-line defaults
func DefaultConfig() Config {
	return Config{
		Run: RunConfig{
			Draw:     DrawHough,
			Captions: false,
			Output:   OutputOriginal,
		},
		Cleaner:    DefaultCleanerParams(),
		Classifier: DefaultClassifierParams(),
		Hough:      DefaultHoughParams(),
		Annotation: DefaultAnnotationStyle(),
	}
}

// Validate rejects values the pipeline cannot run with
func (c Config) Validate() error {
	if _, err := ParseDrawMode(string(c.Run.Draw)); err != nil {
		return err
	}
	if _, err := ParseOutputMode(string(c.Run.Output)); err != nil {
		return err
	}

	if c.Cleaner.OpeningRadius < 0 {
		return fmt.Errorf("opening_radius must be non-negative, got: %v", c.Cleaner.OpeningRadius)
	}
	if c.Cleaner.CannyLow < 0 || c.Cleaner.CannyHigh < c.Cleaner.CannyLow {
		return fmt.Errorf("canny thresholds must satisfy 0 <= low <= high, got: %v/%v",
			c.Cleaner.CannyLow, c.Cleaner.CannyHigh)
	}

	if c.Classifier.Pi <= 0 {
		return fmt.Errorf("pi must be positive, got: %v", c.Classifier.Pi)
	}
	if c.Classifier.ApproxEpsilonFactor <= 0 {
		return fmt.Errorf("approx_epsilon_factor must be positive, got: %v", c.Classifier.ApproxEpsilonFactor)
	}
	switch c.Classifier.OnDegenerate {
	case DegenerateHalt, DegenerateSkip, DegenerateAbort:
	default:
		return fmt.Errorf("on_degenerate must be halt, skip or abort, got: %q", c.Classifier.OnDegenerate)
	}

	if c.Hough.DP <= 0 || c.Hough.MinDist <= 0 {
		return fmt.Errorf("hough dp and min_dist must be positive, got: %v/%v", c.Hough.DP, c.Hough.MinDist)
	}
	if c.Hough.MinRadius < 0 || (c.Hough.MaxRadius > 0 && c.Hough.MaxRadius < c.Hough.MinRadius) {
		return fmt.Errorf("hough radius range invalid: [%d, %d]", c.Hough.MinRadius, c.Hough.MaxRadius)
	}

	if c.Annotation.OutlineThickness <= 0 {
		return fmt.Errorf("outline_thickness must be positive, got: %d", c.Annotation.OutlineThickness)
	}

	return nil
}

// LoadConfig reads a YAML file on top of DefaultConfig. An empty path or a missing
// file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}
