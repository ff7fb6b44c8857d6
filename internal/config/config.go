// Package config loads lane-tools settings from YAML.
package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/lane-tools/internal/detection"
	"github.com/ironsheep/lane-tools/internal/imaging"
	"github.com/ironsheep/lane-tools/internal/lane"
	"github.com/ironsheep/lane-tools/internal/pipeline"
	"github.com/ironsheep/lane-tools/internal/render"
)

// EnvLogLevel overrides Logging.Level when set.
const EnvLogLevel = "LANE_TOOLS_LOG_LEVEL"

// Config is the full lane-tools configuration.
type Config struct {
	Lane    LaneConfig    `yaml:"lane"`
	ROI     pipeline.ROI  `yaml:"roi"`
	Blur    BlurConfig    `yaml:"blur"`
	Canny   CannyConfig   `yaml:"canny"`
	Hough   HoughConfig   `yaml:"hough"`
	Draw    DrawConfig    `yaml:"draw"`
	Batch   BatchConfig   `yaml:"batch"`
	Logging LoggingConfig `yaml:"logging"`
}

// LaneConfig configures classification and aggregation.
type LaneConfig struct {
	SlopeThreshold float64      `yaml:"slope_threshold"`
	Anchors        lane.Anchors `yaml:"anchors"`
}

// BlurConfig configures the Gaussian blur.
type BlurConfig struct {
	Size  int     `yaml:"size"`
	Sigma float64 `yaml:"sigma"` // 0 derives sigma from size
}

// CannyConfig holds the hysteresis thresholds.
type CannyConfig struct {
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

// HoughConfig configures segment extraction. Theta is in degrees here.
type HoughConfig struct {
	Rho           float64 `yaml:"rho"`
	ThetaDegrees  float64 `yaml:"theta_degrees"`
	Threshold     int     `yaml:"threshold"`
	MinLineLength int     `yaml:"min_line_length"`
	MaxLineGap    int     `yaml:"max_line_gap"`
	Seed          int64   `yaml:"seed"`
}

// DrawConfig is the lane line style.
type DrawConfig struct {
	Color     string `yaml:"color"` // hex, e.g. "#00ff00"
	Thickness int    `yaml:"thickness"`
}

// BatchConfig configures multi-frame runs.
type BatchConfig struct {
	Workers int `yaml:"workers"` // 0 uses GOMAXPROCS
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default returns the tuning the detector ships with.
func Default() *Config {
	params := imaging.DefaultParams()
	style := render.DefaultStyle()
	return &Config{
		Lane: LaneConfig{
			SlopeThreshold: lane.DefaultSlopeThreshold,
			Anchors:        lane.DefaultAnchors,
		},
		ROI: pipeline.DefaultROI(),
		Blur: BlurConfig{
			Size:  params.BlurSize,
			Sigma: params.BlurSigma,
		},
		Canny: CannyConfig{
			Low:  params.CannyLow,
			High: params.CannyHigh,
		},
		Hough: HoughConfig{
			Rho:           params.Hough.Rho,
			ThetaDegrees:  params.Hough.Theta * 180 / math.Pi,
			Threshold:     params.Hough.Threshold,
			MinLineLength: params.Hough.MinLineLength,
			MaxLineGap:    params.Hough.MaxLineGap,
			Seed:          params.Hough.Seed,
		},
		Draw: DrawConfig{
			Color:     render.Hex(style.Color),
			Thickness: style.Thickness,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults and applies environment
// overrides. Keys missing from the file keep their default values. An empty
// path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config")
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write config")
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}
}

// Validate rejects settings the detector cannot run with.
func (c *Config) Validate() error {
	if c.Lane.SlopeThreshold < 0 {
		return errors.Errorf("lane.slope_threshold must not be negative, got %v", c.Lane.SlopeThreshold)
	}
	if c.Lane.Anchors.Bottom <= 0 || c.Lane.Anchors.Top <= 0 {
		return errors.New("lane.anchors must be positive fractions")
	}
	if c.Lane.Anchors.Bottom == c.Lane.Anchors.Top {
		return errors.New("lane.anchors bottom and top must differ")
	}

	switch c.ROI.Units {
	case pipeline.UnitsFraction, pipeline.UnitsPixel:
	default:
		return errors.Errorf("roi.units must be %q or %q, got %q",
			pipeline.UnitsFraction, pipeline.UnitsPixel, c.ROI.Units)
	}
	if len(c.ROI.Vertices) < 3 {
		return errors.Errorf("roi needs at least 3 vertices, got %d", len(c.ROI.Vertices))
	}

	if c.Blur.Size < 1 || c.Blur.Size%2 == 0 {
		return errors.Errorf("blur.size must be a positive odd number, got %d", c.Blur.Size)
	}
	if c.Blur.Sigma < 0 {
		return errors.Errorf("blur.sigma must not be negative, got %v", c.Blur.Sigma)
	}

	if c.Canny.Low < 0 || c.Canny.High < c.Canny.Low {
		return errors.Errorf("canny thresholds must satisfy 0 <= low <= high, got %v/%v",
			c.Canny.Low, c.Canny.High)
	}

	if c.Hough.Rho <= 0 || c.Hough.ThetaDegrees <= 0 {
		return errors.New("hough.rho and hough.theta_degrees must be positive")
	}
	if c.Hough.Threshold < 1 {
		return errors.Errorf("hough.threshold must be at least 1, got %d", c.Hough.Threshold)
	}
	if c.Hough.MinLineLength < 0 || c.Hough.MaxLineGap < 0 {
		return errors.New("hough.min_line_length and hough.max_line_gap must not be negative")
	}

	if _, err := render.ParseColor(c.Draw.Color); err != nil {
		return errors.Wrap(err, "draw.color")
	}
	if c.Draw.Thickness < 1 {
		return errors.Errorf("draw.thickness must be at least 1, got %d", c.Draw.Thickness)
	}

	if c.Batch.Workers < 0 {
		return errors.Errorf("batch.workers must not be negative, got %d", c.Batch.Workers)
	}

	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return errors.Wrap(err, "logging.level")
	}
	return nil
}

// ImagingParams returns the pure-Go image operation parameters.
func (c *Config) ImagingParams() imaging.Params {
	return imaging.Params{
		BlurSize:  c.Blur.Size,
		BlurSigma: c.Blur.Sigma,
		CannyLow:  c.Canny.Low,
		CannyHigh: c.Canny.High,
		Hough: detection.HoughParams{
			Rho:           c.Hough.Rho,
			Theta:         c.Hough.ThetaDegrees * math.Pi / 180,
			Threshold:     c.Hough.Threshold,
			MinLineLength: c.Hough.MinLineLength,
			MaxLineGap:    c.Hough.MaxLineGap,
			Seed:          c.Hough.Seed,
		},
	}
}

// Style returns the draw style.
func (c *Config) Style() (render.Style, error) {
	col, err := render.ParseColor(c.Draw.Color)
	if err != nil {
		return render.Style{}, err
	}
	return render.Style{Color: col, Thickness: c.Draw.Thickness}, nil
}

// PipelineOptions converts the configuration to pipeline options.
func (c *Config) PipelineOptions(logger *zap.Logger) ([]pipeline.Option, error) {
	style, err := c.Style()
	if err != nil {
		return nil, err
	}
	return []pipeline.Option{
		pipeline.WithSlopeThreshold(c.Lane.SlopeThreshold),
		pipeline.WithAnchors(c.Lane.Anchors),
		pipeline.WithROI(c.ROI),
		pipeline.WithStyle(style),
		pipeline.WithLogger(logger),
	}, nil
}

// LogLevel returns the configured level, defaulting to info.
func (c *Config) LogLevel() zapcore.Level {
	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}
