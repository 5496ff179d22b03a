// Package config aggregates the pipeline settings, loads JSON overrides and
// reads endpoint settings from the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ironsheep/pepper-quality-mcp/internal/detection"
	"github.com/ironsheep/pepper-quality-mcp/internal/mask"
	"github.com/ironsheep/pepper-quality-mcp/internal/quality"
	"github.com/ironsheep/pepper-quality-mcp/internal/validate"
)

// Environment variables read by FromEnv.
const (
	EnvDetectorURL        = "PEPPER_DETECTOR_URL"
	EnvGeneralDetectorURL = "PEPPER_GENERAL_DETECTOR_URL"
	EnvClassifierURL      = "PEPPER_CLASSIFIER_URL"
	EnvConfig             = "PEPPER_CONFIG"
	EnvMetricsAddr        = "PEPPER_METRICS_ADDR"
	EnvWorkers            = "PEPPER_WORKERS"
	EnvHTTPTimeout        = "PEPPER_HTTP_TIMEOUT"
)

const maxFileSize = 1 << 20

// Config is the complete pipeline configuration.
type Config struct {
	// Endpoints of the model services. An empty general detector or
	// classifier URL disables that stage.
	DetectorURL        string `json:"detector_url"`
	GeneralDetectorURL string `json:"general_detector_url"`
	ClassifierURL      string `json:"classifier_url"`

	// HTTPTimeout is a duration string such as "30s".
	HTTPTimeout string `json:"http_timeout"`
	MetricsAddr string `json:"metrics_addr"`

	// Workers bounds how many peppers of one image are processed at once.
	Workers int `json:"workers"`

	NMS        detection.NMSConfig       `json:"nms"`
	Forbidden  detection.ForbiddenConfig `json:"forbidden"`
	Validation validate.Config           `json:"validate"`
	Mask       mask.Config               `json:"mask"`
	Quality    quality.Config            `json:"quality"`
}

// Default returns the tuned defaults with local model endpoints.
func Default() *Config {
	return &Config{
		DetectorURL: "http://127.0.0.1:8001/detect",
		HTTPTimeout: "30s",
		Workers:     1,
		NMS:         detection.DefaultNMSConfig(),
		Forbidden:   detection.DefaultForbiddenConfig(),
		Validation:  validate.DefaultConfig(),
		Mask:        mask.DefaultConfig(),
		Quality:     quality.DefaultConfig(),
	}
}

// Load overlays the JSON file at path onto the defaults and validates the
// result. Fields the file omits keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.overlay(path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) overlay(path string) error {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return fmt.Errorf("config file must have .json extension, got %q", ext)
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return nil
}

// FromEnv builds the configuration from the defaults, the file named by
// PEPPER_CONFIG and the endpoint variables, in that order of precedence.
func FromEnv() (*Config, error) {
	cfg := Default()
	if path := os.Getenv(EnvConfig); path != "" {
		if err := cfg.overlay(path); err != nil {
			return nil, err
		}
	}

	str := map[string]*string{
		EnvDetectorURL:        &cfg.DetectorURL,
		EnvGeneralDetectorURL: &cfg.GeneralDetectorURL,
		EnvClassifierURL:      &cfg.ClassifierURL,
		EnvMetricsAddr:        &cfg.MetricsAddr,
		EnvHTTPTimeout:        &cfg.HTTPTimeout,
	}
	for name, dst := range str {
		if v, ok := os.LookupEnv(name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	if v, ok := os.LookupEnv(EnvWorkers); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		cfg.Workers = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Timeout returns the parsed HTTP timeout.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.HTTPTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	unit := func(name string, v float64) {
		check(v >= 0 && v <= 1, "%s must be between 0 and 1, got %v", name, v)
	}

	check(c.DetectorURL != "", "detector_url is required")
	if d, err := time.ParseDuration(c.HTTPTimeout); err != nil {
		errs = append(errs, fmt.Errorf("invalid http_timeout %q: %w", c.HTTPTimeout, err))
	} else {
		check(d > 0, "http_timeout must be positive, got %s", d)
	}
	check(c.Workers >= 1, "workers must be at least 1, got %d", c.Workers)

	unit("nms.confidence_threshold", c.NMS.ConfidenceThreshold)
	unit("nms.iou_threshold", c.NMS.IoUThreshold)
	unit("forbidden.min_confidence", c.Forbidden.MinConfidence)
	unit("forbidden.iou_threshold", c.Forbidden.IoUThreshold)

	v := c.Validation
	check(v.Classifier.TopK >= 1, "validate.classifier.top_k must be at least 1, got %d", v.Classifier.TopK)
	unit("validate.classifier.competitor_min_prob", v.Classifier.CompetitorMinProb)
	check(v.Shape.MinAspect > 0 && v.Shape.MinAspect <= v.Shape.MaxAspect,
		"validate.shape aspect range [%v, %v] is empty", v.Shape.MinAspect, v.Shape.MaxAspect)
	unit("validate.shape.max_image_fraction", v.Shape.MaxImageFraction)
	unit("validate.color.max_skin_fraction", v.Color.MaxSkinFraction)
	unit("validate.color.min_pepper_fraction", v.Color.MinPepperFraction)
	check(v.Texture.CannyLow < v.Texture.CannyHigh, "validate.texture canny thresholds must increase")

	m := c.Mask
	check(m.MinPixels >= 1, "mask.min_pixels must be at least 1, got %d", m.MinPixels)
	unit("mask.native_threshold", m.NativeThreshold)
	check(m.GrabCut.Components >= 1, "mask.grabcut.components must be at least 1")
	check(m.GrabCut.MaxSide >= 16, "mask.grabcut.max_side must be at least 16, got %d", m.GrabCut.MaxSide)

	q := c.Quality
	check(q.CV.MinPixels >= 1, "quality.cv.min_pixels must be at least 1, got %d", q.CV.MinPixels)
	check(q.CV.GLCMLevels >= 2 && q.CV.GLCMLevels <= 256, "quality.cv.glcm_levels must be in [2, 256], got %d", q.CV.GLCMLevels)
	check(q.CV.AspectMin <= q.CV.AspectMax, "quality.cv aspect range is empty")
	switch q.Ripeness.ColorSpace {
	case "lab", "hsv":
	default:
		errs = append(errs, fmt.Errorf("quality.ripeness.color_space must be lab or hsv, got %q", q.Ripeness.ColorSpace))
	}
	unit("quality.ripeness.secondary_share", q.Ripeness.SecondaryShare)
	unit("quality.ripeness.deep_red_quantile", q.Ripeness.DeepRedQuantile)
	check(q.Ripeness.HueWindow >= 0 && q.Ripeness.HueWindow < 27.5, "quality.ripeness.hue_window must be in [0, 27.5), got %g", q.Ripeness.HueWindow)

	return errors.Join(errs...)
}
