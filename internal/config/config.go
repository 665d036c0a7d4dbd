// Package config loads the YAML configuration of an inference run.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/nnebind/internal/engine"
	"github.com/born-ml/nnebind/internal/imageio"
	"github.com/born-ml/nnebind/internal/tensor"
)

// DefaultRuntime is the runtime used when none is configured.
const DefaultRuntime = "NNERuntimeORTCpu"

// Config describes which model to run, how its tensors are shaped and where
// its input image comes from.
type Config struct {
	Runtime       string `yaml:"runtime"`
	Model         string `yaml:"model"`
	CacheDir      string `yaml:"cacheDir,omitempty"`
	SharedLibrary string `yaml:"sharedLibrary,omitempty"`
	Threads       int    `yaml:"threads,omitempty"`

	Shapes               Shapes `yaml:"shapes"`
	EnforceDeclaredShape bool   `yaml:"enforceDeclaredShape"`

	Screenshot Screenshot `yaml:"screenshot"`
}

// Shapes selects where tensor shapes come from.
// Source is "introspected" (default) or "fixed".
type Shapes struct {
	Source  string  `yaml:"source"`
	Inputs  [][]int `yaml:"inputs,omitempty"`
	Outputs [][]int `yaml:"outputs,omitempty"`
}

// Screenshot locates the input image and how it is turned into a tensor.
// A zero Width or Height keeps the image's own extent.
type Screenshot struct {
	SavedDir string `yaml:"savedDir"`
	Platform string `yaml:"platform,omitempty"`
	Path     string `yaml:"path,omitempty"`
	Layout   string `yaml:"layout"`
	Width    int    `yaml:"width,omitempty"`
	Height   int    `yaml:"height,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Runtime: DefaultRuntime,
		Shapes:  Shapes{Source: engine.ShapeSourceIntrospected.String()},
		Screenshot: Screenshot{
			SavedDir: "Saved",
			Layout:   imageio.LayoutCHW.String(),
		},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
//
//nolint:gosec // G304: Config path is provided by user.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	var errs []error
	if c.Runtime == "" {
		errs = append(errs, errors.New("runtime is required"))
	}
	if c.Model == "" {
		errs = append(errs, errors.New("model is required"))
	}
	if c.Threads < 0 {
		errs = append(errs, fmt.Errorf("threads must not be negative, got %d", c.Threads))
	}
	if _, err := c.SessionOptions(); err != nil {
		errs = append(errs, err)
	}
	if _, err := imageio.ParseLayout(c.Screenshot.Layout); err != nil {
		errs = append(errs, fmt.Errorf("screenshot: %w", err))
	}
	if c.Screenshot.Width < 0 || c.Screenshot.Height < 0 {
		errs = append(errs, fmt.Errorf("screenshot: negative size %dx%d", c.Screenshot.Width, c.Screenshot.Height))
	}
	if (c.Screenshot.Width == 0) != (c.Screenshot.Height == 0) {
		errs = append(errs, errors.New("screenshot: width and height must be set together"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// SessionOptions converts the shape settings into engine options.
func (c *Config) SessionOptions() (engine.Options, error) {
	source, err := engine.ParseShapeSource(c.Shapes.Source)
	if err != nil {
		return engine.Options{}, err
	}
	policy := engine.ShapePolicy{
		Source:  source,
		Inputs:  toShapes(c.Shapes.Inputs),
		Outputs: toShapes(c.Shapes.Outputs),
	}
	if err := policy.Validate(); err != nil {
		return engine.Options{}, err
	}
	return engine.Options{
		Shapes:               policy,
		EnforceDeclaredShape: c.EnforceDeclaredShape,
	}, nil
}

// Layout returns the parsed screenshot layout.
func (c *Config) Layout() imageio.Layout {
	l, err := imageio.ParseLayout(c.Screenshot.Layout)
	if err != nil {
		return imageio.LayoutCHW
	}
	return l
}

// ScreenshotPath returns the explicit image path, or the conventional
// screenshot location under SavedDir.
func (c *Config) ScreenshotPath() string {
	if c.Screenshot.Path != "" {
		return c.Screenshot.Path
	}
	return imageio.ScreenshotPath(c.Screenshot.SavedDir, c.Screenshot.Platform)
}

func toShapes(dims [][]int) []tensor.Shape {
	if len(dims) == 0 {
		return nil
	}
	shapes := make([]tensor.Shape, len(dims))
	for i, d := range dims {
		shapes[i] = tensor.Shape(d)
	}
	return shapes
}
