// Package pipeline wires configuration, asset resolution, image ingestion
// and an inference session into one screenshot-to-output run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"

	"k8s.io/klog/v2"

	"github.com/born-ml/nnebind/internal/asset"
	"github.com/born-ml/nnebind/internal/config"
	"github.com/born-ml/nnebind/internal/engine"
	"github.com/born-ml/nnebind/internal/imageio"
	"github.com/born-ml/nnebind/internal/runtime/ort"
	"github.com/born-ml/nnebind/internal/tensor"
)

// Pipeline owns a loaded model and the configuration that feeds it.
type Pipeline struct {
	cfg       *config.Config
	modelPath string
	handle    *engine.Handle
}

// Open resolves the configured model and loads it with the configured runtime.
func Open(ctx context.Context, cfg *config.Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := cfg.SessionOptions()
	if err != nil {
		return nil, err
	}

	resolver, err := asset.NewResolver(cfg.CacheDir)
	if err != nil {
		return nil, err
	}
	path, err := resolver.Resolve(ctx, cfg.Model)
	if err != nil {
		return nil, err
	}

	rt, err := runtimeFor(cfg)
	if err != nil {
		return nil, err
	}
	handle, err := engine.Load(ctx, rt, path, opts)
	if err != nil {
		return nil, err
	}

	return &Pipeline{cfg: cfg, modelPath: path, handle: handle}, nil
}

// runtimeFor builds the ORT runtime from configuration, or looks up any
// other runtime in the default registry.
func runtimeFor(cfg *config.Config) (engine.Runtime, error) {
	if cfg.Runtime == ort.Name {
		return ort.New(ort.Options{
			SharedLibraryPath: cfg.SharedLibrary,
			IntraOpThreads:    cfg.Threads,
		}), nil
	}
	return engine.GetRuntime(cfg.Runtime)
}

// Session returns the underlying inference session.
func (p *Pipeline) Session() *engine.Session {
	return p.handle.Session
}

// ModelPath returns the local path the model was loaded from.
func (p *Pipeline) ModelPath() string {
	return p.modelPath
}

// Close releases the session and the model.
func (p *Pipeline) Close() error {
	return p.handle.Close()
}

// Run decodes the configured screenshot, converts it to the model's input
// tensor and runs the model once.
func (p *Pipeline) Run(ctx context.Context) ([]*tensor.Buffer, error) {
	log := klog.FromContext(ctx)

	log.V(2).Info("Reading screenshot", "path", p.cfg.ScreenshotPath())
	px, err := p.loadScreenshot()
	if err != nil {
		return nil, err
	}
	log.V(2).Info("Decoded screenshot", "width", px.Width, "height", px.Height)

	input, err := p.Preprocess(px)
	if err != nil {
		return nil, err
	}
	return p.RunTensors(ctx, []*tensor.Buffer{input})
}

// loadScreenshot decodes the explicit screenshot path when one is
// configured, or the engine's conventional capture under SavedDir.
func (p *Pipeline) loadScreenshot() (*imageio.RawPixelBuffer, error) {
	if p.cfg.Screenshot.Path != "" {
		return imageio.DecodeFile(p.cfg.Screenshot.Path)
	}
	return imageio.LoadScreenshot(p.cfg.Screenshot.SavedDir, p.cfg.Screenshot.Platform)
}

// Preprocess resizes px to the model's input extent and converts it into
// a normalized tensor in the configured layout.
func (p *Pipeline) Preprocess(px *imageio.RawPixelBuffer) (*tensor.Buffer, error) {
	d := p.handle.Session.Descriptor()
	n, err := d.InputCount()
	if err != nil {
		return nil, err
	}
	if n != 1 {
		return nil, fmt.Errorf("%w: image input needs a single-input model, model has %d inputs",
			engine.ErrArityMismatch, n)
	}

	layout := p.cfg.Layout()
	w, h := p.cfg.Screenshot.Width, p.cfg.Screenshot.Height
	if w == 0 {
		declared, err := d.DeclaredInputShape(0)
		if err != nil {
			return nil, err
		}
		w, h = spatialSize(declared, layout)
	}
	if w > 0 && h > 0 {
		px = imageio.Resize(px, w, h)
	}
	return imageio.ToTensor(px, layout)
}

// spatialSize reads width and height from a declared image shape.
// Zero is returned for dimensions that are unknown.
func spatialSize(shape engine.SymbolicShape, layout imageio.Layout) (w, h int) {
	switch {
	case layout == imageio.LayoutCHW && len(shape) == 4:
		h, w = shape[2], shape[3]
	case layout == imageio.LayoutHWC && len(shape) == 3:
		h, w = shape[0], shape[1]
	default:
		return 0, 0
	}
	if w < 1 || h < 1 {
		return 0, 0
	}
	return w, h
}

// RunTensors binds inputs, allocates outputs from the declared output
// shapes and runs the model once.
func (p *Pipeline) RunTensors(ctx context.Context, inputs []*tensor.Buffer) ([]*tensor.Buffer, error) {
	log := klog.FromContext(ctx)
	s := p.handle.Session

	outputs, err := AllocateOutputs(s.Descriptor())
	if err != nil {
		return nil, err
	}
	if err := s.SetInputs(inputs); err != nil {
		return nil, err
	}
	if err := s.RunSync(outputs); err != nil {
		return nil, err
	}

	log.V(2).Info("Inference complete", "outputs", len(outputs))
	return outputs, nil
}

// AllocateOutputs creates a zero-filled buffer for every declared output.
func AllocateOutputs(d *engine.Descriptor) ([]*tensor.Buffer, error) {
	n, err := d.OutputCount()
	if err != nil {
		return nil, err
	}
	outputs := make([]*tensor.Buffer, n)
	for i := range outputs {
		declared, err := d.DeclaredOutputShape(i)
		if err != nil {
			return nil, err
		}
		shape, ok := declared.Concrete()
		if !ok {
			return nil, fmt.Errorf("output %d has dynamic shape %s, configure a fixed output shape", i, declared)
		}
		if outputs[i], err = tensor.New(shape); err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
	}
	return outputs, nil
}

// Stats summarises a tensor's values.
type Stats struct {
	Min, Max, Mean float32
	ArgMax         int
}

// Summarize computes Stats over b. An empty buffer is an error.
func Summarize(b *tensor.Buffer) (Stats, error) {
	data := b.Data()
	if len(data) == 0 {
		return Stats{}, errors.New("empty tensor")
	}
	st := Stats{Min: float32(math.Inf(1)), Max: float32(math.Inf(-1))}
	var sum float64
	for i, v := range data {
		if v < st.Min {
			st.Min = v
		}
		if v > st.Max {
			st.Max = v
			st.ArgMax = i
		}
		sum += float64(v)
	}
	st.Mean = float32(sum / float64(len(data)))
	return st, nil
}
