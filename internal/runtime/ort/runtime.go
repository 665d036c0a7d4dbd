package ort

import (
	"context"
	"fmt"
	"os"
	"sync"

	onnxruntime "github.com/yalue/onnxruntime_go"
	"k8s.io/klog/v2"

	"github.com/born-ml/nnebind/internal/engine"
	"github.com/born-ml/nnebind/internal/onnx"
)

// Name is the registry name of the CPU runtime.
const Name = "NNERuntimeORTCpu"

// EnvSharedLibrary names the environment variable holding the path of the
// onnxruntime shared library.
const EnvSharedLibrary = "ONNXRUNTIME_SHARED_LIBRARY"

func init() {
	engine.Register(New(Options{}))
}

// Options configures the runtime.
type Options struct {
	SharedLibraryPath string
	IntraOpThreads    int
	InterOpThreads    int
}

func (o Options) libraryPath() string {
	if o.SharedLibraryPath != "" {
		return o.SharedLibraryPath
	}
	return os.Getenv(EnvSharedLibrary)
}

// Runtime creates ONNX Runtime backed models.
type Runtime struct {
	opts Options
}

// New creates a runtime. Register it with engine.Register to replace the
// default instance.
func New(opts Options) *Runtime {
	return &Runtime{opts: opts}
}

// Name implements engine.Runtime.
func (r *Runtime) Name() string {
	return Name
}

// CreateModel reads the model's signature and prepares the ONNX Runtime
// environment. Sessions are created per instance.
func (r *Runtime) CreateModel(ctx context.Context, path string) (engine.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := klog.FromContext(ctx)

	sig, err := onnx.ReadSignature(path)
	if err != nil {
		return nil, fmt.Errorf("reading model signature: %w", err)
	}
	if err := checkFloat32(sig); err != nil {
		return nil, err
	}

	if err := env.init(r.opts.libraryPath()); err != nil {
		return nil, err
	}

	log.V(2).Info("Model signature", "path", path,
		"inputs", sig.InputNames(), "outputs", sig.OutputNames())

	return &Model{path: path, sig: sig, opts: r.opts}, nil
}

func checkFloat32(sig *onnx.Signature) error {
	for _, d := range sig.Inputs {
		if d.ElemType != engine.ElemFloat32 {
			return fmt.Errorf("%w: input %q has element type %s, only float32 is supported",
				engine.ErrModelInvalid, d.Name, d.ElemType)
		}
	}
	for _, d := range sig.Outputs {
		if d.ElemType != engine.ElemFloat32 {
			return fmt.Errorf("%w: output %q has element type %s, only float32 is supported",
				engine.ErrModelInvalid, d.Name, d.ElemType)
		}
	}
	return nil
}

// Model is a parsed model file. Each instance owns its own session.
type Model struct {
	path string
	sig  *onnx.Signature
	opts Options

	mu     sync.Mutex
	closed bool
}

// CreateInstance creates an ONNX Runtime session for the model.
func (m *Model) CreateInstance() (engine.ModelInstance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, fmt.Errorf("%w: model closed", engine.ErrModelInvalid)
	}

	so, err := onnxruntime.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("creating session options: %w", err)
	}
	defer so.Destroy() //nolint:errcheck // Options are copied into the session.

	if m.opts.IntraOpThreads > 0 {
		if err := so.SetIntraOpNumThreads(m.opts.IntraOpThreads); err != nil {
			return nil, fmt.Errorf("setting intra-op threads: %w", err)
		}
	}
	if m.opts.InterOpThreads > 0 {
		if err := so.SetInterOpNumThreads(m.opts.InterOpThreads); err != nil {
			return nil, fmt.Errorf("setting inter-op threads: %w", err)
		}
	}

	session, err := onnxruntime.NewDynamicAdvancedSession(m.path,
		m.sig.InputNames(), m.sig.OutputNames(), so)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return newInstance(session, m.sig), nil
}

// Close marks the model closed. Instances already created stay usable until
// they are closed themselves.
func (m *Model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
