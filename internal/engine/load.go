package engine

import (
	"context"
	"errors"
	"fmt"

	"k8s.io/klog/v2"
)

// Handle owns a loaded model, its execution instance and the session bound
// to that instance.
type Handle struct {
	Runtime  string
	Model    Model
	Instance ModelInstance
	Session  *Session
}

// Load creates a model from path with rt, creates one execution instance
// and wraps it in a Session.
func Load(ctx context.Context, rt Runtime, path string, opts Options) (*Handle, error) {
	log := klog.FromContext(ctx)

	log.Info("Creating model", "runtime", rt.Name(), "path", path)

	model, err := rt.CreateModel(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: runtime %q: %w", ErrModelLoad, rt.Name(), err)
	}

	instance, err := model.CreateInstance()
	if err != nil {
		closeErr := model.Close()
		return nil, errors.Join(fmt.Errorf("%w: creating instance: %w", ErrModelLoad, err), closeErr)
	}

	session, err := NewSession(instance, opts)
	if err != nil {
		closeErr := errors.Join(instance.Close(), model.Close())
		return nil, errors.Join(fmt.Errorf("%w: creating session: %w", ErrModelLoad, err), closeErr)
	}

	log.Info("Model instance created", "runtime", rt.Name(), "shapeSource", opts.Shapes.Source.String())

	return &Handle{
		Runtime:  rt.Name(),
		Model:    model,
		Instance: instance,
		Session:  session,
	}, nil
}

// LoadByName looks up the runtime in the default registry and calls Load.
func LoadByName(ctx context.Context, runtime, path string, opts Options) (*Handle, error) {
	rt, err := GetRuntime(runtime)
	if err != nil {
		return nil, err
	}
	return Load(ctx, rt, path, opts)
}

// Close releases the session's instance and the model.
func (h *Handle) Close() error {
	return errors.Join(h.Session.Close(), h.Model.Close())
}
