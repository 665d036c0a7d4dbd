// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package inference binds float32 tensors to ONNX models and runs them.
//
// A Session moves through three states. It is created with the model's
// descriptor, becomes InputsBound after SetInputs validates and binds the
// inputs, and becomes Executed after a successful RunSync. SetInputs may be
// called again from any state; RunSync before any successful SetInputs fails
// with ErrSessionNotReady.
//
// Declared shapes come from the model itself by default. A fixed
// ShapePolicy overrides them for models whose exported shapes are
// incomplete.
//
// # Example Usage
//
//	cfg, err := inference.LoadConfig("nnebind.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	p, err := inference.Open(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	outputs, err := p.Run(ctx) // decodes the screenshot and runs the model
//
// Sessions can also be driven directly:
//
//	h, err := inference.Load(ctx, "NNERuntimeORTCpu", "yolov8n.onnx", inference.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer h.Close()
//
//	input, _ := tensor.New(tensor.Shape{1, 3, 640, 640})
//	output, _ := tensor.New(tensor.Shape{1, 84, 8400})
//	if err := h.Session.SetInputs([]*tensor.Buffer{input}); err != nil {
//	    log.Fatal(err)
//	}
//	if err := h.Session.RunSync([]*tensor.Buffer{output}); err != nil {
//	    log.Fatal(err)
//	}
package inference

import (
	"context"

	"github.com/born-ml/nnebind/internal/config"
	"github.com/born-ml/nnebind/internal/engine"
	"github.com/born-ml/nnebind/internal/pipeline"
	"github.com/born-ml/nnebind/internal/runtime/ort"
)

// Session binds tensors to one model instance.
type Session = engine.Session

// Descriptor reports a model's input and output slots.
type Descriptor = engine.Descriptor

// Handle owns a loaded model and its session.
type Handle = engine.Handle

// Options configures a session.
type Options = engine.Options

// ShapePolicy selects where declared shapes come from.
type ShapePolicy = engine.ShapePolicy

// ShapeSource values for ShapePolicy.
const (
	ShapeSourceIntrospected = engine.ShapeSourceIntrospected
	ShapeSourceFixed        = engine.ShapeSourceFixed
)

// State is a session's lifecycle state.
type State = engine.State

// Session states.
const (
	StateCreated     = engine.StateCreated
	StateInputsBound = engine.StateInputsBound
	StateReady       = engine.StateReady
	StateExecuted    = engine.StateExecuted
)

// Runtime creates models; register custom runtimes with RegisterRuntime.
type Runtime = engine.Runtime

// Config describes an inference run.
type Config = config.Config

// Pipeline runs a configured model on a screenshot.
type Pipeline = pipeline.Pipeline

// Error carries the failing operation, tensor index and details of a
// session error. Match its kind with errors.Is.
type Error = engine.Error

// Errors reported by sessions and model loading.
var (
	ErrModelInvalid          = engine.ErrModelInvalid
	ErrIndexOutOfRange       = engine.ErrIndexOutOfRange
	ErrArityMismatch         = engine.ErrArityMismatch
	ErrShapeMismatch         = engine.ErrShapeMismatch
	ErrEmptyOutputBuffer     = engine.ErrEmptyOutputBuffer
	ErrRuntimeRejectedShapes = engine.ErrRuntimeRejectedShapes
	ErrSessionNotReady       = engine.ErrSessionNotReady
	ErrEngineExecutionError  = engine.ErrEngineExecutionError
	ErrUnknownRuntime        = engine.ErrUnknownRuntime
	ErrModelLoad             = engine.ErrModelLoad
)

// DefaultRuntime is the ONNX Runtime CPU backend.
const DefaultRuntime = ort.Name

// RuntimeNames lists the registered runtimes.
func RuntimeNames() []string {
	return engine.RuntimeNames()
}

// RegisterRuntime adds rt to the runtime registry, replacing any runtime
// with the same name.
func RegisterRuntime(rt Runtime) {
	engine.Register(rt)
}

// Load loads the model at path with the named runtime.
func Load(ctx context.Context, runtime, path string, opts Options) (*Handle, error) {
	return engine.LoadByName(ctx, runtime, path, opts)
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// Open resolves and loads the configured model.
func Open(ctx context.Context, cfg *Config) (*Pipeline, error) {
	return pipeline.Open(ctx, cfg)
}

// Shutdown releases the ONNX Runtime environment. Call it once all
// sessions are closed.
func Shutdown() error {
	return ort.Shutdown()
}
