package ort

import (
	"fmt"
	"sync"

	onnxruntime "github.com/yalue/onnxruntime_go"
	"k8s.io/klog/v2"
)

// environment initialises the process-wide ONNX Runtime environment once.
type environment struct {
	once    sync.Once
	err     error
	libPath string
}

var env environment

func (e *environment) init(libPath string) error {
	e.once.Do(func() {
		e.libPath = libPath
		if onnxruntime.IsInitialized() {
			return
		}
		if libPath != "" {
			onnxruntime.SetSharedLibraryPath(libPath)
		}
		klog.V(2).InfoS("Initializing ONNX Runtime", "library", libPath)
		if err := onnxruntime.InitializeEnvironment(); err != nil {
			e.err = fmt.Errorf("initializing onnxruntime environment: %w", err)
		}
	})
	if e.err == nil && libPath != "" && libPath != e.libPath {
		klog.InfoS("ONNX Runtime already initialized, ignoring library path",
			"requested", libPath, "loaded", e.libPath)
	}
	return e.err
}

// Shutdown destroys the ONNX Runtime environment. No session may be used afterwards.
func Shutdown() error {
	if !onnxruntime.IsInitialized() {
		return nil
	}
	return onnxruntime.DestroyEnvironment()
}
