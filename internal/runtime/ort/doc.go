// Package ort runs ONNX models on the CPU through ONNX Runtime.
//
// The runtime registers itself with the engine registry as "NNERuntimeORTCpu".
// The ONNX Runtime shared library is located through Options.SharedLibraryPath,
// falling back to the ONNXRUNTIME_SHARED_LIBRARY environment variable and then
// to the loader's default search path.
//
// Tensor memory is never copied: input and output bindings are wrapped as
// ONNX Runtime values over the caller's slices for the duration of RunSync.
package ort
