// Package onnx inspects ONNX model files without executing them.
//
// The reader decodes just enough of the protobuf model to describe how it is
// bound: graph inputs (excluding weights), outputs, their element types and
// shapes, and the producer and opset metadata. Symbolic dimensions such as
// a dynamic batch axis are reported as -1.
//
// # Example Usage
//
//	import "github.com/born-ml/nnebind/onnx"
//
//	info, err := onnx.GetModelInfo("yolov8n.onnx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Producer: %s\n", info.ProducerName)
//	fmt.Printf("Opset: %d\n", info.OpsetVersion)
//	for _, in := range info.Signature.Inputs {
//	    fmt.Printf("%s %s %s\n", in.Name, in.ElemType, in.Dims) // images float32 1x3x640x640
//	}
package onnx

import (
	"github.com/born-ml/nnebind/internal/engine"
	internalonnx "github.com/born-ml/nnebind/internal/onnx"
)

// TensorDesc describes one input or output slot.
type TensorDesc = engine.TensorDesc

// Signature lists a model's input and output slots in order.
type Signature = internalonnx.Signature

// ModelInfo contains metadata about an ONNX model.
//
// Use [GetModelInfo] to inspect a model file before loading it.
type ModelInfo = internalonnx.ModelInfo

// DynamicDim marks a dimension whose extent is chosen at run time.
const DynamicDim = engine.DynamicDim

// GetModelInfo extracts metadata and the signature from an ONNX file.
//
// Weight tensors and node bodies are skipped, so this is cheap even for
// large models.
func GetModelInfo(path string) (*ModelInfo, error) {
	return internalonnx.GetModelInfo(path)
}

// ReadSignature returns the input and output slots of an ONNX file.
//
// Example:
//
//	sig, err := onnx.ReadSignature("model.onnx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Inputs:", sig.InputNames())
//	fmt.Println("Outputs:", sig.OutputNames())
func ReadSignature(path string) (*Signature, error) {
	return internalonnx.ReadSignature(path)
}
