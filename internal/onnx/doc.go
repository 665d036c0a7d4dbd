// Package onnx reads the interface of ONNX models.
//
// ONNX (Open Neural Network Exchange) models are protobuf messages. This
// package decodes them with google.golang.org/protobuf/encoding/protowire,
// keeping only what a caller needs to bind tensors:
//   - ModelProto: IR/opset versions, producer and metadata
//   - GraphProto: inputs, outputs, initializer names, node count
//   - ValueInfoProto: element type and (possibly symbolic) shape per slot
//
// Weight data and node bodies are skipped without being copied.
//
// Example usage:
//
//	sig, err := onnx.ReadSignature("yolov8n.onnx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, in := range sig.Inputs {
//	    fmt.Printf("%s %s %v\n", in.Name, in.ElemType, in.Dims) // images float32 1x3x640x640
//	}
package onnx
