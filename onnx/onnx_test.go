package onnx_test

import (
	"testing"

	"github.com/born-ml/nnebind/internal/onnx/onnxtest"
	"github.com/born-ml/nnebind/onnx"
)

func TestGetModelInfo(t *testing.T) {
	path := onnxtest.YOLOv8().WriteFile(t, t.TempDir(), "yolov8n.onnx")

	info, err := onnx.GetModelInfo(path)
	if err != nil {
		t.Fatalf("GetModelInfo failed: %v", err)
	}
	if info.OpsetVersion != 17 {
		t.Errorf("OpsetVersion = %d, want 17", info.OpsetVersion)
	}
	if info.ProducerName != "pytorch" {
		t.Errorf("ProducerName = %q, want pytorch", info.ProducerName)
	}
	if got := len(info.Signature.Inputs); got != 1 {
		t.Fatalf("len(Inputs) = %d, want 1", got)
	}
}

func TestReadSignature_DynamicBatch(t *testing.T) {
	m := onnxtest.YOLOv8()
	m.Inputs = []onnxtest.Value{onnxtest.Float("images", -1, 3, 640, 640)}
	path := m.WriteFile(t, t.TempDir(), "dynamic.onnx")

	sig, err := onnx.ReadSignature(path)
	if err != nil {
		t.Fatalf("ReadSignature failed: %v", err)
	}
	var desc onnx.TensorDesc = sig.Inputs[0]
	if desc.Dims[0] != onnx.DynamicDim {
		t.Errorf("Dims[0] = %d, want DynamicDim", desc.Dims[0])
	}
	if got := desc.Dims.String(); got != "?x3x640x640" {
		t.Errorf("Dims.String() = %q, want ?x3x640x640", got)
	}
	if names := sig.OutputNames(); len(names) != 1 || names[0] != "output0" {
		t.Errorf("OutputNames() = %v, want [output0]", names)
	}
}

func TestReadSignature_Missing(t *testing.T) {
	if _, err := onnx.ReadSignature(t.TempDir() + "/missing.onnx"); err == nil {
		t.Error("expected error for missing file")
	}
}
