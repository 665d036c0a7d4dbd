// Package onnxtest builds small ONNX model files for tests.
package onnxtest

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

// Value describes a graph input or output.
// A negative dimension is written as a symbolic dim_param.
type Value struct {
	Name     string
	ElemType int32
	Dims     []int64
	NoShape  bool
}

// Float builds a float32 Value.
func Float(name string, dims ...int64) Value {
	return Value{Name: name, ElemType: 1, Dims: dims}
}

// Model describes the parts of an ONNX model the builder can emit.
type Model struct {
	IRVersion    int64
	Opset        int64
	Producer     string
	GraphName    string
	Inputs       []Value
	Outputs      []Value
	Initializers []string
	Nodes        []string // op types
	Metadata     map[string]string
}

// Bytes encodes the model in protobuf wire format.
func (m Model) Bytes() []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(m.IRVersion))
	if m.Producer != "" {
		b = appendStringField(b, 2, m.Producer)
	}
	if m.Opset > 0 {
		var opset []byte
		opset = appendStringField(opset, 1, "")
		opset = appendVarintField(opset, 2, uint64(m.Opset))
		b = appendMessageField(b, 8, opset)
	}
	b = appendMessageField(b, 7, m.graph())

	keys := make([]string, 0, len(m.Metadata))
	for k := range m.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var entry []byte
		entry = appendStringField(entry, 1, k)
		entry = appendStringField(entry, 2, m.Metadata[k])
		b = appendMessageField(b, 14, entry)
	}
	return b
}

func (m Model) graph() []byte {
	var g []byte
	for _, op := range m.Nodes {
		var node []byte
		node = appendStringField(node, 4, op)
		g = appendMessageField(g, 1, node)
	}
	if m.GraphName != "" {
		g = appendStringField(g, 2, m.GraphName)
	}
	for _, name := range m.Initializers {
		var t []byte
		t = appendVarintField(t, 1, 4) // dims
		t = appendVarintField(t, 2, 1) // data_type
		t = appendStringField(t, 8, name)
		t = appendMessageField(t, 9, make([]byte, 16)) // raw_data
		g = appendMessageField(g, 5, t)
	}
	for _, v := range m.Inputs {
		g = appendMessageField(g, 11, v.bytes())
	}
	for _, v := range m.Outputs {
		g = appendMessageField(g, 12, v.bytes())
	}
	return g
}

func (v Value) bytes() []byte {
	var tt []byte
	tt = appendVarintField(tt, 1, uint64(v.ElemType))
	if !v.NoShape {
		var shape []byte
		for i, d := range v.Dims {
			var dim []byte
			if d < 0 {
				dim = appendStringField(dim, 2, "d"+string(rune('0'+i)))
			} else {
				dim = appendVarintField(dim, 1, uint64(d))
			}
			shape = appendMessageField(shape, 1, dim)
		}
		tt = appendMessageField(tt, 2, shape)
	}

	var typ []byte
	typ = appendMessageField(typ, 1, tt)

	var vi []byte
	vi = appendStringField(vi, 1, v.Name)
	vi = appendMessageField(vi, 2, typ)
	return vi
}

// WriteFile writes the model into dir and returns its path.
func (m Model) WriteFile(tb testing.TB, dir, name string) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, m.Bytes(), 0o600); err != nil {
		tb.Fatalf("writing model: %v", err)
	}
	return path
}

// YOLOv8 returns the interface of a YOLOv8n detection model.
func YOLOv8() Model {
	return Model{
		IRVersion: 8,
		Opset:     17,
		Producer:  "pytorch",
		GraphName: "main_graph",
		Inputs:    []Value{Float("images", 1, 3, 640, 640)},
		Outputs:   []Value{Float("output0", 1, 84, 8400)},
		Nodes:     []string{"Conv", "Sigmoid", "Mul"},
		Metadata:  map[string]string{"task": "detect", "imgsz": "[640, 640]"},
	}
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendStringField(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendMessageField(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}
