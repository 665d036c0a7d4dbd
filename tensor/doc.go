// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the float32 buffers exchanged with inference sessions.
//
// # Overview
//
// A Buffer owns a flat []float32 and the shape that describes it. Shapes are
// row-major and every dimension must be at least 1; the element count of a
// buffer always equals the volume of its shape.
//
// A Binding is a non-owning view of a buffer's memory handed to a runtime for
// the duration of one call. The buffer must outlive the call and must not be
// written by another goroutine while the call runs.
//
// # Basic Usage
//
//	import "github.com/born-ml/nnebind/tensor"
//
//	func main() {
//	    input, err := tensor.New(tensor.Shape{1, 3, 640, 640})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    input.Fill(0.5)
//
//	    // Wrap existing memory without copying.
//	    data := make([]float32, 84*8400)
//	    output, err := tensor.FromSlice(data, tensor.Shape{1, 84, 8400})
//	}
package tensor
