// Package tensor provides flat float32 tensor buffers with fixed shapes.
//
// A Buffer owns a zero-initialised []float32 whose length always equals the
// volume of its Shape. Shapes are validated on creation: at least one
// dimension, every extent >= 1, and a volume whose byte size fits in an int.
//
// Buffers are exchanged with inference runtimes through Binding values,
// which are non-owning views sharing the buffer's backing array.
//
// Example:
//
//	buf, err := tensor.New(tensor.Shape{1, 3, 640, 640})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(buf.Len(), buf.SizeInBytes()) // 1228800 4915200
package tensor
